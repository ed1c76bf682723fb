package ids

import (
	"crypto/sha256"
	"encoding/base32"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultLength is the standard length for generated IDs.
const DefaultLength = 8

// Generate creates a deterministic, lowercase base32 ID derived from input.
func Generate(input string, length int) string {
	hash := sha256.Sum256([]byte(input))
	encoded := base32.StdEncoding.EncodeToString(hash[:])
	if length <= 0 {
		return ""
	}
	if length > len(encoded) {
		length = len(encoded)
	}
	return strings.ToLower(encoded[:length])
}

// Sequence hands out IDs derived from a seed, the clock and a counter.
// It keeps no history; callers pass taken to reject IDs already in use.
// The zero value is ready to use.
type Sequence struct {
	mu   sync.Mutex
	next uint64

	// Now overrides the clock mixed into each ID.
	Now func() time.Time
}

// Next returns an ID derived from seed that taken does not report as in use.
// A nil taken accepts the first candidate.
func (s *Sequence) Next(seed string, taken func(id string) bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	stamp := now().Format(time.RFC3339Nano)
	for {
		s.next++
		id := Generate(seed+"\x00"+stamp+"\x00"+strconv.FormatUint(s.next, 10), DefaultLength)
		if taken != nil && taken(id) {
			continue
		}
		return id
	}
}
