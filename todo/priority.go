package todo

import (
	"encoding/json"
	"math"
	"strings"
	"unicode"
)

// Priority bounds. Lower values are more urgent.
const (
	PriorityMin     = 1
	PriorityMax     = 256
	PriorityDefault = 128
)

// Label priorities accepted as exact strings.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Bucket groups priorities for display.
type Bucket string

const (
	BucketHigh   Bucket = "high"
	BucketMedium Bucket = "medium"
	BucketLow    Bucket = "low"
)

// Bucket thresholds are inclusive upper bounds.
const (
	bucketHighMax   = 64
	bucketMediumMax = 160
)

// PriorityBucket returns the display bucket for a priority.
func PriorityBucket(priority int) Bucket {
	switch {
	case priority <= bucketHighMax:
		return BucketHigh
	case priority <= bucketMediumMax:
		return BucketMedium
	default:
		return BucketLow
	}
}

// ClampPriority forces priority into [PriorityMin, PriorityMax].
func ClampPriority(priority int) int {
	if priority < PriorityMin {
		return PriorityMin
	}
	if priority > PriorityMax {
		return PriorityMax
	}
	return priority
}

// NormalizePriority converts any priority input to a value in [PriorityMin, PriorityMax].
// Integers are clamped, floats are truncated then clamped, strings go through
// ParsePriority, and everything else becomes PriorityDefault.
func NormalizePriority(value any) int {
	switch v := value.(type) {
	case int:
		return ClampPriority(v)
	case int8:
		return ClampPriority(int(v))
	case int16:
		return ClampPriority(int(v))
	case int32:
		return ClampPriority(int(v))
	case int64:
		return clampInt64(v)
	case uint:
		return clampUint64(uint64(v))
	case uint8:
		return ClampPriority(int(v))
	case uint16:
		return ClampPriority(int(v))
	case uint32:
		return clampUint64(uint64(v))
	case uint64:
		return clampUint64(v)
	case float32:
		return clampFloat(float64(v))
	case float64:
		return clampFloat(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return clampInt64(n)
		}
		if f, err := v.Float64(); err == nil {
			return clampFloat(f)
		}
		return PriorityDefault
	case string:
		return ParsePriority(v)
	default:
		return PriorityDefault
	}
}

// ParsePriority maps the High/Medium/Low labels to 1/2/3. Other input is read
// as a base-10 integer prefix: leading whitespace and a sign are allowed, and
// parsing stops at the first non-digit. Input without digits yields PriorityDefault.
func ParsePriority(value string) int {
	switch value {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}

	rest := strings.TrimLeftFunc(value, unicode.IsSpace)
	negative := false
	if rest != "" && (rest[0] == '+' || rest[0] == '-') {
		negative = rest[0] == '-'
		rest = rest[1:]
	}

	digits := 0
	n := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		// Anything past PriorityMax clamps the same way, so stop growing n.
		if n <= PriorityMax {
			n = n*10 + int(rest[digits]-'0')
		}
		digits++
	}
	if digits == 0 {
		return PriorityDefault
	}
	if negative {
		n = -n
	}
	return ClampPriority(n)
}

func clampInt64(v int64) int {
	if v < PriorityMin {
		return PriorityMin
	}
	if v > PriorityMax {
		return PriorityMax
	}
	return int(v)
}

func clampUint64(v uint64) int {
	if v > PriorityMax {
		return PriorityMax
	}
	return ClampPriority(int(v))
}

func clampFloat(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return PriorityDefault
	}
	v = math.Trunc(v)
	if v < PriorityMin {
		return PriorityMin
	}
	if v > PriorityMax {
		return PriorityMax
	}
	return int(v)
}
