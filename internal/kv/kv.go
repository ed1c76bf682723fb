// Package kv provides the key-value backends the todo store persists to.
package kv

import (
	"errors"

	"github.com/CrocodileWoodGordon/todolist/internal/validation"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Backends lists the names accepted by Open.
var Backends = []string{BackendFile, BackendSQLite, BackendMemory}

// ErrUnknownBackend is returned by Open for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Store is a string key-value store. Get reports false for a missing key.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Close() error
}

// Open returns the named backend rooted at path. The memory backend ignores path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFile(path), nil
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, validation.FormatInvalidValueError(ErrUnknownBackend, backend, Backends)
	}
}
