package kv

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// ErrCorrupt reports a store file that is not a JSON object of strings.
var ErrCorrupt = errors.New("corrupt store file")

// File keeps every key in one JSON object on disk.
type File struct {
	path string
}

// NewFile returns a File store at path. The file is created on first Set.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the data file location.
func (f *File) Path() string {
	return f.path
}

// CorruptPath is where Set moves an unparseable store file.
func (f *File) CorruptPath() string {
	return f.path + ".corrupt"
}

func (f *File) lockPath() string {
	return f.path + ".lock"
}

// Get reads key from disk. A missing file holds no keys; an unparseable one
// returns an error wrapping ErrCorrupt.
func (f *File) Get(key string) (string, bool, error) {
	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

// Set writes key under an exclusive lock, leaving other keys untouched.
// A corrupt file is moved to CorruptPath and replaced by a fresh one.
func (f *File) Set(key, value string) error {
	return f.update(func(values map[string]string) {
		values[key] = value
	})
}

// Close is a no-op; File holds no open handles between calls.
func (f *File) Close() error {
	return nil
}

func (f *File) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}

	values := make(map[string]string)
	if len(bytes.TrimSpace(data)) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, f.path, err)
	}
	return values, nil
}

func (f *File) save(values map[string]string) error {
	dir := filepath.Dir(f.path)
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store file: %w", err)
	}

	if existing, err := os.ReadFile(f.path); err == nil {
		if bytes.Equal(existing, data) {
			return nil
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read store file: %w", err)
	}

	// Write atomically via temp file
	tmpFile, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	name := tmpFile.Name()
	_, err = tmpFile.Write(data)
	if err1 := tmpFile.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("write temp store file: %w", err)
	}

	if err := os.Rename(name, f.path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename store file: %w", err)
	}
	return nil
}

// update reads, modifies, and writes the file while holding the lock file.
func (f *File) update(fn func(values map[string]string)) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	lockFile, err := os.OpenFile(f.lockPath(), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer lockFile.Close()

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)

	values, err := f.load()
	if errors.Is(err, ErrCorrupt) {
		if err := os.Rename(f.path, f.CorruptPath()); err != nil {
			return fmt.Errorf("move corrupt store file: %w", err)
		}
		values, err = make(map[string]string), nil
	}
	if err != nil {
		return err
	}
	fn(values)
	return f.save(values)
}
