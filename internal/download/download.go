// Package download implements the export destinations used by the CLI and TUI.
package download

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Dir saves downloads as files in a directory.
type Dir struct {
	Path string

	// Saved is the full path of the last file written.
	Saved string
}

// Download writes data to Path/filename via a temp file and rename.
func (d *Dir) Download(data []byte, filename string) error {
	if filepath.Base(filename) != filename {
		return fmt.Errorf("invalid download name %q", filename)
	}
	dir := d.Path
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, filename+".tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmpFile.Name()
	_, err = tmpFile.Write(data)
	if err1 := tmpFile.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("write temp file: %w", err)
	}

	target := filepath.Join(dir, filename)
	if err := os.Rename(name, target); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename download: %w", err)
	}
	d.Saved = target
	return nil
}

// Writer streams downloads to an io.Writer, ignoring the file name.
type Writer struct {
	W io.Writer
}

// Download writes data followed by a newline.
func (w Writer) Download(data []byte, filename string) error {
	if _, err := w.W.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	if _, err := io.WriteString(w.W, "\n"); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}
