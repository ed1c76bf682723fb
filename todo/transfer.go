package todo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ExportVersion is written to every export envelope.
const ExportVersion = "1.0"

// User-facing import messages.
const (
	ImportConfirmMessage = "Import will replace current todos. Continue?"
	ImportSuccessMessage = "Import success"
	ImportFailedPrefix   = "Import failed: "
)

const exportedAtLayout = "2006-01-02T15:04:05.000Z"

// Envelope is the versioned export document.
type Envelope struct {
	Version    string `json:"version"`
	ExportedAt string `json:"exportedAt"`
	Items      []Item `json:"items"`
}

// EncodeExport renders items as an indented export envelope stamped with now.
func EncodeExport(items []Item, now time.Time) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	data, err := encodeJSON(Envelope{
		Version:    ExportVersion,
		ExportedAt: now.UTC().Format(exportedAtLayout),
		Items:      items,
	}, true)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

// ExportFilename returns the suggested file name for an export made at now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("todolist-export-%d.json", now.UnixMilli())
}

// Export encodes the canonical list and hands it to d. It returns the file name used.
func (s *Store) Export(d Downloader, now time.Time) (string, error) {
	data, err := EncodeExport(s.Items(), now)
	if err != nil {
		return "", err
	}
	filename := ExportFilename(now)
	if err := d.Download(data, filename); err != nil {
		return "", fmt.Errorf("download %s: %w", filename, err)
	}
	s.logger.Debug("exported todos", "file", filename, "bytes", len(data))
	return filename, nil
}

// CheckImportFilename rejects files whose name does not end in .json.
func CheckImportFilename(name string) error {
	if !strings.HasSuffix(filepath.Base(name), ".json") {
		return fmt.Errorf("%w: %s", ErrNotJSONFile, name)
	}
	return nil
}

// ReadImportFile checks the file name and reads the whole file. There is no
// timeout; a context that is already done stops the read before it starts.
func ReadImportFile(ctx context.Context, path string) ([]byte, error) {
	if err := CheckImportFilename(path); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	return data, nil
}

// ParseImport decodes an export envelope and maps its items. Errors wrap
// ErrParse for malformed JSON, ErrFormat for a wrong envelope shape or an
// unsupported version, and ErrValidation for bad items.
func ParseImport(data []byte) ([]Item, error) {
	value, err := decodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	envelope, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object", ErrFormat)
	}
	if version, present := envelope["version"]; present {
		text, isText := version.(string)
		if !isText || !compatibleVersion(text) {
			return nil, fmt.Errorf("%w: unsupported version %v", ErrFormat, version)
		}
	}
	elements, ok := envelope["items"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: items must be an array", ErrFormat)
	}

	items := make([]Item, 0, len(elements))
	for i, element := range elements {
		item, err := itemFromElement(element)
		if err != nil && !errors.Is(err, ErrInvalidDeadline) {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// compatibleVersion accepts any version with major number 1.
func compatibleVersion(version string) bool {
	major, _, _ := strings.Cut(version, ".")
	return major == "1"
}

// ImportResult describes a finished import.
type ImportResult struct {
	// Imported is the number of items now in the store.
	Imported int

	// Declined is true when the user said no at the confirmation prompt.
	Declined bool
}

// Import validates data, asks p for confirmation and replaces the whole list.
// The outcome is reported to n exactly once, except that a declined
// confirmation is silent and returns a nil error. The list is unchanged on
// every failure.
//
// Hosts that confirm asynchronously call PrepareImport and ApplyImport
// themselves.
func (s *Store) Import(data []byte, p Prompter, n Notifier) (ImportResult, error) {
	if p == nil {
		p = StdioPrompter{}
	}
	n = orDiscard(n)

	items, err := PrepareImport(data, n)
	if err != nil {
		return ImportResult{}, err
	}

	confirmed, err := p.Confirm(ImportConfirmMessage)
	if err != nil {
		err = fmt.Errorf("confirm import: %w", err)
		NotifyImportFailure(n, err)
		return ImportResult{}, err
	}
	if !confirmed {
		s.logger.Debug("import declined")
		return ImportResult{Declined: true}, nil
	}
	return s.ApplyImport(items, n)
}

// PrepareImport parses data like ParseImport and reports a failure to n.
// Nothing is reported on success; the caller still owes a confirmation.
func PrepareImport(data []byte, n Notifier) ([]Item, error) {
	items, err := ParseImport(data)
	if err != nil {
		NotifyImportFailure(orDiscard(n), err)
		return nil, err
	}
	return items, nil
}

// ApplyImport replaces the list with confirmed items and reports the outcome to n.
func (s *Store) ApplyImport(items []Item, n Notifier) (ImportResult, error) {
	n = orDiscard(n)
	if err := s.ReplaceAll(items); err != nil {
		s.logger.Warn("import failed", "error", err)
		NotifyImportFailure(n, err)
		return ImportResult{}, err
	}
	n.Notify(ImportSuccessMessage)
	return ImportResult{Imported: len(items)}, nil
}

// NotifyImportFailure reports err to n with the import failure prefix.
func NotifyImportFailure(n Notifier, err error) {
	orDiscard(n).Notify(ImportFailedPrefix + err.Error())
}

func orDiscard(n Notifier) Notifier {
	if n == nil {
		return NotifierFunc(func(string) {})
	}
	return n
}
