package todo

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEncodeExport(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 30, 45, 123456789, time.FixedZone("x", 2*60*60))
	items := []Item{
		{ID: "hidden", Name: "a <b>", Deadline: "2024-07-01", Priority: 3},
		{Name: "c", Priority: 200, Completed: true},
	}

	data, err := EncodeExport(items, now)
	if err != nil {
		t.Fatalf("EncodeExport: %v", err)
	}

	want := `{
  "version": "1.0",
  "exportedAt": "2024-06-15T10:30:45.123Z",
  "items": [
    {
      "name": "a <b>",
      "deadline": "2024-07-01",
      "priority": 3,
      "completed": false
    },
    {
      "name": "c",
      "deadline": null,
      "priority": 200,
      "completed": true
    }
  ]
}`
	if string(data) != want {
		t.Fatalf("unexpected export:\n%s\nwant:\n%s", data, want)
	}
}

func TestEncodeExport_Empty(t *testing.T) {
	data, err := EncodeExport(nil, testNow)
	if err != nil {
		t.Fatalf("EncodeExport: %v", err)
	}
	if !strings.Contains(string(data), `"items": []`) {
		t.Fatalf("expected empty items array, got %s", data)
	}
}

func TestExportFilename(t *testing.T) {
	now := time.UnixMilli(1718454645123)
	if got := ExportFilename(now); got != "todolist-export-1718454645123.json" {
		t.Fatalf("unexpected filename %q", got)
	}
}

func TestStoreExport(t *testing.T) {
	store, _ := newTestStore(t, newFakeKV())
	mustAdd(t, store, "A", "", 5)

	var d recordingDownloader
	filename, err := store.Export(&d, testNow)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filename != ExportFilename(testNow) || d.filename != filename {
		t.Fatalf("unexpected filename %q / %q", filename, d.filename)
	}

	var envelope Envelope
	if err := json.Unmarshal(d.data, &envelope); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if envelope.Version != ExportVersion || len(envelope.Items) != 1 || envelope.Items[0].Name != "A" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
}

func TestStoreExport_DownloadError(t *testing.T) {
	store, _ := newTestStore(t, newFakeKV())
	d := recordingDownloader{err: errors.New("disk full")}

	if _, err := store.Export(&d, testNow); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected download error, got %v", err)
	}
}

func TestParseImport_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"malformed", `{"items": [`, ErrParse},
		{"empty", ``, ErrParse},
		{"trailing", `{"items": []} x`, ErrParse},
		{"array root", `[]`, ErrFormat},
		{"null root", `null`, ErrFormat},
		{"missing items", `{"version": "1.0"}`, ErrFormat},
		{"items object", `{"items": {}}`, ErrFormat},
		{"items string", `{"items": "nope"}`, ErrFormat},
		{"future version", `{"version": "2.0", "items": []}`, ErrFormat},
		{"numeric version", `{"version": 1, "items": []}`, ErrFormat},
		{"missing name", `{"items": [{"priority": 1}]}`, ErrValidation},
		{"numeric name", `{"items": [{"name": 5}]}`, ErrValidation},
		{"non object item", `{"items": [1]}`, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseImport([]byte(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseImport(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestParseImport_Mapping(t *testing.T) {
	input := `{
		"items": [
			{"name": "a", "deadline": "", "priority": "Low", "completed": 1},
			{"name": "b", "deadline": null, "priority": "x", "completed": "yes"},
			{"name": "c", "deadline": false, "priority": -4},
			{"name": "d", "deadline": "2024-02-29", "priority": 12.7, "completed": false},
			{"name": "", "priority": 1e3},
			{"name": "e", "deadline": "2024/01/05", "priority": 5},
			{"name": "f", "deadline": 20240101, "priority": 6},
			{"name": "g", "deadline": true, "priority": 7}
		]
	}`

	items, err := ParseImport([]byte(input))
	if err != nil {
		t.Fatalf("ParseImport: %v", err)
	}

	want := []Item{
		{Name: "a", Priority: 3, Completed: true},
		{Name: "b", Priority: PriorityDefault, Completed: true},
		{Name: "c", Priority: 1},
		{Name: "d", Deadline: "2024-02-29", Priority: 12},
		{Name: "", Priority: 256},
		{Name: "e", Deadline: "2024/01/05", Priority: 5},
		{Name: "f", Priority: 6},
		{Name: "g", Priority: 7},
	}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, items[i], want[i])
		}
	}
}

func TestParseImport_AcceptsCompatibleVersions(t *testing.T) {
	for _, input := range []string{
		`{"items": []}`,
		`{"version": "1.0", "items": []}`,
		`{"version": "1.7", "items": []}`,
		`{"version": "1", "items": []}`,
	} {
		if _, err := ParseImport([]byte(input)); err != nil {
			t.Errorf("ParseImport(%s): %v", input, err)
		}
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	items := []Item{
		{Name: "one", Deadline: "2024-01-02", Priority: 1},
		{Name: "two", Priority: 256, Completed: true},
		{Name: "três 🚀", Priority: 128},
	}

	data, err := EncodeExport(items, testNow)
	if err != nil {
		t.Fatalf("EncodeExport: %v", err)
	}
	parsed, err := ParseImport(data)
	if err != nil {
		t.Fatalf("ParseImport: %v", err)
	}

	store, _ := newTestStore(t, newFakeKV())
	if err := store.ReplaceAll(parsed); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	got := store.Items()
	for i := range items {
		got[i].ID = ""
		if got[i] != items[i] {
			t.Errorf("item %d = %+v, want %+v", i, got[i], items[i])
		}
	}
}

func TestImport_Confirmed(t *testing.T) {
	store, changes := newTestStore(t, newFakeKV())
	mustAdd(t, store, "old", "", 5)

	prompter := &mockPrompter{response: true}
	notifier := &recordingNotifier{}
	result, err := store.Import([]byte(`{"version":"1.0","items":[{"name":"new","priority":"Medium"}]}`), prompter, notifier)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Imported != 1 || result.Declined {
		t.Fatalf("unexpected result %+v", result)
	}
	if prompter.message != ImportConfirmMessage {
		t.Fatalf("unexpected confirmation message %q", prompter.message)
	}
	if len(notifier.messages) != 1 || notifier.messages[0] != ImportSuccessMessage {
		t.Fatalf("unexpected notifications %v", notifier.messages)
	}
	items := store.Items()
	if len(items) != 1 || items[0].Name != "new" || items[0].Priority != 2 {
		t.Fatalf("unexpected items %+v", items)
	}
	if *changes != 2 {
		t.Fatalf("expected 2 change notifications, got %d", *changes)
	}
}

func TestImport_Declined(t *testing.T) {
	store, _ := newTestStore(t, newFakeKV())
	mustAdd(t, store, "old", "", 5)

	prompter := &mockPrompter{response: false}
	notifier := &recordingNotifier{}
	result, err := store.Import([]byte(`{"items":[]}`), prompter, notifier)
	if err != nil {
		t.Fatalf("expected no error on decline, got %v", err)
	}
	if !result.Declined {
		t.Fatalf("expected declined result, got %+v", result)
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("expected silent decline, got %v", notifier.messages)
	}
	assertNames(t, store.Items(), "old")
}

func TestImport_FailuresLeaveStateUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"parse", `{`, ErrParse},
		{"format", `{"items": 3}`, ErrFormat},
		{"validation", `{"items": [{"priority": 3}]}`, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newFakeKV()
			store, _ := newTestStore(t, kv)
			mustAdd(t, store, "old", "", 5)
			before := kv.values[DefaultKey]

			prompter := &mockPrompter{response: true}
			notifier := &recordingNotifier{}
			_, err := store.Import([]byte(tt.input), prompter, notifier)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if prompter.called {
				t.Fatal("expected no confirmation for invalid payload")
			}
			if len(notifier.messages) != 1 || !strings.HasPrefix(notifier.messages[0], ImportFailedPrefix) {
				t.Fatalf("expected one failure notification, got %v", notifier.messages)
			}
			if kv.values[DefaultKey] != before {
				t.Fatal("expected persisted value to be unchanged")
			}
			assertNames(t, store.Items(), "old")
		})
	}
}

func TestImport_PromptError(t *testing.T) {
	store, _ := newTestStore(t, newFakeKV())
	prompter := &mockPrompter{err: errors.New("no tty")}
	notifier := &recordingNotifier{}

	_, err := store.Import([]byte(`{"items":[]}`), prompter, notifier)
	if err == nil || len(notifier.messages) != 1 {
		t.Fatalf("expected reported prompt error, got %v / %v", err, notifier.messages)
	}
}

func TestImport_PersistFailure(t *testing.T) {
	kv := newFakeKV()
	store, _ := newTestStore(t, kv)
	mustAdd(t, store, "old", "", 5)
	kv.failSet = true

	notifier := &recordingNotifier{}
	_, err := store.Import([]byte(`{"items":[{"name":"new"}]}`), &mockPrompter{response: true}, notifier)
	if !errors.Is(err, errSetFailed) {
		t.Fatalf("expected set failure, got %v", err)
	}
	if len(notifier.messages) != 1 || !strings.HasPrefix(notifier.messages[0], ImportFailedPrefix) {
		t.Fatalf("expected one failure notification, got %v", notifier.messages)
	}
	assertNames(t, store.Items(), "old")
}

func TestPrepareAndApplyImport(t *testing.T) {
	store, _ := newTestStore(t, newFakeKV())
	mustAdd(t, store, "old", "", 5)

	notifier := &recordingNotifier{}
	items, err := PrepareImport([]byte(`{"items":[{"name":"new","deadline":"next week"}]}`), notifier)
	if err != nil {
		t.Fatalf("PrepareImport: %v", err)
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("expected no notification before confirmation, got %v", notifier.messages)
	}
	assertNames(t, store.Items(), "old")

	result, err := store.ApplyImport(items, notifier)
	if err != nil {
		t.Fatalf("ApplyImport: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("expected 1 imported, got %d", result.Imported)
	}
	if len(notifier.messages) != 1 || notifier.messages[0] != ImportSuccessMessage {
		t.Fatalf("expected one success notification, got %v", notifier.messages)
	}
	if got := store.Items()[0].Deadline; got != "next week" {
		t.Errorf("expected deadline kept verbatim, got %q", got)
	}
}

func TestPrepareImport_ReportsFailureOnce(t *testing.T) {
	notifier := &recordingNotifier{}
	if _, err := PrepareImport([]byte(`{"items": [`), notifier); !errors.Is(err, ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if len(notifier.messages) != 1 || !strings.HasPrefix(notifier.messages[0], ImportFailedPrefix) {
		t.Fatalf("expected one failure notification, got %v", notifier.messages)
	}

	if _, err := PrepareImport([]byte(`{"items": [`), nil); err == nil {
		t.Fatal("expected error with a nil notifier")
	}
}

func TestCheckImportFilename(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"export.json", true},
		{"/tmp/dir.d/export.json", true},
		{"export.JSON", false},
		{"export.json.bak", false},
		{"export", false},
	}

	for _, tt := range tests {
		err := CheckImportFilename(tt.name)
		if tt.ok && err != nil {
			t.Errorf("CheckImportFilename(%q) unexpected error: %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrNotJSONFile) {
			t.Errorf("CheckImportFilename(%q) = %v, want ErrNotJSONFile", tt.name, err)
		}
	}
}

func TestReadImportFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todos.json")
	if err := os.WriteFile(path, []byte(`{"items":[]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := ReadImportFile(context.Background(), path)
	if err != nil || string(data) != `{"items":[]}` {
		t.Fatalf("ReadImportFile = %q, %v", data, err)
	}

	if _, err := ReadImportFile(context.Background(), filepath.Join(dir, "todos.txt")); !errors.Is(err, ErrNotJSONFile) {
		t.Fatalf("expected ErrNotJSONFile, got %v", err)
	}
	if _, err := ReadImportFile(context.Background(), filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ReadImportFile(ctx, path); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
