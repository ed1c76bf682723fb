package todo

import (
	"errors"
	"testing"
	"time"
)

var errSetFailed = errors.New("set failed")

// fakeKV is an in-memory KeyValue with failure injection.
type fakeKV struct {
	values  map[string]string
	getErr  error
	failSet bool
	sets    int
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: make(map[string]string)}
}

func (kv *fakeKV) Get(key string) (string, bool, error) {
	if kv.getErr != nil {
		return "", false, kv.getErr
	}
	value, ok := kv.values[key]
	return value, ok, nil
}

func (kv *fakeKV) Set(key, value string) error {
	if kv.failSet {
		return errSetFailed
	}
	kv.sets++
	kv.values[key] = value
	return nil
}

// mockPrompter implements Prompter for testing.
type mockPrompter struct {
	response bool
	err      error
	called   bool
	message  string
}

func (m *mockPrompter) Confirm(message string) (bool, error) {
	m.called = true
	m.message = message
	return m.response, m.err
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(message string) {
	n.messages = append(n.messages, message)
}

type recordingDownloader struct {
	data     []byte
	filename string
	err      error
}

func (d *recordingDownloader) Download(data []byte, filename string) error {
	if d.err != nil {
		return d.err
	}
	d.data = data
	d.filename = filename
	return nil
}

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, kv KeyValue) (*Store, *int) {
	t.Helper()

	changes := 0
	store := Open(kv, Options{
		OnChange: func() { changes++ },
		Now:      func() time.Time { return testNow },
	})
	return store, &changes
}

func mustAdd(t *testing.T, s *Store, name, deadline string, priority any) Item {
	t.Helper()

	item, err := s.Add(name, deadline, priority)
	if err != nil {
		t.Fatalf("add %q: %v", name, err)
	}
	return item
}
