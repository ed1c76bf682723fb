package todo

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestOpen_LoadDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name  string
		value *string
		err   error
	}{
		{name: "absent"},
		{name: "malformed", value: ptr("{not json")},
		{name: "object", value: ptr(`{"items": []}`)},
		{name: "string", value: ptr(`"hello"`)},
		{name: "null", value: ptr(`null`)},
		{name: "trailing data", value: ptr(`[] []`)},
		{name: "read error", err: errors.New("disk gone")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newFakeKV()
			if tt.value != nil {
				kv.values[DefaultKey] = *tt.value
			}
			kv.getErr = tt.err

			store, _ := newTestStore(t, kv)
			if store.Len() != 0 {
				t.Fatalf("expected empty store, got %d items", store.Len())
			}
		})
	}
}

func ptr(s string) *string {
	return &s
}

func TestOpen_LoadsPersistedItems(t *testing.T) {
	kv := newFakeKV()
	kv.values[DefaultKey] = `[
		{"name": "a", "deadline": "2024-06-20", "priority": 5, "completed": true},
		{"name": "b", "deadline": null, "priority": 999},
		{"priority": 3},
		"junk",
		{"name": "c", "deadline": 20240101, "priority": "High"},
		{"name": "d", "deadline": "soon", "priority": 9}
	]`

	store, _ := newTestStore(t, kv)
	items := store.Items()
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d: %+v", len(items), items)
	}
	if items[0].Name != "a" || items[0].Deadline != "2024-06-20" || items[0].Priority != 5 || !items[0].Completed {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Name != "b" || items[1].Deadline.IsSet() || items[1].Priority != 256 {
		t.Fatalf("unexpected second item: %+v", items[1])
	}
	if items[2].Name != "c" || items[2].Deadline.IsSet() || items[2].Priority != 1 {
		t.Fatalf("expected non-text deadline to be dropped: %+v", items[2])
	}
	if items[3].Deadline != "soon" {
		t.Fatalf("expected text deadline to be kept verbatim: %+v", items[3])
	}
	for _, item := range items {
		if item.ID == "" {
			t.Fatalf("expected loaded item to get an ID: %+v", item)
		}
	}
}

func TestOpen_CustomKey(t *testing.T) {
	kv := newFakeKV()
	kv.values["other"] = `[{"name": "x", "priority": 1}]`

	store := Open(kv, Options{Key: "other"})
	if store.Len() != 1 {
		t.Fatalf("expected 1 item under custom key, got %d", store.Len())
	}
	mustAdd(t, store, "y", "", 1)
	if _, ok := kv.values[DefaultKey]; ok {
		t.Fatal("expected default key to stay untouched")
	}
}

func TestAdd_TrimsAndNormalizes(t *testing.T) {
	kv := newFakeKV()
	store, changes := newTestStore(t, kv)

	item := mustAdd(t, store, "  Buy milk  ", "", "High")

	if item.Name != "Buy milk" || item.Priority != 1 || item.Completed || item.Deadline.IsSet() {
		t.Fatalf("unexpected item: %+v", item)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 item, got %d", store.Len())
	}
	if *changes != 1 {
		t.Fatalf("expected one change notification, got %d", *changes)
	}

	var persisted []map[string]any
	if err := json.Unmarshal([]byte(kv.values[DefaultKey]), &persisted); err != nil {
		t.Fatalf("persisted value is not JSON: %v", err)
	}
	want := map[string]any{"name": "Buy milk", "deadline": nil, "priority": float64(1), "completed": false}
	if len(persisted) != 1 || len(persisted[0]) != len(want) {
		t.Fatalf("unexpected persisted value: %s", kv.values[DefaultKey])
	}
	for key, value := range want {
		if persisted[0][key] != value {
			t.Fatalf("persisted %s = %v, want %v", key, persisted[0][key], value)
		}
	}
}

func TestAdd_AppendsInInsertionOrder(t *testing.T) {
	store, _ := newTestStore(t, newFakeKV())

	mustAdd(t, store, "first", "", 200)
	mustAdd(t, store, "second", "2024-01-01", 1)

	assertNames(t, store.Items(), "first", "second")
}

func TestAdd_RejectsBlankName(t *testing.T) {
	kv := newFakeKV()
	store, changes := newTestStore(t, kv)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := store.Add(name, "", 5)
		if !errors.Is(err, ErrEmptyName) || !errors.Is(err, ErrValidation) {
			t.Fatalf("Add(%q) = %v, want ErrEmptyName", name, err)
		}
	}
	if store.Len() != 0 || kv.sets != 0 || *changes != 0 {
		t.Fatalf("expected no mutation, got len=%d sets=%d changes=%d", store.Len(), kv.sets, *changes)
	}
}

func TestAdd_RejectsInvalidDeadline(t *testing.T) {
	store, _ := newTestStore(t, newFakeKV())

	for _, deadline := range []string{"tomorrow", "2024-13-01", "2024-2-01", "2024-02-30"} {
		_, err := store.Add("x", deadline, 5)
		if !errors.Is(err, ErrInvalidDeadline) {
			t.Fatalf("Add deadline %q = %v, want ErrInvalidDeadline", deadline, err)
		}
	}
	if store.Len() != 0 {
		t.Fatalf("expected no items, got %d", store.Len())
	}
}

func TestAdd_PersistFailureLeavesStateUnchanged(t *testing.T) {
	kv := newFakeKV()
	store, changes := newTestStore(t, kv)
	mustAdd(t, store, "keep", "", 5)

	kv.failSet = true
	_, err := store.Add("lost", "", 5)
	if !errors.Is(err, errSetFailed) {
		t.Fatalf("expected set failure, got %v", err)
	}
	assertNames(t, store.Items(), "keep")
	if *changes != 1 {
		t.Fatalf("expected no change notification for failed add, got %d", *changes)
	}
}

func TestDeleteAt_UsesDisplayOrder(t *testing.T) {
	store, _ := newTestStore(t, newFakeKV())
	mustAdd(t, store, "A", "", 200)
	mustAdd(t, store, "B", "", 10)

	removed, ok, err := store.DeleteAt(0)
	if err != nil || !ok {
		t.Fatalf("DeleteAt(0) = %v, %v", ok, err)
	}
	if removed.Name != "B" {
		t.Fatalf("expected B to be removed, got %q", removed.Name)
	}
	assertNames(t, store.Items(), "A")
}

func TestDeleteAt_DuplicateItems(t *testing.T) {
	store, _ := newTestStore(t, newFakeKV())
	first := mustAdd(t, store, "same", "", 5)
	mustAdd(t, store, "same", "", 5)

	removed, ok, err := store.DeleteAt(0)
	if err != nil || !ok {
		t.Fatalf("DeleteAt(0) = %v, %v", ok, err)
	}
	if removed.ID != first.ID {
		t.Fatalf("expected first duplicate to be removed")
	}
	if store.Len() != 1 {
		t.Fatalf("expected exactly one item removed, got len %d", store.Len())
	}
}

func TestDeleteAt_OutOfRangeIsNoop(t *testing.T) {
	kv := newFakeKV()
	store, changes := newTestStore(t, kv)
	mustAdd(t, store, "A", "", 5)
	sets := kv.sets

	for _, index := range []int{-1, 1, 100} {
		_, ok, err := store.DeleteAt(index)
		if ok || err != nil {
			t.Fatalf("DeleteAt(%d) = %v, %v; want silent no-op", index, ok, err)
		}
	}
	if store.Len() != 1 || kv.sets != sets || *changes != 1 {
		t.Fatal("expected no mutation for out-of-range delete")
	}
}

func TestToggleAt_UsesDisplayOrder(t *testing.T) {
	store, changes := newTestStore(t, newFakeKV())
	mustAdd(t, store, "A", "", 200)
	mustAdd(t, store, "B", "", 10)

	toggled, ok, err := store.ToggleAt(0)
	if err != nil || !ok {
		t.Fatalf("ToggleAt(0) = %v, %v", ok, err)
	}
	if toggled.Name != "B" || !toggled.Completed {
		t.Fatalf("unexpected toggled item: %+v", toggled)
	}

	items := store.Items()
	if items[0].Completed || !items[1].Completed {
		t.Fatalf("expected only B completed: %+v", items)
	}

	if _, _, err := store.ToggleAt(0); err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if store.Items()[1].Completed {
		t.Fatal("expected toggle to flip back")
	}
	if *changes != 4 {
		t.Fatalf("expected 4 change notifications, got %d", *changes)
	}
}

func TestToggleAt_OutOfRangeIsNoop(t *testing.T) {
	store, _ := newTestStore(t, newFakeKV())

	if _, ok, err := store.ToggleAt(0); ok || err != nil {
		t.Fatalf("ToggleAt on empty store = %v, %v; want silent no-op", ok, err)
	}
}

func TestToggleAt_PersistFailureRollsBack(t *testing.T) {
	kv := newFakeKV()
	store, _ := newTestStore(t, kv)
	mustAdd(t, store, "A", "", 5)

	kv.failSet = true
	if _, _, err := store.ToggleAt(0); !errors.Is(err, errSetFailed) {
		t.Fatalf("expected set failure, got %v", err)
	}
	if store.Items()[0].Completed {
		t.Fatal("expected toggle to be rolled back")
	}
}

func TestDeleteAndToggleByID(t *testing.T) {
	store, _ := newTestStore(t, newFakeKV())
	a := mustAdd(t, store, "A", "", 5)
	b := mustAdd(t, store, "B", "", 5)

	toggled, err := store.Toggle(b.ID)
	if err != nil || !toggled.Completed {
		t.Fatalf("Toggle(%s) = %+v, %v", b.ID, toggled, err)
	}
	if _, err := store.Delete(a.ID); err != nil {
		t.Fatalf("Delete(%s): %v", a.ID, err)
	}
	if _, err := store.Delete(a.ID); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if _, err := store.Toggle("missing"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	got, err := store.Get(b.ID)
	if err != nil || !got.Completed {
		t.Fatalf("Get(%s) = %+v, %v", b.ID, got, err)
	}
}

func TestResolveDisplayIndex(t *testing.T) {
	store, _ := newTestStore(t, newFakeKV())
	mustAdd(t, store, "A", "", 200)
	b := mustAdd(t, store, "B", "", 10)

	id, ok := store.ResolveDisplayIndex(0)
	if !ok || id != b.ID {
		t.Fatalf("ResolveDisplayIndex(0) = %q, %v; want %q", id, ok, b.ID)
	}
	if _, ok := store.ResolveDisplayIndex(2); ok {
		t.Fatal("expected index 2 not to resolve")
	}
}

func TestReplaceAll(t *testing.T) {
	kv := newFakeKV()
	store, changes := newTestStore(t, kv)
	mustAdd(t, store, "old", "", 5)

	err := store.ReplaceAll([]Item{
		{Name: "new1", Priority: 999},
		{Name: "new2", Deadline: "2024-01-01", Priority: 7, Completed: true},
	})
	if err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	items := store.Items()
	assertNames(t, items, "new1", "new2")
	if items[0].Priority != 256 {
		t.Fatalf("expected clamped priority, got %d", items[0].Priority)
	}
	if items[0].ID == "" || items[0].ID == items[1].ID {
		t.Fatalf("expected distinct IDs, got %q and %q", items[0].ID, items[1].ID)
	}
	if *changes != 2 {
		t.Fatalf("expected 2 change notifications, got %d", *changes)
	}

	reopened, _ := newTestStore(t, kv)
	assertNames(t, reopened.Items(), "new1", "new2")
}

func TestReplaceAll_EmptyPersistsArray(t *testing.T) {
	kv := newFakeKV()
	store, _ := newTestStore(t, kv)
	mustAdd(t, store, "old", "", 5)

	if err := store.ReplaceAll(nil); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if kv.values[DefaultKey] != "[]" {
		t.Fatalf("expected empty array to be persisted, got %q", kv.values[DefaultKey])
	}
}

func TestView(t *testing.T) {
	store, _ := newTestStore(t, newFakeKV())
	mustAdd(t, store, "later", "", 100)
	mustAdd(t, store, "overdue", "2024-06-01", 100)

	view := store.View(store.Now())
	if len(view) != 2 || view[0].Item.Name != "overdue" || !view[0].Expired {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view[1].Bucket != BucketMedium {
		t.Fatalf("expected medium bucket, got %q", view[1].Bucket)
	}
}

func TestStdioPrompter(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"yes\n", true},
		{"Yes", true},
		{"n\n", false},
		{"\n", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		p := StdioPrompter{In: strings.NewReader(tt.input), Out: &out}
		got, err := p.Confirm("Continue?")
		if err != nil {
			t.Fatalf("Confirm(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if out.String() != "Continue? [y/n]: " {
			t.Errorf("unexpected prompt %q", out.String())
		}
	}
}
