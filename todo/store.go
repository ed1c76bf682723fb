package todo

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/CrocodileWoodGordon/todolist/internal/ids"
	internalstrings "github.com/CrocodileWoodGordon/todolist/internal/strings"
)

// DefaultKey is the key-value entry holding the persisted list.
const DefaultKey = "todolist_items"

// KeyValue is the persistence collaborator. Get reports false for a missing key.
type KeyValue interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Prompter is used to ask the user for confirmation.
type Prompter interface {
	// Confirm asks the user a yes/no question and returns true if they say yes.
	Confirm(message string) (bool, error)
}

// StdioPrompter implements Prompter using stdin/stdout.
type StdioPrompter struct {
	In  io.Reader
	Out io.Writer
}

// Confirm asks the user a yes/no question via stdin/stdout.
func (p StdioPrompter) Confirm(message string) (bool, error) {
	in, out := p.In, p.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "%s [y/n]: ", message)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return false, err
	}
	response := internalstrings.TrimSpace(line)
	return response == "y" || response == "Y" || response == "yes" || response == "Yes", nil
}

// Notifier reports the outcome of a user-facing operation.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Notify calls fn(message).
func (fn NotifierFunc) Notify(message string) {
	fn(message)
}

// Downloader receives exported bytes under a suggested file name.
type Downloader interface {
	Download(data []byte, filename string) error
}

// Options configures a Store.
type Options struct {
	// Key is the key-value entry to use. Defaults to DefaultKey.
	Key string

	// Logger receives persistence diagnostics. Defaults to a discarding logger.
	Logger *slog.Logger

	// OnChange is called after every successful mutation, outside the store lock.
	OnChange func()

	// Now overrides the clock used for views and exports.
	Now func() time.Time
}

// Store owns the canonical, insertion-ordered list and mirrors it to a KeyValue.
// All methods are safe for concurrent use; mutations are serialized.
type Store struct {
	mu    sync.Mutex
	items []Item

	kv       KeyValue
	key      string
	logger   *slog.Logger
	onChange func()
	now      func() time.Time
	ids      ids.Sequence
}

// Open constructs a Store backed by kv and loads the persisted list.
func Open(kv KeyValue, opts Options) *Store {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store{
		kv:       kv,
		key:      opts.Key,
		logger:   opts.Logger,
		onChange: opts.OnChange,
		now:      opts.Now,
	}
	s.Load()
	return s
}

// Load replaces the in-memory list with the persisted one. A missing or
// unreadable value leaves the store empty; Load never fails.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = s.readPersisted()
}

func (s *Store) readPersisted() []Item {
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		s.logger.Warn("starting with empty list", "key", s.key, "error", fmt.Errorf("%w: %v", ErrPersistenceRead, err))
		return []Item{}
	}
	if !ok {
		return []Item{}
	}

	value, err := decodeJSON([]byte(raw))
	if err != nil {
		s.logger.Warn("starting with empty list", "key", s.key, "error", fmt.Errorf("%w: %v", ErrPersistenceRead, err))
		return []Item{}
	}
	elements, ok := value.([]any)
	if !ok {
		s.logger.Warn("starting with empty list", "key", s.key, "error", fmt.Errorf("%w: not an array", ErrPersistenceRead))
		return []Item{}
	}

	items := make([]Item, 0, len(elements))
	for i, element := range elements {
		item, err := itemFromElement(element)
		if errors.Is(err, ErrInvalidDeadline) {
			s.logger.Warn("dropping stored deadline", "index", i, "error", err)
			err = nil
		}
		if err != nil {
			s.logger.Warn("skipping stored item", "index", i, "error", err)
			continue
		}
		item.ID = s.ids.Next(item.Name, idTaken(items))
		items = append(items, item)
	}
	s.logger.Debug("loaded todos", "key", s.key, "count", len(items))
	return items
}

// commit persists next and installs it. On failure the previous list is kept.
// The caller must hold s.mu.
func (s *Store) commit(next []Item) error {
	data, err := encodeJSON(next, false)
	if err != nil {
		return fmt.Errorf("encode todos: %w", err)
	}
	if err := s.kv.Set(s.key, string(data)); err != nil {
		return fmt.Errorf("persist todos: %w", err)
	}
	s.items = next
	s.logger.Debug("persisted todos", "key", s.key, "count", len(next))
	return nil
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Add appends a new incomplete item. The name is trimmed and must not be
// blank; a non-blank deadline must be a YYYY-MM-DD day. Priority accepts
// anything NormalizePriority does.
func (s *Store) Add(name, deadline string, priority any) (Item, error) {
	trimmed, err := ValidateName(name)
	if err != nil {
		return Item{}, err
	}
	day, err := ParseDeadline(internalstrings.TrimSpace(deadline))
	if err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	item := Item{
		ID:       s.ids.Next(trimmed, idTaken(s.items)),
		Name:     trimmed,
		Deadline: day,
		Priority: NormalizePriority(priority),
	}
	next := make([]Item, len(s.items), len(s.items)+1)
	copy(next, s.items)
	next = append(next, item)
	err = s.commit(next)
	s.mu.Unlock()
	if err != nil {
		return Item{}, err
	}

	s.changed()
	return item, nil
}

// ResolveDisplayIndex returns the ID of the item at index in display order.
func (s *Store) ResolveDisplayIndex(index int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.resolveLocked(index)
}

func (s *Store) resolveLocked(index int) (string, bool) {
	if index < 0 || index >= len(s.items) {
		return "", false
	}
	return Order(s.items)[index].ID, true
}

// idTaken reports IDs already used by items.
func idTaken(items []Item) func(string) bool {
	return func(id string) bool {
		for i := range items {
			if items[i].ID == id {
				return true
			}
		}
		return false
	}
}

func (s *Store) positionLocked(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// DeleteAt removes the item at index in display order. It reports false,
// without error or change, when index does not resolve to an item.
func (s *Store) DeleteAt(index int) (Item, bool, error) {
	s.mu.Lock()
	id, ok := s.resolveLocked(index)
	if !ok {
		s.mu.Unlock()
		return Item{}, false, nil
	}
	item, err := s.deleteLocked(id)
	s.mu.Unlock()
	if err != nil {
		return Item{}, false, err
	}

	s.changed()
	return item, true, nil
}

// Delete removes the item with the given ID.
func (s *Store) Delete(id string) (Item, error) {
	s.mu.Lock()
	item, err := s.deleteLocked(id)
	s.mu.Unlock()
	if err != nil {
		return Item{}, err
	}

	s.changed()
	return item, nil
}

func (s *Store) deleteLocked(id string) (Item, error) {
	pos := s.positionLocked(id)
	if pos < 0 {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	removed := s.items[pos]
	next := make([]Item, 0, len(s.items)-1)
	next = append(next, s.items[:pos]...)
	next = append(next, s.items[pos+1:]...)
	if err := s.commit(next); err != nil {
		return Item{}, err
	}
	return removed, nil
}

// ToggleAt flips the completed flag of the item at index in display order.
// It reports false, without error or change, when index does not resolve.
func (s *Store) ToggleAt(index int) (Item, bool, error) {
	s.mu.Lock()
	id, ok := s.resolveLocked(index)
	if !ok {
		s.mu.Unlock()
		return Item{}, false, nil
	}
	item, err := s.toggleLocked(id)
	s.mu.Unlock()
	if err != nil {
		return Item{}, false, err
	}

	s.changed()
	return item, true, nil
}

// Toggle flips the completed flag of the item with the given ID and returns
// the updated item.
func (s *Store) Toggle(id string) (Item, error) {
	s.mu.Lock()
	item, err := s.toggleLocked(id)
	s.mu.Unlock()
	if err != nil {
		return Item{}, err
	}

	s.changed()
	return item, nil
}

func (s *Store) toggleLocked(id string) (Item, error) {
	pos := s.positionLocked(id)
	if pos < 0 {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	next := make([]Item, len(s.items))
	copy(next, s.items)
	next[pos].Completed = !next[pos].Completed
	if err := s.commit(next); err != nil {
		return Item{}, err
	}
	return next[pos], nil
}

// ReplaceAll swaps the whole list for items, in the given order.
// Each item gets a fresh ID and a clamped priority.
func (s *Store) ReplaceAll(items []Item) error {
	s.mu.Lock()
	next := make([]Item, len(items))
	for i, item := range items {
		item.ID = s.ids.Next(item.Name, idTaken(next[:i]))
		item.Priority = ClampPriority(item.Priority)
		next[i] = item
	}
	err := s.commit(next)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.changed()
	return nil
}

// Items returns a copy of the canonical list in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

// Get returns the item with the given ID.
func (s *Store) Get(id string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := s.positionLocked(id)
	if pos < 0 {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return s.items[pos], nil
}

// View returns the display rows as of now.
func (s *Store) View(now time.Time) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return BuildView(s.items, now)
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// Now returns the store's clock reading.
func (s *Store) Now() time.Time {
	return s.now()
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return value, nil
}

func encodeJSON(value any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// itemFromElement maps one raw JSON element onto an Item. Name must be text.
// Falsy deadlines are absent and text deadlines are kept verbatim. Priority is
// normalized and completed is coerced by truthiness. A truthy deadline that is
// not text returns the item without it along with an ErrInvalidDeadline error;
// callers treat that as a warning.
func itemFromElement(element any) (Item, error) {
	obj, ok := element.(map[string]any)
	if !ok {
		return Item{}, fmt.Errorf("%w: item is not an object", ErrValidation)
	}
	name, ok := obj["name"].(string)
	if !ok {
		return Item{}, fmt.Errorf("%w: name must be text", ErrValidation)
	}

	priority := NormalizePriority(obj["priority"])
	if err := ValidatePriority(priority); err != nil {
		// Unreachable while NormalizePriority clamps; kept as a guard.
		return Item{}, err
	}

	item := Item{
		Name:      name,
		Priority:  priority,
		Completed: truthy(obj["completed"]),
	}
	deadline, err := deadlineFromElement(obj["deadline"])
	if err != nil {
		// The rest of the item is still usable.
		return item, err
	}
	item.Deadline = deadline
	return item, nil
}

func deadlineFromElement(value any) (Deadline, error) {
	if !truthy(value) {
		return NoDeadline, nil
	}
	text, ok := value.(string)
	if !ok {
		return NoDeadline, fmt.Errorf("%w: must be text or null, got %v", ErrInvalidDeadline, value)
	}
	return Deadline(text), nil
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}
