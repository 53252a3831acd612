package templates

import (
	"errors"
	"slices"
	"sync"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

// ErrKeyExists is returned by Reserve for a key that already has an entry.
var ErrKeyExists = errors.New("instantiation key already exists")

type EntryState uint8

const (
	// EntryReserved: the handle exists, its body is being built.
	EntryReserved EntryState = iota
	EntryReady
)

func (s EntryState) String() string {
	if s == EntryReady {
		return "ready"
	}
	return "reserved"
}

// Entry is one cached instantiation.
type Entry struct {
	Key     Key
	Generic GenericID
	Args    []types.Arg
	Handle  Handle
	State   EntryState
	Failed  bool
	Seq     int
	// UseSites lists distinct spans that requested this instantiation.
	UseSites []source.Span
}

// Cache memoises instantiations for one session. Entries are never
// removed.
type Cache struct {
	mu      sync.Mutex
	types   *types.Interner
	entries map[Key]*Entry
	order   []*Entry
}

func NewCache(in *types.Interner) *Cache {
	return &Cache{
		types:   in,
		entries: make(map[Key]*Entry),
	}
}

// EncodeKey builds the key of generic id applied to args.
func (c *Cache) EncodeKey(id GenericID, args []types.Arg) Key {
	return EncodeKey(c.types, id, args)
}

// Lookup returns a copy of the entry for key.
func (c *Cache) Lookup(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Reserve inserts a new entry in the reserved state.
func (c *Cache) Reserve(key Key, generic GenericID, args []types.Arg, h Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return ErrKeyExists
	}
	e := &Entry{
		Key:     key,
		Generic: generic,
		Args:    slices.Clone(args),
		Handle:  h,
		State:   EntryReserved,
		Seq:     len(c.order),
	}
	c.entries[key] = e
	c.order = append(c.order, e)
	return nil
}

// Complete marks the entry ready. The handle may change: alias and
// function bodies fill in their type only once built.
func (c *Cache) Complete(key Key, h Handle, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return
	}
	e.Handle = h
	e.State = EntryReady
	e.Failed = failed
}

// Record remembers that site requested key.
func (c *Cache) Record(key Key, site source.Span) {
	if !site.Valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || slices.Contains(e.UseSites, site) {
		return
	}
	e.UseSites = append(e.UseSites, site)
}

// Entries returns copies of all entries in insertion order.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.order))
	for i, e := range c.order {
		out[i] = *e
		out[i].UseSites = slices.Clone(e.UseSites)
	}
	return out
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}
