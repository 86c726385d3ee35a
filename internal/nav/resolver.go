package nav

import (
	"strings"
	"sync"
)

// Location is the port to the browser URL fragment. Implementations must not
// reload the page on SetFragment; the fragment-change notification that
// follows is what drives the next load.
type Location interface {
	Fragment() string
	SetFragment(fragment string)
}

// Resolver derives navigation keys from a Location and writes them back.
// The Location is the single source of truth; the resolver keeps no copy.
type Resolver struct {
	loc         Location
	defaultPage string
}

// NewResolver creates a Resolver. defaultPage is used whenever the fragment
// carries no page, typically the index filename without its extension.
func NewResolver(loc Location, defaultPage string) *Resolver {
	return &Resolver{loc: loc, defaultPage: defaultPage}
}

// DefaultPage returns the page shown for an empty fragment.
func (r *Resolver) DefaultPage() string { return r.defaultPage }

// ParseCurrentKey reads the current fragment.
func (r *Resolver) ParseCurrentKey() Key {
	return ParseKey(r.loc.Fragment(), r.defaultPage)
}

// WriteKey points the fragment at page, with anchor when non-empty.
func (r *Resolver) WriteKey(page, anchor string) {
	r.loc.SetFragment(Key{Page: page, Anchor: anchor}.Fragment())
}

// WriteAnchor replaces the anchor of the current page. Any anchor already
// in the fragment is dropped first so delimiters never accumulate.
func (r *Resolver) WriteAnchor(anchor string) {
	r.WriteKey(r.ParseCurrentKey().Page, anchor)
}

// MemoryLocation is a Location held in memory. The headless viewer and the
// websocket session both build on it.
type MemoryLocation struct {
	mu       sync.RWMutex
	fragment string
	onSet    func(fragment string)
}

// NewMemoryLocation returns a MemoryLocation starting at fragment. onSet, if
// non-nil, is called after every SetFragment.
func NewMemoryLocation(fragment string, onSet func(string)) *MemoryLocation {
	return &MemoryLocation{fragment: strings.TrimPrefix(fragment, "#"), onSet: onSet}
}

func (l *MemoryLocation) Fragment() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fragment
}

func (l *MemoryLocation) SetFragment(fragment string) {
	fragment = strings.TrimPrefix(fragment, "#")
	l.mu.Lock()
	l.fragment = fragment
	l.mu.Unlock()
	if l.onSet != nil {
		l.onSet(fragment)
	}
}

// Sync records a fragment reported by the browser without echoing it back.
func (l *MemoryLocation) Sync(fragment string) {
	l.mu.Lock()
	l.fragment = strings.TrimPrefix(fragment, "#")
	l.mu.Unlock()
}
