// Package types models the runtime types of values crossing the
// dynamic-to-native boundary.
//
// A Descriptor stands for one logical runtime type. Descriptors are
// interned: for any logical type there is exactly one *Descriptor in a
// given Interner, so pointer comparison is type equality. The dispatch
// cache and signature equality rely on this identity guarantee.
package types

import "sync"

// Descriptor is a detected runtime type. Construct only via Interner.Intern;
// two descriptors from the same interner are the same logical type iff they
// are the same pointer.
type Descriptor struct {
	name  string
	index int
}

// Name returns the canonical type name.
func (d *Descriptor) Name() string { return d.name }

// Index returns the descriptor's slot in its interner's arena.
func (d *Descriptor) Index() int { return d.index }

func (d *Descriptor) String() string { return d.name }

// Interner is a canonicalization table for descriptors. It is safe for
// concurrent use; Intern for the same name always returns the same pointer.
type Interner struct {
	mu     sync.Mutex
	byName map[string]*Descriptor
	arena  []*Descriptor
}

func NewInterner() *Interner {
	return &Interner{byName: make(map[string]*Descriptor)}
}

// Intern returns the unique descriptor for name, creating it on first use.
func (in *Interner) Intern(name string) *Descriptor {
	in.mu.Lock()
	defer in.mu.Unlock()
	if d, ok := in.byName[name]; ok {
		return d
	}
	d := &Descriptor{name: name, index: len(in.arena)}
	in.byName[name] = d
	in.arena = append(in.arena, d)
	return d
}

// Lookup returns the descriptor for name without creating one.
func (in *Interner) Lookup(name string) (*Descriptor, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	d, ok := in.byName[name]
	return d, ok
}

// Len returns the number of interned descriptors.
func (in *Interner) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.arena)
}
