// Package scan implements the scan engine and filter evaluator (spec.md
// C4/C5): producing and refining an address-ordered candidate set of
// values satisfying a filter predicate.
package scan

import (
	"github.com/google/btree"

	"github.com/wbrozek/betrayal/internal/memproc"
)

// Candidate is one hypothesis: a value of type T decoded at Address at
// some instant, tagged with the permission info of the region it was
// found in.
type Candidate[T any] struct {
	Info    memproc.AddressInfo
	Address uintptr
	Value   T
}

// Set is an ordered mapping from address to Candidate, backed by a
// b-tree so iteration is always address-ordered regardless of scan
// completion order, mirroring the original's BTreeMap<usize,
// AddressValue<T>>.
type Set[T any] struct {
	tree *btree.BTreeG[Candidate[T]]
}

func byAddress[T any](a, b Candidate[T]) bool { return a.Address < b.Address }

// NewSet returns an empty candidate set.
func NewSet[T any]() *Set[T] {
	return &Set[T]{tree: btree.NewG(32, byAddress[T])}
}

// Len reports the number of candidates currently held.
func (s *Set[T]) Len() int { return s.tree.Len() }

// Get looks up the candidate at address, if present.
func (s *Set[T]) Get(address uintptr) (Candidate[T], bool) {
	return s.tree.Get(Candidate[T]{Address: address})
}

// Put inserts or replaces the candidate at c.Address.
func (s *Set[T]) Put(c Candidate[T]) {
	s.tree.ReplaceOrInsert(c)
}

// Delete removes the candidate at address, if present.
func (s *Set[T]) Delete(address uintptr) {
	s.tree.Delete(Candidate[T]{Address: address})
}

// Each calls fn for every candidate in address order; stop early by
// returning false.
func (s *Set[T]) Each(fn func(Candidate[T]) bool) {
	s.tree.Ascend(func(c Candidate[T]) bool { return fn(c) })
}

// Slice returns every candidate, address-ordered.
func (s *Set[T]) Slice() []Candidate[T] {
	out := make([]Candidate[T], 0, s.Len())
	s.Each(func(c Candidate[T]) bool {
		out = append(out, c)
		return true
	})
	return out
}

// Clone returns a shallow, independent copy (used as the "previous set"
// snapshot that refinement filters like ChangedBy compare against).
func (s *Set[T]) Clone() *Set[T] {
	clone := NewSet[T]()
	s.Each(func(c Candidate[T]) bool {
		clone.Put(c)
		return true
	})
	return clone
}
