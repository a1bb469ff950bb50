package scan

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/wbrozek/betrayal/internal/memproc"
	"github.com/wbrozek/betrayal/internal/scalar"
)

// Engine is the scan engine (spec.md C4): one candidate set, one cached
// region snapshot, one PID, parameterized by exactly one scalar Kind.
// It is safe for concurrent use: each method holds Engine's lock for the
// duration of that one call, so the REPL's shared session and background
// "keep writing" workers can share one Engine.
type Engine[T any] struct {
	Kind scalar.Kind[T]
	PID  int

	mu      sync.Mutex
	set     *Set[T]
	regions []memproc.Region
}

// New constructs an empty-candidate-set engine for pid under kind.
func New[T any](kind scalar.Kind[T], pid int) *Engine[T] {
	return &Engine[T]{Kind: kind, PID: pid, set: NewSet[T]()}
}

// Len reports the current candidate count.
func (e *Engine[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.set.Len()
}

// Candidates returns a snapshot of the current candidate set, address-ordered.
func (e *Engine[T]) Candidates() []Candidate[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.set.Slice()
}

// updateRegions re-reads the process's memory map. Must be called with e.mu held.
func (e *Engine[T]) updateRegions() error {
	regions, err := memproc.Snapshot(e.PID)
	if err != nil {
		return err
	}
	e.regions = regions
	return nil
}

// Refresh re-reads each candidate address; candidates whose re-read fails
// (stale address) are dropped silently, matching spec.md §7's
// "per-candidate refresh errors drop that candidate; no user-visible
// error" policy.
func (e *Engine[T]) Refresh() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.refreshLocked()
}

func (e *Engine[T]) refreshLocked() error {
	stale := e.set.Slice()
	next := NewSet[T]()
	for _, c := range stale {
		updated, err := e.readOne(c.Address)
		if err != nil {
			continue
		}
		next.Put(updated)
	}
	e.set = next
	return nil
}

// readOne reads and decodes a single value at address, tagging it with
// the AddressInfo of the region it falls in.
func (e *Engine[T]) readOne(address uintptr) (Candidate[T], error) {
	info, ok := e.infoAt(address)
	if !ok {
		return Candidate[T]{}, fmt.Errorf("scan: %#x: %w", address, memproc.ErrPartialRead)
	}
	raw, err := memproc.Read(e.PID, address, e.Kind.Size())
	if err != nil {
		return Candidate[T]{}, err
	}
	v, ok := e.Kind.DecodeAt(raw, 0)
	if !ok {
		return Candidate[T]{}, fmt.Errorf("scan: %#x: %w", address, memproc.ErrPartialRead)
	}
	return Candidate[T]{Info: info, Address: address, Value: v}, nil
}

func (e *Engine[T]) infoAt(address uintptr) (memproc.AddressInfo, bool) {
	for _, r := range e.regions {
		if r.Contains(address) {
			return memproc.InfoForRegion(r), true
		}
	}
	return memproc.AddressInfo{}, false
}

// AddAddress adds a single address as a candidate, resolving its current
// value and AddressInfo from the cached region snapshot. The cache is
// filled by a full-scan Apply; if it is still empty, it is filled here.
func (e *Engine[T]) AddAddress(address uintptr) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.regions) == 0 {
		if err := e.updateRegions(); err != nil {
			return err
		}
	}
	c, err := e.readOne(address)
	if err != nil {
		return err
	}
	e.set.Put(c)
	return nil
}

// AddAddressRange adds every address in the half-open range [start, end)
// as a candidate and then refreshes the set, so each one ends up with its
// current value and the AddressInfo of its own region; addresses that
// cannot be read are dropped. start itself must lie in a cached region.
func (e *Engine[T]) AddAddressRange(start, end uintptr) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.regions) == 0 {
		if err := e.updateRegions(); err != nil {
			return err
		}
	}
	info, ok := e.infoAt(start)
	if !ok {
		return fmt.Errorf("scan: %#x: %w", start, memproc.ErrPartialRead)
	}
	for a := start; a < end; a++ {
		var v T
		e.set.Put(Candidate[T]{Info: info, Address: a, Value: v})
	}
	return e.refreshLocked()
}

// ErrNoSuchAddress is returned by Write when the target address is not a
// current candidate.
var ErrNoSuchAddress = errors.New("no such address")

// Write writes value at address (which must be a current candidate key),
// then refreshes the whole set, per spec.md §4.4.
func (e *Engine[T]) Write(address uintptr, value T) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.set.Get(address); !ok {
		return fmt.Errorf("scan: write %#x: %w: %w", address, memproc.ErrBadWrite, ErrNoSuchAddress)
	}
	if err := memproc.Write(e.PID, address, e.Kind.Encode(value)); err != nil {
		return err
	}
	return e.refreshLocked()
}

// Apply produces the next candidate set from filter f: a full scan if
// the set is empty or f is Any, otherwise a refinement against the
// current set, per spec.md §4.4.
func (e *Engine[T]) Apply(f Filter[T]) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.set.Len() == 0 || f.Kind == KindAny {
		return e.fullScanLocked(f)
	}
	return e.refineLocked(f)
}

func (e *Engine[T]) refineLocked(f Filter[T]) error {
	previous := e.set.Clone()
	if err := e.refreshLocked(); err != nil {
		return err
	}
	next := NewSet[T]()
	e.set.Each(func(c Candidate[T]) bool {
		if Matches(e.Kind, f, c, previous) {
			next.Put(c)
		}
		return true
	})
	e.set = next
	return nil
}

func (e *Engine[T]) fullScanLocked(f Filter[T]) error {
	if err := e.updateRegions(); err != nil {
		return err
	}

	regions := dedupRegions(e.regions)
	if lo, hi, restricted := f.RestrictsRegions(); restricted {
		filtered := regions[:0:0]
		for _, r := range regions {
			if r.Ceiling > lo && r.Base <= hi {
				filtered = append(filtered, r)
			}
		}
		regions = filtered
	}

	empty := NewSet[T]()
	results := NewSet[T]()
	var mu sync.Mutex

	jobs := make(chan memproc.Region)
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for r := range jobs {
				if !r.Readable {
					continue
				}
				raw, err := memproc.Read(e.PID, r.Base, int(r.Size()))
				if err != nil {
					// Per-region scan errors are swallowed: spec.md §7.
					continue
				}
				info := memproc.InfoForRegion(r)
				cands := scalarCandidates(e.Kind, raw, r.Base)
				mu.Lock()
				for _, cv := range cands {
					c := Candidate[T]{Info: info, Address: cv.Address, Value: cv.Value}
					if Matches(e.Kind, f, c, empty) {
						results.Put(c)
					}
				}
				mu.Unlock()
			}
		}()
	}
	for _, r := range regions {
		jobs <- r
	}
	close(jobs)
	wg.Wait()

	e.set = results
	return nil
}

func scalarCandidates[T any](k scalar.Kind[T], b []byte, base uintptr) []scalar.Candidate[T] {
	return scalar.Candidates(k, b, base)
}

// dedupRegions drops enumerator rows sharing a base or ceiling with an
// already-kept row, so repeated /proc/<pid>/maps entries for a region
// split across sub-entries do not double-count, per spec.md §4.4.
func dedupRegions(regions []memproc.Region) []memproc.Region {
	seenBase := make(map[uintptr]bool, len(regions))
	seenCeiling := make(map[uintptr]bool, len(regions))
	out := make([]memproc.Region, 0, len(regions))
	for _, r := range regions {
		if seenBase[r.Base] || seenCeiling[r.Ceiling] {
			continue
		}
		seenBase[r.Base] = true
		seenCeiling[r.Ceiling] = true
		out = append(out, r)
	}
	return out
}
