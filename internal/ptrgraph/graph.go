// Package ptrgraph implements the pointer-graph builder (spec.md C6):
// recursive, bounded, parallel backward-chain discovery of addresses
// whose stored value points near a root address.
package ptrgraph

import (
	"encoding/binary"
	"sync"

	"github.com/wbrozek/betrayal/internal/scalar"
	"github.com/wbrozek/betrayal/internal/scan"
)

// Node is one discovered address in the graph. Parent is the index (into
// Graph.Nodes) of the node this one points into, or -1 for the root.
// Duplicate discoveries of the same address are permitted as distinct
// nodes, matching spec.md's "acyclic by construction" graph.
type Node[T any] struct {
	Address T
	Parent  int
}

// Graph is the directed pointer graph: Nodes[0] is always the root.
type Graph[T any] struct {
	Nodes []Node[T]
}

// Leaves returns the indices of nodes that no other node points into:
// every leaf (a node with no children) is rendered as a depth-first path back to a root,
// per spec.md §4.6's rendering contract. Since edges point from child to
// parent, a "source" in the traversal sense is any node that is not
// itself pointed to by another node — i.e. every leaf.
func (g *Graph[T]) Leaves() []int {
	hasChild := make(map[int]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.Parent >= 0 {
			hasChild[n.Parent] = true
		}
		_ = i
	}
	var leaves []int
	for i := range g.Nodes {
		if !hasChild[i] {
			leaves = append(leaves, i)
		}
	}
	return leaves
}

// Chain returns the depth-first path from leaf i up to the root, in
// traversal order leaf -> ... -> root, matching spec.md's "emit a
// depth-first traversal printing addresses" rendering.
func (g *Graph[T]) Chain(leaf int) []T {
	var out []T
	for i := leaf; i >= 0; i = g.Nodes[i].Parent {
		out = append(out, g.Nodes[i].Address)
	}
	return out
}

// defaultMaxLevels bounds the recursion itself, independent of the
// depth-tolerance parameter D. spec.md §4.6/§9 require *some* cap to
// guarantee termination; this is the "documented default 1" the spec
// calls out.
const defaultMaxLevels = 1

// maxFanout caps the number of concurrent child-expansion goroutines, as
// spec.md §5 recommends ("the task set fans out unbounded (cap
// recommended)").
const maxFanout = 64

// Build runs the pointer-graph builder for scalar width T (uint32 or
// uint64, per spec.md's pointer widths) against pid, rooted at address
// root, with depth tolerance D. Each recursion level runs its own
// independent scan via a fresh scan.Engine with Filter::InRange(x-D, x).
func Build[T any](kind scalar.Kind[T], pid int, root T, depth T, maxLevels int) (*Graph[T], error) {
	if maxLevels <= 0 {
		maxLevels = defaultMaxLevels
	}
	g := &Graph[T]{Nodes: []Node[T]{{Address: root, Parent: -1}}}
	var mu sync.Mutex
	sem := make(chan struct{}, maxFanout)

	var firstErr error
	var expand func(frontier []int, level int)
	expand = func(frontier []int, level int) {
		if level >= maxLevels {
			return
		}
		var wg sync.WaitGroup
		for _, parentIdx := range frontier {
			parentIdx := parentIdx
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()

				mu.Lock()
				parentAddr := g.Nodes[parentIdx].Address
				mu.Unlock()

				lo := kind.Add(parentAddr, negate(kind, depth))
				hi := parentAddr

				engine := scan.New(kind, pid)
				err := engine.Apply(scan.InRange(lo, hi))

				// Release the slot before recursing: the recursive call
				// below acquires its own slots for the next level, and
				// holding this one across it would let a wide-enough
				// frontier deadlock against maxFanout.
				<-sem

				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}

				var children []int
				mu.Lock()
				for _, c := range engine.Candidates() {
					idx := len(g.Nodes)
					g.Nodes = append(g.Nodes, Node[T]{Address: addressAsT(kind, c.Address), Parent: parentIdx})
					children = append(children, idx)
				}
				mu.Unlock()

				if len(children) > 0 {
					expand(children, level+1)
				}
			}()
		}
		wg.Wait()
	}

	expand([]int{0}, 0)
	return g, firstErr
}

// addressAsT reinterprets a candidate's location (always a uintptr) as
// the graph's own scalar width T, so a discovered node records *where*
// the pointer was found rather than the value it held there — the
// backward chain is built from locations, per the original's
// find_in_range(...).filter_map(|(_, a, _)| a) picking the address, not
// the stored value (original_source/src/main.rs).
func addressAsT[T any](kind scalar.Kind[T], addr uintptr) T {
	buf := make([]byte, 8)
	binary.NativeEndian.PutUint64(buf, uint64(addr))
	v, _ := kind.DecodeAt(buf[:kind.Size()], 0)
	return v
}

// negate computes the two's-complement additive inverse of d under
// kind's own width, so that kind.Add(x, negate(d)) == x - d with the
// kind's natural wraparound semantics for fixed-width unsigned integers.
func negate[T any](kind scalar.Kind[T], d T) T {
	encoded := kind.Encode(d)
	flipped := make([]byte, len(encoded))
	for i, b := range encoded {
		flipped[i] = ^b
	}
	inverted, _ := kind.DecodeAt(flipped, 0)
	one, _ := kind.Parse("1")
	return kind.Add(inverted, one)
}
