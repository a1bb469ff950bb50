package ptrgraph

import (
	"testing"

	"github.com/wbrozek/betrayal/internal/scalar"
)

func TestLeavesAndChain(t *testing.T) {
	// root(0) <- a(1) <- b(2)
	//          <- c(3)
	g := &Graph[uint64]{Nodes: []Node[uint64]{
		{Address: 100, Parent: -1}, // 0: root
		{Address: 200, Parent: 0},  // 1: a -> root
		{Address: 300, Parent: 1},  // 2: b -> a
		{Address: 400, Parent: 0},  // 3: c -> root
	}}

	leaves := g.Leaves()
	if len(leaves) != 2 {
		t.Fatalf("expected 2 leaves (b, c), got %d: %v", len(leaves), leaves)
	}

	for _, leaf := range leaves {
		chain := g.Chain(leaf)
		if chain[len(chain)-1] != 100 {
			t.Errorf("chain %v should end at the root (100)", chain)
		}
	}
}

func TestNegateWraps(t *testing.T) {
	k := scalar.U32{}
	// 10 + negate(3) should equal 7, exactly like ordinary subtraction.
	got := k.Add(10, negate(k, 3))
	if got != 7 {
		t.Errorf("10 - 3 = %d, want 7", got)
	}

	// negate should wrap around zero, matching unsigned subtraction underflow.
	got = k.Add(0, negate(k, 1))
	if got != ^uint32(0) {
		t.Errorf("0 - 1 = %d, want %d", got, ^uint32(0))
	}
}
