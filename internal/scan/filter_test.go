package scan

import (
	"testing"

	"github.com/wbrozek/betrayal/internal/memproc"
	"github.com/wbrozek/betrayal/internal/scalar"
)

func cand32(addr uintptr, v int32) Candidate[int32] {
	return Candidate[int32]{Info: memproc.AddressInfo{}, Address: addr, Value: v}
}

func TestFilterIsEqual(t *testing.T) {
	k := scalar.I32{}
	f := IsEqual[int32](42)
	prev := NewSet[int32]()
	if !Matches(k, f, cand32(0x10, 42), prev) {
		t.Error("expected match")
	}
	if Matches(k, f, cand32(0x10, 41), prev) {
		t.Error("expected no match")
	}
}

func TestFilterInRange(t *testing.T) {
	k := scalar.I32{}
	f := InRange[int32](10, 20)
	prev := NewSet[int32]()
	for _, v := range []int32{10, 15, 20} {
		if !Matches(k, f, cand32(0, v), prev) {
			t.Errorf("%d should be in [10,20]", v)
		}
	}
	for _, v := range []int32{9, 21} {
		if Matches(k, f, cand32(0, v), prev) {
			t.Errorf("%d should not be in [10,20]", v)
		}
	}
}

func TestFilterAny(t *testing.T) {
	k := scalar.I32{}
	f := Any[int32]()
	prev := NewSet[int32]()
	if !Matches(k, f, cand32(0, -99999), prev) {
		t.Error("Any must always match")
	}
}

func TestFilterChangedBy(t *testing.T) {
	k := scalar.I32{}
	prev := NewSet[int32]()
	prev.Put(cand32(0x10, 5))

	f := ChangedBy[int32](-1)
	// current value 6, 6 + (-1) == 5 == previous value at same address.
	if !Matches(k, f, cand32(0x10, 6), prev) {
		t.Error("expected ChangedBy(-1) to match an increase of 1")
	}
	if Matches(k, f, cand32(0x10, 5), prev) {
		t.Error("expected ChangedBy(-1) to reject an unchanged value")
	}
	if Matches(k, f, cand32(0x20, 4), prev) {
		t.Error("expected ChangedBy to reject an address absent from the previous set")
	}
}

func TestFilterInAddressRanges(t *testing.T) {
	k := scalar.I32{}
	prev := NewSet[int32]()
	f := InAddressRanges[int32]([]AddrRange{{Lo: 0x100, Hi: 0x200}, {Lo: 0x500, Hi: 0x600}})
	if !Matches(k, f, cand32(0x150, 0), prev) {
		t.Error("expected address in first range to match")
	}
	if Matches(k, f, cand32(0x300, 0), prev) {
		t.Error("expected address outside both ranges to not match")
	}
}

func TestFilterIsInValueBox(t *testing.T) {
	k := scalar.I32{}
	prev := NewSet[int32]()
	f := IsInValueBox[int32](0x10000000, 0x20000000, []int32{1, 2, 3})
	if !Matches(k, f, cand32(0x15000000, 2), prev) {
		t.Error("expected address+value inside box to match")
	}
	if Matches(k, f, cand32(0x15000000, 4), prev) {
		t.Error("expected value outside the set to not match")
	}
	if Matches(k, f, cand32(0x05000000, 2), prev) {
		t.Error("expected address outside the box to not match")
	}
}
