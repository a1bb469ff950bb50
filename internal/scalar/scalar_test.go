package scalar

import "testing"

func TestRoundTrip(t *testing.T) {
	t.Run("U8", func(t *testing.T) {
		k := U8{}
		for _, v := range []uint8{0, 1, 42, 255} {
			got, ok := k.DecodeAt(k.Encode(v), 0)
			if !ok || got != v {
				t.Errorf("round trip %d: got %d, ok=%v", v, got, ok)
			}
		}
	})
	t.Run("I32", func(t *testing.T) {
		k := I32{}
		for _, v := range []int32{0, -1, 1 << 20, -(1 << 20)} {
			got, ok := k.DecodeAt(k.Encode(v), 0)
			if !ok || got != v {
				t.Errorf("round trip %d: got %d, ok=%v", v, got, ok)
			}
		}
	})
	t.Run("U64", func(t *testing.T) {
		k := U64{}
		for _, v := range []uint64{0, 1, 1 << 62} {
			got, ok := k.DecodeAt(k.Encode(v), 0)
			if !ok || got != v {
				t.Errorf("round trip %d: got %d, ok=%v", v, got, ok)
			}
		}
	})
	t.Run("F64", func(t *testing.T) {
		k := F64{}
		for _, v := range []float64{0, -1.5, 3.14159, 1e100} {
			encoded := k.Encode(newFloat64(v))
			got, ok := k.DecodeAt(encoded, 0)
			if !ok || got.V != v {
				t.Errorf("round trip %v: got %v, ok=%v", v, got.V, ok)
			}
		}
	})
}

func TestCandidatesCompleteness(t *testing.T) {
	k := I32{}
	b := make([]byte, 17)
	got := Candidates[int32](k, b, 0x1000)
	want := len(b) - k.Size() + 1
	if len(got) != want {
		t.Fatalf("got %d candidates, want %d", len(got), want)
	}
	for i, c := range got {
		if c.Address != 0x1000+uintptr(i) {
			t.Errorf("candidate %d address = %#x, want %#x", i, c.Address, 0x1000+uintptr(i))
		}
	}
}

func TestCandidatesTooShort(t *testing.T) {
	k := U64{}
	got := Candidates[uint64](k, make([]byte, 4), 0)
	if got != nil {
		t.Fatalf("expected no candidates for short buffer, got %d", len(got))
	}
}

func TestFloatTotalOrder(t *testing.T) {
	k := F32{}
	values := []float32{-10, -0.5, 0, 0.5, 10}
	for i := 0; i+1 < len(values); i++ {
		a := newFloat32(values[i])
		b := newFloat32(values[i+1])
		if !k.Less(a, b) {
			t.Errorf("expected %v < %v under total order", values[i], values[i+1])
		}
	}
}

func TestChangedByWrap(t *testing.T) {
	k := U8{}
	if k.Add(255, 1) != 0 {
		t.Errorf("expected wraparound add to be 0")
	}
}
