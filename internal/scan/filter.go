package scan

import "github.com/wbrozek/betrayal/internal/scalar"

// Kind tags which of the six filter shapes a Filter value carries.
// Filter configuration is cold-path data (built once per REPL command),
// unlike the hot-path Candidate values, so a tagged struct is the
// idiomatic Go shape here rather than a closure-per-variant.
type Kind int

const (
	KindAny Kind = iota
	KindIsEqual
	KindInRange
	KindChangedBy
	KindInAddressRanges
	KindIsInValueBox
)

// AddrRange is a half-open address interval [Lo, Hi): Lo is included,
// Hi is not.
type AddrRange struct{ Lo, Hi uintptr }

// Filter is the tagged variant from spec.md §3 ("Filter"). Only the
// fields relevant to Kind are meaningful.
type Filter[T any] struct {
	Kind Kind

	Equal T // IsEqual

	Lo, Hi T // InRange

	Delta T // ChangedBy

	AddrRanges []AddrRange // InAddressRanges

	BoxLo, BoxHi uintptr         // IsInValueBox address bounds
	BoxValues    map[any]bool    // IsInValueBox membership set, keyed by T boxed as any
	boxValuesRaw []T             // retained for iteration/printing
}

func Any[T any]() Filter[T] { return Filter[T]{Kind: KindAny} }

func IsEqual[T any](v T) Filter[T] { return Filter[T]{Kind: KindIsEqual, Equal: v} }

func InRange[T any](lo, hi T) Filter[T] { return Filter[T]{Kind: KindInRange, Lo: lo, Hi: hi} }

func ChangedBy[T any](delta T) Filter[T] { return Filter[T]{Kind: KindChangedBy, Delta: delta} }

func InAddressRanges[T any](ranges []AddrRange) Filter[T] {
	return Filter[T]{Kind: KindInAddressRanges, AddrRanges: ranges}
}

func IsInValueBox[T any](lo, hi uintptr, values []T) Filter[T] {
	set := make(map[any]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return Filter[T]{Kind: KindIsInValueBox, BoxLo: lo, BoxHi: hi, BoxValues: set, boxValuesRaw: values}
}

// RestrictsRegions reports whether this filter can only ever match
// addresses in [lo, hi], letting the scan engine skip regions that
// cannot possibly overlap (spec.md §4.4's IsInValueBox region
// restriction).
func (f Filter[T]) RestrictsRegions() (lo, hi uintptr, restricted bool) {
	if f.Kind == KindIsInValueBox {
		return f.BoxLo, f.BoxHi, true
	}
	return 0, 0, false
}

// Matches evaluates f against candidate c, given the "previous" set that
// ChangedBy compares against. This is the total function from spec.md
// §4.5 (C5): no side effects, identical during an initial scan (where
// previous is empty) and a refinement (where previous is the pre-refresh
// set).
func Matches[T any](k scalar.Kind[T], f Filter[T], c Candidate[T], previous *Set[T]) bool {
	switch f.Kind {
	case KindAny:
		return true
	case KindIsEqual:
		return k.Equal(f.Equal, c.Value)
	case KindInRange:
		return !k.Less(c.Value, f.Lo) && !k.Less(f.Hi, c.Value)
	case KindChangedBy:
		prev, ok := previous.Get(c.Address)
		if !ok {
			return false
		}
		return k.Equal(k.Add(c.Value, f.Delta), prev.Value)
	case KindInAddressRanges:
		for _, r := range f.AddrRanges {
			if r.Lo <= c.Address && c.Address < r.Hi {
				return true
			}
		}
		return false
	case KindIsInValueBox:
		if c.Address < f.BoxLo || c.Address > f.BoxHi {
			return false
		}
		return f.BoxValues[c.Value]
	default:
		return false
	}
}
