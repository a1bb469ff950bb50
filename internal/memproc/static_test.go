package memproc

import "testing"

func TestResolveStaticBssTail(t *testing.T) {
	named := Region{Base: 0x400000, Ceiling: 0x401000, Readable: true, Pathname: Named{Path: "/bin/foo"}}
	bss := Region{Base: 0x401000, Ceiling: 0x402000, Readable: true, Writable: true, Pathname: Anonymous{}}
	regions := []Region{named, bss}

	loc, err := resolveStaticIn(regions, 0x401100)
	if err != nil {
		t.Fatalf("resolveStaticIn: %v", err)
	}
	if loc == nil {
		t.Fatal("expected a static location for the .bss tail")
	}
	if loc.File != "/bin/foo" || loc.Base != named.Base || loc.Offset != 0x401100-named.Base {
		t.Errorf("got %+v", loc)
	}
}

func TestResolveStaticAnonymousPrecededByAnonymous(t *testing.T) {
	a := Region{Base: 0x400000, Ceiling: 0x401000, Readable: true, Writable: true, Pathname: Anonymous{}}
	b := Region{Base: 0x401000, Ceiling: 0x402000, Readable: true, Writable: true, Pathname: Anonymous{}}
	regions := []Region{a, b}

	loc, err := resolveStaticIn(regions, 0x401100)
	if err != nil {
		t.Fatalf("resolveStaticIn: %v", err)
	}
	if loc != nil {
		t.Errorf("expected no static location, got %+v", loc)
	}
}

func TestResolveStaticCoalescesMultipleSegments(t *testing.T) {
	seg1 := Region{Base: 0x1000, Ceiling: 0x2000, Readable: true, Pathname: Named{Path: "/usr/lib/libc.so.6"}}
	seg2 := Region{Base: 0x2000, Ceiling: 0x3000, Readable: true, Executable: true, Pathname: Named{Path: "/usr/lib/libc.so.6"}}
	seg3 := Region{Base: 0x3000, Ceiling: 0x4000, Readable: true, Writable: true, Pathname: Named{Path: "/usr/lib/libc.so.6"}}
	regions := []Region{seg1, seg2, seg3}

	loc, err := resolveStaticIn(regions, 0x3500)
	if err != nil {
		t.Fatalf("resolveStaticIn: %v", err)
	}
	if loc == nil || loc.Base != seg1.Base || loc.Offset != 0x3500-seg1.Base {
		t.Errorf("got %+v, want base %#x", loc, seg1.Base)
	}
}

func TestResolveStaticNoRegion(t *testing.T) {
	_, err := resolveStaticIn(nil, 0x1000)
	if err == nil {
		t.Fatal("expected error when no region contains the address")
	}
}

func TestIsStatic(t *testing.T) {
	if !IsStatic(Region{Writable: false}) {
		t.Error("non-writable region should be static")
	}
	if IsStatic(Region{Writable: true}) {
		t.Error("writable region should not be static")
	}
}
