package reclass

import (
	"os"
	"reflect"
	"testing"
)

func selfAddr(p any) uintptr {
	return reflect.ValueOf(p).Elem().UnsafeAddr()
}

// layout backs TestEvaluateStructWithPadding: x (i32) at +0, 4 bytes of
// padding, y (u16) at +8 — exactly the byte layout
// [11,0,0,0, 0,0,0,0, 7,0] names.
var layout struct {
	x    int32
	pad  [4]byte
	y    uint16
}

func TestEvaluateStructWithPadding(t *testing.T) {
	layout.x = 11
	layout.y = 7

	def := &StructDef{
		Name: "SomeClass",
		Fields: []NamedField{
			{Name: "x", Field: Scalar(I32)},
			{Name: "pad", Field: Padding(4)},
			{Name: "y", Field: Scalar(U16)},
		},
	}

	addr := selfAddr(&layout)
	result := Evaluate(os.Getpid(), Struct(def), addr)

	if result.Type != "struct" {
		t.Fatalf("expected a struct result, got %q", result.Type)
	}
	if len(result.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(result.Fields))
	}

	x := result.Fields[0]
	if x.Name != "x" || x.Result.Value != "11" {
		t.Errorf("field x = %+v, want value 11", x.Result)
	}

	pad := result.Fields[1]
	if pad.Name != "pad" || pad.Result.Type != "padding" {
		t.Errorf("field pad = %+v, want a padding result", pad.Result)
	}

	y := result.Fields[2]
	if y.Name != "y" || y.Result.Value != "7" {
		t.Errorf("field y = %+v, want value 7", y.Result)
	}
}

func TestFieldSize(t *testing.T) {
	cases := []struct {
		f    *Field
		want int
	}{
		{Padding(4), 4},
		{Scalar(U8), 1},
		{Scalar(I16), 2},
		{Scalar(F32), 4},
		{Scalar(F64), 8},
		{Pointer32(Scalar(U8)), 4},
		{Pointer64(Scalar(U8)), 8},
		{Struct(&StructDef{}), 0},
	}
	for _, c := range cases {
		if got := c.f.Size(); got != c.want {
			t.Errorf("Size(%q) = %d, want %d", c.f.Type, got, c.want)
		}
	}
}

func TestEvaluatePointerFollowsTarget(t *testing.T) {
	var target int32 = 42
	var ptr *int32 = &target

	addr := selfAddr(&ptr)
	result := Evaluate(os.Getpid(), Pointer64(Scalar(I32)), addr)

	if result.Type != "ptr64" {
		t.Fatalf("expected ptr64 result, got %q", result.Type)
	}
	if result.Address != selfAddr(&target) {
		t.Errorf("pointer result address should be the dereferenced target, got %#x want %#x", result.Address, selfAddr(&target))
	}
	if result.Child == nil || result.Child.Value != "42" {
		t.Errorf("expected child value 42, got %+v", result.Child)
	}
}
