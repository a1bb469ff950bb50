// Package reclass implements the reclass overlay engine (spec.md C8) and
// its live-schema runner (C9): a recursive, self-describing schema of
// scalars, padding, and pointer indirection evaluated against a live
// remote address.
package reclass

import (
	"fmt"

	"github.com/wbrozek/betrayal/internal/memproc"
	"github.com/wbrozek/betrayal/internal/scalar"
)

// searchWindow bounds how far SearchValues scans forward looking for a
// match, per spec.md §3's "fixed window (default 1000 bytes)".
const searchWindow = 1000

// ScalarKind names one of the nine scalar widths a Field may decode.
type ScalarKind string

const (
	U8  ScalarKind = "u8"
	I16 ScalarKind = "i16"
	U16 ScalarKind = "u16"
	I32 ScalarKind = "i32"
	U32 ScalarKind = "u32"
	I64 ScalarKind = "i64"
	U64 ScalarKind = "u64"
	F32 ScalarKind = "f32"
	F64 ScalarKind = "f64"
)

func scalarSize(k ScalarKind) int {
	switch k {
	case U8:
		return 1
	case I16, U16:
		return 2
	case I32, U32, F32:
		return 4
	case I64, U64, F64:
		return 8
	}
	return 0
}

// SearchCase is one (schema, literal) entry SearchValues tries in order.
type SearchCase struct {
	Schema  *Field `yaml:"schema"`
	Literal string `yaml:"literal"`
}

// NamedField is one entry of a Struct's field list. Structs use a
// sequence of {name, field} pairs, not a YAML mapping, precisely so
// field order is insertion-significant on the wire without resorting to
// custom YAML node surgery (spec.md §6: "Field ordering in structs is
// insertion-significant").
type NamedField struct {
	Name  string `yaml:"name"`
	Field *Field `yaml:"field"`
}

// StructDef is a named, ordered collection of fields.
type StructDef struct {
	Name   string       `yaml:"name"`
	Fields []NamedField `yaml:"fields"`
}

// Field is the recursive reclass schema (spec.md §3 "Reclass schema").
// Type selects which of the variant's fields are meaningful:
//
//	"padding"            -> N
//	one of the ScalarKind names -> (no extra fields)
//	"ptr32" / "ptr64"    -> Child
//	"struct"             -> Struct
//	"search"             -> Search
type Field struct {
	Type   string       `yaml:"type"`
	N      int          `yaml:"n,omitempty"`
	Child  *Field       `yaml:"child,omitempty"`
	Struct *StructDef   `yaml:"struct,omitempty"`
	Search []SearchCase `yaml:"search,omitempty"`
}

// Padding returns a Field consuming n unread bytes.
func Padding(n int) *Field { return &Field{Type: "padding", N: n} }

// Scalar returns a Field decoding one value of the given scalar kind.
func Scalar(k ScalarKind) *Field { return &Field{Type: string(k)} }

// Pointer32 returns a Field that reads a 32-bit unsigned pointer and
// evaluates child at the pointed-to address.
func Pointer32(child *Field) *Field { return &Field{Type: "ptr32", Child: child} }

// Pointer64 returns a Field that reads a 64-bit unsigned pointer and
// evaluates child at the pointed-to address.
func Pointer64(child *Field) *Field { return &Field{Type: "ptr64", Child: child} }

// Struct returns a Field laying out fields consecutively.
func Struct(def *StructDef) *Field { return &Field{Type: "struct", Struct: def} }

// SearchValues returns a Field that scans forward for the first offset
// matching every (schema, literal) pair.
func SearchValues(cases []SearchCase) *Field { return &Field{Type: "search", Search: cases} }

// Size is the schema's contribution to its parent struct's layout, per
// spec.md §4.8.
func (f *Field) Size() int {
	if f == nil {
		return 0
	}
	switch f.Type {
	case "padding":
		return f.N
	case "ptr32":
		return 4
	case "ptr64":
		return 8
	case "struct", "search":
		return 0
	default:
		return scalarSize(ScalarKind(f.Type))
	}
}

// Result mirrors the shape of the Field it was evaluated from. Leaves
// carry Address/Info plus either Value or Err (spec.md §3 "Reclass
// result").
type Result struct {
	Type    string
	Address uintptr
	Info    memproc.AddressInfo
	Value   string
	Err     string
	Child   *Result
	Fields  []NamedResult
}

// NamedResult pairs a struct field's declared name with its Result.
type NamedResult struct {
	Name   string
	Result *Result
}

// Evaluate interprets schema f against live address addr in pid,
// producing a mirror-shaped Result tree. It is read-only: it never
// mutates f or the target process (spec.md §4.8).
func Evaluate(pid int, f *Field, addr uintptr) *Result {
	if f == nil {
		return &Result{Type: "padding", Address: addr}
	}
	switch f.Type {
	case "padding":
		return &Result{Type: "padding", Address: addr}
	case "ptr32":
		return evaluatePointer(pid, f.Child, addr, 4)
	case "ptr64":
		return evaluatePointer(pid, f.Child, addr, 8)
	case "struct":
		return evaluateStruct(pid, f.Struct, addr)
	case "search":
		return evaluateSearch(pid, f.Search, addr)
	default:
		return evaluateScalar(pid, ScalarKind(f.Type), addr)
	}
}

func evaluatePointer(pid int, child *Field, addr uintptr, width int) *Result {
	raw, err := memproc.Read(pid, addr, width)
	if err != nil {
		return &Result{Type: fmt.Sprintf("ptr%d", width*8), Address: addr, Err: err.Error()}
	}
	var target uintptr
	if width == 4 {
		v, _ := scalar.U32{}.DecodeAt(raw, 0)
		target = uintptr(v)
	} else {
		v, _ := scalar.U64{}.DecodeAt(raw, 0)
		target = uintptr(v)
	}
	info, _ := infoAt(pid, target)
	childResult := Evaluate(pid, child, target)
	return &Result{
		Type:    fmt.Sprintf("ptr%d", width*8),
		Address: target,
		Info:    info,
		Child:   childResult,
	}
}

func evaluateStruct(pid int, def *StructDef, addr uintptr) *Result {
	r := &Result{Type: "struct", Address: addr}
	if def == nil {
		return r
	}
	base := addr
	for _, nf := range def.Fields {
		fieldResult := Evaluate(pid, nf.Field, base)
		r.Fields = append(r.Fields, NamedResult{Name: nf.Name, Result: fieldResult})
		base += uintptr(nf.Field.Size())
	}
	return r
}

func evaluateSearch(pid int, cases []SearchCase, addr uintptr) *Result {
	var last *Result
	for off := 0; off < searchWindow; off++ {
		candidateAddr := addr + uintptr(off)
		matched := true
		var results []*Result
		for _, c := range cases {
			res := Evaluate(pid, c.Schema, candidateAddr)
			results = append(results, res)
			if res.Err != "" || formatResultValue(res) != c.Literal {
				matched = false
			}
		}
		last = &Result{Type: "search", Address: candidateAddr}
		for i, res := range results {
			last.Fields = append(last.Fields, NamedResult{Name: fmt.Sprintf("case%d", i), Result: res})
		}
		if matched {
			return last
		}
	}
	if last == nil {
		last = &Result{Type: "search", Address: addr, Err: "search window exhausted with no cases"}
	}
	return last
}

// formatResultValue renders a leaf Result's decoded value as text, the
// same "compare by string form" rule SearchValues uses, per spec.md
// §4.8 and §9's Open Questions.
func formatResultValue(r *Result) string {
	return r.Value
}

func evaluateScalar(pid int, kind ScalarKind, addr uintptr) *Result {
	size := scalarSize(kind)
	raw, err := memproc.Read(pid, addr, size)
	info, _ := infoAt(pid, addr)
	if err != nil {
		return &Result{Type: string(kind), Address: addr, Info: info, Err: err.Error()}
	}
	value, err := decodeScalar(kind, raw)
	if err != nil {
		return &Result{Type: string(kind), Address: addr, Info: info, Err: err.Error()}
	}
	return &Result{Type: string(kind), Address: addr, Info: info, Value: value}
}

func infoAt(pid int, addr uintptr) (memproc.AddressInfo, bool) {
	regions, err := memproc.Snapshot(pid)
	if err != nil {
		return memproc.AddressInfo{}, false
	}
	for _, r := range regions {
		if r.Contains(addr) {
			return memproc.InfoForRegion(r), true
		}
	}
	return memproc.AddressInfo{}, false
}

func decodeScalar(kind ScalarKind, raw []byte) (string, error) {
	switch kind {
	case U8:
		v, ok := (scalar.U8{}).DecodeAt(raw, 0)
		return checkDecode(ok, (scalar.U8{}).Format(v))
	case I16:
		v, ok := (scalar.I16{}).DecodeAt(raw, 0)
		return checkDecode(ok, (scalar.I16{}).Format(v))
	case U16:
		v, ok := (scalar.U16{}).DecodeAt(raw, 0)
		return checkDecode(ok, (scalar.U16{}).Format(v))
	case I32:
		v, ok := (scalar.I32{}).DecodeAt(raw, 0)
		return checkDecode(ok, (scalar.I32{}).Format(v))
	case U32:
		v, ok := (scalar.U32{}).DecodeAt(raw, 0)
		return checkDecode(ok, (scalar.U32{}).Format(v))
	case I64:
		v, ok := (scalar.I64{}).DecodeAt(raw, 0)
		return checkDecode(ok, (scalar.I64{}).Format(v))
	case U64:
		v, ok := (scalar.U64{}).DecodeAt(raw, 0)
		return checkDecode(ok, (scalar.U64{}).Format(v))
	case F32:
		v, ok := (scalar.F32{}).DecodeAt(raw, 0)
		return checkDecode(ok, (scalar.F32{}).Format(v))
	case F64:
		v, ok := (scalar.F64{}).DecodeAt(raw, 0)
		return checkDecode(ok, (scalar.F64{}).Format(v))
	default:
		return "", fmt.Errorf("reclass: unknown scalar kind %q", kind)
	}
}

func checkDecode(ok bool, formatted string) (string, error) {
	if !ok {
		return "", fmt.Errorf("reclass: short read decoding scalar")
	}
	return formatted, nil
}
