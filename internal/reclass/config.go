package reclass

// Entry pairs a textual base-address script with the struct schema to
// evaluate there, per spec.md §3/§6 (ConfigEntry / base_address script).
type Entry struct {
	BaseAddress string     `yaml:"base_address"`
	Struct      *StructDef `yaml:"struct_definition"`
}

// Config is the reclass schema file's top-level shape: a list of
// independently-addressed struct overlays.
type Config struct {
	Entries []Entry `yaml:"entries"`
}

// EntryResult is Entry evaluated against a live process.
type EntryResult struct {
	BaseAddress uintptr
	Result      *Result
}

// Evaluate resolves every entry's base-address script and evaluates its
// struct schema there.
func (c *Config) Evaluate(pid int) ([]EntryResult, error) {
	out := make([]EntryResult, 0, len(c.Entries))
	for _, e := range c.Entries {
		base, err := CalculateAddress(pid, e.BaseAddress)
		if err != nil {
			return nil, err
		}
		out = append(out, EntryResult{
			BaseAddress: base,
			Result:      Evaluate(pid, Struct(e.Struct), base),
		})
	}
	return out, nil
}

// DefaultConfig seeds the temp schema file the live-schema runner writes
// out: one struct with a run of five i32 fields, a 32-bit pointer to an
// i16, and a 32-bit pointer to an i32. It shows scalar and pointer
// fields only; padding, nested structs and search fields do not appear.
func DefaultConfig() *Config {
	return &Config{
		Entries: []Entry{{
			BaseAddress: "2137 - 4 * SIZE_I32",
			Struct: &StructDef{
				Name: "SomeClass",
				Fields: []NamedField{
					{Name: "field_0", Field: Scalar(I32)},
					{Name: "field_1", Field: Scalar(I32)},
					{Name: "field_2", Field: Scalar(I32)},
					{Name: "field_3", Field: Scalar(I32)},
					{Name: "field_4", Field: Scalar(I32)},
					{Name: "field_5", Field: Pointer32(Scalar(I16))},
					{Name: "field_6", Field: Pointer32(Scalar(I32))},
				},
			},
		}},
	}
}

// PrintAll renders every entry's result, joined the way the teacher
// separates independently-addressed overlays: a blank line between them.
func PrintAll(results []EntryResult) string {
	var out string
	for i, r := range results {
		if i > 0 {
			out += "\n\n"
		}
		out += Print(r.Result, 0)
	}
	return out
}
