package reclass

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/wbrozek/betrayal/internal/memproc"
)

// sizeConstants exposes SIZE_<KIND> for every scalar kind plus SIZE_POINTER,
// matching spec.md §6's expression mini-language.
func sizeConstants() map[string]int {
	return map[string]int{
		"SIZE_U8":      scalarSize(U8),
		"SIZE_I16":     scalarSize(I16),
		"SIZE_U16":     scalarSize(U16),
		"SIZE_I32":     scalarSize(I32),
		"SIZE_U32":     scalarSize(U32),
		"SIZE_I64":     scalarSize(I64),
		"SIZE_U64":     scalarSize(U64),
		"SIZE_F32":     scalarSize(F32),
		"SIZE_F64":     scalarSize(F64),
		"SIZE_POINTER": 8,
	}
}

// staticAddress implements the script environment's static_address(pid,
// file) helper: the base of the first read-only mapping whose pathname
// equals file, erroring if more than one such mapping exists.
func staticAddress(pid int, file string) (int, error) {
	regions, err := memproc.Snapshot(pid)
	if err != nil {
		return 0, fmt.Errorf("static_address: %w", err)
	}
	var match *memproc.Region
	for i := range regions {
		r := regions[i]
		if r.Writable {
			continue
		}
		named, ok := r.Pathname.(memproc.Named)
		if !ok || named.Path != file {
			continue
		}
		if match != nil {
			return 0, fmt.Errorf("static_address: multiple read-only mappings for %q", file)
		}
		match = &r
	}
	if match == nil {
		return 0, fmt.Errorf("static_address: no read-only mapping for %q", file)
	}
	return int(match.Base), nil
}

// CalculateAddress evaluates script to a machine-width address, as
// spec.md §6's "expression mini-language" external collaborator. The
// environment exposes SIZE_<KIND> constants, PID, and static_address.
func CalculateAddress(pid int, script string) (uintptr, error) {
	env := map[string]any{
		"PID": pid,
		"static_address": func(pid int, file string) (int, error) {
			return staticAddress(pid, file)
		},
	}
	for name, size := range sizeConstants() {
		env[name] = size
	}

	program, err := expr.Compile(script, expr.Env(env), expr.AsInt())
	if err != nil {
		return 0, fmt.Errorf("reclass: scripting error: %w", err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return 0, fmt.Errorf("reclass: scripting error: %w", err)
	}
	n, ok := out.(int)
	if !ok {
		return 0, fmt.Errorf("reclass: scripting error: expression did not produce an integer")
	}
	if n < 0 {
		return 0, fmt.Errorf("reclass: scripting error: negative address %d", n)
	}
	return uintptr(n), nil
}
