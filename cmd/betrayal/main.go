// The betrayal command attaches to a live process, scans its memory for
// candidate values, and lets the user refine, write, and trace pointer
// chains against it interactively. Run "betrayal --help" for usage.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wbrozek/betrayal/internal/scalar"
)

var (
	pid          int
	variableType string
)

func main() {
	root := &cobra.Command{
		Use:   "betrayal",
		Short: "Scan and mutate a live process's memory",
		RunE:  runREPLCommand,
	}
	root.PersistentFlags().IntVarP(&pid, "pid", "p", 0, "target process id (required)")
	root.PersistentFlags().StringVarP(&variableType, "variable_type", "t", "i32", "scalar kind: u8, i16, u16, i32, u32, i64, u64, f32, f64")
	root.MarkPersistentFlagRequired("pid")

	root.AddCommand(newReclassCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runREPLCommand(cmd *cobra.Command, args []string) error {
	switch variableType {
	case "u8":
		return runREPL(scalar.U8{}, pid)
	case "i16":
		return runREPL(scalar.I16{}, pid)
	case "u16":
		return runREPL(scalar.U16{}, pid)
	case "i32":
		return runREPL(scalar.I32{}, pid)
	case "u32":
		return runREPL(scalar.U32{}, pid)
	case "i64":
		return runREPL(scalar.I64{}, pid)
	case "u64":
		return runREPL(scalar.U64{}, pid)
	case "f32":
		return runREPL(scalar.F32{}, pid)
	case "f64":
		return runREPL(scalar.F64{}, pid)
	default:
		return fmt.Errorf("betrayal: unsupported scalar kind %q", variableType)
	}
}
