package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/wbrozek/betrayal/internal/memproc"
	"github.com/wbrozek/betrayal/internal/ptrgraph"
	"github.com/wbrozek/betrayal/internal/scalar"
	"github.com/wbrozek/betrayal/internal/scan"
)

const helpText = `commands:
  (empty)                       refresh
  q                              quit
  h, ?, help                     this message
  a <addr>                       add one address
  a <lo> <hi>                    add half-open address range
  w <addr> <val>                 write once
  k <addr> <val>                 keep writing in the background
  f u                            filter: any
  f e <v>                        filter: is equal
  f c <delta>                    filter: changed by
  f r <lo> <hi>                  filter: in range
  b <lo> <hi> v1 v2 ...          filter: is in value box
  p m u32 <addr> <depth>         32-bit pointer map
  p m u64 <addr> <depth>         64-bit pointer map
`

// keepWriter tracks the background "keep writing" goroutines the k
// command starts, one per address, so a later k on the same address
// replaces rather than stacks the writer.
type keepWriter struct {
	mu      sync.Mutex
	cancels map[uintptr]func()
}

func newKeepWriter() *keepWriter {
	return &keepWriter{cancels: make(map[uintptr]func())}
}

func (kw *keepWriter) start(addr uintptr, write func() error) {
	kw.mu.Lock()
	if cancel, ok := kw.cancels[addr]; ok {
		cancel()
	}
	stop := make(chan struct{})
	kw.cancels[addr] = func() { close(stop) }
	kw.mu.Unlock()

	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := write(); err != nil {
					return
				}
			}
		}
	}()
}

// runREPL drives the interactive session for one scalar kind, mirroring
// the original's per-type run::<T>() entry point: the CLI picks the
// concrete Kind once at startup and everything downstream is
// monomorphic in T.
func runREPL[T any](kind scalar.Kind[T], pid int) error {
	engine := scan.New(kind, pid)
	kw := newKeepWriter()

	rl, err := readline.New(fmt.Sprintf("%s(%d)> ", kind.Name(), pid))
	if err != nil {
		return fmt.Errorf("betrayal: starting REPL: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			if err := engine.Refresh(); err != nil {
				fmt.Println("error:", err)
				continue
			}
			printCandidates(pid, kind, engine.Candidates())
			continue
		}

		switch fields[0] {
		case "q":
			return nil
		case "h", "?", "help":
			fmt.Print(helpText)
		case "a":
			if err := cmdAdd(engine, kind, fields[1:]); err != nil {
				fmt.Println("error:", err)
				continue
			}
			printCandidates(pid, kind, engine.Candidates())
		case "w":
			if err := cmdWrite(engine, kind, fields[1:]); err != nil {
				fmt.Println("error:", err)
				continue
			}
			printCandidates(pid, kind, engine.Candidates())
		case "k":
			if err := cmdKeepWrite(engine, kind, kw, fields[1:]); err != nil {
				fmt.Println("error:", err)
			}
		case "f":
			if err := cmdFilter(engine, kind, fields[1:]); err != nil {
				fmt.Println("error:", err)
				continue
			}
			printCandidates(pid, kind, engine.Candidates())
		case "b":
			if err := cmdBox(engine, kind, fields[1:]); err != nil {
				fmt.Println("error:", err)
				continue
			}
			printCandidates(pid, kind, engine.Candidates())
		case "p":
			if err := cmdPointerMap(pid, fields[1:]); err != nil {
				fmt.Println("error:", err)
			}
		default:
			fmt.Println("error: unrecognized command, try 'help'")
		}
	}
}

func parseAddr(s string) (uintptr, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("bad address %q: %w", s, err)
	}
	return uintptr(v), nil
}

func cmdAdd[T any](e *scan.Engine[T], kind scalar.Kind[T], args []string) error {
	switch len(args) {
	case 1:
		addr, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		return e.AddAddress(addr)
	case 2:
		lo, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		hi, err := parseAddr(args[1])
		if err != nil {
			return err
		}
		return e.AddAddressRange(lo, hi)
	default:
		return errors.New("usage: a <addr> | a <lo> <hi>")
	}
}

func cmdWrite[T any](e *scan.Engine[T], kind scalar.Kind[T], args []string) error {
	if len(args) != 2 {
		return errors.New("usage: w <addr> <val>")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	v, err := kind.Parse(args[1])
	if err != nil {
		return err
	}
	return e.Write(addr, v)
}

func cmdKeepWrite[T any](e *scan.Engine[T], kind scalar.Kind[T], kw *keepWriter, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: k <addr> <val>")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	v, err := kind.Parse(args[1])
	if err != nil {
		return err
	}
	kw.start(addr, func() error { return e.Write(addr, v) })
	return nil
}

func cmdFilter[T any](e *scan.Engine[T], kind scalar.Kind[T], args []string) error {
	if len(args) == 0 {
		return errors.New("usage: f u | f e <v> | f c <delta> | f r <lo> <hi>")
	}
	switch args[0] {
	case "u":
		return e.Apply(scan.Any[T]())
	case "e":
		if len(args) != 2 {
			return errors.New("usage: f e <v>")
		}
		v, err := kind.Parse(args[1])
		if err != nil {
			return err
		}
		return e.Apply(scan.IsEqual(v))
	case "c":
		if len(args) != 2 {
			return errors.New("usage: f c <delta>")
		}
		v, err := kind.Parse(args[1])
		if err != nil {
			return err
		}
		return e.Apply(scan.ChangedBy(v))
	case "r":
		if len(args) != 3 {
			return errors.New("usage: f r <lo> <hi>")
		}
		lo, err := kind.Parse(args[1])
		if err != nil {
			return err
		}
		hi, err := kind.Parse(args[2])
		if err != nil {
			return err
		}
		return e.Apply(scan.InRange(lo, hi))
	default:
		return fmt.Errorf("unknown filter %q", args[0])
	}
}

func cmdBox[T any](e *scan.Engine[T], kind scalar.Kind[T], args []string) error {
	if len(args) < 2 {
		return errors.New("usage: b <lo> <hi> v1 v2 ...")
	}
	lo, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	hi, err := parseAddr(args[1])
	if err != nil {
		return err
	}
	values := make([]T, 0, len(args)-2)
	for _, a := range args[2:] {
		v, err := kind.Parse(a)
		if err != nil {
			return err
		}
		values = append(values, v)
	}
	return e.Apply(scan.IsInValueBox(lo, hi, values))
}

func cmdPointerMap(pid int, args []string) error {
	if len(args) != 4 || args[0] != "m" {
		return errors.New("usage: p m u32|u64 <addr> <depth>")
	}
	addr, err := parseAddr(args[2])
	if err != nil {
		return err
	}
	depth, err := parseAddr(args[3])
	if err != nil {
		return err
	}

	switch args[1] {
	case "u32":
		graph, err := ptrgraph.Build(scalar.U32{}, pid, uint32(addr), uint32(depth), 0)
		if err != nil {
			return err
		}
		printPointerChain(graph, scalar.U32{})
	case "u64":
		graph, err := ptrgraph.Build(scalar.U64{}, pid, uint64(addr), uint64(depth), 0)
		if err != nil {
			return err
		}
		printPointerChain(graph, scalar.U64{})
	default:
		return fmt.Errorf("unknown pointer width %q", args[1])
	}
	return nil
}

func printCandidates[T any](pid int, kind scalar.Kind[T], candidates []scan.Candidate[T]) {
	fmt.Printf("%d candidate(s):\n", len(candidates))
	for _, c := range candidates {
		line := fmt.Sprintf("  %#x = %s", c.Address, kind.Format(c.Value))
		if loc, err := memproc.ResolveStatic(pid, c.Address); err == nil && loc != nil {
			line += fmt.Sprintf("  @STATIC[%s+%#x]", loc.File, loc.Offset)
		}
		fmt.Println(line)
	}
}

func printPointerChain[T any](graph *ptrgraph.Graph[T], kind scalar.Kind[T]) {
	for _, leaf := range graph.Leaves() {
		chain := graph.Chain(leaf)
		parts := make([]string, len(chain))
		for i, a := range chain {
			parts[i] = kind.Format(a)
		}
		fmt.Println(strings.Join(parts, " -> "))
	}
}
