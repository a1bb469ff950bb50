package reclass

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// debounceInterval coalesces bursty save-storms into one evaluation, per
// spec.md §4.9.
const debounceInterval = 500 * time.Millisecond

// Diagnostic is a non-fatal parse/eval failure the runner reports
// instead of evaluating, per spec.md §4.9's Parsing/Evaluating error
// transitions back to Watching.
type Diagnostic struct {
	Err error
}

func (d Diagnostic) Error() string { return d.Err.Error() }

// Runner drives the Start -> Watching -> Parsing -> Evaluating state
// machine from spec.md §4.9: it seeds a temp schema file, watches it for
// writes, and on each debounced change parses then evaluates it,
// emitting either a rendered text view or a diagnostic.
type Runner struct {
	PID  int
	Path string

	// OnResult is called with the rendered text view after a successful
	// parse+evaluate cycle.
	OnResult func(string)
	// OnDiagnostic is called with a parse or evaluation failure; the
	// runner stays in Watching afterward.
	OnDiagnostic func(error)
}

// NewRunner seeds a temporary YAML schema file (permissions 0o666, so any
// editor the user opens it with can write it back) with DefaultConfig,
// and optionally launches $EDITOR on it.
func NewRunner(pid int) (*Runner, error) {
	f, err := os.CreateTemp("", "betrayal-reclass-*.yaml")
	if err != nil {
		return nil, fmt.Errorf("reclass: creating schema file: %w", err)
	}
	path := f.Name()

	encoded, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reclass: encoding default schema: %w", err)
	}
	if _, err := f.Write(encoded); err != nil {
		f.Close()
		return nil, fmt.Errorf("reclass: writing schema file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("reclass: closing schema file: %w", err)
	}
	if err := os.Chmod(path, 0o666); err != nil {
		return nil, fmt.Errorf("reclass: setting schema file permissions: %w", err)
	}

	if editor := os.Getenv("EDITOR"); editor != "" {
		cmd := exec.Command(editor, path)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
		// Best-effort: the user can always open the printed path by hand.
		_ = cmd.Start()
	}

	return &Runner{PID: pid, Path: path}, nil
}

// Run watches Path and processes write events until the watcher itself
// errors (the Watching -> Terminated transition) or ctx-like stop is
// requested by closing done.
func (r *Runner) Run(done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("reclass: failed to spawn a file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(r.Path); err != nil {
		return fmt.Errorf("reclass: failed to spawn a file watcher: %w", err)
	}

	var debounce *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-done:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(debounceInterval)
			} else {
				// Drain only a tick that fired but was not received yet;
				// once received below, debounceCh is nil and C is empty.
				if !debounce.Stop() && debounceCh != nil {
					<-debounce.C
				}
				debounce.Reset(debounceInterval)
			}
			debounceCh = debounce.C
		case <-debounceCh:
			r.evaluateOnce()
			debounceCh = nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("reclass: watch error: %w", err)
		}
	}
}

func (r *Runner) evaluateOnce() {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		r.diagnose(fmt.Errorf("reading schema file: %w", err))
		return
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		r.diagnose(fmt.Errorf("bad format: %w", err))
		return
	}
	results, err := cfg.Evaluate(r.PID)
	if err != nil {
		r.diagnose(err)
		return
	}
	if r.OnResult != nil {
		r.OnResult(PrintAll(results))
	}
}

func (r *Runner) diagnose(err error) {
	if r.OnDiagnostic != nil {
		r.OnDiagnostic(Diagnostic{Err: err})
	}
}
