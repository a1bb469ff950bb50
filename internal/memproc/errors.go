package memproc

import "errors"

// Error sentinels matching the taxonomy in spec.md §7. Callers test
// against these with errors.Is; component-specific detail is attached by
// wrapping with fmt.Errorf("...: %w", Err...).
var (
	ErrNoSuchProcess = errors.New("no such process")
	ErrEnumeration   = errors.New("cannot read process memory map")
	ErrTransient     = errors.New("transient enumeration failure, retry")
	ErrPartialRead   = errors.New("partial or failed remote read")
	ErrBadWrite      = errors.New("remote write refused")
)
