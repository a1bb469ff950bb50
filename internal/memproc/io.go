package memproc

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Read performs an all-or-nothing bulk read of n bytes from the foreign
// process pid starting at base, via the vectored process-memory syscall
// (process_vm_readv). It never retries; the caller decides whether to.
func Read(pid int, base uintptr, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	local := []unix.Iovec{{Base: &buf[0]}}
	local[0].SetLen(n)
	remote := []unix.RemoteIovec{{Base: base, Len: n}}

	got, err := unix.ProcessVmReadv(pid, local, remote, 0)
	if err != nil {
		return nil, fmt.Errorf("memproc: read %d bytes at %#x from pid %d: %w: %v", n, base, pid, ErrPartialRead, err)
	}
	if got != n {
		return nil, fmt.Errorf("memproc: read %d bytes at %#x from pid %d: %w: got %d", n, base, pid, ErrPartialRead, got)
	}
	return buf, nil
}

// Write performs an all-or-nothing bulk write of data into the foreign
// process pid starting at base, via the vectored process-memory syscall
// (process_vm_writev). It never retries; the caller decides whether to.
func Write(pid int, base uintptr, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	local := []unix.Iovec{{Base: &data[0]}}
	local[0].SetLen(len(data))
	remote := []unix.RemoteIovec{{Base: base, Len: len(data)}}

	wrote, err := unix.ProcessVmWritev(pid, local, remote, 0)
	if err != nil {
		return fmt.Errorf("memproc: write %d bytes at %#x to pid %d: %w: %v", len(data), base, pid, ErrBadWrite, err)
	}
	if wrote != len(data) {
		return fmt.Errorf("memproc: write %d bytes at %#x to pid %d: %w: short write of %d", len(data), base, pid, ErrBadWrite, wrote)
	}
	return nil
}
