package scan

import (
	"os"
	"reflect"
	"testing"

	"github.com/wbrozek/betrayal/internal/memproc"
	"github.com/wbrozek/betrayal/internal/scalar"
)

// selfAddr returns the virtual address of p in this very process, the
// same technique the teacher's probe package uses to test its own
// read/write address validity (probe/addr_test.go's addr helper) —
// here exercised against the real process-memory syscalls instead of
// an in-process pointer check.
func selfAddr(p any) uintptr {
	return reflect.ValueOf(p).Elem().UnsafeAddr()
}

var scanTarget int32

func TestEngineAddAddressAndRefresh(t *testing.T) {
	pid := os.Getpid()
	e := New[int32](scalar.I32{}, pid)

	addr := selfAddr(&scanTarget)
	scanTarget = 111
	if err := e.AddAddress(addr); err != nil {
		t.Fatalf("AddAddress: %v", err)
	}
	if e.Len() != 1 {
		t.Fatalf("expected exactly one candidate, got %d", e.Len())
	}
	c := e.Candidates()[0]
	if c.Value != 111 {
		t.Errorf("value = %d, want 111", c.Value)
	}

	scanTarget = 222
	if err := e.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	c = e.Candidates()[0]
	if c.Value != 222 {
		t.Errorf("after refresh, value = %d, want 222", c.Value)
	}
}

func TestEngineWrite(t *testing.T) {
	pid := os.Getpid()
	e := New[int32](scalar.I32{}, pid)
	addr := selfAddr(&scanTarget)

	if err := e.AddAddress(addr); err != nil {
		t.Fatalf("AddAddress: %v", err)
	}
	if err := e.Write(addr, 999); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if scanTarget != 999 {
		t.Errorf("expected Write to mutate the real process memory, scanTarget = %d", scanTarget)
	}
}

func TestEngineWriteUnknownAddress(t *testing.T) {
	e := New[int32](scalar.I32{}, os.Getpid())
	if err := e.Write(0x1, 1); err == nil {
		t.Error("expected an error writing an address that was never added")
	}
}

func TestDedupRegions(t *testing.T) {
	regions := []memproc.Region{
		{Base: 0x1000, Ceiling: 0x2000},
		{Base: 0x1000, Ceiling: 0x2500}, // duplicate base, should be dropped
		{Base: 0x2000, Ceiling: 0x3000},
		{Base: 0x2500, Ceiling: 0x3000}, // duplicate ceiling, should be dropped
	}
	got := dedupRegions(regions)
	if len(got) != 2 {
		t.Fatalf("expected 2 regions after dedup, got %d: %+v", len(got), got)
	}
}
