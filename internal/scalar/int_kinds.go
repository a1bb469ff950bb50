package scalar

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// U8 implements Kind[uint8].
type U8 struct{}

func (U8) Name() string { return "u8" }
func (U8) Size() int    { return 1 }
func (U8) DecodeAt(b []byte, off int) (uint8, bool) {
	if off < 0 || off+1 > len(b) {
		return 0, false
	}
	return b[off], true
}
func (U8) Encode(v uint8) []byte        { return []byte{v} }
func (U8) Less(a, b uint8) bool         { return a < b }
func (U8) Equal(a, b uint8) bool        { return a == b }
func (U8) Add(a, b uint8) uint8         { return a + b }
func (U8) Format(v uint8) string        { return strconv.FormatUint(uint64(v), 10) }
func (U8) Parse(s string) (uint8, error) {
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("u8: %w", err)
	}
	return uint8(n), nil
}

// I16 implements Kind[int16].
type I16 struct{}

func (I16) Name() string { return "i16" }
func (I16) Size() int    { return 2 }
func (I16) DecodeAt(b []byte, off int) (int16, bool) {
	if off < 0 || off+2 > len(b) {
		return 0, false
	}
	return int16(binary.NativeEndian.Uint16(b[off : off+2])), true
}
func (I16) Encode(v int16) []byte {
	buf := make([]byte, 2)
	binary.NativeEndian.PutUint16(buf, uint16(v))
	return buf
}
func (I16) Less(a, b int16) bool  { return a < b }
func (I16) Equal(a, b int16) bool { return a == b }
func (I16) Add(a, b int16) int16  { return a + b }
func (I16) Format(v int16) string { return strconv.FormatInt(int64(v), 10) }
func (I16) Parse(s string) (int16, error) {
	n, err := strconv.ParseInt(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("i16: %w", err)
	}
	return int16(n), nil
}

// U16 implements Kind[uint16].
type U16 struct{}

func (U16) Name() string { return "u16" }
func (U16) Size() int    { return 2 }
func (U16) DecodeAt(b []byte, off int) (uint16, bool) {
	if off < 0 || off+2 > len(b) {
		return 0, false
	}
	return binary.NativeEndian.Uint16(b[off : off+2]), true
}
func (U16) Encode(v uint16) []byte {
	buf := make([]byte, 2)
	binary.NativeEndian.PutUint16(buf, v)
	return buf
}
func (U16) Less(a, b uint16) bool  { return a < b }
func (U16) Equal(a, b uint16) bool { return a == b }
func (U16) Add(a, b uint16) uint16 { return a + b }
func (U16) Format(v uint16) string { return strconv.FormatUint(uint64(v), 10) }
func (U16) Parse(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("u16: %w", err)
	}
	return uint16(n), nil
}

// I32 implements Kind[int32].
type I32 struct{}

func (I32) Name() string { return "i32" }
func (I32) Size() int    { return 4 }
func (I32) DecodeAt(b []byte, off int) (int32, bool) {
	if off < 0 || off+4 > len(b) {
		return 0, false
	}
	return int32(binary.NativeEndian.Uint32(b[off : off+4])), true
}
func (I32) Encode(v int32) []byte {
	buf := make([]byte, 4)
	binary.NativeEndian.PutUint32(buf, uint32(v))
	return buf
}
func (I32) Less(a, b int32) bool  { return a < b }
func (I32) Equal(a, b int32) bool { return a == b }
func (I32) Add(a, b int32) int32  { return a + b }
func (I32) Format(v int32) string { return strconv.FormatInt(int64(v), 10) }
func (I32) Parse(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("i32: %w", err)
	}
	return int32(n), nil
}

// U32 implements Kind[uint32].
type U32 struct{}

func (U32) Name() string { return "u32" }
func (U32) Size() int    { return 4 }
func (U32) DecodeAt(b []byte, off int) (uint32, bool) {
	if off < 0 || off+4 > len(b) {
		return 0, false
	}
	return binary.NativeEndian.Uint32(b[off : off+4]), true
}
func (U32) Encode(v uint32) []byte {
	buf := make([]byte, 4)
	binary.NativeEndian.PutUint32(buf, v)
	return buf
}
func (U32) Less(a, b uint32) bool  { return a < b }
func (U32) Equal(a, b uint32) bool { return a == b }
func (U32) Add(a, b uint32) uint32 { return a + b }
func (U32) Format(v uint32) string { return strconv.FormatUint(uint64(v), 10) }
func (U32) Parse(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("u32: %w", err)
	}
	return uint32(n), nil
}

// I64 implements Kind[int64].
type I64 struct{}

func (I64) Name() string { return "i64" }
func (I64) Size() int    { return 8 }
func (I64) DecodeAt(b []byte, off int) (int64, bool) {
	if off < 0 || off+8 > len(b) {
		return 0, false
	}
	return int64(binary.NativeEndian.Uint64(b[off : off+8])), true
}
func (I64) Encode(v int64) []byte {
	buf := make([]byte, 8)
	binary.NativeEndian.PutUint64(buf, uint64(v))
	return buf
}
func (I64) Less(a, b int64) bool  { return a < b }
func (I64) Equal(a, b int64) bool { return a == b }
func (I64) Add(a, b int64) int64  { return a + b }
func (I64) Format(v int64) string { return strconv.FormatInt(v, 10) }
func (I64) Parse(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("i64: %w", err)
	}
	return n, nil
}

// U64 implements Kind[uint64].
type U64 struct{}

func (U64) Name() string { return "u64" }
func (U64) Size() int    { return 8 }
func (U64) DecodeAt(b []byte, off int) (uint64, bool) {
	if off < 0 || off+8 > len(b) {
		return 0, false
	}
	return binary.NativeEndian.Uint64(b[off : off+8]), true
}
func (U64) Encode(v uint64) []byte {
	buf := make([]byte, 8)
	binary.NativeEndian.PutUint64(buf, v)
	return buf
}
func (U64) Less(a, b uint64) bool  { return a < b }
func (U64) Equal(a, b uint64) bool { return a == b }
func (U64) Add(a, b uint64) uint64 { return a + b }
func (U64) Format(v uint64) string { return strconv.FormatUint(v, 10) }
func (U64) Parse(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("u64: %w", err)
	}
	return n, nil
}
