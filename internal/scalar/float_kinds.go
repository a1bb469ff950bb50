package scalar

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

// Float32 and Float64 carry a floating value alongside its total-ordered
// bit projection, so candidate sets (which are keyed and compared by
// value) behave like an ordered set even in the presence of NaN and
// signed zero, per spec.md's "floating kinds are carried as total-order
// wrapped types" requirement.
type Float32 struct {
	V    float32
	bits uint32 // monotonic projection of V's IEEE754 bits
}

type Float64 struct {
	V    float64
	bits uint64
}

// orderedBits32 maps IEEE754 bits to a monotonically increasing uint32:
// for non-negative floats, flip the sign bit; for negative floats, flip
// every bit. This is the standard "totalOrder"-ish transform, canonical
// enough for scan-set ordering purposes (NaN sorts by its raw payload,
// which is a stable, if arbitrary, position).
func orderedBits32(bits uint32) uint32 {
	if bits&(1<<31) != 0 {
		return ^bits
	}
	return bits | (1 << 31)
}

func orderedBits64(bits uint64) uint64 {
	if bits&(1<<63) != 0 {
		return ^bits
	}
	return bits | (1 << 63)
}

func newFloat32(v float32) Float32 {
	return Float32{V: v, bits: orderedBits32(math.Float32bits(v))}
}

func newFloat64(v float64) Float64 {
	return Float64{V: v, bits: orderedBits64(math.Float64bits(v))}
}

// F32 implements Kind[Float32].
type F32 struct{}

func (F32) Name() string { return "f32" }
func (F32) Size() int    { return 4 }
func (F32) DecodeAt(b []byte, off int) (Float32, bool) {
	if off < 0 || off+4 > len(b) {
		return Float32{}, false
	}
	bits := binary.NativeEndian.Uint32(b[off : off+4])
	return newFloat32(math.Float32frombits(bits)), true
}
func (F32) Encode(v Float32) []byte {
	buf := make([]byte, 4)
	binary.NativeEndian.PutUint32(buf, math.Float32bits(v.V))
	return buf
}
func (F32) Less(a, b Float32) bool  { return a.bits < b.bits }
func (F32) Equal(a, b Float32) bool { return a.bits == b.bits }
func (F32) Add(a, b Float32) Float32 {
	return newFloat32(a.V + b.V)
}
func (F32) Format(v Float32) string { return strconv.FormatFloat(float64(v.V), 'g', -1, 32) }
func (F32) Parse(s string) (Float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return Float32{}, fmt.Errorf("f32: %w", err)
	}
	return newFloat32(float32(f)), nil
}

// F64 implements Kind[Float64].
type F64 struct{}

func (F64) Name() string { return "f64" }
func (F64) Size() int    { return 8 }
func (F64) DecodeAt(b []byte, off int) (Float64, bool) {
	if off < 0 || off+8 > len(b) {
		return Float64{}, false
	}
	bits := binary.NativeEndian.Uint64(b[off : off+8])
	return newFloat64(math.Float64frombits(bits)), true
}
func (F64) Encode(v Float64) []byte {
	buf := make([]byte, 8)
	binary.NativeEndian.PutUint64(buf, math.Float64bits(v.V))
	return buf
}
func (F64) Less(a, b Float64) bool  { return a.bits < b.bits }
func (F64) Equal(a, b Float64) bool { return a.bits == b.bits }
func (F64) Add(a, b Float64) Float64 {
	return newFloat64(a.V + b.V)
}
func (F64) Format(v Float64) string { return strconv.FormatFloat(v.V, 'g', -1, 64) }
func (F64) Parse(s string) (Float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Float64{}, fmt.Errorf("f64: %w", err)
	}
	return newFloat64(f), nil
}
