package hst

import (
	"encoding/binary"
	"math"
)

// fieldReader walks a fixed-size record. Callers check the record length up
// front, so individual reads never run past the end of b.
type fieldReader struct {
	b   []byte
	off int
}

func newFieldReader(b []byte) *fieldReader {
	return &fieldReader{b: b}
}

func (r *fieldReader) readN(n int) []byte {
	b := r.b[r.off : r.off+n]
	r.off += n
	return b
}

func (r *fieldReader) skip(n int) {
	r.off += n
}

func (r *fieldReader) readU16() uint16 {
	return binary.LittleEndian.Uint16(r.readN(2))
}

func (r *fieldReader) readU32() uint32 {
	return binary.LittleEndian.Uint32(r.readN(4))
}

func (r *fieldReader) readI32() int32 {
	return int32(r.readU32())
}

func (r *fieldReader) readU64() uint64 {
	return binary.LittleEndian.Uint64(r.readN(8))
}

func (r *fieldReader) readI64() int64 {
	return int64(r.readU64())
}

func (r *fieldReader) readF32() float32 {
	return math.Float32frombits(r.readU32())
}

func (r *fieldReader) readText(n int) string {
	return decodeText(r.readN(n))
}
