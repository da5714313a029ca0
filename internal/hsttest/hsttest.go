// Package hsttest builds synthetic historian archives for tests. Production
// code only decodes; these encoders let tests produce byte-exact catalogs
// and data files.
package hsttest

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samcharles93/trendconv/pkg/hst"
)

const (
	MasterHeaderSize = 176
	TitleBlockSize   = 112
	ScaleBlockSize   = 16

	// Marker bit patterns the historian writes for invalid 8-byte samples.
	BitsInvalid uint64 = 4294949819
	BitsNoData  uint64 = 4294945450

	// Marker codes the historian writes for invalid 2-byte samples.
	CodeNoData  int16 = -32001
	CodeInvalid int16 = -32002
)

const filetimeUnixOffset = 11644473600

var le = binary.LittleEndian

// Entry is one catalog entry to encode.
type Entry struct {
	Name   string
	Header hst.FileHeader
}

// Filetime converts t to 100ns ticks since 1601-01-01 UTC.
func Filetime(t time.Time) uint64 {
	secs := uint64(t.Unix() + filetimeUnixOffset)
	return secs*10_000_000 + uint64(t.Nanosecond()/100)
}

func putText(b []byte, s string) {
	copy(b, s)
}

// EncodeHeader encodes a standalone file header record.
func EncodeHeader(h hst.FileHeader, l hst.Layout) []byte {
	b := make([]byte, l.HeaderSize())
	putText(b[0:8], h.ID)
	le.PutUint16(b[8:], h.Type)
	le.PutUint16(b[10:], h.Version)
	off := 12
	if l == hst.LayoutV6 {
		le.PutUint64(b[off:], uint64(h.StartEvent))
		off += 8 + 12
	} else {
		le.PutUint32(b[off:], uint32(int32(h.StartEvent)))
		off += 4
	}
	putText(b[off:off+80], h.LogName)
	off += 80
	le.PutUint32(b[off:], h.Mode)
	le.PutUint16(b[off+4:], h.Area)
	le.PutUint16(b[off+6:], h.Priv)
	le.PutUint16(b[off+8:], h.FileType)
	le.PutUint32(b[off+10:], h.SamplePeriod)
	off += 14
	putText(b[off:off+8], h.EngUnits)
	off += 8
	le.PutUint32(b[off:], h.Format)
	off += 4
	if l == hst.LayoutV6 {
		le.PutUint64(b[off:], Filetime(h.StartTime))
		le.PutUint64(b[off+8:], Filetime(h.EndTime))
		off += 16
	} else {
		le.PutUint32(b[off:], uint32(h.StartTime.Unix()))
		le.PutUint32(b[off+4:], uint32(h.EndTime.Unix()))
		off += 8
	}
	le.PutUint32(b[off:], h.DataLength)
	le.PutUint32(b[off+4:], h.FilePointer)
	off += 8
	if l == hst.LayoutV6 {
		le.PutUint64(b[off:], uint64(h.EndEvent))
	} else {
		le.PutUint32(b[off:], uint32(int32(h.EndEvent)))
	}
	return b
}

// EncodeMaster encodes the fixed master header.
func EncodeMaster(m hst.MasterHeader) []byte {
	b := make([]byte, MasterHeaderSize)
	putText(b[0:128], m.Title)
	putText(b[128:136], m.ID)
	le.PutUint16(b[136:], m.Type)
	le.PutUint16(b[138:], m.Version)
	le.PutUint16(b[148:], m.MaxFiles)
	le.PutUint16(b[150:], m.FilesCreated)
	le.PutUint16(b[152:], m.Next)
	le.PutUint16(b[154:], m.Addon)
	return b
}

// EncodeCatalog encodes a master header and its entries. FilesCreated is
// taken from len(entries); the layout from m.Version.
func EncodeCatalog(m hst.MasterHeader, entries []Entry) []byte {
	l := hst.Layout(m.Version)
	m.FilesCreated = uint16(len(entries))
	out := EncodeMaster(m)
	for _, e := range entries {
		name := make([]byte, l.NameWidth())
		putText(name, e.Name)
		out = append(out, name...)
		out = append(out, EncodeHeader(e.Header, l)...)
	}
	return out
}

// EncodeScale encodes an engineering scale block.
func EncodeScale(s hst.EngineeringScale) []byte {
	b := make([]byte, ScaleBlockSize)
	le.PutUint32(b[0:], math.Float32bits(s.RawZero))
	le.PutUint32(b[4:], math.Float32bits(s.RawFull))
	le.PutUint32(b[8:], math.Float32bits(s.EngZero))
	le.PutUint32(b[12:], math.Float32bits(s.EngFull))
	return b
}

// EncodeDataFile encodes a title block, scale, header and raw samples.
func EncodeDataFile(title string, s hst.EngineeringScale, h hst.FileHeader, l hst.Layout, samples []byte) []byte {
	out := make([]byte, TitleBlockSize)
	putText(out, title)
	out = append(out, EncodeScale(s)...)
	out = append(out, EncodeHeader(h, l)...)
	return append(out, samples...)
}

// V5Samples encodes 2-byte raw codes.
func V5Samples(codes ...int16) []byte {
	b := make([]byte, 2*len(codes))
	for i, c := range codes {
		le.PutUint16(b[i*2:], uint16(c))
	}
	return b
}

// V6Bits encodes 8-byte sample bit patterns.
func V6Bits(bits ...uint64) []byte {
	b := make([]byte, 8*len(bits))
	for i, v := range bits {
		le.PutUint64(b[i*8:], v)
	}
	return b
}

// V6Samples encodes 8-byte float samples.
func V6Samples(vals ...float64) []byte {
	bits := make([]uint64, len(vals))
	for i, v := range vals {
		bits[i] = math.Float64bits(v)
	}
	return V6Bits(bits...)
}

// Header returns a fully populated header for layout l.
func Header(l hst.Layout, start time.Time, period uint32) hst.FileHeader {
	return hst.FileHeader{
		ID:           "HSTFILE",
		Type:         1,
		Version:      uint16(l),
		StartEvent:   -7,
		LogName:      "PT101 Boiler pressure",
		Mode:         2,
		Area:         3,
		Priv:         4,
		FileType:     5,
		SamplePeriod: period,
		EngUnits:     "bar",
		Format:       6,
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		DataLength:   3600,
		FilePointer:  9,
		EndEvent:     1 << 20,
	}
}

// Master returns a master header for layout l.
func Master(l hst.Layout) hst.MasterHeader {
	return hst.MasterHeader{
		Title:    "Plant A trend archive",
		ID:       "HSTMAST",
		Type:     2,
		Version:  uint16(l),
		MaxFiles: 16,
		Addon:    1,
	}
}

// WriteFile writes data to dir/name and returns the path.
func WriteFile(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write %s: %v", name, err)
	}
	return path
}

// AssertHeaderEqual compares headers, using time.Time.Equal for timestamps.
func AssertHeaderEqual(tb testing.TB, got, want hst.FileHeader) {
	tb.Helper()
	if !got.StartTime.Equal(want.StartTime) {
		tb.Fatalf("start time mismatch: got %v want %v", got.StartTime, want.StartTime)
	}
	if !got.EndTime.Equal(want.EndTime) {
		tb.Fatalf("end time mismatch: got %v want %v", got.EndTime, want.EndTime)
	}
	got.StartTime, got.EndTime = time.Time{}, time.Time{}
	want.StartTime, want.EndTime = time.Time{}, time.Time{}
	if got != want {
		tb.Fatalf("header mismatch:\n got %+v\nwant %+v", got, want)
	}
}
