package hst

import (
	"fmt"
	"time"
)

// FileHeader describes one data file. The same record appears in the master
// catalog and at the start of the data file itself.
type FileHeader struct {
	ID         string
	Type       uint16
	Version    uint16
	StartEvent int64
	LogName    string
	Mode       uint32
	Area       uint16
	Priv       uint16
	FileType   uint16
	// SamplePeriod is in milliseconds for both layouts.
	SamplePeriod uint32
	EngUnits     string
	Format       uint32
	StartTime    time.Time
	EndTime      time.Time
	DataLength   uint32
	FilePointer  uint32
	EndEvent     int64
}

// DecodeFileHeader decodes a standalone header record in the given layout.
func DecodeFileHeader(b []byte, l Layout) (FileHeader, error) {
	if _, err := LayoutFor(uint16(l)); err != nil {
		return FileHeader{}, err
	}
	if len(b) < l.HeaderSize() {
		return FileHeader{}, fmt.Errorf("%w: file header needs %d bytes, have %d",
			ErrTruncatedHeader, l.HeaderSize(), len(b))
	}

	r := newFieldReader(b[:l.HeaderSize()])
	var h FileHeader
	h.ID = r.readText(8)
	h.Type = r.readU16()
	h.Version = r.readU16()
	if l == LayoutV6 {
		h.StartEvent = r.readI64()
		r.skip(12)
	} else {
		h.StartEvent = int64(r.readI32())
	}
	h.LogName = r.readText(80)
	h.Mode = r.readU32()
	h.Area = r.readU16()
	h.Priv = r.readU16()
	h.FileType = r.readU16()
	h.SamplePeriod = r.readU32()
	h.EngUnits = r.readText(8)
	h.Format = r.readU32()
	if l == LayoutV6 {
		h.StartTime = filetimeTime(r.readU64())
		h.EndTime = filetimeTime(r.readU64())
	} else {
		h.StartTime = unixSecondsTime(r.readU32())
		h.EndTime = unixSecondsTime(r.readU32())
	}
	h.DataLength = r.readU32()
	h.FilePointer = r.readU32()
	if l == LayoutV6 {
		h.EndEvent = r.readI64()
		r.skip(6)
	} else {
		h.EndEvent = int64(r.readI32())
		r.skip(2)
	}
	return h, nil
}

// Localize returns h with StartTime and EndTime presented in loc, using the
// time semantics of layout l. Version 6 wall clocks are kept as written.
func (h FileHeader) Localize(l Layout, loc *time.Location) FileHeader {
	h.StartTime = localTime(h.StartTime, l, loc)
	h.EndTime = localTime(h.EndTime, l, loc)
	return h
}

// Period is the spacing between consecutive samples.
func (h FileHeader) Period() time.Duration {
	return time.Duration(h.SamplePeriod) * time.Millisecond
}

// SampleTime returns the timestamp of the sample at position index in the
// stream. Skipped samples still occupy a position.
func (h FileHeader) SampleTime(index int64) time.Time {
	return h.StartTime.Add(time.Duration(index) * h.Period())
}

// Covers reports whether t falls inside [StartTime, EndTime).
func (h FileHeader) Covers(t time.Time) bool {
	return !h.StartTime.After(t) && h.EndTime.After(t)
}
