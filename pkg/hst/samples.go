package hst

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"
)

// Raw codes the historian writes in place of a 16-bit measurement.
const (
	rawNoData  int16 = -32001
	rawInvalid int16 = -32002
)

// Bit patterns the historian writes in place of an 8-byte measurement.
const (
	bitsInvalid int64 = 4294949819
	bitsNoData  int64 = 4294945450
)

// SampleOptions controls how a sample stream is filtered and rounded.
type SampleOptions struct {
	// DiscardInvalid drops 8-byte samples that carry an invalid marker or
	// decode to NaN. 16-bit sentinel codes are always dropped.
	DiscardInvalid bool
	// Precision is the number of decimals values are rounded to.
	Precision int
	// From and To restrict output to samples with From <= t <= To. The window
	// applies only when both are set.
	From time.Time
	To   time.Time
	// Location presents sample times in a zone. Nil keeps decoded UTC.
	Location *time.Location
}

func (o SampleOptions) windowed() bool {
	return !o.From.IsZero() && !o.To.IsZero()
}

// Sample is one decoded measurement. Index is its position in the raw stream.
type Sample struct {
	Index int64
	Time  time.Time
	Value float64
}

// Samples is a forward-only stream of decoded samples. It owns the
// underlying reader's closer and releases it on exhaustion, on the first
// error, or on Close, whichever comes first.
//
//	for s.Next() {
//		v := s.Sample()
//	}
//	if err := s.Err(); err != nil { ... }
type Samples struct {
	r      *bufio.Reader
	closer io.Closer
	layout Layout
	header FileHeader
	scale  EngineeringScale
	opts   SampleOptions

	buf      [8]byte
	index    int64
	skipped  int64
	filtered int64
	cur      Sample
	err      error
	done     bool
}

// NewSamples decodes samples from r, which must be positioned at the first
// sample record. If r implements io.Closer it is closed when the stream ends.
func NewSamples(r io.Reader, l Layout, h FileHeader, scale EngineeringScale, opts SampleOptions) *Samples {
	c, _ := r.(io.Closer)
	return newSamples(r, c, l, h, scale, opts)
}

func newSamples(r io.Reader, c io.Closer, l Layout, h FileHeader, scale EngineeringScale, opts SampleOptions) *Samples {
	s := &Samples{
		closer: c,
		layout: l,
		header: h,
		scale:  scale,
		opts:   opts,
	}
	if br, ok := r.(*bufio.Reader); ok {
		s.r = br
	} else {
		s.r = bufio.NewReader(r)
	}
	if _, err := LayoutFor(uint16(l)); err != nil {
		s.finish(err)
	}
	return s
}

// Next advances to the next emitted sample. It returns false at end of
// stream or on error; check Err afterwards.
func (s *Samples) Next() bool {
	if s.done {
		return false
	}
	n := s.layout.SampleSize()
	for {
		_, err := io.ReadFull(s.r, s.buf[:n])
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			s.finish(nil)
			return false
		case errors.Is(err, io.ErrUnexpectedEOF):
			s.finish(fmt.Errorf("%w: sample %d", ErrTruncatedData, s.index))
			return false
		default:
			s.finish(err)
			return false
		}

		idx := s.index
		s.index++

		v, ok := s.decode(s.buf[:n])
		if !ok {
			s.skipped++
			continue
		}
		t := localTime(s.header.SampleTime(idx), s.layout, s.opts.Location)
		if s.opts.windowed() && (t.Before(s.opts.From) || t.After(s.opts.To)) {
			s.filtered++
			continue
		}
		s.cur = Sample{Index: idx, Time: t, Value: v}
		return true
	}
}

func (s *Samples) decode(b []byte) (float64, bool) {
	if s.layout == LayoutV5 {
		raw := int16(binary.LittleEndian.Uint16(b))
		if raw == rawNoData || raw == rawInvalid {
			return 0, false
		}
		return s.scale.Calibrate(raw, s.opts.Precision), true
	}

	bits := binary.LittleEndian.Uint64(b)
	v := math.Float64frombits(bits)
	if s.opts.DiscardInvalid {
		marker := int64(bits)
		if marker == bitsInvalid || marker == bitsNoData || math.IsNaN(v) {
			return 0, false
		}
	}
	return Round(v, s.opts.Precision), true
}

// Sample returns the sample produced by the last successful Next.
func (s *Samples) Sample() Sample {
	return s.cur
}

// Err returns the error that stopped the stream, if any. Reaching the end of
// the file is not an error.
func (s *Samples) Err() error {
	return s.err
}

// Read is the number of raw sample records consumed so far.
func (s *Samples) Read() int64 {
	return s.index
}

// Skipped is the number of records dropped as invalid.
func (s *Samples) Skipped() int64 {
	return s.skipped
}

// Filtered is the number of valid records outside the time window.
func (s *Samples) Filtered() int64 {
	return s.filtered
}

// Close stops the stream and releases the underlying reader. It is safe to
// call more than once.
func (s *Samples) Close() error {
	s.done = true
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

func (s *Samples) finish(err error) {
	s.done = true
	s.err = err
	if s.closer != nil {
		if cerr := s.closer.Close(); cerr != nil && s.err == nil {
			s.err = cerr
		}
		s.closer = nil
	}
}
