package hst

import (
	"bufio"
	"fmt"
	"os"
)

// DataFile is an open data file positioned at its sample stream.
type DataFile struct {
	Path   string
	Title  string
	Scale  EngineeringScale
	Header FileHeader
	Layout Layout

	samples *Samples
}

// OpenDataFile reads the title block, engineering scale and header of a data
// file and prepares its sample stream. The layout comes from the owning
// catalog entry; the file's own version field is not consulted. Header times
// are presented in opts.Location when it is set.
func OpenDataFile(path string, l Layout, opts SampleOptions) (*DataFile, error) {
	if _, err := LayoutFor(uint16(l)); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	cleanup := func(err error) (*DataFile, error) {
		_ = f.Close()
		return nil, err
	}

	br := bufio.NewReader(f)
	head := make([]byte, titleBlockSize+scaleBlockSize+l.HeaderSize())
	if err := readRecord(br, head); err != nil {
		return cleanup(fmt.Errorf("%s: %w", path, err))
	}

	title := decodeText(head[:titleBlockSize])
	scale, err := DecodeScale(head[titleBlockSize : titleBlockSize+scaleBlockSize])
	if err != nil {
		return cleanup(fmt.Errorf("%s: %w", path, err))
	}
	h, err := DecodeFileHeader(head[titleBlockSize+scaleBlockSize:], l)
	if err != nil {
		return cleanup(fmt.Errorf("%s: %w", path, err))
	}

	return &DataFile{
		Path:    path,
		Title:   title,
		Scale:   scale,
		Header:  h.Localize(l, opts.Location),
		Layout:  l,
		samples: newSamples(br, f, l, h, scale, opts),
	}, nil
}

// Samples returns the file's sample stream. There is exactly one stream per
// open file; reopen the file to decode it again.
func (d *DataFile) Samples() *Samples {
	return d.samples
}

// Close releases the file handle if the stream has not already done so.
func (d *DataFile) Close() error {
	if d == nil || d.samples == nil {
		return nil
	}
	return d.samples.Close()
}
