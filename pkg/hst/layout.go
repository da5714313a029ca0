package hst

import "fmt"

// Layout selects one of the two on-disk record shapes. It is resolved once from
// the master header version and threaded through every downstream decode.
type Layout uint8

const (
	LayoutV5 Layout = 5
	LayoutV6 Layout = 6
)

const (
	masterHeaderSize = 176
	titleBlockSize   = 112
	scaleBlockSize   = 16

	fileHeaderSizeV5 = 144
	fileHeaderSizeV6 = 176

	nameWidthV5 = 144
	nameWidthV6 = 272
)

// LayoutFor maps a header version field to its layout.
func LayoutFor(version uint16) (Layout, error) {
	switch version {
	case 5:
		return LayoutV5, nil
	case 6:
		return LayoutV6, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedFormat, version)
	}
}

func (l Layout) String() string {
	switch l {
	case LayoutV5:
		return "2 byte"
	case LayoutV6:
		return "8 byte"
	default:
		return fmt.Sprintf("layout(%d)", uint8(l))
	}
}

// HeaderSize is the size of a standalone file header record.
func (l Layout) HeaderSize() int {
	if l == LayoutV6 {
		return fileHeaderSizeV6
	}
	return fileHeaderSizeV5
}

// NameWidth is the width of the filename field preceding a catalog header.
func (l Layout) NameWidth() int {
	if l == LayoutV6 {
		return nameWidthV6
	}
	return nameWidthV5
}

// EntrySize is the size of one catalog entry (filename field plus header).
func (l Layout) EntrySize() int {
	return l.NameWidth() + l.HeaderSize()
}

// SampleSize is the width of one raw sample record.
func (l Layout) SampleSize() int {
	if l == LayoutV6 {
		return 8
	}
	return 2
}
