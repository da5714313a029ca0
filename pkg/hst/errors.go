package hst

import "errors"

var (
	ErrUnsupportedFormat = errors.New("hst: unsupported format version")
	ErrTruncatedHeader   = errors.New("hst: truncated header")
	ErrTruncatedData     = errors.New("hst: truncated sample")
	ErrInvalidDate       = errors.New("hst: invalid date")
	ErrFileIndex         = errors.New("hst: file index out of range")
)
