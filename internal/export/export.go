// Package export writes decoded sample streams to files.
package export

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/samcharles93/trendconv/pkg/hst"
)

type Format string

const (
	FormatXLSX  Format = "xls"
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// ParseFormat accepts the output type names used on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xls", "xlsx":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	case "jsonl", "json":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want xls, csv or jsonl)", s)
	}
}

// Ext is the file extension written for the format.
func (f Format) Ext() string {
	switch f {
	case FormatXLSX:
		return ".xlsx"
	case FormatJSONL:
		return ".jsonl"
	default:
		return "." + string(f)
	}
}

// Sink receives the samples of one data file.
type Sink interface {
	Write(s hst.Sample) error
	Close() error
	Path() string
}

// Options configure how samples are rendered.
type Options struct {
	Dir      string
	Location *time.Location
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

// OutputName derives the output file name from a stored data file name:
// the last backslash component with every dot replaced by an underscore.
func OutputName(stored string, f Format) string {
	base := strings.ReplaceAll(hst.StripDirectory(stored), ".", "_")
	return base + f.Ext()
}

// Create opens a sink for the data file stored under name.
func Create(f Format, name string, opts Options) (Sink, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, OutputName(name, f))
	switch f {
	case FormatCSV:
		return newCSVSink(path, opts)
	case FormatXLSX:
		return newXLSXSink(path, opts)
	case FormatJSONL:
		return newJSONLSink(path, opts)
	default:
		return nil, fmt.Errorf("unknown output format %q", f)
	}
}

// FormatTime renders t as "2006-01-02 15:04:05", adding microseconds only
// when they are non-zero.
func FormatTime(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	if t.Nanosecond()/1000 != 0 {
		return t.Format("2006-01-02 15:04:05.000000")
	}
	return t.Format(time.DateTime)
}

// FormatValue renders an already rounded value in its shortest form. Integral
// values keep a ".0" suffix, magnitudes below 1e-4 or from 1e16 up switch to
// exponent notation, and non-finite values print as nan, inf and -inf.
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	if a := math.Abs(v); a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
