package export

import (
	"errors"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/samcharles93/trendconv/pkg/hst"
)

const (
	xlsxSheet = "Sheet1"
	// Built-in number format "m/d/yy h:mm".
	xlsxDateTimeFormat = 22
)

// Excel serial day zero in the 1900 date system.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

type xlsxSink struct {
	path   string
	f      *excelize.File
	sw     *excelize.StreamWriter
	style  int
	opts   Options
	row    int
	closed bool
}

func newXLSXSink(path string, opts Options) (*xlsxSink, error) {
	f := excelize.NewFile()
	style, err := f.NewStyle(&excelize.Style{NumFmt: xlsxDateTimeFormat})
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	sw, err := f.NewStreamWriter(xlsxSheet)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := sw.SetColWidth(1, 1, 20); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &xlsxSink{path: path, f: f, sw: sw, style: style, opts: opts}, nil
}

func (s *xlsxSink) Write(smp hst.Sample) error {
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	var value interface{} = smp.Value
	if math.IsNaN(smp.Value) || math.IsInf(smp.Value, 0) {
		value = nil
	}
	return s.sw.SetRow(cell, []interface{}{
		excelize.Cell{StyleID: s.style, Value: excelSerial(smp.Time, s.opts.location())},
		value,
	})
}

func (s *xlsxSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.sw.Flush()
	if err == nil {
		err = s.f.SaveAs(s.path)
	}
	return errors.Join(err, s.f.Close())
}

func (s *xlsxSink) Path() string {
	return s.path
}

// excelSerial converts t to an Excel serial date holding the wall clock of t
// in loc. Excel has no notion of time zones.
func excelSerial(t time.Time, loc *time.Location) float64 {
	w := t.In(loc)
	wall := time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), time.UTC)
	return float64(wall.Sub(excelEpoch)) / float64(24*time.Hour)
}
