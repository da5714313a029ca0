package export

import (
	"bufio"
	"encoding/csv"
	"os"

	"github.com/samcharles93/trendconv/pkg/hst"
)

type csvSink struct {
	path string
	f    *os.File
	bw   *bufio.Writer
	w    *csv.Writer
	opts Options
	rec  [2]string
}

func newCSVSink(path string, opts Options) (*csvSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriter(f)
	s := &csvSink{path: path, f: f, bw: bw, w: csv.NewWriter(bw), opts: opts}
	if err := s.w.Write([]string{"Time", "Value"}); err != nil {
		_ = f.Close()
		return nil, err
	}
	return s, nil
}

func (s *csvSink) Write(smp hst.Sample) error {
	s.rec[0] = FormatTime(smp.Time, s.opts.location())
	s.rec[1] = FormatValue(smp.Value)
	return s.w.Write(s.rec[:])
}

func (s *csvSink) Close() error {
	s.w.Flush()
	err := s.w.Error()
	if ferr := s.bw.Flush(); err == nil {
		err = ferr
	}
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}

func (s *csvSink) Path() string {
	return s.path
}
