package export

import (
	"bufio"
	"math"
	"os"

	"github.com/goccy/go-json"

	"github.com/samcharles93/trendconv/pkg/hst"
)

// jsonSample is one line of JSON-lines output. NaN values are written as null.
type jsonSample struct {
	Index int64    `json:"index"`
	Time  string   `json:"time"`
	Value *float64 `json:"value"`
}

type jsonlSink struct {
	path string
	f    *os.File
	bw   *bufio.Writer
	enc  *json.Encoder
	opts Options
}

func newJSONLSink(path string, opts Options) (*jsonlSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriter(f)
	return &jsonlSink{path: path, f: f, bw: bw, enc: json.NewEncoder(bw), opts: opts}, nil
}

func (s *jsonlSink) Write(smp hst.Sample) error {
	rec := jsonSample{
		Index: smp.Index,
		Time:  smp.Time.In(s.opts.location()).Format("2006-01-02T15:04:05.999999Z07:00"),
	}
	if !math.IsNaN(smp.Value) && !math.IsInf(smp.Value, 0) {
		v := smp.Value
		rec.Value = &v
	}
	return s.enc.Encode(rec)
}

func (s *jsonlSink) Close() error {
	err := s.bw.Flush()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}

func (s *jsonlSink) Path() string {
	return s.path
}
