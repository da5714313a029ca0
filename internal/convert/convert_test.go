package convert

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samcharles93/trendconv/internal/export"
	"github.com/samcharles93/trendconv/internal/hsttest"
	"github.com/samcharles93/trendconv/internal/logger"
	"github.com/samcharles93/trendconv/pkg/hst"
)

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

var percentScale = hst.EngineeringScale{RawZero: 0, RawFull: 32000, EngZero: 0, EngFull: 100}

// hourlyCatalog returns a v5 catalog of n consecutive one-hour files named
// archive\PT101.00<i>.
func hourlyCatalog(n int) []hsttest.Entry {
	entries := make([]hsttest.Entry, n)
	for i := range entries {
		entries[i] = hsttest.Entry{
			Name:   `archive\PT101.00` + string(rune('0'+i)),
			Header: hsttest.Header(hst.LayoutV5, day.Add(time.Duration(i)*time.Hour), 1000),
		}
	}
	return entries
}

func decodeCatalog(t *testing.T, entries []hsttest.Entry) *hst.Catalog {
	t.Helper()
	cat, err := hst.DecodeCatalog(hsttest.EncodeCatalog(hsttest.Master(hst.LayoutV5), entries))
	if err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	return cat
}

// writeArchive writes a catalog plus a data file for each index in data.
func writeArchive(t *testing.T, dir string, entries []hsttest.Entry, data map[int][]int16) string {
	t.Helper()
	for i, codes := range data {
		e := entries[i]
		hsttest.WriteFile(t, dir, hst.StripDirectory(e.Name),
			hsttest.EncodeDataFile("PT101", percentScale, e.Header, hst.LayoutV5, hsttest.V5Samples(codes...)))
	}
	return hsttest.WriteFile(t, dir, "TREND.HST",
		hsttest.EncodeCatalog(hsttest.Master(hst.LayoutV5), entries))
}

func intPtr(v int) *int { return &v }

func TestCheckCatalogPath(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"TREND.HST", "trend.hst", "dir/Trend.Hst"} {
		if err := CheckCatalogPath(ok); err != nil {
			t.Errorf("CheckCatalogPath(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"TREND.001", "trend", "trend.hst.bak"} {
		if err := CheckCatalogPath(bad); !errors.Is(err, ErrNotCatalog) {
			t.Errorf("CheckCatalogPath(%q): expected ErrNotCatalog, got %v", bad, err)
		}
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("plant", 10*3600)
	got, err := ParseDate("2024-03-01", loc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if want := time.Date(2024, 3, 1, 0, 0, 0, 0, loc); !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}

	for _, bad := range []string{"01/03/2024", "2024-13-01", ""} {
		if _, err := ParseDate(bad, loc); !errors.Is(err, hst.ErrInvalidDate) {
			t.Errorf("ParseDate(%q): expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestSelection(t *testing.T) {
	t.Parallel()

	cat := decodeCatalog(t, hourlyCatalog(3))
	tests := []struct {
		name string
		opts Options
		want []int
	}{
		{"default excludes last", Options{}, []int{0, 1}},
		{"range", Options{Start: day.Add(30 * time.Minute), Stop: day.Add(90 * time.Minute)}, []int{0, 1}},
		{"range covering last", Options{Start: day.Add(150 * time.Minute), Stop: day.Add(170 * time.Minute)}, []int{2}},
		{"empty range falls back", Options{Start: day.AddDate(1, 0, 0), Stop: day.AddDate(1, 0, 1)}, []int{0, 1}},
		{"start only is ignored", Options{Start: day.Add(150 * time.Minute)}, []int{0, 1}},
		{"index zero", Options{FileIndex: intPtr(0)}, []int{0}},
		{"index overrides dates", Options{FileIndex: intPtr(2), Start: day, Stop: day.Add(time.Minute)}, []int{2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Selection(cat, tc.opts)
			if err != nil {
				t.Fatalf("selection: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v want %v", got, tc.want)
				}
			}
		})
	}

	if _, err := Selection(cat, Options{FileIndex: intPtr(3)}); !errors.Is(err, hst.ErrFileIndex) {
		t.Fatalf("out of range index: expected ErrFileIndex, got %v", err)
	}
}

func TestResolvePath(t *testing.T) {
	t.Parallel()

	opts := Options{CatalogPath: filepath.Join("data", "TREND.HST")}
	if got := ResolvePath("PT101.001", opts); got != "PT101.001" {
		t.Fatalf("working directory: got %q", got)
	}
	opts.RelativeToCatalog = true
	if got, want := ResolvePath("PT101.001", opts), filepath.Join("data", "PT101.001"); got != want {
		t.Fatalf("relative to catalog: got %q want %q", got, want)
	}
	if got := ResolvePath("/abs/PT101.001", opts); got != "/abs/PT101.001" {
		t.Fatalf("absolute: got %q", got)
	}
}

func TestRunCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := t.TempDir()
	entries := hourlyCatalog(3)
	catPath := writeArchive(t, dir, entries, map[int][]int16{
		0: {16000, hsttest.CodeNoData, 32000},
		1: {0},
	})

	var logs bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.JSON(&logs, slog.LevelInfo))
	report, err := Run(ctx, Options{
		CatalogPath:       catPath,
		Format:            export.FormatCSV,
		OutDir:            out,
		Precision:         1,
		StripDirs:         true,
		RelativeToCatalog: true,
		Location:          time.UTC,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.RunID == "" {
		t.Fatalf("missing run id")
	}
	if len(report.Files) != 2 {
		t.Fatalf("files: got %d want 2", len(report.Files))
	}
	first := report.Files[0]
	if first.Written != 2 || first.Skipped != 1 {
		t.Fatalf("first file counts: %+v", first)
	}

	data, err := os.ReadFile(filepath.Join(out, "PT101_000.csv"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "Time,Value\n" +
		"2024-03-01 00:00:00,50.0\n" +
		"2024-03-01 00:00:02,100.0\n"
	if string(data) != want {
		t.Fatalf("csv mismatch:\n got %q\nwant %q", string(data), want)
	}

	data, err = os.ReadFile(filepath.Join(out, "PT101_001.csv"))
	if err != nil {
		t.Fatalf("read second output: %v", err)
	}
	if want := "Time,Value\n2024-03-01 01:00:00,0.0\n"; string(data) != want {
		t.Fatalf("second csv mismatch: got %q want %q", string(data), want)
	}
	if _, err := os.Stat(filepath.Join(out, "PT101_002.csv")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("last entry must not be converted by default: %v", err)
	}
	if !strings.Contains(logs.String(), report.RunID) {
		t.Fatalf("log lines should carry the run id: %s", logs.String())
	}
}

func TestRunSampleWindow(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := t.TempDir()
	entries := hourlyCatalog(2)
	catPath := writeArchive(t, dir, entries, map[int][]int16{
		0: {0, 3200, 6400, 9600},
	})

	report, err := Run(context.Background(), Options{
		CatalogPath:       catPath,
		Format:            export.FormatCSV,
		OutDir:            out,
		Start:             day.Add(time.Second),
		Stop:              day.Add(2 * time.Second),
		Precision:         1,
		StripDirs:         true,
		RelativeToCatalog: true,
		Location:          time.UTC,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Files) != 1 || report.Files[0].Written != 2 {
		t.Fatalf("report: %+v", report.Files)
	}
	data, err := os.ReadFile(filepath.Join(out, "PT101_000.csv"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "Time,Value\n" +
		"2024-03-01 00:00:01,10.0\n" +
		"2024-03-01 00:00:02,20.0\n"
	if string(data) != want {
		t.Fatalf("csv mismatch:\n got %q\nwant %q", string(data), want)
	}
}

func TestRunMissingDataFile(t *testing.T) {
	t.Parallel()

	entries := hourlyCatalog(3)
	opts := func(dir, out string, keepGoing bool) Options {
		return Options{
			CatalogPath:       filepath.Join(dir, "TREND.HST"),
			Format:            export.FormatCSV,
			OutDir:            out,
			Precision:         1,
			StripDirs:         true,
			RelativeToCatalog: true,
			KeepGoing:         keepGoing,
			Location:          time.UTC,
		}
	}

	t.Run("stop", func(t *testing.T) {
		t.Parallel()
		dir, out := t.TempDir(), t.TempDir()
		writeArchive(t, dir, entries, map[int][]int16{1: {0}})

		report, err := Run(context.Background(), opts(dir, out, false))
		if !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("expected fs.ErrNotExist, got %v", err)
		}
		if len(report.Files) != 1 {
			t.Fatalf("run should stop after the first failure: %+v", report.Files)
		}
		if _, err := os.Stat(filepath.Join(out, "PT101_001.csv")); !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("second file should not be written: %v", err)
		}
	})

	t.Run("keep going", func(t *testing.T) {
		t.Parallel()
		dir, out := t.TempDir(), t.TempDir()
		writeArchive(t, dir, entries, map[int][]int16{1: {0}})

		report, err := Run(context.Background(), opts(dir, out, true))
		if !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("expected fs.ErrNotExist, got %v", err)
		}
		if len(report.Files) != 2 {
			t.Fatalf("files: got %d want 2", len(report.Files))
		}
		if report.Files[0].Err == nil || report.Files[1].Err != nil {
			t.Fatalf("unexpected per-file errors: %+v", report.Files)
		}
		if _, err := os.Stat(filepath.Join(out, "PT101_001.csv")); err != nil {
			t.Fatalf("second file should be written: %v", err)
		}
	})
}

func TestRunTruncatedDataRemovesOutput(t *testing.T) {
	t.Parallel()

	dir, out := t.TempDir(), t.TempDir()
	entries := hourlyCatalog(2)
	catPath := writeArchive(t, dir, entries, nil)
	raw := hsttest.EncodeDataFile("PT101", percentScale, entries[0].Header, hst.LayoutV5, hsttest.V5Samples(100, 200))
	hsttest.WriteFile(t, dir, "PT101.000", raw[:len(raw)-1])

	_, err := Run(context.Background(), Options{
		CatalogPath:       catPath,
		Format:            export.FormatCSV,
		OutDir:            out,
		StripDirs:         true,
		RelativeToCatalog: true,
	})
	if !errors.Is(err, hst.ErrTruncatedData) {
		t.Fatalf("expected ErrTruncatedData, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "PT101_000.csv")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("partial output should be removed: %v", err)
	}
}

func TestRunRejectsNonCatalog(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), Options{CatalogPath: "TREND.001"})
	if !errors.Is(err, ErrNotCatalog) {
		t.Fatalf("expected ErrNotCatalog, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	dir, out := t.TempDir(), t.TempDir()
	catPath := writeArchive(t, dir, hourlyCatalog(2), map[int][]int16{0: {0}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := Run(ctx, Options{
		CatalogPath:       catPath,
		Format:            export.FormatCSV,
		OutDir:            out,
		StripDirs:         true,
		RelativeToCatalog: true,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(report.Files) != 0 {
		t.Fatalf("no files should be converted: %+v", report.Files)
	}
}

func TestRunV6WallClockInLocation(t *testing.T) {
	t.Parallel()

	dir, out := t.TempDir(), t.TempDir()
	est := time.FixedZone("EST", -5*3600)

	first := hsttest.Header(hst.LayoutV6, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 1000)
	first.EndTime = first.StartTime.Add(4 * time.Hour)
	second := hsttest.Header(hst.LayoutV6, time.Date(2020, 1, 2, 22, 0, 0, 0, time.UTC), 3_600_000)
	second.EndTime = second.StartTime.Add(4 * time.Hour)
	entries := []hsttest.Entry{
		{Name: "FT200.000", Header: first},
		{Name: "FT200.001", Header: second},
		{Name: "FT200.002", Header: hsttest.Header(hst.LayoutV6, time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC), 1000)},
	}
	hsttest.WriteFile(t, dir, "FT200.000",
		hsttest.EncodeDataFile("FT200", hst.EngineeringScale{}, first, hst.LayoutV6, hsttest.V6Samples(1.25, 2.5)))
	hsttest.WriteFile(t, dir, "FT200.001",
		hsttest.EncodeDataFile("FT200", hst.EngineeringScale{}, second, hst.LayoutV6, hsttest.V6Samples(7, 8, 9, 10)))
	catPath := hsttest.WriteFile(t, dir, "FLOW.HST", hsttest.EncodeCatalog(hsttest.Master(hst.LayoutV6), entries))

	start, err := ParseDate("2020-01-01", est)
	if err != nil {
		t.Fatalf("parse start: %v", err)
	}
	stop, err := ParseDate("2020-01-03", est)
	if err != nil {
		t.Fatalf("parse stop: %v", err)
	}

	report, err := Run(context.Background(), Options{
		CatalogPath:       catPath,
		Format:            export.FormatCSV,
		OutDir:            out,
		Start:             start,
		Stop:              stop,
		DiscardInvalid:    true,
		Precision:         1,
		RelativeToCatalog: true,
		Location:          est,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Files) != 2 {
		t.Fatalf("both entries touching the range should be converted: %+v", report.Files)
	}

	data, err := os.ReadFile(filepath.Join(out, "FT200_000.csv"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "Time,Value\n" +
		"2020-01-01 00:00:00,1.2\n" +
		"2020-01-01 00:00:01,2.5\n"
	if string(data) != want {
		t.Fatalf("csv mismatch:\n got %q\nwant %q", string(data), want)
	}

	// The window ends at the stop date's midnight, inclusive.
	data, err = os.ReadFile(filepath.Join(out, "FT200_001.csv"))
	if err != nil {
		t.Fatalf("read second output: %v", err)
	}
	want = "Time,Value\n" +
		"2020-01-02 22:00:00,7.0\n" +
		"2020-01-02 23:00:00,8.0\n" +
		"2020-01-03 00:00:00,9.0\n"
	if string(data) != want {
		t.Fatalf("second csv mismatch: got %q want %q", string(data), want)
	}
}

func TestRunWarnsOnOverfullCatalog(t *testing.T) {
	t.Parallel()

	dir, out := t.TempDir(), t.TempDir()
	entries := hourlyCatalog(2)
	m := hsttest.Master(hst.LayoutV5)
	m.MaxFiles = 1
	hsttest.WriteFile(t, dir, "PT101.000",
		hsttest.EncodeDataFile("PT101", percentScale, entries[0].Header, hst.LayoutV5, hsttest.V5Samples(0)))
	catPath := hsttest.WriteFile(t, dir, "TREND.HST", hsttest.EncodeCatalog(m, entries))

	var logs bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.JSON(&logs, slog.LevelInfo))
	if _, err := Run(ctx, Options{
		CatalogPath:       catPath,
		Format:            export.FormatCSV,
		OutDir:            out,
		StripDirs:         true,
		RelativeToCatalog: true,
	}); err != nil {
		t.Fatalf("an overfull catalog is still converted: %v", err)
	}
	if !strings.Contains(logs.String(), `"level":"WARN"`) || !strings.Contains(logs.String(), `"max_files":1`) {
		t.Fatalf("expected a warning about slots, got: %s", logs.String())
	}
}
