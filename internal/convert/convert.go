// Package convert drives a conversion run: it reads a catalog, selects data
// files and streams each one into an export sink.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/trendconv/internal/export"
	"github.com/samcharles93/trendconv/internal/logger"
	"github.com/samcharles93/trendconv/pkg/hst"
)

var ErrNotCatalog = errors.New("catalog file must have a .HST extension")

const dateLayout = "2006-01-02"

// Options describe one conversion run.
type Options struct {
	CatalogPath string
	Format      export.Format
	OutDir      string

	// Start and Stop select files and samples only when both are set.
	Start time.Time
	Stop  time.Time
	// FileIndex overrides date selection when non-nil.
	FileIndex *int

	DiscardInvalid bool
	Precision      int
	StripDirs      bool
	// RelativeToCatalog resolves relative data file names against the
	// catalog's directory instead of the working directory.
	RelativeToCatalog bool
	// KeepGoing continues with the next file after a failure.
	KeepGoing bool
	Location  *time.Location
}

func (o Options) ranged() bool {
	return !o.Start.IsZero() && !o.Stop.IsZero()
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

// FileResult reports the outcome for one selected data file.
type FileResult struct {
	Index   int
	Source  string
	Output  string
	Written int64
	Skipped int64
	Err     error
}

// Report summarises a run.
type Report struct {
	RunID string
	Files []FileResult
}

// CheckCatalogPath rejects paths without a case-insensitive .HST extension.
func CheckCatalogPath(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".hst") {
		return fmt.Errorf("%w: %s", ErrNotCatalog, path)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (use YYYY-MM-DD)", hst.ErrInvalidDate, s)
	}
	return t, nil
}

// LoadCatalog opens the catalog, applies directory stripping and presents
// entry times in the run's location.
func LoadCatalog(opts Options) (*hst.Catalog, error) {
	if err := CheckCatalogPath(opts.CatalogPath); err != nil {
		return nil, err
	}
	cat, err := hst.OpenCatalog(opts.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", opts.CatalogPath, err)
	}
	if opts.StripDirs {
		cat.StripDirectories()
	}
	cat.Localize(opts.location())
	return cat, nil
}

// Selection returns the catalog indices to convert. An explicit index wins;
// otherwise a complete date range selects by coverage. If nothing is
// selected the default range is used.
func Selection(cat *hst.Catalog, opts Options) ([]int, error) {
	if opts.FileIndex != nil {
		if _, err := cat.Entry(*opts.FileIndex); err != nil {
			return nil, err
		}
		return []int{*opts.FileIndex}, nil
	}
	var sel []int
	if opts.ranged() {
		sel = cat.Select(opts.Start, opts.Stop)
	}
	if len(sel) == 0 {
		sel = cat.DefaultSelection()
	}
	return sel, nil
}

// Run converts every selected data file. Without KeepGoing the first failing
// file ends the run; with it, all failures are joined into the returned error.
func Run(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	log := logger.FromContext(ctx).With("run", report.RunID)

	cat, err := LoadCatalog(opts)
	if err != nil {
		return report, err
	}
	sel, err := Selection(cat, opts)
	if err != nil {
		return report, err
	}
	if cat.Master.FilesCreated > cat.Master.MaxFiles {
		log.Warn("catalog lists more files than it has slots",
			"files_created", cat.Master.FilesCreated,
			"max_files", cat.Master.MaxFiles,
		)
	}
	log.Info("catalog loaded",
		"path", opts.CatalogPath,
		"layout", cat.Layout.String(),
		"files", len(cat.Entries),
		"selected", len(sel),
	)

	var errs []error
	for _, idx := range sel {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res := convertEntry(cat.Entries[idx], opts)
		report.Files = append(report.Files, res)
		if res.Err != nil {
			log.Error("convert failed", "index", idx, "source", res.Source, "error", res.Err)
			errs = append(errs, res.Err)
			if !opts.KeepGoing {
				break
			}
			continue
		}
		log.Info("converted",
			"index", idx,
			"source", res.Source,
			"output", res.Output,
			"samples", res.Written,
			"skipped", res.Skipped,
		)
	}
	return report, errors.Join(errs...)
}

// ResolvePath maps a stored data file name to a path on disk.
func ResolvePath(name string, opts Options) string {
	if opts.RelativeToCatalog && !filepath.IsAbs(name) {
		return filepath.Join(filepath.Dir(opts.CatalogPath), name)
	}
	return name
}

func convertEntry(e hst.CatalogEntry, opts Options) (res FileResult) {
	res = FileResult{Index: e.Index, Source: ResolvePath(e.Name, opts)}
	defer func() {
		if res.Err != nil {
			res.Err = fmt.Errorf("file %d (%s): %w", e.Index, res.Source, res.Err)
		}
	}()

	layout, err := e.Layout()
	if err != nil {
		res.Err = err
		return res
	}

	sampleOpts := hst.SampleOptions{
		DiscardInvalid: opts.DiscardInvalid,
		Precision:      opts.Precision,
		Location:       opts.location(),
	}
	if opts.ranged() {
		sampleOpts.From = opts.Start
		sampleOpts.To = opts.Stop
	}

	df, err := hst.OpenDataFile(res.Source, layout, sampleOpts)
	if err != nil {
		res.Err = err
		return res
	}
	defer func() { _ = df.Close() }()

	sink, err := export.Create(opts.Format, e.Name, export.Options{
		Dir:      opts.OutDir,
		Location: opts.location(),
	})
	if err != nil {
		res.Err = err
		return res
	}
	res.Output = sink.Path()

	samples := df.Samples()
	for samples.Next() {
		if err := sink.Write(samples.Sample()); err != nil {
			res.Err = err
			break
		}
		res.Written++
	}
	if res.Err == nil {
		res.Err = samples.Err()
	}
	res.Skipped = samples.Skipped()

	if cerr := sink.Close(); res.Err == nil {
		res.Err = cerr
	}
	if res.Err != nil {
		_ = os.Remove(res.Output)
	}
	return res
}
