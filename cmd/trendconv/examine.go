package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/trendconv/internal/convert"
	"github.com/samcharles93/trendconv/internal/export"
	"github.com/samcharles93/trendconv/pkg/hst"
)

type examineFile struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Samples uint32 `json:"samples"`
	Period  int64  `json:"period_ms"`
	LogName string `json:"log_name,omitempty"`
	Units   string `json:"units,omitempty"`
}

type examineReport struct {
	Title        string        `json:"title"`
	Layout       string        `json:"layout"`
	MaxFiles     uint16        `json:"max_files"`
	FilesCreated uint16        `json:"files_created"`
	Files        []examineFile `json:"files"`
}

func examineCmd(o *options) *cli.Command {
	var asJSON bool
	return &cli.Command{
		Name:      "examine",
		Usage:     "Summarise the data files listed in a catalog",
		ArgsUsage: "FILE.HST",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the summary as JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := setup(ctx, cmd, o); err != nil {
				return err
			}
			path, err := catalogArg(cmd)
			if err != nil {
				return err
			}
			return runExamine(cmd, path, o, asJSON)
		},
	}
}

func runExamine(cmd *cli.Command, path string, o *options, asJSON bool) error {
	loc, err := o.location()
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: timezone: %v", err), 1)
	}
	cat, err := convert.LoadCatalog(convert.Options{CatalogPath: path, StripDirs: o.stripDirs, Location: loc})
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	report := summarize(cat, loc)
	if asJSON {
		enc := json.NewEncoder(stdout(cmd))
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printSummary(stdout(cmd), report)
	return nil
}

func summarize(cat *hst.Catalog, loc *time.Location) examineReport {
	r := examineReport{
		Title:        cat.Master.Title,
		Layout:       cat.Layout.String(),
		MaxFiles:     cat.Master.MaxFiles,
		FilesCreated: cat.Master.FilesCreated,
		Files:        make([]examineFile, 0, len(cat.Entries)),
	}
	for _, e := range cat.Entries {
		h := e.Header
		r.Files = append(r.Files, examineFile{
			Index:   e.Index,
			Name:    e.Name,
			Start:   export.FormatTime(h.StartTime, loc),
			End:     export.FormatTime(h.EndTime, loc),
			Samples: h.DataLength,
			Period:  h.Period().Milliseconds(),
			LogName: h.LogName,
			Units:   h.EngUnits,
		})
	}
	return r
}

func printSummary(w io.Writer, r examineReport) {
	_, _ = fmt.Fprintf(w, "Type: %s | Maximum number of files: %d | Files created: %d\n",
		r.Layout, r.MaxFiles, r.FilesCreated)
	for _, f := range r.Files {
		_, _ = fmt.Fprintf(w, "File: %d %s | Start: %s | End: %s | Samples: %d\n",
			f.Index, f.Name, f.Start, f.End, f.Samples)
	}
}
