package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/trendconv/internal/convert"
	"github.com/samcharles93/trendconv/internal/export"
	"github.com/samcharles93/trendconv/internal/logger"
	"github.com/samcharles93/trendconv/internal/version"
)

// catalogArg returns the single positional catalog path. Usage errors exit
// with status 2.
func catalogArg(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", cli.Exit("error: expected exactly one catalog file (FILE.HST)", 2)
	}
	path := cmd.Args().First()
	if err := convert.CheckCatalogPath(path); err != nil {
		return "", cli.Exit(fmt.Sprintf("error: %v", err), 2)
	}
	return path, nil
}

func convertAction(ctx context.Context, cmd *cli.Command, o *options) error {
	ctx, err := setup(ctx, cmd, o)
	if err != nil {
		return err
	}
	path, err := catalogArg(cmd)
	if err != nil {
		return err
	}
	if o.examine {
		return runExamine(cmd, path, o, false)
	}

	opts, err := buildOptions(cmd, path, o)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}

	logger.FromContext(ctx).Debug("starting", "version", version.String(), "catalog", path, "format", string(opts.Format))
	report, err := convert.Run(ctx, opts)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}

	var samples int64
	for _, f := range report.Files {
		samples += f.Written
	}
	logger.FromContext(ctx).Info("done", "run", report.RunID, "files", len(report.Files), "samples", samples)
	return nil
}

func buildOptions(cmd *cli.Command, path string, o *options) (convert.Options, error) {
	loc, err := o.location()
	if err != nil {
		return convert.Options{}, fmt.Errorf("timezone: %w", err)
	}
	format, err := export.ParseFormat(o.format)
	if err != nil {
		return convert.Options{}, err
	}

	opts := convert.Options{
		CatalogPath:       path,
		Format:            format,
		OutDir:            o.outDir,
		DiscardInvalid:    !o.keepInvalid,
		Precision:         o.precision,
		StripDirs:         o.stripDirs,
		RelativeToCatalog: o.relative,
		KeepGoing:         o.keepGoing,
		Location:          loc,
	}
	if o.start != "" {
		if opts.Start, err = convert.ParseDate(o.start, loc); err != nil {
			return convert.Options{}, err
		}
	}
	if o.stop != "" {
		if opts.Stop, err = convert.ParseDate(o.stop, loc); err != nil {
			return convert.Options{}, err
		}
	}
	if cmd.IsSet("file") {
		idx := o.fileIndex
		opts.FileIndex = &idx
	}
	return opts, nil
}
