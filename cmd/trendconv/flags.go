package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

// options holds every command line value. Config file defaults are folded
// in by applyConfig before any command runs.
type options struct {
	configPath string

	format      string
	outDir      string
	start       string
	stop        string
	fileIndex   int
	keepInvalid bool
	precision   int
	stripDirs   bool
	relative    bool
	keepGoing   bool
	timezone    string
	examine     bool

	logLevel  string
	logFormat string
	debug     bool
}

// location resolves --timezone. Empty and "Local" mean the host zone.
func (o *options) location() (*time.Location, error) {
	if o.timezone == "" || o.timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(o.timezone)
}

func convertFlags(o *options) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "strip-dirs",
			Aliases:     []string{"s"},
			Usage:       "strip directories from stored data file names (if files were moved)",
			Destination: &o.stripDirs,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "output file type (xls, csv, jsonl)",
			Value:       "xls",
			Destination: &o.format,
		},
		&cli.StringFlag{
			Name:        "out-dir",
			Usage:       "directory for converted files",
			Value:       ".",
			Destination: &o.outDir,
		},
		&cli.StringFlag{
			Name:        "start",
			Usage:       "start date (YYYY-MM-DD)",
			Destination: &o.start,
		},
		&cli.StringFlag{
			Name:        "stop",
			Usage:       "stop date (YYYY-MM-DD)",
			Destination: &o.stop,
		},
		&cli.IntFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "convert only the data file at this catalog index",
			Destination: &o.fileIndex,
		},
		&cli.BoolFlag{
			Name:        "keep-invalid",
			Aliases:     []string{"d"},
			Usage:       "do not discard invalid values from samples",
			Destination: &o.keepInvalid,
		},
		&cli.IntFlag{
			Name:        "precision",
			Aliases:     []string{"p"},
			Usage:       "number of decimals in values",
			Value:       1,
			Destination: &o.precision,
		},
		&cli.BoolFlag{
			Name:        "relative-to-catalog",
			Usage:       "resolve relative data file names against the catalog directory",
			Destination: &o.relative,
		},
		&cli.BoolFlag{
			Name:        "keep-going",
			Usage:       "continue with the next data file after a failure",
			Destination: &o.keepGoing,
		},
		&cli.StringFlag{
			Name:        "timezone",
			Aliases:     []string{"tz"},
			Usage:       "IANA zone for dates and output timestamps",
			Value:       "Local",
			Destination: &o.timezone,
		},
		&cli.BoolFlag{
			Name:        "examine",
			Aliases:     []string{"e"},
			Usage:       "print the catalog summary and exit",
			Destination: &o.examine,
		},
	}
}

func loggingFlags(o *options) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &o.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &o.logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &o.debug,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Destination: &o.configPath,
		},
	}
}
