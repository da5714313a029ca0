package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/trendconv/internal/logger"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	o := &options{}
	flags := append(convertFlags(o), loggingFlags(o)...)
	return &cli.Command{
		Name:      "trendconv",
		Usage:     "Convert historian trend archives (.HST) to spreadsheets",
		ArgsUsage: "FILE.HST",
		Flags:     flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return convertAction(ctx, cmd, o)
		},
		Commands: []*cli.Command{
			examineCmd(o),
			versionCmd(),
		},
	}
}

// setup folds the config file into o and installs the logger in ctx.
func setup(ctx context.Context, cmd *cli.Command, o *options) (context.Context, error) {
	path := o.configPath
	if path == "" {
		path = configPath()
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: load config: %v", err), 1)
	}
	applyConfig(cmd, cfg, o)

	level := o.logLevel
	if o.debug {
		level = "debug"
	}
	log, err := logger.Build(stderr(cmd), o.logFormat, level)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	return logger.WithContext(ctx, log), nil
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
