package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andresuchdata/inventra/backend-go/internal/config"
	"github.com/andresuchdata/inventra/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

func newFormatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, csv or xlsx",
		Value:   "json",
	}
}

func newOutFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "Output file (defaults to stdout)",
	}
}

func setupLogging(c *cli.Context) error {
	cfg := config.Load()
	level := cfg.Log.Level
	if c.Bool("verbose") {
		level = "debug"
	}
	logger.Configure(level, cfg.Log.Format)
	return nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "report",
		Usage: "Generate the per-brand stock and sales report",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Fetch inventory and orders from Shopify and build the report",
				Flags: []cli.Flag{
					newFormatFlag(),
					newOutFlag(),
					&cli.BoolFlag{
						Name:  "publish",
						Usage: "Upload json, csv and xlsx artefacts to the configured stores",
					},
					&cli.BoolFlag{
						Name:  "refresh",
						Usage: "Ignore any cached report",
						Value: true,
					},
				},
				Action: runGenerate,
			},
			{
				Name:  "replay",
				Usage: "Build the report from frozen JSON inputs",
				Flags: []cli.Flag{
					newFormatFlag(),
					newOutFlag(),
					&cli.StringFlag{
						Name:     "inventory",
						Usage:    "JSON file with the product catalog",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "orders",
						Usage:    "JSON file with the orders",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "costs",
						Usage: "JSON file mapping inventory item ids to unit costs",
					},
					&cli.TimestampFlag{
						Name:     "now",
						Usage:    "Reference time (RFC3339)",
						Layout:   "2006-01-02T15:04:05Z07:00",
						Required: true,
					},
				},
				Action: runReplay,
			},
			{
				Name:  "published",
				Usage: "List published artefacts",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Object prefix to list (defaults to STORAGE_PREFIX)",
					},
				},
				Action: runPublished,
			},
		},
	}
}

// openOutput returns stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if strings.TrimSpace(path) == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
