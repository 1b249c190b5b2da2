package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/andresuchdata/inventra/backend-go/internal/app"
	"github.com/andresuchdata/inventra/backend-go/internal/config"
	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/andresuchdata/inventra/backend-go/internal/export"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func runGenerate(c *cli.Context) error {
	format, err := parseFormat(c.String("format"))
	if err != nil {
		return err
	}

	application, err := app.New(c.Context, config.Load())
	if err != nil {
		return err
	}
	defer application.Close()

	report, err := application.Report.GetReport(c.Context, c.Bool("refresh"))
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if err := emit(c.String("out"), report, format); err != nil {
		return err
	}

	if c.Bool("publish") {
		keys, err := application.Publish(c.Context, report)
		if err != nil {
			return err
		}
		for _, key := range keys {
			log.Info().Str("key", key).Msg("Published")
		}
	}
	return nil
}

func runPublished(c *cli.Context) error {
	cfg := config.Load()
	application, err := app.New(c.Context, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	prefix := c.String("prefix")
	if prefix == "" {
		prefix = cfg.Storage.Prefix
	}
	if len(application.Stores) == 0 {
		return fmt.Errorf("no publish destination configured")
	}

	for _, store := range application.Stores {
		objects, err := store.ListObjects(c.Context, prefix)
		if err != nil {
			return err
		}
		for _, obj := range objects {
			fmt.Fprintf(c.App.Writer, "%s\t%d\n", obj.Key, obj.Size)
		}
	}
	return nil
}

func parseFormat(raw string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	switch format {
	case "json", "csv", "xlsx":
		return format, nil
	}
	return "", fmt.Errorf("unsupported format %q (want json, csv or xlsx)", raw)
}

func emit(path string, report *domain.Report, format string) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if err := writeReport(out, report, format); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writeReport(w io.Writer, report *domain.Report, format string) error {
	switch format {
	case "csv":
		return export.WriteCSV(w, report)
	case "xlsx":
		return export.WriteXLSX(w, report)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
}
