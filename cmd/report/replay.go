package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/andresuchdata/inventra/backend-go/internal/config"
	"github.com/andresuchdata/inventra/backend-go/internal/pipeline/brand_report"
	"github.com/andresuchdata/inventra/backend-go/internal/service"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

func runReplay(c *cli.Context) error {
	format, err := parseFormat(c.String("format"))
	if err != nil {
		return err
	}

	in, err := loadReplayInput(c.String("inventory"), c.String("orders"), c.String("costs"))
	if err != nil {
		return err
	}
	in.Now = *c.Timestamp("now")

	cfg := config.Load()
	report, err := service.NewReportService(nil, cfg.Shopify.Shop, cfg.Report).Replay(c.Context, in)
	if err != nil {
		return fmt.Errorf("failed to replay report: %w", err)
	}
	return emit(c.String("out"), report, format)
}

func loadReplayInput(inventoryPath, ordersPath, costsPath string) (brand_report.Input, error) {
	var in brand_report.Input
	if err := readJSON(inventoryPath, &in.Products); err != nil {
		return in, err
	}
	if err := readJSON(ordersPath, &in.Orders); err != nil {
		return in, err
	}
	in.Costs = map[string]decimal.Decimal{}
	if costsPath != "" {
		if err := readJSON(costsPath, &in.Costs); err != nil {
			return in, err
		}
	}
	return in, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
