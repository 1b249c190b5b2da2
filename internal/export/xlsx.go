package export

import (
	"fmt"
	"io"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Report"

// WriteXLSX writes the report as a single sheet workbook: the header, then
// for each brand a title line, its rows and a bold total line.
func WriteXLSX(w io.Writer, report *domain.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	line := 1
	writeLine := func(cells []any, style int) error {
		ref, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, ref, &cells); err != nil {
			return fmt.Errorf("failed to write line %d: %w", line, err)
		}
		if style != 0 {
			if err := f.SetRowStyle(sheetName, line, line, style); err != nil {
				return fmt.Errorf("failed to style line %d: %w", line, err)
			}
		}
		line++
		return nil
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := writeLine(header, bold); err != nil {
		return err
	}

	for _, g := range report.Brands {
		if err := writeLine([]any{g.Brand}, bold); err != nil {
			return err
		}
		for _, r := range g.Products {
			if err := writeLine(sheetValues(rowCells(r)), 0); err != nil {
				return err
			}
		}
		if err := writeLine(sheetValues(totalCells(g)), bold); err != nil {
			return err
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func sheetValues(cells []cell) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = sheetValue(c)
	}
	return out
}
