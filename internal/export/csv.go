package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
)

// WriteCSV writes one line per report row followed by a total line per brand.
func WriteCSV(w io.Writer, report *domain.Report) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, g := range report.Brands {
		for _, r := range g.Products {
			if err := writer.Write(formatCells(rowCells(r))); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
		if err := writer.Write(formatCells(totalCells(g))); err != nil {
			return fmt.Errorf("failed to write csv total for %s: %w", g.Brand, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatCells(cells []cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = formatCell(c)
	}
	return out
}
