package source

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/garagehq/servicebot/internal/pricing"
)

// Workbook is a pricing source backed by a local XLSX file. Each sheet of
// the workbook becomes one range.
type Workbook struct {
	path string
}

// NewWorkbook creates a pricing source over a local workbook file.
func NewWorkbook(path string) *Workbook {
	return &Workbook{path: path}
}

// Name identifies the source in logs and errors.
func (w *Workbook) Name() string {
	return fmt.Sprintf("workbook:%s", filepath.Base(w.path))
}

// FetchRanges reads every sheet of the workbook as raw rows of cells.
// The file is re-read on each refresh so edits are picked up.
func (w *Workbook) FetchRanges(ctx context.Context) ([]pricing.Range, error) {
	f, err := xlsx.OpenFile(w.path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: open workbook %s", w.path)
	}

	out := make([]pricing.Range, 0, len(f.Sheets))
	for _, sheet := range f.Sheets {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "source: read workbook cancelled")
		}

		rows := make([][]string, 0, len(sheet.Rows))
		for _, row := range sheet.Rows {
			cells := make([]string, len(row.Cells))
			for j, cell := range row.Cells {
				cells[j] = cell.String()
			}
			rows = append(rows, cells)
		}
		out = append(out, pricing.Range{
			Name: sheet.Name,
			Rows: rows,
		})
	}
	return out, nil
}
