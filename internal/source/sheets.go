// Package source adapts external data providers to the refresher's
// PricingSource and RecallSource interfaces.
package source

import (
	"context"
	"fmt"

	"github.com/garagehq/servicebot/internal/pricing"
	"github.com/garagehq/servicebot/pkg/sheets"
)

// Sheet is a pricing source backed by one Google spreadsheet.
type Sheet struct {
	client        sheets.Client
	spreadsheetID string
	ranges        []string
}

// NewSheet creates a spreadsheet pricing source fetching the given ranges.
func NewSheet(client sheets.Client, spreadsheetID string, ranges []string) *Sheet {
	return &Sheet{
		client:        client,
		spreadsheetID: spreadsheetID,
		ranges:        ranges,
	}
}

// Name identifies the source in logs and errors.
func (s *Sheet) Name() string {
	return fmt.Sprintf("sheets:%s", s.spreadsheetID)
}

// FetchRanges fetches every configured range as raw rows of cells.
func (s *Sheet) FetchRanges(ctx context.Context) ([]pricing.Range, error) {
	resp, err := s.client.BatchGetValues(ctx, s.spreadsheetID, s.ranges)
	if err != nil {
		return nil, err
	}

	out := make([]pricing.Range, 0, len(resp.ValueRanges))
	for _, vr := range resp.ValueRanges {
		out = append(out, pricing.Range{
			Name: vr.Range,
			Rows: vr.Values,
		})
	}
	return out, nil
}
