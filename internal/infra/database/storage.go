package database

import (
	"context"
	"fmt"
	"strings"
)

// CellUpdate writes Values starting at the top-left cell of Range.
type CellUpdate struct {
	Range  string
	Values [][]string
}

// Storage is the row-oriented spreadsheet transport. It has no transactions,
// no secondary indexes and no atomic upsert.
type Storage interface {
	Get(ctx context.Context, rng string) ([][]string, error)
	// Append adds row after the last non-empty row of sheet and returns its 1-based row number.
	Append(ctx context.Context, sheet string, row []string) (int, error)
	Update(ctx context.Context, rng string, value string) error
	BatchUpdate(ctx context.Context, updates []CellUpdate) error
}

// ColumnLetter converts a 0-based column index to A1 letters (0 -> A, 26 -> AA).
func ColumnLetter(index int) string {
	var sb []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		sb = append([]byte{byte('A' + (n-1)%26)}, sb...)
	}
	return string(sb)
}

func headerRange(sheet string) string {
	return fmt.Sprintf("%s!1:1", sheet)
}

func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!%d:%d", sheet, row, row)
}

func cellRange(sheet string, col, row int) string {
	return fmt.Sprintf("%s!%s%d", sheet, ColumnLetter(col), row)
}

func normalizeHeader(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ToLower(strings.TrimSpace(c))
	}
	return out
}
