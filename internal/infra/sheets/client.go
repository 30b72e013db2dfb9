package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/xavierca1/lead-engine/internal/infra/database"
)

const valueInputRaw = "RAW"

// Client talks to one spreadsheet through the Sheets API v4 with a service account.
type Client struct {
	svc           *gsheets.Service
	spreadsheetID string
}

func NewClient(ctx context.Context, spreadsheetID string, serviceAccountJSON []byte) (*Client, error) {
	cfg, err := google.JWTConfigFromJSON(serviceAccountJSON, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("invalid service account: %w", err)
	}

	svc, err := gsheets.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (c *Client) Get(ctx context.Context, rng string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(resp.Values))
	for i, line := range resp.Values {
		rows[i] = make([]string, len(line))
		for j, v := range line {
			rows[i][j] = cellString(v)
		}
	}
	return rows, nil
}

func (c *Client) Append(ctx context.Context, sheet string, row []string) (int, error) {
	vr := &gsheets.ValueRange{Values: [][]interface{}{toInterfaces(row)}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, sheet, vr).
		ValueInputOption(valueInputRaw).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, err
	}
	if resp.Updates == nil {
		return 0, nil
	}
	return rowFromRange(resp.Updates.UpdatedRange), nil
}

func (c *Client) Update(ctx context.Context, rng string, value string) error {
	vr := &gsheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	return err
}

func (c *Client) BatchUpdate(ctx context.Context, updates []database.CellUpdate) error {
	req := &gsheets.BatchUpdateValuesRequest{ValueInputOption: valueInputRaw}
	for _, u := range updates {
		values := make([][]interface{}, len(u.Values))
		for i, line := range u.Values {
			values[i] = toInterfaces(line)
		}
		req.Data = append(req.Data, &gsheets.ValueRange{Range: u.Range, Values: values})
	}

	_, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	return err
}

func toInterfaces(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// rowFromRange extracts the first row number from an A1 range like "Leads!A12:J12".
func rowFromRange(rng string) int {
	if i := strings.LastIndex(rng, "!"); i >= 0 {
		rng = rng[i+1:]
	}
	if i := strings.Index(rng, ":"); i >= 0 {
		rng = rng[:i]
	}
	digits := strings.TrimLeft(rng, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	n, _ := strconv.Atoi(digits)
	return n
}
