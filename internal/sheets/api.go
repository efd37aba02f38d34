package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// ErrSpreadsheetNotFound is returned when the spreadsheet id does not exist
// or is not shared with the credentials in use
var ErrSpreadsheetNotFound = errors.New("spreadsheet not found")

const valueInputRaw = "RAW"

// API is the subset of the Sheets v4 API the store uses
type API interface {
	CreateSpreadsheet(ctx context.Context, title string, sheetNames []string) (string, error)
	SheetIDs(ctx context.Context, spreadsheetID string) (map[string]int64, error)
	GetValues(ctx context.Context, spreadsheetID, rng string) ([][]any, error)
	AppendValues(ctx context.Context, spreadsheetID, rng string, rows [][]any) error
	UpdateValues(ctx context.Context, spreadsheetID, rng string, rows [][]any) error
	BatchUpdateValues(ctx context.Context, spreadsheetID string, data map[string][][]any) error
	DeleteRows(ctx context.Context, spreadsheetID string, sheetID, start, end int64) error
}

// Client implements API on top of the Google Sheets service
type Client struct {
	svc *sheetsapi.Service
}

var _ API = (*Client)(nil)

// NewClient creates a Sheets client using an authenticated HTTP client
func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// CreateSpreadsheet creates a spreadsheet with one sheet per name
func (c *Client) CreateSpreadsheet(ctx context.Context, title string, sheetNames []string) (string, error) {
	ss := &sheetsapi.Spreadsheet{
		Properties: &sheetsapi.SpreadsheetProperties{Title: title},
	}
	for _, name := range sheetNames {
		ss.Sheets = append(ss.Sheets, &sheetsapi.Sheet{
			Properties: &sheetsapi.SheetProperties{Title: name},
		})
	}
	created, err := c.svc.Spreadsheets.Create(ss).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create spreadsheet: %w", err)
	}
	return created.SpreadsheetId, nil
}

// SheetIDs maps sheet titles to their numeric sheet ids
func (c *Client) SheetIDs(ctx context.Context, spreadsheetID string) (map[string]int64, error) {
	ss, err := c.svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, translate(err, "failed to get spreadsheet")
	}
	ids := make(map[string]int64, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}
	return ids, nil
}

// GetValues reads a range
func (c *Client) GetValues(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
	vr, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, translate(err, "failed to read values")
	}
	return vr.Values, nil
}

// AppendValues inserts rows after the last row of the range
func (c *Client) AppendValues(ctx context.Context, spreadsheetID, rng string, rows [][]any) error {
	_, err := c.svc.Spreadsheets.Values.Append(spreadsheetID, rng, &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption(valueInputRaw).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return translate(err, "failed to append values")
	}
	return nil
}

// UpdateValues overwrites a range
func (c *Client) UpdateValues(ctx context.Context, spreadsheetID, rng string, rows [][]any) error {
	_, err := c.svc.Spreadsheets.Values.Update(spreadsheetID, rng, &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption(valueInputRaw).
		Context(ctx).Do()
	if err != nil {
		return translate(err, "failed to update values")
	}
	return nil
}

// BatchUpdateValues overwrites several ranges in one call
func (c *Client) BatchUpdateValues(ctx context.Context, spreadsheetID string, data map[string][][]any) error {
	req := &sheetsapi.BatchUpdateValuesRequest{ValueInputOption: valueInputRaw}
	for rng, rows := range data {
		req.Data = append(req.Data, &sheetsapi.ValueRange{Range: rng, Values: rows})
	}
	if _, err := c.svc.Spreadsheets.Values.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return translate(err, "failed to batch update values")
	}
	return nil
}

// DeleteRows removes the zero-based row interval [start, end) of a sheet
func (c *Client) DeleteRows(ctx context.Context, spreadsheetID string, sheetID, start, end int64) error {
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			DeleteDimension: &sheetsapi.DeleteDimensionRequest{
				Range: &sheetsapi.DimensionRange{
					SheetId:         sheetID,
					Dimension:       "ROWS",
					StartIndex:      start,
					EndIndex:        end,
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return translate(err, "failed to delete rows")
	}
	return nil
}

func translate(err error, msg string) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return fmt.Errorf("%s: %w", msg, ErrSpreadsheetNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
