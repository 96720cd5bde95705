// Package sheet implements the contact table source/sink on top of the
// Google Sheets API.
package sheet

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/sheets/v4"

	"github.com/greenmice/sheetsend/internal/contact"
)

// PersistError wraps a sheet write failure. The in-memory table is intact
// when this is returned, so persistence can be retried without re-sending.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist contact table: %v", e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Client wraps the Sheets API for one spreadsheet.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	logger        *slog.Logger
}

// NewClient creates a client for the given spreadsheet.
func NewClient(svc *sheets.Service, spreadsheetID string, logger *slog.Logger) *Client {
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		logger:        logger.With("component", "sheet", "spreadsheet_id", spreadsheetID),
	}
}

// FirstSheetName returns the title of the spreadsheet's first sheet, used
// when no sheet name is configured.
func (c *Client) FirstSheetName(ctx context.Context) (string, error) {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to read spreadsheet metadata: %w", err)
	}
	if len(meta.Sheets) == 0 || meta.Sheets[0].Properties == nil {
		return "", fmt.Errorf("spreadsheet has no sheets")
	}
	return meta.Sheets[0].Properties.Title, nil
}

// readRange addresses the whole sheet: Values.Get confines its response
// to the requested range, so anything narrower would truncate the table.
func readRange(sheetName string) string {
	return WholeSheet(sheetName).A1()
}

// clearRange addresses the whole sheet, so stale rows and columns beyond
// the rewritten table cannot survive a shrink.
func clearRange(sheetName string) string {
	return WholeSheet(sheetName).A1()
}

// updateAnchor is the top-left cell the batch write starts from; Update
// expands it to the extent of the written values.
func updateAnchor(sheetName string) string {
	return CellRange{Sheet: sheetName, StartRow: 1, StartCol: 1}.A1()
}

// ReadTable reads the sheet's header row and all data rows.
func (c *Client) ReadTable(ctx context.Context, sheetName string) (*contact.Table, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, readRange(sheetName)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}

	table, err := contact.FromValues(resp.Values)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheetName, err)
	}

	c.logger.Debug("sheet loaded", "sheet", sheetName, "rows", len(table.Rows), "columns", len(table.Columns))
	return table, nil
}

// WriteTable clears the sheet and rewrites header plus all rows in one
// batch. Rows are padded to the full header width first, so a grown column
// set can never leave ragged data behind.
func (c *Client) WriteTable(ctx context.Context, sheetName string, t *contact.Table) error {
	values := t.Values()

	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange(sheetName), &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return &PersistError{Err: fmt.Errorf("clear %q: %w", sheetName, err)}
	}

	vr := &sheets.ValueRange{Values: values}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, updateAnchor(sheetName), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return &PersistError{Err: fmt.Errorf("update %q: %w", sheetName, err)}
	}

	c.logger.Info("sheet updated", "sheet", sheetName, "rows", len(values)-1, "columns", len(t.Columns))
	return nil
}

// Store binds a Client to one named sheet, giving the campaign runner a
// plain read/write pair.
type Store struct {
	Client    *Client
	SheetName string
}

func (s *Store) Read(ctx context.Context) (*contact.Table, error) {
	return s.Client.ReadTable(ctx, s.SheetName)
}

func (s *Store) Write(ctx context.Context, t *contact.Table) error {
	return s.Client.WriteTable(ctx, s.SheetName, t)
}
