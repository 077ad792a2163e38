// Package sheets mirrors expense records into a user's Google Spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"gastobot/internal/models"
)

const (
	spreadsheetScope = "https://www.googleapis.com/auth/spreadsheets"

	headerRange       = "A1:D1"
	appendRange       = "A1:D1"
	dateFormatPattern = "dd/mm/yyyy"
)

var headerRow = []any{"Date", "Description", "Category", "Value"}

// Config carries the per-user credential and target spreadsheet.
type Config struct {
	ClientID      string
	ClientSecret  string
	RefreshToken  string
	SpreadsheetID string
}

// Client appends expense rows to a single spreadsheet. The refresh token is
// exchanged for a short-lived access token per client construction; nothing
// is cached across constructions.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	logger        *zap.Logger
	headerDone    bool
}

// NewClient builds a Sheets client authenticated by the user's refresh
// token.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.RefreshToken == "" || cfg.SpreadsheetID == "" {
		return nil, errors.New("sheets: refresh token and spreadsheet id are required")
	}
	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{spreadsheetScope},
	}
	ts := oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	return newClient(ctx, cfg.SpreadsheetID, logger, option.WithTokenSource(ts))
}

// NewServiceAccountClient builds a client for the legacy shared-sheet mode,
// authenticated by a service-account key file instead of a per-user token.
func NewServiceAccountClient(ctx context.Context, credentialsPath, spreadsheetID string, logger *zap.Logger) (*Client, error) {
	if credentialsPath == "" || spreadsheetID == "" {
		return nil, errors.New("sheets: credentials path and spreadsheet id are required")
	}
	return newClient(ctx, spreadsheetID, logger,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(spreadsheetScope))
}

func newClient(ctx context.Context, spreadsheetID string, logger *zap.Logger, opts ...option.ClientOption) (*Client, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: build service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, logger: logger}, nil
}

// AppendExpense writes one [date, product, category, price] row at the end
// of the used range, bootstrapping the header row on first use of an empty
// sheet. The split flag is not written.
func (c *Client) AppendExpense(ctx context.Context, rec models.ExpenseRecord) error {
	if err := c.ensureHeader(ctx); err != nil {
		return err
	}

	row := []any{rec.Date, rec.Product, rec.Category, rec.Price.String()}
	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, appendRange, &sheets.ValueRange{Values: [][]any{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: append row: %w", err)
	}
	c.logger.Info("expense row appended",
		zap.String("spreadsheet_id", c.spreadsheetID),
		zap.String("category", rec.Category))
	return nil
}

// ensureHeader writes the fixed header row if the header range is empty.
// Check-then-write is not transactional: two concurrent first writers to
// the same empty sheet may both create a header, which is tolerated.
func (c *Client) ensureHeader(ctx context.Context) error {
	if c.headerDone {
		return nil
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: read header range: %w", err)
	}
	if len(resp.Values) > 0 {
		c.headerDone = true
		return nil
	}

	_, err = c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, headerRange, &sheets.ValueRange{Values: [][]any{headerRow}}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: write header: %w", err)
	}
	if err := c.formatDateColumn(ctx); err != nil {
		return err
	}
	c.logger.Info("header row created", zap.String("spreadsheet_id", c.spreadsheetID))
	c.headerDone = true
	return nil
}

// formatDateColumn applies the dd/mm/yyyy number format to the date column
// below the header.
func (c *Client) formatDateColumn(ctx context.Context) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					StartRowIndex:    1,
					StartColumnIndex: 0,
					EndColumnIndex:   1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{
							Type:    "DATE",
							Pattern: dateFormatPattern,
						},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sheets: apply date format: %w", err)
	}
	return nil
}
