package sheets

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/starsync/internal/core/domain"
	"github.com/custodia-labs/starsync/internal/core/ports/driven"
	"github.com/custodia-labs/starsync/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.SpreadsheetClient = (*Client)(nil)

// Values are written as typed, never parsed as formulas.
const valueInputRaw = "RAW"

// firstSeenLayout formats the First Seen column.
const firstSeenLayout = time.RFC3339

// Client is a Google Sheets implementation of driven.SpreadsheetClient.
type Client struct {
	svc     *sheets.Service
	limiter *RateLimiter
}

// NewClient creates a client authorised by tokens.
// Extra options are applied last, which lets tests point it at a fake endpoint.
func NewClient(ctx context.Context, tokens driven.TokenProvider, opts ...option.ClientOption) (*Client, error) {
	httpClient := &http.Client{
		Transport: &oauth2.Transport{Source: NewTokenSource(ctx, tokens)},
	}
	all := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)

	svc, err := sheets.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, limiter: NewRateLimiter(DefaultRateLimit)}, nil
}

// Validate checks the spreadsheet exists and returns its title.
func (c *Client) Validate(ctx context.Context, spreadsheetID string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	ss, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields("spreadsheetId", "properties.title").
		Context(ctx).Do()
	if err != nil {
		return "", c.wrap(err)
	}
	if ss.Properties == nil {
		return "", nil
	}
	return ss.Properties.Title, nil
}

// EnsureSheet creates the tab if missing and writes the header row if the tab is empty.
func (c *Client) EnsureSheet(ctx context.Context, spreadsheetID, sheetName string) error {
	exists, err := c.hasSheet(ctx, spreadsheetID, sheetName)
	if err != nil {
		return err
	}

	if !exists {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		req := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: sheetName},
				},
			}},
		}
		if _, err := c.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
			return c.wrap(err)
		}
		logger.Info("Created sheet %q", sheetName)
		return c.writeHeader(ctx, spreadsheetID, sheetName)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	header, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, a1Range(sheetName, "A1:E1")).Context(ctx).Do()
	if err != nil {
		return c.wrap(err)
	}
	if len(header.Values) == 0 {
		return c.writeHeader(ctx, spreadsheetID, sheetName)
	}
	return nil
}

// AppendRows appends rows after the last filled row.
func (c *Client) AppendRows(ctx context.Context, spreadsheetID, sheetName string, rows []domain.SheetRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	resp, err := c.svc.Spreadsheets.Values.Append(spreadsheetID, a1Range(sheetName, "A1"), &sheets.ValueRange{Values: toValues(rows)}).
		ValueInputOption(valueInputRaw).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, c.wrap(err)
	}
	if resp.Updates != nil {
		return int(resp.Updates.UpdatedRows), nil
	}
	return len(rows), nil
}

// ReplaceRows clears the tab and writes the header followed by rows.
func (c *Client) ReplaceRows(ctx context.Context, spreadsheetID, sheetName string, rows []domain.SheetRow) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	if _, err := c.svc.Spreadsheets.Values.Clear(spreadsheetID, a1Range(sheetName, ""), &sheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return 0, c.wrap(err)
	}

	values := append([][]any{headerValues()}, toValues(rows)...)
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	if _, err := c.svc.Spreadsheets.Values.Update(spreadsheetID, a1Range(sheetName, "A1"), &sheets.ValueRange{Values: values}).
		ValueInputOption(valueInputRaw).
		Context(ctx).Do(); err != nil {
		return 0, c.wrap(err)
	}
	return len(rows), nil
}

func (c *Client) hasSheet(ctx context.Context, spreadsheetID, sheetName string) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}
	ss, err := c.svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return false, c.wrap(err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheetName {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) writeHeader(ctx context.Context, spreadsheetID, sheetName string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := c.svc.Spreadsheets.Values.Update(spreadsheetID, a1Range(sheetName, "A1"), &sheets.ValueRange{Values: [][]any{headerValues()}}).
		ValueInputOption(valueInputRaw).
		Context(ctx).Do()
	return c.wrap(err)
}

// wrap maps API errors and opens the limiter's retry window on 429.
func (c *Client) wrap(err error) error {
	if err == nil {
		return nil
	}
	if IsRateLimited(err) {
		c.limiter.RecordRateLimitError(retryAfter(err))
	}
	return WrapError(err)
}

// a1Range builds an A1 range on a quoted sheet name. An empty cells selects the whole sheet.
func a1Range(sheetName, cells string) string {
	quoted := "'" + strings.ReplaceAll(sheetName, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}

func headerValues() []any {
	out := make([]any, len(domain.SheetHeader))
	for i, h := range domain.SheetHeader {
		out[i] = h
	}
	return out
}

func toValues(rows []domain.SheetRow) [][]any {
	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = []any{r.SourceLang, r.SourceText, r.TargetLang, r.TargetText, r.FirstSeen.UTC().Format(firstSeenLayout)}
	}
	return values
}
