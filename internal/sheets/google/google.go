// Package google mirrors transactions into a Google Sheets spreadsheet, one
// row per transaction keyed by id in column A.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	"fintrack/internal/log"
	ports "fintrack/internal/sheets"
)

var _ ports.Exporter = (*Client)(nil)

type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	logger        *log.Logger

	// id to 1-based row number, refreshed from column A when expired
	mu                 sync.Mutex
	rowIndex           map[string]int
	cachedRowCount     int
	cacheExpiresAt     time.Time
	cacheValidDuration time.Duration
}

// New creates a client authenticated with service account credentials,
// inline JSON taking precedence over a file.
func New(ctx context.Context, opts Options, logger *log.Logger) (*Client, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		credentialsJSON = []byte(opts.CredentialsJSON)
	case opts.CredentialsFile != "":
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials")
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, opts.SpreadsheetID, opts.SheetName, logger)
}

// NewWithService wraps an existing service, e.g. one pointed at a test
// endpoint.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheet string, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheet) == "" {
		sheet = "Transactions"
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		svc:                svc,
		spreadsheetID:      spreadsheetID,
		sheet:              sheet,
		logger:             logger.WithComponent(log.ComponentSheets),
		cacheValidDuration: 2 * time.Minute,
	}, nil
}

func (c *Client) Append(ctx context.Context, t core.Transaction) (string, error) {
	if t.ID == "" {
		return "", fmt.Errorf("append row: %w", core.NewValidationError("transaction id is required"))
	}
	if err := c.ensureHeader(ctx); err != nil {
		return "", err
	}

	rng := fmt.Sprintf("%s!A:H", c.sheet)
	vr := &gsheet.ValueRange{Values: [][]any{ports.Row(t)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheet, err)
	}

	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}
	c.mu.Lock()
	if row, ok := rowFromRange(ref); ok && c.rowIndex != nil {
		c.rowIndex[t.ID] = row
		c.cachedRowCount = max(c.cachedRowCount, row)
	} else {
		c.cacheExpiresAt = time.Time{}
	}
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "Row appended", log.FieldTxID, t.ID, log.FieldSheetsRange, ref)
	return ref, nil
}

func (c *Client) Update(ctx context.Context, t core.Transaction) error {
	row, ok, err := c.findRow(ctx, t.ID)
	if err != nil {
		return err
	}
	if !ok {
		_, err := c.Append(ctx, t)
		return err
	}
	rng := ports.RowRange(c.sheet, row)
	vr := &gsheet.ValueRange{Values: [][]any{ports.Row(t)}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		c.InvalidateRowCache()
		return fmt.Errorf("update %s: %w", rng, err)
	}
	c.logger.DebugContext(ctx, "Row updated", log.FieldTxID, t.ID, log.FieldSheetsRange, rng)
	return nil
}

func (c *Client) Clear(ctx context.Context, id string) error {
	row, ok, err := c.findRow(ctx, id)
	if err != nil || !ok {
		return err
	}
	rng := ports.RowRange(c.sheet, row)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		c.InvalidateRowCache()
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	c.mu.Lock()
	delete(c.rowIndex, id)
	c.mu.Unlock()
	c.logger.DebugContext(ctx, "Row cleared", log.FieldTxID, id, log.FieldSheetsRange, rng)
	return nil
}

// InvalidateRowCache forces the next lookup to re-read column A.
func (c *Client) InvalidateRowCache() {
	c.mu.Lock()
	c.cacheExpiresAt = time.Time{}
	c.mu.Unlock()
}

func (c *Client) findRow(ctx context.Context, id string) (int, bool, error) {
	if err := c.refreshIndex(ctx); err != nil {
		return 0, false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.rowIndex[id]
	return row, ok, nil
}

func (c *Client) refreshIndex(ctx context.Context) error {
	c.mu.Lock()
	valid := c.rowIndex != nil && time.Now().Before(c.cacheExpiresAt)
	c.mu.Unlock()
	if valid {
		return nil
	}

	rng := fmt.Sprintf("%s!A:A", c.sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}
	index := make(map[string]int, len(resp.Values))
	for i, r := range resp.Values {
		if len(r) == 0 {
			continue
		}
		if id := strings.TrimSpace(fmt.Sprint(r[0])); id != "" {
			index[id] = i + 1
		}
	}

	c.mu.Lock()
	c.rowIndex = index
	c.cachedRowCount = len(resp.Values)
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	c.mu.Unlock()
	return nil
}

// ensureHeader writes the header row into an empty sheet.
func (c *Client) ensureHeader(ctx context.Context) error {
	if err := c.refreshIndex(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	empty := c.cachedRowCount == 0
	c.mu.Unlock()
	if !empty {
		return nil
	}
	rng := ports.RowRange(c.sheet, 1)
	vr := &gsheet.ValueRange{Values: [][]any{ports.Header}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	c.mu.Lock()
	c.cachedRowCount = 1
	c.mu.Unlock()
	return nil
}

var rangeRow = regexp.MustCompile(`![A-Z]+(\d+)`)

// rowFromRange extracts the first row number of an A1 range such as
// "Transactions!A7:H7".
func rowFromRange(rng string) (int, bool) {
	m := rangeRow.FindStringSubmatch(rng)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}
