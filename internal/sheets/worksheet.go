// Package sheets appends lead rows to a Google Sheets worksheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/wolfman30/insurance-leadform/pkg/logging"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

var scopes = []string{
	gsheets.SpreadsheetsScope,
	drive.DriveScope,
}

var (
	// ErrSpreadsheetNotFound is returned when no spreadsheet matches the configured name.
	ErrSpreadsheetNotFound = errors.New("sheets: spreadsheet not found")
	// ErrWorksheetNotFound is returned when the spreadsheet has no tab with the configured title.
	ErrWorksheetNotFound = errors.New("sheets: worksheet not found")
)

// Config identifies the target worksheet and how to authenticate.
type Config struct {
	// SpreadsheetID skips the Drive lookup by name when set.
	SpreadsheetID   string
	SpreadsheetName string
	WorksheetName   string
	// CredentialsJSON is a service-account key. When empty, the caller must
	// supply transport options (tests use option.WithHTTPClient).
	CredentialsJSON []byte
	Header          []string
}

// Worksheet is a connected handle to one tab of a spreadsheet. It is safe to
// share across goroutines; the underlying service is stateless.
type Worksheet struct {
	svc           *gsheets.Service
	spreadsheetID string
	title         string
	logger        *logging.Logger
}

// Connect authenticates, resolves the spreadsheet and worksheet, and writes
// the header row if the worksheet is still empty.
func Connect(ctx context.Context, cfg Config, logger *logging.Logger, opts ...option.ClientOption) (*Worksheet, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.WorksheetName) == "" {
		return nil, fmt.Errorf("sheets: worksheet name required")
	}
	if len(cfg.CredentialsJSON) > 0 {
		jwtCfg, err := google.JWTConfigFromJSON(cfg.CredentialsJSON, scopes...)
		if err != nil {
			return nil, fmt.Errorf("sheets: parse service account: %w", err)
		}
		opts = append([]option.ClientOption{option.WithHTTPClient(jwtCfg.Client(ctx))}, opts...)
	}

	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}

	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		spreadsheetID, err = findSpreadsheet(ctx, cfg.SpreadsheetName, opts...)
		if err != nil {
			return nil, err
		}
	}

	ws := &Worksheet{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		title:         cfg.WorksheetName,
		logger:        logger,
	}
	if err := ws.ensureWorksheet(ctx); err != nil {
		return nil, err
	}
	if len(cfg.Header) > 0 {
		if err := ws.ensureHeader(ctx, cfg.Header); err != nil {
			return nil, err
		}
	}

	logger.Info("connected to lead worksheet",
		"spreadsheet_id", spreadsheetID,
		"worksheet", cfg.WorksheetName,
	)
	return ws, nil
}

// SpreadsheetID returns the resolved spreadsheet identifier.
func (w *Worksheet) SpreadsheetID() string {
	return w.spreadsheetID
}

// Title returns the worksheet tab title.
func (w *Worksheet) Title() string {
	return w.title
}

// Append adds one row after the last row with data.
func (w *Worksheet) Append(ctx context.Context, row []string) error {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	_, err := w.svc.Spreadsheets.Values.
		Append(w.spreadsheetID, w.a1Range(), &gsheets.ValueRange{Values: [][]interface{}{cells}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append row: %w", describe(err))
	}
	return nil
}

func (w *Worksheet) ensureWorksheet(ctx context.Context) error {
	ss, err := w.svc.Spreadsheets.Get(w.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: get spreadsheet: %w", describe(err))
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == w.title {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrWorksheetNotFound, w.title)
}

// ensureHeader writes the header when the worksheet has no data at all.
func (w *Worksheet) ensureHeader(ctx context.Context, header []string) error {
	resp, err := w.svc.Spreadsheets.Values.Get(w.spreadsheetID, w.a1Range()).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: read values: %w", describe(err))
	}
	if len(resp.Values) > 0 {
		return nil
	}
	if err := w.Append(ctx, header); err != nil {
		return err
	}
	w.logger.Info("wrote header row to empty worksheet", "worksheet", w.title)
	return nil
}

func (w *Worksheet) a1Range() string {
	return "'" + strings.ReplaceAll(w.title, "'", "''") + "'"
}

func findSpreadsheet(ctx context.Context, name string, opts ...option.ClientOption) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("sheets: spreadsheet id or name required")
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("sheets: create drive service: %w", err)
	}
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), spreadsheetMimeType)
	list, err := driveSvc.Files.List().
		Q(q).
		Fields("files(id, name)").
		PageSize(1).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("sheets: search drive: %w", describe(err))
	}
	if len(list.Files) == 0 {
		return "", fmt.Errorf("%w: %q", ErrSpreadsheetNotFound, name)
	}
	return list.Files[0].Id, nil
}

// describe flattens Google API errors into status code plus message.
func describe(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return fmt.Errorf("status %d: %s: %w", gerr.Code, gerr.Message, err)
	}
	return err
}
