package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/cashcarbc/voice-intake/pkg/logging"
)

const DefaultSheetRange = "Sheet1!A:X"

// SheetsSink appends each record as a row to a Google Sheet.
type SheetsSink struct {
	svc     *sheets.Service
	sheetID string
	rng     string
	logger  *logging.Logger
}

// NewSheetsSink authenticates with a service-account JSON blob. Keys pasted
// into env vars often carry literal "\n" sequences; those are restored.
func NewSheetsSink(ctx context.Context, serviceAccountJSON, sheetID, rng string, logger *logging.Logger) (*SheetsSink, error) {
	if strings.TrimSpace(serviceAccountJSON) == "" || strings.TrimSpace(sheetID) == "" {
		return nil, fmt.Errorf("leads: sheets: %w", ErrSinkNotConfigured)
	}
	creds, err := fixServiceAccountKey(serviceAccountJSON)
	if err != nil {
		return nil, err
	}
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(creds),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("leads: sheets client: %w", err)
	}
	return newSheetsSinkWithService(svc, sheetID, rng, logger), nil
}

func newSheetsSinkWithService(svc *sheets.Service, sheetID, rng string, logger *logging.Logger) *SheetsSink {
	if svc == nil {
		panic("leads: sheets service required")
	}
	if strings.TrimSpace(rng) == "" {
		rng = DefaultSheetRange
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SheetsSink{svc: svc, sheetID: sheetID, rng: rng, logger: logger}
}

// Save appends one row with RAW values.
func (s *SheetsSink) Save(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{rec.SheetRow()}}
	resp, err := s.svc.Spreadsheets.Values.Append(s.sheetID, s.rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("leads: sheets append: %w", err)
	}
	if resp.Updates != nil {
		s.logger.Debug("lead row appended", "call_id", rec.CallID, "range", resp.Updates.UpdatedRange)
	}
	return nil
}

func fixServiceAccountKey(raw string) ([]byte, error) {
	var creds map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return nil, fmt.Errorf("leads: parse service account: %w", err)
	}
	if key, ok := creds["private_key"].(string); ok {
		creds["private_key"] = strings.ReplaceAll(key, `\n`, "\n")
	}
	out, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("leads: encode service account: %w", err)
	}
	return out, nil
}
