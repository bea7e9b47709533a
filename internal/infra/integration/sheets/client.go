// Package sheets mirrors captured leads into a Google Sheet.
package sheets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/xavierca1/leadfunnel/internal/entity"
	"github.com/xavierca1/leadfunnel/internal/infra/export"
)

type LeadSheet struct {
	svc           *sheets.Service
	spreadsheetID string
	writeRange    string
	logger        *zap.Logger
}

// NewLeadSheet builds the Sheets service. Without opts it authenticates with
// the service account credentials file.
func NewLeadSheet(ctx context.Context, credentialsFile, spreadsheetID, writeRange string, logger *zap.Logger, opts ...option.ClientOption) (*LeadSheet, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	if len(opts) == 0 {
		if credentialsFile == "" {
			return nil, errors.New("credentials file is required")
		}
		opts = append(opts,
			option.WithCredentialsFile(credentialsFile),
			option.WithScopes(sheets.SpreadsheetsScope),
		)
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &LeadSheet{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		writeRange:    writeRange,
		logger:        logger,
	}, nil
}

// AppendLead adds one row after the last filled row of the range. Values are
// written RAW so lead fields are never parsed as formulas or numbers.
func (s *LeadSheet) AppendLead(ctx context.Context, lead *entity.Lead) error {
	vr := &sheets.ValueRange{Values: [][]any{export.Row(lead)}}

	resp, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.writeRange, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append lead %s to sheet: %w", lead.ID, err)
	}

	var updated string
	if resp.Updates != nil {
		updated = resp.Updates.UpdatedRange
	}
	s.logger.Debug("lead appended to sheet", zap.String("lead_id", lead.ID), zap.String("range", updated))
	return nil
}
