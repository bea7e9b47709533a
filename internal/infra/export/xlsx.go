// Package export renders lead collections as spreadsheet rows and XLSX
// workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

const sheetName = "Leads"

// Header is the column order shared by the workbook and the Google Sheet mirror.
var Header = []string{
	"ID", "Created", "Name", "City", "Language", "Business type", "Service",
	"Phone", "WhatsApp", "Email", "Source", "Score", "Priority", "Status",
	"Last channel", "Last contacted", "Last replied", "Attempts", "Notes",
}

// Row flattens a lead into Header order.
func Row(l *entity.Lead) []any {
	return []any{
		l.ID,
		l.CreatedAt.Format(time.RFC3339),
		l.Name,
		l.City,
		string(l.Language),
		l.BusinessType,
		l.Service,
		l.Contact.Phone,
		l.Contact.WhatsApp,
		l.Contact.Email,
		string(l.Source),
		l.Score,
		string(l.Priority),
		string(l.Status),
		string(l.LastChannel),
		formatTime(l.LastContactedAt),
		formatTime(l.LastRepliedAt),
		l.OutreachAttempts,
		l.Notes,
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// WriteXLSX writes leads as a single-sheet workbook to w.
func WriteXLSX(w io.Writer, leads []*entity.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, l := range leads {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, Row(l)); err != nil {
			return fmt.Errorf("write lead %s: %w", l.ID, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush workbook: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
