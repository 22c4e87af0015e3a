package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/support-tracker/internal/repository"
	"github.com/spec-kit/support-tracker/internal/sla"
)

const (
	// ExportCSVFilename is the download name of the CSV export.
	ExportCSVFilename = "relatorio_cs.csv"
	// ExportXLSXFilename is the download name of the spreadsheet export.
	ExportXLSXFilename = "relatorio_cs.xlsx"

	exportSheet     = "Tickets"
	exportSLAColumn = "SLA"
)

// ExportService renders the full collection for download.
type ExportService struct {
	tickets *TicketService
}

// NewExportService constructs the service.
func NewExportService(tickets *TicketService) *ExportService {
	return &ExportService{tickets: tickets}
}

// CSV returns the collection in the store's own file format.
func (s *ExportService) CSV(ctx context.Context) ([]byte, error) {
	snap := s.tickets.Snapshot(ctx)
	if snap.LoadErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, snap.LoadErr)
	}
	return repository.EncodeTickets(snap.Tickets())
}

// XLSX returns the collection as a spreadsheet with the canonical columns
// followed by the current SLA label.
func (s *ExportService) XLSX(ctx context.Context) ([]byte, error) {
	snap := s.tickets.Snapshot(ctx)
	if snap.LoadErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, snap.LoadErr)
	}
	return buildWorkbook(snap.Items)
}

func buildWorkbook(items []sla.Classified) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, err
	}

	columns := append(append([]string{}, repository.Columns...), exportSLAColumn)
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, col); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}

	for rowIdx, item := range items {
		values := exportRow(item)
		for colIdx, val := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(exportSheet, cell, val); err != nil {
				return nil, err
			}
		}
	}

	for i := range columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(exportSheet, col, col, 18); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// exportRow mirrors the CSV row with numeric cells kept numeric.
func exportRow(item sla.Classified) []any {
	row := repository.EncodeRow(item.Ticket)
	out := make([]any, 0, len(row)+1)
	for i, v := range row {
		switch repository.Columns[i] {
		case repository.ColumnPlan, repository.ColumnTechEscalations:
			if n, err := strconv.Atoi(v); err == nil {
				out = append(out, n)
				continue
			}
		}
		out = append(out, v)
	}
	return append(out, string(item.Label))
}
