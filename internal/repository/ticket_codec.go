package repository

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/support-tracker/internal/domain"
)

// Canonical column names of the ticket file, in file order.
const (
	ColumnID              = "ID"
	ColumnClinic          = "Clinic"
	ColumnPlan            = "Plan"
	ColumnType            = "Type"
	ColumnStatus          = "Status"
	ColumnOpenedAt        = "OpenedAt"
	ColumnDay1Done        = "Day1Done"
	ColumnDay3Done        = "Day3Done"
	ColumnTechEscalations = "TechEscalations"
	ColumnNotes           = "Notes"
	ColumnFinalizedAt     = "FinalizedAt"
	ColumnPriority        = "Priority"
	ColumnBlockingReason  = "BlockingReason"
)

// Columns is the canonical header.
var Columns = []string{
	ColumnID, ColumnClinic, ColumnPlan, ColumnType, ColumnStatus, ColumnOpenedAt,
	ColumnDay1Done, ColumnDay3Done, ColumnTechEscalations, ColumnNotes,
	ColumnFinalizedAt, ColumnPriority, ColumnBlockingReason,
}

// requiredColumns must be present in the header; every other column is
// injected with an empty value when absent.
var requiredColumns = []string{ColumnID, ColumnClinic, ColumnStatus, ColumnOpenedAt}

// DateLayout is the day-first format used for OpenedAt and FinalizedAt.
const DateLayout = "02/01/2006 15:04"

const (
	wireYes = "Yes"
	wireNo  = "No"
)

// lenient layouts accepted on read; files edited by hand or exported from
// spreadsheets often carry seconds or ISO dates.
var readLayouts = []string{
	DateLayout,
	"02/01/2006 15:04:05",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// headerAliases maps the column names of the legacy Portuguese sheet.
var headerAliases = map[string]string{
	"Clínica":            ColumnClinic,
	"Plano":              ColumnPlan,
	"Tipo":               ColumnType,
	"Data_Abertura":      ColumnOpenedAt,
	"D1_Feito":           ColumnDay1Done,
	"D3_Feito":           ColumnDay3Done,
	"Cobranças_Tech":     ColumnTechEscalations,
	"Notas":              ColumnNotes,
	"Data_Finalizacao":   ColumnFinalizedAt,
	"Prioridade":         ColumnPriority,
	"Motivo_Impedimento": ColumnBlockingReason,
}

var statusAliases = map[string]domain.TicketStatus{
	"Novo":               domain.TicketStatusNew,
	"Aguardando Tech":    domain.TicketStatusAwaitingTech,
	"Ação Suporte":       domain.TicketStatusSupportAction,
	"Aguardando Cliente": domain.TicketStatusAwaitingClient,
	"Finalizado":         domain.TicketStatusFinalized,
}

var typeAliases = map[string]domain.TicketType{
	"Instalação":   domain.TicketTypeInstallation,
	"Configuração": domain.TicketTypeConfiguration,
	"Integração":   domain.TicketTypeIntegration,
}

var priorityAliases = map[string]domain.TicketPriority{
	"Alta": domain.TicketPriorityHigh,
}

var blockingAliases = map[string]domain.BlockingReason{
	"Falta de Acesso Remoto": domain.BlockingReasonNoRemoteAccess,
	"Bug de Software":        domain.BlockingReasonSoftwareBug,
	"Aguardando Cliente":     domain.BlockingReasonAwaitingClient,
	"Infraestrutura":         domain.BlockingReasonInfrastructure,
	"Erro de Terceiros":      domain.BlockingReasonThirdPartyError,
}

// ErrMissingColumn reports a header without one of the required columns.
var ErrMissingColumn = errors.New("missing required column")

// EncodeTickets renders tickets as the canonical CSV table, header first.
func EncodeTickets(tickets []domain.Ticket) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Columns); err != nil {
		return nil, err
	}
	for i := range tickets {
		if err := w.Write(EncodeRow(tickets[i])); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeRow renders one ticket in Columns order.
func EncodeRow(t domain.Ticket) []string {
	return []string{
		t.ID,
		t.ClinicName,
		strconv.Itoa(t.PlanTier),
		string(t.Type),
		string(t.Status),
		formatTimestamp(t.OpenedAt),
		formatBool(t.Day1Done),
		formatBool(t.Day3Done),
		strconv.Itoa(t.TechEscalations),
		string(t.Notes),
		formatTimestamp(t.FinalizedAt),
		string(t.Priority),
		string(t.BlockingReason),
	}
}

// DecodeTickets parses a ticket table. Rows are matched to columns by header
// name, so column order is free and unknown columns are ignored. Rows with an
// empty ID are skipped; a repeated ID replaces the earlier row.
func DecodeTickets(data []byte) (*domain.TicketSet, error) {
	set := domain.NewTicketSet()
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if len(bytes.TrimSpace(data)) == 0 {
		return set, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if canonical, ok := headerAliases[name]; ok {
			name = canonical
		}
		index[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		field := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}
		t := decodeRow(field)
		if t.ID == "" {
			continue
		}
		set.Upsert(t)
	}
	return set, nil
}

func decodeRow(field func(string) string) domain.Ticket {
	t := domain.Ticket{
		ID:              strings.TrimSpace(field(ColumnID)),
		ClinicName:      field(ColumnClinic),
		PlanTier:        parseCount(field(ColumnPlan)),
		Type:            parseType(field(ColumnType)),
		Status:          parseStatus(field(ColumnStatus)),
		OpenedAt:        parseTimestamp(field(ColumnOpenedAt)),
		Day1Done:        parseBool(field(ColumnDay1Done)),
		Day3Done:        parseBool(field(ColumnDay3Done)),
		TechEscalations: parseCount(field(ColumnTechEscalations)),
		Notes:           domain.NoteLog(field(ColumnNotes)),
		FinalizedAt:     parseTimestamp(field(ColumnFinalizedAt)),
		Priority:        parsePriority(field(ColumnPriority)),
		BlockingReason:  parseBlockingReason(field(ColumnBlockingReason)),
	}
	if t.TechEscalations < 0 {
		t.TechEscalations = 0
	}
	return t
}

func formatTimestamp(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format(DateLayout)
}

// parseTimestamp reads a wall-clock time in the local zone. Unparseable
// values are treated as absent.
func parseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range readLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return &parsed
		}
	}
	return nil
}

func formatBool(v bool) string {
	if v {
		return wireYes
	}
	return wireNo
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "sim", "true", "1":
		return true
	default:
		return false
	}
}

// parseCount reads a non-negative integer, tolerating float renderings such
// as "50.0". Anything else is zero.
func parseCount(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}
	return 0
}

func parseStatus(raw string) domain.TicketStatus {
	raw = strings.TrimSpace(raw)
	if alias, ok := statusAliases[raw]; ok {
		return alias
	}
	return domain.TicketStatus(raw)
}

func parseType(raw string) domain.TicketType {
	raw = strings.TrimSpace(raw)
	if alias, ok := typeAliases[raw]; ok {
		return alias
	}
	return domain.TicketType(raw)
}

func parsePriority(raw string) domain.TicketPriority {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.TicketPriorityNormal
	}
	if alias, ok := priorityAliases[raw]; ok {
		return alias
	}
	return domain.TicketPriority(raw)
}

func parseBlockingReason(raw string) domain.BlockingReason {
	raw = strings.TrimSpace(raw)
	if alias, ok := blockingAliases[raw]; ok {
		return alias
	}
	return domain.BlockingReason(raw)
}
