package dto

import (
	"time"

	"github.com/spec-kit/support-tracker/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	ClinicName string                `json:"clinic_name"`
	PlanTier   int                   `json:"plan_tier"`
	Type       domain.TicketType     `json:"type"`
	Priority   domain.TicketPriority `json:"priority"`
}

// EditTicketRequest is a full editor submission. Status, priority and
// blocking reason replace the stored values; add_escalation and note are
// one-shot actions.
type EditTicketRequest struct {
	Status         domain.TicketStatus   `json:"status"`
	BlockingReason domain.BlockingReason `json:"blocking_reason"`
	Priority       domain.TicketPriority `json:"priority"`
	Day1Done       bool                  `json:"day1_done"`
	Day3Done       bool                  `json:"day3_done"`
	AddEscalation  bool                  `json:"add_escalation"`
	Note           string                `json:"note"`
}

// TicketSummary is one queue row.
type TicketSummary struct {
	ID              string                `json:"id"`
	ClinicName      string                `json:"clinic_name"`
	PlanTier        int                   `json:"plan_tier"`
	VIP             bool                  `json:"vip"`
	Type            domain.TicketType     `json:"type"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	BlockingReason  domain.BlockingReason `json:"blocking_reason"`
	OpenedAt        *time.Time            `json:"opened_at"`
	FinalizedAt     *time.Time            `json:"finalized_at"`
	Day1Done        bool                  `json:"day1_done"`
	Day3Done        bool                  `json:"day3_done"`
	TechEscalations int                   `json:"tech_escalations"`
	SLALabel        string                `json:"sla_label"`
}

// NoteEntry is one parsed line of the notes log.
type NoteEntry struct {
	Stamp string `json:"stamp,omitempty"`
	Text  string `json:"text"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Notes       string      `json:"notes"`
	NoteEntries []NoteEntry `json:"note_entries"`
}

// QueueMetrics mirrors the counters above the queue.
type QueueMetrics struct {
	QueueSize    int `json:"queue_size"`
	Urgent       int `json:"urgent"`
	AwaitingTech int `json:"awaiting_tech"`
	VIPAccounts  int `json:"vip_accounts"`
}

// AlertResponse is the urgent-ticket notice.
type AlertResponse struct {
	Raised      bool   `json:"raised"`
	UrgentCount int    `json:"urgent_count"`
	Message     string `json:"message,omitempty"`
}

// QueueResponse is the filtered active queue.
type QueueResponse struct {
	Items             []TicketSummary       `json:"items"`
	AvailableStatuses []domain.TicketStatus `json:"available_statuses"`
	SelectedStatuses  []domain.TicketStatus `json:"selected_statuses"`
	Metrics           QueueMetrics          `json:"metrics"`
	Alert             AlertResponse         `json:"alert"`
	Warning           string                `json:"warning,omitempty"`
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	ID         string                  `json:"id"`
	ChangeType domain.TicketChangeType `json:"change_type"`
	OldValue   map[string]any          `json:"old_value"`
	NewValue   map[string]any          `json:"new_value"`
	CreatedAt  time.Time               `json:"created_at"`
}

// OptionsResponse lists the values the ticket forms accept.
type OptionsResponse struct {
	Statuses        []domain.TicketStatus   `json:"statuses"`
	Priorities      []domain.TicketPriority `json:"priorities"`
	Types           []domain.TicketType     `json:"types"`
	BlockingReasons []domain.BlockingReason `json:"blocking_reasons"`
	PlanTiers       []int                   `json:"plan_tiers"`
}
