package events

import (
	"time"

	"github.com/spec-kit/support-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketUpdated   EventType = "ticket_updated"
	EventTicketFinalized EventType = "ticket_finalized"
	EventSLABreach       EventType = "sla_breach"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ClinicName string                `json:"clinic_name"`
	PlanTier   int                   `json:"plan_tier"`
	Type       domain.TicketType     `json:"type"`
	Priority   domain.TicketPriority `json:"priority"`
}

// FieldChange is one audited difference carried by TicketUpdatedPayload.
type FieldChange struct {
	Type     domain.TicketChangeType `json:"type"`
	OldValue map[string]any          `json:"old_value"`
	NewValue map[string]any          `json:"new_value"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Changes   []FieldChange       `json:"changes"`
}

// SLABreachPayload payload.
type SLABreachPayload struct {
	ClinicName  string  `json:"clinic_name"`
	Label       string  `json:"label"`
	ElapsedDays float64 `json:"elapsed_days"`
}
