package domain

import "time"

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeCreated        TicketChangeType = "CREATED"
	ChangeTypeStatus         TicketChangeType = "STATUS_CHANGE"
	ChangeTypePriority       TicketChangeType = "PRIORITY_CHANGE"
	ChangeTypeBlockingReason TicketChangeType = "BLOCKING_REASON_CHANGE"
	ChangeTypeCheckpoint     TicketChangeType = "CHECKPOINT_CHANGE"
	ChangeTypeEscalation     TicketChangeType = "ESCALATION"
	ChangeTypeNote           TicketChangeType = "NOTE_ADDED"
	ChangeTypeFinalized      TicketChangeType = "FINALIZED"
)

// TicketHistory is an immutable audit trail entry.
type TicketHistory struct {
	ID         string
	TicketID   string
	ChangeType TicketChangeType
	OldValue   map[string]any
	NewValue   map[string]any
	CreatedAt  time.Time
}
