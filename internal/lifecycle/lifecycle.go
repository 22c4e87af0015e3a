// Package lifecycle holds the mutation rules for tickets: creation and
// the editor submission. No transition table restricts status changes;
// any status may follow any other.
package lifecycle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/support-tracker/internal/domain"
)

var (
	ErrClinicRequired        = errors.New("clinic name required")
	ErrInvalidPlan           = errors.New("invalid plan tier")
	ErrInvalidType           = errors.New("invalid ticket type")
	ErrInvalidPriority       = errors.New("invalid priority")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrInvalidBlockingReason = errors.New("invalid blocking reason")
)

// IDSet reports whether an id is already taken.
type IDSet interface {
	Has(id string) bool
}

// CreateInput is the payload of the new-ticket form.
type CreateInput struct {
	ClinicName string
	PlanTier   int
	Type       domain.TicketType
	Priority   domain.TicketPriority
}

// Validate checks the form values. An empty priority is accepted and
// defaults to Normal in Create.
func (in CreateInput) Validate() error {
	if strings.TrimSpace(in.ClinicName) == "" {
		return ErrClinicRequired
	}
	if !domain.ValidPlanTier(in.PlanTier) {
		return fmt.Errorf("%w: %d", ErrInvalidPlan, in.PlanTier)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, in.Type)
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, in.Priority)
	}
	return nil
}

// Create builds a new ticket opened at now. The id is the current time in
// milliseconds; when taken already holds that id it is bumped until free.
func Create(in CreateInput, now time.Time, taken IDSet) (domain.Ticket, error) {
	if err := in.Validate(); err != nil {
		return domain.Ticket{}, err
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.TicketPriorityNormal
	}
	opened := now
	return domain.Ticket{
		ID:              NewID(now, taken),
		ClinicName:      strings.TrimSpace(in.ClinicName),
		PlanTier:        in.PlanTier,
		Type:            in.Type,
		Status:          domain.TicketStatusNew,
		OpenedAt:        &opened,
		Day1Done:        false,
		Day3Done:        false,
		TechEscalations: 0,
		Notes:           "",
		Priority:        priority,
		BlockingReason:  domain.BlockingReasonNone,
	}, nil
}

// NewID returns now in Unix milliseconds as a string, skipping ids in taken.
func NewID(now time.Time, taken IDSet) string {
	ms := now.UnixMilli()
	id := strconv.FormatInt(ms, 10)
	for taken != nil && taken.Has(id) {
		ms++
		id = strconv.FormatInt(ms, 10)
	}
	return id
}

// Edit is a full editor submission. Status, BlockingReason, Priority and
// the checkpoints overwrite the ticket unconditionally.
type Edit struct {
	Status         domain.TicketStatus
	BlockingReason domain.BlockingReason
	Priority       domain.TicketPriority
	Day1Done       bool
	Day3Done       bool
	AddEscalation  bool
	Note           string
}

// Validate checks the enumerated fields of the submission.
func (e Edit) Validate() error {
	if !e.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, e.Status)
	}
	if !e.BlockingReason.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidBlockingReason, e.BlockingReason)
	}
	if !e.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, e.Priority)
	}
	return nil
}

// ApplyEdit returns t with e applied at now. The escalation counter grows by
// exactly one when AddEscalation is set. FinalizedAt is stamped every time the
// submitted status is Finalized, including when the ticket already was.
func ApplyEdit(t domain.Ticket, e Edit, now time.Time) (domain.Ticket, error) {
	if err := e.Validate(); err != nil {
		return t, err
	}
	t.Status = e.Status
	t.BlockingReason = e.BlockingReason
	t.Priority = e.Priority
	t.Day1Done = e.Day1Done
	t.Day3Done = e.Day3Done
	if e.AddEscalation {
		t.TechEscalations++
	}
	t.Notes = t.Notes.Prepend(now, e.Note)
	if e.Status == domain.TicketStatusFinalized {
		finalized := now
		t.FinalizedAt = &finalized
	}
	return t, nil
}
