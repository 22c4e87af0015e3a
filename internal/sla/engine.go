// Package sla classifies tickets against the follow-up checkpoints.
//
// Labels are derived, never persisted, and must be recomputed on every
// read because they depend on the current time.
package sla

import (
	"time"

	"github.com/spec-kit/support-tracker/internal/domain"
)

// Label is the urgency classification shown next to a ticket.
type Label string

const (
	LabelCompleted    Label = "Completed"
	LabelAwaiting     Label = "Awaiting"
	LabelHighPriority Label = "High Priority"
	LabelCritical     Label = "Critical (72h+)"
	LabelWarning      Label = "Warning (24h+)"
	LabelOnTime       Label = "On Time"
)

const (
	secondsPerDay = 86400

	// CriticalAfterDays is the elapsed time after which a missing day-3
	// checkpoint makes a ticket critical.
	CriticalAfterDays = 3.0
	// WarningAfterDays is the elapsed time after which a missing day-1
	// checkpoint raises a warning.
	WarningAfterDays = 1.0
)

// Classify returns the label for t at now. Rules are evaluated in order
// and the first match wins.
func Classify(t domain.Ticket, now time.Time) Label {
	if t.IsFinalized() {
		return LabelCompleted
	}
	if t.OpenedAt == nil || t.OpenedAt.IsZero() {
		return LabelAwaiting
	}
	if t.Priority == domain.TicketPriorityHigh {
		return LabelHighPriority
	}
	days := ElapsedDays(*t.OpenedAt, now)
	if days >= CriticalAfterDays && !t.Day3Done {
		return LabelCritical
	}
	if days >= WarningAfterDays && !t.Day1Done {
		return LabelWarning
	}
	return LabelOnTime
}

// ElapsedDays returns now minus opened in fractional days.
func ElapsedDays(opened, now time.Time) float64 {
	return now.Sub(opened).Seconds() / secondsPerDay
}

// IsUrgent reports whether l should raise the operator alert.
func (l Label) IsUrgent() bool {
	return l == LabelCritical || l == LabelHighPriority
}

// Classified pairs a ticket with its label.
type Classified struct {
	Ticket domain.Ticket
	Label  Label
}

// ClassifyAll labels every ticket at the same instant.
func ClassifyAll(tickets []domain.Ticket, now time.Time) []Classified {
	out := make([]Classified, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, Classified{Ticket: t, Label: Classify(t, now)})
	}
	return out
}

// UrgentCount returns how many of the classified tickets are urgent.
func UrgentCount(items []Classified) int {
	count := 0
	for _, item := range items {
		if item.Label.IsUrgent() {
			count++
		}
	}
	return count
}
