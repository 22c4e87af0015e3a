package sla

import (
	"testing"
	"time"

	"github.com/spec-kit/support-tracker/internal/domain"
)

var now = time.Date(2026, 4, 20, 12, 0, 0, 0, time.UTC)

func openedAgo(d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

func TestClassify(t *testing.T) {
	day := 24 * time.Hour

	tests := []struct {
		name   string
		ticket domain.Ticket
		want   Label
	}{
		{
			name:   "finalized wins over everything",
			ticket: domain.Ticket{Status: domain.TicketStatusFinalized, Priority: domain.TicketPriorityHigh, OpenedAt: openedAgo(10 * day)},
			want:   LabelCompleted,
		},
		{
			name:   "finalized without opened_at",
			ticket: domain.Ticket{Status: domain.TicketStatusFinalized},
			want:   LabelCompleted,
		},
		{
			name:   "missing opened_at",
			ticket: domain.Ticket{Status: domain.TicketStatusNew, Priority: domain.TicketPriorityHigh},
			want:   LabelAwaiting,
		},
		{
			name:   "high priority short-circuits time checks",
			ticket: domain.Ticket{Status: domain.TicketStatusNew, Priority: domain.TicketPriorityHigh, OpenedAt: openedAgo(10 * day)},
			want:   LabelHighPriority,
		},
		{
			name:   "exactly three days without day3",
			ticket: domain.Ticket{Status: domain.TicketStatusAwaitingTech, Priority: domain.TicketPriorityNormal, OpenedAt: openedAgo(3 * day)},
			want:   LabelCritical,
		},
		{
			name:   "three days with day3 done but day1 missing",
			ticket: domain.Ticket{Status: domain.TicketStatusNew, Priority: domain.TicketPriorityNormal, OpenedAt: openedAgo(4 * day), Day3Done: true},
			want:   LabelWarning,
		},
		{
			name:   "three days with both checkpoints",
			ticket: domain.Ticket{Status: domain.TicketStatusNew, Priority: domain.TicketPriorityNormal, OpenedAt: openedAgo(4 * day), Day1Done: true, Day3Done: true},
			want:   LabelOnTime,
		},
		{
			name:   "exactly one day without day1",
			ticket: domain.Ticket{Status: domain.TicketStatusNew, Priority: domain.TicketPriorityNormal, OpenedAt: openedAgo(day)},
			want:   LabelWarning,
		},
		{
			name:   "one day with day1 done",
			ticket: domain.Ticket{Status: domain.TicketStatusNew, Priority: domain.TicketPriorityNormal, OpenedAt: openedAgo(30 * time.Hour), Day1Done: true},
			want:   LabelOnTime,
		},
		{
			name:   "half a day",
			ticket: domain.Ticket{Status: domain.TicketStatusNew, Priority: domain.TicketPriorityNormal, OpenedAt: openedAgo(12 * time.Hour)},
			want:   LabelOnTime,
		},
		{
			name:   "opened in the future",
			ticket: domain.Ticket{Status: domain.TicketStatusNew, Priority: domain.TicketPriorityNormal, OpenedAt: openedAgo(-time.Hour)},
			want:   LabelOnTime,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.ticket, now); got != tt.want {
				t.Fatalf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyFinalizedIgnoresOtherFields(t *testing.T) {
	for _, priority := range domain.TicketPriorities {
		for _, done := range []bool{false, true} {
			ticket := domain.Ticket{
				Status:   domain.TicketStatusFinalized,
				Priority: priority,
				OpenedAt: openedAgo(40 * 24 * time.Hour),
				Day1Done: done,
				Day3Done: done,
			}
			if got := Classify(ticket, now); got != LabelCompleted {
				t.Fatalf("Classify(%+v) = %q, want %q", ticket, got, LabelCompleted)
			}
		}
	}
}

func TestUrgentCount(t *testing.T) {
	tickets := []domain.Ticket{
		{ID: "a", Status: domain.TicketStatusNew, Priority: domain.TicketPriorityHigh, OpenedAt: openedAgo(time.Hour)},
		{ID: "b", Status: domain.TicketStatusNew, Priority: domain.TicketPriorityNormal, OpenedAt: openedAgo(80 * time.Hour)},
		{ID: "c", Status: domain.TicketStatusNew, Priority: domain.TicketPriorityNormal, OpenedAt: openedAgo(30 * time.Hour)},
		{ID: "d", Status: domain.TicketStatusFinalized, Priority: domain.TicketPriorityHigh},
	}
	items := ClassifyAll(tickets, now)
	if got := UrgentCount(items); got != 2 {
		t.Fatalf("UrgentCount() = %d, want 2", got)
	}
	if items[2].Label != LabelWarning {
		t.Errorf("items[2].Label = %q, want %q", items[2].Label, LabelWarning)
	}
}
