package service

import (
	"context"

	"github.com/spec-kit/support-tracker/internal/domain"
	"github.com/spec-kit/support-tracker/internal/sla"
)

// QueueFilter narrows the active queue. A nil Statuses selects every status
// present in the collection except Finalized; a non-nil empty slice selects
// nothing.
type QueueFilter struct {
	Statuses []domain.TicketStatus
	Search   string
}

// QueueMetrics are the counters shown above the queue.
type QueueMetrics struct {
	QueueSize    int `json:"queue_size"`
	Urgent       int `json:"urgent"`
	AwaitingTech int `json:"awaiting_tech"`
	VIPAccounts  int `json:"vip_accounts"`
}

// QueueView is the filtered queue plus the context needed to render it.
type QueueView struct {
	Items             []sla.Classified
	AvailableStatuses []domain.TicketStatus
	SelectedStatuses  []domain.TicketStatus
	Metrics           QueueMetrics
	Alert             Alert
	LoadErr           error
}

// ListQueue builds the queue view. Urgent counts and the alert cover the
// whole collection; the other metrics cover the filtered view.
func (s *TicketService) ListQueue(ctx context.Context, filter QueueFilter, alertTemplate string) *QueueView {
	snap := s.Snapshot(ctx)

	available := presentStatuses(snap.Items)
	selected := filter.Statuses
	if selected == nil {
		selected = make([]domain.TicketStatus, 0, len(available))
		for _, st := range available {
			if st != domain.TicketStatusFinalized {
				selected = append(selected, st)
			}
		}
	}
	want := make(map[domain.TicketStatus]struct{}, len(selected))
	for _, st := range selected {
		want[st] = struct{}{}
	}

	view := &QueueView{
		Items:             []sla.Classified{},
		AvailableStatuses: available,
		SelectedStatuses:  selected,
		Alert:             BuildAlert(snap.Items, alertTemplate),
		LoadErr:           snap.LoadErr,
	}
	for _, item := range snap.Items {
		if _, ok := want[item.Ticket.Status]; !ok {
			continue
		}
		if !item.Ticket.MatchesClinic(filter.Search) {
			continue
		}
		view.Items = append(view.Items, item)
		if item.Ticket.Status == domain.TicketStatusAwaitingTech {
			view.Metrics.AwaitingTech++
		}
		if item.Ticket.IsVIP() {
			view.Metrics.VIPAccounts++
		}
	}
	view.Metrics.QueueSize = len(view.Items)
	view.Metrics.Urgent = view.Alert.UrgentCount
	return view
}

// presentStatuses lists the distinct statuses in order of first appearance,
// or just New for an empty collection.
func presentStatuses(items []sla.Classified) []domain.TicketStatus {
	if len(items) == 0 {
		return []domain.TicketStatus{domain.TicketStatusNew}
	}
	seen := make(map[domain.TicketStatus]struct{})
	var out []domain.TicketStatus
	for _, item := range items {
		if _, ok := seen[item.Ticket.Status]; ok {
			continue
		}
		seen[item.Ticket.Status] = struct{}{}
		out = append(out, item.Ticket.Status)
	}
	return out
}
