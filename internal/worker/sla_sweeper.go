package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/support-tracker/internal/events"
	"github.com/spec-kit/support-tracker/internal/service"
	"github.com/spec-kit/support-tracker/internal/sla"
)

// SLASweeper periodically classifies the collection and publishes a
// breach event for every urgent ticket. A ticket is reported once per label;
// it is reported again only after its label changes.
type SLASweeper struct {
	tickets    *service.TicketService
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu       sync.Mutex
	reported map[string]sla.Label
	sched    *cron.Cron
}

// NewSLASweeper creates a sweeper. Call Start to schedule it.
func NewSLASweeper(tickets *service.TicketService, dispatcher events.Dispatcher, logger *zap.Logger) *SLASweeper {
	return &SLASweeper{
		tickets:    tickets,
		dispatcher: dispatcher,
		logger:     logger,
		reported:   make(map[string]sla.Label),
	}
}

// Start schedules Sweep with a standard five-field cron expression.
func (w *SLASweeper) Start(ctx context.Context, schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid sla sweep schedule %q: %w", schedule, err)
	}

	w.sched = cron.New()
	if _, err := w.sched.AddFunc(schedule, func() {
		if n := w.Sweep(ctx); n > 0 {
			w.logger.Info("sla sweep reported breaches", zap.Int("count", n))
		}
	}); err != nil {
		return err
	}
	w.sched.Start()
	w.logger.Info("sla sweeper started", zap.String("schedule", schedule))
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish.
func (w *SLASweeper) Stop() {
	if w.sched == nil {
		return
	}
	<-w.sched.Stop().Done()
}

// Sweep runs one pass and returns the number of breach events published.
func (w *SLASweeper) Sweep(ctx context.Context) int {
	snap := w.tickets.Snapshot(ctx)
	if snap.LoadErr != nil {
		w.logger.Warn("sla sweep skipped", zap.Error(snap.LoadErr))
		return 0
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	seen := make(map[string]struct{}, len(snap.Items))
	published := 0
	for _, item := range snap.Items {
		id := item.Ticket.ID
		seen[id] = struct{}{}
		if !item.Label.IsUrgent() {
			delete(w.reported, id)
			continue
		}
		if w.reported[id] == item.Label {
			continue
		}
		w.reported[id] = item.Label

		event := events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventSLABreach,
			TicketID:  id,
			Timestamp: snap.Now,
			Payload: events.SLABreachPayload{
				ClinicName:  item.Ticket.ClinicName,
				Label:       string(item.Label),
				ElapsedDays: sla.ElapsedDays(*item.Ticket.OpenedAt, snap.Now),
			},
		}
		if w.dispatcher != nil {
			if err := w.dispatcher.Publish(ctx, event); err != nil {
				w.logger.Warn("sla breach handlers failed", zap.String("ticket_id", id), zap.Error(err))
			}
		}
		published++
	}
	for id := range w.reported {
		if _, ok := seen[id]; !ok {
			delete(w.reported, id)
		}
	}
	return published
}
