package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-tracker/internal/clock"
	"github.com/spec-kit/support-tracker/internal/domain"
	"github.com/spec-kit/support-tracker/internal/events"
	"github.com/spec-kit/support-tracker/internal/lifecycle"
	"github.com/spec-kit/support-tracker/internal/repository"
	"github.com/spec-kit/support-tracker/internal/sla"
)

// TicketService coordinates ticket workflows. Every call reloads the store;
// mutations run load, mutate, save under a mutex so that edits made through
// one process never overwrite each other. Separate processes sharing the
// file still race and the last writer wins.
type TicketService struct {
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
	mu         sync.Mutex
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
	Clock       clock.Clock
	Logger      *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		clock:      clk,
		logger:     logger,
	}
}

// Snapshot is every ticket classified at one instant. LoadErr is set when
// the store could not be read, in which case Items is empty.
type Snapshot struct {
	Now     time.Time
	Items   []sla.Classified
	LoadErr error
}

// Tickets returns the bare tickets of the snapshot.
func (s *Snapshot) Tickets() []domain.Ticket {
	out := make([]domain.Ticket, 0, len(s.Items))
	for _, item := range s.Items {
		out = append(out, item.Ticket)
	}
	return out
}

// Snapshot loads and classifies the whole collection. Read failures are
// reported on the snapshot rather than returned.
func (s *TicketService) Snapshot(ctx context.Context) *Snapshot {
	set, err := s.tickets.Load(ctx)
	now := s.clock.Now()
	if err != nil {
		s.logger.Warn("serving empty ticket view", zap.Error(err))
	}
	return &Snapshot{Now: now, Items: sla.ClassifyAll(set.List(), now), LoadErr: err}
}

// CreateTicket registers a new ticket.
func (s *TicketService) CreateTicket(ctx context.Context, input lifecycle.CreateInput) (*domain.Ticket, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.loadForWrite(ctx)
	if err != nil {
		return nil, err
	}
	ticket, err := lifecycle.Create(input, s.clock.Now(), set)
	if err != nil {
		return nil, err
	}
	set.Upsert(ticket)
	if err := s.save(ctx, set); err != nil {
		return nil, err
	}

	s.logger.Info("ticket created", zap.String("ticket_id", ticket.ID), zap.String("clinic", ticket.ClinicName))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			ClinicName: ticket.ClinicName,
			PlanTier:   ticket.PlanTier,
			Type:       ticket.Type,
			Priority:   ticket.Priority,
		},
	})
	return &ticket, nil
}

// EditTicket applies an editor submission to the ticket with the given id.
func (s *TicketService) EditTicket(ctx context.Context, ticketID string, edit lifecycle.Edit) (*domain.Ticket, error) {
	if err := edit.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.loadForWrite(ctx)
	if err != nil {
		return nil, err
	}
	before, ok := set.Get(ticketID)
	if !ok {
		return nil, ErrTicketNotFound
	}
	after, err := lifecycle.ApplyEdit(before, edit, s.clock.Now())
	if err != nil {
		return nil, err
	}
	set.Upsert(after)
	if err := s.save(ctx, set); err != nil {
		return nil, err
	}

	changes := lifecycle.Diff(before, after)
	s.logger.Info("ticket updated",
		zap.String("ticket_id", after.ID),
		zap.String("status", string(after.Status)),
		zap.Int("changes", len(changes)))

	payload := events.TicketUpdatedPayload{
		OldStatus: before.Status,
		NewStatus: after.Status,
		Changes:   make([]events.FieldChange, 0, len(changes)),
	}
	for _, c := range changes {
		payload.Changes = append(payload.Changes, events.FieldChange{Type: c.Type, OldValue: c.OldValue, NewValue: c.NewValue})
	}
	s.publishEvent(ctx, events.Event{Type: events.EventTicketUpdated, TicketID: after.ID, Payload: payload})
	if after.Status == domain.TicketStatusFinalized {
		s.publishEvent(ctx, events.Event{Type: events.EventTicketFinalized, TicketID: after.ID, Payload: payload})
	}
	return &after, nil
}

// GetTicket returns one ticket with its current label.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*sla.Classified, error) {
	set, err := s.tickets.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	ticket, ok := set.Get(ticketID)
	if !ok {
		return nil, ErrTicketNotFound
	}
	return &sla.Classified{Ticket: ticket, Label: sla.Classify(ticket, s.clock.Now())}, nil
}

// ListHistory returns audit entries of a ticket, oldest first.
func (s *TicketService) ListHistory(ctx context.Context, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	if _, err := s.GetTicket(ctx, ticketID); err != nil && !errors.Is(err, ErrStoreUnavailable) {
		return nil, err
	}
	if s.history == nil {
		return []domain.TicketHistory{}, nil
	}
	return s.history.ListByTicket(ctx, ticketID, limit, offset)
}

func (s *TicketService) loadForWrite(ctx context.Context) (*domain.TicketSet, error) {
	set, err := s.tickets.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return set, nil
}

func (s *TicketService) save(ctx context.Context, set *domain.TicketSet) error {
	if err := s.tickets.Save(ctx, set); err != nil {
		s.logger.Error("persist tickets", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
