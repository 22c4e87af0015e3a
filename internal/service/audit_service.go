package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-tracker/internal/domain"
	"github.com/spec-kit/support-tracker/internal/events"
	"github.com/spec-kit/support-tracker/internal/repository"
)

// AuditService records ticket events as history entries.
type AuditService struct {
	dispatcher events.Dispatcher
	history    repository.TicketHistoryRepository
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, history repository.TicketHistoryRepository, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, history: history, logger: logger}
}

// RegisterHandlers subscribes to ticket events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil || a.history == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTicketCreated, a.handleCreated)
	a.dispatcher.Subscribe(events.EventTicketUpdated, a.handleUpdated)
}

func (a *AuditService) handleCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	return a.record(ctx, &domain.TicketHistory{
		TicketID:   event.TicketID,
		ChangeType: domain.ChangeTypeCreated,
		OldValue:   map[string]any{},
		NewValue: map[string]any{
			"clinic_name": payload.ClinicName,
			"plan_tier":   payload.PlanTier,
			"type":        payload.Type,
			"priority":    payload.Priority,
			"status":      domain.TicketStatusNew,
		},
		CreatedAt: event.Timestamp,
	})
}

func (a *AuditService) handleUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketUpdatedPayload)
	if !ok {
		return nil
	}
	for _, change := range payload.Changes {
		if err := a.record(ctx, &domain.TicketHistory{
			TicketID:   event.TicketID,
			ChangeType: change.Type,
			OldValue:   change.OldValue,
			NewValue:   change.NewValue,
			CreatedAt:  event.Timestamp,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (a *AuditService) record(ctx context.Context, entry *domain.TicketHistory) error {
	if err := a.history.Create(ctx, entry); err != nil {
		a.logger.Error("record ticket history",
			zap.String("ticket_id", entry.TicketID),
			zap.String("change_type", string(entry.ChangeType)),
			zap.Error(err))
		return err
	}
	return nil
}
