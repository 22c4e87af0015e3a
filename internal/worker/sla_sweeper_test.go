package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/support-tracker/internal/clock"
	"github.com/spec-kit/support-tracker/internal/config"
	"github.com/spec-kit/support-tracker/internal/domain"
	"github.com/spec-kit/support-tracker/internal/events"
	"github.com/spec-kit/support-tracker/internal/lifecycle"
	"github.com/spec-kit/support-tracker/internal/persistence"
	"github.com/spec-kit/support-tracker/internal/repository"
	"github.com/spec-kit/support-tracker/internal/service"
)

func TestSweepReportsEachBreachOnce(t *testing.T) {
	logger := zaptest.NewLogger(t)
	clk := clock.Fake(time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local))
	file := persistence.NewCSVFile(config.StoreConfig{
		Path:         filepath.Join(t.TempDir(), "tickets.csv"),
		WriteRetries: 1,
	}, clk, logger)
	dispatcher := events.NewInMemoryDispatcher()
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repository.NewCSVTicketRepository(file, logger),
		Dispatcher: dispatcher,
		Clock:      clk,
		Logger:     logger,
	})

	var breaches []events.SLABreachPayload
	dispatcher.Subscribe(events.EventSLABreach, func(_ context.Context, e events.Event) error {
		breaches = append(breaches, e.Payload.(events.SLABreachPayload))
		return nil
	})

	ctx := context.Background()
	for _, clinic := range []string{"Clinic A", "Clinic B"} {
		if _, err := tickets.CreateTicket(ctx, lifecycle.CreateInput{
			ClinicName: clinic, PlanTier: 50, Type: domain.TicketTypeBug, Priority: domain.TicketPriorityNormal,
		}); err != nil {
			t.Fatalf("CreateTicket() error = %v", err)
		}
		clk.Advance(time.Millisecond)
	}

	sweeper := NewSLASweeper(tickets, dispatcher, logger)
	if n := sweeper.Sweep(ctx); n != 0 {
		t.Fatalf("fresh tickets produced %d breaches", n)
	}

	clk.Advance(73 * time.Hour)
	if n := sweeper.Sweep(ctx); n != 2 {
		t.Fatalf("Sweep() = %d, want 2", n)
	}
	if n := sweeper.Sweep(ctx); n != 0 {
		t.Fatalf("repeat Sweep() = %d, want 0", n)
	}
	if len(breaches) != 2 || breaches[0].Label != "Critical (72h+)" || breaches[0].ElapsedDays < 3 {
		t.Fatalf("breaches = %+v", breaches)
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	sweeper := NewSLASweeper(nil, nil, zaptest.NewLogger(t))
	if err := sweeper.Start(context.Background(), "every tuesday"); err == nil {
		t.Fatal("Start() accepted an invalid schedule")
	}
	sweeper.Stop()
}
