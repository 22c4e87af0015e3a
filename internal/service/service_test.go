package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/support-tracker/internal/clock"
	"github.com/spec-kit/support-tracker/internal/config"
	"github.com/spec-kit/support-tracker/internal/domain"
	"github.com/spec-kit/support-tracker/internal/events"
	"github.com/spec-kit/support-tracker/internal/lifecycle"
	"github.com/spec-kit/support-tracker/internal/persistence"
	"github.com/spec-kit/support-tracker/internal/repository"
	"github.com/spec-kit/support-tracker/internal/sla"
)

var start = time.Date(2026, 7, 6, 9, 0, 0, 0, time.Local)

type fixture struct {
	path       string
	clock      *clock.FakeClock
	dispatcher events.Dispatcher
	history    repository.TicketHistoryRepository
	tickets    *TicketService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	clk := clock.Fake(start)
	path := filepath.Join(t.TempDir(), "base_suporte.csv")
	file := persistence.NewCSVFile(config.StoreConfig{Path: path, WriteRetries: 3, RetryDelayMS: 10}, clk, logger)
	dispatcher := events.NewInMemoryDispatcher()
	history := repository.NewMemoryHistoryRepository()
	NewAuditService(dispatcher, history, logger).RegisterHandlers()

	return &fixture{
		path:       path,
		clock:      clk,
		dispatcher: dispatcher,
		history:    history,
		tickets: NewTicketService(TicketDependencies{
			TicketRepo:  repository.NewCSVTicketRepository(file, logger),
			HistoryRepo: history,
			Dispatcher:  dispatcher,
			Clock:       clk,
			Logger:      logger,
		}),
	}
}

func (f *fixture) create(t *testing.T, clinic string, plan int, typ domain.TicketType, priority domain.TicketPriority) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.CreateTicket(context.Background(), lifecycle.CreateInput{
		ClinicName: clinic, PlanTier: plan, Type: typ, Priority: priority,
	})
	if err != nil {
		t.Fatalf("CreateTicket(%s) error = %v", clinic, err)
	}
	f.clock.Advance(time.Millisecond)
	return ticket
}

func edit(status domain.TicketStatus) lifecycle.Edit {
	return lifecycle.Edit{Status: status, Priority: domain.TicketPriorityNormal}
}

func TestCreateThenClassifyOverTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.create(t, "Clinic A", 50, domain.TicketTypeBug, domain.TicketPriorityNormal)

	got, err := f.tickets.GetTicket(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetTicket() error = %v", err)
	}
	if got.Label != sla.LabelOnTime {
		t.Fatalf("fresh label = %q, want On Time", got.Label)
	}

	f.clock.Advance(25 * time.Hour)
	got, _ = f.tickets.GetTicket(ctx, ticket.ID)
	if got.Label != sla.LabelWarning {
		t.Fatalf("label after 25h = %q, want Warning (24h+)", got.Label)
	}
}

func TestCreateRejectsEmptyClinicWithoutWriting(t *testing.T) {
	f := newFixture(t)
	_, err := f.tickets.CreateTicket(context.Background(), lifecycle.CreateInput{PlanTier: 10, Type: domain.TicketTypeBug})
	if !errors.Is(err, lifecycle.ErrClinicRequired) {
		t.Fatalf("CreateTicket() error = %v, want ErrClinicRequired", err)
	}
	if _, statErr := os.Stat(f.path); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("store should not be touched, stat error = %v", statErr)
	}
}

func TestEditTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.create(t, "Clinic A", 100, domain.TicketTypeIntegration, domain.TicketPriorityNormal)

	e := edit(domain.TicketStatusAwaitingTech)
	e.AddEscalation = true
	e.Note = "waiting on vendor"
	e.BlockingReason = domain.BlockingReasonThirdPartyError
	if _, err := f.tickets.EditTicket(ctx, ticket.ID, e); err != nil {
		t.Fatalf("EditTicket() error = %v", err)
	}
	e.Note = ""
	updated, err := f.tickets.EditTicket(ctx, ticket.ID, e)
	if err != nil {
		t.Fatalf("second EditTicket() error = %v", err)
	}
	if updated.TechEscalations != 2 {
		t.Fatalf("TechEscalations = %d, want 2", updated.TechEscalations)
	}

	stored, _ := f.tickets.GetTicket(ctx, ticket.ID)
	if stored.Ticket.Status != domain.TicketStatusAwaitingTech || stored.Ticket.TechEscalations != 2 {
		t.Fatalf("edit not persisted: %+v", stored.Ticket)
	}
	if entries := stored.Ticket.Notes.Entries(); len(entries) != 1 || entries[0].Text != "waiting on vendor" {
		t.Fatalf("notes = %q", stored.Ticket.Notes)
	}

	if _, err := f.tickets.EditTicket(ctx, "missing", e); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("EditTicket(missing) error = %v, want ErrTicketNotFound", err)
	}
	bad := e
	bad.Priority = "Urgent"
	if _, err := f.tickets.EditTicket(ctx, ticket.ID, bad); !errors.Is(err, lifecycle.ErrInvalidPriority) {
		t.Fatalf("EditTicket(bad priority) error = %v", err)
	}
}

func TestEditRecordsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.create(t, "Clinic H", 25, domain.TicketTypeBug, domain.TicketPriorityNormal)

	e := edit(domain.TicketStatusFinalized)
	e.Note = "fixed"
	if _, err := f.tickets.EditTicket(ctx, ticket.ID, e); err != nil {
		t.Fatalf("EditTicket() error = %v", err)
	}

	entries, err := f.tickets.ListHistory(ctx, ticket.ID, 50, 0)
	if err != nil {
		t.Fatalf("ListHistory() error = %v", err)
	}
	var types []domain.TicketChangeType
	for _, entry := range entries {
		types = append(types, entry.ChangeType)
	}
	want := []domain.TicketChangeType{domain.ChangeTypeCreated, domain.ChangeTypeStatus, domain.ChangeTypeNote, domain.ChangeTypeFinalized}
	if len(types) != len(want) {
		t.Fatalf("history = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("history = %v, want %v", types, want)
		}
	}

	if _, err := f.tickets.ListHistory(ctx, "missing", 10, 0); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("ListHistory(missing) error = %v", err)
	}
}

func TestUnreadableStoreRefusesWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	garbage := []byte("Clinic,Status\nA,New\n")
	if err := os.WriteFile(f.path, garbage, 0o644); err != nil {
		t.Fatal(err)
	}

	snap := f.tickets.Snapshot(ctx)
	if !errors.Is(snap.LoadErr, repository.ErrStoreUnreadable) || len(snap.Items) != 0 {
		t.Fatalf("Snapshot() = %+v", snap)
	}

	_, err := f.tickets.CreateTicket(ctx, lifecycle.CreateInput{ClinicName: "A", PlanTier: 10, Type: domain.TicketTypeBug})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("CreateTicket() error = %v, want ErrStoreUnavailable", err)
	}
	data, _ := os.ReadFile(f.path)
	if !bytes.Equal(data, garbage) {
		t.Fatalf("unreadable store was overwritten: %q", data)
	}
}

type failingRepo struct {
	repository.TicketRepository
}

func (failingRepo) Save(context.Context, *domain.TicketSet) error {
	return persistence.ErrWriteExhausted
}

func TestSaveFailureIsReported(t *testing.T) {
	f := newFixture(t)
	f.tickets.tickets = failingRepo{TicketRepository: f.tickets.tickets}

	_, err := f.tickets.CreateTicket(context.Background(), lifecycle.CreateInput{ClinicName: "A", PlanTier: 10, Type: domain.TicketTypeBug})
	if !errors.Is(err, ErrSaveFailed) {
		t.Fatalf("CreateTicket() error = %v, want ErrSaveFailed", err)
	}
}

func TestListQueue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, "Clínica Alfa", 100, domain.TicketTypeBug, domain.TicketPriorityHigh)
	b := f.create(t, "Beta Dental", 25, domain.TicketTypeInstallation, domain.TicketPriorityNormal)
	c := f.create(t, "Gamma Odonto", 200, domain.TicketTypeBug, domain.TicketPriorityNormal)

	if _, err := f.tickets.EditTicket(ctx, b.ID, edit(domain.TicketStatusAwaitingTech)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.tickets.EditTicket(ctx, c.ID, edit(domain.TicketStatusFinalized)); err != nil {
		t.Fatal(err)
	}

	view := f.tickets.ListQueue(ctx, QueueFilter{}, "")
	if view.LoadErr != nil {
		t.Fatalf("LoadErr = %v", view.LoadErr)
	}
	if view.Metrics.QueueSize != 2 {
		t.Fatalf("default queue size = %d, want 2 (finalized hidden)", view.Metrics.QueueSize)
	}
	if view.Metrics.AwaitingTech != 1 || view.Metrics.VIPAccounts != 1 {
		t.Errorf("metrics = %+v", view.Metrics)
	}
	if !view.Alert.Raised || view.Alert.UrgentCount != 1 || view.Metrics.Urgent != 1 {
		t.Errorf("alert = %+v", view.Alert)
	}
	if len(view.AvailableStatuses) != 3 {
		t.Errorf("available statuses = %v", view.AvailableStatuses)
	}

	search := f.tickets.ListQueue(ctx, QueueFilter{Search: "ALFA"}, "")
	if len(search.Items) != 1 || search.Items[0].Ticket.ID != a.ID {
		t.Fatalf("search results = %+v", search.Items)
	}
	if search.Items[0].Label != sla.LabelHighPriority {
		t.Errorf("label = %q", search.Items[0].Label)
	}

	finalized := f.tickets.ListQueue(ctx, QueueFilter{Statuses: []domain.TicketStatus{domain.TicketStatusFinalized}}, "")
	if len(finalized.Items) != 1 || finalized.Items[0].Label != sla.LabelCompleted {
		t.Fatalf("finalized view = %+v", finalized.Items)
	}

	none := f.tickets.ListQueue(ctx, QueueFilter{Statuses: []domain.TicketStatus{}}, "")
	if len(none.Items) != 0 {
		t.Fatalf("empty status selection returned %d items", len(none.Items))
	}
}

func TestListQueueEmptyStore(t *testing.T) {
	f := newFixture(t)
	view := f.tickets.ListQueue(context.Background(), QueueFilter{}, "")
	if len(view.Items) != 0 || view.Alert.Raised {
		t.Fatalf("view = %+v", view)
	}
	if len(view.AvailableStatuses) != 1 || view.AvailableStatuses[0] != domain.TicketStatusNew {
		t.Fatalf("available statuses = %v, want [New]", view.AvailableStatuses)
	}
}

func TestReports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, "A", 10, domain.TicketTypeBug, domain.TicketPriorityNormal)
	f.create(t, "B", 10, domain.TicketTypeBug, domain.TicketPriorityNormal)
	c := f.create(t, "C", 10, domain.TicketTypeConfiguration, domain.TicketPriorityNormal)

	reports := NewReportService(f.tickets).Build(ctx)
	if reports.RootCauseAvailable || len(reports.RootCauses) != 0 {
		t.Fatalf("root causes without reasons: %+v", reports.RootCauses)
	}

	e := edit(domain.TicketStatusAwaitingClient)
	e.BlockingReason = domain.BlockingReasonAwaitingClient
	if _, err := f.tickets.EditTicket(ctx, a.ID, e); err != nil {
		t.Fatal(err)
	}
	e = edit(domain.TicketStatusFinalized)
	e.BlockingReason = domain.BlockingReasonInfrastructure
	if _, err := f.tickets.EditTicket(ctx, c.ID, e); err != nil {
		t.Fatal(err)
	}

	reports = NewReportService(f.tickets).Build(ctx)
	if reports.TotalTickets != 3 {
		t.Fatalf("TotalTickets = %d", reports.TotalTickets)
	}
	if !reports.RootCauseAvailable || len(reports.RootCauses) != 2 {
		t.Fatalf("root causes = %+v", reports.RootCauses)
	}
	status := map[string]int{}
	for _, b := range reports.StatusDistribution {
		status[b.Label] = b.Count
	}
	if status["New"] != 1 || status["Awaiting Client"] != 1 || status["Finalized"] != 1 {
		t.Fatalf("status distribution = %+v", reports.StatusDistribution)
	}
	if len(reports.VolumeByType) != 2 || reports.VolumeByType[0].Type != domain.TicketTypeBug || reports.VolumeByType[0].Total != 2 {
		t.Fatalf("volume by type = %+v", reports.VolumeByType)
	}
}

func TestExports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "Clinic A", 50, domain.TicketTypeBug, domain.TicketPriorityNormal)
	f.create(t, "Clinic B", 200, domain.TicketTypeIntegration, domain.TicketPriorityHigh)

	exports := NewExportService(f.tickets)
	csvData, err := exports.CSV(ctx)
	if err != nil {
		t.Fatalf("CSV() error = %v", err)
	}
	onDisk, _ := os.ReadFile(f.path)
	if !bytes.Equal(csvData, onDisk) {
		t.Fatalf("CSV export differs from the stored file:\n%s\n---\n%s", csvData, onDisk)
	}

	xlsxData, err := exports.XLSX(ctx)
	if err != nil {
		t.Fatalf("XLSX() error = %v", err)
	}
	book, err := excelize.OpenReader(bytes.NewReader(xlsxData))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer book.Close()
	rows, err := book.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if last := rows[0][len(rows[0])-1]; last != exportSLAColumn {
		t.Errorf("last header = %q, want SLA", last)
	}
	if got := rows[2][len(rows[2])-1]; got != string(sla.LabelHighPriority) {
		t.Errorf("SLA cell = %q, want High Priority", got)
	}
}

type recordingSink struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Send(_ context.Context, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	return s.err
}

func TestNotificationsForwardEvents(t *testing.T) {
	f := newFixture(t)
	ok := &recordingSink{}
	broken := &recordingSink{err: errors.New("connection refused")}
	NewNotificationService(f.dispatcher, zaptest.NewLogger(t), broken, ok).RegisterHandlers()

	ticket := f.create(t, "Clinic N", 10, domain.TicketTypeBug, domain.TicketPriorityNormal)
	if _, err := f.tickets.EditTicket(context.Background(), ticket.ID, edit(domain.TicketStatusFinalized)); err != nil {
		t.Fatalf("EditTicket() error = %v", err)
	}

	if len(ok.payloads) != 3 {
		t.Fatalf("forwarded %d events, want created+updated+finalized", len(ok.payloads))
	}
	if !bytes.Contains(ok.payloads[0], []byte(`"type":"ticket_created"`)) {
		t.Errorf("first payload = %s", ok.payloads[0])
	}
	if len(broken.payloads) != 3 {
		t.Errorf("failing sink should still be offered every event, got %d", len(broken.payloads))
	}
}

func TestBuildAlert(t *testing.T) {
	items := []sla.Classified{{Label: sla.LabelCritical}, {Label: sla.LabelHighPriority}, {Label: sla.LabelWarning}}
	alert := BuildAlert(items, "")
	if !alert.Raised || alert.UrgentCount != 2 || alert.Message != "Attention: you have 2 tickets in CRITICAL state!" {
		t.Fatalf("alert = %+v", alert)
	}
	if quiet := BuildAlert(items[2:], ""); quiet.Raised || quiet.Message != "" {
		t.Fatalf("alert without urgent tickets = %+v", quiet)
	}
}

func TestSnapshotsDuringSavesSeeWholeCollection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const seeded = 50
	for i := 0; i < seeded; i++ {
		f.create(t, "Seed clinic", 10, domain.TicketTypeBug, domain.TicketPriorityNormal)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if _, err := f.tickets.CreateTicket(ctx, lifecycle.CreateInput{
				ClinicName: "Busy clinic", PlanTier: 10, Type: domain.TicketTypeBug,
			}); err != nil {
				t.Errorf("CreateTicket() error = %v", err)
				return
			}
		}
	}()

	for i := 0; i < 500; i++ {
		snap := f.tickets.Snapshot(ctx)
		if snap.LoadErr != nil {
			t.Errorf("snapshot %d: LoadErr = %v", i, snap.LoadErr)
			break
		}
		if len(snap.Items) < seeded {
			t.Errorf("snapshot %d saw %d tickets, want at least %d", i, len(snap.Items), seeded)
			break
		}
	}
	close(stop)
	wg.Wait()
}
