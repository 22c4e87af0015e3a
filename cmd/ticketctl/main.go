// ticketctl works on the ticket store directly, without the HTTP server.
//
//	ticketctl sla                        print the active queue with SLA labels
//	ticketctl export --format xlsx       write relatorio_cs.xlsx
//	ticketctl create --clinic "Clinic A" --plan 50 --type Bug
//
// Every command accepts --store to override STORE_PATH.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/support-tracker/internal/clock"
	"github.com/spec-kit/support-tracker/internal/config"
	"github.com/spec-kit/support-tracker/internal/domain"
	"github.com/spec-kit/support-tracker/internal/events"
	"github.com/spec-kit/support-tracker/internal/lifecycle"
	"github.com/spec-kit/support-tracker/internal/observability"
	"github.com/spec-kit/support-tracker/internal/persistence"
	"github.com/spec-kit/support-tracker/internal/repository"
	"github.com/spec-kit/support-tracker/internal/service"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		printUsage()
		return errors.New("missing command")
	}
	cmd, rest := args[0], args[1:]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch cmd {
	case "sla":
		return runSLA(cfg, rest, out)
	case "export":
		return runExport(cfg, rest, out)
	case "create":
		return runCreate(cfg, rest, out)
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: ticketctl <command> [flags]

Commands:
  sla      list open tickets with their SLA label
  export   write the collection as CSV or XLSX
  create   register a new ticket`)
}

func newFlagSet(name string, cfg *config.Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("ticketctl "+name, pflag.ContinueOnError)
	fs.StringVar(&cfg.Store.Path, "store", cfg.Store.Path, "path to the ticket CSV file")
	return fs
}

// newTicketService builds the service over the configured store. When
// Postgres is configured, creates made here are audited like those made
// through the API. The returned func releases the connections.
func newTicketService(ctx context.Context, cfg *config.Config) (*service.TicketService, func(), error) {
	logger := observability.NewCLILogger("warn")
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	var history repository.TicketHistoryRepository
	if pg.Enabled() {
		history = repository.NewTicketHistoryRepository(pg.PoolHandle())
	}

	return buildTicketService(cfg, history, clock.Real(), logger), pg.Close, nil
}

func buildTicketService(cfg *config.Config, history repository.TicketHistoryRepository, clk clock.Clock, logger *zap.Logger) *service.TicketService {
	dispatcher := events.NewInMemoryDispatcher()
	service.NewAuditService(dispatcher, history, logger).RegisterHandlers()

	return service.NewTicketService(service.TicketDependencies{
		TicketRepo:  repository.NewCSVTicketRepository(persistence.NewCSVFile(cfg.Store, clk, logger), logger),
		HistoryRepo: history,
		Dispatcher:  dispatcher,
		Clock:       clk,
		Logger:      logger,
	})
}

func runSLA(cfg *config.Config, args []string, out io.Writer) error {
	fs := newFlagSet("sla", cfg)
	all := fs.Bool("all", false, "include finalized tickets")
	search := fs.String("search", "", "clinic name filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := service.QueueFilter{Search: *search}
	if *all {
		filter.Statuses = domain.TicketStatuses
	}
	ctx := context.Background()
	tickets, closeFn, err := newTicketService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	view := tickets.ListQueue(ctx, filter, cfg.Notification.UrgentMessage)
	if view.LoadErr != nil {
		return view.LoadErr
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCLINIC\tSTATUS\tPRIORITY\tSLA")
	for _, item := range view.Items {
		t := item.Ticket
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.ClinicName, t.Status, t.Priority, item.Label)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d in queue, %d urgent, %d awaiting tech, %d VIP\n",
		view.Metrics.QueueSize, view.Metrics.Urgent, view.Metrics.AwaitingTech, view.Metrics.VIPAccounts)
	if view.Alert.Raised {
		fmt.Fprintln(out, view.Alert.Message)
	}
	return nil
}

func runExport(cfg *config.Config, args []string, out io.Writer) error {
	fs := newFlagSet("export", cfg)
	format := fs.String("format", "csv", "csv or xlsx")
	target := fs.String("out", "", "output file (default relatorio_cs.<format>)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *format != "csv" && *format != "xlsx" {
		return fmt.Errorf("unsupported format %q", *format)
	}

	ctx := context.Background()
	tickets, closeFn, err := newTicketService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()
	exports := service.NewExportService(tickets)

	var (
		data []byte
		name string
	)
	switch *format {
	case "csv":
		data, err = exports.CSV(ctx)
		name = service.ExportCSVFilename
	default:
		data, err = exports.XLSX(ctx)
		name = service.ExportXLSXFilename
	}
	if err != nil {
		return err
	}
	if *target != "" {
		name = *target
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s (%d bytes)\n", name, len(data))
	return nil
}

func runCreate(cfg *config.Config, args []string, out io.Writer) error {
	fs := newFlagSet("create", cfg)
	clinic := fs.String("clinic", "", "clinic name")
	plan := fs.Int("plan", domain.PlanTiers[0], "plan tier")
	typ := fs.String("type", string(domain.TicketTypeInstallation), "ticket type")
	priority := fs.String("priority", string(domain.TicketPriorityNormal), "Normal or High")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	tickets, closeFn, err := newTicketService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	ticket, err := tickets.CreateTicket(ctx, lifecycle.CreateInput{
		ClinicName: *clinic,
		PlanTier:   *plan,
		Type:       domain.TicketType(*typ),
		Priority:   domain.TicketPriority(*priority),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created ticket %s for %s\n", ticket.ID, ticket.ClinicName)
	return nil
}
