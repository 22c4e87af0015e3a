package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-tracker/internal/api/dto"
	"github.com/spec-kit/support-tracker/internal/domain"
	"github.com/spec-kit/support-tracker/internal/lifecycle"
	"github.com/spec-kit/support-tracker/internal/service"
	"github.com/spec-kit/support-tracker/internal/sla"
	apperrors "github.com/spec-kit/support-tracker/pkg/util"
)

// TicketsHandler manages the ticket endpoints.
type TicketsHandler struct {
	service       *service.TicketService
	alertTemplate string
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, alertTemplate string) *TicketsHandler {
	return &TicketsHandler{service: ticketService, alertTemplate: alertTemplate}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Priority == "" {
		req.Priority = domain.TicketPriorityNormal
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), lifecycle.CreateInput{
		ClinicName: req.ClinicName,
		PlanTier:   req.PlanTier,
		Type:       req.Type,
		Priority:   req.Priority,
	})
	if err != nil {
		return mapServiceError(err)
	}
	classified, err := h.service.GetTicket(c.UserContext(), ticket.ID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(classified)})
}

// ListTickets GET /tickets. Without a status parameter the queue shows every
// present status except Finalized; status= with no value selects nothing.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := service.QueueFilter{Search: c.Query("search")}
	if c.Context().QueryArgs().Has("status") {
		statuses, err := parseStatuses(c.Query("status"))
		if err != nil {
			return err
		}
		filter.Statuses = statuses
	}

	view := h.service.ListQueue(c.UserContext(), filter, h.alertTemplate)
	items := make([]dto.TicketSummary, 0, len(view.Items))
	for i := range view.Items {
		items = append(items, ticketSummary(&view.Items[i]))
	}
	return c.JSON(fiber.Map{"data": dto.QueueResponse{
		Items:             items,
		AvailableStatuses: view.AvailableStatuses,
		SelectedStatuses:  view.SelectedStatuses,
		Metrics: dto.QueueMetrics{
			QueueSize:    view.Metrics.QueueSize,
			Urgent:       view.Metrics.Urgent,
			AwaitingTech: view.Metrics.AwaitingTech,
			VIPAccounts:  view.Metrics.VIPAccounts,
		},
		Alert:   alertResponse(view.Alert),
		Warning: loadWarning(view.LoadErr),
	}})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	classified, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": ticketDetail(classified)})
}

// EditTicket PUT /tickets/:id.
func (h *TicketsHandler) EditTicket(c *fiber.Ctx) error {
	var req dto.EditTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.EditTicket(c.UserContext(), c.Params("id"), lifecycle.Edit{
		Status:         req.Status,
		BlockingReason: req.BlockingReason,
		Priority:       req.Priority,
		Day1Done:       req.Day1Done,
		Day3Done:       req.Day3Done,
		AddEscalation:  req.AddEscalation,
		Note:           req.Note,
	})
	if err != nil {
		return mapServiceError(err)
	}
	classified, err := h.service.GetTicket(c.UserContext(), ticket.ID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": ticketDetail(classified)})
}

// ListHistory GET /tickets/:id/history.
func (h *TicketsHandler) ListHistory(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	entries, err := h.service.ListHistory(c.UserContext(), c.Params("id"), pageSize, (page-1)*pageSize)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": historyResponses(entries)})
}

// Options GET /options.
func (h *TicketsHandler) Options(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.OptionsResponse{
		Statuses:        domain.TicketStatuses,
		Priorities:      domain.TicketPriorities,
		Types:           domain.TicketTypes,
		BlockingReasons: domain.BlockingReasons,
		PlanTiers:       domain.PlanTiers,
	}})
}

func parseStatuses(raw string) ([]domain.TicketStatus, error) {
	statuses := []domain.TicketStatus{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		st := domain.TicketStatus(part)
		if !st.Valid() {
			return nil, apperrors.NewValidationError("invalid status filter", map[string]any{"status": part})
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(item *sla.Classified) dto.TicketSummary {
	ticket := item.Ticket
	return dto.TicketSummary{
		ID:              ticket.ID,
		ClinicName:      ticket.ClinicName,
		PlanTier:        ticket.PlanTier,
		VIP:             ticket.IsVIP(),
		Type:            ticket.Type,
		Status:          ticket.Status,
		Priority:        ticket.Priority,
		BlockingReason:  ticket.BlockingReason,
		OpenedAt:        ticket.OpenedAt,
		FinalizedAt:     ticket.FinalizedAt,
		Day1Done:        ticket.Day1Done,
		Day3Done:        ticket.Day3Done,
		TechEscalations: ticket.TechEscalations,
		SLALabel:        string(item.Label),
	}
}

func ticketDetail(item *sla.Classified) dto.TicketDetailResponse {
	entries := item.Ticket.Notes.Entries()
	notes := make([]dto.NoteEntry, 0, len(entries))
	for _, e := range entries {
		notes = append(notes, dto.NoteEntry{Stamp: e.Stamp, Text: e.Text})
	}
	return dto.TicketDetailResponse{
		TicketSummary: ticketSummary(item),
		Notes:         string(item.Ticket.Notes),
		NoteEntries:   notes,
	}
}

func alertResponse(alert service.Alert) dto.AlertResponse {
	return dto.AlertResponse{Raised: alert.Raised, UrgentCount: alert.UrgentCount, Message: alert.Message}
}

func historyResponses(entries []domain.TicketHistory) []dto.TicketHistoryResponse {
	resp := make([]dto.TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.TicketHistoryResponse{
			ID:         entry.ID,
			ChangeType: entry.ChangeType,
			OldValue:   entry.OldValue,
			NewValue:   entry.NewValue,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return resp
}
