package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-tracker/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportsHandler serves the dashboard charts, the alert and the exports.
type ReportsHandler struct {
	tickets       *service.TicketService
	reports       *service.ReportService
	exports       *service.ExportService
	alertTemplate string
}

// NewReportsHandler constructs handler.
func NewReportsHandler(tickets *service.TicketService, reports *service.ReportService, exports *service.ExportService, alertTemplate string) *ReportsHandler {
	return &ReportsHandler{tickets: tickets, reports: reports, exports: exports, alertTemplate: alertTemplate}
}

// Reports GET /reports.
func (h *ReportsHandler) Reports(c *fiber.Ctx) error {
	reports := h.reports.Build(c.UserContext())
	resp := fiber.Map{"data": reports}
	if w := loadWarning(reports.LoadErr); w != "" {
		resp["warning"] = w
	}
	return c.JSON(resp)
}

// Alerts GET /alerts.
func (h *ReportsHandler) Alerts(c *fiber.Ctx) error {
	snap := h.tickets.Snapshot(c.UserContext())
	resp := fiber.Map{"data": alertResponse(service.BuildAlert(snap.Items, h.alertTemplate))}
	if w := loadWarning(snap.LoadErr); w != "" {
		resp["warning"] = w
	}
	return c.JSON(resp)
}

// ExportCSV GET /export/csv.
func (h *ReportsHandler) ExportCSV(c *fiber.Ctx) error {
	data, err := h.exports.CSV(c.UserContext())
	if err != nil {
		return mapServiceError(err)
	}
	c.Attachment(service.ExportCSVFilename)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(data)
}

// ExportXLSX GET /export/xlsx.
func (h *ReportsHandler) ExportXLSX(c *fiber.Ctx) error {
	data, err := h.exports.XLSX(c.UserContext())
	if err != nil {
		return mapServiceError(err)
	}
	c.Attachment(service.ExportXLSXFilename)
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(data)
}
