package service

import (
	"context"
	"sort"

	"github.com/spec-kit/support-tracker/internal/domain"
	"github.com/spec-kit/support-tracker/internal/sla"
)

// Bucket is one slice of a distribution chart.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TypeVolume is one bar of the volume-by-category chart, stacked by status.
type TypeVolume struct {
	Type     domain.TicketType `json:"type"`
	Total    int               `json:"total"`
	ByStatus []Bucket          `json:"by_status"`
}

// Reports are the dashboard charts, always computed over the full collection.
type Reports struct {
	StatusDistribution []Bucket     `json:"status_distribution"`
	SLADistribution    []Bucket     `json:"sla_distribution"`
	RootCauses         []Bucket     `json:"root_causes"`
	RootCauseAvailable bool         `json:"root_cause_available"`
	VolumeByType       []TypeVolume `json:"volume_by_type"`
	TotalTickets       int          `json:"total_tickets"`
	LoadErr            error        `json:"-"`
}

// ReportService aggregates tickets into chart data.
type ReportService struct {
	tickets *TicketService
}

// NewReportService constructs the service.
func NewReportService(tickets *TicketService) *ReportService {
	return &ReportService{tickets: tickets}
}

// Build loads the collection and aggregates it.
func (s *ReportService) Build(ctx context.Context) *Reports {
	snap := s.tickets.Snapshot(ctx)
	reports := Aggregate(snap.Items)
	reports.LoadErr = snap.LoadErr
	return reports
}

// Aggregate computes every chart from classified tickets.
func Aggregate(items []sla.Classified) *Reports {
	status := newCounter()
	labels := newCounter()
	causes := newCounter()
	byType := map[domain.TicketType]*counter{}
	var typeOrder []domain.TicketType

	for _, item := range items {
		t := item.Ticket
		status.add(string(t.Status))
		labels.add(string(item.Label))
		if t.BlockingReason != domain.BlockingReasonNone {
			causes.add(string(t.BlockingReason))
		}
		c, ok := byType[t.Type]
		if !ok {
			c = newCounter()
			byType[t.Type] = c
			typeOrder = append(typeOrder, t.Type)
		}
		c.add(string(t.Status))
	}

	volumes := make([]TypeVolume, 0, len(typeOrder))
	for _, tt := range typeOrder {
		c := byType[tt]
		volumes = append(volumes, TypeVolume{Type: tt, Total: c.total, ByStatus: c.buckets()})
	}
	sort.SliceStable(volumes, func(i, j int) bool { return volumes[i].Total > volumes[j].Total })

	return &Reports{
		StatusDistribution: status.buckets(),
		SLADistribution:    labels.buckets(),
		RootCauses:         causes.buckets(),
		RootCauseAvailable: causes.total > 0,
		VolumeByType:       volumes,
		TotalTickets:       len(items),
	}
}

type counter struct {
	counts map[string]int
	order  []string
	total  int
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
	c.total++
}

// buckets returns counts largest first; ties keep first-seen order.
func (c *counter) buckets() []Bucket {
	out := make([]Bucket, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, Bucket{Label: key, Count: c.counts[key]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
