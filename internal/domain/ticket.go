package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates workflow states for tickets.
type TicketStatus string

const (
	TicketStatusNew            TicketStatus = "New"
	TicketStatusAwaitingTech   TicketStatus = "Awaiting Tech"
	TicketStatusSupportAction  TicketStatus = "Support Action"
	TicketStatusAwaitingClient TicketStatus = "Awaiting Client"
	TicketStatusFinalized      TicketStatus = "Finalized"
)

// TicketStatuses lists every status in editor order.
var TicketStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusAwaitingTech,
	TicketStatusSupportAction,
	TicketStatusAwaitingClient,
	TicketStatusFinalized,
}

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	for _, candidate := range TicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// TicketPriority is the operator-set urgency.
type TicketPriority string

const (
	TicketPriorityNormal TicketPriority = "Normal"
	TicketPriorityHigh   TicketPriority = "High"
)

// TicketPriorities lists every priority.
var TicketPriorities = []TicketPriority{TicketPriorityNormal, TicketPriorityHigh}

// Valid reports whether p is one of the known priorities.
func (p TicketPriority) Valid() bool {
	return p == TicketPriorityNormal || p == TicketPriorityHigh
}

// TicketType categorizes the request.
type TicketType string

const (
	TicketTypeInstallation  TicketType = "Installation"
	TicketTypeBug           TicketType = "Bug"
	TicketTypeConfiguration TicketType = "Configuration"
	TicketTypeIntegration   TicketType = "Integration"
)

// TicketTypes lists every type.
var TicketTypes = []TicketType{
	TicketTypeInstallation,
	TicketTypeBug,
	TicketTypeConfiguration,
	TicketTypeIntegration,
}

// Valid reports whether t is one of the known types.
func (t TicketType) Valid() bool {
	for _, candidate := range TicketTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// BlockingReason is the root-cause classification used by reports.
// The zero value means no reason was recorded.
type BlockingReason string

const (
	BlockingReasonNone            BlockingReason = ""
	BlockingReasonNoRemoteAccess  BlockingReason = "No Remote Access"
	BlockingReasonSoftwareBug     BlockingReason = "Software Bug"
	BlockingReasonAwaitingClient  BlockingReason = "Awaiting Client"
	BlockingReasonInfrastructure  BlockingReason = "Infrastructure"
	BlockingReasonThirdPartyError BlockingReason = "Third-Party Error"
)

// BlockingReasons lists every reason, the empty reason first.
var BlockingReasons = []BlockingReason{
	BlockingReasonNone,
	BlockingReasonNoRemoteAccess,
	BlockingReasonSoftwareBug,
	BlockingReasonAwaitingClient,
	BlockingReasonInfrastructure,
	BlockingReasonThirdPartyError,
}

// Valid reports whether r is one of the known reasons.
func (r BlockingReason) Valid() bool {
	for _, candidate := range BlockingReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// PlanTiers are the contract sizes a clinic can be on.
var PlanTiers = []int{10, 25, 50, 100, 200}

// VIPPlanThreshold is the smallest plan considered a VIP account.
const VIPPlanThreshold = 100

// ValidPlanTier reports whether plan is one of PlanTiers.
func ValidPlanTier(plan int) bool {
	for _, candidate := range PlanTiers {
		if candidate == plan {
			return true
		}
	}
	return false
}

// Ticket is a single clinic support request.
type Ticket struct {
	ID              string
	ClinicName      string
	PlanTier        int
	Type            TicketType
	Status          TicketStatus
	OpenedAt        *time.Time
	FinalizedAt     *time.Time
	Day1Done        bool
	Day3Done        bool
	TechEscalations int
	Notes           NoteLog
	Priority        TicketPriority
	BlockingReason  BlockingReason
}

// IsVIP reports whether the clinic is on a VIP plan.
func (t *Ticket) IsVIP() bool {
	return t.PlanTier >= VIPPlanThreshold
}

// IsFinalized reports whether the ticket reached its terminal status.
func (t *Ticket) IsFinalized() bool {
	return t.Status == TicketStatusFinalized
}

// MatchesClinic reports whether the clinic name contains term, ignoring case.
// An empty term matches everything.
func (t *Ticket) MatchesClinic(term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.ClinicName), strings.ToLower(term))
}
