package service

import (
	"fmt"
	"strings"

	"github.com/spec-kit/support-tracker/internal/sla"
)

// DefaultUrgentMessage is used when no alert template is configured.
const DefaultUrgentMessage = "Attention: you have %d tickets in CRITICAL state!"

// Alert is the transient notice raised when urgent tickets exist.
type Alert struct {
	Raised      bool   `json:"raised"`
	UrgentCount int    `json:"urgent_count"`
	Message     string `json:"message,omitempty"`
}

// BuildAlert counts Critical and High Priority tickets. The template takes
// the count as its only verb.
func BuildAlert(items []sla.Classified, template string) Alert {
	count := sla.UrgentCount(items)
	if count == 0 {
		return Alert{}
	}
	if strings.TrimSpace(template) == "" {
		template = DefaultUrgentMessage
	}
	return Alert{Raised: true, UrgentCount: count, Message: fmt.Sprintf(template, count)}
}
