package lifecycle

import "github.com/spec-kit/support-tracker/internal/domain"

// Change is one field difference between two versions of a ticket.
type Change struct {
	Type     domain.TicketChangeType
	OldValue map[string]any
	NewValue map[string]any
}

// Diff lists what an edit changed, in a stable order.
func Diff(before, after domain.Ticket) []Change {
	var changes []Change
	if before.Status != after.Status {
		changes = append(changes, Change{
			Type:     domain.ChangeTypeStatus,
			OldValue: map[string]any{"status": before.Status},
			NewValue: map[string]any{"status": after.Status},
		})
	}
	if before.Priority != after.Priority {
		changes = append(changes, Change{
			Type:     domain.ChangeTypePriority,
			OldValue: map[string]any{"priority": before.Priority},
			NewValue: map[string]any{"priority": after.Priority},
		})
	}
	if before.BlockingReason != after.BlockingReason {
		changes = append(changes, Change{
			Type:     domain.ChangeTypeBlockingReason,
			OldValue: map[string]any{"blocking_reason": before.BlockingReason},
			NewValue: map[string]any{"blocking_reason": after.BlockingReason},
		})
	}
	if before.Day1Done != after.Day1Done || before.Day3Done != after.Day3Done {
		changes = append(changes, Change{
			Type:     domain.ChangeTypeCheckpoint,
			OldValue: map[string]any{"day1_done": before.Day1Done, "day3_done": before.Day3Done},
			NewValue: map[string]any{"day1_done": after.Day1Done, "day3_done": after.Day3Done},
		})
	}
	if before.TechEscalations != after.TechEscalations {
		changes = append(changes, Change{
			Type:     domain.ChangeTypeEscalation,
			OldValue: map[string]any{"tech_escalations": before.TechEscalations},
			NewValue: map[string]any{"tech_escalations": after.TechEscalations},
		})
	}
	if before.Notes != after.Notes {
		var latest string
		if entries := after.Notes.Entries(); len(entries) > 0 {
			latest = entries[0].Text
		}
		changes = append(changes, Change{
			Type:     domain.ChangeTypeNote,
			OldValue: map[string]any{},
			NewValue: map[string]any{"note": latest},
		})
	}
	if after.FinalizedAt != nil && (before.FinalizedAt == nil || !before.FinalizedAt.Equal(*after.FinalizedAt)) {
		old := map[string]any{}
		if before.FinalizedAt != nil {
			old["finalized_at"] = *before.FinalizedAt
		}
		changes = append(changes, Change{
			Type:     domain.ChangeTypeFinalized,
			OldValue: old,
			NewValue: map[string]any{"finalized_at": *after.FinalizedAt},
		})
	}
	return changes
}
