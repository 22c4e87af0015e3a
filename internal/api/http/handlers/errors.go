package handlers

import (
	"errors"

	"github.com/spec-kit/support-tracker/internal/lifecycle"
	"github.com/spec-kit/support-tracker/internal/service"
	apperrors "github.com/spec-kit/support-tracker/pkg/util"
)

var validationFields = []struct {
	err   error
	field string
}{
	{lifecycle.ErrClinicRequired, "clinic_name"},
	{lifecycle.ErrInvalidPlan, "plan_tier"},
	{lifecycle.ErrInvalidType, "type"},
	{lifecycle.ErrInvalidPriority, "priority"},
	{lifecycle.ErrInvalidStatus, "status"},
	{lifecycle.ErrInvalidBlockingReason, "blocking_reason"},
}

// mapServiceError translates service and lifecycle errors into DomainErrors.
func mapServiceError(err error) error {
	if err == nil {
		return nil
	}
	for _, v := range validationFields {
		if errors.Is(err, v.err) {
			return apperrors.NewValidationError(v.err.Error(), map[string]any{"field": v.field})
		}
	}
	switch {
	case errors.Is(err, service.ErrTicketNotFound):
		return apperrors.NewNotFound("ticket", nil)
	case errors.Is(err, service.ErrStoreUnavailable):
		return apperrors.NewUnavailable("STORE_UNREADABLE", "ticket store could not be read", err)
	case errors.Is(err, service.ErrSaveFailed):
		return apperrors.NewUnavailable("SAVE_FAILED", "ticket store could not be written", err)
	}
	return apperrors.MapError(err)
}

// loadWarning is attached to read views served from an unreadable store.
func loadWarning(err error) string {
	if err == nil {
		return ""
	}
	return "ticket store could not be read; showing an empty collection"
}
