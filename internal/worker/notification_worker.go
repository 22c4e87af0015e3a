package worker

import (
	"github.com/spec-kit/support-tracker/internal/service"
)

// StartNotificationWorker registers the event consumers: sink forwarding and
// the audit trail.
func StartNotificationWorker(notificationService *service.NotificationService, auditService *service.AuditService) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if auditService != nil {
		auditService.RegisterHandlers()
	}
}
