package repositories

import "github.com/VincentNinIA/butv2/pkg/domain/entities"

// Notifier hands a commercial escalation to the notification collaborator.
// Delivery transport (SMTP or otherwise) is behind this interface; the
// engine only produces the structured payload.
type Notifier interface {
	Escalate(notice entities.EscalationNotice) error
}
