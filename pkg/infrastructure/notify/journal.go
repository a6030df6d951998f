package notify

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/VincentNinIA/butv2/pkg/domain/entities"
	"github.com/VincentNinIA/butv2/pkg/domain/repositories"
)

// NoticeHandler receives each escalation as it is journaled.
type NoticeHandler func(entities.EscalationNotice) error

// Journal is the in-memory escalation handoff point. Notices are stamped,
// appended and fanned out to subscribers; actual delivery (mail, chat) is a
// subscriber's concern.
type Journal struct {
	mutex       sync.RWMutex
	notices     []entities.EscalationNotice
	subscribers []NoticeHandler
}

// Verify interface compliance
var _ repositories.Notifier = (*Journal)(nil)

func NewJournal() *Journal {
	return &Journal{
		notices: make([]entities.EscalationNotice, 0),
	}
}

// Escalate stamps the notice with an ID and timestamp when missing and
// appends it. Subscriber failures are logged, never propagated; the journal
// entry is the record of truth.
func (j *Journal) Escalate(notice entities.EscalationNotice) error {
	if notice.ID == "" {
		notice.ID = uuid.New().String()
	}
	if notice.RaisedAt.IsZero() {
		notice.RaisedAt = time.Now()
	}

	j.mutex.Lock()
	j.notices = append(j.notices, notice)
	handlers := make([]NoticeHandler, len(j.subscribers))
	copy(handlers, j.subscribers)
	j.mutex.Unlock()

	for _, handler := range handlers {
		if err := handler(notice); err != nil {
			log.Printf("escalation subscriber failed for notice %s: %v", notice.ID, err)
		}
	}
	return nil
}

// Subscribe registers a handler for subsequent notices.
func (j *Journal) Subscribe(handler NoticeHandler) {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	j.subscribers = append(j.subscribers, handler)
}

// Notices returns a snapshot of everything journaled so far.
func (j *Journal) Notices() []entities.EscalationNotice {
	j.mutex.RLock()
	defer j.mutex.RUnlock()

	out := make([]entities.EscalationNotice, len(j.notices))
	copy(out, j.notices)
	return out
}
