package application

import (
	"sync"
	"time"

	"github.com/bnema/legalai-cli/internal/domain"
	"github.com/bnema/legalai-cli/internal/ports"
	"github.com/google/uuid"
)

const notificationHistory = 50

// notifier appends a notification per outcome and asks the presenter to
// dismiss it after a fixed delay.
type notifier struct {
	presenter    ports.Presenter
	clock        ports.Clock
	dismissAfter time.Duration

	mu      sync.Mutex
	timers  map[uuid.UUID]ports.Timer
	history []domain.Notification
}

func newNotifier(presenter ports.Presenter, clock ports.Clock, dismissAfter time.Duration) *notifier {
	return &notifier{
		presenter:    presenter,
		clock:        clock,
		dismissAfter: dismissAfter,
		timers:       map[uuid.UUID]ports.Timer{},
	}
}

func (n *notifier) notify(level domain.NotificationLevel, message string) domain.Notification {
	note := domain.Notification{
		ID:        uuid.New(),
		Level:     level,
		Message:   message,
		ExpiresAt: n.clock.Now().Add(n.dismissAfter),
	}

	n.mu.Lock()
	n.history = append(n.history, note)
	if len(n.history) > notificationHistory {
		n.history = n.history[len(n.history)-notificationHistory:]
	}
	n.mu.Unlock()

	n.presenter.Notify(note)

	n.mu.Lock()
	n.timers[note.ID] = n.clock.AfterFunc(n.dismissAfter, func() { n.dismiss(note.ID) })
	n.mu.Unlock()

	return note
}

func (n *notifier) dismiss(id uuid.UUID) {
	n.mu.Lock()
	_, pending := n.timers[id]
	delete(n.timers, id)
	n.mu.Unlock()

	if pending {
		n.presenter.Dismiss(id)
	}
}

func (n *notifier) recent() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]domain.Notification(nil), n.history...)
}

// stop cancels pending dismissals without notifying the presenter.
func (n *notifier) stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for id, timer := range n.timers {
		timer.Stop()
		delete(n.timers, id)
	}
}
