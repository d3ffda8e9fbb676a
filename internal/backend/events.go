package backend

import (
	"sync"

	"github.com/haierkeys/fast-note-client/internal/domain"

	"github.com/google/uuid"
)

// authEvents fans session transitions out to the registered listeners.
type authEvents struct {
	mu        sync.RWMutex
	order     []string
	listeners map[string]domain.AuthListener
}

func newAuthEvents() *authEvents {
	return &authEvents{listeners: map[string]domain.AuthListener{}}
}

func (e *authEvents) subscribe(l domain.AuthListener) domain.Subscription {
	id := uuid.NewString()
	e.mu.Lock()
	e.listeners[id] = l
	e.order = append(e.order, id)
	e.mu.Unlock()
	return domain.Subscription{ID: id}
}

// emit calls every listener in registration order. Listeners run without
// the lock held so they may call back into the backend.
func (e *authEvents) emit(event domain.AuthEvent, session *domain.Session) {
	e.mu.RLock()
	ls := make([]domain.AuthListener, 0, len(e.order))
	for _, id := range e.order {
		ls = append(ls, e.listeners[id])
	}
	e.mu.RUnlock()

	for _, l := range ls {
		l(event, cloneSession(session))
	}
}

func (e *authEvents) count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}
