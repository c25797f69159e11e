// Package presence tracks which users currently hold at least one live
// socket connection. Registrations are keyed by connection id so a user
// chatting from two devices stays online until the last device disconnects.
package presence

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Registry records socket connections per user.
type Registry interface {
	// Connect registers a new connection for userID and returns its id.
	Connect(ctx context.Context, userID string) (string, error)
	// Disconnect removes a single connection. Unknown ids are a no-op.
	Disconnect(ctx context.Context, connID string) error
	// IsOnline reports whether userID has at least one live connection.
	IsOnline(ctx context.Context, userID string) (bool, error)
	// Online returns the ids of all users with a live connection.
	Online(ctx context.Context) ([]string, error)
}

// memRegistry is the in-process Registry used in single-node deployments
// and tests.
type memRegistry struct {
	mu    sync.RWMutex
	conns map[string]string              // conn id -> user id
	users map[string]map[string]struct{} // user id -> set of conn ids
}

func NewMemoryRegistry() Registry {
	return &memRegistry{
		conns: make(map[string]string),
		users: make(map[string]map[string]struct{}),
	}
}

func (r *memRegistry) Connect(_ context.Context, userID string) (string, error) {
	connID := uuid.New().String()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[connID] = userID
	if r.users[userID] == nil {
		r.users[userID] = make(map[string]struct{})
	}
	r.users[userID][connID] = struct{}{}
	return connID, nil
}

func (r *memRegistry) Disconnect(_ context.Context, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.conns[connID]
	if !ok {
		return nil
	}
	delete(r.conns, connID)

	if set, ok := r.users[userID]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(r.users, userID)
		}
	}
	return nil
}

func (r *memRegistry) IsOnline(_ context.Context, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userID]) > 0, nil
}

func (r *memRegistry) Online(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.users))
	for userID := range r.users {
		out = append(out, userID)
	}
	return out, nil
}
