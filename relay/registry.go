package relay

import (
	"sync"

	"github.com/destinyy00/skillswap/contract"

	"github.com/google/uuid"
)

type group map[uuid.UUID]contract.EventSink

// Registry maintains the subject -> routing group mapping, the only shared
// mutable structure of the relay. A single RWMutex guards both maps;
// contention is expected to be low (membership changes only on connect and
// disconnect).
type Registry struct {
	mu     sync.RWMutex
	groups map[string]group    // subject -> connections currently open for it
	owners map[uuid.UUID]string // connection -> the one subject it belongs to
}

func NewRegistry() *Registry {
	return &Registry{
		groups: make(map[string]group),
		owners: make(map[uuid.UUID]string),
	}
}

// Register adds a connection to the routing group of subjectID, creating the
// group on first member. Registering the same connection twice is a no-op:
// the binding is decided once at handshake and never reassigned.
func (r *Registry) Register(subjectID string, connID uuid.UUID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, bound := r.owners[connID]; bound {
		return
	}
	r.owners[connID] = subjectID

	if _, ok := r.groups[subjectID]; !ok {
		r.groups[subjectID] = make(group)
	}
	r.groups[subjectID][connID] = sink
}

// Unregister removes a connection from whatever group owns it. Idempotent:
// the transport can signal disconnect more than once, so an unknown
// connection is silently ignored. Empty groups are deleted to avoid leaking
// map entries over time.
func (r *Registry) Unregister(connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subjectID, ok := r.owners[connID]
	if !ok {
		return
	}
	delete(r.owners, connID)

	if members, ok := r.groups[subjectID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.groups, subjectID)
		}
	}
}

// MembersOf returns the sinks currently open for a subject. An empty result
// is the normal outcome for an offline subject, not an error.
func (r *Registry) MembersOf(subjectID string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.groups[subjectID]
	if !ok {
		return nil
	}
	sinks := make([]contract.EventSink, 0, len(members))
	for _, sink := range members {
		sinks = append(sinks, sink)
	}
	return sinks
}

// Count returns the number of open connections across all subjects.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owners)
}

// Subjects returns the number of subjects with at least one open connection.
func (r *Registry) Subjects() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups)
}
