package services

import (
	"sort"
	"sync"

	"huddle/internal/core/domain"
	"huddle/internal/core/ports"

	"go.uber.org/zap"
)

// RosterService is the in-memory connection registry. It owns the
// connection<->display-name binding exclusively; everything else resolves
// identities through it.
//
// Lock order: the roster lock is always taken before (never inside) the call
// coordinator's session lock.
type RosterService struct {
	mu     sync.RWMutex
	byConn map[domain.ConnID]string
	byName map[string]domain.ConnID

	logger *zap.SugaredLogger
}

func NewRosterService(logger *zap.SugaredLogger) ports.Roster {
	return &RosterService{
		byConn: make(map[domain.ConnID]string),
		byName: make(map[string]domain.ConnID),
		logger: logger,
	}
}

func (r *RosterService) Join(id domain.ConnID, displayName string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	// A rejoin under the same connection replaces the old binding outright.
	if prev, ok := r.byConn[id]; ok && r.byName[prev] == id {
		delete(r.byName, prev)
	}

	r.byConn[id] = displayName
	r.byName[displayName] = id

	r.logger.Infow("user joined", "conn_id", id, "display_name", displayName, "presence", len(r.byConn))
	return len(r.byConn)
}

func (r *RosterService) Leave(id domain.ConnID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.byConn[id]
	if !ok {
		// Duplicate disconnect signals are tolerated.
		return "", false
	}

	delete(r.byConn, id)
	if r.byName[name] == id {
		delete(r.byName, name)
	}

	r.logger.Infow("user left", "conn_id", id, "display_name", name, "presence", len(r.byConn))
	return name, true
}

func (r *RosterService) Resolve(id domain.ConnID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.byConn[id]
	return name, ok
}

func (r *RosterService) ListOthers(exclude domain.ConnID) []domain.PresenceEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]domain.PresenceEntry, 0, len(r.byConn))
	for id, name := range r.byConn {
		if id == exclude {
			continue
		}
		entries = append(entries, domain.PresenceEntry{ConnID: id, DisplayName: name})
	}

	// Map iteration order is random; keep listings stable for clients.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].DisplayName < entries[j].DisplayName
	})
	return entries
}

func (r *RosterService) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}
