package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/seascope/internal/core/domain"
	"github.com/samirrijal/seascope/internal/pkg/metrics"
)

type sessionEntry struct {
	orch     *Orchestrator
	lastSeen time.Time
}

// SessionManager keeps one Orchestrator per session in memory and evicts
// sessions that have been idle longer than the TTL.
type SessionManager struct {
	deps    OrchestratorDeps
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// NewSessionManager creates a SessionManager. An idleTTL of zero disables eviction.
func NewSessionManager(deps OrchestratorDeps, idleTTL time.Duration) *SessionManager {
	now := deps.Options.Now
	if now == nil {
		now = time.Now
	}
	return &SessionManager{
		deps:     deps,
		idleTTL:  idleTTL,
		now:      now,
		sessions: make(map[string]*sessionEntry),
	}
}

// Create starts a new session.
func (m *SessionManager) Create() *Orchestrator {
	id := uuid.NewString()
	orch := NewOrchestrator(id, m.deps)

	m.mu.Lock()
	m.sessions[id] = &sessionEntry{orch: orch, lastSeen: m.now()}
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.SessionsActive.Set(float64(n))
	slog.Info("session created", "session_id", id)
	return orch
}

// Get returns the session and marks it as used.
func (m *SessionManager) Get(id string) (*Orchestrator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	e.lastSeen = m.now()
	return e.orch, nil
}

// Delete ends a session.
func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	metrics.SessionsActive.Set(float64(n))
	return nil
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Evict removes sessions idle for longer than the TTL and returns how many
// were removed.
func (m *SessionManager) Evict() int {
	if m.idleTTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.Lock()
	removed := 0
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	if removed > 0 {
		metrics.SessionsActive.Set(float64(n))
		slog.Info("idle sessions evicted", "count", removed, "remaining", n)
	}
	return removed
}

// Run evicts idle sessions every interval until ctx is done.
func (m *SessionManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Evict()
		}
	}
}

// HandleRenderComplete routes a render-complete signal to its session.
// Stale tokens are ignored.
func (m *SessionManager) HandleRenderComplete(ctx context.Context, sessionID string, token uint64) error {
	orch, err := m.Get(sessionID)
	if err != nil {
		return err
	}
	if _, err := orch.RenderComplete(ctx, token); err != nil && err != domain.ErrStaleResponse {
		return err
	}
	return nil
}
