package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"campus-server/internal/config"
	"campus-server/internal/interfaces"
	"campus-server/internal/roles"
)

// Manager tracks the live sessions of all users. Sessions are created at
// login time (before authentication, so the AUTH pool can serve the login
// query) and destroyed at logout.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cfg      *config.Config
	resolver *config.Resolver
	factory  PoolFactory

	systemOnce sync.Once
	system     *Session
}

// NewManager creates a session manager using the default pgxpool factory.
func NewManager(cfg *config.Config, resolver *config.Resolver) *Manager {
	return NewManagerWithFactory(cfg, resolver, DefaultPoolFactory)
}

// NewManagerWithFactory creates a session manager with a custom pool
// factory. Tests use this to substitute mock pools.
func NewManagerWithFactory(cfg *config.Config, resolver *config.Resolver, factory PoolFactory) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		resolver: resolver,
		factory:  factory,
	}
}

// Create starts a fresh, unauthenticated session.
func (m *Manager) Create() *Session {
	session := &Session{
		id:         uuid.New().String(),
		pools:      make(map[roles.Role]interfaces.PgxPoolIface),
		cfg:        m.cfg,
		resolver:   m.resolver,
		factory:    m.factory,
		lastActive: time.Now(),
	}

	m.mu.Lock()
	m.sessions[session.id] = session
	m.mu.Unlock()

	log.WithField("sessionId", session.id).Debug("Created session")
	return session
}

// Get looks up a live session by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	return session, ok
}

// Destroy tears a session down, closing all of its pools.
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		session.Close()
		log.WithField("sessionId", id).Debug("Destroyed session")
	}
}

// System returns a lazily created process-owned session used for startup
// connectivity checks and the health endpoint. It authenticates nothing
// and only ever holds the AUTH pool.
func (m *Manager) System() *Session {
	m.systemOnce.Do(func() {
		m.system = m.Create()
	})
	return m.system
}

// Ping verifies the store is reachable through the system session's AUTH
// pool.
func (m *Manager) Ping(ctx context.Context) error {
	pool, err := m.System().Pool(ctx, roles.RoleAuth)
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// Reap destroys every session that has been idle for longer than
// maxIdle, closing its pools. Tokens expire on their own, but a client
// that never logs out would otherwise pin its pools forever. The system
// session is never reaped. Returns the number of sessions removed.
func (m *Manager) Reap(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	var stale []*Session
	for id, session := range m.sessions {
		if session == m.system {
			continue
		}
		if session.LastActive().Before(cutoff) {
			stale = append(stale, session)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, session := range stale {
		session.Close()
		log.WithField("sessionId", session.id).Info("Reaped idle session")
	}
	return len(stale)
}

// StartSweeper reaps idle sessions on a fixed interval until the
// returned stop function is called.
func (m *Manager) StartSweeper(interval, maxIdle time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				m.Reap(maxIdle)
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}

// CloseAll destroys every live session. Called on server shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}
