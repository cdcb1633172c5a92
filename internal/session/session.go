// Package session owns the per-user session context: the authenticated
// account, the role-keyed cache of database connection pools and the
// memoized profile id. One session belongs to one user; pools are never
// shared across sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"campus-server/internal/config"
	"campus-server/internal/interfaces"
	"campus-server/internal/roles"
	"campus-server/internal/schemas"
)

// ErrRoleNotPermitted is returned when a session asks for a pool above or
// beside its authenticated privilege. There is no fallback to another
// role's pool.
var ErrRoleNotPermitted = errors.New("session is not permitted to use this role")

// PoolFactory creates a bounded connection pool for one role. It is a
// seam for tests; production uses DefaultPoolFactory.
type PoolFactory func(ctx context.Context, connString string, minConns, maxConns int32) (interfaces.PgxPoolIface, error)

// DefaultPoolFactory builds a pgxpool.Pool with the configured bounds.
func DefaultPoolFactory(ctx context.Context, connString string, minConns, maxConns int32) (interfaces.PgxPoolIface, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("error configuring database: %w", err)
	}

	poolConfig.MinConns = minConns
	poolConfig.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	return pool, nil
}

// Session is the request-scoped state of one logged-in (or logging-in)
// user. Requests within a session arrive sequentially, but Close may race
// with a late request, hence the mutex.
type Session struct {
	id string

	mu         sync.Mutex
	user       *schemas.UserAccount
	pools      map[roles.Role]interfaces.PgxPoolIface
	profileID  int64
	profileOf  string
	lastActive time.Time

	cfg      *config.Config
	resolver *config.Resolver
	factory  PoolFactory
}

// ID returns the session identifier carried in the JWT.
func (s *Session) ID() string {
	return s.id
}

// EffectiveRole is the role the session may currently act as. Before
// authentication this is the lowest-privilege role, AUTH.
func (s *Session) EffectiveRole() roles.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return roles.RoleAuth
	}
	return s.user.Role
}

// User returns the authenticated account, or nil before login.
func (s *Session) User() *schemas.UserAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Authenticate records the verified account on the session. The AUTH pool
// used to verify the credentials stays cached; the new role's pool is
// created lazily on first use. Any memoized profile id is dropped because
// the identity changed.
func (s *Session) Authenticate(user *schemas.UserAccount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.profileID = 0
	s.profileOf = ""
	s.lastActive = time.Now()
}

// Pool returns the connection pool for the requested role, creating and
// caching it on first use. A session may only use AUTH or its own
// authenticated role; a pool creation failure is fatal for the current
// operation and is never papered over with another role's pool.
func (s *Session) Pool(ctx context.Context, role roles.Role) (interfaces.PgxPoolIface, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrRoleNotPermitted, role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()

	effective := roles.RoleAuth
	if s.user != nil {
		effective = s.user.Role
	}
	if role != roles.RoleAuth && role != effective {
		return nil, fmt.Errorf("%w: have %s, requested %s", ErrRoleNotPermitted, effective, role)
	}

	if pool, ok := s.pools[role]; ok {
		return pool, nil
	}

	creds, err := s.resolver.Resolve(role)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"role": role, "dbUser": creds.User}).Info("Creating new connection pool")
	pool, err := s.factory(ctx, s.cfg.ConnString(creds), s.cfg.PoolMinConns, s.cfg.PoolMaxConns)
	if err != nil {
		return nil, fmt.Errorf("could not create connection pool for role %q: %w", role, err)
	}

	s.pools[role] = pool
	return pool, nil
}

// CachedProfileID returns the memoized student or professor id derived
// from the given login code, if it was stored for that identity.
func (s *Session) CachedProfileID(loginCode string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profileOf != loginCode || s.profileID == 0 {
		return 0, false
	}
	return s.profileID, true
}

// SetProfileID memoizes the profile id for the given login code, saving a
// lookup on every later interaction of the session.
func (s *Session) SetProfileID(loginCode string, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profileID = id
	s.profileOf = loginCode
}

// LastActive reports when the session last served a request.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close releases every pool created during the session. Called exactly
// once, at logout or server shutdown.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for role, pool := range s.pools {
		log.WithField("role", role).Debug("Closing connection pool")
		pool.Close()
	}
	s.pools = make(map[roles.Role]interfaces.PgxPoolIface)
	s.user = nil
	s.profileID = 0
	s.profileOf = ""
}
