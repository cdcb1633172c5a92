package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-server/internal/config"
	"campus-server/internal/interfaces"
	"campus-server/internal/roles"
	"campus-server/internal/schemas"
)

// fakePool records its lifecycle; the session layer never runs statements
// itself, so the query methods are unreachable here.
type fakePool struct {
	connString string
	closed     bool
}

func (f *fakePool) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("fakePool: Begin not supported")
}

func (f *fakePool) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("fakePool: Exec not supported")
}

func (f *fakePool) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("fakePool: Query not supported")
}

func (f *fakePool) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return nil
}

func (f *fakePool) Ping(context.Context) error { return nil }

func (f *fakePool) Close() { f.closed = true }

type fakeFactory struct {
	created []*fakePool
	fail    bool
}

func (ff *fakeFactory) make(_ context.Context, connString string, _, _ int32) (interfaces.PgxPoolIface, error) {
	if ff.fail {
		return nil, errors.New("connection refused")
	}
	pool := &fakePool{connString: connString}
	ff.created = append(ff.created, pool)
	return pool, nil
}

func testConfig() *config.Config {
	return &config.Config{
		DBHost:       "localhost",
		DBPort:       "5432",
		DBName:       "campus",
		PoolMinConns: 2,
		PoolMaxConns: 5,
		AuthUser:     "app_auth",
		AuthPass:     "auth-secret",
		StudentUser:  "app_student",
		StudentPass:  "student-secret",
		ProfUser:     "app_prof",
		ProfPass:     "prof-secret",
		AdminUser:    "app_admin",
		AdminPass:    "admin-secret",
	}
}

func newTestManager(factory *fakeFactory) *Manager {
	cfg := testConfig()
	return NewManagerWithFactory(cfg, config.NewResolver(cfg), factory.make)
}

func admin() *schemas.UserAccount {
	return &schemas.UserAccount{UserID: 1, LoginCode: "ADMIN1", Role: roles.RoleAdmin, Status: schemas.AccountStatusActive}
}

func TestPoolReuse(t *testing.T) {
	factory := &fakeFactory{}
	sess := newTestManager(factory).Create()
	ctx := context.Background()

	first, err := sess.Pool(ctx, roles.RoleAuth)
	require.NoError(t, err)
	second, err := sess.Pool(ctx, roles.RoleAuth)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Len(t, factory.created, 1)
}

func TestPoolAdditivityAcrossRoleSwitch(t *testing.T) {
	factory := &fakeFactory{}
	sess := newTestManager(factory).Create()
	ctx := context.Background()

	authPool, err := sess.Pool(ctx, roles.RoleAuth)
	require.NoError(t, err)

	sess.Authenticate(admin())

	adminPool, err := sess.Pool(ctx, roles.RoleAdmin)
	require.NoError(t, err)

	// Moving to the admin pool must not tear down the auth pool
	assert.NotSame(t, authPool, adminPool)
	assert.False(t, factory.created[0].closed)
	assert.Len(t, factory.created, 2)

	// The auth pool stays reachable and cached
	again, err := sess.Pool(ctx, roles.RoleAuth)
	require.NoError(t, err)
	assert.Same(t, authPool, again)
	assert.Len(t, factory.created, 2)
}

func TestPoolUsesRoleCredentials(t *testing.T) {
	factory := &fakeFactory{}
	sess := newTestManager(factory).Create()

	sess.Authenticate(&schemas.UserAccount{UserID: 2, LoginCode: "S100", Role: roles.RoleStudent, Status: schemas.AccountStatusActive})

	_, err := sess.Pool(context.Background(), roles.RoleStudent)
	require.NoError(t, err)
	assert.Contains(t, factory.created[0].connString, "user=app_student")
	assert.Contains(t, factory.created[0].connString, "password=student-secret")
}

func TestPoolPrivilegeGuard(t *testing.T) {
	factory := &fakeFactory{}
	manager := newTestManager(factory)
	ctx := context.Background()

	t.Run("UnauthenticatedSessionIsAuthOnly", func(t *testing.T) {
		sess := manager.Create()
		_, err := sess.Pool(ctx, roles.RoleStudent)
		assert.ErrorIs(t, err, ErrRoleNotPermitted)
	})

	t.Run("StudentCannotUseAdminPool", func(t *testing.T) {
		sess := manager.Create()
		sess.Authenticate(&schemas.UserAccount{UserID: 2, LoginCode: "S100", Role: roles.RoleStudent, Status: schemas.AccountStatusActive})
		_, err := sess.Pool(ctx, roles.RoleAdmin)
		assert.ErrorIs(t, err, ErrRoleNotPermitted)
	})

	t.Run("UnknownRoleRejected", func(t *testing.T) {
		sess := manager.Create()
		_, err := sess.Pool(ctx, roles.Role("ROOT"))
		assert.ErrorIs(t, err, ErrRoleNotPermitted)
	})

	assert.Empty(t, factory.created)
}

func TestPoolCreationFailureIsNotCached(t *testing.T) {
	factory := &fakeFactory{fail: true}
	sess := newTestManager(factory).Create()
	ctx := context.Background()

	_, err := sess.Pool(ctx, roles.RoleAuth)
	require.Error(t, err)

	// Once the store is reachable again the session recovers
	factory.fail = false
	pool, err := sess.Pool(ctx, roles.RoleAuth)
	require.NoError(t, err)
	assert.NotNil(t, pool)
}

func TestCloseReleasesAllPools(t *testing.T) {
	factory := &fakeFactory{}
	sess := newTestManager(factory).Create()
	ctx := context.Background()

	_, err := sess.Pool(ctx, roles.RoleAuth)
	require.NoError(t, err)
	sess.Authenticate(admin())
	_, err = sess.Pool(ctx, roles.RoleAdmin)
	require.NoError(t, err)

	sess.Close()

	require.Len(t, factory.created, 2)
	for _, pool := range factory.created {
		assert.True(t, pool.closed)
	}
	assert.Nil(t, sess.User())
}

func TestManagerLifecycle(t *testing.T) {
	factory := &fakeFactory{}
	manager := newTestManager(factory)

	sess := manager.Create()
	found, ok := manager.Get(sess.ID())
	require.True(t, ok)
	assert.Same(t, sess, found)

	_, err := sess.Pool(context.Background(), roles.RoleAuth)
	require.NoError(t, err)

	manager.Destroy(sess.ID())
	_, ok = manager.Get(sess.ID())
	assert.False(t, ok)
	assert.True(t, factory.created[0].closed)
}

func TestReapClosesIdleSessions(t *testing.T) {
	factory := &fakeFactory{}
	manager := newTestManager(factory)
	ctx := context.Background()

	idle := manager.Create()
	_, err := idle.Pool(ctx, roles.RoleAuth)
	require.NoError(t, err)

	system := manager.System()
	_, err = system.Pool(ctx, roles.RoleAuth)
	require.NoError(t, err)

	// Zero max idle makes every session stale, yet the system session
	// must survive
	reaped := manager.Reap(0)
	assert.Equal(t, 1, reaped)

	_, ok := manager.Get(idle.ID())
	assert.False(t, ok)
	assert.True(t, factory.created[0].closed)

	found, ok := manager.Get(system.ID())
	require.True(t, ok)
	assert.Same(t, system, found)
	assert.False(t, factory.created[1].closed)
}

func TestReapKeepsActiveSessions(t *testing.T) {
	factory := &fakeFactory{}
	manager := newTestManager(factory)

	sess := manager.Create()
	_, err := sess.Pool(context.Background(), roles.RoleAuth)
	require.NoError(t, err)

	reaped := manager.Reap(time.Hour)
	assert.Zero(t, reaped)

	_, ok := manager.Get(sess.ID())
	assert.True(t, ok)
	assert.False(t, factory.created[0].closed)
}

func TestProfileMemoization(t *testing.T) {
	factory := &fakeFactory{}
	sess := newTestManager(factory).Create()

	_, ok := sess.CachedProfileID("P1234")
	assert.False(t, ok)

	sess.SetProfileID("P1234", 42)
	id, ok := sess.CachedProfileID("P1234")
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	// A different identity never sees the memoized id
	_, ok = sess.CachedProfileID("P9999")
	assert.False(t, ok)

	// Re-authentication drops the memoized id
	sess.Authenticate(admin())
	_, ok = sess.CachedProfileID("P1234")
	assert.False(t, ok)
}
