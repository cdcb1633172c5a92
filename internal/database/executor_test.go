package database

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-server/internal/config"
	"campus-server/internal/interfaces"
	"campus-server/internal/roles"
	"campus-server/internal/schemas"
	"campus-server/internal/session"
)

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

// newMockSession builds a session whose pools are all served by one
// pgxmock pool. An empty role leaves the session unauthenticated.
func newMockSession(t *testing.T, role roles.Role) (*session.Session, pgxmock.PgxPoolIface) {
	t.Helper()

	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)

	cfg := testConfig()
	factory := func(context.Context, string, int32, int32) (interfaces.PgxPoolIface, error) {
		return poolMock, nil
	}

	sess := session.NewManagerWithFactory(cfg, config.NewResolver(cfg), factory).Create()
	if role != "" && role != roles.RoleAuth {
		sess.Authenticate(&schemas.UserAccount{UserID: 1, LoginCode: "ADMIN1", Role: role, Status: schemas.AccountStatusActive})
	}

	return sess, poolMock
}

func TestQueryEmptyResult(t *testing.T) {
	sess, poolMock := newMockSession(t, roles.RoleAdmin)
	executor := NewExecutor(sess)

	poolMock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM campus.v_course_list")).
		WillReturnRows(pgxmock.NewRows([]string{"course_id", "name"}))

	table := executor.Query(context.Background(), roles.RoleAdmin, "SELECT * FROM campus.v_course_list")

	require.NotNil(t, table)
	assert.True(t, table.Empty())
	assert.Empty(t, table.Message)
	assert.Equal(t, []string{"course_id", "name"}, table.Columns)
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestQueryMaterializesRows(t *testing.T) {
	sess, poolMock := newMockSession(t, roles.RoleAdmin)
	executor := NewExecutor(sess)

	poolMock.ExpectQuery("SELECT").
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"course_id", "name", "capacity"}).
			AddRow(int64(3), "Databases", int32(40)).
			AddRow(int64(4), "Networks", int32(30)))

	table := executor.Query(context.Background(), roles.RoleAdmin,
		"SELECT course_id, name, capacity FROM campus.course WHERE filiere_id = $1", int64(3))

	require.Empty(t, table.Message)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, int64(3), table.Int(0, "course_id"))
	assert.Equal(t, "Networks", table.String(1, "name"))
	assert.Equal(t, int64(30), table.Int(1, "capacity"))
	assert.Nil(t, table.Value(0, "missing"))
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestQueryFailureYieldsEmptyTableWithMessage(t *testing.T) {
	sess, poolMock := newMockSession(t, roles.RoleAdmin)
	executor := NewExecutor(sess)

	poolMock.ExpectQuery("SELECT").
		WillReturnError(&pgconn.PgError{Code: "42P01", Message: "relation does not exist"})

	table := executor.Query(context.Background(), roles.RoleAdmin, "SELECT * FROM campus.v_missing")

	require.NotNil(t, table)
	assert.True(t, table.Empty())
	assert.NotEmpty(t, table.Message)
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestQueryWrongRoleFails(t *testing.T) {
	sess, _ := newMockSession(t, roles.RoleStudent)
	executor := NewExecutor(sess)

	table := executor.Query(context.Background(), roles.RoleAdmin, "SELECT * FROM campus.v_course_list")

	assert.True(t, table.Empty())
	assert.Contains(t, table.Message, "not permitted")
}

func TestExecSuccess(t *testing.T) {
	sess, poolMock := newMockSession(t, roles.RoleAdmin)
	executor := NewExecutor(sess)

	poolMock.ExpectBegin()
	poolMock.ExpectExec("UPDATE").
		WithArgs("ACCEPTED", int64(12)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	poolMock.ExpectCommit()

	ok, message := executor.Exec(context.Background(), roles.RoleAdmin,
		"UPDATE campus.inscription_request SET status = $1 WHERE request_id = $2", "ACCEPTED", int64(12))

	assert.True(t, ok)
	assert.Equal(t, StatementExecuted, message)
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestExecRejectionRollsBack(t *testing.T) {
	sess, poolMock := newMockSession(t, roles.RoleAdmin)
	executor := NewExecutor(sess)

	poolMock.ExpectBegin()
	poolMock.ExpectExec("INSERT").
		WithArgs(int64(5), int64(9)).
		WillReturnError(&pgconn.PgError{Code: "P0001", Message: "Course capacity reached."})
	poolMock.ExpectRollback()

	ok, message := executor.Exec(context.Background(), roles.RoleAdmin,
		"INSERT INTO campus.inscription_request (student_id, course_id, status) VALUES ($1, $2, 'PENDING')",
		int64(5), int64(9))

	assert.False(t, ok)
	assert.Equal(t, "Course capacity reached.", message)
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestCallProcedure(t *testing.T) {
	sess, poolMock := newMockSession(t, roles.RoleProf)
	executor := NewExecutor(sess)

	poolMock.ExpectBegin()
	poolMock.ExpectExec(regexp.QuoteMeta("CALL campus.sp_prof_submit_grade($1, $2, $3, $4)")).
		WithArgs(int64(2), int64(5), int64(9), 15.5).
		WillReturnResult(pgxmock.NewResult("CALL", 0))
	poolMock.ExpectCommit()

	ok, message := executor.CallProcedure(context.Background(), roles.RoleProf,
		"campus.sp_prof_submit_grade", int64(2), int64(5), int64(9), 15.5)

	assert.True(t, ok)
	assert.Contains(t, message, "sp_prof_submit_grade")
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestQueryFunction(t *testing.T) {
	sess, poolMock := newMockSession(t, roles.RoleStudent)
	executor := NewExecutor(sess)

	poolMock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM campus.fn_student_courses($1)")).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"course_id", "name", "grade"}).
			AddRow(int64(9), "Databases", 14.0))

	table := executor.QueryFunction(context.Background(), roles.RoleStudent,
		"campus.fn_student_courses", int64(7))

	require.Empty(t, table.Message)
	assert.Equal(t, 1, table.Len())
	assert.NoError(t, poolMock.ExpectationsWereMet())
}
