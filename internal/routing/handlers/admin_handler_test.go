package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campus-server/internal/config"
	"campus-server/internal/interfaces"
	"campus-server/internal/managers/mocks"
	"campus-server/internal/roles"
	"campus-server/internal/schemas"
	"campus-server/internal/session"
	"campus-server/internal/utils"
)

func newAdminContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder, pgxmock.PgxPoolIface) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)

	cfg := &config.Config{
		DBHost: "localhost", DBPort: "5432", DBName: "campus",
		PoolMinConns: 2, PoolMaxConns: 5,
		AuthUser: "app_auth", StudentUser: "app_student", ProfUser: "app_prof", AdminUser: "app_admin",
	}
	factory := func(context.Context, string, int32, int32) (interfaces.PgxPoolIface, error) {
		return poolMock, nil
	}
	sess := session.NewManagerWithFactory(cfg, config.NewResolver(cfg), factory).Create()
	sess.Authenticate(&schemas.UserAccount{UserID: 1, LoginCode: "ADMIN1", Role: roles.RoleAdmin, Status: schemas.AccountStatusActive})

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/admin/professors", nil)
	c.Set(utils.SessionKey.String(), sess)

	return c, recorder, poolMock
}

func TestCreateProfessorRejectsUnverifiableEmail(t *testing.T) {
	c, recorder, poolMock := newAdminContext(t)

	mailMgrMock := &mocks.MockMailManager{}
	handler := &AdminHandler{
		MailManager: mailMgrMock,
		Validator:   &utils.Validator{VerifyEmail: func(string) bool { return false }},
	}

	c.Set(utils.SanitizedPayloadKey.String(), &schemas.CreateProfessorRequest{
		FullName:      "Jane Doe",
		DepartementID: 10,
		Password:      "Str0ng!Pass",
		Email:         "jane@unreachable.example",
	})

	handler.CreateProfessor(c)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "ERR-012")
	// Rejection happens before anything touches the store or the mailer
	assert.NoError(t, poolMock.ExpectationsWereMet())
	mailMgrMock.AssertNotCalled(t, "SendCredentialsMail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateProfessorMailsVerifiedAddress(t *testing.T) {
	c, recorder, poolMock := newAdminContext(t)

	mailMgrMock := &mocks.MockMailManager{}
	mailMgrMock.On("SendCredentialsMail", "jane@campus.example", "Jane Doe", mock.AnythingOfType("string"), mock.Anything).Return(nil)

	handler := &AdminHandler{
		MailManager: mailMgrMock,
		Validator:   &utils.Validator{VerifyEmail: func(string) bool { return true }},
	}

	poolMock.ExpectBegin()
	poolMock.ExpectExec("INSERT INTO campus.user_account").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	poolMock.ExpectExec("INSERT INTO campus.prof").
		WithArgs(pgxmock.AnyArg(), "Jane Doe", int64(10)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	poolMock.ExpectCommit()

	c.Set(utils.SanitizedPayloadKey.String(), &schemas.CreateProfessorRequest{
		FullName:      "Jane Doe",
		DepartementID: 10,
		Password:      "Str0ng!Pass",
		Email:         "jane@campus.example",
	})

	handler.CreateProfessor(c)

	assert.Equal(t, http.StatusCreated, recorder.Code)
	mailMgrMock.AssertExpectations(t)
	assert.NoError(t, poolMock.ExpectationsWereMet())
}
