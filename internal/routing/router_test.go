package routing

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/gin-gonic/gin"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"campus-server/internal/config"
	"campus-server/internal/interfaces"
	"campus-server/internal/managers"
	"campus-server/internal/managers/mocks"
	"campus-server/internal/session"
)

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func setupMocks(t *testing.T) (*session.Manager, pgxmock.PgxPoolIface, managers.JWTMgr, *mocks.MockMailManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("ENVIRONMENT", "test")

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
	sessions := session.NewManagerWithFactory(cfg, config.NewResolver(cfg), factory)

	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	jwtMgr := managers.NewJWTManager(privateKey, publicKey)

	mailMgrMock := &mocks.MockMailManager{}
	mailMgrMock.On("SendCredentialsMail", mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.Anything, mock.Anything).Return(nil)

	return sessions, poolMock, jwtMgr, mailMgrMock
}

func expectAccountLookup(poolMock pgxmock.PgxPoolIface, loginCode, password, role, status string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	poolMock.ExpectQuery("SELECT user_id, login_code, password_hash, role, status").
		WithArgs(loginCode).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "login_code", "password_hash", "role", "status"}).
			AddRow(int64(1), loginCode, string(hash), role, status))
}

func TestLogin(t *testing.T) {
	testCases := []struct {
		name      string
		payload   loginPayload
		account   []string // loginCode, password, role, status; nil for no row
		status    int
		errorCode string
	}{
		{
			"ValidAdminLogin",
			loginPayload{Username: "admin1", Password: "secret"},
			[]string{"ADMIN1", "secret", "ADMIN", "ACTIVE"},
			http.StatusOK,
			"",
		},
		{
			"WrongPassword",
			loginPayload{Username: "admin1", Password: "wrong"},
			[]string{"ADMIN1", "secret", "ADMIN", "ACTIVE"},
			http.StatusUnauthorized,
			"ERR-002",
		},
		{
			"UnknownAccount",
			loginPayload{Username: "nobody", Password: "secret"},
			nil,
			http.StatusUnauthorized,
			"ERR-002",
		},
		{
			"InactiveAccount",
			loginPayload{Username: "s100", Password: "secret"},
			[]string{"S100", "secret", "STUDENT", "INACTIVE"},
			http.StatusForbidden,
			"ERR-003",
		},
		{
			"MissingPassword",
			loginPayload{Username: "admin1"},
			nil,
			http.StatusBadRequest,
			"ERR-001",
		},
		{
			"MalformedLoginCode",
			loginPayload{Username: "admin 1!", Password: "secret"},
			nil,
			http.StatusBadRequest,
			"ERR-001",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sessions, poolMock, jwtMgr, mailMgrMock := setupMocks(t)
			router := InitRouter(sessions, jwtMgr, mailMgrMock)

			server := httptest.NewServer(router)
			defer server.Close()

			if tc.account != nil {
				expectAccountLookup(poolMock, tc.account[0], tc.account[1], tc.account[2], tc.account[3])
			} else if tc.status == http.StatusUnauthorized {
				poolMock.ExpectQuery("SELECT user_id, login_code, password_hash, role, status").
					WithArgs("NOBODY").
					WillReturnRows(pgxmock.NewRows([]string{"user_id", "login_code", "password_hash", "role", "status"}))
			}

			expect := httpexpect.Default(t, server.URL)
			response := expect.POST("/api/login").WithJSON(tc.payload).Expect().Status(tc.status)

			if tc.errorCode != "" {
				response.JSON().Object().Value("error").Object().Value("code").IsEqual(tc.errorCode)
			} else {
				body := response.JSON().Object()
				body.Value("token").String().NotEmpty()
				body.Value("loginCode").IsEqual("ADMIN1")
				body.Value("role").IsEqual("ADMIN")
			}

			if err := poolMock.ExpectationsWereMet(); err != nil {
				t.Errorf("there were unfulfilled expectations: %s", err)
			}
		})
	}
}

// login performs a full login round trip and returns the bearer token.
func login(t *testing.T, expect *httpexpect.Expect, poolMock pgxmock.PgxPoolIface, loginCode, role string) string {
	t.Helper()
	expectAccountLookup(poolMock, loginCode, "secret", role, "ACTIVE")

	return expect.POST("/api/login").
		WithJSON(loginPayload{Username: loginCode, Password: "secret"}).
		Expect().Status(http.StatusOK).
		JSON().Object().Value("token").String().Raw()
}

func TestAdminDashboard(t *testing.T) {
	t.Run("StatsServedToAdmin", func(t *testing.T) {
		sessions, poolMock, jwtMgr, mailMgrMock := setupMocks(t)
		router := InitRouter(sessions, jwtMgr, mailMgrMock)

		server := httptest.NewServer(router)
		defer server.Close()

		expect := httpexpect.Default(t, server.URL)
		token := login(t, expect, poolMock, "ADMIN1", "ADMIN")

		poolMock.ExpectQuery("SELECT \\* FROM campus.v_dashboard_stats").
			WillReturnRows(pgxmock.NewRows([]string{"students", "profs", "courses"}).
				AddRow(int64(120), int64(14), int64(32)))

		body := expect.GET("/api/admin/stats").
			WithHeader("Authorization", "Bearer "+token).
			Expect().Status(http.StatusOK).
			JSON().Object()

		body.Value("columns").Array().IsEqual([]string{"students", "profs", "courses"})
		body.Value("rows").Array().Length().IsEqual(1)

		if err := poolMock.ExpectationsWereMet(); err != nil {
			t.Errorf("there were unfulfilled expectations: %s", err)
		}
	})

	t.Run("StudentTokenRejected", func(t *testing.T) {
		sessions, poolMock, jwtMgr, mailMgrMock := setupMocks(t)
		router := InitRouter(sessions, jwtMgr, mailMgrMock)

		server := httptest.NewServer(router)
		defer server.Close()

		expect := httpexpect.Default(t, server.URL)
		token := login(t, expect, poolMock, "S100", "STUDENT")

		expect.GET("/api/admin/stats").
			WithHeader("Authorization", "Bearer "+token).
			Expect().Status(http.StatusForbidden).
			JSON().Object().Value("error").Object().Value("code").IsEqual("ERR-005")
	})

	t.Run("MissingTokenRejected", func(t *testing.T) {
		sessions, _, jwtMgr, mailMgrMock := setupMocks(t)
		router := InitRouter(sessions, jwtMgr, mailMgrMock)

		server := httptest.NewServer(router)
		defer server.Close()

		expect := httpexpect.Default(t, server.URL)
		expect.GET("/api/admin/stats").
			Expect().Status(http.StatusUnauthorized).
			JSON().Object().Value("error").Object().Value("code").IsEqual("ERR-004")
	})
}

func TestLogoutDestroysSession(t *testing.T) {
	sessions, poolMock, jwtMgr, mailMgrMock := setupMocks(t)
	router := InitRouter(sessions, jwtMgr, mailMgrMock)

	server := httptest.NewServer(router)
	defer server.Close()

	expect := httpexpect.Default(t, server.URL)
	token := login(t, expect, poolMock, "ADMIN1", "ADMIN")

	expect.POST("/api/logout").
		WithHeader("Authorization", "Bearer "+token).
		Expect().Status(http.StatusNoContent)

	// The token still verifies, but its session is gone
	expect.POST("/api/logout").
		WithHeader("Authorization", "Bearer "+token).
		Expect().Status(http.StatusUnauthorized).
		JSON().Object().Value("error").Object().Value("code").IsEqual("ERR-006")
}

func TestVersionRoute(t *testing.T) {
	sessions, _, jwtMgr, mailMgrMock := setupMocks(t)
	router := InitRouter(sessions, jwtMgr, mailMgrMock)

	server := httptest.NewServer(router)
	defer server.Close()

	expect := httpexpect.Default(t, server.URL)
	body := expect.GET("/").Expect().Status(http.StatusOK).JSON().Object()
	body.Value("apiName").IsEqual("Campus Registration API")
	body.Value("apiVersion").String().NotEmpty()
}

func TestHealthRoute(t *testing.T) {
	sessions, poolMock, jwtMgr, mailMgrMock := setupMocks(t)
	router := InitRouter(sessions, jwtMgr, mailMgrMock)

	server := httptest.NewServer(router)
	defer server.Close()

	poolMock.ExpectPing()
	expect := httpexpect.Default(t, server.URL)
	expect.GET("/health").Expect().Status(http.StatusOK)
}
