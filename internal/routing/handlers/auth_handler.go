// Package handlers implements the dashboard endpoints. Every handler
// reaches the store exclusively through the role-scoped executor of the
// session attached to the request.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-server/internal/auth"
	"campus-server/internal/database"
	"campus-server/internal/managers"
	"campus-server/internal/schemas"
	"campus-server/internal/session"
	"campus-server/internal/utils"
)

type AuthHdl interface {
	Login(c *gin.Context)
	Logout(c *gin.Context)
}

type AuthHandler struct {
	Sessions   *session.Manager
	JWTManager managers.JWTMgr
}

func NewAuthHandler(sessions *session.Manager, jwtManager managers.JWTMgr) AuthHdl {
	return &AuthHandler{
		Sessions:   sessions,
		JWTManager: jwtManager,
	}
}

// Login verifies the credentials over a fresh session's AUTH pool,
// promotes the session to the account's role and hands out a JWT bound
// to the session. A failed login never leaves a session behind.
func (handler *AuthHandler) Login(c *gin.Context) {
	loginRequest := c.Value(utils.SanitizedPayloadKey.String()).(*schemas.LoginRequest)

	userSession := handler.Sessions.Create()
	executor := database.NewExecutor(userSession)

	user, err := auth.Login(c.Request.Context(), executor, loginRequest.Username, loginRequest.Password)
	if err != nil {
		handler.Sessions.Destroy(userSession.ID())
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			utils.WriteAndLogError(c, schemas.InvalidCredentials, http.StatusUnauthorized, err)
		case errors.Is(err, auth.ErrInactiveAccount):
			utils.WriteAndLogError(c, schemas.AccountInactive, http.StatusForbidden, err)
		default:
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		}
		return
	}

	userSession.Authenticate(user)

	claims := handler.JWTManager.GenerateClaims(user.LoginCode, user.Role, userSession.ID())
	token, err := handler.JWTManager.GenerateJWT(claims)
	if err != nil {
		handler.Sessions.Destroy(userSession.ID())
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.LoginResponseDTO{
		Token:     token,
		LoginCode: user.LoginCode,
		Role:      user.Role.String(),
	}, http.StatusOK)
}

// Logout destroys the session behind the token, closing every pool it
// accumulated. The token itself becomes useless because its session id
// no longer resolves.
func (handler *AuthHandler) Logout(c *gin.Context) {
	userSession := c.Value(utils.SessionKey.String()).(*session.Session)
	handler.Sessions.Destroy(userSession.ID())
	c.Status(http.StatusNoContent)
}
