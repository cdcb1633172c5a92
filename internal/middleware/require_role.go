package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"campus-server/internal/roles"
	"campus-server/internal/schemas"
	"campus-server/internal/session"
	"campus-server/internal/utils"
)

// RequireRole gates a dashboard group on the role claim of the validated
// JWT and attaches the live session to the request context. The session
// is the source of truth for the effective role; a token claiming a role
// the session does not hold is rejected.
func RequireRole(sessions *session.Manager, required roles.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := c.Value(utils.ClaimsKey.String()).(jwt.MapClaims)
		if !ok {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("missing claims"))
			return
		}

		sessionId, _ := claims["sid"].(string)
		userSession, ok := sessions.Get(sessionId)
		if !ok {
			utils.WriteAndLogError(c, schemas.SessionExpired, http.StatusUnauthorized, errors.New("session not found"))
			return
		}

		claimedRole, _ := claims["role"].(string)
		if userSession.EffectiveRole() != required || claimedRole != required.String() {
			utils.WriteAndLogError(c, schemas.Forbidden, http.StatusForbidden, errors.New("role not permitted for this dashboard"))
			return
		}

		c.Set(utils.SessionKey.String(), userSession)
		c.Next()
	}
}

// ResolveSession attaches the live session without enforcing a role.
// Used by logout, which any authenticated role may call.
func ResolveSession(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := c.Value(utils.ClaimsKey.String()).(jwt.MapClaims)
		if !ok {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("missing claims"))
			return
		}

		sessionId, _ := claims["sid"].(string)
		userSession, ok := sessions.Get(sessionId)
		if !ok {
			utils.WriteAndLogError(c, schemas.SessionExpired, http.StatusUnauthorized, errors.New("session not found"))
			return
		}

		c.Set(utils.SessionKey.String(), userSession)
		c.Next()
	}
}
