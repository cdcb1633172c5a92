package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-server/internal/schemas"
	"campus-server/internal/utils"
)

// ValidateAndSanitizeStruct binds the JSON body into a fresh T, strips
// markup from its string fields and validates it. The validated payload
// is stored in the request context for the handler.
func ValidateAndSanitizeStruct[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		obj := new(T)
		if err := c.ShouldBindJSON(obj); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, &schemas.ErrorDTO{Error: *schemas.BadRequest})
			return
		}

		validator := utils.GetValidator()

		// Sanitize the data
		if err := validator.SanitizeData(obj); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, &schemas.ErrorDTO{Error: *schemas.BadRequest})
			return
		}

		if err := validator.Validate.Struct(obj); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, &schemas.ErrorDTO{Error: *schemas.BadRequest})
			return
		}

		// Set the sanitized object in the context
		c.Set(utils.SanitizedPayloadKey.String(), obj)
		c.Next()
	}
}
