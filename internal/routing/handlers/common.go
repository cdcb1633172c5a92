package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campus-server/internal/database"
	"campus-server/internal/schemas"
	"campus-server/internal/session"
	"campus-server/internal/utils"
)

// executorFrom builds the role-scoped executor for the session the role
// middleware attached to the request.
func executorFrom(c *gin.Context) *database.Executor {
	userSession := c.Value(utils.SessionKey.String()).(*session.Session)
	return database.NewExecutor(userSession)
}

func tableDTO(table *database.Table) schemas.TableDTO {
	return schemas.TableDTO{
		Columns: table.Columns,
		Rows:    table.Rows,
	}
}

// writeTable sends a query result, mapping a store failure to a database
// error response. An empty result is a valid 200 with zero rows.
func writeTable(c *gin.Context, table *database.Table) {
	if table.Message != "" {
		utils.WriteAndLogError(c, schemas.DatabaseError.WithMessage(table.Message), http.StatusInternalServerError, errors.New(table.Message))
		return
	}
	dto := tableDTO(table)
	utils.WriteAndLogResponse(c, &dto, http.StatusOK)
}

// writeResult sends the (success, message) outcome of a write. Store
// rejections are client-visible conflicts, not server errors.
func writeResult(c *gin.Context, ok bool, message string, successStatus int) {
	result := &schemas.OperationResultDTO{Success: ok, Message: message}
	if !ok {
		utils.WriteAndLogResponse(c, result, http.StatusConflict)
		return
	}
	utils.WriteAndLogResponse(c, result, successStatus)
}

// pathID parses a numeric path parameter, failing the request on
// anything that is not a positive integer.
func pathID(c *gin.Context, key string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil || id <= 0 {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, errors.New("invalid "+key+" path parameter"))
		return 0, false
	}
	return id, true
}
