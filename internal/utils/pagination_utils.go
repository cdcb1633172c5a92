// package utils provides utility functions to support various operations within the application.
package utils

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campus-server/internal/schemas"
)

// ParsePaginationParams extracts the 'offset' and 'limit' parameters from the request's query parameters.
// It provides default values and ensures that the returned values are non-negative.
func ParsePaginationParams(c *gin.Context) (int, int) {
	offset, err := strconv.Atoi(c.DefaultQuery(OffsetParamKey, "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	limit, err := strconv.Atoi(c.DefaultQuery(LimitParamKey, "10"))
	if err != nil || limit < 0 {
		limit = 10
	}

	return offset, limit
}

// SendPaginatedTable sends the window of table rows selected by offset
// and limit, together with the pagination details.
func SendPaginatedTable(c *gin.Context, table *schemas.TableDTO, offset, limit int) {
	total := len(table.Rows)

	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	subset := schemas.TableDTO{
		Columns: table.Columns,
		Rows:    table.Rows[offset:end],
	}

	response := schemas.PaginatedResponse{
		Records: subset,
		Pagination: schemas.Pagination{
			Offset:  offset,
			Limit:   limit,
			Records: total,
		},
	}

	WriteAndLogResponse(c, response, http.StatusOK)
}
