package back

import (
	"strconv"

	"ChatEduca/pkg/util"

	"github.com/gin-gonic/gin"
)

const maxPageLimit = 100

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: util.TotalPages(total, limit),
	}
}

// PageQuery reads ?page&limit, falling back to 1 and defaultLimit on
// missing or invalid values.
func PageQuery(c *gin.Context, defaultLimit int) (page, limit int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// Offset converts a 1-based page to a row offset.
func Offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
