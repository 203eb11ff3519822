// Package pagination normalizes the page/limit query parameters shared by
// every list endpoint (solicitudes, órdenes, proveedores, usuarios, bitácora).
// Out-of-range values are clamped instead of rejected, so a hand-typed URL
// never turns into a 400.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	// MaxLimit caps how many rows one page may return regardless of what the
	// client asks for.
	MaxLimit = 100
	MinLimit = 1
)

// Params carries the normalized page window. Offset is precomputed for the
// repositories' LIMIT/OFFSET queries.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Parse reads page and limit from the query string. Absent or non-numeric
// values fall back to the defaults; limit is clamped to [MinLimit, MaxLimit].
func Parse(c *gin.Context) Params {
	page := atoiOr(c.Query("page"), DefaultPage)
	limit := atoiOr(c.Query("limit"), DefaultLimit)

	if page < 1 {
		page = DefaultPage
	}
	switch {
	case limit < MinLimit:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
