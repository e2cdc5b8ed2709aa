// Package handlers exposes the report repositories over HTTP. Every handler
// binds a request struct, calls one repository operation and renders its
// typed result as JSON.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Tonooka01/sistema-analise/internal/repositories"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
)

// DefaultAnalysisLimit pages the analysis tables.
const DefaultAnalysisLimit = 50

// PageRequest is the limit/offset pair every paginated endpoint accepts.
type PageRequest struct {
	Limit  int `query:"limit" validate:"gte=0"`
	Offset int `query:"offset" validate:"gte=0"`
}

func (p PageRequest) Page(def int) repositories.Page {
	return repositories.NewPage(p.Limit, p.Offset, def)
}

// DateRangeRequest is the optional start_date/end_date window.
type DateRangeRequest struct {
	StartDate string `query:"start_date" validate:"isodate"`
	EndDate   string `query:"end_date" validate:"isodate"`
}

func (d DateRangeRequest) Range() filters.DateRange {
	return filters.DateRange{Start: d.StartDate, End: d.EndDate}
}

// OK renders a successful JSON response.
func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}
