package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/emran-niftyitsolution/tms-sub000/internal/repository"
)

// time: "upcoming" (default), "active" (arrives_at >= NOW()), "any" (no time filter)
func (h *PublicHandler) SearchSchedules(c echo.Context) error {
	origin := strings.TrimSpace(c.QueryParam("origin"))
	destination := strings.TrimSpace(c.QueryParam("destination"))
	company := strings.TrimSpace(c.QueryParam("company"))
	timeFilter := strings.ToLower(strings.TrimSpace(c.QueryParam("time")))
	if timeFilter == "" {
		timeFilter = "upcoming"
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))
	if ps < 1 {
		ps = 20
	}
	if ps > 100 {
		ps = 100
	}

	q := repository.ScheduleSearchQuery{
		Origin:      origin,
		Destination: destination,
		Company:     company,
		TimeFilter:  timeFilter,
		Page:        page,
		PageSize:    ps,
	}

	items, total, err := h.ScheduleRepo.SearchUpcoming(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "database_error",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":      items,
		"total":     total,
		"page":      page,
		"page_size": ps,
	})
}
