package handler // handler package contains admin-side route handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/emran-niftyitsolution/tms-sub000/internal/repository"
	"github.com/labstack/echo/v4"
)

// routeBody is the request shape shared by route create and update.
type routeBody struct {
	Name        string   `json:"name"`
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Stoppages   []string `json:"stoppages"`
}

// validateRouteBody trims and validates the fields, returning a message for
// the first problem found or an empty string when the body is usable.
func validateRouteBody(b *routeBody) string {
	b.Name = strings.TrimSpace(b.Name)
	b.Origin = strings.TrimSpace(b.Origin)
	b.Destination = strings.TrimSpace(b.Destination)
	if b.Name == "" {
		return "name is required"
	}
	if b.Origin == "" || b.Destination == "" {
		return "origin and destination are required"
	}
	cleaned := make([]string, 0, len(b.Stoppages))
	for _, s := range b.Stoppages {
		s = strings.TrimSpace(s)
		if s == "" {
			return "stoppage names must not be empty"
		}
		cleaned = append(cleaned, s)
	}
	b.Stoppages = cleaned
	return ""
}

// CreateRoute handles POST /v1/companies/:id/routes and creates a route with
// its ordered stoppage list under a company owned by the caller.
func (h *AdminHandler) CreateRoute(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	companyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body routeBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := validateRouteBody(&body); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if _, err := h.CompanyRepo.GetByIDAndOwner(c.Request().Context(), companyID, ownerID); err != nil {
		if err == repository.ErrCompanyNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	route := &repository.Route{
		CompanyID:   companyID,
		Name:        body.Name,
		Origin:      body.Origin,
		Destination: body.Destination,
		Stoppages:   body.Stoppages,
	}
	if err := h.RouteRepo.Create(c.Request().Context(), route); err != nil {
		if strings.Contains(err.Error(), "1062") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "route name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create route"})
	}
	return c.JSON(http.StatusCreated, route)
}

// ListRoutes handles GET /v1/companies/:id/routes and returns all routes of
// a company owned by the caller, each with its stoppages.
func (h *AdminHandler) ListRoutes(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	companyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if _, err := h.CompanyRepo.GetByIDAndOwner(c.Request().Context(), companyID, ownerID); err != nil {
		if err == repository.ErrCompanyNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items, err := h.RouteRepo.ListByCompanyAndOwner(c.Request().Context(), companyID, ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetRoute handles GET /v1/routes/:id and returns a single route with its
// stoppages for the authenticated owner.
func (h *AdminHandler) GetRoute(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	route, err := h.RouteRepo.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		if err == repository.ErrRouteNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, route)
}

// UpdateRoute handles PUT/PATCH /v1/routes/:id. The stoppage list is
// replaced wholesale; there is no per-stop patching.
func (h *AdminHandler) UpdateRoute(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body routeBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := validateRouteBody(&body); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	route := &repository.Route{
		ID:          id,
		Name:        body.Name,
		Origin:      body.Origin,
		Destination: body.Destination,
		Stoppages:   body.Stoppages,
	}
	if err := h.RouteRepo.Update(c.Request().Context(), ownerID, route); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.RouteRepo.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteRoute handles DELETE /v1/routes/:id. Returns 204 on success, 404 if
// not found, 403 if the route belongs to another owner and 409 when
// schedules still reference the route.
func (h *AdminHandler) DeleteRoute(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	err = h.RouteRepo.DeleteByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "cannot delete route with schedules"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
