package handler // handler package contains admin-side company handlers

import (
	"database/sql" // sql is imported for sentinel errors like sql.ErrNoRows
	"net/http"     // http provides status code constants
	"strconv"      // strconv parses string identifiers to numeric types
	"strings"      // strings offers trimming utilities

	"github.com/emran-niftyitsolution/tms-sub000/internal/repository" // repository holds database models
	"github.com/labstack/echo/v4"                                     // echo is the web framework used for handlers
)

// normalizeMode uppercases the transport mode tag and validates it against the
// supported set. An empty value defaults to BUS. The returned bool reports
// whether the value was acceptable.
func normalizeMode(mode string) (string, bool) {
	m := strings.ToUpper(strings.TrimSpace(mode))
	if m == "" {
		return "BUS", true
	}
	switch m {
	case "BUS", "TRAIN", "AIR", "SHIP":
		return m, true
	}
	return "", false
}

// CreateCompany handles POST /v1/companies and creates a new transport
// company for the authenticated owner
func (h *AdminHandler) CreateCompany(c echo.Context) error { // begin CreateCompany handler
	ownerID, err := getUserID(c) // extract the owner ID from context
	if err != nil {              // check if the user ID was not available or invalid
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"}) // respond with unauthorized when user ID cannot be obtained
	}
	var body struct { // anonymous struct to bind incoming JSON
		Name string `json:"name"` // Name is the required display name of the operator
		Mode string `json:"mode"` // Mode is the optional transport mode tag, defaults to BUS
	}
	if err := c.Bind(&body); err != nil { // attempt to bind the request body into the struct
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"}) // return bad request when binding fails
	}
	name := strings.TrimSpace(body.Name) // trim spaces around the company name
	if name == "" {                      // ensure the name is not empty after trimming
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"}) // respond with error when name is empty
	}
	mode, ok := normalizeMode(body.Mode) // validate the transport mode tag
	if !ok {                             // reject values outside the supported set
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "mode must be one of BUS, TRAIN, AIR, SHIP"}) // respond with bad request for unknown modes
	}
	company := &repository.Company{ // instantiate a new company model
		OwnerID: ownerID, // assign the owner ID to the company
		Name:    name,    // assign the trimmed name
		Mode:    mode,    // assign the normalized transport mode
	}
	if err := h.CompanyRepo.Create(c.Request().Context(), company); err != nil { // delegate creation to the repository
		if strings.Contains(err.Error(), "1062") { // check for duplicate key error
			return c.JSON(http.StatusConflict, map[string]string{"error": "company name already exists"}) // respond with conflict when the name is not unique
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create company"}) // respond with internal error for other failures
	}
	return c.JSON(http.StatusCreated, company) // return 201 and the created company on success
}

// UpdateCompany handles PUT/PATCH /v1/companies/:id and updates the company name
func (h *AdminHandler) UpdateCompany(c echo.Context) error { // begin UpdateCompany handler
	ownerID, err := getUserID(c) // extract the owner ID from context
	if err != nil {              // if user ID is invalid
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"}) // unauthorized error
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64) // parse the company ID from the URL
	if err != nil {                                     // validate that the ID is numeric
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"}) // invalid ID error response
	}
	var body struct { // struct for binding the JSON payload
		Name string `json:"name"` // Name is the updated display name
		Mode string `json:"mode"` // Mode optionally changes the transport mode tag
	}
	if err := c.Bind(&body); err != nil { // attempt to bind the request body
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"}) // return bad request when binding fails
	}
	name := strings.TrimSpace(body.Name) // trim spaces from the provided name
	if name == "" {                      // name cannot be empty after trimming
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"}) // respond with bad request if name is empty
	}
	existing, err := h.CompanyRepo.GetByIDAndOwner(c.Request().Context(), id, ownerID) // verify the company exists and belongs to the owner
	if err != nil {
		if err == repository.ErrCompanyNotFound { // when the company is not found
			return c.JSON(http.StatusNotFound, map[string]string{"error": "company not found"}) // respond with not found
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"}) // respond with database error
	}
	mode := existing.Mode // keep the current mode when the field is omitted
	if body.Mode != "" {  // the caller asked to change the mode
		m, ok := normalizeMode(body.Mode) // validate the new value
		if !ok {                          // unsupported mode tag
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "mode must be one of BUS, TRAIN, AIR, SHIP"}) // respond with bad request
		}
		mode = m // adopt the normalized value
	}
	if err := h.CompanyRepo.Update(c.Request().Context(), id, ownerID, name, mode); err != nil { // update the company in the repository
		if err == sql.ErrNoRows { // no rows affected means not found
			return c.JSON(http.StatusNotFound, map[string]string{"error": "company not found"}) // respond with not found
		}
		if strings.Contains(err.Error(), "1062") { // duplicate name violation
			return c.JSON(http.StatusConflict, map[string]string{"error": "company name already exists"}) // respond with conflict
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"}) // respond with generic update failure
	}
	updated, _ := h.CompanyRepo.GetByID(c.Request().Context(), id) // fetch the updated record without ownership filter
	return c.JSON(http.StatusOK, updated)                         // return the updated company with OK status
}

// ListCompanies handles GET /v1/companies and returns all companies owned by the authenticated user
func (h *AdminHandler) ListCompanies(c echo.Context) error { // begin ListCompanies handler
	ownerID, err := getUserID(c) // extract the user ID from context
	if err != nil {              // invalid user means unauthorized
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"}) // respond unauthorized
	}
	items, err := h.CompanyRepo.ListByOwner(c.Request().Context(), ownerID) // fetch companies for this owner
	if err != nil {                                                        // handle repository errors
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"}) // respond with internal server error
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items}) // return the list wrapped in a JSON object
}

// DeleteCompany handles DELETE /v1/companies/:id. It removes the specified
// company and all dependent records if it belongs to the authenticated
// owner. A successful deletion returns 204 No Content. If the company does
// not exist, a 404 Not Found is returned. If it exists but belongs to
// another owner, 403 Forbidden is returned.
func (h *AdminHandler) DeleteCompany(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	err = h.CompanyRepo.DeleteByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
