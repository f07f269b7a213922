package handler // handler package contains company administration handlers

import (
	"errors"   // sentinel error matching
	"net/http" // status code constants
	"strconv"  // parses string identifiers to numeric types
	"strings"  // trimming utilities

	"github.com/labstack/echo/v4" // web framework used for handlers

	"github.com/poslane/pos-admin/internal/model"      // row structs
	"github.com/poslane/pos-admin/internal/repository" // database access
)

// CompanyHandler bundles dependencies for the /companies endpoints.
type CompanyHandler struct {
	Companies *repository.CompanyRepo
}

func NewCompanyHandler(r *repository.CompanyRepo) *CompanyHandler {
	return &CompanyHandler{Companies: r}
}

type companyReq struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
}

// Create handles POST /companies.
func (h *CompanyHandler) Create(c echo.Context) error {
	var body companyReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	address := strings.TrimSpace(body.Address)
	if name == "" || address == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and address are required"})
	}
	company := &model.Company{Name: name, Address: address, Phone: body.Phone, Email: body.Email}
	if err := h.Companies.Create(c.Request().Context(), company); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create company"})
	}
	return c.JSON(http.StatusCreated, company)
}

// List handles GET /companies.
func (h *CompanyHandler) List(c echo.Context) error {
	items, err := h.Companies.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /companies/:id.
func (h *CompanyHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	company, err := h.Companies.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, company)
}

// Update handles PATCH /companies/:id.  Absent fields keep their
// stored value.
func (h *CompanyHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	company, err := h.Companies.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	var body companyReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if name := strings.TrimSpace(body.Name); name != "" {
		company.Name = name
	}
	if address := strings.TrimSpace(body.Address); address != "" {
		company.Address = address
	}
	if body.Phone != nil {
		company.Phone = body.Phone
	}
	if body.Email != nil {
		company.Email = body.Email
	}
	if err := h.Companies.Update(c.Request().Context(), &company); err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, company)
}

// Delete handles DELETE /companies/:id.
func (h *CompanyHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Companies.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
