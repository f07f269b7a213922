package handler // handler package contains store administration handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/poslane/pos-admin/internal/model"
	"github.com/poslane/pos-admin/internal/repository"
)

// StoreHandler bundles dependencies for the /stores endpoints.
type StoreHandler struct {
	Stores *repository.StoreRepo
}

func NewStoreHandler(r *repository.StoreRepo) *StoreHandler { return &StoreHandler{Stores: r} }

type storeReq struct {
	CompanyID uint64  `json:"companyId"`
	Name      string  `json:"name"`
	Location  string  `json:"location"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
}

// Create handles POST /stores.
func (h *StoreHandler) Create(c echo.Context) error {
	var body storeReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	location := strings.TrimSpace(body.Location)
	if name == "" || location == "" || body.CompanyID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "companyId, name and location are required"})
	}
	store := &model.Store{CompanyID: body.CompanyID, Name: name, Location: location, Phone: body.Phone, Email: body.Email}
	if err := h.Stores.Create(c.Request().Context(), store); err != nil {
		if errors.Is(err, repository.ErrCompanyMissing) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "company does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create store"})
	}
	return c.JSON(http.StatusCreated, store)
}

// List handles GET /stores.
func (h *StoreHandler) List(c echo.Context) error {
	items, err := h.Stores.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /stores/:id.
func (h *StoreHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	store, err := h.Stores.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, store)
}

// Update handles PATCH /stores/:id.  Absent fields keep their stored
// value.
func (h *StoreHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	store, err := h.Stores.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	var body storeReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.CompanyID != 0 {
		store.CompanyID = body.CompanyID
	}
	if name := strings.TrimSpace(body.Name); name != "" {
		store.Name = name
	}
	if location := strings.TrimSpace(body.Location); location != "" {
		store.Location = location
	}
	if body.Phone != nil {
		store.Phone = body.Phone
	}
	if body.Email != nil {
		store.Email = body.Email
	}
	if err := h.Stores.Update(c.Request().Context(), &store); err != nil {
		switch {
		case errors.Is(err, repository.ErrStoreNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		case errors.Is(err, repository.ErrCompanyMissing):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "company does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, store)
}

// Delete handles DELETE /stores/:id.
func (h *StoreHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Stores.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
