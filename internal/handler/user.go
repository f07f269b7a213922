package handler // handler package contains user administration handlers

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/poslane/pos-admin/internal/repository"
)

// UserHandler bundles dependencies for the admin-only /users surface.
type UserHandler struct {
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewUserHandler(u *repository.UserRepo, t *repository.TokenRepo) *UserHandler {
	return &UserHandler{Users: u, Tokens: t}
}

// List handles GET /users.  The projection strips the password hash
// and verification token.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items := make([]userPart, 0, len(users))
	for _, u := range users {
		items = append(items, toUserPart(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	u, err := h.Users.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// Delete handles DELETE /users/:id.  Active refresh tokens are revoked
// first so no live session survives the account; the rows themselves
// go with the user via the database cascade.
func (h *UserHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke sessions failed"})
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
