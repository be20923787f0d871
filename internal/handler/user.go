package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coach-session-scheduler/internal/model"
)

// UserHandler exposes read-only user endpoints. There is no registration
// or update path: identity is chosen client-side from the seeded users.
type UserHandler struct {
	Users UserStore
}

func NewUserHandler(users UserStore) *UserHandler {
	if users == nil {
		panic("nil store passed to NewUserHandler")
	}
	return &UserHandler{Users: users}
}

// ListUsers handles GET /users.
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser handles GET /users/:id.
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	user, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusOK, user)
}

// ListCoaches handles GET /coaches.
func (h *UserHandler) ListCoaches(c echo.Context) error {
	return h.listByRole(c, model.RoleCoach)
}

// ListStudents handles GET /students.
func (h *UserHandler) ListStudents(c echo.Context) error {
	return h.listByRole(c, model.RoleStudent)
}

func (h *UserHandler) listByRole(c echo.Context, role model.Role) error {
	users, err := h.Users.ListByRole(c.Request().Context(), role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusOK, users)
}
