package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// UserAdmin is implemented by *service.UserService.
type UserAdmin interface {
	Create(ctx context.Context, email, password string, role model.Role) (model.User, error)
}

type UserHandler struct {
	Users UserAdmin
}

func NewUserHandler(u UserAdmin) *UserHandler { return &UserHandler{Users: u} }

// Create handles POST /v1/users.  Only administrators reach it.
func (h *UserHandler) Create(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	u, err := h.Users.Create(c.Request().Context(), body.Email, body.Password, model.Role(body.Role))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, userPart{ID: u.ID, Email: u.Email, Role: u.Role})
}
