package http

import (
	"net/http"

	"loanflow-backend/internal/usecase/user"

	"github.com/labstack/echo/v4"
)

type UserHandler struct{ uc *user.Usecase }

func NewUserHandler(uc *user.Usecase) *UserHandler { return &UserHandler{uc: uc} }

type updateUserReq struct {
	Role     *string `json:"role"      validate:"omitempty,oneof=SUPER_ADMIN LOAN_OFFICER APPROVER APPLICANT"`
	IsActive *bool   `json:"is_active"`
}

func (h *UserHandler) Me(c echo.Context) error {
	u, err := h.uc.Me(c.Request().Context(), principal(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) List(c echo.Context) error {
	users, err := h.uc.List(c.Request().Context(), principal(c), c.QueryParam("role"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"users": users})
}

func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	u, err := h.uc.Update(c.Request().Context(), principal(c), user.UpdateInput{
		UserID:   c.Param("id"),
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}
