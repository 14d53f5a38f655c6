package http

import (
	"net/http"

	"loanflow-backend/internal/usecase/interestrate"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type RateHandler struct{ uc *interestrate.Usecase }

func NewRateHandler(uc *interestrate.Usecase) *RateHandler { return &RateHandler{uc: uc} }

type createRateReq struct {
	Months int             `json:"months" validate:"gte=1,lte=120"`
	Rate   decimal.Decimal `json:"rate"   validate:"gt=0,lte=100,dec2"`
}

func (h *RateHandler) List(c echo.Context) error {
	rates, err := h.uc.List(c.Request().Context(), principal(c), c.QueryParam("active") == "true")
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"interest_rates": rates})
}

func (h *RateHandler) Create(c echo.Context) error {
	var req createRateReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	r, err := h.uc.Create(c.Request().Context(), principal(c), interestrate.CreateInput(req))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *RateHandler) Delete(c echo.Context) error {
	if err := h.uc.Delete(c.Request().Context(), principal(c), c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
