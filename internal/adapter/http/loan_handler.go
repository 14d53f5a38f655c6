package http

import (
	"net/http"

	"loanflow-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type repaymentReq struct {
	Amount    decimal.Decimal `json:"amount"    validate:"gt=0,dec2"`
	Reference string          `json:"reference"`
}

func (h *LoanHandler) List(c echo.Context) error {
	res, err := h.uc.List(c.Request().Context(), principal(c), loan.ListInput{
		Page:  queryInt(c, "page"),
		Limit: queryInt(c, "limit"),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), principal(c), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// RecordRepayment serves the internal payments route; the caller is the
// payments service, never an end user.
func (h *LoanHandler) RecordRepayment(c echo.Context) error {
	var req repaymentReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	res, err := h.uc.RecordRepayment(c.Request().Context(), loan.RepaymentInput{
		LoanID:    c.Param("id"),
		Amount:    req.Amount,
		Reference: req.Reference,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}
