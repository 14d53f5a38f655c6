package http

import (
	"net/http"
	"strconv"
	"strings"

	appDomain "loanflow-backend/internal/domain/application"
	docDomain "loanflow-backend/internal/domain/document"
	"loanflow-backend/internal/domain/errs"
	"loanflow-backend/internal/usecase/application"
	"loanflow-backend/internal/usecase/loan"
	"loanflow-backend/internal/usecase/review"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// submission form file fields
var uploadFields = map[string]docDomain.Type{
	"id_card":        docDomain.TypeIDCard,
	"proof_of_funds": docDomain.TypeProofOfFunds,
}

type ApplicationHandler struct {
	apps           *application.Usecase
	reviews        *review.Usecase
	loans          *loan.Usecase
	maxUploadBytes int64
}

func NewApplicationHandler(apps *application.Usecase, reviews *review.Usecase, loans *loan.Usecase, maxUploadBytes int64) *ApplicationHandler {
	return &ApplicationHandler{apps: apps, reviews: reviews, loans: loans, maxUploadBytes: maxUploadBytes}
}

type transitionReq struct {
	Status             string           `json:"status"               validate:"required"`
	ExpectedStatus     *string          `json:"expected_status"`
	Note               string           `json:"note"`
	DisbursementAmount *decimal.Decimal `json:"disbursement_amount"  validate:"omitempty,gt=0,dec2"`
}

type reviewReq struct {
	Status         string `json:"status"          validate:"required"`
	Comments       string `json:"comments"`
	Recommendation string `json:"recommendation"`
}

type disburseReq struct {
	DisbursementAmount *decimal.Decimal `json:"disbursement_amount" validate:"omitempty,gt=0,dec2"`
}

// Submit takes a multipart form: the application fields plus the id_card
// and proof_of_funds files.
func (h *ApplicationHandler) Submit(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return invalidBody(c)
	}
	in, err := h.submitInput(form.Value)
	if err != nil {
		return fail(c, err)
	}
	for field, t := range uploadFields {
		for _, fh := range form.File[field] {
			content, err := readUpload(fh, h.maxUploadBytes)
			if err != nil {
				return invalidBody(c)
			}
			in.Documents = append(in.Documents, application.DocumentUpload{Type: t, FileName: fh.Filename, Content: content})
		}
	}

	res, err := h.apps.Submit(c.Request().Context(), principal(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *ApplicationHandler) submitInput(values map[string][]string) (application.SubmitInput, error) {
	get := func(k string) string {
		if vs := values[k]; len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
		return ""
	}
	optional := func(k string) *string {
		if v := get(k); v != "" {
			return &v
		}
		return nil
	}

	v := &errs.ValidationError{}
	money := func(k string) decimal.Decimal {
		d, err := decimal.NewFromString(get(k))
		if err != nil {
			v.Add(k, "must be a number")
		}
		return d
	}
	in := application.SubmitInput{
		Amount:           money("amount"),
		MonthlyIncome:    money("monthly_income"),
		EmploymentStatus: get("employment_status"),
		Purpose:          get("purpose"),
		FirstName:        get("first_name"),
		LastName:         get("last_name"),
		Phone:            get("phone"),
		Address:          get("address"),
		AccountNumber:    get("account_number"),
		BankName:         get("bank_name"),
		BVN:              optional("bvn"),
		NIN:              optional("nin"),
	}
	dur, err := strconv.Atoi(get("duration"))
	if err != nil {
		v.Add("duration", "must be a whole number of months")
	}
	in.Duration = dur
	return in, v.OrNil()
}

func (h *ApplicationHandler) List(c echo.Context) error {
	res, err := h.apps.List(c.Request().Context(), principal(c), application.ListInput{
		Status: c.QueryParam("status"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ApplicationHandler) Get(c echo.Context) error {
	res, err := h.apps.Get(c.Request().Context(), principal(c), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Transition handles PATCH. DISBURSED is routed to the disbursement flow,
// which also creates the loan.
func (h *ApplicationHandler) Transition(c echo.Context) error {
	var req transitionReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	to, err := appDomain.ParseStatus(req.Status)
	if err != nil {
		return fail(c, errs.Invalid("status", "unknown application status"))
	}
	var expected *appDomain.Status
	if req.ExpectedStatus != nil {
		exp, err := appDomain.ParseStatus(*req.ExpectedStatus)
		if err != nil {
			return fail(c, errs.Invalid("expected_status", "unknown application status"))
		}
		expected = &exp
	}
	if to == appDomain.StatusDisbursed {
		return h.disburse(c, req.DisbursementAmount, expected)
	}

	in := application.TransitionInput{ApplicationID: c.Param("id"), To: to, Note: req.Note, Expected: expected}
	dto, err := h.apps.Transition(c.Request().Context(), principal(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApplicationHandler) Review(c echo.Context) error {
	var req reviewReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	res, err := h.reviews.Record(c.Request().Context(), principal(c), review.RecordInput{
		ApplicationID:  c.Param("id"),
		Status:         req.Status,
		Comments:       req.Comments,
		Recommendation: req.Recommendation,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *ApplicationHandler) Disburse(c echo.Context) error {
	var req disburseReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	return h.disburse(c, req.DisbursementAmount, nil)
}

func (h *ApplicationHandler) disburse(c echo.Context, amount *decimal.Decimal, expected *appDomain.Status) error {
	dto, err := h.loans.Disburse(c.Request().Context(), principal(c), loan.DisburseInput{
		ApplicationID: c.Param("id"),
		Amount:        amount,
		Expected:      expected,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}
