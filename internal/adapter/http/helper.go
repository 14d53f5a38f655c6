package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"loanflow-backend/internal/adapter/middleware"
	"loanflow-backend/internal/domain/errs"
	userDomain "loanflow-backend/internal/domain/user"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func principal(c echo.Context) userDomain.Principal {
	return middleware.PrincipalFrom(c.Request().Context())
}

// fail maps a usecase error onto the {error, details} payload.
func fail(c echo.Context, err error) error {
	var ve *errs.ValidationError
	switch {
	case errors.As(err, &ve):
		details := make([]FieldError, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			details = append(details, FieldError{Field: f.Field, Message: f.Message})
		}
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: details})
	case errors.Is(err, errs.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	case errors.Is(err, errs.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrConcurrentModification),
		errors.Is(err, errs.ErrConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	}
	logrus.WithFields(logrus.Fields{
		"method": c.Request().Method,
		"path":   c.Path(),
		"kind":   errs.KindOf(err),
	}).WithError(err).Error("request failed")
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
}

// bindValid binds the request into req and runs the validator. A non-nil
// error means the response has already been written.
func bindValid(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, invalidBody(c)
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// queryInt returns 0 for a missing or malformed value so the usecase
// defaults apply.
func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}

// readUpload reads at most limit+1 bytes so oversize files are still
// reported by the content check rather than truncated silently.
func readUpload(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit+1))
}
