package http

import (
	"mime"
	"net/http"
	"path"

	"loanflow-backend/internal/usecase/document"

	"github.com/labstack/echo/v4"
)

type DocumentHandler struct {
	uc             *document.Usecase
	maxUploadBytes int64
}

func NewDocumentHandler(uc *document.Usecase, maxUploadBytes int64) *DocumentHandler {
	return &DocumentHandler{uc: uc, maxUploadBytes: maxUploadBytes}
}

type reviewDocumentReq struct {
	Status string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
}

func (h *DocumentHandler) List(c echo.Context) error {
	docs, err := h.uc.List(c.Request().Context(), principal(c), c.QueryParam("application_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"documents": docs})
}

// Upload takes a multipart form {application_id, type, file}.
func (h *DocumentHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: []FieldError{{Field: "file", Message: "is required"}},
		})
	}
	content, err := readUpload(fh, h.maxUploadBytes)
	if err != nil {
		return invalidBody(c)
	}
	d, err := h.uc.Upload(c.Request().Context(), principal(c), document.UploadInput{
		ApplicationID: c.FormValue("application_id"),
		Type:          c.FormValue("type"),
		FileName:      fh.Filename,
		Content:       content,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *DocumentHandler) Review(c echo.Context) error {
	var req reviewDocumentReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	d, err := h.uc.Review(c.Request().Context(), principal(c), document.ReviewInput{
		DocumentID: c.Param("id"),
		Status:     req.Status,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DocumentHandler) Delete(c echo.Context) error {
	if err := h.uc.Delete(c.Request().Context(), principal(c), c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// File streams /files/:application_id/:name.
func (h *DocumentHandler) File(c echo.Context) error {
	name := c.Param("name")
	rc, err := h.uc.Open(c.Request().Context(), principal(c), c.Param("application_id")+"/"+name)
	if err != nil {
		return fail(c, err)
	}
	defer rc.Close()
	ct := mime.TypeByExtension(path.Ext(name))
	if ct == "" {
		ct = echo.MIMEOctetStream
	}
	return c.Stream(http.StatusOK, ct, rc)
}
