package document

import (
	"loanflow-backend/internal/domain/errs"

	"github.com/gabriel-vasile/mimetype"
)

var allowedContent = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

// Sniff detects the content type from the bytes themselves, never from the
// client's declared type, and returns the type with its file extension.
// field names the input in the returned ValidationError.
func Sniff(field string, content []byte, maxBytes int64) (contentType, ext string, err error) {
	if len(content) == 0 {
		return "", "", errs.Invalid(field, "file is empty")
	}
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return "", "", errs.Invalid(field, "file is too large")
	}
	mt := mimetype.Detect(content)
	for m := mt; m != nil; m = m.Parent() {
		if ext, ok := allowedContent[m.String()]; ok {
			return m.String(), ext, nil
		}
	}
	return "", "", errs.Invalid(field, "must be a PDF, JPEG or PNG file")
}
