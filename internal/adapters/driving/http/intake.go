package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
)

var pdfMagic = []byte("%PDF-")

// readUpload pulls the resume payload from the request. Multipart uploads
// use the "file" field; otherwise the raw body is taken. maxBytes of zero
// disables the size cap.
func readUpload(r *http.Request, maxBytes int64) ([]byte, error) {
	var src io.Reader = r.Body
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
		src = r.Body
	}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			if isBodyTooLarge(err) {
				return nil, domain.ErrTooLarge
			}
			return nil, fmt.Errorf("%w: missing file field", domain.ErrInvalidInput)
		}
		defer file.Close()
		src = file
	}

	data, err := io.ReadAll(src)
	if err != nil {
		if isBodyTooLarge(err) {
			return nil, domain.ErrTooLarge
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", domain.ErrInvalidInput)
	}
	return data, nil
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// extractResumeText converts an uploaded resume into plain text. PDF
// payloads are detected by magic bytes and parsed; anything else must be
// valid UTF-8 text. A payload that declares itself PDF but lacks the
// magic is rejected with domain.ErrNotPDF.
func extractResumeText(data []byte, declaredType string) (string, error) {
	isPDF := bytes.HasPrefix(data, pdfMagic)

	if strings.Contains(declaredType, "application/pdf") && !isPDF {
		return "", domain.ErrNotPDF
	}

	if isPDF {
		return extractPDFText(data)
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: upload is neither PDF nor UTF-8 text", domain.ErrInvalidInput)
	}
	return string(data), nil
}

// extractPDFText pulls the plain text out of a PDF payload
func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNotPDF, err)
	}

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNotPDF, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(content); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNotPDF, err)
	}

	text := buf.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no extractable text", domain.ErrInvalidInput)
	}
	return text, nil
}
