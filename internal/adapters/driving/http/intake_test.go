package http

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
)

func TestReadUpload_RawBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader("resume text"))

	data, err := readUpload(r, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "resume text" {
		t.Errorf("unexpected payload %q", data)
	}
}

func TestReadUpload_MultipartFileField(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "resume.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fw.Write([]byte("resume text"))
	mw.Close()

	r := httptest.NewRequest("POST", "/", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	data, err := readUpload(r, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "resume text" {
		t.Errorf("unexpected payload %q", data)
	}
}

func TestReadUpload_MissingFileField(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("other", "value")
	mw.Close()

	r := httptest.NewRequest("POST", "/", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	_, err := readUpload(r, 0)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestReadUpload_TooLarge(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(strings.Repeat("x", 100)))

	_, err := readUpload(r, 10)
	if !errors.Is(err, domain.ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestReadUpload_Empty(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(""))

	_, err := readUpload(r, 0)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExtractResumeText_PlainText(t *testing.T) {
	text, err := extractResumeText([]byte("plain resume"), "text/plain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "plain resume" {
		t.Errorf("unexpected text %q", text)
	}
}

func TestExtractResumeText_DeclaredPDFWithoutMagic(t *testing.T) {
	_, err := extractResumeText([]byte("plain resume"), "application/pdf")
	if !errors.Is(err, domain.ErrNotPDF) {
		t.Errorf("expected ErrNotPDF, got %v", err)
	}
}

func TestExtractResumeText_TruncatedPDF(t *testing.T) {
	_, err := extractResumeText([]byte("%PDF-1.7 not really"), "application/pdf")
	if !errors.Is(err, domain.ErrNotPDF) {
		t.Errorf("expected ErrNotPDF, got %v", err)
	}
}

func TestExtractResumeText_BinaryGarbage(t *testing.T) {
	_, err := extractResumeText([]byte{0xff, 0xfe, 0x00, 0x80}, "application/octet-stream")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
