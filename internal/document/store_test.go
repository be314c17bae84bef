package document

import (
	"bytes"
	"errors"
	"testing"
)

func TestValidateUpload(t *testing.T) {
	if err := validateUpload("passport.png", "image/png", []byte("png")); err != nil {
		t.Errorf("valid png rejected: %v", err)
	}
	if err := validateUpload("scan.pdf", "application/pdf", []byte("pdf")); err != nil {
		t.Errorf("valid pdf rejected: %v", err)
	}

	if err := validateUpload("", "image/png", []byte("png")); !errors.Is(err, ErrMissingFileName) {
		t.Errorf("missing file name: got %v, want ErrMissingFileName", err)
	}
	if err := validateUpload("doc.exe", "application/octet-stream", []byte("x")); !errors.Is(err, ErrInvalidContentType) {
		t.Errorf("bad content type: got %v, want ErrInvalidContentType", err)
	}

	huge := bytes.Repeat([]byte("a"), MaxFileSize+1)
	if err := validateUpload("big.png", "image/png", huge); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("oversized file: got %v, want ErrFileTooLarge", err)
	}
}

func TestHashData(t *testing.T) {
	a := hashData([]byte("same bytes"))
	b := hashData([]byte("same bytes"))
	if a != b {
		t.Error("hash must be deterministic")
	}
	if a == hashData([]byte("other bytes")) {
		t.Error("different data must hash differently")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex characters", len(a))
	}
}
