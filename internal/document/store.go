// Package document stores uploaded identification documents and hands back
// stable references. Absence of a document is always valid; registration
// only attaches one when the patient provided it.
package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
	ErrMissingFileName    = errors.New("file name is required")
)

// MaxFileSize is the maximum allowed document size in bytes (10 MB).
const MaxFileSize = 10 * 1024 * 1024

var allowedContentTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"application/pdf": true,
}

type Document struct {
	ID          uuid.UUID
	FileName    string
	ContentType string
	Size        int64
	Hash        string
	Data        []byte
	CreatedAt   time.Time
}

// Store is the file-upload capability: put a document, get it back later by
// its reference.
type Store interface {
	Put(ctx context.Context, fileName, contentType string, data []byte) (*Document, error)
	Get(ctx context.Context, id uuid.UUID) (*Document, error)
}

func validateUpload(fileName, contentType string, data []byte) error {
	if fileName == "" {
		return ErrMissingFileName
	}
	if !allowedContentTypes[contentType] {
		return fmt.Errorf("%w: %s", ErrInvalidContentType, contentType)
	}
	if int64(len(data)) > MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

func hashData(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
