package document

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document

	err := row.Scan(
		&d.ID,
		&d.FileName,
		&d.ContentType,
		&d.Size,
		&d.Hash,
		&d.Data,
		&d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	return &d, nil
}

func (s *PgStore) Put(ctx context.Context, fileName, contentType string, data []byte) (*Document, error) {
	if err := validateUpload(fileName, contentType, data); err != nil {
		return nil, err
	}

	id := uuid.New()

	row := s.pool.QueryRow(ctx, `
		INSERT INTO documents (id, file_name, content_type, size, hash, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING id, file_name, content_type, size, hash, data, created_at
	`, id, fileName, contentType, int64(len(data)), hashData(data), data)

	return scanDocument(row)
}

func (s *PgStore) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, file_name, content_type, size, hash, data, created_at
		FROM documents
		WHERE id = $1
	`, id)
	return scanDocument(row)
}
