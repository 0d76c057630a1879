package imagestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"figment/internal/figures"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Images(ctx context.Context, documentID string) ([]figures.DocumentImage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, document_id, image_path, alt_text, caption, COALESCE(page_number, 0)
		FROM document_images
		WHERE document_id = $1
		ORDER BY id`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query document images: %w", err)
	}
	defer rows.Close()

	var images []figures.DocumentImage
	for rows.Next() {
		var img figures.DocumentImage
		if err := rows.Scan(&img.ID, &img.DocumentID, &img.ImagePath, &img.AltText, &img.Caption, &img.PageNumber); err != nil {
			return nil, fmt.Errorf("scan document image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read document images: %w", err)
	}
	return images, nil
}

func (s *PostgresStore) DocumentText(ctx context.Context, documentID string) (string, error) {
	var text string
	err := s.pool.QueryRow(ctx,
		`SELECT body_text FROM documents WHERE id = $1`, documentID).Scan(&text)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("query document text: %w", err)
	}
	return text, nil
}
