package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"figment/internal/figures"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Save(ctx context.Context, msg Message) error {
	refs, err := json.Marshal(msg.References)
	if err != nil {
		return fmt.Errorf("marshal references: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO chat_messages (id, document_id, role, content, "references", created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)`,
		msg.ID, msg.DocumentID, msg.Role, msg.Content, refs, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

func (s *PostgresStore) History(ctx context.Context, documentID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(document_id, ''), role, content, "references", created_at
		FROM (
			SELECT * FROM chat_messages
			WHERE document_id IS NOT DISTINCT FROM NULLIF($1, '')
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC`, documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("query chat history: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var msg Message
		var refs []byte
		if err := rows.Scan(&msg.ID, &msg.DocumentID, &msg.Role, &msg.Content, &refs, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		if len(refs) > 0 && string(refs) != "null" {
			var parsed []figures.ImageReference
			if err := json.Unmarshal(refs, &parsed); err != nil {
				return nil, fmt.Errorf("unmarshal references: %w", err)
			}
			msg.References = parsed
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read chat history: %w", err)
	}
	return out, nil
}
