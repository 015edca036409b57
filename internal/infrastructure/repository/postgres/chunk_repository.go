package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
)

type ChunkRepository struct {
	db *sql.DB
}

func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

func (r *ChunkRepository) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS document_chunks (
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	chunk_index INTEGER NOT NULL,
	content TEXT NOT NULL,
	concepts JSONB NOT NULL DEFAULT '[]'::jsonb,
	PRIMARY KEY (document_id, chunk_index)
);
`
	return ensureSchema(ctx, r.db, 2026083102, ddl)
}

// ReplaceChunks swaps a document's chunk set atomically; reprocessing a
// document never leaves a mix of old and new chunks behind.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chunk tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete old chunks: %w", err)
	}
	for _, chunk := range chunks {
		conceptsJSON, err := json.Marshal(orEmptyStrings(chunk.Concepts))
		if err != nil {
			return fmt.Errorf("marshal chunk concepts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO document_chunks (document_id, chunk_index, content, concepts)
VALUES ($1,$2,$3,$4)
`, documentID, chunk.Index, chunk.Content, conceptsJSON); err != nil {
			return fmt.Errorf("insert chunk %d: %w", chunk.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chunk tx: %w", err)
	}
	return nil
}

func (r *ChunkRepository) ListChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT chunk_index, content, concepts
FROM document_chunks
WHERE document_id = $1
ORDER BY chunk_index
`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	chunks := []domain.Chunk{}
	for rows.Next() {
		var chunk domain.Chunk
		var conceptsRaw []byte
		if err := rows.Scan(&chunk.Index, &chunk.Content, &conceptsRaw); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if err := json.Unmarshal(conceptsRaw, &chunk.Concepts); err != nil {
			return nil, fmt.Errorf("unmarshal chunk concepts: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return chunks, nil
}
