package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, lockKey int64, ddl string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	filename TEXT NOT NULL,
	original_filename TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	file_type TEXT NOT NULL,
	file_size BIGINT NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	error_message TEXT,
	extracted_text TEXT NOT NULL DEFAULT '',
	key_concepts JSONB NOT NULL DEFAULT '[]'::jsonb,
	learning_goals JSONB NOT NULL DEFAULT '[]'::jsonb,
	difficulty TEXT,
	reading_minutes INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_user_id ON documents(user_id);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at DESC);
`
	return ensureSchema(ctx, r.db, 2026083101, ddl)
}

const documentColumns = `id, user_id, filename, original_filename, storage_path, file_type, file_size, status, error_message, extracted_text, key_concepts, learning_goals, difficulty, reading_minutes, created_at, updated_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	conceptsJSON, err := json.Marshal(orEmptyStrings(doc.KeyConcepts))
	if err != nil {
		return fmt.Errorf("marshal key concepts: %w", err)
	}
	goalsJSON, err := json.Marshal(orEmptyStrings(doc.LearningGoals))
	if err != nil {
		return fmt.Errorf("marshal learning goals: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
`,
		doc.ID, doc.UserID, doc.Filename, doc.OriginalFilename, doc.StoragePath, string(doc.FileType),
		doc.FileSize, string(doc.Status), doc.Error, doc.ExtractedText, conceptsJSON, goalsJSON,
		string(doc.Difficulty), doc.ReadingMinutes, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("id %s", id))
		}
		return nil, err
	}
	return doc, nil
}

func (r *DocumentRepository) ListByUser(ctx context.Context, userID string) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE user_id = $1
ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return nil
}

func (r *DocumentRepository) SaveAnalysis(ctx context.Context, id string, analysis domain.ContentAnalysis) error {
	conceptsJSON, err := json.Marshal(orEmptyStrings(analysis.KeyConcepts))
	if err != nil {
		return fmt.Errorf("marshal key concepts: %w", err)
	}
	goalsJSON, err := json.Marshal(orEmptyStrings(analysis.LearningGoals))
	if err != nil {
		return fmt.Errorf("marshal learning goals: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE documents
SET extracted_text = $2, key_concepts = $3, learning_goals = $4, difficulty = $5, reading_minutes = $6, updated_at = $7
WHERE id = $1
`, id, analysis.CleanedText, conceptsJSON, goalsJSON, string(analysis.Difficulty), analysis.ReadingMinutes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var fileType, status, difficulty string
	var conceptsRaw, goalsRaw []byte

	err := row.Scan(
		&doc.ID, &doc.UserID, &doc.Filename, &doc.OriginalFilename, &doc.StoragePath, &fileType,
		&doc.FileSize, &status, &doc.Error, &doc.ExtractedText, &conceptsRaw, &goalsRaw,
		&difficulty, &doc.ReadingMinutes, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	if err := json.Unmarshal(conceptsRaw, &doc.KeyConcepts); err != nil {
		return nil, fmt.Errorf("unmarshal key concepts: %w", err)
	}
	if err := json.Unmarshal(goalsRaw, &doc.LearningGoals); err != nil {
		return nil, fmt.Errorf("unmarshal learning goals: %w", err)
	}
	doc.FileType = domain.FileType(fileType)
	doc.Status = domain.DocumentStatus(status)
	doc.Difficulty = domain.DifficultyLevel(difficulty)
	return &doc, nil
}

func orEmptyStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
