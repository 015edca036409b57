package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
)

type StoryRepository struct {
	db *sql.DB
}

func NewStoryRepository(db *sql.DB) *StoryRepository {
	return &StoryRepository{db: db}
}

func (r *StoryRepository) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS stories (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	synopsis TEXT,
	setting TEXT,
	central_conflict TEXT,
	learning_arc TEXT,
	framework TEXT NOT NULL,
	character JSONB NOT NULL DEFAULT '{}'::jsonb,
	phases JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stories_user_id ON stories(user_id);
CREATE INDEX IF NOT EXISTS idx_stories_document_id ON stories(document_id);
`
	return ensureSchema(ctx, r.db, 2026083105, ddl)
}

const storyColumns = `id, document_id, user_id, title, synopsis, setting, central_conflict, learning_arc, framework, character, phases, created_at, updated_at`

func (r *StoryRepository) Create(ctx context.Context, story *domain.Story) error {
	characterJSON, err := json.Marshal(story.Character)
	if err != nil {
		return fmt.Errorf("marshal character: %w", err)
	}
	phasesJSON, err := json.Marshal(story.Phases)
	if err != nil {
		return fmt.Errorf("marshal phases: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO stories (`+storyColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
`,
		story.ID, story.DocumentID, story.UserID, story.Title, story.Synopsis, story.Setting,
		story.CentralConflict, story.LearningArc, string(story.Framework), characterJSON, phasesJSON,
		story.CreatedAt, story.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert story: %w", err)
	}
	return nil
}

func (r *StoryRepository) GetByID(ctx context.Context, id string) (*domain.Story, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+storyColumns+` FROM stories WHERE id = $1`, id)
	story, err := scanStory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get story", fmt.Errorf("id %s", id))
		}
		return nil, err
	}
	return story, nil
}

func (r *StoryRepository) ListByUser(ctx context.Context, userID string) ([]domain.Story, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+storyColumns+`
FROM stories
WHERE user_id = $1
ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("query stories: %w", err)
	}
	defer rows.Close()

	stories := []domain.Story{}
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, *story)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stories: %w", err)
	}
	return stories, nil
}

func (r *StoryRepository) UpdatePhases(ctx context.Context, id string, phases []domain.Phase) error {
	phasesJSON, err := json.Marshal(phases)
	if err != nil {
		return fmt.Errorf("marshal phases: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE stories
SET phases = $2, updated_at = $3
WHERE id = $1
`, id, phasesJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update story phases: %w", err)
	}
	return nil
}

func (r *StoryRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM stories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete story: %w", err)
	}
	return nil
}

func scanStory(row rowScanner) (*domain.Story, error) {
	var story domain.Story
	var framework string
	var characterRaw, phasesRaw []byte

	err := row.Scan(
		&story.ID, &story.DocumentID, &story.UserID, &story.Title, &story.Synopsis, &story.Setting,
		&story.CentralConflict, &story.LearningArc, &framework, &characterRaw, &phasesRaw,
		&story.CreatedAt, &story.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan story: %w", err)
	}

	if err := json.Unmarshal(characterRaw, &story.Character); err != nil {
		return nil, fmt.Errorf("unmarshal character: %w", err)
	}
	if err := json.Unmarshal(phasesRaw, &story.Phases); err != nil {
		return nil, fmt.Errorf("unmarshal phases: %w", err)
	}
	story.Framework = domain.FrameworkKey(framework)
	return &story, nil
}
