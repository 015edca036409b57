package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
)

type ProgressRepository struct {
	db *sql.DB
}

func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func (r *ProgressRepository) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS story_progress (
	user_id TEXT NOT NULL,
	story_id TEXT NOT NULL,
	current_phase INTEGER NOT NULL DEFAULT 0,
	completion DOUBLE PRECISION NOT NULL DEFAULT 0,
	concepts JSONB NOT NULL DEFAULT '[]'::jsonb,
	decisions JSONB NOT NULL DEFAULT '[]'::jsonb,
	check_results JSONB NOT NULL DEFAULT '[]'::jsonb,
	engagement JSONB NOT NULL DEFAULT '{}'::jsonb,
	last_accessed TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, story_id)
);
`
	return ensureSchema(ctx, r.db, 2026083106, ddl)
}

func (r *ProgressRepository) Get(ctx context.Context, userID, storyID string) (*domain.Progress, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT user_id, story_id, current_phase, completion, concepts, decisions, check_results, engagement, last_accessed, created_at
FROM story_progress
WHERE user_id = $1 AND story_id = $2
`, userID, storyID)

	var progress domain.Progress
	var conceptsRaw, decisionsRaw, resultsRaw, engagementRaw []byte
	err := row.Scan(
		&progress.UserID, &progress.StoryID, &progress.CurrentPhase, &progress.Completion,
		&conceptsRaw, &decisionsRaw, &resultsRaw, &engagementRaw,
		&progress.LastAccessed, &progress.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get progress",
				fmt.Errorf("user %s story %s", userID, storyID))
		}
		return nil, fmt.Errorf("scan progress: %w", err)
	}

	if err := json.Unmarshal(conceptsRaw, &progress.Concepts); err != nil {
		return nil, fmt.Errorf("unmarshal concepts: %w", err)
	}
	if err := json.Unmarshal(decisionsRaw, &progress.Decisions); err != nil {
		return nil, fmt.Errorf("unmarshal decisions: %w", err)
	}
	if err := json.Unmarshal(resultsRaw, &progress.CheckResults); err != nil {
		return nil, fmt.Errorf("unmarshal check results: %w", err)
	}
	if err := json.Unmarshal(engagementRaw, &progress.Engagement); err != nil {
		return nil, fmt.Errorf("unmarshal engagement: %w", err)
	}
	return &progress, nil
}

func (r *ProgressRepository) Upsert(ctx context.Context, progress *domain.Progress) error {
	conceptsJSON, err := json.Marshal(orEmptyStrings(progress.Concepts))
	if err != nil {
		return fmt.Errorf("marshal concepts: %w", err)
	}
	decisions := progress.Decisions
	if decisions == nil {
		decisions = []domain.DecisionRecord{}
	}
	decisionsJSON, err := json.Marshal(decisions)
	if err != nil {
		return fmt.Errorf("marshal decisions: %w", err)
	}
	results := progress.CheckResults
	if results == nil {
		results = []domain.KnowledgeCheckResult{}
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal check results: %w", err)
	}
	engagementJSON, err := json.Marshal(progress.Engagement)
	if err != nil {
		return fmt.Errorf("marshal engagement: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO story_progress (user_id, story_id, current_phase, completion, concepts, decisions, check_results, engagement, last_accessed, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (user_id, story_id) DO UPDATE
SET current_phase = EXCLUDED.current_phase,
    completion = EXCLUDED.completion,
    concepts = EXCLUDED.concepts,
    decisions = EXCLUDED.decisions,
    check_results = EXCLUDED.check_results,
    engagement = EXCLUDED.engagement,
    last_accessed = EXCLUDED.last_accessed
`,
		progress.UserID, progress.StoryID, progress.CurrentPhase, progress.Completion,
		conceptsJSON, decisionsJSON, resultsJSON, engagementJSON,
		progress.LastAccessed, progress.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}
