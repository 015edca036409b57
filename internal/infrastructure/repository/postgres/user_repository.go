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

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	full_name TEXT,
	learning_style TEXT NOT NULL,
	skill_level TEXT NOT NULL,
	interests JSONB NOT NULL DEFAULT '[]'::jsonb,
	preferred_genres JSONB NOT NULL DEFAULT '[]'::jsonb,
	traits JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`
	return ensureSchema(ctx, r.db, 2026083103, ddl)
}

const userColumns = `id, username, email, password_hash, full_name, learning_style, skill_level, interests, preferred_genres, traits, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	interestsJSON, genresJSON, traitsJSON, err := marshalUserJSON(user)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO users (`+userColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.FullName,
		string(user.LearningStyle), string(user.SkillLevel), interestsJSON, genresJSON, traitsJSON,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getBy(ctx, `WHERE username = $1`, username)
}

func (r *UserRepository) getBy(ctx context.Context, where string, arg any) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users `+where, arg)

	var user domain.User
	var style, skill string
	var interestsRaw, genresRaw, traitsRaw []byte

	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.FullName,
		&style, &skill, &interestsRaw, &genresRaw, &traitsRaw,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get user", fmt.Errorf("%v", arg))
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if err := json.Unmarshal(interestsRaw, &user.Interests); err != nil {
		return nil, fmt.Errorf("unmarshal interests: %w", err)
	}
	if err := json.Unmarshal(genresRaw, &user.PreferredGenres); err != nil {
		return nil, fmt.Errorf("unmarshal preferred genres: %w", err)
	}
	if err := json.Unmarshal(traitsRaw, &user.Traits); err != nil {
		return nil, fmt.Errorf("unmarshal traits: %w", err)
	}
	user.LearningStyle = domain.LearningStyle(style)
	user.SkillLevel = domain.SkillLevel(skill)
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	interestsJSON, genresJSON, traitsJSON, err := marshalUserJSON(user)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE users
SET email = $2, full_name = $3, learning_style = $4, skill_level = $5,
    interests = $6, preferred_genres = $7, traits = $8, updated_at = $9
WHERE id = $1
`,
		user.ID, user.Email, user.FullName, string(user.LearningStyle), string(user.SkillLevel),
		interestsJSON, genresJSON, traitsJSON, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateTraits(ctx context.Context, id string, traits domain.PersonalityTraits) error {
	traitsJSON, err := json.Marshal(traits)
	if err != nil {
		return fmt.Errorf("marshal traits: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE users
SET traits = $2, updated_at = $3
WHERE id = $1
`, id, traitsJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update traits: %w", err)
	}
	return nil
}

func marshalUserJSON(user *domain.User) (interests, genres, traits []byte, err error) {
	interests, err = json.Marshal(orEmptyStrings(user.Interests))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal interests: %w", err)
	}
	genres, err = json.Marshal(orEmptyStrings(user.PreferredGenres))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal preferred genres: %w", err)
	}
	traits, err = json.Marshal(user.Traits)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal traits: %w", err)
	}
	return interests, genres, traits, nil
}
