package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	conversation JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	last_activity TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
`
	return ensureSchema(ctx, r.db, 2026083104, ddl)
}

func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	conversation := session.Conversation
	if conversation == nil {
		conversation = []domain.Message{}
	}
	conversationJSON, err := json.Marshal(conversation)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO sessions (token, user_id, conversation, created_at, last_activity, expires_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (token) DO UPDATE
SET conversation = EXCLUDED.conversation, last_activity = EXCLUDED.last_activity, expires_at = EXCLUDED.expires_at
`,
		session.Token, session.UserID, conversationJSON,
		session.CreatedAt, session.LastActivity, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, token string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT token, user_id, conversation, created_at, last_activity, expires_at
FROM sessions
WHERE token = $1
`, token)

	var session domain.Session
	var conversationRaw []byte
	err := row.Scan(&session.Token, &session.UserID, &conversationRaw,
		&session.CreatedAt, &session.LastActivity, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get session", fmt.Errorf("token %s", token))
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	if err := json.Unmarshal(conversationRaw, &session.Conversation); err != nil {
		return nil, fmt.Errorf("unmarshal conversation: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired clears old rows; the worker runs it periodically.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count expired sessions: %w", err)
	}
	return affected, nil
}
