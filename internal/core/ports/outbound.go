package ports

import (
	"context"
	"io"
	"time"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveAnalysis(ctx context.Context, id string, analysis domain.ContentAnalysis) error
	Delete(ctx context.Context, id string) error
}

// ChunkRepository persists the analyzed chunks of a document.
type ChunkRepository interface {
	ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error
	ListChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes document processing events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from an uploaded file.
type TextExtractor interface {
	Extract(ctx context.Context, fileType domain.FileType, r io.Reader) (string, error)
}

// ContentAnalyzer cleans, chunks and analyzes extracted text.
type ContentAnalyzer interface {
	Analyze(ctx context.Context, text string) (*domain.ContentAnalysis, error)
}

// StoryGenerator creates a full story from analyzed content.
type StoryGenerator interface {
	Generate(ctx context.Context, doc *domain.Document, user *domain.User,
		framework domain.NarrativeFramework, character domain.UserCharacter) (*domain.Story, error)
}

// ChatGenerator produces a single assistant reply.
type ChatGenerator interface {
	Reply(ctx context.Context, system string, history []domain.Message, userMessage string) (string, error)
}

// UserRepository persists user accounts and traits.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateTraits(ctx context.Context, id string, traits domain.PersonalityTraits) error
}

// SessionRepository is the durable session store.
type SessionRepository interface {
	Save(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

// SessionCache is the fast-path session store in front of the repository.
type SessionCache interface {
	Put(ctx context.Context, session *domain.Session, ttl time.Duration) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

// StoryRepository persists generated stories.
type StoryRepository interface {
	Create(ctx context.Context, story *domain.Story) error
	GetByID(ctx context.Context, id string) (*domain.Story, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Story, error)
	UpdatePhases(ctx context.Context, id string, phases []domain.Phase) error
	Delete(ctx context.Context, id string) error
}

// ProgressRepository persists per-user story progress.
type ProgressRepository interface {
	Get(ctx context.Context, userID, storyID string) (*domain.Progress, error)
	Upsert(ctx context.Context, progress *domain.Progress) error
}
