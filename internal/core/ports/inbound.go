package ports

import (
	"context"
	"io"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, userID, filename string, size int64, body io.Reader) (*domain.Document, error)
	Delete(ctx context.Context, userID, documentID string) error
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, userID, documentID string) (*domain.Document, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Document, error)
	ListChunks(ctx context.Context, userID, documentID string) ([]domain.Chunk, error)
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// StoryDirector orchestrates story generation and retrieval.
type StoryDirector interface {
	Generate(ctx context.Context, req GenerateStoryRequest) (*domain.Story, error)
	GetByID(ctx context.Context, userID, storyID string) (*domain.Story, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Story, error)
	Delete(ctx context.Context, userID, storyID string) error
}

// GenerateStoryRequest carries the caller's generation parameters.
type GenerateStoryRequest struct {
	UserID         string
	DocumentID     string
	PreferredGenre string
}

// ProgressTracker records and reads per-story learning progress.
type ProgressTracker interface {
	Get(ctx context.Context, userID, storyID string) (*domain.Progress, error)
	RecordDecision(ctx context.Context, req DecisionRequest) (*domain.Progress, error)
	SubmitKnowledgeCheck(ctx context.Context, req KnowledgeCheckRequest) (*KnowledgeCheckOutcome, error)
	AddSessionTime(ctx context.Context, userID, storyID string, seconds int64) (*domain.Progress, error)
}

type DecisionRequest struct {
	UserID          string
	StoryID         string
	DecisionPointID string
	SelectedOption  int
	Reasoning       string
}

type KnowledgeCheckRequest struct {
	UserID         string
	StoryID        string
	QuestionID     string
	SelectedAnswer int
	Confidence     *int
}

// KnowledgeCheckOutcome is the immediate feedback for one answer.
type KnowledgeCheckOutcome struct {
	Correct     bool
	Feedback    string
	Explanation string
	Progress    *domain.Progress
}

// ProfileService manages user accounts, traits and sessions.
type ProfileService interface {
	Create(ctx context.Context, req CreateUserRequest) (*domain.User, error)
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, req UpdateUserRequest) (*domain.User, error)
	UpdateTraits(ctx context.Context, userID string, traits map[string]any, source string) (*domain.User, error)
	PersonalityProfile(ctx context.Context, userID string) (*PersonalityProfile, error)
	CreateSession(ctx context.Context, userID string) (*domain.Session, error)
	GetSession(ctx context.Context, token string) (*domain.Session, error)
}

type CreateUserRequest struct {
	Username        string
	Email           string
	Password        string
	FullName        string
	LearningStyle   domain.LearningStyle
	SkillLevel      domain.SkillLevel
	Interests       []string
	PreferredGenres []string
}

// UpdateUserRequest carries optional profile changes; nil fields are
// left untouched.
type UpdateUserRequest struct {
	FullName        *string
	LearningStyle   *domain.LearningStyle
	SkillLevel      *domain.SkillLevel
	Interests       []string
	PreferredGenres []string
}

// PersonalityProfile is the derived view of a user's traits.
// Completeness is the share of profile sections the user has filled in,
// from 0 to 1.
type PersonalityProfile struct {
	UserID       string               `json:"user_id"`
	Traits       map[string]any       `json:"active_traits"`
	History      []domain.TraitUpdate `json:"update_history"`
	Archetype    string               `json:"suggested_archetype"`
	Completeness float64              `json:"profile_completeness"`
}

// ChatResponder produces contextual chat replies.
type ChatResponder interface {
	Respond(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error)
	History(ctx context.Context, token string) ([]domain.Message, error)
	Suggestions(ctx context.Context, token, storyID string, chatContext domain.ChatContext) ([]string, error)
}
