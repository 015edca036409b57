package httpadapter

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
	"github.com/minerva-learning/minerva-backend/internal/core/ports"
)

type ingestorFake struct {
	err error
	doc *domain.Document
}

func (f ingestorFake) Upload(_ context.Context, userID, filename string, _ int64, body io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, err := io.ReadAll(body); err != nil {
		return nil, err
	}
	if f.doc != nil {
		return f.doc, nil
	}
	now := time.Now().UTC()
	return &domain.Document{
		ID:               "doc-1",
		UserID:           userID,
		Filename:         "doc-1_" + filename,
		OriginalFilename: filename,
		FileType:         domain.FileTypeTXT,
		Status:           domain.StatusUploaded,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func (f ingestorFake) Delete(context.Context, string, string) error {
	return f.err
}

type readerFake struct {
	err    error
	doc    *domain.Document
	chunks []domain.Chunk
}

func (f readerFake) GetByID(context.Context, string, string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

func (f readerFake) ListByUser(context.Context, string) ([]domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.doc == nil {
		return []domain.Document{}, nil
	}
	return []domain.Document{*f.doc}, nil
}

func (f readerFake) ListChunks(context.Context, string, string) ([]domain.Chunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

type directorFake struct {
	err   error
	story *domain.Story
}

func (f directorFake) Generate(context.Context, ports.GenerateStoryRequest) (*domain.Story, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.story, nil
}

func (f directorFake) GetByID(context.Context, string, string) (*domain.Story, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.story, nil
}

func (f directorFake) ListByUser(context.Context, string) ([]domain.Story, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.story == nil {
		return []domain.Story{}, nil
	}
	return []domain.Story{*f.story}, nil
}

func (f directorFake) Delete(context.Context, string, string) error {
	return f.err
}

type trackerFake struct {
	err      error
	progress *domain.Progress
	outcome  *ports.KnowledgeCheckOutcome

	lastDecision ports.DecisionRequest
	lastSeconds  int64
}

func (f *trackerFake) Get(context.Context, string, string) (*domain.Progress, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.progress, nil
}

func (f *trackerFake) RecordDecision(_ context.Context, req ports.DecisionRequest) (*domain.Progress, error) {
	f.lastDecision = req
	if f.err != nil {
		return nil, f.err
	}
	return f.progress, nil
}

func (f *trackerFake) SubmitKnowledgeCheck(context.Context, ports.KnowledgeCheckRequest) (*ports.KnowledgeCheckOutcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.outcome, nil
}

func (f *trackerFake) AddSessionTime(_ context.Context, _, _ string, seconds int64) (*domain.Progress, error) {
	f.lastSeconds = seconds
	if f.err != nil {
		return nil, f.err
	}
	return f.progress, nil
}

type profilesFake struct {
	err     error
	user    *domain.User
	session *domain.Session
	profile *ports.PersonalityProfile
}

func (f profilesFake) Create(context.Context, ports.CreateUserRequest) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f profilesFake) GetByID(context.Context, string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f profilesFake) Update(context.Context, string, ports.UpdateUserRequest) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f profilesFake) UpdateTraits(context.Context, string, map[string]any, string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f profilesFake) PersonalityProfile(context.Context, string) (*ports.PersonalityProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func (f profilesFake) CreateSession(context.Context, string) (*domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f profilesFake) GetSession(context.Context, string) (*domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

type chatFake struct {
	err         error
	reply       *domain.ChatReply
	messages    []domain.Message
	suggestions []string

	lastRequest domain.ChatRequest
}

func (f *chatFake) Respond(_ context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func (f *chatFake) History(context.Context, string) ([]domain.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.messages, nil
}

func (f *chatFake) Suggestions(context.Context, string, string, domain.ChatContext) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.suggestions, nil
}

type routerFakes struct {
	ingestor ports.DocumentIngestor
	reader   ports.DocumentReader
	stories  ports.StoryDirector
	tracker  ports.ProgressTracker
	profiles ports.ProfileService
	chat     ports.ChatResponder
	opts     RouterOptions
}

func newTestHandler(fakes routerFakes) http.Handler {
	if fakes.ingestor == nil {
		fakes.ingestor = ingestorFake{}
	}
	if fakes.reader == nil {
		fakes.reader = readerFake{}
	}
	if fakes.stories == nil {
		fakes.stories = directorFake{}
	}
	if fakes.tracker == nil {
		fakes.tracker = &trackerFake{}
	}
	if fakes.profiles == nil {
		fakes.profiles = profilesFake{}
	}
	if fakes.chat == nil {
		fakes.chat = &chatFake{}
	}
	return NewRouter(
		fakes.ingestor,
		fakes.reader,
		fakes.stories,
		fakes.tracker,
		fakes.profiles,
		fakes.chat,
		fakes.opts,
	).Handler()
}
