package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
	"github.com/minerva-learning/minerva-backend/internal/core/ports"
)

type memDocumentRepo struct {
	docs map[string]*domain.Document
	err  error
}

func newMemDocumentRepo() *memDocumentRepo {
	return &memDocumentRepo{docs: make(map[string]*domain.Document)}
}

func (f *memDocumentRepo) Create(_ context.Context, doc *domain.Document) error {
	if f.err != nil {
		return f.err
	}
	copyDoc := *doc
	f.docs[doc.ID] = &copyDoc
	return nil
}

func (f *memDocumentRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("id %s", id))
	}
	copyDoc := *doc
	return &copyDoc, nil
}

func (f *memDocumentRepo) ListByUser(_ context.Context, userID string) ([]domain.Document, error) {
	var out []domain.Document
	for _, doc := range f.docs {
		if doc.UserID == userID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (f *memDocumentRepo) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	doc, ok := f.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "update status", fmt.Errorf("id %s", id))
	}
	doc.Status = status
	doc.Error = errMessage
	return nil
}

func (f *memDocumentRepo) SaveAnalysis(_ context.Context, id string, analysis domain.ContentAnalysis) error {
	doc, ok := f.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "save analysis", fmt.Errorf("id %s", id))
	}
	doc.ExtractedText = analysis.CleanedText
	doc.KeyConcepts = analysis.KeyConcepts
	doc.LearningGoals = analysis.LearningGoals
	doc.Difficulty = analysis.Difficulty
	doc.ReadingMinutes = analysis.ReadingMinutes
	return nil
}

func (f *memDocumentRepo) Delete(_ context.Context, id string) error {
	delete(f.docs, id)
	return nil
}

type memChunkRepo struct {
	chunks map[string][]domain.Chunk
}

func newMemChunkRepo() *memChunkRepo {
	return &memChunkRepo{chunks: make(map[string][]domain.Chunk)}
}

func (f *memChunkRepo) ReplaceChunks(_ context.Context, documentID string, chunks []domain.Chunk) error {
	f.chunks[documentID] = chunks
	return nil
}

func (f *memChunkRepo) ListChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	return f.chunks[documentID], nil
}

type memStorage struct {
	files   map[string][]byte
	saveErr error
}

func newMemStorage() *memStorage {
	return &memStorage{files: make(map[string][]byte)}
}

func (f *memStorage) Save(_ context.Context, key string, data io.Reader) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return 0, err
	}
	f.files[key] = raw
	return int64(len(raw)), nil
}

func (f *memStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.files[key]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "open file", fmt.Errorf("key %s", key))
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *memStorage) Remove(_ context.Context, key string) error {
	delete(f.files, key)
	return nil
}

type fakeQueue struct {
	published []string
	err       error
}

func (f *fakeQueue) PublishDocumentUploaded(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *fakeQueue) SubscribeDocumentUploaded(context.Context, func(context.Context, string) error) error {
	return nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(context.Context, domain.FileType, io.Reader) (string, error) {
	return f.text, f.err
}

type fakeAnalyzer struct {
	analysis *domain.ContentAnalysis
	err      error
}

func (f *fakeAnalyzer) Analyze(context.Context, string) (*domain.ContentAnalysis, error) {
	return f.analysis, f.err
}

type memUserRepo struct {
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (f *memUserRepo) Create(_ context.Context, user *domain.User) error {
	copyUser := *user
	f.users[user.ID] = &copyUser
	return nil
}

func (f *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get user", fmt.Errorf("id %s", id))
	}
	copyUser := *user
	return &copyUser, nil
}

func (f *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			copyUser := *user
			return &copyUser, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get user", fmt.Errorf("username %s", username))
}

func (f *memUserRepo) Update(_ context.Context, user *domain.User) error {
	copyUser := *user
	f.users[user.ID] = &copyUser
	return nil
}

func (f *memUserRepo) UpdateTraits(_ context.Context, id string, traits domain.PersonalityTraits) error {
	user, ok := f.users[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "update traits", fmt.Errorf("id %s", id))
	}
	user.Traits = traits
	return nil
}

type memSessionRepo struct {
	sessions map[string]*domain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (f *memSessionRepo) Save(_ context.Context, session *domain.Session) error {
	copySession := *session
	f.sessions[session.Token] = &copySession
	return nil
}

func (f *memSessionRepo) Get(_ context.Context, token string) (*domain.Session, error) {
	session, ok := f.sessions[token]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get session", fmt.Errorf("token %s", token))
	}
	copySession := *session
	return &copySession, nil
}

func (f *memSessionRepo) Delete(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

type memSessionCache struct {
	sessions map[string]*domain.Session
}

func newMemSessionCache() *memSessionCache {
	return &memSessionCache{sessions: make(map[string]*domain.Session)}
}

func (f *memSessionCache) Put(_ context.Context, session *domain.Session, _ time.Duration) error {
	copySession := *session
	f.sessions[session.Token] = &copySession
	return nil
}

func (f *memSessionCache) Get(_ context.Context, token string) (*domain.Session, error) {
	session, ok := f.sessions[token]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get cached session", fmt.Errorf("token %s", token))
	}
	copySession := *session
	return &copySession, nil
}

func (f *memSessionCache) Delete(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

type memStoryRepo struct {
	stories map[string]*domain.Story
}

func newMemStoryRepo() *memStoryRepo {
	return &memStoryRepo{stories: make(map[string]*domain.Story)}
}

func (f *memStoryRepo) Create(_ context.Context, story *domain.Story) error {
	copyStory := *story
	f.stories[story.ID] = &copyStory
	return nil
}

func (f *memStoryRepo) GetByID(_ context.Context, id string) (*domain.Story, error) {
	story, ok := f.stories[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get story", fmt.Errorf("id %s", id))
	}
	copyStory := *story
	return &copyStory, nil
}

func (f *memStoryRepo) ListByUser(_ context.Context, userID string) ([]domain.Story, error) {
	var out []domain.Story
	for _, story := range f.stories {
		if story.UserID == userID {
			out = append(out, *story)
		}
	}
	return out, nil
}

func (f *memStoryRepo) UpdatePhases(_ context.Context, id string, phases []domain.Phase) error {
	story, ok := f.stories[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "update phases", fmt.Errorf("id %s", id))
	}
	story.Phases = phases
	return nil
}

func (f *memStoryRepo) Delete(_ context.Context, id string) error {
	delete(f.stories, id)
	return nil
}

type memProgressRepo struct {
	records map[string]*domain.Progress
}

func newMemProgressRepo() *memProgressRepo {
	return &memProgressRepo{records: make(map[string]*domain.Progress)}
}

func progressKey(userID, storyID string) string {
	return userID + "/" + storyID
}

func (f *memProgressRepo) Get(_ context.Context, userID, storyID string) (*domain.Progress, error) {
	progress, ok := f.records[progressKey(userID, storyID)]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get progress", fmt.Errorf("story %s", storyID))
	}
	copyProgress := *progress
	return &copyProgress, nil
}

func (f *memProgressRepo) Upsert(_ context.Context, progress *domain.Progress) error {
	copyProgress := *progress
	f.records[progressKey(progress.UserID, progress.StoryID)] = &copyProgress
	return nil
}

type fakeStoryGenerator struct {
	story *domain.Story
	err   error
}

func (f *fakeStoryGenerator) Generate(_ context.Context, _ *domain.Document, _ *domain.User,
	_ domain.NarrativeFramework, _ domain.UserCharacter) (*domain.Story, error) {
	if f.err != nil {
		return nil, f.err
	}
	copyStory := *f.story
	return &copyStory, nil
}

type fakeChatGenerator struct {
	reply string
	err   error

	system  string
	history []domain.Message
	message string
}

func (f *fakeChatGenerator) Reply(_ context.Context, system string, history []domain.Message, userMessage string) (string, error) {
	f.system = system
	f.history = history
	f.message = userMessage
	return f.reply, f.err
}

var _ ports.DocumentRepository = (*memDocumentRepo)(nil)
var _ ports.ChunkRepository = (*memChunkRepo)(nil)
var _ ports.ObjectStorage = (*memStorage)(nil)
var _ ports.MessageQueue = (*fakeQueue)(nil)
var _ ports.TextExtractor = (*fakeExtractor)(nil)
var _ ports.ContentAnalyzer = (*fakeAnalyzer)(nil)
var _ ports.UserRepository = (*memUserRepo)(nil)
var _ ports.SessionRepository = (*memSessionRepo)(nil)
var _ ports.SessionCache = (*memSessionCache)(nil)
var _ ports.StoryRepository = (*memStoryRepo)(nil)
var _ ports.ProgressRepository = (*memProgressRepo)(nil)
var _ ports.StoryGenerator = (*fakeStoryGenerator)(nil)
var _ ports.ChatGenerator = (*fakeChatGenerator)(nil)
