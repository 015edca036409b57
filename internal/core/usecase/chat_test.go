package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
)

type chatFixture struct {
	uc        *ChatUseCase
	generator *fakeChatGenerator
	users     *memUserRepo
	stories   *memStoryRepo
	progress  *memProgressRepo
	sessions  *memSessionRepo
	cache     *memSessionCache
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	f := &chatFixture{
		generator: &fakeChatGenerator{reply: "Hello there."},
		users:     newMemUserRepo(),
		stories:   newMemStoryRepo(),
		progress:  newMemProgressRepo(),
		sessions:  newMemSessionRepo(),
		cache:     newMemSessionCache(),
	}
	f.uc = NewChatUseCase(f.generator, f.stories, f.progress, f.users, f.sessions, f.cache)

	for _, user := range []*domain.User{
		{
			ID:            "user-1",
			Username:      "ada",
			LearningStyle: domain.StyleVisual,
			SkillLevel:    domain.SkillIntermediate,
			Traits:        domain.PersonalityTraits{Active: map[string]any{"curiosity": "high"}},
		},
		{
			ID:            "user-2",
			Username:      "grace",
			LearningStyle: domain.StyleReading,
			SkillLevel:    domain.SkillBeginner,
		},
	} {
		if err := f.users.Create(context.Background(), user); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	return f
}

func (f *chatFixture) seedStory(t *testing.T, userID string) *domain.Story {
	t.Helper()
	story := validGeneratedStory()
	story.ID = "story-1"
	story.UserID = userID
	if err := f.stories.Create(context.Background(), story); err != nil {
		t.Fatalf("seed story: %v", err)
	}
	return story
}

func (f *chatFixture) seedSession(t *testing.T, token, userID string) {
	t.Helper()
	now := time.Now().UTC()
	if err := f.sessions.Save(context.Background(), &domain.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func TestChatGeneralContext(t *testing.T) {
	f := newChatFixture(t)

	reply, err := f.uc.Respond(context.Background(), domain.ChatRequest{
		UserID:  "user-1",
		Message: "how do I start?",
		Context: domain.ChatContextGeneral,
	})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if reply.Type != domain.ResponseTypeAnswer {
		t.Fatalf("expected answer type, got %s", reply.Type)
	}
	if len(reply.Suggestions) == 0 {
		t.Fatalf("expected suggestions")
	}
	if !strings.Contains(f.generator.system, "Minerva") {
		t.Fatalf("expected persona prompt, got %q", f.generator.system)
	}
}

func TestChatPersonaIncludesLearnerProfile(t *testing.T) {
	f := newChatFixture(t)

	if _, err := f.uc.Respond(context.Background(), domain.ChatRequest{
		UserID:  "user-1",
		Message: "how do I start?",
		Context: domain.ChatContextGeneral,
	}); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	for _, want := range []string{"curiosity", "visual", "intermediate"} {
		if !strings.Contains(f.generator.system, want) {
			t.Fatalf("expected %q in persona, got %q", want, f.generator.system)
		}
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.uc.Respond(context.Background(), domain.ChatRequest{
		UserID:  "user-1",
		Message: "   ",
	})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestChatStoryContextEnforcesOwnership(t *testing.T) {
	f := newChatFixture(t)
	f.seedStory(t, "user-1")

	_, err := f.uc.Respond(context.Background(), domain.ChatRequest{
		UserID:  "user-2",
		StoryID: "story-1",
		Message: "what next?",
		Context: domain.ChatContextStory,
	})
	if !domain.IsKind(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestChatStoryContextUsesNarratorPersona(t *testing.T) {
	f := newChatFixture(t)
	story := f.seedStory(t, "user-1")
	now := time.Now().UTC()
	if err := f.progress.Upsert(context.Background(), &domain.Progress{
		UserID:       "user-1",
		StoryID:      "story-1",
		CurrentPhase: 1,
		Concepts:     []string{"gravity"},
		LastAccessed: now,
		CreatedAt:    now,
	}); err != nil {
		t.Fatalf("seed progress: %v", err)
	}

	reply, err := f.uc.Respond(context.Background(), domain.ChatRequest{
		UserID:  "user-1",
		StoryID: "story-1",
		Message: "what next?",
		Context: domain.ChatContextStory,
	})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if reply.Type != domain.ResponseTypeNarration {
		t.Fatalf("expected narration type, got %s", reply.Type)
	}
	if !strings.Contains(f.generator.system, story.Title) {
		t.Fatalf("expected story title in persona, got %q", f.generator.system)
	}
	if !strings.Contains(f.generator.system, "curiosity") {
		t.Fatalf("expected learner traits in persona, got %q", f.generator.system)
	}
	if reply.Progress == nil || reply.Progress.CurrentPhase != 1 {
		t.Fatalf("expected progress snapshot on reply, got %+v", reply.Progress)
	}
}

func TestChatAppendsToSessionConversation(t *testing.T) {
	f := newChatFixture(t)
	f.seedSession(t, "tok-1", "user-1")

	if _, err := f.uc.Respond(context.Background(), domain.ChatRequest{
		UserID:       "user-1",
		SessionToken: "tok-1",
		Message:      "hi",
	}); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}

	history, err := f.uc.History(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected user and assistant turns, got %d", len(history))
	}
	if history[0].Role != "user" || history[1].Role != "assistant" {
		t.Fatalf("unexpected roles %s/%s", history[0].Role, history[1].Role)
	}
	if _, ok := f.cache.sessions["tok-1"]; !ok {
		t.Fatalf("expected updated session cached")
	}
}

func TestChatTrimsHistoryToRecentTurns(t *testing.T) {
	f := newChatFixture(t)
	now := time.Now().UTC()
	session := &domain.Session{
		Token:     "tok-1",
		UserID:    "user-1",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	for i := 0; i < conversationWindow; i++ {
		session.Conversation = append(session.Conversation,
			domain.Message{Role: "user", Content: "earlier question", Timestamp: now},
			domain.Message{Role: "assistant", Content: "earlier answer", Timestamp: now},
		)
	}
	if err := f.sessions.Save(context.Background(), session); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	if _, err := f.uc.Respond(context.Background(), domain.ChatRequest{
		UserID:       "user-1",
		SessionToken: "tok-1",
		Message:      "hi",
	}); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if len(f.generator.history) != conversationWindow {
		t.Fatalf("prompt history = %d messages, want %d", len(f.generator.history), conversationWindow)
	}
}

func TestChatExpiredSessionRejected(t *testing.T) {
	f := newChatFixture(t)
	now := time.Now().UTC()
	if err := f.sessions.Save(context.Background(), &domain.Session{
		Token:     "tok-1",
		UserID:    "user-1",
		CreatedAt: now.Add(-25 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	_, err := f.uc.Respond(context.Background(), domain.ChatRequest{
		UserID:       "user-1",
		SessionToken: "tok-1",
		Message:      "hi",
	})
	if !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestChatSuggestionsByContext(t *testing.T) {
	f := newChatFixture(t)
	f.seedSession(t, "tok-1", "user-1")

	general, err := f.uc.Suggestions(context.Background(), "tok-1", "", domain.ChatContextGeneral)
	if err != nil {
		t.Fatalf("Suggestions() error = %v", err)
	}
	if len(general) == 0 {
		t.Fatalf("expected general suggestions")
	}

	story := f.seedStory(t, "user-1")
	storySugg, err := f.uc.Suggestions(context.Background(), "tok-1", "story-1", domain.ChatContextStory)
	if err != nil {
		t.Fatalf("Suggestions() error = %v", err)
	}
	found := false
	for _, s := range storySugg {
		if strings.Contains(s, story.Title) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a story-specific suggestion, got %v", storySugg)
	}
}

func TestChatSuggestionsRequireValidSession(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.uc.Suggestions(context.Background(), "missing", "", domain.ChatContextGeneral)
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}
