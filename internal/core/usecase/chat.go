package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
	"github.com/minerva-learning/minerva-backend/internal/core/ports"
)

const conversationWindow = 10

type ChatUseCase struct {
	generator ports.ChatGenerator
	stories   ports.StoryRepository
	progress  ports.ProgressRepository
	users     ports.UserRepository
	sessions  ports.SessionRepository
	cache     ports.SessionCache
}

func NewChatUseCase(
	generator ports.ChatGenerator,
	stories ports.StoryRepository,
	progress ports.ProgressRepository,
	users ports.UserRepository,
	sessions ports.SessionRepository,
	cache ports.SessionCache,
) *ChatUseCase {
	return &ChatUseCase{
		generator: generator,
		stories:   stories,
		progress:  progress,
		users:     users,
		sessions:  sessions,
		cache:     cache,
	}
}

func (uc *ChatUseCase) Respond(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat", errors.New("empty message"))
	}

	system, suggestions, err := uc.buildPersona(ctx, req)
	if err != nil {
		return nil, err
	}

	history, session, err := uc.loadConversation(ctx, req.SessionToken)
	if err != nil {
		return nil, err
	}

	answer, err := uc.generator.Reply(ctx, system, history, req.Message)
	if err != nil {
		return nil, fmt.Errorf("generate chat reply: %w", err)
	}

	now := time.Now().UTC()
	reply := &domain.ChatReply{
		Message:     answer,
		Type:        classifyReply(req.Context, answer),
		Suggestions: suggestions,
		Timestamp:   now,
	}
	if req.Context == domain.ChatContextStory {
		if progress, err := uc.progress.Get(ctx, req.UserID, req.StoryID); err == nil {
			reply.Progress = progress
		}
	}

	if session != nil {
		if err := uc.appendTurn(ctx, session, req.Message, answer, now); err != nil {
			return nil, err
		}
	}
	return reply, nil
}

func (uc *ChatUseCase) History(ctx context.Context, token string) ([]domain.Message, error) {
	session, err := uc.getSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return session.Conversation, nil
}

// Suggestions returns the context-specific prompts a client can offer
// the user before they type anything.
func (uc *ChatUseCase) Suggestions(ctx context.Context, token, storyID string, chatContext domain.ChatContext) ([]string, error) {
	session, err := uc.getSession(ctx, token)
	if err != nil {
		return nil, err
	}
	_, suggestions, err := uc.buildPersona(ctx, domain.ChatRequest{
		UserID:  session.UserID,
		StoryID: storyID,
		Context: chatContext,
	})
	if err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (uc *ChatUseCase) buildPersona(ctx context.Context, req domain.ChatRequest) (string, []string, error) {
	user, err := uc.users.GetByID(ctx, req.UserID)
	if err != nil {
		return "", nil, fmt.Errorf("fetch user by id: %w", err)
	}

	switch req.Context {
	case domain.ChatContextStory:
		story, err := uc.stories.GetByID(ctx, req.StoryID)
		if err != nil {
			return "", nil, fmt.Errorf("fetch story by id: %w", err)
		}
		if story.UserID != req.UserID {
			return "", nil, domain.WrapError(domain.ErrForbidden, "chat",
				fmt.Errorf("story %s does not belong to user %s", req.StoryID, req.UserID))
		}
		return uc.storyPersona(ctx, story, user), storySuggestions(story), nil
	case domain.ChatContextLearning:
		return "You are Minerva, a patient learning coach. Explain concepts clearly, " +
				"use analogies, and check understanding with short follow-up questions. " + profileSummary(user),
			[]string{"Explain this concept differently", "Give me an example", "Quiz me on this"}, nil
	default:
		return "You are Minerva, a friendly assistant for a story-based learning platform. " +
				"Help users upload documents, generate stories and track their progress. " + profileSummary(user),
			[]string{"How do I upload a document?", "Create a story from my document", "Show my progress"}, nil
	}
}

func (uc *ChatUseCase) storyPersona(ctx context.Context, story *domain.Story, user *domain.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the narrator of %q, an interactive learning story. ", story.Title)
	fmt.Fprintf(&b, "Setting: %s. Central conflict: %s. ", story.Setting, story.CentralConflict)
	if progress, err := uc.progress.Get(ctx, user.ID, story.ID); err == nil && progress.CurrentPhase < len(story.Phases) {
		phase := story.Phases[progress.CurrentPhase]
		fmt.Fprintf(&b, "The learner is in the %q phase working toward: %s. ", phase.Name, phase.LearningGoal)
	}
	b.WriteString(profileSummary(user))
	b.WriteString(" Stay in character, weave the learning concepts into the narrative, " +
		"and never reveal correct answers to pending knowledge checks.")
	return b.String()
}

// profileSummary folds the learner's profile into a persona so replies
// match their style, level and known traits.
func profileSummary(user *domain.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The learner prefers a %s learning style at %s skill level.", user.LearningStyle, user.SkillLevel)
	if len(user.Traits.Active) > 0 {
		names := make([]string, 0, len(user.Traits.Active))
		for name := range user.Traits.Active {
			names = append(names, name)
		}
		sort.Strings(names)
		pairs := make([]string, 0, len(names))
		for _, name := range names {
			pairs = append(pairs, fmt.Sprintf("%s: %v", name, user.Traits.Active[name]))
		}
		fmt.Fprintf(&b, " Known personality traits: %s.", strings.Join(pairs, ", "))
	}
	return b.String()
}

func storySuggestions(story *domain.Story) []string {
	return []string{
		"What should I do next?",
		fmt.Sprintf("Remind me what happened in %q", story.Title),
		"Give me a hint without spoiling the answer",
	}
}

// classifyReply is a heuristic decoration for clients; it never alters
// the reply itself.
func classifyReply(chatContext domain.ChatContext, answer string) domain.ResponseType {
	lower := strings.ToLower(answer)
	switch {
	case chatContext == domain.ChatContextStory:
		return domain.ResponseTypeNarration
	case strings.Contains(lower, "hint") || strings.Contains(lower, "clue"):
		return domain.ResponseTypeHint
	case strings.Contains(lower, "great job") || strings.Contains(lower, "well done") ||
		strings.Contains(lower, "keep going"):
		return domain.ResponseTypeEncouragement
	default:
		return domain.ResponseTypeAnswer
	}
}

func (uc *ChatUseCase) loadConversation(ctx context.Context, token string) ([]domain.Message, *domain.Session, error) {
	if token == "" {
		return nil, nil, nil
	}
	session, err := uc.getSession(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	history := session.Conversation
	if len(history) > conversationWindow {
		history = history[len(history)-conversationWindow:]
	}
	return history, session, nil
}

func (uc *ChatUseCase) getSession(ctx context.Context, token string) (*domain.Session, error) {
	now := time.Now().UTC()
	if session, err := uc.cache.Get(ctx, token); err == nil && session != nil && !session.Expired(now) {
		return session, nil
	}
	session, err := uc.sessions.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}
	if session.Expired(now) {
		return nil, domain.WrapError(domain.ErrUnauthorized, "chat", errors.New("session expired"))
	}
	return session, nil
}

func (uc *ChatUseCase) appendTurn(ctx context.Context, session *domain.Session, userMessage, answer string, now time.Time) error {
	session.Conversation = append(session.Conversation,
		domain.Message{Role: "user", Content: userMessage, Timestamp: now},
		domain.Message{Role: "assistant", Content: answer, Timestamp: now},
	)
	session.LastActivity = now
	if err := uc.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("persist conversation: %w", err)
	}
	if ttl := time.Until(session.ExpiresAt); ttl > 0 {
		if err := uc.cache.Put(ctx, session, ttl); err != nil {
			return fmt.Errorf("cache conversation: %w", err)
		}
	}
	return nil
}
