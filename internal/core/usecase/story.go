package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
	"github.com/minerva-learning/minerva-backend/internal/core/ports"
)

type GenerateStoryUseCase struct {
	stories   ports.StoryRepository
	documents ports.DocumentRepository
	users     ports.UserRepository
	progress  ports.ProgressRepository
	generator ports.StoryGenerator
}

func NewGenerateStoryUseCase(
	stories ports.StoryRepository,
	documents ports.DocumentRepository,
	users ports.UserRepository,
	progress ports.ProgressRepository,
	generator ports.StoryGenerator,
) *GenerateStoryUseCase {
	return &GenerateStoryUseCase{
		stories:   stories,
		documents: documents,
		users:     users,
		progress:  progress,
		generator: generator,
	}
}

func (uc *GenerateStoryUseCase) Generate(ctx context.Context, req ports.GenerateStoryRequest) (*domain.Story, error) {
	doc, user, err := uc.loadInputs(ctx, req)
	if err != nil {
		return nil, err
	}

	genre := req.PreferredGenre
	if genre == "" && len(user.PreferredGenres) > 0 {
		genre = user.PreferredGenres[0]
	}
	framework := domain.SelectFramework(genre, user.SkillLevel)
	character := buildCharacter(user)

	story, err := uc.generator.Generate(ctx, doc, user, framework, character)
	if err != nil {
		return nil, fmt.Errorf("generate story: %w", err)
	}

	now := time.Now().UTC()
	story.ID = uuid.NewString()
	story.DocumentID = doc.ID
	story.UserID = user.ID
	story.Framework = framework.Key
	story.Character = character
	story.CreatedAt = now
	story.UpdatedAt = now

	if err := story.Validate(); err != nil {
		return nil, err
	}

	if err := uc.stories.Create(ctx, story); err != nil {
		return nil, fmt.Errorf("persist story: %w", err)
	}

	if err := uc.progress.Upsert(ctx, newProgress(user.ID, story.ID, now)); err != nil {
		return nil, fmt.Errorf("initialize progress: %w", err)
	}

	return story, nil
}

func (uc *GenerateStoryUseCase) loadInputs(ctx context.Context, req ports.GenerateStoryRequest) (*domain.Document, *domain.User, error) {
	doc, err := uc.documents.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch document by id: %w", err)
	}
	if doc.UserID != req.UserID {
		return nil, nil, domain.WrapError(domain.ErrForbidden, "generate story",
			fmt.Errorf("document %s does not belong to user %s", req.DocumentID, req.UserID))
	}
	if doc.Status != domain.StatusProcessed {
		return nil, nil, domain.WrapError(domain.ErrInvalidInput, "generate story",
			fmt.Errorf("document %s has status %q, want %q", doc.ID, doc.Status, domain.StatusProcessed))
	}

	user, err := uc.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch user by id: %w", err)
	}
	return doc, user, nil
}

func (uc *GenerateStoryUseCase) GetByID(ctx context.Context, userID, storyID string) (*domain.Story, error) {
	return uc.owned(ctx, userID, storyID)
}

func (uc *GenerateStoryUseCase) ListByUser(ctx context.Context, userID string) ([]domain.Story, error) {
	stories, err := uc.stories.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	return stories, nil
}

func (uc *GenerateStoryUseCase) Delete(ctx context.Context, userID, storyID string) error {
	if _, err := uc.owned(ctx, userID, storyID); err != nil {
		return err
	}
	if err := uc.stories.Delete(ctx, storyID); err != nil {
		return fmt.Errorf("delete story: %w", err)
	}
	return nil
}

func (uc *GenerateStoryUseCase) owned(ctx context.Context, userID, storyID string) (*domain.Story, error) {
	story, err := uc.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("fetch story by id: %w", err)
	}
	if story.UserID != userID {
		return nil, domain.WrapError(domain.ErrForbidden, "fetch story",
			fmt.Errorf("story %s does not belong to user %s", storyID, userID))
	}
	return story, nil
}

func buildCharacter(user *domain.User) domain.UserCharacter {
	archetype := domain.SelectArchetype(user.Traits.Active, user.Interests)
	name := user.FullName
	if name == "" {
		name = user.Username
	}
	return domain.UserCharacter{
		Name:       name,
		Archetype:  archetype.Key,
		Background: fmt.Sprintf("%s with a %s learning style", archetype.Name, user.LearningStyle),
		Skills:     archetype.Traits,
		Motivation: archetype.Motivation,
	}
}

func newProgress(userID, storyID string, now time.Time) *domain.Progress {
	return &domain.Progress{
		UserID:       userID,
		StoryID:      storyID,
		Concepts:     []string{},
		Decisions:    []domain.DecisionRecord{},
		CheckResults: []domain.KnowledgeCheckResult{},
		LastAccessed: now,
		CreatedAt:    now,
	}
}
