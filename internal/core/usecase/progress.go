package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
	"github.com/minerva-learning/minerva-backend/internal/core/ports"
)

// TrackProgressUseCase serializes all mutations for one story behind a
// per-story lock so concurrent submissions cannot interleave their
// read-modify-write cycles. Locks are reference counted and the map
// entry is dropped when the last holder releases it, so the map stays
// proportional to in-flight stories rather than all stories ever seen.
type TrackProgressUseCase struct {
	stories  ports.StoryRepository
	progress ports.ProgressRepository

	mu    sync.Mutex
	locks map[string]*storyLock
}

type storyLock struct {
	mu   sync.Mutex
	refs int
}

func NewTrackProgressUseCase(stories ports.StoryRepository, progress ports.ProgressRepository) *TrackProgressUseCase {
	return &TrackProgressUseCase{
		stories:  stories,
		progress: progress,
		locks:    make(map[string]*storyLock),
	}
}

func (uc *TrackProgressUseCase) lockStory(storyID string) *storyLock {
	uc.mu.Lock()
	lock, ok := uc.locks[storyID]
	if !ok {
		lock = &storyLock{}
		uc.locks[storyID] = lock
	}
	lock.refs++
	uc.mu.Unlock()

	lock.mu.Lock()
	return lock
}

func (uc *TrackProgressUseCase) unlockStory(storyID string, lock *storyLock) {
	lock.mu.Unlock()

	uc.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(uc.locks, storyID)
	}
	uc.mu.Unlock()
}

func (uc *TrackProgressUseCase) Get(ctx context.Context, userID, storyID string) (*domain.Progress, error) {
	if _, err := uc.ownedStory(ctx, userID, storyID); err != nil {
		return nil, err
	}
	progress, err := uc.progress.Get(ctx, userID, storyID)
	if err != nil {
		return nil, fmt.Errorf("fetch progress: %w", err)
	}
	return progress, nil
}

func (uc *TrackProgressUseCase) RecordDecision(ctx context.Context, req ports.DecisionRequest) (*domain.Progress, error) {
	lock := uc.lockStory(req.StoryID)
	defer uc.unlockStory(req.StoryID, lock)

	story, err := uc.ownedStory(ctx, req.UserID, req.StoryID)
	if err != nil {
		return nil, err
	}
	phaseIndex, dp, ok := story.FindDecisionPoint(req.DecisionPointID)
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "record decision",
			fmt.Errorf("decision point %s not in story %s", req.DecisionPointID, req.StoryID))
	}
	if req.SelectedOption < 0 || req.SelectedOption >= len(dp.Options) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "record decision",
			fmt.Errorf("option %d out of %d", req.SelectedOption, len(dp.Options)))
	}

	now := time.Now().UTC()
	selected := req.SelectedOption
	dp.SelectedOption = &selected
	dp.Reasoning = req.Reasoning
	if err := uc.stories.UpdatePhases(ctx, story.ID, story.Phases); err != nil {
		return nil, fmt.Errorf("persist decision in story: %w", err)
	}

	progress, err := uc.progress.Get(ctx, req.UserID, req.StoryID)
	if err != nil {
		return nil, fmt.Errorf("fetch progress: %w", err)
	}
	progress.Decisions = append(progress.Decisions, domain.DecisionRecord{
		DecisionPointID: req.DecisionPointID,
		PhaseIndex:      phaseIndex,
		SelectedOption:  req.SelectedOption,
		OptionText:      dp.Options[req.SelectedOption].Text,
		Outcome:         dp.Options[req.SelectedOption].Outcome,
		Reasoning:       req.Reasoning,
		Timestamp:       now,
	})

	// A decision concludes its phase and moves the learner forward.
	if next := phaseIndex + 1; next > progress.CurrentPhase {
		progress.CurrentPhase = min(next, len(story.Phases))
	}
	progress.RecomputeCompletion(len(story.Phases))
	progress.LastAccessed = now

	if err := uc.progress.Upsert(ctx, progress); err != nil {
		return nil, fmt.Errorf("persist progress: %w", err)
	}
	return progress, nil
}

func (uc *TrackProgressUseCase) SubmitKnowledgeCheck(ctx context.Context, req ports.KnowledgeCheckRequest) (*ports.KnowledgeCheckOutcome, error) {
	lock := uc.lockStory(req.StoryID)
	defer uc.unlockStory(req.StoryID, lock)

	story, err := uc.ownedStory(ctx, req.UserID, req.StoryID)
	if err != nil {
		return nil, err
	}
	_, kc, ok := story.FindKnowledgeCheck(req.QuestionID)
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "submit knowledge check",
			fmt.Errorf("question %s not in story %s", req.QuestionID, req.StoryID))
	}
	if req.SelectedAnswer < 0 || req.SelectedAnswer >= len(kc.Options) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit knowledge check",
			fmt.Errorf("answer %d out of %d", req.SelectedAnswer, len(kc.Options)))
	}

	now := time.Now().UTC()
	correct := req.SelectedAnswer == kc.CorrectIndex

	progress, err := uc.progress.Get(ctx, req.UserID, req.StoryID)
	if err != nil {
		return nil, fmt.Errorf("fetch progress: %w", err)
	}
	progress.CheckResults = append(progress.CheckResults, domain.KnowledgeCheckResult{
		QuestionID:     req.QuestionID,
		Concept:        kc.Concept,
		SelectedAnswer: req.SelectedAnswer,
		CorrectAnswer:  kc.CorrectIndex,
		Correct:        correct,
		Confidence:     req.Confidence,
		Timestamp:      now,
	})
	if correct {
		progress.LearnConcept(kc.Concept)
	}
	progress.LastAccessed = now

	if err := uc.progress.Upsert(ctx, progress); err != nil {
		return nil, fmt.Errorf("persist progress: %w", err)
	}

	feedback := kc.FeedbackSuccess
	if !correct {
		feedback = kc.FeedbackRetry
	}
	return &ports.KnowledgeCheckOutcome{
		Correct:     correct,
		Feedback:    feedback,
		Explanation: kc.Explanation,
		Progress:    progress,
	}, nil
}

func (uc *TrackProgressUseCase) AddSessionTime(ctx context.Context, userID, storyID string, seconds int64) (*domain.Progress, error) {
	if seconds <= 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "add session time",
			fmt.Errorf("non-positive duration %d", seconds))
	}

	lock := uc.lockStory(storyID)
	defer uc.unlockStory(storyID, lock)

	if _, err := uc.ownedStory(ctx, userID, storyID); err != nil {
		return nil, err
	}
	progress, err := uc.progress.Get(ctx, userID, storyID)
	if err != nil {
		return nil, fmt.Errorf("fetch progress: %w", err)
	}
	progress.Engagement.AddSessionTime(seconds)
	progress.LastAccessed = time.Now().UTC()

	if err := uc.progress.Upsert(ctx, progress); err != nil {
		return nil, fmt.Errorf("persist progress: %w", err)
	}
	return progress, nil
}

func (uc *TrackProgressUseCase) ownedStory(ctx context.Context, userID, storyID string) (*domain.Story, error) {
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
