package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
)

type storyPayload struct {
	Title           string         `json:"title"`
	Synopsis        string         `json:"synopsis"`
	Setting         string         `json:"setting"`
	CentralConflict string         `json:"central_conflict"`
	LearningArc     string         `json:"learning_arc"`
	Phases          []phasePayload `json:"phases"`
}

type phasePayload struct {
	PhaseName       string `json:"phase_name"`
	PhaseTitle      string `json:"phase_title"`
	Narrative       string `json:"narrative"`
	LearningGoal    string `json:"learning_objective"`
	StoryGoal       string `json:"story_objective"`
	KeyConcepts     []string          `json:"key_concepts"`
	KeyMoments      []string          `json:"key_moments"`
	Challenges      []string          `json:"challenges"`
	Outcomes        []string          `json:"outcomes"`
	DecisionPoints  []decisionPayload `json:"decision_points"`
	KnowledgeChecks []checkPayload    `json:"knowledge_checks"`
}

type decisionPayload struct {
	Prompt  string `json:"prompt"`
	Options []struct {
		Text    string `json:"text"`
		Outcome string `json:"outcome"`
	} `json:"options"`
	Impact string `json:"impact"`
}

type checkPayload struct {
	Concept         string   `json:"concept"`
	Prompt          string   `json:"prompt"`
	Options         []string `json:"options"`
	CorrectIndex    int      `json:"correct_index"`
	Explanation     string   `json:"explanation"`
	FeedbackSuccess string   `json:"feedback_success"`
	FeedbackRetry   string   `json:"feedback_retry"`
}

// parseStoryJSON maps model output onto the domain story, minting
// stable ids for decision points and knowledge checks so later progress
// submissions can reference them. Phases the model returned without
// interactive elements get synthesized ones seeded from the key
// concepts, so every persisted story is playable.
func parseStoryJSON(raw string, framework domain.NarrativeFramework, concepts []string) (*domain.Story, error) {
	var payload storyPayload
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &payload); err != nil {
		return nil, domain.WrapError(domain.ErrGeneration, "parse story json", err)
	}
	if payload.Title == "" {
		return nil, domain.WrapError(domain.ErrGeneration, "parse story json", fmt.Errorf("missing title"))
	}

	story := &domain.Story{
		Title:           payload.Title,
		Synopsis:        payload.Synopsis,
		Setting:         payload.Setting,
		CentralConflict: payload.CentralConflict,
		LearningArc:     payload.LearningArc,
		Framework:       framework.Key,
		Phases:          make([]domain.Phase, 0, len(payload.Phases)),
	}

	for i, p := range payload.Phases {
		phase := domain.Phase{
			Name:         phaseName(p.PhaseName, framework, i),
			Title:        p.PhaseTitle,
			Narrative:    p.Narrative,
			LearningGoal: p.LearningGoal,
			StoryGoal:    p.StoryGoal,
			KeyConcepts:  p.KeyConcepts,
			KeyMoments:   p.KeyMoments,
			Challenges:   p.Challenges,
			Outcomes:     p.Outcomes,
		}
		for _, dp := range p.DecisionPoints {
			options := make([]domain.DecisionOption, 0, len(dp.Options))
			for _, opt := range dp.Options {
				options = append(options, domain.DecisionOption{Text: opt.Text, Outcome: opt.Outcome})
			}
			phase.DecisionPoints = append(phase.DecisionPoints, domain.DecisionPoint{
				ID:      uuid.NewString(),
				Prompt:  dp.Prompt,
				Options: options,
				Impact:  dp.Impact,
			})
		}
		for _, kc := range p.KnowledgeChecks {
			phase.KnowledgeChecks = append(phase.KnowledgeChecks, domain.KnowledgeCheck{
				ID:              uuid.NewString(),
				Concept:         kc.Concept,
				Prompt:          kc.Prompt,
				Options:         kc.Options,
				CorrectIndex:    kc.CorrectIndex,
				Explanation:     kc.Explanation,
				FeedbackSuccess: kc.FeedbackSuccess,
				FeedbackRetry:   kc.FeedbackRetry,
			})
		}
		story.Phases = append(story.Phases, phase)
	}
	fillInteractiveElements(story, concepts)
	return story, nil
}

// fillInteractiveElements backfills decision points and knowledge
// checks for phases the model left bare. The last phase of a
// multi-phase story carries no decision point: there is nothing left
// to branch into.
func fillInteractiveElements(story *domain.Story, concepts []string) {
	for i := range story.Phases {
		phase := &story.Phases[i]
		if len(phase.DecisionPoints) == 0 && (len(story.Phases) == 1 || i < len(story.Phases)-1) {
			phase.DecisionPoints = append(phase.DecisionPoints, synthesizeDecisionPoint(phase))
		}
		if len(phase.KnowledgeChecks) == 0 {
			if kc, ok := synthesizeKnowledgeCheck(phase, concepts, i); ok {
				phase.KnowledgeChecks = append(phase.KnowledgeChecks, kc)
			}
		}
	}
}

func synthesizeDecisionPoint(phase *domain.Phase) domain.DecisionPoint {
	title := phase.Title
	if title == "" {
		title = strings.ReplaceAll(phase.Name, "_", " ")
	}
	return domain.DecisionPoint{
		ID:     uuid.NewString(),
		Prompt: fmt.Sprintf("How do you want to approach the challenge in %s?", title),
		Options: []domain.DecisionOption{
			{Text: "Take a methodical, step-by-step approach", Outcome: "detailed_analysis"},
			{Text: "Trust your instincts and act quickly", Outcome: "intuitive_action"},
			{Text: "Seek help and collaborate with others", Outcome: "collaborative_approach"},
		},
		Impact: "Affects how the next phase unfolds and what additional insights you gain",
	}
}

func synthesizeKnowledgeCheck(phase *domain.Phase, concepts []string, index int) (domain.KnowledgeCheck, bool) {
	concept := ""
	switch {
	case len(phase.KeyConcepts) > 0:
		concept = phase.KeyConcepts[0]
	case len(concepts) > 0:
		concept = concepts[index%len(concepts)]
	default:
		return domain.KnowledgeCheck{}, false
	}
	return domain.KnowledgeCheck{
		ID:      uuid.NewString(),
		Concept: concept,
		Prompt:  fmt.Sprintf("In the story, how does understanding %s help you progress?", concept),
		Options: []string{
			"It allows you to solve the main challenge",
			"It helps you understand other characters' motivations",
			"It reveals important background information",
			"It opens up new possibilities for action",
		},
		CorrectIndex:    0,
		Explanation:     fmt.Sprintf("Understanding %s is what unlocks the main challenge of this phase.", concept),
		FeedbackSuccess: fmt.Sprintf("Excellent! You've mastered how %s applies in this context.", concept),
		FeedbackRetry:   fmt.Sprintf("Not quite. Think about how %s specifically helps in this situation.", concept),
	}, true
}

func phaseName(name string, framework domain.NarrativeFramework, index int) string {
	if name != "" {
		return name
	}
	if index < len(framework.Phases) {
		return framework.Phases[index]
	}
	return fmt.Sprintf("phase_%d", index+1)
}

// extractJSONObject tolerates markdown fences and prose around the
// object the model was asked for.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
