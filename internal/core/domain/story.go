package domain

import (
	"errors"
	"fmt"
	"time"
)

type Story struct {
	ID              string        `json:"id"`
	DocumentID      string        `json:"document_id"`
	UserID          string        `json:"user_id"`
	Title           string        `json:"title"`
	Synopsis        string        `json:"synopsis"`
	Setting         string        `json:"setting"`
	CentralConflict string        `json:"central_conflict"`
	LearningArc     string        `json:"learning_arc"`
	Framework       FrameworkKey  `json:"framework"`
	Character       UserCharacter `json:"user_character"`
	Phases          []Phase       `json:"phases"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// UserCharacter is the caller's in-story persona.
type UserCharacter struct {
	Name       string   `json:"name"`
	Archetype  string   `json:"archetype"`
	Background string   `json:"background"`
	Skills     []string `json:"skills"`
	Motivation string   `json:"motivation"`
}

type Phase struct {
	Name            string           `json:"phase_name"`
	Title           string           `json:"phase_title"`
	Narrative       string           `json:"narrative"`
	LearningGoal    string           `json:"learning_objective"`
	StoryGoal       string           `json:"story_objective,omitempty"`
	KeyConcepts     []string         `json:"key_concepts"`
	KeyMoments      []string         `json:"key_moments,omitempty"`
	Checkpoints     []Checkpoint     `json:"learning_checkpoints,omitempty"`
	Challenges      []string         `json:"challenges,omitempty"`
	Outcomes        []string         `json:"outcomes,omitempty"`
	DecisionPoints  []DecisionPoint  `json:"decision_points"`
	KnowledgeChecks []KnowledgeCheck `json:"knowledge_checks"`
}

type Checkpoint struct {
	Concept     string `json:"concept"`
	Explanation string `json:"explanation"`
	Application string `json:"application"`
}

type DecisionPoint struct {
	ID             string           `json:"id"`
	Prompt         string           `json:"prompt"`
	Options        []DecisionOption `json:"options"`
	Impact         string           `json:"impact,omitempty"`
	SelectedOption *int             `json:"selected_option,omitempty"`
	Reasoning      string           `json:"reasoning,omitempty"`
}

type DecisionOption struct {
	Text    string `json:"text"`
	Outcome string `json:"outcome"`
}

type KnowledgeCheck struct {
	ID              string   `json:"id"`
	Concept         string   `json:"concept"`
	Prompt          string   `json:"prompt"`
	Options         []string `json:"options"`
	CorrectIndex    int      `json:"correct_index"`
	Explanation     string   `json:"explanation,omitempty"`
	FeedbackSuccess string   `json:"feedback_success,omitempty"`
	FeedbackRetry   string   `json:"feedback_retry,omitempty"`
}

// Validate enforces the structural contract a generated story must
// satisfy before it may be persisted.
func (s *Story) Validate() error {
	if len(s.Phases) == 0 {
		return WrapError(ErrGeneration, "validate story", errors.New("story has no phases"))
	}
	for i, phase := range s.Phases {
		if phase.Narrative == "" {
			return WrapError(ErrGeneration, "validate story", fmt.Errorf("phase %d has empty narrative", i))
		}
		if phase.LearningGoal == "" {
			return WrapError(ErrGeneration, "validate story", fmt.Errorf("phase %d has no learning objective", i))
		}
		for _, dp := range phase.DecisionPoints {
			if len(dp.Options) < 2 {
				return WrapError(ErrGeneration, "validate story",
					fmt.Errorf("decision point %s in phase %d has %d options", dp.ID, i, len(dp.Options)))
			}
		}
		for _, kc := range phase.KnowledgeChecks {
			if kc.CorrectIndex < 0 || kc.CorrectIndex >= len(kc.Options) {
				return WrapError(ErrGeneration, "validate story",
					fmt.Errorf("knowledge check %s in phase %d has correct index %d out of %d options",
						kc.ID, i, kc.CorrectIndex, len(kc.Options)))
			}
		}
	}
	return nil
}

// FindDecisionPoint locates a decision point by id across all phases.
func (s *Story) FindDecisionPoint(id string) (phaseIndex int, dp *DecisionPoint, ok bool) {
	for pi := range s.Phases {
		for di := range s.Phases[pi].DecisionPoints {
			if s.Phases[pi].DecisionPoints[di].ID == id {
				return pi, &s.Phases[pi].DecisionPoints[di], true
			}
		}
	}
	return 0, nil, false
}

// FindKnowledgeCheck locates a knowledge check by id across all phases.
func (s *Story) FindKnowledgeCheck(id string) (phaseIndex int, kc *KnowledgeCheck, ok bool) {
	for pi := range s.Phases {
		for ki := range s.Phases[pi].KnowledgeChecks {
			if s.Phases[pi].KnowledgeChecks[ki].ID == id {
				return pi, &s.Phases[pi].KnowledgeChecks[ki], true
			}
		}
	}
	return 0, nil, false
}
