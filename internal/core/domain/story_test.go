package domain

import "testing"

func sampleStory() *Story {
	return &Story{
		ID:    "story-1",
		Title: "The Gravity Heist",
		Phases: []Phase{
			{
				Name:         "briefing",
				Narrative:    "You arrive.",
				LearningGoal: "Understand gravity",
				DecisionPoints: []DecisionPoint{{
					ID:      "dp-1",
					Prompt:  "Where to?",
					Options: []DecisionOption{{Text: "Lab"}, {Text: "Dock"}},
				}},
				KnowledgeChecks: []KnowledgeCheck{{
					ID:           "kc-1",
					Concept:      "gravity",
					Options:      []string{"a", "b", "c"},
					CorrectIndex: 1,
				}},
			},
			{Name: "training", Narrative: "Training.", LearningGoal: "Apply it"},
		},
	}
}

func TestStoryValidateAcceptsWellFormed(t *testing.T) {
	if err := sampleStory().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestStoryValidateRejectsDefects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Story)
	}{
		{"no phases", func(s *Story) { s.Phases = nil }},
		{"empty narrative", func(s *Story) { s.Phases[0].Narrative = "" }},
		{"missing learning objective", func(s *Story) { s.Phases[1].LearningGoal = "" }},
		{"single decision option", func(s *Story) {
			s.Phases[0].DecisionPoints[0].Options = s.Phases[0].DecisionPoints[0].Options[:1]
		}},
		{"correct index out of range", func(s *Story) { s.Phases[0].KnowledgeChecks[0].CorrectIndex = 5 }},
		{"negative correct index", func(s *Story) { s.Phases[0].KnowledgeChecks[0].CorrectIndex = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			story := sampleStory()
			tc.mutate(story)
			if err := story.Validate(); !IsKind(err, ErrGeneration) {
				t.Fatalf("expected generation error, got %v", err)
			}
		})
	}
}

func TestFindDecisionPointAndKnowledgeCheck(t *testing.T) {
	story := sampleStory()

	phase, dp, ok := story.FindDecisionPoint("dp-1")
	if !ok || phase != 0 || dp.ID != "dp-1" {
		t.Fatalf("expected dp-1 in phase 0, got phase=%d ok=%v", phase, ok)
	}
	if _, _, ok := story.FindDecisionPoint("missing"); ok {
		t.Fatalf("expected miss for unknown decision point")
	}

	phase, kc, ok := story.FindKnowledgeCheck("kc-1")
	if !ok || phase != 0 || kc.Concept != "gravity" {
		t.Fatalf("expected kc-1 in phase 0, got phase=%d ok=%v", phase, ok)
	}
	if _, _, ok := story.FindKnowledgeCheck("missing"); ok {
		t.Fatalf("expected miss for unknown knowledge check")
	}
}

func TestProgressLearnConceptAndCompletion(t *testing.T) {
	progress := Progress{}
	progress.LearnConcept("gravity")
	progress.LearnConcept("gravity")
	progress.LearnConcept("")
	if len(progress.Concepts) != 1 {
		t.Fatalf("expected single concept, got %v", progress.Concepts)
	}

	progress.CurrentPhase = 2
	progress.RecomputeCompletion(4)
	if progress.Completion != 50 {
		t.Fatalf("expected 50%%, got %f", progress.Completion)
	}
	// Completion never regresses.
	progress.CurrentPhase = 1
	progress.RecomputeCompletion(4)
	if progress.Completion != 50 {
		t.Fatalf("expected completion to hold at 50%%, got %f", progress.Completion)
	}
	progress.CurrentPhase = 9
	progress.RecomputeCompletion(4)
	if progress.Completion != 100 {
		t.Fatalf("expected cap at 100%%, got %f", progress.Completion)
	}
}
