package textanalysis

import (
	"context"
	"strings"
	"testing"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
)

func TestAnalyzeExtractsConceptsAndObjectives(t *testing.T) {
	text := `Newtonian Mechanics describes motion. Newtonian Mechanics was formalized by Isaac Newton.
The goal: understand how forces act on bodies. Students will learn to apply the laws of motion in practice.
The term "inertial frame" appears throughout.`

	a := New()
	analysis, err := a.Analyze(context.Background(), text)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if !containsString(analysis.KeyConcepts, "Newtonian Mechanics") {
		t.Fatalf("expected Newtonian Mechanics in concepts, got %v", analysis.KeyConcepts)
	}
	if !containsString(analysis.KeyConcepts, "inertial frame") {
		t.Fatalf("expected quoted term in concepts, got %v", analysis.KeyConcepts)
	}
	if containsString(analysis.KeyConcepts, "The") {
		t.Fatalf("expected stop word filtered, got %v", analysis.KeyConcepts)
	}
	// The repeated concept outranks single occurrences.
	if analysis.KeyConcepts[0] != "Newtonian Mechanics" {
		t.Fatalf("expected most frequent concept first, got %v", analysis.KeyConcepts)
	}
	if len(analysis.LearningGoals) == 0 {
		t.Fatalf("expected learning objectives")
	}
	if analysis.ReadingMinutes < 1 {
		t.Fatalf("expected at least 1 reading minute")
	}
}

func TestAnalyzeDifficulty(t *testing.T) {
	simple := strings.Repeat("The cat sat on the mat. ", 20)
	complexText := strings.Repeat(
		"Epistemological considerations notwithstanding, thermodynamic irreversibility fundamentally constrains macroscopic computational architectures operating near equilibrium boundaries across disparate organizational hierarchies. ", 10)

	a := New()
	got, err := a.Analyze(context.Background(), simple)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.Difficulty != domain.DifficultyBeginner {
		t.Fatalf("expected beginner for simple text, got %s", got.Difficulty)
	}

	got, err = a.Analyze(context.Background(), complexText)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.Difficulty != domain.DifficultyAdvanced {
		t.Fatalf("expected advanced for complex text, got %s", got.Difficulty)
	}
}

func TestAnalyzeChunkingRespectsSizeAndOverlap(t *testing.T) {
	text := strings.Repeat("gravity pulls every object toward every other object without exception ", 60)

	a := New()
	analysis, err := a.Analyze(context.Background(), text)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(analysis.Chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(analysis.Chunks))
	}
	for i, chunk := range analysis.Chunks {
		if chunk.Index != i {
			t.Fatalf("expected sequential indexes, got %d at %d", chunk.Index, i)
		}
		if chunk.Content == "" {
			t.Fatalf("expected non-empty chunk %d", i)
		}
	}

	// Consecutive chunks share their boundary words.
	firstWords := strings.Fields(analysis.Chunks[0].Content)
	tail := strings.Join(firstWords[len(firstWords)-overlapWords:], " ")
	if !strings.HasPrefix(analysis.Chunks[1].Content, tail) {
		t.Fatalf("expected chunk 1 to start with the overlap of chunk 0")
	}
}

func TestCleanContentDropsShortLines(t *testing.T) {
	got := cleanContent("ab\nA meaningful line of text.\n:)\nAnother good line here.")
	if strings.Contains(got, "ab") || strings.Contains(got, ":)") {
		t.Fatalf("expected artifacts removed, got %q", got)
	}
	if !strings.Contains(got, "A meaningful line of text.") {
		t.Fatalf("expected real content kept, got %q", got)
	}
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
