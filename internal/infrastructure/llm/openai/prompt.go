package openai

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
)

const storySystemPrompt = `You are a master storyteller who turns educational material into interactive learning adventures.
Return a strict JSON object, no markdown fences and no extra keys, with this shape:
{
  "title": string,
  "synopsis": string,
  "setting": string,
  "central_conflict": string,
  "learning_arc": string,
  "phases": [
    {
      "phase_name": string,
      "phase_title": string,
      "narrative": string,
      "learning_objective": string,
      "story_objective": string,
      "key_concepts": [string],
      "key_moments": [string],
      "challenges": [string],
      "outcomes": [string],
      "decision_points": [
        {"prompt": string, "options": [{"text": string, "outcome": string}], "impact": string}
      ],
      "knowledge_checks": [
        {"concept": string, "prompt": string, "options": [string], "correct_index": number, "explanation": string, "feedback_success": string, "feedback_retry": string}
      ]
    }
  ]
}
Every decision point needs at least 2 options. Every knowledge check needs 3 or 4 options with correct_index inside the list.`

const maxContentSnippet = 2000

func buildStoryPrompt(doc *domain.Document, user *domain.User,
	framework domain.NarrativeFramework, character domain.UserCharacter) string {
	snippet := truncateRunes(doc.ExtractedText, maxContentSnippet)

	var b strings.Builder
	fmt.Fprintf(&b, "Create an interactive learning story using the %q narrative framework.\n", framework.Name)
	fmt.Fprintf(&b, "Use exactly these phases in order: %s.\n\n", strings.Join(framework.Phases, ", "))

	fmt.Fprintf(&b, "The learner plays %s, a %s. Background: %s. Motivation: %s.\n",
		character.Name, character.Archetype, character.Background, character.Motivation)
	fmt.Fprintf(&b, "Learner profile: skill level %s, learning style %s.\n", user.SkillLevel, user.LearningStyle)
	if len(user.Interests) > 0 {
		fmt.Fprintf(&b, "Learner interests: %s.\n", strings.Join(user.Interests, ", "))
	}
	b.WriteString("\n")

	if len(doc.KeyConcepts) > 0 {
		fmt.Fprintf(&b, "Key concepts that must appear across phases: %s.\n", strings.Join(doc.KeyConcepts, ", "))
	}
	if len(doc.LearningGoals) > 0 {
		fmt.Fprintf(&b, "Learning objectives: %s.\n", strings.Join(doc.LearningGoals, "; "))
	}
	if doc.Difficulty != "" {
		fmt.Fprintf(&b, "Pitch the story at %s difficulty.\n", doc.Difficulty)
	}
	b.WriteString("\nSource material:\n")
	b.WriteString(snippet)
	return b.String()
}

// truncateRunes cuts s to at most max characters without splitting a
// multi-byte rune at the boundary.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
