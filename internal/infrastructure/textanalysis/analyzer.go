package textanalysis

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
)

const (
	chunkSize    = 1000
	overlapWords = 40

	maxConcepts   = 20
	maxObjectives = 10

	wordsPerMinute = 200
)

// Analyzer derives learning metadata from extracted text using lexical
// heuristics. It needs no upstream calls, so document processing stays
// available when the LLM is down.
type Analyzer struct{}

func New() *Analyzer {
	return &Analyzer{}
}

func (a *Analyzer) Analyze(ctx context.Context, text string) (*domain.ContentAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cleaned := cleanContent(text)
	concepts := extractKeyConcepts(cleaned)
	chunks := buildChunks(cleaned, concepts)
	words := len(strings.Fields(cleaned))

	return &domain.ContentAnalysis{
		CleanedText:    cleaned,
		Chunks:         chunks,
		KeyConcepts:    concepts,
		LearningGoals:  identifyLearningObjectives(cleaned),
		Difficulty:     estimateDifficulty(cleaned),
		ReadingMinutes: max(1, words/wordsPerMinute),
	}, nil
}

var (
	multiSpace   = regexp.MustCompile(`[ \t]+`)
	allowedRunes = regexp.MustCompile(`[^\w\s.,!?;:\-()\[\]{}"']+`)
)

// cleanContent normalizes whitespace, strips odd characters and drops
// line fragments too short to carry meaning.
func cleanContent(text string) string {
	text = allowedRunes.ReplaceAllString(text, "")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(multiSpace.ReplaceAllString(line, " "))
		if len(line) > 3 {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

var (
	capitalizedPhrase = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
	quotedTerm        = regexp.MustCompile(`"([^"]+)"`)

	conceptStopWords = map[string]struct{}{
		"The": {}, "This": {}, "That": {}, "These": {}, "Those": {},
		"With": {}, "For": {}, "And": {}, "But": {}, "Or": {},
	}
)

// extractKeyConcepts collects capitalized and quoted phrases, ranked by
// how often they occur.
func extractKeyConcepts(text string) []string {
	counts := make(map[string]int)
	for _, match := range capitalizedPhrase.FindAllString(text, -1) {
		if len(match) > 3 && len(strings.Fields(match)) <= 3 {
			counts[match]++
		}
	}
	for _, groups := range quotedTerm.FindAllStringSubmatch(text, -1) {
		term := strings.TrimSpace(groups[1])
		if term != "" && len(strings.Fields(term)) <= 3 {
			counts[term]++
		}
	}
	for word := range conceptStopWords {
		delete(counts, word)
	}

	concepts := make([]string, 0, len(counts))
	for concept := range counts {
		concepts = append(concepts, concept)
	}
	sort.Slice(concepts, func(i, j int) bool {
		if counts[concepts[i]] != counts[concepts[j]] {
			return counts[concepts[i]] > counts[concepts[j]]
		}
		return concepts[i] < concepts[j]
	})
	if len(concepts) > maxConcepts {
		concepts = concepts[:maxConcepts]
	}
	return concepts
}

var objectivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:learn|understand|master|explore|discover|analyze|evaluate|apply|create)\s+([^.]+)`),
	regexp.MustCompile(`(?i)(?:objective|goal|aim|purpose):\s*([^.]+)`),
	regexp.MustCompile(`(?i)(?:by the end|after reading|students will|learners will)\s+([^.]+)`),
}

func identifyLearningObjectives(text string) []string {
	var objectives []string
	seen := make(map[string]struct{})
	for _, pattern := range objectivePatterns {
		for _, groups := range pattern.FindAllStringSubmatch(text, -1) {
			candidate := strings.TrimSpace(groups[1])
			if len(candidate) <= 10 || len(candidate) >= 200 {
				continue
			}
			candidate = capitalize(strings.ToLower(candidate))
			if _, dup := seen[candidate]; dup {
				continue
			}
			seen[candidate] = struct{}{}
			objectives = append(objectives, candidate)
			if len(objectives) == maxObjectives {
				return objectives
			}
		}
	}
	return objectives
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

func estimateDifficulty(text string) domain.DifficultyLevel {
	sentences := sentenceSplit.Split(text, -1)
	words := strings.Fields(text)
	if len(sentences) == 0 || len(words) == 0 {
		return domain.DifficultyIntermediate
	}

	totalSentenceWords := 0
	for _, sentence := range sentences {
		totalSentenceWords += len(strings.Fields(sentence))
	}
	avgSentenceLength := float64(totalSentenceWords) / float64(len(sentences))

	complexWords := 0
	for _, word := range words {
		if len(word) > 8 {
			complexWords++
		}
	}
	complexRatio := float64(complexWords) / float64(len(words))

	switch {
	case avgSentenceLength > 25 || complexRatio > 0.2:
		return domain.DifficultyAdvanced
	case avgSentenceLength < 15 && complexRatio < 0.1:
		return domain.DifficultyBeginner
	default:
		return domain.DifficultyIntermediate
	}
}

// buildChunks packs words into ~chunkSize character windows with a word
// overlap, then tags each chunk with the key concepts it mentions.
func buildChunks(text string, concepts []string) []domain.Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []domain.Chunk
	var current []string
	currentLen := 0
	index := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		content := strings.Join(current, " ")
		chunks = append(chunks, domain.Chunk{
			Index:    index,
			Content:  content,
			Concepts: conceptsIn(content, concepts),
		})
		index++
	}

	for _, word := range words {
		current = append(current, word)
		currentLen += len(word) + 1
		if currentLen >= chunkSize {
			flush()
			overlap := current
			if len(overlap) > overlapWords {
				overlap = overlap[len(overlap)-overlapWords:]
			}
			current = append([]string(nil), overlap...)
			currentLen = 0
			for _, w := range current {
				currentLen += len(w) + 1
			}
		}
	}
	flush()
	return chunks
}

func conceptsIn(content string, concepts []string) []string {
	lower := strings.ToLower(content)
	var found []string
	for _, concept := range concepts {
		if strings.Contains(lower, strings.ToLower(concept)) {
			found = append(found, concept)
		}
	}
	return found
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
