package domain

import "time"

// Progress tracks a single user's journey through a single story.
// Decision and knowledge-check logs are append-only; the concepts set
// only ever grows.
type Progress struct {
	UserID       string                 `json:"user_id"`
	StoryID      string                 `json:"story_id"`
	CurrentPhase int                    `json:"current_phase"`
	Completion   float64                `json:"completion_percentage"`
	Concepts     []string               `json:"concepts_learned"`
	Decisions    []DecisionRecord       `json:"decisions_made"`
	CheckResults []KnowledgeCheckResult `json:"knowledge_check_results"`
	Engagement   EngagementMetrics      `json:"engagement_metrics"`
	LastAccessed time.Time              `json:"last_accessed"`
	CreatedAt    time.Time              `json:"created_at"`
}

type DecisionRecord struct {
	DecisionPointID string    `json:"decision_point_id"`
	PhaseIndex      int       `json:"phase_index"`
	SelectedOption  int       `json:"selected_option"`
	OptionText      string    `json:"option_text"`
	Outcome         string    `json:"outcome"`
	Reasoning       string    `json:"reasoning,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

type KnowledgeCheckResult struct {
	QuestionID     string    `json:"question_id"`
	Concept        string    `json:"concept"`
	SelectedAnswer int       `json:"selected_answer"`
	CorrectAnswer  int       `json:"correct_answer"`
	Correct        bool      `json:"is_correct"`
	Confidence     *int      `json:"confidence_level,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type EngagementMetrics struct {
	TotalTimeSeconds int64 `json:"total_time_seconds"`
	SessionCount     int   `json:"session_count"`
	LastSessionSecs  int64 `json:"last_session_seconds"`
	AvgSessionSecs   int64 `json:"average_session_seconds"`
}

// AddSessionTime folds one interaction session into the metrics.
func (m *EngagementMetrics) AddSessionTime(seconds int64) {
	if seconds <= 0 {
		return
	}
	m.TotalTimeSeconds += seconds
	m.SessionCount++
	m.LastSessionSecs = seconds
	m.AvgSessionSecs = m.TotalTimeSeconds / int64(m.SessionCount)
}

// LearnConcept adds a concept once; the set never shrinks.
func (p *Progress) LearnConcept(concept string) {
	if concept == "" {
		return
	}
	for _, existing := range p.Concepts {
		if existing == concept {
			return
		}
	}
	p.Concepts = append(p.Concepts, concept)
}

// RecomputeCompletion derives the completion percentage from the phase
// cursor. Completion never decreases for a monotonically advancing
// cursor.
func (p *Progress) RecomputeCompletion(totalPhases int) {
	if totalPhases <= 0 {
		return
	}
	pct := float64(p.CurrentPhase) / float64(totalPhases) * 100
	if pct > 100 {
		pct = 100
	}
	if pct > p.Completion {
		p.Completion = pct
	}
}
