package domain

import "time"

type LearningStyle string

const (
	StyleVisual      LearningStyle = "visual"
	StyleAuditory    LearningStyle = "auditory"
	StyleKinesthetic LearningStyle = "kinesthetic"
	StyleReading     LearningStyle = "reading"
)

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

type User struct {
	ID              string            `json:"id"`
	Username        string            `json:"username"`
	Email           string            `json:"email"`
	PasswordHash    string            `json:"-"`
	FullName        string            `json:"full_name,omitempty"`
	LearningStyle   LearningStyle     `json:"learning_style"`
	SkillLevel      SkillLevel        `json:"skill_level"`
	Interests       []string          `json:"interests"`
	PreferredGenres []string          `json:"preferred_story_genres"`
	Traits          PersonalityTraits `json:"personality_traits"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// PersonalityTraits is an open trait mapping plus an append-only audit
// log of how the mapping got there. Merges overwrite same-named keys;
// the history keeps the most recent entries only.
type PersonalityTraits struct {
	Active  map[string]any `json:"active_traits"`
	History []TraitUpdate  `json:"update_history"`
}

type TraitUpdate struct {
	Traits    map[string]any `json:"traits"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
}

const traitHistoryLimit = 10

// Merge applies an update: new traits overwrite same-named active
// entries and the update is appended to the history.
func (p *PersonalityTraits) Merge(traits map[string]any, source string, now time.Time) {
	if p.Active == nil {
		p.Active = make(map[string]any, len(traits))
	}
	for name, value := range traits {
		p.Active[name] = value
	}
	p.History = append(p.History, TraitUpdate{Traits: traits, Source: source, Timestamp: now})
	if len(p.History) > traitHistoryLimit {
		p.History = p.History[len(p.History)-traitHistoryLimit:]
	}
}

type Session struct {
	Token        string    `json:"session_token"`
	UserID       string    `json:"user_id"`
	Conversation []Message `json:"conversation_history"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Message struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
