package domain

import "strings"

// FrameworkKey identifies one of the fixed narrative frameworks a story
// is shaped by.
type FrameworkKey string

const (
	FrameworkHeroJourney    FrameworkKey = "hero_journey"
	FrameworkMystery        FrameworkKey = "mystery_investigation"
	FrameworkScientific     FrameworkKey = "scientific_exploration"
	FrameworkTimeTravel     FrameworkKey = "time_travel_adventure"
	FrameworkSimTraining    FrameworkKey = "simulation_training"
	defaultFrameworkGenre                = "adventure"
)

type NarrativeFramework struct {
	Key         FrameworkKey
	Name        string
	Description string
	Phases      []string
}

var narrativeFrameworks = map[FrameworkKey]NarrativeFramework{
	FrameworkHeroJourney: {
		Key:         FrameworkHeroJourney,
		Name:        "Hero's Journey",
		Description: "Classic monomyth structure where the learner becomes a hero",
		Phases: []string{
			"ordinary_world", "call_to_adventure", "meeting_mentor", "crossing_threshold",
			"tests_and_trials", "revelation", "transformation", "return_with_knowledge",
		},
	},
	FrameworkMystery: {
		Key:         FrameworkMystery,
		Name:        "Mystery Investigation",
		Description: "The learner becomes a detective solving learning-related mysteries",
		Phases: []string{
			"discovery_of_mystery", "gathering_clues", "first_breakthrough", "complications",
			"final_investigation", "revelation", "resolution",
		},
	},
	FrameworkScientific: {
		Key:         FrameworkScientific,
		Name:        "Scientific Exploration",
		Description: "The learner as a researcher making discoveries",
		Phases: []string{
			"observation", "hypothesis_formation", "experimentation", "data_analysis",
			"peer_review", "breakthrough", "publication",
		},
	},
	FrameworkTimeTravel: {
		Key:         FrameworkTimeTravel,
		Name:        "Time Travel Adventure",
		Description: "The learner travels through time to explore historical concepts",
		Phases: []string{
			"departure", "arrival_in_past", "cultural_immersion", "historical_challenge",
			"key_insight", "timeline_impact", "return_home",
		},
	},
	FrameworkSimTraining: {
		Key:         FrameworkSimTraining,
		Name:        "Simulation Training",
		Description: "The learner in a virtual training environment",
		Phases: []string{
			"briefing", "basic_training", "skill_building", "scenario_practice",
			"complex_challenges", "mastery_test", "graduation",
		},
	},
}

func Framework(key FrameworkKey) (NarrativeFramework, bool) {
	fw, ok := narrativeFrameworks[key]
	return fw, ok
}

// SelectFramework maps a requested genre and profile onto the closest
// narrative framework. The caller's genre wins when it maps cleanly;
// otherwise beginners get the guided simulation and everyone else the
// hero's journey.
func SelectFramework(genre string, skill SkillLevel) NarrativeFramework {
	switch strings.ToLower(strings.TrimSpace(genre)) {
	case "mystery":
		return narrativeFrameworks[FrameworkMystery]
	case "sci_fi", "sci-fi", "science", "scientific":
		return narrativeFrameworks[FrameworkScientific]
	case "historical", "history", "time_travel":
		return narrativeFrameworks[FrameworkTimeTravel]
	case "training", "simulation":
		return narrativeFrameworks[FrameworkSimTraining]
	case defaultFrameworkGenre, "":
		if skill == SkillBeginner && genre == "" {
			return narrativeFrameworks[FrameworkSimTraining]
		}
		return narrativeFrameworks[FrameworkHeroJourney]
	default:
		return narrativeFrameworks[FrameworkHeroJourney]
	}
}

// CharacterArchetype describes the learner's persona template.
type CharacterArchetype struct {
	Key        string
	Name       string
	Traits     []string
	Motivation string
}

var characterArchetypes = []CharacterArchetype{
	{Key: "explorer", Name: "The Explorer", Traits: []string{"curious", "adventurous", "resourceful"}, Motivation: "discovery and understanding"},
	{Key: "scholar", Name: "The Scholar", Traits: []string{"analytical", "methodical", "patient"}, Motivation: "deep understanding and mastery"},
	{Key: "innovator", Name: "The Innovator", Traits: []string{"creative", "visionary", "ambitious"}, Motivation: "creating something new"},
	{Key: "helper", Name: "The Helper", Traits: []string{"empathetic", "collaborative", "supportive"}, Motivation: "helping others and making impact"},
	{Key: "achiever", Name: "The Achiever", Traits: []string{"goal-oriented", "determined", "efficient"}, Motivation: "success and recognition"},
}

var archetypeTraitScores = map[string]map[string]int{
	"curious":           {"explorer": 3, "scholar": 2},
	"analytical":        {"scholar": 3, "innovator": 2},
	"creative":          {"innovator": 3, "explorer": 2},
	"helpful":           {"helper": 3},
	"goal_oriented":     {"achiever": 3},
	"detail_preference": {"scholar": 2, "achiever": 1},
	"challenge_seeking": {"explorer": 2, "achiever": 2, "innovator": 1},
}

var archetypeInterestScores = map[string]map[string]int{
	"science":     {"scholar": 2, "innovator": 1},
	"technology":  {"innovator": 2, "explorer": 1},
	"research":    {"scholar": 3},
	"teaching":    {"helper": 3},
	"adventure":   {"explorer": 2},
	"competition": {"achiever": 2},
}

// SelectArchetype scores archetypes against the user's traits and
// interests. Ties and empty profiles resolve to the explorer so the
// choice stays deterministic.
func SelectArchetype(traits map[string]any, interests []string) CharacterArchetype {
	scores := make(map[string]int, len(characterArchetypes))
	for trait := range traits {
		for key, points := range archetypeTraitScores[strings.ToLower(trait)] {
			scores[key] += points
		}
	}
	for _, interest := range interests {
		lower := strings.ToLower(interest)
		for keyword, byArchetype := range archetypeInterestScores {
			if strings.Contains(lower, keyword) {
				for key, points := range byArchetype {
					scores[key] += points
				}
			}
		}
	}

	best := characterArchetypes[0]
	bestScore := scores[best.Key]
	for _, archetype := range characterArchetypes[1:] {
		if scores[archetype.Key] > bestScore {
			best = archetype
			bestScore = scores[archetype.Key]
		}
	}
	return best
}
