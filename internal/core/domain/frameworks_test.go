package domain

import "testing"

func TestSelectFrameworkByGenre(t *testing.T) {
	cases := []struct {
		genre string
		skill SkillLevel
		want  FrameworkKey
	}{
		{"mystery", SkillAdvanced, FrameworkMystery},
		{"sci_fi", SkillIntermediate, FrameworkScientific},
		{"science", SkillIntermediate, FrameworkScientific},
		{"historical", SkillAdvanced, FrameworkTimeTravel},
		{"time_travel", SkillAdvanced, FrameworkTimeTravel},
		{"simulation", SkillAdvanced, FrameworkSimTraining},
		{"adventure", SkillBeginner, FrameworkHeroJourney},
		{"", SkillBeginner, FrameworkSimTraining},
		{"", SkillAdvanced, FrameworkHeroJourney},
		{"unknown-genre", SkillBeginner, FrameworkHeroJourney},
		{"  Mystery ", SkillBeginner, FrameworkMystery},
	}
	for _, tc := range cases {
		got := SelectFramework(tc.genre, tc.skill)
		if got.Key != tc.want {
			t.Errorf("SelectFramework(%q, %s) = %s, want %s", tc.genre, tc.skill, got.Key, tc.want)
		}
	}
}

func TestFrameworkPhaseCounts(t *testing.T) {
	want := map[FrameworkKey]int{
		FrameworkHeroJourney: 8,
		FrameworkMystery:     7,
		FrameworkScientific:  7,
		FrameworkTimeTravel:  7,
		FrameworkSimTraining: 7,
	}
	for key, count := range want {
		fw, ok := Framework(key)
		if !ok {
			t.Fatalf("missing framework %s", key)
		}
		if len(fw.Phases) != count {
			t.Errorf("framework %s has %d phases, want %d", key, len(fw.Phases), count)
		}
	}
}

func TestSelectArchetypeScoring(t *testing.T) {
	got := SelectArchetype(map[string]any{"analytical": 0.8}, []string{"research papers"})
	if got.Key != "scholar" {
		t.Fatalf("expected scholar, got %s", got.Key)
	}

	got = SelectArchetype(map[string]any{"helpful": 0.9}, []string{"teaching kids"})
	if got.Key != "helper" {
		t.Fatalf("expected helper, got %s", got.Key)
	}
}

func TestSelectArchetypeEmptyProfileDefaultsToExplorer(t *testing.T) {
	got := SelectArchetype(nil, nil)
	if got.Key != "explorer" {
		t.Fatalf("expected explorer default, got %s", got.Key)
	}
}
