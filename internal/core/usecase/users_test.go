package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
	"github.com/minerva-learning/minerva-backend/internal/core/ports"
)

func newProfileUseCase() (*ProfileUseCase, *memUserRepo, *memSessionRepo, *memSessionCache) {
	users := newMemUserRepo()
	sessions := newMemSessionRepo()
	cache := newMemSessionCache()
	return NewProfileUseCase(users, sessions, cache), users, sessions, cache
}

func TestCreateUserDefaultsAndHash(t *testing.T) {
	uc, _, _, _ := newProfileUseCase()

	user, err := uc.Create(context.Background(), ports.CreateUserRequest{
		Username: "ada",
		Email:    "ada@example.com",
		Password: "correcthorse",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected user id")
	}
	if user.PasswordHash == "" || user.PasswordHash == "correcthorse" {
		t.Fatalf("expected hashed credential, got %q", user.PasswordHash)
	}
	if user.LearningStyle != domain.StyleVisual || user.SkillLevel != domain.SkillBeginner {
		t.Fatalf("expected defaults, got %s/%s", user.LearningStyle, user.SkillLevel)
	}
	if user.Interests == nil || user.PreferredGenres == nil {
		t.Fatalf("expected empty slices, got nil")
	}
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	uc, _, _, _ := newProfileUseCase()

	if _, err := uc.Create(context.Background(), ports.CreateUserRequest{
		Username: "ada", Email: "ada@example.com", Password: "correcthorse",
	}); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}
	_, err := uc.Create(context.Background(), ports.CreateUserRequest{
		Username: "ada", Email: "other@example.com", Password: "correcthorse",
	})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	uc, _, _, _ := newProfileUseCase()

	cases := []struct {
		name string
		req  ports.CreateUserRequest
	}{
		{"missing username", ports.CreateUserRequest{Email: "a@b.c", Password: "longenough"}},
		{"bad email", ports.CreateUserRequest{Username: "ada", Email: "nope", Password: "longenough"}},
		{"short password", ports.CreateUserRequest{Username: "ada", Email: "a@b.c", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := uc.Create(context.Background(), tc.req); !domain.IsKind(err, domain.ErrInvalidInput) {
				t.Fatalf("expected invalid input error, got %v", err)
			}
		})
	}
}

func TestUpdateTraitsMergesAndKeepsHistory(t *testing.T) {
	uc, _, _, _ := newProfileUseCase()
	user, err := uc.Create(context.Background(), ports.CreateUserRequest{
		Username: "ada", Email: "ada@example.com", Password: "correcthorse",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := uc.UpdateTraits(context.Background(), user.ID,
		map[string]any{"curious": 0.9}, "quiz"); err != nil {
		t.Fatalf("UpdateTraits() error = %v", err)
	}
	got, err := uc.UpdateTraits(context.Background(), user.ID,
		map[string]any{"curious": 0.4, "analytical": 0.7}, "quiz")
	if err != nil {
		t.Fatalf("UpdateTraits() error = %v", err)
	}

	if got.Traits.Active["curious"] != 0.4 {
		t.Fatalf("expected overwrite to 0.4, got %v", got.Traits.Active["curious"])
	}
	if got.Traits.Active["analytical"] != 0.7 {
		t.Fatalf("expected analytical added, got %v", got.Traits.Active)
	}
	if len(got.Traits.History) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(got.Traits.History))
	}
}

func TestUpdateTraitsRejectsEmptyUpdate(t *testing.T) {
	uc, _, _, _ := newProfileUseCase()
	if _, err := uc.UpdateTraits(context.Background(), "user-1", nil, "quiz"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestPersonalityProfileSuggestsArchetype(t *testing.T) {
	uc, _, _, _ := newProfileUseCase()
	user, err := uc.Create(context.Background(), ports.CreateUserRequest{
		Username: "ada", Email: "ada@example.com", Password: "correcthorse",
		Interests: []string{"research"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	profile, err := uc.PersonalityProfile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("PersonalityProfile() error = %v", err)
	}
	if profile.Archetype != "scholar" {
		t.Fatalf("expected scholar archetype for research interest, got %s", profile.Archetype)
	}
	if profile.Completeness != 0.25 {
		t.Fatalf("completeness = %v, want 0.25 for interests only", profile.Completeness)
	}
}

func TestSessionLifecycle(t *testing.T) {
	uc, _, sessions, cache := newProfileUseCase()
	user, err := uc.Create(context.Background(), ports.CreateUserRequest{
		Username: "ada", Email: "ada@example.com", Password: "correcthorse",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	session, err := uc.CreateSession(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if session.Token == "" {
		t.Fatalf("expected session token")
	}
	if got := session.ExpiresAt.Sub(session.CreatedAt); got != sessionTTL {
		t.Fatalf("expected 24h ttl, got %s", got)
	}
	if _, ok := cache.sessions[session.Token]; !ok {
		t.Fatalf("expected session cached")
	}

	got, err := uc.GetSession(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.UserID != user.ID {
		t.Fatalf("expected session for %s, got %s", user.ID, got.UserID)
	}

	// Expired sessions are rejected even when still present in the store.
	stale := sessions.sessions[session.Token]
	stale.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	delete(cache.sessions, session.Token)
	if _, err := uc.GetSession(context.Background(), session.Token); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestGetSessionFallsBackToRepository(t *testing.T) {
	uc, _, _, cache := newProfileUseCase()
	user, err := uc.Create(context.Background(), ports.CreateUserRequest{
		Username: "ada", Email: "ada@example.com", Password: "correcthorse",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	session, err := uc.CreateSession(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	delete(cache.sessions, session.Token)
	got, err := uc.GetSession(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.Token != session.Token {
		t.Fatalf("expected session from repository")
	}
	if _, ok := cache.sessions[session.Token]; !ok {
		t.Fatalf("expected session re-cached")
	}
}
