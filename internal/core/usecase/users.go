package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
	"github.com/minerva-learning/minerva-backend/internal/core/ports"
)

const sessionTTL = 24 * time.Hour

type ProfileUseCase struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	cache    ports.SessionCache
}

func NewProfileUseCase(users ports.UserRepository, sessions ports.SessionRepository, cache ports.SessionCache) *ProfileUseCase {
	return &ProfileUseCase{
		users:    users,
		sessions: sessions,
		cache:    cache,
	}
}

func (uc *ProfileUseCase) Create(ctx context.Context, req ports.CreateUserRequest) (*domain.User, error) {
	if err := validateCreateUser(req); err != nil {
		return nil, err
	}
	if existing, err := uc.users.GetByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create user",
			fmt.Errorf("username %q already taken", req.Username))
	} else if err != nil && !domain.IsKind(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:              uuid.NewString(),
		Username:        req.Username,
		Email:           req.Email,
		PasswordHash:    hashCredential(req.Password),
		FullName:        req.FullName,
		LearningStyle:   defaultLearningStyle(req.LearningStyle),
		SkillLevel:      defaultSkillLevel(req.SkillLevel),
		Interests:       orEmpty(req.Interests),
		PreferredGenres: orEmpty(req.PreferredGenres),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (uc *ProfileUseCase) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch user by id: %w", err)
	}
	return user, nil
}

func (uc *ProfileUseCase) Update(ctx context.Context, userID string, req ports.UpdateUserRequest) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch user by id: %w", err)
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.LearningStyle != nil {
		user.LearningStyle = *req.LearningStyle
	}
	if req.SkillLevel != nil {
		user.SkillLevel = *req.SkillLevel
	}
	if req.Interests != nil {
		user.Interests = req.Interests
	}
	if req.PreferredGenres != nil {
		user.PreferredGenres = req.PreferredGenres
	}
	user.UpdatedAt = time.Now().UTC()

	if err := uc.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (uc *ProfileUseCase) UpdateTraits(ctx context.Context, userID string, traits map[string]any, source string) (*domain.User, error) {
	if len(traits) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "update traits", errors.New("empty trait update"))
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch user by id: %w", err)
	}
	if source == "" {
		source = "api"
	}
	user.Traits.Merge(traits, source, time.Now().UTC())
	user.UpdatedAt = time.Now().UTC()

	if err := uc.users.UpdateTraits(ctx, userID, user.Traits); err != nil {
		return nil, fmt.Errorf("update traits: %w", err)
	}
	return user, nil
}

func (uc *ProfileUseCase) PersonalityProfile(ctx context.Context, userID string) (*ports.PersonalityProfile, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch user by id: %w", err)
	}
	archetype := domain.SelectArchetype(user.Traits.Active, user.Interests)
	return &ports.PersonalityProfile{
		UserID:       user.ID,
		Traits:       user.Traits.Active,
		History:      user.Traits.History,
		Archetype:    archetype.Key,
		Completeness: profileCompleteness(user),
	}, nil
}

// profileCompleteness counts the optional profile sections the user has
// filled in.
func profileCompleteness(user *domain.User) float64 {
	sections := []bool{
		user.FullName != "",
		len(user.Interests) > 0,
		len(user.PreferredGenres) > 0,
		len(user.Traits.Active) > 0,
	}
	filled := 0
	for _, ok := range sections {
		if ok {
			filled++
		}
	}
	return float64(filled) / float64(len(sections))
}

func (uc *ProfileUseCase) CreateSession(ctx context.Context, userID string) (*domain.Session, error) {
	if _, err := uc.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("fetch user by id: %w", err)
	}
	now := time.Now().UTC()
	session := &domain.Session{
		Token:        uuid.NewString(),
		UserID:       userID,
		Conversation: []domain.Message{},
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(sessionTTL),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	if err := uc.cache.Put(ctx, session, sessionTTL); err != nil {
		return nil, fmt.Errorf("cache session: %w", err)
	}
	return session, nil
}

func (uc *ProfileUseCase) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	now := time.Now().UTC()
	if session, err := uc.cache.Get(ctx, token); err == nil && session != nil && !session.Expired(now) {
		return session, nil
	}
	session, err := uc.sessions.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}
	if session.Expired(now) {
		return nil, domain.WrapError(domain.ErrUnauthorized, "fetch session", errors.New("session expired"))
	}
	if ttl := time.Until(session.ExpiresAt); ttl > 0 {
		if err := uc.cache.Put(ctx, session, ttl); err != nil {
			return nil, fmt.Errorf("cache session: %w", err)
		}
	}
	return session, nil
}

func validateCreateUser(req ports.CreateUserRequest) error {
	switch {
	case strings.TrimSpace(req.Username) == "":
		return domain.WrapError(domain.ErrInvalidInput, "create user", errors.New("missing username"))
	case !strings.Contains(req.Email, "@"):
		return domain.WrapError(domain.ErrInvalidInput, "create user", fmt.Errorf("malformed email %q", req.Email))
	case len(req.Password) < 8:
		return domain.WrapError(domain.ErrInvalidInput, "create user", errors.New("password shorter than 8 characters"))
	}
	return nil
}

func hashCredential(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func defaultLearningStyle(style domain.LearningStyle) domain.LearningStyle {
	if style == "" {
		return domain.StyleVisual
	}
	return style
}

func defaultSkillLevel(level domain.SkillLevel) domain.SkillLevel {
	if level == "" {
		return domain.SkillBeginner
	}
	return level
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
