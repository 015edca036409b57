package httpadapter

import (
	"errors"
	"net/http"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
	"github.com/minerva-learning/minerva-backend/internal/core/ports"
)

func (rt *Router) createUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username        string   `json:"username"`
		Email           string   `json:"email"`
		Password        string   `json:"password"`
		FullName        string   `json:"full_name"`
		LearningStyle   string   `json:"learning_style"`
		SkillLevel      string   `json:"skill_level"`
		Interests       []string `json:"interests"`
		PreferredGenres []string `json:"preferred_story_genres"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		writeBadRequest(w, "invalid json")
		return
	}

	user, err := rt.profiles.Create(r.Context(), ports.CreateUserRequest{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		FullName:        req.FullName,
		LearningStyle:   domain.LearningStyle(req.LearningStyle),
		SkillLevel:      domain.SkillLevel(req.SkillLevel),
		Interests:       req.Interests,
		PreferredGenres: req.PreferredGenres,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (rt *Router) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := rt.profiles.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (rt *Router) updateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName        *string  `json:"full_name"`
		LearningStyle   *string  `json:"learning_style"`
		SkillLevel      *string  `json:"skill_level"`
		Interests       []string `json:"interests"`
		PreferredGenres []string `json:"preferred_story_genres"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		writeBadRequest(w, "invalid json")
		return
	}

	patch := ports.UpdateUserRequest{
		FullName:        req.FullName,
		Interests:       req.Interests,
		PreferredGenres: req.PreferredGenres,
	}
	if req.LearningStyle != nil {
		style := domain.LearningStyle(*req.LearningStyle)
		patch.LearningStyle = &style
	}
	if req.SkillLevel != nil {
		level := domain.SkillLevel(*req.SkillLevel)
		patch.SkillLevel = &level
	}

	user, err := rt.profiles.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (rt *Router) createSession(w http.ResponseWriter, r *http.Request) {
	session, err := rt.profiles.CreateSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (rt *Router) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := rt.profiles.GetSession(r.Context(), r.PathValue("token"))
	if err != nil {
		writeError(w, err)
		return
	}
	if session.UserID != r.PathValue("id") {
		writeError(w, domain.WrapError(domain.ErrForbidden, "get session", errSessionOwner))
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (rt *Router) updatePersonality(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Traits map[string]any `json:"traits"`
		Source string         `json:"source"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		writeBadRequest(w, "invalid json")
		return
	}
	if len(req.Traits) == 0 {
		writeBadRequest(w, "traits are required")
		return
	}

	user, err := rt.profiles.UpdateTraits(r.Context(), r.PathValue("id"), req.Traits, req.Source)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (rt *Router) getPersonality(w http.ResponseWriter, r *http.Request) {
	profile, err := rt.profiles.PersonalityProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

var errSessionOwner = errors.New("session belongs to another user")
