package httpadapter

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/minerva-learning/minerva-backend/internal/core/ports"
)

func (rt *Router) generateStory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID         string `json:"user_id"`
		DocumentID     string `json:"document_id"`
		PreferredGenre string `json:"preferred_genre"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		writeBadRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.DocumentID) == "" {
		writeBadRequest(w, "user_id and document_id are required")
		return
	}

	start := time.Now()
	story, err := rt.stories.Generate(r.Context(), ports.GenerateStoryRequest{
		UserID:         req.UserID,
		DocumentID:     req.DocumentID,
		PreferredGenre: req.PreferredGenre,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordStoryGenerated(rt.serviceName, string(story.Framework), time.Since(start))
	}
	writeJSON(w, http.StatusCreated, story)
}

func (rt *Router) getStory(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeBadRequest(w, "user_id is required")
		return
	}

	story, err := rt.stories.GetByID(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, story)
}

func (rt *Router) listStories(w http.ResponseWriter, r *http.Request) {
	stories, err := rt.stories.ListByUser(r.Context(), r.PathValue("user_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stories": stories, "total": len(stories)})
}

func (rt *Router) deleteStory(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeBadRequest(w, "user_id is required")
		return
	}

	if err := rt.stories.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (rt *Router) getStoryPhase(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeBadRequest(w, "user_id is required")
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		writeBadRequest(w, "phase index must be a non-negative integer")
		return
	}

	story, err := rt.stories.GetByID(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if index >= len(story.Phases) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "phase index out of range"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"story_id":     story.ID,
		"phase_index":  index,
		"total_phases": len(story.Phases),
		"phase":        story.Phases[index],
	})
}

func (rt *Router) recordDecision(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID          string `json:"user_id"`
		DecisionPointID string `json:"decision_point_id"`
		SelectedOption  int    `json:"selected_option"`
		Reasoning       string `json:"reasoning"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		writeBadRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.DecisionPointID) == "" {
		writeBadRequest(w, "user_id and decision_point_id are required")
		return
	}

	progress, err := rt.tracker.RecordDecision(r.Context(), ports.DecisionRequest{
		UserID:          req.UserID,
		StoryID:         r.PathValue("id"),
		DecisionPointID: req.DecisionPointID,
		SelectedOption:  req.SelectedOption,
		Reasoning:       req.Reasoning,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordDecision(rt.serviceName)
	}
	writeJSON(w, http.StatusOK, progress)
}

func (rt *Router) submitKnowledgeCheck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID         string `json:"user_id"`
		QuestionID     string `json:"question_id"`
		SelectedAnswer int    `json:"selected_answer"`
		Confidence     *int   `json:"confidence_level"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		writeBadRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.QuestionID) == "" {
		writeBadRequest(w, "user_id and question_id are required")
		return
	}

	outcome, err := rt.tracker.SubmitKnowledgeCheck(r.Context(), ports.KnowledgeCheckRequest{
		UserID:         req.UserID,
		StoryID:        r.PathValue("id"),
		QuestionID:     req.QuestionID,
		SelectedAnswer: req.SelectedAnswer,
		Confidence:     req.Confidence,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordKnowledgeCheck(rt.serviceName, outcome.Correct)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"is_correct":  outcome.Correct,
		"feedback":    outcome.Feedback,
		"explanation": outcome.Explanation,
		"progress":    outcome.Progress,
	})
}

func (rt *Router) getProgress(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeBadRequest(w, "user_id is required")
		return
	}

	progress, err := rt.tracker.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (rt *Router) updateProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID           string `json:"user_id"`
		TimeSpentSeconds int64  `json:"time_spent_seconds"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		writeBadRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeBadRequest(w, "user_id is required")
		return
	}

	progress, err := rt.tracker.AddSessionTime(r.Context(), req.UserID, r.PathValue("id"), req.TimeSpentSeconds)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
