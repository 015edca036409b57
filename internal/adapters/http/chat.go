package httpadapter

import (
	"net/http"
	"strings"
	"time"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
)

func (rt *Router) chatMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID       string `json:"user_id"`
		StoryID      string `json:"story_id"`
		SessionToken string `json:"session_token"`
		Message      string `json:"message"`
		Context      string `json:"context"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		writeBadRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeBadRequest(w, "user_id is required")
		return
	}

	chatContext, err := domain.ParseChatContext(req.Context)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	start := time.Now()
	reply, err := rt.chat.Respond(r.Context(), domain.ChatRequest{
		UserID:       req.UserID,
		StoryID:      req.StoryID,
		SessionToken: req.SessionToken,
		Message:      req.Message,
		Context:      chatContext,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordChatReply(rt.serviceName, string(chatContext), string(reply.Type), time.Since(start))
	}
	writeJSON(w, http.StatusOK, reply)
}

func (rt *Router) chatConversation(w http.ResponseWriter, r *http.Request) {
	messages, err := rt.chat.History(r.Context(), r.PathValue("token"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages, "total": len(messages)})
}

func (rt *Router) chatSuggestions(w http.ResponseWriter, r *http.Request) {
	chatContext, err := domain.ParseChatContext(r.URL.Query().Get("context"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	suggestions, err := rt.chat.Suggestions(
		r.Context(),
		r.PathValue("token"),
		r.URL.Query().Get("story_id"),
		chatContext,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}
