// Package httpadapter exposes the learning API over HTTP.
package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/minerva-learning/minerva-backend/internal/core/ports"
	"github.com/minerva-learning/minerva-backend/internal/observability/metrics"
)

type Router struct {
	ingestor ports.DocumentIngestor
	reader   ports.DocumentReader
	stories  ports.StoryDirector
	tracker  ports.ProgressTracker
	profiles ports.ProfileService
	chat     ports.ChatResponder

	serverMetrics  *metrics.HTTPServerMetrics
	serviceName    string
	rateLimitRPS   float64
	rateLimitBurst int
}

type RouterOptions struct {
	ServiceName    string
	Metrics        *metrics.HTTPServerMetrics
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(
	ingestor ports.DocumentIngestor,
	reader ports.DocumentReader,
	stories ports.StoryDirector,
	tracker ports.ProgressTracker,
	profiles ports.ProfileService,
	chat ports.ChatResponder,
	opts RouterOptions,
) *Router {
	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = "minerva-api"
	}
	return &Router{
		ingestor:       ingestor,
		reader:         reader,
		stories:        stories,
		tracker:        tracker,
		profiles:       profiles,
		chat:           chat,
		serverMetrics:  opts.Metrics,
		serviceName:    serviceName,
		rateLimitRPS:   opts.RateLimitRPS,
		rateLimitBurst: opts.RateLimitBurst,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.serverMetrics != nil {
		mux.Handle("GET /metrics", rt.serverMetrics.Handler())
	}

	mux.HandleFunc("POST /api/v1/documents/upload", rt.uploadDocument)
	mux.HandleFunc("GET /api/v1/documents", rt.listDocuments)
	mux.HandleFunc("GET /api/v1/documents/{id}", rt.getDocument)
	mux.HandleFunc("GET /api/v1/documents/{id}/content", rt.getDocumentContent)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", rt.deleteDocument)

	mux.HandleFunc("POST /api/v1/stories/generate", rt.generateStory)
	mux.HandleFunc("GET /api/v1/stories/user/{user_id}", rt.listStories)
	mux.HandleFunc("GET /api/v1/stories/{id}", rt.getStory)
	mux.HandleFunc("DELETE /api/v1/stories/{id}", rt.deleteStory)
	mux.HandleFunc("GET /api/v1/stories/{id}/phases/{index}", rt.getStoryPhase)
	mux.HandleFunc("POST /api/v1/stories/{id}/decisions", rt.recordDecision)
	mux.HandleFunc("POST /api/v1/stories/{id}/knowledge-check", rt.submitKnowledgeCheck)
	mux.HandleFunc("GET /api/v1/stories/{id}/progress", rt.getProgress)
	mux.HandleFunc("POST /api/v1/stories/{id}/progress", rt.updateProgress)

	mux.HandleFunc("POST /api/v1/users", rt.createUser)
	mux.HandleFunc("GET /api/v1/users/{id}", rt.getUser)
	mux.HandleFunc("PUT /api/v1/users/{id}", rt.updateUser)
	mux.HandleFunc("POST /api/v1/users/{id}/sessions", rt.createSession)
	mux.HandleFunc("GET /api/v1/users/{id}/sessions/{token}", rt.getSession)
	mux.HandleFunc("POST /api/v1/users/{id}/personality", rt.updatePersonality)
	mux.HandleFunc("GET /api/v1/users/{id}/personality", rt.getPersonality)

	mux.HandleFunc("POST /api/v1/chat/message", rt.chatMessage)
	mux.HandleFunc("GET /api/v1/chat/conversation/{token}", rt.chatConversation)
	mux.HandleFunc("GET /api/v1/chat/suggestions/{token}", rt.chatSuggestions)

	var handler http.Handler = mux
	if rt.serverMetrics != nil {
		handler = rt.serverMetrics.Middleware(rt.serviceName, handler)
	}
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": message})
}

func decodeJSONBody(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
