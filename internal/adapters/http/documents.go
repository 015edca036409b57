package httpadapter

import (
	"net/http"
	"strings"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
)

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.FormValue("user_id"))
	if userID == "" {
		writeBadRequest(w, "user_id is required")
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	doc, err := rt.ingestor.Upload(r.Context(), userID, fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordUpload(rt.serviceName, string(doc.FileType))
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeBadRequest(w, "user_id is required")
		return
	}

	docs, err := rt.reader.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs, "total": len(docs)})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeBadRequest(w, "user_id is required")
		return
	}

	doc, err := rt.reader.GetByID(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// getDocumentContent returns the extracted text and chunks. While the
// worker is still processing the document it answers 202 so clients can
// poll.
func (rt *Router) getDocumentContent(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeBadRequest(w, "user_id is required")
		return
	}

	documentID := r.PathValue("id")
	doc, err := rt.reader.GetByID(r.Context(), userID, documentID)
	if err != nil {
		writeError(w, err)
		return
	}

	switch doc.Status {
	case domain.StatusProcessed:
	case domain.StatusFailed:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"status": string(doc.Status),
			"error":  doc.Error,
		})
		return
	default:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": string(doc.Status)})
		return
	}

	chunks, err := rt.reader.ListChunks(r.Context(), userID, documentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_id":     doc.ID,
		"status":          string(doc.Status),
		"extracted_text":  doc.ExtractedText,
		"key_concepts":    doc.KeyConcepts,
		"learning_goals":  doc.LearningGoals,
		"difficulty":      string(doc.Difficulty),
		"reading_minutes": doc.ReadingMinutes,
		"chunks":          chunks,
	})
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeBadRequest(w, "user_id is required")
		return
	}

	if err := rt.ingestor.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
