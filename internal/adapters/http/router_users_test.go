package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
	"github.com/minerva-learning/minerva-backend/internal/core/ports"
)

func TestCreateUserSuccess(t *testing.T) {
	handler := newTestHandler(routerFakes{
		profiles: profilesFake{
			user: &domain.User{ID: "user-1", Username: "ada", LearningStyle: domain.StyleVisual},
		},
	})

	payload, _ := json.Marshal(map[string]any{
		"username": "ada",
		"email":    "ada@example.com",
		"password": "correcthorse",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	var resp map[string]any
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["username"] != "ada" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if _, leaked := resp["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}
}

func TestCreateUserMapsValidationTo400(t *testing.T) {
	handler := newTestHandler(routerFakes{
		profiles: profilesFake{
			err: domain.WrapError(domain.ErrInvalidInput, "create user", errors.New("password too short")),
		},
	})

	payload, _ := json.Marshal(map[string]any{"username": "ada", "email": "a@b", "password": "x"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestGetSessionForOtherUserReturns403(t *testing.T) {
	handler := newTestHandler(routerFakes{
		profiles: profilesFake{
			session: &domain.Session{Token: "tok-1", UserID: "user-2", ExpiresAt: time.Now().Add(time.Hour)},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/user-1/sessions/tok-1", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
}

func TestGetSessionExpiredMapsTo401(t *testing.T) {
	handler := newTestHandler(routerFakes{
		profiles: profilesFake{
			err: domain.WrapError(domain.ErrUnauthorized, "get session", errors.New("expired")),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/user-1/sessions/tok-1", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestUpdatePersonalityRequiresTraits(t *testing.T) {
	handler := newTestHandler(routerFakes{})

	payload, _ := json.Marshal(map[string]any{"traits": map[string]any{}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/user-1/personality", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestGetPersonalityReturnsProfile(t *testing.T) {
	handler := newTestHandler(routerFakes{
		profiles: profilesFake{
			profile: &ports.PersonalityProfile{
				UserID:    "user-1",
				Traits:    map[string]any{"curiosity": "high"},
				Archetype: "explorer",
			},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/user-1/personality", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var resp ports.PersonalityProfile
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Archetype != "explorer" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
