package http

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/bonlog/bonlog-core/internal/core/domain"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{"valid bearer token", "Bearer abc123", "abc123"},
		{"bearer with extra spaces", "Bearer   token-with-spaces   ", "token-with-spaces"},
		{"lowercase bearer", "bearer token123", "token123"},
		{"empty header", "", ""},
		{"no bearer prefix", "token123", ""},
		{"basic auth", "Basic dXNlcjpwYXNz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			result := extractBearerToken(req)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestGetAuthContext(t *testing.T) {
	if GetAuthContext(context.Background()) != nil {
		t.Error("expected nil for context without auth")
	}

	authCtx := &domain.AuthContext{UserID: "u1", Role: domain.RoleMember}
	ctx := context.WithValue(context.Background(), authContextKey, authCtx)
	if GetAuthContext(ctx) != authCtx {
		t.Error("expected stored auth context")
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var seen string
	handler := NewLoggingMiddleware(logger).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/search", nil))

	if rr.Code != http.StatusTeapot {
		t.Errorf("expected status 418, got %d", rr.Code)
	}
	id := rr.Header().Get(requestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("expected generated uuid request ID, got %q", id)
	}
	if seen != id {
		t.Errorf("handler saw request ID %q, header has %q", seen, id)
	}
	for _, want := range []string{`"path":"/search"`, `"status":418`, `"request_id":"` + id + `"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log line missing %s: %s", want, buf.String())
		}
	}
}

func TestLoggingMiddleware_KeepsIncomingRequestID(t *testing.T) {
	handler := NewLoggingMiddleware(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))).Handler(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get(requestIDHeader); got != "req-42" {
		t.Errorf("expected incoming request ID, got %q", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := NewRecoveryMiddleware(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))).Handler(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rr.Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	handler := NewCORSMiddleware([]string{"https://admin.bonlog.example"}).Handler(okHandler())

	req := httptest.NewRequest("OPTIONS", "/api/v1/admin/search/status", nil)
	req.Header.Set("Origin", "https://admin.bonlog.example")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected status 204 for preflight, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://admin.bonlog.example" {
		t.Error("expected allowed origin header")
	}
}

func TestCORSMiddleware_DisallowedOrigin(t *testing.T) {
	handler := NewCORSMiddleware([]string{"https://admin.bonlog.example"}).Handler(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("expected no CORS header for disallowed origin")
	}
	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	m := NewAuthMiddleware(tokenAuth())

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing token", "", http.StatusUnauthorized, "missing authorization token"},
		{"expired token", "Bearer expired", http.StatusUnauthorized, "token expired"},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, "invalid token"},
		{"valid token", "Bearer member-u1", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var authCtx *domain.AuthContext
			handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				authCtx = GetAuthContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("POST", "/api/v1/search/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rr.Code)
			}
			if tt.message != "" && !strings.Contains(rr.Body.String(), tt.message) {
				t.Errorf("expected body to contain %q, got %s", tt.message, rr.Body.String())
			}
			if tt.status == http.StatusOK && (authCtx == nil || authCtx.UserID != "u1") {
				t.Errorf("expected auth context for u1, got %+v", authCtx)
			}
		})
	}
}

func TestAuthMiddleware_RequireAdmin(t *testing.T) {
	m := NewAuthMiddleware(tokenAuth())
	handler := m.RequireAdmin(okHandler())

	tests := []struct {
		name   string
		ctx    *domain.AuthContext
		status int
	}{
		{"admin", &domain.AuthContext{UserID: "a", Role: domain.RoleAdmin}, http.StatusOK},
		{"member", &domain.AuthContext{UserID: "m", Role: domain.RoleMember}, http.StatusForbidden},
		{"no context", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/admin/search/status", nil)
			if tt.ctx != nil {
				req = req.WithContext(context.WithValue(req.Context(), authContextKey, tt.ctx))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rr.Code)
			}
		})
	}
}
