package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bonlog/bonlog-core/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// SearchPostsRequest is the body of a post search
// @Description Post search request
type SearchPostsRequest struct {
	Query       string   `json:"query" example:"黒松"`
	GenreIDs    []string `json:"genre_ids,omitempty"`
	ExcludedIDs []string `json:"excluded_ids,omitempty"`
	Cursor      string   `json:"cursor,omitempty"`
	Limit       int      `json:"limit,omitempty" example:"20"`
}

// SearchUsersRequest is the body of a user search
// @Description User search request
type SearchUsersRequest struct {
	Query       string   `json:"query" example:"bonsai"`
	ExcludedIDs []string `json:"excluded_ids,omitempty"`
	Cursor      string   `json:"cursor,omitempty"`
	Limit       int      `json:"limit,omitempty" example:"20"`
}

// ExtensionResponse reports one extension's state
// @Description Extension availability
type ExtensionResponse struct {
	Name      string `json:"name" example:"pg_bigm"`
	Available bool   `json:"available"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns 200 once the database answers
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

// Search endpoints

// handleSearchPosts godoc
// @Summary      Search posts
// @Description  Full-text search over visible posts. Authors the caller blocked or muted are excluded.
// @Tags         Search
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      SearchPostsRequest  true  "Search request"
// @Success      200      {object}  domain.SearchPage
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      503      {object}  ErrorResponse  "Search unavailable"
// @Router       /search/posts [post]
func (s *Server) handleSearchPosts(w http.ResponseWriter, r *http.Request) {
	var req SearchPostsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	excluded, ok := s.viewerExclusions(w, r, req.ExcludedIDs)
	if !ok {
		return
	}

	limit := s.searchService.PageSize(req.Limit)
	ids, err := s.searchService.SearchPosts(r.Context(), req.Query, domain.PostSearchOptions{
		ExcludedIDs: excluded,
		FilterIDs:   req.GenreIDs,
		Cursor:      req.Cursor,
		Limit:       limit,
	})
	if err != nil {
		s.writeSearchError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.NewSearchPage(ids, limit))
}

// handleSearchUsers godoc
// @Summary      Search users
// @Description  Full-text search over nicknames and bios. The caller never appears in the results.
// @Tags         Search
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      SearchUsersRequest  true  "Search request"
// @Success      200      {object}  domain.SearchPage
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      503      {object}  ErrorResponse  "Search unavailable"
// @Router       /search/users [post]
func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	var req SearchUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	excluded, ok := s.viewerExclusions(w, r, req.ExcludedIDs)
	if !ok {
		return
	}

	var currentUserID string
	if authCtx := GetAuthContext(r.Context()); authCtx != nil {
		currentUserID = authCtx.UserID
	}

	limit := s.searchService.PageSize(req.Limit)
	ids, err := s.searchService.SearchUsers(r.Context(), req.Query, domain.UserSearchOptions{
		ExcludedIDs:   excluded,
		CurrentUserID: currentUserID,
		Cursor:        req.Cursor,
		Limit:         limit,
	})
	if err != nil {
		s.writeSearchError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.NewSearchPage(ids, limit))
}

// viewerExclusions merges the request's exclusions with the caller's block and mute relations.
// It writes the error response itself and returns false on failure.
func (s *Server) viewerExclusions(w http.ResponseWriter, r *http.Request, requested []string) ([]string, bool) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		return requested, true
	}

	related, err := s.searchService.ExclusionsFor(r.Context(), authCtx.UserID)
	if err != nil {
		s.logger.Error("failed to load exclusions", "user_id", authCtx.UserID, "error", err,
			"request_id", GetRequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "failed to load exclusions")
		return nil, false
	}

	return mergeIDs(requested, related), true
}

func (s *Server) writeSearchError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("search failed", "error", err, "request_id", GetRequestID(r.Context()))
	if errors.Is(err, domain.ErrSearchFailed) {
		writeError(w, http.StatusServiceUnavailable, "search unavailable")
		return
	}
	writeError(w, http.StatusInternalServerError, "search failed")
}

// mergeIDs returns the union of a and b, keeping first-seen order
func mergeIDs(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, id := range list {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Search admin endpoints

// handleSearchStatus godoc
// @Summary      Search status
// @Description  Configured search mode and live availability of pg_bigm and pg_trgm
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.SearchStatus
// @Router       /admin/search/status [get]
func (s *Server) handleSearchStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.searchAdmin.Status(r.Context()))
}

// handleCreateSearchIndexes godoc
// @Summary      Provision search indexes
// @Description  Creates the GIN indexes the configured mode needs. Idempotent.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.ProvisionResult
// @Failure      409  {object}  domain.ProvisionResult  "Provisioning already in progress"
// @Failure      500  {object}  domain.ProvisionResult
// @Router       /admin/search/indexes [post]
func (s *Server) handleCreateSearchIndexes(w http.ResponseWriter, r *http.Request) {
	result := s.searchAdmin.CreateSearchIndexes(r.Context())
	switch {
	case result.Success:
		writeJSON(w, http.StatusOK, result)
	case result.InProgress:
		writeJSON(w, http.StatusConflict, result)
	default:
		writeJSON(w, http.StatusInternalServerError, result)
	}
}

// handleGetExtension godoc
// @Summary      Check extension
// @Description  Reports whether a search extension is installed
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "pg_bigm or pg_trgm"
// @Success      200   {object}  ExtensionResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /admin/search/extensions/{name} [get]
func (s *Server) handleGetExtension(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !domain.IsSearchExtension(name) {
		writeError(w, http.StatusBadRequest, "unknown search extension")
		return
	}

	writeJSON(w, http.StatusOK, ExtensionResponse{
		Name:      name,
		Available: s.searchAdmin.IsExtensionAvailable(r.Context(), name),
	})
}

// handleEnableExtension godoc
// @Summary      Enable extension
// @Description  Installs a search extension if it is missing. Requires sufficient database privileges.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "pg_bigm or pg_trgm"
// @Success      200   {object}  ExtensionResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ExtensionResponse
// @Router       /admin/search/extensions/{name} [post]
func (s *Server) handleEnableExtension(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !domain.IsSearchExtension(name) {
		writeError(w, http.StatusBadRequest, "unknown search extension")
		return
	}

	if !s.searchAdmin.EnableExtension(r.Context(), name) {
		writeJSON(w, http.StatusInternalServerError, ExtensionResponse{Name: name, Available: false})
		return
	}
	writeJSON(w, http.StatusOK, ExtensionResponse{Name: name, Available: true})
}

// Helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
