package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
)

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}
	if s.embedder != nil {
		if err := s.embedder.HealthCheck(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "embedding service unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Authenticate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, domain.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "account disabled")
		default:
			writeError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx != nil {
		_ = s.authService.Logout(r.Context(), authCtx.SessionID)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// User endpoints

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := s.userService.Get(r.Context(), authCtx.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type createUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Tier     string `json:"tier"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tier := domain.TierName(req.Tier)
	if tier == "" {
		tier = domain.TierBasic
	}
	if _, ok := s.tiers[tier]; !ok {
		writeError(w, http.StatusBadRequest, "unknown tier")
		return
	}

	user, err := s.userService.Create(r.Context(), req.Email, req.Name, req.Password, tier)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "email and password are required")
		case errors.Is(err, domain.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "email already registered")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Resume indexing

type jobAcceptedResponse struct {
	JobID string `json:"job_id"`
}

func (s *Server) handleIndexResume(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := s.userService.Get(r.Context(), authCtx.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unknown user")
		return
	}

	// Unknown tier names fall back to the most restrictive limits, the
	// same way admission quotas do.
	tier, ok := s.tiers[user.Tier]
	if !ok {
		tier = s.tiers[domain.TierBasic]
	}
	data, err := readUpload(r, tier.MaxResumeBytes)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "resume exceeds tier size limit")
		default:
			writeError(w, http.StatusBadRequest, "invalid upload")
		}
		return
	}

	text, err := extractResumeText(data, r.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotPDF):
			writeError(w, http.StatusBadRequest, "file is not a valid PDF")
		default:
			writeError(w, http.StatusBadRequest, "could not extract resume text")
		}
		return
	}

	jobID, err := s.indexingService.StartIndexing(r.Context(), user, text)
	if err != nil {
		writeJobStartError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, jobAcceptedResponse{JobID: jobID})
}

// Letter generation

func (s *Server) handleGenerateLetter(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	listingURL := strings.TrimSpace(r.URL.Query().Get("listing_url"))
	resumeID := strings.TrimSpace(r.URL.Query().Get("resume_id"))
	if listingURL == "" || resumeID == "" {
		writeError(w, http.StatusBadRequest, "listing_url and resume_id are required")
		return
	}

	user, err := s.userService.Get(r.Context(), authCtx.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unknown user")
		return
	}

	jobID, err := s.letterService.StartGeneration(r.Context(), user, listingURL, resumeID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrListingUnreachable):
			writeError(w, http.StatusUnprocessableEntity, "listing page is unreachable")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "indexed resume not found")
		case errors.Is(err, domain.ErrBundleMismatch):
			writeError(w, http.StatusConflict, "stored resume bundle does not match")
		case errors.Is(err, domain.ErrBundleCorrupt):
			writeError(w, http.StatusConflict, "stored resume bundle is corrupt")
		default:
			writeJobStartError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusAccepted, jobAcceptedResponse{JobID: jobID})
}

func (s *Server) handleGetLetter(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	jobID := r.PathValue("id")
	letter, err := s.letterService.Result(r.Context(), authCtx.UserID, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "letter not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load letter")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(letter)
}

// Job status

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	jobID := r.PathValue("id")
	job, err := s.jobService.Get(r.Context(), authCtx.UserID, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}

	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	jobs, err := s.jobService.List(r.Context(), authCtx.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []*domain.Job{}
	}

	writeJSON(w, http.StatusOK, jobs)
}

// writeJobStartError maps admission and dispatch failures shared by the
// job-starting endpoints.
func writeJobStartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		writeError(w, http.StatusTooManyRequests, "hourly quota exceeded")
	case errors.Is(err, domain.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, "server is busy, try again later")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid request")
	default:
		writeError(w, http.StatusInternalServerError, "failed to start job")
	}
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
