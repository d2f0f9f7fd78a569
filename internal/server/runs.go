package server

import (
	"net/http"

	"github.com/thomas-vilte/reviewbot/internal/logger"
	"github.com/thomas-vilte/reviewbot/internal/models"
)

type runResponse struct {
	OK bool `json:"ok"`
	*models.Report
}

// GET /api/cron
func (s *Server) handleCron(w http.ResponseWriter, r *http.Request) {
	if !authorized(r, s.cfg.Server.CronSecret) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	repo := s.repo()
	if repo.IsZero() {
		writeError(w, http.StatusInternalServerError, "GITHUB_OWNER and GITHUB_REPO must be set")
		return
	}

	report, err := s.reviewer.Sweep(r.Context(), repo)
	if err != nil {
		logger.Error(r.Context(), "sweep failed", err)
		writeError(w, runStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runResponse{OK: true, Report: report})
}

// POST /api/backfill
func (s *Server) handleBackfill(w http.ResponseWriter, r *http.Request) {
	if !authorized(r, s.cfg.Server.BackfillSecret) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	repo := s.repo()
	if repo.IsZero() {
		writeError(w, http.StatusInternalServerError, "GITHUB_OWNER and GITHUB_REPO must be set")
		return
	}

	report, err := s.reviewer.Backfill(r.Context(), repo)
	if err != nil {
		logger.Error(r.Context(), "backfill failed", err)
		writeError(w, runStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runResponse{OK: true, Report: report})
}
