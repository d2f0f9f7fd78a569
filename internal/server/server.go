// Package server exposes the review triggers over HTTP: GitHub webhook
// deliveries, the scheduled sweep and the on-demand backfill.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/thomas-vilte/reviewbot/internal/config"
	domainErrors "github.com/thomas-vilte/reviewbot/internal/errors"
	"github.com/thomas-vilte/reviewbot/internal/logger"
	"github.com/thomas-vilte/reviewbot/internal/models"
	"github.com/thomas-vilte/reviewbot/internal/notify/discord"
	"github.com/thomas-vilte/reviewbot/internal/regex"
	"github.com/thomas-vilte/reviewbot/internal/vcs"
	"github.com/thomas-vilte/reviewbot/internal/version"
)

type (
	Reviewer interface {
		Sweep(ctx context.Context, repo models.RepoRef) (*models.Report, error)
		Backfill(ctx context.Context, repo models.RepoRef) (*models.Report, error)
		ReviewOneWith(ctx context.Context, sc vcs.SourceControl, repo models.RepoRef, c models.Candidate) *models.Report
	}

	Notifier interface {
		NotifyMerge(ctx context.Context, pr discord.MergedPR) (bool, error)
		NotifyNewPR(ctx context.Context, pr discord.NewPR) (bool, error)
		NotifyNewIssue(ctx context.Context, issue discord.NewIssue) (bool, error)
	}

	// Clients resolves repository clients for scheduled runs and for
	// webhook deliveries that name their installation.
	Clients interface {
		vcs.ClientProvider
		vcs.InstallationProvider
	}
)

type Server struct {
	router   *chi.Mux
	cfg      *config.Config
	reviewer Reviewer
	notifier Notifier
	clients  Clients
}

func New(cfg *config.Config, reviewer Reviewer, notifier Notifier, clients Clients) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		cfg:      cfg,
		reviewer: reviewer,
		notifier: notifier,
		clients:  clients,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Group(func(r chi.Router) {
		if s.cfg.Review.ExecutionLimit > 0 {
			r.Use(middleware.Timeout(s.cfg.Review.ExecutionLimit))
		}
		r.Post("/api/webhook", s.handleWebhook)
		r.Get("/api/cron", s.handleCron)
		r.Post("/api/backfill", s.handleBackfill)
	})
}

func (s *Server) Router() http.Handler { return s.router }

// ListenAndServe serves until ctx is done, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server listening", "addr", s.cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Review.ExecutionLimit+5*time.Second)
		defer cancel()
		logger.Info(ctx, "server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.FullVersion()})
}

// authorized checks the bearer token against secret. An empty secret
// refuses every request.
func authorized(r *http.Request, secret string) bool {
	if secret == "" {
		return false
	}
	m := regex.BearerToken.FindStringSubmatch(r.Header.Get("Authorization"))
	if m == nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(m[1]), []byte(secret)) == 1
}

func (s *Server) repo() models.RepoRef {
	return models.RepoRef{Owner: s.cfg.GitHub.Owner, Name: s.cfg.GitHub.Repo}
}

// runStatus maps a run-level failure to a response status.
func runStatus(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrInstallationNotFound),
		errors.Is(err, domainErrors.ErrRepositoryNotFound):
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrGitHubRateLimit):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.With(r.Context(),
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.Debug(ctx, "request served",
			"status", ww.Status(),
			"elapsed", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
