package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/user/codereview-adk/pkg/logging"
	"github.com/user/codereview-adk/pkg/store"
)

// Reader is the read-only part of the store the HTTP view needs.
type Reader interface {
	ListIssues(ctx context.Context, f store.IssueFilter) ([]store.StoredIssue, error)
	Summary(ctx context.Context) (store.Summary, error)
	GetFeedback(ctx context.Context, codeHash string) (*store.FeedbackRecord, error)
	Steps(ctx context.Context, limit int) ([]store.LogEntry, error)
}

// App holds server dependencies.
type App struct {
	store Reader
}

func NewApp(r Reader) *App {
	return &App{store: r}
}

// Handler returns the HTTP handler (router with CORS, recovery, routes).
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", a.handleHealth)
		r.Get("/issues", a.handleIssues)
		r.Get("/issues/summary", a.handleSummary)
		r.Get("/feedback/{hash}", a.handleFeedback)
		r.Get("/preprocessing", a.handleSteps)
	})
	return r
}

// corsMiddleware lets a dashboard on another port read the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Logger.Infof("Listening on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
