package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/user/codereview-adk/pkg/logging"
	"github.com/user/codereview-adk/pkg/store"
)

const defaultLimit = 100

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (a *App) handleIssues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.IssueFilter{
		Tool:     q.Get("tool"),
		File:     q.Get("file"),
		Severity: q.Get("severity"),
		Limit:    queryInt(q.Get("limit"), defaultLimit),
		Offset:   queryInt(q.Get("offset"), 0),
	}
	issues, err := a.store.ListIssues(r.Context(), f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if issues == nil {
		issues = []store.StoredIssue{}
	}
	writeJSON(w, issues)
}

func (a *App) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := a.store.Summary(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, sum)
}

func (a *App) handleFeedback(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")
	rec, err := a.store.GetFeedback(r.Context(), hash)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "no cached feedback for "+hash, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Serve the stored review as an object rather than an escaped string.
	resp := struct {
		*store.FeedbackRecord
		Feedback json.RawMessage `json:"feedback"`
	}{FeedbackRecord: rec}
	if json.Valid([]byte(rec.Feedback)) {
		resp.Feedback = json.RawMessage(rec.Feedback)
	} else {
		resp.Feedback, _ = json.Marshal(rec.Feedback)
	}
	writeJSON(w, resp)
}

func (a *App) handleSteps(w http.ResponseWriter, r *http.Request) {
	steps, err := a.store.Steps(r.Context(), queryInt(r.URL.Query().Get("limit"), 20))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if steps == nil {
		steps = []store.LogEntry{}
	}
	writeJSON(w, steps)
}

func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		logging.Logger.Debugf("invalid integer parameter %q, using %d", s, def)
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
