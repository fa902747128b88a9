package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/user/codereview-adk/pkg/adk"
	"github.com/user/codereview-adk/pkg/logging"
	"github.com/user/codereview-adk/pkg/store"
)

const (
	DefaultTemperature = 1.0
	DefaultMaxTokens   = 512
	noFeedback         = "No feedback returned."
)

// Cache is the slice of the store the generator needs.
type Cache interface {
	CachedFeedback(ctx context.Context, codeHash string) (string, bool, error)
	SaveFeedback(ctx context.Context, rec store.FeedbackRecord) (bool, error)
}

// Generator produces reviews for code, reusing cached replies.
type Generator struct {
	Provider    adk.LLMProvider
	Cache       Cache
	Audit       *AuditLog
	Temperature float64
	MaxTokens   int
	Retry       RetryPolicy
}

// Result is a review plus how it was obtained.
type Result struct {
	Review Review `json:"review"`
	Key    string `json:"code_hash"`
	Cached bool   `json:"cached"`
}

func NewGenerator(provider adk.LLMProvider, cache Cache, audit *AuditLog) *Generator {
	return &Generator{
		Provider:    provider,
		Cache:       cache,
		Audit:       audit,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Retry:       DefaultRetry,
	}
}

// Generate returns the review for code and findings. A cached reply is
// returned without calling the model. Cache and audit-log failures are
// logged and never fail the call.
func (g *Generator) Generate(ctx context.Context, code string, findings []Finding) (*Result, error) {
	if findings == nil {
		findings = []Finding{}
	}
	key, err := CacheKey(code, findings)
	if err != nil {
		return nil, err
	}

	if g.Cache != nil {
		cached, ok, err := g.Cache.CachedFeedback(ctx, key)
		if err != nil {
			logging.Logger.Warnw("Feedback cache lookup failed", "key", key, "error", err)
		} else if ok && cached != "" {
			logging.Logger.Infow("Using cached feedback", "key", key)
			return &Result{Review: ParseReply(cached), Key: key, Cached: true}, nil
		}
	}

	if g.Provider == nil {
		return nil, errors.New("no model provider configured")
	}
	prompt, err := BuildPrompt(code, findings)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	var raw string
	err = g.Retry.Do(ctx, func(ctx context.Context) error {
		out, err := g.Provider.Complete(ctx, adk.Request{
			System:      adk.GetSystemPrompt(),
			User:        prompt,
			Temperature: g.Temperature,
			MaxTokens:   g.MaxTokens,
		})
		if errors.Is(err, adk.ErrEmptyResponse) || (err == nil && strings.TrimSpace(out) == "") {
			raw = noFeedback
			return nil
		}
		if err != nil {
			return err
		}
		raw = out
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}

	review := ParseReply(raw)
	g.remember(ctx, key, code, findings, review)
	return &Result{Review: review, Key: key}, nil
}

func (g *Generator) remember(ctx context.Context, key, code string, findings []Finding, review Review) {
	model := g.Provider.Model()

	if g.Cache != nil {
		reviewJSON, err := json.Marshal(review)
		if err == nil {
			var findingsJSON []byte
			findingsJSON, err = canonicalJSON(findings)
			if err == nil {
				_, err = g.Cache.SaveFeedback(ctx, store.FeedbackRecord{
					CodeHash:     key,
					Code:         code,
					ToolFindings: string(findingsJSON),
					Feedback:     string(reviewJSON),
					Model:        model,
				})
			}
		}
		if err != nil {
			logging.Logger.Warnw("Failed to cache feedback", "key", key, "error", err)
		}
	}

	if g.Audit != nil {
		if err := g.Audit.Append(AuditEntry{Code: code, Findings: findings, Response: review, Model: model}); err != nil {
			logging.Logger.Warnw("Failed to append audit log", "path", g.Audit.Path, "error", err)
		}
	}
}
