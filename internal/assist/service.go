// Package assist answers customer questions: route, search the cached data,
// and summarize pricing matches through the LLM.
package assist

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/garagehq/servicebot/internal/answer"
	"github.com/garagehq/servicebot/internal/cache"
	"github.com/garagehq/servicebot/internal/search"
	"github.com/garagehq/servicebot/pkg/anthropic"
)

const (
	// DefaultModel is the summarizer model when config leaves it unset.
	DefaultModel = "claude-haiku-4-5-20251001"
	// DefaultMaxTokens bounds the summarizer response length.
	DefaultMaxTokens = 1024

	minMaxTokens = 800
	maxMaxTokens = 2000

	noPricingMsg = "I couldn't find any pricing information matching your question. Try naming the vehicle model, e.g. \"MG HS interim service\"."
	noRecallsMsg = "I couldn't find any recall notices matching your question."
)

// Freshener triggers a data refresh when the cache is missing or stale.
type Freshener interface {
	EnsureFresh(ctx context.Context) error
}

// Config tunes the assistant.
type Config struct {
	Model     string
	MaxTokens int64
	TopK      int
	MinScore  int
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.MaxTokens < minMaxTokens {
		c.MaxTokens = minMaxTokens
	}
	if c.MaxTokens > maxMaxTokens {
		c.MaxTokens = maxMaxTokens
	}
	return c
}

// Service answers customer queries from the cached pricing and recall data.
type Service struct {
	cache     *cache.Cache
	refresher Freshener
	answers   *answer.Cache
	llm       anthropic.Client
	cfg       Config
}

// New creates the assistant service.
func New(c *cache.Cache, refresher Freshener, answers *answer.Cache, llm anthropic.Client, cfg Config) *Service {
	return &Service{
		cache:     c,
		refresher: refresher,
		answers:   answers,
		llm:       llm,
		cfg:       cfg.withDefaults(),
	}
}

// Answer handles one customer query end to end: answer cache, freshness
// check, routing, search, and summarization.
func (s *Service) Answer(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", eris.New("assist: query is required")
	}

	if cached, ok := s.answers.Get(query); ok {
		zap.L().Debug("assist: answer cache hit", zap.String("query", query))
		return cached, nil
	}

	if err := s.refresher.EnsureFresh(ctx); err != nil {
		return "", eris.Wrap(err, "assist: refresh data")
	}

	var (
		resp      string
		cacheable bool
		err       error
	)
	if isRecallQuery(query) {
		resp, cacheable = s.answerRecalls(query)
	} else {
		resp, cacheable, err = s.answerPricing(ctx, query)
		if err != nil {
			return "", err
		}
	}

	if cacheable {
		s.answers.Put(query, resp)
	}
	return resp, nil
}

// isRecallQuery routes a query to the recall path when any whitespace token,
// with surrounding punctuation stripped, is exactly "recall" or "recalls".
func isRecallQuery(query string) bool {
	for _, t := range search.Tokenize(query) {
		t = strings.TrimFunc(t, unicode.IsPunct)
		if t == "recall" || t == "recalls" {
			return true
		}
	}
	return false
}

func (s *Service) answerRecalls(query string) (string, bool) {
	snap := s.cache.Snapshot()
	if snap == nil || len(snap.Recalls) == 0 {
		return noRecallsMsg, false
	}

	matches := search.Recalls(snap.Recalls, query)
	if len(matches) == 0 {
		return noRecallsMsg, false
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d recall notice(s):\n", len(matches))
	for _, m := range matches {
		fmt.Fprintf(&sb, "- %s\n", m.Name)
	}
	return strings.TrimRight(sb.String(), "\n"), true
}

func (s *Service) answerPricing(ctx context.Context, query string) (string, bool, error) {
	snap := s.cache.Snapshot()
	if snap == nil || len(snap.Pricing) == 0 {
		return noPricingMsg, false, nil
	}

	matches := search.Pricing(snap.Pricing, query, search.Options{
		TopK:     s.cfg.TopK,
		MinScore: s.cfg.MinScore,
	})
	if len(matches) == 0 {
		return noPricingMsg, false, nil
	}

	prompt, err := buildPrompt(query, matches)
	if err != nil {
		return "", false, err
	}

	resp, err := s.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.cfg.Model,
		MaxTokens: s.cfg.MaxTokens,
		System:    anthropic.BuildCachedSystemBlocks(systemPrompt),
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", false, eris.Wrap(err, "assist: summarize pricing matches")
	}
	resp.Usage.LogCost(s.cfg.Model, "summarize")

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", false, eris.New("assist: empty summarizer response")
	}
	return text, true, nil
}
