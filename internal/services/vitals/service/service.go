// Package service runs the vitals check: search for news about the subject and
// ask the oracle whether it shows the subject has died
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pulse/internal/adapters/search"
	"pulse/internal/platform/logger"
	"pulse/internal/services/vitals/domain"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Defaults applied by New
const (
	DefaultQuery       = "{subject} obituary"
	DefaultTimeout     = 20 * time.Second
	DefaultMaxEvidence = 5
	maxSnippetRunes    = 300
)

// Config controls the vitals service
type Config struct {
	Subject string
	// Query is the search template, {subject} is replaced by Subject
	Query       string
	Timeout     time.Duration
	MaxEvidence int
}

// Service defines the vitals service contract
type Service interface {
	domain.ServicePort
	RunDiagnostics(ctx context.Context) bool
}

// Svc implements the vitals service
type Svc struct {
	cfg    Config
	search domain.Searcher
	oracle domain.Oracle
	now    func() time.Time
}

// New constructs a vitals service
func New(cfg Config, s domain.Searcher, o domain.Oracle) *Svc {
	if s == nil || o == nil {
		panic("vitals.Service requires a Searcher and an Oracle")
	}
	if strings.TrimSpace(cfg.Subject) == "" {
		panic("vitals.Service requires a subject")
	}
	if cfg.Query == "" {
		cfg.Query = DefaultQuery
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxEvidence <= 0 {
		cfg.MaxEvidence = DefaultMaxEvidence
	}
	return &Svc{cfg: cfg, search: s, oracle: o, now: time.Now}
}

// Query returns the normalised search query for the configured subject
func (s *Svc) Query() string {
	return search.Normalize(strings.ReplaceAll(s.cfg.Query, "{subject}", s.cfg.Subject))
}

// RunDiagnostics reports whether the subject appears to have died
// every failure is logged and reported as false
func (s *Svc) RunDiagnostics(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	log := logger.C(ctx).With().Str("component", "vitals").Str("subject", s.cfg.Subject).Logger()
	start := s.now()

	q := s.Query()
	hits, err := s.search.Search(ctx, q)
	if err != nil {
		log.Warn().Err(err).Str("query", q).Msg("vitals: search failed")
		return false
	}
	if len(hits) == 0 {
		log.Info().Str("query", q).Msg("vitals: no search results")
		return false
	}
	if len(hits) > s.cfg.MaxEvidence {
		hits = hits[:s.cfg.MaxEvidence]
	}

	dead, err := s.oracle.Ask(ctx, s.prompt(hits))
	if err != nil {
		log.Warn().Err(err).Int("evidence", len(hits)).Msg("vitals: oracle failed")
		return false
	}
	log.Info().
		Bool("deceased", dead).
		Int("evidence", len(hits)).
		Dur("elapsed", s.now().Sub(start)).
		Msg("vitals: diagnostics done")
	return dead
}

// Check runs the diagnostics and stamps the result
func (s *Svc) Check(ctx context.Context) (domain.Result, error) {
	dead := s.RunDiagnostics(ctx)
	return domain.Result{Subject: s.cfg.Subject, Deceased: dead, CheckedAt: s.now().UTC()}, nil
}

func (s *Svc) prompt(hits []domain.Hit) string {
	name := cases.Title(language.Und).String(s.cfg.Subject)
	var b strings.Builder
	fmt.Fprintf(&b, "Here are recent search results about %s.\n\n", name)
	for i, h := range hits {
		fmt.Fprintf(&b, "%d. %s\n%s\n%s\n\n", i+1, h.Title, clip(h.Snippet, maxSnippetRunes), h.Link)
	}
	fmt.Fprintf(&b, "Do these results report that %s has died? Answer with a single word: yes or no.", name)
	return b.String()
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
