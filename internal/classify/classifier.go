package classify

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ppiankov/evitrend/internal/cache"
	"github.com/ppiankov/evitrend/internal/logging"
	"github.com/ppiankov/evitrend/internal/model"
	"github.com/ppiankov/evitrend/internal/worker"
)

// Classifier labels every evidence item of a statement with a correctness
// verdict. Input statements are never modified: Classify returns labeled copies.
type Classifier struct {
	judge      Judge
	cache      cache.Cache
	cacheModel string
	cacheTTL   time.Duration
	limiter    *worker.Limiter
	limiterKey string
	logger     *log.Logger
}

// Option configures a Classifier
type Option func(*Classifier)

// WithCache stores verdicts under cache.VerdictKey so repeated runs skip the
// judge. modelName is part of the key: verdicts from different models never mix.
func WithCache(c cache.Cache, modelName string, ttl time.Duration) Option {
	return func(cl *Classifier) {
		cl.cache = c
		cl.cacheModel = modelName
		cl.cacheTTL = ttl
	}
}

// WithLimiter throttles judge calls under key
func WithLimiter(l *worker.Limiter, key string) Option {
	return func(cl *Classifier) {
		cl.limiter = l
		cl.limiterKey = key
	}
}

// WithLogger replaces the package logger
func WithLogger(l *log.Logger) Option {
	return func(cl *Classifier) {
		cl.logger = l
	}
}

// NewClassifier creates a classifier around judge
func NewClassifier(judge Judge, opts ...Option) *Classifier {
	c := &Classifier{judge: judge}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.WithPrefix("classify")
	}
	return c
}

// Classify returns deep copies of statements with every evidence labeled 0 or 1.
// Judge failures of any kind resolve to 0 and are counted in Failures.
func (c *Classifier) Classify(ctx context.Context, statements []model.Statement) ([]model.Statement, model.ClassificationStats) {
	var stats model.ClassificationStats
	out := make([]model.Statement, len(statements))

	for i, stmt := range statements {
		labeled := stmt.Clone()
		correct := 0

		for j, ev := range labeled.Evidence {
			q := Query{
				EvidenceText: ev.Text,
				Subject:      labeled.Subj.Name,
				Object:       labeled.Obj.Name,
				Relationship: labeled.Type,
			}

			supported, s := c.verdict(ctx, q)
			stats.Add(s)

			label := model.NotSupported
			if supported {
				label = model.Supported
				correct++
			}
			labeled.Evidence[j] = ev.WithCorrectness(label)
		}

		total := len(labeled.Evidence)
		stats.Statements++
		stats.Evidence += total
		stats.Supported += correct
		stats.NotSupported += total - correct

		c.logger.Info("classified statement",
			"subject", labeled.Subj.Name,
			"type", labeled.Type,
			"object", labeled.Obj.Name,
			"total", total,
			"correct", correct,
			"incorrect", total-correct)

		out[i] = labeled
	}

	return out, stats
}

// verdict resolves one query through cache, limiter and judge. The returned
// stats only carry Failures and CacheHits.
func (c *Classifier) verdict(ctx context.Context, q Query) (bool, model.ClassificationStats) {
	var stats model.ClassificationStats

	var key string
	if c.cache != nil {
		key = cache.VerdictKey(c.cacheModel, q.Subject, q.Relationship, q.Object, q.EvidenceText)
		if b, found := c.cache.Get(key); found {
			if supported, ok := cache.DecodeVerdict(b); ok {
				stats.CacheHits++
				return supported, stats
			}
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.limiterKey); err != nil {
			c.logger.Warn("rate limit wait failed", "err", err)
			stats.Failures++
			return false, stats
		}
	}

	supported, err := c.judge.Judge(ctx, q)
	if err != nil {
		c.logger.Warn("correctness check failed", "subject", q.Subject, "object", q.Object, "err", err)
		stats.Failures++
		return false, stats
	}

	if c.cache != nil {
		if err := c.cache.Set(key, cache.EncodeVerdict(supported), c.cacheTTL); err != nil {
			c.logger.Debug("cache write failed", "err", err)
		}
	}

	return supported, stats
}

// Prune returns copies keeping only validated evidence. Statements left with
// no evidence are kept.
func Prune(statements []model.Statement) []model.Statement {
	out := make([]model.Statement, len(statements))
	for i, stmt := range statements {
		pruned := stmt.Clone()
		kept := make([]model.Evidence, 0, len(pruned.Evidence))
		for _, ev := range pruned.Evidence {
			if ev.IsValidated() {
				kept = append(kept, ev)
			}
		}
		pruned.Evidence = kept
		out[i] = pruned
	}
	return out
}
