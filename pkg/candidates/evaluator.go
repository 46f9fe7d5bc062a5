package candidates

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/promptradar/pkg/constants"
	"github.com/agentstation/promptradar/pkg/errors"
	"github.com/agentstation/promptradar/pkg/logging"
	"github.com/agentstation/promptradar/pkg/normalize"
	"github.com/agentstation/promptradar/pkg/sources"
)

// Fetcher retrieves the raw text behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Observer is notified of every finished evaluation.
type Observer interface {
	ObserveEvaluation(c Candidate, elapsed time.Duration)
}

// Evaluator fetches, normalizes and scores sources.
type Evaluator struct {
	fetcher  Fetcher
	observer Observer
	now      func() utc.Time
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithObserver reports each evaluation to o.
func WithObserver(o Observer) EvaluatorOption {
	return func(e *Evaluator) {
		e.observer = o
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() utc.Time) EvaluatorOption {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEvaluator returns an Evaluator that fetches through f.
func NewEvaluator(f Fetcher, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{fetcher: f, now: utc.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate turns src into a Candidate. It never fails: fetch and content
// errors produce a failed candidate stamped with the time the attempt began.
func (e *Evaluator) Evaluate(ctx context.Context, src sources.Source) Candidate {
	start := time.Now()
	c := e.evaluate(ctx, src)
	elapsed := time.Since(start)

	logger := logging.FromContext(ctx)
	if c.OK() {
		logger.Debug().
			Str("source_url", src.URL).
			Str("hash", c.ContentHash).
			Float64("confidence", c.Confidence).
			Dur("elapsed", elapsed).
			Msg("Source evaluated")
	} else {
		logger.Warn().
			Str("source_url", src.URL).
			Str("source_type", src.Type.String()).
			Err(c.Err).
			Msg("Source failed")
	}

	if e.observer != nil {
		e.observer.ObserveEvaluation(c, elapsed)
	}
	return c
}

func (e *Evaluator) evaluate(ctx context.Context, src sources.Source) Candidate {
	c := Candidate{Source: src, FetchedAt: e.now()}

	raw, err := e.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		c.Err = err
		return c
	}
	if src.Type.IsMarkup() {
		raw = normalize.StripMarkup(raw)
	}

	content := normalize.Normalize(raw)
	length := normalize.Length(content)
	if length < constants.MinContentLength {
		c.Err = &errors.ContentTooShortError{URL: src.URL, Length: length, Min: constants.MinContentLength}
		return c
	}

	c.Content = content
	c.ContentHash = Hash(content)
	c.Confidence = Confidence(src, length)
	c.Preview = normalize.Preview(content, constants.PreviewLength)
	return c
}

// Confidence scores a source whose normalized content has length runes.
// The result is rounded to three decimals and lies in [0, 1] for weights in
// [0, 1].
func Confidence(src sources.Source, length int) float64 {
	quality := math.Min(1, math.Log10(float64(length)+10)/5)
	score := src.Type.BaseScore()*constants.BaseScoreShare +
		src.EffectiveWeight()*constants.SourceWeightShare +
		quality*constants.QualityShare
	return round3(score)
}

// Hash is the hex sha256 of text, used as content identity.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
