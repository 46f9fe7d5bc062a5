package candidates

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/promptradar/pkg/errors"
	"github.com/agentstation/promptradar/pkg/sources"
)

type fakeFetcher struct {
	bodies map[string]string
	errs   map[string]error
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	return f.bodies[url], nil
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []Candidate
}

func (o *recordingObserver) ObserveEvaluation(c Candidate, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, c)
}

var fixedNow = utc.Time{Time: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}

func newTestEvaluator(f Fetcher, opts ...EvaluatorOption) *Evaluator {
	opts = append(opts, WithClock(func() utc.Time { return fixedNow }))
	return NewEvaluator(f, opts...)
}

func TestEvaluateFileSource(t *testing.T) {
	body := strings.Repeat("x", 500)
	f := &fakeFetcher{bodies: map[string]string{"https://raw/prompt.txt": body}}
	src := sources.Source{Type: sources.TypeFile, URL: "https://raw/prompt.txt", Weight: sources.Weight(0.9)}

	c := newTestEvaluator(f).Evaluate(context.Background(), src)

	require.True(t, c.OK())
	assert.Equal(t, 0.876, c.Confidence)
	assert.Equal(t, Hash(body), c.ContentHash)
	assert.Len(t, c.ContentHash, 64)
	assert.Equal(t, body, c.Content)
	assert.Equal(t, strings.Repeat("x", 180)+"…", c.Preview)
	assert.True(t, c.FetchedAt.Time.Equal(fixedNow.Time))
	assert.Empty(t, c.Error())
}

func TestEvaluateStripsMarkupForDocs(t *testing.T) {
	html := "<html><head><style>p{}</style></head><body><p>You are a coding assistant that follows instructions.</p></body></html>"
	f := &fakeFetcher{bodies: map[string]string{"https://docs": html}}

	doc := newTestEvaluator(f).Evaluate(context.Background(), sources.Source{Type: sources.TypeDoc, URL: "https://docs"})
	require.True(t, doc.OK())
	assert.Equal(t, "You are a coding assistant that follows instructions.", doc.Content)

	// raw files keep their markup
	file := newTestEvaluator(f).Evaluate(context.Background(), sources.Source{Type: sources.TypeFile, URL: "https://docs"})
	require.True(t, file.OK())
	assert.Contains(t, file.Content, "<p>")
}

func TestEvaluateContentTooShort(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{"https://short": strings.Repeat("a", 39)}}
	c := newTestEvaluator(f).Evaluate(context.Background(), sources.Source{Type: sources.TypeFile, URL: "https://short"})

	require.False(t, c.OK())
	assert.Equal(t, "Content too short after normalization", c.Error())
	assert.True(t, errors.Is(c.Err, pkgerrors.ErrContentTooShort))
	assert.Empty(t, c.ContentHash)
	assert.True(t, c.FetchedAt.Time.Equal(fixedNow.Time))
}

func TestEvaluateExactlyMinimumLength(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{"https://min": strings.Repeat("é", 40)}}
	c := newTestEvaluator(f).Evaluate(context.Background(), sources.Source{Type: sources.TypeGist, URL: "https://min"})
	assert.True(t, c.OK())
}

func TestEvaluateFetchFailure(t *testing.T) {
	f := &fakeFetcher{errs: map[string]error{"https://gone": &pkgerrors.FetchError{URL: "https://gone", StatusCode: 404}}}
	obs := &recordingObserver{}
	c := newTestEvaluator(f, WithObserver(obs)).Evaluate(context.Background(), sources.Source{Type: sources.TypeDoc, URL: "https://gone"})

	require.False(t, c.OK())
	assert.Equal(t, "HTTP 404", c.Error())
	assert.Equal(t, "https://gone", c.Source.URL)
	require.Len(t, obs.seen, 1)
	assert.False(t, obs.seen[0].OK())
}

func TestConfidence(t *testing.T) {
	t.Run("default weight", func(t *testing.T) {
		// 0.85*0.6 + 0.5*0.25 + min(1, log10(110)/5)*0.15
		assert.Equal(t, 0.696, Confidence(sources.Source{Type: sources.TypeDoc}, 100))
	})

	t.Run("unknown type", func(t *testing.T) {
		got := Confidence(sources.Source{Type: "forum", Weight: sources.Weight(0)}, 40)
		assert.Equal(t, 0.291, got)
	})

	t.Run("bounds", func(t *testing.T) {
		for _, typ := range []sources.Type{sources.TypeFile, sources.TypeDoc, sources.TypeSearchHint, sources.TypeGist, "other"} {
			for _, w := range []float64{0, 0.5, 1} {
				for _, n := range []int{40, 1000, 10_000_000} {
					c := Confidence(sources.Source{Type: typ, Weight: sources.Weight(w)}, n)
					assert.GreaterOrEqual(t, c, 0.0)
					assert.LessOrEqual(t, c, 1.0)
				}
			}
		}
	})

	t.Run("quality saturates", func(t *testing.T) {
		// 0.95*0.6 + 1*0.25 + 1*0.15
		assert.Equal(t, 0.97, Confidence(sources.Source{Type: sources.TypeFile, Weight: sources.Weight(1)}, 100_000))
	})
}

func success(url, hash string, confidence float64) Candidate {
	return Candidate{
		Source:      sources.Source{Type: sources.TypeDoc, URL: url},
		ContentHash: hash,
		Confidence:  confidence,
	}
}

func failure(url string) Candidate {
	return Candidate{Source: sources.Source{Type: sources.TypeDoc, URL: url}, Err: errors.New("HTTP 500")}
}

func TestDedupe(t *testing.T) {
	in := []Candidate{
		failure("f1"),
		success("a", "h1", 0.5),
		success("b", "h2", 0.9),
		success("c", "h1", 0.99),
		failure("f2"),
	}

	out := Dedupe(in)

	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Source.URL)
	assert.Equal(t, "b", out[1].Source.URL)

	seen := map[string]bool{}
	for _, c := range out {
		assert.True(t, c.OK())
		assert.False(t, seen[c.ContentHash], "duplicate hash %s", c.ContentHash)
		seen[c.ContentHash] = true
	}

	assert.Empty(t, Dedupe(nil))
	assert.Empty(t, Dedupe([]Candidate{failure("x")}))
}

func TestDedupeIdenticalSources(t *testing.T) {
	body := strings.Repeat("same prompt body ", 5)
	f := &fakeFetcher{bodies: map[string]string{"https://a": body, "https://b": body}}
	e := newTestEvaluator(f)
	ctx := context.Background()

	out := Dedupe([]Candidate{
		e.Evaluate(ctx, sources.Source{Type: sources.TypeFile, URL: "https://a"}),
		e.Evaluate(ctx, sources.Source{Type: sources.TypeFile, URL: "https://b"}),
	})
	require.Len(t, out, 1)
	assert.Equal(t, "https://a", out[0].Source.URL)
}

func TestPickTop(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, ok := PickTop(nil)
		assert.False(t, ok)
	})

	t.Run("maximum", func(t *testing.T) {
		top, ok := PickTop([]Candidate{success("a", "h1", 0.5), success("b", "h2", 0.9), success("c", "h3", 0.7)})
		require.True(t, ok)
		assert.Equal(t, "b", top.Source.URL)
	})

	t.Run("tie goes to first", func(t *testing.T) {
		in := []Candidate{success("a", "h1", 0.4), success("b", "h2", 0.8), success("c", "h3", 0.8)}
		for i := 0; i < 10; i++ {
			top, ok := PickTop(in)
			require.True(t, ok)
			assert.Equal(t, "b", top.Source.URL)
		}
	})

	t.Run("does not reorder input", func(t *testing.T) {
		in := []Candidate{success("a", "h1", 0.1), success("b", "h2", 0.9)}
		_, _ = PickTop(in)
		assert.Equal(t, "a", in[0].Source.URL)
	})
}
