package classify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/evitrend/internal/cache"
	"github.com/ppiankov/evitrend/internal/llm"
	"github.com/ppiankov/evitrend/internal/logging"
	"github.com/ppiankov/evitrend/internal/model"
	"github.com/ppiankov/evitrend/internal/worker"
)

func intPtr(v int) *int { return &v }

func sampleStatements() []model.Statement {
	return []model.Statement{
		{
			ID:   "s1",
			Type: "Activation",
			Subj: model.Entity{Name: "CDK12"},
			Obj:  model.Entity{Name: "BRCA1"},
			Evidence: []model.Evidence{
				{SourceID: "1", Year: intPtr(2019), Text: "CDK12 activates BRCA1."},
				{SourceID: "2", Year: intPtr(2020), Text: "Unrelated sentence."},
				{SourceID: "3", Year: intPtr(2021), Text: "CDK12 strongly activates BRCA1.", Correctness: intPtr(model.NotSupported)},
			},
		},
		{
			ID:   "s2",
			Type: "Inhibition",
			Subj: model.Entity{Name: "CDK12"},
			Obj:  model.Entity{Name: "BRCA1"},
		},
	}
}

// keywordJudge says yes when the sentence mentions "activates"
type keywordJudge struct {
	calls   int
	failOn  string
	queries []Query
}

func (k *keywordJudge) Judge(ctx context.Context, q Query) (bool, error) {
	k.calls++
	k.queries = append(k.queries, q)
	if k.failOn != "" && strings.Contains(q.EvidenceText, k.failOn) {
		return false, errors.New("timeout")
	}
	return strings.Contains(q.EvidenceText, "activates"), nil
}

func TestClassify_LabelsCopies(t *testing.T) {
	judge := &keywordJudge{}
	c := NewClassifier(judge, WithLogger(logging.Discard()))
	input := sampleStatements()

	labeled, stats := c.Classify(context.Background(), input)

	require.Len(t, labeled, 2)
	ev := labeled[0].Evidence
	require.Len(t, ev, 3)
	assert.Equal(t, model.Supported, *ev[0].Correctness)
	assert.Equal(t, model.NotSupported, *ev[1].Correctness)
	assert.Equal(t, model.Supported, *ev[2].Correctness, "existing labels are re-evaluated")

	// Input untouched
	assert.Nil(t, input[0].Evidence[0].Correctness)
	assert.Equal(t, model.NotSupported, *input[0].Evidence[2].Correctness)

	assert.Equal(t, model.ClassificationStats{
		Statements:   2,
		Evidence:     3,
		Supported:    2,
		NotSupported: 1,
	}, stats)

	require.Len(t, judge.queries, 3)
	assert.Equal(t, Query{
		EvidenceText: "CDK12 activates BRCA1.",
		Subject:      "CDK12",
		Object:       "BRCA1",
		Relationship: "Activation",
	}, judge.queries[0])
}

func TestClassify_FailuresResolveToNotSupported(t *testing.T) {
	judge := &keywordJudge{failOn: "strongly"}
	c := NewClassifier(judge, WithLogger(logging.Discard()))

	labeled, stats := c.Classify(context.Background(), sampleStatements())

	assert.Equal(t, model.NotSupported, *labeled[0].Evidence[2].Correctness)
	assert.Equal(t, 1, stats.Failures)
	assert.Equal(t, 1, stats.Supported)
	assert.Equal(t, 2, stats.NotSupported)
}

func TestClassify_UsesCache(t *testing.T) {
	mem := cache.NewMemoryCache(time.Hour, time.Hour)
	judge := &keywordJudge{}
	c := NewClassifier(judge, WithCache(mem, "gpt-4o-mini", 0), WithLogger(logging.Discard()))

	first, stats := c.Classify(context.Background(), sampleStatements())
	assert.Equal(t, 3, judge.calls)
	assert.Equal(t, 0, stats.CacheHits)

	second, stats := c.Classify(context.Background(), sampleStatements())
	assert.Equal(t, 3, judge.calls, "second pass must be served from cache")
	assert.Equal(t, 3, stats.CacheHits)
	assert.Equal(t, first, second)
}

func TestClassify_FailuresAreNotCached(t *testing.T) {
	mem := cache.NewMemoryCache(time.Hour, time.Hour)
	judge := &keywordJudge{failOn: "strongly"}
	c := NewClassifier(judge, WithCache(mem, "m", 0), WithLogger(logging.Discard()))

	c.Classify(context.Background(), sampleStatements())
	judge.failOn = ""
	labeled, stats := c.Classify(context.Background(), sampleStatements())

	assert.Equal(t, 2, stats.CacheHits)
	assert.Equal(t, model.Supported, *labeled[0].Evidence[2].Correctness)
}

func TestClassify_CancelledLimiterWait(t *testing.T) {
	limiter := worker.NewLimiter(0.001, 1)
	judge := &keywordJudge{}
	c := NewClassifier(judge, WithLimiter(limiter, "openai"), WithLogger(logging.Discard()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	labeled, stats := c.Classify(ctx, sampleStatements())

	assert.Equal(t, 0, judge.calls)
	assert.Equal(t, 3, stats.Failures)
	for _, ev := range labeled[0].Evidence {
		assert.Equal(t, model.NotSupported, *ev.Correctness)
	}
}

func TestPrune(t *testing.T) {
	input := sampleStatements()
	input[0].Evidence[0].Correctness = intPtr(model.Supported)

	pruned := Prune(input)

	require.Len(t, pruned, 2, "statements without validated evidence are kept")
	require.Len(t, pruned[0].Evidence, 1)
	assert.Equal(t, "1", pruned[0].Evidence[0].SourceID)
	assert.Empty(t, pruned[1].Evidence)
	assert.Len(t, input[0].Evidence, 3)

	*pruned[0].Evidence[0].Correctness = model.NotSupported
	assert.Equal(t, model.Supported, *input[0].Evidence[0].Correctness, "prune must deep-copy")
}

type stubProvider struct {
	reply string
	err   error
	last  llm.CompletionRequest
}

func (s *stubProvider) Name() string                         { return "stub" }
func (s *stubProvider) IsAvailable(ctx context.Context) bool { return true }
func (s *stubProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Text: s.reply}, nil
}

func TestLLMJudge(t *testing.T) {
	q := Query{EvidenceText: "CDK12 activates BRCA1.", Subject: "CDK12", Object: "BRCA1", Relationship: "Activation"}

	tests := []struct {
		reply string
		want  bool
	}{
		{"Yes", true},
		{"yes, it does", true},
		{"No", false},
		{"Maybe", false},
	}
	for _, tt := range tests {
		p := &stubProvider{reply: tt.reply}
		got, err := NewLLMJudge(p, model.ClassifierConfig{}).Judge(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.reply)
		assert.Equal(t, 5, p.last.MaxTokens)
		assert.Equal(t, float32(0), p.last.Temperature)
		assert.Contains(t, p.last.Prompt, `Statement: "CDK12 Activation BRCA1"`)
	}

	_, err := NewLLMJudge(&stubProvider{err: errors.New("boom")}, model.ClassifierConfig{}).Judge(context.Background(), q)
	assert.Error(t, err)

	_, err = NewLLMJudge(nil, model.ClassifierConfig{}).Judge(context.Background(), q)
	assert.Error(t, err)
}

func TestJudgeFunc(t *testing.T) {
	var j Judge = JudgeFunc(func(ctx context.Context, q Query) (bool, error) {
		return q.Subject == "A", nil
	})
	ok, err := j.Judge(context.Background(), Query{Subject: "A"})
	require.NoError(t, err)
	assert.True(t, ok)
}
