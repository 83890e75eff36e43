package eval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presswire-ai/presswire/internal/config"
	"github.com/presswire-ai/presswire/internal/llm"
	"github.com/presswire-ai/presswire/internal/profiles"
)

// scriptedJudge returns a canned score per criterion name, matched by the
// criterion mentioned in the prompt. An entry of -1 simulates a failed call.
type scriptedJudge struct {
	mu     sync.Mutex
	scores map[string]float64
	calls  int
}

func (s *scriptedJudge) Generate(_ context.Context, req llm.Request) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	for name, score := range s.scores {
		if strings.Contains(req.Prompt, `"`+name+`"`) {
			if score < 0 {
				return "", errors.New("judge timeout")
			}
			return fmt.Sprintf(`{"score": %.2f, "reasoning": "scripted"}`, score), nil
		}
	}
	return "", errors.New("unknown criterion")
}

func (s *scriptedJudge) GenerateStream(ctx context.Context, req llm.Request, fn func(string) error) error {
	out, err := s.Generate(ctx, req)
	if err != nil {
		return err
	}
	return fn(out)
}

func allScores(v float64) map[string]float64 {
	m := make(map[string]float64, len(Criteria))
	for _, c := range Criteria {
		m[c.Name] = v
	}
	return m
}

func testInput() Input {
	return Input{
		Question: "How will AI change media relations?",
		Comment:  "It already has. Our data shows response times dropped 40% last quarter.",
		Profile:  &profiles.Profile{Name: "Sarah Chen", Title: "CEO", Tone: "confident"},
	}
}

func TestEvaluatePerfectScores(t *testing.T) {
	judge := &scriptedJudge{scores: allScores(1.0)}
	e := NewEvaluator(config.EvaluationConfig{Enabled: true, PassThreshold: 0.70}, judge)

	r := e.Evaluate(context.Background(), testInput())
	assert.True(t, r.Evaluated)
	assert.True(t, r.Passed)
	assert.InDelta(t, 1.0, r.Overall, 1e-9)
	assert.Len(t, r.Criteria, 4)
	for name, cr := range r.Criteria {
		assert.True(t, cr.Passed, name)
	}
	assert.Equal(t, 4, judge.calls)
	assert.Equal(t, len(testInput().Comment), r.CommentLength)
}

func TestEvaluateJudgeFailureZeroesCriterion(t *testing.T) {
	scores := allScores(0.9)
	scores["data_usage"] = -1
	judge := &scriptedJudge{scores: scores}
	e := NewEvaluator(config.EvaluationConfig{Enabled: true, PassThreshold: 0.70}, judge)

	r := e.Evaluate(context.Background(), testInput())
	require.True(t, r.Evaluated)

	// 0.9 * 3 / 4
	assert.InDelta(t, 0.675, r.Overall, 1e-9)
	assert.False(t, r.Passed)
	assert.Equal(t, 0.0, r.Criteria["data_usage"].Score)
	assert.False(t, r.Criteria["data_usage"].Passed)
	assert.True(t, r.Criteria["authenticity"].Passed)
}

func TestEvaluateAllJudgesFailed(t *testing.T) {
	judge := &scriptedJudge{scores: allScores(-1)}
	e := NewEvaluator(config.EvaluationConfig{Enabled: true, PassThreshold: 0.70}, judge)

	r := e.Evaluate(context.Background(), testInput())
	assert.True(t, r.Evaluated)
	assert.True(t, r.Errored)
	assert.False(t, r.Passed)
	assert.Equal(t, 0.0, r.Overall)
	assert.Equal(t, "Evaluation failed: no judge returned a verdict.", Summary(r))
}

func TestEvaluatePartialFailureIsNotErrored(t *testing.T) {
	scores := allScores(0.9)
	scores["data_usage"] = -1
	judge := &scriptedJudge{scores: scores}
	e := NewEvaluator(config.EvaluationConfig{Enabled: true, PassThreshold: 0.70}, judge)

	r := e.Evaluate(context.Background(), testInput())
	assert.False(t, r.Errored)
}

func TestEvaluateThresholdBoundary(t *testing.T) {
	judge := &scriptedJudge{scores: allScores(0.70)}
	e := NewEvaluator(config.EvaluationConfig{Enabled: true, PassThreshold: 0.70}, judge)

	r := e.Evaluate(context.Background(), testInput())
	assert.True(t, r.Passed)
}

func TestEvaluateDisabled(t *testing.T) {
	e := NewEvaluator(config.EvaluationConfig{Enabled: false}, &scriptedJudge{})
	r := e.Evaluate(context.Background(), testInput())
	assert.False(t, r.Evaluated)
	assert.False(t, r.Passed)

	nilClient := NewEvaluator(config.EvaluationConfig{Enabled: true}, nil)
	assert.False(t, nilClient.Enabled())
}

func TestEvaluateBatchAndSummary(t *testing.T) {
	judge := &scriptedJudge{scores: allScores(0.8)}
	e := NewEvaluator(config.EvaluationConfig{Enabled: true, PassThreshold: 0.70}, judge)

	results := e.EvaluateBatch(context.Background(), []Input{testInput(), testInput()})
	require.Len(t, results, 2)

	s := Summarize(results)
	assert.Equal(t, 2, s.CommentCount)
	assert.Equal(t, 2, s.PassCount)
	assert.InDelta(t, 1.0, s.PassRate, 1e-9)
	assert.InDelta(t, 0.8, s.MeanOverall, 1e-9)
	assert.InDelta(t, 0.8, s.MinOverall, 1e-9)
	assert.InDelta(t, 0.8, s.MaxOverall, 1e-9)
}

func TestSummarizeMinMax(t *testing.T) {
	s := Summarize([]Result{
		{Overall: 0.9, Passed: true, Evaluated: true},
		{Overall: 0.4, Evaluated: true},
		{Overall: 0.75, Passed: true, Evaluated: true},
	})
	assert.Equal(t, 3, s.CommentCount)
	assert.Equal(t, 2, s.PassCount)
	assert.InDelta(t, 2.0/3.0, s.PassRate, 1e-9)
	assert.InDelta(t, 0.4, s.MinOverall, 1e-9)
	assert.InDelta(t, 0.9, s.MaxOverall, 1e-9)
}

func TestSummaryText(t *testing.T) {
	judge := &scriptedJudge{scores: allScores(0.9)}
	e := NewEvaluator(config.EvaluationConfig{Enabled: true, PassThreshold: 0.70}, judge)

	text := Summary(e.Evaluate(context.Background(), testInput()))
	assert.True(t, strings.HasPrefix(text, "PASS"))
	for _, c := range Criteria {
		assert.Contains(t, text, c.Name)
	}

	assert.Equal(t, "Evaluation was skipped.", Summary(Result{}))
}

func TestSummarizeEmptyBatch(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.CommentCount)
	assert.Equal(t, 0, s.PassCount)
	assert.Equal(t, 0.0, s.MeanOverall)
}

func TestParseJudgment(t *testing.T) {
	r, err := parseJudgment(`{"score": 0.85, "reasoning": "good"}`)
	require.NoError(t, err)
	assert.Equal(t, 0.85, r.Score)

	fenced := "```json\n{\"score\": 0.5, \"reasoning\": \"ok\"}\n```"
	r, err = parseJudgment(fenced)
	require.NoError(t, err)
	assert.Equal(t, 0.5, r.Score)

	_, err = parseJudgment("not json at all")
	assert.Error(t, err)

	_, err = parseJudgment(`{"score": 1.5, "reasoning": "too high"}`)
	assert.Error(t, err)
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	// The cut point lands inside a multi-byte rune; it must back up.
	s := "ab€cd" // € is 3 bytes, starting at index 2
	for n := 2; n <= 4; n++ {
		out := truncate(s, n)
		assert.True(t, utf8.ValidString(out), "n=%d got %q", n, out)
	}
	assert.Equal(t, "ab...", truncate(s, 3))
	assert.Equal(t, "ab€...", truncate(s, 5))
}

func TestEvaluateNoResearchData(t *testing.T) {
	judge := &scriptedJudge{scores: allScores(0.9)}
	e := NewEvaluator(config.EvaluationConfig{Enabled: true, PassThreshold: 0.70}, judge)

	in := testInput()
	in.ResearchData = ""
	r := e.Evaluate(context.Background(), in)
	assert.True(t, r.Passed)
}
