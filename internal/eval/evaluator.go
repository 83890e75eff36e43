// Package eval scores generated comments with LLM judges, one per quality
// criterion. A judge failure zeroes that criterion rather than failing the
// evaluation, and the whole subsystem degrades to a no-op when disabled.
package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/presswire-ai/presswire/internal/config"
	"github.com/presswire-ai/presswire/internal/llm"
	"github.com/presswire-ai/presswire/internal/profiles"
)

// Input is one comment plus the context the judges need to score it.
type Input struct {
	Question       string
	Comment        string
	Profile        *profiles.Profile
	ResearchData   string
	ArticleExcerpt string
}

// CriterionResult is one judge's verdict.
type CriterionResult struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
	Passed    bool    `json:"passed"`
}

// Result aggregates all criterion verdicts for one comment. Errored is set
// when no judge returned a verdict at all.
type Result struct {
	Overall       float64                    `json:"overall"`
	Passed        bool                       `json:"passed"`
	Criteria      map[string]CriterionResult `json:"criteria"`
	Evaluated     bool                       `json:"evaluated"`
	Errored       bool                       `json:"errored"`
	CommentLength int                        `json:"comment_length"`
	Duration      time.Duration              `json:"duration_ns"`
}

// BatchSummary reports aggregate quality over a set of evaluated comments.
type BatchSummary struct {
	CommentCount int     `json:"comment_count"`
	PassCount    int     `json:"pass_count"`
	PassRate     float64 `json:"pass_rate"`
	MeanOverall  float64 `json:"mean_overall"`
	MinOverall   float64 `json:"min_overall"`
	MaxOverall   float64 `json:"max_overall"`
}

// Evaluator runs the judge panel. When disabled every call returns a skipped
// result so callers never branch on availability.
type Evaluator struct {
	enabled   bool
	client    llm.Client
	model     string
	threshold float64
}

// NewEvaluator builds the judge panel. With a nil client or Enabled=false the
// evaluator constructs disabled.
func NewEvaluator(cfg config.EvaluationConfig, client llm.Client) *Evaluator {
	e := &Evaluator{
		enabled:   cfg.Enabled && client != nil,
		client:    client,
		model:     cfg.Model,
		threshold: cfg.PassThreshold,
	}
	if !e.enabled {
		slog.Info("evaluation disabled")
	}
	return e
}

// Enabled reports whether judge calls will actually run.
func (e *Evaluator) Enabled() bool { return e.enabled }

// Threshold returns the pass threshold for overall scores.
func (e *Evaluator) Threshold() float64 { return e.threshold }

// Evaluate scores one comment against every criterion concurrently. A failed
// judge call records a zero score for that criterion; the evaluation itself
// only errors when disabled results are requested with no client wired.
func (e *Evaluator) Evaluate(ctx context.Context, in Input) Result {
	if !e.enabled {
		return Result{Evaluated: false}
	}

	started := time.Now()
	evalCtx := e.buildContext(in)

	results := make([]CriterionResult, len(Criteria))
	failed := make([]bool, len(Criteria))
	var wg sync.WaitGroup
	for i, c := range Criteria {
		wg.Add(1)
		go func(i int, c Criterion) {
			defer wg.Done()
			results[i], failed[i] = e.judge(ctx, c, evalCtx, in.Comment)
		}(i, c)
	}
	wg.Wait()

	out := Result{
		Criteria:      make(map[string]CriterionResult, len(Criteria)),
		Evaluated:     true,
		Errored:       true,
		CommentLength: len(in.Comment),
	}
	var sum float64
	for i, c := range Criteria {
		out.Criteria[c.Name] = results[i]
		sum += results[i].Score
		if !failed[i] {
			out.Errored = false
		}
	}
	out.Overall = sum / float64(len(Criteria))
	out.Passed = out.Overall >= e.threshold
	out.Duration = time.Since(started)
	return out
}

// EvaluateBatch scores each comment and returns per-comment results in order.
func (e *Evaluator) EvaluateBatch(ctx context.Context, ins []Input) []Result {
	results := make([]Result, len(ins))
	for i, in := range ins {
		results[i] = e.Evaluate(ctx, in)
	}
	return results
}

// Summarize aggregates batch results. Empty batches produce a zero summary.
func Summarize(results []Result) BatchSummary {
	s := BatchSummary{CommentCount: len(results)}
	if len(results) == 0 {
		return s
	}
	s.MinOverall = results[0].Overall
	s.MaxOverall = results[0].Overall
	var sum float64
	for _, r := range results {
		sum += r.Overall
		if r.Passed {
			s.PassCount++
		}
		if r.Overall < s.MinOverall {
			s.MinOverall = r.Overall
		}
		if r.Overall > s.MaxOverall {
			s.MaxOverall = r.Overall
		}
	}
	s.MeanOverall = sum / float64(len(results))
	s.PassRate = float64(s.PassCount) / float64(len(results))
	return s
}

// Summary renders one result as operator-readable text.
func Summary(r Result) string {
	if !r.Evaluated {
		return "Evaluation was skipped."
	}
	if r.Errored {
		return "Evaluation failed: no judge returned a verdict."
	}

	var b strings.Builder
	verdict := "FAIL"
	if r.Passed {
		verdict = "PASS"
	}
	fmt.Fprintf(&b, "%s (overall %.2f)\n", verdict, r.Overall)
	for _, c := range Criteria {
		cr, ok := r.Criteria[c.Name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  %-20s %.2f  %s\n", c.Name, cr.Score, cr.Reasoning)
	}
	return b.String()
}

func (e *Evaluator) judge(ctx context.Context, c Criterion, evalCtx, comment string) (CriterionResult, bool) {
	prompt := fmt.Sprintf(judgePromptTemplate, c.Name, c.Description, c.Rubric, evalCtx, comment)
	raw, err := e.client.Generate(ctx, llm.Request{
		System:      judgeSystemPrompt,
		Prompt:      prompt,
		Temperature: 0,
		MaxTokens:   512,
		Model:       e.model,
	})
	if err != nil {
		slog.Warn("judge call failed", "criterion", c.Name, "error", err)
		return CriterionResult{Score: 0, Reasoning: "judge unavailable", Passed: false}, true
	}
	r, err := parseJudgment(raw)
	if err != nil {
		slog.Warn("unparseable judgment", "criterion", c.Name, "error", err)
		return CriterionResult{Score: 0, Reasoning: "judge response unparseable", Passed: false}, true
	}
	r.Passed = r.Score >= e.threshold
	return r, false
}

func (e *Evaluator) buildContext(in Input) string {
	var b strings.Builder
	b.WriteString("Journalist question: " + in.Question + "\n\n")
	if in.Profile != nil {
		b.WriteString("Executive profile:\n" + in.Profile.Summary() + "\n\n")
	}
	if in.ResearchData != "" {
		b.WriteString("Research data available to the writer:\n" + truncate(in.ResearchData, 2000) + "\n\n")
	} else {
		b.WriteString("No research data was available to the writer.\n\n")
	}
	if in.ArticleExcerpt != "" {
		b.WriteString("Article excerpt:\n" + truncate(in.ArticleExcerpt, 1000) + "\n")
	}
	return b.String()
}

// parseJudgment tolerates judges that wrap the JSON in markdown fences.
func parseJudgment(raw string) (CriterionResult, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	var r CriterionResult
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return CriterionResult{}, fmt.Errorf("parsing judgment: %w", err)
	}
	if r.Score < 0 || r.Score > 1 {
		return CriterionResult{}, fmt.Errorf("judgment score %v out of range", r.Score)
	}
	return r, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
