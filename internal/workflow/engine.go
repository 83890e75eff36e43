// Package workflow orchestrates comment generation: profile load, memory and
// RAG recall, parallel research, draft, humanize, evaluation, gated
// persistence and notification. Every stage except profile load and draft
// degrades instead of failing the request.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/presswire-ai/presswire/internal/agents"
	"github.com/presswire-ai/presswire/internal/eval"
	"github.com/presswire-ai/presswire/internal/events"
	"github.com/presswire-ai/presswire/internal/mailer"
	"github.com/presswire-ai/presswire/internal/memory"
	"github.com/presswire-ai/presswire/internal/metrics"
	"github.com/presswire-ai/presswire/internal/profiles"
	"github.com/presswire-ai/presswire/internal/rag"
)

const defaultResearchTimeout = 45 * time.Second

// Request is one comment generation job. Evaluation is opt-in per request on
// top of the subsystem toggle, since four judge calls roughly double the LLM
// cost of a generation.
type Request struct {
	Executive        string `json:"executive"`
	Question         string `json:"question"`
	MediaOutlet      string `json:"media_outlet"`
	Journalist       string `json:"journalist"`
	ArticleExcerpt   string `json:"article_excerpt"`
	SessionID        string `json:"session_id"`
	EnableEvaluation bool   `json:"enable_evaluation"`
}

// Features reports which optional subsystems were active for a request.
type Features struct {
	Memory     bool `json:"memory"`
	RAG        bool `json:"rag"`
	Evaluation bool `json:"evaluation"`
}

// Result is the full outcome of one generation.
type Result struct {
	RequestID     uuid.UUID            `json:"request_id"`
	SessionID     string               `json:"session_id"`
	Comment       string               `json:"comment"`
	Draft         string               `json:"draft"`
	Humanized     bool                 `json:"humanized"`
	MediaBriefing string               `json:"media_briefing"`
	DataFindings  string               `json:"data_findings"`
	History       []memory.Message     `json:"history"`
	PastComments  []memory.PastComment `json:"past_comments"`
	Augmentation  rag.Bundle           `json:"augmentation"`
	Evaluation    eval.Result          `json:"evaluation"`
	Features      Features             `json:"features"`
	Degraded      []string             `json:"degraded,omitempty"`
	Transitions   []Transition         `json:"transitions"`
	Persisted     bool                 `json:"persisted"`
	EmailSent     bool                 `json:"email_sent"`
	Duration      time.Duration        `json:"duration"`
}

// The seams the engine calls through. Concrete implementations live in the
// profiles, agents, eval, mailer and events packages.
type (
	ProfileLoader interface {
		Load(ctx context.Context, name string) (*profiles.Profile, error)
	}
	MediaResearcher interface {
		Research(ctx context.Context, outlet, journalist string) (string, error)
	}
	DataResearcher interface {
		Research(ctx context.Context, question string) (string, error)
	}
	Drafter interface {
		Draft(ctx context.Context, in agents.DraftInput) (string, error)
	}
	Humanizer interface {
		Humanize(ctx context.Context, p *profiles.Profile, draft string) (string, error)
	}
	Evaluator interface {
		Enabled() bool
		Evaluate(ctx context.Context, in eval.Input) eval.Result
	}
	Notifier interface {
		Enabled() bool
		SendCommentReady(mail mailer.CommentMail) error
	}
	EventSink interface {
		PublishComment(ctx context.Context, ev events.CommentEvent)
	}
)

// Deps wires the engine. Memory and RAG are concrete since they already no-op
// when disabled; Mailer and Events may be nil.
type Deps struct {
	Profiles  ProfileLoader
	Memory    *memory.Manager
	RAG       *rag.Augmenter
	Media     MediaResearcher
	Data      DataResearcher
	Drafter   Drafter
	Humanizer Humanizer
	Evaluator Evaluator
	Mailer    Notifier
	Events    EventSink
}

// Engine runs the generation pipeline.
type Engine struct {
	deps            Deps
	researchTimeout time.Duration
}

func NewEngine(deps Deps) *Engine {
	return &Engine{deps: deps, researchTimeout: defaultResearchTimeout}
}

// Generate runs one request through the full pipeline. It returns an error
// only when the profile cannot be loaded or the draft fails; every other
// problem is recorded in the result and degraded around.
func (e *Engine) Generate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	res := &Result{
		RequestID: uuid.New(),
		Features: Features{
			Memory:     e.deps.Memory.Enabled(),
			RAG:        e.deps.RAG.Enabled(),
			Evaluation: e.deps.Evaluator.Enabled() && req.EnableEvaluation,
		},
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = req.Executive
	}
	res.SessionID = sessionID

	// load_profile: terminal on failure.
	profile, err := e.loadProfile(ctx, req, res)
	if err != nil {
		e.finishFailed(ctx, req, res, start, err)
		return nil, err
	}

	history, past := e.recall(ctx, req, sessionID, res)
	briefing, findings := e.research(ctx, req, res)

	// draft: terminal on failure.
	draft, err := e.draft(ctx, agents.DraftInput{
		Profile:        profile,
		Question:       req.Question,
		ArticleExcerpt: req.ArticleExcerpt,
		MediaBriefing:  briefing,
		DataFindings:   findings,
		History:        history,
		PastComments:   past,
		Augmentation:   res.Augmentation,
	}, res)
	if err != nil {
		e.finishFailed(ctx, req, res, start, err)
		return nil, err
	}
	res.Draft = draft
	res.MediaBriefing = briefing
	res.DataFindings = findings

	res.Comment = e.humanize(ctx, profile, draft, res)
	e.evaluate(ctx, req, profile, res)
	e.persist(ctx, req, sessionID, res)
	e.notify(ctx, req, res)

	res.Duration = time.Since(start)
	metrics.GenerationsTotal.WithLabelValues("ok").Inc()
	metrics.GenerationDuration.Observe(res.Duration.Seconds())
	slog.Info("comment generated",
		"request_id", res.RequestID,
		"executive", req.Executive,
		"outlet", req.MediaOutlet,
		"humanized", res.Humanized,
		"passed", res.Evaluation.Passed,
		"degraded", len(res.Degraded),
		"duration", res.Duration)
	return res, nil
}

func (e *Engine) loadProfile(ctx context.Context, req Request, res *Result) (*profiles.Profile, error) {
	t := time.Now()
	profile, err := e.deps.Profiles.Load(ctx, req.Executive)
	if err != nil {
		res.record(StageLoadProfile, StatusFailed, err, t)
		return nil, fmt.Errorf("load profile: %w", err)
	}
	res.record(StageLoadProfile, StatusOK, nil, t)
	return profile, nil
}

func (e *Engine) recall(ctx context.Context, req Request, sessionID string, res *Result) ([]memory.Message, []memory.PastComment) {
	t := time.Now()
	var history []memory.Message
	var past []memory.PastComment
	if e.deps.Memory.Enabled() {
		history = e.deps.Memory.History(sessionID)
		past = e.deps.Memory.RetrieveSimilar(ctx, req.Question, req.Executive, req.MediaOutlet, 3)
	}
	res.History = history
	res.PastComments = past
	res.Augmentation = e.deps.RAG.Augment(ctx, req.Question, req.Executive, req.MediaOutlet, req.Journalist)

	metrics.RetrievedDocumentsTotal.WithLabelValues("archive").Add(float64(len(past)))
	metrics.RetrievedDocumentsTotal.WithLabelValues("comments").Add(float64(res.Augmentation.RetrievalCounts.SimilarComments))
	metrics.RetrievedDocumentsTotal.WithLabelValues("knowledge").Add(float64(res.Augmentation.RetrievalCounts.MediaKnowledge))
	metrics.RetrievedDocumentsTotal.WithLabelValues("examples").Add(float64(res.Augmentation.RetrievalCounts.Examples))

	if !e.deps.Memory.Enabled() && !e.deps.RAG.Enabled() {
		res.record(StageRecall, StatusSkipped, nil, t)
	} else {
		res.record(StageRecall, StatusOK, nil, t)
	}
	return history, past
}

// research fans out the two researchers in parallel with a shared deadline.
// Each branch that fails substitutes its placeholder and marks the request
// degraded.
func (e *Engine) research(ctx context.Context, req Request, res *Result) (briefing, findings string) {
	t := time.Now()
	rctx, cancel := context.WithTimeout(ctx, e.researchTimeout)
	defer cancel()

	type branch struct {
		out string
		err error
	}
	mediaCh := make(chan branch, 1)
	dataCh := make(chan branch, 1)

	go func() {
		out, err := e.deps.Media.Research(rctx, req.MediaOutlet, req.Journalist)
		mediaCh <- branch{out, err}
	}()
	go func() {
		out, err := e.deps.Data.Research(rctx, req.Question)
		dataCh <- branch{out, err}
	}()

	media := <-mediaCh
	data := <-dataCh

	degraded := false
	if media.err != nil {
		briefing = agents.MediaFallback(req.MediaOutlet)
		res.Degraded = append(res.Degraded, "media research: "+media.err.Error())
		metrics.StageDegradedTotal.WithLabelValues("media_research").Inc()
		degraded = true
	} else {
		briefing = media.out
	}
	if data.err != nil {
		findings = agents.DataFallback()
		res.Degraded = append(res.Degraded, "data research: "+data.err.Error())
		metrics.StageDegradedTotal.WithLabelValues("data_research").Inc()
		degraded = true
	} else {
		findings = data.out
	}

	status := StatusOK
	if degraded {
		status = StatusDegraded
	}
	res.record(StageResearch, status, nil, t)
	return briefing, findings
}

func (e *Engine) draft(ctx context.Context, in agents.DraftInput, res *Result) (string, error) {
	t := time.Now()
	draft, err := e.deps.Drafter.Draft(ctx, in)
	if err != nil {
		res.record(StageDraft, StatusFailed, err, t)
		return "", fmt.Errorf("draft: %w", err)
	}
	res.record(StageDraft, StatusOK, nil, t)
	return draft, nil
}

func (e *Engine) humanize(ctx context.Context, p *profiles.Profile, draft string, res *Result) string {
	t := time.Now()
	out, err := e.deps.Humanizer.Humanize(ctx, p, draft)
	if err != nil {
		res.Degraded = append(res.Degraded, "humanize: "+err.Error())
		metrics.StageDegradedTotal.WithLabelValues("humanize").Inc()
		res.record(StageHumanize, StatusDegraded, err, t)
		return draft
	}
	res.Humanized = true
	res.record(StageHumanize, StatusOK, nil, t)
	return out
}

func (e *Engine) evaluate(ctx context.Context, req Request, p *profiles.Profile, res *Result) {
	t := time.Now()
	if !e.deps.Evaluator.Enabled() || !req.EnableEvaluation {
		res.Evaluation = eval.Result{Evaluated: false}
		res.record(StageEvaluate, StatusSkipped, nil, t)
		return
	}
	res.Evaluation = e.deps.Evaluator.Evaluate(ctx, eval.Input{
		Question:       req.Question,
		Comment:        res.Comment,
		Profile:        p,
		ResearchData:   res.DataFindings,
		ArticleExcerpt: req.ArticleExcerpt,
	})
	for name, cr := range res.Evaluation.Criteria {
		metrics.EvaluationScore.WithLabelValues(name).Observe(cr.Score)
	}
	slog.Debug("comment evaluated", "request_id", res.RequestID, "summary", eval.Summary(res.Evaluation))
	res.record(StageEvaluate, StatusOK, nil, t)
}

// persist updates short-term session memory unconditionally; the long-term
// archive and the RAG comment history are written only when the evaluation
// passed or was skipped.
func (e *Engine) persist(ctx context.Context, req Request, sessionID string, res *Result) {
	t := time.Now()
	e.deps.Memory.AppendTurn(sessionID, req.Question, res.Comment)

	gate := !res.Evaluation.Evaluated || res.Evaluation.Passed
	if !gate {
		res.record(StagePersist, StatusSkipped, nil, t)
		return
	}

	meta := map[string]string{"journalist": req.Journalist}
	e.deps.Memory.Archive(ctx, req.Executive, req.MediaOutlet, req.Question, res.Comment, meta)
	e.deps.RAG.StoreComment(ctx, req.Executive, req.MediaOutlet, req.Question, res.Comment, meta)
	res.Persisted = e.deps.Memory.Enabled() || e.deps.RAG.Enabled()
	res.record(StagePersist, StatusOK, nil, t)
}

func (e *Engine) notify(ctx context.Context, req Request, res *Result) {
	t := time.Now()
	status := StatusOK
	if e.deps.Mailer != nil && e.deps.Mailer.Enabled() {
		err := e.deps.Mailer.SendCommentReady(mailer.CommentMail{
			Executive:   req.Executive,
			MediaOutlet: req.MediaOutlet,
			Journalist:  req.Journalist,
			Question:    req.Question,
			Comment:     res.Comment,
			Passed:      res.Evaluation.Passed,
			Evaluated:   res.Evaluation.Evaluated,
			Overall:     res.Evaluation.Overall,
		})
		if err != nil {
			slog.Warn("comment mail failed", "error", err)
			res.Degraded = append(res.Degraded, "notify: "+err.Error())
			status = StatusDegraded
		} else {
			res.EmailSent = true
		}
	} else {
		status = StatusSkipped
	}

	if e.deps.Events != nil {
		e.deps.Events.PublishComment(ctx, events.CommentEvent{
			ID:          res.RequestID,
			Executive:   req.Executive,
			MediaOutlet: req.MediaOutlet,
			Question:    req.Question,
			Passed:      res.Evaluation.Passed,
			Evaluated:   res.Evaluation.Evaluated,
			Overall:     res.Evaluation.Overall,
			Degraded:    res.Degraded,
		})
	}
	res.record(StageNotify, status, nil, t)
}

func (e *Engine) finishFailed(ctx context.Context, req Request, res *Result, start time.Time, err error) {
	res.Duration = time.Since(start)
	metrics.GenerationsTotal.WithLabelValues("failed").Inc()
	if e.deps.Events != nil {
		e.deps.Events.PublishComment(ctx, events.CommentEvent{
			ID:          res.RequestID,
			Executive:   req.Executive,
			MediaOutlet: req.MediaOutlet,
			Question:    req.Question,
			Error:       err.Error(),
			Degraded:    res.Degraded,
		})
	}
	slog.Error("comment generation failed",
		"request_id", res.RequestID,
		"executive", req.Executive,
		"error", err)
}

func (r *Result) record(stage Stage, status string, err error, started time.Time) {
	t := Transition{Stage: stage, Status: status, Duration: time.Since(started)}
	if err != nil {
		t.Error = err.Error()
	}
	metrics.StageDuration.WithLabelValues(string(stage)).Observe(t.Duration.Seconds())
	r.Transitions = append(r.Transitions, t)
}
