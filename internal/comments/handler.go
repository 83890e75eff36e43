// Package comments exposes the generation pipeline and its supporting stores
// over HTTP.
package comments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/presswire-ai/presswire/internal/api"
	"github.com/presswire-ai/presswire/internal/eval"
	"github.com/presswire-ai/presswire/internal/memory"
	"github.com/presswire-ai/presswire/internal/profiles"
	"github.com/presswire-ai/presswire/internal/rag"
	"github.com/presswire-ai/presswire/internal/workflow"
)

// Generator runs one request through the pipeline.
type Generator interface {
	Generate(ctx context.Context, req workflow.Request) (*workflow.Result, error)
}

// BatchEvaluator scores finished comments outside the generation path.
type BatchEvaluator interface {
	Enabled() bool
	EvaluateBatch(ctx context.Context, ins []eval.Input) []eval.Result
}

// ProfileStore is the profile surface the handlers need.
type ProfileStore interface {
	Load(ctx context.Context, name string) (*profiles.Profile, error)
	List(ctx context.Context) ([]profiles.Profile, error)
}

// ProfileWriter accepts new or updated profiles.
type ProfileWriter interface {
	Upsert(ctx context.Context, p *profiles.Profile) error
}

// Handler holds the HTTP handlers for the comments API.
type Handler struct {
	engine    Generator
	memory    *memory.Manager
	rag       *rag.Augmenter
	evaluator BatchEvaluator
	profiles  ProfileStore
	writer    ProfileWriter
	validate  *validator.Validate
}

func NewHandler(engine Generator, mem *memory.Manager, augmenter *rag.Augmenter,
	evaluator BatchEvaluator, store ProfileStore, writer ProfileWriter) *Handler {
	return &Handler{
		engine:    engine,
		memory:    mem,
		rag:       augmenter,
		evaluator: evaluator,
		profiles:  store,
		writer:    writer,
		validate:  validator.New(),
	}
}

type generateRequest struct {
	Executive        string `json:"executive" validate:"required"`
	Question         string `json:"question" validate:"required"`
	MediaOutlet      string `json:"media_outlet" validate:"required"`
	Journalist       string `json:"journalist"`
	ArticleExcerpt   string `json:"article_excerpt"`
	SessionID        string `json:"session_id"`
	EnableEvaluation bool   `json:"enable_evaluation"`
}

// Generate handles POST /v1/comments.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	result, err := h.engine.Generate(r.Context(), workflow.Request{
		Executive:        req.Executive,
		Question:         req.Question,
		MediaOutlet:      req.MediaOutlet,
		Journalist:       req.Journalist,
		ArticleExcerpt:   req.ArticleExcerpt,
		SessionID:        req.SessionID,
		EnableEvaluation: req.EnableEvaluation,
	})
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			api.HandleError(w, api.ErrProfileUnknown)
			return
		}
		api.JSONErrorMessage(w, http.StatusBadGateway, "comment generation failed")
		return
	}

	api.JSON(w, http.StatusOK, result)
}

type evaluateRequest struct {
	Comments []evaluateItem `json:"comments" validate:"required,dive"`
}

type evaluateItem struct {
	Question  string `json:"question" validate:"required"`
	Comment   string `json:"comment" validate:"required"`
	Executive string `json:"executive"`
}

type evaluateResponse struct {
	Results []eval.Result     `json:"results"`
	Summary eval.BatchSummary `json:"summary"`
}

// EvaluateBatch handles POST /v1/evaluations. Useful for re-scoring
// existing comments after editing prompts or thresholds.
func (h *Handler) EvaluateBatch(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}
	if !h.evaluator.Enabled() {
		api.JSONErrorMessage(w, http.StatusServiceUnavailable, "evaluation disabled")
		return
	}

	ins := make([]eval.Input, len(req.Comments))
	for i, c := range req.Comments {
		in := eval.Input{Question: c.Question, Comment: c.Comment}
		if c.Executive != "" {
			// Profile context is optional outside the generation path.
			if p, err := h.profiles.Load(r.Context(), c.Executive); err == nil {
				in.Profile = p
			}
		}
		ins[i] = in
	}

	results := h.evaluator.EvaluateBatch(r.Context(), ins)
	api.JSON(w, http.StatusOK, evaluateResponse{
		Results: results,
		Summary: eval.Summarize(results),
	})
}

// MemoryStats handles GET /v1/memory/stats.
func (h *Handler) MemoryStats(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, h.memory.Stats(r.Context()))
}

// RAGStats handles GET /v1/rag/stats.
func (h *Handler) RAGStats(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, h.rag.Stats(r.Context()))
}

type historyResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []memory.Message `json:"messages"`
}

// SessionHistory handles GET /v1/sessions/{sessionID}/history.
func (h *Handler) SessionHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	api.JSON(w, http.StatusOK, historyResponse{
		SessionID: sessionID,
		Messages:  h.memory.History(sessionID),
	})
}

// ClearSession handles DELETE /v1/sessions/{sessionID}. Only the short-term
// buffer is dropped; archived comments survive.
func (h *Handler) ClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	h.memory.Clear(sessionID)
	api.JSONMessage(w, http.StatusOK, "session cleared")
}

type knowledgeRequest struct {
	MediaOutlet string            `json:"media_outlet" validate:"required"`
	Journalist  string            `json:"journalist"`
	Content     string            `json:"content" validate:"required"`
	Metadata    map[string]string `json:"metadata"`
}

// StoreKnowledge handles POST /v1/rag/knowledge.
func (h *Handler) StoreKnowledge(w http.ResponseWriter, r *http.Request) {
	var req knowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	h.rag.StoreMediaKnowledge(r.Context(), req.MediaOutlet, req.Journalist, req.Content, req.Metadata)
	api.JSONMessage(w, http.StatusAccepted, "knowledge stored")
}

type exampleRequest struct {
	Content  string            `json:"content" validate:"required"`
	Category string            `json:"category"`
	Metadata map[string]string `json:"metadata"`
}

// StoreExample handles POST /v1/rag/examples.
func (h *Handler) StoreExample(w http.ResponseWriter, r *http.Request) {
	var req exampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	h.rag.StoreExample(r.Context(), req.Content, req.Category, req.Metadata)
	api.JSONMessage(w, http.StatusAccepted, "example stored")
}

// ListProfiles handles GET /v1/profiles.
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	list, err := h.profiles.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, list)
}

type profileRequest struct {
	Name               string   `json:"name" validate:"required"`
	Title              string   `json:"title" validate:"required"`
	Company            string   `json:"company"`
	CommunicationStyle string   `json:"communication_style"`
	Tone               string   `json:"tone"`
	TalkingPoints      []string `json:"talking_points"`
	Expertise          []string `json:"expertise"`
}

// UpsertProfile handles POST /v1/profiles.
func (h *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	p := &profiles.Profile{
		Name:               req.Name,
		Title:              req.Title,
		Company:            req.Company,
		CommunicationStyle: req.CommunicationStyle,
		Tone:               req.Tone,
		TalkingPoints:      req.TalkingPoints,
		Expertise:          req.Expertise,
	}
	if err := h.writer.Upsert(r.Context(), p); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusCreated, p)
}
