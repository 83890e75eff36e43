package workflow

import "time"

// Stage names one step of the generation pipeline.
type Stage string

const (
	StageLoadProfile Stage = "load_profile"
	StageRecall      Stage = "recall"
	StageResearch    Stage = "research"
	StageDraft       Stage = "draft"
	StageHumanize    Stage = "humanize"
	StageEvaluate    Stage = "evaluate"
	StagePersist     Stage = "persist"
	StageNotify      Stage = "notify"
)

// Stage outcomes. Degraded means the stage fell back to placeholder output;
// skipped means the owning subsystem is disabled.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

// Transition records one executed stage. Only load_profile and draft can carry
// StatusFailed, since those are the two terminal stages.
type Transition struct {
	Stage    Stage         `json:"stage"`
	Status   string        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}
