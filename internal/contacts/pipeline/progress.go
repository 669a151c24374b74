// Package pipeline drives multi-item contact operations as cancellable
// staged runs: bounded-concurrency transform stages feeding a rate-limited
// chunked submitter, with per-item failure isolation and weighted monotonic
// progress accounting.
package pipeline

import "sync"

// Stage names the phases a pipeline item can move through.
type Stage string

const (
	StageParse   Stage = "parse"
	StageEncrypt Stage = "encrypt"
	StageSubmit  Stage = "submit"
)

// Weights distributes overall progress across stages; they must sum to 100.
// Import leans on encrypt (5/90/5) while merge submission weights the
// merge+encrypt phase at 90 and submit at 10.
type Weights struct {
	Parse   float64
	Encrypt float64
	Submit  float64
}

// ImportWeights is the stage weighting for CSV/vCard imports.
var ImportWeights = Weights{Parse: 5, Encrypt: 90, Submit: 5}

// MergeWeights is the stage weighting for merge submission (no parse phase).
var MergeWeights = Weights{Parse: 0, Encrypt: 90, Submit: 10}

// StageProgress counts terminal item states for one stage. Until Begin is
// called the stage contributes nothing; a begun stage with zero total is
// trivially complete (nothing survived to reach it).
type StageProgress struct {
	Begun     bool
	Total     int
	Succeeded int
	Failed    int
}

func (s StageProgress) ratio() float64 {
	if !s.Begun {
		return 0
	}
	if s.Total == 0 {
		return 1
	}
	return float64(s.Succeeded+s.Failed) / float64(s.Total)
}

// Progress is an immutable snapshot of a run's progress. Reducers return new
// snapshots; nothing here is mutated in place, so snapshots can be handed to
// callbacks without copies racing updates.
type Progress struct {
	Weights Weights
	Parse   StageProgress
	Encrypt StageProgress
	Submit  StageProgress
}

// NewProgress returns an empty snapshot with the given stage weighting.
func NewProgress(w Weights) Progress {
	return Progress{Weights: w}
}

// Begin marks a stage active with its item total. Totals are only known once
// the previous stage settles, since failures shrink the survivor set.
func (p Progress) Begin(stage Stage, total int) Progress {
	s := p.stage(stage)
	s.Begun = true
	s.Total = total
	return p.withStage(stage, s)
}

// Step records one terminal item state in a stage.
func (p Progress) Step(stage Stage, failed bool) Progress {
	s := p.stage(stage)
	if failed {
		s.Failed++
	} else {
		s.Succeeded++
	}
	return p.withStage(stage, s)
}

// Percent is the weighted overall progress in [0,100]. It is non-decreasing
// under Begin/Step and reaches exactly 100 when every item has a terminal
// state in every stage it reached.
func (p Progress) Percent() float64 {
	return p.Parse.ratio()*p.Weights.Parse +
		p.Encrypt.ratio()*p.Weights.Encrypt +
		p.Submit.ratio()*p.Weights.Submit
}

func (p Progress) stage(stage Stage) StageProgress {
	switch stage {
	case StageParse:
		return p.Parse
	case StageEncrypt:
		return p.Encrypt
	default:
		return p.Submit
	}
}

func (p Progress) withStage(stage Stage, s StageProgress) Progress {
	switch stage {
	case StageParse:
		p.Parse = s
	case StageEncrypt:
		p.Encrypt = s
	default:
		p.Submit = s
	}
	return p
}

// Tracker serializes progress updates and publishes snapshots to an optional
// callback. Stages apply pure reducers at well-defined checkpoints; the
// tracker is the only shared state in a run and it owns its mutex.
type Tracker struct {
	mu       sync.Mutex
	progress Progress
	notify   func(Progress)
}

// NewTracker builds a tracker with the given weighting. notify may be nil.
func NewTracker(w Weights, notify func(Progress)) *Tracker {
	return &Tracker{progress: NewProgress(w), notify: notify}
}

// Apply runs a reducer against the current snapshot and publishes the result.
func (t *Tracker) Apply(reduce func(Progress) Progress) {
	t.mu.Lock()
	t.progress = reduce(t.progress)
	snapshot := t.progress
	t.mu.Unlock()

	if t.notify != nil {
		t.notify(snapshot)
	}
}

// Snapshot returns the current progress.
func (t *Tracker) Snapshot() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}
