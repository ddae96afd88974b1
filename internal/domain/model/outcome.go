package model

import "time"

// OutcomeKind classifies how a pipeline run or item ended.
type OutcomeKind string

const (
	// OutcomeDelivered means content was persisted and recorded.
	OutcomeDelivered OutcomeKind = "delivered"
	// OutcomeSkipped means the ledger already held the job id.
	OutcomeSkipped OutcomeKind = "skipped"
	// OutcomeTerminal means the remote job ended in CANCELLED or FATAL.
	OutcomeTerminal OutcomeKind = "terminal"
	// OutcomeFault means a local or transport failure aborted the work.
	OutcomeFault OutcomeKind = "fault"
	// OutcomeEmpty means there was nothing to process.
	OutcomeEmpty OutcomeKind = "empty"
)

// Fault describes a failure by its error code and a human readable detail.
type Fault struct {
	Kind   string
	Stage  Stage
	Detail string
}

// Outcome distinguishes expected terminal remote states from genuine faults.
type Outcome struct {
	Kind   OutcomeKind
	Status ProcessingStatus
	Fault  *Fault
}

// Delivered builds a delivered outcome.
func Delivered() Outcome { return Outcome{Kind: OutcomeDelivered} }

// Skipped builds a skipped outcome.
func Skipped() Outcome { return Outcome{Kind: OutcomeSkipped} }

// Terminal builds an outcome for a remote job that ended without a document.
func Terminal(status ProcessingStatus) Outcome {
	return Outcome{Kind: OutcomeTerminal, Status: status}
}

// Faulted builds a fault outcome.
func Faulted(kind string, stage Stage, detail string) Outcome {
	return Outcome{Kind: OutcomeFault, Fault: &Fault{Kind: kind, Stage: stage, Detail: detail}}
}

// OK reports whether the outcome needs no follow-up.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeDelivered || o.Kind == OutcomeSkipped || o.Kind == OutcomeEmpty
}

// Stage names a step of the pipeline for logging and metrics.
type Stage string

// Pipeline stages in execution order.
const (
	StageAuth    Stage = "auth"
	StageCreate  Stage = "create"
	StageAwait   Stage = "await"
	StageList    Stage = "list"
	StageLedger  Stage = "ledger"
	StageFetch   Stage = "fetch"
	StagePersist Stage = "persist"
	StageRecord  Stage = "record"
	StageNotify  Stage = "notify"
)

// ItemResult reports the outcome for one job id or shipment id.
type ItemResult struct {
	ID       string
	Filename string
	Outcome  Outcome
}

// RunResult summarises a single pipeline invocation.
type RunResult struct {
	RunID      string
	Job        string
	Window     Window
	StartedAt  time.Time
	FinishedAt time.Time
	Items      []ItemResult
	Outcome    Outcome
}

// Delivered counts delivered items.
func (r RunResult) Delivered() int {
	n := 0
	for _, item := range r.Items {
		if item.Outcome.Kind == OutcomeDelivered {
			n++
		}
	}
	return n
}

// Failed counts items that ended in a fault or terminal state.
func (r RunResult) Failed() int {
	n := 0
	for _, item := range r.Items {
		if !item.Outcome.OK() {
			n++
		}
	}
	return n
}
