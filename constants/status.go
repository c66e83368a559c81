package constants

// StageStatus is the outcome of a single pipeline stage.
type StageStatus string

const (
	StageOK       StageStatus = "OK"       // stage produced a usable value
	StageDegraded StageStatus = "DEGRADED" // recovered; a fallback path was taken
	StageFatal    StageStatus = "FATAL"    // request cannot continue
)

// Source names which path produced the final record.
type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

// JobStatus tracks a batch job through the worker queue.
type JobStatus string

const (
	JobStatusDone   JobStatus = "DONE"
	JobStatusFailed JobStatus = "FAILED"
)
