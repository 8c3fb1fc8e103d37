package services

import "errors"

// Stage tags every rejection with the pipeline step that produced it.
type Stage string

const (
	StagePayloadParsing Stage = "payload-parsing"
	StageAuthentication Stage = "authentication"
	StageValidation     Stage = "validation"
	StageExtraction     Stage = "extraction-failed"
	StageNotFound       Stage = "not-found"
	StageConflict       Stage = "conflict"
	StagePersistence    Stage = "persistence"
)

// StageError carries a machine-readable stage and a message safe to show
// to callers. The wrapped error is for logs only.
type StageError struct {
	Stage   Stage
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return string(e.Stage) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Stage) + ": " + e.Message
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func NewStageError(stage Stage, message string, err error) *StageError {
	return &StageError{Stage: stage, Message: message, Err: err}
}

// StageOf extracts the stage from an error chain, defaulting to
// persistence for untagged failures.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return StagePersistence
}

// CallerMessage extracts the caller-safe message from an error chain.
func CallerMessage(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Message
	}
	return "internal error"
}
