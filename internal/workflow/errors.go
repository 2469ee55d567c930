package workflow

import "errors"

// Step error kinds. A *StepError wraps exactly one of these.
var (
	ErrNotIngested       = errors.New("document ingestion not set up")
	ErrNoFilesUploaded   = errors.New("no files uploaded")
	ErrNoDocuments       = errors.New("no company documents loaded")
	ErrNoFindings        = errors.New("no analysis data available")
	ErrInvalidRegulation = errors.New("invalid regulation")
	ErrBackend           = errors.New("model backend failure")
)

// StepError is returned when an operation is called out of order or its
// model call fails. Message is meant for the end user; the session is left
// unchanged.
type StepError struct {
	Op      string
	Kind    error
	Message string
}

func (e *StepError) Error() string {
	return e.Message
}

func (e *StepError) Unwrap() error {
	return e.Kind
}

func stepError(op string, kind error, msg string) *StepError {
	return &StepError{Op: op, Kind: kind, Message: msg}
}

// Message returns the user-facing text of err: a StepError's message or
// the error string.
func Message(err error) string {
	var se *StepError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
