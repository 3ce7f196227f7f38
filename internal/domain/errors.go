package domain

import "context"

type ErrorKind string

const (
	ErrorNetwork    ErrorKind = "network"
	ErrorPayment    ErrorKind = "payment"
	ErrorPrinter    ErrorKind = "printer"
	ErrorKDS        ErrorKind = "kds"
	ErrorOutOfStock ErrorKind = "out-of-stock"
)

// PipelineError is the transient, UI-facing failure shape shared by the
// checkout pipeline and the sync path. Retry, when set, resumes the
// failed step. Never persisted.
type PipelineError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	// PartialAuth distinguishes a partial authorization from a hard
	// decline: recoverable, and the front-end offers switching payment
	// methods in addition to retrying.
	PartialAuth bool                        `json:"partial_auth,omitempty"`
	Retry       func(context.Context) error `json:"-"`
}

func (e *PipelineError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func (e *PipelineError) Retryable() bool {
	return e != nil && e.Retry != nil
}
