package common

import (
	"context"
	"errors"
	"fmt"
)

// FaultKind classifies a lifecycle failure by its point of origin.
type FaultKind string

const (
	// FaultNone means no fault is present.
	FaultNone FaultKind = ""
	// FaultUnresolvableSource: the image reference matched no known name and
	// is not a usable URI.
	FaultUnresolvableSource FaultKind = "unresolvable-source"
	// FaultFetchRejected: the remote endpoint refused to serve the image.
	FaultFetchRejected FaultKind = "fetch-rejected"
	// FaultCancelled: the user interrupted the run.
	FaultCancelled FaultKind = "cancelled"
	// FaultTransferFailed: the byte stream broke mid-transfer.
	FaultTransferFailed FaultKind = "transfer-failed"
	// FaultUnsupportedFormat: the image encoding has no normalization rule.
	FaultUnsupportedFormat FaultKind = "unsupported-format"
	// FaultDecodeFailed: the compressed stream is malformed.
	FaultDecodeFailed FaultKind = "decode-failed"
	// FaultRegistrationFailed: the backend rejected the sandbox registration.
	FaultRegistrationFailed FaultKind = "registration-failed"
	// FaultExecutionFailed: the sandboxed command could not run or exited
	// with a non-zero status.
	FaultExecutionFailed FaultKind = "execution-failed"
)

// String returns the string representation of the FaultKind.
func (k FaultKind) String() string {
	return string(k)
}

// Fault is the single tagged error constructed at the point where a
// lifecycle step fails. Its message is written for the user at construction
// time; outer layers pass it through rather than wrapping it, so the text
// that reaches the terminal is the originating one.
type Fault struct {
	// Kind tags the failure condition.
	Kind FaultKind
	// Message is the complete human-readable description.
	Message string
	// Err is the underlying cause, when one exists.
	Err error
}

// Error returns the fault's own message, without any cause chain.
func (f *Fault) Error() string {
	return f.Message
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (f *Fault) Unwrap() error {
	return f.Err
}

// Faultf constructs a Fault of the given kind with a formatted message.
// The last error argument, if any, is retained as the cause.
func Faultf(kind FaultKind, format string, args ...any) *Fault {
	f := &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}
	for _, a := range args {
		if err, ok := a.(error); ok {
			f.Err = err
		}
	}
	return f
}

// KindOf returns the fault kind carried by err, or FaultNone when no Fault
// is present in its chain.
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return FaultNone
}

// AsFault extracts the Fault from err's chain, or nil.
func AsFault(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return nil
}

// CancelledFault converts a context cancellation observed at a checkpoint
// into the user-facing fault for the named step.
func CancelledFault(step string) *Fault {
	return Faultf(FaultCancelled, "%s interrupted", step)
}

// IsCancellation reports whether err stems from the run being interrupted,
// either as a tagged fault or as a raw context error.
func IsCancellation(err error) bool {
	if KindOf(err) == FaultCancelled {
		return true
	}
	return errors.Is(err, context.Canceled)
}
