package ollama

import (
	"errors"
	"fmt"
)

// StatusFault is a generate call that reached the server but got a non-200 reply.
type StatusFault struct {
	Code int
}

func (f *StatusFault) Error() string { return fmt.Sprintf("Status %d", f.Code) }

// TransportFault is a generate call that failed before a usable reply was
// read: connection refused, DNS, cancelled context, unreadable body.
type TransportFault struct {
	Err error
}

func (f *TransportFault) Error() string {
	if f.Err == nil {
		return "transport failure"
	}
	return f.Err.Error()
}

func (f *TransportFault) Unwrap() error { return f.Err }

// IsStatusFault reports whether err is a *StatusFault.
func IsStatusFault(err error) bool {
	var sf *StatusFault
	return errors.As(err, &sf)
}

// IsTransportFault reports whether err is a *TransportFault.
func IsTransportFault(err error) bool {
	var tf *TransportFault
	return errors.As(err, &tf)
}

// StatusCode returns the HTTP status of a *StatusFault, or 0.
func StatusCode(err error) int {
	var sf *StatusFault
	if errors.As(err, &sf) {
		return sf.Code
	}
	return 0
}

// Result is the outcome of one generate call: Text on success, Err on failure.
type Result struct {
	Text string
	Err  error
}

// Success wraps a model response.
func Success(text string) Result { return Result{Text: text} }

// Failure wraps a fault.
func Failure(err error) Result { return Result{Err: err} }

// OK reports whether the call produced a model response.
func (r Result) OK() bool { return r.Err == nil }

// String renders the result the way it is shown to users: the response text,
// or "Error: <fault>" ("Error: Status 404", "Error: dial tcp ...").
func (r Result) String() string {
	if r.Err != nil {
		return "Error: " + r.Err.Error()
	}
	return r.Text
}
