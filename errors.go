package bwrt

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Marker errors for the runtime's failure taxonomy. Use errors.Is to test
// which class a failure returned by Run belongs to.
var (
	// ErrConfig marks a missing or malformed mandatory environment value.
	ErrConfig = errors.New("runtime configuration error")
	// ErrInit marks a failed one-time initialization. The process must not
	// serve invocations after this.
	ErrInit = errors.New("handler initialization failed")
	// ErrMissingRequestID marks a next-invocation response without a request
	// id header. There is no valid endpoint to report against without one.
	ErrMissingRequestID = errors.New("next invocation response has no request id")
	// ErrTransport marks any failure to complete an exchange with the
	// invocation API, including rejected (non-2xx) statuses.
	ErrTransport = errors.New("invocation API transport failure")
)

// Error type tags reported on the invocation API's two error channels.
const (
	initErrorType    = "Runtime.InitError"
	handlerErrorType = "Runtime.HandlerError"
)

// ErrorPayload is the body shape POSTed to both the init-error and the
// per-invocation error endpoints.
type ErrorPayload struct {
	ErrorMessage string   `json:"errorMessage"`
	ErrorType    string   `json:"errorType"`
	StackTrace   []string `json:"stackTrace,omitempty"`
}

// newErrorPayload wraps a user-supplied failure into the wire shape. Only
// the error's textual rendering is used; the concrete type is never
// inspected beyond looking for captured stack frames.
func newErrorPayload(err error, errorType string) ErrorPayload {
	return ErrorPayload{
		ErrorMessage: err.Error(),
		ErrorType:    errorType,
		StackTrace:   stackFrames(err),
	}
}

// stackFrames renders the stack captured in an error chain, call site first.
// Errors without captured stacks yield nil, which omits the field entirely.
func stackFrames(err error) []string {
	st := errors.GetReportableStackTrace(err)
	if st == nil {
		return nil
	}
	frames := make([]string, 0, len(st.Frames))
	// Reportable frames are ordered outermost-first; the payload wants the
	// failure site at the top.
	for i := len(st.Frames) - 1; i >= 0; i-- {
		f := st.Frames[i]
		frames = append(frames, fmt.Sprintf("%s (%s:%d)", f.Function, f.Filename, f.Lineno))
	}
	return frames
}
