package bwrt

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
)

// Header names the invocation API sets on a next-invocation response.
const (
	headerRequestID       = "Lambda-Runtime-Aws-Request-Id"
	headerDeadlineMS      = "Lambda-Runtime-Deadline-Ms"
	headerFunctionARN     = "Lambda-Runtime-Invoked-Function-Arn"
	headerTraceID         = "Lambda-Runtime-Trace-Id"
	headerClientContext   = "Lambda-Runtime-Client-Context"
	headerCognitoIdentity = "Lambda-Runtime-Cognito-Identity"
	headerFunctionErrType = "Lambda-Runtime-Function-Error-Type"
)

// traceIDVar is where the current trace id is exposed for the duration of
// an invocation, so X-Ray aware SDKs inside the handler pick it up.
const traceIDVar = "_X_AMZN_TRACE_ID"

// Context carries the metadata of a single invocation, parsed from the
// next-invocation response headers. A fresh value is built for every event
// and discarded once its outcome has been reported; nothing is carried over
// between invocations.
//
// Only the request id is guaranteed to be present. Every other field is
// best effort: an absent or malformed header leaves the zero value rather
// than failing the invocation.
type Context struct {
	// RequestID identifies the invocation against the invocation API.
	RequestID string
	// Deadline is when the platform will terminate the invocation, in epoch
	// milliseconds. Zero when the platform did not communicate one. The
	// deadline is informational; the runtime never interrupts a handler.
	Deadline int64
	// InvokedFunctionARN is the full ARN the function was invoked through.
	InvokedFunctionARN string
	// TraceID is the X-Ray trace header for this invocation.
	TraceID string
	// ClientContext is set for invocations made through the mobile SDKs.
	ClientContext *lambdacontext.ClientContext
	// CognitoIdentity is set for invocations authenticated through Cognito.
	CognitoIdentity *lambdacontext.CognitoIdentity
}

// newContext builds the per-invocation context from response headers. It
// fails only when the request id itself is missing: partial context is
// preferable to discarding a real, billable invocation over optional
// metadata.
func newContext(header http.Header) (*Context, error) {
	requestID := header.Get(headerRequestID)
	if requestID == "" {
		return nil, ErrMissingRequestID
	}

	ictx := &Context{
		RequestID:          requestID,
		InvokedFunctionARN: header.Get(headerFunctionARN),
		TraceID:            header.Get(headerTraceID),
	}
	if ms := header.Get(headerDeadlineMS); ms != "" {
		if v, err := strconv.ParseInt(ms, 10, 64); err == nil {
			ictx.Deadline = v
		}
	}
	if raw := header.Get(headerClientContext); raw != "" {
		var cc lambdacontext.ClientContext
		if err := json.Unmarshal([]byte(raw), &cc); err == nil {
			ictx.ClientContext = &cc
		}
	}
	if raw := header.Get(headerCognitoIdentity); raw != "" {
		var ci lambdacontext.CognitoIdentity
		if err := json.Unmarshal([]byte(raw), &ci); err == nil {
			ictx.CognitoIdentity = &ci
		}
	}
	return ictx, nil
}

// DeadlineTime returns the invocation deadline as a time.Time.
func (c *Context) DeadlineTime() time.Time {
	if c.Deadline == 0 {
		return time.Time{}
	}
	return time.UnixMilli(c.Deadline)
}

// RemainingTime returns the duration until the invocation deadline.
func (c *Context) RemainingTime() time.Duration {
	if c.Deadline == 0 {
		return 0
	}
	remaining := time.Until(c.DeadlineTime())
	if remaining < 0 {
		return 0
	}
	return remaining
}
