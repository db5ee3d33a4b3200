package bwrt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultAPIVersion is the invocation API version currently used on AWS.
const DefaultAPIVersion = "2018-06-01"

// Handler is the per-invocation function returned by an Initializer. It
// receives the raw event body exactly as delivered by the invocation API --
// possibly empty, never validated or parsed by the runtime -- together with
// the invocation context. The returned OUT value is JSON-serialized and
// posted as the invocation's response; a non-nil error is reported through
// the per-invocation error channel instead.
//
// Handlers are called at most once per invocation and never concurrently,
// so state captured by the closure needs no locking.
type Handler[OUT any] func(event []byte, ictx *Context) (OUT, error)

// Initializer runs exactly once per execution environment, before the first
// event is fetched. It performs one-time setup (connections, caches, config
// loads) and returns the handler that serves every subsequent invocation.
// Returning an error reports through the init-error channel and makes the
// process exit; the platform then recycles the execution environment.
type Initializer[OUT any] func() (Handler[OUT], error)

type options struct {
	version   string
	transport Transport
	logger    *zap.Logger
}

// Option configures a Runtime beyond its environment.
type Option func(*options)

// WithVersion overrides the invocation API version path segment. A leading
// slash is tolerated and stripped.
func WithVersion(version string) Option {
	return func(o *options) { o.version = version }
}

// WithTransport substitutes the HTTP client used against the invocation
// API. The default is NewHTTPTransport.
func WithTransport(t Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithLogger substitutes the runtime's logger. The default is built from
// the environment's configured level via NewLogger.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.logger = log }
}

// Runtime is the invocation engine: it owns the fetch/dispatch/report loop
// against the invocation API. E is the environment configuration type and
// OUT the handler's success type.
//
// Only the environment and the handler returned by the initializer survive
// across loop iterations; both are read-only after construction.
type Runtime[E Environment, OUT any] struct {
	env       E
	version   string
	transport Transport
	log       *zap.Logger
	tracer    trace.Tracer
	init      Initializer[OUT]
}

// New assembles a Runtime from an already-parsed environment and the
// one-time initializer. The initializer is not called until Run.
func New[E Environment, OUT any](env E, init Initializer[OUT], opts ...Option) (*Runtime[E, OUT], error) {
	o := options{version: env.apiVersion()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.transport == nil {
		o.transport = NewHTTPTransport()
	}
	if o.logger == nil {
		log, err := NewLogger(env)
		if err != nil {
			return nil, errors.Wrap(err, "build runtime logger")
		}
		o.logger = log
	}
	return &Runtime[E, OUT]{
		env:       env,
		version:   strings.TrimPrefix(o.version, "/"),
		transport: o.transport,
		log:       o.logger,
		tracer:    otel.Tracer("github.com/basewarphq/bwrt"),
		init:      init,
	}, nil
}

// Env returns the environment configuration the runtime was built with.
func (r *Runtime[E, OUT]) Env() E {
	return r.env
}

// Run executes the runtime loop: initialize once, then fetch, dispatch and
// report forever. It blocks for the lifetime of the process and only
// returns on a fatal condition: a failed initialization (reported via the
// init-error endpoint first), a transport failure talking to the invocation
// API, or a next-invocation response carrying no request id. The returned
// error is never nil; callers must exit with a non-zero status so the
// platform recycles the execution environment.
func (r *Runtime[E, OUT]) Run() error {
	handler, err := r.init()
	if err != nil {
		r.reportInitError(err)
		return errors.Mark(errors.Wrap(err, "initialize handler"), ErrInit)
	}
	r.log.Info("runtime initialized",
		zap.String("handler", r.env.handlerName()),
		zap.String("function", r.env.functionName()),
		zap.String("function_version", r.env.functionVersion()),
		zap.Int("memory_mb", r.env.memoryMB()),
		zap.String("log_group", r.env.logGroupName()),
		zap.String("log_stream", r.env.logStreamName()),
	)

	for {
		if err := r.processNext(handler); err != nil {
			r.log.Error("runtime loop aborting", zap.Error(err))
			return err
		}
	}
}

// processNext performs one full loop iteration: long-poll for the next
// event, build its context, dispatch the handler, and report exactly one of
// response or error back for its request id. A nil return means the
// iteration was fully reported and the loop may continue.
func (r *Runtime[E, OUT]) processNext(handler Handler[OUT]) error {
	next, err := r.transport.Get(r.invocationURL("next"), nil)
	if err != nil {
		return errors.Wrap(err, "fetch next invocation")
	}
	if !next.ok() {
		return errors.Mark(
			errors.Newf("next invocation rejected: status %d", next.StatusCode), ErrTransport)
	}

	ictx, err := newContext(next.Header)
	if err != nil {
		// Without a request id there is no endpoint to report against.
		return errors.Wrap(err, "build invocation context")
	}
	r.propagateTraceID(ictx.TraceID)
	r.log.Debug("invocation received",
		zap.String("request_id", ictx.RequestID),
		zap.Int64("deadline_ms", ictx.Deadline),
	)

	out, handlerErr := r.dispatch(handler, next.Body, ictx)
	if handlerErr != nil {
		return r.reportInvocationError(ictx.RequestID, handlerErr)
	}

	body, err := json.Marshal(out)
	if err != nil {
		// The invocation still has to be answered: an unserializable output
		// is reported through the error channel like any handler failure.
		return r.reportInvocationError(ictx.RequestID,
			errors.Wrap(err, "serialize handler output"))
	}
	return r.respond(ictx.RequestID, body)
}

// dispatch calls the handler synchronously, wrapped in a span carrying the
// invocation identity. A handler panic is recovered and surfaced as a
// handler failure so the invocation is still answered.
func (r *Runtime[E, OUT]) dispatch(handler Handler[OUT], event []byte, ictx *Context) (out OUT, err error) {
	_, span := r.tracer.Start(context.Background(), "bwrt.invoke",
		trace.WithAttributes(
			attribute.String("faas.invocation_id", ictx.RequestID),
			attribute.String("faas.invoked_arn", ictx.InvokedFunctionARN),
		))
	defer span.End()
	defer func() {
		if p := recover(); p != nil {
			err = errors.Newf("handler panic: %v", p)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()
	return handler(event, ictx)
}

// respond posts the serialized handler output for the given request id.
// Failure to deliver is fatal: an acknowledged event must never be dropped
// silently, and the runtime has no recovery path once the invocation API is
// unreachable.
func (r *Runtime[E, OUT]) respond(requestID string, body []byte) error {
	header := http.Header{"Content-Type": []string{"application/json"}}
	resp, err := r.transport.Post(r.invocationURL(requestID, "response"), header, body)
	if err != nil {
		return errors.Wrapf(err, "post response for request %s", requestID)
	}
	if !resp.ok() {
		return errors.Mark(
			errors.Newf("response for request %s rejected: status %d", requestID, resp.StatusCode),
			ErrTransport)
	}
	r.log.Debug("invocation response delivered", zap.String("request_id", requestID))
	return nil
}

// reportInvocationError posts the handler failure on the per-invocation
// error channel. A successfully delivered report returns nil and the loop
// continues; failure to deliver the report itself is fatal.
func (r *Runtime[E, OUT]) reportInvocationError(requestID string, handlerErr error) error {
	r.log.Warn("handler failed",
		zap.String("request_id", requestID),
		zap.Error(handlerErr),
	)
	body, err := json.Marshal(newErrorPayload(handlerErr, handlerErrorType))
	if err != nil {
		return errors.Wrap(err, "serialize invocation error payload")
	}
	header := http.Header{
		"Content-Type":        []string{"application/json"},
		headerFunctionErrType: []string{handlerErrorType},
	}
	resp, err := r.transport.Post(r.invocationURL(requestID, "error"), header, body)
	if err != nil {
		return errors.Wrapf(err, "post error report for request %s", requestID)
	}
	if !resp.ok() {
		return errors.Mark(
			errors.Newf("error report for request %s rejected: status %d", requestID, resp.StatusCode),
			ErrTransport)
	}
	return nil
}

// reportInitError posts the initialization failure to the process-wide
// init-error endpoint. Best effort, single attempt: whatever the outcome,
// the process is about to terminate and the platform recycles the
// execution environment.
func (r *Runtime[E, OUT]) reportInitError(initErr error) {
	body, err := json.Marshal(newErrorPayload(initErr, initErrorType))
	if err != nil {
		r.log.Error("serialize init error payload", zap.Error(err))
		return
	}
	header := http.Header{
		"Content-Type":        []string{"application/json"},
		headerFunctionErrType: []string{initErrorType},
	}
	resp, err := r.transport.Post(r.initErrorURL(), header, body)
	if err != nil {
		r.log.Error("report initialization error", zap.Error(err))
		return
	}
	if !resp.ok() {
		r.log.Error("initialization error report rejected",
			zap.Int("status", resp.StatusCode))
	}
}

// propagateTraceID exposes the invocation's trace id process-wide for the
// duration of the invocation. Overwritten or cleared on every iteration so
// a stale id never leaks into the next event.
func (r *Runtime[E, OUT]) propagateTraceID(traceID string) {
	if traceID == "" {
		_ = os.Unsetenv(traceIDVar)
		return
	}
	_ = os.Setenv(traceIDVar, traceID)
}

func (r *Runtime[E, OUT]) invocationURL(parts ...string) string {
	return fmt.Sprintf("http://%s/%s/runtime/invocation/%s",
		r.env.runtimeAPI(), r.version, strings.Join(parts, "/"))
}

func (r *Runtime[E, OUT]) initErrorURL() string {
	return fmt.Sprintf("http://%s/%s/runtime/init/error", r.env.runtimeAPI(), r.version)
}
