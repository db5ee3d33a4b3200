package bwrt

import (
	"context"
	"fmt"
	"os"

	"github.com/basewarphq/bwrt/internal/tracing"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// App bundles environment parsing, logging, tracing and the runtime into a
// single wired application. It is the batteries-included entry point: a
// complete function binary is
//
//	func main() {
//	    bwrt.NewApp[Env, Output](initialize).Run()
//	}
//
// For finer control, assemble the pieces yourself with ParseEnv, NewLogger
// and New.
type App[E Environment, OUT any] struct {
	init   Initializer[OUT]
	opts   []Option
	fxOpts []fx.Option
}

// NewApp creates an App for the given environment type, output type and
// one-time initializer. Options are forwarded to New.
func NewApp[E Environment, OUT any](init Initializer[OUT], opts ...Option) *App[E, OUT] {
	return &App[E, OUT]{init: init, opts: opts}
}

// WithFx appends additional fx options (providers, invokes) to the
// application graph.
func (a *App[E, OUT]) WithFx(opts ...fx.Option) *App[E, OUT] {
	a.fxOpts = append(a.fxOpts, opts...)
	return a
}

// Run wires the application and executes the runtime loop. It never
// returns: the loop runs until the platform tears the process down, and
// every fatal condition exits with a non-zero status.
func (a *App[E, OUT]) Run() {
	var (
		rt  *Runtime[E, OUT]
		log *zap.Logger
	)
	opts := []fx.Option{
		fx.NopLogger,
		fx.Provide(
			ParseEnv[E](),
			func(env E) (*zap.Logger, error) { return NewLogger(env) },
			func(env E, log *zap.Logger) (*Runtime[E, OUT], error) {
				return New(env, a.init, append([]Option{WithLogger(log)}, a.opts...)...)
			},
		),
		fx.Invoke(registerTracing),
		fx.Populate(&rt, &log),
	}
	app := fx.New(append(opts, a.fxOpts...)...)
	if err := app.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "bwrt: wiring failed:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Error("startup failed", zap.Error(err))
		os.Exit(1)
	}

	err := rt.Run()
	log.Error("runtime terminated", zap.Error(err))
	_ = app.Stop(ctx)
	os.Exit(1)
}

// registerTracing ties the tracer provider's lifetime to the application.
func registerTracing(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: tracing.Init,
		OnStop:  tracing.Shutdown,
	})
}
