// Package bwrt lets a compiled Go binary serve as an AWS Lambda custom
// runtime: it speaks the invocation API directly, with no managed runtime
// layer in between.
//
// # Overview
//
// bwrt owns the bootstrap-and-dispatch loop a custom runtime must
// implement: read the configuration the platform injects through the
// environment, run your one-time initializer, then long-poll the local
// invocation API for events, dispatch each one to your handler, and report
// exactly one response or error per invocation. A complete function binary
// is a single call:
//
//	func main() {
//	    bwrt.NewApp[Env, Output](initialize).Run()
//	}
//
// # Two-phase handlers
//
// Setup and per-event logic are two distinct lifecycle stages. The
// initializer runs once per execution environment and returns the handler
// closure; anything expensive (connections, caches, config loads) belongs
// in the initializer and is captured by the closure:
//
//	func initialize() (bwrt.Handler[Output], error) {
//	    db, err := openDatabase()
//	    if err != nil {
//	        return nil, err // reported on the init-error channel, process exits
//	    }
//	    return func(event []byte, ictx *bwrt.Context) (Output, error) {
//	        return db.Lookup(event, ictx.RequestID)
//	    }, nil
//	}
//
// # Environment configuration
//
// Define your environment by embedding [BaseEnvironment]:
//
//	type Env struct {
//	    bwrt.BaseEnvironment
//	    MainTableName string `env:"MAIN_TABLE_NAME,required"`
//	}
//
// BaseEnvironment reads the variables the platform defines for a custom
// runtime:
//
//	| Variable                        | Required | Default    | Description                           |
//	|---------------------------------|----------|------------|---------------------------------------|
//	| AWS_LAMBDA_RUNTIME_API          | Yes      | -          | host:port of the local invocation API |
//	| _HANDLER                        | Yes      | -          | Handler identifier                    |
//	| AWS_LAMBDA_FUNCTION_NAME        | No       | ""         | Function name                         |
//	| AWS_LAMBDA_FUNCTION_VERSION     | No       | ""         | Function version                      |
//	| AWS_LAMBDA_FUNCTION_MEMORY_SIZE | No       | 0          | Memory limit in MB                    |
//	| AWS_LAMBDA_LOG_GROUP_NAME       | No       | ""         | Log group name                        |
//	| AWS_LAMBDA_LOG_STREAM_NAME      | No       | ""         | Log stream name                       |
//	| LOG_LEVEL                       | No       | info       | Log level (debug, info, warn, error)  |
//	| AWS_LAMBDA_RUNTIME_API_VERSION  | No       | 2018-06-01 | Invocation API version path segment   |
//
// # Failure model
//
// The loop is deliberately retry-free. An initializer error is reported
// once to the init-error endpoint and the process exits. A handler error is
// reported per request id and the loop continues. Any failure to reach the
// invocation API at all is fatal: the platform recycles the execution
// environment on a non-zero exit, and masking transport failures would risk
// the process spinning without ever answering an event. Use [ErrConfig],
// [ErrInit], [ErrTransport] and [ErrMissingRequestID] with errors.Is to
// classify what [Runtime.Run] returned.
//
// # Swappable transport
//
// All HTTP exchanges go through the [Transport] interface; the bundled
// [HTTPTransport] is a plain blocking net/http client with no timeout.
// Substitute a conforming client with [WithTransport] without touching the
// engine.
package bwrt
