package bwrt

import (
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap/zapcore"
)

// Environment defines the interface that all environment configurations must
// implement. Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	runtimeAPI() string
	handlerName() string
	functionName() string
	functionVersion() string
	memoryMB() int
	logGroupName() string
	logStreamName() string
	logLevel() zapcore.Level
	apiVersion() string
}

// BaseEnvironment caches the variables the Lambda service defines for a
// custom runtime. Embed this in your own environment struct to add
// application variables on top.
//
// AWS_LAMBDA_RUNTIME_API and _HANDLER are mandatory; the rest default to
// their zero values when the platform does not set them.
type BaseEnvironment struct {
	RuntimeAPI      string        `env:"AWS_LAMBDA_RUNTIME_API,required,notEmpty" validate:"hostname_port"`
	Handler         string        `env:"_HANDLER,required,notEmpty"`
	FunctionName    string        `env:"AWS_LAMBDA_FUNCTION_NAME"`
	FunctionVersion string        `env:"AWS_LAMBDA_FUNCTION_VERSION"`
	MemoryMB        int           `env:"AWS_LAMBDA_FUNCTION_MEMORY_SIZE" validate:"min=0"`
	LogGroupName    string        `env:"AWS_LAMBDA_LOG_GROUP_NAME"`
	LogStreamName   string        `env:"AWS_LAMBDA_LOG_STREAM_NAME"`
	LogLevel        zapcore.Level `env:"LOG_LEVEL" envDefault:"info"`
	APIVersion      string        `env:"AWS_LAMBDA_RUNTIME_API_VERSION" envDefault:"2018-06-01"`
}

func (e BaseEnvironment) runtimeAPI() string {
	return e.RuntimeAPI
}
func (e BaseEnvironment) handlerName() string {
	return e.Handler
}
func (e BaseEnvironment) functionName() string {
	return e.FunctionName
}
func (e BaseEnvironment) functionVersion() string {
	return e.FunctionVersion
}
func (e BaseEnvironment) memoryMB() int {
	return e.MemoryMB
}
func (e BaseEnvironment) logGroupName() string {
	return e.LogGroupName
}
func (e BaseEnvironment) logStreamName() string {
	return e.LogStreamName
}
func (e BaseEnvironment) logLevel() zapcore.Level {
	return e.LogLevel
}
func (e BaseEnvironment) apiVersion() string {
	return e.APIVersion
}

var _ Environment = BaseEnvironment{}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseEnv parses environment variables into the given Environment type.
// It is meant to be called once, at process start, before the runtime loop
// begins.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if err := env.Parse(&e); err != nil {
			return e, errors.Mark(errors.Wrap(err, "parse runtime environment"), ErrConfig)
		}
		if err := validate.Struct(e); err != nil {
			return e, errors.Mark(errors.Wrap(err, "validate runtime environment"), ErrConfig)
		}
		return e, nil
	}
}
