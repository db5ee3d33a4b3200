// Command echo-server is a sample function that echoes every event back,
// tagged with the request id that delivered it.
package main

import (
	"fmt"

	"github.com/basewarphq/bwrt"
	"github.com/cockroachdb/errors"
)

// EchoMessage is the function's response shape.
type EchoMessage struct {
	Msg   string `json:"msg"`
	ReqID string `json:"req_id"`
}

// initialize runs once per execution environment and returns the echo
// handler. Rejecting empty input is this application's policy; the runtime
// itself delivers the body opaque and unvalidated.
func initialize() (bwrt.Handler[EchoMessage], error) {
	return func(event []byte, ictx *bwrt.Context) (EchoMessage, error) {
		if len(event) == 0 || string(event) == `""` {
			return EchoMessage{}, errors.New("empty input, nothing to echo")
		}
		return EchoMessage{
			Msg:   fmt.Sprintf("ECHO: %s", event),
			ReqID: ictx.RequestID,
		}, nil
	}, nil
}

func main() {
	bwrt.NewApp[bwrt.BaseEnvironment, EchoMessage](initialize).Run()
}
