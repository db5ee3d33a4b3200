package bwrt

import "net/http"

// Response is one decoded reply from the invocation API: status code, the
// full header set, and the raw body bytes.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// Transport performs a single blocking HTTP exchange at a time against the
// invocation API. Implementations must not impose a caller-visible timeout
// (the next-invocation long poll legitimately blocks until an event
// arrives) and must not retry: escalation policy belongs to the runtime
// loop, which treats any transport failure as fatal.
//
// The default implementation is HTTPTransport; substitute any conforming
// client with WithTransport.
type Transport interface {
	Get(url string, header http.Header) (*Response, error)
	Post(url string, header http.Header, body []byte) (*Response, error)
}
