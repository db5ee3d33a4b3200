package bwrt

import (
	"bytes"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
)

// HTTPTransport is the default Transport: a synchronous net/http client
// with no client-side timeout, so the next-invocation call can block for as
// long as the service keeps the connection open.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates the default blocking transport.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{client: &http.Client{}}
}

var _ Transport = (*HTTPTransport)(nil)

// Get issues a blocking GET against the invocation API.
func (t *HTTPTransport) Get(url string, header http.Header) (*Response, error) {
	return t.roundTrip(http.MethodGet, url, header, nil)
}

// Post issues a blocking POST against the invocation API.
func (t *HTTPTransport) Post(url string, header http.Header, body []byte) (*Response, error) {
	return t.roundTrip(http.MethodPost, url, header, body)
}

func (t *HTTPTransport) roundTrip(method, url string, header http.Header, body []byte) (*Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "build %s %s", method, url), ErrTransport)
	}
	for name, values := range header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "%s %s", method, url), ErrTransport)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read %s %s body", method, url), ErrTransport)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
