package bwrt_test

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/basewarphq/bwrt"
	"github.com/cockroachdb/errors"
)

func TestHTTPTransportGet(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if got := r.Header.Get("X-Probe"); got != "1" {
			t.Errorf("X-Probe header = %q, want 1", got)
		}
		w.Header().Set("X-Marker", "yes")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	tr := bwrt.NewHTTPTransport()
	resp, err := tr.Get(srv.URL, http.Header{"X-Probe": []string{"1"}})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Marker"); got != "yes" {
		t.Errorf("X-Marker = %q, want yes", got)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("Body = %q", resp.Body)
	}
}

func TestHTTPTransportPost(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"msg":"hi"}` {
			t.Errorf("body = %q", body)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	tr := bwrt.NewHTTPTransport()
	resp, err := tr.Post(srv.URL,
		http.Header{"Content-Type": []string{"application/json"}},
		[]byte(`{"msg":"hi"}`))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("StatusCode = %d, want 202", resp.StatusCode)
	}
}

func TestHTTPTransportConnectionFailure(t *testing.T) {
	t.Parallel()

	// Grab a port that nothing is listening on.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()

	tr := bwrt.NewHTTPTransport()
	_, err = tr.Get("http://"+addr+"/", nil)
	if !errors.Is(err, bwrt.ErrTransport) {
		t.Fatalf("Get error = %v, want ErrTransport", err)
	}
}

func TestHTTPTransportStatusIsNotAnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	// Status classification is the runtime loop's job, not the transport's.
	resp, err := bwrt.NewHTTPTransport().Get(srv.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", resp.StatusCode)
	}
}
