package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"
)

// endpointFor extracts host/port from an httptest server URL.
func endpointFor(t *testing.T, srv *httptest.Server) Endpoint {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	return Endpoint{Host: u.Hostname(), Port: port}
}

func TestEndpointURLs(t *testing.T) {
	ep := Endpoint{Port: 4000}
	if got := ep.HealthURL(); got != "http://localhost:4000/api/health" {
		t.Fatalf("health url = %q", got)
	}
	if got := ep.ShutdownURL(); got != "http://localhost:4000/api/shutdown" {
		t.Fatalf("shutdown url = %q", got)
	}
	ep = Endpoint{Host: "127.0.0.1", Port: 8080}
	if got := ep.BaseURL(); got != "http://127.0.0.1:8080" {
		t.Fatalf("base url = %q", got)
	}
}

func TestCheckHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := New(time.Second, nil)
	if got := p.Check(context.Background(), endpointFor(t, srv)); got != Healthy {
		t.Fatalf("result = %v, want Healthy", got)
	}
}

func TestCheckNotReadyOnNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := New(time.Second, nil)
	if got := p.Check(context.Background(), endpointFor(t, srv)); got != NotReady {
		t.Fatalf("result = %v, want NotReady", got)
	}
}

func TestCheckUnreachableOnRefusedConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	ep := endpointFor(t, srv)
	srv.Close()

	p := New(500*time.Millisecond, nil)
	if got := p.Check(context.Background(), ep); got != Unreachable {
		t.Fatalf("result = %v, want Unreachable", got)
	}
}

func TestCheckUnreachableOnTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		srv.Close()
	}()

	p := New(50*time.Millisecond, nil)
	start := time.Now()
	got := p.Check(context.Background(), endpointFor(t, srv))
	if got != Unreachable {
		t.Fatalf("result = %v, want Unreachable", got)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("probe blocked too long: %v", elapsed)
	}
}

func TestResultString(t *testing.T) {
	if Healthy.String() != "healthy" || NotReady.String() != "not_ready" || Unreachable.String() != "unreachable" {
		t.Fatalf("unexpected result strings: %v %v %v", Healthy, NotReady, Unreachable)
	}
	if Result(99).String() != "unknown" {
		t.Fatalf("out-of-range result should stringify as unknown")
	}
}
