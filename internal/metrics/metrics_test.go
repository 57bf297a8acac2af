package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegisterIdempotent(t *testing.T) {
	r := prometheus.NewRegistry()
	if err := Register(r); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := Register(r); err != nil {
		t.Fatalf("second register: %v", err)
	}
	// Helpers must not panic once registered.
	IncSpawn()
	IncSpawnFailure()
	IncProbe("healthy")
	ObserveReadyDuration(1.5)
	IncShutdownOutcome("graceful_acked")
	SetLifecycleState("running", true)
	SetLifecycleState("running", false)
}

func TestHandlerServesMetrics(t *testing.T) {
	_ = Register(prometheus.DefaultRegisterer)
	srv := httptest.NewServer(Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != 200 {
		t.Fatalf("metrics status = %d", resp.StatusCode)
	}
}
