package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveWrite(t *testing.T) {
	m := New()

	m.ObserveWrite("dust_sensor", nil)
	m.ObserveWrite("dust_sensor", nil)
	m.ObserveWrite("dust_sensor", errors.New("boom"))

	if got := testutil.ToFloat64(m.pointsWritten.WithLabelValues("dust_sensor", resultOK)); got != 2 {
		t.Errorf("ok writes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.pointsWritten.WithLabelValues("dust_sensor", resultError)); got != 1 {
		t.Errorf("failed writes = %v, want 1", got)
	}
}

func TestObserveTick(t *testing.T) {
	m := New()
	m.ObserveTick()
	m.ObserveTick()

	if got := testutil.ToFloat64(m.generatorTicks); got != 2 {
		t.Errorf("ticks = %v, want 2", got)
	}
}

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodPost, "/dust", http.StatusOK, 15*time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodPost, "/dust", "200")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	// None of these may panic.
	m.ObserveWrite("dust_sensor", nil)
	m.ObserveTick()
	m.ObserveRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.ObserveWrite("sound_sensor", nil)

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`envsense_points_written_total{measurement="sound_sensor",result="ok"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
