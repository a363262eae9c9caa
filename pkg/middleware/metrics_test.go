package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/gobarber/web/pkg/toast"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Delete("/toasts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/toasts/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	if got := metricCounterValue(t, m.requestsTotal.WithLabelValues("/toasts/{id}", "DELETE", "204")); got != 3 {
		t.Errorf("requests_total(/toasts/{id})=%v, want 3", got)
	}
	if got := metricCounterValue(t, m.requestsTotal.WithLabelValues("/boom", "GET", "500")); got != 1 {
		t.Errorf("requests_total(/boom)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.requestsTotal.WithLabelValues("unmatched", "GET", "404")); got != 1 {
		t.Errorf("requests_total(unmatched)=%v, want 1", got)
	}
	if got := metricHistogramCount(t, m.requestDuration.WithLabelValues("/toasts/{id}", "DELETE")); got != 3 {
		t.Errorf("request_duration count=%v, want 3", got)
	}
}

func TestMetricsMiddleware_ImplicitOK(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if got := metricCounterValue(t, m.requestsTotal.WithLabelValues("/healthz", "GET", "200")); got != 1 {
		t.Errorf("requests_total=%v, want 1", got)
	}
}

func TestMetricsObserveToast(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))
	store := toast.NewStore()
	store.Subscribe(m.ObserveToast)

	a, _ := store.Add(toast.Input{Kind: toast.KindError, Title: "a"})
	store.Add(toast.Input{Kind: toast.KindSuccess, Title: "b"})
	store.Remove(a.ID)
	store.RemoveWithReason("missing", toast.ReasonExpired)

	if got := metricCounterValue(t, m.toastsShown.WithLabelValues("error")); got != 1 {
		t.Errorf("toasts_shown(error)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.toastsShown.WithLabelValues("success")); got != 1 {
		t.Errorf("toasts_shown(success)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.toastsRemoved.WithLabelValues("dismissed")); got != 1 {
		t.Errorf("toasts_removed(dismissed)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.toastsRemoved.WithLabelValues("expired")); got != 0 {
		t.Errorf("toasts_removed(expired)=%v, want 0", got)
	}
	if got := metricGaugeValue(t, m.activeToasts); got != 1 {
		t.Errorf("active_toasts=%v, want 1", got)
	}
}

func TestMetricsSessionAndWebSocket(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.RecordSessionCreate()
	m.RecordSessionCreate()
	m.RecordSessionDestroy()
	m.RecordWebSocketOpen()
	m.RecordWebSocketError("read")
	m.RecordWebSocketError("read")

	if got := metricGaugeValue(t, m.activeSessions); got != 1 {
		t.Errorf("active_sessions=%v, want 1", got)
	}
	if got := metricGaugeValue(t, m.wsConnections); got != 1 {
		t.Errorf("websocket_connections=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.wsErrors.WithLabelValues("read")); got != 2 {
		t.Errorf("websocket_errors(read)=%v, want 2", got)
	}

	m.RecordWebSocketClose()
	if got := metricGaugeValue(t, m.wsConnections); got != 0 {
		t.Errorf("websocket_connections=%v, want 0", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	m.RecordSessionCreate()
	m.RecordSessionDestroy()
	m.RecordWebSocketOpen()
	m.RecordWebSocketClose()
	m.RecordWebSocketError("x")
	m.ObserveToast(toast.Event{Type: toast.EventAdded})

	called := false
	h := m.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatal("expected next to be called")
	}
}

func TestMetricsRegistryExposesFamilies(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithConstLabels(prometheus.Labels{"app": "web"}))
	m.RecordSessionCreate()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "gobarber_active_sessions" {
			found = true
			if lbl := f.GetMetric()[0].GetLabel(); len(lbl) != 1 || lbl[0].GetValue() != "web" {
				t.Errorf("const labels = %v", lbl)
			}
		}
	}
	if !found {
		t.Error("gobarber_active_sessions not gathered")
	}
}
