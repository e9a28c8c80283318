package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/cookie"
	"github.com/dmitrymomot/sessionkit/pkg/metrics"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

type notifyingBackend struct {
	*session.MemoryStore
	notify func(bool)
}

func (b *notifyingBackend) NotifyStatus(fn func(bool)) { b.notify = fn }

// value returns the sample of metric name whose only label equals label,
// or the unlabelled sample when label is empty.
func value(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := m.GetLabel()
			if label != "" && (len(labels) != 1 || labels[0].GetValue() != label) {
				continue
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s{%s} not found", name, label)
	return 0
}

func TestCollector_Counters(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	col := metrics.NewCollector(reg)

	col.RecordLoad(session.LoadCreated)
	col.RecordLoad(session.LoadCreated)
	col.RecordLoad(session.LoadRejected)
	col.RecordFinalize(session.ActionPersisted)
	col.RecordError("load")

	expected := `
# HELP sessionkit_session_loads_total Sessions loaded, by result
# TYPE sessionkit_session_loads_total counter
sessionkit_session_loads_total{result="created"} 2
sessionkit_session_loads_total{result="rejected"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "sessionkit_session_loads_total"))
	assert.InDelta(t, 1, value(t, reg, "sessionkit_session_finalizes_total", string(session.ActionPersisted)), 0)
	count, err := testutil.GatherAndCount(reg, "sessionkit_session_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCollector_ManagerIntegration(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	col := metrics.NewCollector(reg)

	cm, err := cookie.New([]string{"test-secret-key-that-is-long-enough-for-hmac"})
	require.NoError(t, err)
	m, err := session.New(session.WithCookieManager(cm), session.WithRecorder(col))
	require.NoError(t, err)

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session.SessionFromContext(r.Context()).Set("name", "test")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), r)

	assert.InDelta(t, 1, value(t, reg, "sessionkit_session_loads_total", string(session.LoadCreated)), 0)
	assert.InDelta(t, 1, value(t, reg, "sessionkit_session_loads_total", string(session.LoadRestored)), 0)
	assert.InDelta(t, 1, value(t, reg, "sessionkit_session_finalizes_total", string(session.ActionPersisted)), 0)
	assert.InDelta(t, 1, value(t, reg, "sessionkit_session_finalizes_total", string(session.ActionSkipped)), 0)
}

func TestCollector_Track(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	col := metrics.NewCollector(reg)

	backend := &notifyingBackend{MemoryStore: session.NewMemoryStore()}
	store := session.NewStore(backend)
	col.Track(store)

	gauge := func() float64 { return value(t, reg, "sessionkit_store_available", "") }

	assert.InDelta(t, 1, gauge(), 0)
	backend.notify(false)
	assert.InDelta(t, 0, gauge(), 0)
	backend.notify(true)
	assert.InDelta(t, 1, gauge(), 0)

}

func TestHandler(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	col := metrics.NewCollector(reg)
	col.RecordError("finalize")

	w := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `sessionkit_session_errors_total{op="finalize"} 1`)
}
