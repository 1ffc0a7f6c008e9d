package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabrica-erp/panel/internal/dashboard"
	"github.com/fabrica-erp/panel/internal/gateway"
	jobmetrics "github.com/fabrica-erp/panel/internal/jobs"
	"github.com/fabrica-erp/panel/internal/platform/cache"
)

func fakeAPI(t *testing.T, failAlerts bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "worker" || body["password"] != "clave" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"access":"svc-access","refresh":"svc-refresh"}`))
	})
	mux.HandleFunc("/api/productos/alertas/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer svc-access", r.Header.Get("Authorization"))
		if failAlerts {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[{"id":1,"codigo":"P-1","nombre":"Mesa","stock_actual":2,"stock_minimo":5}]`))
	})
	mux.HandleFunc("/api/materias-primas/alertas/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":4,"codigo":"M-4","nombre":"Roble","stock_actual":"1.50","stock_minimo":"10.00","unidad":"m2"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newJob(t *testing.T, srv *httptest.Server, account ServiceAccount) (*StockAlertJob, *cache.Versioned) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewVersioned(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "panel:test", time.Minute)
	api := gateway.NewClient(gateway.Options{BaseURL: srv.URL + "/api"})
	job := NewStockAlertJob(api, account, c, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	job.clock = func() time.Time { return time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC) }
	return job, c
}

func TestStockAlertJobStoresSnapshot(t *testing.T) {
	job, c := newJob(t, fakeAPI(t, false), ServiceAccount{Username: "worker", Password: "clave"})
	task, err := NewStockAlertTask("manual")
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))

	var snap dashboard.AlertSnapshot
	found, err := c.Get(context.Background(), dashboard.SnapshotKey, &snap)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, snap.CheckedAt.Equal(time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)))
	require.Len(t, snap.Alerts, 2)
	assert.Equal(t, dashboard.KindProduct, snap.Alerts[0].Kind)
	assert.Equal(t, "P-1", snap.Alerts[0].Code)
	assert.Equal(t, dashboard.KindMaterial, snap.Alerts[1].Kind)
	assert.Equal(t, 1.5, snap.Alerts[1].Stock)
	assert.Equal(t, "m²", snap.Alerts[1].Unit)
}

func TestStockAlertJobLoginFailure(t *testing.T) {
	job, c := newJob(t, fakeAPI(t, false), ServiceAccount{Username: "worker", Password: "mala"})

	_, err := job.Scan(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, gateway.StatusOf(err))

	found, err := c.Get(context.Background(), dashboard.SnapshotKey, &dashboard.AlertSnapshot{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStockAlertJobFetchFailure(t *testing.T) {
	job, _ := newJob(t, fakeAPI(t, true), ServiceAccount{Username: "worker", Password: "clave"})
	task, err := NewStockAlertTask("")
	require.NoError(t, err)

	assert.Error(t, job.Handle(context.Background(), task))
}

func TestStockAlertJobBadPayload(t *testing.T) {
	job, _ := newJob(t, fakeAPI(t, false), ServiceAccount{})
	err := job.Handle(context.Background(), asynq.NewTask(TaskStockAlertScan, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestNewStockAlertTask(t *testing.T) {
	task, err := NewStockAlertTask("")
	require.NoError(t, err)
	assert.Equal(t, TaskStockAlertScan, task.Type())
	var payload StockAlertPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "cron", payload.Trigger)
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func TestHealthEndpoint(t *testing.T) {
	h := NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3, Failed: 1}}, nil)
	rr := httptest.NewRecorder()
	h.health(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var status QueueStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, 3, status.Pending)
	assert.Equal(t, 1, status.Failed)

	h = NewHandler(stubInspector{err: assert.AnError}, nil)
	rr = httptest.NewRecorder()
	h.health(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
