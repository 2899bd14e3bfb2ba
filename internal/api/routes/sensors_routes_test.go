package routes

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"equipment-dispatch-api-server/config"
	"equipment-dispatch-api-server/internal/cache"
	"equipment-dispatch-api-server/internal/health"
	"equipment-dispatch-api-server/internal/models"
	"equipment-dispatch-api-server/internal/sensors"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSensorsRouter(t *testing.T, eventsURL string) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	logger := zap.NewNop()

	mr := miniredis.RunT(t)
	c, err := cache.New(config.RedisConfig{Host: mr.Host(), Port: mr.Port(), Timeout: time.Second}, config.CacheConfig{}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	require.NoError(t, c.Connect(context.Background()))

	readings := sensors.NewReadings(c, sensors.NewSimulator(rand.NewPCG(5, 6)), 30*time.Second)
	forwarder := sensors.NewForwarder(eventsURL, time.Second, logger)
	reporter := health.NewReporter("sensors-api", c, nil)

	return SetupSensorsRouter(readings, forwarder, reporter, logger), mr
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestSensorDataCached(t *testing.T) {
	router, mr := newSensorsRouter(t, "http://127.0.0.1:1")

	var first, second struct {
		Source string               `json:"source"`
		Data   models.SensorReading `json:"data"`
	}
	require.NoError(t, json.Unmarshal(serve(router, http.MethodGet, "/sensor-data", "").Body.Bytes(), &first))
	require.NoError(t, json.Unmarshal(serve(router, http.MethodGet, "/sensor-data", "").Body.Bytes(), &second))

	assert.Equal(t, "generated", first.Source)
	assert.Equal(t, "cache", second.Source)
	assert.Equal(t, first.Data, second.Data)

	mr.FastForward(30 * time.Second)
	rr := serve(router, http.MethodGet, "/sensor-data", "")
	assert.Contains(t, rr.Body.String(), `"source":"generated"`)
}

func TestAlertForwarded(t *testing.T) {
	events := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"event_id":1}`))
	}))
	defer events.Close()
	router, _ := newSensorsRouter(t, events.URL)

	rr := serve(router, http.MethodPost, "/alert", `{"message":"pressure spike","severity":"high"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body struct {
		Success        bool            `json:"success"`
		Alert          models.Alert    `json:"alert"`
		EventsResponse json.RawMessage `json:"events_response"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "UNKNOWN", body.Alert.WellID)
	assert.Equal(t, "sensors-api", body.Alert.Source)
	assert.JSONEq(t, `{"success":true,"event_id":1}`, string(body.EventsResponse))
}

func TestAlertValidation(t *testing.T) {
	router, _ := newSensorsRouter(t, "http://127.0.0.1:1")

	for _, payload := range []string{`{"message":"m"}`, `{"severity":"high"}`, `nope`} {
		rr := serve(router, http.MethodPost, "/alert", payload)
		assert.Equal(t, http.StatusBadRequest, rr.Code, payload)
		assert.Contains(t, rr.Body.String(), "message, severity")
	}
}

func TestAlertForwardFailure(t *testing.T) {
	router, _ := newSensorsRouter(t, "http://127.0.0.1:1")

	rr := serve(router, http.MethodPost, "/alert", `{"message":"m","severity":"low","well_id":"WELL_2"}`)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "details")
}

func TestSensorsHealth(t *testing.T) {
	router, _ := newSensorsRouter(t, "http://127.0.0.1:1")

	rr := serve(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "sensors-api", body["service"])
	assert.Equal(t, true, body["cache_connected"])
	assert.NotContains(t, body, "queue_connected")
}
