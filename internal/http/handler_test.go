package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plate-stabilizer/internal/domain/plate"
	"plate-stabilizer/internal/pipeline"
	"plate-stabilizer/internal/service"
	"plate-stabilizer/internal/store"
	"plate-stabilizer/internal/validation"
)

const testSecret = "test-secret"

type fakeIngester struct {
	accept bool
	got    []plate.Frame
}

func (f *fakeIngester) Offer(fr plate.Frame) bool {
	if !f.accept {
		return false
	}
	f.got = append(f.got, fr)
	return true
}

type testEnv struct {
	router  *gin.Engine
	service *service.PlateService
	frames  *fakeIngester
	worker  *pipeline.Worker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	settings, err := validation.NewSettings(plate.FilterConfig{Enabled: true, ActivePattern: plate.PatternStandard})
	require.NoError(t, err)
	svc := service.NewPlateService(store.New(), settings, validation.NewValidator(zerolog.Nop()), nil, zerolog.Nop())
	worker, err := pipeline.NewWorker(pipeline.DefaultSettings(), svc, nil, zerolog.Nop())
	require.NoError(t, err)

	frames := &fakeIngester{accept: true}
	h := NewHandler(svc, frames, worker, zerolog.Nop())
	r := NewRouter(h, nil, nil, AuthMiddleware(testSecret, zerolog.Nop()), zerolog.Nop())
	return &testEnv{router: r, service: svc, frames: frames, worker: worker}
}

func token(t *testing.T, secret string, ttl time.Duration) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "operator",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func (e *testEnv) do(t *testing.T, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, into))
}

func TestIngestFrame(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/frames", `{"index": 4, "regions": [{"chars": [{"class_id": 44, "center_x": 1.5}]}]}`, "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"data": {"status": "accepted"}}`, w.Body.String())
	require.Len(t, env.frames.got, 1)
	assert.Equal(t, int64(4), env.frames.got[0].Index)
	assert.False(t, env.frames.got[0].CapturedAt.IsZero())

	env.frames.accept = false
	w = env.do(t, http.MethodPost, "/api/v1/frames", `{"index": 5}`, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error": "frame dropped, worker busy"}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/v1/frames", `{"index": "x"`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListAndExport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, p := range []string{"ChattoMetroGa 138707", "DhakaMetroGha 158013"} {
		_, err := env.service.Submit(ctx, p)
		require.NoError(t, err)
	}

	w := env.do(t, http.MethodGet, "/api/v1/plates", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var records []plate.SavedRecord
	decodeData(t, w, &records)
	require.Len(t, records, 2)
	assert.Equal(t, "ChattoMetroGa 138707", records[0].Text)

	w = env.do(t, http.MethodGet, "/api/v1/export?download=1", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "plates.json")
	var payload plate.ExportPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload.Detections, 2)
	assert.Equal(t, "DhakaMetroGha 158013", payload.Detections[1].Text)
	assert.Equal(t, plate.PatternStandard, payload.FilterSettings.ActivePattern)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.service.Submit(context.Background(), "ChattoMetroGa 138707")
	require.NoError(t, err)

	w := env.do(t, http.MethodDelete, "/api/v1/plates/0", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/plates/0", "", token(t, "other-secret", time.Hour))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/plates/0", "", token(t, testSecret, -time.Minute))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Len(t, env.service.Saved(), 1)
}

func TestDeleteAndClear(t *testing.T) {
	env := newTestEnv(t)
	bearer := token(t, testSecret, time.Hour)
	ctx := context.Background()
	for _, p := range []string{"ChattoMetroGa 138707", "DhakaMetroGha 158013"} {
		_, err := env.service.Submit(ctx, p)
		require.NoError(t, err)
	}

	w := env.do(t, http.MethodDelete, "/api/v1/plates/9", "", bearer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data": {"deleted": false}}`, w.Body.String())

	w = env.do(t, http.MethodDelete, "/api/v1/plates/abc", "", bearer)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/plates/0", "", bearer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data": {"deleted": true}}`, w.Body.String())
	require.Len(t, env.service.Saved(), 1)
	assert.Equal(t, "DhakaMetroGha 158013", env.service.Saved()[0].Text)

	w = env.do(t, http.MethodDelete, "/api/v1/plates", "", bearer)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, env.service.Saved())
}

func TestFilterSettings(t *testing.T) {
	env := newTestEnv(t)
	bearer := token(t, testSecret, time.Hour)

	w := env.do(t, http.MethodPut, "/api/v1/settings/filter",
		`{"enabled": true, "pattern_type": "district_simple", "custom_pattern": "", "allow_multiple_patterns": false}`, bearer)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/settings/filter", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cfg plate.FilterConfig
	decodeData(t, w, &cfg)
	assert.Equal(t, plate.PatternDistrictSimple, cfg.ActivePattern)

	w = env.do(t, http.MethodPut, "/api/v1/settings/filter", `{"pattern_type": "bogus"}`, bearer)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, plate.PatternDistrictSimple, env.service.Filter().ActivePattern)
}

func TestPipelineSettings(t *testing.T) {
	env := newTestEnv(t)
	bearer := token(t, testSecret, time.Hour)

	w := env.do(t, http.MethodPut, "/api/v1/settings/pipeline", `{"stability_threshold": 2}`, bearer)
	require.Equal(t, http.StatusOK, w.Code)
	var s pipeline.Settings
	decodeData(t, w, &s)
	assert.Equal(t, 2, s.StabilityThreshold)
	assert.Equal(t, 3, s.MinDetectionLength, "unspecified fields keep their values")
	assert.Equal(t, 2, env.worker.Settings().StabilityThreshold)

	w = env.do(t, http.MethodPut, "/api/v1/settings/pipeline", `{"frame_skip": 0}`, bearer)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/settings/pipeline", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &s)
	assert.Equal(t, 1, s.FrameSkip)
}

func TestCheckFilter(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/filter/check",
		`{"text": "Chatto 13", "filter": {"enabled": true, "pattern_type": "district_simple"}}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var report validation.Report
	decodeData(t, w, &report)
	assert.True(t, report.Valid)
	assert.Len(t, report.Patterns, 4)

	w = env.do(t, http.MethodPost, "/api/v1/filter/check", `{"text": "Chatto 13"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &report)
	assert.False(t, report.Valid)

	w = env.do(t, http.MethodPost, "/api/v1/filter/check", `{"text": ""}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryWithoutDatabase(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/v1/history?plate=chatto", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", "", "").Code)

	w := env.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", AuthMiddleware("", zerolog.Nop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHub_PushesEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub([]string{"*"}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/events", hub.ServeWS)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	hub.Publish(plate.NewEvent(plate.EventAccepted, 12, "Chatto 13"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var e plate.Event
	require.NoError(t, json.Unmarshal(msg, &e))
	assert.Equal(t, plate.EventAccepted, e.Type)
	assert.Equal(t, "Chatto 13", e.Text)
	assert.Equal(t, int64(12), e.Frame)
}
