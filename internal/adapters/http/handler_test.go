package http_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	httpadapter "github.com/uzochukwueddie/spin-the-match/internal/adapters/http"
	"github.com/uzochukwueddie/spin-the-match/internal/adapters/presets"
	"github.com/uzochukwueddie/spin-the-match/internal/app"
	"github.com/uzochukwueddie/spin-the-match/internal/ports"
)

type fixedRNG struct{ v float64 }

func (r fixedRNG) Float64() float64 { return r.v }

type manualAnimator struct {
	reqs  []ports.AnimationRequest
	dones []func()
}

func (a *manualAnimator) Animate(req ports.AnimationRequest, done func()) {
	a.reqs = append(a.reqs, req)
	a.dones = append(a.dones, done)
}

type manualScheduler struct{ funcs []func() }

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) {
	s.funcs = append(s.funcs, f)
}

type server struct {
	e     *echo.Echo
	anim  *manualAnimator
	sched *manualScheduler
}

func newServer(t *testing.T) *server {
	t.Helper()
	return newServerWith(t, app.Options{MaxWheels: 2})
}

func newServerWith(t *testing.T, opts app.Options) *server {
	t.Helper()
	anim := &manualAnimator{}
	sched := &manualScheduler{}
	n := 0
	opts.NewID = func() string {
		n++
		return "w" + strconv.Itoa(n)
	}
	svc := app.NewWheelService(app.Deps{
		Presets:   presets.NewEmbeddedStore(),
		Animator:  anim,
		Scheduler: sched,
		RNG:       fixedRNG{v: 0},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, opts)

	e := echo.New()
	e.Use(httpadapter.RequestIDMiddleware())
	httpadapter.NewHandler(svc, nil).Register(e)
	return &server{e: e, anim: anim, sched: sched}
}

func (s *server) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, httpadapter.WheelResponse) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var resp httpadapter.WheelResponse
	if rec.Code < 300 && rec.Body.Len() > 0 && strings.HasPrefix(rec.Body.String(), "{") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return rec, resp
}

func TestHandler_Healthz(t *testing.T) {
	s := newServer(t)
	rec, _ := s.do(t, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("unexpected healthz response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestHandler_ListPresets(t *testing.T) {
	s := newServer(t)
	rec, _ := s.do(t, http.MethodGet, "/v1/presets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var ps []httpadapter.PresetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &ps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	found := false
	for _, p := range ps {
		if p.ID == "teams" && p.EntityA.Name == "Team 1" {
			found = true
		}
	}
	if !found {
		t.Errorf("teams preset missing from %+v", ps)
	}
}

func TestHandler_SpinLifecycle(t *testing.T) {
	s := newServer(t)

	rec, w := s.do(t, http.MethodPost, "/v1/wheels", `{"preset":"teams"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	if w.ID != "w1" || w.Phase != "idle" || w.CanSpin {
		t.Fatalf("unexpected new wheel: %+v", w)
	}
	if w.Geometry.Size != 640 || len(w.Segments) != 3 || w.Segments[1].Label != "DRAW" {
		t.Errorf("unexpected default layout: %+v", w)
	}
	if rec.Header().Get("X-Request-Id") == "" || w.Meta.RequestID == "" {
		t.Error("expected a request id")
	}

	// Placeholder names make spin a no-op.
	rec, w = s.do(t, http.MethodPost, "/v1/wheels/w1/spin", "")
	if rec.Code != http.StatusOK || w.Accepted || w.Phase != "idle" {
		t.Fatalf("spin with placeholders: %d %+v", rec.Code, w)
	}

	s.do(t, http.MethodPatch, "/v1/wheels/w1/entities/a", `{"name":"Lions"}`)
	_, w = s.do(t, http.MethodPatch, "/v1/wheels/w1/entities/b", `{"name":"Tigers","color":"#123456"}`)
	if !w.CanSpin || w.EntityB.Color != "#123456" || w.Segments[2].Label != "Tigers" {
		t.Fatalf("unexpected wheel after rename: %+v", w)
	}

	_, w = s.do(t, http.MethodPost, "/v1/wheels/w1/spin", "")
	if !w.Accepted || w.Phase != "spinning" || w.Spin == nil {
		t.Fatalf("spin not accepted: %+v", w)
	}
	if w.Spin.TargetDeg != 6*360 || w.Spin.DurationMS != 5000 {
		t.Errorf("unexpected spin: %+v", w.Spin)
	}

	_, w = s.do(t, http.MethodPost, "/v1/wheels/w1/spin", "")
	if w.Accepted || w.Phase != "spinning" {
		t.Errorf("second spin should be ignored: %+v", w)
	}

	s.anim.dones[0]()
	_, w = s.do(t, http.MethodGet, "/v1/wheels/w1", "")
	if w.Phase != "resolved" || w.Outcome != nil {
		t.Errorf("resolved wheel must hide the outcome: %+v", w)
	}

	s.sched.funcs[0]()
	_, w = s.do(t, http.MethodGet, "/v1/wheels/w1", "")
	if !w.Revealed || w.Outcome == nil || w.Outcome.Segment.Label != "Lions" {
		t.Fatalf("expected Lions revealed: %+v", w)
	}
	if w.RotationDeg != 6*360 {
		t.Errorf("expected rotation %d, got %v", 6*360, w.RotationDeg)
	}

	_, w = s.do(t, http.MethodPost, "/v1/wheels/w1/dismiss", "")
	if !w.Accepted || w.Phase != "idle" || w.Outcome != nil {
		t.Errorf("dismiss: %+v", w)
	}

	_, w = s.do(t, http.MethodPost, "/v1/wheels/w1/dismiss", "")
	if w.Accepted {
		t.Errorf("second dismiss should be ignored: %+v", w)
	}
}

func TestHandler_SpinReportsConfiguredDuration(t *testing.T) {
	s := newServerWith(t, app.Options{SpinDuration: 1500 * time.Millisecond})
	s.do(t, http.MethodPost, "/v1/wheels", "")
	s.do(t, http.MethodPatch, "/v1/wheels/w1/entities/a", `{"name":"Lions"}`)
	s.do(t, http.MethodPatch, "/v1/wheels/w1/entities/b", `{"name":"Tigers"}`)

	_, w := s.do(t, http.MethodPost, "/v1/wheels/w1/spin", "")
	if !w.Accepted || w.Spin == nil {
		t.Fatalf("spin not accepted: %+v", w)
	}
	if w.Spin.DurationMS != 1500 {
		t.Errorf("expected duration_ms 1500, got %d", w.Spin.DurationMS)
	}
	if w.Spin.DurationMS != s.anim.reqs[0].DurationMS {
		t.Errorf("response duration %d differs from animation %d", w.Spin.DurationMS, s.anim.reqs[0].DurationMS)
	}
	if w.Revision != 3 {
		t.Errorf("expected revision 3, got %d", w.Revision)
	}
}

func TestHandler_Resize(t *testing.T) {
	s := newServer(t)
	s.do(t, http.MethodPost, "/v1/wheels", "")

	_, w := s.do(t, http.MethodPut, "/v1/wheels/w1/container", `{"width":400}`)
	if !w.Accepted || w.Geometry.Size != 392 || w.Geometry.ContainerWidth != 400 {
		t.Fatalf("resize 400: %+v", w.Geometry)
	}
	if len(w.Geometry.Labels) != 3 {
		t.Errorf("expected 3 label placements, got %d", len(w.Geometry.Labels))
	}

	_, w = s.do(t, http.MethodPut, "/v1/wheels/w1/container", `{"width":0}`)
	if w.Accepted || w.Geometry.Size != 392 {
		t.Errorf("zero width should be ignored: %+v", w.Geometry)
	}
}

func TestHandler_Errors(t *testing.T) {
	s := newServer(t)
	s.do(t, http.MethodPost, "/v1/wheels", "")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown wheel", http.MethodGet, "/v1/wheels/nope", "", http.StatusNotFound},
		{"unknown wheel spin", http.MethodPost, "/v1/wheels/nope/spin", "", http.StatusNotFound},
		{"unknown preset", http.MethodPost, "/v1/wheels", `{"preset":"nope"}`, http.StatusNotFound},
		{"invalid side", http.MethodPatch, "/v1/wheels/w1/entities/c", `{"name":"x"}`, http.StatusBadRequest},
		{"empty update", http.MethodPatch, "/v1/wheels/w1/entities/a", `{}`, http.StatusBadRequest},
		{"long name", http.MethodPatch, "/v1/wheels/w1/entities/a", `{"name":"` + strings.Repeat("x", 65) + `"}`, http.StatusBadRequest},
		{"bad json", http.MethodPut, "/v1/wheels/w1/container", `{"width":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := s.do(t, tt.method, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body)
			}
		})
	}
}

func TestHandler_TooManyWheels(t *testing.T) {
	s := newServer(t)
	s.do(t, http.MethodPost, "/v1/wheels", "")
	s.do(t, http.MethodPost, "/v1/wheels", "")

	rec, _ := s.do(t, http.MethodPost, "/v1/wheels", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}

	rec, _ = s.do(t, http.MethodDelete, "/v1/wheels/w1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	rec, _ = s.do(t, http.MethodPost, "/v1/wheels", "")
	if rec.Code != http.StatusCreated {
		t.Errorf("create after delete: expected 201, got %d", rec.Code)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	e := echo.New()
	e.Use(httpadapter.CORSMiddleware([]string{"https://example.com"}))
	e.POST("/v1/wheels", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodOptions, "/v1/wheels", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("expected allowed origin header, got %q", got)
	}
}

func TestLoggingMiddleware_LevelByStatus(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e := echo.New()
	e.Use(httpadapter.RequestIDMiddleware())
	e.Use(httpadapter.LoggingMiddleware(logger))
	e.GET("/v1/wheels/:id", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, httpadapter.ErrorResponse{Error: "wheel not found"})
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/wheels/abc", nil))

	var entry map[string]any
	if err := json.Unmarshal([]byte(buf.String()), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["level"] != "WARN" || entry["wheel_id"] != "abc" || entry["status"] != float64(404) {
		t.Errorf("unexpected log entry %v", entry)
	}
	if entry["request_id"] == "" || entry["request_id"] == nil {
		t.Error("expected request_id in log entry")
	}
}
