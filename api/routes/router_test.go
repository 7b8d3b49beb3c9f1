package routes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"weddingrsvp/internal/events"
	"weddingrsvp/internal/rsvp"
	"weddingrsvp/internal/shared/config"
	"weddingrsvp/pkg/logger"
	"weddingrsvp/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct{ calls int }

func (s *stubService) Submit(context.Context, *rsvp.SubmitRSVPRequest) rsvp.Result {
	s.calls++
	return rsvp.Result{Status: rsvp.StatusStored, HTTPStatus: http.StatusOK, Success: true, Message: "ok"}
}

type stubHealth struct{ err error }

func (h stubHealth) Ping(context.Context) error { return h.err }

func newEngine(t *testing.T, deps Dependencies) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := events.LoadRepository("")
	require.NoError(t, err)
	deps.Events = repo
	deps.Logger = logger.NewDiscard()

	cfg := &config.Config{APIPrefix: "/api", APIVersion: "v1", GinMode: gin.TestMode}
	engine := gin.New()
	NewRouter(cfg, deps).SetupRoutes(engine)
	return engine
}

func post(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"fullName":"Asha Rao","eventSlug":"haldi","willAttend":"yes"}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestRSVPRoutes_VersionedAndLegacy(t *testing.T) {
	svc := &stubService{}
	engine := newEngine(t, Dependencies{RSVP: svc})

	assert.Equal(t, http.StatusOK, post(engine, "/api/v1/rsvp").Code)
	assert.Equal(t, http.StatusOK, post(engine, "/api/rsvp").Code)
	assert.Equal(t, 2, svc.calls)
}

func TestEventRoutes(t *testing.T) {
	engine := newEngine(t, Dependencies{RSVP: &stubService{}})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/events/haldi", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"haldi"`)
}

func TestHealth(t *testing.T) {
	engine := newEngine(t, Dependencies{RSVP: &stubService{}, Health: stubHealth{}})
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	engine = newEngine(t, Dependencies{RSVP: &stubService{}, Health: stubHealth{err: errors.New("redis down")}})
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis down")
}

func TestRateLimitAppliesToRSVP(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(&ratelimit.Config{
		Enabled:         true,
		WindowDuration:  time.Minute,
		DefaultRequests: 100,
		PublicRequests:  100,
		RSVPRequests:    1,
		HealthRequests:  100,
	})
	defer limiter.Close()

	svc := &stubService{}
	engine := newEngine(t, Dependencies{RSVP: svc, Limiter: limiter})

	assert.Equal(t, http.StatusOK, post(engine, "/api/v1/rsvp").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(engine, "/api/v1/rsvp").Code)
	assert.Equal(t, 1, svc.calls)
}
