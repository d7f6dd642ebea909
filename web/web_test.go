package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/iockit/component"
	"github.com/kbukum/iockit/di"
	"github.com/kbukum/iockit/logger"
	"github.com/kbukum/iockit/scope"
	"github.com/kbukum/iockit/web"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type cart struct {
	mu        sync.Mutex
	items     []string
	destroyed bool
}

func (c *cart) Destroy(context.Context) error {
	c.mu.Lock()
	c.destroyed = true
	c.mu.Unlock()
	return nil
}

func (c *cart) isDestroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

func newContainer(t *testing.T) *di.Container {
	t.Helper()
	c := di.New(di.WithLogger(logger.NewNop()))
	if err := c.Provide("cart", func() *cart { return &cart{} }, di.InScope(scope.Request)); err != nil {
		t.Fatalf("Provide cart: %v", err)
	}
	if err := c.Provide("prefs", func() *cart { return &cart{} }, di.InScope(scope.Session)); err != nil {
		t.Fatalf("Provide prefs: %v", err)
	}
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

// ---------------------------------------------------------------------------
// RequestScope
// ---------------------------------------------------------------------------

func TestRequestScope_OneInstancePerRequest(t *testing.T) {
	c := newContainer(t)
	var seen *cart
	handler := web.RequestScope()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, err := web.Resolve[*cart](r, c, "cart")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		b, _ := web.Resolve[*cart](r, c, "cart")
		if a != b {
			t.Error("expected the same cart within one request")
		}
		seen = a
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	if rr.Header().Get(web.HeaderRequestID) == "" {
		t.Error("expected a generated request id")
	}
	if seen == nil || !seen.isDestroyed() {
		t.Error("expected the cart to be destroyed when the request ended")
	}

	first := seen
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", http.NoBody))
	if seen == first {
		t.Error("expected a new cart for the next request")
	}
}

func TestRequestScope_PreservesRequestID(t *testing.T) {
	var id string
	handler := web.RequestScope()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		rec, ok := scope.RequestFrom(r.Context())
		if !ok {
			t.Fatal("expected an active request scope")
		}
		id = rec.ID
	}))

	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set(web.HeaderRequestID, "req-42")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if id != "req-42" || rr.Header().Get(web.HeaderRequestID) != "req-42" {
		t.Errorf("expected request id req-42, got %q / %q", id, rr.Header().Get(web.HeaderRequestID))
	}
}

func TestResolve_OutsideRequestScope(t *testing.T) {
	c := newContainer(t)
	req := httptest.NewRequest("GET", "/", http.NoBody)
	if _, err := web.Resolve[*cart](req, c, "cart"); err == nil {
		t.Error("expected an error without a request scope")
	}
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

func TestSession_IssuesAndReusesCookie(t *testing.T) {
	c := newContainer(t)
	var prefs []*cart
	handler := web.Session(web.SessionConfig{})(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		p, err := web.Resolve[*cart](r, c, "prefs")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		prefs = append(prefs, p)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != web.DefaultSessionCookie {
		t.Fatalf("expected a session cookie, got %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("expected an HttpOnly cookie")
	}

	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if len(rr.Result().Cookies()) != 0 {
		t.Error("expected no new cookie for a known session")
	}

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", http.NoBody))

	if prefs[0] != prefs[1] {
		t.Error("expected the same instance within one session")
	}
	if prefs[0] == prefs[2] {
		t.Error("expected a different instance for another session")
	}
	if n := c.SessionManager().Count(); n != 2 {
		t.Errorf("expected 2 sessions, got %d", n)
	}
}

func TestSessionConfig_ApplyDefaults(t *testing.T) {
	cfg := web.SessionConfig{}
	cfg.ApplyDefaults()
	if cfg.CookieName != web.DefaultSessionCookie || cfg.Path != "/" {
		t.Errorf("unexpected defaults %+v", cfg)
	}

	cfg = web.SessionConfig{CookieName: "sid", Path: "/app"}
	cfg.ApplyDefaults()
	if cfg.CookieName != "sid" || cfg.Path != "/app" {
		t.Errorf("expected explicit values to be kept, got %+v", cfg)
	}
}

// ---------------------------------------------------------------------------
// Gin
// ---------------------------------------------------------------------------

func TestGinMiddleware(t *testing.T) {
	c := newContainer(t)
	var carts []*cart

	r := gin.New()
	r.Use(web.GinRecovery(logger.NewNop()), web.GinRequestScope(), web.GinSession(web.SessionConfig{CookieName: "sid"}))
	r.GET("/cart", func(ctx *gin.Context) {
		ct, err := web.GinResolve[*cart](ctx, c, "cart")
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		carts = append(carts, ct)
		ctx.JSON(http.StatusOK, gin.H{"request_id": ctx.GetString(web.ContextKeyRequestID)})
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/cart", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body["request_id"] == "" || body["request_id"] != rr.Header().Get(web.HeaderRequestID) {
		t.Errorf("expected the request id in body and header, got %v", body)
	}
	if len(carts) != 1 || !carts[0].isDestroyed() {
		t.Error("expected the request-scoped cart to be destroyed after the request")
	}
	if ck := rr.Result().Cookies(); len(ck) != 1 || ck[0].Name != "sid" {
		t.Errorf("expected the sid cookie, got %v", ck)
	}
}

func TestGinRecovery(t *testing.T) {
	r := gin.New()
	r.Use(web.GinRecovery(logger.NewNop()))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/boom", http.NoBody))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestGinWrap(t *testing.T) {
	var found bool
	r := gin.New()
	r.Use(web.GinWrap(web.RequestScope()))
	r.GET("/", func(ctx *gin.Context) {
		_, found = scope.RequestFrom(ctx.Request.Context())
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", http.NoBody))
	if !found {
		t.Error("expected the wrapped middleware to open a request scope")
	}
}

// ---------------------------------------------------------------------------
// Recovery, Chain, RequestLogger
// ---------------------------------------------------------------------------

func TestRecovery_EndsRequestScope(t *testing.T) {
	c := newContainer(t)
	var ct *cart
	handler := web.Chain(web.RequestScope(), web.Recovery(logger.NewNop()))(
		http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			ct, _ = web.Resolve[*cart](r, c, "cart")
			panic("test panic")
		}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body["error"] != "Internal server error" {
		t.Errorf("unexpected error message: %s", body["error"])
	}
	if ct == nil || !ct.isDestroyed() {
		t.Error("expected the cart to be destroyed despite the panic")
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) web.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	handler := web.Chain(mw("first"), mw("second"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", http.NoBody))

	if got := strings.Join(order, ","); got != "first,second,handler" {
		t.Errorf("unexpected order %s", got)
	}
}

func TestRequestLogger(t *testing.T) {
	c := newContainer(t)
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "web", &buf)

	handler := web.Chain(web.RequestScope(), web.RequestLogger(log))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = web.Resolve[*cart](r, c, "cart")
			w.WriteHeader(http.StatusNotFound)
		}))

	req := httptest.NewRequest("GET", "/items", http.NoBody)
	req.Header.Set(web.HeaderRequestID, "req-7")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "warn" || entry["status"] != float64(404) {
		t.Errorf("expected a warn entry with status 404, got %v", entry)
	}
	if entry["request_id"] != "req-7" || entry["request_beans"] != "cart" {
		t.Errorf("expected request scope fields, got %v", entry)
	}

	buf.Reset()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", http.NoBody))
	if buf.Len() != 0 {
		t.Errorf("expected health checks to be skipped, got %q", buf.String())
	}
}

// ---------------------------------------------------------------------------
// SessionReaper
// ---------------------------------------------------------------------------

func TestSessionReaper(t *testing.T) {
	m := scope.NewSessionManager()
	m.Session("idle")

	reaper := web.NewSessionReaper(m, time.Millisecond)
	if h := reaper.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := reaper.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := reaper.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy while running, got %s", h.Status)
	}

	deadline := time.Now().Add(2 * time.Second)
	for m.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if m.Count() != 0 {
		t.Error("expected the idle session to be reaped")
	}

	if err := reaper.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := reaper.Stop(context.Background()); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestSessionReaper_Invalid(t *testing.T) {
	reaper := &web.SessionReaper{}
	if err := reaper.Start(context.Background()); err == nil {
		t.Error("expected Start to fail without a manager")
	}
}
