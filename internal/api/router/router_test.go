package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cashcarbc/voice-intake/internal/intake"
	"github.com/cashcarbc/voice-intake/internal/leads"
	"github.com/cashcarbc/voice-intake/internal/observability/metrics"
	"github.com/cashcarbc/voice-intake/internal/voice"
	"github.com/cashcarbc/voice-intake/pkg/logging"
)

const testAdminSecret = "admin-secret"

func newTestRouter(t *testing.T, checks map[string]HealthCheck) (http.Handler, *leads.InMemoryRepository) {
	t.Helper()

	logger := logging.Discard()
	reg := prometheus.NewRegistry()
	m := metrics.NewIntakeMetrics(reg)
	repo := leads.NewInMemoryRepository()
	engine := intake.NewEngine(intake.EngineConfig{
		Store:   intake.NewMemoryStore(0, 0),
		Sink:    repo,
		Metrics: m,
		Logger:  logger,
	})

	cfg := &Config{
		Logger:          logger,
		VoiceHandler:    voice.NewHandler(voice.HandlerConfig{Engine: engine, Metrics: m, Logger: logger}),
		LeadsHandler:    leads.NewHandler(repo, logger),
		MetricsHandler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		HealthChecks:    checks,
		AdminAuthSecret: testAdminSecret,
	}
	return New(cfg), repo
}

func TestRouterHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, map[string]HealthCheck{
		"redis": func(ctx context.Context) error { return nil },
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" || resp["redis"] != "ok" {
		t.Errorf("unexpected health response %v", resp)
	}
}

func TestRouterHealthDegraded(t *testing.T) {
	router, _ := newTestRouter(t, map[string]HealthCheck{
		"postgres": func(ctx context.Context) error { return errors.New("connection refused") },
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}

func postTwilio(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func adminGet(router http.Handler, path, secret string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if secret != "" {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "ops",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		})
		signed, _ := token.SignedString([]byte(secret))
		req.Header.Set("Authorization", "Bearer "+signed)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRouterCallFlowToAdminLeads(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rr := postTwilio(router, "/twilio/voice", url.Values{"CallSid": {"CA77"}, "From": {"+16045550101"}})
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Does the car drive?") {
		t.Fatalf("unexpected voice response %d: %s", rr.Code, rr.Body.String())
	}

	steps := []url.Values{
		{"Digits": {"2"}},
		{"Digits": {"1997"}},
		{"SpeechResult": {"Toyota"}},
		{"Digits": {"200#"}},
	}
	for _, form := range steps {
		form.Set("CallSid", "CA77")
		rr = postTwilio(router, "/twilio/collect", form)
		if rr.Code != http.StatusOK {
			t.Fatalf("unexpected collect status %d", rr.Code)
		}
	}
	if !strings.Contains(rr.Body.String(), "<Hangup>") {
		t.Fatalf("expected call to end, got %s", rr.Body.String())
	}

	rr = adminGet(router, "/admin/leads/CA77", testAdminSecret)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected lead, got %d", rr.Code)
	}
	var rec leads.Record
	if err := json.NewDecoder(rr.Body).Decode(&rec); err != nil {
		t.Fatalf("decode lead: %v", err)
	}
	if rec.AutoOfferStatus != "ACCEPTED_BELOW_300" || rec.PriceGiven != "$200" {
		t.Errorf("unexpected lead %+v", rec)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), "cashcar_intake_dispositions_total") {
		t.Errorf("expected intake metrics to be exported")
	}
}

func TestRouterAdminRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	if rr := adminGet(router, "/admin/leads", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if rr := adminGet(router, "/admin/leads", "wrong-secret"); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if rr := adminGet(router, "/admin/leads", testAdminSecret); rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}
