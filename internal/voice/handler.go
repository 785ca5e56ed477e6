package voice

import (
	"context"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cashcarbc/voice-intake/internal/intake"
	"github.com/cashcarbc/voice-intake/internal/observability/metrics"
	"github.com/cashcarbc/voice-intake/pkg/logging"
)

var voiceTracer = otel.Tracer("cashcar.internal.voice.twilio")

// CallEngine runs the intake conversation.
type CallEngine interface {
	Start(ctx context.Context, in intake.Input) intake.Outcome
	HandleTurn(ctx context.Context, in intake.Input) intake.Outcome
}

// HandlerConfig configures the Twilio voice webhooks.
type HandlerConfig struct {
	Engine   CallEngine
	Renderer *Renderer
	// AuthToken enables signature checks when set.
	AuthToken     string
	PublicBaseURL string
	Metrics       *metrics.IntakeMetrics
	Logger        *logging.Logger
}

// Handler serves POST /twilio/voice and POST /twilio/collect.
type Handler struct {
	engine        CallEngine
	renderer      *Renderer
	authToken     string
	publicBaseURL string
	metrics       *metrics.IntakeMetrics
	logger        *logging.Logger
}

func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Engine == nil {
		panic("voice: call engine required")
	}
	if cfg.Renderer == nil {
		cfg.Renderer = NewRenderer("", "", "")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Handler{
		engine:        cfg.Engine,
		renderer:      cfg.Renderer,
		authToken:     cfg.AuthToken,
		publicBaseURL: cfg.PublicBaseURL,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
	}
}

// Voice answers a new call with the greeting and the first question.
func (h *Handler) Voice(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "voice", h.engine.Start)
}

// Collect handles every later caller turn.
func (h *Handler) Collect(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "collect", h.engine.HandleTurn)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, route string, run func(context.Context, intake.Input) intake.Outcome) {
	ctx, span := voiceTracer.Start(r.Context(), "voice.twilio."+route, trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	if h.authToken != "" && !ValidateSignature(r, h.authToken, AbsoluteURL(r, h.publicBaseURL)) {
		h.logger.Warn("invalid twilio voice signature", "route", route)
		span.RecordError(errors.New("invalid twilio voice signature"))
		h.metrics.ObserveWebhook(route, "unauthorized")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	in, err := ParseCallForm(r)
	if err != nil {
		h.logger.Error("failed to parse twilio voice form", "error", err)
		span.RecordError(err)
		h.metrics.ObserveWebhook(route, "bad_request")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	span.SetAttributes(
		attribute.String("cashcar.call_id", in.CallID),
		attribute.String("cashcar.twilio.from", in.CallerNumber),
		attribute.String("cashcar.twilio.to", in.CalleeNumber),
	)

	out := run(ctx, in)
	body, err := h.renderer.Render(out.Turn)
	if err != nil {
		h.logger.Error("failed to render twiml", "error", err, "call_id", in.CallID)
		span.RecordError(err)
		h.metrics.ObserveWebhook(route, "error")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.metrics.ObserveWebhook(route, "ok")
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
