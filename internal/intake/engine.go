package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cashcarbc/voice-intake/internal/distance"
	"github.com/cashcarbc/voice-intake/internal/leads"
	"github.com/cashcarbc/voice-intake/internal/observability/metrics"
	"github.com/cashcarbc/voice-intake/pkg/logging"
)

var engineTracer = otel.Tracer("cashcar.internal.intake.engine")

const (
	DefaultYardPostal      = "V6V 1M7"
	DefaultDistanceTimeout = 5 * time.Second
	DefaultSinkTimeout     = 10 * time.Second
)

// EngineConfig wires the engine to its collaborators. Only Store is required.
type EngineConfig struct {
	Machine *Machine
	Store   SessionStore
	// Distance is optional; without it the postal code is kept but no
	// distance is recorded.
	Distance        distance.Lookup
	YardPostal      string
	DistanceTimeout time.Duration
	Sink            leads.Sink
	SinkTimeout     time.Duration
	Metrics         *metrics.IntakeMetrics
	Logger          *logging.Logger
	Now             func() time.Time
}

// Engine runs one caller turn at a time per call: it loads the session,
// advances the machine, performs the lookups the machine asked for, then
// saves the session or, on a terminal outcome, deletes it and emits the lead.
type Engine struct {
	machine         *Machine
	store           SessionStore
	locks           *KeyedMutex
	distance        distance.Lookup
	yardPostal      string
	distanceTimeout time.Duration
	sink            leads.Sink
	sinkTimeout     time.Duration
	metrics         *metrics.IntakeMetrics
	logger          *logging.Logger
	now             func() time.Time
}

func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Store == nil {
		panic("intake: session store required")
	}
	if cfg.Machine == nil {
		cfg.Machine = NewMachine(MachineConfig{})
	}
	if cfg.YardPostal == "" {
		cfg.YardPostal = DefaultYardPostal
	}
	if cfg.DistanceTimeout <= 0 {
		cfg.DistanceTimeout = DefaultDistanceTimeout
	}
	if cfg.SinkTimeout <= 0 {
		cfg.SinkTimeout = DefaultSinkTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		machine:         cfg.Machine,
		store:           cfg.Store,
		locks:           NewKeyedMutex(),
		distance:        cfg.Distance,
		yardPostal:      cfg.YardPostal,
		distanceTimeout: cfg.DistanceTimeout,
		sink:            cfg.Sink,
		sinkTimeout:     cfg.SinkTimeout,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
		now:             cfg.Now,
	}
}

// Start begins a call. Any session already stored under the call id is
// replaced.
func (e *Engine) Start(ctx context.Context, in Input) (out Outcome) {
	ctx, span := engineTracer.Start(ctx, "intake.start")
	defer span.End()
	span.SetAttributes(attribute.String("cashcar.call_id", in.CallID))

	log := e.logger.WithCall(in.CallID)
	defer e.recoverTurn(ctx, log, in.CallID, &out)

	if in.CallID == "" {
		span.RecordError(ErrCallIDRequired)
		return e.fail(ctx, log, in.CallID, ErrCallIDRequired)
	}
	unlock := e.locks.Lock(in.CallID)
	defer unlock()

	s := NewSession(in, e.now())
	if err := e.store.Save(ctx, s); err != nil {
		span.RecordError(err)
		return e.fail(ctx, log, in.CallID, fmt.Errorf("intake: save session: %w", err))
	}
	log.Info("call started", "from", in.CallerNumber, "to", in.CalleeNumber)
	return Outcome{Turn: e.machine.Greeting()}
}

// HandleTurn applies one caller turn. It never returns an error and never
// panics: internal faults end the call with an apology.
func (e *Engine) HandleTurn(ctx context.Context, in Input) (out Outcome) {
	ctx, span := engineTracer.Start(ctx, "intake.turn")
	defer span.End()
	span.SetAttributes(attribute.String("cashcar.call_id", in.CallID))

	log := e.logger.WithCall(in.CallID)
	// Registered before the lock so the session is deleted after unlock.
	defer e.recoverTurn(ctx, log, in.CallID, &out)

	started := e.now()
	if in.CallID == "" {
		span.RecordError(ErrCallIDRequired)
		return e.fail(ctx, log, in.CallID, ErrCallIDRequired)
	}

	unlock := e.locks.Lock(in.CallID)
	defer unlock()

	s, created, err := e.store.GetOrCreate(ctx, in)
	if err != nil {
		span.RecordError(err)
		return e.fail(ctx, log, in.CallID, fmt.Errorf("intake: load session: %w", err))
	}
	if created {
		log.Info("session created mid-call")
	}
	step := s.Step
	span.SetAttributes(attribute.String("cashcar.step", string(step)))

	out, err = e.machine.Advance(s, in)
	if err != nil {
		span.RecordError(err)
		e.metrics.ObserveTurn(string(step), "error", e.since(started))
		return e.fail(ctx, log, in.CallID, err)
	}

	if out.LookupPostal != "" {
		e.applyDistance(ctx, log, s, out.LookupPostal)
	}

	if out.Terminal() {
		e.complete(ctx, log, s, out.Disposition)
		e.metrics.ObserveTurn(string(step), "terminal", e.since(started))
		return out
	}

	if err := e.store.Save(ctx, s); err != nil {
		span.RecordError(err)
		e.metrics.ObserveTurn(string(step), "error", e.since(started))
		return e.fail(ctx, log, in.CallID, fmt.Errorf("intake: save session: %w", err))
	}

	outcome := "advanced"
	if out.Reprompted {
		outcome = "reprompt"
	}
	e.metrics.ObserveTurn(string(step), outcome, e.since(started))
	return out
}

// recoverTurn turns a panic anywhere in a turn into the apology outcome.
func (e *Engine) recoverTurn(ctx context.Context, log *logging.Logger, callID string, out *Outcome) {
	r := recover()
	if r == nil {
		return
	}
	*out = e.fail(ctx, log, callID, fmt.Errorf("intake: panic: %v", r))
}

func (e *Engine) applyDistance(ctx context.Context, log *logging.Logger, s *Session, postalCode string) {
	if e.distance == nil {
		e.metrics.ObserveDistance("skipped")
		return
	}
	lookupCtx, cancel := context.WithTimeout(ctx, e.distanceTimeout)
	defer cancel()

	res := e.distance.Lookup(lookupCtx, e.yardPostal, postalCode)
	if !res.OK {
		e.metrics.ObserveDistance("error")
		log.Warn("distance lookup failed", "postal", postalCode, "error", res.Error)
		s.DistanceKm = nil
		s.PricingRuleApplied = RuleDistanceFailedPrefix + res.Error
		return
	}
	e.metrics.ObserveDistance("ok")
	km := res.Km
	s.DistanceKm = &km
	if s.PricingRuleApplied == "" {
		s.PricingRuleApplied = RulePostalDistanceUsed
	}
}

// complete removes the session and hands the lead to the sink. Sink errors
// and sink panics are logged only; the caller has already been answered.
func (e *Engine) complete(ctx context.Context, log *logging.Logger, s *Session, disposition Disposition) {
	if err := e.store.Delete(ctx, s.CallID); err != nil {
		log.Warn("failed to delete session", "error", err)
	}
	e.metrics.ObserveDisposition(string(disposition))
	log.Info("call finished",
		"disposition", disposition,
		"offer_status", s.Offer.Status,
		"rule", s.PricingRuleApplied,
	)

	if e.sink == nil {
		return
	}
	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.sinkTimeout)
	defer cancel()
	if err := e.saveLead(sinkCtx, BuildRecord(s, disposition, e.now())); err != nil {
		log.Error("failed to write lead", "error", err)
	}
}

func (e *Engine) saveLead(ctx context.Context, rec *leads.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("intake: lead sink panic: %v", r)
		}
	}()
	return e.sink.Save(ctx, rec)
}

// fail answers an internal fault: apologize, hang up, forget the call.
func (e *Engine) fail(ctx context.Context, log *logging.Logger, callID string, err error) Outcome {
	log.Error("intake turn failed", "error", err)
	if callID != "" && !errors.Is(err, ErrCallIDRequired) {
		if derr := e.store.Delete(ctx, callID); derr != nil {
			log.Warn("failed to delete session", "error", derr)
		}
	}
	e.metrics.ObserveDisposition(string(DispositionError))
	return Outcome{Turn: terminal(promptSystemError), Disposition: DispositionError}
}

func (e *Engine) since(t time.Time) float64 {
	return e.now().Sub(t).Seconds()
}
