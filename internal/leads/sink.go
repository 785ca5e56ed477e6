package leads

import (
	"context"
	"errors"
	"fmt"

	"github.com/cashcarbc/voice-intake/pkg/logging"
)

// SinkObserver is told about every write attempt.
type SinkObserver interface {
	ObserveSinkResult(sink string, err error)
}

// NamedSink labels a sink for logs and metrics.
type NamedSink struct {
	Name string
	Sink Sink
}

// MultiSink writes every record to all of its sinks. One failing sink does not
// stop the others; their errors are joined.
type MultiSink struct {
	sinks    []NamedSink
	observer SinkObserver
	logger   *logging.Logger
}

func NewMultiSink(logger *logging.Logger, observer SinkObserver, sinks ...NamedSink) *MultiSink {
	if logger == nil {
		logger = logging.Default()
	}
	kept := make([]NamedSink, 0, len(sinks))
	for _, s := range sinks {
		if s.Sink != nil {
			kept = append(kept, s)
		}
	}
	return &MultiSink{sinks: kept, observer: observer, logger: logger}
}

func (m *MultiSink) Save(ctx context.Context, rec *Record) error {
	var errs []error
	for _, s := range m.sinks {
		err := s.Sink.Save(ctx, rec)
		if m.observer != nil {
			m.observer.ObserveSinkResult(s.Name, err)
		}
		if err != nil {
			m.logger.Error("lead sink write failed", "sink", s.Name, "call_id", rec.CallID, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Names lists the configured sinks in write order.
func (m *MultiSink) Names() []string {
	out := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		out[i] = s.Name
	}
	return out
}
