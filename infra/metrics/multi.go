package metrics

import coremetrics "github.com/platotv/plato/core/metrics"

// MultiSink fans generation events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordGeneration forwards the event to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordGeneration(ev coremetrics.GenerationEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordGeneration(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordEstimate forwards ETA reads to sinks that track them.
func (m *MultiSink) RecordEstimate(ev coremetrics.EstimateEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.EstimateRecorder); ok {
			if err := rec.RecordEstimate(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
