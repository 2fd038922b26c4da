package media

import "time"

// Observer receives generation telemetry. metrics.Metrics satisfies it.
type Observer interface {
	RecordGeneration(operation, status string, duration time.Duration)
	RecordPollAttempt(state string)
	RecordPanelSubmission(panel, outcome string)
}

type nopObserver struct{}

func (nopObserver) RecordGeneration(string, string, time.Duration) {}
func (nopObserver) RecordPollAttempt(string) {}
func (nopObserver) RecordPanelSubmission(string, string) {}

func statusOf(err error) string {
	if err == nil {
		return "success"
	}
	if kind, ok := KindOf(err); ok {
		return string(kind)
	}
	return "error"
}
