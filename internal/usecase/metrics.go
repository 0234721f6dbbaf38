package usecase

// QueueMetrics is the subset of metrics.Collector the usecases report to.
type QueueMetrics interface {
	RecordClaim(result string)
	RecordConsultation(outcome string)
	RecordRegistration()
}

type noopMetrics struct{}

func (noopMetrics) RecordClaim(string)        {}
func (noopMetrics) RecordConsultation(string) {}
func (noopMetrics) RecordRegistration()       {}

func metricsOrNoop(m QueueMetrics) QueueMetrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
