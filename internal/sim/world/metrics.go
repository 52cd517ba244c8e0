package world

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers
// and tests.
type WorldMetrics struct {
	Tick uint64 `json:"tick"`

	Robots      int `json:"robots"`
	Observers   int `json:"observers"`
	Stacks      int `json:"stacks"`
	Jobs        int `json:"jobs"`
	JobsPending int `json:"jobs_pending"`
	Hostiles    int `json:"hostiles"`

	QueueDepths QueueDepths `json:"queue_depths"`

	StepMS float64 `json:"step_ms"`
}

type QueueDepths struct {
	Inbox        int `json:"inbox"`
	ObserverJoin int `json:"observer_join"`
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}
