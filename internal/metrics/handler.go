package metrics

import (
	"context"
	"strconv"

	"github.com/phrazzld/melodysnap-api/internal/events"
)

// TaskEventHandler turns task lifecycle events into metric updates.
type TaskEventHandler struct{}

var _ events.EventHandler = TaskEventHandler{}

// HandleEvent implements events.EventHandler.
func (TaskEventHandler) HandleEvent(_ context.Context, e *events.TaskEvent) error {
	switch e.Type {
	case events.TypeTaskCreated:
		TasksCreated.Inc()
		TasksInFlight.Inc()
	case events.TypeTaskStatusChanged:
		TaskTransitions.WithLabelValues(string(e.To)).Inc()
		if e.To.IsTerminal() {
			TasksInFlight.Dec()
			TaskDurationSeconds.WithLabelValues(string(e.To)).Observe(e.Age().Seconds())
		}
	case events.TypeTaskRejected:
		TasksInFlight.Dec()
	}
	return nil
}

// RecordRender records the outcome of one share video render.
func RecordRender(outcome string, seconds float64) {
	VideoRenders.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		VideoRenderSeconds.Observe(seconds)
	}
}

// RecordRejected counts a task that never reached the pipeline.
func RecordRejected(reason string) {
	TasksRejected.WithLabelValues(reason).Inc()
}

// ObservePollAttempts records the attempt count of a finished polling cycle.
func ObservePollAttempts(attempts int) {
	PollAttempts.Observe(float64(attempts))
}

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, route string, code int, seconds float64) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	HTTPRequestSeconds.WithLabelValues(method, route).Observe(seconds)
}
