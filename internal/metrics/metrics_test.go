package metrics

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"zwave-go-home/internal/coordinator"
)

var _ coordinator.Observer = (*Metrics)(nil)

func TestObserver(t *testing.T) {
	m := New()

	m.QueueDepth(7)
	if got := testutil.ToFloat64(m.queueDepth); got != 7 {
		t.Errorf("queue depth = %v, want 7", got)
	}

	m.RecordDispatched("ValueChanged", time.Millisecond)
	m.RecordDispatched("ValueChanged", 2*time.Millisecond)
	m.RecordDispatched("ControllerCommand", time.Millisecond)

	if got := testutil.ToFloat64(m.recordsTotal.WithLabelValues("ValueChanged")); got != 2 {
		t.Errorf("ValueChanged records = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(m.dispatchDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestAttachCountsEvents(t *testing.T) {
	m := New()
	events := coordinator.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	unsub := m.Attach(events)

	events.Emit(coordinator.Event{Type: coordinator.EventNodeAdded})
	events.Emit(coordinator.Event{Type: coordinator.EventNodeAdded})
	events.Emit(coordinator.Event{Type: coordinator.EventScanComplete})
	unsub()
	events.Emit(coordinator.Event{Type: coordinator.EventNodeAdded})

	if got := testutil.ToFloat64(m.eventsTotal.WithLabelValues(coordinator.EventNodeAdded)); got != 2 {
		t.Errorf("node added = %v, want 2", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.QueueDepth(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "zwave_queue_depth 3") {
		t.Errorf("body missing queue depth:\n%s", body)
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Error("body missing runtime collectors")
	}
}
