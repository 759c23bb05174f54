package coordinator

import (
	"context"
	"sync"

	"zwave-go-home/internal/ozw"
)

// Record is one unit of work handed from the library's worker goroutines to
// the single consumer.
type Record interface {
	// State is the controller state for controller-command records and -1
	// for notifications.
	State() int
	record()
}

// NotificationRecord is the owned copy of a library notification.
type NotificationRecord struct {
	Kind     ozw.NotificationType
	HomeID   uint32
	NodeID   uint8
	Values   []ozw.ValueID
	GroupIdx uint8
	Event    uint8
	ButtonID uint8
	SceneID  uint8
	Code     ozw.NotificationCode
}

func (*NotificationRecord) State() int { return -1 }
func (*NotificationRecord) record()    {}

// ControllerCommandRecord carries one progress callback of a controller command.
type ControllerCommandRecord struct {
	Progress ozw.ControllerState
	Err      ozw.ControllerError
}

func (r *ControllerCommandRecord) State() int { return int(r.Progress) }
func (*ControllerCommandRecord) record()      {}

// newNotificationRecord copies the notification fields relevant to its kind.
// The library may reuse n after the watcher returns.
func newNotificationRecord(n *ozw.Notification) *NotificationRecord {
	r := &NotificationRecord{
		Kind:   n.Type,
		HomeID: n.HomeID,
		NodeID: n.NodeID,
		Values: []ozw.ValueID{n.ValueID},
	}
	switch n.Type {
	case ozw.NotificationGroup:
		r.GroupIdx = n.GroupIdx
	case ozw.NotificationNodeEvent:
		r.Event = n.Event
	case ozw.NotificationCreateButton, ozw.NotificationDeleteButton,
		ozw.NotificationButtonOn, ozw.NotificationButtonOff:
		r.ButtonID = n.ButtonID
	case ozw.NotificationSceneEvent:
		r.SceneID = n.SceneID
	case ozw.NotificationNotification:
		r.Code = n.Code
	}
	return r
}

// Queue is an unbounded FIFO of records with a single-slot wake channel.
// Any number of goroutines may Enqueue; exactly one should drain.
type Queue struct {
	mu     sync.Mutex
	items  []Record
	wake   chan struct{}
	closed chan struct{}
	once   sync.Once
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		wake:   make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

// Enqueue appends r and signals the consumer. It never blocks on the consumer.
func (q *Queue) Enqueue(r Record) {
	q.mu.Lock()
	q.items = append(q.items, r)
	q.mu.Unlock()

	// A full channel already carries a pending wake; that drain sees r.
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Wake returns the channel signalled after each enqueue.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

// Len returns the number of queued records.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) pop() (Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	r := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return r, true
}

// DrainAll pops records one at a time and calls fn for each outside the lock,
// until the queue is empty. Records enqueued during the drain are included.
// It returns the number of records processed.
func (q *Queue) DrainAll(fn func(Record)) int {
	n := 0
	for {
		r, ok := q.pop()
		if !ok {
			return n
		}
		fn(r)
		n++
	}
}

// Run is the consumer loop. It drains on every wake until ctx is done or the
// queue is closed.
func (q *Queue) Run(ctx context.Context, fn func(Record)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closed:
			return
		case <-q.wake:
			q.DrainAll(fn)
		}
	}
}

// Close stops Run. Queued records are left in place.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.closed) })
}
