package coordinator

import (
	"context"
	"sync"
	"testing"
	"time"

	"zwave-go-home/internal/ozw"
)

func notif(kind ozw.NotificationType, node uint8) *NotificationRecord {
	return &NotificationRecord{Kind: kind, NodeID: node}
}

func TestRecordState(t *testing.T) {
	if got := notif(ozw.NotificationNodeAdded, 1).State(); got != -1 {
		t.Errorf("notification state = %d, want -1", got)
	}
	r := &ControllerCommandRecord{Progress: ozw.ControllerStateWaiting}
	if got := r.State(); got != int(ozw.ControllerStateWaiting) {
		t.Errorf("controller state = %d, want %d", got, ozw.ControllerStateWaiting)
	}
}

func TestNewNotificationRecordCopiesKindFields(t *testing.T) {
	vid := ozw.ValueID{HomeID: 1, NodeID: 4, CommandClass: 0x31, Instance: 1, Index: 1, Type: ozw.ValueTypeDecimal}
	tests := []struct {
		n     ozw.Notification
		check func(r *NotificationRecord) bool
	}{
		{ozw.Notification{Type: ozw.NotificationValueChanged, NodeID: 4, ValueID: vid}, func(r *NotificationRecord) bool {
			return len(r.Values) == 1 && r.Values[0] == vid
		}},
		{ozw.Notification{Type: ozw.NotificationGroup, GroupIdx: 3}, func(r *NotificationRecord) bool { return r.GroupIdx == 3 }},
		{ozw.Notification{Type: ozw.NotificationNodeEvent, Event: 99}, func(r *NotificationRecord) bool { return r.Event == 99 }},
		{ozw.Notification{Type: ozw.NotificationButtonOn, ButtonID: 7}, func(r *NotificationRecord) bool { return r.ButtonID == 7 }},
		{ozw.Notification{Type: ozw.NotificationSceneEvent, SceneID: 2}, func(r *NotificationRecord) bool { return r.SceneID == 2 }},
		{ozw.Notification{Type: ozw.NotificationNotification, Code: ozw.CodeDead}, func(r *NotificationRecord) bool { return r.Code == ozw.CodeDead }},
		// Fields of other kinds are not carried.
		{ozw.Notification{Type: ozw.NotificationNodeAdded, SceneID: 2, Event: 5}, func(r *NotificationRecord) bool {
			return r.SceneID == 0 && r.Event == 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.n.Type.String(), func(t *testing.T) {
			n := tt.n
			r := newNotificationRecord(&n)
			if r.Kind != n.Type || !tt.check(r) {
				t.Errorf("record = %+v", r)
			}
		})
	}
}

func TestQueueDrainInOrder(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 10; i++ {
		q.Enqueue(notif(ozw.NotificationNodeAdded, uint8(i)))
	}
	if q.Len() != 10 {
		t.Fatalf("len = %d, want 10", q.Len())
	}

	var got []uint8
	n := q.DrainAll(func(r Record) {
		got = append(got, r.(*NotificationRecord).NodeID)
	})
	if n != 10 {
		t.Errorf("drained %d, want 10", n)
	}
	for i, id := range got {
		if id != uint8(i) {
			t.Fatalf("order = %v", got)
		}
	}
	if q.Len() != 0 {
		t.Errorf("len after drain = %d", q.Len())
	}
	if n := q.DrainAll(func(Record) { t.Error("fn called on empty queue") }); n != 0 {
		t.Errorf("empty drain = %d", n)
	}
}

func TestQueueEnqueueDuringDrain(t *testing.T) {
	q := NewQueue()
	q.Enqueue(notif(ozw.NotificationNodeAdded, 0))

	var got []uint8
	n := q.DrainAll(func(r Record) {
		id := r.(*NotificationRecord).NodeID
		got = append(got, id)
		if id < 4 {
			q.Enqueue(notif(ozw.NotificationNodeAdded, id+1))
		}
	})
	if n != 5 || len(got) != 5 {
		t.Fatalf("drained %d records %v, want 5", n, got)
	}
}

func TestQueueWakeCoalesces(t *testing.T) {
	q := NewQueue()
	q.Enqueue(notif(ozw.NotificationNodeAdded, 1))
	q.Enqueue(notif(ozw.NotificationNodeAdded, 2))

	select {
	case <-q.Wake():
	default:
		t.Fatal("no wake pending after enqueue")
	}
	select {
	case <-q.Wake():
		t.Fatal("second wake pending; wake channel should hold one signal")
	default:
	}
	if q.Len() != 2 {
		t.Errorf("len = %d, want 2", q.Len())
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	const producers, perProducer = 8, 500
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	seen := make(map[[2]int]int)
	last := make(map[int]int)
	ordered := true
	done := make(chan struct{})
	total := 0

	go func() {
		q.Run(ctx, func(r Record) {
			nr := r.(*NotificationRecord)
			p, seq := int(nr.NodeID), int(nr.Event)<<8|int(nr.ButtonID)
			mu.Lock()
			seen[[2]int{p, seq}]++
			if prev, ok := last[p]; ok && seq <= prev {
				ordered = false
			}
			last[p] = seq
			total++
			if total == producers*perProducer {
				close(done)
			}
			mu.Unlock()
		})
	}()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(&NotificationRecord{NodeID: uint8(p), Event: uint8(i >> 8), ButtonID: uint8(i)})
			}
		}(p)
	}
	wg.Wait()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		mu.Lock()
		defer mu.Unlock()
		t.Fatalf("processed %d of %d records", total, producers*perProducer)
	}

	mu.Lock()
	defer mu.Unlock()
	for k, n := range seen {
		if n != 1 {
			t.Errorf("record %v processed %d times", k, n)
		}
	}
	if len(seen) != producers*perProducer {
		t.Errorf("distinct records = %d, want %d", len(seen), producers*perProducer)
	}
	if !ordered {
		t.Error("records of one producer were reordered")
	}
}

func TestQueueRunStops(t *testing.T) {
	q := NewQueue()
	stopped := make(chan struct{})
	go func() {
		q.Run(context.Background(), func(Record) {})
		close(stopped)
	}()
	q.Close()
	q.Close()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}

	ctx, cancel := context.WithCancel(context.Background())
	q2 := NewQueue()
	stopped2 := make(chan struct{})
	go func() {
		q2.Run(ctx, func(Record) {})
		close(stopped2)
	}()
	cancel()
	select {
	case <-stopped2:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
