package ozw

import (
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
)

const testHome = 0x00c0ffee

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recorder) watch(n *Notification) {
	r.mu.Lock()
	r.notes = append(r.notes, *n)
	r.mu.Unlock()
}

func (r *recorder) take() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notes
	r.notes = nil
	return out
}

func kinds(ns []Notification) []NotificationType {
	out := make([]NotificationType, len(ns))
	for i, n := range ns {
		out[i] = n.Type
	}
	return out
}

func startSim(t *testing.T) (*Sim, *recorder) {
	t.Helper()
	sim := NewSim(testHome, newTestLogger(), DemoNetwork()...)
	t.Cleanup(func() { sim.Close() })
	rec := &recorder{}
	if err := sim.AddWatcher(rec.watch); err != nil {
		t.Fatal(err)
	}
	if err := sim.AddDriver("/dev/ttyACM0"); err != nil {
		t.Fatal(err)
	}
	sim.Flush()
	return sim, rec
}

func switchID() ValueID {
	return ValueID{HomeID: testHome, NodeID: 2, CommandClass: ClassSwitchBinary, Instance: 1, Index: 0, Genre: GenreUser, Type: ValueTypeBool}
}

func TestSimAddDriverInterview(t *testing.T) {
	_, rec := startSim(t)
	notes := rec.take()
	if len(notes) == 0 {
		t.Fatal("no notifications delivered")
	}
	if notes[0].Type != NotificationDriverReady || notes[0].HomeID != testHome {
		t.Errorf("first notification = %+v, want DriverReady for home", notes[0])
	}
	if last := notes[len(notes)-1]; last.Type != NotificationAllNodesQueried {
		t.Errorf("last notification = %s, want AllNodesQueried", last.Type)
	}

	added := map[uint8]bool{}
	values := 0
	for _, n := range notes {
		switch n.Type {
		case NotificationNodeAdded:
			added[n.NodeID] = true
		case NotificationValueAdded:
			if !added[n.NodeID] {
				t.Errorf("ValueAdded for node %d before NodeAdded", n.NodeID)
			}
			values++
		}
	}
	for _, id := range []uint8{1, 2, 3, 4, 5} {
		if !added[id] {
			t.Errorf("node %d not added", id)
		}
	}
	if values != 19 {
		t.Errorf("ValueAdded count = %d, want 19", values)
	}
}

func TestSimAddDriverTwice(t *testing.T) {
	sim, _ := startSim(t)
	if err := sim.AddDriver("/dev/ttyACM0"); !errors.Is(err, ErrDriverExists) {
		t.Errorf("err = %v, want ErrDriverExists", err)
	}
}

func TestSimRequiresDriver(t *testing.T) {
	sim := NewSim(testHome, newTestLogger(), DemoNetwork()...)
	defer sim.Close()
	if _, err := sim.NodeInfo(testHome, 2); !errors.Is(err, ErrDriverNotFound) {
		t.Errorf("err = %v, want ErrDriverNotFound", err)
	}
}

func TestSimSetValueChangedThenRefreshed(t *testing.T) {
	sim, rec := startSim(t)
	rec.take()

	if err := sim.SetValueBool(switchID(), true); err != nil {
		t.Fatal(err)
	}
	if err := sim.SetValueBool(switchID(), true); err != nil {
		t.Fatal(err)
	}
	sim.Flush()

	got := kinds(rec.take())
	want := []NotificationType{NotificationValueChanged, NotificationValueRefreshed}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notification %d = %s, want %s", i, got[i], want[i])
		}
	}
	v, err := sim.ValueAsBool(switchID())
	if err != nil || !v {
		t.Errorf("ValueAsBool = %v, %v", v, err)
	}
}

func TestSimSetValueErrors(t *testing.T) {
	sim, _ := startSim(t)
	power := ValueID{HomeID: testHome, NodeID: 2, CommandClass: ClassMeter, Instance: 1, Index: 8, Type: ValueTypeDecimal}
	mode := ValueID{HomeID: testHome, NodeID: 5, CommandClass: ClassThermostatMode, Instance: 1, Index: 0, Type: ValueTypeList}
	missing := ValueID{HomeID: testHome, NodeID: 2, CommandClass: 0x99, Instance: 1, Index: 0, Type: ValueTypeBool}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"type mismatch", sim.SetValueByte(switchID(), 1), ErrTypeMismatch},
		{"read only", sim.SetValueDecimal(power, "1.5"), ErrReadOnly},
		{"bad list item", sim.SetValueListSelection(mode, "Cool"), ErrInvalidArgument},
		{"missing value", sim.SetValueBool(missing, true), ErrValueNotFound},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, tt.err, tt.want)
		}
	}
}

func TestSimRawIsLibraryOwned(t *testing.T) {
	sim, _ := startSim(t)
	code := ValueID{HomeID: testHome, NodeID: 5, CommandClass: ClassUserCode, Instance: 1, Index: 1, Type: ValueTypeRaw}
	raw, err := sim.ValueAsRaw(code)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "1234" {
		t.Errorf("raw = %q", raw)
	}
}

func TestSimControllerHasNodeFailed(t *testing.T) {
	sim, _ := startSim(t)

	var mu sync.Mutex
	var states []ControllerState
	cb := func(s ControllerState, _ ControllerError) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	}
	if err := sim.BeginControllerCommand(testHome, CommandHasNodeFailed, cb, false, 3, 0); err != nil {
		t.Fatal(err)
	}
	sim.Flush()

	mu.Lock()
	defer mu.Unlock()
	want := []ControllerState{ControllerStateStarting, ControllerStateInProgress, ControllerStateNodeOK}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("state %d = %s, want %s", i, states[i], want[i])
		}
	}
}

func TestSimIncludeAndCancel(t *testing.T) {
	sim, rec := startSim(t)
	rec.take()

	var mu sync.Mutex
	var states []ControllerState
	cb := func(s ControllerState, _ ControllerError) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	}

	if err := sim.BeginControllerCommand(testHome, CommandAddDevice, cb, true, 0xff, 0); err != nil {
		t.Fatal(err)
	}
	if err := sim.BeginControllerCommand(testHome, CommandAddDevice, cb, true, 0xff, 0); !errors.Is(err, ErrCommandBusy) {
		t.Errorf("second begin err = %v, want ErrCommandBusy", err)
	}
	if err := sim.Include(SimNode{ID: 9, Values: []SimValue{{ID: ValueID{CommandClass: ClassSwitchBinary, Instance: 1, Type: ValueTypeBool}}}}); err != nil {
		t.Fatal(err)
	}
	if err := sim.CancelControllerCommand(testHome); !errors.Is(err, ErrNoCommand) {
		t.Errorf("cancel after completion err = %v, want ErrNoCommand", err)
	}
	sim.Flush()

	mu.Lock()
	got := append([]ControllerState(nil), states...)
	mu.Unlock()
	want := []ControllerState{ControllerStateStarting, ControllerStateWaiting, ControllerStateInProgress, ControllerStateCompleted}
	if len(got) != len(want) {
		t.Fatalf("states = %v, want %v", got, want)
	}

	notes := rec.take()
	if notes[0].Type != NotificationNodeNew || notes[0].NodeID != 9 {
		t.Errorf("first notification = %+v, want NodeNew(9)", notes[0])
	}

	if err := sim.BeginControllerCommand(testHome, CommandRemoveDevice, cb, false, 0xff, 0); err != nil {
		t.Fatal(err)
	}
	if err := sim.CancelControllerCommand(testHome); err != nil {
		t.Fatal(err)
	}
	sim.Flush()
	mu.Lock()
	if last := states[len(states)-1]; last != ControllerStateCancel {
		t.Errorf("last state = %s, want Cancel", last)
	}
	mu.Unlock()
}

func TestSimScenes(t *testing.T) {
	sim, rec := startSim(t)

	id, err := sim.CreateScene()
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.SetSceneLabel(id, "Evening"); err != nil {
		t.Fatal(err)
	}
	if err := sim.AddSceneValueBool(id, switchID(), true); err != nil {
		t.Fatal(err)
	}
	if err := sim.AddSceneValueByte(id, switchID(), 1); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("typed scene add err = %v, want ErrTypeMismatch", err)
	}
	if n := sim.NumScenes(); n != 1 {
		t.Errorf("NumScenes = %d, want 1", n)
	}
	v, err := sim.SceneValueAsBool(id, switchID())
	if err != nil || !v {
		t.Errorf("SceneValueAsBool = %v, %v", v, err)
	}

	rec.take()
	if err := sim.ActivateScene(id); err != nil {
		t.Fatal(err)
	}
	sim.Flush()
	notes := rec.take()
	if len(notes) != 1 || notes[0].Type != NotificationValueChanged {
		t.Errorf("activate notifications = %v", kinds(notes))
	}

	if err := sim.RemoveScene(id); err != nil {
		t.Fatal(err)
	}
	if sim.SceneExists(id) {
		t.Error("scene still exists after remove")
	}
}

func TestSimConfigParamUpdatesValue(t *testing.T) {
	sim, rec := startSim(t)
	rec.take()
	if err := sim.SetConfigParam(testHome, 3, 1, 20, 1); err != nil {
		t.Fatal(err)
	}
	if err := sim.SetConfigParam(testHome, 3, 1, 20, 3); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("size 3 err = %v, want ErrInvalidArgument", err)
	}
	sim.Flush()
	id := ValueID{HomeID: testHome, NodeID: 3, CommandClass: ClassConfiguration, Instance: 1, Index: 1, Type: ValueTypeByte}
	if v, _ := sim.ValueAsByte(id); v != 20 {
		t.Errorf("config value = %d, want 20", v)
	}
	if notes := rec.take(); len(notes) != 1 || notes[0].Type != NotificationValueChanged {
		t.Errorf("notifications = %v", kinds(notes))
	}
}

func TestSimStatistics(t *testing.T) {
	sim, _ := startSim(t)
	if err := sim.SetValueBool(switchID(), true); err != nil {
		t.Fatal(err)
	}
	ds, err := sim.DriverStatistics(testHome)
	if err != nil {
		t.Fatal(err)
	}
	if ds.WriteCount != 1 {
		t.Errorf("WriteCount = %d, want 1", ds.WriteCount)
	}
	ns, err := sim.NodeStatistics(testHome, 2)
	if err != nil {
		t.Fatal(err)
	}
	if ns.SentCount != 1 {
		t.Errorf("SentCount = %d, want 1", ns.SentCount)
	}
}

func TestSimNodeMetaData(t *testing.T) {
	sim, _ := startSim(t)

	name, err := sim.NodeMetaData(testHome, 4, MetaDataName)
	if err != nil {
		t.Fatal(err)
	}
	if name != "MultiSensor 6" {
		t.Errorf("name = %q", name)
	}
	if page, err := sim.NodeMetaData(testHome, 4, MetaDataProductManual); err != nil || page != "" {
		t.Errorf("missing field = %q, %v; want empty", page, err)
	}
	if _, err := sim.NodeMetaData(testHome, 4, MetaDataField(99)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad field err = %v", err)
	}
	if _, err := sim.NodeMetaData(testHome, 42, MetaDataName); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("unknown node err = %v", err)
	}
}

func TestSimNodeChangeLog(t *testing.T) {
	sim, _ := startSim(t)

	e, err := sim.NodeChangeLog(testHome, 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	if e.Revision != 2 || e.Description == "" || e.Date == "" {
		t.Errorf("entry = %+v", e)
	}
	if _, err := sim.NodeChangeLog(testHome, 4, 7); !errors.Is(err, ErrNoChangeLog) {
		t.Errorf("missing revision err = %v", err)
	}
	if _, err := sim.NodeChangeLog(testHome, 2, 1); !errors.Is(err, ErrNoChangeLog) {
		t.Errorf("node without log err = %v", err)
	}
}
