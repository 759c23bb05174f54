package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := NewBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetNode(t *testing.T) {
	s := newTestStore(t)

	node := &Node{
		NodeID:         4,
		HomeID:         0xc0ffee,
		Manufacturer:   "Aeotec",
		ManufacturerID: "0x0086",
		Product:        "MultiSensor 6",
		Ready:          true,
		FirstSeen:      time.Now().Truncate(time.Millisecond),
		LastSeen:       time.Now().Truncate(time.Millisecond),
		Values:         map[string]any{"4-49-1-1": "21.50"},
	}

	if err := s.SaveNode(node); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetNode(4)
	if err != nil {
		t.Fatal(err)
	}

	if got.HomeID != node.HomeID {
		t.Errorf("home = 0x%08x, want 0x%08x", got.HomeID, node.HomeID)
	}
	if got.Product != node.Product {
		t.Errorf("product = %q, want %q", got.Product, node.Product)
	}
	if !got.Ready {
		t.Error("ready = false, want true")
	}
	if got.Values["4-49-1-1"] != "21.50" {
		t.Errorf("values = %v", got.Values)
	}
	if !got.FirstSeen.Equal(node.FirstSeen) {
		t.Errorf("first seen = %v, want %v", got.FirstSeen, node.FirstSeen)
	}
}

func TestDeleteNode(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveNode(&Node{NodeID: 2}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteNode(2); err != nil {
		t.Fatal(err)
	}

	_, err := s.GetNode(2)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListAndClearNodes(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []uint8{5, 2, 3} {
		if err := s.SaveNode(&Node{NodeID: id}); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListNodes()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("list count = %d, want 3", len(list))
	}
	for i, want := range []uint8{2, 3, 5} {
		if list[i].NodeID != want {
			t.Errorf("list[%d] = %d, want %d", i, list[i].NodeID, want)
		}
	}

	if err := s.ClearNodes(); err != nil {
		t.Fatal(err)
	}
	list, err = s.ListNodes()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("list after clear = %d", len(list))
	}
}

func TestUpdateNode(t *testing.T) {
	s := newTestStore(t)

	// Missing node is created.
	err := s.UpdateNode(7, func(n *Node) error {
		n.Name = "Porch"
		n.Values["7-37-1-0"] = true
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.GetNode(7)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Porch" || got.FirstSeen.IsZero() || got.Values["7-37-1-0"] != true {
		t.Errorf("created node = %+v", got)
	}

	// A failing update leaves the stored node untouched.
	boom := errors.New("boom")
	err = s.UpdateNode(7, func(n *Node) error {
		n.Name = "changed"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if got, _ := s.GetNode(7); got.Name != "Porch" {
		t.Errorf("name = %q after failed update", got.Name)
	}
}

func TestGetNodeNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetNode(200)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestSaveAndGetNetworkState(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetNetworkState(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty state err = %v, want ErrNotFound", err)
	}

	state := &NetworkState{
		HomeID:         0xc0ffee,
		DriverPath:     "/dev/ttyACM0",
		LibraryVersion: "sim 1.6",
		LastReady:      time.Now().Truncate(time.Millisecond),
	}

	if err := s.SaveNetworkState(state); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetNetworkState()
	if err != nil {
		t.Fatal(err)
	}

	if got.HomeID != state.HomeID {
		t.Errorf("home_id = 0x%08x, want 0x%08x", got.HomeID, state.HomeID)
	}
	if got.DriverPath != state.DriverPath {
		t.Errorf("driver_path = %q, want %q", got.DriverPath, state.DriverPath)
	}
	if !got.LastReady.Equal(state.LastReady) {
		t.Errorf("last_ready = %v, want %v", got.LastReady, state.LastReady)
	}
}
