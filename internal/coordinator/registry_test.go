package coordinator

import (
	"sync"
	"testing"

	"zwave-go-home/internal/ozw"
)

func testValue(node, class, instance, index uint8, typ ozw.ValueType) ozw.ValueID {
	return ozw.ValueID{HomeID: 12345, NodeID: node, CommandClass: class, Instance: instance, Index: index, Genre: ozw.GenreUser, Type: typ}
}

func TestRegistryAddLookupValue(t *testing.T) {
	r := NewRegistry()
	r.AddNode(12345, 5)

	v := testValue(5, 0x25, 1, 0, ozw.ValueTypeBool)
	if !r.AddValue(5, v) {
		t.Fatal("AddValue on known node returned false")
	}
	got, ok := r.LookupValue(5, 0x25, 1, 0)
	if !ok || got != v {
		t.Fatalf("lookup = %v, %v", got, ok)
	}

	// Same tuple replaces in place.
	v2 := v
	v2.Genre = ozw.GenreSystem
	r.AddValue(5, v2)
	n, _ := r.LookupNode(5)
	if len(n.Values) != 1 {
		t.Fatalf("values = %d, want 1 after re-add", len(n.Values))
	}
	if got, _ := r.LookupValue(5, 0x25, 1, 0); got.Genre != ozw.GenreSystem {
		t.Errorf("genre = %v, want replaced value", got.Genre)
	}

	if r.AddValue(9, v) {
		t.Error("AddValue on unknown node returned true")
	}
}

func TestRegistryRemoveValue(t *testing.T) {
	r := NewRegistry()
	r.AddNode(12345, 5)
	a := testValue(5, 0x25, 1, 0, ozw.ValueTypeBool)
	b := testValue(5, 0x32, 1, 8, ozw.ValueTypeDecimal)
	r.AddValue(5, a)
	r.AddValue(5, b)

	if !r.RemoveValue(5, a) {
		t.Fatal("RemoveValue returned false")
	}
	if _, ok := r.LookupValue(5, 0x25, 1, 0); ok {
		t.Error("removed value still found")
	}
	if _, ok := r.LookupValue(5, 0x32, 1, 8); !ok {
		t.Error("other value lost")
	}
	if r.RemoveValue(5, a) {
		t.Error("removing a missing value returned true")
	}
	if r.RemoveValue(7, a) {
		t.Error("removing from an unknown node returned true")
	}
}

func TestRegistryNodes(t *testing.T) {
	r := NewRegistry()
	r.AddNode(1, 4)
	r.AddNode(1, 2)
	r.AddValue(2, testValue(2, 0x25, 1, 0, ozw.ValueTypeBool))
	r.AddNode(1, 2) // re-add keeps values

	nodes := r.Nodes()
	if len(nodes) != 2 || nodes[0].NodeID != 2 || nodes[1].NodeID != 4 {
		t.Fatalf("nodes = %+v", nodes)
	}
	if len(nodes[0].Values) != 1 {
		t.Errorf("node 2 values = %d, want 1", len(nodes[0].Values))
	}

	// Snapshots are copies.
	nodes[0].Values[0].Index = 99
	if _, ok := r.LookupValue(2, 0x25, 1, 0); !ok {
		t.Error("mutating snapshot changed registry")
	}

	if !r.SetPolled(4, true) {
		t.Fatal("SetPolled returned false")
	}
	if n, _ := r.LookupNode(4); !n.Polled {
		t.Error("polled flag not set")
	}
	if r.SetPolled(8, true) {
		t.Error("SetPolled on unknown node returned true")
	}

	if !r.RemoveNode(2) || r.RemoveNode(2) {
		t.Error("RemoveNode results wrong")
	}
	r.Clear()
	if r.NodeCount() != 0 {
		t.Errorf("count after clear = %d", r.NodeCount())
	}
}

func TestRegistryValuesByClass(t *testing.T) {
	r := NewRegistry()
	r.AddNode(1, 3)
	r.AddValue(3, testValue(3, 0x70, 1, 1, ozw.ValueTypeByte))
	r.AddValue(3, testValue(3, 0x26, 1, 0, ozw.ValueTypeByte))
	r.AddValue(3, testValue(3, 0x70, 1, 10, ozw.ValueTypeShort))

	if got := r.ValuesByClass(3, 0x70); len(got) != 2 {
		t.Errorf("config values = %d, want 2", len(got))
	}
	if got := r.ValuesByClass(3, 0x80); got != nil {
		t.Errorf("battery values = %v, want none", got)
	}
}

func TestRegistryScenes(t *testing.T) {
	r := NewRegistry()
	r.AddScene(SceneEntry{SceneID: 1, Label: "Morning"})
	r.AddScene(SceneEntry{SceneID: 2, Label: "Night"})

	v := testValue(2, 0x25, 1, 0, ozw.ValueTypeBool)
	if !r.AddSceneValue(1, v) || !r.AddSceneValue(1, v) {
		t.Fatal("AddSceneValue failed")
	}
	s, ok := r.LookupScene(1)
	if !ok || len(s.Values) != 1 {
		t.Fatalf("scene 1 = %+v, %v", s, ok)
	}
	if !r.RemoveSceneValue(1, v) || r.RemoveSceneValue(1, v) {
		t.Error("RemoveSceneValue results wrong")
	}
	if r.AddSceneValue(9, v) {
		t.Error("AddSceneValue on unknown scene returned true")
	}
	r.SetSceneLabel(2, "Late")
	if s, _ := r.LookupScene(2); s.Label != "Late" {
		t.Errorf("label = %q", s.Label)
	}
	if !r.RemoveScene(1) {
		t.Fatal("RemoveScene returned false")
	}
	if got := r.Scenes(); len(got) != 1 || got[0].SceneID != 2 {
		t.Errorf("scenes = %+v", got)
	}
}

func TestRegistrySyncScenes(t *testing.T) {
	r := NewRegistry()
	loads := 0
	lib := []SceneEntry{{SceneID: 1, Label: "a"}, {SceneID: 2, Label: "b"}}
	load := func() []SceneEntry {
		loads++
		return lib
	}

	if !r.SyncScenes(2, load) {
		t.Fatal("first sync did not rebuild")
	}
	if r.SyncScenes(2, load) {
		t.Error("equal count rebuilt")
	}

	// A scene changed under an unchanged count goes unnoticed.
	lib = []SceneEntry{{SceneID: 1, Label: "a"}, {SceneID: 3, Label: "c"}}
	r.SyncScenes(2, load)
	if _, ok := r.LookupScene(3); ok {
		t.Error("unchanged count picked up new scene")
	}

	lib = append(lib, SceneEntry{SceneID: 4, Label: "d"})
	if !r.SyncScenes(3, load) {
		t.Fatal("count change did not rebuild")
	}
	if got := r.Scenes(); len(got) != 3 {
		t.Fatalf("scenes = %d, want 3", len(got))
	}
	if _, ok := r.LookupScene(2); ok {
		t.Error("stale scene survived rebuild")
	}
	if loads != 2 {
		t.Errorf("loads = %d, want 2", loads)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for n := 1; n <= 20; n++ {
		wg.Add(1)
		go func(n uint8) {
			defer wg.Done()
			r.AddNode(1, n)
			for i := uint8(0); i < 10; i++ {
				r.AddValue(n, testValue(n, 0x70, 1, i, ozw.ValueTypeByte))
				r.LookupValue(n, 0x70, 1, i)
				r.Nodes()
			}
		}(uint8(n))
		wg.Add(1)
		go func(id uint8) {
			defer wg.Done()
			r.AddScene(SceneEntry{SceneID: id})
			r.Scenes()
		}(uint8(n))
	}
	wg.Wait()

	if r.NodeCount() != 20 {
		t.Errorf("nodes = %d, want 20", r.NodeCount())
	}
	for _, n := range r.Nodes() {
		if len(n.Values) != 10 {
			t.Errorf("node %d values = %d, want 10", n.NodeID, len(n.Values))
		}
	}
	if len(r.Scenes()) != 20 {
		t.Errorf("scenes = %d, want 20", len(r.Scenes()))
	}
}
