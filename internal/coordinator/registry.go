package coordinator

import (
	"sort"
	"sync"

	"zwave-go-home/internal/ozw"
)

// NodeEntry is the cached view of one node.
type NodeEntry struct {
	HomeID uint32
	NodeID uint8
	Polled bool
	Values []ozw.ValueID
}

func (n *NodeEntry) clone() NodeEntry {
	cp := *n
	cp.Values = append([]ozw.ValueID(nil), n.Values...)
	return cp
}

func (n *NodeEntry) find(k ozw.ValueKey) int {
	for i, v := range n.Values {
		if v.Key() == k {
			return i
		}
	}
	return -1
}

// SceneEntry is the cached view of one scene.
type SceneEntry struct {
	SceneID uint8
	Label   string
	Values  []ozw.ValueID
}

func (s *SceneEntry) clone() SceneEntry {
	cp := *s
	cp.Values = append([]ozw.ValueID(nil), s.Values...)
	return cp
}

// Registry caches the nodes, values and scenes reported by the library.
// Nodes and scenes have separate locks; no method holds both, and none
// calls into the library.
type Registry struct {
	nodesMu sync.RWMutex
	nodes   map[uint8]*NodeEntry

	scenesMu sync.RWMutex
	scenes   []*SceneEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[uint8]*NodeEntry)}
}

// AddNode creates the entry for nodeID. An existing entry keeps its values.
func (r *Registry) AddNode(homeID uint32, nodeID uint8) {
	r.nodesMu.Lock()
	defer r.nodesMu.Unlock()
	if n, ok := r.nodes[nodeID]; ok {
		n.HomeID = homeID
		return
	}
	r.nodes[nodeID] = &NodeEntry{HomeID: homeID, NodeID: nodeID}
}

// RemoveNode drops nodeID and all of its values.
func (r *Registry) RemoveNode(nodeID uint8) bool {
	r.nodesMu.Lock()
	defer r.nodesMu.Unlock()
	if _, ok := r.nodes[nodeID]; !ok {
		return false
	}
	delete(r.nodes, nodeID)
	return true
}

// LookupNode returns a copy of the entry for nodeID.
func (r *Registry) LookupNode(nodeID uint8) (NodeEntry, bool) {
	r.nodesMu.RLock()
	defer r.nodesMu.RUnlock()
	n, ok := r.nodes[nodeID]
	if !ok {
		return NodeEntry{}, false
	}
	return n.clone(), true
}

// AddValue records v on nodeID, replacing any value with the same
// node/class/instance/index. Returns false if the node is unknown.
func (r *Registry) AddValue(nodeID uint8, v ozw.ValueID) bool {
	r.nodesMu.Lock()
	defer r.nodesMu.Unlock()
	n, ok := r.nodes[nodeID]
	if !ok {
		return false
	}
	if i := n.find(v.Key()); i >= 0 {
		n.Values[i] = v
		return true
	}
	n.Values = append(n.Values, v)
	return true
}

// RemoveValue drops the value matching v's tuple. Returns false when the
// node or value is unknown.
func (r *Registry) RemoveValue(nodeID uint8, v ozw.ValueID) bool {
	r.nodesMu.Lock()
	defer r.nodesMu.Unlock()
	n, ok := r.nodes[nodeID]
	if !ok {
		return false
	}
	i := n.find(v.Key())
	if i < 0 {
		return false
	}
	n.Values = append(n.Values[:i], n.Values[i+1:]...)
	return true
}

// LookupValue finds a value by its tuple.
func (r *Registry) LookupValue(nodeID, classID, instance, index uint8) (ozw.ValueID, bool) {
	r.nodesMu.RLock()
	defer r.nodesMu.RUnlock()
	n, ok := r.nodes[nodeID]
	if !ok {
		return ozw.ValueID{}, false
	}
	i := n.find(ozw.ValueKey{NodeID: nodeID, CommandClass: classID, Instance: instance, Index: index})
	if i < 0 {
		return ozw.ValueID{}, false
	}
	return n.Values[i], true
}

// ValuesByClass returns every value of nodeID in the given command class.
func (r *Registry) ValuesByClass(nodeID, classID uint8) []ozw.ValueID {
	r.nodesMu.RLock()
	defer r.nodesMu.RUnlock()
	n, ok := r.nodes[nodeID]
	if !ok {
		return nil
	}
	var out []ozw.ValueID
	for _, v := range n.Values {
		if v.CommandClass == classID {
			out = append(out, v)
		}
	}
	return out
}

// SetPolled updates the polling flag of nodeID.
func (r *Registry) SetPolled(nodeID uint8, polled bool) bool {
	r.nodesMu.Lock()
	defer r.nodesMu.Unlock()
	n, ok := r.nodes[nodeID]
	if !ok {
		return false
	}
	n.Polled = polled
	return true
}

// Nodes returns copies of all entries ordered by node id.
func (r *Registry) Nodes() []NodeEntry {
	r.nodesMu.RLock()
	out := make([]NodeEntry, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, n.clone())
	}
	r.nodesMu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}

// NodeCount returns the number of cached nodes.
func (r *Registry) NodeCount() int {
	r.nodesMu.RLock()
	defer r.nodesMu.RUnlock()
	return len(r.nodes)
}

// Clear drops every node and scene.
func (r *Registry) Clear() {
	r.nodesMu.Lock()
	r.nodes = make(map[uint8]*NodeEntry)
	r.nodesMu.Unlock()

	r.scenesMu.Lock()
	r.scenes = nil
	r.scenesMu.Unlock()
}

// --- Scenes ---

func (r *Registry) sceneLocked(sceneID uint8) (*SceneEntry, int) {
	for i, s := range r.scenes {
		if s.SceneID == sceneID {
			return s, i
		}
	}
	return nil, -1
}

// AddScene caches a scene. An existing entry with the same id is replaced.
func (r *Registry) AddScene(s SceneEntry) {
	r.scenesMu.Lock()
	defer r.scenesMu.Unlock()
	cp := s.clone()
	if _, i := r.sceneLocked(s.SceneID); i >= 0 {
		r.scenes[i] = &cp
		return
	}
	r.scenes = append(r.scenes, &cp)
}

// RemoveScene drops the scene.
func (r *Registry) RemoveScene(sceneID uint8) bool {
	r.scenesMu.Lock()
	defer r.scenesMu.Unlock()
	_, i := r.sceneLocked(sceneID)
	if i < 0 {
		return false
	}
	r.scenes = append(r.scenes[:i], r.scenes[i+1:]...)
	return true
}

// LookupScene returns a copy of the scene entry.
func (r *Registry) LookupScene(sceneID uint8) (SceneEntry, bool) {
	r.scenesMu.RLock()
	defer r.scenesMu.RUnlock()
	s, _ := r.sceneLocked(sceneID)
	if s == nil {
		return SceneEntry{}, false
	}
	return s.clone(), true
}

// AddSceneValue records v in the scene, replacing a value with the same tuple.
func (r *Registry) AddSceneValue(sceneID uint8, v ozw.ValueID) bool {
	r.scenesMu.Lock()
	defer r.scenesMu.Unlock()
	s, _ := r.sceneLocked(sceneID)
	if s == nil {
		return false
	}
	for i, cur := range s.Values {
		if cur.Key() == v.Key() {
			s.Values[i] = v
			return true
		}
	}
	s.Values = append(s.Values, v)
	return true
}

// RemoveSceneValue drops the value matching v's tuple from the scene.
func (r *Registry) RemoveSceneValue(sceneID uint8, v ozw.ValueID) bool {
	r.scenesMu.Lock()
	defer r.scenesMu.Unlock()
	s, _ := r.sceneLocked(sceneID)
	if s == nil {
		return false
	}
	for i, cur := range s.Values {
		if cur.Key() == v.Key() {
			s.Values = append(s.Values[:i], s.Values[i+1:]...)
			return true
		}
	}
	return false
}

// SetSceneValues replaces the value list of the scene.
func (r *Registry) SetSceneValues(sceneID uint8, values []ozw.ValueID) bool {
	r.scenesMu.Lock()
	defer r.scenesMu.Unlock()
	s, _ := r.sceneLocked(sceneID)
	if s == nil {
		return false
	}
	s.Values = append([]ozw.ValueID(nil), values...)
	return true
}

// SetSceneLabel updates the cached label.
func (r *Registry) SetSceneLabel(sceneID uint8, label string) bool {
	r.scenesMu.Lock()
	defer r.scenesMu.Unlock()
	s, _ := r.sceneLocked(sceneID)
	if s == nil {
		return false
	}
	s.Label = label
	return true
}

// Scenes returns copies of all cached scenes in insertion order.
func (r *Registry) Scenes() []SceneEntry {
	r.scenesMu.RLock()
	defer r.scenesMu.RUnlock()
	out := make([]SceneEntry, len(r.scenes))
	for i, s := range r.scenes {
		out[i] = s.clone()
	}
	return out
}

// SyncScenes rebuilds the scene cache from load when count differs from the
// number of cached scenes. A changed scene under an unchanged count is not
// detected. load runs without the lock held.
func (r *Registry) SyncScenes(count int, load func() []SceneEntry) bool {
	r.scenesMu.RLock()
	cached := len(r.scenes)
	r.scenesMu.RUnlock()
	if cached == count {
		return false
	}

	fresh := load()
	scenes := make([]*SceneEntry, len(fresh))
	for i := range fresh {
		cp := fresh[i].clone()
		scenes[i] = &cp
	}

	r.scenesMu.Lock()
	r.scenes = scenes
	r.scenesMu.Unlock()
	return true
}
