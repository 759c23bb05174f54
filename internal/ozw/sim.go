package ozw

import (
	"bytes"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

const simLibraryVersion = "sim-1.4"

// SimValue describes a value preloaded into a simulated node. HomeID and
// NodeID of ID are filled in by the simulator.
type SimValue struct {
	ID        ValueID
	Label     string
	Units     string
	Help      string
	Min       int32
	Max       int32
	ReadOnly  bool
	WriteOnly bool
	Items     []string // list choices
	Value     any      // initial payload; nil means the zero value of ID.Type
}

// SimGroup is an association group of a simulated node.
type SimGroup struct {
	Label   string
	Max     uint8
	Members []uint8
}

// SimNode describes a node known to the simulated controller.
type SimNode struct {
	ID           uint8
	Info         NodeInfo
	Capabilities NodeCapabilities
	Neighbors    []uint8
	Groups       []SimGroup
	Values       []SimValue
	MetaData     map[MetaDataField]string
	ChangeLog    []ChangeLogEntry
}

type simValue struct {
	id        ValueID
	label     string
	units     string
	help      string
	min, max  int32
	readOnly  bool
	writeOnly bool
	polled    bool
	intensity uint8
	verify    bool
	items     []string
	data      any
}

type simNode struct {
	id        uint8
	info      NodeInfo
	caps      NodeCapabilities
	neighbors []uint8
	groups    []SimGroup
	values    map[ValueKey]*simValue
	order     []ValueKey
	config    map[uint8]int32
	metadata  map[MetaDataField]string
	changeLog []ChangeLogEntry
	stats     NodeStats
	failed    bool
}

type simSceneValue struct {
	id   ValueID
	data any
}

type simScene struct {
	label  string
	values []simSceneValue
}

type simCommand struct {
	cmd    ControllerCommand
	nodeID uint8
	cb     ControllerCallback
}

// Sim is an in-memory Manager. Notifications and controller progress are
// delivered from a dedicated worker goroutine, the same way a real driver
// calls back from its own thread.
type Sim struct {
	homeID uint32
	logger *slog.Logger

	mu           sync.Mutex
	watcher      Watcher
	drivers      map[string]bool
	nodes        map[uint8]*simNode
	scenes       map[uint8]*simScene
	pollInterval time.Duration
	pollBetween  bool
	command      *simCommand
	stats        DriverStats

	work      chan func()
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewSim creates a simulated controller for homeID populated with nodes.
// The controller itself is node 1 and is added automatically when absent.
func NewSim(homeID uint32, logger *slog.Logger, nodes ...SimNode) *Sim {
	s := &Sim{
		homeID:       homeID,
		logger:       logger.With("component", "ozw_sim"),
		drivers:      make(map[string]bool),
		nodes:        make(map[uint8]*simNode),
		scenes:       make(map[uint8]*simScene),
		pollInterval: 30 * time.Second,
		work:         make(chan func(), 1024),
		done:         make(chan struct{}),
	}
	if !containsNode(nodes, 1) {
		nodes = append([]SimNode{{
			ID:           1,
			Info:         NodeInfo{Manufacturer: "Sim", ManufacturerID: "0x0000", Product: "Static Controller", ProductType: "0x0001", ProductID: "0x0001", Type: "Static PC Controller"},
			Capabilities: NodeCapabilities{Listening: true, Routing: true, MaxBaudRate: 100000, Version: 4, Basic: 2, Generic: 2, Specific: 1},
		}}, nodes...)
	}
	for _, n := range nodes {
		s.nodes[n.ID] = s.buildNode(n)
	}
	s.wg.Add(1)
	go s.worker()
	return s
}

func containsNode(nodes []SimNode, id uint8) bool {
	for _, n := range nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

func (s *Sim) buildNode(n SimNode) *simNode {
	node := &simNode{
		id:        n.ID,
		info:      n.Info,
		caps:      n.Capabilities,
		neighbors: append([]uint8(nil), n.Neighbors...),
		groups:    append([]SimGroup(nil), n.Groups...),
		values:    make(map[ValueKey]*simValue),
		config:    make(map[uint8]int32),
		metadata:  make(map[MetaDataField]string, len(n.MetaData)),
		changeLog: append([]ChangeLogEntry(nil), n.ChangeLog...),
	}
	for f, text := range n.MetaData {
		node.metadata[f] = text
	}
	for _, v := range n.Values {
		id := v.ID
		id.HomeID = s.homeID
		id.NodeID = n.ID
		data := v.Value
		if data == nil {
			data = zeroData(id.Type, v.Items)
		}
		sv := &simValue{
			id:        id,
			label:     v.Label,
			units:     v.Units,
			help:      v.Help,
			min:       v.Min,
			max:       v.Max,
			readOnly:  v.ReadOnly,
			writeOnly: v.WriteOnly,
			items:     append([]string(nil), v.Items...),
			data:      data,
		}
		if _, ok := node.values[id.Key()]; !ok {
			node.order = append(node.order, id.Key())
		}
		node.values[id.Key()] = sv
	}
	return node
}

func zeroData(t ValueType, items []string) any {
	switch t {
	case ValueTypeBool:
		return false
	case ValueTypeByte:
		return uint8(0)
	case ValueTypeDecimal:
		return "0"
	case ValueTypeInt:
		return int32(0)
	case ValueTypeShort:
		return int16(0)
	case ValueTypeString:
		return ""
	case ValueTypeBitSet:
		return uint32(0)
	case ValueTypeRaw:
		return []byte{}
	case ValueTypeList:
		if len(items) > 0 {
			return items[0]
		}
		return ""
	}
	return nil
}

func equalData(a, b any) bool {
	ab, aok := a.([]byte)
	bb, bok := b.([]byte)
	if aok || bok {
		return aok && bok && bytes.Equal(ab, bb)
	}
	return a == b
}

func (s *Sim) worker() {
	defer s.wg.Done()
	for {
		select {
		case f := <-s.work:
			f()
		case <-s.done:
			return
		}
	}
}

func (s *Sim) post(f func()) {
	select {
	case s.work <- f:
	case <-s.done:
	}
}

// notify delivers notifications in order. Must not be called with s.mu held.
func (s *Sim) notify(ns ...Notification) {
	for i := range ns {
		n := ns[i]
		s.post(func() {
			s.mu.Lock()
			w := s.watcher
			s.mu.Unlock()
			if w != nil {
				w(&n)
			}
		})
	}
}

func (s *Sim) progress(cb ControllerCallback, steps ...ControllerState) {
	s.progressErr(cb, ControllerErrorNone, steps...)
}

func (s *Sim) progressErr(cb ControllerCallback, cerr ControllerError, steps ...ControllerState) {
	for _, st := range steps {
		st := st
		e := ControllerErrorNone
		if st == ControllerStateFailed || st == ControllerStateError {
			e = cerr
		}
		s.post(func() { cb(st, e) })
	}
}

// Flush blocks until every notification posted so far has been delivered.
func (s *Sim) Flush() {
	ch := make(chan struct{})
	s.post(func() { close(ch) })
	select {
	case <-ch:
	case <-s.done:
	}
}

// Close stops the worker goroutine.
func (s *Sim) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
	return nil
}

func (s *Sim) checkHomeLocked(homeID uint32) error {
	if len(s.drivers) == 0 || homeID != s.homeID {
		return fmt.Errorf("%w: home 0x%08x", ErrDriverNotFound, homeID)
	}
	return nil
}

func (s *Sim) nodeLocked(homeID uint32, nodeID uint8) (*simNode, error) {
	if err := s.checkHomeLocked(homeID); err != nil {
		return nil, err
	}
	n, ok := s.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, nodeID)
	}
	return n, nil
}

func (s *Sim) valueLocked(id ValueID) (*simValue, error) {
	n, ok := s.nodes[id.NodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id.NodeID)
	}
	v, ok := n.values[id.Key()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrValueNotFound, id)
	}
	return v, nil
}

func (s *Sim) sortedNodeIDsLocked() []uint8 {
	ids := make([]uint8, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// interviewLocked returns the notification sequence of a full node interview.
func (s *Sim) interviewLocked(n *simNode) []Notification {
	out := []Notification{
		{Type: NotificationNodeAdded, HomeID: s.homeID, NodeID: n.id},
		{Type: NotificationNodeProtocolInfo, HomeID: s.homeID, NodeID: n.id},
	}
	for _, k := range n.order {
		out = append(out, Notification{Type: NotificationValueAdded, HomeID: s.homeID, NodeID: n.id, ValueID: n.values[k].id})
	}
	out = append(out,
		Notification{Type: NotificationNodeNaming, HomeID: s.homeID, NodeID: n.id},
		Notification{Type: NotificationEssentialNodeQueriesComplete, HomeID: s.homeID, NodeID: n.id},
		Notification{Type: NotificationNodeQueriesComplete, HomeID: s.homeID, NodeID: n.id},
	)
	return out
}

func (s *Sim) countWriteLocked(nodeID uint8) {
	s.stats.SOFCount++
	s.stats.WriteCount++
	s.stats.ACKCount++
	if n, ok := s.nodes[nodeID]; ok {
		n.stats.SentCount++
		n.stats.SentTS = time.Now()
	}
}

// --- Driver lifecycle ---

func (s *Sim) AddWatcher(w Watcher) error {
	if w == nil {
		return fmt.Errorf("%w: nil watcher", ErrInvalidArgument)
	}
	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()
	return nil
}

func (s *Sim) RemoveWatcher() error {
	s.mu.Lock()
	s.watcher = nil
	s.mu.Unlock()
	return nil
}

// AddDriver starts the simulated driver and replays the network interview.
func (s *Sim) AddDriver(path string) error {
	s.mu.Lock()
	if s.drivers[path] {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDriverExists, path)
	}
	s.drivers[path] = true
	out := []Notification{{Type: NotificationDriverReady, HomeID: s.homeID, NodeID: 1}}
	for _, id := range s.sortedNodeIDsLocked() {
		out = append(out, s.interviewLocked(s.nodes[id])...)
	}
	out = append(out, Notification{Type: NotificationAllNodesQueried, HomeID: s.homeID})
	s.mu.Unlock()

	s.logger.Debug("driver added", "path", path, "home_id", fmt.Sprintf("0x%08x", s.homeID))
	s.notify(out...)
	return nil
}

func (s *Sim) RemoveDriver(path string) error {
	s.mu.Lock()
	if !s.drivers[path] {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDriverNotFound, path)
	}
	delete(s.drivers, path)
	s.mu.Unlock()
	s.notify(Notification{Type: NotificationDriverRemoved, HomeID: s.homeID})
	return nil
}

// ResetController erases every node except the controller.
func (s *Sim) ResetController(homeID uint32) error {
	s.mu.Lock()
	if err := s.checkHomeLocked(homeID); err != nil {
		s.mu.Unlock()
		return err
	}
	for id := range s.nodes {
		if id != 1 {
			delete(s.nodes, id)
		}
	}
	s.scenes = make(map[uint8]*simScene)
	out := []Notification{{Type: NotificationDriverReset, HomeID: s.homeID}}
	out = append(out, s.interviewLocked(s.nodes[1])...)
	out = append(out, Notification{Type: NotificationAllNodesQueried, HomeID: s.homeID})
	s.mu.Unlock()
	s.notify(out...)
	return nil
}

func (s *Sim) SoftReset(homeID uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkHomeLocked(homeID)
}

func (s *Sim) LibraryVersion() string { return simLibraryVersion }

// --- Controller ---

func (s *Sim) BeginControllerCommand(homeID uint32, cmd ControllerCommand, cb ControllerCallback, highPower bool, nodeID, arg uint8) error {
	if cb == nil {
		return fmt.Errorf("%w: nil callback", ErrInvalidArgument)
	}
	s.mu.Lock()
	if err := s.checkHomeLocked(homeID); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.command != nil {
		s.mu.Unlock()
		return ErrCommandBusy
	}

	var (
		steps []ControllerState
		cerr  ControllerError
		notes []Notification
	)
	node, known := s.nodes[nodeID]
	switch cmd {
	case CommandAddDevice, CommandRemoveDevice, CommandReceiveConfiguration, CommandCreateNewPrimary, CommandTransferPrimaryRole:
		s.command = &simCommand{cmd: cmd, nodeID: nodeID, cb: cb}
		steps = []ControllerState{ControllerStateStarting, ControllerStateWaiting}
	case CommandHasNodeFailed:
		switch {
		case !known:
			steps, cerr = []ControllerState{ControllerStateStarting, ControllerStateFailed}, ControllerErrorNodeNotFound
		case node.failed:
			steps = []ControllerState{ControllerStateStarting, ControllerStateInProgress, ControllerStateNodeFailed}
		default:
			steps = []ControllerState{ControllerStateStarting, ControllerStateInProgress, ControllerStateNodeOK}
		}
	case CommandRemoveFailedNode, CommandReplaceFailedNode:
		switch {
		case !known:
			steps, cerr = []ControllerState{ControllerStateStarting, ControllerStateFailed}, ControllerErrorNodeNotFound
		case !node.failed:
			steps, cerr = []ControllerState{ControllerStateStarting, ControllerStateFailed}, ControllerErrorNotFound
		case cmd == CommandRemoveFailedNode:
			delete(s.nodes, nodeID)
			notes = append(notes, Notification{Type: NotificationNodeRemoved, HomeID: s.homeID, NodeID: nodeID})
			steps = []ControllerState{ControllerStateStarting, ControllerStateInProgress, ControllerStateCompleted}
		default:
			node.failed = false
			notes = append(notes, s.interviewLocked(node)...)
			steps = []ControllerState{ControllerStateStarting, ControllerStateInProgress, ControllerStateCompleted}
		}
	case CommandRequestNodeNeighborUpdate, CommandAssignReturnRoute, CommandDeleteAllReturnRoutes, CommandSendNodeInformation:
		if !known {
			steps, cerr = []ControllerState{ControllerStateStarting, ControllerStateFailed}, ControllerErrorNodeNotFound
		} else {
			s.countWriteLocked(nodeID)
			steps = []ControllerState{ControllerStateStarting, ControllerStateInProgress, ControllerStateCompleted}
		}
	case CommandRequestNetworkUpdate, CommandReplicationSend:
		steps = []ControllerState{ControllerStateStarting, ControllerStateInProgress, ControllerStateCompleted}
	case CommandCreateButton, CommandDeleteButton:
		if !known {
			steps, cerr = []ControllerState{ControllerStateStarting, ControllerStateFailed}, ControllerErrorNodeNotFound
		} else {
			kind := NotificationCreateButton
			if cmd == CommandDeleteButton {
				kind = NotificationDeleteButton
			}
			notes = append(notes, Notification{Type: kind, HomeID: s.homeID, NodeID: nodeID, ButtonID: arg})
			steps = []ControllerState{ControllerStateStarting, ControllerStateCompleted}
		}
	default:
		s.mu.Unlock()
		return fmt.Errorf("%w: controller command %s", ErrInvalidArgument, cmd)
	}
	s.mu.Unlock()

	s.logger.Debug("controller command", "cmd", cmd.String(), "node", nodeID, "high_power", highPower)
	// Progress for node-affecting commands brackets the resulting notifications.
	if len(notes) > 0 {
		s.progress(cb, steps[:len(steps)-1]...)
		s.notify(notes...)
		s.progress(cb, steps[len(steps)-1])
		return nil
	}
	s.progressErr(cb, cerr, steps...)
	return nil
}

func (s *Sim) CancelControllerCommand(homeID uint32) error {
	s.mu.Lock()
	if err := s.checkHomeLocked(homeID); err != nil {
		s.mu.Unlock()
		return err
	}
	cmd := s.command
	s.command = nil
	s.mu.Unlock()
	if cmd == nil {
		return ErrNoCommand
	}
	s.progress(cmd.cb, ControllerStateCancel)
	return nil
}

// Include completes a pending AddDevice command with n.
func (s *Sim) Include(n SimNode) error {
	s.mu.Lock()
	if s.command == nil || s.command.cmd != CommandAddDevice {
		s.mu.Unlock()
		return ErrNoCommand
	}
	if _, exists := s.nodes[n.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: node %d already included", ErrInvalidArgument, n.ID)
	}
	cb := s.command.cb
	s.command = nil
	node := s.buildNode(n)
	s.nodes[n.ID] = node
	notes := append([]Notification{{Type: NotificationNodeNew, HomeID: s.homeID, NodeID: n.ID}}, s.interviewLocked(node)...)
	s.mu.Unlock()

	s.progress(cb, ControllerStateInProgress)
	s.notify(notes...)
	s.progress(cb, ControllerStateCompleted)
	return nil
}

// Exclude completes a pending RemoveDevice command for nodeID.
func (s *Sim) Exclude(nodeID uint8) error {
	s.mu.Lock()
	if s.command == nil || s.command.cmd != CommandRemoveDevice {
		s.mu.Unlock()
		return ErrNoCommand
	}
	if _, ok := s.nodes[nodeID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNodeNotFound, nodeID)
	}
	cb := s.command.cb
	s.command = nil
	delete(s.nodes, nodeID)
	s.mu.Unlock()

	s.progress(cb, ControllerStateInProgress)
	s.notify(Notification{Type: NotificationNodeRemoved, HomeID: s.homeID, NodeID: nodeID})
	s.progress(cb, ControllerStateCompleted)
	return nil
}

// FailNode marks a node as unresponsive and reports it dead.
func (s *Sim) FailNode(nodeID uint8) error {
	s.mu.Lock()
	n, ok := s.nodes[nodeID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNodeNotFound, nodeID)
	}
	n.failed = true
	n.stats.SentFailed++
	s.mu.Unlock()
	s.notify(Notification{Type: NotificationNotification, HomeID: s.homeID, NodeID: nodeID, Code: CodeDead})
	return nil
}

// Report changes a value as if the device had sent an unsolicited report.
func (s *Sim) Report(key ValueKey, data any) error {
	s.mu.Lock()
	n, ok := s.nodes[key.NodeID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNodeNotFound, key.NodeID)
	}
	sv, ok := n.values[key]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrValueNotFound, key)
	}
	kind := NotificationValueChanged
	if equalData(sv.data, data) {
		kind = NotificationValueRefreshed
	}
	sv.data = data
	n.stats.ReceivedCount++
	n.stats.ReceivedUnsolicited++
	n.stats.ReceivedTS = time.Now()
	s.stats.ReadCount++
	note := Notification{Type: kind, HomeID: s.homeID, NodeID: key.NodeID, ValueID: sv.id}
	s.mu.Unlock()
	s.notify(note)
	return nil
}

// Inject delivers an arbitrary notification through the worker goroutine.
func (s *Sim) Inject(n Notification) {
	if n.HomeID == 0 {
		n.HomeID = s.homeID
	}
	s.notify(n)
}

func (s *Sim) ControllerInfo(homeID uint32) (ControllerInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkHomeLocked(homeID); err != nil {
		return ControllerInfo{}, err
	}
	return ControllerInfo{
		NodeID:          1,
		SUCNodeID:       1,
		IsPrimary:       true,
		IsStaticUpdate:  true,
		LibraryVersion:  "Z-Wave 4.05",
		LibraryTypeName: "Static Controller",
		SendQueueCount:  len(s.work),
	}, nil
}

// --- Value attributes ---

func (s *Sim) attr(id ValueID, f func(*simValue)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, err := s.valueLocked(id); err == nil {
		f(v)
	}
}

func (s *Sim) ValueLabel(id ValueID) (out string) {
	s.attr(id, func(v *simValue) { out = v.label })
	return
}

func (s *Sim) ValueUnits(id ValueID) (out string) {
	s.attr(id, func(v *simValue) { out = v.units })
	return
}

func (s *Sim) ValueHelp(id ValueID) (out string) {
	s.attr(id, func(v *simValue) { out = v.help })
	return
}

func (s *Sim) ValueMin(id ValueID) (out int32) {
	s.attr(id, func(v *simValue) { out = v.min })
	return
}

func (s *Sim) ValueMax(id ValueID) (out int32) {
	s.attr(id, func(v *simValue) { out = v.max })
	return
}

func (s *Sim) IsValueReadOnly(id ValueID) (out bool) {
	s.attr(id, func(v *simValue) { out = v.readOnly })
	return
}

func (s *Sim) IsValueWriteOnly(id ValueID) (out bool) {
	s.attr(id, func(v *simValue) { out = v.writeOnly })
	return
}

func (s *Sim) IsValuePolled(id ValueID) (out bool) {
	s.attr(id, func(v *simValue) { out = v.polled })
	return
}

// --- Value getters and setters ---

func simGet[T any](s *Sim, id ValueID, want ValueType) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	sv, err := s.valueLocked(id)
	if err != nil {
		return zero, err
	}
	if sv.id.Type != want {
		return zero, fmt.Errorf("%w: %s is %s, not %s", ErrTypeMismatch, id, sv.id.Type, want)
	}
	v, ok := sv.data.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T", ErrTypeMismatch, id, sv.data)
	}
	return v, nil
}

func simSet[T any](s *Sim, id ValueID, want ValueType, v T) error {
	s.mu.Lock()
	sv, err := s.valueLocked(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if sv.id.Type != want {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s is %s, not %s", ErrTypeMismatch, id, sv.id.Type, want)
	}
	if sv.readOnly {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrReadOnly, id)
	}
	kind := NotificationValueChanged
	if equalData(sv.data, v) {
		kind = NotificationValueRefreshed
	}
	sv.data = v
	s.countWriteLocked(id.NodeID)
	note := Notification{Type: kind, HomeID: s.homeID, NodeID: id.NodeID, ValueID: sv.id}
	s.mu.Unlock()
	s.notify(note)
	return nil
}

func (s *Sim) ValueAsBool(id ValueID) (bool, error)  { return simGet[bool](s, id, ValueTypeBool) }
func (s *Sim) ValueAsByte(id ValueID) (uint8, error) { return simGet[uint8](s, id, ValueTypeByte) }
func (s *Sim) ValueAsDecimal(id ValueID) (string, error) {
	return simGet[string](s, id, ValueTypeDecimal)
}
func (s *Sim) ValueAsInt(id ValueID) (int32, error)   { return simGet[int32](s, id, ValueTypeInt) }
func (s *Sim) ValueAsShort(id ValueID) (int16, error) { return simGet[int16](s, id, ValueTypeShort) }
func (s *Sim) ValueAsString(id ValueID) (string, error) {
	return simGet[string](s, id, ValueTypeString)
}
func (s *Sim) ValueAsBitSet(id ValueID) (uint32, error) {
	return simGet[uint32](s, id, ValueTypeBitSet)
}
func (s *Sim) ValueAsRaw(id ValueID) ([]byte, error) { return simGet[[]byte](s, id, ValueTypeRaw) }

func (s *Sim) ValueListSelection(id ValueID) (string, error) {
	return simGet[string](s, id, ValueTypeList)
}

func (s *Sim) ValueListItems(id ValueID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv, err := s.valueLocked(id)
	if err != nil {
		return nil, err
	}
	if sv.id.Type != ValueTypeList {
		return nil, fmt.Errorf("%w: %s is %s, not list", ErrTypeMismatch, id, sv.id.Type)
	}
	return append([]string(nil), sv.items...), nil
}

func (s *Sim) SetValueBool(id ValueID, v bool) error      { return simSet(s, id, ValueTypeBool, v) }
func (s *Sim) SetValueByte(id ValueID, v uint8) error     { return simSet(s, id, ValueTypeByte, v) }
func (s *Sim) SetValueDecimal(id ValueID, v string) error { return simSet(s, id, ValueTypeDecimal, v) }
func (s *Sim) SetValueInt(id ValueID, v int32) error      { return simSet(s, id, ValueTypeInt, v) }
func (s *Sim) SetValueShort(id ValueID, v int16) error    { return simSet(s, id, ValueTypeShort, v) }
func (s *Sim) SetValueString(id ValueID, v string) error  { return simSet(s, id, ValueTypeString, v) }
func (s *Sim) SetValueBitSet(id ValueID, v uint32) error  { return simSet(s, id, ValueTypeBitSet, v) }

func (s *Sim) SetValueRaw(id ValueID, v []byte) error {
	return simSet(s, id, ValueTypeRaw, append([]byte(nil), v...))
}

func (s *Sim) SetValueListSelection(id ValueID, v string) error {
	s.mu.Lock()
	sv, err := s.valueLocked(id)
	if err == nil && sv.id.Type == ValueTypeList && len(sv.items) > 0 && !containsString(sv.items, v) {
		err = fmt.Errorf("%w: %q is not an item of %s", ErrInvalidArgument, v, id)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return simSet(s, id, ValueTypeList, v)
}

func containsString(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}

func (s *Sim) button(id ValueID, pressed bool) error {
	s.mu.Lock()
	sv, err := s.valueLocked(id)
	if err == nil && sv.id.Type != ValueTypeButton {
		err = fmt.Errorf("%w: %s is %s, not button", ErrTypeMismatch, id, sv.id.Type)
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}
	sv.data = pressed
	s.countWriteLocked(id.NodeID)
	s.mu.Unlock()
	return nil
}

func (s *Sim) PressButton(id ValueID) error   { return s.button(id, true) }
func (s *Sim) ReleaseButton(id ValueID) error { return s.button(id, false) }

func (s *Sim) RefreshValue(id ValueID) error {
	s.mu.Lock()
	sv, err := s.valueLocked(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	note := Notification{Type: NotificationValueRefreshed, HomeID: s.homeID, NodeID: id.NodeID, ValueID: sv.id}
	s.mu.Unlock()
	s.notify(note)
	return nil
}

func (s *Sim) SetChangeVerified(id ValueID, verify bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv, err := s.valueLocked(id)
	if err != nil {
		return err
	}
	sv.verify = verify
	return nil
}

// --- Polling ---

func (s *Sim) setPolled(id ValueID, polled bool, intensity uint8) error {
	s.mu.Lock()
	sv, err := s.valueLocked(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	sv.polled = polled
	sv.intensity = intensity
	kind := NotificationPollingDisabled
	if polled {
		kind = NotificationPollingEnabled
	}
	note := Notification{Type: kind, HomeID: s.homeID, NodeID: id.NodeID, ValueID: sv.id}
	s.mu.Unlock()
	s.notify(note)
	return nil
}

func (s *Sim) EnablePoll(id ValueID, intensity uint8) error {
	if intensity == 0 {
		intensity = 1
	}
	return s.setPolled(id, true, intensity)
}

func (s *Sim) DisablePoll(id ValueID) error { return s.setPolled(id, false, 0) }

func (s *Sim) PollInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pollInterval
}

func (s *Sim) SetPollInterval(d time.Duration, intervalBetweenPolls bool) {
	s.mu.Lock()
	s.pollInterval = d
	s.pollBetween = intervalBetweenPolls
	s.mu.Unlock()
}

func (s *Sim) SetPollIntensity(id ValueID, intensity uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv, err := s.valueLocked(id)
	if err != nil {
		return err
	}
	sv.intensity = intensity
	return nil
}

// --- Nodes ---

func (s *Sim) NodeInfo(homeID uint32, nodeID uint8) (NodeInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(homeID, nodeID)
	if err != nil {
		return NodeInfo{}, err
	}
	return n.info, nil
}

func (s *Sim) NodeCapabilities(homeID uint32, nodeID uint8) (NodeCapabilities, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(homeID, nodeID)
	if err != nil {
		return NodeCapabilities{}, err
	}
	return n.caps, nil
}

func (s *Sim) NodeNeighbors(homeID uint32, nodeID uint8) ([]uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(homeID, nodeID)
	if err != nil {
		return nil, err
	}
	return append([]uint8(nil), n.neighbors...), nil
}

// NodeMetaData returns one field of the node's device definition. Fields the
// definition does not carry read as empty.
func (s *Sim) NodeMetaData(homeID uint32, nodeID uint8, field MetaDataField) (string, error) {
	if int(field) >= len(metaDataNames) {
		return "", fmt.Errorf("%w: metadata field %d", ErrInvalidArgument, field)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(homeID, nodeID)
	if err != nil {
		return "", err
	}
	return n.metadata[field], nil
}

func (s *Sim) NodeChangeLog(homeID uint32, nodeID uint8, revision uint8) (ChangeLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(homeID, nodeID)
	if err != nil {
		return ChangeLogEntry{}, err
	}
	for _, e := range n.changeLog {
		if e.Revision == int(revision) {
			return e, nil
		}
	}
	return ChangeLogEntry{}, fmt.Errorf("%w: node %d revision %d", ErrNoChangeLog, nodeID, revision)
}

func (s *Sim) rename(homeID uint32, nodeID uint8, f func(*NodeInfo)) error {
	s.mu.Lock()
	n, err := s.nodeLocked(homeID, nodeID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	f(&n.info)
	s.mu.Unlock()
	s.notify(Notification{Type: NotificationNodeNaming, HomeID: homeID, NodeID: nodeID})
	return nil
}

func (s *Sim) SetNodeName(homeID uint32, nodeID uint8, name string) error {
	return s.rename(homeID, nodeID, func(i *NodeInfo) { i.Name = name })
}

func (s *Sim) SetNodeLocation(homeID uint32, nodeID uint8, location string) error {
	return s.rename(homeID, nodeID, func(i *NodeInfo) { i.Location = location })
}

func (s *Sim) SetNodeManufacturerName(homeID uint32, nodeID uint8, name string) error {
	return s.rename(homeID, nodeID, func(i *NodeInfo) { i.Manufacturer = name })
}

func (s *Sim) SetNodeProductName(homeID uint32, nodeID uint8, name string) error {
	return s.rename(homeID, nodeID, func(i *NodeInfo) { i.Product = name })
}

const (
	classSwitchBinary     = 0x25
	classSwitchMultilevel = 0x26
	classConfiguration    = 0x70
)

// setLevelLocked applies a basic level to the node's switch values and
// returns the resulting change notifications.
func (s *Sim) setLevelLocked(n *simNode, level uint8) []Notification {
	var out []Notification
	for _, k := range n.order {
		sv := n.values[k]
		var data any
		switch {
		case k.CommandClass == classSwitchBinary && sv.id.Type == ValueTypeBool:
			data = level > 0
		case k.CommandClass == classSwitchMultilevel && sv.id.Type == ValueTypeByte && k.Index == 0:
			if level > 99 {
				level = 99
			}
			data = level
		default:
			continue
		}
		kind := NotificationValueChanged
		if equalData(sv.data, data) {
			kind = NotificationValueRefreshed
		}
		sv.data = data
		out = append(out, Notification{Type: kind, HomeID: s.homeID, NodeID: n.id, ValueID: sv.id})
	}
	s.countWriteLocked(n.id)
	return out
}

func (s *Sim) SetNodeLevel(homeID uint32, nodeID uint8, level uint8) error {
	s.mu.Lock()
	n, err := s.nodeLocked(homeID, nodeID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	out := s.setLevelLocked(n, level)
	s.mu.Unlock()
	s.notify(out...)
	return nil
}

func (s *Sim) SetNodeOn(homeID uint32, nodeID uint8) error {
	return s.SetNodeLevel(homeID, nodeID, 0xff)
}
func (s *Sim) SetNodeOff(homeID uint32, nodeID uint8) error { return s.SetNodeLevel(homeID, nodeID, 0) }

func (s *Sim) switchAll(homeID uint32, level uint8) error {
	s.mu.Lock()
	if err := s.checkHomeLocked(homeID); err != nil {
		s.mu.Unlock()
		return err
	}
	var out []Notification
	for _, id := range s.sortedNodeIDsLocked() {
		out = append(out, s.setLevelLocked(s.nodes[id], level)...)
	}
	s.mu.Unlock()
	s.notify(out...)
	return nil
}

func (s *Sim) SwitchAllOn(homeID uint32) error  { return s.switchAll(homeID, 0xff) }
func (s *Sim) SwitchAllOff(homeID uint32) error { return s.switchAll(homeID, 0) }

func (s *Sim) RefreshNodeInfo(homeID uint32, nodeID uint8) error {
	s.mu.Lock()
	n, err := s.nodeLocked(homeID, nodeID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	out := s.interviewLocked(n)
	s.mu.Unlock()
	s.notify(out...)
	return nil
}

func (s *Sim) refreshAll(homeID uint32, nodeID uint8, genre func(Genre) bool) error {
	s.mu.Lock()
	n, err := s.nodeLocked(homeID, nodeID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	var out []Notification
	for _, k := range n.order {
		if sv := n.values[k]; genre(sv.id.Genre) {
			out = append(out, Notification{Type: NotificationValueRefreshed, HomeID: s.homeID, NodeID: nodeID, ValueID: sv.id})
		}
	}
	s.mu.Unlock()
	s.notify(out...)
	return nil
}

func (s *Sim) RequestNodeState(homeID uint32, nodeID uint8) error {
	return s.refreshAll(homeID, nodeID, func(g Genre) bool { return g != GenreConfig })
}

func (s *Sim) RequestNodeDynamic(homeID uint32, nodeID uint8) error {
	return s.refreshAll(homeID, nodeID, func(g Genre) bool { return g == GenreUser || g == GenreBasic })
}

// --- Association groups ---

func (s *Sim) groupLocked(homeID uint32, nodeID, group uint8) (*SimGroup, error) {
	n, err := s.nodeLocked(homeID, nodeID)
	if err != nil {
		return nil, err
	}
	if group == 0 || int(group) > len(n.groups) {
		return nil, fmt.Errorf("%w: group %d of node %d", ErrInvalidArgument, group, nodeID)
	}
	return &n.groups[group-1], nil
}

func (s *Sim) NumGroups(homeID uint32, nodeID uint8) (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(homeID, nodeID)
	if err != nil {
		return 0, err
	}
	return uint8(len(n.groups)), nil
}

func (s *Sim) Associations(homeID uint32, nodeID, group uint8) ([]uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.groupLocked(homeID, nodeID, group)
	if err != nil {
		return nil, err
	}
	return append([]uint8(nil), g.Members...), nil
}

func (s *Sim) MaxAssociations(homeID uint32, nodeID, group uint8) (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.groupLocked(homeID, nodeID, group)
	if err != nil {
		return 0, err
	}
	return g.Max, nil
}

func (s *Sim) GroupLabel(homeID uint32, nodeID, group uint8) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.groupLocked(homeID, nodeID, group)
	if err != nil {
		return "", err
	}
	return g.Label, nil
}

func (s *Sim) AddAssociation(homeID uint32, nodeID, group, target uint8) error {
	s.mu.Lock()
	g, err := s.groupLocked(homeID, nodeID, group)
	if err == nil && g.Max > 0 && len(g.Members) >= int(g.Max) {
		err = fmt.Errorf("%w: group %d of node %d is full", ErrInvalidArgument, group, nodeID)
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}
	for _, m := range g.Members {
		if m == target {
			s.mu.Unlock()
			return nil
		}
	}
	g.Members = append(g.Members, target)
	s.mu.Unlock()
	s.notify(Notification{Type: NotificationGroup, HomeID: homeID, NodeID: nodeID, GroupIdx: group})
	return nil
}

func (s *Sim) RemoveAssociation(homeID uint32, nodeID, group, target uint8) error {
	s.mu.Lock()
	g, err := s.groupLocked(homeID, nodeID, group)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	for i, m := range g.Members {
		if m == target {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.notify(Notification{Type: NotificationGroup, HomeID: homeID, NodeID: nodeID, GroupIdx: group})
	return nil
}

// --- Configuration parameters ---

func (s *Sim) configValueLocked(n *simNode, param uint8) *simValue {
	for _, k := range n.order {
		if k.CommandClass == classConfiguration && k.Index == param {
			return n.values[k]
		}
	}
	return nil
}

func (s *Sim) SetConfigParam(homeID uint32, nodeID, param uint8, value int32, size uint8) error {
	switch size {
	case 1, 2, 4:
	default:
		return fmt.Errorf("%w: config param size %d", ErrInvalidArgument, size)
	}
	s.mu.Lock()
	n, err := s.nodeLocked(homeID, nodeID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	n.config[param] = value
	s.countWriteLocked(nodeID)
	var out []Notification
	if sv := s.configValueLocked(n, param); sv != nil {
		switch sv.id.Type {
		case ValueTypeByte:
			sv.data = uint8(value)
		case ValueTypeShort:
			sv.data = int16(value)
		case ValueTypeInt:
			sv.data = value
		case ValueTypeBool:
			sv.data = value != 0
		}
		out = append(out, Notification{Type: NotificationValueChanged, HomeID: s.homeID, NodeID: nodeID, ValueID: sv.id})
	}
	s.mu.Unlock()
	s.notify(out...)
	return nil
}

func (s *Sim) RequestConfigParam(homeID uint32, nodeID, param uint8) error {
	s.mu.Lock()
	n, err := s.nodeLocked(homeID, nodeID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	var out []Notification
	if sv := s.configValueLocked(n, param); sv != nil {
		out = append(out, Notification{Type: NotificationValueRefreshed, HomeID: s.homeID, NodeID: nodeID, ValueID: sv.id})
	}
	s.mu.Unlock()
	s.notify(out...)
	return nil
}

func (s *Sim) RequestAllConfigParams(homeID uint32, nodeID uint8) error {
	return s.refreshAll(homeID, nodeID, func(g Genre) bool { return g == GenreConfig })
}

// --- Network ---

func (s *Sim) HealNetworkNode(homeID uint32, nodeID uint8, doReturnRoutes bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.nodeLocked(homeID, nodeID); err != nil {
		return err
	}
	s.countWriteLocked(nodeID)
	return nil
}

func (s *Sim) HealNetwork(homeID uint32, doReturnRoutes bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkHomeLocked(homeID); err != nil {
		return err
	}
	for id := range s.nodes {
		s.countWriteLocked(id)
	}
	return nil
}

func (s *Sim) testNodeLocked(n *simNode, count uint32) Notification {
	code := CodeMessageComplete
	if n.failed {
		n.stats.SentFailed += count
		code = CodeTimeout
	} else {
		n.stats.SentCount += count
		n.stats.ReceivedCount += count
		n.stats.Quality = 100
	}
	s.stats.WriteCount += count
	return Notification{Type: NotificationNotification, HomeID: s.homeID, NodeID: n.id, Code: code}
}

func (s *Sim) TestNetworkNode(homeID uint32, nodeID uint8, count uint32) error {
	s.mu.Lock()
	n, err := s.nodeLocked(homeID, nodeID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	note := s.testNodeLocked(n, count)
	s.mu.Unlock()
	s.notify(note)
	return nil
}

func (s *Sim) TestNetwork(homeID uint32, count uint32) error {
	s.mu.Lock()
	if err := s.checkHomeLocked(homeID); err != nil {
		s.mu.Unlock()
		return err
	}
	var out []Notification
	for _, id := range s.sortedNodeIDsLocked() {
		if id == 1 {
			continue
		}
		out = append(out, s.testNodeLocked(s.nodes[id], count))
	}
	s.mu.Unlock()
	s.notify(out...)
	return nil
}

// --- Scenes ---

func (s *Sim) sceneLocked(sceneID uint8) (*simScene, error) {
	sc, ok := s.scenes[sceneID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrSceneNotFound, sceneID)
	}
	return sc, nil
}

func (s *Sim) NumScenes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scenes)
}

func (s *Sim) AllScenes() []uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint8, 0, len(s.scenes))
	for id := range s.scenes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Sim) CreateScene() (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := 1; id <= 255; id++ {
		if _, used := s.scenes[uint8(id)]; !used {
			s.scenes[uint8(id)] = &simScene{}
			return uint8(id), nil
		}
	}
	return 0, fmt.Errorf("%w: no free scene id", ErrInvalidArgument)
}

func (s *Sim) RemoveScene(sceneID uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.sceneLocked(sceneID); err != nil {
		return err
	}
	delete(s.scenes, sceneID)
	return nil
}

func (s *Sim) SceneExists(sceneID uint8) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.scenes[sceneID]
	return ok
}

func (s *Sim) SceneLabel(sceneID uint8) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := s.sceneLocked(sceneID)
	if err != nil {
		return "", err
	}
	return sc.label, nil
}

func (s *Sim) SetSceneLabel(sceneID uint8, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := s.sceneLocked(sceneID)
	if err != nil {
		return err
	}
	sc.label = label
	return nil
}

// ActivateScene applies every stored value to its node.
func (s *Sim) ActivateScene(sceneID uint8) error {
	s.mu.Lock()
	sc, err := s.sceneLocked(sceneID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	var out []Notification
	for _, e := range sc.values {
		sv, err := s.valueLocked(e.id)
		if err != nil {
			continue
		}
		kind := NotificationValueChanged
		if equalData(sv.data, e.data) {
			kind = NotificationValueRefreshed
		}
		sv.data = e.data
		s.countWriteLocked(e.id.NodeID)
		out = append(out, Notification{Type: kind, HomeID: s.homeID, NodeID: e.id.NodeID, ValueID: sv.id})
	}
	s.mu.Unlock()
	s.notify(out...)
	return nil
}

func (s *Sim) SceneValues(sceneID uint8) ([]ValueID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := s.sceneLocked(sceneID)
	if err != nil {
		return nil, err
	}
	ids := make([]ValueID, len(sc.values))
	for i, e := range sc.values {
		ids[i] = e.id
	}
	return ids, nil
}

func (s *Sim) RemoveSceneValue(sceneID uint8, id ValueID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := s.sceneLocked(sceneID)
	if err != nil {
		return err
	}
	for i, e := range sc.values {
		if e.id.Key() == id.Key() {
			sc.values = append(sc.values[:i], sc.values[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s in scene %d", ErrValueNotFound, id, sceneID)
}

func simSceneSet[T any](s *Sim, sceneID uint8, id ValueID, want ValueType, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := s.sceneLocked(sceneID)
	if err != nil {
		return err
	}
	sv, err := s.valueLocked(id)
	if err != nil {
		return err
	}
	if sv.id.Type != want {
		return fmt.Errorf("%w: %s is %s, not %s", ErrTypeMismatch, id, sv.id.Type, want)
	}
	for i := range sc.values {
		if sc.values[i].id.Key() == id.Key() {
			sc.values[i].data = v
			return nil
		}
	}
	sc.values = append(sc.values, simSceneValue{id: sv.id, data: v})
	return nil
}

func simSceneGet[T any](s *Sim, sceneID uint8, id ValueID, want ValueType) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := s.sceneLocked(sceneID)
	if err != nil {
		return zero, err
	}
	for _, e := range sc.values {
		if e.id.Key() != id.Key() {
			continue
		}
		if e.id.Type != want {
			return zero, fmt.Errorf("%w: %s is %s, not %s", ErrTypeMismatch, id, e.id.Type, want)
		}
		v, ok := e.data.(T)
		if !ok {
			return zero, fmt.Errorf("%w: %s holds %T", ErrTypeMismatch, id, e.data)
		}
		return v, nil
	}
	return zero, fmt.Errorf("%w: %s in scene %d", ErrValueNotFound, id, sceneID)
}

func (s *Sim) AddSceneValueBool(sceneID uint8, id ValueID, v bool) error {
	return simSceneSet(s, sceneID, id, ValueTypeBool, v)
}

func (s *Sim) AddSceneValueByte(sceneID uint8, id ValueID, v uint8) error {
	return simSceneSet(s, sceneID, id, ValueTypeByte, v)
}

func (s *Sim) AddSceneValueDecimal(sceneID uint8, id ValueID, v string) error {
	return simSceneSet(s, sceneID, id, ValueTypeDecimal, v)
}

func (s *Sim) AddSceneValueInt(sceneID uint8, id ValueID, v int32) error {
	return simSceneSet(s, sceneID, id, ValueTypeInt, v)
}

func (s *Sim) AddSceneValueShort(sceneID uint8, id ValueID, v int16) error {
	return simSceneSet(s, sceneID, id, ValueTypeShort, v)
}

func (s *Sim) AddSceneValueString(sceneID uint8, id ValueID, v string) error {
	return simSceneSet(s, sceneID, id, ValueTypeString, v)
}

func (s *Sim) AddSceneValueListSelection(sceneID uint8, id ValueID, v string) error {
	return simSceneSet(s, sceneID, id, ValueTypeList, v)
}

func (s *Sim) SceneValueAsBool(sceneID uint8, id ValueID) (bool, error) {
	return simSceneGet[bool](s, sceneID, id, ValueTypeBool)
}

func (s *Sim) SceneValueAsByte(sceneID uint8, id ValueID) (uint8, error) {
	return simSceneGet[uint8](s, sceneID, id, ValueTypeByte)
}

func (s *Sim) SceneValueAsDecimal(sceneID uint8, id ValueID) (string, error) {
	return simSceneGet[string](s, sceneID, id, ValueTypeDecimal)
}

func (s *Sim) SceneValueAsInt(sceneID uint8, id ValueID) (int32, error) {
	return simSceneGet[int32](s, sceneID, id, ValueTypeInt)
}

func (s *Sim) SceneValueAsShort(sceneID uint8, id ValueID) (int16, error) {
	return simSceneGet[int16](s, sceneID, id, ValueTypeShort)
}

func (s *Sim) SceneValueAsString(sceneID uint8, id ValueID) (string, error) {
	return simSceneGet[string](s, sceneID, id, ValueTypeString)
}

// --- Statistics ---

func (s *Sim) DriverStatistics(homeID uint32) (DriverStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkHomeLocked(homeID); err != nil {
		return DriverStats{}, err
	}
	return s.stats, nil
}

func (s *Sim) NodeStatistics(homeID uint32, nodeID uint8) (NodeStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(homeID, nodeID)
	if err != nil {
		return NodeStats{}, err
	}
	return n.stats, nil
}

var _ Manager = (*Sim)(nil)
