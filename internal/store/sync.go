package store

import (
	"log/slog"
	"time"

	"zwave-go-home/internal/coordinator"
	"zwave-go-home/internal/ozw"
	"zwave-go-home/internal/value"
)

// Recorder mirrors coordinator events into a Store.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

// NewRecorder creates a recorder writing to st.
func NewRecorder(st Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: st, logger: logger.With("component", "store")}
}

// Attach subscribes the recorder to every event. Returns an unsubscribe function.
func (r *Recorder) Attach(events *coordinator.EventBus) func() {
	return events.OnAll(r.Handle)
}

// Handle applies one event. Write failures are logged.
func (r *Recorder) Handle(e coordinator.Event) {
	var err error
	switch d := e.Data.(type) {
	case coordinator.ConnectedData:
		err = r.updateNetwork(func(ns *NetworkState) {
			ns.LibraryVersion = d.Version
			ns.DriverPath = d.Path
		})
	case coordinator.DriverData:
		if e.Type == coordinator.EventDriverReset {
			err = r.store.ClearNodes()
			break
		}
		err = r.updateNetwork(func(ns *NetworkState) {
			ns.HomeID = d.HomeID
			ns.LastReady = time.Now()
		})
	case coordinator.NodeData:
		switch e.Type {
		case coordinator.EventNodeAdded:
			err = r.touch(d.NodeID, nil)
		case coordinator.EventNodeRemoved:
			err = r.store.DeleteNode(d.NodeID)
		}
	case coordinator.NodeInfoData:
		err = r.touch(d.NodeID, func(n *Node) {
			applyInfo(n, d.Info)
			if e.Type == coordinator.EventNodeReady {
				n.Ready = true
			}
		})
	case coordinator.ValueData:
		if d.Value == nil || d.Value.Value == nil {
			return
		}
		err = r.touch(d.NodeID, func(n *Node) {
			n.Values[d.Value.ValueID] = value.Native(d.Value.Value)
		})
	case coordinator.ValueRemovedData:
		key := ozw.ValueKey{NodeID: d.NodeID, CommandClass: d.ClassID, Instance: d.Instance, Index: d.Index}
		err = r.touch(d.NodeID, func(n *Node) { delete(n.Values, key.String()) })
	case coordinator.NotificationData:
		switch ozw.NotificationCode(d.Code) {
		case ozw.CodeDead:
			err = r.touch(d.NodeID, func(n *Node) { n.Dead = true })
		case ozw.CodeAlive, ozw.CodeAwake:
			err = r.touch(d.NodeID, func(n *Node) { n.Dead = false })
		}
	case nil:
		if e.Type == coordinator.EventScanComplete {
			err = r.updateNetwork(func(ns *NetworkState) { ns.LastScan = time.Now() })
		}
	}
	if err != nil {
		r.logger.Error("persist event", "type", e.Type, "err", err)
	}
}

func (r *Recorder) touch(nodeID uint8, fn func(n *Node)) error {
	return r.store.UpdateNode(nodeID, func(n *Node) error {
		n.LastSeen = time.Now()
		if fn != nil {
			fn(n)
		}
		return nil
	})
}

func (r *Recorder) updateNetwork(fn func(ns *NetworkState)) error {
	ns, err := r.store.GetNetworkState()
	if err != nil {
		ns = &NetworkState{}
	}
	fn(ns)
	return r.store.SaveNetworkState(ns)
}

func applyInfo(n *Node, info ozw.NodeInfo) {
	n.Manufacturer = info.Manufacturer
	n.ManufacturerID = info.ManufacturerID
	n.Product = info.Product
	n.ProductType = info.ProductType
	n.ProductID = info.ProductID
	n.Type = info.Type
	n.Name = info.Name
	n.Location = info.Location
}
