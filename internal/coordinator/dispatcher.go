package coordinator

import (
	"log/slog"
	"sync/atomic"

	"zwave-go-home/internal/ozw"
	"zwave-go-home/internal/value"
)

// Dispatcher translates drained records into registry updates and events.
// It runs on the consumer goroutine only.
type Dispatcher struct {
	lib      ozw.Manager
	registry *Registry
	events   *EventBus
	codec    *value.Codec
	logger   *slog.Logger
	homeID   atomic.Uint32

	// nodeReady runs after the node ready event has been emitted.
	nodeReady func(nodeID uint8, info ozw.NodeInfo)
}

// NewDispatcher creates a dispatcher over the given registry and event bus.
func NewDispatcher(lib ozw.Manager, registry *Registry, events *EventBus, codec *value.Codec, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		lib:      lib,
		registry: registry,
		events:   events,
		codec:    codec,
		logger:   logger.With("component", "dispatcher"),
	}
}

// HomeID returns the network id captured from DriverReady, or 0.
func (d *Dispatcher) HomeID() uint32 {
	return d.homeID.Load()
}

// Dispatch handles one record. It never fails; problems are logged.
func (d *Dispatcher) Dispatch(r Record) {
	switch rec := r.(type) {
	case *NotificationRecord:
		d.notification(rec)
	case *ControllerCommandRecord:
		d.controllerCommand(rec)
	default:
		d.logger.Warn("unknown record", "state", r.State())
	}
}

func (d *Dispatcher) emit(eventType string, data interface{}) {
	d.events.Emit(Event{Type: eventType, Data: data})
}

func (d *Dispatcher) controllerCommand(r *ControllerCommandRecord) {
	d.logger.Info("controller command progress", "state", r.Progress.String(), "error", r.Err.String())
	d.emit(EventControllerCommand, ControllerCommandData{
		State:     uint8(r.Progress),
		StateName: r.Progress.String(),
		Error:     uint8(r.Err),
		ErrorName: r.Err.String(),
	})
}

func (d *Dispatcher) notification(r *NotificationRecord) {
	switch r.Kind {
	case ozw.NotificationDriverReady:
		d.homeID.Store(r.HomeID)
		d.logger.Info("driver ready", "home_id", formatHomeID(r.HomeID))
		d.emit(EventDriverReady, DriverData{HomeID: r.HomeID})

	case ozw.NotificationDriverFailed:
		d.logger.Error("driver failed")
		d.emit(EventDriverFailed, nil)

	case ozw.NotificationDriverReset:
		d.registry.Clear()
		d.emit(EventDriverReset, DriverData{HomeID: r.HomeID})

	case ozw.NotificationDriverRemoved:
		d.registry.Clear()
		d.homeID.Store(0)
		d.emit(EventDriverRemoved, nil)

	case ozw.NotificationNodeNew, ozw.NotificationNodeProtocolInfo:
		// Interview progress; nothing to report yet.

	case ozw.NotificationNodeAdded:
		d.registry.AddNode(r.HomeID, r.NodeID)
		d.emit(EventNodeAdded, NodeData{NodeID: r.NodeID})

	case ozw.NotificationNodeRemoved, ozw.NotificationNodeReset:
		if !d.registry.RemoveNode(r.NodeID) {
			d.logger.Debug("remove of unknown node", "node", r.NodeID)
		}
		d.emit(EventNodeRemoved, NodeData{NodeID: r.NodeID})

	case ozw.NotificationNodeNaming:
		d.emit(EventNodeNaming, NodeInfoData{NodeID: r.NodeID, Info: d.nodeInfo(r)})

	case ozw.NotificationValueAdded:
		id := r.Values[0]
		if !d.registry.AddValue(r.NodeID, id) {
			d.logger.Warn("value added for unknown node", "node", r.NodeID, "value", id.Key().String())
		}
		d.emit(EventValueAdded, ValueData{NodeID: r.NodeID, ClassID: id.CommandClass, Value: d.decode(id)})

	case ozw.NotificationValueChanged:
		id := r.Values[0]
		d.emit(EventValueChanged, ValueData{NodeID: r.NodeID, ClassID: id.CommandClass, Value: d.decode(id)})

	case ozw.NotificationValueRefreshed:
		id := r.Values[0]
		d.emit(EventValueRefreshed, ValueData{NodeID: r.NodeID, ClassID: id.CommandClass, Value: d.decode(id)})

	case ozw.NotificationValueRemoved:
		id := r.Values[0]
		if !d.registry.RemoveValue(r.NodeID, id) {
			d.logger.Debug("remove of unknown value", "node", r.NodeID, "value", id.Key().String())
		}
		d.emit(EventValueRemoved, ValueRemovedData{
			NodeID:   r.NodeID,
			ClassID:  id.CommandClass,
			Instance: id.Instance,
			Index:    id.Index,
		})

	case ozw.NotificationPollingEnabled, ozw.NotificationPollingDisabled:
		polled := r.Kind == ozw.NotificationPollingEnabled
		if !d.registry.SetPolled(r.NodeID, polled) {
			d.logger.Warn("polling change for unknown node", "node", r.NodeID)
		}

	case ozw.NotificationEssentialNodeQueriesComplete:
		d.emit(EventNodeAvailable, NodeInfoData{NodeID: r.NodeID, Info: d.nodeInfo(r)})

	case ozw.NotificationNodeQueriesComplete:
		info := d.nodeInfo(r)
		d.emit(EventNodeReady, NodeInfoData{NodeID: r.NodeID, Info: info})
		if d.nodeReady != nil {
			d.nodeReady(r.NodeID, info)
		}

	case ozw.NotificationAwakeNodesQueried, ozw.NotificationAllNodesQueried, ozw.NotificationAllNodesQueriedSomeDead:
		d.logger.Info("network scan complete", "nodes", d.registry.NodeCount(), "kind", r.Kind.String())
		d.emit(EventScanComplete, nil)

	case ozw.NotificationNodeEvent:
		d.emit(EventNodeEvent, NodeEventData{NodeID: r.NodeID, Event: r.Event})

	case ozw.NotificationSceneEvent:
		d.emit(EventSceneEvent, SceneEventData{NodeID: r.NodeID, SceneID: r.SceneID})

	case ozw.NotificationNotification:
		d.emit(EventNotification, NotificationData{NodeID: r.NodeID, Code: uint8(r.Code), Message: r.Code.String()})

	case ozw.NotificationGroup:
		// Association changes are not tracked; Groups reads them on demand.

	case ozw.NotificationCreateButton, ozw.NotificationDeleteButton,
		ozw.NotificationButtonOn, ozw.NotificationButtonOff:
		d.logger.Debug("button notification", "kind", r.Kind.String(), "node", r.NodeID, "button", r.ButtonID)

	default:
		d.logger.Warn("unhandled notification", "kind", r.Kind.String(), "node", r.NodeID)
	}
}

// decode reads the current state of id. A failed payload read still yields
// the descriptive attributes.
func (d *Dispatcher) decode(id ozw.ValueID) *value.Record {
	rec, err := d.codec.Decode(d.lib, id)
	if err != nil {
		d.logger.Warn("decode value", "value", id.Key().String(), "err", err)
	}
	return rec
}

func (d *Dispatcher) nodeInfo(r *NotificationRecord) ozw.NodeInfo {
	info, err := d.lib.NodeInfo(r.HomeID, r.NodeID)
	if err != nil {
		d.logger.Debug("node info", "node", r.NodeID, "err", err)
	}
	return info
}
