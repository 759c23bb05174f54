package coordinator

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/mitchellh/mapstructure"

	"zwave-go-home/internal/ozw"
	"zwave-go-home/internal/value"
)

// Event types
const (
	EventConnected         = "connected"
	EventDriverReady       = "driver ready"
	EventDriverFailed      = "driver failed"
	EventDriverReset       = "driver reset"
	EventDriverRemoved     = "driver removed"
	EventNodeAdded         = "node added"
	EventNodeRemoved       = "node removed"
	EventNodeNaming        = "node naming"
	EventNodeAvailable     = "node available"
	EventNodeReady         = "node ready"
	EventNodeEvent         = "node event"
	EventValueAdded        = "value added"
	EventValueChanged      = "value changed"
	EventValueRefreshed    = "value refreshed"
	EventValueRemoved      = "value removed"
	EventSceneEvent        = "scene event"
	EventNotification      = "notification"
	EventScanComplete      = "scan complete"
	EventControllerCommand = "controller command"
	EventScenesList        = "scenes list"
	EventSceneValuesList   = "scene values list"
)

// Event represents a coordinator event.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ConnectedData is the payload of EventConnected.
type ConnectedData struct {
	Version string `json:"version" mapstructure:"version"`
	Path    string `json:"path" mapstructure:"path"`
}

// DriverData is the payload of driver lifecycle events.
type DriverData struct {
	HomeID uint32 `json:"home_id" mapstructure:"home_id"`
}

// NodeData is the payload of events that only name a node.
type NodeData struct {
	NodeID uint8 `json:"node_id" mapstructure:"node_id"`
}

// NodeInfoData carries node metadata for naming, available and ready events.
type NodeInfoData struct {
	NodeID uint8        `json:"node_id" mapstructure:"node_id"`
	Info   ozw.NodeInfo `json:"info" mapstructure:"info"`
}

// ValueData is the payload of value added, changed and refreshed events.
type ValueData struct {
	NodeID  uint8         `json:"node_id" mapstructure:"node_id"`
	ClassID uint8         `json:"class_id" mapstructure:"class_id"`
	Value   *value.Record `json:"value" mapstructure:"-"`
}

// ValueRemovedData identifies a removed value.
type ValueRemovedData struct {
	NodeID   uint8 `json:"node_id" mapstructure:"node_id"`
	ClassID  uint8 `json:"class_id" mapstructure:"class_id"`
	Instance uint8 `json:"instance" mapstructure:"instance"`
	Index    uint8 `json:"index" mapstructure:"index"`
}

// NodeEventData carries a basic-set event sent by a node.
type NodeEventData struct {
	NodeID uint8 `json:"node_id" mapstructure:"node_id"`
	Event  uint8 `json:"event" mapstructure:"event"`
}

// SceneEventData reports a scene activated from a node.
type SceneEventData struct {
	NodeID  uint8 `json:"node_id" mapstructure:"node_id"`
	SceneID uint8 `json:"scene_id" mapstructure:"scene_id"`
}

// NotificationData carries a node status code.
type NotificationData struct {
	NodeID  uint8  `json:"node_id" mapstructure:"node_id"`
	Code    uint8  `json:"code" mapstructure:"code"`
	Message string `json:"message" mapstructure:"message"`
}

// ControllerCommandData reports controller command progress.
type ControllerCommandData struct {
	State     uint8  `json:"state" mapstructure:"state"`
	StateName string `json:"state_name" mapstructure:"state_name"`
	Error     uint8  `json:"error" mapstructure:"error"`
	ErrorName string `json:"error_name" mapstructure:"error_name"`
}

// SceneInfo describes one scene in a scenes list.
type SceneInfo struct {
	SceneID uint8  `json:"sceneid" mapstructure:"sceneid"`
	Label   string `json:"label" mapstructure:"label"`
}

// ScenesListData is the payload of EventScenesList.
type ScenesListData struct {
	Scenes []SceneInfo `json:"scenes" mapstructure:"-"`
}

// SceneValuesData is the payload of EventSceneValuesList.
type SceneValuesData struct {
	SceneID uint8           `json:"scene_id" mapstructure:"scene_id"`
	Values  []*value.Record `json:"values" mapstructure:"-"`
}

// EventFields flattens an event payload into a generic map for scripting
// and message bridges. Nested records are flattened with Record.Fields.
func EventFields(e Event) map[string]any {
	m := make(map[string]any)
	if e.Data == nil {
		return m
	}
	if err := mapstructure.Decode(e.Data, &m); err != nil {
		return map[string]any{"data": e.Data}
	}
	switch d := e.Data.(type) {
	case ValueData:
		if d.Value != nil {
			m["value"] = d.Value.Fields()
		}
	case ScenesListData:
		scenes := make([]any, len(d.Scenes))
		for i, s := range d.Scenes {
			scenes[i] = map[string]any{"sceneid": s.SceneID, "label": s.Label}
		}
		m["scenes"] = scenes
	case SceneValuesData:
		values := make([]any, len(d.Values))
		for i, r := range d.Values {
			values[i] = r.Fields()
		}
		m["values"] = values
	}
	return m
}

// EventHandler is a callback for events.
type EventHandler func(Event)

type subscription struct {
	id        uint64
	eventType string // empty for OnAll
	handler   EventHandler
}

// EventBus delivers coordinator events to subscribers in the order they
// subscribed, on the emitting goroutine.
type EventBus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	logger *slog.Logger
}

// NewEventBus creates a new event bus.
func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{logger: logger}
}

// On registers a handler for one event type. Returns an unsubscribe function.
func (eb *EventBus) On(eventType string, handler EventHandler) func() {
	return eb.subscribe(eventType, handler)
}

// OnAll registers a handler for every event. Returns an unsubscribe function.
func (eb *EventBus) OnAll(handler EventHandler) func() {
	return eb.subscribe("", handler)
}

func (eb *EventBus) subscribe(eventType string, handler EventHandler) func() {
	eb.mu.Lock()
	id := eb.nextID
	eb.nextID++
	eb.subs = append(eb.subs, subscription{id: id, eventType: eventType, handler: handler})
	eb.mu.Unlock()

	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		eb.subs = slices.DeleteFunc(eb.subs, func(s subscription) bool { return s.id == id })
	}
}

// Emit calls every matching handler synchronously. A panicking handler is
// logged and the remaining handlers still run.
func (eb *EventBus) Emit(event Event) {
	eb.mu.RLock()
	matched := make([]EventHandler, 0, len(eb.subs))
	for _, s := range eb.subs {
		if s.eventType == "" || s.eventType == event.Type {
			matched = append(matched, s.handler)
		}
	}
	eb.mu.RUnlock()

	for _, h := range matched {
		eb.deliver(h, event)
	}
}

func (eb *EventBus) deliver(h EventHandler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			eb.logger.Error("event handler panic", "type", event.Type, "panic", r)
		}
	}()
	h(event)
}
