//go:build !no_mqtt

package mqtt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"zwave-go-home/internal/coordinator"
	"zwave-go-home/internal/ozw"
	"zwave-go-home/internal/value"
)

// Config holds MQTT bridge configuration.
type Config struct {
	Broker      string
	Username    string
	Password    string
	TopicPrefix string
	ClientID    string
	Discovery   bool
}

// Bridge connects the Z-Wave coordinator to MQTT with HA autodiscovery.
type Bridge struct {
	client    pahomqtt.Client
	coord     *coordinator.Coordinator
	prefix    string
	discovery bool
	logger    *slog.Logger
	unsub     func()

	// Discovery topics published per node, cleared when the node leaves.
	mu         sync.Mutex
	discovered map[uint8][]string
}

// NewBridge creates and connects an MQTT bridge.
func NewBridge(coord *coordinator.Coordinator, cfg Config, logger *slog.Logger) (*Bridge, error) {
	b := newBridge(coord, cfg, logger)

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "zwave-go-home"
	}
	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(bridgeStateTopic(b.prefix), "offline", 1, true).
		SetOnConnectHandler(func(_ pahomqtt.Client) {
			b.logger.Info("MQTT connected")
			b.onConnect()
		}).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			b.logger.Warn("MQTT connection lost", "err", err)
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	b.client = client
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return b, nil
}

func newBridge(coord *coordinator.Coordinator, cfg Config, logger *slog.Logger) *Bridge {
	prefix := strings.TrimSuffix(cfg.TopicPrefix, "/")
	if prefix == "" {
		prefix = "zwave"
	}
	return &Bridge{
		coord:      coord,
		prefix:     prefix,
		discovery:  cfg.Discovery,
		logger:     logger.With("component", "mqtt"),
		discovered: make(map[uint8][]string),
	}
}

// Start subscribes to coordinator events and begins MQTT publishing.
func (b *Bridge) Start() {
	b.unsub = b.coord.Events().OnAll(b.handleEvent)
	b.logger.Info("MQTT bridge started", "prefix", b.prefix)
}

// Stop publishes offline state, unsubscribes, and disconnects.
func (b *Bridge) Stop() {
	if b.unsub != nil {
		b.unsub()
	}
	b.publish(bridgeStateTopic(b.prefix), []byte("offline"), true)
	b.client.Disconnect(1000)
	b.logger.Info("MQTT bridge stopped")
}

// onConnect runs after every (re)connect.
func (b *Bridge) onConnect() {
	b.publish(bridgeStateTopic(b.prefix), []byte("online"), true)
	b.subscribeCommands()
	for _, n := range b.coord.Nodes() {
		b.publishNode(n)
	}
}

func (b *Bridge) subscribeCommands() {
	b.client.Subscribe(b.prefix+"/+/+/+/+/set", 1, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		b.handleSet(msg.Topic(), msg.Payload())
	})
	b.client.Subscribe(b.prefix+"/scene/+/activate", 1, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		b.handleSceneActivate(msg.Topic())
	})
}

func (b *Bridge) handleEvent(event coordinator.Event) {
	switch d := event.Data.(type) {
	case coordinator.ValueData:
		if d.Value != nil {
			b.publishValue(d.Value)
		}
	case coordinator.ValueRemovedData:
		key := ozw.ValueKey{NodeID: d.NodeID, CommandClass: d.ClassID, Instance: d.Instance, Index: d.Index}
		b.publish(valueTopic(b.prefix, key), nil, true)
	case coordinator.NodeInfoData:
		if event.Type == coordinator.EventNodeReady {
			b.publish(availabilityTopic(b.prefix, d.NodeID), []byte("online"), true)
			if n, err := b.coord.Node(d.NodeID); err == nil {
				b.publishDiscovery(n)
			}
		}
	case coordinator.NodeData:
		if event.Type == coordinator.EventNodeRemoved {
			b.removeNode(d.NodeID)
		}
	case coordinator.NotificationData:
		switch ozw.NotificationCode(d.Code) {
		case ozw.CodeDead:
			b.publish(availabilityTopic(b.prefix, d.NodeID), []byte("offline"), true)
		case ozw.CodeAlive, ozw.CodeAwake:
			b.publish(availabilityTopic(b.prefix, d.NodeID), []byte("online"), true)
		}
	case coordinator.ControllerCommandData:
		b.publish(b.prefix+"/bridge/controller", mustJSON(d), false)
	case coordinator.NodeEventData, coordinator.SceneEventData:
		b.publish(b.prefix+"/bridge/event", mustJSON(map[string]any{"type": event.Type, "data": d}), false)
	}
}

// publishNode publishes the state of every value of n and its discovery.
func (b *Bridge) publishNode(n coordinator.NodeSnapshot) {
	for _, r := range n.Values {
		if r != nil {
			b.publishValue(r)
		}
	}
	b.publishDiscovery(n)
}

func (b *Bridge) publishValue(r *value.Record) {
	if r.Value == nil {
		return
	}
	b.publish(valueTopic(b.prefix, r.Key()), statePayload(r), true)
}

func (b *Bridge) publishDiscovery(n coordinator.NodeSnapshot) {
	if !b.discovery {
		return
	}
	msgs := buildDiscovery(n, b.prefix)
	topics := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		b.publish(msg.Topic, msg.Payload, true)
		topics = append(topics, msg.Topic)
	}
	b.mu.Lock()
	b.discovered[n.NodeID] = topics
	b.mu.Unlock()
	b.logger.Info("published HA discovery", "node", n.NodeID, "name", nodeDisplayName(n), "entities", len(topics))
}

func (b *Bridge) removeNode(nodeID uint8) {
	b.mu.Lock()
	topics := b.discovered[nodeID]
	delete(b.discovered, nodeID)
	b.mu.Unlock()

	for _, msg := range buildRemoveDiscovery(topics) {
		b.publish(msg.Topic, msg.Payload, true)
	}
	b.publish(availabilityTopic(b.prefix, nodeID), []byte("offline"), true)
}

func (b *Bridge) handleSet(topic string, payload []byte) {
	key, ok := parseValueTopic(b.prefix, strings.TrimSuffix(topic, "/set"))
	if !ok {
		b.logger.Warn("invalid set topic", "topic", topic)
		return
	}
	input := parsePayload(payload)
	if err := b.coord.SetValue(key, input); err != nil {
		b.logger.Warn("set value failed", "value", key.String(), "err", err)
	}
}

func (b *Bridge) handleSceneActivate(topic string) {
	parts := strings.Split(strings.TrimPrefix(topic, b.prefix+"/"), "/")
	if len(parts) != 3 {
		return
	}
	id, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		b.logger.Warn("invalid scene topic", "topic", topic)
		return
	}
	if err := b.coord.ActivateScene(uint8(id)); err != nil {
		b.logger.Warn("activate scene failed", "scene", id, "err", err)
	}
}

func (b *Bridge) publish(topic string, payload []byte, retained bool) {
	token := b.client.Publish(topic, 1, retained, payload)
	go func() {
		if !token.WaitTimeout(5 * time.Second) {
			b.logger.Warn("MQTT publish timeout", "topic", topic)
		} else if err := token.Error(); err != nil {
			b.logger.Warn("MQTT publish error", "topic", topic, "err", err)
		}
	}()
}

func bridgeStateTopic(prefix string) string {
	return prefix + "/bridge/state"
}

func availabilityTopic(prefix string, nodeID uint8) string {
	return fmt.Sprintf("%s/%d/availability", prefix, nodeID)
}

// valueTopic returns "<prefix>/<node>/<class>/<instance>/<index>".
func valueTopic(prefix string, k ozw.ValueKey) string {
	return fmt.Sprintf("%s/%d/%d/%d/%d", prefix, k.NodeID, k.CommandClass, k.Instance, k.Index)
}

func parseValueTopic(prefix, topic string) (ozw.ValueKey, bool) {
	rest, ok := strings.CutPrefix(topic, prefix+"/")
	if !ok {
		return ozw.ValueKey{}, false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 4 {
		return ozw.ValueKey{}, false
	}
	var b [4]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return ozw.ValueKey{}, false
		}
		b[i] = uint8(n)
	}
	return ozw.ValueKey{NodeID: b[0], CommandClass: b[1], Instance: b[2], Index: b[3]}, true
}

// statePayload is the retained JSON state of one value.
func statePayload(r *value.Record) []byte {
	return mustJSON(map[string]any{
		"value":  value.Native(r.Value),
		"label":  r.Label,
		"units":  r.Units,
		"type":   r.Type,
		"polled": r.IsPolled,
	})
}

// parsePayload turns a command payload into codec input. ON/OFF/PRESS map
// to booleans, JSON scalars and arrays are decoded, anything else is taken
// as a plain string.
func parsePayload(payload []byte) any {
	s := string(bytes.TrimSpace(payload))
	switch strings.ToUpper(s) {
	case "ON", "PRESS":
		return true
	case "OFF", "RELEASE":
		return false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

func mustJSON(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
