//go:build !no_mqtt

package mqtt

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"zwave-go-home/internal/coordinator"
	"zwave-go-home/internal/ozw"
	"zwave-go-home/internal/value"
)

const testHome = 0x3039

type fakeToken struct{}

func (fakeToken) Wait() bool                     { return true }
func (fakeToken) WaitTimeout(time.Duration) bool { return true }
func (fakeToken) Done() <-chan struct{}          { c := make(chan struct{}); close(c); return c }
func (fakeToken) Error() error                   { return nil }

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type published struct {
	payload  []byte
	retained bool
}

// fakeClient records publishes and subscriptions in memory.
type fakeClient struct {
	mu       sync.Mutex
	messages map[string]published
	subs     map[string]pahomqtt.MessageHandler
}

func newFakeClient() *fakeClient {
	return &fakeClient{messages: make(map[string]published), subs: make(map[string]pahomqtt.MessageHandler)}
}

func (c *fakeClient) IsConnected() bool       { return true }
func (c *fakeClient) IsConnectionOpen() bool  { return true }
func (c *fakeClient) Connect() pahomqtt.Token { return fakeToken{} }
func (c *fakeClient) Disconnect(uint)         {}

func (c *fakeClient) Publish(topic string, _ byte, retained bool, payload interface{}) pahomqtt.Token {
	b, _ := payload.([]byte)
	c.mu.Lock()
	c.messages[topic] = published{payload: b, retained: retained}
	c.mu.Unlock()
	return fakeToken{}
}

func (c *fakeClient) Subscribe(topic string, _ byte, cb pahomqtt.MessageHandler) pahomqtt.Token {
	c.mu.Lock()
	c.subs[topic] = cb
	c.mu.Unlock()
	return fakeToken{}
}

func (c *fakeClient) SubscribeMultiple(filters map[string]byte, cb pahomqtt.MessageHandler) pahomqtt.Token {
	for f := range filters {
		c.Subscribe(f, 1, cb)
	}
	return fakeToken{}
}

func (c *fakeClient) Unsubscribe(...string) pahomqtt.Token     { return fakeToken{} }
func (c *fakeClient) AddRoute(string, pahomqtt.MessageHandler) {}
func (c *fakeClient) OptionsReader() pahomqtt.ClientOptionsReader {
	return pahomqtt.ClientOptionsReader{}
}

func (c *fakeClient) get(topic string) (published, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.messages[topic]
	return p, ok
}

func (c *fakeClient) deliver(filter, topic string, payload []byte) {
	c.mu.Lock()
	cb := c.subs[filter]
	c.mu.Unlock()
	cb(c, fakeMessage{topic: topic, payload: payload})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// startBridge runs a bridge over a demo sim network.
func startBridge(t *testing.T) (*Bridge, *fakeClient, *coordinator.Coordinator) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sim := ozw.NewSim(testHome, logger, ozw.DemoNetwork()...)
	coord := coordinator.New(sim, nil, coordinator.NewEventBus(logger), coordinator.Config{}, coordinator.DriverConfig{Type: "sim"}, logger)
	if err := coord.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		coord.Stop()
		sim.Close()
	})

	client := newFakeClient()
	b := newBridge(coord, Config{TopicPrefix: "zwave", Discovery: true}, logger)
	b.client = client
	b.Start()
	b.onConnect()

	if err := coord.Connect(context.Background(), "/dev/ttyACM0"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "node 4 discovery", func() bool {
		_, ok := client.get("homeassistant/sensor/zwave_00003039_4/49_1_1/config")
		return ok
	})
	return b, client, coord
}

func TestBridgePublishesValueState(t *testing.T) {
	_, client, _ := startBridge(t)

	var msg published
	waitFor(t, "temperature state", func() bool {
		var ok bool
		msg, ok = client.get("zwave/4/49/1/1")
		return ok
	})
	if !msg.retained {
		t.Error("state should be retained")
	}
	var state map[string]any
	if err := json.Unmarshal(msg.payload, &state); err != nil {
		t.Fatal(err)
	}
	if state["value"] != "21.50" || state["units"] != "C" {
		t.Errorf("state = %v", state)
	}
}

func TestBridgeSetCommand(t *testing.T) {
	_, client, coord := startBridge(t)

	key := ozw.ValueKey{NodeID: 2, CommandClass: ozw.ClassSwitchBinary, Instance: 1, Index: 0}
	client.deliver("zwave/+/+/+/+/set", "zwave/2/37/1/0/set", []byte("ON"))

	waitFor(t, "switch on", func() bool {
		rec, err := coord.GetValue(key)
		return err == nil && rec.Value == value.Bool(true)
	})
	waitFor(t, "published switch state", func() bool {
		msg, ok := client.get("zwave/2/37/1/0")
		return ok && string(msg.payload) != "" && json.Valid(msg.payload) && containsTrue(msg.payload)
	})
}

func containsTrue(payload []byte) bool {
	var state map[string]any
	if err := json.Unmarshal(payload, &state); err != nil {
		return false
	}
	return state["value"] == true
}

func TestBridgeDiscoveryAndRemoval(t *testing.T) {
	b, client, _ := startBridge(t)

	topic := "homeassistant/sensor/zwave_00003039_4/49_1_1/config"
	msg, ok := client.get(topic)
	if !ok {
		t.Fatalf("discovery %s not published", topic)
	}
	var payload haDiscovery
	if err := json.Unmarshal(msg.payload, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.DeviceClass != "temperature" || payload.StateTopic != "zwave/4/49/1/1" {
		t.Errorf("payload = %+v", payload)
	}

	b.handleEvent(coordinator.Event{Type: coordinator.EventNodeRemoved, Data: coordinator.NodeData{NodeID: 4}})
	msg, _ = client.get(topic)
	if len(msg.payload) != 0 {
		t.Errorf("discovery not cleared: %q", msg.payload)
	}
	if avail, _ := client.get("zwave/4/availability"); string(avail.payload) != "offline" {
		t.Errorf("availability = %q", avail.payload)
	}
}

func TestBridgeControllerProgress(t *testing.T) {
	b, client, _ := startBridge(t)

	b.handleEvent(coordinator.Event{Type: coordinator.EventControllerCommand, Data: coordinator.ControllerCommandData{State: 1, StateName: "Starting"}})
	msg, ok := client.get("zwave/bridge/controller")
	if !ok || msg.retained {
		t.Fatalf("controller progress = %+v, %v", msg, ok)
	}
}

func TestDiscoveryComponents(t *testing.T) {
	n := coordinator.NodeSnapshot{
		NodeID: 3,
		HomeID: testHome,
		Info:   ozw.NodeInfo{Manufacturer: "Fibargroup", Product: "FGD212 Dimmer 2"},
		Values: []*value.Record{
			{NodeID: 3, ClassID: 0x26, Instance: 1, Index: 0, Type: "byte", Genre: "user", Label: "Level", Max: 99},
			{NodeID: 3, ClassID: 0x26, Instance: 1, Index: 1, Type: "button", Genre: "user", Label: "Bright", WriteOnly: true},
			{NodeID: 3, ClassID: 0x25, Instance: 1, Index: 0, Type: "bool", Genre: "user", Label: "Switch"},
			{NodeID: 3, ClassID: 0x30, Instance: 1, Index: 0, Type: "bool", Genre: "user", Label: "Sensor", ReadOnly: true},
			{NodeID: 3, ClassID: 0x40, Instance: 1, Index: 0, Type: "list", Genre: "user", Label: "Mode", Values: []string{"Off", "Heat"}},
			{NodeID: 3, ClassID: 0x70, Instance: 1, Index: 1, Type: "byte", Genre: "config", Label: "Minimum brightness level"},
		},
	}

	msgs := buildDiscovery(n, "zwave")
	topics := extractTopics(msgs)
	for _, want := range []string{
		"homeassistant/number/zwave_00003039_3/38_1_0/config",
		"homeassistant/button/zwave_00003039_3/38_1_1/config",
		"homeassistant/switch/zwave_00003039_3/37_1_0/config",
		"homeassistant/binary_sensor/zwave_00003039_3/48_1_0/config",
		"homeassistant/select/zwave_00003039_3/64_1_0/config",
	} {
		if !topics[want] {
			t.Errorf("missing %s", want)
		}
	}
	if len(msgs) != 5 {
		t.Errorf("discovery count = %d, want 5 (config values are not exposed)", len(msgs))
	}

	var sw haDiscovery
	for _, m := range msgs {
		if m.Topic == "homeassistant/switch/zwave_00003039_3/37_1_0/config" {
			if err := json.Unmarshal(m.Payload, &sw); err != nil {
				t.Fatal(err)
			}
		}
	}
	if sw.CommandTopic != "zwave/3/37/1/0/set" {
		t.Errorf("command_topic = %q", sw.CommandTopic)
	}
	if sw.Device.Name != "Fibargroup FGD212 Dimmer 2" {
		t.Errorf("device name = %q", sw.Device.Name)
	}
	if sw.AvailabilityTopic != "zwave/3/availability" {
		t.Errorf("availability_topic = %q", sw.AvailabilityTopic)
	}
}

func TestNodeDisplayName(t *testing.T) {
	tests := []struct {
		name string
		info ozw.NodeInfo
		want string
	}{
		{"node name", ozw.NodeInfo{Name: "Kitchen Light", Manufacturer: "Aeotec", Product: "Bulb"}, "Kitchen Light"},
		{"manufacturer and product", ozw.NodeInfo{Manufacturer: "Aeotec", Product: "Bulb"}, "Aeotec Bulb"},
		{"product only", ozw.NodeInfo{Product: "Bulb"}, "Bulb"},
		{"id fallback", ozw.NodeInfo{}, "Node 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nodeDisplayName(coordinator.NodeSnapshot{NodeID: 7, Info: tt.info})
			if got != tt.want {
				t.Errorf("nodeDisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValueTopicRoundTrip(t *testing.T) {
	k := ozw.ValueKey{NodeID: 4, CommandClass: 0x31, Instance: 1, Index: 5}
	topic := valueTopic("zwave", k)
	if topic != "zwave/4/49/1/5" {
		t.Fatalf("topic = %q", topic)
	}
	got, ok := parseValueTopic("zwave", topic)
	if !ok || got != k {
		t.Errorf("parse = %+v, %v", got, ok)
	}

	for _, bad := range []string{"other/4/49/1/5", "zwave/4/49/1", "zwave/4/49/1/300", "zwave/a/b/c/d"} {
		if _, ok := parseValueTopic("zwave", bad); ok {
			t.Errorf("parseValueTopic(%q) accepted", bad)
		}
	}
}

func TestParsePayload(t *testing.T) {
	tests := []struct {
		payload string
		want    any
	}{
		{"ON", true},
		{"off", false},
		{"PRESS", true},
		{"true", true},
		{"42", float64(42)},
		{` "21.5" `, "21.5"},
		{"Heat", "Heat"},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			if got := parsePayload([]byte(tt.payload)); got != tt.want {
				t.Errorf("parsePayload(%q) = %#v, want %#v", tt.payload, got, tt.want)
			}
		})
	}

	raw, ok := parsePayload([]byte("[49, 50]")).([]any)
	if !ok || len(raw) != 2 {
		t.Errorf("array payload = %#v", raw)
	}
}

func TestRemoveDiscovery(t *testing.T) {
	msgs := buildRemoveDiscovery([]string{"homeassistant/switch/x/1/config", "homeassistant/sensor/x/2/config"})
	if len(msgs) != 2 {
		t.Fatalf("removal messages = %d", len(msgs))
	}
	for _, m := range msgs {
		if m.Payload != nil {
			t.Errorf("removal message should have nil payload, got %q for %s", m.Payload, m.Topic)
		}
	}
}

func TestMustJSON(t *testing.T) {
	result := mustJSON(map[string]string{"hello": "world"})
	var parsed map[string]string
	if err := json.Unmarshal(result, &parsed); err != nil {
		t.Fatalf("mustJSON output not valid JSON: %v", err)
	}
	if parsed["hello"] != "world" {
		t.Errorf("parsed value = %q", parsed["hello"])
	}
}

func extractTopics(msgs []discoveryMsg) map[string]bool {
	topics := make(map[string]bool)
	for _, m := range msgs {
		topics[m.Topic] = true
	}
	return topics
}

func TestEntityName(t *testing.T) {
	if got := entityName(&value.Record{Label: "Power", ClassID: 0x32}); got != "Power" {
		t.Errorf("labelled = %q", got)
	}
	if got := entityName(&value.Record{ClassID: 0x80, Index: 0}); got != "BATTERY 0" {
		t.Errorf("unlabelled = %q", got)
	}
}
