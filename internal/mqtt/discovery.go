//go:build !no_mqtt

package mqtt

import (
	"fmt"
	"strings"

	"zwave-go-home/internal/coordinator"
	"zwave-go-home/internal/ozw"
	"zwave-go-home/internal/value"
)

// discoveryMsg is a Home Assistant MQTT discovery payload.
type discoveryMsg struct {
	Topic   string // e.g. "homeassistant/sensor/zwave_00003039_4/49_1_1/config"
	Payload []byte // JSON, empty means delete
}

// haDevice is the "device" block in HA discovery.
type haDevice struct {
	Identifiers   []string `json:"identifiers"`
	Manufacturer  string   `json:"manufacturer,omitempty"`
	Model         string   `json:"model,omitempty"`
	Name          string   `json:"name"`
	SuggestedArea string   `json:"suggested_area,omitempty"`
}

// haDiscovery is a generic HA discovery payload.
type haDiscovery struct {
	Name              string   `json:"name"`
	UniqueID          string   `json:"unique_id"`
	StateTopic        string   `json:"state_topic,omitempty"`
	CommandTopic      string   `json:"command_topic,omitempty"`
	AvailabilityTopic string   `json:"availability_topic"`
	ValueTemplate     string   `json:"value_template,omitempty"`
	UnitOfMeasurement string   `json:"unit_of_measurement,omitempty"`
	DeviceClass       string   `json:"device_class,omitempty"`
	StateClass        string   `json:"state_class,omitempty"`
	PayloadOn         string   `json:"payload_on,omitempty"`
	PayloadOff        string   `json:"payload_off,omitempty"`
	PayloadPress      string   `json:"payload_press,omitempty"`
	Min               *int32   `json:"min,omitempty"`
	Max               *int32   `json:"max,omitempty"`
	Options           []string `json:"options,omitempty"`
	Device            haDevice `json:"device"`
}

// nodeDisplayName returns a display name for the node.
func nodeDisplayName(n coordinator.NodeSnapshot) string {
	switch {
	case n.Info.Name != "":
		return n.Info.Name
	case n.Info.Manufacturer != "" && n.Info.Product != "":
		return n.Info.Manufacturer + " " + n.Info.Product
	case n.Info.Product != "":
		return n.Info.Product
	}
	return fmt.Sprintf("Node %d", n.NodeID)
}

// nodeIdentifier returns the unique identifier for the HA device registry.
func nodeIdentifier(homeID uint32, nodeID uint8) string {
	return fmt.Sprintf("zwave_%08x_%d", homeID, nodeID)
}

func objectID(r *value.Record) string {
	return fmt.Sprintf("%d_%d_%d", r.ClassID, r.Instance, r.Index)
}

// component picks the HA entity kind for a value, or "" when the value
// is not exposed.
func component(r *value.Record) string {
	if r.Genre != "user" && r.Genre != "basic" {
		return ""
	}
	switch r.Type {
	case "bool":
		if r.ReadOnly {
			return "binary_sensor"
		}
		return "switch"
	case "byte", "short", "int", "decimal":
		if r.ReadOnly {
			return "sensor"
		}
		return "number"
	case "list":
		if r.ReadOnly {
			return "sensor"
		}
		return "select"
	case "string", "bitset":
		return "sensor"
	case "button":
		return "button"
	}
	return ""
}

// deviceClass maps well-known labels and units to HA device classes.
func deviceClass(r *value.Record) string {
	label := strings.ToLower(r.Label)
	switch {
	case strings.Contains(label, "temperature"):
		return "temperature"
	case strings.Contains(label, "humidity"):
		return "humidity"
	case strings.Contains(label, "battery"):
		return "battery"
	case strings.Contains(label, "luminance"), strings.Contains(label, "illuminance"):
		return "illuminance"
	case r.Units == "W":
		return "power"
	case r.Units == "kWh":
		return "energy"
	}
	return ""
}

// entityName is the value label, or "<CLASS> <index>" for unlabelled values.
func entityName(r *value.Record) string {
	if r.Label != "" {
		return r.Label
	}
	return fmt.Sprintf("%s %d", ozw.ClassName(r.ClassID), r.Index)
}

// buildDiscovery generates HA discovery messages for every exposed value
// of a node.
func buildDiscovery(n coordinator.NodeSnapshot, prefix string) []discoveryMsg {
	id := nodeIdentifier(n.HomeID, n.NodeID)
	haDev := haDevice{
		Identifiers:   []string{id},
		Manufacturer:  n.Info.Manufacturer,
		Model:         n.Info.Product,
		Name:          nodeDisplayName(n),
		SuggestedArea: n.Info.Location,
	}
	avail := availabilityTopic(prefix, n.NodeID)

	var msgs []discoveryMsg
	for _, r := range n.Values {
		if r == nil {
			continue
		}
		comp := component(r)
		if comp == "" {
			continue
		}
		state := valueTopic(prefix, r.Key())
		payload := haDiscovery{
			Name:              entityName(r),
			UniqueID:          id + "_" + objectID(r),
			AvailabilityTopic: avail,
			Device:            haDev,
		}
		if comp != "button" {
			payload.StateTopic = state
			payload.ValueTemplate = "{{ value_json.value }}"
		}
		if !r.ReadOnly {
			payload.CommandTopic = state + "/set"
		}
		switch comp {
		case "switch", "binary_sensor":
			payload.ValueTemplate = "{{ 'ON' if value_json.value else 'OFF' }}"
			payload.PayloadOn = "ON"
			payload.PayloadOff = "OFF"
		case "sensor":
			payload.UnitOfMeasurement = r.Units
			payload.DeviceClass = deviceClass(r)
			if r.Type != "string" && r.Type != "list" && r.Type != "bitset" {
				payload.StateClass = "measurement"
			}
		case "number":
			payload.UnitOfMeasurement = r.Units
			if r.Min != 0 || r.Max != 0 {
				lo, hi := r.Min, r.Max
				payload.Min, payload.Max = &lo, &hi
			}
		case "select":
			payload.Options = r.Values
		case "button":
			payload.PayloadPress = "PRESS"
		}
		msgs = append(msgs, discoveryMsg{
			Topic:   fmt.Sprintf("homeassistant/%s/%s/%s/config", comp, id, objectID(r)),
			Payload: mustJSON(payload),
		})
	}
	return msgs
}

// buildRemoveDiscovery generates empty retained messages for previously
// published discovery topics.
func buildRemoveDiscovery(topics []string) []discoveryMsg {
	msgs := make([]discoveryMsg, 0, len(topics))
	for _, t := range topics {
		msgs = append(msgs, discoveryMsg{Topic: t}) // empty retained = delete
	}
	return msgs
}
