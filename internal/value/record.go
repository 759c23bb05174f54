package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"zwave-go-home/internal/ozw"
)

// ErrInvalidValueID is returned for malformed value descriptors.
var ErrInvalidValueID = errors.New("value: invalid value id")

// Record is the generic tagged representation of a value.
type Record struct {
	ValueID   string   `json:"value_id" mapstructure:"value_id"`
	NodeID    uint8    `json:"node_id" mapstructure:"node_id"`
	ClassID   uint8    `json:"class_id" mapstructure:"class_id"`
	Instance  uint8    `json:"instance" mapstructure:"instance"`
	Index     uint8    `json:"index" mapstructure:"index"`
	Type      string   `json:"type" mapstructure:"type"`
	Genre     string   `json:"genre" mapstructure:"genre"`
	Label     string   `json:"label" mapstructure:"label"`
	Units     string   `json:"units" mapstructure:"units"`
	Help      string   `json:"help,omitempty" mapstructure:"help"`
	ReadOnly  bool     `json:"read_only" mapstructure:"read_only"`
	WriteOnly bool     `json:"write_only" mapstructure:"write_only"`
	IsPolled  bool     `json:"is_polled" mapstructure:"is_polled"`
	Min       int32    `json:"min" mapstructure:"min"`
	Max       int32    `json:"max" mapstructure:"max"`
	Values    []string `json:"values,omitempty" mapstructure:"values,omitempty"`
	Value     Value    `json:"value,omitempty" mapstructure:"-"`

	ID ozw.ValueID `json:"-" mapstructure:"-"`
}

// Key returns the registry identity of the record.
func (r *Record) Key() ozw.ValueKey {
	return ozw.ValueKey{NodeID: r.NodeID, CommandClass: r.ClassID, Instance: r.Instance, Index: r.Index}
}

// Fields flattens the record into a map keyed by the wire field names, with
// the payload converted by Native.
func (r *Record) Fields() map[string]any {
	m := make(map[string]any)
	if err := mapstructure.Decode(r, &m); err != nil {
		// Decoding a flat struct into a map cannot fail; keep the identity at least.
		m = map[string]any{"value_id": r.ValueID}
	}
	if r.Value != nil {
		m["value"] = Native(r.Value)
	}
	return m
}

// UnmarshalJSON restores a record written by encoding/json, rebuilding the
// payload from the type name.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := struct {
		*plain
		Value json.RawMessage `json:"value"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Value = nil
	if len(aux.Value) == 0 || bytes.Equal(aux.Value, []byte("null")) {
		return nil
	}
	v, err := valueFromJSON(r.Type, aux.Value, r.Values)
	if err != nil {
		return fmt.Errorf("value %s: %w", r.ValueID, err)
	}
	r.Value = v
	return nil
}

func valueFromJSON(typ string, data json.RawMessage, items []string) (Value, error) {
	unmarshal := func(dst any) error { return json.Unmarshal(data, dst) }
	switch typ {
	case ozw.ValueTypeBool.String():
		var v bool
		err := unmarshal(&v)
		return Bool(v), err
	case ozw.ValueTypeByte.String():
		var v uint8
		err := unmarshal(&v)
		return Byte(v), err
	case ozw.ValueTypeDecimal.String():
		var v string
		err := unmarshal(&v)
		return Decimal(v), err
	case ozw.ValueTypeInt.String():
		var v int32
		err := unmarshal(&v)
		return Int(v), err
	case ozw.ValueTypeShort.String():
		var v int16
		err := unmarshal(&v)
		return Short(v), err
	case ozw.ValueTypeString.String():
		var v string
		err := unmarshal(&v)
		return String(v), err
	case ozw.ValueTypeBitSet.String():
		var v uint32
		err := unmarshal(&v)
		return BitSet(v), err
	case ozw.ValueTypeRaw.String():
		var v []byte
		err := unmarshal(&v)
		return Raw(v), err
	case ozw.ValueTypeList.String():
		var v string
		err := unmarshal(&v)
		return List{Selection: v, Items: items}, err
	case ozw.ValueTypeButton.String():
		return Button{}, nil
	case ozw.ValueTypeSchedule.String():
		return Schedule{}, nil
	}
	return nil, fmt.Errorf("%w: payload for type %q", ErrUnsupported, typ)
}

func newRecord(id ozw.ValueID) *Record {
	return &Record{
		ValueID:  id.Key().String(),
		NodeID:   id.NodeID,
		ClassID:  id.CommandClass,
		Instance: id.Instance,
		Index:    id.Index,
		Type:     id.Type.String(),
		Genre:    id.Genre.String(),
		ID:       id,
	}
}

// ParseValueID parses a "node-class-instance-index" descriptor.
func ParseValueID(s string) (ozw.ValueKey, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 4 {
		return ozw.ValueKey{}, fmt.Errorf("%w: %q", ErrInvalidValueID, s)
	}
	var b [4]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return ozw.ValueKey{}, fmt.Errorf("%w: %q: %v", ErrInvalidValueID, s, err)
		}
		b[i] = uint8(n)
	}
	return ozw.ValueKey{NodeID: b[0], CommandClass: b[1], Instance: b[2], Index: b[3]}, nil
}

// KeyFromFields decodes a value key from a generic map carrying node_id,
// class_id, instance and index. Numbers may arrive as integers, integral
// floats (JSON, Lua) or decimal strings; every field must be present and fit
// in a byte. Anything else is ErrInvalidValueID.
func KeyFromFields(fields map[string]any) (ozw.ValueKey, error) {
	var raw struct {
		NodeID   any `mapstructure:"node_id"`
		ClassID  any `mapstructure:"class_id"`
		Instance any `mapstructure:"instance"`
		Index    any `mapstructure:"index"`
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnset: true,
		Result:     &raw,
	})
	if err != nil {
		return ozw.ValueKey{}, err
	}
	if err := dec.Decode(fields); err != nil {
		return ozw.ValueKey{}, fmt.Errorf("%w: %v", ErrInvalidValueID, err)
	}
	var b [4]uint8
	for i, f := range []struct {
		name string
		v    any
	}{{"node_id", raw.NodeID}, {"class_id", raw.ClassID}, {"instance", raw.Instance}, {"index", raw.Index}} {
		n, err := fieldByte(f.v)
		if err != nil {
			return ozw.ValueKey{}, fmt.Errorf("%w: %s: %v", ErrInvalidValueID, f.name, err)
		}
		b[i] = n
	}
	return ozw.ValueKey{NodeID: b[0], CommandClass: b[1], Instance: b[2], Index: b[3]}, nil
}

func fieldByte(v any) (uint8, error) {
	if s, ok := v.(string); ok {
		n, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			return 0, err
		}
		return uint8(n), nil
	}
	n, ok := toInt64(v)
	if !ok {
		return 0, fmt.Errorf("%v (%T) is not an integer", v, v)
	}
	if n < 0 || n > 255 {
		return 0, fmt.Errorf("%d out of range", n)
	}
	return uint8(n), nil
}
