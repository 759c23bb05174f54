// Package value converts between the device library's typed values and the
// generic tagged records handed to callers.
package value

import (
	"encoding/json"

	"zwave-go-home/internal/ozw"
)

// Value is a decoded payload. The set of implementations is closed and
// mirrors ozw.ValueType one-to-one.
type Value interface {
	Type() ozw.ValueType
	isValue()
}

type (
	Bool    bool
	Byte    uint8
	Decimal string // kept as text so precision survives the round trip
	Int     int32
	Short   int16
	String  string
	BitSet  uint32
	Raw     []byte
)

// List is a selection out of a fixed set of items.
type List struct {
	Selection string
	Items     []string
}

// Button is a write-only trigger without a payload.
type Button struct{}

// Schedule is a climate-control schedule. Its payload is not decoded.
type Schedule struct{}

func (Bool) Type() ozw.ValueType     { return ozw.ValueTypeBool }
func (Byte) Type() ozw.ValueType     { return ozw.ValueTypeByte }
func (Decimal) Type() ozw.ValueType  { return ozw.ValueTypeDecimal }
func (Int) Type() ozw.ValueType      { return ozw.ValueTypeInt }
func (Short) Type() ozw.ValueType    { return ozw.ValueTypeShort }
func (String) Type() ozw.ValueType   { return ozw.ValueTypeString }
func (BitSet) Type() ozw.ValueType   { return ozw.ValueTypeBitSet }
func (Raw) Type() ozw.ValueType      { return ozw.ValueTypeRaw }
func (List) Type() ozw.ValueType     { return ozw.ValueTypeList }
func (Button) Type() ozw.ValueType   { return ozw.ValueTypeButton }
func (Schedule) Type() ozw.ValueType { return ozw.ValueTypeSchedule }

func (Bool) isValue()     {}
func (Byte) isValue()     {}
func (Decimal) isValue()  {}
func (Int) isValue()      {}
func (Short) isValue()    {}
func (String) isValue()   {}
func (BitSet) isValue()   {}
func (Raw) isValue()      {}
func (List) isValue()     {}
func (Button) isValue()   {}
func (Schedule) isValue() {}

// MarshalJSON renders a list as its current selection; the items travel
// separately in Record.Values.
func (l List) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Selection)
}

// Native returns the payload as a plain Go value (bool, uint8, string,
// int32, int16, uint32 or []byte). Button, Schedule and nil yield nil.
func Native(v Value) any {
	switch v := v.(type) {
	case Bool:
		return bool(v)
	case Byte:
		return uint8(v)
	case Decimal:
		return string(v)
	case Int:
		return int32(v)
	case Short:
		return int16(v)
	case String:
		return string(v)
	case BitSet:
		return uint32(v)
	case Raw:
		return []byte(v)
	case List:
		return v.Selection
	}
	return nil
}
