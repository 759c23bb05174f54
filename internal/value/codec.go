package value

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"zwave-go-home/internal/ozw"
)

// Caller input errors.
var (
	ErrTypeMismatch     = errors.New("value: input does not match value type")
	ErrOutOfRange       = errors.New("value: input out of range")
	ErrInvalidSelection = errors.New("value: not a list item")
	ErrUnsupported      = errors.New("value: operation not supported for type")
)

// Reader is the part of the library needed to decode a value.
type Reader interface {
	ValueLabel(id ozw.ValueID) string
	ValueUnits(id ozw.ValueID) string
	ValueHelp(id ozw.ValueID) string
	ValueMin(id ozw.ValueID) int32
	ValueMax(id ozw.ValueID) int32
	IsValueReadOnly(id ozw.ValueID) bool
	IsValueWriteOnly(id ozw.ValueID) bool
	IsValuePolled(id ozw.ValueID) bool

	ValueAsBool(id ozw.ValueID) (bool, error)
	ValueAsByte(id ozw.ValueID) (uint8, error)
	ValueAsDecimal(id ozw.ValueID) (string, error)
	ValueAsInt(id ozw.ValueID) (int32, error)
	ValueAsShort(id ozw.ValueID) (int16, error)
	ValueAsString(id ozw.ValueID) (string, error)
	ValueAsBitSet(id ozw.ValueID) (uint32, error)
	ValueAsRaw(id ozw.ValueID) ([]byte, error)
	ValueListSelection(id ozw.ValueID) (string, error)
	ValueListItems(id ozw.ValueID) ([]string, error)
}

// Writer is the part of the library needed to encode a value.
type Writer interface {
	ValueListItems(id ozw.ValueID) ([]string, error)

	SetValueBool(id ozw.ValueID, v bool) error
	SetValueByte(id ozw.ValueID, v uint8) error
	SetValueDecimal(id ozw.ValueID, v string) error
	SetValueInt(id ozw.ValueID, v int32) error
	SetValueShort(id ozw.ValueID, v int16) error
	SetValueString(id ozw.ValueID, v string) error
	SetValueBitSet(id ozw.ValueID, v uint32) error
	SetValueRaw(id ozw.ValueID, v []byte) error
	SetValueListSelection(id ozw.ValueID, v string) error
	PressButton(id ozw.ValueID) error
	ReleaseButton(id ozw.ValueID) error
}

// SceneReader reads values stored in a scene.
type SceneReader interface {
	Reader
	SceneValueAsBool(sceneID uint8, id ozw.ValueID) (bool, error)
	SceneValueAsByte(sceneID uint8, id ozw.ValueID) (uint8, error)
	SceneValueAsDecimal(sceneID uint8, id ozw.ValueID) (string, error)
	SceneValueAsInt(sceneID uint8, id ozw.ValueID) (int32, error)
	SceneValueAsShort(sceneID uint8, id ozw.ValueID) (int16, error)
	SceneValueAsString(sceneID uint8, id ozw.ValueID) (string, error)
}

// SceneWriter stores values in a scene.
type SceneWriter interface {
	AddSceneValueBool(sceneID uint8, id ozw.ValueID, v bool) error
	AddSceneValueByte(sceneID uint8, id ozw.ValueID, v uint8) error
	AddSceneValueDecimal(sceneID uint8, id ozw.ValueID, v string) error
	AddSceneValueInt(sceneID uint8, id ozw.ValueID, v int32) error
	AddSceneValueShort(sceneID uint8, id ozw.ValueID, v int16) error
	AddSceneValueString(sceneID uint8, id ozw.ValueID, v string) error
	AddSceneValueListSelection(sceneID uint8, id ozw.ValueID, v string) error
}

// Codec translates between library values and records. Unknown value types
// are reported on the logger.
type Codec struct {
	logger *slog.Logger
}

// NewCodec creates a codec that reports diagnostics on logger.
func NewCodec(logger *slog.Logger) *Codec {
	return &Codec{logger: logger.With("component", "codec")}
}

func describe(lib Reader, id ozw.ValueID) *Record {
	r := newRecord(id)
	r.Label = lib.ValueLabel(id)
	r.Units = lib.ValueUnits(id)
	r.Help = lib.ValueHelp(id)
	r.ReadOnly = lib.IsValueReadOnly(id)
	r.WriteOnly = lib.IsValueWriteOnly(id)
	r.IsPolled = lib.IsValuePolled(id)
	r.Min = lib.ValueMin(id)
	r.Max = lib.ValueMax(id)
	return r
}

// Decode reads every descriptive attribute of id and its current payload.
// The returned record is never nil: when the payload read fails the record
// carries the attributes only, alongside the error.
func (c *Codec) Decode(lib Reader, id ozw.ValueID) (*Record, error) {
	r := describe(lib, id)
	v, err := c.read(lib, id)
	if err != nil {
		return r, fmt.Errorf("decode %s: %w", r.ValueID, err)
	}
	r.Value = v
	if l, ok := v.(List); ok {
		r.Values = l.Items
	}
	return r, nil
}

func (c *Codec) read(lib Reader, id ozw.ValueID) (Value, error) {
	switch id.Type {
	case ozw.ValueTypeBool:
		v, err := lib.ValueAsBool(id)
		return Bool(v), err
	case ozw.ValueTypeByte:
		v, err := lib.ValueAsByte(id)
		return Byte(v), err
	case ozw.ValueTypeDecimal:
		v, err := lib.ValueAsDecimal(id)
		return Decimal(v), err
	case ozw.ValueTypeInt:
		v, err := lib.ValueAsInt(id)
		return Int(v), err
	case ozw.ValueTypeShort:
		v, err := lib.ValueAsShort(id)
		return Short(v), err
	case ozw.ValueTypeString:
		v, err := lib.ValueAsString(id)
		return String(v), err
	case ozw.ValueTypeBitSet:
		v, err := lib.ValueAsBitSet(id)
		return BitSet(v), err
	case ozw.ValueTypeRaw:
		v, err := lib.ValueAsRaw(id)
		if err != nil {
			return nil, err
		}
		return Raw(append([]byte(nil), v...)), nil
	case ozw.ValueTypeList:
		items, err := lib.ValueListItems(id)
		if err != nil {
			return nil, err
		}
		sel, err := lib.ValueListSelection(id)
		if err != nil {
			return nil, err
		}
		return List{Selection: sel, Items: items}, nil
	case ozw.ValueTypeButton:
		return nil, nil
	case ozw.ValueTypeSchedule:
		return nil, nil
	}
	c.logger.Warn("unsupported value type", "value_id", id.String(), "type", fmt.Sprintf("0x%x", uint8(id.Type)))
	return nil, nil
}

func mismatch(id ozw.ValueID, input any) error {
	return fmt.Errorf("%w: %s is %s, got %T", ErrTypeMismatch, id, id.Type, input)
}

func rangeErr(id ozw.ValueID, n int64) error {
	return fmt.Errorf("%w: %d for %s value %s", ErrOutOfRange, n, id.Type, id)
}

// intIn coerces input to an integer within [lo, hi].
func intIn(id ozw.ValueID, input any, lo, hi int64) (int64, error) {
	n, ok := toInt64(input)
	if !ok {
		return 0, mismatch(id, input)
	}
	if !inRange(n, lo, hi) {
		return 0, rangeErr(id, n)
	}
	return n, nil
}

// Encode writes input through the setter matching the declared type of id.
// A mismatched input shape is rejected before the library is touched.
func (c *Codec) Encode(lib Writer, id ozw.ValueID, input any) error {
	switch id.Type {
	case ozw.ValueTypeBool:
		b, ok := input.(bool)
		if !ok {
			return mismatch(id, input)
		}
		return lib.SetValueBool(id, b)
	case ozw.ValueTypeByte:
		n, err := intIn(id, input, 0, math.MaxUint8)
		if err != nil {
			return err
		}
		return lib.SetValueByte(id, uint8(n))
	case ozw.ValueTypeDecimal:
		s, ok := toDecimal(input)
		if !ok {
			return mismatch(id, input)
		}
		return lib.SetValueDecimal(id, s)
	case ozw.ValueTypeInt:
		n, err := intIn(id, input, math.MinInt32, math.MaxInt32)
		if err != nil {
			return err
		}
		return lib.SetValueInt(id, int32(n))
	case ozw.ValueTypeShort:
		n, err := intIn(id, input, math.MinInt16, math.MaxInt16)
		if err != nil {
			return err
		}
		return lib.SetValueShort(id, int16(n))
	case ozw.ValueTypeString:
		s, ok := input.(string)
		if !ok {
			return mismatch(id, input)
		}
		return lib.SetValueString(id, s)
	case ozw.ValueTypeBitSet:
		n, err := intIn(id, input, 0, math.MaxUint32)
		if err != nil {
			return err
		}
		return lib.SetValueBitSet(id, uint32(n))
	case ozw.ValueTypeRaw:
		b, ok := toBytes(input)
		if !ok {
			return mismatch(id, input)
		}
		return lib.SetValueRaw(id, b)
	case ozw.ValueTypeList:
		s, ok := input.(string)
		if !ok {
			return mismatch(id, input)
		}
		items, err := lib.ValueListItems(id)
		if err != nil {
			return err
		}
		if len(items) > 0 && !contains(items, s) {
			return fmt.Errorf("%w: %q for %s", ErrInvalidSelection, s, id)
		}
		return lib.SetValueListSelection(id, s)
	case ozw.ValueTypeButton:
		pressed, ok := input.(bool)
		if !ok {
			return mismatch(id, input)
		}
		if pressed {
			return lib.PressButton(id)
		}
		return lib.ReleaseButton(id)
	}
	return fmt.Errorf("%w: set %s value %s", ErrUnsupported, id.Type, id)
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}

// DecodeScene reads the value stored for id in a scene. Button, Schedule,
// Raw, List and BitSet values cannot be stored in scenes and yield
// ErrUnsupported; callers report and skip them.
func (c *Codec) DecodeScene(lib SceneReader, sceneID uint8, id ozw.ValueID) (*Record, error) {
	r := describe(lib, id)
	var (
		v   Value
		err error
	)
	switch id.Type {
	case ozw.ValueTypeBool:
		var b bool
		b, err = lib.SceneValueAsBool(sceneID, id)
		v = Bool(b)
	case ozw.ValueTypeByte:
		var b uint8
		b, err = lib.SceneValueAsByte(sceneID, id)
		v = Byte(b)
	case ozw.ValueTypeDecimal:
		var s string
		s, err = lib.SceneValueAsDecimal(sceneID, id)
		v = Decimal(s)
	case ozw.ValueTypeInt:
		var n int32
		n, err = lib.SceneValueAsInt(sceneID, id)
		v = Int(n)
	case ozw.ValueTypeShort:
		var n int16
		n, err = lib.SceneValueAsShort(sceneID, id)
		v = Short(n)
	case ozw.ValueTypeString:
		var s string
		s, err = lib.SceneValueAsString(sceneID, id)
		v = String(s)
	default:
		return r, fmt.Errorf("%w: scene %d value %s of type %s", ErrUnsupported, sceneID, r.ValueID, id.Type)
	}
	if err != nil {
		return r, fmt.Errorf("decode scene %d value %s: %w", sceneID, r.ValueID, err)
	}
	r.Value = v
	return r, nil
}

// EncodeScene stores input as the scene value for id, with the same input
// rules as Encode. List selections are not checked against the item set.
func (c *Codec) EncodeScene(lib SceneWriter, sceneID uint8, id ozw.ValueID, input any) error {
	switch id.Type {
	case ozw.ValueTypeBool:
		b, ok := input.(bool)
		if !ok {
			return mismatch(id, input)
		}
		return lib.AddSceneValueBool(sceneID, id, b)
	case ozw.ValueTypeByte:
		n, err := intIn(id, input, 0, math.MaxUint8)
		if err != nil {
			return err
		}
		return lib.AddSceneValueByte(sceneID, id, uint8(n))
	case ozw.ValueTypeDecimal:
		s, ok := toDecimal(input)
		if !ok {
			return mismatch(id, input)
		}
		return lib.AddSceneValueDecimal(sceneID, id, s)
	case ozw.ValueTypeInt:
		n, err := intIn(id, input, math.MinInt32, math.MaxInt32)
		if err != nil {
			return err
		}
		return lib.AddSceneValueInt(sceneID, id, int32(n))
	case ozw.ValueTypeShort:
		n, err := intIn(id, input, math.MinInt16, math.MaxInt16)
		if err != nil {
			return err
		}
		return lib.AddSceneValueShort(sceneID, id, int16(n))
	case ozw.ValueTypeString:
		s, ok := input.(string)
		if !ok {
			return mismatch(id, input)
		}
		return lib.AddSceneValueString(sceneID, id, s)
	case ozw.ValueTypeList:
		s, ok := input.(string)
		if !ok {
			return mismatch(id, input)
		}
		return lib.AddSceneValueListSelection(sceneID, id, s)
	}
	return fmt.Errorf("%w: scene value of type %s", ErrUnsupported, id.Type)
}
