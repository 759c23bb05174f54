package ozw

import "testing"

func TestClassName(t *testing.T) {
	tests := []struct {
		id   uint8
		want string
	}{
		{ClassSwitchBinary, "SWITCH_BINARY"},
		{ClassSensorMultilevel, "SENSOR_MULTILEVEL"},
		{ClassThermostatMode, "THERMOSTAT_MODE"},
		{0x75, "PROTECTION"},
		{0xF1, "0xF1"},
	}
	for _, tt := range tests {
		if got := ClassName(tt.id); got != tt.want {
			t.Errorf("ClassName(0x%02X) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
