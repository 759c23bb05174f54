package ozw

import "fmt"

// commandClassNames maps command class ids to their protocol names.
var commandClassNames = map[uint8]string{
	0x00: "NO_OPERATION",
	0x20: "BASIC",
	0x21: "CONTROLLER_REPLICATION",
	0x22: "APPLICATION_STATUS",
	0x25: "SWITCH_BINARY",
	0x26: "SWITCH_MULTILEVEL",
	0x27: "SWITCH_ALL",
	0x28: "SWITCH_TOGGLE_BINARY",
	0x2B: "SCENE_ACTIVATION",
	0x2C: "SCENE_ACTUATOR_CONF",
	0x2D: "SCENE_CONTROLLER_CONF",
	0x30: "SENSOR_BINARY",
	0x31: "SENSOR_MULTILEVEL",
	0x32: "METER",
	0x33: "COLOR",
	0x35: "METER_PULSE",
	0x40: "THERMOSTAT_MODE",
	0x42: "THERMOSTAT_OPERATING_STATE",
	0x43: "THERMOSTAT_SETPOINT",
	0x44: "THERMOSTAT_FAN_MODE",
	0x45: "THERMOSTAT_FAN_STATE",
	0x46: "CLIMATE_CONTROL_SCHEDULE",
	0x4C: "DOOR_LOCK_LOGGING",
	0x50: "BASIC_WINDOW_COVERING",
	0x5A: "DEVICE_RESET_LOCALLY",
	0x5B: "CENTRAL_SCENE",
	0x5E: "ZWAVEPLUS_INFO",
	0x60: "MULTI_INSTANCE",
	0x62: "DOOR_LOCK",
	0x63: "USER_CODE",
	0x66: "BARRIER_OPERATOR",
	0x70: "CONFIGURATION",
	0x71: "ALARM",
	0x72: "MANUFACTURER_SPECIFIC",
	0x73: "POWERLEVEL",
	0x75: "PROTECTION",
	0x76: "LOCK",
	0x77: "NODE_NAMING",
	0x80: "BATTERY",
	0x81: "CLOCK",
	0x84: "WAKE_UP",
	0x85: "ASSOCIATION",
	0x86: "VERSION",
	0x87: "INDICATOR",
	0x8E: "MULTI_INSTANCE_ASSOCIATION",
	0x8F: "MULTI_CMD",
	0x98: "SECURITY",
	0x9C: "SENSOR_ALARM",
}

// ClassName returns the protocol name of a command class, or its hex id
// when the class is unknown.
func ClassName(id uint8) string {
	if name, ok := commandClassNames[id]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", id)
}
