package ozw

// Command classes used by the demo network.
const (
	ClassBasic            = 0x20
	ClassSwitchBinary     = classSwitchBinary
	ClassSwitchMultilevel = classSwitchMultilevel
	ClassSensorMultilevel = 0x31
	ClassMeter            = 0x32
	ClassConfiguration    = classConfiguration
	ClassAlarm            = 0x71
	ClassBattery          = 0x80
	ClassThermostatMode   = 0x40
	ClassUserCode         = 0x63
)

// DemoNetwork returns a small network exercising every value type: an
// appliance switch, a dimmer, a multisensor and a thermostat.
func DemoNetwork() []SimNode {
	return []SimNode{
		{
			ID: 2,
			Info: NodeInfo{
				Manufacturer: "Aeotec", ManufacturerID: "0x0086", Product: "Smart Switch 6",
				ProductType: "0x0003", ProductID: "0x0060", Type: "Binary Power Switch",
			},
			Capabilities: NodeCapabilities{Listening: true, Routing: true, Beaming: true, MaxBaudRate: 40000, Version: 4, Basic: 4, Generic: 0x10, Specific: 1},
			Neighbors:    []uint8{1, 3},
			Groups:       []SimGroup{{Label: "Lifeline", Max: 5, Members: []uint8{1}}},
			Values: []SimValue{
				{ID: ValueID{CommandClass: ClassSwitchBinary, Instance: 1, Index: 0, Genre: GenreUser, Type: ValueTypeBool}, Label: "Switch"},
				{ID: ValueID{CommandClass: ClassMeter, Instance: 1, Index: 8, Genre: GenreUser, Type: ValueTypeDecimal}, Label: "Power", Units: "W", ReadOnly: true, Value: "0.000"},
				{ID: ValueID{CommandClass: ClassMeter, Instance: 1, Index: 33, Genre: GenreSystem, Type: ValueTypeButton}, Label: "Reset", WriteOnly: true},
				{ID: ValueID{CommandClass: ClassConfiguration, Instance: 1, Index: 80, Genre: GenreConfig, Type: ValueTypeList}, Label: "Notification on Load Change", Items: []string{"Nothing", "Hail", "Basic"}, Value: "Basic"},
				{ID: ValueID{CommandClass: ClassConfiguration, Instance: 1, Index: 111, Genre: GenreConfig, Type: ValueTypeInt}, Label: "Report Interval", Units: "seconds", Min: 1, Max: 2678400, Value: int32(600)},
			},
		},
		{
			ID: 3,
			Info: NodeInfo{
				Manufacturer: "Fibargroup", ManufacturerID: "0x010f", Product: "FGD212 Dimmer 2",
				ProductType: "0x0102", ProductID: "0x1000", Type: "Multilevel Power Switch",
			},
			Capabilities: NodeCapabilities{Listening: true, Routing: true, Beaming: true, Security: true, MaxBaudRate: 40000, Version: 4, Basic: 4, Generic: 0x11, Specific: 1},
			Neighbors:    []uint8{1, 2, 4},
			Groups:       []SimGroup{{Label: "Lifeline", Max: 1, Members: []uint8{1}}, {Label: "On/Off (S1)", Max: 10}},
			Values: []SimValue{
				{ID: ValueID{CommandClass: ClassSwitchMultilevel, Instance: 1, Index: 0, Genre: GenreUser, Type: ValueTypeByte}, Label: "Level", Min: 0, Max: 99},
				{ID: ValueID{CommandClass: ClassSwitchMultilevel, Instance: 1, Index: 1, Genre: GenreUser, Type: ValueTypeButton}, Label: "Bright", WriteOnly: true},
				{ID: ValueID{CommandClass: ClassSwitchMultilevel, Instance: 1, Index: 2, Genre: GenreUser, Type: ValueTypeButton}, Label: "Dim", WriteOnly: true},
				{ID: ValueID{CommandClass: ClassConfiguration, Instance: 1, Index: 1, Genre: GenreConfig, Type: ValueTypeByte}, Label: "Minimum brightness level", Min: 1, Max: 98, Value: uint8(1)},
				{ID: ValueID{CommandClass: ClassConfiguration, Instance: 1, Index: 10, Genre: GenreConfig, Type: ValueTypeShort}, Label: "Timer functionality", Units: "seconds", Min: 0, Max: 32767},
			},
		},
		{
			ID: 4,
			Info: NodeInfo{
				Manufacturer: "Aeotec", ManufacturerID: "0x0086", Product: "MultiSensor 6",
				ProductType: "0x0002", ProductID: "0x0064", Type: "Routing Multilevel Sensor",
			},
			Capabilities: NodeCapabilities{FrequentListening: false, Routing: true, MaxBaudRate: 40000, Version: 4, Basic: 4, Generic: 0x21, Specific: 1},
			Neighbors:    []uint8{1, 3},
			Groups:       []SimGroup{{Label: "Lifeline", Max: 5, Members: []uint8{1}}},
			Values: []SimValue{
				{ID: ValueID{CommandClass: ClassSensorMultilevel, Instance: 1, Index: 1, Genre: GenreUser, Type: ValueTypeDecimal}, Label: "Temperature", Units: "C", ReadOnly: true, Value: "21.50"},
				{ID: ValueID{CommandClass: ClassSensorMultilevel, Instance: 1, Index: 5, Genre: GenreUser, Type: ValueTypeDecimal}, Label: "Relative Humidity", Units: "%", ReadOnly: true, Value: "48"},
				{ID: ValueID{CommandClass: ClassAlarm, Instance: 1, Index: 10, Genre: GenreUser, Type: ValueTypeBitSet}, Label: "Home Security", ReadOnly: true},
				{ID: ValueID{CommandClass: ClassBattery, Instance: 1, Index: 0, Genre: GenreUser, Type: ValueTypeByte}, Label: "Battery Level", Units: "%", ReadOnly: true, Value: uint8(87)},
				{ID: ValueID{CommandClass: ClassConfiguration, Instance: 1, Index: 4, Genre: GenreConfig, Type: ValueTypeBool}, Label: "Enable PIR", Value: true},
			},
			MetaData: map[MetaDataField]string{
				MetaDataName:          "MultiSensor 6",
				MetaDataDescription:   "Motion, temperature, humidity, light, UV and vibration sensor.",
				MetaDataInclusionHelp: "Press the action button once.",
				MetaDataExclusionHelp: "Press the action button once.",
				MetaDataWakeupHelp:    "Press and hold the action button for 3 seconds.",
				MetaDataProductPic:    "images/aeotec/zw100.png",
				MetaDataFrequency:     "Europe",
				MetaDataIdentifier:    "ZW100-C",
			},
			ChangeLog: []ChangeLogEntry{
				{Author: "Device DB", Date: "03 May 2019", Description: "Initial metadata import", Revision: 1},
				{Author: "Device DB", Date: "15 Aug 2019", Description: "Added wakeup description", Revision: 2},
			},
		},
		{
			ID: 5,
			Info: NodeInfo{
				Manufacturer: "Danfoss", ManufacturerID: "0x0002", Product: "Living Connect",
				ProductType: "0x0005", ProductID: "0x0004", Type: "Setpoint Thermostat",
			},
			Capabilities: NodeCapabilities{FrequentListening: true, Routing: false, MaxBaudRate: 40000, Version: 3, Basic: 4, Generic: 0x08, Specific: 4},
			Neighbors:    []uint8{1},
			Values: []SimValue{
				{ID: ValueID{CommandClass: ClassThermostatMode, Instance: 1, Index: 0, Genre: GenreUser, Type: ValueTypeList}, Label: "Mode", Items: []string{"Off", "Heat", "Energy Heat"}, Value: "Heat"},
				{ID: ValueID{CommandClass: 0x46, Instance: 1, Index: 1, Genre: GenreUser, Type: ValueTypeSchedule}, Label: "Monday"},
				{ID: ValueID{CommandClass: ClassUserCode, Instance: 1, Index: 1, Genre: GenreUser, Type: ValueTypeRaw}, Label: "Code 1", Value: []byte{0x31, 0x32, 0x33, 0x34}},
				{ID: ValueID{CommandClass: 0x75, Instance: 1, Index: 0, Genre: GenreUser, Type: ValueTypeString}, Label: "Protection", Value: "Unprotected"},
			},
		},
	}
}
