// Package ozw defines the interface for the Z-Wave device-control library backend.
// Backends: OpenZWave-compatible drivers, and Sim (in-memory, for tests and demos).
package ozw

import (
	"errors"
	"time"
)

// Watcher receives library notifications. It is called on the library's
// worker goroutine and must not block.
type Watcher func(n *Notification)

// ControllerCallback receives controller command progress. Like Watcher it
// runs on the library's worker goroutine.
type ControllerCallback func(state ControllerState, err ControllerError)

// Manager is the abstract interface for the device-control library.
type Manager interface {
	// Driver lifecycle
	AddWatcher(w Watcher) error
	RemoveWatcher() error
	AddDriver(path string) error
	RemoveDriver(path string) error
	ResetController(homeID uint32) error
	SoftReset(homeID uint32) error
	LibraryVersion() string

	// Controller
	BeginControllerCommand(homeID uint32, cmd ControllerCommand, cb ControllerCallback, highPower bool, nodeID, arg uint8) error
	CancelControllerCommand(homeID uint32) error
	ControllerInfo(homeID uint32) (ControllerInfo, error)

	// Value attributes
	ValueLabel(id ValueID) string
	ValueUnits(id ValueID) string
	ValueHelp(id ValueID) string
	ValueMin(id ValueID) int32
	ValueMax(id ValueID) int32
	IsValueReadOnly(id ValueID) bool
	IsValueWriteOnly(id ValueID) bool
	IsValuePolled(id ValueID) bool

	// Value getters
	ValueAsBool(id ValueID) (bool, error)
	ValueAsByte(id ValueID) (uint8, error)
	ValueAsDecimal(id ValueID) (string, error)
	ValueAsInt(id ValueID) (int32, error)
	ValueAsShort(id ValueID) (int16, error)
	ValueAsString(id ValueID) (string, error)
	ValueAsBitSet(id ValueID) (uint32, error)
	// ValueAsRaw returns library-owned memory; callers must copy before retaining it.
	ValueAsRaw(id ValueID) ([]byte, error)
	ValueListSelection(id ValueID) (string, error)
	ValueListItems(id ValueID) ([]string, error)

	// Value setters
	SetValueBool(id ValueID, v bool) error
	SetValueByte(id ValueID, v uint8) error
	SetValueDecimal(id ValueID, v string) error
	SetValueInt(id ValueID, v int32) error
	SetValueShort(id ValueID, v int16) error
	SetValueString(id ValueID, v string) error
	SetValueBitSet(id ValueID, v uint32) error
	SetValueRaw(id ValueID, v []byte) error
	SetValueListSelection(id ValueID, v string) error
	PressButton(id ValueID) error
	ReleaseButton(id ValueID) error
	RefreshValue(id ValueID) error
	SetChangeVerified(id ValueID, verify bool) error

	// Polling
	EnablePoll(id ValueID, intensity uint8) error
	DisablePoll(id ValueID) error
	PollInterval() time.Duration
	SetPollInterval(d time.Duration, intervalBetweenPolls bool)
	SetPollIntensity(id ValueID, intensity uint8) error

	// Nodes
	NodeInfo(homeID uint32, nodeID uint8) (NodeInfo, error)
	NodeCapabilities(homeID uint32, nodeID uint8) (NodeCapabilities, error)
	NodeNeighbors(homeID uint32, nodeID uint8) ([]uint8, error)
	SetNodeName(homeID uint32, nodeID uint8, name string) error
	SetNodeLocation(homeID uint32, nodeID uint8, location string) error
	SetNodeManufacturerName(homeID uint32, nodeID uint8, name string) error
	SetNodeProductName(homeID uint32, nodeID uint8, name string) error
	SetNodeOn(homeID uint32, nodeID uint8) error
	SetNodeOff(homeID uint32, nodeID uint8) error
	SetNodeLevel(homeID uint32, nodeID uint8, level uint8) error
	RefreshNodeInfo(homeID uint32, nodeID uint8) error
	RequestNodeState(homeID uint32, nodeID uint8) error
	RequestNodeDynamic(homeID uint32, nodeID uint8) error
	SwitchAllOn(homeID uint32) error
	SwitchAllOff(homeID uint32) error

	// Device definition metadata
	NodeMetaData(homeID uint32, nodeID uint8, field MetaDataField) (string, error)
	NodeChangeLog(homeID uint32, nodeID uint8, revision uint8) (ChangeLogEntry, error)

	// Association groups
	NumGroups(homeID uint32, nodeID uint8) (uint8, error)
	Associations(homeID uint32, nodeID, group uint8) ([]uint8, error)
	MaxAssociations(homeID uint32, nodeID, group uint8) (uint8, error)
	GroupLabel(homeID uint32, nodeID, group uint8) (string, error)
	AddAssociation(homeID uint32, nodeID, group, target uint8) error
	RemoveAssociation(homeID uint32, nodeID, group, target uint8) error

	// Configuration parameters
	SetConfigParam(homeID uint32, nodeID, param uint8, value int32, size uint8) error
	RequestConfigParam(homeID uint32, nodeID, param uint8) error
	RequestAllConfigParams(homeID uint32, nodeID uint8) error

	// Network
	HealNetworkNode(homeID uint32, nodeID uint8, doReturnRoutes bool) error
	HealNetwork(homeID uint32, doReturnRoutes bool) error
	TestNetworkNode(homeID uint32, nodeID uint8, count uint32) error
	TestNetwork(homeID uint32, count uint32) error

	// Scenes
	NumScenes() int
	AllScenes() []uint8
	CreateScene() (uint8, error)
	RemoveScene(sceneID uint8) error
	SceneExists(sceneID uint8) bool
	SceneLabel(sceneID uint8) (string, error)
	SetSceneLabel(sceneID uint8, label string) error
	ActivateScene(sceneID uint8) error
	SceneValues(sceneID uint8) ([]ValueID, error)
	RemoveSceneValue(sceneID uint8, id ValueID) error
	AddSceneValueBool(sceneID uint8, id ValueID, v bool) error
	AddSceneValueByte(sceneID uint8, id ValueID, v uint8) error
	AddSceneValueDecimal(sceneID uint8, id ValueID, v string) error
	AddSceneValueInt(sceneID uint8, id ValueID, v int32) error
	AddSceneValueShort(sceneID uint8, id ValueID, v int16) error
	AddSceneValueString(sceneID uint8, id ValueID, v string) error
	AddSceneValueListSelection(sceneID uint8, id ValueID, v string) error
	SceneValueAsBool(sceneID uint8, id ValueID) (bool, error)
	SceneValueAsByte(sceneID uint8, id ValueID) (uint8, error)
	SceneValueAsDecimal(sceneID uint8, id ValueID) (string, error)
	SceneValueAsInt(sceneID uint8, id ValueID) (int32, error)
	SceneValueAsShort(sceneID uint8, id ValueID) (int16, error)
	SceneValueAsString(sceneID uint8, id ValueID) (string, error)

	// Statistics
	DriverStatistics(homeID uint32) (DriverStats, error)
	NodeStatistics(homeID uint32, nodeID uint8) (NodeStats, error)

	// Lifecycle
	Close() error
}

// ControllerInfo holds identity and role information for the local controller.
type ControllerInfo struct {
	NodeID          uint8  `json:"node_id"`
	SUCNodeID       uint8  `json:"suc_node_id"`
	IsPrimary       bool   `json:"is_primary"`
	IsStaticUpdate  bool   `json:"is_static_update"`
	IsBridge        bool   `json:"is_bridge"`
	LibraryVersion  string `json:"library_version"`
	LibraryTypeName string `json:"library_type_name"`
	SendQueueCount  int    `json:"send_queue_count"`
}

// NodeInfo is the descriptive metadata of a node.
type NodeInfo struct {
	Manufacturer   string `json:"manufacturer" mapstructure:"manufacturer"`
	ManufacturerID string `json:"manufacturerid" mapstructure:"manufacturerid"`
	Product        string `json:"product" mapstructure:"product"`
	ProductType    string `json:"producttype" mapstructure:"producttype"`
	ProductID      string `json:"productid" mapstructure:"productid"`
	Type           string `json:"type" mapstructure:"type"`
	Name           string `json:"name" mapstructure:"name"`
	Location       string `json:"loc" mapstructure:"loc"`
}

// ChangeLogEntry is one revision note of a node's device definition.
type ChangeLogEntry struct {
	Author      string `json:"author"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Revision    int    `json:"revision"`
}

// NodeCapabilities describes protocol-level properties of a node.
type NodeCapabilities struct {
	Listening         bool   `json:"listening"`
	FrequentListening bool   `json:"frequent_listening"`
	Beaming           bool   `json:"beaming"`
	Routing           bool   `json:"routing"`
	Security          bool   `json:"security"`
	MaxBaudRate       uint32 `json:"max_baud_rate"`
	Version           uint8  `json:"version"`
	Basic             uint8  `json:"basic"`
	Generic           uint8  `json:"generic"`
	Specific          uint8  `json:"specific"`
}

// DriverStats are the serial-link counters kept by the driver.
type DriverStats struct {
	SOFCount    uint32 `json:"sof_cnt"`
	ACKWaiting  uint32 `json:"ack_waiting"`
	ReadAborts  uint32 `json:"read_aborts"`
	BadChecksum uint32 `json:"bad_checksum"`
	ReadCount   uint32 `json:"read_cnt"`
	WriteCount  uint32 `json:"write_cnt"`
	CANCount    uint32 `json:"can_cnt"`
	NAKCount    uint32 `json:"nak_cnt"`
	ACKCount    uint32 `json:"ack_cnt"`
	OOFCount    uint32 `json:"oof_cnt"`
	Dropped     uint32 `json:"dropped"`
	Retries     uint32 `json:"retries"`
	Callbacks   uint32 `json:"callbacks"`
	BadRoutes   uint32 `json:"badroutes"`
}

// NodeStats are per-node message counters and round-trip times.
type NodeStats struct {
	SentCount           uint32    `json:"sent_cnt"`
	SentFailed          uint32    `json:"sent_failed"`
	Retries             uint32    `json:"retries"`
	ReceivedCount       uint32    `json:"received_cnt"`
	ReceivedDups        uint32    `json:"received_dups"`
	ReceivedUnsolicited uint32    `json:"received_unsolicited"`
	LastRequestRTT      uint32    `json:"last_request_rtt"`
	LastResponseRTT     uint32    `json:"last_response_rtt"`
	AverageRequestRTT   uint32    `json:"average_request_rtt"`
	AverageResponseRTT  uint32    `json:"average_response_rtt"`
	Quality             uint8     `json:"quality"`
	SentTS              time.Time `json:"sent_ts"`
	ReceivedTS          time.Time `json:"received_ts"`
}

// Notification is a single asynchronous report from the library. Fields
// beyond Type, HomeID and NodeID are meaningful only for the kinds that
// carry them.
type Notification struct {
	Type     NotificationType
	HomeID   uint32
	NodeID   uint8
	ValueID  ValueID
	GroupIdx uint8            // Group
	Event    uint8            // NodeEvent
	ButtonID uint8            // CreateButton, DeleteButton, ButtonOn, ButtonOff
	SceneID  uint8            // SceneEvent
	Code     NotificationCode // Notification
}

// Errors returned by backends.
var (
	ErrDriverNotFound  = errors.New("ozw: driver not found")
	ErrDriverExists    = errors.New("ozw: driver already added")
	ErrNodeNotFound    = errors.New("ozw: node not found")
	ErrValueNotFound   = errors.New("ozw: value not found")
	ErrSceneNotFound   = errors.New("ozw: scene not found")
	ErrTypeMismatch    = errors.New("ozw: value type mismatch")
	ErrReadOnly        = errors.New("ozw: value is read-only")
	ErrCommandBusy     = errors.New("ozw: controller command already in progress")
	ErrNoCommand       = errors.New("ozw: no controller command in progress")
	ErrInvalidArgument = errors.New("ozw: invalid argument")
	ErrNoChangeLog     = errors.New("ozw: no change log for revision")
)
