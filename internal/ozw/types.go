package ozw

import (
	"fmt"
	"strings"
)

// ValueType is the declared payload type of a value.
type ValueType uint8

const (
	ValueTypeBool ValueType = iota
	ValueTypeByte
	ValueTypeDecimal
	ValueTypeInt
	ValueTypeList
	ValueTypeSchedule
	ValueTypeShort
	ValueTypeString
	ValueTypeButton
	ValueTypeRaw
	ValueTypeBitSet
)

var valueTypeNames = [...]string{
	ValueTypeBool:     "bool",
	ValueTypeByte:     "byte",
	ValueTypeDecimal:  "decimal",
	ValueTypeInt:      "int",
	ValueTypeList:     "list",
	ValueTypeSchedule: "schedule",
	ValueTypeShort:    "short",
	ValueTypeString:   "string",
	ValueTypeButton:   "button",
	ValueTypeRaw:      "raw",
	ValueTypeBitSet:   "bitset",
}

func (t ValueType) String() string {
	if int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return fmt.Sprintf("unknown(0x%02x)", uint8(t))
}

// Valid reports whether t is a type the library declares.
func (t ValueType) Valid() bool {
	return int(t) < len(valueTypeNames)
}

// Genre classifies a value by its audience.
type Genre uint8

const (
	GenreBasic Genre = iota
	GenreUser
	GenreConfig
	GenreSystem
)

func (g Genre) String() string {
	switch g {
	case GenreBasic:
		return "basic"
	case GenreUser:
		return "user"
	case GenreConfig:
		return "config"
	case GenreSystem:
		return "system"
	}
	return fmt.Sprintf("unknown(%d)", uint8(g))
}

// ValueKey is the identity of a value within the registry.
type ValueKey struct {
	NodeID       uint8 `json:"node_id" mapstructure:"node_id"`
	CommandClass uint8 `json:"class_id" mapstructure:"class_id"`
	Instance     uint8 `json:"instance" mapstructure:"instance"`
	Index        uint8 `json:"index" mapstructure:"index"`
}

// String formats the key as "node-class-instance-index".
func (k ValueKey) String() string {
	return fmt.Sprintf("%d-%d-%d-%d", k.NodeID, k.CommandClass, k.Instance, k.Index)
}

// ValueID is the library's opaque handle for a single value. Two ValueIDs
// refer to the same value when their keys are equal.
type ValueID struct {
	HomeID       uint32
	NodeID       uint8
	CommandClass uint8
	Instance     uint8
	Index        uint8
	Genre        Genre
	Type         ValueType
}

// Key returns the (node, class, instance, index) identity of the value.
func (v ValueID) Key() ValueKey {
	return ValueKey{NodeID: v.NodeID, CommandClass: v.CommandClass, Instance: v.Instance, Index: v.Index}
}

func (v ValueID) String() string {
	return v.Key().String()
}

// NotificationType identifies the kind of a library notification.
type NotificationType uint8

const (
	NotificationValueAdded NotificationType = iota
	NotificationValueRemoved
	NotificationValueChanged
	NotificationValueRefreshed
	NotificationGroup
	NotificationNodeNew
	NotificationNodeAdded
	NotificationNodeRemoved
	NotificationNodeProtocolInfo
	NotificationNodeNaming
	NotificationNodeEvent
	NotificationPollingDisabled
	NotificationPollingEnabled
	NotificationSceneEvent
	NotificationCreateButton
	NotificationDeleteButton
	NotificationButtonOn
	NotificationButtonOff
	NotificationDriverReady
	NotificationDriverFailed
	NotificationDriverReset
	NotificationEssentialNodeQueriesComplete
	NotificationNodeQueriesComplete
	NotificationAwakeNodesQueried
	NotificationAllNodesQueriedSomeDead
	NotificationAllNodesQueried
	NotificationNotification
	NotificationDriverRemoved
	NotificationNodeReset
)

var notificationTypeNames = [...]string{
	NotificationValueAdded:                   "ValueAdded",
	NotificationValueRemoved:                 "ValueRemoved",
	NotificationValueChanged:                 "ValueChanged",
	NotificationValueRefreshed:               "ValueRefreshed",
	NotificationGroup:                        "Group",
	NotificationNodeNew:                      "NodeNew",
	NotificationNodeAdded:                    "NodeAdded",
	NotificationNodeRemoved:                  "NodeRemoved",
	NotificationNodeProtocolInfo:             "NodeProtocolInfo",
	NotificationNodeNaming:                   "NodeNaming",
	NotificationNodeEvent:                    "NodeEvent",
	NotificationPollingDisabled:              "PollingDisabled",
	NotificationPollingEnabled:               "PollingEnabled",
	NotificationSceneEvent:                   "SceneEvent",
	NotificationCreateButton:                 "CreateButton",
	NotificationDeleteButton:                 "DeleteButton",
	NotificationButtonOn:                     "ButtonOn",
	NotificationButtonOff:                    "ButtonOff",
	NotificationDriverReady:                  "DriverReady",
	NotificationDriverFailed:                 "DriverFailed",
	NotificationDriverReset:                  "DriverReset",
	NotificationEssentialNodeQueriesComplete: "EssentialNodeQueriesComplete",
	NotificationNodeQueriesComplete:          "NodeQueriesComplete",
	NotificationAwakeNodesQueried:            "AwakeNodesQueried",
	NotificationAllNodesQueriedSomeDead:      "AllNodesQueriedSomeDead",
	NotificationAllNodesQueried:              "AllNodesQueried",
	NotificationNotification:                 "Notification",
	NotificationDriverRemoved:                "DriverRemoved",
	NotificationNodeReset:                    "NodeReset",
}

func (t NotificationType) String() string {
	if int(t) < len(notificationTypeNames) {
		return notificationTypeNames[t]
	}
	return fmt.Sprintf("Unknown(%d)", uint8(t))
}

// NotificationCode is the payload of a Notification-kind notification.
type NotificationCode uint8

const (
	CodeMessageComplete NotificationCode = iota
	CodeTimeout
	CodeNoOperation
	CodeAwake
	CodeSleep
	CodeDead
	CodeAlive
)

func (c NotificationCode) String() string {
	switch c {
	case CodeMessageComplete:
		return "message complete"
	case CodeTimeout:
		return "timeout"
	case CodeNoOperation:
		return "nop"
	case CodeAwake:
		return "node awake"
	case CodeSleep:
		return "node asleep"
	case CodeDead:
		return "node dead"
	case CodeAlive:
		return "node alive"
	}
	return fmt.Sprintf("unknown(%d)", uint8(c))
}

// ControllerState is the progress state reported for a controller command.
type ControllerState uint8

const (
	ControllerStateNormal ControllerState = iota
	ControllerStateStarting
	ControllerStateCancel
	ControllerStateError
	ControllerStateWaiting
	ControllerStateSleeping
	ControllerStateInProgress
	ControllerStateCompleted
	ControllerStateFailed
	ControllerStateNodeOK
	ControllerStateNodeFailed
)

var controllerStateNames = [...]string{
	ControllerStateNormal:     "Normal",
	ControllerStateStarting:   "Starting",
	ControllerStateCancel:     "Cancel",
	ControllerStateError:      "Error",
	ControllerStateWaiting:    "Waiting",
	ControllerStateSleeping:   "Sleeping",
	ControllerStateInProgress: "In Progress",
	ControllerStateCompleted:  "Completed",
	ControllerStateFailed:     "Failed",
	ControllerStateNodeOK:     "Node OK",
	ControllerStateNodeFailed: "Node Failed",
}

func (s ControllerState) String() string {
	if int(s) < len(controllerStateNames) {
		return controllerStateNames[s]
	}
	return ""
}

// Terminal reports whether no further progress will follow s.
func (s ControllerState) Terminal() bool {
	switch s {
	case ControllerStateCancel, ControllerStateError, ControllerStateCompleted,
		ControllerStateFailed, ControllerStateNodeOK, ControllerStateNodeFailed:
		return true
	}
	return false
}

// ControllerError qualifies a failed controller command.
type ControllerError uint8

const (
	ControllerErrorNone ControllerError = iota
	ControllerErrorButtonNotFound
	ControllerErrorNodeNotFound
	ControllerErrorNotBridge
	ControllerErrorNotSUC
	ControllerErrorNotSecondary
	ControllerErrorNotPrimary
	ControllerErrorIsPrimary
	ControllerErrorNotFound
	ControllerErrorBusy
	ControllerErrorFailed
	ControllerErrorDisabled
	ControllerErrorOverflow
)

var controllerErrorNames = [...]string{
	ControllerErrorNone:           "None",
	ControllerErrorButtonNotFound: "Button not found",
	ControllerErrorNodeNotFound:   "Node not found",
	ControllerErrorNotBridge:      "Not bridge",
	ControllerErrorNotSUC:         "Not SUC",
	ControllerErrorNotSecondary:   "Not secondary",
	ControllerErrorNotPrimary:     "Not primary",
	ControllerErrorIsPrimary:      "Is primary",
	ControllerErrorNotFound:       "Not found",
	ControllerErrorBusy:           "Busy",
	ControllerErrorFailed:         "Failed",
	ControllerErrorDisabled:       "Disabled",
	ControllerErrorOverflow:       "Overflow",
}

func (e ControllerError) String() string {
	if int(e) < len(controllerErrorNames) {
		return controllerErrorNames[e]
	}
	return ""
}

// ControllerCommand is a long-running network management operation.
type ControllerCommand uint8

const (
	CommandNone ControllerCommand = iota
	CommandAddDevice
	CommandCreateNewPrimary
	CommandReceiveConfiguration
	CommandRemoveDevice
	CommandRemoveFailedNode
	CommandHasNodeFailed
	CommandReplaceFailedNode
	CommandTransferPrimaryRole
	CommandRequestNetworkUpdate
	CommandRequestNodeNeighborUpdate
	CommandAssignReturnRoute
	CommandDeleteAllReturnRoutes
	CommandSendNodeInformation
	CommandReplicationSend
	CommandCreateButton
	CommandDeleteButton
)

var controllerCommandNames = [...]string{
	CommandNone:                      "None",
	CommandAddDevice:                 "AddDevice",
	CommandCreateNewPrimary:          "CreateNewPrimary",
	CommandReceiveConfiguration:      "ReceiveConfiguration",
	CommandRemoveDevice:              "RemoveDevice",
	CommandRemoveFailedNode:          "RemoveFailedNode",
	CommandHasNodeFailed:             "HasNodeFailed",
	CommandReplaceFailedNode:         "ReplaceFailedNode",
	CommandTransferPrimaryRole:       "TransferPrimaryRole",
	CommandRequestNetworkUpdate:      "RequestNetworkUpdate",
	CommandRequestNodeNeighborUpdate: "RequestNodeNeighborUpdate",
	CommandAssignReturnRoute:         "AssignReturnRoute",
	CommandDeleteAllReturnRoutes:     "DeleteAllReturnRoutes",
	CommandSendNodeInformation:       "SendNodeInformation",
	CommandReplicationSend:           "ReplicationSend",
	CommandCreateButton:              "CreateButton",
	CommandDeleteButton:              "DeleteButton",
}

func (c ControllerCommand) String() string {
	if int(c) < len(controllerCommandNames) {
		return controllerCommandNames[c]
	}
	return fmt.Sprintf("Unknown(%d)", uint8(c))
}

// ParseControllerCommand resolves a command by name, case-insensitively.
// CommandNone is not accepted.
func ParseControllerCommand(name string) (ControllerCommand, error) {
	for i, n := range controllerCommandNames {
		if i == int(CommandNone) {
			continue
		}
		if strings.EqualFold(n, name) {
			return ControllerCommand(i), nil
		}
	}
	return CommandNone, fmt.Errorf("unknown controller command %q", name)
}

// MetaDataField names an entry of a node's device definition metadata.
type MetaDataField uint8

const (
	MetaDataOzwInfoPage MetaDataField = iota
	MetaDataZWProductPage
	MetaDataProductPic
	MetaDataDescription
	MetaDataProductManual
	MetaDataProductPage
	MetaDataInclusionHelp
	MetaDataExclusionHelp
	MetaDataResetHelp
	MetaDataWakeupHelp
	MetaDataProductSupport
	MetaDataFrequency
	MetaDataName
	MetaDataIdentifier
)

var metaDataNames = [...]string{
	MetaDataOzwInfoPage:    "OzwInfoPage",
	MetaDataZWProductPage:  "ZWProductPage",
	MetaDataProductPic:     "ProductPic",
	MetaDataDescription:    "Description",
	MetaDataProductManual:  "ProductManual",
	MetaDataProductPage:    "ProductPage",
	MetaDataInclusionHelp:  "InclusionDescription",
	MetaDataExclusionHelp:  "ExclusionDescription",
	MetaDataResetHelp:      "ResetDescription",
	MetaDataWakeupHelp:     "WakeupDescription",
	MetaDataProductSupport: "ProductSupport",
	MetaDataFrequency:      "Frequency",
	MetaDataName:           "Name",
	MetaDataIdentifier:     "Identifier",
}

func (f MetaDataField) String() string {
	if int(f) < len(metaDataNames) {
		return metaDataNames[f]
	}
	return fmt.Sprintf("unknown(%d)", uint8(f))
}

// MetaDataFields lists every declared field in order.
func MetaDataFields() []MetaDataField {
	out := make([]MetaDataField, len(metaDataNames))
	for i := range metaDataNames {
		out[i] = MetaDataField(i)
	}
	return out
}

// ParseMetaDataField looks a field up by name, case-insensitively.
func ParseMetaDataField(name string) (MetaDataField, bool) {
	for i, n := range metaDataNames {
		if strings.EqualFold(n, name) {
			return MetaDataField(i), true
		}
	}
	return 0, false
}
