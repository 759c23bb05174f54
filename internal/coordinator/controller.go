package coordinator

import (
	"fmt"

	"zwave-go-home/internal/ozw"
)

// ControllerCommandRequest starts a long-running network operation.
type ControllerCommandRequest struct {
	Command   ozw.ControllerCommand
	HighPower bool
	NodeID    uint8
	Arg       uint8
}

// BeginControllerCommand starts a controller command. Progress arrives as
// controller command events through the queue; no timeout is applied.
func (c *Coordinator) BeginControllerCommand(req ControllerCommandRequest) error {
	if req.Command == ozw.CommandNone {
		return fmt.Errorf("%w: no controller command", ErrInvalidArgument)
	}
	home, err := c.home()
	if err != nil {
		return err
	}
	c.logger.Info("begin controller command", "cmd", req.Command.String(), "node", req.NodeID, "high_power", req.HighPower)
	if err := c.lib.BeginControllerCommand(home, req.Command, c.onControllerProgress, req.HighPower, req.NodeID, req.Arg); err != nil {
		return fmt.Errorf("begin %s: %w", req.Command, err)
	}
	return nil
}

// BeginControllerCommandByName resolves name ("AddDevice", "HasNodeFailed",
// ...) and starts the command.
func (c *Coordinator) BeginControllerCommandByName(name string, highPower bool, nodeID, arg uint8) error {
	cmd, err := ozw.ParseControllerCommand(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return c.BeginControllerCommand(ControllerCommandRequest{Command: cmd, HighPower: highPower, NodeID: nodeID, Arg: arg})
}

// CancelControllerCommand cancels the running controller command.
func (c *Coordinator) CancelControllerCommand() error {
	home, err := c.home()
	if err != nil {
		return err
	}
	return c.lib.CancelControllerCommand(home)
}

func (c *Coordinator) begin(cmd ozw.ControllerCommand, highPower bool, nodeID, arg uint8) error {
	return c.BeginControllerCommand(ControllerCommandRequest{Command: cmd, HighPower: highPower, NodeID: nodeID, Arg: arg})
}

// AddNode puts the controller into inclusion mode.
func (c *Coordinator) AddNode(highPower bool) error {
	return c.begin(ozw.CommandAddDevice, highPower, 0, 0)
}

// RemoveNode puts the controller into exclusion mode.
func (c *Coordinator) RemoveNode(highPower bool) error {
	return c.begin(ozw.CommandRemoveDevice, highPower, 0, 0)
}

// RemoveFailedNode drops a node the controller has marked as failed.
func (c *Coordinator) RemoveFailedNode(nodeID uint8) error {
	return c.begin(ozw.CommandRemoveFailedNode, false, nodeID, 0)
}

// HasNodeFailed asks the controller to check whether a node responds.
func (c *Coordinator) HasNodeFailed(nodeID uint8) error {
	return c.begin(ozw.CommandHasNodeFailed, false, nodeID, 0)
}

// ReplaceFailedNode swaps a failed node for a newly included device with the same id.
func (c *Coordinator) ReplaceFailedNode(nodeID uint8) error {
	return c.begin(ozw.CommandReplaceFailedNode, false, nodeID, 0)
}

// RequestNodeNeighborUpdate makes a node rediscover its neighbours.
func (c *Coordinator) RequestNodeNeighborUpdate(nodeID uint8) error {
	return c.begin(ozw.CommandRequestNodeNeighborUpdate, false, nodeID, 0)
}

// AssignReturnRoute assigns a return route from nodeID to target.
func (c *Coordinator) AssignReturnRoute(nodeID, target uint8) error {
	return c.begin(ozw.CommandAssignReturnRoute, false, nodeID, target)
}

// DeleteAllReturnRoutes clears every return route of a node.
func (c *Coordinator) DeleteAllReturnRoutes(nodeID uint8) error {
	return c.begin(ozw.CommandDeleteAllReturnRoutes, false, nodeID, 0)
}

// SendNodeInformation sends the controller's node information frame to a node.
func (c *Coordinator) SendNodeInformation(nodeID uint8) error {
	return c.begin(ozw.CommandSendNodeInformation, false, nodeID, 0)
}

// CreateNewPrimary adds a new primary controller once the SUC has lost it.
func (c *Coordinator) CreateNewPrimary() error {
	return c.begin(ozw.CommandCreateNewPrimary, false, 0, 0)
}

// ReceiveConfiguration accepts the network configuration from another controller.
func (c *Coordinator) ReceiveConfiguration() error {
	return c.begin(ozw.CommandReceiveConfiguration, false, 0, 0)
}

// TransferPrimaryRole hands the primary role to another controller.
func (c *Coordinator) TransferPrimaryRole() error {
	return c.begin(ozw.CommandTransferPrimaryRole, false, 0, 0)
}

// RequestNetworkUpdate fetches topology changes from the SUC.
func (c *Coordinator) RequestNetworkUpdate(nodeID uint8) error {
	return c.begin(ozw.CommandRequestNetworkUpdate, false, nodeID, 0)
}

// ReplicationSend copies the controller's group and scene data to nodeID.
func (c *Coordinator) ReplicationSend(nodeID uint8) error {
	return c.begin(ozw.CommandReplicationSend, false, nodeID, 0)
}

// CreateButton creates a handheld button on a node.
func (c *Coordinator) CreateButton(nodeID, buttonID uint8) error {
	return c.begin(ozw.CommandCreateButton, false, nodeID, buttonID)
}

// DeleteButton removes a handheld button from a node.
func (c *Coordinator) DeleteButton(nodeID, buttonID uint8) error {
	return c.begin(ozw.CommandDeleteButton, false, nodeID, buttonID)
}
