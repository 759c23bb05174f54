package coordinator

import (
	"fmt"

	"zwave-go-home/internal/ozw"
	"zwave-go-home/internal/value"
)

// NodeSnapshot is a node with its metadata and decoded values.
type NodeSnapshot struct {
	NodeID       uint8                `json:"node_id"`
	HomeID       uint32               `json:"home_id"`
	Polled       bool                 `json:"polled"`
	Info         ozw.NodeInfo         `json:"info"`
	Capabilities ozw.NodeCapabilities `json:"capabilities"`
	Values       []*value.Record      `json:"values"`
}

// GroupInfo describes one association group of a node.
type GroupInfo struct {
	Index   uint8   `json:"index"`
	Label   string  `json:"label"`
	Max     uint8   `json:"max"`
	Members []uint8 `json:"members"`
}

// node checks that nodeID is cached and returns the home id.
func (c *Coordinator) node(nodeID uint8) (uint32, error) {
	home, err := c.home()
	if err != nil {
		return 0, err
	}
	if _, ok := c.registry.LookupNode(nodeID); !ok {
		return 0, fmt.Errorf("%w: %d", ErrNodeNotFound, nodeID)
	}
	return home, nil
}

func (c *Coordinator) snapshot(entry NodeEntry) NodeSnapshot {
	s := NodeSnapshot{
		NodeID: entry.NodeID,
		HomeID: entry.HomeID,
		Polled: entry.Polled,
		Values: make([]*value.Record, 0, len(entry.Values)),
	}
	var err error
	if s.Info, err = c.lib.NodeInfo(entry.HomeID, entry.NodeID); err != nil {
		c.logger.Debug("node info", "node", entry.NodeID, "err", err)
	}
	if s.Capabilities, err = c.lib.NodeCapabilities(entry.HomeID, entry.NodeID); err != nil {
		c.logger.Debug("node capabilities", "node", entry.NodeID, "err", err)
	}
	for _, id := range entry.Values {
		rec, err := c.codec.Decode(c.lib, id)
		if err != nil {
			c.logger.Debug("decode value", "value", id.Key().String(), "err", err)
		}
		s.Values = append(s.Values, rec)
	}
	return s
}

// Nodes returns a snapshot of every cached node ordered by id.
func (c *Coordinator) Nodes() []NodeSnapshot {
	entries := c.registry.Nodes()
	out := make([]NodeSnapshot, len(entries))
	for i, e := range entries {
		out[i] = c.snapshot(e)
	}
	return out
}

// Node returns a snapshot of one node.
func (c *Coordinator) Node(nodeID uint8) (NodeSnapshot, error) {
	entry, ok := c.registry.LookupNode(nodeID)
	if !ok {
		return NodeSnapshot{}, fmt.Errorf("%w: %d", ErrNodeNotFound, nodeID)
	}
	return c.snapshot(entry), nil
}

// NodeInfo returns the descriptive metadata of a node.
func (c *Coordinator) NodeInfo(nodeID uint8) (ozw.NodeInfo, error) {
	home, err := c.node(nodeID)
	if err != nil {
		return ozw.NodeInfo{}, err
	}
	return c.lib.NodeInfo(home, nodeID)
}

// NodeNeighbors returns the routing neighbours of a node.
func (c *Coordinator) NodeNeighbors(nodeID uint8) ([]uint8, error) {
	home, err := c.node(nodeID)
	if err != nil {
		return nil, err
	}
	return c.lib.NodeNeighbors(home, nodeID)
}

// NodeStatistics returns message counters for a node.
func (c *Coordinator) NodeStatistics(nodeID uint8) (ozw.NodeStats, error) {
	home, err := c.node(nodeID)
	if err != nil {
		return ozw.NodeStats{}, err
	}
	return c.lib.NodeStatistics(home, nodeID)
}

// NodeMetaData returns one named field of the node's device definition, such
// as "Description" or "InclusionDescription". Unknown names are rejected.
func (c *Coordinator) NodeMetaData(nodeID uint8, name string) (string, error) {
	field, ok := ozw.ParseMetaDataField(name)
	if !ok {
		return "", fmt.Errorf("%w: metadata field %q", ErrInvalidArgument, name)
	}
	home, err := c.node(nodeID)
	if err != nil {
		return "", err
	}
	return c.lib.NodeMetaData(home, nodeID, field)
}

// AllNodeMetaData returns every non-empty metadata field of a node, keyed by
// field name.
func (c *Coordinator) AllNodeMetaData(nodeID uint8) (map[string]string, error) {
	home, err := c.node(nodeID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, f := range ozw.MetaDataFields() {
		text, err := c.lib.NodeMetaData(home, nodeID, f)
		if err != nil {
			return nil, err
		}
		if text != "" {
			out[f.String()] = text
		}
	}
	return out, nil
}

// NodeChangeLog returns the device definition change log entry for revision.
func (c *Coordinator) NodeChangeLog(nodeID, revision uint8) (ozw.ChangeLogEntry, error) {
	home, err := c.node(nodeID)
	if err != nil {
		return ozw.ChangeLogEntry{}, err
	}
	return c.lib.NodeChangeLog(home, nodeID, revision)
}

func (c *Coordinator) nodeOp(nodeID uint8, op func(home uint32) error) error {
	home, err := c.node(nodeID)
	if err != nil {
		return err
	}
	return op(home)
}

// SetNodeName renames a node.
func (c *Coordinator) SetNodeName(nodeID uint8, name string) error {
	return c.nodeOp(nodeID, func(home uint32) error { return c.lib.SetNodeName(home, nodeID, name) })
}

// SetNodeLocation sets the location text of a node.
func (c *Coordinator) SetNodeLocation(nodeID uint8, location string) error {
	return c.nodeOp(nodeID, func(home uint32) error { return c.lib.SetNodeLocation(home, nodeID, location) })
}

func (c *Coordinator) SetNodeManufacturerName(nodeID uint8, name string) error {
	return c.nodeOp(nodeID, func(home uint32) error { return c.lib.SetNodeManufacturerName(home, nodeID, name) })
}

func (c *Coordinator) SetNodeProductName(nodeID uint8, name string) error {
	return c.nodeOp(nodeID, func(home uint32) error { return c.lib.SetNodeProductName(home, nodeID, name) })
}

// SetNodeOn sends a basic set "on" to the node.
func (c *Coordinator) SetNodeOn(nodeID uint8) error {
	return c.nodeOp(nodeID, func(home uint32) error { return c.lib.SetNodeOn(home, nodeID) })
}

// SetNodeOff sends a basic set "off" to the node.
func (c *Coordinator) SetNodeOff(nodeID uint8) error {
	return c.nodeOp(nodeID, func(home uint32) error { return c.lib.SetNodeOff(home, nodeID) })
}

// SetNodeLevel sends a basic set with level 0-99 (255 restores the last level).
func (c *Coordinator) SetNodeLevel(nodeID, level uint8) error {
	if level > 99 && level != 255 {
		return fmt.Errorf("%w: level %d", ErrInvalidArgument, level)
	}
	return c.nodeOp(nodeID, func(home uint32) error { return c.lib.SetNodeLevel(home, nodeID, level) })
}

// RefreshNodeInfo re-runs the full interview of a node.
func (c *Coordinator) RefreshNodeInfo(nodeID uint8) error {
	return c.nodeOp(nodeID, func(home uint32) error { return c.lib.RefreshNodeInfo(home, nodeID) })
}

func (c *Coordinator) RequestNodeState(nodeID uint8) error {
	return c.nodeOp(nodeID, func(home uint32) error { return c.lib.RequestNodeState(home, nodeID) })
}

func (c *Coordinator) RequestNodeDynamic(nodeID uint8) error {
	return c.nodeOp(nodeID, func(home uint32) error { return c.lib.RequestNodeDynamic(home, nodeID) })
}

// SwitchAllOn turns on every device that supports switch all.
func (c *Coordinator) SwitchAllOn() error {
	home, err := c.home()
	if err != nil {
		return err
	}
	return c.lib.SwitchAllOn(home)
}

// SwitchAllOff turns off every device that supports switch all.
func (c *Coordinator) SwitchAllOff() error {
	home, err := c.home()
	if err != nil {
		return err
	}
	return c.lib.SwitchAllOff(home)
}

// --- Association groups ---

// Groups lists the association groups of a node. Group indices start at 1.
func (c *Coordinator) Groups(nodeID uint8) ([]GroupInfo, error) {
	home, err := c.node(nodeID)
	if err != nil {
		return nil, err
	}
	n, err := c.lib.NumGroups(home, nodeID)
	if err != nil {
		return nil, err
	}
	groups := make([]GroupInfo, 0, n)
	for g := uint8(1); g <= n; g++ {
		info := GroupInfo{Index: g}
		if info.Label, err = c.lib.GroupLabel(home, nodeID, g); err != nil {
			return nil, fmt.Errorf("group %d label: %w", g, err)
		}
		if info.Max, err = c.lib.MaxAssociations(home, nodeID, g); err != nil {
			return nil, fmt.Errorf("group %d max: %w", g, err)
		}
		if info.Members, err = c.lib.Associations(home, nodeID, g); err != nil {
			return nil, fmt.Errorf("group %d associations: %w", g, err)
		}
		groups = append(groups, info)
	}
	return groups, nil
}

// AddAssociation adds target to a group of the node.
func (c *Coordinator) AddAssociation(nodeID, group, target uint8) error {
	return c.nodeOp(nodeID, func(home uint32) error { return c.lib.AddAssociation(home, nodeID, group, target) })
}

// RemoveAssociation removes target from a group of the node.
func (c *Coordinator) RemoveAssociation(nodeID, group, target uint8) error {
	return c.nodeOp(nodeID, func(home uint32) error { return c.lib.RemoveAssociation(home, nodeID, group, target) })
}

// --- Configuration parameters ---

// SetConfigParam writes a configuration parameter of 1, 2 or 4 bytes.
func (c *Coordinator) SetConfigParam(nodeID, param uint8, v int32, size uint8) error {
	switch size {
	case 1, 2, 4:
	default:
		return fmt.Errorf("%w: config param size %d", ErrInvalidArgument, size)
	}
	return c.nodeOp(nodeID, func(home uint32) error { return c.lib.SetConfigParam(home, nodeID, param, v, size) })
}

// RequestConfigParam asks the node to report a parameter. The answer
// arrives as a value event.
func (c *Coordinator) RequestConfigParam(nodeID, param uint8) error {
	return c.nodeOp(nodeID, func(home uint32) error { return c.lib.RequestConfigParam(home, nodeID, param) })
}

func (c *Coordinator) RequestAllConfigParams(nodeID uint8) error {
	return c.nodeOp(nodeID, func(home uint32) error { return c.lib.RequestAllConfigParams(home, nodeID) })
}

// --- Network maintenance ---

// HealNetworkNode rebuilds the routes of one node.
func (c *Coordinator) HealNetworkNode(nodeID uint8, doReturnRoutes bool) error {
	return c.nodeOp(nodeID, func(home uint32) error { return c.lib.HealNetworkNode(home, nodeID, doReturnRoutes) })
}

// HealNetwork rebuilds the routes of every node.
func (c *Coordinator) HealNetwork(doReturnRoutes bool) error {
	home, err := c.home()
	if err != nil {
		return err
	}
	return c.lib.HealNetwork(home, doReturnRoutes)
}

// TestNetworkNode sends count test frames to a node.
func (c *Coordinator) TestNetworkNode(nodeID uint8, count uint32) error {
	if count == 0 {
		count = 1
	}
	return c.nodeOp(nodeID, func(home uint32) error { return c.lib.TestNetworkNode(home, nodeID, count) })
}

// TestNetwork sends count test frames to every node.
func (c *Coordinator) TestNetwork(count uint32) error {
	if count == 0 {
		count = 1
	}
	home, err := c.home()
	if err != nil {
		return err
	}
	return c.lib.TestNetwork(home, count)
}
