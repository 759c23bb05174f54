package store

import "time"

// Node is the last known state of a Z-Wave node, kept across restarts so
// the network can be shown before the interview completes.
type Node struct {
	NodeID         uint8          `json:"node_id"`
	HomeID         uint32         `json:"home_id"`
	Manufacturer   string         `json:"manufacturer,omitempty"`
	ManufacturerID string         `json:"manufacturer_id,omitempty"`
	Product        string         `json:"product,omitempty"`
	ProductType    string         `json:"product_type,omitempty"`
	ProductID      string         `json:"product_id,omitempty"`
	Type           string         `json:"type,omitempty"`
	Name           string         `json:"name,omitempty"`
	Location       string         `json:"location,omitempty"`
	Ready          bool           `json:"ready"`
	Dead           bool           `json:"dead"`
	FirstSeen      time.Time      `json:"first_seen"`
	LastSeen       time.Time      `json:"last_seen"`
	Values         map[string]any `json:"values,omitempty"` // keyed by "node-class-instance-index"
}

// NewNode returns an empty node record first seen now.
func NewNode(nodeID uint8) *Node {
	now := time.Now()
	return &Node{NodeID: nodeID, FirstSeen: now, LastSeen: now, Values: make(map[string]any)}
}

// NetworkState holds the persisted controller identity.
type NetworkState struct {
	HomeID         uint32    `json:"home_id"`
	DriverPath     string    `json:"driver_path"`
	LibraryVersion string    `json:"library_version,omitempty"`
	LastReady      time.Time `json:"last_ready"`
	LastScan       time.Time `json:"last_scan,omitempty"`
}
