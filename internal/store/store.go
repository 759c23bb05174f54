package store

import "errors"

// ErrNotFound is returned when a requested entity does not exist in the store.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface.
type Store interface {
	// Node operations
	SaveNode(node *Node) error
	GetNode(nodeID uint8) (*Node, error)
	DeleteNode(nodeID uint8) error
	ListNodes() ([]*Node, error)
	ClearNodes() error

	// UpdateNode atomically reads, modifies, and saves a node in a single
	// transaction. A missing node is created from NewNode first.
	UpdateNode(nodeID uint8, fn func(node *Node) error) error

	// Network state
	SaveNetworkState(state *NetworkState) error
	GetNetworkState() (*NetworkState, error)

	// Close the store
	Close() error
}
