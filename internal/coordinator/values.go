package coordinator

import (
	"fmt"
	"time"

	"zwave-go-home/internal/ozw"
	"zwave-go-home/internal/value"
)

// lookupValue resolves a tuple through the registry. The registry lock is
// released before the caller touches the library.
func (c *Coordinator) lookupValue(k ozw.ValueKey) (ozw.ValueID, error) {
	if _, ok := c.registry.LookupNode(k.NodeID); !ok {
		return ozw.ValueID{}, fmt.Errorf("%w: %d", ErrNodeNotFound, k.NodeID)
	}
	id, ok := c.registry.LookupValue(k.NodeID, k.CommandClass, k.Instance, k.Index)
	if !ok {
		return ozw.ValueID{}, fmt.Errorf("%w: %s", ErrValueNotFound, k)
	}
	return id, nil
}

// SetValue writes input to the value. The change is confirmed later by a
// value changed or value refreshed event.
func (c *Coordinator) SetValue(k ozw.ValueKey, input any) error {
	id, err := c.lookupValue(k)
	if err != nil {
		return err
	}
	if err := c.codec.Encode(c.lib, id, input); err != nil {
		return fmt.Errorf("set %s: %w", k, err)
	}
	return nil
}

// GetValue decodes the current state of a value.
func (c *Coordinator) GetValue(k ozw.ValueKey) (*value.Record, error) {
	id, err := c.lookupValue(k)
	if err != nil {
		return nil, err
	}
	return c.codec.Decode(c.lib, id)
}

// RefreshValue asks the device for a fresh report of the value.
func (c *Coordinator) RefreshValue(k ozw.ValueKey) error {
	id, err := c.lookupValue(k)
	if err != nil {
		return err
	}
	return c.lib.RefreshValue(id)
}

// SetChangeVerified toggles double-read verification of reported changes.
func (c *Coordinator) SetChangeVerified(k ozw.ValueKey, verify bool) error {
	id, err := c.lookupValue(k)
	if err != nil {
		return err
	}
	return c.lib.SetChangeVerified(id, verify)
}

func (c *Coordinator) classValues(nodeID, classID uint8) ([]ozw.ValueID, error) {
	if _, ok := c.registry.LookupNode(nodeID); !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, nodeID)
	}
	ids := c.registry.ValuesByClass(nodeID, classID)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: node %d class 0x%02x", ErrValueNotFound, nodeID, classID)
	}
	return ids, nil
}

// EnablePoll polls every value of a command class on the node.
func (c *Coordinator) EnablePoll(nodeID, classID, intensity uint8) error {
	if intensity == 0 {
		intensity = 1
	}
	ids, err := c.classValues(nodeID, classID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := c.lib.EnablePoll(id, intensity); err != nil {
			return fmt.Errorf("enable poll %s: %w", id.Key(), err)
		}
	}
	return nil
}

// DisablePoll stops polling every value of a command class on the node.
func (c *Coordinator) DisablePoll(nodeID, classID uint8) error {
	ids, err := c.classValues(nodeID, classID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := c.lib.DisablePoll(id); err != nil {
			return fmt.Errorf("disable poll %s: %w", id.Key(), err)
		}
	}
	return nil
}

// IsPolled reports whether the value is polled.
func (c *Coordinator) IsPolled(k ozw.ValueKey) (bool, error) {
	id, err := c.lookupValue(k)
	if err != nil {
		return false, err
	}
	return c.lib.IsValuePolled(id), nil
}

// SetPollIntensity sets how often, in poll cycles, the value is polled.
func (c *Coordinator) SetPollIntensity(k ozw.ValueKey, intensity uint8) error {
	id, err := c.lookupValue(k)
	if err != nil {
		return err
	}
	return c.lib.SetPollIntensity(id, intensity)
}

// PollInterval returns the poll cycle interval.
func (c *Coordinator) PollInterval() time.Duration {
	return c.lib.PollInterval()
}

// SetPollInterval sets the poll cycle interval. When between is set the
// interval separates individual polls instead of whole cycles.
func (c *Coordinator) SetPollInterval(d time.Duration, between bool) error {
	if d <= 0 {
		return fmt.Errorf("%w: poll interval %s", ErrInvalidArgument, d)
	}
	c.lib.SetPollInterval(d, between)
	return nil
}
