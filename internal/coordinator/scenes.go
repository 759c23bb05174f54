package coordinator

import (
	"errors"
	"fmt"

	"zwave-go-home/internal/ozw"
	"zwave-go-home/internal/value"
)

// syncScenes refreshes the scene cache when the library's scene count
// differs from the cached one.
func (c *Coordinator) syncScenes() {
	rebuilt := c.registry.SyncScenes(c.lib.NumScenes(), func() []SceneEntry {
		ids := c.lib.AllScenes()
		out := make([]SceneEntry, 0, len(ids))
		for _, id := range ids {
			e := SceneEntry{SceneID: id}
			label, err := c.lib.SceneLabel(id)
			if err != nil {
				c.logger.Warn("scene label", "scene", id, "err", err)
			}
			e.Label = label
			if e.Values, err = c.lib.SceneValues(id); err != nil {
				c.logger.Warn("scene values", "scene", id, "err", err)
			}
			out = append(out, e)
		}
		return out
	})
	if rebuilt {
		c.logger.Debug("scene cache rebuilt", "scenes", len(c.registry.Scenes()))
	}
}

func (c *Coordinator) scene(sceneID uint8) error {
	if !c.lib.SceneExists(sceneID) {
		return fmt.Errorf("%w: %d", ErrSceneNotFound, sceneID)
	}
	return nil
}

// CreateScene creates a scene and returns its id.
func (c *Coordinator) CreateScene(label string) (uint8, error) {
	id, err := c.lib.CreateScene()
	if err != nil {
		return 0, fmt.Errorf("create scene: %w", err)
	}
	if label != "" {
		if err := c.lib.SetSceneLabel(id, label); err != nil {
			return id, fmt.Errorf("label scene %d: %w", id, err)
		}
	}
	c.registry.AddScene(SceneEntry{SceneID: id, Label: label})
	c.logger.Info("scene created", "scene", id, "label", label)
	return id, nil
}

// RemoveScene deletes a scene.
func (c *Coordinator) RemoveScene(sceneID uint8) error {
	if err := c.scene(sceneID); err != nil {
		return err
	}
	if err := c.lib.RemoveScene(sceneID); err != nil {
		return fmt.Errorf("remove scene %d: %w", sceneID, err)
	}
	c.registry.RemoveScene(sceneID)
	return nil
}

// SetSceneLabel renames a scene.
func (c *Coordinator) SetSceneLabel(sceneID uint8, label string) error {
	if err := c.scene(sceneID); err != nil {
		return err
	}
	if err := c.lib.SetSceneLabel(sceneID, label); err != nil {
		return err
	}
	c.registry.SetSceneLabel(sceneID, label)
	return nil
}

// GetScenes lists scenes and emits them as a scenes list event.
func (c *Coordinator) GetScenes() []SceneInfo {
	c.syncScenes()
	entries := c.registry.Scenes()
	scenes := make([]SceneInfo, len(entries))
	for i, e := range entries {
		scenes[i] = SceneInfo{SceneID: e.SceneID, Label: e.Label}
	}
	c.events.Emit(Event{Type: EventScenesList, Data: ScenesListData{Scenes: scenes}})
	return scenes
}

// AddSceneValue stores input as the scene's target for a value.
func (c *Coordinator) AddSceneValue(sceneID uint8, k ozw.ValueKey, input any) error {
	if err := c.scene(sceneID); err != nil {
		return err
	}
	id, err := c.lookupValue(k)
	if err != nil {
		return err
	}
	if err := c.codec.EncodeScene(c.lib, sceneID, id, input); err != nil {
		return fmt.Errorf("scene %d value %s: %w", sceneID, k, err)
	}
	c.registry.AddSceneValue(sceneID, id)
	return nil
}

// RemoveSceneValue drops a value from a scene.
func (c *Coordinator) RemoveSceneValue(sceneID uint8, k ozw.ValueKey) error {
	if err := c.scene(sceneID); err != nil {
		return err
	}
	id, err := c.lookupValue(k)
	if err != nil {
		return err
	}
	if err := c.lib.RemoveSceneValue(sceneID, id); err != nil {
		return fmt.Errorf("scene %d value %s: %w", sceneID, k, err)
	}
	c.registry.RemoveSceneValue(sceneID, id)
	return nil
}

// SceneGetValues decodes the values stored in a scene and emits them as a
// scene values list event. Values of types that scenes cannot hold are
// skipped.
func (c *Coordinator) SceneGetValues(sceneID uint8) ([]*value.Record, error) {
	if err := c.scene(sceneID); err != nil {
		return nil, err
	}
	ids, err := c.lib.SceneValues(sceneID)
	if err != nil {
		return nil, fmt.Errorf("scene %d values: %w", sceneID, err)
	}
	c.registry.SetSceneValues(sceneID, ids)

	records := make([]*value.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := c.codec.DecodeScene(c.lib, sceneID, id)
		if err != nil {
			if errors.Is(err, value.ErrUnsupported) {
				c.logger.Debug("skip scene value", "scene", sceneID, "value", id.Key().String(), "type", id.Type.String())
			} else {
				c.logger.Warn("decode scene value", "scene", sceneID, "err", err)
			}
			continue
		}
		records = append(records, rec)
	}
	c.events.Emit(Event{Type: EventSceneValuesList, Data: SceneValuesData{SceneID: sceneID, Values: records}})
	return records, nil
}

// ActivateScene applies every stored value of the scene.
func (c *Coordinator) ActivateScene(sceneID uint8) error {
	if err := c.scene(sceneID); err != nil {
		return err
	}
	c.logger.Info("activating scene", "scene", sceneID)
	return c.lib.ActivateScene(sceneID)
}
