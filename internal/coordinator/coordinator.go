package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"zwave-go-home/internal/ozw"
	"zwave-go-home/internal/value"
)

// Caller errors. They are returned synchronously and nothing is queued.
var (
	ErrNotConnected     = errors.New("coordinator: driver not ready")
	ErrAlreadyConnected = errors.New("coordinator: driver already connected")
	ErrInvalidArgument  = errors.New("coordinator: invalid argument")
	ErrNodeNotFound     = errors.New("coordinator: node not found")
	ErrValueNotFound    = errors.New("coordinator: value not found")
	ErrSceneNotFound    = errors.New("coordinator: scene not found")
)

// Config holds coordinator configuration.
type Config struct {
	PollInterval time.Duration
	PollBetween  bool
	// ProbePort waits for the serial device to open before adding the driver.
	ProbePort bool
}

// DriverConfig holds controller hardware settings for display purposes.
type DriverConfig struct {
	Type string
	Port string
}

// Observer receives queue and dispatch measurements.
type Observer interface {
	QueueDepth(n int)
	RecordDispatched(kind string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) QueueDepth(int)                         {}
func (nopObserver) RecordDispatched(string, time.Duration) {}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithObserver reports queue and dispatch measurements to o.
func WithObserver(o Observer) Option {
	return func(c *Coordinator) { c.observer = o }
}

// Coordinator owns the bridge between the device library and its callers:
// the registry, the record queue and its consumer, and the event bus.
type Coordinator struct {
	lib        ozw.Manager
	codec      *value.Codec
	registry   *Registry
	queue      *Queue
	dispatcher *Dispatcher
	products   *ProductDB
	events     *EventBus
	observer   Observer
	logger     *slog.Logger
	config     Config
	driverCfg  DriverConfig

	mu         sync.Mutex
	driverPath string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a coordinator over lib. Call Start before Connect.
func New(lib ozw.Manager, products *ProductDB, events *EventBus, cfg Config, driverCfg DriverConfig, logger *slog.Logger, opts ...Option) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		lib:       lib,
		codec:     value.NewCodec(logger),
		registry:  NewRegistry(),
		queue:     NewQueue(),
		products:  products,
		events:    events,
		observer:  nopObserver{},
		logger:    logger.With("component", "coordinator"),
		config:    cfg,
		driverCfg: driverCfg,
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.dispatcher = NewDispatcher(lib, c.registry, events, c.codec, logger)
	c.dispatcher.nodeReady = c.applyProduct
	return c
}

// Context returns the coordinator's context, which is cancelled on Stop().
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// Start registers the notification watcher and starts the consumer.
func (c *Coordinator) Start() error {
	if err := c.lib.AddWatcher(c.onNotification); err != nil {
		return fmt.Errorf("add watcher: %w", err)
	}
	if c.config.PollInterval > 0 {
		c.lib.SetPollInterval(c.config.PollInterval, c.config.PollBetween)
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.queue.Run(c.ctx, c.consume)
	}()
	c.logger.Info("coordinator started", "library", c.lib.LibraryVersion())
	return nil
}

// Stop removes the watcher and stops the consumer. Records still queued
// are dropped.
func (c *Coordinator) Stop() {
	if err := c.lib.RemoveWatcher(); err != nil {
		c.logger.Warn("remove watcher", "err", err)
	}
	c.cancel()
	c.queue.Close()
	c.wg.Wait()
}

// onNotification runs on the library's worker goroutine.
func (c *Coordinator) onNotification(n *ozw.Notification) {
	c.queue.Enqueue(newNotificationRecord(n))
	c.observer.QueueDepth(c.queue.Len())
}

// onControllerProgress runs on the library's worker goroutine.
func (c *Coordinator) onControllerProgress(state ozw.ControllerState, err ozw.ControllerError) {
	c.queue.Enqueue(&ControllerCommandRecord{Progress: state, Err: err})
	c.observer.QueueDepth(c.queue.Len())
}

func (c *Coordinator) consume(r Record) {
	start := time.Now()
	c.dispatcher.Dispatch(r)
	c.observer.RecordDispatched(recordKind(r), time.Since(start))
	c.observer.QueueDepth(c.queue.Len())
}

func recordKind(r Record) string {
	if n, ok := r.(*NotificationRecord); ok {
		return n.Kind.String()
	}
	return "ControllerCommand"
}

// Connect adds the driver for the controller at path. Network discovery
// proceeds asynchronously and is reported as events.
func (c *Coordinator) Connect(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty driver path", ErrInvalidArgument)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.driverPath != "" {
		return fmt.Errorf("%w: %s", ErrAlreadyConnected, c.driverPath)
	}
	if c.config.ProbePort {
		if err := ozw.ProbePort(ctx, path, ozw.DefaultBaudRate); err != nil {
			return fmt.Errorf("probe %s: %w", path, err)
		}
	}
	if err := c.lib.AddDriver(path); err != nil {
		return fmt.Errorf("add driver: %w", err)
	}
	c.driverPath = path
	version := c.lib.LibraryVersion()
	c.logger.Info("driver added", "path", path, "version", version)
	c.events.Emit(Event{Type: EventConnected, Data: ConnectedData{Version: version, Path: path}})
	return nil
}

// Disconnect removes the driver and clears the registry.
func (c *Coordinator) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.driverPath == "" {
		return ErrNotConnected
	}
	if err := c.lib.RemoveDriver(c.driverPath); err != nil {
		return fmt.Errorf("remove driver: %w", err)
	}
	c.logger.Info("driver removed", "path", c.driverPath)
	c.driverPath = ""
	c.registry.Clear()
	return nil
}

// DriverPath returns the connected controller path, or "".
func (c *Coordinator) DriverPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.driverPath
}

// HomeID returns the network id, or 0 before the driver is ready.
func (c *Coordinator) HomeID() uint32 {
	return c.dispatcher.HomeID()
}

// Events returns the event bus.
func (c *Coordinator) Events() *EventBus {
	return c.events
}

// Registry returns the node and scene cache.
func (c *Coordinator) Registry() *Registry {
	return c.registry
}

// Products returns the product database.
func (c *Coordinator) Products() *ProductDB {
	return c.products
}

// DriverConfig returns the controller hardware settings.
func (c *Coordinator) DriverConfig() DriverConfig {
	return c.driverCfg
}

// QueueLen returns the number of records awaiting dispatch.
func (c *Coordinator) QueueLen() int {
	return c.queue.Len()
}

// LibraryVersion reports the device library version.
func (c *Coordinator) LibraryVersion() string {
	return c.lib.LibraryVersion()
}

func (c *Coordinator) home() (uint32, error) {
	h := c.dispatcher.HomeID()
	if h == 0 {
		return 0, ErrNotConnected
	}
	return h, nil
}

// HardReset erases the controller's network. Every node except the
// controller is forgotten.
func (c *Coordinator) HardReset() error {
	home, err := c.home()
	if err != nil {
		return err
	}
	c.logger.Warn("resetting controller", "home_id", formatHomeID(home))
	return c.lib.ResetController(home)
}

// SoftReset restarts the controller without erasing its network.
func (c *Coordinator) SoftReset() error {
	home, err := c.home()
	if err != nil {
		return err
	}
	return c.lib.SoftReset(home)
}

// ControllerInfo reports identity and role of the local controller.
func (c *Coordinator) ControllerInfo() (ozw.ControllerInfo, error) {
	home, err := c.home()
	if err != nil {
		return ozw.ControllerInfo{}, err
	}
	return c.lib.ControllerInfo(home)
}

// DriverStatistics returns the serial link counters.
func (c *Coordinator) DriverStatistics() (ozw.DriverStats, error) {
	home, err := c.home()
	if err != nil {
		return ozw.DriverStats{}, err
	}
	return c.lib.DriverStatistics(home)
}

// applyProduct configures a node from its product definition, if any.
// It runs on the consumer goroutine after the node ready event.
func (c *Coordinator) applyProduct(nodeID uint8, info ozw.NodeInfo) {
	def := c.products.Lookup(info.ManufacturerID, info.ProductType, info.ProductID)
	if def == nil {
		return
	}
	home, err := c.home()
	if err != nil {
		return
	}
	log := c.logger.With("node", nodeID, "product", info.Product)

	if def.Name != "" && info.Name == "" {
		if err := c.lib.SetNodeName(home, nodeID, def.Name); err != nil {
			log.Warn("set node name", "err", err)
		}
	}
	if def.Location != "" && info.Location == "" {
		if err := c.lib.SetNodeLocation(home, nodeID, def.Location); err != nil {
			log.Warn("set node location", "err", err)
		}
	}
	for _, p := range def.Poll {
		id, ok := c.registry.LookupValue(nodeID, p.Class, p.Instance, p.Index)
		if !ok {
			log.Warn("poll value not found", "class", p.Class, "instance", p.Instance, "index", p.Index)
			continue
		}
		intensity := p.Intensity
		if intensity == 0 {
			intensity = 1
		}
		if err := c.lib.EnablePoll(id, intensity); err != nil {
			log.Warn("enable poll", "value", id.Key().String(), "err", err)
		}
	}
	for _, cfg := range def.Config {
		if err := c.lib.SetConfigParam(home, nodeID, cfg.Param, cfg.Value, cfg.Size); err != nil {
			log.Warn("set config param", "param", cfg.Param, "err", err)
		}
	}
	log.Info("applied product definition", "poll", len(def.Poll), "config", len(def.Config))
}

func formatHomeID(h uint32) string {
	return fmt.Sprintf("0x%08x", h)
}
