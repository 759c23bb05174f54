package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"zwave-go-home/internal/coordinator"
	"zwave-go-home/internal/metrics"
	"zwave-go-home/internal/ozw"
	"zwave-go-home/internal/store"
	"zwave-go-home/internal/web"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

type Config struct {
	Driver struct {
		Type   string `yaml:"type"` // "sim"
		Port   string `yaml:"port"`
		HomeID uint32 `yaml:"home_id"` // sim only
		Probe  bool   `yaml:"probe"`
	} `yaml:"driver"`
	Web struct {
		Listen         string   `yaml:"listen"`
		APIKey         string   `yaml:"api_key"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"web"`
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	MQTT struct {
		Enabled     bool   `yaml:"enabled"`
		Broker      string `yaml:"broker"`
		Username    string `yaml:"username"`
		Password    string `yaml:"password"`
		TopicPrefix string `yaml:"topic_prefix"`
		ClientID    string `yaml:"client_id"`
		Discovery   *bool  `yaml:"discovery"`
	} `yaml:"mqtt"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Polling struct {
		Interval time.Duration `yaml:"interval"`
		Between  bool          `yaml:"between"`
	} `yaml:"polling"`
	ProductsDir string `yaml:"products_dir"`
	ScriptsDir  string `yaml:"scripts_dir"`
}

func (c *Config) validate() error {
	if c.Driver.Port == "" {
		return fmt.Errorf("driver.port is required")
	}
	if c.Driver.Type != "sim" {
		return fmt.Errorf("unknown driver type: %q (supported: sim)", c.Driver.Type)
	}
	if c.Polling.Interval < 0 {
		return fmt.Errorf("polling.interval must not be negative, got %s", c.Polling.Interval)
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}
	return nil
}

func main() {
	// Temporary logger for config loading errors.
	bootLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfgPath := "config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		bootLogger.Error("load config", "err", err)
		os.Exit(1)
	}
	if err := cfg.validate(); err != nil {
		bootLogger.Error("invalid config", "err", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("zwave-go-home starting", "version", version)

	products, err := coordinator.LoadProductDir(cfg.ProductsDir, logger)
	if err != nil {
		logger.Error("load product definitions", "err", err)
		os.Exit(1)
	}
	logger.Info("product definitions loaded", "products", products.Len())

	db, err := store.NewBoltStore(cfg.Store.Path)
	if err != nil {
		logger.Error("open store", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if state, err := db.GetNetworkState(); err == nil {
		logger.Info("last known network", "home_id", fmt.Sprintf("0x%08x", state.HomeID), "path", state.DriverPath, "last_ready", state.LastReady)
	} else if !errors.Is(err, store.ErrNotFound) {
		logger.Warn("read network state", "err", err)
	}

	lib, closeLib, err := createDriver(cfg, logger)
	if err != nil {
		logger.Error("create driver", "err", err)
		os.Exit(1)
	}
	defer closeLib()

	m := metrics.New()
	events := coordinator.NewEventBus(logger)
	unsubMetrics := m.Attach(events)
	defer unsubMetrics()
	unsubStore := store.NewRecorder(db, logger).Attach(events)
	defer unsubStore()

	coord := coordinator.New(lib, products, events, coordinator.Config{
		PollInterval: cfg.Polling.Interval,
		PollBetween:  cfg.Polling.Between,
		ProbePort:    cfg.Driver.Probe,
	}, coordinator.DriverConfig{
		Type: cfg.Driver.Type,
		Port: cfg.Driver.Port,
	}, logger, coordinator.WithObserver(m))

	if err := coord.Start(); err != nil {
		logger.Error("start coordinator", "err", err)
		os.Exit(1)
	}

	// Start automation engine (no-op when built with no_automation tag).
	auto, autoWebOpts := initAutomation(coord, cfg, logger)

	webOpts := []web.ServerOption{
		web.WithVersion(version),
		web.WithStore(db),
		web.WithMetrics(m.Handler()),
	}
	if cfg.Web.APIKey != "" {
		webOpts = append(webOpts, web.WithAPIKey(cfg.Web.APIKey))
	}
	if len(cfg.Web.AllowedOrigins) > 0 {
		webOpts = append(webOpts, web.WithAllowedOrigins(cfg.Web.AllowedOrigins))
	}
	webOpts = append(webOpts, autoWebOpts...)
	webServer := web.NewServer(coord, logger, webOpts...)

	httpServer := &http.Server{
		Addr:         cfg.Web.Listen,
		Handler:      webServer,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("web server starting", "addr", cfg.Web.Listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", "err", err)
		}
	}()

	// Start MQTT bridge (no-op when built with no_mqtt tag).
	mqtt := initMQTT(coord, cfg, logger)

	// Subscribers are in place; discovery events from here on reach all of them.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := coord.Connect(ctx, cfg.Driver.Port); err != nil {
		logger.Error("connect driver", "err", err)
	}
	cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	signal.Stop(sigCh)
	logger.Info("shutting down", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	auto.Stop()
	mqtt.Stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", "err", err)
	}
	webServer.Stop()
	if err := coord.Disconnect(); err != nil {
		logger.Warn("disconnect driver", "err", err)
	}
	coord.Stop()

	logger.Info("goodbye")
}

// createDriver builds the library backend named by driver.type.
func createDriver(cfg *Config, logger *slog.Logger) (ozw.Manager, func(), error) {
	switch cfg.Driver.Type {
	case "sim":
		home := cfg.Driver.HomeID
		if home == 0 {
			home = 0xC0FFEE01
		}
		logger.Info("using simulated controller", "port", cfg.Driver.Port, "home_id", fmt.Sprintf("0x%08x", home))
		sim := ozw.NewSim(home, logger, ozw.DemoNetwork()...)
		return sim, func() { sim.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown driver type: %q (supported: sim)", cfg.Driver.Type)
	}
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Driver.Type == "" {
		cfg.Driver.Type = "sim"
	}
	if cfg.Web.Listen == "" {
		cfg.Web.Listen = "127.0.0.1:8080"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "zwave-home.db"
	}
	if cfg.Polling.Interval == 0 {
		cfg.Polling.Interval = 30 * time.Second
	}
	if cfg.ProductsDir == "" {
		cfg.ProductsDir = "products"
	}
	if cfg.ScriptsDir == "" {
		cfg.ScriptsDir = "scripts"
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = "zwave"
	}
	if cfg.MQTT.Discovery == nil {
		on := true
		cfg.MQTT.Discovery = &on
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	return &cfg, nil
}

func newLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
