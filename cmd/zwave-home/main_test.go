package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, "driver:\n  port: /dev/ttyACM0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Driver.Type != "sim" {
		t.Errorf("driver.type = %q, want sim", cfg.Driver.Type)
	}
	if cfg.Web.Listen != "127.0.0.1:8080" {
		t.Errorf("web.listen = %q", cfg.Web.Listen)
	}
	if cfg.Polling.Interval != 30*time.Second {
		t.Errorf("polling.interval = %s", cfg.Polling.Interval)
	}
	if cfg.MQTT.TopicPrefix != "zwave" || cfg.MQTT.Discovery == nil || !*cfg.MQTT.Discovery {
		t.Errorf("mqtt = %+v", cfg.MQTT)
	}
	if cfg.ProductsDir != "products" || cfg.ScriptsDir != "scripts" {
		t.Errorf("dirs = %q, %q", cfg.ProductsDir, cfg.ScriptsDir)
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestLoadConfigValues(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, `
driver:
  type: sim
  port: /dev/ttyUSB1
  home_id: 12345
polling:
  interval: 90s
  between: true
mqtt:
  enabled: true
  broker: tcp://localhost:1883
  discovery: false
log:
  level: debug
  format: json
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Driver.Port != "/dev/ttyUSB1" || cfg.Driver.HomeID != 12345 {
		t.Errorf("driver = %+v", cfg.Driver)
	}
	if cfg.Polling.Interval != 90*time.Second || !cfg.Polling.Between {
		t.Errorf("polling = %+v", cfg.Polling)
	}
	if *cfg.MQTT.Discovery {
		t.Error("mqtt.discovery should be false")
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing port", "driver:\n  type: sim\n", "driver.port"},
		{"unknown driver", "driver:\n  type: zstick\n  port: /dev/x\n", "unknown driver type"},
		{"mqtt without broker", "driver:\n  port: /dev/x\nmqtt:\n  enabled: true\n", "mqtt.broker"},
		{"negative poll", "driver:\n  port: /dev/x\npolling:\n  interval: -1s\n", "polling.interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(writeConfig(t, tt.body))
			if err != nil {
				t.Fatal(err)
			}
			err = cfg.validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
