package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
connection:
  port: "/dev/ttyACM0"
  baud_index: 2
  open_timeout: 500ms
  receive_timeout: 40ms
  reply_timeout: 200ms
logging:
  level: debug
journal:
  enabled: true
  path: "/tmp/journal.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Connection.Port != "/dev/ttyACM0" {
		t.Errorf("Connection.Port = %q, want %q", cfg.Connection.Port, "/dev/ttyACM0")
	}
	if cfg.Connection.BaudIndex != 2 {
		t.Errorf("Connection.BaudIndex = %d, want 2", cfg.Connection.BaudIndex)
	}
	if cfg.Connection.OpenTimeout != 500*time.Millisecond {
		t.Errorf("Connection.OpenTimeout = %v, want 500ms", cfg.Connection.OpenTimeout)
	}
	if cfg.Connection.ReceiveTimeout != 40*time.Millisecond {
		t.Errorf("Connection.ReceiveTimeout = %v, want 40ms", cfg.Connection.ReceiveTimeout)
	}
	if got := cfg.Connection.EffectiveReplyTimeout(); got != 200*time.Millisecond {
		t.Errorf("EffectiveReplyTimeout() = %v, want 200ms", got)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	// Defaults survive when the file is silent.
	if cfg.Connection.DataBits != 8 {
		t.Errorf("Connection.DataBits = %d, want default 8", cfg.Connection.DataBits)
	}
	if cfg.Connection.AppName != "gxdccpp" {
		t.Errorf("Connection.AppName = %q, want default gxdccpp", cfg.Connection.AppName)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "connection: [yaml: content")
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
connection:
  port: "/dev/ttyUSB0"
`)
	t.Setenv("GXDCCPP_PORT", "/dev/ttyACM3")
	t.Setenv("GXDCCPP_JOURNAL_PATH", "/var/lib/gxdccpp/journal.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Connection.Port != "/dev/ttyACM3" {
		t.Errorf("Connection.Port = %q, want env override", cfg.Connection.Port)
	}
	if cfg.Journal.Path != "/var/lib/gxdccpp/journal.db" {
		t.Errorf("Journal.Path = %q, want env override", cfg.Journal.Path)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "data bits out of range",
			mutate:  func(c *Config) { c.Connection.DataBits = 9 },
			wantErr: "data_bits",
		},
		{
			name:    "stop bits out of range",
			mutate:  func(c *Config) { c.Connection.StopBits = 3 },
			wantErr: "stop_bits",
		},
		{
			name:    "negative baud index",
			mutate:  func(c *Config) { c.Connection.BaudIndex = -1 },
			wantErr: "baud_index",
		},
		{
			name:    "zero receive timeout",
			mutate:  func(c *Config) { c.Connection.ReceiveTimeout = 0 },
			wantErr: "receive_timeout",
		},
		{
			name: "mqtt enabled without host",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.Broker.Host = ""
			},
			wantErr: "mqtt.broker.host",
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name: "journal enabled without path",
			mutate: func(c *Config) {
				c.Journal.Enabled = true
				c.Journal.Path = ""
			},
			wantErr: "journal.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestEffectiveReplyTimeout_FallsBackToReceiveTimeout(t *testing.T) {
	c := ConnectionConfig{ReceiveTimeout: 50 * time.Millisecond}
	if got := c.EffectiveReplyTimeout(); got != 50*time.Millisecond {
		t.Errorf("EffectiveReplyTimeout() = %v, want 50ms", got)
	}
}
