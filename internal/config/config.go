package config

// --------------------------------------------------------------------------
//
//	Gurux Ltd
//
// Filename:        $HeadURL$
//
// Version:         $Revision$,
//
//	$Date$
//	$Author$
//
// # Copyright (c) Gurux Ltd
//
// ---------------------------------------------------------------------------
//
//	DESCRIPTION
//
// This file is a part of Gurux Device Framework.
//
// Gurux Device Framework is Open Source software; you can redistribute it
// and/or modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2 of the License.
// Gurux Device Framework is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU General Public License for more details.
//
// More information of Gurux products: https://www.gurux.org
//
// This code is licensed under the GNU General Public License v2.
// Full text may be retrieved at http://www.gnu.org/licenses/gpl-2.0.txt
// ---------------------------------------------------------------------------

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Gurux/gxcommon-go"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Connection ConnectionConfig `yaml:"connection"`
	Logging    LoggingConfig    `yaml:"logging"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Journal    JournalConfig    `yaml:"journal"`
}

// ConnectionConfig describes the serial link to the command station.
type ConnectionConfig struct {
	Port      string `yaml:"port"`
	AppName   string `yaml:"app_name"`
	BaudIndex int    `yaml:"baud_index"`
	DataBits  int    `yaml:"data_bits"`

	// Parity is one of None, Odd, Even, Mark, Space.
	Parity   string `yaml:"parity"`
	StopBits int    `yaml:"stop_bits"`

	// OpenTimeout bounds the wait for a busy port before giving up.
	OpenTimeout time.Duration `yaml:"open_timeout"`

	// ReceiveTimeout is the receive-idle gap that delimits reply frames.
	ReceiveTimeout time.Duration `yaml:"receive_timeout"`

	// ReplyTimeout is how long a command waits for a correlated reply
	// before listeners are told about the timeout. Zero means ReceiveTimeout.
	ReplyTimeout time.Duration `yaml:"reply_timeout"`

	RTS bool `yaml:"rts"`
	DTR bool `yaml:"dtr"`

	// Trace is a gxcommon trace level name. Empty disables wire tracing.
	Trace string `yaml:"trace"`

	// Language selects the message catalog for operator facing errors.
	Language string `yaml:"language"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MQTTConfig contains settings for the optional traffic mirror.
type MQTTConfig struct {
	Enabled     bool             `yaml:"enabled"`
	Broker      MQTTBrokerConfig `yaml:"broker"`
	Auth        MQTTAuthConfig   `yaml:"auth"`
	QoS         int              `yaml:"qos"`
	TopicPrefix string           `yaml:"topic_prefix"`
	QueueSize   int              `yaml:"queue_size"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// JournalConfig contains settings for the SQLite command journal.
type JournalConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// Load reads configuration from a YAML file and applies environment overrides.
//
// The loading order is:
//  1. Default values
//  2. YAML file values
//  3. Environment variables (GXDCCPP_*)
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with the defaults of a DCC++ base station on USB.
func Default() *Config {
	return &Config{
		Connection: ConnectionConfig{
			AppName:        "gxdccpp",
			BaudIndex:      0,
			DataBits:       8,
			Parity:         "None",
			StopBits:       1,
			OpenTimeout:    2000 * time.Millisecond,
			ReceiveTimeout: 50 * time.Millisecond,
			RTS:            true,
			DTR:            true,
			Language:       "en-US",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "gxdccpp",
			},
			QoS:         1,
			TopicPrefix: "gxdccpp",
			QueueSize:   100,
		},
		Journal: JournalConfig{
			Path:        "./gxdccpp-journal.db",
			BusyTimeout: 5,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GXDCCPP_PORT"); v != "" {
		cfg.Connection.Port = v
	}
	if v := os.Getenv("GXDCCPP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("GXDCCPP_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GXDCCPP_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GXDCCPP_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("GXDCCPP_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
}

// Validate checks the configuration for errors.
// The port name is not required here; it may be given on the command line.
func (c *Config) Validate() error {
	var errs []string

	conn := c.Connection
	if conn.BaudIndex < 0 {
		errs = append(errs, "connection.baud_index must not be negative")
	}
	if conn.DataBits < 5 || conn.DataBits > 8 {
		errs = append(errs, "connection.data_bits must be between 5 and 8")
	}
	if _, err := conn.SerialParity(); err != nil {
		errs = append(errs, fmt.Sprintf("connection.parity: %v", err))
	}
	if _, err := conn.SerialStopBits(); err != nil {
		errs = append(errs, fmt.Sprintf("connection.stop_bits: %v", err))
	}
	if _, err := conn.TraceLevel(); err != nil {
		errs = append(errs, fmt.Sprintf("connection.trace: %v", err))
	}
	if conn.OpenTimeout < 0 {
		errs = append(errs, "connection.open_timeout must not be negative")
	}
	if conn.ReceiveTimeout <= 0 {
		errs = append(errs, "connection.receive_timeout must be positive")
	}
	if conn.ReplyTimeout < 0 {
		errs = append(errs, "connection.reply_timeout must not be negative")
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
		}
		if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
			errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
		}
		if c.MQTT.TopicPrefix == "" {
			errs = append(errs, "mqtt.topic_prefix is required when mqtt is enabled")
		}
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, "journal.path is required when the journal is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// SerialParity parses the configured parity name.
func (c ConnectionConfig) SerialParity() (gxcommon.Parity, error) {
	return gxcommon.ParityParse(c.Parity)
}

// SerialStopBits maps the configured stop bit count.
func (c ConnectionConfig) SerialStopBits() (gxcommon.StopBits, error) {
	switch c.StopBits {
	case 1:
		return gxcommon.StopBitsOne, nil
	case 2:
		return gxcommon.StopBitsTwo, nil
	default:
		return gxcommon.StopBitsOne, fmt.Errorf("invalid stop bits %d (must be 1 or 2)", c.StopBits)
	}
}

// TraceLevel parses the configured wire trace level.
// An empty value yields the zero level, which traces nothing.
func (c ConnectionConfig) TraceLevel() (gxcommon.TraceLevel, error) {
	var level gxcommon.TraceLevel
	if c.Trace == "" {
		return level, nil
	}
	return gxcommon.TraceLevelParse(c.Trace)
}

// EffectiveReplyTimeout returns ReplyTimeout, or ReceiveTimeout when unset.
func (c ConnectionConfig) EffectiveReplyTimeout() time.Duration {
	if c.ReplyTimeout > 0 {
		return c.ReplyTimeout
	}
	return c.ReceiveTimeout
}
