package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"
	yaml "gopkg.in/yaml.v2"
)

var errInvalidTimeout = errors.New("config: default_timeout_seconds must be positive")

// dcMux guards concurrent reload/write of a DynamicConfig loaded from disk.
var dcMux sync.Mutex

// StaticConfig holds options that require a process restart: listen
// address, peer hosts/ports and log level, mirroring
// ptp/ptp4u/server.StaticConfig.
type StaticConfig struct {
	ConfigFile      string
	LogLevel        string
	ReceivePort     int
	EngineHost      string
	EnginePort      int
	InterpreterHost string
	InterpreterPort int
	MonitoringPort  int
	PidFile         string
	DSCP            int
}

// DynamicConfig holds options read from a YAML file by ReadDynamicConfig:
// latency, MTU, default timeout and reply-address overrides, mirroring
// ptp/ptp4u/server.DynamicConfig. A running engine.Server keeps the values
// it was constructed with; re-reading the file does not change it.
type DynamicConfig struct {
	// LatencySeconds is added to every bundler's base timetag at flatten.
	LatencySeconds float64 `yaml:"latency_seconds"`
	// MTUBytes is the outgoing datagram size ceiling.
	MTUBytes int `yaml:"mtu_bytes"`
	// DefaultTimeoutSeconds is used by blocking reply retrievals absent
	// an explicit timeout.
	DefaultTimeoutSeconds float64 `yaml:"default_timeout_seconds"`
	// ClientID and MaxLogins override the handshake-returned values, for
	// test use against a mock engine.
	ClientID  int32 `yaml:"client_id"`
	MaxLogins int32 `yaml:"max_logins"`
	// ReplyAddressOverrides maps a reply address to a peer name. It is
	// carried through ReadDynamicConfig and Write only; no component of
	// this module reads it, so it does not change reply routing.
	ReplyAddressOverrides map[string]string `yaml:"reply_address_overrides"`
}

// Config composes both halves, as ptp/ptp4u/server.Config does.
type Config struct {
	StaticConfig
	DynamicConfig
}

// Sanity checks that DynamicConfig's values are usable.
func (dc *DynamicConfig) Sanity() error {
	if dc.DefaultTimeoutSeconds <= 0 {
		return errInvalidTimeout
	}
	if dc.MTUBytes <= 0 {
		dc.MTUBytes = 8192
	}
	return nil
}

// DefaultTimeout returns DefaultTimeoutSeconds as a time.Duration.
func (dc *DynamicConfig) DefaultTimeout() time.Duration {
	return time.Duration(dc.DefaultTimeoutSeconds * float64(time.Second))
}

// Latency returns LatencySeconds as a time.Duration.
func (dc *DynamicConfig) Latency() time.Duration {
	return time.Duration(dc.LatencySeconds * float64(time.Second))
}

// ReadDynamicConfig loads a DynamicConfig from a YAML file, mirroring
// server.ReadDynamicConfig.
func ReadDynamicConfig(path string) (*DynamicConfig, error) {
	dcMux.Lock()
	defer dcMux.Unlock()

	dc := &DynamicConfig{}
	cData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(cData, dc); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := dc.Sanity(); err != nil {
		return nil, err
	}

	return dc, nil
}

// Write persists dc to path as YAML, mirroring (*server.DynamicConfig).Write.
func (dc *DynamicConfig) Write(path string) error {
	dcMux.Lock()
	defer dcMux.Unlock()

	d, err := yaml.Marshal(dc)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}

	return os.WriteFile(path, d, 0644)
}

// CreatePidFile writes the running process's pid to c.PidFile, mirroring
// (*server.Config).CreatePidFile.
func (c *Config) CreatePidFile() error {
	return os.WriteFile(c.PidFile, []byte(fmt.Sprintf("%d\n", unix.Getpid())), 0644)
}

// DeletePidFile removes c.PidFile.
func (c *Config) DeletePidFile() error {
	return os.Remove(c.PidFile)
}

// ReadPidFile reads a pid previously written by CreatePidFile.
func ReadPidFile(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("config: reading pid file %s: %w", path, err)
	}
	return strconv.Atoi(strings.TrimSpace(string(content)))
}

// Default returns a DynamicConfig with the defaults named in the
// configuration table: MTU 8192, 5s default timeout, zero latency.
func Default() DynamicConfig {
	return DynamicConfig{
		LatencySeconds:        0,
		MTUBytes:              8192,
		DefaultTimeoutSeconds: 5,
		ClientID:              0,
		MaxLogins:             0,
	}
}
