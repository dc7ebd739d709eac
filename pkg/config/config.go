package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config errors.
var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Duration wraps time.Duration for YAML parsing ("5s", "1m30s").
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: bad duration %q", ErrInvalidConfig, s)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the root bridge configuration.
type Config struct {
	// Namespace configures node identity.
	Namespace NamespaceConfig `yaml:"namespace"`

	// PLC configures the device collaborator.
	PLC PLCConfig `yaml:"plc"`

	// Subscriptions configures client-facing monitored items.
	Subscriptions SubscriptionConfig `yaml:"subscriptions"`

	// Discovery configures mDNS endpoint advertisement.
	Discovery DiscoveryConfig `yaml:"discovery"`

	// Log configures event capture.
	Log LogConfig `yaml:"log"`
}

// NamespaceConfig configures the address-space namespace.
type NamespaceConfig struct {
	// URI is the namespace URI advertised to clients.
	URI string `yaml:"uri"`

	// Index is the namespace index for allocated node IDs.
	Index uint16 `yaml:"index"`

	// RootName is the catalog root folder's browse name.
	RootName string `yaml:"root_name"`
}

// PLCConfig configures the device collaborator.
type PLCConfig struct {
	// Address is the PLC endpoint ("host:port"). Empty selects the
	// built-in simulator.
	Address string `yaml:"address"`

	// Simulate forces the built-in simulator even when an address is
	// set.
	Simulate bool `yaml:"simulate"`

	// SimulateInterval is the simulator's push period.
	SimulateInterval Duration `yaml:"simulate_interval"`
}

// SubscriptionConfig configures client subscriptions.
type SubscriptionConfig struct {
	// MaxSubscriptions is the maximum concurrent subscriptions.
	MaxSubscriptions int `yaml:"max_subscriptions"`

	// MaxPathsPerSub is the maximum monitored paths per subscription.
	MaxPathsPerSub int `yaml:"max_paths_per_sub"`

	// PublishInterval is how often pending notifications are flushed.
	PublishInterval Duration `yaml:"publish_interval"`

	// SuppressBounceBack enables bounce-back suppression.
	SuppressBounceBack bool `yaml:"suppress_bounce_back"`
}

// DiscoveryConfig configures mDNS advertisement of the bridge endpoint.
type DiscoveryConfig struct {
	// Enabled turns advertisement on.
	Enabled bool `yaml:"enabled"`

	// InstanceName is the mDNS instance name. Defaults to the
	// namespace root name.
	InstanceName string `yaml:"instance_name"`

	// Port is the advertised endpoint port.
	Port uint16 `yaml:"port"`

	// Interface restricts advertisement to one network interface.
	Interface string `yaml:"interface"`
}

// LogConfig configures bridge event capture.
type LogConfig struct {
	// File is the CBOR event capture path. Empty disables file capture.
	File string `yaml:"file"`

	// Console mirrors events into the debug logger.
	Console bool `yaml:"console"`
}

// Default returns a configuration with working defaults: a simulated
// PLC, namespace index 1, discovery off.
func Default() Config {
	return Config{
		Namespace: NamespaceConfig{
			URI:      "urn:tagbridge:plc",
			Index:    1,
			RootName: "PLC",
		},
		PLC: PLCConfig{
			Simulate:         true,
			SimulateInterval: Duration(5 * time.Second),
		},
		Subscriptions: SubscriptionConfig{
			MaxSubscriptions:   50,
			MaxPathsPerSub:     1000,
			PublishInterval:    Duration(time.Second),
			SuppressBounceBack: true,
		},
		Discovery: DiscoveryConfig{
			Port: 4840,
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Namespace.URI == "" {
		return fmt.Errorf("%w: namespace.uri is required", ErrInvalidConfig)
	}
	if c.Namespace.RootName == "" {
		return fmt.Errorf("%w: namespace.root_name is required", ErrInvalidConfig)
	}
	if c.PLC.Address == "" && !c.PLC.Simulate {
		return fmt.Errorf("%w: plc.address or plc.simulate is required", ErrInvalidConfig)
	}
	if c.Subscriptions.MaxSubscriptions <= 0 {
		return fmt.Errorf("%w: subscriptions.max_subscriptions must be positive", ErrInvalidConfig)
	}
	if c.Subscriptions.PublishInterval.Std() <= 0 {
		return fmt.Errorf("%w: subscriptions.publish_interval must be positive", ErrInvalidConfig)
	}
	if c.Discovery.Enabled && c.Discovery.Port == 0 {
		return fmt.Errorf("%w: discovery.port is required when discovery is enabled", ErrInvalidConfig)
	}
	return nil
}
