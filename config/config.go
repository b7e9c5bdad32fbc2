// Package config loads the TOML file describing how the controller is wired
// and how the driver is tuned.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	ble "github.com/rigado/ble-spi"
	"github.com/rigado/ble-spi/hci"
	"github.com/rigado/ble-spi/hci/bluenrg"
	"github.com/rigado/ble-spi/queue"
	"github.com/sirupsen/logrus"
)

// Duration is a time.Duration written as a string such as "150ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// SPI selects the bus the controller sits on.
type SPI struct {
	// Port is a periph spireg name; empty opens the first port found.
	Port    string `toml:"port"`
	SpeedHz int64  `toml:"speed_hz"`
	Mode    int    `toml:"mode"`
}

// Pins names the GPIO lines, as known to periph gpioreg.
type Pins struct {
	ChipSelect string `toml:"chip_select"`
	Reset      string `toml:"reset"`
	Ready      string `toml:"ready"`
}

// Timing holds the driver timeouts and intervals; "0s" disables a timeout.
type Timing struct {
	HandshakeTimeout Duration `toml:"handshake_timeout"`
	CommandTimeout   Duration `toml:"command_timeout"`
	InitTimeout      Duration `toml:"init_timeout"`
	ProbeInterval    Duration `toml:"probe_interval"`
	PollInterval     Duration `toml:"poll_interval"`
	ResetDelay       Duration `toml:"reset_delay"`
}

// Driver selects the vendor and sizes the queues.
type Driver struct {
	Vendor        string `toml:"vendor"`
	QueueCapacity int    `toml:"queue_capacity"`
}

// Log sets the level of the default logger.
type Log struct {
	Level string `toml:"level"`
}

// Config is the content of the configuration file.
type Config struct {
	SPI    SPI    `toml:"spi"`
	Pins   Pins   `toml:"pins"`
	Timing Timing `toml:"timing"`
	Driver Driver `toml:"driver"`
	Log    Log    `toml:"log"`
}

var vendors = map[string]hci.Vendor{
	"bluenrg": bluenrg.Vendor{},
}

// Default returns the settings used for keys missing from the file.
func Default() Config {
	return Config{
		SPI: SPI{
			SpeedHz: 1000000,
		},
		Pins: Pins{
			ChipSelect: "GPIO8",
			Reset:      "GPIO25",
			Ready:      "GPIO24",
		},
		Timing: Timing{
			HandshakeTimeout: Duration{100 * time.Millisecond},
			CommandTimeout:   Duration{time.Second},
			InitTimeout:      Duration{2 * time.Second},
			ProbeInterval:    Duration{time.Millisecond},
			PollInterval:     Duration{5 * time.Millisecond},
			ResetDelay:       Duration{5 * time.Millisecond},
		},
		Driver: Driver{
			Vendor:        "bluenrg",
			QueueCapacity: queue.DefaultCapacity,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads the file at path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "load config %v", path)
	}
	return cfg, finish(cfg, md)
}

// Parse is Load for a document already in memory.
func Parse(doc string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(doc, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	return cfg, finish(cfg, md)
}

func finish(cfg Config, md toml.MetaData) error {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %v", strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

// Validate checks values the driver and periph would otherwise reject later.
func (c Config) Validate() error {
	if c.SPI.SpeedHz <= 0 {
		return fmt.Errorf("spi.speed_hz must be positive, got %v", c.SPI.SpeedHz)
	}
	if c.SPI.Mode < 0 || c.SPI.Mode > 3 {
		return fmt.Errorf("spi.mode must be 0 to 3, got %v", c.SPI.Mode)
	}
	for name, pin := range map[string]string{
		"pins.chip_select": c.Pins.ChipSelect,
		"pins.reset":       c.Pins.Reset,
		"pins.ready":       c.Pins.Ready,
	} {
		if strings.TrimSpace(pin) == "" {
			return fmt.Errorf("%v is required", name)
		}
	}
	for name, d := range map[string]Duration{
		"timing.handshake_timeout": c.Timing.HandshakeTimeout,
		"timing.command_timeout":   c.Timing.CommandTimeout,
		"timing.init_timeout":      c.Timing.InitTimeout,
		"timing.probe_interval":    c.Timing.ProbeInterval,
		"timing.poll_interval":     c.Timing.PollInterval,
		"timing.reset_delay":       c.Timing.ResetDelay,
	} {
		if d.Duration < 0 {
			return fmt.Errorf("%v must not be negative, got %v", name, d)
		}
	}
	if c.Driver.QueueCapacity <= 0 {
		return fmt.Errorf("driver.queue_capacity must be positive, got %v", c.Driver.QueueCapacity)
	}
	if _, err := c.Vendor(); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	return nil
}

// Vendor returns the capability set named by driver.vendor.
func (c Config) Vendor() (hci.Vendor, error) {
	v, ok := vendors[strings.ToLower(c.Driver.Vendor)]
	if !ok {
		return nil, fmt.Errorf("unknown driver.vendor %q", c.Driver.Vendor)
	}
	return v, nil
}

// Options converts the driver settings into options for driver.New.
func (c Config) Options() ([]ble.Option, error) {
	v, err := c.Vendor()
	if err != nil {
		return nil, err
	}
	return []ble.Option{
		ble.OptHandshakeTimeout(c.Timing.HandshakeTimeout.Duration),
		ble.OptCommandTimeout(c.Timing.CommandTimeout.Duration),
		ble.OptInitTimeout(c.Timing.InitTimeout.Duration),
		ble.OptProbeInterval(c.Timing.ProbeInterval.Duration),
		ble.OptPollInterval(c.Timing.PollInterval.Duration),
		ble.OptResetDelay(c.Timing.ResetDelay.Duration),
		ble.OptQueueCapacity(c.Driver.QueueCapacity),
		ble.OptVendor(v),
	}, nil
}
