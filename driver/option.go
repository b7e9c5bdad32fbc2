package driver

import (
	"fmt"
	"time"

	ble "github.com/rigado/ble-spi"
	"github.com/rigado/ble-spi/hci"
)

const (
	defaultHandshakeTimeout = 100 * time.Millisecond
	defaultCommandTimeout   = time.Second
	defaultInitTimeout      = 2 * time.Second
	defaultProbeInterval    = time.Millisecond
	defaultPollInterval     = 5 * time.Millisecond
	defaultResetDelay       = 5 * time.Millisecond
)

var _ ble.DeviceOption = &Driver{}

// Option sets the options specified.
func (d *Driver) Option(opts ...ble.Option) error {
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return err
		}
	}
	return nil
}

func checkDuration(name string, v time.Duration) error {
	if v < 0 {
		return fmt.Errorf("invalid %v %v", name, v)
	}
	return nil
}

// SetHandshakeTimeout bounds one header handshake; 0 disables the bound.
func (d *Driver) SetHandshakeTimeout(v time.Duration) error {
	if err := checkDuration("handshake timeout", v); err != nil {
		return err
	}
	d.handshakeTmo = v
	return nil
}

// SetCommandTimeout bounds the wait for a command response; 0 disables the
// bound.
func (d *Driver) SetCommandTimeout(v time.Duration) error {
	if err := checkDuration("command timeout", v); err != nil {
		return err
	}
	d.commandTmo = v
	return nil
}

// SetInitTimeout bounds the wait for the controller initialized event; 0
// disables the bound.
func (d *Driver) SetInitTimeout(v time.Duration) error {
	if err := checkDuration("init timeout", v); err != nil {
		return err
	}
	d.initTmo = v
	return nil
}

// SetProbeInterval ...
func (d *Driver) SetProbeInterval(v time.Duration) error {
	if err := checkDuration("probe interval", v); err != nil {
		return err
	}
	d.probeInterval = v
	return nil
}

// SetPollInterval ...
func (d *Driver) SetPollInterval(v time.Duration) error {
	if err := checkDuration("poll interval", v); err != nil {
		return err
	}
	d.pollInterval = v
	return nil
}

// SetResetDelay ...
func (d *Driver) SetResetDelay(v time.Duration) error {
	if err := checkDuration("reset delay", v); err != nil {
		return err
	}
	d.resetDelay = v
	return nil
}

// SetQueueCapacity sets the capacity of both queues. It only has an effect
// when given to New.
func (d *Driver) SetQueueCapacity(n int) error {
	if n <= 0 {
		return fmt.Errorf("invalid queue capacity %v", n)
	}
	d.queueCap = n
	return nil
}

// SetVendor selects the vendor capability set; v must be an hci.Vendor.
func (d *Driver) SetVendor(v interface{}) error {
	vendor, ok := v.(hci.Vendor)
	if !ok {
		return fmt.Errorf("unknown vendor type %T", v)
	}
	d.vendor = vendor
	d.decoder = hci.NewDecoder(vendor)
	return nil
}

// SetErrorHandler ...
func (d *Driver) SetErrorHandler(handler func(error)) error {
	d.errorHandler = handler
	return nil
}
