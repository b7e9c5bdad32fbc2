// Package periph opens the SPI port and GPIO lines named in a config.Config
// through periph.io and hands them to the driver.
package periph

import (
	"fmt"

	"github.com/pkg/errors"
	ble "github.com/rigado/ble-spi"
	"github.com/rigado/ble-spi/config"
	"github.com/rigado/ble-spi/driver"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Device holds the hardware the controller is wired to.
type Device struct {
	Port spi.PortCloser
	Conn spi.Conn

	ChipSelect gpio.PinIO
	Reset      gpio.PinIO
	Ready      gpio.PinIO

	logger ble.Logger
}

// Open initializes the host drivers, connects to the SPI port and claims the
// three control lines. Chip select is driven as a plain GPIO.
func Open(cfg config.SPI, pins config.Pins) (*Device, error) {
	logger := ble.PkgLogger("periph")

	state, err := host.Init()
	if err != nil {
		return nil, errors.Wrap(err, "host init")
	}
	logger.Debugf("host drivers loaded %v, failed %v", len(state.Loaded), len(state.Failed))

	d := &Device{logger: logger}
	if d.ChipSelect, err = lookupPin("chip select", pins.ChipSelect); err != nil {
		return nil, err
	}
	if d.Reset, err = lookupPin("reset", pins.Reset); err != nil {
		return nil, err
	}
	if d.Ready, err = lookupPin("ready", pins.Ready); err != nil {
		return nil, err
	}

	if err := d.ChipSelect.Out(gpio.High); err != nil {
		return nil, errors.Wrap(err, "chip select")
	}
	if err := d.Reset.Out(gpio.High); err != nil {
		return nil, errors.Wrap(err, "reset")
	}
	if err := d.Ready.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return nil, errors.Wrap(err, "ready")
	}

	if d.Port, err = spireg.Open(cfg.Port); err != nil {
		return nil, errors.Wrapf(err, "open spi port %q", cfg.Port)
	}
	freq := physic.Frequency(cfg.SpeedHz) * physic.Hertz
	if d.Conn, err = d.Port.Connect(freq, spi.Mode(cfg.Mode)|spi.NoCS, 8); err != nil {
		d.Port.Close()
		return nil, errors.Wrapf(err, "connect spi at %v", freq)
	}
	logger.Infof("spi %v at %v, cs %v, reset %v, ready %v", d.Port, freq, d.ChipSelect, d.Reset, d.Ready)
	return d, nil
}

// NewDriver builds a driver on the device. The ready line supports edge
// detection, so the driver sleeps until the controller raises it.
func (d *Device) NewDriver(opts ...ble.Option) (*driver.Driver, *driver.Interface, error) {
	return driver.New(d.Conn, d.ChipSelect, d.Reset, d.Ready, driver.SystemClock{}, opts...)
}

// Close releases the SPI port and stops edge detection on the ready line.
func (d *Device) Close() error {
	if err := d.Ready.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		d.logger.Warnf("ready: %v", err)
	}
	return d.Port.Close()
}

func lookupPin(role, name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%v pin %q not found", role, name)
	}
	return p, nil
}
