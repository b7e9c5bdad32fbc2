// Package driver talks to a BLE network processor over SPI. The Driver owns
// the bus and the control lines and runs in a single transport goroutine;
// the application talks to it through the Interface returned by New.
package driver

import (
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	ble "github.com/rigado/ble-spi"
	"github.com/rigado/ble-spi/hci"
	"github.com/rigado/ble-spi/hci/bluenrg"
	"github.com/rigado/ble-spi/queue"
	"periph.io/x/conn/v3/gpio"
)

// State of the controller as seen by the driver.
type State int32

const (
	// StateAwaitingInit is the state after reset, until the controller
	// reports that it is initialized. No command is sent meanwhile.
	StateAwaitingInit State = iota
	StateReady
)

func (s State) String() string {
	switch s {
	case StateAwaitingInit:
		return "awaiting init"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Stats counts what went through the transport.
type Stats struct {
	FramesRead       uint64 `json:"frames_read"`
	FramesWritten    uint64 `json:"frames_written"`
	DecodeErrors     uint64 `json:"decode_errors"`
	DroppedResponses uint64 `json:"dropped_responses"`
	HandshakeRetries uint64 `json:"handshake_retries"`
	// bytes left undecoded after a decode error, the failing event included
	DiscardedBytes   uint64 `json:"discarded_bytes"`
}

type counters struct {
	framesRead       atomic.Uint64
	framesWritten    atomic.Uint64
	decodeErrors     atomic.Uint64
	droppedResponses atomic.Uint64
	handshakeRetries atomic.Uint64
	discardedBytes   atomic.Uint64
}

// Driver is the transport side of the bridge. All its methods except
// State, Initialized and Stats must be called from one goroutine.
type Driver struct {
	bus   Bus
	cs    OutputPin
	reset OutputPin
	ready InputPin
	clock Clock

	vendor  hci.Vendor
	decoder *hci.Decoder

	requests  *queue.Consumer[hci.RawPacket]
	responses *queue.Producer[hci.Event]

	state atomic.Int32

	handshakeTmo  time.Duration
	commandTmo    time.Duration
	initTmo       time.Duration
	probeInterval time.Duration
	pollInterval  time.Duration
	resetDelay    time.Duration
	queueCap      int

	errorHandler func(error)
	logger       ble.Logger
	stats        counters
}

// New returns a driver for the controller wired to bus and the given lines,
// together with the Interface the application uses to send commands.
// The vendor defaults to BlueNRG.
func New(bus Bus, cs, reset OutputPin, ready InputPin, clock Clock, opts ...ble.Option) (*Driver, *Interface, error) {
	if clock == nil {
		clock = SystemClock{}
	}

	d := &Driver{
		bus:   bus,
		cs:    cs,
		reset: reset,
		ready: ready,
		clock: clock,

		handshakeTmo:  defaultHandshakeTimeout,
		commandTmo:    defaultCommandTimeout,
		initTmo:       defaultInitTimeout,
		probeInterval: defaultProbeInterval,
		pollInterval:  defaultPollInterval,
		resetDelay:    defaultResetDelay,
		queueCap:      queue.DefaultCapacity,

		logger: ble.PkgLogger("driver"),
	}
	if err := d.SetVendor(bluenrg.Vendor{}); err != nil {
		return nil, nil, err
	}
	if err := d.Option(opts...); err != nil {
		return nil, nil, errors.Wrap(err, "can't set options")
	}

	reqP, reqC, err := queue.New[hci.RawPacket](d.queueCap).Split()
	if err != nil {
		return nil, nil, err
	}
	rspP, rspC, err := queue.New[hci.Event](d.queueCap).Split()
	if err != nil {
		return nil, nil, err
	}
	d.requests = reqC
	d.responses = rspP

	return d, newInterface(reqP, rspC, d.commandTmo, d.queueCap), nil
}

// Vendor ...
func (d *Driver) Vendor() hci.Vendor {
	return d.vendor
}

// State ...
func (d *Driver) State() State {
	return State(d.state.Load())
}

// Initialized reports whether the controller announced it is ready.
func (d *Driver) Initialized() bool {
	return d.State() == StateReady
}

func (d *Driver) setState(s State) {
	if old := State(d.state.Swap(int32(s))); old != s {
		d.logger.Infof("controller %v -> %v", old, s)
	}
}

// Stats returns a snapshot of the transport counters.
func (d *Driver) Stats() Stats {
	return Stats{
		FramesRead:       d.stats.framesRead.Load(),
		FramesWritten:    d.stats.framesWritten.Load(),
		DecodeErrors:     d.stats.decodeErrors.Load(),
		DroppedResponses: d.stats.droppedResponses.Load(),
		HandshakeRetries: d.stats.handshakeRetries.Load(),
		DiscardedBytes:   d.stats.discardedBytes.Load(),
	}
}

// Reset pulses the reset line to bring the controller out of reset. The
// driver then waits for the initialized event again.
func (d *Driver) Reset() error {
	d.logger.Info("resetting controller")
	if err := d.deselect(); err != nil {
		return err
	}
	if err := d.reset.Out(gpio.Low); err != nil {
		return errors.Wrap(err, "reset low")
	}
	d.clock.Sleep(d.resetDelay)
	if err := d.reset.Out(gpio.High); err != nil {
		return errors.Wrap(err, "reset high")
	}
	d.setState(StateAwaitingInit)
	return nil
}

func (d *Driver) selectChip() error {
	return errors.Wrap(d.cs.Out(gpio.Low), "chip select")
}

func (d *Driver) deselect() error {
	return errors.Wrap(d.cs.Out(gpio.High), "chip deselect")
}

func (d *Driver) dispatchError(e error) {
	if d.errorHandler == nil {
		d.logger.Error(e)
		return
	}
	d.errorHandler(e)
}
