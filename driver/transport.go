package driver

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
	ble "github.com/rigado/ble-spi"
	"periph.io/x/conn/v3/gpio"
)

// SPI header handshake. The host clocks out a 5 byte probe; a ready
// controller echoes 0x02 followed by its writable and readable byte counts.
const (
	probeWrite  byte = 0x0A
	probeRead   byte = 0x0B
	headerReady byte = 0x02
	headerLen        = 5
)

// withBound derives a context that expires after v; v <= 0 adds no bound.
func withBound(ctx context.Context, v time.Duration) (context.Context, context.CancelFunc) {
	if v <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, v)
}

func ctxError(ctx context.Context, what string) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.Wrap(ble.ErrTimeout, what)
	}
	return ctx.Err()
}

// probe runs the header handshake until accept is satisfied. It returns with
// chip select asserted on success and deasserted on error.
func (d *Driver) probe(ctx context.Context, op byte, accept func(w, r uint16) bool) (uint16, uint16, error) {
	ctx, cancel := withBound(ctx, d.handshakeTmo)
	defer cancel()

	if err := d.selectChip(); err != nil {
		return 0, 0, err
	}

	var rx [headerLen]byte
	for {
		tx := [headerLen]byte{op}
		if err := d.bus.Tx(tx[:], rx[:]); err != nil {
			_ = d.deselect()
			return 0, 0, errors.Wrap(err, "header")
		}

		if rx[0] == headerReady {
			w := binary.LittleEndian.Uint16(rx[1:3])
			r := binary.LittleEndian.Uint16(rx[3:5])
			if accept(w, r) {
				return w, r, nil
			}
		}

		d.stats.handshakeRetries.Add(1)
		if err := d.deselect(); err != nil {
			return 0, 0, err
		}
		if ctx.Err() != nil {
			return 0, 0, ctxError(ctx, "header probe")
		}
		d.clock.Sleep(d.probeInterval)
		if err := d.selectChip(); err != nil {
			return 0, 0, err
		}
	}
}

// blockUntilReady returns the writable and readable counts reported by the
// controller.
func (d *Driver) blockUntilReady(ctx context.Context) (uint16, uint16, error) {
	return d.probe(ctx, probeRead, func(w, r uint16) bool { return true })
}

// blockUntilWritable waits until the controller can take n bytes.
func (d *Driver) blockUntilWritable(ctx context.Context, n int) (uint16, uint16, error) {
	return d.probe(ctx, probeWrite, func(w, r uint16) bool { return int(w) >= n })
}

// ProcessIRQ reads one frame from the controller, decodes it and hands the
// events to the Interface. While the controller is not initialized it keeps
// probing until something is readable or the init timeout expires.
func (d *Driver) ProcessIRQ(ctx context.Context) error {
	if !d.Initialized() {
		var cancel context.CancelFunc
		ctx, cancel = withBound(ctx, d.initTmo)
		defer cancel()
	}

	for {
		w, r, err := d.blockUntilReady(ctx)
		if err != nil {
			// a controller still booting may not answer within one
			// handshake; only the init bound ends the wait
			if !d.Initialized() && errors.Is(err, ble.ErrTimeout) && ctx.Err() == nil {
				continue
			}
			return errors.Wrap(err, "irq")
		}

		if r == 0 {
			if err := d.deselect(); err != nil {
				return err
			}
			if d.Initialized() {
				return nil
			}
			if ctx.Err() != nil {
				return ctxError(ctx, "awaiting controller initialization")
			}
			d.clock.Sleep(d.probeInterval)
			continue
		}

		d.logger.Debugf("irq has readable %v, writable %v", r, w)
		return d.readFrame(int(r))
	}
}

func (d *Driver) readFrame(n int) error {
	tx := make([]byte, n)
	rx := make([]byte, n)
	err := d.bus.Tx(tx, rx)
	if derr := d.deselect(); err == nil {
		err = derr
	}
	if err != nil {
		return errors.Wrap(err, "read frame")
	}
	d.stats.framesRead.Add(1)
	d.logger.Debugf("transfer from [% X]", rx)

	for b := rx; len(b) > 0; {
		e, used, err := d.decoder.Decode(b)
		if err != nil {
			d.stats.decodeErrors.Add(1)
			d.stats.discardedBytes.Add(uint64(len(b)))
			d.logger.Warnf("dropping %v of %v bytes [% X]: %v", len(b), n, b, err)
			d.dispatchError(errors.Wrap(err, "decode"))
			return nil
		}
		b = b[used:]

		d.logger.Debugf("event %v", e)
		if e.IsVendor() && d.vendor.Initialized(e.Vendor) {
			d.setState(StateReady)
		}
		if err := d.responses.Enqueue(e); err != nil {
			d.stats.droppedResponses.Add(1)
			d.logger.Warnf("dropping %v: %v", e, err)
		}
	}
	return nil
}

// ProcessFIFO sends every queued command, then services the IRQ once to
// collect what the controller answered. Nothing is sent until the
// controller is initialized.
func (d *Driver) ProcessFIFO(ctx context.Context) error {
	if !d.Initialized() {
		return nil
	}

	for {
		p, ok := d.requests.Dequeue()
		if !ok {
			break
		}
		if !p.IsCommand() {
			d.logger.Warnf("skipping non-command packet 0x%02X [% X]", p.Type, p.Payload)
			continue
		}
		if err := d.writeFrame(ctx, p.Bytes()); err != nil {
			return err
		}
	}

	return d.ProcessIRQ(ctx)
}

func (d *Driver) writeFrame(ctx context.Context, frame []byte) error {
	d.logger.Debugf("command to send [% X]", frame)
	w, r, err := d.blockUntilWritable(ctx, len(frame))
	if err != nil {
		return errors.Wrapf(err, "cmd [% X]", frame)
	}
	d.logger.Debugf("writable %v, readable %v", w, r)

	rx := make([]byte, len(frame))
	err = d.bus.Tx(frame, rx)
	if derr := d.deselect(); err == nil {
		err = derr
	}
	if err != nil {
		return errors.Wrapf(err, "write cmd [% X]", frame)
	}
	d.stats.framesWritten.Add(1)
	return nil
}

// Run resets the controller, waits for it to initialize, then services
// the ready line and the request queue until ctx is done. Failing to
// initialize ends Run; later transport errors are dispatched and the loop
// goes on.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.Reset(); err != nil {
		return err
	}
	for !d.Initialized() {
		if err := d.ProcessIRQ(ctx); err != nil {
			return errors.Wrap(err, "controller initialization")
		}
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.ready.Read() == gpio.High {
			if err := d.ProcessIRQ(ctx); err != nil {
				d.transportError(ctx, err)
			}
		}
		if err := d.ProcessFIFO(ctx); err != nil {
			d.transportError(ctx, err)
		}

		d.idle()
	}
}

func (d *Driver) transportError(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}
	d.dispatchError(err)
}

func (d *Driver) idle() {
	if ew, ok := d.ready.(EdgeWaiter); ok {
		ew.WaitForEdge(d.pollInterval)
		return
	}
	d.clock.Sleep(d.pollInterval)
}
