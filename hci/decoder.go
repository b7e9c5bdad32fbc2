package hci

import (
	"github.com/pkg/errors"
	ble "github.com/rigado/ble-spi"
)

// Decoder turns raw event frames into Events using the grammar of the core
// specification plus the extensions of one Vendor.
type Decoder struct {
	vendor Vendor
	logger ble.Logger
}

// NewDecoder returns a decoder for frames of the given vendor's controllers.
func NewDecoder(v Vendor) *Decoder {
	return &Decoder{
		vendor: v,
		logger: ble.PkgLogger("hci").ChildLogger(map[string]interface{}{"vendor": v.Name()}),
	}
}

// Vendor ...
func (d *Decoder) Vendor() Vendor {
	return d.vendor
}

// an alternative reports matched=false when the event code is not its own,
// which lets Decode move on to the next one.
type alternative func(r *Reader) (e Event, matched bool, err error)

// Decode parses one event packet from b and returns it together with the
// number of bytes consumed. Vendor events are tried before core events.
func (d *Decoder) Decode(b []byte) (Event, int, error) {
	r := NewReader(b)
	t, err := r.Uint8()
	if err != nil {
		return Event{}, 0, errors.Wrap(err, "packet type")
	}
	if t != PktTypeEvent {
		return Event{}, 0, errors.Wrapf(ble.ErrMalformedFrame, "invalid packet: 0x%02X % X", t, r.Rest())
	}

	var firstErr error
	for _, alt := range []alternative{d.vendorEvent, d.coreEvent} {
		rr := *r
		e, matched, err := alt(&rr)
		if err == nil {
			return e, rr.Offset(), nil
		}
		if matched && firstErr == nil {
			firstErr = err
		}
	}

	if firstErr == nil {
		firstErr = errors.Wrapf(ble.ErrMalformedFrame, "unsupported event packet: % X", r.Rest())
	}
	d.logger.Debugf("decode [% X]: %v", b, firstErr)
	return Event{}, 0, firstErr
}

func (d *Decoder) vendorEvent(r *Reader) (Event, bool, error) {
	code, err := r.Uint8()
	if err != nil {
		return Event{}, false, err
	}
	if code != PktTypeVendor {
		return Event{}, false, errors.Wrapf(ble.ErrMalformedFrame, "not a vendor event: 0x%02X", code)
	}
	// parameter length, informational only
	if err := r.Skip(1); err != nil {
		return Event{}, true, errors.Wrap(err, "vendor event length")
	}

	ve, n, err := d.vendor.ParseEvent(r.Rest())
	if err != nil {
		return Event{}, true, errors.Wrapf(err, "%v event", d.vendor.Name())
	}
	if err := r.Skip(n); err != nil {
		return Event{}, true, err
	}
	return Event{Vendor: ve}, true, nil
}

func (d *Decoder) coreEvent(r *Reader) (Event, bool, error) {
	code, err := r.Uint8()
	if err != nil {
		return Event{}, false, err
	}

	var ce CoreEvent
	switch code {
	case CommandCompleteCode:
		ce, err = d.commandComplete(r)
	case CommandStatusCode:
		ce, err = d.commandStatus(r)
	default:
		return Event{}, false, errors.Wrapf(ble.ErrMalformedFrame, "unsupported event code 0x%02X", code)
	}
	if err != nil {
		return Event{}, true, err
	}
	return Event{Core: ce}, true, nil
}

func (d *Decoder) commandComplete(r *Reader) (CoreEvent, error) {
	plen, err := r.Uint8()
	if err != nil {
		return nil, errors.Wrap(err, "command complete length")
	}
	packets, err := r.Uint8()
	if err != nil {
		return nil, errors.Wrap(err, "command complete packets")
	}
	opcode, err := r.Uint16LE()
	if err != nil {
		return nil, errors.Wrap(err, "command complete opcode")
	}

	e := CommandComplete{Packets: packets, Opcode: opcode}

	// opcodes with a zero high byte (the NOP among them) carry core
	// return parameters, everything else is handed to the vendor.
	if opcode>>8 == 0 {
		n := int(plen) - 3
		if n > r.Len() {
			n = r.Len()
		}
		if n > 0 {
			raw, _ := r.Bytes(n)
			e.ReturnParameters.Raw = append([]byte(nil), raw...)
		}
		return e, nil
	}

	rp, n, err := d.vendor.ParseReturnParameters(opcode, r.Rest())
	if err != nil {
		return nil, errors.Wrapf(err, "return parameters of 0x%04X", opcode)
	}
	if err := r.Skip(n); err != nil {
		return nil, err
	}
	e.ReturnParameters.Vendor = rp
	return e, nil
}

func (d *Decoder) commandStatus(r *Reader) (CoreEvent, error) {
	// length, informational only
	if err := r.Skip(1); err != nil {
		return nil, errors.Wrap(err, "command status length")
	}
	packets, err := r.Uint8()
	if err != nil {
		return nil, errors.Wrap(err, "command status packets")
	}
	status, err := r.Uint8()
	if err != nil {
		return nil, errors.Wrap(err, "command status")
	}
	opcode, err := r.Uint16LE()
	if err != nil {
		return nil, errors.Wrap(err, "command status opcode")
	}

	return CommandStatus{
		Status:  StatusCode(status),
		Packets: packets,
		Opcode:  opcode,
	}, nil
}
