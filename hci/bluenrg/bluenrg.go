// Package bluenrg implements the vendor capability set of the ST BlueNRG
// family of BLE network processors.
package bluenrg

import (
	"github.com/pkg/errors"
	ble "github.com/rigado/ble-spi"
	"github.com/rigado/ble-spi/hci"
)

// Opcode is a BlueNRG vendor command opcode.
type Opcode uint16

// Vendor opcodes.
const (
	OpGetFirmwareBuildNumber Opcode = 0xFC00
)

// Vendor event codes.
const (
	EvtBlueInitialized uint16 = 0x0001
)

// Vendor is the BlueNRG capability set.
type Vendor struct{}

var _ hci.Vendor = Vendor{}

// Name ...
func (Vendor) Name() string {
	return "BlueNRG"
}

// ParseEvent decodes the parameters of a vendor event.
func (Vendor) ParseEvent(b []byte) (hci.VendorEvent, int, error) {
	r := hci.NewReader(b)
	code, err := r.Uint16LE()
	if err != nil {
		return nil, 0, errors.Wrap(err, "event code")
	}

	switch code {
	case EvtBlueInitialized:
		e, err := blueInitialized(r)
		if err != nil {
			return nil, 0, err
		}
		return e, r.Offset(), nil
	default:
		return nil, 0, errors.Wrapf(ble.ErrMalformedFrame, "unsupported event code 0x%04X", code)
	}
}

// ParseReturnParameters decodes the return parameters of a vendor command.
func (Vendor) ParseReturnParameters(opcode uint16, b []byte) (hci.VendorReturnParameters, int, error) {
	r := hci.NewReader(b)

	switch Opcode(opcode) {
	case OpGetFirmwareBuildNumber:
		rp, err := firmwareBuildNumber(r)
		if err != nil {
			return nil, 0, err
		}
		return rp, r.Offset(), nil
	default:
		return nil, 0, errors.Wrapf(ble.ErrUnsupportedOpcode, "0x%04X", opcode)
	}
}

// Initialized reports whether e is the BlueInitialized event.
func (Vendor) Initialized(e hci.VendorEvent) bool {
	_, ok := e.(BlueInitialized)
	return ok
}

func blueInitialized(r *hci.Reader) (BlueInitialized, error) {
	code, err := r.Uint8()
	if err != nil {
		return BlueInitialized{}, errors.Wrap(err, "reason code")
	}

	var reason Reason
	switch code {
	case 0x01:
		reason = Reason{Kind: FirmwareStartedProperly}
	case 0x05:
		reason = Reason{Kind: ResetReason, Reset: ResetWatchdog}
	default:
		return BlueInitialized{}, errors.Wrapf(ble.ErrInvalidReasonCode, "0x%02X", code)
	}
	return BlueInitialized{Reason: reason}, nil
}

func firmwareBuildNumber(r *hci.Reader) (FirmwareBuildNumber, error) {
	status, err := r.Uint8()
	if err != nil {
		return FirmwareBuildNumber{}, errors.Wrap(err, "status")
	}
	build, err := r.Uint16LE()
	if err != nil {
		return FirmwareBuildNumber{}, errors.Wrap(err, "build number")
	}
	return FirmwareBuildNumber{Status: hci.StatusCode(status), BuildNumber: build}, nil
}
