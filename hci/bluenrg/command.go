package bluenrg

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rigado/ble-spi/hci"
)

// GetFirmwareBuildNumber asks the controller for its firmware build number.
type GetFirmwareBuildNumber struct{}

// OpCode ...
func (GetFirmwareBuildNumber) OpCode() uint16 { return uint16(OpGetFirmwareBuildNumber) }

// Len ...
func (GetFirmwareBuildNumber) Len() int { return 0 }

// Marshal ...
func (GetFirmwareBuildNumber) Marshal([]byte) error { return nil }

// FirmwareBuildNumber is the return parameters of GetFirmwareBuildNumber.
type FirmwareBuildNumber struct {
	Status      hci.StatusCode `json:"status"`
	BuildNumber uint16         `json:"build_number"`
}

// CommandOpcode ...
func (FirmwareBuildNumber) CommandOpcode() uint16 {
	return uint16(OpGetFirmwareBuildNumber)
}

func (rp FirmwareBuildNumber) String() string {
	return fmt.Sprintf("FirmwareBuildNumber{status: %v, build: %v}", rp.Status, rp.BuildNumber)
}

// CommandSender sends a command and waits for its return parameters.
type CommandSender interface {
	SendCommand(ctx context.Context, c hci.Command) (hci.ReturnParameters, error)
}

// ReadFirmwareBuildNumber issues GetFirmwareBuildNumber through s.
func ReadFirmwareBuildNumber(ctx context.Context, s CommandSender) (FirmwareBuildNumber, error) {
	rp, err := s.SendCommand(ctx, GetFirmwareBuildNumber{})
	if err != nil {
		return FirmwareBuildNumber{}, errors.Wrap(err, "get firmware build number")
	}

	fw, ok := rp.Vendor.(FirmwareBuildNumber)
	if !ok {
		return FirmwareBuildNumber{}, fmt.Errorf("unexpected return parameters %v", rp)
	}
	return fw, nil
}
