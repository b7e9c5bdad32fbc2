package hci

import "fmt"

// StatusCode is an HCI error code [Vol 2, Part D, 1.3].
type StatusCode uint8

// Common status codes.
const (
	StatusSuccess                     StatusCode = 0x00
	StatusUnknownCommand              StatusCode = 0x01
	StatusUnknownConnectionID         StatusCode = 0x02
	StatusHardwareFailure             StatusCode = 0x03
	StatusPageTimeout                 StatusCode = 0x04
	StatusAuthenticationFailure       StatusCode = 0x05
	StatusPINorKeyMissing             StatusCode = 0x06
	StatusMemoryCapacityExceeded      StatusCode = 0x07
	StatusConnectionTimeout           StatusCode = 0x08
	StatusCommandDisallowed           StatusCode = 0x0C
	StatusInvalidCommandParameters    StatusCode = 0x12
	StatusRemoteUserTerminated        StatusCode = 0x13
	StatusLocalHostTerminated         StatusCode = 0x16
	StatusUnsupportedRemoteFeature    StatusCode = 0x1A
	StatusUnspecifiedError            StatusCode = 0x1F
	StatusControllerBusy              StatusCode = 0x3A
	StatusConnectionFailedToEstablish StatusCode = 0x3E
)

var statusNames = map[StatusCode]string{
	StatusSuccess:                     "success",
	StatusUnknownCommand:              "unknown HCI command",
	StatusUnknownConnectionID:         "unknown connection identifier",
	StatusHardwareFailure:             "hardware failure",
	StatusPageTimeout:                 "page timeout",
	StatusAuthenticationFailure:       "authentication failure",
	StatusPINorKeyMissing:             "PIN or key missing",
	StatusMemoryCapacityExceeded:      "memory capacity exceeded",
	StatusConnectionTimeout:           "connection timeout",
	StatusCommandDisallowed:           "command disallowed",
	StatusInvalidCommandParameters:    "invalid HCI command parameters",
	StatusRemoteUserTerminated:        "remote user terminated connection",
	StatusLocalHostTerminated:         "connection terminated by local host",
	StatusUnsupportedRemoteFeature:    "unsupported remote feature",
	StatusUnspecifiedError:            "unspecified error",
	StatusControllerBusy:              "controller busy",
	StatusConnectionFailedToEstablish: "connection failed to be established",
}

func (s StatusCode) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status 0x%02X", uint8(s))
}

// Err returns nil for StatusSuccess and an ErrCommand otherwise.
func (s StatusCode) Err() error {
	if s == StatusSuccess {
		return nil
	}
	return ErrCommand(s)
}

// ErrCommand is a non-success status reported by the controller.
type ErrCommand StatusCode

func (e ErrCommand) Error() string {
	return fmt.Sprintf("hci: command failed: %v", StatusCode(e))
}
