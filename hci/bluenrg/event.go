package bluenrg

import "fmt"

// BlueInitialized is sent once the controller firmware is up, after power
// on or after a reset.
type BlueInitialized struct {
	Reason Reason
}

// VendorEventCode ...
func (BlueInitialized) VendorEventCode() uint16 {
	return EvtBlueInitialized
}

func (e BlueInitialized) String() string {
	return fmt.Sprintf("BlueInitialized(%v)", e.Reason)
}

// ReasonKind tells why the controller (re)started.
type ReasonKind uint8

const (
	FirmwareStartedProperly ReasonKind = iota
	UpdaterModeEntered
	ResetReason
)

// Reason of a BlueInitialized event. Updater is meaningful for
// UpdaterModeEntered, Reset for ResetReason.
type Reason struct {
	Kind    ReasonKind
	Updater UpdaterModeCause
	Reset   ResetCause
}

func (r Reason) String() string {
	switch r.Kind {
	case FirmwareStartedProperly:
		return "FirmwareStartedProperly"
	case UpdaterModeEntered:
		return fmt.Sprintf("UpdaterModeEntered(%v)", r.Updater)
	case ResetReason:
		return fmt.Sprintf("Reset(%v)", r.Reset)
	default:
		return fmt.Sprintf("Reason(%d)", r.Kind)
	}
}

// UpdaterModeCause ...
type UpdaterModeCause uint8

const (
	UpdaterAciUpdaterStart UpdaterModeCause = iota
	UpdaterBadBlueFlag
	UpdaterIrqPin
)

func (c UpdaterModeCause) String() string {
	switch c {
	case UpdaterAciUpdaterStart:
		return "AciUpdaterStart"
	case UpdaterBadBlueFlag:
		return "BadBlueFlag"
	case UpdaterIrqPin:
		return "IrqPin"
	default:
		return fmt.Sprintf("UpdaterModeCause(%d)", uint8(c))
	}
}

// ResetCause ...
type ResetCause uint8

const (
	ResetWatchdog ResetCause = iota
	ResetLockup
	ResetBrownout
	ResetCrash
	ResetEccError
)

func (c ResetCause) String() string {
	switch c {
	case ResetWatchdog:
		return "Watchdog"
	case ResetLockup:
		return "Lockup"
	case ResetBrownout:
		return "Brownout"
	case ResetCrash:
		return "Crash"
	case ResetEccError:
		return "EccError"
	default:
		return fmt.Sprintf("ResetCause(%d)", uint8(c))
	}
}
