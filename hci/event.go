package hci

import "fmt"

// Event is a decoded HCI event. Exactly one of Core and Vendor is set.
type Event struct {
	Core   CoreEvent
	Vendor VendorEvent
}

// IsVendor ...
func (e Event) IsVendor() bool {
	return e.Vendor != nil
}

func (e Event) String() string {
	switch {
	case e.Vendor != nil:
		return fmt.Sprintf("vendor event: %v", e.Vendor)
	case e.Core != nil:
		return e.Core.String()
	default:
		return "empty event"
	}
}

// CoreEvent is one of the generic events answering a command.
type CoreEvent interface {
	NumHCICommandPackets() uint8
	CommandOpcode() uint16
	String() string
}

// CommandComplete [Vol 2, Part E, 7.7.14].
type CommandComplete struct {
	Packets          uint8
	Opcode           uint16
	ReturnParameters ReturnParameters
}

// NumHCICommandPackets ...
func (e CommandComplete) NumHCICommandPackets() uint8 {
	return e.Packets
}

// CommandOpcode ...
func (e CommandComplete) CommandOpcode() uint16 {
	return e.Opcode
}

func (e CommandComplete) String() string {
	return fmt.Sprintf("CommandComplete{packets: %v, opcode: 0x%04X, rp: %v}", e.Packets, e.Opcode, e.ReturnParameters)
}

// CommandStatus [Vol 2, Part E, 7.7.15].
type CommandStatus struct {
	Status  StatusCode
	Packets uint8
	Opcode  uint16
}

// NumHCICommandPackets ...
func (e CommandStatus) NumHCICommandPackets() uint8 {
	return e.Packets
}

// CommandOpcode ...
func (e CommandStatus) CommandOpcode() uint16 {
	return e.Opcode
}

func (e CommandStatus) String() string {
	return fmt.Sprintf("CommandStatus{status: %v, packets: %v, opcode: 0x%04X}", e.Status, e.Packets, e.Opcode)
}

// ReturnParameters of a CommandComplete event. Vendor is nil for core
// commands, whose parameters are left undecoded in Raw.
type ReturnParameters struct {
	Vendor VendorReturnParameters
	Raw    []byte
}

// IsCore ...
func (p ReturnParameters) IsCore() bool {
	return p.Vendor == nil
}

func (p ReturnParameters) String() string {
	if p.Vendor != nil {
		return fmt.Sprintf("%v", p.Vendor)
	}
	return fmt.Sprintf("core [% X]", p.Raw)
}
