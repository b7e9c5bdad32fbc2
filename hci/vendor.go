package hci

// Vendor is the capability set of a controller family. The decoder and the
// driver only know a chip through this interface, so supporting another
// vendor means providing another implementation.
//
// Parse functions get the bytes following the event header (or the
// CommandComplete opcode) and report how many of them they consumed.
type Vendor interface {
	Name() string
	ParseEvent(b []byte) (VendorEvent, int, error)
	ParseReturnParameters(opcode uint16, b []byte) (VendorReturnParameters, int, error)

	// Initialized reports whether e announces that the controller is up
	// and ready to take commands.
	Initialized(e VendorEvent) bool
}

// VendorEvent is a decoded vendor specific event.
type VendorEvent interface {
	VendorEventCode() uint16
}

// VendorReturnParameters are the decoded return parameters of a vendor
// command.
type VendorReturnParameters interface {
	CommandOpcode() uint16
}
