package hci

// HCI Packet types
const (
	PktTypeCommand uint8 = 0x01
	PktTypeEvent   uint8 = 0x04
	PktTypeVendor  uint8 = 0xFF
)

// Event codes [Vol 2, Part E, 7.7].
const (
	CommandCompleteCode uint8 = 0x0E
	CommandStatusCode   uint8 = 0x0F
)

const (
	// command marker + opcode + parameter length
	commandHeaderLen = 4
	maxCommandParams = 0xFF

	ogfBitShift = 10
)

// OGF returns the opcode group field of an opcode.
func OGF(opcode uint16) uint16 {
	return opcode >> ogfBitShift
}

// OCF returns the opcode command field of an opcode.
func OCF(opcode uint16) uint16 {
	return opcode & 0x3FF
}
