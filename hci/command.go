package hci

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
	ble "github.com/rigado/ble-spi"
)

// Command ...
type Command interface {
	OpCode() uint16
	Len() int
	Marshal([]byte) error
}

// RawCommand is a command given as an opcode and pre-encoded parameters.
type RawCommand struct {
	Op     uint16
	Params []byte
}

// OpCode ...
func (c *RawCommand) OpCode() uint16 {
	return c.Op
}

// Len ...
func (c *RawCommand) Len() int {
	return len(c.Params)
}

// Marshal ...
func (c *RawCommand) Marshal(b []byte) error {
	if len(b) < len(c.Params) {
		return io.ErrShortBuffer
	}
	copy(b, c.Params)
	return nil
}

func (c *RawCommand) String() string {
	return fmt.Sprintf("Command (0x%02x|0x%04x); Params (% X)", OGF(c.Op), OCF(c.Op), c.Params)
}

// RawPacket is the wire-level container moved through the queues.
type RawPacket struct {
	Type    uint8
	Payload []byte
}

// Bytes returns the packet as sent on the wire, marker byte first.
func (p RawPacket) Bytes() []byte {
	b := make([]byte, 0, 1+len(p.Payload))
	b = append(b, p.Type)
	return append(b, p.Payload...)
}

// IsCommand ...
func (p RawPacket) IsCommand() bool {
	return p.Type == PktTypeCommand
}

// CommandPacket encodes c into a command packet: opcode (LE), parameter
// length, parameters.
func CommandPacket(c Command) (RawPacket, error) {
	n := c.Len()
	if n < 0 || n > maxCommandParams {
		return RawPacket{}, fmt.Errorf("invalid parameter length %v; max is %v", n, maxCommandParams)
	}

	b := make([]byte, commandHeaderLen-1+n)
	binary.LittleEndian.PutUint16(b, c.OpCode())
	b[2] = byte(n)
	if err := c.Marshal(b[3:]); err != nil {
		return RawPacket{}, errors.Wrapf(err, "marshal cmd 0x%04X", c.OpCode())
	}
	return RawPacket{Type: PktTypeCommand, Payload: b}, nil
}

// EncodeCommand returns the complete outbound frame for c.
func EncodeCommand(c Command) ([]byte, error) {
	p, err := CommandPacket(c)
	if err != nil {
		return nil, err
	}
	return p.Bytes(), nil
}

// DecodeCommand parses an outbound command frame back into its opcode and
// parameters.
func DecodeCommand(b []byte) (*RawCommand, error) {
	r := NewReader(b)
	t, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	if t != PktTypeCommand {
		return nil, errors.Wrapf(ble.ErrMalformedFrame, "not a command packet: 0x%02X", t)
	}
	op, err := r.Uint16LE()
	if err != nil {
		return nil, err
	}
	n, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	params, err := r.Bytes(int(n))
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, errors.Wrapf(ble.ErrMalformedFrame, "%v trailing bytes after cmd 0x%04X", r.Len(), op)
	}

	c := &RawCommand{Op: op, Params: make([]byte, len(params))}
	copy(c.Params, params)
	return c, nil
}
