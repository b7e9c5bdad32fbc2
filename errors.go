package ble

import "errors"

var (
	// ErrTimeout is returned when the controller does not answer a
	// handshake or a command within the configured deadline.
	ErrTimeout = errors.New("transport timeout")

	// ErrMalformedFrame is returned for bytes that do not match the
	// packet grammar.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrUnsupportedOpcode is returned when return parameters are
	// decoded for an opcode the vendor does not know.
	ErrUnsupportedOpcode = errors.New("unsupported opcode")

	// ErrInvalidReasonCode is returned for an unknown reason byte in the
	// controller initialized event.
	ErrInvalidReasonCode = errors.New("invalid reason code")

	// ErrQueueFull is returned when enqueuing on a full queue.
	ErrQueueFull = errors.New("queue full")

	// ErrQueueSplit is returned when a queue is split a second time.
	ErrQueueSplit = errors.New("queue already split")

	// ErrResponseMismatch marks an event that did not answer the command
	// being waited on.
	ErrResponseMismatch = errors.New("response mismatch")
)
