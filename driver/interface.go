package driver

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	ble "github.com/rigado/ble-spi"
	"github.com/rigado/ble-spi/hci"
	"github.com/rigado/ble-spi/hci/bluenrg"
	"github.com/rigado/ble-spi/queue"
)

// InterfaceStats counts events that did not answer the command being
// waited on.
type InterfaceStats struct {
	Mismatched uint64 `json:"mismatched"`
	Dropped    uint64 `json:"dropped"`
	Backlog    int    `json:"backlog"`
}

// Interface is the application side of the bridge. Calls are serialized, so
// at most one command is outstanding at any time and responses are matched
// by opcode alone.
type Interface struct {
	mu sync.Mutex

	requests  *queue.Producer[hci.RawPacket]
	responses *queue.Consumer[hci.Event]

	// events dequeued while waiting for another command's response, oldest
	// first
	backlog    []hci.Event
	backlogCap int

	// commands given up on, per opcode, whose response may still come
	abandoned map[uint16]int

	timeout time.Duration
	logger  ble.Logger

	mismatched atomic.Uint64
	dropped    atomic.Uint64
}

var _ bluenrg.CommandSender = &Interface{}

func newInterface(req *queue.Producer[hci.RawPacket], rsp *queue.Consumer[hci.Event], timeout time.Duration, backlogCap int) *Interface {
	if backlogCap <= 0 {
		backlogCap = queue.DefaultCapacity
	}
	return &Interface{
		requests:   req,
		responses:  rsp,
		backlogCap: backlogCap,
		abandoned:  make(map[uint16]int),
		timeout:    timeout,
		logger:     ble.PkgLogger("interface"),
	}
}

// SendCommand queues c for the transport and waits for the CommandComplete
// carrying its opcode. A CommandStatus for the opcode also ends the wait:
// with an hci.ErrCommand on failure, with empty return parameters
// otherwise. Other events are kept for NextEvent.
//
// A command that timed out stays queued and may still be answered. That
// late response is kept for NextEvent and never returned to a later
// command with the same opcode.
func (i *Interface) SendCommand(ctx context.Context, c hci.Command) (hci.ReturnParameters, error) {
	p, err := hci.CommandPacket(c)
	if err != nil {
		return hci.ReturnParameters{}, err
	}
	op := c.OpCode()

	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.requests.Enqueue(p); err != nil {
		return hci.ReturnParameters{}, errors.Wrapf(err, "cmd 0x%04X", op)
	}
	i.logger.Debugf("sent cmd 0x%04X [% X]", op, p.Payload)

	ctx, cancel := withBound(ctx, i.timeout)
	defer cancel()

	for {
		e, err := i.responses.Receive(ctx)
		if err != nil {
			i.abandoned[op]++
			return hci.ReturnParameters{}, errors.Wrapf(err, "no response to cmd 0x%04X", op)
		}
		if i.stale(e) {
			i.park(e)
			continue
		}

		switch ce := e.Core.(type) {
		case hci.CommandComplete:
			if ce.Opcode == op {
				i.logger.Debugf("response to cmd 0x%04X: %v", op, ce.ReturnParameters)
				return ce.ReturnParameters, nil
			}
		case hci.CommandStatus:
			if ce.Opcode == op {
				return hci.ReturnParameters{}, ce.Status.Err()
			}
		}
		i.park(e)
	}
}

// GetFirmwareBuildVersion reads the BlueNRG firmware build number.
func (i *Interface) GetFirmwareBuildVersion(ctx context.Context) (bluenrg.FirmwareBuildNumber, error) {
	return bluenrg.ReadFirmwareBuildNumber(ctx, i)
}

// NextEvent returns the oldest event not consumed as a command response,
// waiting on the queue until ctx is done if there is none. It holds off
// SendCommand while waiting.
func (i *Interface) NextEvent(ctx context.Context) (hci.Event, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(i.backlog) > 0 {
		e := i.backlog[0]
		i.backlog = i.backlog[1:]
		return e, nil
	}
	e, err := i.responses.Receive(ctx)
	if err == nil {
		i.stale(e)
	}
	return e, err
}

// Stats ...
func (i *Interface) Stats() InterfaceStats {
	i.mu.Lock()
	n := len(i.backlog)
	i.mu.Unlock()

	return InterfaceStats{
		Mismatched: i.mismatched.Load(),
		Dropped:    i.dropped.Load(),
		Backlog:    n,
	}
}

// stale reports whether e answers an abandoned command, and if so marks
// that command as answered. It must be called with mu held, once per event
// taken off the response queue.
func (i *Interface) stale(e hci.Event) bool {
	if e.Core == nil {
		return false
	}
	op := e.Core.CommandOpcode()
	if i.abandoned[op] == 0 {
		return false
	}
	if i.abandoned[op]--; i.abandoned[op] == 0 {
		delete(i.abandoned, op)
	}
	i.logger.Debugf("late response to abandoned cmd 0x%04X", op)
	return true
}

// park must be called with mu held.
func (i *Interface) park(e hci.Event) {
	i.mismatched.Add(1)
	i.logger.Debugf("%v: keeping %v", ble.ErrResponseMismatch, e)

	if len(i.backlog) >= i.backlogCap {
		i.dropped.Add(1)
		i.logger.Warnf("backlog full, dropping %v", i.backlog[0])
		i.backlog = i.backlog[1:]
	}
	i.backlog = append(i.backlog, e)
}
