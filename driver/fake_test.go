package driver

import (
	"fmt"
	"sync"
	"time"

	"github.com/rigado/ble-spi/hci"
	"periph.io/x/conn/v3/gpio"
)

func header(w, r uint16) []byte {
	return []byte{headerReady, byte(w), byte(w >> 8), byte(r), byte(r >> 8)}
}

var notReady = []byte{0x00, 0x00, 0x00, 0x00, 0x00}

var (
	initEvent     = []byte{0x04, 0xFF, 0x03, 0x01, 0x00, 0x01}
	fwBuildEvent  = []byte{0x04, 0x0E, 0x06, 0x01, 0x00, 0xFC, 0x00, 0x34, 0x12}
	fwBuildFrame  = []byte{0x01, 0x00, 0xFC, 0x00}
	badInitEvent  = []byte{0x04, 0xFF, 0x03, 0x01, 0x00, 0x09}
	statusFailure = []byte{0x04, 0x0F, 0x04, 0x01, 0x01, 0x00, 0xFC}
)

type fakePin struct {
	mu      sync.Mutex
	level   gpio.Level
	history []gpio.Level
}

func (p *fakePin) Out(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = l
	p.history = append(p.history, l)
	return nil
}

func (p *fakePin) Read() gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *fakePin) levels() []gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]gpio.Level(nil), p.history...)
}

type fakeClock struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
}

func (c *fakeClock) count(d time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.sleeps {
		if s == d {
			n++
		}
	}
	return n
}

// scriptedBus answers each transfer with the next scripted response, then
// with fallback once the script is exhausted.
type scriptedBus struct {
	mu       sync.Mutex
	script   [][]byte
	fallback []byte
	tx       [][]byte
}

func (b *scriptedBus) Tx(w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tx = append(b.tx, append([]byte(nil), w...))
	resp := b.fallback
	if len(b.script) > 0 {
		resp = b.script[0]
		b.script = b.script[1:]
	}
	for i := range r {
		r[i] = 0
	}
	copy(r, resp)
	return nil
}

func (b *scriptedBus) writes() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]byte(nil), b.tx...)
}

// fakeChip simulates the controller side of the SPI protocol. It is the
// bus, the chip select line and the ready line at once.
type fakeChip struct {
	mu sync.Mutex

	// probe byte of the accepted header, 0 between transactions
	phase byte
	out   [][]byte
	in    [][]byte

	respond func(c *hci.RawCommand) [][]byte
}

func (c *fakeChip) Tx(w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case 0:
		if len(w) != headerLen || (w[0] != probeRead && w[0] != probeWrite) {
			return fmt.Errorf("unexpected transfer [% X]", w)
		}
		readable := 0
		if len(c.out) > 0 {
			readable = len(c.out[0])
		}
		copy(r, header(128, uint16(readable)))
		c.phase = w[0]

	case probeRead:
		if len(c.out) == 0 || len(r) != len(c.out[0]) {
			return fmt.Errorf("unexpected read of %v bytes", len(r))
		}
		copy(r, c.out[0])
		c.out = c.out[1:]

	case probeWrite:
		frame := append([]byte(nil), w...)
		c.in = append(c.in, frame)
		if cmd, err := hci.DecodeCommand(frame); err == nil && c.respond != nil {
			c.out = append(c.out, c.respond(cmd)...)
		}
	}
	return nil
}

// Out implements the chip select line; deasserting ends the transaction.
func (c *fakeChip) Out(l gpio.Level) error {
	if l == gpio.High {
		c.mu.Lock()
		c.phase = 0
		c.mu.Unlock()
	}
	return nil
}

// Read implements the ready line.
func (c *fakeChip) Read() gpio.Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.out) > 0
}

func (c *fakeChip) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.in...)
}

// bootingBus answers every probe with notReady until ready has passed, then
// plays its script like scriptedBus.
type bootingBus struct {
	scriptedBus
	ready time.Time
}

func (b *bootingBus) Tx(w, r []byte) error {
	if time.Now().Before(b.ready) {
		for i := range r {
			r[i] = 0
		}
		return nil
	}
	return b.scriptedBus.Tx(w, r)
}
