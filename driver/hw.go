package driver

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Bus is a synchronous SPI transfer: w is clocked out while r is filled.
// periph.io spi.Conn satisfies it.
type Bus interface {
	Tx(w, r []byte) error
}

// OutputPin is a digital output line. periph.io gpio.PinOut satisfies it.
type OutputPin interface {
	Out(l gpio.Level) error
}

// InputPin is a digital input line. periph.io gpio.PinIn satisfies it.
type InputPin interface {
	Read() gpio.Level
}

// EdgeWaiter is implemented by input pins configured for edge detection.
// When the ready pin has it, Run sleeps on the line instead of polling.
type EdgeWaiter interface {
	WaitForEdge(timeout time.Duration) bool
}

// Clock provides the delays of the handshake loops.
type Clock interface {
	Sleep(d time.Duration)
}

// SystemClock is a Clock backed by time.Sleep.
type SystemClock struct{}

// Sleep ...
func (SystemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
