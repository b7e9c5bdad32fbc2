package periph

import (
	"testing"

	"github.com/rigado/ble-spi/driver"
	"periph.io/x/conn/v3/gpio"
)

var (
	_ driver.OutputPin  = gpio.PinIO(nil)
	_ driver.InputPin   = gpio.PinIO(nil)
	_ driver.EdgeWaiter = gpio.PinIO(nil)
)

func TestLookupPinUnknown(t *testing.T) {
	if _, err := lookupPin("reset", "NO_SUCH_PIN"); err == nil {
		t.Fatal("expected error")
	}
}
