package driver

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	ble "github.com/rigado/ble-spi"
	"github.com/rigado/ble-spi/hci"
	"github.com/rigado/ble-spi/hci/bluenrg"
)

func decodeEvent(t *testing.T, b []byte) hci.Event {
	t.Helper()
	e, _, err := hci.NewDecoder(bluenrg.Vendor{}).Decode(b)
	if err != nil {
		t.Fatalf("decode [% X]: %v", b, err)
	}
	return e
}

func TestSendCommandMatchesOpcode(t *testing.T) {
	r := newRig(t, &scriptedBus{})
	other := hci.Event{Core: hci.CommandComplete{Packets: 1, Opcode: 0x0C03}}
	ready := decodeEvent(t, initEvent)
	for _, e := range []hci.Event{other, ready, decodeEvent(t, fwBuildEvent)} {
		if err := r.d.responses.Enqueue(e); err != nil {
			t.Fatal(err)
		}
	}

	fw, err := r.iface.GetFirmwareBuildVersion(context.Background())
	if err != nil {
		t.Fatalf("firmware build: %v", err)
	}
	if fw.BuildNumber != 0x1234 || fw.Status != hci.StatusSuccess {
		t.Fatalf("unexpected %v", fw)
	}

	p, ok := r.d.requests.Dequeue()
	if !ok || !bytes.Equal(p.Bytes(), fwBuildFrame) {
		t.Fatalf("queued request %v [% X]", ok, p.Bytes())
	}

	st := r.iface.Stats()
	if st.Mismatched != 2 || st.Backlog != 2 || st.Dropped != 0 {
		t.Fatalf("stats %+v", st)
	}

	ctx := context.Background()
	e, err := r.iface.NextEvent(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if cc, ok := e.Core.(hci.CommandComplete); !ok || cc.Opcode != 0x0C03 {
		t.Fatalf("first kept event %v", e)
	}
	e, err = r.iface.NextEvent(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !e.IsVendor() {
		t.Fatalf("second kept event %v", e)
	}
}

func TestSendCommandTimeout(t *testing.T) {
	r := newRig(t, &scriptedBus{}, ble.OptCommandTimeout(10*time.Millisecond))

	_, err := r.iface.GetFirmwareBuildVersion(context.Background())
	if !errors.Is(err, ble.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestSendCommandCanceled(t *testing.T) {
	r := newRig(t, &scriptedBus{}, ble.OptCommandTimeout(0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.iface.SendCommand(ctx, bluenrg.GetFirmwareBuildNumber{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestSendCommandQueueFull(t *testing.T) {
	r := newRig(t, &scriptedBus{}, ble.OptQueueCapacity(1), ble.OptCommandTimeout(time.Millisecond))
	ctx := context.Background()

	if _, err := r.iface.SendCommand(ctx, bluenrg.GetFirmwareBuildNumber{}); !errors.Is(err, ble.ErrTimeout) {
		t.Fatalf("first command: %v", err)
	}
	_, err := r.iface.SendCommand(ctx, bluenrg.GetFirmwareBuildNumber{})
	if !errors.Is(err, ble.ErrQueueFull) {
		t.Fatalf("expected queue full, got %v", err)
	}
}

func TestSendCommandStatus(t *testing.T) {
	r := newRig(t, &scriptedBus{})
	if err := r.d.responses.Enqueue(decodeEvent(t, statusFailure)); err != nil {
		t.Fatal(err)
	}

	_, err := r.iface.SendCommand(context.Background(), bluenrg.GetFirmwareBuildNumber{})
	var ce hci.ErrCommand
	if !errors.As(err, &ce) || hci.StatusCode(ce) != hci.StatusUnknownCommand {
		t.Fatalf("expected command error, got %v", err)
	}
}

func TestSendCommandTooLong(t *testing.T) {
	r := newRig(t, &scriptedBus{})

	_, err := r.iface.SendCommand(context.Background(), &hci.RawCommand{Op: 0xFC10, Params: make([]byte, 256)})
	if err == nil {
		t.Fatal("expected error")
	}
	if n := r.d.requests.Len(); n != 0 {
		t.Fatalf("%v requests queued", n)
	}
}

func TestBacklogDropsOldest(t *testing.T) {
	r := newRig(t, &scriptedBus{}, ble.OptQueueCapacity(2))
	for op := uint16(1); op <= 3; op++ {
		r.iface.park(hci.Event{Core: hci.CommandComplete{Opcode: op}})
	}

	st := r.iface.Stats()
	if st.Dropped != 1 || st.Backlog != 2 {
		t.Fatalf("stats %+v", st)
	}
	e, err := r.iface.NextEvent(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if cc := e.Core.(hci.CommandComplete); cc.Opcode != 2 {
		t.Fatalf("oldest kept opcode %v", cc.Opcode)
	}
}

func TestLateResponseNotMatchedToNextCommand(t *testing.T) {
	r := newRig(t, &scriptedBus{}, ble.OptCommandTimeout(10*time.Millisecond))
	ctx := context.Background()

	_, err := r.iface.SendCommand(ctx, &hci.RawCommand{Op: 0x0005, Params: []byte{0x01}})
	if !errors.Is(err, ble.ErrTimeout) {
		t.Fatalf("first command: %v", err)
	}

	late := hci.Event{Core: hci.CommandComplete{Packets: 1, Opcode: 0x0005, ReturnParameters: hci.ReturnParameters{Raw: []byte{0xAA}}}}
	answer := hci.Event{Core: hci.CommandComplete{Packets: 1, Opcode: 0x0005, ReturnParameters: hci.ReturnParameters{Raw: []byte{0xBB}}}}
	for _, e := range []hci.Event{late, answer} {
		if err := r.d.responses.Enqueue(e); err != nil {
			t.Fatal(err)
		}
	}

	rp, err := r.iface.SendCommand(ctx, &hci.RawCommand{Op: 0x0005, Params: []byte{0x02}})
	if err != nil {
		t.Fatalf("second command: %v", err)
	}
	if !bytes.Equal(rp.Raw, []byte{0xBB}) {
		t.Fatalf("second command got %v", rp)
	}
	if st := r.iface.Stats(); st.Mismatched != 1 || st.Backlog != 1 {
		t.Fatalf("stats %+v", st)
	}

	e, err := r.iface.NextEvent(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if cc := e.Core.(hci.CommandComplete); !bytes.Equal(cc.ReturnParameters.Raw, []byte{0xAA}) {
		t.Fatalf("kept event %v", e)
	}
}

func TestLateResponseThroughNextEvent(t *testing.T) {
	r := newRig(t, &scriptedBus{}, ble.OptCommandTimeout(10*time.Millisecond))
	ctx := context.Background()

	if _, err := r.iface.SendCommand(ctx, &hci.RawCommand{Op: 0x0005}); !errors.Is(err, ble.ErrTimeout) {
		t.Fatalf("first command: %v", err)
	}
	late := hci.Event{Core: hci.CommandComplete{Packets: 1, Opcode: 0x0005}}
	if err := r.d.responses.Enqueue(late); err != nil {
		t.Fatal(err)
	}
	if _, err := r.iface.NextEvent(ctx); err != nil {
		t.Fatal(err)
	}

	// the late response was consumed, so the next one answers the new command
	if err := r.d.responses.Enqueue(late); err != nil {
		t.Fatal(err)
	}
	if _, err := r.iface.SendCommand(ctx, &hci.RawCommand{Op: 0x0005}); err != nil {
		t.Fatalf("second command: %v", err)
	}
}
