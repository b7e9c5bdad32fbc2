package bluenrg

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	ble "github.com/rigado/ble-spi"
	"github.com/rigado/ble-spi/hci"
)

func TestBlueInitialized(t *testing.T) {
	d := hci.NewDecoder(Vendor{})

	e, n, err := d.Decode([]byte{0x04, 0xFF, 0x03, 0x01, 0x00, 0x01})
	if err != nil {
		t.Fatal(err)
	}
	if n != 6 {
		t.Fatalf("consumed %v bytes, expected 6", n)
	}
	bi, ok := e.Vendor.(BlueInitialized)
	if !ok {
		t.Fatalf("expected BlueInitialized, got %v", e)
	}
	if bi.Reason.Kind != FirmwareStartedProperly {
		t.Fatalf("unexpected reason %v", bi.Reason)
	}
	if !(Vendor{}).Initialized(e.Vendor) {
		t.Fatal("BlueInitialized not recognized as the init event")
	}
}

func TestBlueInitializedWatchdog(t *testing.T) {
	e, n, err := Vendor{}.ParseEvent([]byte{0x01, 0x00, 0x05})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("consumed %v bytes, expected 3", n)
	}
	bi := e.(BlueInitialized)
	if bi.Reason.Kind != ResetReason || bi.Reason.Reset != ResetWatchdog {
		t.Fatalf("unexpected reason %v", bi.Reason)
	}
	if s := bi.String(); s != "BlueInitialized(Reset(Watchdog))" {
		t.Fatalf("unexpected string %q", s)
	}
}

func TestBlueInitializedInvalidReason(t *testing.T) {
	d := hci.NewDecoder(Vendor{})

	for _, reason := range []byte{0x00, 0x02, 0x04, 0x06, 0x09, 0xFF} {
		_, _, err := d.Decode([]byte{0x04, 0xFF, 0x03, 0x01, 0x00, reason})
		if errors.Cause(err) != ble.ErrInvalidReasonCode {
			t.Errorf("reason 0x%02X: expected ErrInvalidReasonCode, got %v", reason, err)
		}
	}
}

func TestUnknownVendorEvent(t *testing.T) {
	_, _, err := Vendor{}.ParseEvent([]byte{0x02, 0x00, 0x01})
	if errors.Cause(err) != ble.ErrMalformedFrame {
		t.Fatalf("expected ErrMalformedFrame, got %v", err)
	}
}

func TestFirmwareBuildNumberReturnParameters(t *testing.T) {
	rp, n, err := Vendor{}.ParseReturnParameters(0xFC00, []byte{0x00, 0x34, 0x12, 0x99})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("consumed %v bytes, expected 3", n)
	}
	fw := rp.(FirmwareBuildNumber)
	if fw.Status != hci.StatusSuccess || fw.BuildNumber != 0x1234 {
		t.Fatalf("unexpected return parameters %v", fw)
	}

	_, _, err = Vendor{}.ParseReturnParameters(0xFC01, []byte{0x00, 0x34, 0x12})
	if errors.Cause(err) != ble.ErrUnsupportedOpcode {
		t.Fatalf("expected ErrUnsupportedOpcode, got %v", err)
	}
}

func TestDecodeFirmwareBuildNumberComplete(t *testing.T) {
	d := hci.NewDecoder(Vendor{})

	e, n, err := d.Decode([]byte{0x04, 0x0E, 0x06, 0x01, 0x00, 0xFC, 0x00, 0x07, 0x01})
	if err != nil {
		t.Fatal(err)
	}
	if n != 9 {
		t.Fatalf("consumed %v bytes, expected 9", n)
	}
	cc := e.Core.(hci.CommandComplete)
	fw := cc.ReturnParameters.Vendor.(FirmwareBuildNumber)
	if cc.Opcode != 0xFC00 || fw.BuildNumber != 0x0107 {
		t.Fatalf("unexpected event %v", cc)
	}
}

func TestGetFirmwareBuildNumberFrame(t *testing.T) {
	b, err := hci.EncodeCommand(GetFirmwareBuildNumber{})
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 4 || b[0] != 0x01 || b[1] != 0x00 || b[2] != 0xFC || b[3] != 0x00 {
		t.Fatalf("unexpected frame % X", b)
	}
}

type senderFunc func(ctx context.Context, c hci.Command) (hci.ReturnParameters, error)

func (f senderFunc) SendCommand(ctx context.Context, c hci.Command) (hci.ReturnParameters, error) {
	return f(ctx, c)
}

func TestReadFirmwareBuildNumber(t *testing.T) {
	s := senderFunc(func(ctx context.Context, c hci.Command) (hci.ReturnParameters, error) {
		if c.OpCode() != 0xFC00 {
			t.Fatalf("unexpected opcode 0x%04X", c.OpCode())
		}
		return hci.ReturnParameters{Vendor: FirmwareBuildNumber{BuildNumber: 42}}, nil
	})

	fw, err := ReadFirmwareBuildNumber(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if fw.BuildNumber != 42 {
		t.Fatalf("unexpected build number %v", fw.BuildNumber)
	}

	core := senderFunc(func(ctx context.Context, c hci.Command) (hci.ReturnParameters, error) {
		return hci.ReturnParameters{}, nil
	})
	if _, err := ReadFirmwareBuildNumber(context.Background(), core); err == nil {
		t.Fatal("no error on core return parameters")
	}
}
