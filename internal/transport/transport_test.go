package transport

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"go.bug.st/serial"
	"go.uber.org/mock/gomock"
)

func TestSerialDialerRequiresPort(t *testing.T) {
	tr, err := SerialDialer{}.Dial(context.Background(), "")
	if !errors.Is(err, ErrNoPort) {
		t.Fatalf("err = %v", err)
	}
	if tr != nil {
		t.Fatalf("expected nil transport")
	}
	if err.Error() != "transport: serial port name is required" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestSerialDialerNilContext(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	tr, err := SerialDialer{}.Dial(nil, "/dev/rfcomm0")
	if !errors.Is(err, ErrNilContext) {
		t.Fatalf("err = %v", err)
	}
	if tr != nil {
		t.Fatalf("expected nil transport")
	}
}

func TestSerialDialerCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr, err := SerialDialer{}.Dial(ctx, "/dev/nonexistent")
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if tr != nil {
		t.Fatalf("expected nil transport")
	}
}

func TestSerialDialerMissingDevice(t *testing.T) {
	dialer := SerialDialer{Mode: &serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.EvenParity,
		StopBits: serial.OneStopBit,
	}}
	tr, err := dialer.Dial(context.Background(), "/dev/btterm-does-not-exist")
	if err == nil {
		t.Fatalf("expected error for missing device")
	}
	if tr != nil {
		t.Fatalf("expected nil transport")
	}
	if !strings.Contains(err.Error(), "/dev/btterm-does-not-exist") {
		t.Fatalf("error should name the device: %v", err)
	}
}

func TestPortInfoLabel(t *testing.T) {
	plain := PortInfo{Name: "/dev/rfcomm0"}
	if got := plain.Label(); got != "/dev/rfcomm0" {
		t.Fatalf("label = %q", got)
	}
	usb := PortInfo{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", Product: "FT232R"}
	if got := usb.Label(); got != "/dev/ttyUSB0  [0403:6001] FT232R" {
		t.Fatalf("label = %q", got)
	}
}

func TestPTYDialerEchoesAndExits(t *testing.T) {
	dialer := PTYDialer{Command: []string{"/bin/sh", "-c", "read line; echo got:$line; exit 3"}}
	tr, err := dialer.Dial(context.Background(), "sh")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer tr.Close()

	if _, err := tr.Write([]byte("ping\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := io.ReadAll(tr)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(out), "got:ping") {
		t.Fatalf("output = %q", out)
	}

	_ = tr.Close()
	code, ok := tr.(*PTYTransport).ExitCode()
	if !ok || code != 3 {
		t.Fatalf("exit code = %d, %v", code, ok)
	}
}

func TestPTYDialerRequiresCommand(t *testing.T) {
	if _, err := (PTYDialer{}).Dial(context.Background(), "none"); !errors.Is(err, ErrNoCommand) {
		t.Fatalf("err = %v", err)
	}
}

func TestPTYCloseStopsLongRunningChild(t *testing.T) {
	tr, err := PTYDialer{Command: []string{"/bin/sh", "-c", "sleep 30"}}.Dial(context.Background(), "sleep")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok := tr.(*PTYTransport).ExitCode(); !ok {
		t.Fatalf("child still running after close")
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestMockTransportSatisfiesInterface(t *testing.T) {
	ctrl := gomock.NewController(t)
	var _ Transport = NewMockTransport(ctrl)
	var _ Dialer = NewMockDialer(ctrl)
	var _ Dialer = SerialDialer{}
	var _ Dialer = PTYDialer{}
}
