package nodemcu_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.bug.st/serial"
	"go.uber.org/mock/gomock"

	"github.com/cheloftus/nodemcu-uploader/nodemcu"
)

var (
	_ nodemcu.Transport = (*nodemcu.TestTransport)(nil)
	_ nodemcu.Transport = (*nodemcu.MockTransport)(nil)
	_ nodemcu.Dialer    = nodemcu.SerialDialer{}
	_ nodemcu.Dialer    = (*nodemcu.MockDialer)(nil)
)

func TestSerialDialer(t *testing.T) {
	t.Run("empty port name", func(t *testing.T) {
		_, err := nodemcu.SerialDialer{}.Dial(context.Background())
		if err == nil || !strings.Contains(err.Error(), "serial port name is required") {
			t.Errorf("expected port name error, got: %v", err)
		}
	})

	t.Run("nil context", func(t *testing.T) {
		var nilCtx context.Context
		_, err := nodemcu.SerialDialer{PortName: "/dev/ttyUSB0"}.Dial(nilCtx)
		if err == nil || !strings.Contains(err.Error(), "context is nil") {
			t.Errorf("expected nil context error, got: %v", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := nodemcu.SerialDialer{PortName: "/dev/ttyUSB0"}.Dial(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got: %v", err)
		}
	})

	t.Run("nonexistent port", func(t *testing.T) {
		dialer := nodemcu.SerialDialer{PortName: "/dev/nonexistent-nodemcu-port"}
		if _, err := dialer.Dial(context.Background()); err == nil {
			t.Error("expected error opening nonexistent port")
		}
	})

	t.Run("nonexistent port with explicit mode", func(t *testing.T) {
		dialer := nodemcu.SerialDialer{
			PortName: "/dev/nonexistent-nodemcu-port",
			Mode:     &serial.Mode{BaudRate: 115200},
		}
		if _, err := dialer.Dial(context.Background()); err == nil {
			t.Error("expected error opening nonexistent port")
		}
	})
}

func TestMockTransport(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := nodemcu.NewMockTransport(ctrl)

	tr.EXPECT().SetReadTimeout(time.Second).Return(nil)
	tr.EXPECT().Write([]byte(";\n")).Return(2, nil)
	tr.EXPECT().Close().Return(nil)

	if err := tr.SetReadTimeout(time.Second); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if n, err := tr.Write([]byte(";\n")); n != 2 || err != nil {
		t.Errorf("Write = (%d, %v), want (2, nil)", n, err)
	}
	if err := tr.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
