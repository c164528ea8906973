package nodemcu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

//go:generate go tool mockgen -source=transport.go -destination=mock_transport.go -package=nodemcu

// Transport is an established, bidirectional byte stream to a NodeMCU board.
//
// A Transport is assumed to be already connected and ready for use. Beyond
// plain reads and writes it exposes the serial-line controls the protocol
// depends on: a mutable read timeout for the expect engine, a mutable baud
// rate for speed renegotiation, and the two modem-control outputs that are
// wired to the board's reset circuitry. Typical implementations include
// serial ports and in-memory fakes used for testing.
type Transport interface {
	io.ReadWriteCloser

	// SetReadTimeout changes how long Read blocks when no data arrives.
	SetReadTimeout(d time.Duration) error
	// SetBaudRate switches the host side of the link to a new speed.
	SetBaudRate(baud int) error
	// SetDTR and SetRTS drive the modem-control outputs. On common
	// NodeMCU wiring RTS is CH_PD (reset) and DTR is GPIO0.
	SetDTR(level bool) error
	SetRTS(level bool) error
	// Drain blocks until all written bytes left the host.
	Drain() error
}

// Dialer opens a Transport to a NodeMCU board.
//
// Dialer abstracts how the connection is created (serial port, emulator,
// test double) and is used during session construction only.
type Dialer interface {
	// Dial creates and returns a connected Transport. It may block and
	// should respect cancellation provided by the context.
	Dial(ctx context.Context) (Transport, error)
}

// SerialDialer opens a NodeMCU board over a local serial port using
// go.bug.st/serial.
type SerialDialer struct {
	// PortName is the platform-specific device path, e.g. "/dev/ttyUSB0".
	PortName string
	// BaudRate to open the port at. Zero means DefaultBaudRate.
	BaudRate int
	// Mode overrides the full serial mode. When set, BaudRate is ignored.
	Mode *serial.Mode
}

// Dial implements Dialer.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if d.PortName == "" {
		return nil, errors.New("nodemcu: serial port name is required")
	}
	if ctx == nil {
		return nil, errors.New("nodemcu: context is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		baud := d.BaudRate
		if baud == 0 {
			baud = DefaultBaudRate
		}
		mode = &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.PortName, err)
	}
	return &serialTransport{port: port, mode: *mode}, nil
}

// serialTransport adapts a serial.Port to the Transport interface, keeping
// the current mode around so the baud rate can be changed in isolation.
type serialTransport struct {
	port serial.Port
	mode serial.Mode
}

func (t *serialTransport) Read(p []byte) (int, error)  { return t.port.Read(p) }
func (t *serialTransport) Write(p []byte) (int, error) { return t.port.Write(p) }
func (t *serialTransport) Close() error                { return t.port.Close() }

func (t *serialTransport) SetReadTimeout(d time.Duration) error {
	return t.port.SetReadTimeout(d)
}

func (t *serialTransport) SetBaudRate(baud int) error {
	t.mode.BaudRate = baud
	return t.port.SetMode(&t.mode)
}

func (t *serialTransport) SetDTR(level bool) error { return t.port.SetDTR(level) }
func (t *serialTransport) SetRTS(level bool) error { return t.port.SetRTS(level) }
func (t *serialTransport) Drain() error            { return t.port.Drain() }
