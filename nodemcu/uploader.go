package nodemcu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cheloftus/nodemcu-uploader/lua"
)

// Uploader is a synchronized session with the Lua interpreter on a NodeMCU
// board. Construction performs the reset-and-sync handshake; afterwards the
// stream is positioned at a fresh interpreter prompt and every operation is
// expected to leave it there again. The protocol is synchronous and blocking
// throughout: one Uploader exclusively owns its Transport and must not be
// used from more than one goroutine.
type Uploader struct {
	// transport is the raw serial byte stream to the board
	transport Transport
	// config holds the session settings
	config Config
	// log receives protocol traces and operation progress
	log *slog.Logger
	// baudRate is the speed the link currently runs at
	baudRate int
	// timeout bounds every expect operation
	timeout time.Duration
	// lineNumber counts exchanged lines; reserved for future line
	// numbering, not currently used to tag requests
	lineNumber int
	// closed indicates the session has been shut down
	closed bool
}

// New dials the transport and drives the handshake that forces the device
// interpreter into a known prompt state. If a non-default baud rate is
// configured it is negotiated as part of the handshake. A handshake failure
// is fatal: the transport is closed and ErrSyncFailed is returned.
func New(ctx context.Context, config Config) (*Uploader, error) {
	config.setDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}

	transport, err := config.Dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, errors.New("dialer returned nil transport")
	}

	u := &Uploader{
		transport: transport,
		config:    config,
		log:       config.Logger,
		baudRate:  DefaultBaudRate,
		timeout:   config.Timeout,
	}

	if err := u.transport.SetReadTimeout(u.timeout); err != nil {
		transport.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}

	if err := u.sync(ctx, config.BaudRate); err != nil {
		transport.Close()
		return nil, err
	}
	return u, nil
}

// sync resets the board and establishes the prompt-synchronized state.
func (u *Uploader) sync(ctx context.Context, baud int) error {
	// Deasserting both lines resets the board on the usual wiring:
	// RTS = CH_PD (reset), DTR = GPIO0.
	if err := u.transport.SetRTS(false); err != nil {
		return fmt.Errorf("clear RTS: %w", err)
	}
	if err := u.transport.SetDTR(false); err != nil {
		return fmt.Errorf("clear DTR: %w", err)
	}

	// No-op statement to flush the boot banner; the reply is irrelevant.
	if _, err := u.exchange(ctx, ";"); err != nil && !errors.Is(err, ErrTimeout) {
		return err
	}

	if err := u.checkSync(ctx); err != nil {
		return err
	}

	if baud != DefaultBaudRate {
		return u.switchBaud(ctx, baud)
	}
	return nil
}

// checkSync has the interpreter echo the sync marker and requires the marker
// immediately followed by a fresh prompt.
func (u *Uploader) checkSync(ctx context.Context) error {
	if err := u.writeln(lua.PrintSync()); err != nil {
		return err
	}
	data, err := u.expect(ctx, lua.SyncMarker+lua.CRLF+lua.Prompt, u.timeout)
	if err != nil {
		return fmt.Errorf("%w: %w (read %q)", ErrSyncFailed, err, data)
	}
	return nil
}

// switchBaud renegotiates the link speed. The device is told to reconfigure
// its UART first; the host waits for that command to finish transmitting at
// the old speed before switching its own side, then settles framing and
// re-verifies the sync marker.
func (u *Uploader) switchBaud(ctx context.Context, baud int) error {
	u.log.Info("changing communication speed", "baud", baud)
	if err := u.writeln(lua.UARTSetup(baud)); err != nil {
		return err
	}

	// Switching before the command left the wire would truncate it.
	time.Sleep(100 * time.Millisecond)

	if err := u.transport.SetBaudRate(baud); err != nil {
		return fmt.Errorf("set baud rate %d: %w", baud, err)
	}
	u.baudRate = baud

	// Two empty round trips to settle framing at the new speed.
	_, _ = u.exchange(ctx, "")
	_, _ = u.exchange(ctx, "")

	return u.checkSync(ctx)
}

// exchange writes one line and collects everything up to the next prompt.
// The returned text includes the device's echo of the command and its
// output; callers parse accordingly. On timeout the partial response is
// returned together with a wrapped ErrTimeout.
func (u *Uploader) exchange(ctx context.Context, line string) (string, error) {
	if u.closed {
		return "", ErrAlreadyClosed
	}
	if err := u.writeln(line); err != nil {
		return "", err
	}
	u.lineNumber++
	data, err := u.expect(ctx, lua.Prompt, u.timeout)
	return string(data), err
}

func (u *Uploader) write(p []byte) error {
	if _, err := u.transport.Write(p); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return u.transport.Drain()
}

func (u *Uploader) writeln(line string) error {
	u.log.Debug("send", "line", line)
	return u.write([]byte(line + "\n"))
}

// BaudRate reports the speed the link currently runs at.
func (u *Uploader) BaudRate() int {
	return u.baudRate
}

// Close restores the device to the default baud rate and releases the
// transport. The Uploader cannot be reused afterwards.
func (u *Uploader) Close() error {
	if u.closed {
		return ErrAlreadyClosed
	}
	u.closed = true
	_ = u.writeln(lua.UARTSetup(DefaultBaudRate))
	return u.transport.Close()
}
