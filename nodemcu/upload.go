package nodemcu

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cheloftus/nodemcu-uploader/lua"
)

// WriteFile transfers a local file to the device flash filesystem using the
// chunked upload protocol, then runs the requested verification. The remote
// name defaults to the local basename. The device-side receiver must already
// be resident (see Prepare).
func (u *Uploader) WriteFile(ctx context.Context, localPath, remoteName string, verify VerifyMode) error {
	if remoteName == "" {
		remoteName = filepath.Base(localPath)
	}
	content, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", localPath, err)
	}

	u.log.Info("transferring file", "source", localPath, "destination", remoteName, "bytes", len(content))
	if err := u.upload(ctx, remoteName, content); err != nil {
		return err
	}
	return u.verify(ctx, remoteName, content, verify)
}

// upload drives the binary chunk-and-acknowledge protocol: start the
// receiver, send the NUL-terminated filename, then fixed-size frames each
// acknowledged individually, terminated by a zero-length frame. Any missing
// or wrong acknowledgement aborts the transfer; there is no per-chunk retry.
func (u *Uploader) upload(ctx context.Context, name string, content []byte) error {
	if u.closed {
		return ErrAlreadyClosed
	}

	if err := u.writeln(lua.Recv()); err != nil {
		return err
	}
	resp, err := u.expect(ctx, lua.ReadyPrompt, u.timeout)
	if err != nil {
		return fmt.Errorf("start receiver: %w (read %q)", err, resp)
	}

	// The filename goes out raw: no newline, no echo wait.
	u.log.Debug("sending destination filename", "name", name)
	if err := u.write(append([]byte(name), lua.NameTerminator)); err != nil {
		return err
	}
	if err := u.readAck(ctx); err != nil {
		return fmt.Errorf("filename: %w", err)
	}

	sent := 0
	for _, payload := range lua.SplitChunks(content) {
		frame, err := lua.Chunk(payload)
		if err != nil {
			return err
		}
		if err := u.write(frame); err != nil {
			return err
		}
		if err := u.readAck(ctx); err != nil {
			return fmt.Errorf("chunk at offset %d: %w", sent, err)
		}
		sent += len(payload)
		u.log.Debug("chunk acknowledged", "offset", sent, "total", len(content))
	}

	// Zero-length frame signals end-of-file to the receiver.
	terminator, err := lua.Chunk(nil)
	if err != nil {
		return err
	}
	if err := u.write(terminator); err != nil {
		return err
	}
	if err := u.readAck(ctx); err != nil {
		return fmt.Errorf("terminator: %w", err)
	}
	return nil
}

// readAck reads the single acknowledgement byte the receiver sends after
// the filename and after every frame.
func (u *Uploader) readAck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	buf := make([]byte, 1)
	n, err := u.transport.Read(buf)
	if err != nil {
		return fmt.Errorf("%w: read: %w", ErrBadAck, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: no reply", ErrBadAck)
	}
	if buf[0] != lua.Ack {
		return fmt.Errorf("%w: got %#02x", ErrBadAck, buf[0])
	}
	return nil
}
