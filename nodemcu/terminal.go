package nodemcu

import (
	"context"
	"errors"
	"io"
	"time"
)

// Terminal bridges the caller's reader/writer pair directly to the device,
// turning the session into a plain interactive console. It returns when the
// input reader reports EOF or the context is cancelled. The prompt-sync
// invariant does not hold during or after a terminal session; callers should
// close the Uploader afterwards.
func (u *Uploader) Terminal(ctx context.Context, in io.Reader, out io.Writer) error {
	if u.closed {
		return ErrAlreadyClosed
	}

	if err := u.transport.SetReadTimeout(50 * time.Millisecond); err != nil {
		return err
	}
	defer u.transport.SetReadTimeout(u.timeout)

	done := make(chan struct{})
	defer close(done)

	// Device → out. Short read timeouts keep this loop responsive to
	// shutdown without a second cancellation mechanism.
	go func() {
		buf := make([]byte, 256)
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			default:
			}
			n, err := u.transport.Read(buf)
			if n > 0 {
				if _, werr := out.Write(buf[:n]); werr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	// in → device.
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := in.Read(buf)
		if n > 0 {
			if _, werr := u.transport.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
