package nodemcu

import (
	"bytes"
	"context"
	"fmt"
	"time"
)

// pollReadTimeout is the per-read timeout inside the expect loop. Checking
// for new data this often keeps the wall-clock deadline precise regardless
// of the device's actual response latency.
const pollReadTimeout = 100 * time.Microsecond

// expect accumulates bytes from the transport until the accumulator's tail
// matches pattern or the deadline passes. The accumulated bytes are returned
// in both cases; a miss additionally carries a wrapped ErrTimeout so callers
// can distinguish without inspecting the tail themselves.
//
// The transport's read timeout is temporarily overridden and restored to the
// session-wide value on return.
func (u *Uploader) expect(ctx context.Context, pattern string, timeout time.Duration) ([]byte, error) {
	if err := u.transport.SetReadTimeout(pollReadTimeout); err != nil {
		return nil, fmt.Errorf("set poll timeout: %w", err)
	}
	defer u.transport.SetReadTimeout(u.timeout)

	target := []byte(pattern)
	deadline := time.Now().Add(timeout)

	var data []byte
	buf := make([]byte, 256)
	for !bytes.HasSuffix(data, target) {
		if time.Now().After(deadline) {
			u.log.Debug("expect timed out", "pattern", pattern, "read", string(data))
			return data, fmt.Errorf("%w: %q not observed within %s", ErrTimeout, pattern, timeout)
		}
		select {
		case <-ctx.Done():
			return data, ctx.Err()
		default:
		}

		n, err := u.transport.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
		}
		if err != nil {
			return data, fmt.Errorf("read: %w", err)
		}
	}
	u.log.Debug("expect matched", "pattern", pattern, "bytes", len(data))
	return data, nil
}
