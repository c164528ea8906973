package nodemcu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cheloftus/nodemcu-uploader/lua"
)

// Thin request/response operations built directly on exchange. Each leaves
// the stream at a fresh prompt on success.

// Prepare uploads the device-side receiver and digest routines, line by
// line, with the script's baud-rate token substituted by the session's
// actual rate. Must be run once per board before the first WriteFile.
func (u *Uploader) Prepare(ctx context.Context) error {
	u.log.Info("preparing device for transfers")
	for _, line := range lua.ReceiverScript(u.baudRate) {
		resp, err := u.exchange(ctx, line)
		if err != nil {
			return fmt.Errorf("load receiver: %w", err)
		}
		if strings.Contains(resp, "unexpected") {
			return fmt.Errorf("%w: interpreter rejected %q: %q", ErrMalformedResponse, line, resp)
		}
	}
	return nil
}

// ListFiles returns the name→size map of the device filesystem.
func (u *Uploader) ListFiles(ctx context.Context) (map[string]int64, error) {
	resp, err := u.exchange(ctx, lua.ListFiles())
	if err != nil {
		return nil, err
	}
	return lua.ParseFileList(resp), nil
}

// RemoveFile deletes a remote file.
func (u *Uploader) RemoveFile(ctx context.Context, name string) error {
	u.log.Info("removing file", "name", name)
	_, err := u.exchange(ctx, lua.RemoveFile(name))
	return err
}

// DoFile executes a script already stored on the device.
func (u *Uploader) DoFile(ctx context.Context, name string) (string, error) {
	u.log.Info("executing remote file", "name", name)
	resp, err := u.exchange(ctx, lua.DoFile(name))
	if err != nil {
		return resp, err
	}
	u.log.Info("dofile output", "response", resp)
	return resp, nil
}

// CompileFile compiles a remote .lua source into bytecode.
func (u *Uploader) CompileFile(ctx context.Context, name string) error {
	u.log.Info("compiling file", "name", name)
	resp, err := u.exchange(ctx, lua.Compile(name))
	if err != nil {
		return err
	}
	if strings.Contains(resp, "unexpected") {
		return fmt.Errorf("%w: compile failed: %q", ErrMalformedResponse, resp)
	}
	return nil
}

// Format erases the device filesystem. Success is signalled by a literal
// marker in the reply.
func (u *Uploader) Format(ctx context.Context) error {
	u.log.Info("formatting filesystem")
	resp, err := u.exchange(ctx, lua.Format())
	if err != nil {
		return err
	}
	if !strings.Contains(resp, lua.FormatDone) {
		return fmt.Errorf("%w: format reply %q", ErrMalformedResponse, resp)
	}
	return nil
}

// Heap reports the device's free heap in bytes.
func (u *Uploader) Heap(ctx context.Context) (int64, error) {
	resp, err := u.exchange(ctx, lua.Heap())
	if err != nil {
		return 0, err
	}
	n, err := lua.ParseHeap(resp)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return n, nil
}

// Restart reboots the device. The prompt vanishes mid-reboot, so a timeout
// on this particular exchange is expected and reported as success.
func (u *Uploader) Restart(ctx context.Context) error {
	u.log.Info("restarting device")
	_, err := u.exchange(ctx, lua.Restart())
	if err != nil && !errors.Is(err, ErrTimeout) {
		return err
	}
	return nil
}

// ExecFile feeds a local script to the interpreter one line at a time,
// logging the output of each line.
func (u *Uploader) ExecFile(ctx context.Context, path string) error {
	u.log.Info("executing local file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		resp, err := u.exchange(ctx, strings.TrimRight(scanner.Text(), "\r\n"))
		if err != nil {
			return err
		}
		for _, out := range strings.Split(strings.TrimSuffix(resp, lua.Prompt), "\n") {
			if out = strings.TrimRight(out, "\r"); out != "" {
				u.log.Info(out)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
