package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/cheloftus/nodemcu-uploader/nodemcu"
)

// escapeByte ends the terminal session (Ctrl-]).
const escapeByte = 0x1d

// escapeReader passes stdin through until the escape byte shows up, then
// reports EOF so the bridge shuts down.
type escapeReader struct {
	r io.Reader
}

func (e escapeReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	for i := range p[:n] {
		if p[i] == escapeByte {
			return i, io.EOF
		}
	}
	return n, err
}

// runTerminal puts the controlling terminal into raw mode and bridges it to
// the device interpreter.
func runTerminal(ctx context.Context, u *nodemcu.Uploader) error {
	fd := int(os.Stdin.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	defer term.Restore(fd, state)

	fmt.Fprintf(os.Stderr, "Attached to device, escape with Ctrl-]\r\n")
	return u.Terminal(ctx, escapeReader{os.Stdin}, os.Stdout)
}
