package nodemcu

import (
	"context"
	"fmt"
	"os"

	"github.com/cheloftus/nodemcu-uploader/lua"
)

// DownloadFile retrieves a remote file over the print-and-parse protocol.
// Each round trip is itself an interpreter command that reports the total
// file size and streams one chunk of raw bytes; the loop advances until the
// cumulative offset exceeds the reported size, then the buffer is truncated
// to exactly that size.
func (u *Uploader) DownloadFile(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	offset := 0
	for {
		resp, err := u.exchange(ctx, lua.Download(name, offset, lua.DownloadChunkSize))
		if err != nil {
			return nil, fmt.Errorf("download %s at %d: %w", name, offset, err)
		}
		size, payload, perr := lua.ParseDownload([]byte(resp), lua.DownloadChunkSize)
		if perr != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, perr)
		}
		data = append(data, payload...)
		offset += lua.DownloadChunkSize
		if offset > size {
			if len(data) < size {
				return data, fmt.Errorf("%w: got %d of %d bytes", ErrMalformedResponse, len(data), size)
			}
			return data[:size], nil
		}
	}
}

// ReadFile downloads a remote file and writes it to a local path, which
// defaults to the remote name.
func (u *Uploader) ReadFile(ctx context.Context, name, destination string) error {
	if destination == "" {
		destination = name
	}
	u.log.Info("transferring file", "source", name, "destination", destination)
	data, err := u.DownloadFile(ctx, name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(destination, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", destination, err)
	}
	return nil
}
