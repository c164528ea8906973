package nodemcu_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cheloftus/nodemcu-uploader/lua"
	"github.com/cheloftus/nodemcu-uploader/nodemcu"
)

// testContent returns n bytes of printable data that never contains the
// prompt string, so it cannot confuse the expect engine.
func testContent(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte('a' + i%26)
	}
	return data
}

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func syncedUploader(t *testing.T, timeout time.Duration) (*nodemcu.Uploader, *nodemcu.TestTransport, *fakeDevice) {
	t.Helper()
	tr := nodemcu.NewTestTransport()
	device := newFakeDevice(tr)
	u, err := nodemcu.New(context.Background(), testConfig(t, tr, timeout))
	if err != nil {
		t.Fatalf("handshake failed: %v", err)
	}
	t.Cleanup(func() { u.Close() })
	return u, tr, device
}

func TestWriteFile(t *testing.T) {
	t.Run("300 byte file makes three chunks and a terminator", func(t *testing.T) {
		u, tr, device := syncedUploader(t, 500*time.Millisecond)
		content := testContent(300)
		path := writeTempFile(t, "data.bin", content)

		if err := u.WriteFile(context.Background(), path, "data.bin", nodemcu.VerifyNone); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := device.file("data.bin"); !bytes.Equal(got, content) {
			t.Errorf("device stored %d bytes, want %d matching bytes", len(got), len(content))
		}

		var frames [][]byte
		for _, w := range tr.Writes() {
			if len(w) == lua.FrameSize && w[0] == lua.ChunkMarker {
				frames = append(frames, w)
			}
		}
		if len(frames) != 4 {
			t.Fatalf("expected 3 data frames plus terminator, got %d frames", len(frames))
		}
		wantLens := []byte{128, 128, 44, 0}
		for i, frame := range frames {
			if frame[1] != wantLens[i] {
				t.Errorf("frame %d length byte = %d, want %d", i, frame[1], wantLens[i])
			}
			for j := 2 + int(frame[1]); j < lua.FrameSize; j++ {
				if frame[j] != ' ' {
					t.Errorf("frame %d not space padded at %d", i, j)
					break
				}
			}
		}
	})

	t.Run("remote name defaults to basename", func(t *testing.T) {
		u, _, device := syncedUploader(t, 500*time.Millisecond)
		content := testContent(10)
		path := writeTempFile(t, "init.lua", content)

		if err := u.WriteFile(context.Background(), path, "", nodemcu.VerifyNone); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := device.file("init.lua"); !bytes.Equal(got, content) {
			t.Errorf("expected upload under basename, device has %q", got)
		}
	})

	t.Run("ErrBadAck on refused chunk", func(t *testing.T) {
		u, _, device := syncedUploader(t, 500*time.Millisecond)
		device.nakChunks = true
		path := writeTempFile(t, "data.bin", testContent(64))

		err := u.WriteFile(context.Background(), path, "data.bin", nodemcu.VerifyNone)
		if !errors.Is(err, nodemcu.ErrBadAck) {
			t.Errorf("expected ErrBadAck, got: %v", err)
		}
	})

	t.Run("ErrTimeout when receiver never signals ready", func(t *testing.T) {
		u, _, device := syncedUploader(t, 150*time.Millisecond)
		device.silentRecv = true
		path := writeTempFile(t, "data.bin", testContent(16))

		err := u.WriteFile(context.Background(), path, "data.bin", nodemcu.VerifyNone)
		if !errors.Is(err, nodemcu.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got: %v", err)
		}
	})

	t.Run("missing local file", func(t *testing.T) {
		u, _, _ := syncedUploader(t, 500*time.Millisecond)
		err := u.WriteFile(context.Background(), filepath.Join(t.TempDir(), "absent"), "", nodemcu.VerifyNone)
		if err == nil {
			t.Error("expected error for missing local file")
		}
	})
}
