package nodemcu_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/cheloftus/nodemcu-uploader/nodemcu"
)

func TestDownloadFile(t *testing.T) {
	sizes := []int{1, 255, 256, 300, 512, 1000}
	for _, size := range sizes {
		t.Run("size "+strconv.Itoa(size), func(t *testing.T) {
			u, _, device := syncedUploader(t, 500*time.Millisecond)
			content := testContent(size)
			device.setFile("data.bin", content)

			got, err := u.DownloadFile(context.Background(), "data.bin")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, content) {
				t.Errorf("downloaded %d bytes, want %d matching bytes", len(got), size)
			}
		})
	}
}

func TestDownloadEmptyFile(t *testing.T) {
	u, _, device := syncedUploader(t, 500*time.Millisecond)
	device.setFile("empty.lua", nil)

	got, err := u.DownloadFile(context.Background(), "empty.lua")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty content, got %d bytes", len(got))
	}
}

func TestDownloadMalformedResponse(t *testing.T) {
	u, _, device := syncedUploader(t, 500*time.Millisecond)
	device.badDownload = true

	_, err := u.DownloadFile(context.Background(), "missing.lua")
	if !errors.Is(err, nodemcu.ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got: %v", err)
	}
}

func TestReadFile(t *testing.T) {
	u, _, device := syncedUploader(t, 500*time.Millisecond)
	content := testContent(300)
	device.setFile("data.bin", content)

	dest := filepath.Join(t.TempDir(), "out.bin")
	if err := u.ReadFile(context.Background(), "data.bin", dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Error("local copy differs from device content")
	}
}
