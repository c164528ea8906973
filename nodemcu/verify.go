package nodemcu

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/cheloftus/nodemcu-uploader/lua"
)

// VerifyMode selects how an upload is checked after transfer.
type VerifyMode string

const (
	// VerifyNone performs no verification.
	VerifyNone VerifyMode = "none"
	// VerifyStandard downloads the file again and byte-compares it.
	VerifyStandard VerifyMode = "standard"
	// VerifySHA1 compares the device-computed SHA-1 digest against a
	// locally computed one.
	VerifySHA1 VerifyMode = "sha1"
)

// ParseVerifyMode maps a configuration token onto a VerifyMode.
func ParseVerifyMode(s string) (VerifyMode, error) {
	switch VerifyMode(s) {
	case VerifyNone, VerifyStandard, VerifySHA1:
		return VerifyMode(s), nil
	case "":
		return VerifyNone, nil
	default:
		return "", fmt.Errorf("unknown verify mode %q", s)
	}
}

// verify checks the just-written remote file against the original content.
// A disagreement is ErrVerifyMismatch: the transfer itself succeeded at the
// protocol level, but content integrity is unconfirmed.
func (u *Uploader) verify(ctx context.Context, name string, content []byte, mode VerifyMode) error {
	switch mode {
	case VerifyNone, "":
		return nil

	case VerifyStandard:
		u.log.Info("verifying by readback", "name", name)
		data, err := u.DownloadFile(ctx, name)
		if err != nil {
			return fmt.Errorf("verification readback: %w", err)
		}
		if !bytes.Equal(content, data) {
			return fmt.Errorf("%w: %s readback differs (%d vs %d bytes)",
				ErrVerifyMismatch, name, len(data), len(content))
		}
		return nil

	case VerifySHA1:
		resp, err := u.exchange(ctx, lua.SHAFile(name))
		if err != nil {
			return fmt.Errorf("remote digest: %w", err)
		}
		remote, err := lua.SecondLine(resp)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		sum := sha1.Sum(content)
		local := hex.EncodeToString(sum[:])
		u.log.Debug("comparing digests", "remote", remote, "local", local)
		if remote != local {
			return fmt.Errorf("%w: %s sha1 %s != %s", ErrVerifyMismatch, name, remote, local)
		}
		return nil

	default:
		return fmt.Errorf("unknown verify mode %q", mode)
	}
}
