package nodemcu

import "errors"

var (
	// ErrNoDialer is returned when an Uploader is constructed without a
	// Dialer. This indicates a configuration error.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrAlreadyClosed is returned when an operation is attempted on an
	// Uploader that has been closed.
	ErrAlreadyClosed = errors.New("uploader already closed")

	// ErrSyncFailed is returned when the handshake (or the re-sync after a
	// baud-rate change) does not observe the sync marker followed by the
	// interpreter prompt within the timeout. The session is unusable.
	ErrSyncFailed = errors.New("could not sync with device prompt")

	// ErrBadAck is returned during chunked upload when the device does not
	// acknowledge the filename or a chunk with the ACK byte. The transfer
	// is aborted; no per-chunk retry is attempted.
	ErrBadAck = errors.New("device did not acknowledge")

	// ErrMalformedResponse is returned when a device reply cannot be split
	// into the structure an operation expects, for example a download
	// response missing its size line.
	ErrMalformedResponse = errors.New("malformed device response")

	// ErrVerifyMismatch is returned when a transfer completed at the
	// protocol level but the readback or digest comparison disagrees with
	// the source content.
	ErrVerifyMismatch = errors.New("verification mismatch")

	// ErrTimeout is returned when an expect operation exhausts its
	// deadline without observing the target pattern. The partial data read
	// so far is still returned alongside it.
	ErrTimeout = errors.New("timed out waiting for device")
)
