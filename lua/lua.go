package lua

const (
	// Terminal control
	CRLF        = "\r\n"
	Prompt      = "> "  // interpreter prompt after every command
	ReadyPrompt = "C> " // receiver is waiting for a filename

	// Single-byte replies from the device-side receiver
	Ack byte = 0x06
	Nak byte = 0x15

	// Upload chunk framing
	ChunkMarker    byte = 0x01
	ChunkSize           = 128
	FrameSize           = 2 + ChunkSize // marker + length + padded payload
	NameTerminator byte = 0x00

	// Download transfers request this many bytes per command.
	DownloadChunkSize = 256

	// SyncMarker is printed by the device to prove the interpreter is
	// responding at the expected speed.
	SyncMarker = "%sync%"

	// FormatDone appears in the reply of a successful file.format().
	FormatDone = "format done"
)
