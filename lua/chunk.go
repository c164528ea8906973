package lua

import "fmt"

// Chunk builds one fixed-size upload frame: the marker byte, the true payload
// length, the payload itself and space padding up to ChunkSize. The frame is
// always FrameSize bytes long; the receiver trusts the length byte, not the
// padding. A nil or empty payload produces the end-of-file terminator frame.
func Chunk(payload []byte) ([]byte, error) {
	if len(payload) > ChunkSize {
		return nil, fmt.Errorf("chunk payload %d bytes exceeds %d", len(payload), ChunkSize)
	}
	frame := make([]byte, FrameSize)
	frame[0] = ChunkMarker
	frame[1] = byte(len(payload))
	copy(frame[2:], payload)
	for i := 2 + len(payload); i < FrameSize; i++ {
		frame[i] = ' '
	}
	return frame, nil
}

// SplitChunks cuts data into ChunkSize-or-smaller pieces, preserving order.
// The terminator frame is not included; callers append Chunk(nil) themselves.
func SplitChunks(data []byte) [][]byte {
	chunks := make([][]byte, 0, (len(data)+ChunkSize-1)/ChunkSize)
	for len(data) > ChunkSize {
		chunks = append(chunks, data[:ChunkSize])
		data = data[ChunkSize:]
	}
	if len(data) > 0 {
		chunks = append(chunks, data)
	}
	return chunks
}
