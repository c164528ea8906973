package lua

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Parsers for interpreter responses. Every response starts with the echo of
// the command itself and ends with the next prompt, so all of these are
// deliberately tolerant about surrounding noise but strict about the
// structural markers they key on.

// ParseDownload splits one download-command response into the reported total
// file size and the raw payload bytes. The expected shape is three parts:
// the command echo line, a line holding the decimal total size, and up to
// chunkSize payload bytes (anything beyond chunkSize, such as the trailing
// prompt, is ignored; the caller truncates to the total size at the end).
func ParseDownload(resp []byte, chunkSize int) (size int, payload []byte, err error) {
	echo, rest, ok := bytes.Cut(resp, []byte("\n"))
	if !ok {
		return 0, nil, fmt.Errorf("no command echo in %q", resp)
	}
	sizeLine, payload, ok := bytes.Cut(rest, []byte("\n"))
	if !ok {
		return 0, nil, fmt.Errorf("no size line after echo %q", echo)
	}
	size, err = strconv.Atoi(strings.TrimSpace(string(sizeLine)))
	if err != nil {
		return 0, nil, fmt.Errorf("bad size line %q", sizeLine)
	}
	if len(payload) > chunkSize {
		payload = payload[:chunkSize]
	}
	return size, payload, nil
}

// ParseFileList extracts name→size pairs from a ListFiles response. The
// device prints one "name\tsize" line per file; the echo and prompt carry no
// tab and fall out naturally.
func ParseFileList(resp string) map[string]int64 {
	files := make(map[string]int64)
	for _, line := range strings.Split(resp, "\n") {
		line = strings.TrimRight(line, "\r")
		name, sizeField, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		size, err := strconv.ParseInt(strings.TrimSpace(sizeField), 10, 64)
		if err != nil {
			continue
		}
		files[name] = size
	}
	return files
}

// SecondLine returns the line printed by a command, i.e. the line after the
// command echo. Used for single-value replies such as digests and heap size.
func SecondLine(resp string) (string, error) {
	lines := strings.Split(resp, "\n")
	if len(lines) < 2 {
		return "", fmt.Errorf("expected at least two lines in %q", resp)
	}
	return strings.TrimSpace(lines[1]), nil
}

// ParseHeap extracts the free heap byte count from a Heap response.
func ParseHeap(resp string) (int64, error) {
	line, err := SecondLine(resp)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad heap value %q", line)
	}
	return n, nil
}
