package nodemcu_test

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/cheloftus/nodemcu-uploader/lua"
	"github.com/cheloftus/nodemcu-uploader/nodemcu"
)

// fakeDevice scripts a NodeMCU board behind a TestTransport: it echoes
// commands, serves the prompt, runs the receiver protocol for uploads and
// answers download/admin commands from an in-memory filesystem.
type fakeDevice struct {
	tr *nodemcu.TestTransport

	mu    sync.Mutex
	files map[string][]byte

	// receiver state
	receiving bool
	naming    bool
	curName   string
	curData   []byte

	// behavior switches
	silentSync      bool              // never echo the sync marker
	silentRecv      bool              // recv() gives no ready prompt
	nakChunks       bool              // refuse every chunk
	badDownload     bool              // answer downloads with an error message
	corruptReadback bool              // flip a byte in downloaded content
	rejectScript    bool              // complain about every receiver line
	formatReply     string            // printed by file.format()
	heap            int64             // printed by node.heap()
	digests         map[string]string // overrides for shafile replies
}

var downloadRe = regexp.MustCompile(
	`^file\.open\('([^']+)'\) print\(file\.seek\('end', 0\)\) file\.seek\('set', (\d+)\) uart\.write\(0, file\.read\((\d+)\)\)file\.close\(\)$`)

var uartSetupRe = regexp.MustCompile(`^uart\.setup\(0,\d+,8,0,1,1\)$`)

func newFakeDevice(tr *nodemcu.TestTransport) *fakeDevice {
	d := &fakeDevice{
		tr:          tr,
		files:       make(map[string][]byte),
		formatReply: "format done.",
		heap:        22128,
		digests:     make(map[string]string),
	}
	tr.OnWrite = d.handleWrite
	return d
}

func (d *fakeDevice) handleWrite(p []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.naming {
		d.curName, _, _ = strings.Cut(string(p), "\x00")
		d.curData = nil
		d.naming = false
		d.receiving = true
		d.sendBytes([]byte{lua.Ack})
		return
	}
	if d.receiving {
		d.handleFrame(p)
		return
	}

	line := strings.TrimSuffix(string(p), "\n")
	switch {
	case line == ";" || line == "":
		d.send(line + "\r\n> ")

	case line == lua.PrintSync():
		if d.silentSync {
			return
		}
		d.send(line + "\r\n" + lua.SyncMarker + "\r\n> ")

	case uartSetupRe.MatchString(line):
		// Top-level speed change: the board reconfigures its UART and
		// prints nothing. (The similar line inside the receiver script
		// is a function body and echoes like any other, so it falls
		// through to the default case.)

	case line == lua.Recv():
		if d.silentRecv {
			return
		}
		d.naming = true
		d.send(lua.ReadyPrompt)

	case line == lua.ListFiles():
		var sb strings.Builder
		sb.WriteString(line + "\r\n")
		for name, content := range d.files {
			fmt.Fprintf(&sb, "%s\t%d\r\n", name, len(content))
		}
		sb.WriteString("> ")
		d.send(sb.String())

	case line == lua.Format():
		d.files = make(map[string][]byte)
		d.send(line + "\r\n" + d.formatReply + "\r\n> ")

	case line == lua.Heap():
		d.send(fmt.Sprintf("%s\r\n%d\r\n> ", line, d.heap))

	case line == lua.Restart():
		// Rebooting; the prompt vanishes.

	case strings.HasPrefix(line, `shafile("`):
		name := strings.TrimSuffix(strings.TrimPrefix(line, `shafile("`), `")`)
		digest, ok := d.digests[name]
		if !ok {
			sum := sha1.Sum(d.files[name])
			digest = hex.EncodeToString(sum[:])
		}
		d.send(line + "\r\n" + digest + "\r\n> ")

	case downloadRe.MatchString(line):
		if d.badDownload {
			d.send("lua: cannot open file\r\n> ")
			return
		}
		m := downloadRe.FindStringSubmatch(line)
		name := m[1]
		offset, _ := strconv.Atoi(m[2])
		count, _ := strconv.Atoi(m[3])
		content := slices.Clone(d.files[name])
		if d.corruptReadback && len(content) > 0 {
			content[0] ^= 0xFF
		}
		end := min(offset+count, len(content))
		var payload []byte
		if offset < len(content) {
			payload = content[offset:end]
		}
		header := fmt.Sprintf("%s\r\n%d\r\n", line, len(content))
		d.sendBytes(slices.Concat([]byte(header), payload, []byte("\r\n> ")))

	default:
		if d.rejectScript {
			d.send(line + "\r\nstdin:1: unexpected symbol\r\n> ")
			return
		}
		d.send(line + "\r\n> ")
	}
}

func (d *fakeDevice) handleFrame(p []byte) {
	if len(p) != lua.FrameSize || p[0] != lua.ChunkMarker || d.nakChunks {
		d.receiving = false
		d.sendBytes([]byte{lua.Nak})
		return
	}
	size := int(p[1])
	if size == 0 {
		d.files[d.curName] = d.curData
		d.receiving = false
		d.sendBytes([]byte{lua.Ack})
		return
	}
	d.curData = append(d.curData, p[2:2+size]...)
	d.sendBytes([]byte{lua.Ack})
}

func (d *fakeDevice) send(s string)      { d.tr.SendData(s) }
func (d *fakeDevice) sendBytes(b []byte) { d.tr.SendBytes(b) }

func (d *fakeDevice) setFile(name string, content []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files[name] = content
}

func (d *fakeDevice) file(name string) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.files[name]
}
