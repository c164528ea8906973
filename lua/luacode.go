package lua

import (
	"strconv"
	"strings"
)

// saveLua is the device-side receiver uploaded by Prepare. recv() rebinds
// the UART data handler: the first event delivers the NUL-terminated target
// filename, every following event delivers one fixed-size chunk frame. The
// length byte inside the frame is authoritative; the space padding only
// keeps the frames a constant 130 bytes. shafile() backs sha1 verification.
//
// The literal 9600 is substituted with the session baud rate before upload.
const saveLua = `
function recv_name(d)
  d = d:gsub('%z.*', '')
  file.remove(d)
  file.open(d, 'w')
  uart.on('data', 130, recv_block, 0)
  uart.write(0, '\006')
end

function recv_block(d)
  if string.byte(d, 1) == 1 then
    local size = string.byte(d, 2)
    if size > 0 then
      file.write(string.sub(d, 3, 2 + size))
      uart.write(0, '\006')
    else
      file.close()
      uart.on('data')
      uart.write(0, '\006')
    end
  else
    uart.on('data')
    uart.write(0, '\021')
  end
end

function recv()
  uart.setup(0, 9600, 8, 0, 1, 0)
  uart.on('data', string.char(0), recv_name, 0)
  uart.write(0, 'C> ')
end

function shafile(f)
  file.open(f, 'r')
  print(crypto.toHex(crypto.hash('sha1', file.read())))
  file.close()
end
`

// ReceiverScript returns the receiver source as one interpreter line per
// element, with the baud-rate token substituted and cosmetic whitespace
// compacted so each line survives the interpreter's echo limits.
func ReceiverScript(baud int) []string {
	data := strings.ReplaceAll(saveLua, "9600", strconv.Itoa(baud))
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(data, "\r", ""), "\n") {
		line = strings.TrimSpace(line)
		line = strings.ReplaceAll(line, ", ", ",")
		line = strings.ReplaceAll(line, " = ", "=")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
