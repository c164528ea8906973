package lua

import "fmt"

// Command builders for the NodeMCU interpreter. Remote files are referenced
// by flat path strings; the device filesystem has no directories.

// PrintSync makes the interpreter echo the sync marker.
func PrintSync() string {
	return fmt.Sprintf(`print("%s");`, SyncMarker)
}

// UARTSetup reconfigures the device's serial peripheral: 8 data bits,
// no parity, 1 stop bit, echo on.
func UARTSetup(baud int) string {
	return fmt.Sprintf("uart.setup(0,%d,8,0,1,1)", baud)
}

// Recv invokes the resident receiver routine uploaded by Prepare.
func Recv() string {
	return "recv()"
}

// Download builds the command that prints a file's total size and streams
// size bytes starting at offset back over the UART.
func Download(name string, offset, size int) string {
	return fmt.Sprintf("file.open('%s') print(file.seek('end', 0)) file.seek('set', %d) uart.write(0, file.read(%d))file.close()",
		name, offset, size)
}

// ListFiles prints every file as a "name\tsize" line.
func ListFiles() string {
	return "for key,value in pairs(file.list()) do print(key,value) end"
}

func RemoveFile(name string) string {
	return fmt.Sprintf(`file.remove("%s")`, name)
}

func DoFile(name string) string {
	return fmt.Sprintf(`dofile("%s")`, name)
}

func Compile(name string) string {
	return fmt.Sprintf(`node.compile("%s")`, name)
}

func Format() string {
	return "file.format()"
}

func Heap() string {
	return "print(node.heap())"
}

func Restart() string {
	return "node.restart()"
}

// SHAFile makes the device print the hex SHA-1 digest of a file.
func SHAFile(name string) string {
	return fmt.Sprintf(`shafile("%s")`, name)
}
