package nodemcu

import (
	"io"
	"slices"
	"sync"
	"time"
)

// TestTransport is a test helper that simulates a serial port using
// channels. Reads block until data is queued or the configured read timeout
// elapses, in which case they return (0, nil) exactly like a serial port
// with a read timeout. Writes are recorded and optionally forwarded to an
// OnWrite hook so tests can script a simulated device.
type TestTransport struct {
	mu          sync.Mutex
	readChan    chan []byte
	pending     []byte
	readTimeout time.Duration
	closed      bool

	writes    [][]byte
	baudRates []int
	dtr, rts  []bool

	// OnWrite, when set, observes every write. It runs outside the
	// transport lock, so it may call SendData to answer.
	OnWrite func(p []byte)
}

// NewTestTransport creates a new test transport. Exported for use in tests.
func NewTestTransport() *TestTransport {
	return &TestTransport{
		readChan: make(chan []byte, 64),
	}
}

func (t *TestTransport) Read(p []byte) (int, error) {
	t.mu.Lock()
	if len(t.pending) > 0 {
		n := copy(p, t.pending)
		t.pending = t.pending[n:]
		t.mu.Unlock()
		return n, nil
	}
	timeout := t.readTimeout
	t.mu.Unlock()

	var expired <-chan time.Time
	if timeout > 0 {
		expired = time.After(timeout)
	}
	select {
	case data, ok := <-t.readChan:
		if !ok {
			return 0, io.EOF
		}
		n := copy(p, data)
		if n < len(data) {
			t.mu.Lock()
			t.pending = append(t.pending, data[n:]...)
			t.mu.Unlock()
		}
		return n, nil
	case <-expired:
		return 0, nil
	}
}

func (t *TestTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	data := slices.Clone(p)
	t.writes = append(t.writes, data)
	hook := t.OnWrite
	t.mu.Unlock()

	if hook != nil {
		hook(data)
	}
	return len(p), nil
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.readChan)
	return nil
}

func (t *TestTransport) SetReadTimeout(d time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readTimeout = d
	return nil
}

func (t *TestTransport) SetBaudRate(baud int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.baudRates = append(t.baudRates, baud)
	return nil
}

func (t *TestTransport) SetDTR(level bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dtr = append(t.dtr, level)
	return nil
}

func (t *TestTransport) SetRTS(level bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rts = append(t.rts, level)
	return nil
}

func (t *TestTransport) Drain() error { return nil }

// SendData queues data to be read from the transport, simulating device
// output.
func (t *TestTransport) SendData(data string) {
	t.SendBytes([]byte(data))
}

// SendBytes queues raw bytes to be read from the transport.
func (t *TestTransport) SendBytes(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.readChan <- slices.Clone(data)
	}
}

// Writes returns a copy of every Write payload in order.
func (t *TestTransport) Writes() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.writes)
}

// BaudRates returns the SetBaudRate history.
func (t *TestTransport) BaudRates() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.baudRates)
}

// ModemControl returns the SetDTR and SetRTS histories.
func (t *TestTransport) ModemControl() (dtr, rts []bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.dtr), slices.Clone(t.rts)
}
