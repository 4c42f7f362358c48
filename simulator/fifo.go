package simulator

import (
	"errors"
	"io"
	"sync"
)

// errNoData is returned by ReadByte when the buffer is empty, keeping
// the device side non-blocking.
var errNoData = errors.New("no data available")

// fifo is a one-direction byte pipe. Read blocks until data or close;
// ReadByte never blocks.
type fifo struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []byte
	closed bool
}

func newFifo() *fifo {
	f := &fifo{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

func (f *fifo) Write(b []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, io.ErrClosedPipe
	}
	f.buf = append(f.buf, b...)
	f.cond.Broadcast()
	return len(b), nil
}

func (f *fifo) Read(b []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.buf) == 0 {
		if f.closed {
			return 0, io.EOF
		}
		f.cond.Wait()
	}
	n := copy(b, f.buf)
	f.buf = f.buf[n:]
	return n, nil
}

func (f *fifo) ReadByte() (byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.buf) == 0 {
		if f.closed {
			return 0, io.EOF
		}
		return 0, errNoData
	}
	b := f.buf[0]
	f.buf = f.buf[1:]
	return b, nil
}

func (f *fifo) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.cond.Broadcast()
}
