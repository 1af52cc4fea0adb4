//go:build unix

package terminal

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

const readInterval = 5 * time.Millisecond

// console holds the raw mode state of stdin and the goroutine reading from it.
type console struct {
	fd       int
	oldState *term.State

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func openConsole(file *os.File, chunks chan<- []byte) (*console, error) {
	fd := int(file.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		_ = term.Restore(fd, oldState)
		return nil, fmt.Errorf("setting non-blocking input: %w", err)
	}

	c := &console{
		fd:       fd,
		oldState: oldState,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go c.read(chunks)
	return c, nil
}

func (c *console) read(chunks chan<- []byte) {
	defer close(c.done)
	buf := make([]byte, 16)

	for {
		select {
		case <-c.stop:
			return
		default:
		}

		n, err := unix.Read(c.fd, buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case chunks <- chunk:
			default: // frame loop is not keeping up, drop the input
			}
		}

		switch {
		case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EWOULDBLOCK), err == nil && n <= 0:
			time.Sleep(readInterval)
		case err != nil:
			return
		}
	}
}

func (c *console) close() error {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	<-c.done

	if err := unix.SetNonblock(c.fd, false); err != nil {
		return fmt.Errorf("restoring blocking input: %w", err)
	}
	if err := term.Restore(c.fd, c.oldState); err != nil {
		return fmt.Errorf("restoring terminal: %w", err)
	}
	return nil
}
