//go:build !unix

package terminal

import (
	"errors"
	"os"
)

type console struct{}

func openConsole(*os.File, chan<- []byte) (*console, error) {
	return nil, errors.New("terminal frontend is not supported on this platform")
}

func (c *console) close() error {
	return nil
}
