//go:build windows

package uevloop

import "errors"

var errSelectorUnsupported = errors.New("uevloop: I/O selector is not implemented on this platform")

func (s *selector) openWake() error {
	return errSelectorUnsupported
}

func (s *selector) signalWake() {}

func (s *selector) runLoop() {}
