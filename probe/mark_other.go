//go:build !linux

package probe

import "errors"

// SetMark is only available on Linux.
func (p *Pinger) SetMark(mark uint) error {
	return errors.New("setting SO_MARK socket option is not supported on this platform")
}
