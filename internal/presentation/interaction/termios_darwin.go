//go:build darwin

package interaction

import (
	"os"

	"golang.org/x/sys/unix"
)

func (kr *KeyboardReader) enableRawMode() error {
	return kr.setRaw(unix.TIOCGETA, unix.TIOCSETA)
}

func (kr *KeyboardReader) disableRawMode() error {
	if kr.oldState == nil {
		return nil
	}
	return unix.IoctlSetTermios(int(os.Stdin.Fd()), unix.TIOCSETA, kr.oldState)
}
