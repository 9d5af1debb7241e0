//go:build linux || darwin

package interaction

import (
	"os"

	"golang.org/x/sys/unix"
)

// setRaw saves the current terminal state and switches to raw input.
// Output processing and ISIG stay enabled.
func (kr *KeyboardReader) setRaw(get, set uint) error {
	fd := int(os.Stdin.Fd())

	oldState, err := unix.IoctlGetTermios(fd, get)
	if err != nil {
		return err
	}
	kr.oldState = oldState

	newState := *oldState
	newState.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN
	newState.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	newState.Cflag |= unix.CS8
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0

	return unix.IoctlSetTermios(fd, set, &newState)
}
