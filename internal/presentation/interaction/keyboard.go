package interaction

import (
	"errors"
	"os"
	"sync"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNotTerminal is returned when stdin is not an interactive terminal.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// KeyboardReader handles keyboard input in raw mode
type KeyboardReader struct {
	oldState *unix.Termios
	input    chan KeyEvent
	stop     chan struct{}
	once     sync.Once
}

// KeyEvent represents a keyboard event
type KeyEvent struct {
	Key  rune
	Type KeyType
}

// KeyType represents the type of key pressed
type KeyType int

const (
	KeyChar KeyType = iota
	KeyEscape
	KeyTab
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
)

const (
	keyCtrlC = 3
	keyTab   = 9
	keyEsc   = 27
)

// NewKeyboardReader puts the terminal into raw mode and starts reading keys
func NewKeyboardReader() (*KeyboardReader, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, ErrNotTerminal
	}

	kr := &KeyboardReader{
		input: make(chan KeyEvent, 10),
		stop:  make(chan struct{}),
	}

	if err := kr.enableRawMode(); err != nil {
		return nil, err
	}

	go kr.readInput()

	return kr, nil
}

func (kr *KeyboardReader) readInput() {
	buf := make([]byte, 8)

	for {
		n, err := os.Stdin.Read(buf)
		select {
		case <-kr.stop:
			return
		default:
		}
		if err != nil || n == 0 {
			continue
		}

		event := parseInput(buf[:n])
		if event == nil {
			continue
		}
		select {
		case kr.input <- *event:
		case <-kr.stop:
			return
		}
	}
}

// parseInput decodes one read from a raw terminal
func parseInput(buf []byte) *KeyEvent {
	if len(buf) == 0 {
		return nil
	}

	switch buf[0] {
	case keyCtrlC:
		return &KeyEvent{Key: keyCtrlC, Type: KeyChar}
	case keyTab:
		return &KeyEvent{Key: keyTab, Type: KeyTab}
	case keyEsc:
		if len(buf) == 1 {
			return &KeyEvent{Key: keyEsc, Type: KeyEscape}
		}
		if len(buf) >= 3 && (buf[1] == '[' || buf[1] == 'O') {
			switch buf[2] {
			case 'A':
				return &KeyEvent{Type: KeyUp}
			case 'B':
				return &KeyEvent{Type: KeyDown}
			case 'C':
				return &KeyEvent{Type: KeyRight}
			case 'D':
				return &KeyEvent{Type: KeyLeft}
			}
		}
		return nil
	}

	return &KeyEvent{Key: rune(buf[0]), Type: KeyChar}
}

// Events returns the keyboard event channel
func (kr *KeyboardReader) Events() <-chan KeyEvent {
	return kr.input
}

// Close stops the keyboard reader and restores the terminal
func (kr *KeyboardReader) Close() error {
	var err error
	kr.once.Do(func() {
		close(kr.stop)
		err = kr.disableRawMode()
	})
	return err
}
