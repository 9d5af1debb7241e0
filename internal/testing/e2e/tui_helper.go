package e2e

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

// TUITestConfig contains configuration for TUI testing
type TUITestConfig struct {
	// Command and arguments to run
	Command string
	Args    []string

	// Environment variables added to the current environment
	Env []string

	// Terminal size
	Rows uint16
	Cols uint16

	// Timeout for the entire session
	Timeout time.Duration
}

// TUITestSession runs a command on a pseudo terminal and mirrors its output
// onto a virtual screen.
type TUITestSession struct {
	cmd    *exec.Cmd
	ptmx   *os.File
	screen *Screen
	cancel context.CancelFunc

	mu     sync.Mutex
	raw    strings.Builder
	done   chan struct{}
	waited error
}

// NewTUITestSession starts the command on a new pseudo terminal
func NewTUITestSession(config *TUITestConfig) (*TUITestSession, error) {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Rows == 0 {
		config.Rows = 24
	}
	if config.Cols == 0 {
		config.Cols = 80
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	cmd := exec.CommandContext(ctx, config.Command, config.Args...)
	cmd.Env = append(os.Environ(), config.Env...)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: config.Rows, Cols: config.Cols})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start PTY: %w", err)
	}

	s := &TUITestSession{
		cmd:    cmd,
		ptmx:   ptmx,
		screen: NewScreen(int(config.Rows), int(config.Cols)),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.captureOutput()
	go func() {
		err := cmd.Wait()
		s.mu.Lock()
		s.waited = err
		s.mu.Unlock()
		close(s.done)
	}()
	return s, nil
}

// captureOutput feeds the PTY into the screen until it closes
func (s *TUITestSession) captureOutput() {
	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			s.screen.Write(buf[:n])
			s.mu.Lock()
			s.raw.Write(buf[:n])
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// SendKeys types keys into the terminal
func (s *TUITestSession) SendKeys(keys string) error {
	if !s.IsRunning() {
		return errors.New("session not running")
	}
	_, err := s.ptmx.Write([]byte(keys))
	return err
}

// WaitForText waits until text appears on the screen
func (s *TUITestSession) WaitForText(text string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.screen.ContainsText(text) {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("timeout waiting for text %q, screen:\n%s", text, s.Screenshot())
}

// Screenshot returns what the terminal currently shows
func (s *TUITestSession) Screenshot() string {
	return s.screen.Render()
}

// GetCleanOutput returns everything written so far without escape codes
func (s *TUITestSession) GetCleanOutput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StripANSI(s.raw.String())
}

// IsRunning reports whether the command has not exited yet
func (s *TUITestSession) IsRunning() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the command exits or timeout passes
func (s *TUITestSession) Wait(timeout time.Duration) error {
	select {
	case <-s.done:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.waited
	case <-time.After(timeout):
		return errors.New("command did not exit in time")
	}
}

// Stop asks the program to quit with 'q' and falls back to killing it
func (s *TUITestSession) Stop() error {
	if s.IsRunning() {
		_ = s.SendKeys("q")
	}
	err := s.Wait(2 * time.Second)
	if err != nil && s.IsRunning() {
		s.ForceStop()
	}
	s.ptmx.Close()
	return err
}

// ForceStop kills the command
func (s *TUITestSession) ForceStop() {
	s.cancel()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	<-s.done
	s.ptmx.Close()
}
