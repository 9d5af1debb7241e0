// Package capture persists the raw event stream of a connection and reads it
// back for replay.
package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/penwyp/go-comet/internal/core/beacon"
	"github.com/penwyp/go-comet/internal/data/protocol"
)

// Recorder appends wire lines to a capture file. It is safe for concurrent
// use and satisfies protocol.LineWriter.
type Recorder struct {
	mu    sync.Mutex
	file  *os.File
	lines int
}

// NewRecorder opens path for appending, creating parent directories.
func NewRecorder(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create capture directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture %s: %w", path, err)
	}
	return &Recorder{file: file}, nil
}

// WriteLine appends one line. The line must not contain a newline.
func (r *Recorder) WriteLine(line []byte) error {
	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return os.ErrClosed
	}
	if _, err := r.file.Write(buf); err != nil {
		return err
	}
	r.lines++
	return nil
}

// Record encodes and appends an event.
func (r *Recorder) Record(event beacon.Event) error {
	line, err := protocol.Encode(event)
	if err != nil {
		return err
	}
	return r.WriteLine(line)
}

// Lines returns how many lines were written.
func (r *Recorder) Lines() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lines
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
