package capture

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-comet/internal/data/protocol"
	"github.com/penwyp/go-comet/internal/util"
)

// FollowSession is the session id of messages produced by a Follower.
const FollowSession = "capture"

// Follower tails a capture file and emits every event appended to it,
// starting with the existing content.
type Follower struct {
	path     string
	file     *os.File
	reader   *bufio.Reader
	partial  []byte
	line     int
	watcher  *fsnotify.Watcher
	messages chan protocol.Message
	log      util.LoggerInterface
}

// NewFollower opens path and starts watching its directory.
func NewFollower(path string) (*Follower, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture: %w", err)
	}
	// fsnotify reports resolved paths.
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		file.Close()
		return nil, err
	}
	// Editors and log rotation replace files, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		file.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	return &Follower{
		path:     path,
		file:     file,
		reader:   bufio.NewReader(file),
		watcher:  watcher,
		messages: make(chan protocol.Message, 100),
		log:      util.Named("follower").With(util.F("path", path)),
	}, nil
}

// Messages returns the channel events are delivered on. It is closed when Run
// returns.
func (f *Follower) Messages() <-chan protocol.Message {
	return f.messages
}

// Run emits the existing content, then appended lines, until ctx is done.
func (f *Follower) Run(ctx context.Context) error {
	defer close(f.messages)
	defer f.watcher.Close()
	defer f.file.Close()

	if err := f.drain(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-f.watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != f.path {
				continue
			}
			switch {
			case event.Has(fsnotify.Write):
				if err := f.drain(ctx); err != nil {
					return err
				}
			case event.Has(fsnotify.Create):
				if err := f.reopen(); err != nil {
					return err
				}
				if err := f.drain(ctx); err != nil {
					return err
				}
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				f.log.Warn("capture moved away, waiting for it to reappear")
			}

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return nil
			}
			f.log.Error("watch error", util.F("error", err))
		}
	}
}

func (f *Follower) reopen() error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("failed to reopen capture: %w", err)
	}
	f.file.Close()
	f.file = file
	f.reader.Reset(file)
	f.partial = nil
	f.line = 0
	return nil
}

// drain emits every complete line past the read offset.
func (f *Follower) drain(ctx context.Context) error {
	for {
		chunk, err := f.reader.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			f.partial = append(f.partial, chunk...)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read capture: %w", err)
		}

		line := chunk
		if len(f.partial) > 0 {
			line = append(f.partial, chunk...)
			f.partial = nil
		}
		f.line++

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		event, err := protocol.Decode(line)
		if err != nil {
			f.log.Debug("skip invalid capture line", util.F("line", f.line), util.F("error", err))
			continue
		}

		select {
		case f.messages <- protocol.Message{Session: FollowSession, Event: event}:
		case <-ctx.Done():
			return nil
		}
	}
}
