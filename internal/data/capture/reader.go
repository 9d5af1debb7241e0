package capture

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/penwyp/go-comet/internal/core/beacon"
	"github.com/penwyp/go-comet/internal/data/protocol"
	"github.com/penwyp/go-comet/internal/util"
)

// Capture is the decoded content of a capture file.
type Capture struct {
	Events  []beacon.Event
	Lines   int
	Skipped int
}

// ReadFile decodes every event in the capture at path. Lines that do not
// decode are skipped.
func ReadFile(path string) (*Capture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture: %w", err)
	}
	defer file.Close()

	capture, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture %s: %w", path, err)
	}
	util.LogDebugf("Read capture %s: %d events, %d skipped", path, len(capture.Events), capture.Skipped)
	return capture, nil
}

// Read decodes a capture stream.
func Read(r io.Reader) (*Capture, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), protocol.MaxLineSize)

	capture := &Capture{}
	for scanner.Scan() {
		capture.Lines++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		event, err := protocol.Decode(line)
		if err != nil {
			util.LogDebugf("Skip invalid capture line %d - %v", capture.Lines, err)
			capture.Skipped++
			continue
		}
		capture.Events = append(capture.Events, event)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return capture, nil
}
