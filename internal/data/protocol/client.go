package protocol

import (
	"bufio"
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/penwyp/go-comet/internal/core/beacon"
	"github.com/penwyp/go-comet/internal/util"
)

const (
	clientBuffer = 1000
	retryDelay   = time.Second
)

// Client reports events of an application to an inspector. Reporting never
// blocks: when the buffer is full the event is dropped.
type Client struct {
	address string
	name    string
	version string
	retry   time.Duration
	events  chan beacon.Event
	dropped atomic.Uint64
	log     util.LoggerInterface
}

// NewClient creates a client identifying itself as name and version.
func NewClient(address, name, version string) *Client {
	if address == "" {
		address = DefaultAddress
	}
	return &Client{
		address: address,
		name:    name,
		version: version,
		retry:   retryDelay,
		events:  make(chan beacon.Event, clientBuffer),
		log:     util.Named("client"),
	}
}

// Report queues an event, returning false if it was dropped.
func (c *Client) Report(event beacon.Event) bool {
	select {
	case c.events <- event:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// Dropped returns how many events were dropped so far.
func (c *Client) Dropped() uint64 {
	return c.dropped.Load()
}

// Pending returns how many events wait to be sent.
func (c *Client) Pending() int {
	return len(c.events)
}

// Run connects to the inspector and forwards queued events until ctx is done,
// reconnecting after failures.
func (c *Client) Run(ctx context.Context) error {
	var dialer net.Dialer
	var pending beacon.Event

	for {
		conn, err := dialer.DialContext(ctx, "tcp", c.address)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Debug("connect failed", util.F("addr", c.address), util.F("error", err))
			if !c.wait(ctx) {
				return nil
			}
			continue
		}

		c.log.Info("connected", util.F("addr", c.address))
		pending, err = c.forward(ctx, conn, pending)
		conn.Close()

		if ctx.Err() != nil {
			return nil
		}
		c.log.Warn("connection lost", util.F("error", err))
		if !c.wait(ctx) {
			return nil
		}
	}
}

// forward sends the handshake then queued events. It returns the event that
// could not be written, if any, so it is retried on the next connection.
func (c *Client) forward(ctx context.Context, conn net.Conn, pending beacon.Event) (beacon.Event, error) {
	writer := bufio.NewWriter(conn)

	hello := beacon.Connected{Time: time.Now(), Name: c.name, Version: c.version}
	if err := c.send(writer, hello); err != nil {
		return pending, err
	}
	if pending != nil {
		if err := c.send(writer, pending); err != nil {
			return pending, err
		}
	}
	if err := writer.Flush(); err != nil {
		return pending, err
	}

	for {
		select {
		case <-ctx.Done():
			return nil, writer.Flush()
		case event := <-c.events:
			if err := c.send(writer, event); err != nil {
				return event, err
			}
			// Batch whatever is already queued before flushing.
			for drained := false; !drained; {
				select {
				case next := <-c.events:
					if err := c.send(writer, next); err != nil {
						return next, err
					}
				default:
					drained = true
				}
			}
			if err := writer.Flush(); err != nil {
				return nil, err
			}
		}
	}
}

// send writes one event. Events that cannot be encoded are dropped.
func (c *Client) send(w *bufio.Writer, event beacon.Event) error {
	line, err := Encode(event)
	if err != nil {
		c.dropped.Add(1)
		c.log.Warn("drop unencodable event", util.F("type", beacon.Name(event)), util.F("error", err))
		return nil
	}
	if _, err := w.Write(line); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

func (c *Client) wait(ctx context.Context) bool {
	timer := time.NewTimer(c.retry)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
