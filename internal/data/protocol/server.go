package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/penwyp/go-comet/internal/core/beacon"
	"github.com/penwyp/go-comet/internal/metrics"
	"github.com/penwyp/go-comet/internal/util"
)

// ErrAlreadyRunning is returned when another inspector owns the address.
var ErrAlreadyRunning = errors.New("another inspector is already listening")

// Message is an event received from a connection.
type Message struct {
	Session string
	Event   beacon.Event
}

// LineWriter receives every raw line read from a connection.
type LineWriter interface {
	WriteLine(line []byte) error
}

// ServerConfig configures a Server.
type ServerConfig struct {
	Address string
	Buffer  int        // capacity of the message channel
	Tee     LineWriter // optional
	Now     func() time.Time
}

// Server accepts application connections one at a time and forwards their
// events in arrival order.
type Server struct {
	config   ServerConfig
	listener net.Listener
	messages chan Message
	log      util.LoggerInterface

	mu     sync.Mutex
	active net.Conn
}

// NewServer creates a server. Call Listen before Serve.
func NewServer(config ServerConfig) *Server {
	if config.Address == "" {
		config.Address = DefaultAddress
	}
	if config.Buffer <= 0 {
		config.Buffer = 1000
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Server{
		config:   config,
		messages: make(chan Message, config.Buffer),
		log:      util.Named("server"),
	}
}

// Listen binds the configured address.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("%w on %s", ErrAlreadyRunning, s.config.Address)
		}
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address, err)
	}
	s.listener = listener
	s.log.Info("listening", util.F("addr", listener.Addr().String()))
	return nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Messages returns the channel events are delivered on. It is closed when
// Serve returns.
func (s *Server) Messages() <-chan Message {
	return s.messages
}

// Serve accepts connections until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			close(s.messages)
			return err
		}
	}
	defer close(s.messages)

	stop := context.AfterFunc(ctx, func() {
		s.listener.Close()
		s.mu.Lock()
		if s.active != nil {
			s.active.Close()
		}
		s.mu.Unlock()
	})
	defer stop()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		s.mu.Lock()
		s.active = conn
		s.mu.Unlock()
		if ctx.Err() != nil {
			conn.Close()
		}

		s.handle(ctx, conn)

		s.mu.Lock()
		s.active = nil
		s.mu.Unlock()

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	session := uuid.NewString()
	log := s.log.With(util.F("session", session))
	log.Info("connection accepted", util.F("remote", conn.RemoteAddr().String()))
	metrics.ConnectionsTotal.Inc()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	lines := 0
	for scanner.Scan() {
		lines++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if s.config.Tee != nil {
			if err := s.config.Tee.WriteLine(line); err != nil {
				log.Warn("failed to record line", util.F("error", err))
			}
		}

		event, err := Decode(line)
		if err != nil {
			metrics.DecodeErrors.Inc()
			log.Warn("skip undecodable message", util.F("line", lines), util.F("error", err))
			continue
		}

		if !s.deliver(ctx, Message{Session: session, Event: event}) {
			return
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		log.Warn("connection read failed", util.F("error", err))
	}
	log.Info("connection closed", util.F("lines", lines))

	s.deliver(ctx, Message{Session: session, Event: beacon.Disconnected{Time: s.config.Now()}})
}

func (s *Server) deliver(ctx context.Context, message Message) bool {
	select {
	case s.messages <- message:
		return true
	case <-ctx.Done():
		return false
	}
}
