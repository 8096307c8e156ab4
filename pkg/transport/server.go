package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smartcfg/smartcfg-go/pkg/discovery"
	"github.com/smartcfg/smartcfg-go/pkg/log"
)

// ServerConfig configures a LAN intake server.
type ServerConfig struct {
	// Address to listen on (e.g., ":5050" or "127.0.0.1:0").
	Address string

	// MaxMessageSize is the maximum frame size (default: MaxPayloadSize).
	MaxMessageSize uint32

	// EventBuffer is the capacity of the event channel.
	EventBuffer int

	// IdleTimeout closes a client that sends nothing for this long.
	// Zero disables the deadline.
	IdleTimeout time.Duration

	// Advertiser announces the intake service (optional).
	Advertiser discovery.Advertiser

	// Intake is the advertised service info. Port is filled from the
	// listener when zero.
	Intake discovery.IntakeInfo

	// Logger for operational messages (optional).
	Logger *slog.Logger

	// Trace receives link events (optional).
	Trace log.Logger
}

// Server is a Link that accepts one TCP client at a time. Each
// length-prefixed frame is one write.
type Server struct {
	config   ServerConfig
	hub      *hub
	listener net.Listener

	// Active connection
	active   net.Conn
	activeMu sync.Mutex

	advertising atomic.Bool
	rejected    atomic.Uint64

	// State
	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewServer creates a new LAN intake server.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Address == "" {
		config.Address = fmt.Sprintf(":%d", discovery.DefaultPort)
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}
	if config.MaxMessageSize > MaxPayloadSize {
		return nil, fmt.Errorf("max message size %d exceeds %d", config.MaxMessageSize, MaxPayloadSize)
	}

	return &Server{
		config: config,
		hub:    newHub(config.EventBuffer, config.Trace),
	}, nil
}

// Start starts the server and begins accepting connections.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return fmt.Errorf("server already running")
	}
	if s.hub.isClosed() {
		return ErrLinkClosed
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		s.cancel()
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener

	s.running.Store(true)

	s.wg.Add(1)
	go s.acceptLoop()

	s.logInfo("intake server listening", "addr", listener.Addr().String())
	return nil
}

// Stop stops the server, closes the client connection and closes the event
// channel. Events pending at shutdown are dropped.
func (s *Server) Stop() error {
	if !s.running.Load() {
		s.hub.close()
		return nil
	}

	_ = s.StopAdvertising()

	s.running.Store(false)
	s.cancel()
	s.hub.close()

	if s.listener != nil {
		s.listener.Close()
	}

	s.activeMu.Lock()
	if s.active != nil {
		s.active.Close()
	}
	s.activeMu.Unlock()

	s.wg.Wait()

	return nil
}

// Addr returns the server's listen address.
func (s *Server) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// Attached reports whether a client is connected.
func (s *Server) Attached() bool {
	_, ok := s.hub.attached()
	return ok
}

// Rejected returns the number of connections refused because a client was
// already attached.
func (s *Server) Rejected() uint64 {
	return s.rejected.Load()
}

// Events returns the link event channel.
func (s *Server) Events() <-chan Event {
	return s.hub.events
}

// LatestPayload returns a copy of the most recent frame.
func (s *Server) LatestPayload() []byte {
	return s.hub.latest()
}

// StartAdvertising announces the intake service through the configured
// advertiser. Without an advertiser only the flag is set.
func (s *Server) StartAdvertising(ctx context.Context) error {
	if s.config.Advertiser != nil {
		info := s.config.Intake
		if info.Port == 0 {
			info.Port = s.listenPort()
		}
		if err := s.config.Advertiser.AdvertiseIntake(ctx, &info); err != nil {
			return fmt.Errorf("advertise intake: %w", err)
		}
	}
	s.advertising.Store(true)
	return nil
}

// StopAdvertising withdraws the intake service.
func (s *Server) StopAdvertising() error {
	if !s.advertising.Swap(false) {
		return nil
	}
	if s.config.Advertiser != nil {
		return s.config.Advertiser.StopIntake()
	}
	return nil
}

// Advertising reports whether the intake service is announced.
func (s *Server) Advertising() bool {
	return s.advertising.Load()
}

func (s *Server) listenPort() uint16 {
	if s.listener == nil {
		return 0
	}
	_, portStr, err := net.SplitHostPort(s.listener.Addr().String())
	if err != nil {
		return 0
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return 0
	}
	return uint16(port)
}

// acceptLoop accepts incoming connections.
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for s.running.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.running.Load() {
				s.logWarn("accept error", "error", err)
			}
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection processes a single connection.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()

	remote := conn.RemoteAddr().String()

	s.activeMu.Lock()
	if s.active != nil || !s.running.Load() {
		s.activeMu.Unlock()
		s.rejected.Add(1)
		conn.Close()
		s.logWarn("client rejected, another client is attached", "remote", remote)
		return
	}
	s.active = conn
	s.activeMu.Unlock()

	defer func() {
		s.activeMu.Lock()
		s.active = nil
		s.activeMu.Unlock()
	}()

	session, err := s.hub.attach(remote)
	if err != nil {
		conn.Close()
		return
	}
	s.logInfo("client attached", "session", session, "remote", remote)

	err = s.readLoop(conn, session)
	conn.Close()

	_ = s.hub.detach(session)
	if err != nil && s.running.Load() {
		s.logWarn("client detached", "session", session, "error", err)
	} else {
		s.logInfo("client detached", "session", session)
	}
}

// readLoop reads frames until the connection ends. A clean close returns nil.
func (s *Server) readLoop(conn net.Conn, session string) error {
	reader := NewFrameReader(conn, s.config.MaxMessageSize)

	for {
		select {
		case <-s.ctx.Done():
			return nil
		default:
		}

		if s.config.IdleTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.config.IdleTimeout))
		}

		data, err := reader.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		if err := s.hub.write(session, data); err != nil {
			return err
		}
	}
}

func (s *Server) logInfo(msg string, args ...any) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, args...)
	}
}

func (s *Server) logWarn(msg string, args ...any) {
	if s.config.Logger != nil {
		s.config.Logger.Warn(msg, args...)
	}
}

// Ensure Server implements Link.
var _ Link = (*Server)(nil)
