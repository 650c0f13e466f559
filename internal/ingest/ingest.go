// Package ingest implements the three wire-protocol producers (UDP,
// TCP, BEEP-stub) that feed ParsedEvents into the bounded queue the
// accumulator supervisor drains: one listener per protocol, all three
// sharing a single outgoing channel.
package ingest

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/brask/logshrink/internal/logshrink"
	"github.com/brask/logshrink/internal/syslogparse"
)

// QueueCapacity is the fixed size of the bounded ParsedEvent queue
// shared by all producers.
const QueueCapacity = 100

// ErrQueueFull is returned by TrySend when the queue has no room and
// the caller asked not to block.
var ErrQueueFull = errors.New("ingest: queue full")

// Queue is the bounded channel of ParsedEvents produced by the
// listeners below and drained by the accumulator supervisor. UDP
// drops a message when the queue is full; TCP blocks the connection's
// reader goroutine until there is room.
type Queue struct {
	ch chan logshrink.ParsedEvent
}

// NewQueue allocates a Queue with the fixed capacity.
func NewQueue() *Queue {
	return &Queue{ch: make(chan logshrink.ParsedEvent, QueueCapacity)}
}

// C exposes the receive side for the supervisor.
func (q *Queue) C() <-chan logshrink.ParsedEvent {
	return q.ch
}

// Send blocks until the event is queued or ctx is cancelled.
func (q *Queue) Send(ctx context.Context, event logshrink.ParsedEvent) error {
	select {
	case q.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend enqueues event without blocking, returning ErrQueueFull if
// there is no room.
func (q *Queue) TrySend(event logshrink.ParsedEvent) error {
	select {
	case q.ch <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Server runs the UDP, TCP and BEEP-stub listeners concurrently.
type Server struct {
	UDPAddr  string
	TCPAddr  string
	BEEPAddr string
	Queue    *Queue
	Logger   *slog.Logger
}

// Run starts all three listeners and blocks until ctx is cancelled or
// one of them returns a fatal error, at which point the others are
// torn down too.
func (s *Server) Run(ctx context.Context) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.runUDP(gctx, logger) })
	g.Go(func() error { return s.runTCP(gctx, logger) })
	g.Go(func() error { return s.runBEEP(gctx, logger) })
	return g.Wait()
}

func (s *Server) runUDP(ctx context.Context, logger *slog.Logger) error {
	addr, err := net.ResolveUDPAddr("udp", s.UDPAddr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	logger.Info("udp listener started", "addr", s.UDPAddr)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, 65535)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		event, err := syslogparse.Parse(string(buf[:n]))
		if err != nil {
			logger.Debug("udp: dropping unparseable datagram", "err", err)
			continue
		}
		// UDP never blocks the receive loop behind a full queue: a
		// dropped datagram is cheaper than a stalled listener.
		if err := s.Queue.TrySend(event); err != nil {
			logger.Warn("udp: queue full, dropping message")
		}
	}
}

func (s *Server) runTCP(ctx context.Context, logger *slog.Logger) error {
	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", s.TCPAddr)
	if err != nil {
		return err
	}
	defer listener.Close()
	logger.Info("tcp listener started", "addr", s.TCPAddr)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.handleTCPConn(ctx, conn, logger)
	}
}

// handleTCPConn detects octet-counting vs. non-transparent
// (LF-terminated) framing per message: the first byte tells you which
// framing follows.
func (s *Server) handleTCPConn(ctx context.Context, conn net.Conn, logger *slog.Logger) {
	defer conn.Close()
	reader := bufio.NewReader(conn)

	for {
		first, err := reader.ReadByte()
		if err != nil {
			return
		}

		var line []byte
		switch {
		case first >= '0' && first <= '9':
			line, err = readOctetCounted(reader, first)
			if err != nil {
				return
			}
		case first == '<':
			rest, err := reader.ReadBytes('\n')
			if err != nil && len(rest) == 0 {
				return
			}
			line = append([]byte{first}, rest...)
		case first == '\n' || first == '\r':
			continue
		default:
			// Junk byte: consume to end of line and move on.
			reader.ReadBytes('\n')
			continue
		}

		event, err := syslogparse.Parse(string(line))
		if err != nil {
			logger.Debug("tcp: dropping unparseable message", "err", err)
			continue
		}
		if err := s.Queue.Send(ctx, event); err != nil {
			return
		}
	}
}

// readOctetCounted reads an RFC 6587 octet-counted frame: an ASCII
// decimal length, a single space, then exactly that many message
// bytes.
func readOctetCounted(reader *bufio.Reader, firstDigit byte) ([]byte, error) {
	lenBytes := []byte{firstDigit}
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == ' ' {
			break
		}
		lenBytes = append(lenBytes, b)
	}
	n, err := strconv.Atoi(string(lenBytes))
	if err != nil || n < 0 {
		return nil, errors.New("ingest: malformed octet count")
	}
	msg := make([]byte, n)
	if _, err := io.ReadFull(reader, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// runBEEP keeps the BEEP (RFC 3195) port open without implementing
// the protocol: a bound port signals the feature is reserved while the
// transport itself stays unimplemented.
func (s *Server) runBEEP(ctx context.Context, logger *slog.Logger) error {
	if s.BEEPAddr == "" {
		return nil
	}
	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", s.BEEPAddr)
	if err != nil {
		return err
	}
	defer listener.Close()
	logger.Info("beep listener started (stub, RFC 3195 not implemented)", "addr", s.BEEPAddr)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		conn.Close()
	}
}
