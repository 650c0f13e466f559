package ingest

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brask/logshrink/internal/logshrink"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()
	return addr
}

func TestQueueTrySendFullReturnsErrQueueFull(t *testing.T) {
	q := &Queue{ch: make(chan logshrink.ParsedEvent, 1)}
	require.NoError(t, q.TrySend(logshrink.ParsedEvent{Message: "a"}))
	assert.ErrorIs(t, q.TrySend(logshrink.ParsedEvent{Message: "b"}), ErrQueueFull)
}

func TestUDPListenerDeliversParsedEvent(t *testing.T) {
	udpAddr := freeAddr(t)
	tcpAddr := freeAddr(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &Server{UDPAddr: udpAddr, TCPAddr: tcpAddr, Queue: NewQueue()}
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	// Give the listeners a moment to bind.
	time.Sleep(50 * time.Millisecond)

	conn, err := net.Dial("udp", udpAddr)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("<34>Oct 11 22:14:15 mymachine su: failed login"))
	require.NoError(t, err)

	select {
	case event := <-srv.Queue.C():
		require.NotNil(t, event.Hostname)
		assert.Equal(t, "mymachine", *event.Hostname)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for udp event")
	}

	cancel()
	<-done
}

func TestTCPListenerDeliversNonTransparentFramedEvent(t *testing.T) {
	udpAddr := freeAddr(t)
	tcpAddr := freeAddr(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &Server{UDPAddr: udpAddr, TCPAddr: tcpAddr, Queue: NewQueue()}
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)

	conn, err := net.Dial("tcp", tcpAddr)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("<13>1 2024-01-01T00:00:00Z host app - - - boot complete\n"))
	require.NoError(t, err)

	select {
	case event := <-srv.Queue.C():
		assert.Equal(t, "boot complete", event.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tcp event")
	}

	cancel()
	<-done
}
