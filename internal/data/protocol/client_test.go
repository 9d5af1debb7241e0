package protocol

import (
	"context"
	"testing"
	"time"

	"github.com/penwyp/go-comet/internal/core/beacon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientReportNeverBlocks(t *testing.T) {
	client := NewClient("", "app", "1")

	for i := range clientBuffer {
		require.True(t, client.Report(beacon.SubscriptionsTracked{Time: epoch, AmountAlive: i}))
	}
	assert.False(t, client.Report(beacon.QuitRequested{Time: epoch}))
	assert.Equal(t, uint64(1), client.Dropped())
	assert.Equal(t, clientBuffer, client.Pending())
}

func TestClientHandshakeAndForward(t *testing.T) {
	server, _, _ := startServer(t, ServerConfig{})

	client := NewClient(server.Addr().String(), "todos", "0.14.0")
	client.Report(beacon.SpanFinished{Time: epoch, Duration: time.Millisecond, Span: beacon.Update{Number: 1}})
	client.Report(beacon.SubscriptionsTracked{Time: epoch, AmountAlive: 2})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)

	hello, ok := receive(t, server).Event.(beacon.Connected)
	require.True(t, ok)
	assert.Equal(t, "todos", hello.Name)
	assert.Equal(t, "0.14.0", hello.Version)

	_, update, ok := beacon.UpdateSpan(receive(t, server).Event)
	require.True(t, ok)
	assert.Equal(t, 1, update.Number)

	assert.Equal(t, beacon.SubscriptionsTracked{Time: epoch, AmountAlive: 2}, receive(t, server).Event)
}

func TestClientRetriesUntilServerAppears(t *testing.T) {
	probe := NewServer(ServerConfig{Address: "127.0.0.1:0"})
	require.NoError(t, probe.Listen())
	addr := probe.Addr().String()
	require.NoError(t, probe.listener.Close())

	client := NewClient(addr, "app", "1")
	client.retry = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	time.Sleep(60 * time.Millisecond)

	server := NewServer(ServerConfig{Address: addr})
	require.NoError(t, server.Listen())
	serverCtx, stop := context.WithCancel(context.Background())
	defer stop()
	go server.Serve(serverCtx)

	_, ok := receive(t, server).Event.(beacon.Connected)
	assert.True(t, ok)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop")
	}
}
