package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeAndShutdown(t *testing.T) {
	t.Parallel()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(DefaultServerConfig(), testLogger(), quartz.NewReal())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	baseURL := "http://" + ln.Addr().String()
	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	require.NoError(t, WaitForHealthy(waitCtx, baseURL))

	resp, err := http.Get(baseURL + "/api/matches")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunFailsOnBadAddress(t *testing.T) {
	t.Parallel()
	cfg := DefaultServerConfig()
	cfg.Server.Port = -1

	srv := NewServer(cfg, testLogger(), quartz.NewReal())
	err := srv.Run(context.Background())
	assert.Error(t, err)
}
