package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewHTTPServerSetsReadHeaderTimeout(t *testing.T) {
	cfg := defaultFileConfig()
	srv := newHTTPServer(cfg, http.NotFoundHandler())
	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)

	cfg.HTTP.ReadHeaderTimeout = 2 * time.Second
	assert.Equal(t, 2*time.Second, newHTTPServer(cfg, http.NotFoundHandler()).ReadHeaderTimeout)

	cfg.HTTP.ReadHeaderTimeout = 0
	assert.Equal(t, 5*time.Second, newHTTPServer(cfg, http.NotFoundHandler()).ReadHeaderTimeout)
}
