package provider

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestServer serves handler on an IPv4 loopback listener. Some CI
// sandboxes forbid IPv6 listeners, which httptest's default setup can hit.
func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen on loopback: %v", err)
	}

	srv := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	srv.Start()
	t.Cleanup(srv.Close)
	return srv
}
