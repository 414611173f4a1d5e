// Package http configures outbound HTTP clients.
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient creates an HTTP client for external API calls with separate
// connect and whole-request budgets.
//
// Settings:
//   - Dialer.Timeout: TCP connect timeout (the caller's connect budget)
//   - Client.Timeout: whole-request timeout including reading the body
//   - MaxIdleConns / IdleConnTimeout: keep a pool of reusable connections
//
// Note: http.DefaultClient has no timeout; always use a custom client.
func NewHTTPClient(connectTimeout, readTimeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: readTimeout, Transport: t}
}
