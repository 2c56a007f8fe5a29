// Package httpc provides shared HTTP clients with sensible defaults.
// Use these instead of http.DefaultClient to ensure timeouts are set.
package httpc

import (
	"net"
	"net/http"
	"time"
)

// Default timeouts for HTTP operations.
const (
	DefaultTimeout         = 30 * time.Second
	DefaultConnectTimeout  = 10 * time.Second
	DefaultKeepAlive       = 30 * time.Second
	DefaultIdleConnTimeout = 90 * time.Second

	// LocalTimeout bounds requests against the game's localhost API.
	// The game answers in single-digit milliseconds when it is running;
	// anything slower means it is not there.
	LocalTimeout = 2 * time.Second

	// ProbeTimeout bounds the lightweight reachability check.
	ProbeTimeout = 500 * time.Millisecond
)

// Client is a shared HTTP client with production-ready defaults,
// used for networked services such as online speech synthesis.
var Client = NewClient(DefaultTimeout)

// Local is a shared client for the game's localhost HTTP API.
// Connections are kept alive between polls.
var Local = NewClient(LocalTimeout)

// NewClient creates a new HTTP client with the specified timeout.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DefaultConnectTimeout,
				KeepAlive: DefaultKeepAlive,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       DefaultIdleConnTimeout,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// Get performs an HTTP GET with the shared client.
func Get(url string) (*http.Response, error) {
	return Client.Get(url)
}

// Do performs an HTTP request with the shared client.
func Do(req *http.Request) (*http.Response, error) {
	return Client.Do(req)
}
