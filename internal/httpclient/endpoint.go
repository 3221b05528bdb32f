package httpclient

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Endpoint is the resolved connection target of a request.
type Endpoint struct {
	Host   string
	Port   int
	Secure bool
}

// Addr returns the host:port dial address.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// HostHeader returns the Host header value for this endpoint. The port is
// included only when it differs from the scheme default.
func (e Endpoint) HostHeader() string {
	if (e.Secure && e.Port == 443) || (!e.Secure && e.Port == 80) {
		return e.Host
	}
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// ParseURL resolves a URL into an endpoint and the request target (path
// plus raw query) to put on the request line. A missing scheme defaults to
// http; anything other than http/https is rejected.
func ParseURL(rawURL string) (Endpoint, string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.Contains(rawURL, "://") {
		rawURL = "http://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Endpoint{}, "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	var ep Endpoint
	switch strings.ToLower(u.Scheme) {
	case "http":
		ep.Secure = false
		ep.Port = 80
	case "https":
		ep.Secure = true
		ep.Port = 443
	default:
		return Endpoint{}, "", &UnsupportedSchemeError{Scheme: u.Scheme}
	}

	ep.Host = u.Hostname()
	if ep.Host == "" {
		return Endpoint{}, "", fmt.Errorf("invalid url %q: missing host", rawURL)
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return Endpoint{}, "", fmt.Errorf("invalid url %q: bad port %q", rawURL, p)
		}
		ep.Port = port
	}

	target := u.EscapedPath()
	if target == "" {
		target = "/"
	}
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}

	return ep, target, nil
}
