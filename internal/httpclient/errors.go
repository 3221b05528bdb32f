package httpclient

import "fmt"

// UnsupportedSchemeError reports a URL whose scheme is neither http nor https.
type UnsupportedSchemeError struct {
	Scheme string
}

func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("unsupported url scheme: %s", e.Scheme)
}

// ConnError reports a failure to establish or use a TCP connection.
type ConnError struct {
	Addr string
	Err  error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Addr, e.Err)
}

func (e *ConnError) Unwrap() error { return e.Err }

// TLSError reports a failed TLS handshake or certificate verification.
type TLSError struct {
	Host string
	Err  error
}

func (e *TLSError) Error() string {
	return fmt.Sprintf("tls handshake with %s failed: %v", e.Host, e.Err)
}

func (e *TLSError) Unwrap() error { return e.Err }

// TimeoutError reports that a connect, read or write exceeded the
// per-operation budget.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out: %v", e.Op, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// MalformedResponseError reports a response that violates the HTTP/1.1
// wire format.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %s", e.Reason)
}

// TruncatedResponseError reports a connection closed before a declared
// body length was delivered.
type TruncatedResponseError struct {
	Want int
	Got  int
}

func (e *TruncatedResponseError) Error() string {
	return fmt.Sprintf("truncated response body: want %d bytes, got %d", e.Want, e.Got)
}

// TooManyRedirectsError reports that the redirect budget was exhausted.
type TooManyRedirectsError struct {
	Limit int
	URL   string
}

func (e *TooManyRedirectsError) Error() string {
	return fmt.Sprintf("stopped after %d redirects (last url: %s)", e.Limit, e.URL)
}
