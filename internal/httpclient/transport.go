package httpclient

import (
	"bufio"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"strings"
	"time"
)

// DefaultTimeout bounds every blocking transport operation (connect,
// read, write) unless the caller configures its own budget.
const DefaultTimeout = 10 * time.Second

// Conn is one TCP (optionally TLS) connection carrying a single HTTP
// exchange. Connections are never reused; the client closes them after the
// response is consumed or on the first error.
type Conn struct {
	netConn net.Conn
	br      *bufio.Reader
	timeout time.Duration
	closed  bool
}

// Dial opens a connection to the endpoint, upgrading to TLS when the
// endpoint is secure. The peer certificate is verified against the
// endpoint host using the system trust store.
func Dial(ep Endpoint, timeout time.Duration) (*Conn, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	netConn, err := net.DialTimeout("tcp", ep.Addr(), timeout)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Op: "connect", Err: err}
		}
		return nil, &ConnError{Addr: ep.Addr(), Err: err}
	}

	if ep.Secure {
		tlsConn := tls.Client(netConn, &tls.Config{ServerName: ep.Host})
		if err := tlsConn.SetDeadline(time.Now().Add(timeout)); err != nil {
			netConn.Close()
			return nil, &ConnError{Addr: ep.Addr(), Err: err}
		}
		if err := tlsConn.Handshake(); err != nil {
			netConn.Close()
			if isTimeout(err) {
				return nil, &TimeoutError{Op: "tls handshake", Err: err}
			}
			return nil, &TLSError{Host: ep.Host, Err: err}
		}
		if err := tlsConn.SetDeadline(time.Time{}); err != nil {
			tlsConn.Close()
			return nil, &ConnError{Addr: ep.Addr(), Err: err}
		}
		netConn = tlsConn
	}

	return &Conn{
		netConn: netConn,
		br:      bufio.NewReader(netConn),
		timeout: timeout,
	}, nil
}

// Write sends the full buffer, failing on any short write.
func (c *Conn) Write(p []byte) error {
	if err := c.netConn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return &ConnError{Addr: c.netConn.RemoteAddr().String(), Err: err}
	}
	n, err := c.netConn.Write(p)
	if err != nil {
		if isTimeout(err) {
			return &TimeoutError{Op: "write", Err: err}
		}
		return &ConnError{Addr: c.netConn.RemoteAddr().String(), Err: err}
	}
	if n < len(p) {
		return &ConnError{Addr: c.netConn.RemoteAddr().String(), Err: io.ErrShortWrite}
	}
	return nil
}

// ReadLine reads one CRLF-terminated line and returns it without the
// terminator. A bare LF terminator is tolerated.
func (c *Conn) ReadLine() (string, error) {
	if err := c.armReadDeadline(); err != nil {
		return "", err
	}
	line, err := c.br.ReadString('\n')
	if err != nil {
		return "", c.wrapRead(err)
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

// ReadFull fills buf completely, returning how many bytes were read.
func (c *Conn) ReadFull(buf []byte) (int, error) {
	if err := c.armReadDeadline(); err != nil {
		return 0, err
	}
	n, err := io.ReadFull(c.br, buf)
	if err != nil {
		return n, c.wrapRead(err)
	}
	return n, nil
}

// ReadAll reads until the peer closes the connection. Close-by-peer is the
// success condition, not an error.
func (c *Conn) ReadAll() ([]byte, error) {
	if err := c.armReadDeadline(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(c.br)
	if err != nil {
		return data, c.wrapRead(err)
	}
	return data, nil
}

// Close shuts the connection down. Safe to call more than once.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.netConn.Close()
}

func (c *Conn) armReadDeadline() error {
	if err := c.netConn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return &ConnError{Addr: c.netConn.RemoteAddr().String(), Err: err}
	}
	return nil
}

// wrapRead maps raw read failures onto the transport taxonomy. EOF-style
// errors pass through untouched so the decoder can judge them by state.
func (c *Conn) wrapRead(err error) error {
	if isTimeout(err) {
		return &TimeoutError{Op: "read", Err: err}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	return &ConnError{Addr: c.netConn.RemoteAddr().String(), Err: err}
}

func isTimeout(err error) bool {
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
