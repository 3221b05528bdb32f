package httpclient

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Response is a fully decoded HTTP/1.1 response.
type Response struct {
	StatusCode int
	Reason     string
	Header     Header
	Body       []byte
}

// wire is the read surface the decoder consumes. *Conn implements it;
// tests feed the decoder from in-memory buffers.
type wire interface {
	ReadLine() (string, error)
	ReadFull(buf []byte) (int, error)
	ReadAll() ([]byte, error)
}

// EncodeRequest serializes a request: request line, header fields in
// insertion order, blank line, then the body verbatim. When a body is
// present and the caller set no Content-Length, one is computed and
// inserted.
func EncodeRequest(method, target string, header Header, body []byte) []byte {
	h := header.Clone()
	if len(body) > 0 && !h.Has("Content-Length") {
		h.Add("Content-Length", strconv.Itoa(len(body)))
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s HTTP/1.1\r\n", method, target)
	for _, f := range h.Fields() {
		fmt.Fprintf(&buf, "%s: %s\r\n", f.Name, f.Value)
	}
	buf.WriteString("\r\n")
	buf.Write(body)
	return buf.Bytes()
}

// DecodeResponse reads one complete response from w. The request method is
// needed to recognize bodiless responses (HEAD). It runs the decode as a
// strict sequence: status line, header block, then exactly one of the four
// body framings.
func DecodeResponse(w wire, method string) (*Response, error) {
	resp := &Response{}

	if err := decodeStatusLine(w, resp); err != nil {
		return nil, err
	}
	if err := decodeHeaders(w, resp); err != nil {
		return nil, err
	}

	switch {
	case isChunked(resp.Header):
		body, err := decodeChunkedBody(w)
		if err != nil {
			return nil, err
		}
		resp.Body = body

	case bodiless(method, resp.StatusCode):
		resp.Body = nil

	case resp.Header.Has("Content-Length"):
		n, err := contentLength(resp.Header)
		if err != nil {
			return nil, err
		}
		body, err := decodeFixedBody(w, n)
		if err != nil {
			return nil, err
		}
		resp.Body = body

	default:
		body, err := w.ReadAll()
		if err != nil && !isEOF(err) {
			return nil, err
		}
		resp.Body = body
	}

	return resp, nil
}

func decodeStatusLine(w wire, resp *Response) error {
	line, err := w.ReadLine()
	if err != nil {
		if isEOF(err) {
			return &MalformedResponseError{Reason: "connection closed before status line"}
		}
		return err
	}

	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 || !strings.HasPrefix(parts[0], "HTTP/") {
		return &MalformedResponseError{Reason: fmt.Sprintf("bad status line %q", line)}
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 3 || code < 100 {
		return &MalformedResponseError{Reason: fmt.Sprintf("bad status code %q", parts[1])}
	}

	resp.StatusCode = code
	if len(parts) == 3 {
		resp.Reason = parts[2]
	}
	return nil
}

func decodeHeaders(w wire, resp *Response) error {
	for {
		line, err := w.ReadLine()
		if err != nil {
			if isEOF(err) {
				return &MalformedResponseError{Reason: "connection closed inside header block"}
			}
			return err
		}
		if line == "" {
			return nil
		}

		idx := strings.Index(line, ":")
		if idx <= 0 {
			return &MalformedResponseError{Reason: fmt.Sprintf("bad header line %q", line)}
		}
		name := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		resp.Header.Add(name, value)
	}
}

// isChunked reports whether the canonical Transfer-Encoding declares
// chunked framing. Only the first Transfer-Encoding field is canonical for
// framing decisions.
func isChunked(h Header) bool {
	return strings.Contains(strings.ToLower(h.Get("Transfer-Encoding")), "chunked")
}

// bodiless reports method/status pairings that carry no body regardless of
// any length headers: HEAD responses, 1xx, 204 and 304.
func bodiless(method string, status int) bool {
	if strings.EqualFold(method, "HEAD") {
		return true
	}
	return status < 200 || status == 204 || status == 304
}

func contentLength(h Header) (int, error) {
	raw := h.Get("Content-Length")
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, &MalformedResponseError{Reason: fmt.Sprintf("bad content-length %q", raw)}
	}
	return n, nil
}

func decodeFixedBody(w wire, n int) ([]byte, error) {
	body := make([]byte, n)
	got, err := w.ReadFull(body)
	if err != nil {
		if isEOF(err) {
			return nil, &TruncatedResponseError{Want: n, Got: got}
		}
		return nil, err
	}
	return body, nil
}

func decodeChunkedBody(w wire) ([]byte, error) {
	var body bytes.Buffer
	for {
		line, err := w.ReadLine()
		if err != nil {
			if isEOF(err) {
				return nil, &TruncatedResponseError{Want: -1, Got: body.Len()}
			}
			return nil, err
		}

		// Chunk extensions after ";" are ignored.
		sizeField := strings.TrimSpace(line)
		if i := strings.IndexByte(sizeField, ';'); i >= 0 {
			sizeField = strings.TrimSpace(sizeField[:i])
		}
		size, err := strconv.ParseUint(sizeField, 16, 31)
		if err != nil {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("bad chunk size %q", line)}
		}

		if size == 0 {
			return body.Bytes(), discardTrailers(w)
		}

		chunk := make([]byte, size)
		got, err := w.ReadFull(chunk)
		if err != nil {
			if isEOF(err) {
				return nil, &TruncatedResponseError{Want: int(size), Got: got}
			}
			return nil, err
		}
		body.Write(chunk)

		// Each chunk is followed by its own CRLF.
		sep, err := w.ReadLine()
		if err != nil {
			if isEOF(err) {
				return nil, &TruncatedResponseError{Want: -1, Got: body.Len()}
			}
			return nil, err
		}
		if sep != "" {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("missing CRLF after chunk, got %q", sep)}
		}
	}
}

// discardTrailers consumes optional trailer headers after the terminal
// zero chunk, up to and including the final blank line.
func discardTrailers(w wire) error {
	for {
		line, err := w.ReadLine()
		if err != nil {
			if isEOF(err) {
				return &TruncatedResponseError{Want: -1, Got: 0}
			}
			return err
		}
		if line == "" {
			return nil
		}
	}
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
