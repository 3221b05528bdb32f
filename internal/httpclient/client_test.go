package httpclient

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

// testServer accepts connections on 127.0.0.1, records every request head
// and answers each connection with the next canned response. The last
// response repeats once the list runs out.
type testServer struct {
	ln        net.Listener
	mu        sync.Mutex
	requests  []string
	responses []string
}

func newTestServer(t *testing.T, responses ...string) *testServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	s := &testServer{ln: ln, responses: responses}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.serve(conn)
		}
	}()
	return s
}

func (s *testServer) serve(conn net.Conn) {
	defer conn.Close()

	br := bufio.NewReader(conn)
	var head strings.Builder
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return
		}
		head.WriteString(line)
		if line == "\r\n" {
			break
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, head.String())
	idx := len(s.requests) - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	response := s.responses[idx]
	s.mu.Unlock()

	io.WriteString(conn, response)
}

func (s *testServer) addr() string {
	return s.ln.Addr().String()
}

func (s *testServer) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *testServer) request(i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[i]
}

func okResponse(body string) string {
	return fmt.Sprintf("HTTP/1.1 200 OK\r\nContent-Length: %d\r\n\r\n%s", len(body), body)
}

func redirectResponse(status int, location string) string {
	return fmt.Sprintf("HTTP/1.1 %d Moved\r\nLocation: %s\r\nContent-Length: 0\r\n\r\n", status, location)
}

func TestFetchSimple(t *testing.T) {
	srv := newTestServer(t, okResponse("hello"))
	client := New(Options{Timeout: 2 * time.Second})

	resp, err := client.Fetch("http://" + srv.addr() + "/index")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if resp.StatusCode != 200 || string(resp.Body) != "hello" {
		t.Errorf("Response mismatch: %d %q", resp.StatusCode, resp.Body)
	}

	head := srv.request(0)
	if !strings.HasPrefix(head, "GET /index HTTP/1.1\r\n") {
		t.Errorf("Request line mismatch: %q", head)
	}
	for _, want := range []string{"Host: ", "User-Agent: ", "Accept: */*", "Connection: close"} {
		if !strings.Contains(head, want) {
			t.Errorf("Request head missing %q:\n%s", want, head)
		}
	}
}

func TestFetchDefaultHeaderOverride(t *testing.T) {
	srv := newTestServer(t, okResponse("ok"))
	client := New(Options{Timeout: 2 * time.Second})

	var h Header
	h.Add("User-Agent", "custom-agent/1.0")
	h.Add("X-Extra", "yes")

	_, err := client.Do(Request{URL: "http://" + srv.addr() + "/", Header: h})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	head := srv.request(0)
	if !strings.Contains(head, "User-Agent: custom-agent/1.0\r\n") {
		t.Errorf("Caller User-Agent not applied:\n%s", head)
	}
	if strings.Count(head, "User-Agent:") != 1 {
		t.Errorf("Default User-Agent not displaced:\n%s", head)
	}
	if !strings.Contains(head, "X-Extra: yes\r\n") {
		t.Errorf("Extra header missing:\n%s", head)
	}
}

func TestFetchFollowsRedirect(t *testing.T) {
	target := newTestServer(t, okResponse("landed"))
	origin := newTestServer(t, redirectResponse(301, "http://"+target.addr()+"/x"))

	client := New(Options{Timeout: 2 * time.Second})
	resp, err := client.Fetch("http://" + origin.addr() + "/start")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if resp.StatusCode != 200 || string(resp.Body) != "landed" {
		t.Errorf("Response mismatch: %d %q", resp.StatusCode, resp.Body)
	}
	if origin.requestCount() != 1 || target.requestCount() != 1 {
		t.Errorf("Expected exactly two underlying requests, got %d + %d",
			origin.requestCount(), target.requestCount())
	}
}

func TestFetchResolvesRelativeLocation(t *testing.T) {
	srv := newTestServer(t,
		redirectResponse(302, "/moved-here"),
		okResponse("relative ok"),
	)

	client := New(Options{Timeout: 2 * time.Second})
	resp, err := client.Fetch("http://" + srv.addr() + "/start")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(resp.Body) != "relative ok" {
		t.Errorf("Body mismatch: %q", resp.Body)
	}
	if !strings.HasPrefix(srv.request(1), "GET /moved-here HTTP/1.1\r\n") {
		t.Errorf("Relative Location not resolved: %q", srv.request(1))
	}
}

func TestRedirectDowngradesToGet(t *testing.T) {
	srv := newTestServer(t,
		redirectResponse(303, "/done"),
		okResponse("ok"),
	)

	client := New(Options{Timeout: 2 * time.Second})
	_, err := client.Do(Request{
		Method: "POST",
		URL:    "http://" + srv.addr() + "/submit",
		Body:   []byte("payload"),
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	follow := srv.request(1)
	if !strings.HasPrefix(follow, "GET /done HTTP/1.1\r\n") {
		t.Errorf("303 should downgrade to GET: %q", follow)
	}
	if strings.Contains(follow, "Content-Length") {
		t.Errorf("Downgraded request should carry no body: %q", follow)
	}
}

func TestTooManyRedirects(t *testing.T) {
	srv := newTestServer(t, redirectResponse(302, "/loop"))

	client := New(Options{Timeout: 2 * time.Second, MaxRedirects: 5})
	_, err := client.Fetch("http://" + srv.addr() + "/loop")

	var redirectErr *TooManyRedirectsError
	if !errors.As(err, &redirectErr) {
		t.Fatalf("Expected TooManyRedirectsError, got %v", err)
	}
	if redirectErr.Limit != 5 {
		t.Errorf("Limit mismatch: %d", redirectErr.Limit)
	}
	// Initial request plus exactly five follows.
	if srv.requestCount() != 6 {
		t.Errorf("Expected 6 requests (1 + 5 follows), got %d", srv.requestCount())
	}
}

func TestErrorStatusIsReturnedNotFailed(t *testing.T) {
	srv := newTestServer(t, "HTTP/1.1 404 Not Found\r\nContent-Length: 9\r\n\r\nnot found")

	client := New(Options{Timeout: 2 * time.Second})
	resp, err := client.Fetch("http://" + srv.addr() + "/missing")
	if err != nil {
		t.Fatalf("4xx must surface as a response, got error: %v", err)
	}
	if resp.StatusCode != 404 || resp.Reason != "Not Found" {
		t.Errorf("Status mismatch: %d %q", resp.StatusCode, resp.Reason)
	}
}

func TestFetchUnsupportedScheme(t *testing.T) {
	client := New(Options{})
	_, err := client.Fetch("ftp://example.com/file")

	var schemeErr *UnsupportedSchemeError
	if !errors.As(err, &schemeErr) {
		t.Fatalf("Expected UnsupportedSchemeError, got %v", err)
	}
}

func TestFetchConnectionRefused(t *testing.T) {
	// Grab a port and close it so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	client := New(Options{Timeout: 2 * time.Second})
	_, err = client.Fetch("http://" + addr + "/")

	var connErr *ConnError
	if !errors.As(err, &connErr) {
		t.Fatalf("Expected ConnError, got %v", err)
	}
}

func TestFetchReadTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			// Accept and stay silent; the client read must time out.
			defer conn.Close()
		}
	}()

	client := New(Options{Timeout: 200 * time.Millisecond})
	_, err = client.Fetch("http://" + ln.Addr().String() + "/")

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Expected TimeoutError, got %v", err)
	}
}
