package httpclient

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"go2web/internal/logger"
)

// DefaultMaxRedirects caps how many Location hops one fetch may follow.
const DefaultMaxRedirects = 5

// DefaultUserAgent mimics a desktop browser; several search providers
// refuse or degrade responses for unknown agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Request is one logical fetch. Method defaults to GET, Header entries
// override the client defaults, and Body is sent verbatim.
type Request struct {
	Method string
	URL    string
	Header Header
	Body   []byte
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	Timeout        time.Duration
	MaxRedirects   int
	UserAgent      string
	AcceptLanguage string
}

// Client issues HTTP/1.1 requests over raw connections, one connection
// per attempt, following redirects up to its configured cap. It never
// retries; every failure surfaces as one of the typed errors in this
// package, and non-2xx responses are returned, not treated as failures.
type Client struct {
	timeout        time.Duration
	maxRedirects   int
	userAgent      string
	acceptLanguage string
}

// New creates a client from opts, filling unset fields with defaults.
func New(opts Options) *Client {
	c := &Client{
		timeout:        opts.Timeout,
		maxRedirects:   opts.MaxRedirects,
		userAgent:      opts.UserAgent,
		acceptLanguage: opts.AcceptLanguage,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.maxRedirects <= 0 {
		c.maxRedirects = DefaultMaxRedirects
	}
	if strings.TrimSpace(c.userAgent) == "" {
		c.userAgent = DefaultUserAgent
	}
	if strings.TrimSpace(c.acceptLanguage) == "" {
		c.acceptLanguage = "en-US,en;q=0.9"
	}
	return c
}

// Fetch issues a GET for the URL with default headers.
func (c *Client) Fetch(rawURL string) (*Response, error) {
	return c.Do(Request{Method: "GET", URL: rawURL})
}

// Do runs one logical request, following redirects. 301, 302 and 303
// downgrade the method to GET and drop the body on follow; 307 and 308
// preserve both.
func (c *Client) Do(req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = "GET"
	}
	rawURL := strings.TrimSpace(req.URL)
	if !strings.Contains(rawURL, "://") {
		rawURL = "http://" + rawURL
	}
	body := req.Body

	id := uuid.New().String()

	for follows := 0; ; follows++ {
		ep, target, err := ParseURL(rawURL)
		if err != nil {
			return nil, err
		}

		logger.Debug("[%s] %s %s://%s%s", id, method, scheme(ep), ep.HostHeader(), target)
		resp, err := c.roundTrip(method, ep, target, req.Header, body)
		if err != nil {
			logger.Debug("[%s] request failed: %v", id, err)
			return nil, err
		}
		logger.Debug("[%s] status %d, %d body bytes", id, resp.StatusCode, len(resp.Body))

		location := resp.Header.Get("Location")
		if !isRedirect(resp.StatusCode) || location == "" {
			return resp, nil
		}
		if follows == c.maxRedirects {
			return nil, &TooManyRedirectsError{Limit: c.maxRedirects, URL: rawURL}
		}

		next, err := resolveLocation(rawURL, location)
		if err != nil {
			return nil, &MalformedResponseError{Reason: "bad Location header: " + location}
		}
		if resp.StatusCode == 301 || resp.StatusCode == 302 || resp.StatusCode == 303 {
			method = "GET"
			body = nil
		}
		logger.Debug("[%s] redirect %d -> %s", id, resp.StatusCode, next)
		rawURL = next
	}
}

// roundTrip performs one connect/write/decode cycle on a fresh
// connection, closing it on every exit path.
func (c *Client) roundTrip(method string, ep Endpoint, target string, extra Header, body []byte) (*Response, error) {
	h := c.defaultHeader(ep)
	mergeHeader(&h, extra)

	conn, err := Dial(ep, c.timeout)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.Write(EncodeRequest(method, target, h, body)); err != nil {
		return nil, err
	}
	return DecodeResponse(conn, method)
}

func (c *Client) defaultHeader(ep Endpoint) Header {
	var h Header
	h.Add("Host", ep.HostHeader())
	h.Add("User-Agent", c.userAgent)
	h.Add("Accept", "*/*")
	h.Add("Accept-Language", c.acceptLanguage)
	h.Add("Connection", "close")
	return h
}

// mergeHeader overlays caller fields onto the defaults. The first caller
// field for a name displaces the default; further caller fields with the
// same name stay as duplicates.
func mergeHeader(dst *Header, extra Header) {
	replaced := map[string]bool{}
	for _, f := range extra.Fields() {
		key := strings.ToLower(f.Name)
		if !replaced[key] {
			dst.Del(f.Name)
			replaced[key] = true
		}
		dst.Add(f.Name, f.Value)
	}
}

func isRedirect(status int) bool {
	switch status {
	case 301, 302, 303, 307, 308:
		return true
	}
	return false
}

// resolveLocation resolves a possibly relative Location against the URL
// that produced the redirect.
func resolveLocation(base, location string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}

func scheme(ep Endpoint) string {
	if ep.Secure {
		return "https"
	}
	return "http"
}
