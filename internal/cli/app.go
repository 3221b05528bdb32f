package cli

import (
	"errors"
	"fmt"
	"os"

	"go2web/internal/cache"
	"go2web/internal/config"
	"go2web/internal/httpclient"
	"go2web/internal/logger"
	"go2web/internal/search"
	"go2web/internal/textutil"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// App wires the HTTP client, result cache and search provider behind the
// CLI verbs.
type App struct {
	cfg      *config.Config
	client   *httpclient.Client
	cache    *cache.Cache
	provider search.Provider
}

// New builds the application from config. A broken cache file is not
// fatal: the app restarts with an empty cache and keeps going.
func New(cfg *config.Config) *App {
	client := httpclient.New(httpclient.Options{
		Timeout:        cfg.Timeout(),
		MaxRedirects:   cfg.HTTP.MaxRedirects,
		UserAgent:      cfg.HTTP.UserAgent,
		AcceptLanguage: cfg.HTTP.AcceptLanguage,
	})

	resultCache, err := cache.Open(cfg.Cache.Path, cfg.CacheTTL())
	if err != nil {
		logger.Warn("cache unavailable, continuing without it: %v", err)
		fmt.Fprintf(os.Stderr, "%swarning: %v%s\n", colorYellow, err, colorReset)
		resultCache = cache.New(cfg.Cache.Path, cfg.CacheTTL())
	}

	return &App{
		cfg:      cfg,
		client:   client,
		cache:    resultCache,
		provider: search.NewBingProvider(cfg.Search.BaseURL, client),
	}
}

// FetchURL fetches a URL and prints its body as cleaned readable text.
func (a *App) FetchURL(rawURL string) error {
	resp, err := a.client.Fetch(rawURL)
	if err != nil {
		return err
	}

	logger.Info("fetched %s: status %d, %d bytes", rawURL, resp.StatusCode, len(resp.Body))
	if resp.StatusCode >= 400 {
		fmt.Printf("%sHTTP %d %s%s\n", colorYellow, resp.StatusCode, resp.Reason, colorReset)
	}

	fmt.Println(textutil.CleanHTML(string(resp.Body)))
	return nil
}

// Search prints ranked results for the query, serving from the cache when
// a fresh entry exists and storing fresh results otherwise. A cache write
// failure is reported but never fails a successful search.
func (a *App) Search(query string) error {
	results, err := a.results(query)
	if err != nil {
		return err
	}
	a.printResults(query, results)
	return nil
}

// Open runs the search for query and fetches the result at the given
// 1-based rank.
func (a *App) Open(query string, rank int) error {
	results, err := a.results(query)
	if err != nil {
		return err
	}
	if rank < 1 || rank > len(results) {
		return fmt.Errorf("result %d does not exist: search returned %d results", rank, len(results))
	}

	target := results[rank-1]
	fmt.Printf("%sOpening result %d: %s%s\n\n", colorGray, rank, target.URL, colorReset)
	return a.FetchURL(target.URL)
}

// ClearCache removes every cached query.
func (a *App) ClearCache() error {
	if err := a.cache.Clear(); err != nil {
		return err
	}
	fmt.Printf("%sCache cleared%s\n", colorGreen, colorReset)
	return nil
}

func (a *App) results(query string) ([]search.Result, error) {
	if results, ok := a.cache.Lookup(query); ok {
		logger.Debug("cache hit for %q", query)
		fmt.Printf("%s(cached)%s\n", colorGray, colorReset)
		return results, nil
	}

	logger.Debug("cache miss for %q, searching via %s", query, a.provider.Name())
	results, err := a.provider.Search(query, a.cfg.Search.DefaultLimit)
	if err != nil {
		return nil, err
	}

	if len(results) > 0 {
		if err := a.cache.Store(query, results); err != nil {
			logger.Warn("failed to persist cache: %v", err)
			fmt.Fprintf(os.Stderr, "%swarning: failed to persist cache: %v%s\n", colorYellow, err, colorReset)
		}
	}
	return results, nil
}

func (a *App) printResults(query string, results []search.Result) {
	if len(results) == 0 {
		fmt.Printf("%sNo search results found for %q.%s\n", colorYellow, query, colorReset)
		return
	}
	for _, r := range results {
		fmt.Printf("%s%d.%s %s%s%s - %s\n",
			colorGreen, r.Rank, colorReset,
			colorCyan, r.URL, colorReset,
			textutil.Truncate(r.Title, 120))
	}
}

// FormatError renders a typed core failure as a user-facing message.
func FormatError(err error) string {
	var (
		schemeErr    *httpclient.UnsupportedSchemeError
		connErr      *httpclient.ConnError
		tlsErr       *httpclient.TLSError
		timeoutErr   *httpclient.TimeoutError
		malformedErr *httpclient.MalformedResponseError
		truncatedErr *httpclient.TruncatedResponseError
		redirectErr  *httpclient.TooManyRedirectsError
	)
	switch {
	case errors.As(err, &schemeErr):
		return fmt.Sprintf("%sError: %v (only http and https are supported)%s", colorRed, schemeErr, colorReset)
	case errors.As(err, &connErr):
		return fmt.Sprintf("%sError: could not connect: %v%s", colorRed, connErr.Err, colorReset)
	case errors.As(err, &tlsErr):
		return fmt.Sprintf("%sError: secure connection failed: %v%s", colorRed, tlsErr.Err, colorReset)
	case errors.As(err, &timeoutErr):
		return fmt.Sprintf("%sError: %v%s", colorRed, timeoutErr, colorReset)
	case errors.As(err, &malformedErr):
		return fmt.Sprintf("%sError: server sent an invalid response: %s%s", colorRed, malformedErr.Reason, colorReset)
	case errors.As(err, &truncatedErr):
		return fmt.Sprintf("%sError: %v%s", colorRed, truncatedErr, colorReset)
	case errors.As(err, &redirectErr):
		return fmt.Sprintf("%sError: %v%s", colorRed, redirectErr, colorReset)
	default:
		return fmt.Sprintf("%sError: %v%s", colorRed, err, colorReset)
	}
}
