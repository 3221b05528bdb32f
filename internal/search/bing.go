package search

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"go2web/internal/httpclient"
)

// DefaultLimit caps how many results one search returns.
const DefaultLimit = 10

// BingProvider scrapes the Bing results page for a query.
type BingProvider struct {
	baseURL string
	client  *httpclient.Client
}

// NewBingProvider creates a provider fetching through client. baseURL
// defaults to the public Bing endpoint.
func NewBingProvider(baseURL string, client *httpclient.Client) *BingProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://www.bing.com"
	}
	return &BingProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (p *BingProvider) Name() string {
	return "bing"
}

// Search fetches the results page and extracts up to limit ranked results.
func (p *BingProvider) Search(query string, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}

	searchURL := p.baseURL + "/search?q=" + url.QueryEscape(query)
	resp, err := p.client.Fetch(searchURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search request failed with status %d", resp.StatusCode)
	}

	return parseResults(bytes.NewReader(resp.Body), limit)
}

// parseResults extracts ranked results from a Bing results page. Each
// organic result sits in an li.b_algo block with an h2 title and the
// target URL on the first link.
func parseResults(r io.Reader, limit int) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	var results []Result
	doc.Find("li.b_algo").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(results) >= limit {
			return false
		}

		href, ok := s.Find("a[href]").First().Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return true
		}

		title := strings.TrimSpace(s.Find("h2").First().Text())
		if title == "" {
			title = "Untitled"
		}

		results = append(results, Result{
			Title: title,
			URL:   href,
			Rank:  len(results) + 1,
		})
		return true
	})

	return results, nil
}
