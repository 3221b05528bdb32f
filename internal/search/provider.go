package search

// Result is a single search result entry. Rank is the 1-based position
// within its result set.
type Result struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Rank  int    `json:"rank"`
}

// Provider performs web searches.
type Provider interface {
	Name() string
	Search(query string, limit int) ([]Result, error)
}
