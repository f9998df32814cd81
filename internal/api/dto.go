package api

// ArticleListResponse wraps paginated article listings.
type ArticleListResponse struct {
	Articles []ArticleListItem `json:"articles"`
	Total    int               `json:"total"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// BacklinksResponse wraps the inbound slugs of one article.
type BacklinksResponse struct {
	Slug      string   `json:"slug"`
	Backlinks []string `json:"backlinks"`
}
