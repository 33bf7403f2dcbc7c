package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	openLibrarySource = "open_library"
	userAgent         = "BookNest/1.0 (https://github.com/Andrei800/booknest)"
)

// OpenLibraryClient fetches book metadata from the Open Library API.
type OpenLibraryClient struct {
	httpClient  *http.Client
	baseURL     string
	coversURL   string
	rateLimiter *rateLimiter
}

// Open Library asks for at most one request per second from anonymous
// clients.
type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

func NewOpenLibraryClient() *OpenLibraryClient {
	return &OpenLibraryClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     "https://openlibrary.org",
		coversURL:   "https://covers.openlibrary.org",
		rateLimiter: newRateLimiter(time.Second),
	}
}

// SearchByTitle finds the best matching work for a title and optional
// author. The work record is fetched separately when the search doc has no
// description.
func (c *OpenLibraryClient) SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	params := url.Values{}
	params.Set("title", title)
	params.Set("limit", "5")
	if author != "" {
		params.Set("author", author)
	}

	result, err := c.search(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(result.Docs) == 0 {
		return nil, fmt.Errorf("no results found for: %s", title)
	}

	doc := &result.Docs[0]
	metadata := &BookMetadata{
		Title:         doc.Title,
		Authors:       doc.AuthorName,
		PublishedYear: doc.FirstPublishYear,
		ExternalID:    doc.Key,
		Source:        openLibrarySource,
		CoverURL:      c.docCoverURL(doc),
	}

	if doc.Key != "" {
		if description, err := c.fetchWorkDescription(ctx, doc.Key); err == nil {
			metadata.Description = description
		}
	}
	return metadata, nil
}

// SearchByISBN looks up edition metadata by ISBN, resolving author names
// through their referenced records.
func (c *OpenLibraryClient) SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	isbn = normalizeISBN(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("invalid ISBN")
	}

	c.rateLimiter.wait()

	requestURL := fmt.Sprintf("%s/isbn/%s.json", c.baseURL, isbn)
	var edition openLibraryEdition
	if err := c.getJSON(ctx, requestURL, &edition); err != nil {
		return nil, err
	}

	metadata := &BookMetadata{
		Title:      edition.Title,
		ISBN:       isbn,
		TotalPages: edition.NumberOfPages,
		ExternalID: edition.Key,
		Source:     openLibrarySource,
	}

	if len(edition.Covers) > 0 {
		metadata.CoverURL = fmt.Sprintf("%s/b/id/%d-L.jpg", c.coversURL, edition.Covers[0])
	} else {
		metadata.CoverURL = fmt.Sprintf("%s/b/isbn/%s-L.jpg", c.coversURL, isbn)
	}

	if len(edition.PublishDate) >= 4 {
		if year, err := strconv.Atoi(edition.PublishDate[:4]); err == nil {
			metadata.PublishedYear = year
		}
	}

	for _, ref := range edition.Authors {
		name, err := c.fetchAuthorName(ctx, ref.Key)
		if err == nil && name != "" {
			metadata.Authors = append(metadata.Authors, name)
		}
	}
	return metadata, nil
}

// SearchCovers lists cover candidates for a title from search results.
func (c *OpenLibraryClient) SearchCovers(ctx context.Context, title, author string) ([]CoverOption, error) {
	params := url.Values{}
	params.Set("title", title)
	params.Set("limit", "10")
	if author != "" {
		params.Set("author", author)
	}

	result, err := c.search(ctx, params)
	if err != nil {
		return nil, err
	}

	var covers []CoverOption
	for i := range result.Docs {
		doc := &result.Docs[i]
		coverURL := c.docCoverURL(doc)
		if coverURL == "" {
			continue
		}
		covers = append(covers, CoverOption{
			URL:     coverURL,
			Source:  "Open Library",
			Title:   doc.Title,
			Authors: strings.Join(doc.AuthorName, ", "),
		})
	}
	return covers, nil
}

func (c *OpenLibraryClient) docCoverURL(doc *openLibrarySearchDoc) string {
	if doc.CoverI != 0 {
		return fmt.Sprintf("%s/b/id/%d-L.jpg", c.coversURL, doc.CoverI)
	}
	if len(doc.ISBN) > 0 {
		return fmt.Sprintf("%s/b/isbn/%s-L.jpg", c.coversURL, doc.ISBN[0])
	}
	return ""
}

func (c *OpenLibraryClient) search(ctx context.Context, params url.Values) (*openLibrarySearchResult, error) {
	c.rateLimiter.wait()

	requestURL := fmt.Sprintf("%s/search.json?%s", c.baseURL, params.Encode())
	var result openLibrarySearchResult
	if err := c.getJSON(ctx, requestURL, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *OpenLibraryClient) fetchWorkDescription(ctx context.Context, workKey string) (string, error) {
	c.rateLimiter.wait()

	requestURL := fmt.Sprintf("%s%s.json", c.baseURL, workKey)
	var work struct {
		Description any `json:"description"`
	}
	if err := c.getJSON(ctx, requestURL, &work); err != nil {
		return "", err
	}

	switch v := work.Description.(type) {
	case string:
		return v, nil
	case map[string]any:
		if value, ok := v["value"].(string); ok {
			return value, nil
		}
	}
	return "", fmt.Errorf("no description")
}

func (c *OpenLibraryClient) fetchAuthorName(ctx context.Context, authorKey string) (string, error) {
	if authorKey == "" {
		return "", fmt.Errorf("empty author key")
	}

	c.rateLimiter.wait()

	requestURL := fmt.Sprintf("%s%s.json", c.baseURL, authorKey)
	var author struct {
		Name string `json:"name"`
	}
	if err := c.getJSON(ctx, requestURL, &author); err != nil {
		return "", err
	}
	return author.Name, nil
}

func (c *OpenLibraryClient) getJSON(ctx context.Context, requestURL string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("not found")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// normalizeISBN removes hyphens and spaces and checks the length.
func normalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	isbn = strings.TrimSpace(isbn)

	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}
	return isbn
}

// Open Library API response types (internal)

type openLibrarySearchResult struct {
	NumFound int                    `json:"numFound"`
	Docs     []openLibrarySearchDoc `json:"docs"`
}

type openLibrarySearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	ISBN             []string `json:"isbn"`
	CoverI           int      `json:"cover_i"`
}

type openLibraryEdition struct {
	Key           string      `json:"key"`
	Title         string      `json:"title"`
	Authors       []authorRef `json:"authors"`
	PublishDate   string      `json:"publish_date"`
	NumberOfPages int         `json:"number_of_pages"`
	Covers        []int       `json:"covers"`
}

type authorRef struct {
	Key string `json:"key"`
}
