package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const googleBooksSource = "google_books"

// GoogleBooksClient queries the Google Books volumes API. An API key is
// optional; without one the public quota applies.
type GoogleBooksClient struct {
	httpClient        *http.Client
	baseURL           string
	apiKey            string
	preferredLanguage string
}

func NewGoogleBooksClient(apiKey, preferredLanguage string) *GoogleBooksClient {
	return &GoogleBooksClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:           "https://www.googleapis.com/books/v1",
		apiKey:            apiKey,
		preferredLanguage: preferredLanguage,
	}
}

// SearchByTitle finds the best volume for a title and optional author. The
// first query restricts results to the preferred language; if nothing comes
// back the restriction is dropped and the query retried.
func (c *GoogleBooksClient) SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	query := "intitle:" + title
	if author != "" {
		query += "+inauthor:" + author
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", "5")
	params.Set("printType", "books")
	if c.preferredLanguage != "" {
		params.Set("langRestrict", c.preferredLanguage)
	}

	result, err := c.queryVolumes(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 && c.preferredLanguage != "" {
		params.Del("langRestrict")
		result, err = c.queryVolumes(ctx, params)
		if err != nil {
			return nil, err
		}
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("no results found for: %s", title)
	}

	return volumeToMetadata(&result.Items[0]), nil
}

// SearchByISBN resolves a single volume by ISBN.
func (c *GoogleBooksClient) SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	isbn = normalizeISBN(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("invalid ISBN")
	}

	params := url.Values{}
	params.Set("q", "isbn:"+isbn)
	params.Set("maxResults", "1")

	result, err := c.queryVolumes(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("ISBN not found: %s", isbn)
	}

	metadata := volumeToMetadata(&result.Items[0])
	metadata.ISBN = isbn
	return metadata, nil
}

// SearchCovers lists cover candidates for a title, preferring the largest
// image each volume offers.
func (c *GoogleBooksClient) SearchCovers(ctx context.Context, title, author string) ([]CoverOption, error) {
	query := "intitle:" + title
	if author != "" {
		query += "+inauthor:" + author
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", "10")
	params.Set("printType", "books")

	result, err := c.queryVolumes(ctx, params)
	if err != nil {
		return nil, err
	}

	var covers []CoverOption
	for i := range result.Items {
		volume := &result.Items[i].VolumeInfo
		coverURL := bestImageLink(volume.ImageLinks)
		if coverURL == "" {
			continue
		}
		if strings.Contains(coverURL, "zoom=1") {
			coverURL = strings.Replace(coverURL, "zoom=1", "zoom=3", 1)
		}
		covers = append(covers, CoverOption{
			URL:     coverURL,
			Source:  "Google Books",
			Title:   volume.Title,
			Authors: strings.Join(volume.Authors, ", "),
		})
	}
	return covers, nil
}

func (c *GoogleBooksClient) queryVolumes(ctx context.Context, params url.Values) (*googleVolumeList, error) {
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	requestURL := fmt.Sprintf("%s/volumes?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query volumes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result googleVolumeList
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

func volumeToMetadata(item *googleVolume) *BookMetadata {
	volume := &item.VolumeInfo

	metadata := &BookMetadata{
		Title:       volume.Title,
		Authors:     volume.Authors,
		Genres:      volume.Categories,
		Description: volume.Description,
		TotalPages:  volume.PageCount,
		Language:    volume.Language,
		ExternalID:  item.ID,
		Source:      googleBooksSource,
		CoverURL:    bestImageLink(volume.ImageLinks),
	}

	if len(volume.PublishedDate) >= 4 {
		if year, err := strconv.Atoi(volume.PublishedDate[:4]); err == nil {
			metadata.PublishedYear = year
		}
	}
	return metadata
}

// bestImageLink picks the largest cover image a volume offers, forcing
// https and stripping the page-curl effect parameter.
func bestImageLink(links googleImageLinks) string {
	for _, candidate := range []string{
		links.ExtraLarge, links.Large, links.Medium,
		links.Small, links.Thumbnail, links.SmallThumbnail,
	} {
		if candidate == "" {
			continue
		}
		candidate = strings.Replace(candidate, "http://", "https://", 1)
		return strings.ReplaceAll(candidate, "&edge=curl", "")
	}
	return ""
}

// Google Books API response types (internal)

type googleVolumeList struct {
	TotalItems int            `json:"totalItems"`
	Items      []googleVolume `json:"items"`
}

type googleVolume struct {
	ID         string           `json:"id"`
	VolumeInfo googleVolumeInfo `json:"volumeInfo"`
}

type googleVolumeInfo struct {
	Title         string           `json:"title"`
	Subtitle      string           `json:"subtitle"`
	Authors       []string         `json:"authors"`
	Categories    []string         `json:"categories"`
	Description   string           `json:"description"`
	PublishedDate string           `json:"publishedDate"`
	PageCount     int              `json:"pageCount"`
	Language      string           `json:"language"`
	ImageLinks    googleImageLinks `json:"imageLinks"`
}

type googleImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
	Small          string `json:"small"`
	Medium         string `json:"medium"`
	Large          string `json:"large"`
	ExtraLarge     string `json:"extraLarge"`
}
