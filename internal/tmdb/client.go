// Package tmdb is a read-only client for The Movie Database API, the
// third-party catalog behind the /movie and /search endpoints.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var ErrNotFound = errors.New("tmdb: not found")

type Config struct {
	APIKey   string
	BaseURL  string
	Language string
	Region   string
	Timeout  time.Duration
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	language   string
	region     string
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.themoviedb.org/3"
	}

	if cfg.Language == "" {
		cfg.Language = "en-US"
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		language:   cfg.Language,
		region:     cfg.Region,
	}
}

func (c *Client) NowPlaying(ctx context.Context, page int) (*MovieList, error) {
	const op = "tmdb.Client.NowPlaying"

	q := url.Values{}
	q.Set("page", strconv.Itoa(pageOrDefault(page)))
	if c.region != "" {
		q.Set("region", c.region)
	}

	var out MovieList
	if err := c.get(ctx, "/movie/now_playing", q, &out); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (c *Client) Upcoming(ctx context.Context, page int) (*MovieList, error) {
	const op = "tmdb.Client.Upcoming"

	q := url.Values{}
	q.Set("page", strconv.Itoa(pageOrDefault(page)))

	var out MovieList
	if err := c.get(ctx, "/movie/upcoming", q, &out); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (c *Client) Popular(ctx context.Context, page int) (*MovieList, error) {
	const op = "tmdb.Client.Popular"

	q := url.Values{}
	q.Set("page", strconv.Itoa(pageOrDefault(page)))

	var out MovieList
	if err := c.get(ctx, "/movie/popular", q, &out); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (c *Client) Details(ctx context.Context, movieID string) (*Movie, error) {
	const op = "tmdb.Client.Details"

	var out Movie
	if err := c.get(ctx, "/movie/"+url.PathEscape(movieID), url.Values{}, &out); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (c *Client) Similar(ctx context.Context, movieID string, page int) (*MovieList, error) {
	const op = "tmdb.Client.Similar"

	q := url.Values{}
	q.Set("page", strconv.Itoa(pageOrDefault(page)))

	var out MovieList
	if err := c.get(ctx, "/movie/"+url.PathEscape(movieID)+"/similar", q, &out); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (c *Client) Search(ctx context.Context, query string, page int) (*MovieList, error) {
	const op = "tmdb.Client.Search"

	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(pageOrDefault(page)))

	var out MovieList
	if err := c.get(ctx, "/search/movie", q, &out); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseURL+path+"?"+q.Encode(),
		nil,
	)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func pageOrDefault(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
