// Package tmdb is a minimal client for The Movie Database search API, the
// catalog every moodboard block points into.
package tmdb

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strconv"
    "strings"
    "time"

    "github.com/iliyamo/cinema-moodboard/internal/model"
)

// ErrEmptyQuery is returned by Search for a blank query.
var ErrEmptyQuery = errors.New("search query is empty")

// MoviePage is one page of search results.
type MoviePage struct {
    Page         int              `json:"page"`
    Results      []model.MovieRef `json:"results"`
    TotalPages   int              `json:"total_pages"`
    TotalResults int              `json:"total_results"`
}

// Searcher is what the HTTP layer needs from the catalog.
type Searcher interface {
    Search(ctx context.Context, query string, page int) (MoviePage, error)
}

// Client calls the TMDB v3 API.
type Client struct {
    BaseURL  string
    APIKey   string
    Language string
    HTTP     *http.Client
}

// NewClient returns a client with its own http.Client bounded by timeout.
func NewClient(baseURL, apiKey, language string, timeout time.Duration) *Client {
    if timeout <= 0 {
        timeout = 5 * time.Second
    }
    return &Client{
        BaseURL:  strings.TrimRight(baseURL, "/"),
        APIKey:   apiKey,
        Language: language,
        HTTP:     &http.Client{Timeout: timeout},
    }
}

type apiError struct {
    StatusMessage string `json:"status_message"`
}

// NormalizeQuery trims a search query and collapses inner whitespace.
func NormalizeQuery(q string) string {
    return strings.Join(strings.Fields(q), " ")
}

// Search runs /3/search/movie.  Pages below 1 are treated as 1.
func (c *Client) Search(ctx context.Context, query string, page int) (MoviePage, error) {
    query = NormalizeQuery(query)
    if query == "" {
        return MoviePage{}, ErrEmptyQuery
    }
    if page < 1 {
        page = 1
    }

    q := url.Values{}
    q.Set("api_key", c.APIKey)
    q.Set("query", query)
    q.Set("page", strconv.Itoa(page))
    if c.Language != "" {
        q.Set("language", c.Language)
    }
    endpoint := c.BaseURL + "/3/search/movie?" + q.Encode()

    req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
    if err != nil {
        return MoviePage{}, fmt.Errorf("build request: %w", err)
    }
    req.Header.Set("Accept", "application/json")

    resp, err := c.HTTP.Do(req)
    if err != nil {
        return MoviePage{}, fmt.Errorf("tmdb search: %w", err)
    }
    defer resp.Body.Close()

    body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
    if err != nil {
        return MoviePage{}, fmt.Errorf("read tmdb response: %w", err)
    }
    if resp.StatusCode != http.StatusOK {
        var ae apiError
        _ = json.Unmarshal(body, &ae)
        if ae.StatusMessage != "" {
            return MoviePage{}, fmt.Errorf("tmdb search: %s: %s", resp.Status, ae.StatusMessage)
        }
        return MoviePage{}, fmt.Errorf("tmdb search: %s", resp.Status)
    }

    var out MoviePage
    if err := json.Unmarshal(body, &out); err != nil {
        return MoviePage{}, fmt.Errorf("decode tmdb response: %w", err)
    }
    if out.Results == nil {
        out.Results = []model.MovieRef{}
    }
    return out, nil
}
