package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sebastiantruijens/cinemadiary/internal/movie"
)

// Client defaults, also used as the configuration defaults.
const (
	DefaultBaseURL   = "https://www.omdbapi.com/"
	DefaultTimeout   = 10 * time.Second
	DefaultCacheSize = 64

	userAgent = "cinemadiary/1.0"

	// notFoundMessage is the Error text OMDb sends when a search has no hits.
	notFoundMessage = "Movie not found!"
)

// ErrAPIKeyRequired is returned by NewClient when no API key is configured.
var ErrAPIKeyRequired = errors.New("omdb api key is required")

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	// CacheSize bounds the number of details kept in memory. Negative
	// disables the cache.
	CacheSize int
	Logger    *slog.Logger
}

// Client handles interactions with the OMDb API
type Client struct {
	baseURL *url.URL
	apiKey  string
	timeout time.Duration
	client  *http.Client
	cache   *lru.Cache[string, movie.Detail]
	log     *slog.Logger
}

// NewClient creates a new API client
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	rawURL := strings.TrimSpace(opts.BaseURL)
	if rawURL == "" {
		rawURL = DefaultBaseURL
	}
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse omdb base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("omdb base url %q must be http or https", rawURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: timeout,
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Client{
		baseURL: base,
		apiKey:  apiKey,
		timeout: timeout,
		client:  httpClient,
		log:     logger.With("component", "omdb"),
	}

	size := opts.CacheSize
	if size == 0 {
		size = DefaultCacheSize
	}
	if size > 0 {
		cache, err := lru.New[string, movie.Detail](size)
		if err != nil {
			return nil, fmt.Errorf("create detail cache: %w", err)
		}
		c.cache = cache
	}

	return c, nil
}

type envelope struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

func (e envelope) ok() bool {
	return strings.EqualFold(e.Response, "True")
}

type searchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

type searchPayload struct {
	envelope
	Search       []searchItem `json:"Search"`
	TotalResults string       `json:"totalResults"`
}

type detailPayload struct {
	envelope
	IMDbID     string `json:"imdbID"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Poster     string `json:"Poster"`
	Runtime    string `json:"Runtime"`
	IMDbRating string `json:"imdbRating"`
	Plot       string `json:"Plot"`
	Released   string `json:"Released"`
	Actors     string `json:"Actors"`
	Director   string `json:"Director"`
	Genre      string `json:"Genre"`
	Language   string `json:"Language"`
	Country    string `json:"Country"`
	Writer     string `json:"Writer"`
	Awards     string `json:"Awards"`
	BoxOffice  string `json:"BoxOffice"`
	Production string `json:"Production"`
}

// SearchByTitle searches for movies by title. A search without matches
// returns an empty slice and no error.
func (c *Client) SearchByTitle(ctx context.Context, text string) ([]movie.SearchResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []movie.SearchResult{}, nil
	}

	var payload searchPayload
	if err := c.get(ctx, "search", url.Values{"s": {text}}, &payload); err != nil {
		c.log.Warn("search failed", "query", text, "error", err)
		return nil, err
	}

	if !payload.ok() {
		if strings.EqualFold(strings.TrimSpace(payload.Error), notFoundMessage) {
			c.log.Debug("search returned no matches", "query", text)
			return []movie.SearchResult{}, nil
		}
		err := &RemoteError{Op: "search", Message: remoteMessage(payload.envelope)}
		c.log.Warn("search rejected", "query", text, "error", err)
		return nil, err
	}

	// OMDb occasionally repeats an id within one page.
	seen := make(map[string]struct{}, len(payload.Search))
	results := make([]movie.SearchResult, 0, len(payload.Search))
	for _, item := range payload.Search {
		id := strings.TrimSpace(item.IMDbID)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		results = append(results, movie.SearchResult{
			ID:        id,
			Title:     cleanText(item.Title),
			Year:      cleanText(item.Year),
			Type:      cleanText(item.Type),
			PosterURL: movie.Value(item.Poster),
		})
	}

	c.log.Debug("search completed", "query", text, "results", len(results))
	return results, nil
}

// FetchDetail fetches detailed information for a specific movie id.
func (c *Client) FetchDetail(ctx context.Context, id string) (movie.Detail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return movie.Detail{}, &RemoteError{Op: "detail", Message: "movie id is required", Err: ErrNotFound}
	}

	if c.cache != nil {
		if d, ok := c.cache.Get(id); ok {
			c.log.Debug("detail cache hit", "id", id)
			return d, nil
		}
	}

	var payload detailPayload
	params := url.Values{"i": {id}, "plot": {"full"}}
	if err := c.get(ctx, "detail", params, &payload); err != nil {
		c.log.Warn("detail fetch failed", "id", id, "error", err)
		return movie.Detail{}, err
	}

	if !payload.ok() {
		err := &RemoteError{Op: "detail", Message: remoteMessage(payload.envelope)}
		if isNotFoundMessage(payload.Error) {
			err.Err = ErrNotFound
		}
		c.log.Warn("detail rejected", "id", id, "error", err)
		return movie.Detail{}, err
	}

	d := movie.Detail{
		ID:             id,
		Title:          cleanText(payload.Title),
		Year:           cleanText(payload.Year),
		PosterURL:      movie.Value(payload.Poster),
		Runtime:        cleanText(payload.Runtime),
		RuntimeMinutes: movie.ParseRuntime(payload.Runtime),
		IMDbRating:     movie.ParseRating(payload.IMDbRating),
		Plot:           cleanText(payload.Plot),
		Released:       cleanText(payload.Released),
		Actors:         cleanText(payload.Actors),
		Director:       cleanText(payload.Director),
		Genre:          cleanText(payload.Genre),
		Language:       cleanText(payload.Language),
		Country:        cleanText(payload.Country),
		Writer:         cleanText(payload.Writer),
		Awards:         cleanText(payload.Awards),
		BoxOffice:      cleanText(payload.BoxOffice),
		Production:     cleanText(payload.Production),
	}
	if payloadID := strings.TrimSpace(payload.IMDbID); payloadID != "" {
		d.ID = payloadID
	}

	if c.cache != nil {
		c.cache.Add(id, d)
	}
	return d, nil
}

func (c *Client) get(ctx context.Context, op string, params url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := *c.baseURL
	q := u.Query()
	for k, v := range params {
		q[k] = v
	}
	q.Set("apikey", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var env envelope
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(body, &env) == nil && strings.TrimSpace(env.Error) != "" {
			msg = strings.TrimSpace(env.Error)
		}
		return &RemoteError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return &NetworkError{Op: op, Err: ctx.Err()}
		}
		return &RemoteError{Op: op, StatusCode: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}

func remoteMessage(env envelope) string {
	if msg := strings.TrimSpace(env.Error); msg != "" {
		return msg
	}
	return "unexpected response"
}

func isNotFoundMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "not found") || strings.Contains(msg, "incorrect imdb id")
}
