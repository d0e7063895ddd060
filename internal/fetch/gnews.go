// Package fetch talks to the remote article sources: the GNews API for the
// main feed and plain RSS feeds for the breaking news ticker.
//
// The GNews client never returns an error value from Fetch. Every failure is
// folded into a Result with Success=false and a typed Err, so callers merge
// one shape regardless of outcome.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/newshub/internal/model"
	"github.com/abelbrown/newshub/internal/otel"
)

// PageSize is the number of articles requested per page.
const PageSize = 10

const (
	defaultEndpoint = "https://gnews.io/api/v4"
	defaultTimeout  = 10 * time.Second
	userAgent       = "NewsHub/1.0 (https://github.com/abelbrown/newshub)"
)

// Result is the outcome of one fetch. HasMore is a hint only: a full page
// suggests more may exist.
type Result struct {
	Success  bool
	Articles []model.Article
	HasMore  bool
	Total    int
	Err      error
}

// Fetcher loads one page of articles for a filter combination.
type Fetcher interface {
	Fetch(ctx context.Context, f model.Filters, page int) Result
}

// Options configures a Client.
type Options struct {
	Endpoint          string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 disables limiting
	Events            *otel.Logger
	HTTPClient        *http.Client // overrides Timeout when set
}

// Client fetches articles from GNews v4.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
	events   *otel.Logger
	now      func() time.Time
}

// NewClient creates a GNews client.
func NewClient(opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = defaultEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		apiKey:   opts.APIKey,
		client:   hc,
		limiter:  rate.NewLimiter(limit, 1),
		events:   opts.Events,
		now:      time.Now,
	}
}

// Available reports whether an API key is configured.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// RequestURL builds the GNews URL for a filter combination and page.
func (c *Client) RequestURL(f model.Filters, page int) string {
	f = f.Normalize()
	if page < 1 {
		page = 1
	}

	path := "/top-headlines"
	q := url.Values{}
	if f.Query != "" {
		path = "/search"
		q.Set("q", f.Query)
	}
	if f.Category != model.CategoryGeneral {
		q.Set("topic", f.Category)
	}
	if f.Country != model.CountryNone {
		q.Set("country", f.Country)
	}
	q.Set("apikey", c.apiKey)
	q.Set("lang", "en")
	q.Set("max", strconv.Itoa(PageSize))
	q.Set("page", strconv.Itoa(page))

	return c.endpoint + path + "?" + q.Encode()
}

// Fetch retrieves one page. It never retries.
func (c *Client) Fetch(ctx context.Context, f model.Filters, page int) Result {
	f = f.Normalize()
	start := time.Now()
	c.events.Emit(otel.Event{
		Level: otel.LevelDebug, Kind: otel.KindFetchStart, Comp: "fetch",
		Page: page, Query: f.Query, Source: f.Category,
	})

	articles, total, err := c.do(ctx, f, page)
	if err != nil {
		c.events.Emit(otel.Event{
			Level: otel.LevelError, Kind: otel.KindFetchError, Comp: "fetch",
			Page: page, Query: f.Query, Source: f.Category,
			Dur: time.Since(start), Err: err.Error(),
		})
		return Result{Articles: []model.Article{}, Err: err}
	}

	c.events.Emit(otel.Event{
		Level: otel.LevelInfo, Kind: otel.KindFetchComplete, Comp: "fetch",
		Page: page, Query: f.Query, Source: f.Category,
		Dur: time.Since(start), Count: len(articles),
	})
	return Result{
		Success:  true,
		Articles: articles,
		HasMore:  len(articles) == PageSize,
		Total:    total,
	}
}

type gnewsResponse struct {
	TotalArticles int            `json:"totalArticles"`
	Articles      []gnewsArticle `json:"articles"`
}

type gnewsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

type gnewsError struct {
	Errors []string `json:"errors"`
}

func (c *Client) do(ctx context.Context, f model.Filters, page int) ([]model.Article, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, &TransportError{Op: "rate limit wait", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RequestURL(f, page), nil)
	if err != nil {
		return nil, 0, &TransportError{Op: "create request", Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return nil, 0, &TransportError{Op: "read body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ge gnewsError
		_ = json.Unmarshal(body, &ge)
		return nil, 0, &RemoteServiceError{Status: resp.StatusCode, Message: strings.Join(ge.Errors, "; ")}
	}

	var gr gnewsResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, 0, &RemoteServiceError{Status: resp.StatusCode, Message: "malformed response", Err: err}
	}

	prefix := "article"
	if f.Query != "" {
		prefix = "search"
	}
	now := c.now()
	out := make([]model.Article, 0, len(gr.Articles))
	for i, raw := range gr.Articles {
		out = append(out, normalize(raw, f.Category, prefix, now, i))
	}
	return out, gr.TotalArticles, nil
}

// normalize maps a remote article onto the canonical record, applying the
// placeholder defaults for missing fields.
func normalize(raw gnewsArticle, category, prefix string, fetched time.Time, index int) model.Article {
	a := model.Article{
		ID:          fmt.Sprintf("%s-%d-%d", prefix, fetched.UnixMilli(), index),
		Title:       raw.Title,
		Description: raw.Description,
		ImageURL:    raw.Image,
		SourceName:  raw.Source.Name,
		PublishedAt: raw.PublishedAt,
		URL:         raw.URL,
		Content:     raw.Content,
		Category:    category,
	}
	if a.Title == "" {
		a.Title = model.NoTitle
	}
	if a.Description == "" {
		a.Description = model.NoDescription
	}
	if a.ImageURL == "" {
		a.ImageURL = model.FallbackImage(category)
	}
	if a.SourceName == "" {
		a.SourceName = model.UnknownSource
	}
	if a.PublishedAt == "" {
		a.PublishedAt = fetched.UTC().Format(time.RFC3339)
	}
	return a
}
