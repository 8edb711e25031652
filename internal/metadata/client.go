// Package metadata looks up movie details on an OMDb-compatible API.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Clark-Hu/movie-swipe/internal/domain"
	"github.com/Clark-Hu/movie-swipe/internal/logging"
	"github.com/Clark-Hu/movie-swipe/internal/metrics"
)

// ErrNotFound is returned when upstream has no title for the requested id.
var ErrNotFound = errors.New("metadata: not found")

const breakerName = "omdb"

// Result carries the details used to create a catalog entry.
type Result struct {
	ExternalID  string
	Title       string
	Year        int
	Genre       string
	Description string
	Poster      string
	Rating      string
}

// NewMovie converts the lookup result into catalog input.
func (r Result) NewMovie() domain.NewMovie {
	return domain.NewMovie{
		ExternalID:  r.ExternalID,
		Title:       r.Title,
		Year:        r.Year,
		Genre:       r.Genre,
		Description: r.Description,
		Poster:      r.Poster,
		Rating:      r.Rating,
	}
}

// Client defines the contract for querying the upstream metadata API.
type Client interface {
	Lookup(ctx context.Context, imdbID string) (*Result, error)
}

// HTTPClient implements Client over HTTP behind a circuit breaker.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*Result]
	logger  zerolog.Logger
}

// NewHTTPClient constructs a new HTTP-backed metadata client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) (*HTTPClient, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse metadata url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse metadata url: %q is not absolute", baseURL)
	}

	logger := logging.With("metadata")
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[*Result](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Unknown titles are answers, not outages.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		breaker: breaker,
		logger:  logger,
	}, nil
}

// Lookup retrieves movie details by IMDb id.
func (c *HTTPClient) Lookup(ctx context.Context, imdbID string) (*Result, error) {
	result, err := c.breaker.Execute(func() (*Result, error) {
		return c.fetch(ctx, imdbID)
	})
	switch {
	case err == nil:
		metrics.MetadataRequests.WithLabelValues("success").Inc()
	case errors.Is(err, ErrNotFound):
		metrics.MetadataRequests.WithLabelValues("not_found").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.MetadataRequests.WithLabelValues("rejected").Inc()
	default:
		metrics.MetadataRequests.WithLabelValues("failure").Inc()
	}
	return result, err
}

func (c *HTTPClient) fetch(ctx context.Context, imdbID string) (*Result, error) {
	endpoint := *c.baseURL
	if endpoint.Path == "" {
		endpoint.Path = "/"
	}
	q := endpoint.Query()
	q.Set("i", imdbID)
	q.Set("apikey", c.apiKey)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload apiResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode metadata response: %w", err)
		}
		return convertToResult(imdbID, payload)
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		c.logger.Warn().Int("status", resp.StatusCode).Str("imdb_id", imdbID).Msg("unexpected metadata status")
		return nil, fmt.Errorf("metadata: upstream returned %d", resp.StatusCode)
	}
}

type apiResponse struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	IMDbID     string `json:"imdbID"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Genre      string `json:"Genre"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	IMDbRating string `json:"imdbRating"`
}

func convertToResult(requested string, payload apiResponse) (*Result, error) {
	if strings.EqualFold(payload.Response, "False") {
		if payload.Error == "" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", payload.Error, ErrNotFound)
	}

	id := domain.NormalizeExternalID(payload.IMDbID)
	if id == "" {
		id = requested
	}
	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return nil, fmt.Errorf("metadata: response for %s has no title", requested)
	}

	return &Result{
		ExternalID:  id,
		Title:       title,
		Year:        parseYear(payload.Year),
		Genre:       notAvailable(payload.Genre),
		Description: notAvailable(payload.Plot),
		Poster:      notAvailable(payload.Poster),
		Rating:      notAvailable(payload.IMDbRating),
	}, nil
}

// parseYear reads the leading digits of values like "2017–2019".
func parseYear(raw string) int {
	raw = strings.TrimSpace(raw)
	end := 0
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	year, err := strconv.Atoi(raw[:end])
	if err != nil {
		return 0
	}
	return year
}

// notAvailable blanks OMDb's "N/A" placeholder.
func notAvailable(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "N/A") {
		return ""
	}
	return v
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
