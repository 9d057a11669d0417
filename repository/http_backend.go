package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/logger"
	"github.com/teranos/actorgraph/models"
	"github.com/teranos/actorgraph/version"
)

// DefaultProxyURL is where the proxy listens by default
const DefaultProxyURL = "http://localhost:4201"

const (
	defaultHTTPTimeout = 30 * time.Second
	maxErrorBody       = 4 << 10
)

// HTTPBackend reads from a running actorgraph (or legacy Express) proxy
type HTTPBackend struct {
	baseURL string
	client  *http.Client
}

var _ Backend = (*HTTPBackend)(nil)

// NewHTTPBackend creates a backend for the proxy at baseURL. A nil client
// gets a 30s timeout.
func NewHTTPBackend(baseURL string, client *http.Client) *HTTPBackend {
	if baseURL == "" {
		baseURL = DefaultProxyURL
	}
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPBackend{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (b *HTTPBackend) ActorByID(ctx context.Context, id string) (*models.Actor, error) {
	var a *models.Actor
	if err := b.get(ctx, "/api/actor/id/"+url.PathEscape(id), &a); err != nil {
		return nil, err
	}
	if a == nil || a.ID == "" {
		return nil, errors.NewNotFoundError("actor %s", id)
	}
	return a, nil
}

func (b *HTTPBackend) ActorByName(ctx context.Context, name string) (*models.Actor, error) {
	var a *models.Actor
	if err := b.get(ctx, "/api/actor/name/"+url.PathEscape(name), &a); err != nil {
		return nil, err
	}
	if a == nil || a.ID == "" {
		return nil, errors.NewNotFoundError("actor named %q", name)
	}
	return a, nil
}

func (b *HTTPBackend) AllMovies(ctx context.Context) ([]models.Movie, error) {
	var movies []models.Movie
	return movies, b.get(ctx, "/api/movie/allMovies", &movies)
}

func (b *HTTPBackend) MoviesOfActor(ctx context.Context, actorID string) ([]models.Movie, error) {
	var movies []models.Movie
	return movies, b.get(ctx, "/api/actor/id/"+url.PathEscape(actorID)+"/movies", &movies)
}

func (b *HTTPBackend) MovieCounts(ctx context.Context, ids []string) ([]models.MovieCount, error) {
	if ids == nil {
		ids = []string{}
	}
	var counts []models.MovieCount
	return counts, b.do(ctx, http.MethodPost, "/api/actor/moviecount/", ids, &counts)
}

// SearchActorsByName ignores limit: the proxy applies its own
func (b *HTTPBackend) SearchActorsByName(ctx context.Context, name string, limit int) ([]models.Actor, error) {
	var actors []models.Actor
	return actors, b.get(ctx, "/api/search/actorname/"+url.PathEscape(name), &actors)
}

func (b *HTTPBackend) RandomMovieInRange(ctx context.Context, r models.YearRange) ([]models.Movie, error) {
	var movies []models.Movie
	return movies, b.get(ctx, "/api/search/random/movie/"+r.String(), &movies)
}

func (b *HTTPBackend) Collaborators(ctx context.Context, actorID string) ([]models.Actor, error) {
	var actors []models.Actor
	return actors, b.get(ctx, "/api/actor/id/"+url.PathEscape(actorID)+"/collaborators", &actors)
}

func (b *HTTPBackend) get(ctx context.Context, path string, out interface{}) error {
	return b.do(ctx, http.MethodGet, path, nil, out)
}

func (b *HTTPBackend) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "encode %s body", path)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return errors.Wrapf(err, "build request %s", path)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		return errors.WrapServiceUnavailable(err, method+" "+path)
	}
	defer resp.Body.Close()

	logger.Debugw("proxy call",
		logger.FieldMethod, method,
		logger.FieldPath, path,
		logger.FieldStatus, resp.StatusCode,
		logger.FieldDurationMS, time.Since(start).Milliseconds())

	if resp.StatusCode >= 300 {
		return statusError(resp, method+" "+path)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapServiceUnavailable(err, "read "+path)
	}
	// legacy proxies answer 200 with an error document
	if legacy := legacyError(data); legacy != "" {
		return errors.Newf("%s %s: %s", method, path, legacy)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Name    string `json:"name"`
}

// legacyError recognizes the Mongoose error objects the Express proxy sent with 200
func legacyError(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}
	var e errorBody
	if json.Unmarshal(trimmed, &e) != nil {
		return ""
	}
	switch {
	case e.Error != "":
		return e.Error
	case e.Name != "" && e.Message != "":
		return e.Name + ": " + e.Message
	}
	return ""
}

func statusError(resp *http.Response, what string) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(data))
	var e errorBody
	if json.Unmarshal(data, &e) == nil && e.Error != "" {
		msg = e.Error
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.NewNotFoundError("%s: %s", what, msg)
	case resp.StatusCode == http.StatusBadRequest:
		return errors.NewInvalidRequestError("%s: %s", what, msg)
	case resp.StatusCode >= 500:
		return errors.WrapServiceUnavailable(errors.Newf("status %d: %s", resp.StatusCode, msg), what)
	}
	return errors.Newf("%s: status %d: %s", what, resp.StatusCode, msg)
}
