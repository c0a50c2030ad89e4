package codeforces

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

	"golang.org/x/sync/errgroup"

	"github.com/vytor/cftracker/internal/errors"
	"github.com/vytor/cftracker/internal/logger"
	"github.com/vytor/cftracker/internal/models"
)

const (
	DefaultBaseURL         = "https://codeforces.com/api"
	DefaultSubmissionCount = 100000
	DefaultDelay           = 500 * time.Millisecond
)

// Cache stores decoded endpoint results between fetches.
type Cache interface {
	Get(ctx context.Context, endpoint, handle string, dst any) (bool, error)
	Set(ctx context.Context, endpoint, handle string, v any) error
}

type freshKey struct{}

// Fresh marks ctx so that requests made with it skip cached results. The
// fresh responses still refresh the cache.
func Fresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, freshKey{}, true)
}

// IsFresh reports whether ctx was marked by Fresh.
func IsFresh(ctx context.Context) bool {
	fresh, _ := ctx.Value(freshKey{}).(bool)
	return fresh
}

type Client struct {
	httpClient      *http.Client
	baseURL         string
	submissionCount int
	delay           time.Duration
	cache           Cache
	observe         func(endpoint, outcome string, d time.Duration)
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithSubmissionCount sets the page size requested from user.status. It
// should cover the full history.
func WithSubmissionCount(n int) Option {
	return func(c *Client) { c.submissionCount = n }
}

// WithDelay sets the pause before each FetchAll, to stay under the API rate limit.
func WithDelay(d time.Duration) Option {
	return func(c *Client) { c.delay = d }
}

func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithObserver registers a callback invoked after every endpoint request.
func WithObserver(fn func(endpoint, outcome string, d time.Duration)) Option {
	return func(c *Client) { c.observe = fn }
}

func New(opts ...Option) *Client {
	c := &Client{
		httpClient:      &http.Client{Timeout: 15 * time.Second},
		baseURL:         DefaultBaseURL,
		submissionCount: DefaultSubmissionCount,
		delay:           DefaultDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the wrapper around every Codeforces API response.
type envelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

const (
	endpointUserInfo   = "user.info"
	endpointUserStatus = "user.status"
	endpointUserRating = "user.rating"
)

var endpointLabels = map[string]string{
	endpointUserInfo:   "user info",
	endpointUserStatus: "submissions",
	endpointUserRating: "rating history",
}

func (c *Client) UserInfo(ctx context.Context, handle string) (*models.UserInfo, error) {
	var users []models.UserInfo
	if err := c.call(ctx, endpointUserInfo, handle, url.Values{"handles": {handle}}, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, errors.NewMalformedResponse(endpointLabels[endpointUserInfo], fmt.Errorf("empty result"))
	}
	return &users[0], nil
}

func (c *Client) Submissions(ctx context.Context, handle string) ([]models.Submission, error) {
	q := url.Values{
		"handle": {handle},
		"from":   {"1"},
		"count":  {strconv.Itoa(c.submissionCount)},
	}
	subs := []models.Submission{}
	if err := c.call(ctx, endpointUserStatus, handle, q, &subs); err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []models.Submission{}
	}
	return subs, nil
}

func (c *Client) RatingHistory(ctx context.Context, handle string) ([]models.RatingChange, error) {
	changes := []models.RatingChange{}
	if err := c.call(ctx, endpointUserRating, handle, url.Values{"handle": {handle}}, &changes); err != nil {
		return nil, err
	}
	if changes == nil {
		changes = []models.RatingChange{}
	}
	return changes, nil
}

// FetchAll waits for the configured delay and then requests profile,
// submissions and rating history concurrently. The first failure cancels
// the remaining requests; no partial result is returned.
func (c *Client) FetchAll(ctx context.Context, handle string) (*models.ProfileData, error) {
	log := logger.FromContext(ctx).WithPrefix("codeforces").WithField("handle", handle)

	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	start := time.Now()
	var data models.ProfileData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		info, err := c.UserInfo(gctx, handle)
		if err != nil {
			return err
		}
		data.UserInfo = *info
		return nil
	})
	g.Go(func() error {
		subs, err := c.Submissions(gctx, handle)
		if err != nil {
			return err
		}
		data.Submissions = subs
		return nil
	})
	g.Go(func() error {
		changes, err := c.RatingHistory(gctx, handle)
		if err != nil {
			return err
		}
		data.RatingHistory = changes
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Warn("fetch failed after %v: %v", time.Since(start), err)
		return nil, err
	}

	log.Info("fetched profile with %d submissions and %d rating changes in %v",
		len(data.Submissions), len(data.RatingHistory), time.Since(start))
	return &data, nil
}

func (c *Client) call(ctx context.Context, endpoint, handle string, q url.Values, dst any) (err error) {
	log := logger.FromContext(ctx).WithPrefix("codeforces").WithField("endpoint", endpoint)
	label := endpointLabels[endpoint]
	start := time.Now()
	outcome := "hit"
	defer func() {
		if c.observe == nil {
			return
		}
		if err != nil {
			outcome = outcomeOf(err)
		}
		c.observe(endpoint, outcome, time.Since(start))
	}()

	if c.cache != nil && !IsFresh(ctx) {
		ok, cerr := c.cache.Get(ctx, endpoint, handle, dst)
		if cerr != nil {
			log.Warn("cache read failed: %v", cerr)
		}
		if ok {
			log.Debug("served from cache")
			return nil
		}
	}
	outcome = "ok"

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, q.Encode())
	log.Debug("requesting %s", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return errors.NewNetworkError(fmt.Sprintf("Failed to fetch %s", label), err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Error("request failed: %v", err)
		return errors.NewNetworkError(fmt.Sprintf("Failed to fetch %s", label), err)
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("failed to read response: %v", err)
		return errors.NewNetworkError(fmt.Sprintf("Failed to fetch %s", label), err)
	}

	// Codeforces answers unknown handles with 400 and a FAILED envelope, so
	// the envelope is inspected before the status code.
	var env envelope
	decodeErr := json.Unmarshal(body, &env)
	if decodeErr == nil && env.Status == "FAILED" {
		comment := env.Comment
		if comment == "" {
			comment = fmt.Sprintf("Failed to fetch %s", label)
		}
		log.Warn("upstream rejected request: %s", comment)
		return errors.NewUpstreamRejection(comment)
	}

	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		log.Error("request failed: status=%d, body=%s", resp.StatusCode, snippet)
		return errors.NewNetworkError(
			fmt.Sprintf("Failed to fetch %s: %s", label, http.StatusText(resp.StatusCode)),
			fmt.Errorf("status %d", resp.StatusCode),
		)
	}

	if decodeErr != nil {
		log.Error("failed to decode envelope: %v", decodeErr)
		return errors.NewMalformedResponse(label, decodeErr)
	}
	if env.Status != "OK" {
		return errors.NewMalformedResponse(label, fmt.Errorf("unexpected status %q", env.Status))
	}
	if err := json.Unmarshal(env.Result, dst); err != nil {
		log.Error("failed to decode result: %v", err)
		return errors.NewMalformedResponse(label, err)
	}

	if c.cache != nil {
		if cerr := c.cache.Set(ctx, endpoint, handle, dst); cerr != nil {
			log.Warn("cache write failed: %v", cerr)
		}
	}
	return nil
}

func outcomeOf(err error) string {
	switch {
	case errors.HasCode(err, errors.ErrCodeUpstreamRejection):
		return "rejected"
	case errors.HasCode(err, errors.ErrCodeMalformedResponse):
		return "malformed"
	case errors.HasCode(err, errors.ErrCodeNetworkFailure):
		return "network"
	default:
		return "cancelled"
	}
}
