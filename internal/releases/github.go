// SPDX-License-Identifier: MPL-2.0

package releases

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
)

const (
	// DefaultBaseURL is the public GitHub REST API endpoint.
	DefaultBaseURL = "https://api.github.com"

	// listLimit is the number of most recent releases considered per check.
	listLimit = 10

	// maxJSONResponseBytes is the upper bound on JSON API response size (10 MB).
	maxJSONResponseBytes = 10 << 20
)

// ErrUnexpectedStatus is wrapped by errors for non-200 API responses.
var ErrUnexpectedStatus = errors.New("unexpected status")

type (
	// RateLimitError is returned when the GitHub API rate limit is exceeded.
	RateLimitError struct {
		Limit     int
		Remaining int
		ResetAt   time.Time
	}

	// AssetStream is an open asset download. Size is the advertised
	// Content-Length, or -1 when the server did not send one.
	AssetStream struct {
		Body io.ReadCloser
		Size int64
	}

	// Client queries the GitHub Releases API of a single repository.
	Client struct {
		httpClient *http.Client
		owner      string
		repo       string
		baseURL    string
		token      string
		userAgent  string
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)
)

// Error formats the rate limit details as a human-readable message.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("GitHub API rate limit exceeded (%d/%d remaining, resets at %s)",
		e.Remaining, e.Limit, e.ResetAt.UTC().Format("15:04 UTC"))
}

// WithHTTPClient sets the HTTP client shared by every request of a run.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(g *Client) {
		g.httpClient = c
	}
}

// WithBaseURL overrides the GitHub API base URL, primarily for test servers.
func WithBaseURL(base string) ClientOption {
	return func(g *Client) {
		if base != "" {
			g.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithToken sets a GitHub personal access token for authenticated requests.
// Authenticated requests have a higher rate limit (5000/hour vs 60/hour).
func WithToken(token string) ClientOption {
	return func(g *Client) {
		g.token = token
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(g *Client) {
		g.userAgent = ua
	}
}

// NewClient creates a Client for owner/repo.
// Defaults: baseURL=DefaultBaseURL, userAgent="cdda-updater/dev",
// httpClient=http.DefaultClient.
func NewClient(owner, repo string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		owner:      owner,
		repo:       repo,
		baseURL:    DefaultBaseURL,
		userAgent:  "cdda-updater/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Repository returns "owner/repo".
func (c *Client) Repository() string {
	return c.owner + "/" + c.repo
}

// ListPrereleases fetches the ten most recent releases and keeps the ones
// flagged as pre-release, in API order (newest first). Kept entries are
// validated; a release missing a required field fails the whole listing
// with an error wrapping ErrMalformedRelease.
func (c *Client) ListPrereleases(ctx context.Context) ([]Release, error) {
	listURL := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=%d",
		c.baseURL, url.PathEscape(c.owner), url.PathEscape(c.repo), listLimit)

	resp, err := c.doRequest(ctx, listURL)
	if err != nil {
		return nil, fmt.Errorf("listing releases: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if err := checkRateLimit(resp); err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing releases: %w %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var raw []githubRelease
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("listing releases: decoding response: %w", err)
	}

	if len(raw) > listLimit {
		raw = raw[:listLimit]
	}

	var out []Release
	for i, gr := range raw {
		if !gr.Prerelease {
			continue
		}
		r, convErr := toRelease(i, gr)
		if convErr != nil {
			return nil, fmt.Errorf("listing releases: %w", convErr)
		}
		out = append(out, r)
	}

	return out, nil
}

// DownloadAsset starts a streaming GET of assetURL. The caller must close
// the returned stream's Body.
func (c *Client) DownloadAsset(ctx context.Context, assetURL string) (*AssetStream, error) {
	resp, err := c.doRequest(ctx, assetURL)
	if err != nil {
		return nil, fmt.Errorf("downloading asset %s: %w", redactURL(assetURL), err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("downloading asset %s: %w %d", redactURL(assetURL), ErrUnexpectedStatus, resp.StatusCode)
	}

	return &AssetStream{Body: resp.Body, Size: resp.ContentLength}, nil
}

// doRequest creates and executes a GET request with common GitHub API headers.
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", c.userAgent)

	// Only attach the auth token when the request targets a known GitHub host,
	// so it never leaks to the CDN an asset download redirects to.
	if c.token != "" && isGitHubHost(req.URL, c.baseURL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	return resp, nil
}

// checkRateLimit returns a RateLimitError when X-RateLimit-Remaining is zero.
func checkRateLimit(resp *http.Response) error {
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	if remaining == "" {
		return nil
	}

	rem, err := strconv.Atoi(remaining)
	if err != nil || rem > 0 {
		return nil //nolint:nilerr // Non-numeric header is non-fatal.
	}

	limit, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))                 //nolint:errcheck // Best-effort header parsing.
	resetUnix, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64) //nolint:errcheck // Best-effort header parsing.

	return &RateLimitError{
		Limit:     limit,
		Remaining: 0,
		ResetAt:   time.Unix(resetUnix, 0),
	}
}

// isGitHubHost reports whether reqURL targets the configured API host or,
// for the public API, github.com itself.
func isGitHubHost(reqURL *url.URL, baseURL string) bool {
	base, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	if strings.EqualFold(reqURL.Host, base.Host) {
		return true
	}
	return strings.EqualFold(base.Host, "api.github.com") && strings.EqualFold(reqURL.Host, "github.com")
}

// redactURL strips query parameters and fragments from a URL for error messages.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
