package cloudsync

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// GistFile is one file of a gist.
type GistFile struct {
	Content   string `json:"content"`
	Truncated bool   `json:"truncated,omitempty"`
	RawURL    string `json:"raw_url,omitempty"`
}

// Gist is the part of the gist resource sync needs.
type Gist struct {
	ID          string              `json:"id"`
	Description string              `json:"description"`
	Public      bool                `json:"public"`
	Files       map[string]GistFile `json:"files"`
}

// GistClient talks to the GitHub gist REST API with a personal access token.
type GistClient struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// NewGistClient creates a client. A nil httpClient uses a 30 second timeout client.
func NewGistClient(baseURL, token string, httpClient *http.Client) *GistClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &GistClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
		// 2 requests per second, burst of 4
		limiter: rate.NewLimiter(rate.Every(time.Second/2), 4),
	}
}

// Configured reports whether a token is set.
func (c *GistClient) Configured() bool {
	return c != nil && c.token != ""
}

// Get fetches a gist. Truncated files are completed from their raw URL.
func (c *GistClient) Get(ctx context.Context, id string) (*Gist, error) {
	var g Gist
	if err := c.do(ctx, http.MethodGet, "/gists/"+id, nil, &g); err != nil {
		return nil, err
	}
	for name, f := range g.Files {
		if !f.Truncated || f.RawURL == "" {
			continue
		}
		content, err := c.fetchRaw(ctx, f.RawURL)
		if err != nil {
			return nil, err
		}
		f.Content, f.Truncated = content, false
		g.Files[name] = f
	}
	return &g, nil
}

// Create makes a private gist.
func (c *GistClient) Create(ctx context.Context, description string, files map[string]GistFile) (*Gist, error) {
	body := map[string]any{
		"description": description,
		"public":      false,
		"files":       files,
	}
	var g Gist
	if err := c.do(ctx, http.MethodPost, "/gists", body, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Update replaces the given files of an existing gist.
func (c *GistClient) Update(ctx context.Context, id string, files map[string]GistFile) (*Gist, error) {
	var g Gist
	if err := c.do(ctx, http.MethodPatch, "/gists/"+id, map[string]any{"files": files}, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *GistClient) do(ctx context.Context, method, path string, body, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "cloudsync: rate limit")
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "cloudsync: encode request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "cloudsync: build request")
	}
	c.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "cloudsync: %s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "cloudsync: decode response")
	}
	return nil
}

func (c *GistClient) fetchRaw(ctx context.Context, rawURL string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "cloudsync: rate limit")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "cloudsync: build request")
	}
	if c.trustedHost(req.URL) {
		c.setHeaders(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "cloudsync: fetch raw file")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apiError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "cloudsync: read raw file")
	}
	return string(data), nil
}

// rawHosts serve gist file contents on github.com.
var rawHosts = map[string]bool{
	"gist.githubusercontent.com": true,
	"raw.githubusercontent.com":  true,
}

// trustedHost reports whether the token may be sent to u: the API host itself
// or a GitHub raw content host over https.
func (c *GistClient) trustedHost(u *url.URL) bool {
	if base, err := url.Parse(c.baseURL); err == nil && base.Scheme == u.Scheme && base.Host == u.Host {
		return true
	}
	return u.Scheme == "https" && rawHosts[u.Hostname()]
}

func (c *GistClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}

func apiError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	// the message is optional, an unreadable body still yields the status
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return &APIError{Status: resp.StatusCode, Message: payload.Message}
}
