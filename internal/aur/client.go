// Package aur queries the AUR RPC metadata service through the local
// response cache.
package aur

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/cache"
)

// DefaultBaseURL is the public AUR RPC endpoint.
const DefaultBaseURL = "https://aur.archlinux.org/rpc"

// rollingSuffix marks packages that build from a live VCS branch rather
// than a tagged release. Name-based detection is a documented heuristic:
// a package renamed away from the convention will be misclassified.
const rollingSuffix = "-git"

// Package is the subset of AUR metadata the tool consumes.
type Package struct {
	Name        string `json:"Name"`
	Version     string `json:"Version"`
	Description string `json:"Description"`
	URL         string `json:"URL"`
	NumVotes    int    `json:"NumVotes"`
}

// RepoURL returns the clone location for the package's build recipe,
// falling back to the conventional AUR git URL when metadata omits one.
func (p *Package) RepoURL() string {
	if p.URL != "" {
		return p.URL
	}
	return CloneURL(p.Name)
}

// CloneURL returns the conventional AUR git repository URL for name.
func CloneURL(name string) string {
	return fmt.Sprintf("https://aur.archlinux.org/%s.git", name)
}

// IsRolling reports whether name carries the VCS-package naming convention.
func IsRolling(name string) bool {
	return strings.HasSuffix(name, rollingSuffix)
}

type response struct {
	ResultCount int       `json:"resultcount"`
	Results     []Package `json:"results"`
	Error       string    `json:"error"`
}

// Fetcher is the cache-backed transport used for RPC queries.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Verify *cache.Store satisfies Fetcher at compile time.
var _ Fetcher = (*cache.Store)(nil)

// Client issues info and search queries against the AUR RPC.
type Client struct {
	baseURL string
	fetcher Fetcher
}

// NewClient creates a Client against baseURL (DefaultBaseURL when empty).
func NewClient(baseURL string, fetcher Fetcher) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: baseURL, fetcher: fetcher}
}

// Info fetches metadata for exactly one package. A zero result count is an
// error wrapping apperr.ErrNotFound; callers never need to nil-check.
func (c *Client) Info(ctx context.Context, name string) (*Package, error) {
	res, err := c.query(ctx, "info", name)
	if err != nil {
		return nil, err
	}
	if res.ResultCount == 0 || len(res.Results) == 0 {
		return nil, fmt.Errorf("aur: package %s: %w", name, apperr.ErrNotFound)
	}
	return &res.Results[0], nil
}

// Search returns at most limit matches for term, plus how many further
// matches were truncated away.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]Package, int, error) {
	res, err := c.query(ctx, "search", term)
	if err != nil {
		return nil, 0, err
	}
	results := res.Results
	remaining := 0
	if limit > 0 && len(results) > limit {
		remaining = len(results) - limit
		results = results[:limit]
	}
	return results, remaining, nil
}

func (c *Client) query(ctx context.Context, kind, arg string) (*response, error) {
	u := fmt.Sprintf("%s/?v=5&type=%s&arg=%s", c.baseURL, kind, url.QueryEscape(arg))
	data, err := c.fetcher.Fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	var res response
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("aur: decode %s response: %w", kind, err)
	}
	if res.Error != "" {
		return nil, fmt.Errorf("aur: %s query failed: %s", kind, res.Error)
	}
	return &res, nil
}
