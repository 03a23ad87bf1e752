package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.github.com"

	// ElectronRepo is where Electron publishes its releases.
	ElectronRepo = "electron/electron"
)

// Client looks up release versions on GitHub.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Client. An empty baseURL selects the public GitHub API; tests
// pass an httptest server URL. token may be empty.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// LatestVersion returns the latest non-prerelease version of repo (owner/name) with
// the leading "v" stripped.
func (c *Client) LatestVersion(ctx context.Context, repo string) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", c.baseURL, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("github request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", fmt.Errorf("repo %q has no published release", repo)
	case http.StatusForbidden, http.StatusTooManyRequests:
		return "", fmt.Errorf("GitHub API rate limited for %q — set GITHUB_TOKEN or pin electron_version", repo)
	default:
		return "", fmt.Errorf("unexpected GitHub API status %d for %q", resp.StatusCode, repo)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("decode GitHub response: %w", err)
	}

	version := strings.TrimPrefix(release.TagName, "v")
	if version == "" {
		return "", fmt.Errorf("empty tag_name in GitHub response for %q", repo)
	}
	return version, nil
}

// ResolveElectron returns requested unchanged unless it is "latest", in which case the
// newest Electron release is looked up.
func (c *Client) ResolveElectron(ctx context.Context, requested string) (string, error) {
	if requested != "latest" {
		return requested, nil
	}
	v, err := c.LatestVersion(ctx, ElectronRepo)
	if err != nil {
		return "", fmt.Errorf("resolve latest Electron: %w", err)
	}
	return v, nil
}
