// Package selfupdate checks whether a newer zap release has been published.
package selfupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

// DefaultURL is the GitHub API endpoint for the latest release.
const DefaultURL = "https://api.github.com/repos/broisnischal/zap/releases/latest"

// Release describes a published release.
type Release struct {
	Tag string `json:"tag_name"`
	URL string `json:"html_url"`
}

// Checker fetches the latest release and compares it to Current.
type Checker struct {
	URL     string
	Current string
	Client  *http.Client
	// Timeout applies when Client is nil. Default 5s.
	Timeout time.Duration
}

// Latest fetches the latest release regardless of the current version.
func (c *Checker) Latest(ctx context.Context) (*Release, error) {
	url := c.URL
	if url == "" {
		url = DefaultURL
	}
	client := c.Client
	if client == nil {
		timeout := c.Timeout
		if timeout == 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "zap/"+c.Current)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var r Release
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse release: %w", err)
	}
	if r.Tag == "" {
		return nil, fmt.Errorf("parse release: missing tag_name")
	}
	return &r, nil
}

// Check returns the latest release when it is newer than Current, or nil.
func (c *Checker) Check(ctx context.Context) (*Release, error) {
	r, err := c.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if !Newer(r.Tag, c.Current) {
		return nil, nil
	}
	return r, nil
}

// Newer reports whether latest is a newer version than current. Development
// builds ("dev", "") never report an update. Non-semver tags compare by
// inequality.
func Newer(latest, current string) bool {
	if current == "" || current == "dev" {
		return false
	}
	l, c := canonical(latest), canonical(current)
	if semver.IsValid(l) && semver.IsValid(c) {
		return semver.Compare(l, c) > 0
	}
	return strings.TrimPrefix(latest, "v") != strings.TrimPrefix(current, "v")
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
