package update

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const releasesURL = "https://api.github.com/repos/matheuskafuri/tradewire/releases/latest"

// Result holds the outcome of a version check.
type Result struct {
	LatestVersion string
}

type ghRelease struct {
	TagName string `json:"tag_name"`
}

// Check asks GitHub whether a newer release than currentVersion exists.
// Returns nil on any error, and for dev builds.
func Check(ctx context.Context, currentVersion string) *Result {
	return check(ctx, releasesURL, currentVersion)
}

func check(ctx context.Context, url, currentVersion string) *Result {
	current := strings.TrimPrefix(currentVersion, "v")
	if current == "" || current == "dev" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var release ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	if latest == "" || latest == current {
		return nil
	}

	return &Result{LatestVersion: latest}
}
