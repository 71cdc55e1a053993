package updater

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/0raclide/nihontowatch-sub000/pkg/version"
)

// Release is the subset of a GitHub release the update check needs.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Swapped out in tests.
var (
	releasesURL = "https://api.github.com/repos/0raclide/nihontowatch/releases/latest"
	httpClient  = &http.Client{Timeout: 2 * time.Second}
)

// CheckForUpdates queries GitHub for the latest release. It returns the
// newer tag and its release page URL when one exists, empty strings
// otherwise. The short client timeout keeps a slow network from
// stalling startup.
func CheckForUpdates() (string, string, error) {
	resp, err := httpClient.Get(releasesURL)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("github api returned status: %s", resp.Status)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return "", "", err
	}

	if compareVersions(rel.TagName, version.Version) > 0 {
		return rel.TagName, rel.HTMLURL, nil
	}
	return "", "", nil
}

// compareVersions compares two v-prefixed dotted tags segment by
// segment, numerically where both segments parse as numbers. Returns 1
// when v1 is newer, -1 when older, 0 when equal.
func compareVersions(v1, v2 string) int {
	s1 := strings.Split(strings.TrimPrefix(v1, "v"), ".")
	s2 := strings.Split(strings.TrimPrefix(v2, "v"), ".")

	for i := 0; i < len(s1) && i < len(s2); i++ {
		n1, err1 := strconv.Atoi(s1[i])
		n2, err2 := strconv.Atoi(s2[i])
		if err1 == nil && err2 == nil {
			if n1 != n2 {
				if n1 > n2 {
					return 1
				}
				return -1
			}
			continue
		}
		if s1[i] != s2[i] {
			if s1[i] > s2[i] {
				return 1
			}
			return -1
		}
	}
	switch {
	case len(s1) > len(s2):
		return 1
	case len(s1) < len(s2):
		return -1
	}
	return 0
}
