package updater

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/0raclide/nihontowatch-sub000/pkg/version"
)

func withStubRelease(t *testing.T, status int, body string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	old := releasesURL
	releasesURL = srv.URL
	t.Cleanup(func() {
		releasesURL = old
		srv.Close()
	})
}

func TestCheckForUpdatesNewerRelease(t *testing.T) {
	withStubRelease(t, http.StatusOK, `{"tag_name":"v99.0.0","html_url":"https://example.com/rel"}`)

	tag, url, err := CheckForUpdates()
	if err != nil {
		t.Fatalf("CheckForUpdates error: %v", err)
	}
	if tag != "v99.0.0" {
		t.Errorf("expected tag v99.0.0, got %q", tag)
	}
	if url != "https://example.com/rel" {
		t.Errorf("expected release URL, got %q", url)
	}
}

func TestCheckForUpdatesUpToDate(t *testing.T) {
	withStubRelease(t, http.StatusOK, fmt.Sprintf(`{"tag_name":%q,"html_url":"x"}`, version.Version))

	tag, _, err := CheckForUpdates()
	if err != nil {
		t.Fatalf("CheckForUpdates error: %v", err)
	}
	if tag != "" {
		t.Errorf("expected no update for current version, got %q", tag)
	}
}

func TestCheckForUpdatesAPIError(t *testing.T) {
	withStubRelease(t, http.StatusForbidden, `rate limited`)

	if _, _, err := CheckForUpdates(); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestCheckForUpdatesBadBody(t *testing.T) {
	withStubRelease(t, http.StatusOK, `{not json`)

	if _, _, err := CheckForUpdates(); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestCompareVersions(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"v0.1.0", "v0.1.0", 0},
		{"v0.1.1", "v0.1.0", 1},
		{"v0.1.0", "v0.1.1", -1},
		{"v0.10.0", "v0.2.0", 1}, // numeric, not lexicographic
		{"v1.0.0", "v0.9.9", 1},
		{"v0.1.0.1", "v0.1.0", 1},
		{"0.1.0", "v0.1.0", 0},
	}
	for _, tc := range cases {
		if got := compareVersions(tc.a, tc.b); got != tc.want {
			t.Errorf("compareVersions(%q, %q): expected %d, got %d", tc.a, tc.b, tc.want, got)
		}
	}
}
