package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// SteamSearchPage renders a minimal storefront search page listing the
// given id/title pairs in order.
func SteamSearchPage(pairs ...[2]string) string {
	page := "<html><body><div id=\"search_resultsRows\">"
	for _, pair := range pairs {
		page += "<a href=\"https://store.steampowered.com/app/" + pair[0] + "/\" data-ds-appid=\"" + pair[0] +
			"\" class=\"search_result_row\"><div class=\"responsive_search_name_combined\">" +
			"<span class=\"title\">" + pair[1] + "</span></div></a>"
	}
	return page + "</div></body></html>"
}
