package fetch

import (
	"testing"

	"github.com/use-agent/forage/models"
)

func TestDetectAuthWall_LoginRedirect(t *testing.T) {
	err := DetectAuthWall(
		"<html><head><title>Page</title></head></html>",
		"https://www.example.com/login?next=%2Frecipes%2F42",
		"https://www.example.com/recipes/42",
	)
	if err == nil {
		t.Fatal("login redirect not detected")
	}
	if err.Kind != models.KindAuthRequired {
		t.Errorf("kind = %v, want AuthenticationRequired", err.Kind)
	}
	// Host comes from the URL the user asked for, normalized.
	if err.Host != "example.com" {
		t.Errorf("host = %q, want example.com", err.Host)
	}
}

func TestDetectAuthWall_TitleKeyword(t *testing.T) {
	tests := []string{
		"Login | HelloFresh",
		"Se connecter - Quitoque",
		"Anmelden",
	}
	for _, title := range tests {
		html := "<html><head><title>" + title + "</title></head></html>"
		err := DetectAuthWall(html, "https://example.com/recipes/42", "https://example.com/recipes/42")
		if err == nil || err.Kind != models.KindAuthRequired {
			t.Errorf("title %q not detected as login wall", title)
		}
	}
}

func TestDetectAuthWall_CleanPage(t *testing.T) {
	err := DetectAuthWall(
		"<html><head><title>Chocolate Cake Recipe</title></head></html>",
		"https://example.com/recipes/chocolate-cake",
		"https://example.com/recipes/chocolate-cake",
	)
	if err != nil {
		t.Errorf("clean page flagged as login wall: %v", err)
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		html, want string
	}{
		{"<html><head><title>  My Recipe  </title></head></html>", "My Recipe"},
		{"<html><head></head><body>no title</body></html>", ""},
		{"<title>First</title><title>Second</title>", "First"},
	}
	for _, tt := range tests {
		if got := ExtractTitle(tt.html); got != tt.want {
			t.Errorf("ExtractTitle(%q) = %q, want %q", tt.html, got, tt.want)
		}
	}
}
