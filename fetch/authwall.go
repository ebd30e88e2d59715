package fetch

import (
	"strings"

	"github.com/use-agent/forage/models"
	"golang.org/x/net/html"
)

// Login-wall detection heuristics. A page is considered auth-gated when the
// fetch redirected to a login-looking path, or the page title carries a
// login keyword in any of the supported locales.
var (
	authURLPatterns = []string{
		"/login", "/signin", "/sign-in", "/auth", "/connexion",
		"/account/login", "/user/login",
	}
	authTitleKeywords = []string{
		"login", "sign in", "connexion", "se connecter", "log in",
		"anmelden", "iniciar sesión",
	}
)

// DetectAuthWall inspects a fetched page and returns an
// AuthenticationRequired error when the page is a login wall, nil otherwise.
// The error's host is taken from originalURL (what the user asked for), not
// from wherever the redirect landed.
func DetectAuthWall(pageHTML, finalURL, originalURL string) *models.ScraperError {
	finalPath := strings.ToLower(pathOf(finalURL))
	for _, pattern := range authURLPatterns {
		if strings.Contains(finalPath, pattern) {
			return models.NewHostError(models.KindAuthRequired,
				"this recipe requires authentication", originalURL, nil)
		}
	}

	title := strings.ToLower(ExtractTitle(pageHTML))
	for _, keyword := range authTitleKeywords {
		if strings.Contains(title, keyword) {
			return models.NewHostError(models.KindAuthRequired,
				"this recipe requires authentication", originalURL, nil)
		}
	}

	return nil
}

func pathOf(rawURL string) string {
	// Cheap parse: strip scheme+host, keep path before query/fragment.
	s := rawURL
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "/"); i >= 0 {
		return s[i:]
	}
	return ""
}

// ExtractTitle finds the first <title> element using the HTML tokenizer.
func ExtractTitle(pageHTML string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(pageHTML))
	inTitle := false
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(tokenizer.Text()))
			}
		case html.EndTagToken:
			if inTitle {
				return ""
			}
		}
	}
}
