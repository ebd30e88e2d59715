package provider

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/forage/models"
)

var anchorSel = cascadia.MustCompile("a[href]")

// linkRule filters the anchors of a category page down to recipe links.
type linkRule struct {
	// pathPrefix is the path recipe URLs start with ("/recipes/").
	// Empty accepts any path.
	pathPrefix string

	// minSegments is the minimum number of non-empty path segments a
	// recipe URL must have. Category and index pages are shallower than
	// recipe pages, so a floor on depth filters most of them out.
	minSegments int
}

// extractLinks scans page markup for recipe links under base, deduplicated
// by URL in document order. Titles come from the last path segment.
func extractLinks(pageHTML, baseURL string, rule linkRule) []models.DiscoveredRecipe {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var out []models.DiscoveredRecipe
	seen := make(map[string]struct{})

	doc.FindMatcher(anchorSel).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Host != base.Host {
			return
		}
		abs.Fragment = ""
		abs.RawQuery = ""

		if !rule.accepts(abs.Path) {
			return
		}

		key := abs.String()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}

		out = append(out, models.DiscoveredRecipe{
			URL:   key,
			Title: titleFromSlug(abs.Path),
		})
	})

	return out
}

func (r linkRule) accepts(path string) bool {
	if r.pathPrefix != "" && !strings.HasPrefix(path, r.pathPrefix) {
		return false
	}
	segments := 0
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments++
		}
	}
	return segments >= r.minSegments
}

// titleFromSlug turns the last path segment into a display title:
// "chocolate-lava-cake" becomes "Chocolate lava cake". Trailing numeric ID
// segments are skipped in favor of the slug before them.
func titleFromSlug(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if seg == "" || isNumeric(seg) {
			continue
		}
		title := strings.ReplaceAll(seg, "-", " ")
		return capitalizeFirst(title)
	}
	return ""
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func capitalizeFirst(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
