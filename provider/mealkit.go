package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/use-agent/forage/models"
)

// MealKitProvider adapts meal-kit sites whose category listings paginate
// with a ?page=N query parameter. Discovery probes pages in order and
// stops a category at the first page that yields no recipe links.
type MealKitProvider struct {
	id        string
	name      string
	logoURL   string
	baseURL   string
	languages []string

	categoryPaths []string
	rule          linkRule
	maxPages      int

	fetcher PageFetcher
	scraper Scraper
}

// NewHelloFresh builds the HelloFresh adapter. maxPages bounds pagination
// probing per category.
func NewHelloFresh(fetcher PageFetcher, scraper Scraper, maxPages int) *MealKitProvider {
	return &MealKitProvider{
		id:      "hellofresh",
		name:    "HelloFresh",
		logoURL: "https://www.hellofresh.com/favicon.ico",
		baseURL: "https://www.hellofresh.com",
		languages: []string{
			"en", "en-US", "fr", "fr-FR", "de", "de-DE", "nl", "nl-NL",
		},
		categoryPaths: []string{
			"/recipes/most-popular-recipes",
			"/recipes/quick-recipes",
			"/recipes/vegetarian-recipes",
			"/recipes/family-friendly-recipes",
		},
		rule:     linkRule{pathPrefix: "/recipes/", minSegments: 3},
		maxPages: maxPages,
		fetcher:  fetcher,
		scraper:  scraper,
	}
}

func (p *MealKitProvider) ID() string                   { return p.id }
func (p *MealKitProvider) Name() string                 { return p.name }
func (p *MealKitProvider) LogoURL() string              { return p.logoURL }
func (p *MealKitProvider) BaseURL() string              { return p.baseURL }
func (p *MealKitProvider) RequiresAuth() bool           { return false }
func (p *MealKitProvider) SupportedLanguages() []string {
	out := make([]string, len(p.languages))
	copy(out, p.languages)
	return out
}

// DiscoverCategoryURLs expands each category through its pagination. A page
// is included only when it yields at least one recipe link; the first empty
// page ends that category. Fetch errors also end the category rather than
// failing discovery: remaining categories may still work.
func (p *MealKitProvider) DiscoverCategoryURLs(ctx context.Context) ([]string, error) {
	var urls []string
	for _, path := range p.categoryPaths {
		for page := 1; page <= p.maxPages; page++ {
			if err := ctx.Err(); err != nil {
				return urls, err
			}
			pageURL := fmt.Sprintf("%s%s?page=%d", p.baseURL, path, page)
			links, err := p.ExtractRecipeLinks(ctx, pageURL)
			if err != nil {
				slog.Debug("category page fetch failed", "provider", p.id, "url", pageURL, "error", err)
				break
			}
			if len(links) == 0 {
				break
			}
			urls = append(urls, pageURL)
		}
	}
	return urls, nil
}

func (p *MealKitProvider) ExtractRecipeLinks(ctx context.Context, categoryURL string) ([]models.DiscoveredRecipe, error) {
	page, err := p.fetcher.Get(ctx, categoryURL)
	if err != nil {
		return nil, err
	}
	return extractLinks(page.HTML, p.baseURL, p.rule), nil
}

func (p *MealKitProvider) FetchImageURL(ctx context.Context, recipeURL string) (string, error) {
	return fetchSchemaImage(ctx, p.fetcher, recipeURL)
}

func (p *MealKitProvider) FetchRecipe(ctx context.Context, recipeURL string) (*models.ScrapedRecipe, error) {
	return fetchAndScrape(ctx, p.fetcher, p.scraper, recipeURL)
}
