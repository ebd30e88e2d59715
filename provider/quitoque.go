package provider

import (
	"context"

	"github.com/use-agent/forage/models"
)

// QuitoqueProvider adapts quitoque.fr. Its recipe listing is small and
// unpaginated, and full recipe pages sit behind a customer login, so
// parsing its discoveries requires the authentication bridge.
type QuitoqueProvider struct {
	fetcher PageFetcher
	scraper Scraper
}

func NewQuitoque(fetcher PageFetcher, scraper Scraper) *QuitoqueProvider {
	return &QuitoqueProvider{fetcher: fetcher, scraper: scraper}
}

func (p *QuitoqueProvider) ID() string      { return "quitoque" }
func (p *QuitoqueProvider) Name() string    { return "Quitoque" }
func (p *QuitoqueProvider) LogoURL() string { return "https://www.quitoque.fr/favicon.ico" }
func (p *QuitoqueProvider) BaseURL() string { return "https://www.quitoque.fr" }

func (p *QuitoqueProvider) RequiresAuth() bool { return true }

func (p *QuitoqueProvider) SupportedLanguages() []string {
	return []string{"fr", "fr-FR"}
}

// DiscoverCategoryURLs returns the fixed public listing pages; the site
// does not paginate them.
func (p *QuitoqueProvider) DiscoverCategoryURLs(ctx context.Context) ([]string, error) {
	return []string{
		p.BaseURL() + "/nos-recettes",
		p.BaseURL() + "/nos-recettes/vegetarien",
		p.BaseURL() + "/nos-recettes/express",
	}, nil
}

func (p *QuitoqueProvider) ExtractRecipeLinks(ctx context.Context, categoryURL string) ([]models.DiscoveredRecipe, error) {
	page, err := p.fetcher.Get(ctx, categoryURL)
	if err != nil {
		return nil, err
	}
	rule := linkRule{pathPrefix: "/recette/", minSegments: 2}
	return extractLinks(page.HTML, p.BaseURL(), rule), nil
}

func (p *QuitoqueProvider) FetchImageURL(ctx context.Context, recipeURL string) (string, error) {
	return fetchSchemaImage(ctx, p.fetcher, recipeURL)
}

func (p *QuitoqueProvider) FetchRecipe(ctx context.Context, recipeURL string) (*models.ScrapedRecipe, error) {
	return fetchAndScrape(ctx, p.fetcher, p.scraper, recipeURL)
}
