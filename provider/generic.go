package provider

import (
	"context"

	"github.com/use-agent/forage/fetch"
	"github.com/use-agent/forage/models"
	"github.com/use-agent/forage/schema"
)

// fetchSchemaImage fetches a recipe page and extracts only its image.
// ("", nil) means the page offered no usable image; only transport
// failures surface as errors.
func fetchSchemaImage(ctx context.Context, fetcher PageFetcher, recipeURL string) (string, error) {
	page, err := fetcher.Get(ctx, recipeURL)
	if err != nil {
		return "", err
	}
	img, _ := schema.ExtractImage(page.HTML)
	return img, nil
}

// fetchAndScrape fetches a recipe page, rejects authentication walls, and
// runs the full extraction.
func fetchAndScrape(ctx context.Context, fetcher PageFetcher, scraper Scraper, recipeURL string) (*models.ScrapedRecipe, error) {
	page, err := fetcher.Get(ctx, recipeURL)
	if err != nil {
		return nil, err
	}
	if err := fetch.DetectAuthWall(page.HTML, page.FinalURL, recipeURL); err != nil {
		return nil, err
	}
	recipe, _, err := scraper.Scrape(ctx, page.HTML, recipeURL)
	return recipe, err
}

// GenericProvider is the fallback adapter for sites without a dedicated
// one. It treats the given URL's site as a single category and accepts any
// sufficiently deep same-host link, so discovery quality depends entirely
// on how the site structures its URLs.
type GenericProvider struct {
	siteURL string
	fetcher PageFetcher
	scraper Scraper
}

// NewGeneric builds a generic adapter rooted at siteURL.
func NewGeneric(siteURL string, fetcher PageFetcher, scraper Scraper) *GenericProvider {
	return &GenericProvider{siteURL: siteURL, fetcher: fetcher, scraper: scraper}
}

func (p *GenericProvider) ID() string      { return "generic" }
func (p *GenericProvider) Name() string    { return models.NormalizeHost(p.siteURL) }
func (p *GenericProvider) LogoURL() string { return "" }
func (p *GenericProvider) BaseURL() string { return p.siteURL }

func (p *GenericProvider) RequiresAuth() bool { return false }

// SupportedLanguages is ["*"]: the generic adapter is locale-independent.
func (p *GenericProvider) SupportedLanguages() []string { return []string{"*"} }

func (p *GenericProvider) DiscoverCategoryURLs(ctx context.Context) ([]string, error) {
	return []string{p.siteURL}, nil
}

func (p *GenericProvider) ExtractRecipeLinks(ctx context.Context, categoryURL string) ([]models.DiscoveredRecipe, error) {
	page, err := p.fetcher.Get(ctx, categoryURL)
	if err != nil {
		return nil, err
	}
	return extractLinks(page.HTML, p.siteURL, linkRule{minSegments: 2}), nil
}

func (p *GenericProvider) FetchImageURL(ctx context.Context, recipeURL string) (string, error) {
	return fetchSchemaImage(ctx, p.fetcher, recipeURL)
}

func (p *GenericProvider) FetchRecipe(ctx context.Context, recipeURL string) (*models.ScrapedRecipe, error) {
	return fetchAndScrape(ctx, p.fetcher, p.scraper, recipeURL)
}
