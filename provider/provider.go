// Package provider implements site adapters for bulk recipe discovery.
// Each provider knows one site: where its category listings live, how its
// recipe links look, and whether its pages require authentication.
package provider

import (
	"context"

	"github.com/use-agent/forage/fetch"
	"github.com/use-agent/forage/models"
)

// PageFetcher retrieves pages. *fetch.Fetcher satisfies it; tests
// substitute a scripted fake.
type PageFetcher interface {
	Get(ctx context.Context, targetURL string) (*fetch.Page, error)
}

// Scraper extracts a recipe from fetched markup. The hybrid runtime facade
// satisfies it.
type Scraper interface {
	Scrape(ctx context.Context, pageHTML, sourceURL string) (*models.ScrapedRecipe, string, error)
}

// Provider is one site adapter. Implementations are stateless and safe for
// concurrent use; all mutable workflow state lives in the discovery layer.
type Provider interface {
	// ID is the stable registry key ("hellofresh"). Lookup is exact and
	// case-sensitive.
	ID() string

	// Name is the human-readable site name.
	Name() string

	// LogoURL points at the provider's logo, for client pickers.
	LogoURL() string

	// SupportedLanguages lists BCP 47 language tags the site serves, or
	// ["*"] for locale-independent providers.
	SupportedLanguages() []string

	// BaseURL is the site root, without a trailing slash.
	BaseURL() string

	// RequiresAuth reports whether recipe pages sit behind a login.
	RequiresAuth() bool

	// DiscoverCategoryURLs returns the category listing pages to scan,
	// already expanded through pagination where the site paginates.
	DiscoverCategoryURLs(ctx context.Context) ([]string, error)

	// ExtractRecipeLinks pulls recipe candidates out of one category page.
	// Titles are derived from URL slugs; images are resolved later.
	ExtractRecipeLinks(ctx context.Context, categoryURL string) ([]models.DiscoveredRecipe, error)

	// FetchImageURL resolves the thumbnail for one recipe page.
	// Best-effort: ("", nil) means the page offered no usable image.
	FetchImageURL(ctx context.Context, recipeURL string) (string, error)

	// FetchRecipe fetches and fully extracts one recipe.
	FetchRecipe(ctx context.Context, recipeURL string) (*models.ScrapedRecipe, error)
}
