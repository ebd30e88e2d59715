// Package runtime selects among interchangeable extraction backends: the
// built-in schema parser (always available), a rich readability-augmented
// interpreter, and a browser-sandboxed interpreter with an asynchronous
// readiness lifecycle.
package runtime

import (
	"context"

	"github.com/use-agent/forage/models"
)

// Backend turns page markup into a ScrapedRecipe.
type Backend interface {
	// Name returns the backend identifier (e.g. "builtin", "rich", "sandbox").
	Name() string

	// Attempt extracts a recipe from the given markup. Failures are
	// *models.ScraperError values; which "nothing found" kind a backend
	// reports is fixed per backend: the built-in parser signals
	// NoSchemaFoundInWildMode, the specialized backends NoRecipeFoundError.
	Attempt(ctx context.Context, pageHTML, sourceURL string) (*models.ScrapedRecipe, error)
}

// Readiness is the lifecycle state of a specialized backend. Transitions are
// monotonic: NotReady → Ready or NotReady → Failed, never back.
type Readiness int32

const (
	NotReady Readiness = iota
	Ready
	Failed
)

func (r Readiness) String() string {
	switch r {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "not-ready"
	}
}

// SpecializedBackend is a backend with a startup lifecycle and an advisory
// supported-host list.
type SpecializedBackend interface {
	Backend

	// Readiness reports the current lifecycle state.
	Readiness() Readiness

	// Resolved is closed once readiness has settled to Ready or Failed.
	Resolved() <-chan struct{}

	// SupportedHosts lists hosts with site-specific handling. Advisory:
	// the facade still attempts unknown hosts via the built-in parser.
	SupportedHosts() []string
}
