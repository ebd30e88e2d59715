package runtime

import (
	"context"

	"github.com/use-agent/forage/models"
	"github.com/use-agent/forage/schema"
)

// BuiltinBackend is the lightweight schema parser: always available, no
// startup cost, used as the default and the universal fallback. Its errors
// are the canonical failure reason when every backend comes up empty.
type BuiltinBackend struct{}

// NewBuiltinBackend creates the built-in parser backend.
func NewBuiltinBackend() *BuiltinBackend {
	return &BuiltinBackend{}
}

func (b *BuiltinBackend) Name() string { return "builtin" }

func (b *BuiltinBackend) Attempt(ctx context.Context, pageHTML, sourceURL string) (*models.ScrapedRecipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.NewHostError(models.KindTimeout, "extraction canceled", sourceURL, err)
	}
	return schema.Extract(pageHTML, sourceURL)
}
