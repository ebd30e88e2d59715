package runtime

import (
	"context"
	nurl "net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	readability "github.com/go-shiori/go-readability"
	"github.com/use-agent/forage/models"
	"github.com/use-agent/forage/schema"
)

// richHosts are sites the rich backend has been validated against. Advisory
// only; the backend attempts any host.
var richHosts = []string{
	"hellofresh.com",
	"hellofresh.fr",
	"quitoque.fr",
	"marmiton.org",
	"allrecipes.com",
	"bbcgoodfood.com",
	"seriouseats.com",
}

// RichBackend fills the "native specialized interpreter" slot: the schema
// parser augmented with readability heuristics for fields the schema block
// omits. Ready as soon as it is constructed.
type RichBackend struct {
	md       *converter.Converter
	resolved chan struct{}
}

// NewRichBackend creates the rich backend. The markdown converter strips
// script/style/head noise so instruction HTML becomes plain text.
func NewRichBackend() *RichBackend {
	resolved := make(chan struct{})
	close(resolved)
	return &RichBackend{
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
		resolved: resolved,
	}
}

func (b *RichBackend) Name() string              { return "rich" }
func (b *RichBackend) Readiness() Readiness      { return Ready }
func (b *RichBackend) Resolved() <-chan struct{} { return b.resolved }
func (b *RichBackend) SupportedHosts() []string {
	hosts := make([]string, len(richHosts))
	copy(hosts, richHosts)
	return hosts
}

func (b *RichBackend) Attempt(ctx context.Context, pageHTML, sourceURL string) (*models.ScrapedRecipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.NewHostError(models.KindTimeout, "extraction canceled", sourceURL, err)
	}

	recipe, err := schema.Extract(pageHTML, sourceURL)
	if err != nil {
		// This backend looked with heuristics and found nothing usable.
		return nil, models.NewHostError(models.KindNoRecipeFound,
			"no recipe found in page", sourceURL, err)
	}

	b.enrich(recipe, pageHTML, sourceURL)
	return recipe, nil
}

// enrich fills description and instructions from the readability article
// when the schema block left them empty. Best-effort: readability failures
// never degrade the schema result.
func (b *RichBackend) enrich(recipe *models.ScrapedRecipe, pageHTML, sourceURL string) {
	if recipe.Description != "" && (recipe.Instructions != "" || len(recipe.InstructionsList) > 0) {
		return
	}

	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		return
	}
	article, err := readability.FromReader(strings.NewReader(pageHTML), parsedURL)
	if err != nil {
		return
	}

	if recipe.Description == "" {
		recipe.Description = schema.CleanDescription(
			strings.TrimSpace(article.Excerpt), recipe.AllIngredients())
	}

	if recipe.Instructions == "" && len(recipe.InstructionsList) == 0 && article.Content != "" {
		if text, err := b.md.ConvertString(article.Content, converter.WithDomain(parsedURL.Host)); err == nil {
			recipe.Instructions = strings.TrimSpace(text)
		}
	}
}
