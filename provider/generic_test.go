package provider

import (
	"context"
	"testing"
)

func TestGenericProvider(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://blog.example": `<html><body>
			<a href="/recipes/lentil-soup">Soup</a>
			<a href="https://blog.example/2024/birthday-cake">Cake</a>
			<a href="https://other.example/recipes/stolen">Other host</a>
			<a href="/about">Too shallow</a>
		</body></html>`,
	}}
	p := NewGeneric("https://blog.example", fetcher, nil)

	categories, err := p.DiscoverCategoryURLs(context.Background())
	if err != nil {
		t.Fatalf("DiscoverCategoryURLs failed: %v", err)
	}
	if len(categories) != 1 || categories[0] != "https://blog.example" {
		t.Errorf("categories = %v, want the site itself", categories)
	}

	links, err := p.ExtractRecipeLinks(context.Background(), categories[0])
	if err != nil {
		t.Fatalf("ExtractRecipeLinks failed: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2 (same host, deep enough): %+v", len(links), links)
	}
	if links[0].Title != "Lentil soup" {
		t.Errorf("title 0 = %q", links[0].Title)
	}

	if langs := p.SupportedLanguages(); len(langs) != 1 || langs[0] != "*" {
		t.Errorf("languages = %v, want the all-locales wildcard", langs)
	}
	if p.Name() != "blog.example" {
		t.Errorf("name = %q", p.Name())
	}
}

// The generic adapter serves any locale the registry is asked for.
func TestGenericProvider_AllLocales(t *testing.T) {
	registry := NewRegistry(NewGeneric("https://blog.example", &fakeFetcher{}, nil))
	for _, locale := range []string{"en", "fr-FR", "ja"} {
		if got := registry.GetAvailableProviders(locale); len(got) != 1 {
			t.Errorf("locale %q: %d providers, want 1", locale, len(got))
		}
	}
}
