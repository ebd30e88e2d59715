package provider

import (
	"strings"
)

// Registry holds the available providers in registration order.
type Registry struct {
	providers []Provider
}

// NewRegistry builds a registry over the given providers.
func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// DefaultRegistry wires the built-in site adapters.
func DefaultRegistry(fetcher PageFetcher, scraper Scraper, maxCategoryPages int) *Registry {
	return NewRegistry(
		NewHelloFresh(fetcher, scraper, maxCategoryPages),
		NewQuitoque(fetcher, scraper),
	)
}

// GetAvailableProviders lists providers serving the given locale. An empty
// locale lists everything. The result is a fresh slice each call, so
// callers can mutate it freely.
func (r *Registry) GetAvailableProviders(locale string) []Provider {
	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if locale == "" || supportsLocale(p, locale) {
			out = append(out, p)
		}
	}
	return out
}

// GetProvider looks up a provider by ID. Exact, case-sensitive match:
// provider IDs are protocol constants, not user input.
func (r *Registry) GetProvider(id string) (Provider, bool) {
	for _, p := range r.providers {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}

// HasProvider reports whether an ID is registered.
func (r *Registry) HasProvider(id string) bool {
	_, ok := r.GetProvider(id)
	return ok
}

// supportsLocale matches a BCP 47 tag against a provider's list. "fr"
// matches "fr-FR" and vice versa; "*" matches everything.
func supportsLocale(p Provider, locale string) bool {
	want := primarySubtag(locale)
	for _, lang := range p.SupportedLanguages() {
		if lang == "*" {
			return true
		}
		if strings.EqualFold(primarySubtag(lang), want) {
			return true
		}
	}
	return false
}

func primarySubtag(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		return tag[:i]
	}
	return tag
}
