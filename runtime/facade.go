package runtime

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/use-agent/forage/models"
)

// Facade routes extraction attempts across the built-in parser and an
// optional specialized backend, following a fixed policy:
//
//   - specialized backend ready → prefer it; on failure fall back to the
//     built-in parser; if that also fails, the built-in parser's error is
//     the one surfaced (the richer backend's failure is never shown to the
//     user when the simple backend's answer is no better).
//   - specialized backend still initializing and the built-in parser found
//     nothing → wait (bounded by ctx) for readiness to settle and retry
//     once. Best-effort, not a hard wait.
//   - specialized backend failed permanently → never attempted again.
//
// Construct one per composition root and pass it by reference; there is no
// package-level instance.
type Facade struct {
	builtin Backend
	spec    SpecializedBackend // nil when no specialized backend exists
}

// NewFacade creates a facade. spec may be nil.
func NewFacade(builtin Backend, spec SpecializedBackend) *Facade {
	return &Facade{builtin: builtin, spec: spec}
}

// Scrape extracts a recipe from markup, returning the recipe and the name
// of the backend that produced it.
func (f *Facade) Scrape(ctx context.Context, pageHTML, sourceURL string) (*models.ScrapedRecipe, string, error) {
	if f.spec != nil && f.spec.Readiness() == Ready {
		if recipe, err := f.spec.Attempt(ctx, pageHTML, sourceURL); err == nil {
			return recipe, f.spec.Name(), nil
		} else {
			slog.Debug("specialized backend failed, falling back to builtin",
				"backend", f.spec.Name(), "url", sourceURL, "error", err)
		}
		recipe, err := f.builtin.Attempt(ctx, pageHTML, sourceURL)
		if err != nil {
			return nil, "", err
		}
		return recipe, f.builtin.Name(), nil
	}

	recipe, builtinErr := f.builtin.Attempt(ctx, pageHTML, sourceURL)
	if builtinErr == nil {
		return recipe, f.builtin.Name(), nil
	}

	// Second chance: the specialized backend may still be warming up.
	if f.spec != nil && f.spec.Readiness() == NotReady {
		select {
		case <-f.spec.Resolved():
			if f.spec.Readiness() == Ready {
				if recipe, err := f.spec.Attempt(ctx, pageHTML, sourceURL); err == nil {
					return recipe, f.spec.Name(), nil
				}
			}
		case <-ctx.Done():
		}
	}

	return nil, "", builtinErr
}

// WaitForReady blocks until the specialized backend's readiness settles, up
// to timeout. Returns true only when a specialized backend ended up Ready;
// it never returns an error — timeout and permanent failure are both false.
func (f *Facade) WaitForReady(timeout time.Duration) bool {
	if f.spec == nil {
		return false
	}
	if f.spec.Readiness() == Ready {
		return true
	}
	select {
	case <-f.spec.Resolved():
		return f.spec.Readiness() == Ready
	case <-time.After(timeout):
		return false
	}
}

// GetSupportedHosts returns the specialized backend's advisory host list,
// or an empty list when no specialized backend is ready.
func (f *Facade) GetSupportedHosts() []string {
	if f.spec == nil || f.spec.Readiness() != Ready {
		return []string{}
	}
	return f.spec.SupportedHosts()
}

// IsHostSupported reports whether host is on the advisory list. Degrades to
// false when no specialized backend is ready; unknown hosts are still
// attempted via the built-in parser.
func (f *Facade) IsHostSupported(host string) bool {
	normalized := models.NormalizeHost(host)
	for _, h := range f.GetSupportedHosts() {
		if strings.EqualFold(h, normalized) {
			return true
		}
	}
	return false
}
