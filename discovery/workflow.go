// Package discovery implements the bulk-import workflow: scan a provider's
// category pages for recipe candidates, let the user pick, then parse the
// picks one by one into normalized recipes.
package discovery

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/use-agent/forage/catalog"
	"github.com/use-agent/forage/config"
	"github.com/use-agent/forage/convert"
	"github.com/use-agent/forage/models"
	prov "github.com/use-agent/forage/provider"
	"golang.org/x/time/rate"
)

// ErrNotSelecting rejects Parse calls outside the selecting phase: parsing
// before discovery finished, or replaying a parse that already ran.
var ErrNotSelecting = errors.New("workflow is not in the selecting phase")

// Phase is the workflow lifecycle state. Transitions only move forward:
// discovering → selecting → parsing → done|error.
type Phase string

const (
	PhaseDiscovering Phase = "discovering"
	PhaseSelecting   Phase = "selecting"
	PhaseParsing     Phase = "parsing"
	PhaseDone        Phase = "done"
	PhaseError       Phase = "error"
)

// ProgressFunc receives discovery progress snapshots. Called from the
// discovery goroutine; implementations must not call back into the
// workflow.
type ProgressFunc func(models.DiscoveryProgress)

// ParseProgressFunc receives one update per recipe attempted.
type ParseProgressFunc func(models.ParsingProgress)

// Workflow is one discovery session against one provider. Safe for
// concurrent use: the HTTP layer reads snapshots and flips selections
// while the discovery goroutine appends.
type Workflow struct {
	provider     prov.Provider
	limiter      *rate.Limiter
	imageWorkers int

	mu        sync.Mutex
	phase     Phase
	recipes   []models.DiscoveredRecipe
	selected  map[string]bool
	failed    []models.FailedRecipe
	converted []*models.ConvertedRecipe
	catalog   *catalog.Catalog
	lastErr   error

	cancel context.CancelFunc
	images sync.WaitGroup
}

// Snapshot is the read-only state handed to the HTTP layer.
type Snapshot struct {
	Phase     Phase                     `json:"phase"`
	Recipes   []models.DiscoveredRecipe `json:"recipes"`
	Selected  []string                  `json:"selected"`
	Failed    []models.FailedRecipe     `json:"failed_recipes"`
	Converted []*models.ConvertedRecipe `json:"converted,omitempty"`
	Error     string                    `json:"error,omitempty"`
}

// NewWorkflow creates a workflow over p. The rate limiter throttles every
// page fetch the workflow makes, including image resolution.
func NewWorkflow(p prov.Provider, cfg config.DiscoveryConfig) *Workflow {
	workers := cfg.ImageWorkers
	if workers < 1 {
		workers = 1
	}
	return &Workflow{
		provider:     p,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		imageWorkers: workers,
		phase:        PhaseDiscovering,
		selected:     make(map[string]bool),
	}
}

// Discover scans the provider's categories, streaming progress after each
// category. Candidates are deduplicated by URL across categories. Returns
// once link discovery finishes; thumbnails keep resolving in the
// background and show up in later snapshots.
func (w *Workflow) Discover(ctx context.Context, onProgress ProgressFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	categories, err := w.provider.DiscoverCategoryURLs(ctx)
	if err != nil {
		return w.fail(err)
	}

	seen := make(map[string]struct{})
	for i, categoryURL := range categories {
		if err := w.limiter.Wait(ctx); err != nil {
			return w.fail(err)
		}

		links, err := w.provider.ExtractRecipeLinks(ctx, categoryURL)
		if err != nil {
			// One broken category page does not sink the scan.
			slog.Warn("category scan failed",
				"provider", w.provider.ID(), "url", categoryURL, "error", err)
		}

		w.mu.Lock()
		for _, link := range links {
			if _, dup := seen[link.URL]; dup {
				continue
			}
			seen[link.URL] = struct{}{}
			w.recipes = append(w.recipes, link)
		}
		progress := models.DiscoveryProgress{
			Phase:             string(PhaseDiscovering),
			RecipesFound:      len(w.recipes),
			CategoriesScanned: i + 1,
			TotalCategories:   len(categories),
			IsComplete:        i == len(categories)-1,
			Recipes:           append([]models.DiscoveredRecipe(nil), w.recipes...),
		}
		w.mu.Unlock()

		if onProgress != nil {
			onProgress(progress)
		}
	}

	if err := ctx.Err(); err != nil {
		return w.fail(err)
	}

	w.mu.Lock()
	w.phase = PhaseSelecting
	total := len(w.recipes)
	w.mu.Unlock()

	w.resolveImages(ctx)

	slog.Info("discovery complete", "provider", w.provider.ID(), "recipes", total)
	return nil
}

// resolveImages fills thumbnails in the background with a bounded worker
// pool. Failures leave the image empty; the candidate list is already
// usable without thumbnails.
func (w *Workflow) resolveImages(ctx context.Context) {
	w.mu.Lock()
	pending := make([]int, 0, len(w.recipes))
	for i, r := range w.recipes {
		if r.ImageURL == "" {
			pending = append(pending, i)
		}
	}
	w.mu.Unlock()

	jobs := make(chan int)
	for n := 0; n < w.imageWorkers; n++ {
		w.images.Add(1)
		go func() {
			defer w.images.Done()
			for i := range jobs {
				if w.limiter.Wait(ctx) != nil {
					return
				}
				w.mu.Lock()
				url := w.recipes[i].URL
				w.mu.Unlock()

				img, err := w.provider.FetchImageURL(ctx, url)
				if err != nil || img == "" {
					continue
				}
				w.mu.Lock()
				w.recipes[i].ImageURL = img
				w.mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, i := range pending {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()
}

// SelectRecipe marks a discovered recipe for parsing. False when the URL
// was never discovered.
func (w *Workflow) SelectRecipe(url string) bool {
	return w.setSelected(url, true)
}

// UnselectRecipe removes a recipe from the parse set.
func (w *Workflow) UnselectRecipe(url string) bool {
	return w.setSelected(url, false)
}

func (w *Workflow) setSelected(url string, on bool) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, r := range w.recipes {
		if r.URL == url {
			if on {
				w.selected[url] = true
			} else {
				delete(w.selected, url)
			}
			return true
		}
	}
	return false
}

// ToggleSelectAll is all-or-nothing: if every discovered recipe is already
// selected it clears the selection, otherwise it selects everything.
// Returns whether the set is now fully selected.
func (w *Workflow) ToggleSelectAll() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.recipes) > 0 && len(w.selected) == len(w.recipes) {
		w.selected = make(map[string]bool)
		return false
	}
	for _, r := range w.recipes {
		w.selected[r.URL] = true
	}
	return len(w.recipes) > 0
}

// UseCatalog sets the catalog converted recipes are resolved against
// during the parse phase (canonical ingredient/tag names, pending queue).
// Nil leaves recipes unresolved.
func (w *Workflow) UseCatalog(c *catalog.Catalog) {
	w.mu.Lock()
	w.catalog = c
	w.mu.Unlock()
}

// Parse fetches and converts every selected recipe, sequentially and in
// discovery order. Callable only from the selecting phase — a second call
// returns ErrNotSelecting instead of re-fetching the selection. Individual
// failures are recorded and skipped; the whole parse fails only when
// nothing at all could be parsed (models.ErrNoRecipesParsed) or the
// context was canceled.
func (w *Workflow) Parse(ctx context.Context, onProgress ParseProgressFunc) ([]*models.ConvertedRecipe, error) {
	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	if w.phase != PhaseSelecting {
		w.mu.Unlock()
		cancel()
		return nil, ErrNotSelecting
	}
	w.cancel = cancel
	w.phase = PhaseParsing
	var queue []models.DiscoveredRecipe
	for _, r := range w.recipes {
		if w.selected[r.URL] {
			queue = append(queue, r)
		}
	}
	w.mu.Unlock()

	for i, candidate := range queue {
		if err := ctx.Err(); err != nil {
			return nil, w.fail(err)
		}
		if err := w.limiter.Wait(ctx); err != nil {
			return nil, w.fail(err)
		}

		recipe, err := w.provider.FetchRecipe(ctx, candidate.URL)

		w.mu.Lock()
		if err != nil {
			w.failed = append(w.failed, models.FailedRecipe{
				URL:    candidate.URL,
				Title:  candidate.Title,
				Reason: models.AsScraperError(err).Message,
			})
		} else {
			converted := convert.Convert(recipe)
			if converted.ImageURL == "" {
				converted.ImageURL = candidate.ImageURL
			}
			if w.catalog != nil {
				w.catalog.Resolve(converted)
			}
			w.converted = append(w.converted, converted)
		}
		progress := models.ParsingProgress{
			Current:            i + 1,
			Total:              len(queue),
			CurrentRecipeTitle: candidate.Title,
			FailedRecipes:      append([]models.FailedRecipe(nil), w.failed...),
		}
		w.mu.Unlock()

		if onProgress != nil {
			onProgress(progress)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.converted) == 0 {
		w.phase = PhaseError
		w.lastErr = models.ErrNoRecipesParsed
		return nil, models.ErrNoRecipesParsed
	}
	w.phase = PhaseDone
	return append([]*models.ConvertedRecipe(nil), w.converted...), nil
}

// Abort cancels whatever the workflow is doing. Cooperative: in-flight
// fetches finish or fail on their own context.
func (w *Workflow) Abort() {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Snapshot returns a copy of the current state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	selected := make([]string, 0, len(w.selected))
	for _, r := range w.recipes {
		if w.selected[r.URL] {
			selected = append(selected, r.URL)
		}
	}

	snap := Snapshot{
		Phase:     w.phase,
		Recipes:   append([]models.DiscoveredRecipe(nil), w.recipes...),
		Selected:  selected,
		Failed:    append([]models.FailedRecipe(nil), w.failed...),
		Converted: append([]*models.ConvertedRecipe(nil), w.converted...),
	}
	if w.lastErr != nil {
		snap.Error = w.lastErr.Error()
	}
	return snap
}

func (w *Workflow) fail(err error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.phase = PhaseError
	w.lastErr = err
	return err
}
