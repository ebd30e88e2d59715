package discovery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/use-agent/forage/catalog"
	"github.com/use-agent/forage/config"
	"github.com/use-agent/forage/models"
)

// fakeProvider is a scripted site adapter.
type fakeProvider struct {
	categories []string
	links      map[string][]models.DiscoveredRecipe
	images     map[string]string
	failURLs   map[string]bool
	blocking   bool

	mu      sync.Mutex
	fetched []string
}

func (p *fakeProvider) ID() string                   { return "fake" }
func (p *fakeProvider) Name() string                 { return "Fake" }
func (p *fakeProvider) LogoURL() string              { return "" }
func (p *fakeProvider) BaseURL() string              { return "https://fake.example" }
func (p *fakeProvider) RequiresAuth() bool           { return false }
func (p *fakeProvider) SupportedLanguages() []string { return []string{"*"} }

func (p *fakeProvider) DiscoverCategoryURLs(ctx context.Context) ([]string, error) {
	return p.categories, nil
}

func (p *fakeProvider) ExtractRecipeLinks(ctx context.Context, categoryURL string) ([]models.DiscoveredRecipe, error) {
	return p.links[categoryURL], nil
}

func (p *fakeProvider) FetchImageURL(ctx context.Context, recipeURL string) (string, error) {
	return p.images[recipeURL], nil
}

func (p *fakeProvider) FetchRecipe(ctx context.Context, recipeURL string) (*models.ScrapedRecipe, error) {
	if p.blocking {
		<-ctx.Done()
		return nil, models.NewHostError(models.KindTimeout, "canceled", recipeURL, ctx.Err())
	}

	p.mu.Lock()
	p.fetched = append(p.fetched, recipeURL)
	p.mu.Unlock()

	if p.failURLs[recipeURL] {
		return nil, models.NewHostError(models.KindNoSchemaFound, "no recipe schema found in page", recipeURL, nil)
	}
	return &models.ScrapedRecipe{
		Title:        "Recipe at " + recipeURL,
		Ingredients:  []string{"200g flour", "2 eggs"},
		Instructions: "Mix.\nBake.",
		CanonicalURL: recipeURL,
		Host:         "fake.example",
	}, nil
}

func candidate(n int) models.DiscoveredRecipe {
	return models.DiscoveredRecipe{
		URL:   fmt.Sprintf("https://fake.example/recipes/r-%d", n),
		Title: fmt.Sprintf("Recipe %d", n),
	}
}

func testConfig() config.DiscoveryConfig {
	return config.DiscoveryConfig{
		RequestsPerSecond: 1000, // tests should not wait on politeness
		MaxCategoryPages:  10,
		ImageWorkers:      2,
	}
}

func TestDiscover_DeduplicatesAcrossCategories(t *testing.T) {
	p := &fakeProvider{
		categories: []string{"cat1", "cat2"},
		links: map[string][]models.DiscoveredRecipe{
			"cat1": {candidate(1), candidate(2)},
			"cat2": {candidate(2), candidate(3)}, // 2 repeats
		},
	}
	w := NewWorkflow(p, testConfig())

	var updates []models.DiscoveryProgress
	if err := w.Discover(context.Background(), func(pr models.DiscoveryProgress) {
		updates = append(updates, pr)
	}); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	snap := w.Snapshot()
	if snap.Phase != PhaseSelecting {
		t.Errorf("phase = %q, want selecting", snap.Phase)
	}
	if len(snap.Recipes) != 3 {
		t.Fatalf("got %d recipes, want 3 after dedup", len(snap.Recipes))
	}

	if len(updates) != 2 {
		t.Fatalf("got %d progress updates, want one per category", len(updates))
	}
	if updates[0].RecipesFound != 2 || updates[0].IsComplete {
		t.Errorf("first update = %+v", updates[0])
	}
	last := updates[len(updates)-1]
	if last.RecipesFound != 3 || !last.IsComplete {
		t.Errorf("last update = %+v", last)
	}
}

func TestDiscover_ResolvesImagesInBackground(t *testing.T) {
	p := &fakeProvider{
		categories: []string{"cat"},
		links: map[string][]models.DiscoveredRecipe{
			"cat": {candidate(1), candidate(2)},
		},
		images: map[string]string{
			candidate(1).URL: "https://cdn.fake.example/1.jpg",
			candidate(2).URL: "https://cdn.fake.example/2.jpg",
		},
	}
	w := NewWorkflow(p, testConfig())

	if err := w.Discover(context.Background(), nil); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	w.images.Wait()

	for _, r := range w.Snapshot().Recipes {
		if r.ImageURL == "" {
			t.Errorf("image not resolved for %s", r.URL)
		}
	}
}

func TestToggleSelectAll(t *testing.T) {
	p := &fakeProvider{
		categories: []string{"cat"},
		links: map[string][]models.DiscoveredRecipe{
			"cat": {candidate(1), candidate(2), candidate(3)},
		},
	}
	w := NewWorkflow(p, testConfig())
	if err := w.Discover(context.Background(), nil); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if !w.SelectRecipe(candidate(1).URL) {
		t.Fatal("select of a discovered recipe failed")
	}
	if w.SelectRecipe("https://fake.example/recipes/never-discovered") {
		t.Error("select of an undiscovered recipe succeeded")
	}

	// Partial selection → toggle selects everything.
	if !w.ToggleSelectAll() {
		t.Error("toggle from partial selection should select all")
	}
	if got := len(w.Snapshot().Selected); got != 3 {
		t.Errorf("selected = %d, want 3", got)
	}

	// Full selection → toggle clears.
	if w.ToggleSelectAll() {
		t.Error("toggle from full selection should clear")
	}
	if got := len(w.Snapshot().Selected); got != 0 {
		t.Errorf("selected = %d, want 0", got)
	}
}

func TestParse_AccumulatesFailures(t *testing.T) {
	p := &fakeProvider{
		categories: []string{"cat"},
		links: map[string][]models.DiscoveredRecipe{
			"cat": {candidate(1), candidate(2), candidate(3), candidate(4), candidate(5)},
		},
		failURLs: map[string]bool{candidate(3).URL: true},
	}
	w := NewWorkflow(p, testConfig())
	if err := w.Discover(context.Background(), nil); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	w.ToggleSelectAll()

	var updates []models.ParsingProgress
	converted, err := w.Parse(context.Background(), func(pr models.ParsingProgress) {
		updates = append(updates, pr)
	})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(converted) != 4 {
		t.Errorf("converted = %d, want 4", len(converted))
	}
	snap := w.Snapshot()
	if snap.Phase != PhaseDone {
		t.Errorf("phase = %q, want done", snap.Phase)
	}
	if len(snap.Failed) != 1 || snap.Failed[0].URL != candidate(3).URL {
		t.Errorf("failed = %+v", snap.Failed)
	}
	if snap.Failed[0].Reason != "no recipe schema found in page" {
		t.Errorf("failure reason = %q", snap.Failed[0].Reason)
	}

	if len(updates) != 5 {
		t.Fatalf("got %d parse updates, want 5", len(updates))
	}
	final := updates[len(updates)-1]
	if final.Current != 5 || final.Total != 5 || len(final.FailedRecipes) != 1 {
		t.Errorf("final update = %+v", final)
	}

	// Converted recipes carry the pipeline output, not raw scrapes.
	if len(converted[0].Ingredients) != 2 || converted[0].Ingredients[0].Name != "flour" {
		t.Errorf("conversion missing: %+v", converted[0].Ingredients)
	}
}

// A second parse must not replay the selection: no re-fetching, no
// duplicated results.
func TestParse_SecondCallRejected(t *testing.T) {
	p := &fakeProvider{
		categories: []string{"cat"},
		links: map[string][]models.DiscoveredRecipe{
			"cat": {candidate(1), candidate(2)},
		},
	}
	w := NewWorkflow(p, testConfig())
	if err := w.Discover(context.Background(), nil); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	w.ToggleSelectAll()

	first, err := w.Parse(context.Background(), nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("converted = %d, want 2", len(first))
	}

	if _, err := w.Parse(context.Background(), nil); !errors.Is(err, ErrNotSelecting) {
		t.Fatalf("second parse error = %v, want ErrNotSelecting", err)
	}

	p.mu.Lock()
	fetches := len(p.fetched)
	p.mu.Unlock()
	if fetches != 2 {
		t.Errorf("fetched %d times, want 2 (no re-fetch)", fetches)
	}
	snap := w.Snapshot()
	if snap.Phase != PhaseDone || len(snap.Converted) != 2 {
		t.Errorf("phase = %q, converted = %d after rejected replay", snap.Phase, len(snap.Converted))
	}
}

func TestParse_BeforeDiscoveryRejected(t *testing.T) {
	w := NewWorkflow(&fakeProvider{}, testConfig())
	if _, err := w.Parse(context.Background(), nil); !errors.Is(err, ErrNotSelecting) {
		t.Fatalf("parse during discovering error = %v, want ErrNotSelecting", err)
	}
}

// With a catalog set, parsed recipes come back resolved: canonical names
// for exact matches, the rest queued for validation.
func TestParse_ResolvesAgainstCatalog(t *testing.T) {
	p := &fakeProvider{
		categories: []string{"cat"},
		links: map[string][]models.DiscoveredRecipe{
			"cat": {candidate(1)},
		},
	}
	w := NewWorkflow(p, testConfig())
	if err := w.Discover(context.Background(), nil); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	w.ToggleSelectAll()
	w.UseCatalog(catalog.New([]string{"Flour"}, nil))

	converted, err := w.Parse(context.Background(), nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	r := converted[0]
	if r.Ingredients[0].Name != "Flour" {
		t.Errorf("ingredient 0 = %+v, want canonical casing", r.Ingredients[0])
	}
	if len(r.PendingIngredients) != 1 || r.PendingIngredients[0].Ingredient.Name != "eggs" {
		t.Errorf("pending = %+v", r.PendingIngredients)
	}
}

func TestParse_AllFailed(t *testing.T) {
	p := &fakeProvider{
		categories: []string{"cat"},
		links: map[string][]models.DiscoveredRecipe{
			"cat": {candidate(1), candidate(2)},
		},
		failURLs: map[string]bool{candidate(1).URL: true, candidate(2).URL: true},
	}
	w := NewWorkflow(p, testConfig())
	if err := w.Discover(context.Background(), nil); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	w.ToggleSelectAll()

	_, err := w.Parse(context.Background(), nil)
	if !errors.Is(err, models.ErrNoRecipesParsed) {
		t.Fatalf("err = %v, want ErrNoRecipesParsed", err)
	}
	if w.Snapshot().Phase != PhaseError {
		t.Errorf("phase = %q, want error", w.Snapshot().Phase)
	}
}

func TestAbort_CancelsParse(t *testing.T) {
	p := &fakeProvider{
		categories: []string{"cat"},
		links: map[string][]models.DiscoveredRecipe{
			"cat": {candidate(1)},
		},
		blocking: true,
	}
	w := NewWorkflow(p, testConfig())
	if err := w.Discover(context.Background(), nil); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	w.ToggleSelectAll()

	done := make(chan error, 1)
	go func() {
		_, err := w.Parse(context.Background(), nil)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	w.Abort()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("aborted parse returned no error")
		}
	case <-time.After(time.Second):
		t.Fatal("parse did not stop after Abort")
	}
}
