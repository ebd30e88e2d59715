package runtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/forage/config"
	"github.com/use-agent/forage/models"
	"github.com/use-agent/forage/schema"
)

// resolveRecipeJS locates the schema block inside the sandboxed document and
// returns the Recipe object, so the interpreter does the same three-shape
// resolution as the built-in parser but against the live DOM.
const resolveRecipeJS = `() => {
	const isRecipe = (n) => {
		if (!n || typeof n !== 'object') return false;
		const t = n['@type'];
		return t === 'Recipe' || (Array.isArray(t) && t.includes('Recipe'));
	};
	for (const block of document.querySelectorAll('script[type="application/ld+json"]')) {
		let data;
		try { data = JSON.parse(block.textContent); } catch (e) { continue; }
		let recipe = null;
		if (isRecipe(data)) recipe = data;
		else if (data && Array.isArray(data['@graph'])) recipe = data['@graph'].find(isRecipe) || null;
		else if (Array.isArray(data)) recipe = data.find(isRecipe) || null;
		if (recipe) return JSON.stringify(recipe);
	}
	return "";
}`

// SandboxBackend evaluates extraction inside an embedded browser context.
// Initialization is asynchronous and takes seconds; readiness settles to
// Ready or Failed exactly once and a Failed backend is never retried for
// the rest of the session.
type SandboxBackend struct {
	state    atomic.Int32
	resolved chan struct{}

	mu      sync.Mutex
	browser *rod.Browser
}

// NewSandboxBackend starts browser initialization in the background and
// returns immediately in the NotReady state.
func NewSandboxBackend(cfg config.BrowserConfig) *SandboxBackend {
	sb := &SandboxBackend{resolved: make(chan struct{})}
	go sb.initialize(cfg)
	return sb
}

func (b *SandboxBackend) initialize(cfg config.BrowserConfig) {
	defer close(b.resolved)

	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		slog.Warn("sandbox backend failed to launch browser", "error", err)
		b.state.Store(int32(Failed))
		return
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		slog.Warn("sandbox backend failed to connect to browser", "error", err)
		b.state.Store(int32(Failed))
		return
	}

	b.mu.Lock()
	b.browser = browser
	b.mu.Unlock()
	b.state.Store(int32(Ready))
	slog.Info("sandbox backend ready", "controlURL", controlURL)
}

func (b *SandboxBackend) Name() string              { return "sandbox" }
func (b *SandboxBackend) Readiness() Readiness      { return Readiness(b.state.Load()) }
func (b *SandboxBackend) Resolved() <-chan struct{} { return b.resolved }

// SupportedHosts mirrors the rich backend's advisory list; the sandboxed
// interpreter runs the same resolution script for every host.
func (b *SandboxBackend) SupportedHosts() []string {
	if b.Readiness() != Ready {
		return nil
	}
	hosts := make([]string, len(richHosts))
	copy(hosts, richHosts)
	return hosts
}

func (b *SandboxBackend) Attempt(ctx context.Context, pageHTML, sourceURL string) (*models.ScrapedRecipe, error) {
	if b.Readiness() != Ready {
		return nil, models.NewHostError(models.KindException,
			"sandbox interpreter not ready", sourceURL, nil)
	}

	b.mu.Lock()
	browser := b.browser
	b.mu.Unlock()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewHostError(models.KindException,
			"failed to open sandbox page", sourceURL, err)
	}
	defer func() { _ = page.Close() }()

	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Debug("sandbox stealth injection failed", "error", err)
	}

	p := page.Context(ctx)
	if err := p.SetDocumentContent(pageHTML); err != nil {
		return nil, models.NewHostError(models.KindException,
			"failed to load markup into sandbox", sourceURL, err)
	}

	res, err := p.Eval(resolveRecipeJS)
	if err != nil {
		return nil, models.NewHostError(models.KindException,
			"sandbox evaluation failed", sourceURL, err)
	}

	raw := res.Value.Str()
	if raw == "" {
		return nil, models.NewHostError(models.KindNoRecipeFound,
			"no recipe found in page", sourceURL, nil)
	}
	if !json.Valid([]byte(raw)) {
		return nil, models.NewHostError(models.KindNoRecipeFound,
			"sandbox returned malformed recipe payload", sourceURL, nil)
	}

	return schema.FromJSON(raw, sourceURL)
}

// Close tears down the embedded browser. Safe to call regardless of state.
func (b *SandboxBackend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser != nil {
		_ = b.browser.Close()
		b.browser = nil
	}
}
