// Package authbridge obtains authenticated HTML from sites that gate
// recipes behind a login, by driving a hidden embedded browsing session.
// Credentials never reach the extraction engine: the bridge hands back
// markup only.
package authbridge

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/use-agent/forage/models"
	"github.com/ysmood/gson"
)

// Event is one occurrence inside a driven session.
type Event struct {
	// Kind is "load", "message", or "error".
	Kind string

	// URL is set for load events: the URL the session finished loading.
	URL string

	// Payload is set for message events: the raw message posted by the
	// injected script.
	Payload gson.JSON

	// Description is set for error events.
	Description string
}

// Session is a driven browsing session. The production implementation is
// rod-backed (newRodSession); tests substitute a scripted fake.
type Session interface {
	Navigate(url string) error
	Inject(script string) error
	Events() <-chan Event
	Close() error
}

// SessionFactory opens a fresh session for one authentication flow.
type SessionFactory func(ctx context.Context) (Session, error)

// Bridge runs authentication flows against allow-listed hosts. Exactly one
// flow may be in flight at a time; a second concurrent call is rejected
// with models.ErrAuthFlowInFlight, never queued — queueing would let two
// pending logins swap credentials.
type Bridge struct {
	newSession SessionFactory

	mu        sync.Mutex
	active    bool
	loginURL  string
	destroyed bool
	destroyCh chan struct{}
}

// New creates a Bridge that opens sessions through factory.
func New(factory SessionFactory) *Bridge {
	return &Bridge{
		newSession: factory,
		destroyCh:  make(chan struct{}),
	}
}

// IsHostSupported reports whether host is on the static authentication
// allow-list. Case- and "www."-insensitive.
func (b *Bridge) IsHostSupported(host string) bool {
	_, ok := siteFor(host)
	return ok
}

// IsActive reports whether an authentication flow is currently running.
func (b *Bridge) IsActive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// CurrentLoginURL returns the login URL the driven session is expected to
// reach, or "" when no flow is active.
func (b *Bridge) CurrentLoginURL() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loginURL
}

// FetchAuthenticatedHTML logs into the target's provider and returns the
// authenticated markup of targetURL.
//
// Unsupported hosts are rejected before any session is created. The
// injected credential script is sent exactly once, when the loaded URL
// matches the expected login URL; repeated load events for the same URL do
// not re-inject. Destroy while a flow is pending rejects it with
// models.ErrBridgeDestroyed so callers can tell teardown from failure.
func (b *Bridge) FetchAuthenticatedHTML(ctx context.Context, targetURL, username, password string) (string, error) {
	site, ok := siteFor(targetURL)
	if !ok {
		return "", models.NewHostError(models.KindUnsupportedAuthSite,
			"authentication not supported for this site", targetURL, nil)
	}

	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		return "", models.ErrBridgeDestroyed
	}
	if b.active {
		b.mu.Unlock()
		return "", models.ErrAuthFlowInFlight
	}
	b.active = true
	b.loginURL = site.LoginURL
	destroyCh := b.destroyCh
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.active = false
		b.loginURL = ""
		b.mu.Unlock()
	}()

	session, err := b.newSession(ctx)
	if err != nil {
		return "", models.NewHostError(models.KindAuthFailed,
			"failed to open browsing session", targetURL, err)
	}
	defer func() { _ = session.Close() }()

	if err := session.Navigate(site.LoginURL); err != nil {
		return "", models.NewHostError(models.KindAuthFailed,
			fmt.Sprintf("WebView error: %v", err), targetURL, err)
	}

	return b.runFlow(ctx, session, site, targetURL, username, password, destroyCh)
}

func (b *Bridge) runFlow(ctx context.Context, session Session, site LoginSite,
	targetURL, username, password string, destroyCh <-chan struct{}) (string, error) {

	injected := false

	for {
		select {
		case <-ctx.Done():
			return "", models.NewHostError(models.KindTimeout,
				"authentication timed out", targetURL, ctx.Err())

		case <-destroyCh:
			return "", fmt.Errorf("authentication flow rejected: %w", models.ErrBridgeDestroyed)

		case ev, open := <-session.Events():
			if !open {
				return "", models.NewHostError(models.KindAuthFailed,
					"session closed before authentication completed", targetURL, nil)
			}

			switch ev.Kind {
			case "load":
				// Inject exactly once, only on the expected login URL.
				if !injected && normalizeURL(ev.URL) == normalizeURL(site.LoginURL) {
					injected = true
					script := site.Script(username, password, targetURL)
					if err := session.Inject(script); err != nil {
						return "", models.NewHostError(models.KindAuthFailed,
							"failed to inject login script", targetURL, err)
					}
				}

			case "message":
				if html, done, err := b.handleMessage(ev.Payload, targetURL); done {
					return html, err
				}

			case "error":
				return "", models.NewHostError(models.KindAuthFailed,
					fmt.Sprintf("WebView error: %s", ev.Description), targetURL, nil)
			}
		}
	}
}

// handleMessage interprets one message from the driven session. Only two
// shapes are meaningful; everything else is silently ignored.
func (b *Bridge) handleMessage(payload gson.JSON, targetURL string) (html string, done bool, err error) {
	obj, ok := payload.Val().(map[string]interface{})
	if !ok {
		return "", false, nil
	}

	switch t, _ := obj["type"].(string); t {
	case "authResult":
		if h, ok := obj["html"].(string); ok {
			return h, true, nil
		}
		return "", false, nil
	case "authError":
		msg, _ := obj["message"].(string)
		if msg == "" {
			msg = "authentication failed"
		}
		return "", true, models.NewHostError(models.KindAuthFailed, msg, targetURL, nil)
	}
	return "", false, nil
}

// Destroy tears down the bridge. A pending flow is rejected with
// models.ErrBridgeDestroyed; the bridge refuses further flows.
func (b *Bridge) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return
	}
	b.destroyed = true
	close(b.destroyCh)
}

// normalizeURL reduces a URL to scheme-insensitive host+path form so load
// events can be compared to the expected login URL by string equality.
func normalizeURL(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimSuffix(s, "/")
}
