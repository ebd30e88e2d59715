package authbridge

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/forage/config"
	"github.com/ysmood/gson"
)

// rodSession drives a real browser page for one authentication flow. The
// injected script reaches the bridge through the exposed __foragePost
// binding; page load events come from the devtools event stream.
type rodSession struct {
	browser *rod.Browser
	page    *rod.Page
	events  chan Event

	closeOnce sync.Once
}

// NewRodSessionFactory returns a SessionFactory that launches one browser
// per flow. Flows are rare and single-flight, so the launch cost is
// preferable to keeping a logged-in browser alive between flows.
func NewRodSessionFactory(cfg config.BrowserConfig) SessionFactory {
	return func(ctx context.Context) (Session, error) {
		l := launcher.New().
			Headless(cfg.Headless).
			NoSandbox(cfg.NoSandbox)
		if cfg.Bin != "" {
			l = l.Bin(cfg.Bin)
		}

		controlURL, err := l.Launch()
		if err != nil {
			return nil, err
		}

		browser := rod.New().ControlURL(controlURL).Context(ctx)
		if err := browser.Connect(); err != nil {
			return nil, err
		}

		page, err := browser.Page(proto.TargetCreateTarget{})
		if err != nil {
			_ = browser.Close()
			return nil, err
		}

		// Login pages bot-check harder than recipe pages do.
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Debug("bridge stealth injection failed", "error", err)
		}

		s := &rodSession{
			browser: browser,
			page:    page,
			events:  make(chan Event, 16),
		}

		if _, err := page.Expose("__foragePost", s.onMessage); err != nil {
			_ = browser.Close()
			return nil, err
		}

		go s.pumpLoads()
		return s, nil
	}
}

func (s *rodSession) onMessage(payload gson.JSON) (interface{}, error) {
	s.send(Event{Kind: "message", Payload: payload})
	return nil, nil
}

// pumpLoads forwards page load events until the page closes.
func (s *rodSession) pumpLoads() {
	wait := s.page.EachEvent(func(e *proto.PageLoadEventFired) {
		info, err := s.page.Info()
		if err != nil {
			s.send(Event{Kind: "error", Description: err.Error()})
			return
		}
		s.send(Event{Kind: "load", URL: info.URL})
	})
	wait()
	s.Close()
}

// send never blocks: a stalled bridge must not wedge the devtools event
// loop, so excess events are dropped.
func (s *rodSession) send(ev Event) {
	defer func() { recover() }() // events may already be closed
	select {
	case s.events <- ev:
	default:
	}
}

func (s *rodSession) Navigate(url string) error {
	return s.page.Navigate(url)
}

func (s *rodSession) Inject(script string) error {
	_, err := s.page.Eval(script)
	return err
}

func (s *rodSession) Events() <-chan Event { return s.events }

func (s *rodSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.browser.Close()
		close(s.events)
	})
	return err
}
