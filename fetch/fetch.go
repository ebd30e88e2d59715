package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	tls "github.com/refraction-networking/utls"
	"github.com/use-agent/forage/config"
	"github.com/use-agent/forage/models"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Page is the result of a successful fetch.
type Page struct {
	HTML       string
	Title      string
	StatusCode int
	FinalURL   string
}

// Fetcher retrieves pages over plain HTTP with a Chrome-like TLS fingerprint.
// It is safe for concurrent use.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	maxBodyBytes int64
}

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// Replace h2 with http/1.1 only in the ALPN extension so the server
	// never negotiates HTTP/2 (which Go's http.Transport cannot handle
	// over a utls connection).
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// New creates a Fetcher from config. ALPN is locked to http/1.1 to avoid the
// HTTP/2 framing mismatch that occurs when utls negotiates h2 but Go's
// http.Transport only speaks h1.
func New(cfg config.FetchConfig) *Fetcher {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("fetch: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
	if cfg.Proxy != "" {
		if proxyURL, err := url.Parse(cfg.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		timeout:      cfg.Timeout,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
}

// Get fetches targetURL. The fetcher's own timeout and the caller's ctx both
// terminate the request: the deadline context derives from ctx, so external
// cancellation and the internal timeout share one abort path.
//
// Failures come back as *models.ScraperError with the host already
// normalized, so they can be surfaced to the user unchanged.
func (f *Fetcher) Get(ctx context.Context, targetURL string) (*Page, error) {
	ctx, cancel := f.Deadline(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, models.NewHostError(models.KindConnectionError, "invalid request URL", targetURL, err)
	}

	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,fr;q=0.8")
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, categorize(err, targetURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, categorize(err, targetURL)
	}

	if resp.StatusCode >= 400 {
		return nil, models.NewHostError(models.KindHTTPError,
			fmt.Sprintf("HTTP %d", resp.StatusCode), targetURL, nil)
	}

	html := string(body)
	return &Page{
		HTML:       html,
		Title:      ExtractTitle(html),
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
	}, nil
}

// Deadline derives a context bounded by the fetcher's timeout. Exposed so
// callers that fetch through other channels (the driven browser session)
// share the same combined timeout/cancel semantics.
func (f *Fetcher) Deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, f.timeout)
}

func categorize(err error, targetURL string) *models.ScraperError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewHostError(models.KindTimeout, "request timed out", targetURL, err)
	case errors.Is(err, context.Canceled):
		return models.NewHostError(models.KindTimeout, "request canceled", targetURL, err)
	default:
		return models.NewHostError(models.KindConnectionError, "request failed", targetURL, err)
	}
}
