package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/use-agent/forage/config"
	"github.com/use-agent/forage/models"
)

func testFetcher(timeout time.Duration) *Fetcher {
	return New(config.FetchConfig{
		Timeout:      timeout,
		MaxBodyBytes: 10 << 20,
	})
}

func TestGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != chromeUA {
			t.Errorf("user agent = %q", ua)
		}
		w.Write([]byte("<html><head><title>Cake</title></head><body>ok</body></html>"))
	}))
	defer srv.Close()

	page, err := testFetcher(5*time.Second).Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if page.StatusCode != http.StatusOK {
		t.Errorf("status = %d", page.StatusCode)
	}
	if page.Title != "Cake" {
		t.Errorf("title = %q", page.Title)
	}
}

func TestGet_FollowsRedirects(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, srv.URL+"/new", http.StatusMovedPermanently)
			return
		}
		w.Write([]byte("<html><head><title>Moved</title></head></html>"))
	}))
	defer srv.Close()

	page, err := testFetcher(5*time.Second).Get(context.Background(), srv.URL+"/old")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if page.FinalURL != srv.URL+"/new" {
		t.Errorf("final URL = %q, want %q", page.FinalURL, srv.URL+"/new")
	}
}

func TestGet_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := testFetcher(5*time.Second).Get(context.Background(), srv.URL)
	se := models.AsScraperError(err)
	if se == nil || se.Kind != models.KindHTTPError {
		t.Fatalf("kind = %v, want HttpError", se)
	}
}

func TestGet_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := testFetcher(50*time.Millisecond).Get(context.Background(), srv.URL)
	se := models.AsScraperError(err)
	if se == nil || se.Kind != models.KindTimeout {
		t.Fatalf("kind = %v, want Timeout", se)
	}
}

func TestGet_CallerCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := testFetcher(5*time.Second).Get(ctx, srv.URL)
	se := models.AsScraperError(err)
	if se == nil || se.Kind != models.KindTimeout {
		t.Fatalf("kind = %v, want Timeout", se)
	}
}

func TestGet_ConnectionRefused(t *testing.T) {
	// Reserved port with nothing listening.
	_, err := testFetcher(2*time.Second).Get(context.Background(), "http://127.0.0.1:1")
	se := models.AsScraperError(err)
	if se == nil || se.Kind != models.KindConnectionError {
		t.Fatalf("kind = %v, want ConnectionError", se)
	}
}
