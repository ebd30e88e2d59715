package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		raw, want string
	}{
		{"https://www.HelloFresh.com/recipes/42", "hellofresh.com"},
		{"http://example.com:8080/path", "example.com"},
		{"www.quitoque.fr", "quitoque.fr"},
		{"Example.COM", "example.com"},
		{"  example.com  ", "example.com"},
	}
	for _, tt := range tests {
		if got := NormalizeHost(tt.raw); got != tt.want {
			t.Errorf("NormalizeHost(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestAsScraperError(t *testing.T) {
	if AsScraperError(nil) != nil {
		t.Error("nil error produced a ScraperError")
	}

	se := NewHostError(KindTimeout, "request timed out", "https://www.example.com/r", nil)
	wrapped := fmt.Errorf("scrape failed: %w", se)
	got := AsScraperError(wrapped)
	if got.Kind != KindTimeout || got.Host != "example.com" {
		t.Errorf("unwrapped = %+v", got)
	}

	// Foreign errors map to the catch-all kind.
	foreign := AsScraperError(errors.New("disk full"))
	if foreign.Kind != KindException || foreign.Message != "disk full" {
		t.Errorf("foreign = %+v", foreign)
	}
}
