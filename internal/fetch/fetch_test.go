// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/commentary-engine/pkg/types"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{"https ok", "https://example.com/page", nil},
		{"http ok", "http://example.com", nil},
		{"bare host", "www.example.com/page", ErrMissingScheme},
		{"empty", "", ErrMissingScheme},
		{"ftp rejected", "ftp://example.com/file", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ValidateURL(%q) = %v, want %v", tt.url, err, tt.wantErr)
				}
			case tt.name == "ftp rejected":
				if err == nil {
					t.Errorf("ValidateURL(%q) = nil, want error", tt.url)
				}
			default:
				if err != nil {
					t.Errorf("ValidateURL(%q) = %v", tt.url, err)
				}
			}
		})
	}
}

func TestHTTPFetcherFetch(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body><p>hello world</p></body></html>"))
	}))
	defer ts.Close()

	f := NewHTTPFetcher(types.HTTPConfig{})
	html, note, err := f.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if note != "http" {
		t.Errorf("note = %q, want http", note)
	}
	if !strings.Contains(html, "hello world") {
		t.Errorf("html = %q", html)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("user agent = %q", gotUA)
	}
}

func TestHTTPFetcherDecodesCharset(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// 0xE9 is e-acute in Latin-1.
		w.Write([]byte{'c', 'a', 'f', 0xE9})
	}))
	defer ts.Close()

	f := NewHTTPFetcher(types.HTTPConfig{})
	html, _, err := f.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if html != "café" {
		t.Errorf("html = %q, want %q", html, "café")
	}
}

func TestHTTPFetcherBlocked(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	f := NewHTTPFetcher(types.HTTPConfig{})
	_, _, err := f.Fetch(context.Background(), ts.URL)
	if !errors.Is(err, ErrBlocked) {
		t.Errorf("err = %v, want ErrBlocked", err)
	}
}

func TestHTTPFetcherNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	f := NewHTTPFetcher(types.HTTPConfig{})
	_, _, err := f.Fetch(context.Background(), ts.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if errors.Is(err, ErrBlocked) {
		t.Errorf("404 classified as blocked: %v", err)
	}
}

// fakeBrowser stands in for the headless browser in fallback tests.
type fakeBrowser struct {
	html string
	err  error
}

func (f *fakeBrowser) Fetch(ctx context.Context, pageURL string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return f.html, "browser", nil
}

func TestAutoFetcherFallsBackWhenBlocked(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	f := &AutoFetcher{
		HTTP:    NewHTTPFetcher(types.HTTPConfig{}),
		Browser: &fakeBrowser{html: "<html>rendered</html>"},
	}
	html, note, err := f.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if note != "browser" {
		t.Errorf("note = %q, want browser", note)
	}
	if html != "<html>rendered</html>" {
		t.Errorf("html = %q", html)
	}
}

func TestAutoFetcherNoFallbackOnHardErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	browser := &fakeBrowser{html: "should not be used"}
	f := &AutoFetcher{HTTP: NewHTTPFetcher(types.HTTPConfig{}), Browser: browser}

	_, _, err := f.Fetch(context.Background(), ts.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestAutoFetcherBrowserFailureKeepsBlocked(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	f := &AutoFetcher{
		HTTP:    NewHTTPFetcher(types.HTTPConfig{}),
		Browser: &fakeBrowser{err: errors.New("no chromium")},
	}
	_, _, err := f.Fetch(context.Background(), ts.URL)
	if !errors.Is(err, ErrBlocked) {
		t.Errorf("err = %v, want ErrBlocked", err)
	}
}

func TestNewStrategies(t *testing.T) {
	if _, err := New("teleport", types.HTTPConfig{}); err == nil {
		t.Error("invalid strategy accepted")
	}

	f, err := New(types.FetchHTTP, types.HTTPConfig{})
	if err != nil {
		t.Fatalf("New(http): %v", err)
	}
	if _, ok := f.(*HTTPFetcher); !ok {
		t.Errorf("New(http) = %T, want *HTTPFetcher", f)
	}

	f, err = New("", types.HTTPConfig{})
	if err != nil {
		t.Fatalf("New(auto): %v", err)
	}
	if _, ok := f.(*AutoFetcher); !ok {
		t.Errorf("New(\"\") = %T, want *AutoFetcher", f)
	}
}
