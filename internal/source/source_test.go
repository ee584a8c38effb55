package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestFetchHTTP verifies the happy path against a local server.
func TestFetchHTTP(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("a,b\n1,2\n"))
	}))
	defer srv.Close()

	f := &Fetcher{Timeout: 5 * time.Second}
	got, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(got) != "a,b\n1,2\n" {
		t.Fatalf("body = %q", got)
	}
}

// TestFetchHTTPStatus verifies that a non-2xx response is an *IOError: the
// pipeline must fail the run rather than try to parse an error page.
func TestFetchHTTPStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := &Fetcher{Timeout: 5 * time.Second}
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("error = %T, want *IOError", err)
	}
}

// TestFetchTimeout verifies that a hung server surfaces as *IOError once the
// configured timeout expires, not as a hang.
func TestFetchTimeout(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	f := &Fetcher{Timeout: 50 * time.Millisecond}
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("error = %T, want *IOError", err)
	}
}

// TestFetchFile verifies both file:// URLs and bare paths, the shapes tests
// and fixtures use.
func TestFetchFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "extract.csv")
	if err := os.WriteFile(path, []byte("x\n1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := &Fetcher{}
	for _, url := range []string{path, "file://" + path} {
		got, err := f.Fetch(context.Background(), url)
		if err != nil {
			t.Fatalf("Fetch(%q): %v", url, err)
		}
		if string(got) != "x\n1\n" {
			t.Fatalf("Fetch(%q) = %q", url, got)
		}
	}

	if _, err := f.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
