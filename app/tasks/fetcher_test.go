package tasks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetcherHTTP(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		if r.URL.Path == "/missing.xml" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("<course/>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Course-Comb/test")

	data, err := fetcher.Fetch(context.Background(), server.URL+"/course.xml", 5*time.Second)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if string(data) != "<course/>" {
		t.Errorf("Unexpected body: %s", data)
	}
	if userAgent != "Course-Comb/test" {
		t.Errorf("Expected User-Agent to be sent, got '%s'", userAgent)
	}

	_, err = fetcher.Fetch(context.Background(), server.URL+"/missing.xml", 5*time.Second)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError, got: %v", err)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", fetchErr.StatusCode)
	}
}

func TestFetcherFile(t *testing.T) {
	dir := t.TempDir()
	fileURL := writeFile(t, dir, "course.xml", "<course><id>c1</id></course>")

	fetcher := NewFetcher(http.DefaultClient, "test")

	data, err := fetcher.Fetch(context.Background(), fileURL, 0)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if string(data) != "<course><id>c1</id></course>" {
		t.Errorf("Unexpected content: %s", data)
	}

	_, err = fetcher.Fetch(context.Background(), "file://"+dir+"/missing.xml", 0)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("Expected FetchError for missing file, got: %v", err)
	}
}

func TestFetcherUnsupportedScheme(t *testing.T) {
	fetcher := NewFetcher(http.DefaultClient, "test")

	_, err := fetcher.Fetch(context.Background(), "ftp://example.com/course.xml", 0)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("Expected FetchError, got: %v", err)
	}
}

func TestFetcherRejectsOversizedDocuments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/exact.xml" {
			w.Write([]byte(strings.Repeat("x", 16)))
			return
		}
		w.Write([]byte(strings.Repeat("x", 17)))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "test")
	fetcher.maxSize = 16

	data, err := fetcher.Fetch(context.Background(), server.URL+"/exact.xml", 5*time.Second)
	if err != nil {
		t.Fatalf("Expected document at the limit to be accepted, got: %v", err)
	}
	if len(data) != 16 {
		t.Errorf("Expected 16 bytes, got %d", len(data))
	}

	_, err = fetcher.Fetch(context.Background(), server.URL+"/large.xml", 5*time.Second)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError for oversized document, got: %v", err)
	}
	if !strings.Contains(err.Error(), "document too large") {
		t.Errorf("Unexpected error: %v", err)
	}

	fileURL := writeFile(t, t.TempDir(), "large.xml", strings.Repeat("x", 17))
	if _, err := fetcher.Fetch(context.Background(), fileURL, 0); !errors.As(err, &fetchErr) {
		t.Errorf("Expected FetchError for oversized file, got: %v", err)
	}
}
