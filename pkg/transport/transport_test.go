package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kithkit/kithkit/pkg/kiterr"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	fetcher := New()
	data, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Fetch() = %q, want %q", data, "hello")
	}
}

func TestHTTPFetcher_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := New()
	_, err := fetcher.Fetch(context.Background(), server.URL)
	if !kiterr.Is(err, kiterr.Fetch) {
		t.Errorf("Fetch() error = %v, want kiterr.Fetch", err)
	}
}

func TestHTTPFetcher_AsFetchFunc(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("via-fetchfunc"))
	}))
	defer server.Close()

	fn := New().AsFetchFunc()
	data, err := fn(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch func error = %v", err)
	}
	if string(data) != "via-fetchfunc" {
		t.Errorf("fetch func = %q, want %q", data, "via-fetchfunc")
	}
}
