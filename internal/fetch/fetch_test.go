package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func TestDownload(t *testing.T) {
	payload := []byte("%PDF-1.4 content")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	f := New(0, nil)
	path, err := f.Download(context.Background(), srv.URL+"/doc.pdf")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer os.Remove(path)

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(payload) {
		t.Errorf("downloaded %q, want %q", got, payload)
	}
}

func TestDownloadNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := New(0, nil).Download(context.Background(), srv.URL); err == nil {
		t.Error("expected error on 404")
	}
}

func TestDownloadBadURL(t *testing.T) {
	if _, err := New(0, nil).Download(context.Background(), "http://127.0.0.1:1/nothing"); err == nil {
		t.Error("expected connection error")
	}
}

func TestDownloadContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := New(0, nil).Download(ctx, srv.URL); err == nil {
		t.Error("expected context deadline error")
	}
}
