package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestFetch(t *testing.T) {
	csvBody := validHeader + "6,148,72,35,0,33.6,0.627,50,1\n"

	t.Run("downloads and writes file", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(csvBody))
		}))
		defer srv.Close()

		dest := filepath.Join(t.TempDir(), "sub", "data.csv")
		if err := Fetch(context.Background(), srv.URL, dest); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := os.ReadFile(dest)
		if err != nil {
			t.Fatalf("failed to read fetched file: %v", err)
		}
		if string(got) != csvBody {
			t.Errorf("Expected fetched body %q, got %q", csvBody, string(got))
		}
	})

	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		dest := filepath.Join(t.TempDir(), "data.csv")
		if err := Fetch(context.Background(), srv.URL, dest); err == nil {
			t.Error("Expected error for 404 response")
		}
		if _, err := os.Stat(dest); !os.IsNotExist(err) {
			t.Error("Expected no file to be written on failure")
		}
	})
}
