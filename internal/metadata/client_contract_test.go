package metadata

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestHTTPClientSmoke checks a live or mock OMDb endpoint when one is configured.
func TestHTTPClientSmoke(t *testing.T) {
	baseURL := os.Getenv("OMDB_URL")
	if baseURL == "" {
		t.Skip("OMDB_URL not provided")
	}
	client, err := NewHTTPClient(baseURL, os.Getenv("OMDB_API_KEY"), 3*time.Second)
	if err != nil {
		t.Fatalf("create http client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := client.Lookup(ctx, "tt1375666")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if result.Title == "" || result.Year == 0 {
		t.Fatalf("unexpected metadata payload: %+v", result)
	}
}
