package storage

import (
	"testing"
	"time"

	"github.com/aircargo-labs/awb-extractor/internal/extract"
)

func TestStoreRoundTrip(t *testing.T) {
	store := New()

	if _, exists := store.Get("missing"); exists {
		t.Error("Expected miss for unknown id")
	}

	result := &extract.Result{Provider: "gemini"}
	store.Set("run-1", result)

	entry, exists := store.Get("run-1")
	if !exists {
		t.Fatal("Expected stored entry")
	}
	if entry.Result != result {
		t.Error("Stored result does not match")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("Expected a creation timestamp")
	}

	store.Delete("run-1")
	if _, exists := store.Get("run-1"); exists {
		t.Error("Expected entry to be deleted")
	}
}

func TestPrune(t *testing.T) {
	store := New()
	store.Set("old", &extract.Result{})
	store.results["old"].CreatedAt = time.Now().Add(-2 * time.Hour)
	store.Set("fresh", &extract.Result{})

	removed := store.Prune(time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 pruned entry, got %d", removed)
	}
	if _, exists := store.Get("old"); exists {
		t.Error("Old entry should be pruned")
	}
	if _, exists := store.Get("fresh"); !exists {
		t.Error("Fresh entry should survive")
	}
}
