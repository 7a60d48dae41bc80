package session

import (
	"context"
	"testing"

	"github.com/nirmaan-app/procurement/internal/procurement/selection"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// Unknown key yields an empty selection, not an error
	sel, err := store.Get(ctx, "reviewer-1", "batch-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !sel.IsEmpty() {
		t.Fatalf("expected empty selection, got %v", sel)
	}

	sel = selection.New().SelectCategory("electrical")
	if err := store.Put(ctx, "reviewer-1", "batch-1", sel); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, "reviewer-1", "batch-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got) != 1 || !got["electrical"].All {
		t.Fatalf("expected stored selection back, got %v", got)
	}

	// Selections are scoped per reviewer and per batch
	other, _ := store.Get(ctx, "reviewer-2", "batch-1")
	if !other.IsEmpty() {
		t.Fatalf("selection leaked across reviewers: %v", other)
	}
	other, _ = store.Get(ctx, "reviewer-1", "batch-2")
	if !other.IsEmpty() {
		t.Fatalf("selection leaked across batches: %v", other)
	}

	if err := store.Clear(ctx, "reviewer-1", "batch-1"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	got, _ = store.Get(ctx, "reviewer-1", "batch-1")
	if !got.IsEmpty() {
		t.Fatalf("expected cleared selection, got %v", got)
	}
}

func TestSelectionKey(t *testing.T) {
	if k := key("u1", "b1"); k != "procurement:selection:u1:b1" {
		t.Fatalf("unexpected key %s", k)
	}
}
