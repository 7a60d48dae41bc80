package entity

import "testing"

func quote(f float64) *float64 { return &f }
func vendor(s string) *string  { return &s }

func TestBatchDerive(t *testing.T) {
	batch := &SentBackBatch{
		Items: []SentBackItem{
			{ItemID: "I1", Category: "electrical", Quantity: 4, Quote: quote(100), VendorID: vendor("V1"), Status: ItemStatusApproved},
			{ItemID: "I2", Category: "plumbing", Quantity: 2, Quote: quote(50), VendorID: vendor("V2"), Status: ItemStatusPending},
			{ItemID: "I3", Category: "electrical", Quantity: 1, Status: ItemStatusSentBack},
		},
	}
	batch.Derive()

	if len(batch.Categories) != 2 || batch.Categories[0] != "electrical" || batch.Categories[1] != "plumbing" {
		t.Fatalf("expected first-seen categories [electrical plumbing], got %v", batch.Categories)
	}
	if batch.PendingCount != 1 || batch.ApprovedCount != 1 || batch.SentBackCount != 1 {
		t.Fatalf("unexpected counts: %d/%d/%d",
			batch.PendingCount, batch.ApprovedCount, batch.SentBackCount)
	}

	if batch.Items[0].Amount == nil || *batch.Items[0].Amount != 400 {
		t.Fatalf("expected amount 400, got %v", batch.Items[0].Amount)
	}
	// No quote and no vendor means no amount
	if batch.Items[2].Amount != nil {
		t.Fatalf("expected nil amount for unquoted item, got %v", *batch.Items[2].Amount)
	}
}

func TestItemClone(t *testing.T) {
	item := SentBackItem{
		ID:       "row-1",
		BatchID:  "batch-1",
		ItemID:   "I1",
		Quantity: 3,
		Quote:    quote(25),
		VendorID: vendor("V1"),
		Status:   ItemStatusApproved,
	}

	clone := item.Clone()
	if clone.ID != "" || clone.BatchID != "" {
		t.Fatal("clone must not carry row identity")
	}
	if clone.ItemID != "I1" {
		t.Fatalf("clone must keep item identity, got %s", clone.ItemID)
	}

	// Pointer fields are deep copies
	*clone.Quote = 99
	if *item.Quote != 25 {
		t.Fatal("clone shares quote pointer with source")
	}
	*clone.VendorID = "V9"
	if *item.VendorID != "V1" {
		t.Fatal("clone shares vendor pointer with source")
	}
}
