package reconcile

import (
	"testing"

	"github.com/nirmaan-app/procurement/internal/procurement/entity"
	"github.com/nirmaan-app/procurement/internal/procurement/selection"
)

func ptrF(f float64) *float64 { return &f }
func ptrS(s string) *string   { return &s }

// threeItemBatch builds the canonical review fixture: items I1,I2 in
// category A quoted by vendor V1, item I3 in category B quoted by V2.
func threeItemBatch() *entity.SentBackBatch {
	return &entity.SentBackBatch{
		ID:            "batch-001",
		BatchCode:     "SB-2026-0001",
		Type:          entity.BatchTypeRejected,
		WorkflowState: entity.WorkflowVendorSelected,
		Items: []entity.SentBackItem{
			{ID: "row-1", ItemID: "I1", Name: "Cement OPC 53", Category: "A", Unit: "bag", Quantity: 10, Quote: ptrF(380), VendorID: ptrS("V1"), Status: entity.ItemStatusPending},
			{ID: "row-2", ItemID: "I2", Name: "River Sand", Category: "A", Unit: "cft", Quantity: 50, Quote: ptrF(45), VendorID: ptrS("V1"), Status: entity.ItemStatusPending},
			{ID: "row-3", ItemID: "I3", Name: "PVC Conduit 25mm", Category: "B", Unit: "m", Quantity: 120, Quote: ptrF(32), VendorID: ptrS("V2"), Status: entity.ItemStatusPending},
		},
	}
}

func TestNextStateTable(t *testing.T) {
	tests := []struct {
		name     string
		action   Action
		before   Counts
		selected int
		want     string
	}{
		{"approve all from fresh batch", ActionApprove, Counts{Total: 3, Pending: 3}, 3, entity.WorkflowApproved},
		{"approve subset", ActionApprove, Counts{Total: 3, Pending: 3}, 2, entity.WorkflowPartiallyApproved},
		{"approve last pending, none sent back", ActionApprove, Counts{Total: 3, Pending: 1, Approved: 2}, 1, entity.WorkflowApproved},
		{"approve last pending after a send-back", ActionApprove, Counts{Total: 3, Pending: 1, Approved: 1, SentBack: 1}, 1, entity.WorkflowPartiallyApproved},
		{"send back all from fresh batch", ActionSendBack, Counts{Total: 3, Pending: 3}, 3, entity.WorkflowSentBack},
		{"send back subset", ActionSendBack, Counts{Total: 3, Pending: 3}, 1, entity.WorkflowPartiallyApproved},
		{"send back last pending, none approved", ActionSendBack, Counts{Total: 3, Pending: 1, SentBack: 2}, 1, entity.WorkflowSentBack},
		// Any prior approval pins the batch out of sent_back for good,
		// even when the last pending item is sent back.
		{"send back last pending after an approval", ActionSendBack, Counts{Total: 3, Pending: 1, Approved: 2}, 1, entity.WorkflowPartiallyApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextState(tt.action, tt.before, tt.selected)
			if got != tt.want {
				t.Fatalf("NextState(%s, %+v, %d) = %s, want %s",
					tt.action, tt.before, tt.selected, got, tt.want)
			}
		})
	}
}

func TestReconcileApproveAll(t *testing.T) {
	batch := threeItemBatch()
	sel := selection.New().SelectCategory("A").SelectCategory("B")

	result, err := Reconcile(batch, ActionApprove, sel)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if result.NewState != entity.WorkflowApproved {
		t.Fatalf("expected approved, got %s", result.NewState)
	}
	if len(result.Orders) != 2 {
		t.Fatalf("expected 2 order drafts, got %d", len(result.Orders))
	}

	// One order per vendor, first-seen vendor order
	if result.Orders[0].VendorID != "V1" || result.Orders[1].VendorID != "V2" {
		t.Fatalf("expected vendor order [V1 V2], got [%s %s]",
			result.Orders[0].VendorID, result.Orders[1].VendorID)
	}
	if len(result.Orders[0].Items) != 2 || len(result.Orders[1].Items) != 1 {
		t.Fatalf("expected item split 2/1, got %d/%d",
			len(result.Orders[0].Items), len(result.Orders[1].Items))
	}

	// 10*380 + 50*45 = 6050
	if total := result.Orders[0].TotalAmount(); total != 6050 {
		t.Fatalf("expected V1 order total 6050, got %v", total)
	}

	for i := range result.Items {
		if result.Items[i].Status != entity.ItemStatusApproved {
			t.Fatalf("item %s not approved: %s", result.Items[i].ItemID, result.Items[i].Status)
		}
	}

	// Input batch must be untouched
	for i := range batch.Items {
		if batch.Items[i].Status != entity.ItemStatusPending {
			t.Fatalf("Reconcile mutated input batch item %s", batch.Items[i].ItemID)
		}
	}
}

func TestReconcileApprovePartial(t *testing.T) {
	batch := threeItemBatch()
	sel := selection.New().SelectCategory("A")

	result, err := Reconcile(batch, ActionApprove, sel)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if result.NewState != entity.WorkflowPartiallyApproved {
		t.Fatalf("expected partially_approved, got %s", result.NewState)
	}
	if len(result.Orders) != 1 || result.Orders[0].VendorID != "V1" {
		t.Fatalf("expected single V1 order draft, got %+v", result.Orders)
	}

	byID := map[string]string{}
	for i := range result.Items {
		byID[result.Items[i].ItemID] = result.Items[i].Status
	}
	if byID["I1"] != entity.ItemStatusApproved || byID["I2"] != entity.ItemStatusApproved {
		t.Fatalf("category A items not approved: %v", byID)
	}
	if byID["I3"] != entity.ItemStatusPending {
		t.Fatalf("unselected item I3 should stay pending, got %s", byID["I3"])
	}
}

func TestReconcileApproveByExplicitIDs(t *testing.T) {
	batch := threeItemBatch()
	sel := selection.New().SelectItems("A", []string{"I2"})

	result, err := Reconcile(batch, ActionApprove, sel)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(result.Selected) != 1 || result.Selected[0].ItemID != "I2" {
		t.Fatalf("expected selection to resolve to I2 only, got %+v", result.Selected)
	}
	if result.NewState != entity.WorkflowPartiallyApproved {
		t.Fatalf("expected partially_approved, got %s", result.NewState)
	}
}

func TestReconcileSendBack(t *testing.T) {
	batch := threeItemBatch()
	sel := selection.New().SelectCategory("B")

	result, err := Reconcile(batch, ActionSendBack, sel)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if result.NewState != entity.WorkflowPartiallyApproved {
		t.Fatalf("expected partially_approved, got %s", result.NewState)
	}
	if result.ChildBatch == nil {
		t.Fatal("expected a child batch draft")
	}
	if len(result.Orders) != 0 {
		t.Fatalf("send-back must not draft orders, got %d", len(result.Orders))
	}

	child := result.ChildBatch
	if child.Type != entity.BatchTypeRejected {
		t.Fatalf("expected child type rejected, got %s", child.Type)
	}
	if len(child.Items) != 1 || child.Items[0].ItemID != "I3" {
		t.Fatalf("expected child batch with I3, got %+v", child.Items)
	}
	// Child items come back fresh
	if child.Items[0].Status != entity.ItemStatusPending {
		t.Fatalf("child item should be pending, got %s", child.Items[0].Status)
	}
	if child.Items[0].ID != "" || child.Items[0].BatchID != "" {
		t.Fatal("child item must not carry its source row identity")
	}
	if len(child.Categories) != 1 || child.Categories[0] != "B" {
		t.Fatalf("expected child categories [B], got %v", child.Categories)
	}
}

func TestReconcileSendBackAll(t *testing.T) {
	batch := threeItemBatch()
	sel := selection.New().SelectCategory("A").SelectCategory("B")

	result, err := Reconcile(batch, ActionSendBack, sel)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if result.NewState != entity.WorkflowSentBack {
		t.Fatalf("expected sent_back, got %s", result.NewState)
	}
	if len(result.ChildBatch.Items) != 3 {
		t.Fatalf("expected 3 child items, got %d", len(result.ChildBatch.Items))
	}
	// First-seen category order from the item list, not sorted
	if got := result.ChildBatch.Categories; len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("expected categories [A B], got %v", got)
	}
}

func TestReconcileEmptySelection(t *testing.T) {
	batch := threeItemBatch()

	if _, err := Reconcile(batch, ActionApprove, selection.New()); err == nil {
		t.Fatal("expected validation error for empty selection")
	} else if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}

	// Ids that match nothing in the batch resolve to no items
	sel := selection.New().SelectItems("A", []string{"I999"})
	if _, err := Reconcile(batch, ActionApprove, sel); err == nil {
		t.Fatal("expected validation error for selection resolving to nothing")
	}
}

func TestReconcileRejectsNonPendingItems(t *testing.T) {
	batch := threeItemBatch()
	batch.Items[0].Status = entity.ItemStatusApproved

	sel := selection.New().SelectCategory("A")
	_, err := Reconcile(batch, ActionApprove, sel)
	if err == nil {
		t.Fatal("expected validation error when selection contains approved item")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
}

func TestReconcileApproveRequiresVendor(t *testing.T) {
	batch := threeItemBatch()
	batch.Items[2].VendorID = nil

	sel := selection.New().SelectCategory("B")
	if _, err := Reconcile(batch, ActionApprove, sel); err == nil {
		t.Fatal("expected validation error for item without vendor")
	}

	// Same item may still be sent back
	if _, err := Reconcile(batch, ActionSendBack, sel); err != nil {
		t.Fatalf("send-back of unquoted item should pass: %v", err)
	}
}

func TestReconcileUnknownAction(t *testing.T) {
	batch := threeItemBatch()
	sel := selection.New().SelectCategory("A")

	if _, err := Reconcile(batch, Action("reject"), sel); err == nil {
		t.Fatal("expected validation error for unknown action")
	}
}

func TestReconcileSequenceToTerminalStates(t *testing.T) {
	// Approve A, then send back B: the batch lands in partially_approved
	// and can never reach sent_back once anything was approved.
	batch := threeItemBatch()

	first, err := Reconcile(batch, ActionApprove, selection.New().SelectCategory("A"))
	if err != nil {
		t.Fatalf("first action failed: %v", err)
	}
	batch.Items = first.Items
	batch.WorkflowState = first.NewState

	second, err := Reconcile(batch, ActionSendBack, selection.New().SelectCategory("B"))
	if err != nil {
		t.Fatalf("second action failed: %v", err)
	}
	if second.NewState != entity.WorkflowPartiallyApproved {
		t.Fatalf("expected partially_approved after mixed outcomes, got %s", second.NewState)
	}

	counts := CountItems(second.Items)
	if counts.Pending != 0 || counts.Approved != 2 || counts.SentBack != 1 {
		t.Fatalf("unexpected final tallies: %+v", counts)
	}
}

func TestGroupByVendorInterleaved(t *testing.T) {
	// Vendor order follows first appearance in the item list even when
	// a vendor's items are interleaved with another's.
	items := []entity.SentBackItem{
		{ItemID: "I1", Category: "A", Quantity: 1, Quote: ptrF(10), VendorID: ptrS("V2"), Status: entity.ItemStatusPending},
		{ItemID: "I2", Category: "A", Quantity: 1, Quote: ptrF(20), VendorID: ptrS("V1"), Status: entity.ItemStatusPending},
		{ItemID: "I3", Category: "B", Quantity: 1, Quote: ptrF(30), VendorID: ptrS("V2"), Status: entity.ItemStatusPending},
	}

	drafts := groupByVendor(items)
	if len(drafts) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(drafts))
	}
	if drafts[0].VendorID != "V2" || drafts[1].VendorID != "V1" {
		t.Fatalf("expected vendor order [V2 V1], got [%s %s]", drafts[0].VendorID, drafts[1].VendorID)
	}
	if len(drafts[0].Items) != 2 || drafts[0].Items[0].ItemID != "I1" || drafts[0].Items[1].ItemID != "I3" {
		t.Fatalf("V2 draft items out of order: %+v", drafts[0].Items)
	}
}
