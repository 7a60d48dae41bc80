// Package reconcile computes the outcome of a review action on a sent-back
// batch: the new per-item statuses, the new aggregate workflow state, and
// the documents to persist (purchase orders per vendor, or a child batch).
// Everything here is pure; the service layer applies the side effects.
package reconcile

import (
	"fmt"

	"github.com/nirmaan-app/procurement/internal/procurement/entity"
	"github.com/nirmaan-app/procurement/internal/procurement/selection"
)

// Action is the reviewer's decision for the selected items.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionSendBack Action = "send_back"
)

// ValidationError rejects an action before any write happens. The batch is
// untouched when one is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Counts are the per-status item tallies of a batch.
type Counts struct {
	Total    int
	Pending  int
	Approved int
	SentBack int
}

// CountItems tallies item statuses.
func CountItems(items []entity.SentBackItem) Counts {
	var c Counts
	c.Total = len(items)
	for i := range items {
		switch items[i].Status {
		case entity.ItemStatusPending:
			c.Pending++
		case entity.ItemStatusApproved:
			c.Approved++
		case entity.ItemStatusSentBack:
			c.SentBack++
		}
	}
	return c
}

// NextState derives the aggregate workflow state after disposing `selected`
// pending items with `action`, given the tallies before the action.
//
// Approving the last pending items yields approved only when no item was
// ever sent back; sending back the last pending items yields sent_back only
// when no item was ever approved. Every other outcome is partially_approved.
// Note the asymmetry is deliberate: once a single item is approved, a batch
// can never end in sent_back, and vice versa.
func NextState(action Action, before Counts, selected int) string {
	remaining := before.Pending - selected

	switch action {
	case ActionApprove:
		if remaining == 0 && before.SentBack == 0 {
			return entity.WorkflowApproved
		}
	case ActionSendBack:
		if remaining == 0 && before.Approved == 0 {
			return entity.WorkflowSentBack
		}
	}
	return entity.WorkflowPartiallyApproved
}

// OrderDraft is one purchase order to be generated: a vendor and value
// copies of that vendor's approved items, in selection order.
type OrderDraft struct {
	VendorID string
	Items    []entity.SentBackItem
}

// TotalAmount sums quote*quantity across the draft's items.
func (d *OrderDraft) TotalAmount() float64 {
	var total float64
	for i := range d.Items {
		if d.Items[i].Quote != nil {
			total += *d.Items[i].Quote * d.Items[i].Quantity
		}
	}
	return total
}

// ChildBatchDraft is the rejection batch to be generated on send-back:
// value copies of the selected items reset to pending, plus the re-derived
// category list (first-seen order).
type ChildBatchDraft struct {
	Type       string
	Categories []string
	Items      []entity.SentBackItem
}

// Result is the full outcome of a reconciliation. Items carries the
// batch's complete item list with new statuses applied; Orders or
// ChildBatch carry the documents to create, depending on the action.
type Result struct {
	Action     Action
	PriorState string
	NewState   string

	Items    []entity.SentBackItem
	Selected []entity.SentBackItem

	Orders     []OrderDraft
	ChildBatch *ChildBatchDraft
}

// Reconcile resolves the selection against the batch, validates it, and
// computes the action's outcome. It never mutates the batch; re-running it
// on identical inputs produces identical output.
func Reconcile(batch *entity.SentBackBatch, action Action, sel selection.Selection) (*Result, error) {
	if action != ActionApprove && action != ActionSendBack {
		return nil, validationf("unknown action %q", action)
	}

	selected := sel.Resolve(batch)
	if len(selected) == 0 {
		return nil, validationf("selection resolves to no items")
	}

	// The engine only ever transitions pending items. A non-pending item in
	// the selection means the caller lost track of state.
	for i := range selected {
		if selected[i].Status != entity.ItemStatusPending {
			return nil, validationf("item %s is %s, only pending items can be %sd",
				selected[i].ItemID, selected[i].Status, action)
		}
	}
	if action == ActionApprove {
		for i := range selected {
			if selected[i].VendorID == nil || *selected[i].VendorID == "" {
				return nil, validationf("item %s has no vendor assigned", selected[i].ItemID)
			}
		}
	}

	before := CountItems(batch.Items)
	newState := NextState(action, before, len(selected))

	targetStatus := entity.ItemStatusApproved
	if action == ActionSendBack {
		targetStatus = entity.ItemStatusSentBack
	}

	inSelection := make(map[string]bool, len(selected))
	for i := range selected {
		inSelection[selected[i].ItemID] = true
	}

	items := make([]entity.SentBackItem, len(batch.Items))
	copy(items, batch.Items)
	for i := range items {
		if inSelection[items[i].ItemID] {
			items[i].Status = targetStatus
		}
	}

	result := &Result{
		Action:     action,
		PriorState: batch.WorkflowState,
		NewState:   newState,
		Items:      items,
		Selected:   selected,
	}

	switch action {
	case ActionApprove:
		result.Orders = groupByVendor(selected)
	case ActionSendBack:
		result.ChildBatch = buildChildBatch(selected)
	}
	return result, nil
}

// groupByVendor partitions items into one order draft per vendor, keyed in
// first-seen vendor order so the output is deterministic.
func groupByVendor(items []entity.SentBackItem) []OrderDraft {
	index := make(map[string]int, len(items))
	var drafts []OrderDraft

	for i := range items {
		vendorID := *items[i].VendorID
		at, ok := index[vendorID]
		if !ok {
			at = len(drafts)
			index[vendorID] = at
			drafts = append(drafts, OrderDraft{VendorID: vendorID})
		}
		drafts[at].Items = append(drafts[at].Items, items[i].Clone())
	}
	return drafts
}

func buildChildBatch(items []entity.SentBackItem) *ChildBatchDraft {
	draft := &ChildBatchDraft{Type: entity.BatchTypeRejected}
	seen := make(map[string]bool, 4)

	for i := range items {
		clone := items[i].Clone()
		// Fresh, re-reviewable items in the child batch.
		clone.Status = entity.ItemStatusPending
		draft.Items = append(draft.Items, clone)

		if !seen[clone.Category] {
			seen[clone.Category] = true
			draft.Categories = append(draft.Categories, clone.Category)
		}
	}
	return draft
}
