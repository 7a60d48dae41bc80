package entity

import "time"

// SentBackBatch is the unit of re-review: a set of procurement line items
// that were bounced back from an earlier round and need a fresh decision.
type SentBackBatch struct {
	ID            string `json:"id" gorm:"primaryKey;size:32"`
	BatchCode     string `json:"batch_code" gorm:"size:32;uniqueIndex;not null"`
	ProjectID     string `json:"project_id" gorm:"size:32;index"`
	SourceRequest string `json:"source_request_id" gorm:"column:source_request_id;size:32"`

	// Why the batch exists. Immutable after creation.
	Type string `json:"type" gorm:"size:20;not null"` // rejected/delayed/cancelled

	// Aggregate status, always derived from item statuses by the
	// reconciliation engine, never set independently.
	WorkflowState string `json:"workflow_state" gorm:"size:30;default:vendor_selected"`

	// Parent batch when this batch was produced by a send-back.
	ParentBatchID *string `json:"parent_batch_id" gorm:"size:32;index"`

	Comment   string    `json:"comment,omitempty" gorm:"type:text"`
	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []SentBackItem `json:"items,omitempty" gorm:"foreignKey:BatchID"`

	// Derived, populated by Derive(). Not persisted.
	Categories    []string `json:"categories" gorm:"-"`
	PendingCount  int      `json:"pending_count" gorm:"-"`
	ApprovedCount int      `json:"approved_count" gorm:"-"`
	SentBackCount int      `json:"sent_back_count" gorm:"-"`
}

func (SentBackBatch) TableName() string {
	return "procurement_sent_back_batches"
}

// Batch types
const (
	BatchTypeRejected  = "rejected"
	BatchTypeDelayed   = "delayed"
	BatchTypeCancelled = "cancelled"
)

// Workflow states
const (
	WorkflowVendorSelected    = "vendor_selected"
	WorkflowPartiallyApproved = "partially_approved"
	WorkflowApproved          = "approved"
	WorkflowSentBack          = "sent_back"
)

// ValidBatchType reports whether t is a known batch type.
func ValidBatchType(t string) bool {
	return t == BatchTypeRejected || t == BatchTypeDelayed || t == BatchTypeCancelled
}

// Derive recomputes the category list and status counts from Items.
// Categories keep first-seen order.
func (b *SentBackBatch) Derive() {
	b.Categories = make([]string, 0, 4)
	seen := make(map[string]bool, 4)
	b.PendingCount, b.ApprovedCount, b.SentBackCount = 0, 0, 0

	for i := range b.Items {
		item := &b.Items[i]
		if !seen[item.Category] {
			seen[item.Category] = true
			b.Categories = append(b.Categories, item.Category)
		}
		switch item.Status {
		case ItemStatusPending:
			b.PendingCount++
		case ItemStatusApproved:
			b.ApprovedCount++
		case ItemStatusSentBack:
			b.SentBackCount++
		}
		item.Derive()
	}
}

// SentBackItem is the atomic unit of approval. ItemID is the line item's
// stable identity: it is carried verbatim into order documents and child
// batches, while ID stays unique per row.
type SentBackItem struct {
	ID      string `json:"-" gorm:"primaryKey;size:32"`
	BatchID string `json:"-" gorm:"size:32;not null;index"`
	ItemID  string `json:"item_id" gorm:"size:64;not null;index"`

	Name     string  `json:"name" gorm:"size:200;not null"`
	Category string  `json:"category" gorm:"size:100;not null"`
	Unit     string  `json:"unit" gorm:"size:20;default:pcs"`
	Quantity float64 `json:"quantity" gorm:"type:decimal(10,2);not null"`
	Tax      float64 `json:"tax" gorm:"type:decimal(5,2)"`

	// Quote and vendor are set during vendor selection, before the batch
	// reaches this service; both stay nullable for delayed items.
	Quote    *float64 `json:"quote" gorm:"type:decimal(12,4)"`
	VendorID *string  `json:"vendor" gorm:"column:vendor_id;size:32;index"`

	Status    string    `json:"status" gorm:"size:20;default:pending"` // pending/approved/sent_back
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Derived, not persisted.
	Amount      *float64 `json:"amount" gorm:"-"`
	LowestQuote *float64 `json:"lowest_quote,omitempty" gorm:"-"`
}

func (SentBackItem) TableName() string {
	return "procurement_sent_back_items"
}

// Item statuses
const (
	ItemStatusPending  = "pending"
	ItemStatusApproved = "approved"
	ItemStatusSentBack = "sent_back"
)

// Derive computes the item amount. Amount is defined only when both quote
// and vendor are set; otherwise it stays nil (delayed / not yet sourced).
func (it *SentBackItem) Derive() {
	if it.Quote != nil && it.VendorID != nil && *it.VendorID != "" {
		amount := *it.Quote * it.Quantity
		it.Amount = &amount
	} else {
		it.Amount = nil
	}
}

// Clone returns a value copy of the item suitable for embedding in a
// generated document. Row identity is left blank for the caller to assign;
// ItemID is preserved.
func (it SentBackItem) Clone() SentBackItem {
	clone := it
	clone.ID = ""
	clone.BatchID = ""
	clone.Amount = nil
	clone.LowestQuote = nil
	if it.Quote != nil {
		q := *it.Quote
		clone.Quote = &q
	}
	if it.VendorID != nil {
		v := *it.VendorID
		clone.VendorID = &v
	}
	return clone
}
