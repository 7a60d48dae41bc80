package entity

import "time"

// ApprovedQuote is a historical vendor quote that survived a past approval.
// Used only as a reference price (lowest recent quote per item); never
// authoritative for reconciliation.
type ApprovedQuote struct {
	ID       string  `json:"id" gorm:"primaryKey;size:32"`
	ItemID   string  `json:"item_id" gorm:"size:64;not null;index"`
	VendorID string  `json:"vendor" gorm:"column:vendor_id;size:32;index"`
	Quote    float64 `json:"quote" gorm:"type:decimal(12,4);not null"`
	Unit     string  `json:"unit" gorm:"size:20"`

	ProjectID string    `json:"project_id" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (ApprovedQuote) TableName() string {
	return "procurement_approved_quotes"
}
