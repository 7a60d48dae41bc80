package entity

import "time"

// PurchaseOrder is generated per vendor group when a sent-back selection is
// approved. Vendor name/address/GST are resolved at generation time so the
// order stays readable even if the vendor record changes later.
type PurchaseOrder struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	POCode     string `json:"po_code" gorm:"size:32;uniqueIndex;not null"`
	BatchID    string `json:"batch_id" gorm:"size:32;not null;index"`
	ProjectID  string `json:"project_id" gorm:"size:32;index"`
	VendorID   string `json:"vendor" gorm:"column:vendor_id;size:32;not null;index"`
	VendorName string `json:"vendor_name" gorm:"size:200"`
	VendorAddr string `json:"vendor_address" gorm:"column:vendor_address;size:500"`
	VendorGST  string `json:"vendor_gst" gorm:"column:vendor_gst;size:32"`

	Status      string   `json:"status" gorm:"size:20;default:approved"` // approved/dispatched/delivered/cancelled
	TotalAmount *float64 `json:"total_amount" gorm:"type:decimal(15,2)"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []PurchaseOrderItem `json:"order_list,omitempty" gorm:"foreignKey:POID"`
}

func (PurchaseOrder) TableName() string {
	return "procurement_purchase_orders"
}

// PO statuses
const (
	POStatusApproved   = "approved"
	POStatusDispatched = "dispatched"
	POStatusDelivered  = "delivered"
	POStatusCancelled  = "cancelled"
)

// PurchaseOrderItem is a value copy of a sent-back line item at approval
// time. ItemID, category, unit, quantity, tax and quote are carried through
// verbatim.
type PurchaseOrderItem struct {
	ID     string `json:"-" gorm:"primaryKey;size:32"`
	POID   string `json:"-" gorm:"size:32;not null;index"`
	ItemID string `json:"item_id" gorm:"size:64;not null;index"`

	Name     string  `json:"name" gorm:"size:200;not null"`
	Category string  `json:"category" gorm:"size:100"`
	Unit     string  `json:"unit" gorm:"size:20"`
	Quantity float64 `json:"quantity" gorm:"type:decimal(10,2);not null"`
	Tax      float64 `json:"tax" gorm:"type:decimal(5,2)"`
	Quote    float64 `json:"quote" gorm:"type:decimal(12,4)"`
	Amount   float64 `json:"amount" gorm:"type:decimal(15,2)"`

	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
}

func (PurchaseOrderItem) TableName() string {
	return "procurement_po_items"
}
