package entity

import "time"

// Vendor is a read-only directory record. Vendor management lives in the
// upstream system; this service only resolves name/address/GST when
// generating purchase orders.
type Vendor struct {
	ID        string `json:"id" gorm:"primaryKey;size:32"`
	Code      string `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Name      string `json:"name" gorm:"size:200;not null"`
	Category  string `json:"category" gorm:"size:100"`
	Status    string `json:"status" gorm:"size:20;default:active"`

	City      string `json:"city" gorm:"size:50"`
	State     string `json:"state" gorm:"size:50"`
	Address   string `json:"address" gorm:"size:500"`
	GSTNumber string `json:"gst_number" gorm:"size:32"`

	ContactName  string `json:"contact_name" gorm:"size:100"`
	ContactPhone string `json:"contact_phone" gorm:"size:20"`
	ContactEmail string `json:"contact_email" gorm:"size:100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Vendor) TableName() string {
	return "procurement_vendors"
}

// FullAddress joins address, city and state for order documents.
func (v *Vendor) FullAddress() string {
	addr := v.Address
	if v.City != "" {
		if addr != "" {
			addr += ", "
		}
		addr += v.City
	}
	if v.State != "" {
		if addr != "" {
			addr += ", "
		}
		addr += v.State
	}
	return addr
}
