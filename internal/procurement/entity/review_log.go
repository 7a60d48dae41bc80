package entity

import "time"

// ReviewLog records every reconciliation action against a batch: who acted,
// which direction, and the aggregate state transition.
type ReviewLog struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	EntityType string `json:"entity_type" gorm:"size:50;not null;index:idx_review_entity"` // batch/order
	EntityID   string `json:"entity_id" gorm:"size:32;not null;index:idx_review_entity"`
	EntityCode string `json:"entity_code" gorm:"size:50"`

	Action     string `json:"action" gorm:"size:50;not null"` // approve/send_back/export
	FromStatus string `json:"from_status" gorm:"size:30"`
	ToStatus   string `json:"to_status" gorm:"size:30"`

	Content string `json:"content" gorm:"type:text"`

	OperatorID string    `json:"operator_id" gorm:"size:32"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ReviewLog) TableName() string {
	return "procurement_review_logs"
}

// Comment is a reviewer annotation attached to a document, e.g. the reason
// supplied when items are sent back.
type Comment struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	SubjectType string    `json:"subject_type" gorm:"size:50;not null;index:idx_comment_subject"` // batch/order
	SubjectID   string    `json:"subject_id" gorm:"size:32;not null;index:idx_comment_subject"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	AuthorID    string    `json:"author_id" gorm:"size:32"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Comment) TableName() string {
	return "procurement_comments"
}
