package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories is the set of procurement repositories.
type Repositories struct {
	Batch     *BatchRepository
	PO        *PORepository
	Vendor    *VendorRepository
	Quote     *QuoteRepository
	Comment   *CommentRepository
	ReviewLog *ReviewLogRepository
}

// NewRepositories wires every repository onto one gorm handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Batch:     NewBatchRepository(db),
		PO:        NewPORepository(db),
		Vendor:    NewVendorRepository(db),
		Quote:     NewQuoteRepository(db),
		Comment:   NewCommentRepository(db),
		ReviewLog: NewReviewLogRepository(db),
	}
}
