package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nirmaan-app/procurement/internal/procurement/entity"
)

// CommentRepository stores reviewer annotations on documents.
type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create attaches a comment to a document.
func (r *CommentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()[:32]
	}
	return r.db.WithContext(ctx).Create(comment).Error
}

// FindBySubject lists a document's comments, newest first.
func (r *CommentRepository) FindBySubject(ctx context.Context, subjectType, subjectID string) ([]entity.Comment, error) {
	var comments []entity.Comment
	err := r.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}
