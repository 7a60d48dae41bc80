package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nirmaan-app/procurement/internal/procurement/entity"
)

// ReviewLogRepository records reconciliation actions for audit.
type ReviewLogRepository struct {
	db *gorm.DB
}

func NewReviewLogRepository(db *gorm.DB) *ReviewLogRepository {
	return &ReviewLogRepository{db: db}
}

// Create persists one log row.
func (r *ReviewLogRepository) Create(ctx context.Context, log *entity.ReviewLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()[:32]
	}
	return r.db.WithContext(ctx).Create(log).Error
}

// FindByEntity lists an entity's review history, newest first.
func (r *ReviewLogRepository) FindByEntity(ctx context.Context, entityType, entityID string, page, pageSize int) ([]entity.ReviewLog, int64, error) {
	var logs []entity.ReviewLog
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ReviewLog{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&logs).Error

	return logs, total, err
}

// LogAction records an action without failing the caller; audit rows are
// best effort.
func (r *ReviewLogRepository) LogAction(ctx context.Context, entityType, entityID, entityCode, action, fromStatus, toStatus, content, operatorID string) {
	log := &entity.ReviewLog{
		ID:         uuid.New().String()[:32],
		EntityType: entityType,
		EntityID:   entityID,
		EntityCode: entityCode,
		Action:     action,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		Content:    content,
		OperatorID: operatorID,
	}
	r.db.WithContext(ctx).Create(log)
}
