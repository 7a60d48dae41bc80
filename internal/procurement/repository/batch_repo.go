package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nirmaan-app/procurement/internal/procurement/entity"
)

// BatchRepository persists sent-back batches and their line items.
type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// FindAll lists batches with filters and pagination.
func (r *BatchRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.SentBackBatch, int64, error) {
	var batches []entity.SentBackBatch
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.SentBackBatch{})

	if projectID := filters["project_id"]; projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if batchType := filters["type"]; batchType != "" {
		query = query.Where("type = ?", batchType)
	}
	if state := filters["workflow_state"]; state != "" {
		query = query.Where("workflow_state = ?", state)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("batch_code ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&batches).Error
	if err != nil {
		return nil, 0, err
	}

	for i := range batches {
		batches[i].Derive()
	}
	return batches, total, nil
}

// FindByID loads a batch with its items in display order.
func (r *BatchRepository) FindByID(ctx context.Context, id string) (*entity.SentBackBatch, error) {
	var batch entity.SentBackBatch
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	batch.Derive()
	return &batch, nil
}

// Create persists a batch and its items. Missing row ids are assigned.
func (r *BatchRepository) Create(ctx context.Context, batch *entity.SentBackBatch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()[:32]
	}
	for i := range batch.Items {
		if batch.Items[i].ID == "" {
			batch.Items[i].ID = uuid.New().String()[:32]
		}
		batch.Items[i].BatchID = batch.ID
		if batch.Items[i].SortOrder == 0 {
			batch.Items[i].SortOrder = i + 1
		}
	}
	return r.db.WithContext(ctx).Create(batch).Error
}

// UpdateReconciled commits the reconciled item statuses and the new
// aggregate state in one write. Called exactly once per review action,
// after every generated document has been created.
func (r *BatchRepository) UpdateReconciled(ctx context.Context, batchID string, items []entity.SentBackItem, workflowState string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range items {
			err := tx.Model(&entity.SentBackItem{}).
				Where("batch_id = ? AND item_id = ?", batchID, items[i].ItemID).
				Update("status", items[i].Status).Error
			if err != nil {
				return fmt.Errorf("update item %s: %w", items[i].ItemID, err)
			}
		}
		err := tx.Model(&entity.SentBackBatch{}).
			Where("id = ?", batchID).
			Update("workflow_state", workflowState).Error
		if err != nil {
			return fmt.Errorf("update workflow state: %w", err)
		}
		return nil
	})
}

// GenerateCode produces the next batch code, SB-{year}-{seq}.
func (r *BatchRepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("SB-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.SentBackBatch{}).
		Select("COALESCE(MAX(batch_code), '')").
		Where("batch_code LIKE ?", prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "SB-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("SB-%s-%04d", year, seq), nil
}
