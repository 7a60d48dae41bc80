package service

import (
	"context"
	"fmt"

	"github.com/nirmaan-app/procurement/internal/procurement/entity"
	"github.com/nirmaan-app/procurement/internal/procurement/reconcile"
	"github.com/nirmaan-app/procurement/internal/procurement/repository"
)

// OrderService reads generated purchase orders and moves them through
// dispatch and delivery.
type OrderService struct {
	poRepo  *repository.PORepository
	logRepo *repository.ReviewLogRepository
}

func NewOrderService(poRepo *repository.PORepository, logRepo *repository.ReviewLogRepository) *OrderService {
	return &OrderService{poRepo: poRepo, logRepo: logRepo}
}

// ListOrders lists purchase orders.
func (s *OrderService) ListOrders(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	return s.poRepo.FindAll(ctx, page, pageSize, filters)
}

// GetOrder loads one purchase order.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return s.poRepo.FindByID(ctx, id)
}

// orderTransitions lists the allowed status moves.
var orderTransitions = map[string][]string{
	entity.POStatusApproved:   {entity.POStatusDispatched, entity.POStatusCancelled},
	entity.POStatusDispatched: {entity.POStatusDelivered, entity.POStatusCancelled},
}

// UpdateStatus moves an order to the next status, validating the
// transition.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status, userID string) (*entity.PurchaseOrder, error) {
	po, err := s.poRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range orderTransitions[po.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, &reconcile.ValidationError{
			Reason: fmt.Sprintf("order %s cannot move from %s to %s", po.POCode, po.Status, status),
		}
	}

	if err := s.poRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, persistf(err, "update order %s status", po.POCode)
	}

	s.logRepo.LogAction(ctx, "order", po.ID, po.POCode, "status_change", po.Status, status, "", userID)
	po.Status = status
	return po, nil
}
