package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/nirmaan-app/procurement/internal/procurement/entity"
	"github.com/nirmaan-app/procurement/internal/procurement/reconcile"
	"github.com/nirmaan-app/procurement/internal/procurement/repository"
	"github.com/nirmaan-app/procurement/internal/procurement/selection"
	"github.com/nirmaan-app/procurement/internal/procurement/session"
)

// ReviewService drives the re-review of sent-back batches: it tracks the
// reviewer's selection, runs the reconciliation engine, and applies its
// side effects through the repositories in the order the engine's contract
// requires (documents first, batch update last).
type ReviewService struct {
	batchRepo   *repository.BatchRepository
	poRepo      *repository.PORepository
	vendorRepo  *repository.VendorRepository
	quoteRepo   *repository.QuoteRepository
	commentRepo *repository.CommentRepository
	logRepo     *repository.ReviewLogRepository
	sessions    session.Store
}

func NewReviewService(repos *repository.Repositories, sessions session.Store) *ReviewService {
	return &ReviewService{
		batchRepo:   repos.Batch,
		poRepo:      repos.PO,
		vendorRepo:  repos.Vendor,
		quoteRepo:   repos.Quote,
		commentRepo: repos.Comment,
		logRepo:     repos.ReviewLog,
		sessions:    sessions,
	}
}

// ListBatches lists sent-back batches.
func (s *ReviewService) ListBatches(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.SentBackBatch, int64, error) {
	return s.batchRepo.FindAll(ctx, page, pageSize, filters)
}

// GetBatch loads a batch and decorates each item with its lowest recent
// approved quote as a reference price.
func (s *ReviewService) GetBatch(ctx context.Context, id string) (*entity.SentBackBatch, error) {
	batch, err := s.batchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	itemIDs := make([]string, len(batch.Items))
	for i := range batch.Items {
		itemIDs[i] = batch.Items[i].ItemID
	}
	quotes, err := s.quoteRepo.LowestRecentBulk(ctx, itemIDs)
	if err != nil {
		// Reference prices are display-only; the batch is still usable.
		log.Printf("[procurement] lowest quote lookup failed for batch %s: %v", id, err)
		return batch, nil
	}
	for i := range batch.Items {
		if q, ok := quotes[batch.Items[i].ItemID]; ok {
			lowest := q
			batch.Items[i].LowestQuote = &lowest
		}
	}
	return batch, nil
}

// CreateBatchRequest carries a new sent-back batch from the upstream
// vendor-selection flow.
type CreateBatchRequest struct {
	ProjectID     string            `json:"project_id" binding:"required"`
	SourceRequest string            `json:"source_request_id"`
	Type          string            `json:"type" binding:"required"`
	Comment       string            `json:"comment"`
	Items         []CreateBatchItem `json:"items" binding:"required"`
}

type CreateBatchItem struct {
	ItemID   string   `json:"item_id" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	Category string   `json:"category" binding:"required"`
	Unit     string   `json:"unit"`
	Quantity float64  `json:"quantity" binding:"required"`
	Tax      float64  `json:"tax"`
	Quote    *float64 `json:"quote"`
	Vendor   *string  `json:"vendor"`
}

// CreateBatch persists a new batch with every item pending.
func (s *ReviewService) CreateBatch(ctx context.Context, userID string, req *CreateBatchRequest) (*entity.SentBackBatch, error) {
	if !entity.ValidBatchType(req.Type) {
		return nil, &reconcile.ValidationError{Reason: fmt.Sprintf("unknown batch type %q", req.Type)}
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &reconcile.ValidationError{Reason: fmt.Sprintf("item %s: quantity must be positive", item.ItemID)}
		}
	}

	code, err := s.batchRepo.GenerateCode(ctx)
	if err != nil {
		return nil, persistf(err, "generate batch code")
	}

	batch := &entity.SentBackBatch{
		BatchCode:     code,
		ProjectID:     req.ProjectID,
		SourceRequest: req.SourceRequest,
		Type:          req.Type,
		WorkflowState: entity.WorkflowVendorSelected,
		Comment:       req.Comment,
		CreatedBy:     userID,
	}
	for i, item := range req.Items {
		unit := item.Unit
		if unit == "" {
			unit = "pcs"
		}
		batch.Items = append(batch.Items, entity.SentBackItem{
			ItemID:    item.ItemID,
			Name:      item.Name,
			Category:  item.Category,
			Unit:      unit,
			Quantity:  item.Quantity,
			Tax:       item.Tax,
			Quote:     item.Quote,
			VendorID:  item.Vendor,
			Status:    entity.ItemStatusPending,
			SortOrder: i + 1,
		})
	}

	if err := s.batchRepo.Create(ctx, batch); err != nil {
		return nil, persistf(err, "create batch")
	}
	batch.Derive()
	return batch, nil
}

// === Selection session ===

// GetSelection returns the reviewer's current selection on a batch.
func (s *ReviewService) GetSelection(ctx context.Context, reviewerID, batchID string) (selection.Selection, error) {
	return s.sessions.Get(ctx, reviewerID, batchID)
}

// SelectCategory marks a whole category as selected.
func (s *ReviewService) SelectCategory(ctx context.Context, reviewerID, batchID, category string) (selection.Selection, error) {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if !hasCategory(batch, category) {
		return nil, &reconcile.ValidationError{Reason: fmt.Sprintf("batch has no category %q", category)}
	}

	sel, err := s.sessions.Get(ctx, reviewerID, batchID)
	if err != nil {
		return nil, err
	}
	sel = sel.SelectCategory(category)
	if err := s.sessions.Put(ctx, reviewerID, batchID, sel); err != nil {
		return nil, err
	}
	return sel, nil
}

// SelectItems records an explicit item subset for a category. Every id must
// name an item of that category in the batch.
func (s *ReviewService) SelectItems(ctx context.Context, reviewerID, batchID, category string, itemIDs []string) (selection.Selection, error) {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	inCategory := make(map[string]bool)
	for i := range batch.Items {
		if batch.Items[i].Category == category {
			inCategory[batch.Items[i].ItemID] = true
		}
	}
	for _, id := range itemIDs {
		if !inCategory[id] {
			return nil, &reconcile.ValidationError{Reason: fmt.Sprintf("item %s is not in category %q", id, category)}
		}
	}

	sel, err := s.sessions.Get(ctx, reviewerID, batchID)
	if err != nil {
		return nil, err
	}
	sel = sel.SelectItems(category, itemIDs)
	if err := s.sessions.Put(ctx, reviewerID, batchID, sel); err != nil {
		return nil, err
	}
	return sel, nil
}

// ClearSelection drops the reviewer's selection on a batch.
func (s *ReviewService) ClearSelection(ctx context.Context, reviewerID, batchID string) error {
	return s.sessions.Clear(ctx, reviewerID, batchID)
}

// === Actions ===

// ApproveOutcome is the result of a successful approve action.
type ApproveOutcome struct {
	Batch  *entity.SentBackBatch   `json:"batch"`
	Orders []*entity.PurchaseOrder `json:"orders"`
}

// Approve disposes the reviewer's selected items as approved: one purchase
// order is created per vendor in the selection, then the batch's item
// statuses and workflow state are committed. On a write failure midway,
// already-created orders are kept and the batch stays pre-action; the
// caller retries or cleans up.
func (s *ReviewService) Approve(ctx context.Context, reviewerID, batchID string) (*ApproveOutcome, error) {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	sel, err := s.sessions.Get(ctx, reviewerID, batchID)
	if err != nil {
		return nil, err
	}

	result, err := reconcile.Reconcile(batch, reconcile.ActionApprove, sel)
	if err != nil {
		return nil, err
	}

	// Resolve every vendor before the first write so a directory gap is a
	// validation failure, not a partial one.
	vendors := make(map[string]*entity.Vendor, len(result.Orders))
	for _, draft := range result.Orders {
		vendor, err := s.vendorRepo.FindByID(ctx, draft.VendorID)
		if err != nil {
			return nil, &reconcile.ValidationError{Reason: fmt.Sprintf("vendor %s not found in directory", draft.VendorID)}
		}
		vendors[draft.VendorID] = vendor
	}

	orders := make([]*entity.PurchaseOrder, 0, len(result.Orders))
	for _, draft := range result.Orders {
		po, err := s.createOrder(ctx, batch, &draft, vendors[draft.VendorID], reviewerID)
		if err != nil {
			return nil, err
		}
		orders = append(orders, po)
	}

	if err := s.batchRepo.UpdateReconciled(ctx, batch.ID, result.Items, result.NewState); err != nil {
		return nil, persistf(err, "update batch %s after approval", batch.BatchCode)
	}

	s.finishAction(ctx, reviewerID, batch, result,
		fmt.Sprintf("approved %d item(s), %d order(s) generated", len(result.Selected), len(orders)))

	updated, err := s.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	return &ApproveOutcome{Batch: updated, Orders: orders}, nil
}

// SendBackOutcome is the result of a successful send-back action.
type SendBackOutcome struct {
	Batch      *entity.SentBackBatch `json:"batch"`
	ChildBatch *entity.SentBackBatch `json:"child_batch"`
}

// SendBack bounces the reviewer's selected items into a new rejection
// batch, optionally annotated with the reviewer's comment, then commits the
// parent's item statuses and workflow state.
func (s *ReviewService) SendBack(ctx context.Context, reviewerID, batchID, comment string) (*SendBackOutcome, error) {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	sel, err := s.sessions.Get(ctx, reviewerID, batchID)
	if err != nil {
		return nil, err
	}

	result, err := reconcile.Reconcile(batch, reconcile.ActionSendBack, sel)
	if err != nil {
		return nil, err
	}

	child, err := s.createChildBatch(ctx, batch, result.ChildBatch, reviewerID)
	if err != nil {
		return nil, err
	}

	if comment = strings.TrimSpace(comment); comment != "" {
		err := s.commentRepo.Create(ctx, &entity.Comment{
			SubjectType: "batch",
			SubjectID:   child.ID,
			Content:     comment,
			AuthorID:    reviewerID,
		})
		if err != nil {
			return nil, persistf(err, "annotate batch %s", child.BatchCode)
		}
	}

	if err := s.batchRepo.UpdateReconciled(ctx, batch.ID, result.Items, result.NewState); err != nil {
		return nil, persistf(err, "update batch %s after send-back", batch.BatchCode)
	}

	s.finishAction(ctx, reviewerID, batch, result,
		fmt.Sprintf("sent back %d item(s) into %s", len(result.Selected), child.BatchCode))

	updated, err := s.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	return &SendBackOutcome{Batch: updated, ChildBatch: child}, nil
}

// GetComments lists a batch's annotations.
func (s *ReviewService) GetComments(ctx context.Context, batchID string) ([]entity.Comment, error) {
	return s.commentRepo.FindBySubject(ctx, "batch", batchID)
}

// GetReviewLog lists a batch's review history.
func (s *ReviewService) GetReviewLog(ctx context.Context, batchID string, page, pageSize int) ([]entity.ReviewLog, int64, error) {
	return s.logRepo.FindByEntity(ctx, "batch", batchID, page, pageSize)
}

func (s *ReviewService) createOrder(ctx context.Context, batch *entity.SentBackBatch, draft *reconcile.OrderDraft, vendor *entity.Vendor, userID string) (*entity.PurchaseOrder, error) {
	code, err := s.poRepo.GenerateCode(ctx)
	if err != nil {
		return nil, persistf(err, "generate order code for vendor %s", vendor.Name)
	}

	po := &entity.PurchaseOrder{
		POCode:     code,
		BatchID:    batch.ID,
		ProjectID:  batch.ProjectID,
		VendorID:   vendor.ID,
		VendorName: vendor.Name,
		VendorAddr: vendor.FullAddress(),
		VendorGST:  vendor.GSTNumber,
		Status:     entity.POStatusApproved,
		CreatedBy:  userID,
	}

	var quotes []entity.ApprovedQuote
	total := 0.0
	for i, item := range draft.Items {
		quote := 0.0
		if item.Quote != nil {
			quote = *item.Quote
		}
		amount := quote * item.Quantity
		total += amount
		po.Items = append(po.Items, entity.PurchaseOrderItem{
			ItemID:    item.ItemID,
			Name:      item.Name,
			Category:  item.Category,
			Unit:      item.Unit,
			Quantity:  item.Quantity,
			Tax:       item.Tax,
			Quote:     quote,
			Amount:    amount,
			SortOrder: i + 1,
		})
		quotes = append(quotes, entity.ApprovedQuote{
			ItemID:    item.ItemID,
			VendorID:  vendor.ID,
			Quote:     quote,
			Unit:      item.Unit,
			ProjectID: batch.ProjectID,
		})
	}
	po.TotalAmount = &total

	if err := s.poRepo.Create(ctx, po); err != nil {
		return nil, persistf(err, "create order for vendor %s", vendor.Name)
	}

	// Reference data for future reviews; losing it does not fail the action.
	if err := s.quoteRepo.Record(ctx, quotes); err != nil {
		log.Printf("[procurement] record approved quotes for %s failed: %v", po.POCode, err)
	}
	return po, nil
}

func (s *ReviewService) createChildBatch(ctx context.Context, parent *entity.SentBackBatch, draft *reconcile.ChildBatchDraft, userID string) (*entity.SentBackBatch, error) {
	code, err := s.batchRepo.GenerateCode(ctx)
	if err != nil {
		return nil, persistf(err, "generate child batch code")
	}

	child := &entity.SentBackBatch{
		BatchCode:     code,
		ProjectID:     parent.ProjectID,
		SourceRequest: parent.SourceRequest,
		Type:          draft.Type,
		WorkflowState: entity.WorkflowVendorSelected,
		ParentBatchID: &parent.ID,
		CreatedBy:     userID,
		Items:         draft.Items,
	}
	if err := s.batchRepo.Create(ctx, child); err != nil {
		return nil, persistf(err, "create child batch")
	}
	child.Derive()
	return child, nil
}

// finishAction clears the reviewer's selection and writes the audit row.
// Both are best effort: the action itself is already committed.
func (s *ReviewService) finishAction(ctx context.Context, reviewerID string, batch *entity.SentBackBatch, result *reconcile.Result, content string) {
	if err := s.sessions.Clear(ctx, reviewerID, batch.ID); err != nil {
		log.Printf("[procurement] clear selection for batch %s failed: %v", batch.BatchCode, err)
	}
	s.logRepo.LogAction(ctx, "batch", batch.ID, batch.BatchCode,
		string(result.Action), result.PriorState, result.NewState, content, reviewerID)
}

func hasCategory(batch *entity.SentBackBatch, category string) bool {
	for i := range batch.Items {
		if batch.Items[i].Category == category {
			return true
		}
	}
	return false
}
