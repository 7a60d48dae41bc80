package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/xuri/excelize/v2"

	"github.com/nirmaan-app/procurement/internal/procurement/entity"
	"github.com/nirmaan-app/procurement/internal/procurement/repository"
)

// ExportService renders a purchase order as an .xlsx sheet and parks it in
// object storage, handing back a time-limited download URL.
type ExportService struct {
	poRepo  *repository.PORepository
	logRepo *repository.ReviewLogRepository
	store   *minio.Client
	bucket  string
}

func NewExportService(poRepo *repository.PORepository, logRepo *repository.ReviewLogRepository, store *minio.Client, bucket string) *ExportService {
	return &ExportService{poRepo: poRepo, logRepo: logRepo, store: store, bucket: bucket}
}

const exportURLExpiry = 24 * time.Hour

// ExportOrder builds the sheet, uploads it, and returns a presigned URL.
func (s *ExportService) ExportOrder(ctx context.Context, orderID, userID string) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("object storage not configured")
	}

	po, err := s.poRepo.FindByID(ctx, orderID)
	if err != nil {
		return "", err
	}

	sheet, err := buildOrderSheet(po)
	if err != nil {
		return "", fmt.Errorf("render order sheet: %w", err)
	}

	objectName := fmt.Sprintf("orders/%s/%s.xlsx", po.VendorID, po.POCode)
	_, err = s.store.PutObject(ctx, s.bucket, objectName, bytes.NewReader(sheet), int64(len(sheet)), minio.PutObjectOptions{
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	})
	if err != nil {
		return "", persistf(err, "upload order sheet %s", po.POCode)
	}

	url, err := s.store.PresignedGetObject(ctx, s.bucket, objectName, exportURLExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign order sheet %s: %w", po.POCode, err)
	}

	s.logRepo.LogAction(ctx, "order", po.ID, po.POCode, "export", "", "", objectName, userID)
	return url.String(), nil
}

func buildOrderSheet(po *entity.PurchaseOrder) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"

	header := [][]interface{}{
		{"Purchase Order", po.POCode},
		{"Vendor", po.VendorName},
		{"Address", po.VendorAddr},
		{"GST", po.VendorGST},
		{"Status", po.Status},
		{},
		{"Item", "Category", "Unit", "Qty", "Tax %", "Quote", "Amount"},
	}
	for i, row := range header {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	rowAt := len(header) + 1
	for _, item := range po.Items {
		row := []interface{}{item.Name, item.Category, item.Unit, item.Quantity, item.Tax, item.Quote, item.Amount}
		cell, _ := excelize.CoordinatesToCellName(1, rowAt)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
		rowAt++
	}

	if po.TotalAmount != nil {
		row := []interface{}{"", "", "", "", "", "Total", *po.TotalAmount}
		cell, _ := excelize.CoordinatesToCellName(1, rowAt+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
