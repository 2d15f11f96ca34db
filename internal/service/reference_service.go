package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"apflow/internal/domain"
	"apflow/internal/port"
)

// ReferenceDataService manages the reference data the validators match
// invoices against: vendors, purchase orders, and goods receipt notes.
type ReferenceDataService interface {
	CreateVendor(ctx context.Context, vendor *domain.Vendor) error
	GetVendor(ctx context.Context, id uuid.UUID) (*domain.Vendor, error)
	ListVendors(ctx context.Context, offset, limit int) ([]domain.Vendor, int, error)
	UpdateVendor(ctx context.Context, vendor *domain.Vendor) error

	CreatePurchaseOrder(ctx context.Context, po *domain.PurchaseOrder) error
	GetPurchaseOrder(ctx context.Context, number string) (*domain.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, offset, limit int) ([]domain.PurchaseOrder, int, error)

	CreateGoodsReceipt(ctx context.Context, grn *domain.GoodsReceiptNote) error
	ListGoodsReceiptsByPO(ctx context.Context, poNumber string) ([]domain.GoodsReceiptNote, error)
}

type referenceDataService struct {
	vendors port.VendorRepository
	pos     port.PurchaseOrderRepository
	grns    port.GoodsReceiptRepository
}

// NewReferenceDataService creates a new ReferenceDataService implementation.
func NewReferenceDataService(
	vendors port.VendorRepository,
	pos port.PurchaseOrderRepository,
	grns port.GoodsReceiptRepository,
) ReferenceDataService {
	return &referenceDataService{vendors: vendors, pos: pos, grns: grns}
}

func (s *referenceDataService) CreateVendor(ctx context.Context, vendor *domain.Vendor) error {
	if vendor.ID == uuid.Nil {
		vendor.ID = uuid.New()
	}
	if vendor.Status == "" {
		vendor.Status = domain.VendorStatusActive
		vendor.IsActive = true
	}
	return s.vendors.Create(ctx, vendor)
}

func (s *referenceDataService) GetVendor(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	return s.vendors.GetByID(ctx, id)
}

func (s *referenceDataService) ListVendors(ctx context.Context, offset, limit int) ([]domain.Vendor, int, error) {
	return s.vendors.List(ctx, offset, limit)
}

func (s *referenceDataService) UpdateVendor(ctx context.Context, vendor *domain.Vendor) error {
	if vendor.Status == "" {
		vendor.Status = domain.VendorStatusActive
	}
	vendor.IsActive = vendor.Status == domain.VendorStatusActive
	return s.vendors.Update(ctx, vendor)
}

func (s *referenceDataService) CreatePurchaseOrder(ctx context.Context, po *domain.PurchaseOrder) error {
	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	if po.Status == "" {
		po.Status = domain.POStatusOpen
	}
	if _, err := s.vendors.GetByID(ctx, po.VendorID); err != nil {
		return fmt.Errorf("referenceDataService.CreatePurchaseOrder vendor: %w", err)
	}
	return s.pos.Create(ctx, po)
}

func (s *referenceDataService) GetPurchaseOrder(ctx context.Context, number string) (*domain.PurchaseOrder, error) {
	return s.pos.GetByNumber(ctx, number)
}

func (s *referenceDataService) ListPurchaseOrders(ctx context.Context, offset, limit int) ([]domain.PurchaseOrder, int, error) {
	return s.pos.List(ctx, offset, limit)
}

func (s *referenceDataService) CreateGoodsReceipt(ctx context.Context, grn *domain.GoodsReceiptNote) error {
	if grn.ID == uuid.Nil {
		grn.ID = uuid.New()
	}
	if grn.Status == "" {
		grn.Status = domain.GRNStatusPosted
	}
	// The referenced PO must exist before goods can be received against it.
	if _, err := s.pos.GetByNumber(ctx, grn.PONumber); err != nil {
		return fmt.Errorf("referenceDataService.CreateGoodsReceipt po: %w", err)
	}
	return s.grns.Create(ctx, grn)
}

func (s *referenceDataService) ListGoodsReceiptsByPO(ctx context.Context, poNumber string) ([]domain.GoodsReceiptNote, error) {
	return s.grns.ListByPONumber(ctx, poNumber)
}
