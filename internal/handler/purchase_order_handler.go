package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"apflow/internal/domain"
	"apflow/internal/service"
)

// PurchaseOrderHandler handles purchase order reference data endpoints.
type PurchaseOrderHandler struct {
	refService service.ReferenceDataService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler.
func NewPurchaseOrderHandler(refService service.ReferenceDataService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{refService: refService}
}

type poLineRequest struct {
	SKU         string `json:"sku"`
	Description string `json:"description"`
	Quantity    string `json:"quantity" binding:"required"`
	UnitPrice   string `json:"unit_price" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
}

type purchaseOrderRequest struct {
	Number      string          `json:"po_number" binding:"required"`
	VendorID    uuid.UUID       `json:"vendor_id" binding:"required"`
	VendorName  string          `json:"vendor_name"`
	Status      string          `json:"status"`
	Currency    string          `json:"currency" binding:"required"`
	TotalAmount string          `json:"total_amount" binding:"required"`
	OrderDate   string          `json:"order_date" binding:"required"`
	Lines       []poLineRequest `json:"lines"`
}

func (r purchaseOrderRequest) toDomain() (*domain.PurchaseOrder, error) {
	total, err := decimal.NewFromString(r.TotalAmount)
	if err != nil {
		return nil, err
	}
	orderDate, err := time.Parse("2006-01-02", r.OrderDate)
	if err != nil {
		return nil, err
	}

	po := &domain.PurchaseOrder{
		Number:      r.Number,
		VendorID:    r.VendorID,
		VendorName:  r.VendorName,
		Status:      domain.POStatus(r.Status),
		Currency:    r.Currency,
		TotalAmount: total,
		OrderDate:   orderDate,
	}
	for i, l := range r.Lines {
		qty, err := decimal.NewFromString(l.Quantity)
		if err != nil {
			return nil, err
		}
		price, err := decimal.NewFromString(l.UnitPrice)
		if err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(l.Amount)
		if err != nil {
			return nil, err
		}
		po.Lines = append(po.Lines, domain.PurchaseOrderLine{
			LineNumber:  i + 1,
			SKU:         l.SKU,
			Description: l.Description,
			Quantity:    qty,
			UnitPrice:   price,
			Amount:      amount,
		})
	}
	return po, nil
}

// Create handles POST /api/v1/purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req purchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body: "+err.Error())
		return
	}

	po, err := req.toDomain()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid amount or date field: "+err.Error())
		return
	}

	if err := h.refService.CreatePurchaseOrder(c.Request.Context(), po); err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, po)
}

// List handles GET /api/v1/purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	offset, limit, err := parsePagination(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	pos, total, err := h.refService.ListPurchaseOrders(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, pos, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByNumber handles GET /api/v1/purchase-orders/:number
func (h *PurchaseOrderHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "missing po number")
		return
	}

	po, err := h.refService.GetPurchaseOrder(c.Request.Context(), number)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, po)
}
