package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"apflow/internal/domain"
	"apflow/internal/service"
)

// GoodsReceiptHandler handles goods receipt note endpoints.
type GoodsReceiptHandler struct {
	refService service.ReferenceDataService
}

// NewGoodsReceiptHandler creates a new GoodsReceiptHandler.
func NewGoodsReceiptHandler(refService service.ReferenceDataService) *GoodsReceiptHandler {
	return &GoodsReceiptHandler{refService: refService}
}

type grnLineRequest struct {
	SKU              string `json:"sku"`
	Description      string `json:"description"`
	QuantityReceived string `json:"quantity_received" binding:"required"`
}

type goodsReceiptRequest struct {
	Number     string           `json:"grn_number" binding:"required"`
	PONumber   string           `json:"po_number" binding:"required"`
	Status     string           `json:"status"`
	ReceivedAt string           `json:"received_at" binding:"required"`
	Lines      []grnLineRequest `json:"lines" binding:"required"`
}

func (r goodsReceiptRequest) toDomain() (*domain.GoodsReceiptNote, error) {
	receivedAt, err := time.Parse("2006-01-02", r.ReceivedAt)
	if err != nil {
		return nil, err
	}

	grn := &domain.GoodsReceiptNote{
		Number:     r.Number,
		PONumber:   r.PONumber,
		Status:     domain.GRNStatus(r.Status),
		ReceivedAt: receivedAt,
	}
	for i, l := range r.Lines {
		qty, err := decimal.NewFromString(l.QuantityReceived)
		if err != nil {
			return nil, err
		}
		grn.Lines = append(grn.Lines, domain.GoodsReceiptLine{
			LineNumber:       i + 1,
			SKU:              l.SKU,
			Description:      l.Description,
			QuantityReceived: qty,
		})
	}
	return grn, nil
}

// Create handles POST /api/v1/grns
func (h *GoodsReceiptHandler) Create(c *gin.Context) {
	var req goodsReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body: "+err.Error())
		return
	}

	grn, err := req.toDomain()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid quantity or date field: "+err.Error())
		return
	}

	if err := h.refService.CreateGoodsReceipt(c.Request.Context(), grn); err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, grn)
}

// ListByPO handles GET /api/v1/grns?po_number=PO-001
func (h *GoodsReceiptHandler) ListByPO(c *gin.Context) {
	poNumber := c.Query("po_number")
	if poNumber == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "po_number query parameter is required")
		return
	}

	grns, err := h.refService.ListGoodsReceiptsByPO(c.Request.Context(), poNumber)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, grns)
}
