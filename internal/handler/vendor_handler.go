package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"apflow/internal/domain"
	"apflow/internal/service"
)

// VendorHandler handles vendor reference data endpoints.
type VendorHandler struct {
	refService service.ReferenceDataService
}

// NewVendorHandler creates a new VendorHandler.
func NewVendorHandler(refService service.ReferenceDataService) *VendorHandler {
	return &VendorHandler{refService: refService}
}

type vendorRequest struct {
	Name             string  `json:"name" binding:"required"`
	TaxID            string  `json:"tax_id"`
	Currency         string  `json:"currency" binding:"required"`
	Status           string  `json:"status"`
	CreditLimit      *string `json:"credit_limit"`
	PaymentTermsDays int     `json:"payment_terms_days"`
	ContactEmail     string  `json:"contact_email"`
}

func (r vendorRequest) toDomain() (*domain.Vendor, error) {
	v := &domain.Vendor{
		Name:             r.Name,
		TaxID:            r.TaxID,
		Currency:         r.Currency,
		PaymentTermsDays: r.PaymentTermsDays,
		ContactEmail:     r.ContactEmail,
	}
	if r.Status != "" {
		v.Status = domain.VendorStatus(r.Status)
		v.IsActive = v.Status == domain.VendorStatusActive
	}
	if r.CreditLimit != nil {
		limit, err := decimal.NewFromString(*r.CreditLimit)
		if err != nil {
			return nil, err
		}
		v.CreditLimit = &limit
	}
	return v, nil
}

// Create handles POST /api/v1/vendors
func (h *VendorHandler) Create(c *gin.Context) {
	var req vendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body: "+err.Error())
		return
	}

	vendor, err := req.toDomain()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid credit_limit: must be a decimal string")
		return
	}

	if err := h.refService.CreateVendor(c.Request.Context(), vendor); err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, vendor)
}

// List handles GET /api/v1/vendors
func (h *VendorHandler) List(c *gin.Context) {
	offset, limit, err := parsePagination(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	vendors, total, err := h.refService.ListVendors(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, vendors, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/vendors/:id
func (h *VendorHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid vendor id")
		return
	}

	vendor, err := h.refService.GetVendor(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, vendor)
}

// Update handles PUT /api/v1/vendors/:id
func (h *VendorHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid vendor id")
		return
	}

	var req vendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body: "+err.Error())
		return
	}

	vendor, err := req.toDomain()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid credit_limit: must be a decimal string")
		return
	}
	vendor.ID = id

	if err := h.refService.UpdateVendor(c.Request.Context(), vendor); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, vendor)
}
