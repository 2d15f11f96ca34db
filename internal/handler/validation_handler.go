package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"apflow/internal/service"
)

// ValidationHandler handles dry-run validation endpoints.
type ValidationHandler struct {
	invoiceService service.InvoiceService
}

// NewValidationHandler creates a new ValidationHandler.
func NewValidationHandler(invoiceService service.InvoiceService) *ValidationHandler {
	return &ValidationHandler{invoiceService: invoiceService}
}

// DryRun handles POST /api/v1/validations
// Validates an extraction payload without persisting anything.
func (h *ValidationHandler) DryRun(c *gin.Context) {
	var input service.IngestInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body: "+err.Error())
		return
	}

	result := h.invoiceService.DryRun(c.Request.Context(), input)
	RespondOK(c, result)
}
