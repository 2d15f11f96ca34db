package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"apflow/internal/domain"
	"apflow/internal/service"
)

// ExceptionHandler handles validation exception endpoints.
type ExceptionHandler struct {
	exceptionService service.ExceptionService
}

// NewExceptionHandler creates a new ExceptionHandler.
func NewExceptionHandler(exceptionService service.ExceptionService) *ExceptionHandler {
	return &ExceptionHandler{exceptionService: exceptionService}
}

// validExceptionStatuses are the states a caller may filter or resolve to.
var validExceptionStatuses = map[domain.ExceptionStatus]bool{
	domain.ExceptionStatusOpen:          true,
	domain.ExceptionStatusInReview: true,
	domain.ExceptionStatusResolved:      true,
	domain.ExceptionStatusDismissed:     true,
}

type resolveExceptionRequest struct {
	Status     string `json:"status" binding:"required"`
	ResolvedBy string `json:"resolved_by" binding:"required"`
}

// List handles GET /api/v1/exceptions?status=open
func (h *ExceptionHandler) List(c *gin.Context) {
	status := domain.ExceptionStatus(c.DefaultQuery("status", string(domain.ExceptionStatusOpen)))
	if !validExceptionStatuses[status] {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid 'status': must be one of open, in_review, resolved, dismissed")
		return
	}

	offset, limit, err := parsePagination(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	exceptions, total, err := h.exceptionService.ListByStatus(c.Request.Context(), status, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, exceptions, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/exceptions/:id
func (h *ExceptionHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid exception id")
		return
	}

	exc, err := h.exceptionService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, exc)
}

// ListByInvoice handles GET /api/v1/invoices/:id/exceptions
func (h *ExceptionHandler) ListByInvoice(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid invoice id")
		return
	}

	exceptions, err := h.exceptionService.ListByInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, exceptions)
}

// Resolve handles POST /api/v1/exceptions/:id/resolve
func (h *ExceptionHandler) Resolve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid exception id")
		return
	}

	var req resolveExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body: "+err.Error())
		return
	}

	status := domain.ExceptionStatus(req.Status)
	if !validExceptionStatuses[status] || status == domain.ExceptionStatusOpen {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid 'status': must be one of in_review, resolved, dismissed")
		return
	}

	exc, err := h.exceptionService.Resolve(c.Request.Context(), id, status, req.ResolvedBy)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, exc)
}
