package router

import (
	"github.com/gin-gonic/gin"

	"apflow/internal/domain"
	"apflow/internal/handler"
	"apflow/internal/metrics"
	"apflow/internal/middleware"
	"apflow/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	invoiceH *handler.InvoiceHandler,
	validationH *handler.ValidationHandler,
	vendorH *handler.VendorHandler,
	poH *handler.PurchaseOrderHandler,
	grnH *handler.GoodsReceiptHandler,
	exceptionH *handler.ExceptionHandler,
	reportH *handler.ReportHandler,
	healthH *handler.HealthHandler,
	collector *metrics.Collector,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Ops surface
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/metrics", gin.WrapH(collector.Handler()))

	// All API routes require a valid JWT
	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(authSvc))

	// Invoice intake and validation
	invoices := v1.Group("/invoices")
	invoices.POST("", invoiceH.Ingest)
	invoices.GET("", invoiceH.List)
	invoices.GET("/:id", invoiceH.GetByID)
	invoices.POST("/:id/revalidate", invoiceH.Revalidate)
	invoices.GET("/:id/exceptions", exceptionH.ListByInvoice)

	v1.POST("/validations", validationH.DryRun)

	// Reference data; mutations require admin
	vendors := v1.Group("/vendors")
	vendors.POST("", middleware.RequireRole(domain.RoleAdmin), vendorH.Create)
	vendors.GET("", vendorH.List)
	vendors.GET("/:id", vendorH.GetByID)
	vendors.PUT("/:id", middleware.RequireRole(domain.RoleAdmin), vendorH.Update)

	pos := v1.Group("/purchase-orders")
	pos.POST("", middleware.RequireRole(domain.RoleAdmin), poH.Create)
	pos.GET("", poH.List)
	pos.GET("/:number", poH.GetByNumber)

	grns := v1.Group("/grns")
	grns.POST("", middleware.RequireRole(domain.RoleAdmin), grnH.Create)
	grns.GET("", grnH.ListByPO)

	// Exceptions
	exceptions := v1.Group("/exceptions")
	exceptions.GET("", exceptionH.List)
	exceptions.GET("/:id", exceptionH.GetByID)
	exceptions.POST("/:id/resolve", exceptionH.Resolve)

	// Stats and reports
	v1.GET("/stats/overview", reportH.Overview)
	v1.POST("/reports/weekly", middleware.RequireRole(domain.RoleAdmin), reportH.GenerateWeekly)

	return r
}
