package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"apflow/internal/config"
	"apflow/internal/email/noop"
	"apflow/internal/email/ses"
	"apflow/internal/handler"
	"apflow/internal/metrics"
	"apflow/internal/port"
	"apflow/internal/repository/postgres"
	"apflow/internal/router"
	"apflow/internal/service"
	s3storage "apflow/internal/storage/s3"
	"apflow/internal/validation"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Repositories
	vendorRepo := postgres.NewVendorRepo(db)
	poRepo := postgres.NewPurchaseOrderRepo(db)
	grnRepo := postgres.NewGoodsReceiptRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)
	exceptionRepo := postgres.NewExceptionRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	// Storage and email
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	emailSender, err := buildEmailSender(&cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	rules, err := buildRules(&cfg.Rules)
	if err != nil {
		return fmt.Errorf("failed to build validation rules: %w", err)
	}

	collector := metrics.NewCollector()

	// Services
	authSvc := service.NewAuthService(cfg.JWT)
	exceptionSvc := service.NewExceptionService(exceptionRepo)
	validator := validation.NewService(rules, vendorRepo, poRepo, grnRepo, invoiceRepo, exceptionSvc)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, validator, collector)
	refSvc := service.NewReferenceDataService(vendorRepo, poRepo, grnRepo)
	reportSvc := service.NewReportService(statsRepo, s3Client, emailSender, cfg.S3, cfg.Report)

	// Handlers
	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	validationH := handler.NewValidationHandler(invoiceSvc)
	vendorH := handler.NewVendorHandler(refSvc)
	poH := handler.NewPurchaseOrderHandler(refSvc)
	grnH := handler.NewGoodsReceiptHandler(refSvc)
	exceptionH := handler.NewExceptionHandler(exceptionSvc)
	reportH := handler.NewReportHandler(reportSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(
		authSvc,
		invoiceH, validationH,
		vendorH, poH, grnH,
		exceptionH, reportH, healthH,
		collector,
		cfg.CORS.AllowedOrigins,
	)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildEmailSender selects the email provider from config.
func buildEmailSender(cfg *config.EmailConfig) (port.EmailSender, error) {
	switch cfg.Provider {
	case "ses":
		return ses.NewSESSender(cfg.Region, cfg.FromAddress, cfg.FromName)
	default:
		log.Printf("email provider %q not configured, using noop sender", cfg.Provider)
		return noop.NewNoopSender(), nil
	}
}

// buildRules freezes the configured thresholds into the validation rule set.
func buildRules(cfg *config.RulesConfig) (*validation.RulesConfig, error) {
	minLine, err := decimal.NewFromString(cfg.MinLineAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid min_line_amount %q: %w", cfg.MinLineAmount, err)
	}
	maxLine, err := decimal.NewFromString(cfg.MaxLineAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid max_line_amount %q: %w", cfg.MaxLineAmount, err)
	}

	rules := validation.DefaultRules()
	rules.Thresholds.MathToleranceCents = cfg.MathToleranceCents
	rules.Thresholds.POAmountTolerancePercent = cfg.POAmountTolerancePercent
	rules.Thresholds.GRNQuantityTolerancePercent = cfg.GRNQuantityTolerancePercent
	rules.Thresholds.DuplicateConfidenceThreshold = cfg.DuplicateConfidenceThreshold
	rules.Thresholds.MaxInvoiceAgeDays = cfg.MaxInvoiceAgeDays
	rules.Thresholds.MinLineAmount = minLine
	rules.Thresholds.MaxLineAmount = maxLine
	rules.Thresholds.VendorNameMaxDistance = cfg.VendorNameMaxDistance
	return rules, nil
}
