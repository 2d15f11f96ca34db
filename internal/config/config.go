package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	S3     S3Config
	CORS   CORSConfig
	Email  EmailConfig
	Report ReportConfig
	Rules  RulesConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret       string        `mapstructure:"secret"`
	TokenExpiry  time.Duration `mapstructure:"token_expiry"`
	Issuer       string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings for report artifacts.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// ReportConfig holds weekly report settings.
type ReportConfig struct {
	Recipients    []string `mapstructure:"recipients"`
	TopVendors    int      `mapstructure:"top_vendors"`
	PresignExpiry int64    `mapstructure:"presign_expiry"`
}

// RulesConfig holds the tunable validation thresholds. Required fields are
// fixed in code; thresholds are deployment-specific.
type RulesConfig struct {
	MathToleranceCents           int64   `mapstructure:"math_tolerance_cents"`
	POAmountTolerancePercent     float64 `mapstructure:"po_amount_tolerance_percent"`
	GRNQuantityTolerancePercent  float64 `mapstructure:"grn_quantity_tolerance_percent"`
	DuplicateConfidenceThreshold float64 `mapstructure:"duplicate_confidence_threshold"`
	MaxInvoiceAgeDays            int     `mapstructure:"max_invoice_age_days"`
	MinLineAmount                string  `mapstructure:"min_line_amount"`
	MaxLineAmount                string  `mapstructure:"max_line_amount"`
	VendorNameMaxDistance        int     `mapstructure:"vendor_name_max_distance"`
}

// Load reads configuration from environment variables with the APFLOW_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("APFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "apflow")
	v.SetDefault("db.password", "apflow_secret")
	v.SetDefault("db.name", "apflow_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.token_expiry", "8h")
	v.SetDefault("jwt.issuer", "apflow")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "apflow-reports")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 604800)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@apflow.io")
	v.SetDefault("email.from_name", "APFlow")

	// Report defaults
	v.SetDefault("report.recipients", "")
	v.SetDefault("report.top_vendors", 10)
	v.SetDefault("report.presign_expiry", 604800)

	// Validation rule defaults
	v.SetDefault("rules.math_tolerance_cents", 1)
	v.SetDefault("rules.po_amount_tolerance_percent", 5.0)
	v.SetDefault("rules.grn_quantity_tolerance_percent", 2.0)
	v.SetDefault("rules.duplicate_confidence_threshold", 0.95)
	v.SetDefault("rules.max_invoice_age_days", 365)
	v.SetDefault("rules.min_line_amount", "0.01")
	v.SetDefault("rules.max_line_amount", "1000000")
	v.SetDefault("rules.vendor_name_max_distance", 3)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                          "APFLOW_SERVER_PORT",
		"server.read_timeout":                  "APFLOW_SERVER_READ_TIMEOUT",
		"server.write_timeout":                 "APFLOW_SERVER_WRITE_TIMEOUT",
		"server.environment":                   "APFLOW_SERVER_ENVIRONMENT",
		"db.host":                              "APFLOW_DB_HOST",
		"db.port":                              "APFLOW_DB_PORT",
		"db.user":                              "APFLOW_DB_USER",
		"db.password":                          "APFLOW_DB_PASSWORD",
		"db.name":                              "APFLOW_DB_NAME",
		"db.sslmode":                           "APFLOW_DB_SSLMODE",
		"db.max_open":                          "APFLOW_DB_MAX_OPEN",
		"db.max_idle":                          "APFLOW_DB_MAX_IDLE",
		"jwt.secret":                           "APFLOW_JWT_SECRET",
		"jwt.token_expiry":                     "APFLOW_JWT_TOKEN_EXPIRY",
		"jwt.issuer":                           "APFLOW_JWT_ISSUER",
		"s3.region":                            "APFLOW_S3_REGION",
		"s3.bucket":                            "APFLOW_S3_BUCKET",
		"s3.endpoint":                          "APFLOW_S3_ENDPOINT",
		"s3.access_key":                        "APFLOW_S3_ACCESS_KEY",
		"s3.secret_key":                        "APFLOW_S3_SECRET_KEY",
		"s3.presign_expiry":                    "APFLOW_S3_PRESIGN_EXPIRY",
		"cors.allowed_origins":                 "APFLOW_CORS_ALLOWED_ORIGINS",
		"email.provider":                       "APFLOW_EMAIL_PROVIDER",
		"email.region":                         "APFLOW_EMAIL_REGION",
		"email.from_address":                   "APFLOW_EMAIL_FROM_ADDRESS",
		"email.from_name":                      "APFLOW_EMAIL_FROM_NAME",
		"report.recipients":                    "APFLOW_REPORT_RECIPIENTS",
		"report.top_vendors":                   "APFLOW_REPORT_TOP_VENDORS",
		"report.presign_expiry":                "APFLOW_REPORT_PRESIGN_EXPIRY",
		"rules.math_tolerance_cents":           "APFLOW_RULES_MATH_TOLERANCE_CENTS",
		"rules.po_amount_tolerance_percent":    "APFLOW_RULES_PO_AMOUNT_TOLERANCE_PERCENT",
		"rules.grn_quantity_tolerance_percent": "APFLOW_RULES_GRN_QUANTITY_TOLERANCE_PERCENT",
		"rules.duplicate_confidence_threshold": "APFLOW_RULES_DUPLICATE_CONFIDENCE_THRESHOLD",
		"rules.max_invoice_age_days":           "APFLOW_RULES_MAX_INVOICE_AGE_DAYS",
		"rules.min_line_amount":                "APFLOW_RULES_MIN_LINE_AMOUNT",
		"rules.max_line_amount":                "APFLOW_RULES_MAX_LINE_AMOUNT",
		"rules.vendor_name_max_distance":       "APFLOW_RULES_VENDOR_NAME_MAX_DISTANCE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if APFLOW_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("APFLOW_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:      v.GetString("jwt.secret"),
		TokenExpiry: v.GetDuration("jwt.token_expiry"),
		Issuer:      v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitAndTrim(v.GetString("cors.allowed_origins")),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}
	cfg.Report = ReportConfig{
		Recipients:    splitAndTrim(v.GetString("report.recipients")),
		TopVendors:    v.GetInt("report.top_vendors"),
		PresignExpiry: v.GetInt64("report.presign_expiry"),
	}
	cfg.Rules = RulesConfig{
		MathToleranceCents:           v.GetInt64("rules.math_tolerance_cents"),
		POAmountTolerancePercent:     v.GetFloat64("rules.po_amount_tolerance_percent"),
		GRNQuantityTolerancePercent:  v.GetFloat64("rules.grn_quantity_tolerance_percent"),
		DuplicateConfidenceThreshold: v.GetFloat64("rules.duplicate_confidence_threshold"),
		MaxInvoiceAgeDays:            v.GetInt("rules.max_invoice_age_days"),
		MinLineAmount:                v.GetString("rules.min_line_amount"),
		MaxLineAmount:                v.GetString("rules.max_line_amount"),
		VendorNameMaxDistance:        v.GetInt("rules.vendor_name_max_distance"),
	}

	if cfg.Server.Environment == "production" && cfg.JWT.Secret == "change-me-in-production" {
		return nil, fmt.Errorf("config: JWT secret must be set in production")
	}

	return cfg, nil
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
