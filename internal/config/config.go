// Package config provides application configuration loaded from environment
// variables, an optional config file (CONFIG_FILE) and defaults, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const devSessionSecret = "devsessionsecret"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Features FeatureFlags
	Limits   RateLimitConfig
	Uploads  UploadConfig
	SMTP     SMTPConfig
	Pricing  PricingConfig
	Issuer   IssuerConfig
	Admin    AdminConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string
	ReadTimeout     int // seconds
	WriteTimeout    int // seconds
	IdleTimeout     int // seconds
	ShutdownTimeout int // seconds
	CORSAllowOrigin string
}

// DatabaseConfig selects the gorm driver and its connection settings.
type DatabaseConfig struct {
	Driver     string // sqlite or postgres
	Path       string // sqlite file
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	Debug      bool
	MaxRetries int
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev           bool
	LogLevel      string
	Seed          bool
	SessionSecret string
	TokenTTL      time.Duration
	CatalogTTL    time.Duration
}

// FeatureFlags toggle optional surfaces of the single server binary.
type FeatureFlags struct {
	Uploads   bool
	Email     bool
	RateLimit bool
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type UploadConfig struct {
	Dir       string
	MaxSizeMB int
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
}

// PricingConfig is the default hourly grid, used when a program has no rate.
type PricingConfig struct {
	RateIndividual float64
	RateGroup      float64
}

type IssuerConfig struct {
	Name        string
	Address     string
	Siret       string
	NDA         string
	Email       string
	Phone       string
	Website     string
	PDFTemplate string
}

type AdminConfig struct {
	Email    string
	Password string
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// MaskedDSN is DSN with the password hidden, for logs.
func (d DatabaseConfig) MaskedDSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	m := d
	m.Password = "***"
	return m.DSN()
}

func setDefaults(v *viper.Viper) {
	defaults := map[string]any{
		"PORT":                    "8080",
		"SERVER_READ_TIMEOUT":     15,
		"SERVER_WRITE_TIMEOUT":    30,
		"SERVER_IDLE_TIMEOUT":     60,
		"SERVER_SHUTDOWN_TIMEOUT": 10,
		"CORS_ALLOW_ORIGIN":       "*",

		"DB_DRIVER":      "sqlite",
		"DB_PATH":        "formations.db",
		"DB_HOST":        "localhost",
		"DB_PORT":        5432,
		"DB_USER":        "formations",
		"DB_PASSWORD":    "formations",
		"DB_NAME":        "formations",
		"DB_SSLMODE":     "disable",
		"DB_DEBUG":       false,
		"DB_MAX_RETRIES": 10,

		"DEV":            true,
		"LOG_LEVEL":      "",
		"DB_SEED":        true,
		"SESSION_SECRET": devSessionSecret,
		"TOKEN_TTL":      "24h",
		"CATALOG_TTL":    "5m",

		"ENABLE_UPLOADS":    false,
		"ENABLE_EMAIL":      false,
		"ENABLE_RATE_LIMIT": false,

		"RATE_LIMIT_REQUESTS": 20,
		"RATE_LIMIT_WINDOW":   "1m",

		"UPLOAD_DIR":         "uploads",
		"UPLOAD_MAX_SIZE_MB": 10,

		"SMTP_HOST":     "",
		"SMTP_PORT":     587,
		"SMTP_USER":     "",
		"SMTP_PASSWORD": "",
		"SMTP_FROM":     "no-reply@formations.local",
		"SMTP_TO":       "contact@formations.local",

		"RATE_INDIVIDUAL": 80.0,
		"RATE_GROUP":      60.0,

		"ISSUER_NAME":    "Organisme de formation",
		"ISSUER_ADDRESS": "",
		"ISSUER_SIRET":   "",
		"ISSUER_NDA":     "",
		"ISSUER_EMAIL":   "",
		"ISSUER_PHONE":   "",
		"ISSUER_WEBSITE": "",
		"PDF_TEMPLATE":   "standard",

		"ADMIN_EMAIL":    "admin@formations.local",
		"ADMIN_PASSWORD": "",
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// Load reads configuration from the environment and CONFIG_FILE, if set.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	if f := os.Getenv("CONFIG_FILE"); f != "" {
		v.SetConfigFile(f)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", f, err)
		}
	}
	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:            v.GetString("PORT"),
			ReadTimeout:     v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetInt("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetInt("SERVER_IDLE_TIMEOUT"),
			ShutdownTimeout: v.GetInt("SERVER_SHUTDOWN_TIMEOUT"),
			CORSAllowOrigin: v.GetString("CORS_ALLOW_ORIGIN"),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(v.GetString("DB_DRIVER")),
			Path:       v.GetString("DB_PATH"),
			Host:       v.GetString("DB_HOST"),
			Port:       v.GetInt("DB_PORT"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			DBName:     v.GetString("DB_NAME"),
			SSLMode:    v.GetString("DB_SSLMODE"),
			Debug:      v.GetBool("DB_DEBUG"),
			MaxRetries: v.GetInt("DB_MAX_RETRIES"),
		},
		App: AppConfig{
			Dev:           v.GetBool("DEV"),
			LogLevel:      v.GetString("LOG_LEVEL"),
			Seed:          v.GetBool("DB_SEED"),
			SessionSecret: v.GetString("SESSION_SECRET"),
			TokenTTL:      v.GetDuration("TOKEN_TTL"),
			CatalogTTL:    v.GetDuration("CATALOG_TTL"),
		},
		Features: FeatureFlags{
			Uploads:   v.GetBool("ENABLE_UPLOADS"),
			Email:     v.GetBool("ENABLE_EMAIL"),
			RateLimit: v.GetBool("ENABLE_RATE_LIMIT"),
		},
		Limits: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Uploads: UploadConfig{
			Dir:       v.GetString("UPLOAD_DIR"),
			MaxSizeMB: v.GetInt("UPLOAD_MAX_SIZE_MB"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
			To:       v.GetString("SMTP_TO"),
		},
		Pricing: PricingConfig{
			RateIndividual: v.GetFloat64("RATE_INDIVIDUAL"),
			RateGroup:      v.GetFloat64("RATE_GROUP"),
		},
		Issuer: IssuerConfig{
			Name:        v.GetString("ISSUER_NAME"),
			Address:     v.GetString("ISSUER_ADDRESS"),
			Siret:       v.GetString("ISSUER_SIRET"),
			NDA:         v.GetString("ISSUER_NDA"),
			Email:       v.GetString("ISSUER_EMAIL"),
			Phone:       v.GetString("ISSUER_PHONE"),
			Website:     v.GetString("ISSUER_WEBSITE"),
			PDFTemplate: strings.ToLower(v.GetString("PDF_TEMPLATE")),
		},
		Admin: AdminConfig{
			Email:    strings.ToLower(strings.TrimSpace(v.GetString("ADMIN_EMAIL"))),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, errors.New("PORT is empty"))
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			errs = append(errs, errors.New("DB_PATH is empty"))
		}
	case "postgres":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported (sqlite, postgres)", c.Database.Driver))
	}
	if c.Pricing.RateIndividual <= 0 || c.Pricing.RateGroup <= 0 {
		errs = append(errs, errors.New("RATE_INDIVIDUAL and RATE_GROUP must be positive"))
	}
	if t := c.Issuer.PDFTemplate; t != "standard" && t != "moderne" {
		errs = append(errs, fmt.Errorf("PDF_TEMPLATE %q is not supported (standard, moderne)", t))
	}
	if !c.App.Dev && (c.App.SessionSecret == "" || c.App.SessionSecret == devSessionSecret) {
		errs = append(errs, errors.New("SESSION_SECRET must be set outside development"))
	}
	if c.Features.RateLimit && (c.Limits.Requests <= 0 || c.Limits.Window <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive"))
	}
	if c.Features.Uploads && (c.Uploads.Dir == "" || c.Uploads.MaxSizeMB <= 0) {
		errs = append(errs, errors.New("UPLOAD_DIR and UPLOAD_MAX_SIZE_MB are required when uploads are enabled"))
	}
	return errors.Join(errs...)
}
