package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Vault modes control whether a sale stores the payment method in the vault.
const (
	VaultModeAlways    = "always"
	VaultModeOnSuccess = "on-success"
	VaultModeNever     = "never"
)

// Payment models control settlement timing.
const (
	PaymentModelSale      = "sale"      // authorize and submit for settlement
	PaymentModelAuthorize = "authorize" // authorize only
	PaymentModelOrder     = "order"     // vault now, capture off-session later
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Gateway  GatewayConfig
	Payment  PaymentConfig
	Logger   LoggerConfig
}

// ServerConfig holds metrics server configuration
type ServerConfig struct {
	MetricsPort int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// RedisConfig holds the session cache configuration
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	SessionTTL time.Duration
}

// GatewayConfig holds the payment gateway credentials and endpoint
type GatewayConfig struct {
	Environment string // sandbox or production
	BaseURL     string // Overrides the environment default when set
	MerchantID  string
	PublicKey   string
	PrivateKey  string
	Timeout     int // Request timeout in seconds (default: 30)

	// Static client-side key; when set, client token calls are skipped
	TokenizationKey string

	// Merchant account ids as "CURRENCY:account" entries
	MerchantAccounts []string

	// Channel identifier reported on every transaction
	Channel string
}

// MerchantAccount returns the merchant account id for a currency, or empty.
func (g GatewayConfig) MerchantAccount(currencyCode string) string {
	code := strings.ToUpper(currencyCode)
	for _, entry := range g.MerchantAccounts {
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) == 2 && strings.ToUpper(strings.TrimSpace(parts[0])) == code {
			return strings.ReplaceAll(parts[1], " ", "")
		}
	}
	return ""
}

// MerchantAccountMap returns the configured accounts keyed by currency.
func (g GatewayConfig) MerchantAccountMap() map[string]string {
	accounts := make(map[string]string, len(g.MerchantAccounts))
	for _, entry := range g.MerchantAccounts {
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) == 2 {
			accounts[strings.ToUpper(strings.TrimSpace(parts[0]))] = strings.ReplaceAll(parts[1], " ", "")
		}
	}
	return accounts
}

// MethodConfig holds the per-payment-method settings
type MethodConfig struct {
	VaultMode    string // always, on-success, never
	PaymentModel string // sale, authorize, order

	DescriptorName  string
	DescriptorPhone string
	DescriptorURL   string

	// Static custom fields as "name:value" entries
	CustomFields []string

	FraudToolsEnabled bool

	// Redirect wallet only
	PayeeEmail             string
	BillingAddressOverride bool
}

// PaymentConfig holds checkout-wide payment settings
type PaymentConfig struct {
	SiteID string

	Credit   MethodConfig
	PayPal   MethodConfig
	Venmo    MethodConfig
	ApplePay MethodConfig

	ThreeDSecureEnabled bool
	SkipLiabilityCheck  bool
	Level23Enabled      bool
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "checkout"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			MinConns: int32(getEnvAsInt("DB_MIN_CONNS", 2)),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", "localhost:6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvAsInt("REDIS_DB", 0),
			SessionTTL: time.Duration(getEnvAsInt("REDIS_SESSION_TTL_MINUTES", 30)) * time.Minute,
		},
		Gateway: GatewayConfig{
			Environment:      getEnv("GATEWAY_ENVIRONMENT", "sandbox"),
			BaseURL:          getEnv("GATEWAY_BASE_URL", ""),
			MerchantID:       getEnv("GATEWAY_MERCHANT_ID", ""),
			PublicKey:        getEnv("GATEWAY_PUBLIC_KEY", ""),
			PrivateKey:       getEnv("GATEWAY_PRIVATE_KEY", ""),
			Timeout:          getEnvAsInt("GATEWAY_TIMEOUT", 30),
			TokenizationKey:  getEnv("GATEWAY_TOKENIZATION_KEY", ""),
			MerchantAccounts: getEnvAsSlice("GATEWAY_MERCHANT_ACCOUNTS"),
			Channel:          getEnv("GATEWAY_CHANNEL", "storebridge"),
		},
		Payment: PaymentConfig{
			SiteID:              getEnv("SITE_ID", "default"),
			Credit:              loadMethodConfig("CREDIT"),
			PayPal:              loadMethodConfig("PAYPAL"),
			Venmo:               loadMethodConfig("VENMO"),
			ApplePay:            loadMethodConfig("APPLEPAY"),
			ThreeDSecureEnabled: getEnvAsBool("PAYMENT_3DS_ENABLED", false),
			SkipLiabilityCheck:  getEnvAsBool("PAYMENT_3DS_SKIP_LIABILITY_CHECK", false),
			Level23Enabled:      getEnvAsBool("PAYMENT_L2_L3_ENABLED", false),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadMethodConfig(prefix string) MethodConfig {
	return MethodConfig{
		VaultMode:              getEnv("PAYMENT_"+prefix+"_VAULT_MODE", VaultModeOnSuccess),
		PaymentModel:           getEnv("PAYMENT_"+prefix+"_MODEL", PaymentModelSale),
		DescriptorName:         getEnv("PAYMENT_"+prefix+"_DESCRIPTOR_NAME", ""),
		DescriptorPhone:        getEnv("PAYMENT_"+prefix+"_DESCRIPTOR_PHONE", ""),
		DescriptorURL:          getEnv("PAYMENT_"+prefix+"_DESCRIPTOR_URL", ""),
		CustomFields:           getEnvAsSlice("PAYMENT_" + prefix + "_CUSTOM_FIELDS"),
		FraudToolsEnabled:      getEnvAsBool("PAYMENT_"+prefix+"_FRAUD_TOOLS_ENABLED", false),
		PayeeEmail:             getEnv("PAYMENT_"+prefix+"_PAYEE_EMAIL", ""),
		BillingAddressOverride: getEnvAsBool("PAYMENT_"+prefix+"_BILLING_ADDRESS_OVERRIDE", true),
	}
}

// Validate checks the loaded configuration for consistency
func (c *Config) Validate() error {
	for _, mc := range []struct {
		name   string
		method MethodConfig
	}{
		{"credit", c.Payment.Credit},
		{"paypal", c.Payment.PayPal},
		{"venmo", c.Payment.Venmo},
		{"applepay", c.Payment.ApplePay},
	} {
		switch mc.method.VaultMode {
		case VaultModeAlways, VaultModeOnSuccess, VaultModeNever:
		default:
			return fmt.Errorf("invalid vault mode %q for method %s", mc.method.VaultMode, mc.name)
		}
		switch mc.method.PaymentModel {
		case PaymentModelSale, PaymentModelAuthorize, PaymentModelOrder:
		default:
			return fmt.Errorf("invalid payment model %q for method %s", mc.method.PaymentModel, mc.name)
		}
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway timeout must be positive, got %d", c.Gateway.Timeout)
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return nil
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
