package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "GGP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "GGP_DB_DSN"
	EnvDBHost = "GGP_DB_HOST"
	EnvDBUser = "GGP_DB_USER"
	EnvDBName = "GGP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Cryptomus    CryptomusConfig
	Mail         MailConfig
	Orders       OrdersConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GGP_APP_ENV" required:"true"`
	Port         string `envconfig:"GGP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GGP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GGP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GGP_DB_DSN"`
	Driver string `envconfig:"GGP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GGP_DB_HOST"`
	LegacyPort     int    `envconfig:"GGP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GGP_DB_USER"`
	LegacyPassword string `envconfig:"GGP_DB_PASSWORD"`
	LegacyName     string `envconfig:"GGP_DB_NAME"`
	LegacySSLMode  string `envconfig:"GGP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GGP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GGP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GGP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GGP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GGP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GGP_REDIS_ADDR"`
	Password     string        `envconfig:"GGP_REDIS_PASSWORD"`
	DB           int           `envconfig:"GGP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GGP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GGP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GGP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GGP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GGP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GGP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GGP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GGP_JWT_EXPIRATION_MINUTES" default:"60"`
}

// CryptomusConfig carries the merchant credentials for the crypto payment
// gateway. Payments and payouts sign with different API keys.
type CryptomusConfig struct {
	BaseURL         string        `envconfig:"GGP_CRYPTOMUS_BASE_URL" default:"https://api.cryptomus.com/v1"`
	MerchantID      string        `envconfig:"GGP_CRYPTOMUS_MERCHANT_ID"`
	PaymentKey      string        `envconfig:"GGP_CRYPTOMUS_PAYMENT_KEY"`
	PayoutKey       string        `envconfig:"GGP_CRYPTOMUS_PAYOUT_KEY"`
	CallbackURL     string        `envconfig:"GGP_CRYPTOMUS_CALLBACK_URL"`
	SuccessURL      string        `envconfig:"GGP_CRYPTOMUS_SUCCESS_URL"`
	ReturnURL       string        `envconfig:"GGP_CRYPTOMUS_RETURN_URL"`
	PaymentLifetime string        `envconfig:"GGP_CRYPTOMUS_PAYMENT_LIFETIME" default:"43200"`
	RequestTimeout  time.Duration `envconfig:"GGP_CRYPTOMUS_REQUEST_TIMEOUT" default:"15s"`
}

type MailConfig struct {
	BrevoAPIKey string `envconfig:"GGP_BREVO_API_KEY"`
	FromEmail   string `envconfig:"GGP_MAIL_FROM_EMAIL" default:"orders@guestpostgalaxy.com"`
	FromName    string `envconfig:"GGP_MAIL_FROM_NAME" default:"Guest Post Galaxy"`
	AdminEmail  string `envconfig:"GGP_MAIL_ADMIN_EMAIL"`
}

type OrdersConfig struct {
	CommissionRate float64 `envconfig:"GGP_ORDERS_COMMISSION_RATE" default:"0.10"`
}

// RateLimitConfig throttles the unauthenticated callback surface.
type RateLimitConfig struct {
	WebhookLimit  int64         `envconfig:"GGP_WEBHOOK_RATE_LIMIT" default:"120"`
	WebhookWindow time.Duration `envconfig:"GGP_WEBHOOK_RATE_WINDOW" default:"1m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GGP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GGP_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
