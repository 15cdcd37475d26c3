package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	Admin         AdminConfig
	Password      PasswordConfig
	Cookies       CookieConfig
	OrderStore    OrderStoreConfig
	Notifications NotificationsConfig
	Storefront    StorefrontConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.OrderStore.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env                     string        `envconfig:"AQUAFLOW_APP_ENV" required:"true"`
	Port                    string        `envconfig:"AQUAFLOW_APP_PORT" required:"true"`
	LogLevel                string        `envconfig:"AQUAFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack            bool          `envconfig:"AQUAFLOW_LOG_WARN_STACK" default:"false"`
	HealthTimeout           time.Duration `envconfig:"AQUAFLOW_HEALTH_TIMEOUT" default:"3s"`
	CheckoutSettleDelay     time.Duration `envconfig:"AQUAFLOW_CHECKOUT_SETTLE_DELAY" default:"500ms"`
	CheckoutConfirmationTTL time.Duration `envconfig:"AQUAFLOW_CHECKOUT_CONFIRMATION_TTL" default:"10m"`
	ShutdownTimeout         time.Duration `envconfig:"AQUAFLOW_SHUTDOWN_TIMEOUT" default:"10s"`
	Timezone                string        `envconfig:"AQUAFLOW_TIMEZONE" default:"Asia/Karachi"`
	CORSOrigins             []string      `envconfig:"AQUAFLOW_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	// TrustedProxies lists the peers (IPs or CIDRs) whose X-Forwarded-For and
	// X-Real-IP headers are honoured. Empty means the socket address is used.
	TrustedProxies []string `envconfig:"AQUAFLOW_TRUSTED_PROXIES"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the storefront timezone used to normalise delivery dates.
func (a AppConfig) Location() *time.Location {
	if tz := strings.TrimSpace(a.Timezone); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return time.UTC
}

type DBConfig struct {
	DSN    string `envconfig:"AQUAFLOW_DB_DSN"`
	Driver string `envconfig:"AQUAFLOW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AQUAFLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"AQUAFLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AQUAFLOW_DB_USER"`
	LegacyPassword string `envconfig:"AQUAFLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"AQUAFLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"AQUAFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AQUAFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AQUAFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AQUAFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AQUAFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver was selected (local development only).
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"AQUAFLOW_REDIS_URL"`
	Address      string        `envconfig:"AQUAFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"AQUAFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"AQUAFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AQUAFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AQUAFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AQUAFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AQUAFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AQUAFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
	CartTTL      time.Duration `envconfig:"AQUAFLOW_REDIS_CART_TTL" default:"720h"`
}

// AdminConfig holds the static back-office credential and its session settings.
type AdminConfig struct {
	Username     string        `envconfig:"AQUAFLOW_ADMIN_USERNAME" required:"true"`
	PasswordHash string        `envconfig:"AQUAFLOW_ADMIN_PASSWORD_HASH" required:"true"`
	SessionTTL   time.Duration `envconfig:"AQUAFLOW_ADMIN_SESSION_TTL" default:"24h"`
	JWTSecret    string        `envconfig:"AQUAFLOW_ADMIN_JWT_SECRET" required:"true"`
	JWTIssuer    string        `envconfig:"AQUAFLOW_ADMIN_JWT_ISSUER" default:"aquaflow-admin"`

	LoginWindow  time.Duration `envconfig:"AQUAFLOW_ADMIN_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit int           `envconfig:"AQUAFLOW_ADMIN_LOGIN_IP_LIMIT" default:"10"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AQUAFLOW_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AQUAFLOW_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AQUAFLOW_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AQUAFLOW_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AQUAFLOW_ARGON_KEY_LEN" default:"32"`
}

// CookieConfig controls the signed cookies that mirror the cart and store consent.
type CookieConfig struct {
	HashKey    string        `envconfig:"AQUAFLOW_COOKIE_HASH_KEY" required:"true"`
	BlockKey   string        `envconfig:"AQUAFLOW_COOKIE_BLOCK_KEY"`
	Secure     bool          `envconfig:"AQUAFLOW_COOKIE_SECURE" default:"true"`
	Domain     string        `envconfig:"AQUAFLOW_COOKIE_DOMAIN"`
	CartTTL    time.Duration `envconfig:"AQUAFLOW_COOKIE_CART_TTL" default:"168h"`
	ConsentTTL time.Duration `envconfig:"AQUAFLOW_COOKIE_CONSENT_TTL" default:"8760h"`
}

type OrderStoreConfig struct {
	Backend             string `envconfig:"AQUAFLOW_ORDER_STORE_BACKEND" default:"sql"`
	FirestoreProjectID  string `envconfig:"AQUAFLOW_FIRESTORE_PROJECT_ID"`
	FirestoreCollection string `envconfig:"AQUAFLOW_FIRESTORE_ORDERS_COLLECTION" default:"orders"`
	FirestoreEmulator   string `envconfig:"AQUAFLOW_FIRESTORE_EMULATOR_HOST"`
}

// UsesFirestore reports whether orders live in the hosted document database.
func (o OrderStoreConfig) UsesFirestore() bool {
	return strings.EqualFold(strings.TrimSpace(o.Backend), OrderStoreFirestore)
}

func (o OrderStoreConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(o.Backend)) {
	case OrderStoreSQL:
		return nil
	case OrderStoreFirestore:
		if strings.TrimSpace(o.FirestoreProjectID) == "" {
			return fmt.Errorf("%s is required when the firestore order store is selected", EnvFirestoreProjectID)
		}
		return nil
	default:
		return fmt.Errorf("unsupported order store backend %q", o.Backend)
	}
}

// NotificationsConfig wires the EmailJS transactional email account.
type NotificationsConfig struct {
	Endpoint                string        `envconfig:"AQUAFLOW_EMAILJS_ENDPOINT" default:"https://api.emailjs.com/api/v1.0/email/send"`
	ServiceID               string        `envconfig:"AQUAFLOW_EMAILJS_SERVICE_ID"`
	AdminTemplateID         string        `envconfig:"AQUAFLOW_EMAILJS_ADMIN_TEMPLATE_ID"`
	CustomerTemplateID      string        `envconfig:"AQUAFLOW_EMAILJS_CUSTOMER_TEMPLATE_ID"`
	PublicKey               string        `envconfig:"AQUAFLOW_EMAILJS_PUBLIC_KEY"`
	PrivateKey              string        `envconfig:"AQUAFLOW_EMAILJS_PRIVATE_KEY"`
	AdminEmail              string        `envconfig:"AQUAFLOW_ADMIN_NOTIFICATION_EMAIL"`
	SendTimeout             time.Duration `envconfig:"AQUAFLOW_NOTIFICATION_SEND_TIMEOUT" default:"15s"`
	ConfirmationFromName    string        `envconfig:"AQUAFLOW_NOTIFICATION_FROM_NAME" default:"AquaFlow"`
	ConfirmationSupportLine string        `envconfig:"AQUAFLOW_NOTIFICATION_SUPPORT_PHONE"`
}

// Enabled reports whether enough EmailJS settings exist to send real email.
func (n NotificationsConfig) Enabled() bool {
	return n.ServiceID != "" && n.PublicKey != "" && n.AdminTemplateID != "" && n.CustomerTemplateID != ""
}

// StorefrontConfig carries display-only pricing knobs and payment instructions.
type StorefrontConfig struct {
	Coupons         map[string]int `envconfig:"AQUAFLOW_COUPONS" default:"WELCOME10:10,AQUA15:15"`
	ShippingBuckets string         `envconfig:"AQUAFLOW_SHIPPING_BUCKETS" default:"local=74|75:0,regional=7|6:150,national=*:300"`
	DeliverySlots   []string       `envconfig:"AQUAFLOW_DELIVERY_SLOTS" default:"09:00-12:00,12:00-15:00,15:00-18:00"`

	WalletAccountTitle  string `envconfig:"AQUAFLOW_WALLET_ACCOUNT_TITLE" default:"AquaFlow Water Services"`
	WalletAccountNumber string `envconfig:"AQUAFLOW_WALLET_ACCOUNT_NUMBER"`
	WalletProvider      string `envconfig:"AQUAFLOW_WALLET_PROVIDER" default:"JazzCash"`
	WhatsAppNumber      string `envconfig:"AQUAFLOW_WHATSAPP_NUMBER"`

	CheckoutWindow     time.Duration `envconfig:"AQUAFLOW_CHECKOUT_RATE_WINDOW" default:"10m"`
	CheckoutIPLimit    int           `envconfig:"AQUAFLOW_CHECKOUT_IP_LIMIT" default:"20"`
	CheckoutEmailLimit int           `envconfig:"AQUAFLOW_CHECKOUT_EMAIL_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	AutoMigrate  bool `envconfig:"AQUAFLOW_AUTO_MIGRATE" default:"false"`
	SeedDefaults bool `envconfig:"AQUAFLOW_SEED_DEFAULTS" default:"true"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:aquaflow.db?cache=shared"
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
