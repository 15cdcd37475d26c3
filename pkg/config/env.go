package config

// EnvPrefix is passed to envconfig; every field carries its full variable name.
const EnvPrefix = "AQUAFLOW"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	OrderStoreSQL       = "sql"
	OrderStoreFirestore = "firestore"
)

const (
	EnvAppEnv             = "AQUAFLOW_APP_ENV"
	EnvPort               = "AQUAFLOW_APP_PORT"
	EnvDBDSN              = "AQUAFLOW_DB_DSN"
	EnvDBDriver           = "AQUAFLOW_DB_DRIVER"
	EnvDBHost             = "AQUAFLOW_DB_HOST"
	EnvDBUser             = "AQUAFLOW_DB_USER"
	EnvDBName             = "AQUAFLOW_DB_NAME"
	EnvRedisURL           = "AQUAFLOW_REDIS_URL"
	EnvAdminUsername      = "AQUAFLOW_ADMIN_USERNAME"
	EnvAdminPasswordHash  = "AQUAFLOW_ADMIN_PASSWORD_HASH"
	EnvAdminJWTSecret     = "AQUAFLOW_ADMIN_JWT_SECRET"
	EnvCookieHashKey      = "AQUAFLOW_COOKIE_HASH_KEY"
	EnvOrderStoreBackend  = "AQUAFLOW_ORDER_STORE_BACKEND"
	EnvFirestoreProjectID = "AQUAFLOW_FIRESTORE_PROJECT_ID"
	EnvCoupons            = "AQUAFLOW_COUPONS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
