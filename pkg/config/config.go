package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Business      BusinessConfig
	Notifications NotificationsConfig
	Cron          CronConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"IMPORTDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"IMPORTDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"IMPORTDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"IMPORTDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"IMPORTDESK_DB_DSN"`

	LegacyHost     string `envconfig:"IMPORTDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"IMPORTDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"IMPORTDESK_DB_USER"`
	LegacyPassword string `envconfig:"IMPORTDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"IMPORTDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"IMPORTDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"IMPORTDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"IMPORTDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"IMPORTDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"IMPORTDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"IMPORTDESK_REDIS_URL"`
	Address      string        `envconfig:"IMPORTDESK_REDIS_ADDR"`
	Password     string        `envconfig:"IMPORTDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"IMPORTDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"IMPORTDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"IMPORTDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"IMPORTDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"IMPORTDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"IMPORTDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"IMPORTDESK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"IMPORTDESK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"IMPORTDESK_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"IMPORTDESK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"IMPORTDESK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"IMPORTDESK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"IMPORTDESK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"IMPORTDESK_ARGON_KEY_LEN" default:"32"`
}

// BusinessConfig holds brokerage-wide settings. Currency is fixed per
// deployment: orders never carry a customer-chosen currency.
type BusinessConfig struct {
	Currency string `envconfig:"IMPORTDESK_BUSINESS_CURRENCY" default:"USD"`
}

// NotificationsConfig controls dispatch behaviour. StaffInbox is the user
// that receives new quote-request alerts; leave it unset to disable them.
type NotificationsConfig struct {
	DispatchBatchSize int           `envconfig:"IMPORTDESK_NOTIFICATIONS_DISPATCH_BATCH" default:"50"`
	MaxAttempts       int           `envconfig:"IMPORTDESK_NOTIFICATIONS_MAX_ATTEMPTS" default:"5"`
	RetentionDays     int           `envconfig:"IMPORTDESK_NOTIFICATIONS_RETENTION_DAYS" default:"90"`
	SenderWebhookURL  string        `envconfig:"IMPORTDESK_NOTIFICATIONS_WEBHOOK_URL"`
	SenderTimeout     time.Duration `envconfig:"IMPORTDESK_NOTIFICATIONS_SENDER_TIMEOUT" default:"10s"`
	StaffInbox        uuid.UUID     `envconfig:"IMPORTDESK_NOTIFICATIONS_STAFF_INBOX"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"IMPORTDESK_CRON_INTERVAL" default:"1m"`
	LockTTL  time.Duration `envconfig:"IMPORTDESK_CRON_LOCK_TTL" default:"5m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"IMPORTDESK_AUTO_MIGRATE" default:"false"`
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
