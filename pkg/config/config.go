package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Enrollment   EnrollmentConfig
	Retention    RetentionConfig
	AuthRate     AuthRateLimitConfig
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
	Env          string `envconfig:"ENGACADEMY_APP_ENV" required:"true"`
	Port         string `envconfig:"ENGACADEMY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ENGACADEMY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ENGACADEMY_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"ENGACADEMY_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ENGACADEMY_DB_DSN"`
	Driver string `envconfig:"ENGACADEMY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ENGACADEMY_DB_HOST"`
	LegacyPort     int    `envconfig:"ENGACADEMY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ENGACADEMY_DB_USER"`
	LegacyPassword string `envconfig:"ENGACADEMY_DB_PASSWORD"`
	LegacyName     string `envconfig:"ENGACADEMY_DB_NAME"`
	LegacySSLMode  string `envconfig:"ENGACADEMY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ENGACADEMY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ENGACADEMY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ENGACADEMY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ENGACADEMY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ENGACADEMY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ENGACADEMY_REDIS_ADDR"`
	Password     string        `envconfig:"ENGACADEMY_REDIS_PASSWORD"`
	DB           int           `envconfig:"ENGACADEMY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ENGACADEMY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ENGACADEMY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ENGACADEMY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ENGACADEMY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ENGACADEMY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                string `envconfig:"ENGACADEMY_JWT_SECRET" required:"true"`
	Issuer                string `envconfig:"ENGACADEMY_JWT_ISSUER" required:"true"`
	ExpirationMinutes     int    `envconfig:"ENGACADEMY_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshExpirationDays int    `envconfig:"ENGACADEMY_JWT_REFRESH_EXPIRATION_DAYS" default:"7"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ENGACADEMY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ENGACADEMY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ENGACADEMY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ENGACADEMY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ENGACADEMY_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ENGACADEMY_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"ENGACADEMY_GCP_PROJECT_ID" required:"true"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"ENGACADEMY_PUBSUB_DOMAIN_TOPIC" default:"engacademy-domain-events"`
	DomainSubscription string `envconfig:"ENGACADEMY_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ENGACADEMY_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ENGACADEMY_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ENGACADEMY_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// EnrollmentConfig controls the payment-review window. A PENDENTE
// enrollment older than PendingDays is swept to EXPIRADO by the cron
// worker.
type EnrollmentConfig struct {
	PendingDays int `envconfig:"ENGACADEMY_ENROLLMENT_PENDING_DAYS" default:"10"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ENGACADEMY_LOGIN_RATE_WINDOW" default:"1m"`
	LoginIPLimit       int           `envconfig:"ENGACADEMY_LOGIN_RATE_IP_LIMIT" default:"10"`
	LoginEmailLimit    int           `envconfig:"ENGACADEMY_LOGIN_RATE_EMAIL_LIMIT" default:"5"`
	RegisterWindow     time.Duration `envconfig:"ENGACADEMY_REGISTER_RATE_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"ENGACADEMY_REGISTER_RATE_IP_LIMIT" default:"10"`
	RegisterEmailLimit int           `envconfig:"ENGACADEMY_REGISTER_RATE_EMAIL_LIMIT" default:"3"`
}

type RetentionConfig struct {
	AuditLogDays         int           `envconfig:"ENGACADEMY_AUDIT_RETENTION_DAYS" default:"90"`
	CronInterval         time.Duration `envconfig:"ENGACADEMY_CRON_INTERVAL" default:"24h"`
	NotificationGraceDay int           `envconfig:"ENGACADEMY_NOTIFICATION_EXPIRY_GRACE_DAYS" default:"0"`
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
