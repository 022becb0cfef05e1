package config

// EnvPrefix scopes every environment variable read by envconfig.
const EnvPrefix = "ENGACADEMY"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv    = "ENGACADEMY_APP_ENV"
	EnvPort      = "ENGACADEMY_APP_PORT"
	EnvDBDSN     = "ENGACADEMY_DB_DSN"
	EnvDBHost    = "ENGACADEMY_DB_HOST"
	EnvDBUser    = "ENGACADEMY_DB_USER"
	EnvDBName    = "ENGACADEMY_DB_NAME"
	EnvRedisURL  = "ENGACADEMY_REDIS_URL"
	EnvJWTSecret = "ENGACADEMY_JWT_SECRET"
	EnvJWTIssuer = "ENGACADEMY_JWT_ISSUER"
	EnvJWTExp    = "ENGACADEMY_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID             = "ENGACADEMY_GCP_PROJECT_ID"
	EnvPubSubDomainTopic        = "ENGACADEMY_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSubscription = "ENGACADEMY_PUBSUB_DOMAIN_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
