package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "IMPORTDESK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "IMPORTDESK_DB_DSN"
	EnvDBHost = "IMPORTDESK_DB_HOST"
	EnvDBUser = "IMPORTDESK_DB_USER"
	EnvDBName = "IMPORTDESK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
