package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "SEASONDECOR"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "SEASONDECOR_DB_DSN"
	EnvDBHost = "SEASONDECOR_DB_HOST"
	EnvDBUser = "SEASONDECOR_DB_USER"
	EnvDBName = "SEASONDECOR_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
