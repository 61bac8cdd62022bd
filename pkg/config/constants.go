package config

// EnvPrefix is the envconfig prefix shared by every variable.
const EnvPrefix = "GASTROVAN"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "GASTROVAN_APP_ENV"
	EnvPort   = "GASTROVAN_APP_PORT"
	EnvDBDSN  = "GASTROVAN_DB_DSN"
	EnvDBHost = "GASTROVAN_DB_HOST"
	EnvDBUser = "GASTROVAN_DB_USER"
	EnvDBName = "GASTROVAN_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
