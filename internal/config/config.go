package config

type Config interface {
	EnvConfig
	StorageConfig
	CacheConfig
	SessionConfig
	SmtpConfig
	OAuthConfig
	CorsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
}

type StorageConfig interface {
	GetPostgresDSN() string
}

type CacheConfig interface {
	GetCacheKind() string // "memory" or "redis"
	GetRedisAddr() string
	GetRedisDB() int
	GetRedisPrefix() string
}

type SessionConfig interface {
	GetSessionSigningKey() string
	GetSessionTTL() string
}

type SmtpConfig interface {
	GetSmtpHost() string
	GetSmtpPort() string
	GetSmtpAccount() string
	GetSmtpPassword() string
	GetSmtpSender() string
}

type OAuthConfig interface {
	GetOAuthClientID(provider string) string
	GetOAuthClientSecret(provider string) string
	GetOAuthRedirectURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() string
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
