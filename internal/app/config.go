package app

import (
	"os"
	"strconv"
	"time"

	"github.com/oauth2gate/authd/internal/oauth/domain"
	"github.com/oauth2gate/authd/internal/oauth/service"
)

// Config is the process-wide, environment-populated configuration surface.
type Config struct {
	Issuer       string // iss claim base URL; defaults to https://authd.invalid
	ProviderName string // display string in the login dialog

	OAuthSecretKey string // key for HMAC client-secret derivation
	HMACAlgorithm  string // e.g. "sha512"
	TokenType      string // e.g. "Bearer"

	DialogHMACKey string // authenticates the front-channel dialog payload

	JWTAlgorithm string // HS256, RS256, ES256, EdDSA
	JWTKey       string // raw secret (HS256) or PEM key material; generated if empty
	RSABits      int    // only relevant for RS256

	AccessTTL  service.TTLTable
	RefreshTTL service.TTLTable
	AuthCodeTTL time.Duration

	DatabaseFile string
	PepperFile   string

	Env       string
	LogLevel  string
	LogFormat string

	Port                int
	ShutdownGracePeriod time.Duration
}

// LoadConfig populates Config from the environment, applying the defaults
// described in SPEC_FULL.md's configuration surface.
func LoadConfig() Config {
	cfg := Config{
		Issuer:         os.Getenv("OAUTH_ISSUER"),
		ProviderName:   getEnvOrDefault("OAUTH_PROVIDER_NAME", "authd"),
		OAuthSecretKey: os.Getenv("OAUTH_SECRET_KEY"),
		HMACAlgorithm:  getEnvOrDefault("OAUTH_HMAC_ALGORITHM", "sha512"),
		TokenType:      getEnvOrDefault("OAUTH_TOKEN_TYPE", "Bearer"),
		DialogHMACKey:  os.Getenv("OAUTH_DIALOG_HMAC_KEY"),
		JWTAlgorithm:   getEnvOrDefault("OAUTH_JWT_ALGORITHM", "EdDSA"),
		JWTKey:         os.Getenv("OAUTH_JWT_KEY"),
		AuthCodeTTL:    getEnvDurationOrDefault("OAUTH_AUTH_CODE_TTL", 5*time.Minute),
		DatabaseFile:   getEnvOrDefault("OAUTH_DATABASE_FILE", "authd.db"),
		PepperFile:     getEnvOrDefault("OAUTH_PEPPER_FILE", "pepper"),
		Env:            getEnvOrDefault("ENV", "dev"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      getEnvOrDefault("LOG_FORMAT", "json"),
		Port:           getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault(
			"SHUTDOWN_GRACE_PERIOD", 10*time.Second,
		),
	}

	if rsaBitsStr := os.Getenv("OAUTH_RSA_BITS"); rsaBitsStr != "" {
		if bits, err := strconv.Atoi(rsaBitsStr); err == nil {
			cfg.RSABits = bits
		}
	}

	if cfg.Issuer == "" {
		cfg.Issuer = "https://authd.invalid"
	}
	if cfg.OAuthSecretKey == "" {
		cfg.OAuthSecretKey = "dev-secret-key-change-me"
	}
	if cfg.DialogHMACKey == "" {
		cfg.DialogHMACKey = "dev-dialog-key-change-me"
	}

	cfg.AccessTTL = ttlTableFromEnv("OAUTH_ACCESS_TTL", defaultAccessTTL)
	cfg.RefreshTTL = ttlTableFromEnv("OAUTH_REFRESH_TTL", defaultRefreshTTL)

	return cfg
}

var defaultAccessTTL = service.TTLTable{
	{Type: domain.TypeConfidential, Internal: true}:  1 * time.Hour,
	{Type: domain.TypeConfidential, Internal: false}: 15 * time.Minute,
	{Type: domain.TypePublic, Internal: true}:         30 * time.Minute,
	{Type: domain.TypePublic, Internal: false}:        10 * time.Minute,
}

var defaultRefreshTTL = service.TTLTable{
	{Type: domain.TypeConfidential, Internal: true}:  30 * 24 * time.Hour,
	{Type: domain.TypeConfidential, Internal: false}: 14 * 24 * time.Hour,
	{Type: domain.TypePublic, Internal: true}:         30 * 24 * time.Hour,
	{Type: domain.TypePublic, Internal: false}:        14 * 24 * time.Hour,
}

// ttlTableFromEnv reads the four class-keyed duration overrides
// "<prefix>_CONFIDENTIAL_INTERNAL" etc, falling back to fallback per class
// when unset or unparsable.
func ttlTableFromEnv(prefix string, fallback service.TTLTable) service.TTLTable {
	table := make(service.TTLTable, 4)
	for class, def := range fallback {
		suffix := ttlEnvSuffix(class)
		table[class] = getEnvDurationOrDefault(prefix+"_"+suffix, def)
	}
	return table
}

func ttlEnvSuffix(class service.TTLClass) string {
	kind := "PUBLIC"
	if class.Type == domain.TypeConfidential {
		kind = "CONFIDENTIAL"
	}
	scope := "EXTERNAL"
	if class.Internal {
		scope = "INTERNAL"
	}
	return kind + "_" + scope
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return defaultValue
}
