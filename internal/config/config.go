package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all configuration for the application
type Config struct {
	AppMode        string
	Port           string
	AllowedOrigins string
	Database       DatabaseConfig
	JWT            JWTConfig
	Cookie         CookieConfig
	Security       SecurityConfig
	Redis          RedisConfig
	AMQP           AMQPConfig
	Log            LogConfig
	Seed           SeedConfig
	Cron           CronConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds session token configuration
type JWTConfig struct {
	Secret      string
	SessionDays int
}

// SessionTTL returns how long a session token stays valid
func (j JWTConfig) SessionTTL() time.Duration {
	return time.Duration(j.SessionDays) * 24 * time.Hour
}

// CookieConfig holds session cookie configuration
type CookieConfig struct {
	Name     string
	Secure   bool
	SameSite string
	Domain   string
}

// SecurityConfig holds password and signup policy
type SecurityConfig struct {
	BcryptCost            int
	AllowPrivilegedSignup bool

	// Requests per minute per IP; 0 disables the limiter
	RateLimit     int
	AuthRateLimit int
}

// RedisConfig holds redis configuration; an empty Addr disables redis
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a redis server is configured
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// AMQPConfig holds event publishing configuration; an empty URL disables publishing
type AMQPConfig struct {
	URL      string
	Exchange string
}

// Enabled reports whether a broker is configured
func (a AMQPConfig) Enabled() bool {
	return a.URL != ""
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// SeedConfig holds the staff accounts created at startup when missing
type SeedConfig struct {
	AdminName        string
	AdminEmail       string
	AdminPassword    string
	VerifierName     string
	VerifierEmail    string
	VerifierPassword string
}

// CronConfig holds schedules of background jobs
type CronConfig struct {
	RevocationPurgeSchedule string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, using environment variables")
	}

	// Trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	cfg := &Config{
		AppMode:        appMode,
		Port:           getEnv("PORT", "8000"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:5173"),
		Database:       loadDatabaseConfig(appMode),
		JWT:            loadJWTConfig(appMode),
		Cookie:         loadCookieConfig(appMode),
		Security:       loadSecurityConfig(appMode),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "credit.loans"),
		},
		Log:  loadLogConfig(appMode),
		Seed: loadSeedConfig(),
		Cron: CronConfig{
			RevocationPurgeSchedule: getEnv("REVOCATION_PURGE_SCHEDULE", "@hourly"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().Str("mode", appMode).Msg("configuration loaded")
	return cfg, nil
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	if c.Database.Driver != "mysql" && c.Database.Driver != "postgres" {
		return fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'mysql' or 'postgres')", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("%s_JWT_SECRET is required", strings.ToUpper(c.AppMode))
	}
	if c.JWT.SessionDays < 1 {
		return fmt.Errorf("SESSION_TOKEN_DAYS must be positive")
	}
	// session cookies are sent with credentials, which CORS forbids for "*"
	if o := c.GetAllowedOrigins(); o == "" || strings.Contains(o, "*") {
		return fmt.Errorf("ALLOWED_ORIGINS must list explicit origins")
	}
	switch strings.ToLower(c.Cookie.SameSite) {
	case "strict", "lax", "none":
	default:
		return fmt.Errorf("invalid COOKIE_SAMESITE: '%s'", c.Cookie.SameSite)
	}
	return nil
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)

	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))
	defaultPort := "3306"
	if driver == "postgres" {
		defaultPort = "5432"
	}

	return DatabaseConfig{
		Driver:   driver,
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", defaultPort),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "credit_app"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	defaultSecret := ""
	if mode == "dev" {
		defaultSecret = "dev_secret_change_me"
	}

	return JWTConfig{
		Secret:      getEnv(prefix+"JWT_SECRET", defaultSecret),
		SessionDays: getEnvInt("SESSION_TOKEN_DAYS", 7),
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := modePrefix(mode)

	return CookieConfig{
		Name:     getEnv("COOKIE_NAME", "token"),
		Secure:   getEnvBool(prefix+"COOKIE_SECURE", mode == "prod"),
		SameSite: getEnv("COOKIE_SAMESITE", "Strict"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func loadSecurityConfig(mode string) SecurityConfig {
	return SecurityConfig{
		BcryptCost:            getEnvInt("BCRYPT_COST", 10),
		AllowPrivilegedSignup: getEnvBool("ALLOW_PRIVILEGED_SIGNUP", mode == "dev"),
		RateLimit:             getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
		AuthRateLimit:         getEnvInt("AUTH_RATE_LIMIT_PER_MINUTE", 5),
	}
}

func loadLogConfig(mode string) LogConfig {
	defaultLevel, defaultFormat := "debug", "console"
	if mode == "prod" {
		defaultLevel, defaultFormat = "info", "json"
	}
	return LogConfig{
		Level:  getEnv("LOG_LEVEL", defaultLevel),
		Format: getEnv("LOG_FORMAT", defaultFormat),
	}
}

func loadSeedConfig() SeedConfig {
	return SeedConfig{
		AdminName:        getEnv("SEED_ADMIN_NAME", "Administrator"),
		AdminEmail:       getEnv("SEED_ADMIN_EMAIL", ""),
		AdminPassword:    getEnv("SEED_ADMIN_PASSWORD", ""),
		VerifierName:     getEnv("SEED_VERIFIER_NAME", "Verifier"),
		VerifierEmail:    getEnv("SEED_VERIFIER_EMAIL", ""),
		VerifierPassword: getEnv("SEED_VERIFIER_PASSWORD", ""),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS as a comma separated list
func (c *Config) GetAllowedOrigins() string {
	origins := strings.Split(c.AllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return strings.Join(origins, ",")
}
