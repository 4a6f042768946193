package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"

	"github.com/iliyamo/swapi-mirror/internal/utils"
)

// Config holds all runtime configuration values.  Most fields correspond to
// an environment variable.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	JWTSecret      string        // secret used to sign session tokens
	SessionTTL     time.Duration // session token lifetime, fixed at utils.DefaultSessionTTL
	BcryptCost     int           // bcrypt cost for password hashing
	APITokenBudget int           // requests allowed per api_tokens row
	APITokenTTL    time.Duration // lifetime of an api_tokens row
	PublicBaseURL  string        // scheme://host used for pagination links; empty derives it per request
	LogLevel       string        // logger level name
	RabbitURL      string        // AMQP broker for sync events; empty disables publishing
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  JWT_SECRET is one
// of them: the service refuses to start without a signing secret.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		SessionTTL:     utils.DefaultSessionTTL,
		BcryptCost:     envInt("BCRYPT_COST", 10),
		APITokenBudget: positiveInt("API_TOKEN_BUDGET", 5),
		APITokenTTL:    envDur("API_TOKEN_TTL", 5*time.Minute),
		PublicBaseURL:  os.Getenv("PUBLIC_BASE_URL"),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		RabbitURL:      RabbitURL(),
	}
}

// DBConfig is what is needed to reach MySQL.
type DBConfig struct {
	User, Pass, Host, Port, Name string
}

// DB returns the database part of c.
func (c Config) DB() DBConfig {
	return DBConfig{User: c.DBUser, Pass: c.DBPass, Host: c.DBHost, Port: c.DBPort, Name: c.DBName}
}

// LoadDB reads only the database variables, for tools that do not serve
// HTTP and so need no signing secret.
func LoadDB() DBConfig {
	return DBConfig{
		User: must("DB_USER"),
		Pass: os.Getenv("DB_PASS"),
		Host: must("DB_HOST"),
		Port: must("DB_PORT"),
		Name: must("DB_NAME"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// positiveInt is envInt that refuses values below one.
func positiveInt(key string, def int) int {
	n := envInt(key, def)
	if n < 1 {
		log.Fatalf("invalid value for %s: must be at least 1", key)
	}
	return n
}

// RabbitURL reads the broker url, accepting either RABBITMQ_URL or the
// older AMQP_URL name.  Empty means no broker.
func RabbitURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
