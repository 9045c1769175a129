package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables

	"github.com/joho/godotenv" // godotenv loads a local .env file in development
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Strings for identifiers and secrets.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to verify tenant JWTs issued by the edge
	AdminKeyHash string // bcrypt hash of the administrative API key (optional)
	RabbitURL    string // AMQP broker URL (optional; publisher falls back to localhost)
}

// Load reads configuration values from environment variables and returns a
// Config. A .env file is applied first when present so local development
// does not need exported variables. Required variables are enforced by
// must() and missing values cause the program to exit with a fatal log
// message.
func Load() Config {
	// Ignore the error: a missing .env simply means the variables must
	// already be in the process environment.
	_ = godotenv.Load()

	return Config{
		Env:          must("APP_ENV"),             // environment (dev/test/prod)
		Port:         must("APP_PORT"),            // port to bind the HTTP server
		DBUser:       must("DB_USER"),             // database user
		DBPass:       os.Getenv("DB_PASS"),        // database password (empty allowed)
		DBHost:       must("DB_HOST"),             // database host
		DBPort:       must("DB_PORT"),             // database port
		DBName:       must("DB_NAME"),             // database name
		JWTSecret:    must("JWT_SECRET"),          // secret used for verifying JWTs
		AdminKeyHash: os.Getenv("ADMIN_KEY_HASH"), // bcrypt hash; admin scope disabled when empty
		RabbitURL:    os.Getenv("RABBITMQ_URL"),   // broker URL for offer events
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
