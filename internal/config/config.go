// Package config loads application configuration from environment variables.
// A .env file is honoured when present so local development does not need the
// variables exported in the shell.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable: strings for identifiers and secrets, ints for
// durations and costs.
type Config struct {
	Env            string // application environment ("dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	// Payment provider credentials. The public key is handed to browsers,
	// the secret key authenticates server-side API calls, and the price id
	// selects the fixed subscription plan.
	PayPublicKey string
	PaySecretKey string
	PayPriceID   string
	PayAPIBase   string // provider API base URL (overridable for tests)

	// Location is the service time zone; reservation date/time submissions
	// are interpreted in it.
	Location *time.Location
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values cause
// the program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		PayPublicKey:   must("PAY_PUBLIC_KEY"),
		PaySecretKey:   must("PAY_SECRET_KEY"),
		PayPriceID:     must("PAY_PRICE_ID"),
		PayAPIBase:     getenv("PAY_API_BASE", "https://api.stripe.com"),
		Location:       loadLocation(),
	}
}

func loadLocation() *time.Location {
	name := getenv("TIME_ZONE", "Asia/Tokyo")
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatalf("invalid TIME_ZONE %q: %v", name, err)
	}
	return loc
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

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
