package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Secrets and the port are required and enforced
// by must(); missing values cause the program to exit with a fatal log
// message. Everything else falls back to the defaults the application
// shipped with.
type Config struct {
	Env              string        // application environment (e.g. "dev", "prod")
	Port             string        // HTTP port to listen on
	DBPath           string        // path to the SQLite database file
	JWTSecret        string        // secret used to sign access tokens
	JWTRefreshSecret string        // secret used to sign refresh tokens
	AccessTTLMin     int           // access token time-to-live in minutes
	RefreshTTLDays   int           // refresh token time-to-live in days
	BcryptCost       int           // bcrypt cost for password hashing
	ClientOrigin     string        // allowed CORS origin for the web client
	UploadDir        string        // directory where uploaded documents are stored
	AnalysisWorkers  int           // number of background analysis workers
	AnalysisDelay    time.Duration // simulated processing delay of the mock analyzer
}

// Load reads configuration values from environment variables and returns a
// Config.
func Load() Config {
	return Config{
		Env:              getenv("APP_ENV", "dev"),
		Port:             must("APP_PORT"),
		DBPath:           getenv("DB_PATH", "data/nyaya_mitra.db"),
		JWTSecret:        must("JWT_SECRET"),
		JWTRefreshSecret: must("JWT_REFRESH_SECRET"),
		AccessTTLMin:     envInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays:   envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:       envInt("BCRYPT_COST", 12),
		ClientOrigin:     getenv("CLIENT_ORIGIN", "http://localhost:3000"),
		UploadDir:        getenv("UPLOAD_DIR", "public/uploads/documents"),
		AnalysisWorkers:  envInt("ANALYSIS_WORKERS", 4),
		AnalysisDelay:    envDur("ANALYSIS_DELAY", 2*time.Second),
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

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
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
