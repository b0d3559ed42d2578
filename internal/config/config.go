package config // package config loads application configuration from environment variables

import (
	"errors"    // errors lets us ignore a missing .env file
	"io/fs"     // fs.ErrNotExist sentinel
	"log/slog"  // slog reports unreadable .env files
	"strings"   // strings normalises enum-like values
	"time"      // time types the shutdown timeout

	"github.com/joho/godotenv" // godotenv loads an optional .env file into the process env
)

// Store drivers understood by the server.
const (
	StoreFile   = "file"
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable and every one of them has a default, so the
// server starts on localhost:4321 with a JSON file store and no extra setup.
type Config struct {
	Env             string        // application environment (e.g. "dev", "prod")
	Host            string        // host to bind the HTTP server to
	Port            string        // HTTP port to listen on
	PublicDir       string        // directory of static front-end assets
	DataFile        string        // JSON file backing the file store
	StoreDriver     string        // file, mysql or memory
	AtomicWrite     bool          // write the data file via temp file + rename
	DBUser          string        // database username
	DBPass          string        // database password (optional)
	DBHost          string        // database host address
	DBPort          string        // database port number
	DBName          string        // database name
	LogLevel        string        // debug, info, warn or error
	LogFormat       string        // text or json
	ShutdownTimeout time.Duration // grace period for in-flight requests
}

// Addr returns the host:port pair the server listens on.
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

// Load reads an optional .env file and then the environment.  Variables
// already present in the environment win over the .env file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not read .env file", "err", err)
	}
	return Config{
		Env:             getenv("APP_ENV", "dev"),
		Host:            getenv("APP_HOST", "localhost"),
		Port:            getenv("APP_PORT", "4321"),
		PublicDir:       getenv("PUBLIC_DIR", "public"),
		DataFile:        getenv("DATA_FILE", "data/sessions.json"),
		StoreDriver:     strings.ToLower(getenv("STORE_DRIVER", StoreFile)),
		AtomicWrite:     envBool("STORE_ATOMIC_WRITE", false),
		DBUser:          getenv("DB_USER", "root"),
		DBPass:          getenv("DB_PASS", ""),
		DBHost:          getenv("DB_HOST", "localhost"),
		DBPort:          getenv("DB_PORT", "3306"),
		DBName:          getenv("DB_NAME", "cinema"),
		LogLevel:        strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(getenv("LOG_FORMAT", "text")),
		ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}
