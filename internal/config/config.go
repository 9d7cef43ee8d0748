package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "time"    // time expresses pool and connection lifetimes
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  It is loaded once in main and passed by value
// into the components that need it; nothing reads the environment after
// startup.
type Config struct {
    Env            string        // application environment (e.g. "dev", "prod")
    Port           string        // HTTP port to listen on
    DBUser         string        // database username
    DBPass         string        // database password (optional)
    DBHost         string        // database host address
    DBPort         string        // database port number
    DBName         string        // database name
    DBMaxConns     int           // connection pool size (open and idle)
    DBConnLifetime time.Duration // maximum age of a pooled connection
    RedisAddr      string        // host:port of the Redis server backing the rate limiter
    RedisPassword  string        // optional Redis password
    RedisDB        int           // Redis database number
    RedisTLS       bool          // dial Redis over TLS when true
    AccessSecret   string        // secret used to sign access JWTs
    RefreshSecret  string        // secret used to sign refresh JWTs (must differ from AccessSecret)
    AccessTTLMin   int           // access token time‑to‑live in minutes
    RefreshTTLDays int           // refresh token time‑to‑live in days
    BcryptCost     int           // bcrypt cost for password hashing
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The two JWT secrets
// are deliberately separate variables: compromise of one token class must
// not compromise the other.
func Load() Config {
    cfg := Config{
        Env:            must("APP_ENV"),                   // environment (dev/test/prod)
        Port:           must("APP_PORT"),                  // port to bind the HTTP server
        DBUser:         must("DB_USER"),                   // database user
        DBPass:         os.Getenv("DB_PASS"),              // database password (empty allowed)
        DBHost:         must("DB_HOST"),                   // database host
        DBPort:         must("DB_PORT"),                   // database port
        DBName:         must("DB_NAME"),                   // database name
        DBMaxConns:     envInt("DB_MAX_CONNS", 25),        // pool size, open and idle alike
        DBConnLifetime: envDur("DB_CONN_LIFETIME", 30*time.Minute),
        RedisAddr:      redisAddr(),                       // rate limiter backend (optional)
        RedisPassword:  os.Getenv("REDIS_PASSWORD"),       // empty allowed
        RedisDB:        envInt("REDIS_DB", 0),             // redis database number
        RedisTLS:       envBool("REDIS_TLS", false),       // TLS toward redis
        AccessSecret:   must("JWT_ACCESS_SECRET"),         // signing secret for access tokens
        RefreshSecret:  must("JWT_REFRESH_SECRET"),        // signing secret for refresh tokens
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),   // TTL for access tokens in minutes
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"), // TTL for refresh tokens in days
        BcryptCost:     mustInt("BCRYPT_COST"),            // bcrypt cost factor
    }
    if cfg.AccessSecret == cfg.RefreshSecret {
        log.Fatal("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
    }
    return cfg
}

// IsProd reports whether the service runs in the production environment.
// The refresh cookie is only marked Secure in production so that local
// development over plain HTTP keeps working.
func (c Config) IsProd() bool { return c.Env == "prod" }

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// redisAddr composes the Redis address.  REDIS_HOST/REDIS_PORT take
// precedence over REDIS_ADDR; with neither set the conventional local
// default applies.  Redis is optional, so none of these are must() vars.
func redisAddr() string {
    host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")
    if host != "" && port != "" {
        return host + ":" + port
    }
    return envStr("REDIS_ADDR", "localhost:6379")
}
