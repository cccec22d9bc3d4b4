package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "time"    // time parses durations for lifecycle knobs
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Monetary knobs are integer
// minor units (cents); percentages are whole numbers.
type Config struct {
    Env       string // application environment (e.g. "dev", "prod")
    Port      string // HTTP port to listen on
    DBUser    string // database username
    DBPass    string // database password (optional)
    DBHost    string // database host address
    DBPort    string // database port number
    DBName    string // database name
    JWTSecret string // secret used to verify access tokens

    MinPayableCents     int64         // floor for an order's final amount
    MaxBonusPercent     int64         // cap on bonus deduction, percent of gross after promo
    BonusAccrualPercent int64         // loyalty accrual on payment, percent of final
    OrderTTL            time.Duration // payment window for a fresh order
    ReturnGrace         time.Duration // minimum time before session start to accept a return

    ExpireInterval   time.Duration // order expiry sweep period
    SessionInterval  time.Duration // session status sweep period
    CompleteInterval time.Duration // order completion sweep period
    SettleInterval   time.Duration // contract settlement sweep period
    SweepBatchSize   int           // max rows processed per sweep tick
}

// Load reads configuration values from environment variables and
// returns a Config.  Connection settings are required and enforced by
// must(); engine knobs fall back to sensible defaults so a bare
// development environment still boots.
func Load() Config {
    return Config{
        Env:       must("APP_ENV"),
        Port:      must("APP_PORT"),
        DBUser:    must("DB_USER"),
        DBPass:    os.Getenv("DB_PASS"), // empty allowed
        DBHost:    must("DB_HOST"),
        DBPort:    must("DB_PORT"),
        DBName:    must("DB_NAME"),
        JWTSecret: must("JWT_SECRET"),

        MinPayableCents:     envInt64("MIN_PAYABLE_CENTS", 100),
        MaxBonusPercent:     envInt64("MAX_BONUS_PERCENT", 30),
        BonusAccrualPercent: envInt64("BONUS_ACCRUAL_PERCENT", 10),
        OrderTTL:            envDur("ORDER_TTL", 15*time.Minute),
        ReturnGrace:         envDur("RETURN_GRACE", 10*time.Minute),

        ExpireInterval:   envDur("EXPIRE_SWEEP_INTERVAL", 30*time.Second),
        SessionInterval:  envDur("SESSION_SWEEP_INTERVAL", time.Minute),
        CompleteInterval: envDur("COMPLETE_SWEEP_INTERVAL", 2*time.Minute),
        SettleInterval:   envDur("SETTLE_SWEEP_INTERVAL", 2*time.Minute),
        SweepBatchSize:   envInt("SWEEP_BATCH_SIZE", 200),
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

// envInt64 reads an integer knob with a default.
func envInt64(key string, def int64) int64 {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    n, err := strconv.ParseInt(v, 10, 64)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, v)
    }
    return n
}
