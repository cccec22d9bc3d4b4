// Package database opens the MySQL connection pool used by the
// repositories.
package database

import (
    "context"
    "database/sql"
    "fmt"
    "time"

    _ "github.com/go-sql-driver/mysql"

    "github.com/iliyamo/cinema-order-engine/internal/config"
)

// Open connects to MySQL using the connection settings in cfg and
// verifies the connection with a short ping.
func Open(cfg config.Config) (*sql.DB, error) {
    auth := cfg.DBUser
    if cfg.DBPass != "" {
        auth = fmt.Sprintf("%s:%s", cfg.DBUser, cfg.DBPass)
    }
    // parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
    dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
        auth, cfg.DBHost, cfg.DBPort, cfg.DBName)

    db, err := sql.Open("mysql", dsn)
    if err != nil {
        return nil, err
    }

    // Pool settings
    db.SetMaxOpenConns(25)
    db.SetMaxIdleConns(25)
    db.SetConnMaxLifetime(30 * time.Minute)

    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := db.PingContext(ctx); err != nil {
        return nil, err
    }
    return db, nil
}
