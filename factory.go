// file: factory.go
package attachcount

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type opener func(cfg ConnectionConfig) (Counter, error)

// backends maps every accepted connection type to the counter that serves it.
var backends = map[string]opener{
	"mysql":      func(cfg ConnectionConfig) (Counter, error) { return newMySQLCounter(cfg) },
	"postgres":   func(cfg ConnectionConfig) (Counter, error) { return newPostgresCounter(cfg) },
	"postgresql": func(cfg ConnectionConfig) (Counter, error) { return newPostgresCounter(cfg) },
	"mssql":      func(cfg ConnectionConfig) (Counter, error) { return newMSSQLCounter(cfg) },
	"sqlserver":  func(cfg ConnectionConfig) (Counter, error) { return newMSSQLCounter(cfg) },
}

func NewCounter(cfg ConnectionConfig) (Counter, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Type))
	if backend == "" {
		return nil, errors.New("connection type is required")
	}
	open, ok := backends[backend]
	if !ok {
		return nil, fmt.Errorf("unsupported counter backend %q", cfg.Type)
	}
	counter, err := open(cfg)
	if err != nil {
		return nil, err
	}
	return counter, nil
}

// openDatabase sizes the pool for short COUNT queries issued per request.
func openDatabase(driverName, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}
