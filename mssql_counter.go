// file: mssql_counter.go
package attachcount

import (
	"fmt"
	"net/url"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/microsoft/go-mssqldb"
)

type MSSQLCounter struct {
	baseCounter
}

func newMSSQLCounter(cfg ConnectionConfig) (*MSSQLCounter, error) {
	if cfg.Port == 0 {
		cfg.Port = 1433
	}
	db, err := openDatabase("sqlserver", mssqlDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open mssql connection: %w", err)
	}
	return &MSSQLCounter{newBaseCounter(cfg, db, "mssql", sq.AtP)}, nil
}

func mssqlDSN(cfg ConnectionConfig) string {
	user := url.QueryEscape(cfg.User)
	pass := url.QueryEscape(cfg.Password)
	sslMode := strings.ToLower(strings.TrimSpace(cfg.SSLMode))
	encrypt := "true"
	if sslMode == "disable" {
		encrypt = "disable"
	}
	return fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s&encrypt=%s", user, pass, cfg.Host, cfg.Port, cfg.Database, encrypt)
}
