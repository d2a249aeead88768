// file: mysql_counter.go
package attachcount

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
)

type MySQLCounter struct {
	baseCounter
}

func newMySQLCounter(cfg ConnectionConfig) (*MySQLCounter, error) {
	if cfg.Port == 0 {
		cfg.Port = 3306
	}
	dsn := mysqlDSN(cfg)
	db, err := openDatabase("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql connection: %w", err)
	}
	return &MySQLCounter{newBaseCounter(cfg, db, "mysql", sq.Question)}, nil
}

func mysqlDSN(cfg ConnectionConfig) string {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	sslMode := strings.ToLower(strings.TrimSpace(cfg.SSLMode))
	if sslMode == "disable" {
		dsn += "&tls=false"
	} else if sslMode != "" {
		dsn += "&tls=true"
	}
	return dsn
}
