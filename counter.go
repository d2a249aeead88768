// file: counter.go
package attachcount

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"caseguard-backend/internal/attachment"
)

const (
	attachmentsTable = "case_attachments"
	alertsTable      = "case_attachment_alerts"
)

// Counter answers how many items of a kind are already attached to a case.
type Counter interface {
	TestConnection(ctx context.Context) error

	CountOfItemsOfKind(ctx context.Context, caseID string, kind attachment.Kind) (int, error)

	Close() error
}

type ConnectionConfig struct {
	Type     string `json:"type" yaml:"type"` // mysql | postgres | mssql
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"`
	SSLMode  string `json:"sslMode" yaml:"sslMode"`
}

type baseCounter struct {
	cfg     ConnectionConfig
	db      *sql.DB
	builder sq.StatementBuilderType
	dialect string
}

func newBaseCounter(cfg ConnectionConfig, db *sql.DB, dialect string, placeholder sq.PlaceholderFormat) baseCounter {
	return baseCounter{
		cfg:     cfg,
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
		dialect: dialect,
	}
}

func (b *baseCounter) TestConnection(ctx context.Context) error {
	if err := b.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", b.dialect, err)
	}
	return nil
}

func (b *baseCounter) CountOfItemsOfKind(ctx context.Context, caseID string, kind attachment.Kind) (int, error) {
	query, args, err := countQuery(b.builder, caseID, kind)
	if err != nil {
		return 0, err
	}
	var count int
	if err := b.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s attachments in %s: %w", kind, b.dialect, err)
	}
	return count, nil
}

func (b *baseCounter) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// countQuery counts distinct alert ids for alerts and file references for
// files, scoped to one case.
func countQuery(builder sq.StatementBuilderType, caseID string, kind attachment.Kind) (string, []any, error) {
	if strings.TrimSpace(caseID) == "" {
		return "", nil, errors.New("case id is required")
	}
	switch kind {
	case attachment.KindAlert:
		return builder.Select("COUNT(DISTINCT alert_id)").
			From(alertsTable).
			Where(sq.Eq{"case_id": caseID}).
			ToSql()
	case attachment.KindFile:
		return builder.Select("COUNT(*)").
			From(attachmentsTable).
			Where(sq.Eq{"case_id": caseID}).
			Where(sq.Eq{"attachment_type": string(attachment.TypeExternalReference)}).
			Where(sq.Eq{"external_reference_type_id": attachment.FileAttachmentTypeID}).
			ToSql()
	default:
		return "", nil, fmt.Errorf("unsupported attachment kind %q", kind)
	}
}
