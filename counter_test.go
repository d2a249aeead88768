package attachcount

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caseguard-backend/internal/attachment"
)

func newMockCounter(t *testing.T, dialect string, placeholder sq.PlaceholderFormat) (*baseCounter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	counter := newBaseCounter(ConnectionConfig{Type: dialect}, db, dialect, placeholder)
	t.Cleanup(func() { _ = counter.Close() })
	return &counter, mock
}

func TestCountAlertsPostgres(t *testing.T) {
	counter, mock := newMockCounter(t, "postgres", sq.Dollar)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT alert_id) FROM case_attachment_alerts WHERE case_id = $1")).
		WithArgs("case-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(998))

	count, err := counter.CountOfItemsOfKind(context.Background(), "case-1", attachment.KindAlert)
	require.NoError(t, err)
	assert.Equal(t, 998, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountFilesMySQL(t *testing.T) {
	counter, mock := newMockCounter(t, "mysql", sq.Question)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM case_attachments WHERE case_id = ? AND attachment_type = ? AND external_reference_type_id = ?")).
		WithArgs("case-2", "externalReference", ".files").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := counter.CountOfItemsOfKind(context.Background(), "case-2", attachment.KindFile)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountFilesMSSQLPlaceholders(t *testing.T) {
	counter, mock := newMockCounter(t, "mssql", sq.AtP)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE case_id = @p1 AND attachment_type = @p2 AND external_reference_type_id = @p3")).
		WithArgs("case-3", "externalReference", ".files").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	count, err := counter.CountOfItemsOfKind(context.Background(), "case-3", attachment.KindFile)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountQueryErrorIsWrapped(t *testing.T) {
	counter, mock := newMockCounter(t, "postgres", sq.Dollar)
	boom := errors.New("connection reset")
	mock.ExpectQuery("case_attachment_alerts").WillReturnError(boom)

	_, err := counter.CountOfItemsOfKind(context.Background(), "case-1", attachment.KindAlert)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "count alert attachments in postgres")
}

func TestCountRejectsBadInput(t *testing.T) {
	counter, mock := newMockCounter(t, "postgres", sq.Dollar)

	_, err := counter.CountOfItemsOfKind(context.Background(), " ", attachment.KindAlert)
	assert.EqualError(t, err, "case id is required")

	_, err = counter.CountOfItemsOfKind(context.Background(), "case-1", attachment.KindOther)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestConnectionPings(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	counter := newBaseCounter(ConnectionConfig{Type: "mysql"}, db, "mysql", sq.Question)
	defer counter.Close()

	mock.ExpectPing().WillReturnError(errors.New("refused"))
	err = counter.TestConnection(context.Background())
	assert.EqualError(t, err, "ping mysql: refused")
}

func TestNewCounterRejectsUnknownType(t *testing.T) {
	_, err := NewCounter(ConnectionConfig{})
	assert.EqualError(t, err, "connection type is required")

	_, err = NewCounter(ConnectionConfig{Type: "oracle"})
	assert.EqualError(t, err, `unsupported counter backend "oracle"`)
}

func TestNewCounterAcceptsAliases(t *testing.T) {
	tests := []struct {
		backend string
		want    any
	}{
		{backend: " PostgreSQL ", want: &PostgresCounter{}},
		{backend: "sqlserver", want: &MSSQLCounter{}},
		{backend: "MySQL", want: &MySQLCounter{}},
	}
	for _, tt := range tests {
		counter, err := NewCounter(ConnectionConfig{Type: tt.backend, Host: "localhost", Database: "cases"})
		require.NoError(t, err, tt.backend)
		assert.IsType(t, tt.want, counter, tt.backend)
		_ = counter.Close()
	}
}

func TestNewCounterDefaultsPorts(t *testing.T) {
	counter, err := NewCounter(ConnectionConfig{Type: "postgres", Host: "localhost", Database: "cases"})
	require.NoError(t, err)
	defer counter.Close()
	pg, ok := counter.(*PostgresCounter)
	require.True(t, ok)
	assert.Equal(t, 5432, pg.cfg.Port)
}

func TestDSNBuilders(t *testing.T) {
	cfg := ConnectionConfig{Host: "db", Port: 3306, User: "app", Password: "p@ss", Database: "cases", SSLMode: "disable"}
	assert.Equal(t, "app:p@ss@tcp(db:3306)/cases?parseTime=true&tls=false", mysqlDSN(cfg))

	cfg.Port = 1433
	assert.Equal(t, "sqlserver://app:p%40ss@db:1433?database=cases&encrypt=disable", mssqlDSN(cfg))

	cfg.SSLMode = "require"
	assert.Contains(t, mssqlDSN(cfg), "encrypt=true")
}
