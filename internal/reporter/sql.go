package reporter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb" // for sqlserver
	_ "github.com/go-sql-driver/mysql"   // for mysql
	_ "github.com/lib/pq"                // for postgres
)

// DBConfig holds database connection configuration
type DBConfig struct {
	Type     string
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// DSN builds the driver-specific data source name
func (c DBConfig) DSN() (string, error) {
	switch c.Type {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.Host, c.Port, c.User, c.Password, c.Database), nil
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			c.User, c.Password, c.Host, c.Port, c.Database), nil
	case "sqlserver":
		return fmt.Sprintf("server=%s;port=%d;user id=%s;password=%s;database=%s",
			c.Host, c.Port, c.User, c.Password, c.Database), nil
	default:
		return "", fmt.Errorf("unsupported database type: %s", c.Type)
	}
}

// placeholder returns the n-th (1-based) bind parameter marker of the dialect
func placeholder(dbType string, n int) string {
	switch dbType {
	case "postgres":
		return fmt.Sprintf("$%d", n)
	case "sqlserver":
		return fmt.Sprintf("@p%d", n)
	default:
		return "?"
	}
}

func insertStatement(dbType string) string {
	columns := []string{"run_id", "run_at", "scenario", "severity", "method", "url", "status", "duration_ms", "outcome", "failure_kind", "error"}
	marks := make([]string, len(columns))
	for i := range columns {
		marks[i] = placeholder(dbType, i+1)
	}
	return fmt.Sprintf("INSERT INTO contract_results (%s) VALUES (%s)",
		strings.Join(columns, ", "), strings.Join(marks, ", "))
}

func createStatement(dbType string) string {
	text := "TEXT"
	varchar := "VARCHAR(255)"
	timestamp := "TIMESTAMP"
	if dbType == "sqlserver" {
		text = "NVARCHAR(MAX)"
		varchar = "NVARCHAR(255)"
		timestamp = "DATETIME2"
	}

	table := fmt.Sprintf(`CREATE TABLE contract_results (
	run_id VARCHAR(36) NOT NULL,
	run_at %[3]s NOT NULL,
	scenario %[2]s NOT NULL,
	severity VARCHAR(32),
	method VARCHAR(16),
	url %[1]s,
	status INT,
	duration_ms BIGINT,
	outcome VARCHAR(16) NOT NULL,
	failure_kind VARCHAR(32),
	error %[1]s
)`, text, varchar, timestamp)

	switch dbType {
	case "sqlserver":
		return "IF OBJECT_ID(N'contract_results', N'U') IS NULL " + table
	default:
		return strings.Replace(table, "CREATE TABLE", "CREATE TABLE IF NOT EXISTS", 1)
	}
}

// SQLSink stores scenario results in a SQL database
type SQLSink struct {
	db     *sql.DB
	dbType string
}

// OpenSQLSink connects to the configured database and ensures the results table exists
func OpenSQLSink(ctx context.Context, config DBConfig) (*SQLSink, error) {
	dsn, err := config.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(config.Type, dsn)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	sink := NewSQLSink(db, config.Type)
	if err := sink.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return sink, nil
}

// NewSQLSink wraps an open database of the given type
func NewSQLSink(db *sql.DB, dbType string) *SQLSink {
	return &SQLSink{db: db, dbType: dbType}
}

func (s *SQLSink) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createStatement(s.dbType)); err != nil {
		return fmt.Errorf("failed to create results table: %w", err)
	}
	return nil
}

// Write inserts one row per scenario in a single transaction
func (s *SQLSink) Write(ctx context.Context, report Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertStatement(s.dbType))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range report.Results {
		if _, err := stmt.ExecContext(ctx,
			report.RunID, report.Timestamp, r.Scenario, r.Severity, r.Method, r.URL,
			r.Status, r.Duration.Milliseconds(), r.Outcome, r.FailureKind, r.Error,
		); err != nil {
			return fmt.Errorf("failed to insert result %q: %w", r.Scenario, err)
		}
	}

	return tx.Commit()
}

// Close closes the database
func (s *SQLSink) Close() error {
	return s.db.Close()
}
