package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver (pure Go)
)

// DefaultBatchSize is the number of rows per INSERT statement.
const DefaultBatchSize = 100

// maxParams is the PostgreSQL limit on bind parameters per statement.
const maxParams = 65535

// Config selects the databases and tables to migrate.
type Config struct {
	SQLitePath  string
	PostgresDSN string
	BatchSize   int
	Tables      []string // empty means every table
}

// Migrator copies tables from Source (SQLite) to Dest (PostgreSQL).
type Migrator struct {
	Source    *sql.DB
	Dest      *sql.DB
	BatchSize int
	Tables    []string
	Logger    *slog.Logger
}

// Open connects to both databases and returns a Migrator that owns them.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Migrator, error) {
	if cfg.SQLitePath == "" {
		return nil, errors.New("sqlite path is required")
	}
	if cfg.PostgresDSN == "" {
		return nil, errors.New("postgres DSN is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	src, err := sql.Open("sqlite", "file:"+cfg.SQLitePath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := src.PingContext(ctx); err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", cfg.SQLitePath, err)
	}

	logger.Debug("connecting to postgres")
	dst, err := sql.Open("pgx", cfg.PostgresDSN)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := dst.PingContext(ctx); err != nil {
		_ = src.Close()
		_ = dst.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &Migrator{
		Source:    src,
		Dest:      dst,
		BatchSize: cfg.BatchSize,
		Tables:    cfg.Tables,
		Logger:    logger,
	}, nil
}

// Close closes both databases.
func (m *Migrator) Close() error {
	var errs []error
	if m.Source != nil {
		errs = append(errs, m.Source.Close())
	}
	if m.Dest != nil {
		errs = append(errs, m.Dest.Close())
	}
	return errors.Join(errs...)
}

func (m *Migrator) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.Logger
}

// Run copies every selected table. Each table is copied in its own
// transaction; the first table that fails stops the run and the summary
// holds the tables copied before it.
func (m *Migrator) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}

	tables, err := m.selectTables(ctx)
	if err != nil {
		return summary, err
	}
	m.logger().Info("migrating tables", "count", len(tables))

	for _, table := range tables {
		ts, err := m.copyTable(ctx, table)
		if err != nil {
			summary.Duration = time.Since(start)
			return summary, fmt.Errorf("failed to migrate table %s: %w", table, err)
		}
		summary.Tables = append(summary.Tables, ts)
		m.logger().Info("table migrated", "table", table, "rows", ts.Rows)
	}

	summary.Duration = time.Since(start)
	return summary, nil
}

// selectTables lists the source tables, narrowed to m.Tables when set.
func (m *Migrator) selectTables(ctx context.Context) ([]string, error) {
	all, err := listTables(ctx, m.Source)
	if err != nil {
		return nil, err
	}
	if len(m.Tables) == 0 {
		return all, nil
	}

	var missing []string
	for _, t := range m.Tables {
		if !slices.Contains(all, t) {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("tables not found in source: %s", strings.Join(missing, ", "))
	}
	return m.Tables, nil
}

func (m *Migrator) copyTable(ctx context.Context, table string) (TableSummary, error) {
	ts := TableSummary{Name: table}

	cols, err := describeTable(ctx, m.Source, table)
	if err != nil {
		return ts, err
	}
	ts.Columns = cols

	tx, err := m.Dest.BeginTx(ctx, nil)
	if err != nil {
		return ts, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, dropTableSQL(table)); err != nil {
		return ts, fmt.Errorf("failed to drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(table, cols)); err != nil {
		return ts, fmt.Errorf("failed to create table: %w", err)
	}

	batchSize := m.batchSize(len(cols))
	batch := make([]any, 0, batchSize*len(cols))
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n := len(batch) / len(cols)
		if _, err := tx.ExecContext(ctx, insertSQL(table, cols, n), batch...); err != nil {
			return fmt.Errorf("failed to insert rows: %w", err)
		}
		ts.Rows += n
		batch = batch[:0]
		return nil
	}

	err = readRows(ctx, m.Source, table, cols, func(row []any) error {
		for _, v := range row {
			batch = append(batch, NormalizeDate(v))
		}
		if len(batch) == batchSize*len(cols) {
			return flush()
		}
		return nil
	})
	if err != nil {
		return ts, err
	}
	if err := flush(); err != nil {
		return ts, err
	}

	if err := tx.Commit(); err != nil {
		return ts, fmt.Errorf("failed to commit: %w", err)
	}
	return ts, nil
}

// batchSize returns the rows per INSERT, capped by the parameter limit.
func (m *Migrator) batchSize(columns int) int {
	n := m.BatchSize
	if n <= 0 {
		n = DefaultBatchSize
	}
	return max(1, min(n, maxParams/columns))
}

func dropTableSQL(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", quoteIdent(table))
}

func createTableSQL(table string, cols []Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = quoteIdent(c.Name) + " " + c.Type
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
}

// insertSQL builds a multi-row INSERT with numbered parameters.
func insertSQL(table string, cols []Column, rows int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(quoteIdent(table))
	b.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdent(c.Name))
	}
	b.WriteString(") VALUES ")

	param := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for i := range cols {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", param)
			param++
		}
		b.WriteByte(')')
	}
	return b.String()
}
