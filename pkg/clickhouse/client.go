package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	applogger "ParamSweep/pkg/logger"
)

// DefaultInsertChunk bounds the rows of one multi-row INSERT.
const DefaultInsertChunk = 2000

// Client manages the ClickHouse connection pool.
type Client struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

// NewClient opens the pool and pings the server.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	l := cfg.Logger
	if l == nil {
		l = applogger.Nop()
	}

	db, err := sql.Open("clickhouse", buildDSN(*cfg))
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clickhouse ping %s: %w", cfg.Host, err)
	}

	l = l.With("clickhouse")
	l.Info("connected",
		applogger.String("host", cfg.Host),
		applogger.Int("port", cfg.Port),
		applogger.String("database", cfg.Database),
	)
	return &Client{db: db, database: cfg.Database, l: l}, nil
}

// NewClientFromDB wraps an already open pool.
func NewClientFromDB(db *sql.DB, database string) *Client {
	return &Client{db: db, database: database, l: applogger.Nop()}
}

// DB returns *sql.DB for direct use.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Database is the configured database name.
func (c *Client) Database() string {
	return c.database
}

// Table qualifies name with the configured database.
func (c *Client) Table(name string) string {
	return c.database + "." + name
}

func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// InitSchema runs idempotent DDL statements in order.
func (c *Client) InitSchema(ctx context.Context, stmts []string) error {
	for i, stmt := range stmts {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema statement %d: %w", i, err)
		}
	}
	c.l.Info("schema ready", applogger.Int("statements", len(stmts)))
	return nil
}

// InsertRows writes rows into table with multi-row VALUES statements of at
// most chunk rows. Every row must have len(columns) values. It returns the
// number of rows written before the first failure.
func (c *Client) InsertRows(ctx context.Context, table string, columns []string, rows [][]interface{}, chunk int) (int, error) {
	if chunk <= 0 {
		chunk = DefaultInsertChunk
	}
	written := 0
	for start := 0; start < len(rows); start += chunk {
		end := start + chunk
		if end > len(rows) {
			end = len(rows)
		}
		args := make([]interface{}, 0, (end-start)*len(columns))
		for _, row := range rows[start:end] {
			if len(row) != len(columns) {
				return written, fmt.Errorf("insert %s: row has %d values, want %d", table, len(row), len(columns))
			}
			args = append(args, row...)
		}
		started := time.Now()
		if _, err := c.db.ExecContext(ctx, insertStatement(table, columns, end-start), args...); err != nil {
			return written, fmt.Errorf("insert %s: %w", table, err)
		}
		written += end - start
		c.l.Debug("rows inserted",
			applogger.String("table", table),
			applogger.Int("rows", end-start),
			applogger.Duration("took", time.Since(started)),
		)
	}
	return written, nil
}

func insertStatement(table string, columns []string, rows int) string {
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(tuple)
	}
	return b.String()
}

func buildDSN(cfg ClientConfig) string {
	u := url.URL{
		Scheme: "clickhouse",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Database,
	}
	if cfg.UseHTTP {
		u.Scheme = "http"
	}

	q := url.Values{}
	if cfg.DialTimeout > 0 {
		q.Set("dial_timeout", cfg.DialTimeout.String())
	}
	if cfg.ReadTimeout > 0 {
		q.Set("read_timeout", cfg.ReadTimeout.String())
	}
	// write_timeout stays client-side; some server versions reject it.
	if cfg.MaxExecTime > 0 {
		q.Set("max_execution_time", strconv.Itoa(int(cfg.MaxExecTime.Seconds())))
	}
	if cfg.AsyncInsert {
		q.Set("async_insert", "1")
		if cfg.WaitForAsync {
			q.Set("wait_for_async_insert", "1")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
