// Package clickhouse connects the cell store to ClickHouse over the native
// protocol. It converts result blocks into typed columns, discovers table
// sets from the catalog and runs planned cell queries.
package clickhouse

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/colvec"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/config"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/errors"
)

// Client is the database surface the query path needs. Errors returned by
// the database pass through unmodified.
type Client interface {
	// Execute runs a query and converts the result into typed columns.
	Execute(ctx context.Context, query string) (*colvec.ColumnSet, error)

	// Exec runs a statement without result, DDL mostly.
	Exec(ctx context.Context, query string) error
}

// Conn is the Client implementation over the native protocol.
type Conn struct {
	conn driver.Conn
}

// Connect opens a connection pool using the database section of the
// configuration.
func Connect(cfg config.DatabaseConfig) (*Conn, error) {
	compression := &clickhouse.Compression{Method: clickhouse.CompressionLZ4}
	switch cfg.Compression {
	case "zstd":
		compression.Method = clickhouse.CompressionZSTD
	case "none":
		compression.Method = clickhouse.CompressionNone
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: cfg.Addresses,
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression:  compression,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		MaxOpenConns: cfg.MaxOpenConns,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "opening connection")
	}
	return &Conn{conn: conn}, nil
}

// Execute runs a query and converts the result block into typed columns.
func (c *Conn) Execute(ctx context.Context, query string) (*colvec.ColumnSet, error) {
	rows, err := c.conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanColumnSet(rows)
}

// Exec runs a statement without reading a result.
func (c *Conn) Exec(ctx context.Context, query string) error {
	return c.conn.Exec(ctx, query)
}

// Ping checks the connection.
func (c *Conn) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close releases the connection pool.
func (c *Conn) Close() error {
	return c.conn.Close()
}
