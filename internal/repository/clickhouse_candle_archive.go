package repository

import (
	"context"
	"fmt"

	"ParamSweep/internal/domain/models"
	domrepo "ParamSweep/internal/domain/repository"
	pkgch "ParamSweep/pkg/clickhouse"
)

var candleColumns = []string{"coin", "interval", "ts", "open", "high", "low", "close", "volume"}

// RowInserter writes rows in chunked multi-row inserts.
type RowInserter interface {
	InsertRows(ctx context.Context, table string, columns []string, rows [][]interface{}, chunk int) (int, error)
}

// ClickHouseCandleArchive appends fetched candles to <db>.candles. The
// table is a ReplacingMergeTree, so refetched candles collapse on merge.
type ClickHouseCandleArchive struct {
	ins   RowInserter
	table string
}

func NewClickHouseCandleArchive(ins RowInserter, database string) *ClickHouseCandleArchive {
	return &ClickHouseCandleArchive{ins: ins, table: database + ".candles"}
}

func (a *ClickHouseCandleArchive) StoreCandles(ctx context.Context, coin string, iv domrepo.Interval, s models.Series) error {
	rows := make([][]interface{}, 0, len(s))
	for _, c := range s {
		rows = append(rows, []interface{}{coin, string(iv), c.Timestamp.UTC(), c.Open, c.High, c.Low, c.Close, c.Volume})
	}
	if _, err := a.ins.InsertRows(ctx, a.table, candleColumns, rows, pkgch.DefaultInsertChunk); err != nil {
		return fmt.Errorf("archive candles %s/%s: %w", coin, iv, err)
	}
	return nil
}

func (a *ClickHouseCandleArchive) Close() error {
	return nil // connection owned by the client
}
