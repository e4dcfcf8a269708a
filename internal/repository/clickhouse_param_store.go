package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"ParamSweep/internal/domain/models"
	domrepo "ParamSweep/internal/domain/repository"
	pkgch "ParamSweep/pkg/clickhouse"
)

var recordColumns = []string{"coin", "strategy", "run_at", "time_range", "total_profit", "win_rate", "payload"}

// ClickHouseParamStore stores records in <db>.param_records. The full
// record is kept as JSON in payload; the other columns are for querying.
type ClickHouseParamStore struct {
	client *pkgch.Client
	table  string
}

func NewClickHouseParamStore(client *pkgch.Client) *ClickHouseParamStore {
	return &ClickHouseParamStore{client: client, table: client.Table("param_records")}
}

func (s *ClickHouseParamStore) Save(ctx context.Context, rec *models.ParameterRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	row := []interface{}{
		rec.Coin,
		string(rec.Strategy),
		rec.Timestamp.UTC(),
		rec.TimeRange,
		rec.Performance.TotalProfit,
		rec.Performance.WinRate,
		string(payload),
	}
	_, err = s.client.InsertRows(ctx, s.table, recordColumns, [][]interface{}{row}, 1)
	return err
}

func (s *ClickHouseParamStore) Latest(ctx context.Context, coin string, strategy models.StrategyID) (*models.ParameterRecord, error) {
	q := fmt.Sprintf("SELECT payload FROM %s WHERE coin = ? AND strategy = ? ORDER BY run_at DESC LIMIT 1", s.table)
	var payload string
	if err := s.client.DB().QueryRowContext(ctx, q, coin, string(strategy)).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domrepo.ErrParameterLookupMiss
		}
		return nil, err
	}
	var rec models.ParameterRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}
