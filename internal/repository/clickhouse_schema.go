package repository

import "fmt"

// ClickHouseSchema returns the DDL for the parameter record and candle
// archive tables in database db.
func ClickHouseSchema(db string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.param_records (
	coin String,
	strategy LowCardinality(String),
	run_at DateTime64(3, 'UTC'),
	time_range String,
	total_profit Float64,
	win_rate Float64,
	payload String
) ENGINE = ReplacingMergeTree
ORDER BY (coin, strategy, run_at)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.candles (
	coin String,
	interval LowCardinality(String),
	ts DateTime('UTC'),
	open Float64,
	high Float64,
	low Float64,
	close Float64,
	volume Float64
) ENGINE = ReplacingMergeTree
ORDER BY (coin, interval, ts)`, db),
	}
}
