package models

import (
	"encoding/json"
	"strings"
	"time"
)

// RecordPerformance mirrors BacktestResult's performance fields.
type RecordPerformance struct {
	Performance
	SignalsGenerated int `json:"signals_generated"`
}

// ParameterRecord is the persisted best parameter set for (coin, strategy)
// produced by one optimization run. Unknown JSON fields are ignored on read.
type ParameterRecord struct {
	Coin           string            `json:"coin"`
	Strategy       StrategyID        `json:"strategy"`
	Timestamp      time.Time         `json:"timestamp"`
	TimeRange      string            `json:"timerange"`
	PositionSize   float64           `json:"position_size_usd"`
	BestParameters Params            `json:"best_parameters"`
	Performance    RecordPerformance `json:"performance"`
}

// NewParameterRecord builds a record from the winning result of a run.
func NewParameterRecord(res BacktestResult, runAt time.Time, timeRange string, positionSize float64) *ParameterRecord {
	return &ParameterRecord{
		Coin:           res.Coin,
		Strategy:       res.Strategy,
		Timestamp:      runAt.UTC(),
		TimeRange:      timeRange,
		PositionSize:   positionSize,
		BestParameters: res.Params.Clone(),
		Performance: RecordPerformance{
			Performance:      res.Performance,
			SignalsGenerated: res.SignalsGenerated,
		},
	}
}

// recordTimeLayouts are tried in order when reading a record timestamp.
// Zone-less values are taken as UTC.
var recordTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"20060102_150405",
}

// UnmarshalJSON accepts RFC3339 and zone-less ISO-8601 timestamps. An
// unparseable timestamp decodes as the zero time so callers can fall back
// to the file name.
func (r *ParameterRecord) UnmarshalJSON(b []byte) error {
	type plain ParameterRecord
	aux := struct {
		*plain
		Timestamp json.RawMessage `json:"timestamp"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.Timestamp = parseRecordTime(aux.Timestamp)
	return nil
}

func parseRecordTime(raw json.RawMessage) time.Time {
	var v string
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return time.Time{}
	}
	v = strings.TrimSpace(v)
	for _, layout := range recordTimeLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
