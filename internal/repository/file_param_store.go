package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ParamSweep/internal/domain/models"
	domrepo "ParamSweep/internal/domain/repository"
	applogger "ParamSweep/pkg/logger"
)

const recordTimeLayout = "20060102_150405"

// FileParamStore keeps one JSON document per record in a directory, named
// {coin}_{strategy}_{YYYYMMDD_HHMMSS}.json.
type FileParamStore struct {
	dir string
	l   *applogger.Logger
}

// NewFileParamStore creates dir if needed.
func NewFileParamStore(dir string, l *applogger.Logger) (*FileParamStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	return &FileParamStore{dir: dir, l: l.With("param_store")}, nil
}

// RecordFileName returns the file name a record is stored under.
func RecordFileName(rec *models.ParameterRecord) string {
	return fmt.Sprintf("%s_%s_%s.json", rec.Coin, rec.Strategy, rec.Timestamp.UTC().Format(recordTimeLayout))
}

func (s *FileParamStore) Save(ctx context.Context, rec *models.ParameterRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	path := filepath.Join(s.dir, RecordFileName(rec))
	tmp, err := os.CreateTemp(s.dir, ".record-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close record: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename record: %w", err)
	}
	return nil
}

func (s *FileParamStore) Latest(ctx context.Context, coin string, strategy models.StrategyID) (*models.ParameterRecord, error) {
	prefix := fmt.Sprintf("%s_%s_", coin, strategy)
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domrepo.ErrParameterLookupMiss
		}
		return nil, fmt.Errorf("read results dir: %w", err)
	}

	names := make([]string, 0)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var best *models.ParameterRecord
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := s.readRecord(filepath.Join(s.dir, name))
		if err != nil {
			s.l.Warn("Skipping unreadable parameter record",
				applogger.String("file", name),
				applogger.Error(err))
			continue
		}
		if !strings.EqualFold(rec.Coin, coin) || rec.Strategy != strategy {
			continue
		}
		if rec.Timestamp.IsZero() {
			rec.Timestamp = timestampFromName(name)
		}
		if best == nil || !rec.Timestamp.Before(best.Timestamp) {
			best = rec
		}
	}

	if best == nil {
		return nil, domrepo.ErrParameterLookupMiss
	}
	return best, nil
}

func (s *FileParamStore) readRecord(path string) (*models.ParameterRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec models.ParameterRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func timestampFromName(name string) time.Time {
	base := strings.TrimSuffix(name, ".json")
	if len(base) < len(recordTimeLayout) {
		return time.Time{}
	}
	ts, err := time.Parse(recordTimeLayout, base[len(base)-len(recordTimeLayout):])
	if err != nil {
		return time.Time{}
	}
	return ts
}
