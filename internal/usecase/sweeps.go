package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ParamSweep/internal/domain/models"
	domrepo "ParamSweep/internal/domain/repository"
	"ParamSweep/pkg/logger"
	"ParamSweep/pkg/util"
)

// ErrSweepNotFound is returned by Get for unknown ids.
var ErrSweepNotFound = errors.New("sweep not found")

// SweepService runs optimize → rank → persist and tracks sweep state for
// polling clients.
type SweepService struct {
	optimizer  *Optimizer
	persister  *Persister
	timeRanges map[string]int
	log        *logger.Logger

	mu     sync.RWMutex
	sweeps map[string]*models.Sweep
	cancel map[string]context.CancelFunc
}

func NewSweepService(optimizer *Optimizer, persister *Persister, timeRanges map[string]int, log *logger.Logger) *SweepService {
	return &SweepService{
		optimizer:  optimizer,
		persister:  persister,
		timeRanges: timeRanges,
		log:        log.With("sweeps"),
		sweeps:     make(map[string]*models.Sweep),
		cancel:     make(map[string]context.CancelFunc),
	}
}

// Run executes a sweep synchronously.
func (s *SweepService) Run(ctx context.Context, req models.SweepRequest, progress ProgressFunc) (*models.Sweep, error) {
	sw, params, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	s.store(sw, nil)
	s.execute(ctx, sw, params, persistRequested(req), progress)
	return s.Get(sw.ID)
}

// Start launches a sweep in the background and returns its initial state.
// The sweep outlives the request that started it.
func (s *SweepService) Start(req models.SweepRequest) (*models.Sweep, error) {
	sw, params, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.store(sw, cancel)
	snapshot := *sw

	go func() {
		defer cancel()
		s.execute(ctx, sw, params, persistRequested(req), nil)
	}()
	return &snapshot, nil
}

// Abandon cancels a running sweep. Its pending results are dropped. It
// reports false when the sweep is unknown or already finished.
func (s *SweepService) Abandon(id string) bool {
	s.mu.RLock()
	cancel, ok := s.cancel[id]
	s.mu.RUnlock()
	if ok && cancel != nil {
		cancel()
	}
	return ok
}

// Get returns a copy of the sweep state.
func (s *SweepService) Get(id string) (*models.Sweep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sw, ok := s.sweeps[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSweepNotFound, id)
	}
	cp := *sw
	return &cp, nil
}

func (s *SweepService) prepare(req models.SweepRequest) (*models.Sweep, OptimizeParams, error) {
	minutes, ok := s.timeRanges[req.TimeRange]
	if !ok {
		return nil, OptimizeParams{}, fmt.Errorf("%w: unknown time range %q", domrepo.ErrInvalidParams, req.TimeRange)
	}
	coins := util.NormalizeSymbols(req.Coins)
	var ranges models.Ranges
	if len(req.Ranges) > 0 {
		ranges = make(models.Ranges, len(req.Ranges))
		for name, values := range req.Ranges {
			ranges[name] = models.Range(values)
		}
	}

	strategy := models.StrategyID(req.Strategy)
	if _, _, err := s.optimizer.catalog.Resolve(strategy); err != nil {
		return nil, OptimizeParams{}, err
	}
	params := OptimizeParams{
		Strategy:     strategy,
		Coins:        coins,
		Ranges:       ranges,
		TimeRange:    util.Minutes(minutes),
		PositionSize: req.PositionSize,
	}
	sw := &models.Sweep{
		ID:           uuid.NewString(),
		Strategy:     strategy,
		Coins:        coins,
		TimeRange:    req.TimeRange,
		PositionSize: req.PositionSize,
		Status:       models.SweepPending,
		StartedAt:    time.Now().UTC(),
	}
	return sw, params, nil
}

func (s *SweepService) store(sw *models.Sweep, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweeps[sw.ID] = sw
	if cancel != nil {
		s.cancel[sw.ID] = cancel
	}
}

func (s *SweepService) update(sw *models.Sweep, fn func(*models.Sweep)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(sw)
}

func (s *SweepService) execute(ctx context.Context, sw *models.Sweep, params OptimizeParams, persist bool, progress ProgressFunc) {
	s.update(sw, func(sw *models.Sweep) { sw.Status = models.SweepRunning })
	s.log.Info("sweep started",
		logger.String("id", sw.ID),
		logger.String("strategy", sw.Strategy.String()),
		logger.Strings("coins", sw.Coins),
		logger.String("time_range", sw.TimeRange),
	)

	res, err := s.optimizer.Optimize(ctx, params, func(p models.Progress) {
		s.update(sw, func(sw *models.Sweep) { sw.Progress = p })
		if progress != nil {
			progress(p)
		}
	})

	finish := func(fn func(*models.Sweep)) {
		s.update(sw, func(sw *models.Sweep) {
			now := time.Now().UTC()
			sw.FinishedAt = &now
			fn(sw)
			delete(s.cancel, sw.ID)
		})
	}

	if err != nil {
		status := models.SweepFailed
		if ctx.Err() != nil {
			status = models.SweepAbandoned
		}
		s.log.Warn("sweep stopped", logger.String("id", sw.ID), logger.String("status", string(status)), logger.Error(err))
		finish(func(sw *models.Sweep) {
			sw.Status = status
			sw.Error = err.Error()
		})
		return
	}

	best := RankBestPerCoin(res.Results)
	var report *models.SaveReport
	if persist && len(best) > 0 {
		r := s.persister.PersistBest(ctx, best, sw.TimeRange, sw.PositionSize)
		report = &r
		if r.Partial() {
			s.log.Warn("sweep saved partially",
				logger.String("id", sw.ID),
				logger.Int("saved", len(r.Saved)),
				logger.Int("failed", len(r.Failed)),
			)
		}
	}

	finish(func(sw *models.Sweep) {
		sw.Status = models.SweepDone
		sw.Progress = res.Progress
		sw.Skipped = res.Skipped
		sw.Best = best
		sw.Save = report
	})
}

func persistRequested(req models.SweepRequest) bool {
	return req.Persist == nil || *req.Persist
}
