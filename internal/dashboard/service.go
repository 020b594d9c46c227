package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/adirahman/klinik-backend/pkg/errors"
	"github.com/adirahman/klinik-backend/pkg/logger"
	"github.com/adirahman/klinik-backend/pkg/redis"
)

// StatsDTO aggregates the landing page counters.
type StatsDTO struct {
	TotalMedicines int64 `json:"total_obat"`
	TotalPatients  int64 `json:"total_pasien"`
	LowStockCount  int64 `json:"obat_hampir_habis"`
	UsageToday     int64 `json:"total_penggunaan_hari_ini"`
}

type medicineCounter interface {
	CountMedicines(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
}

type patientCounter interface {
	CountPatients(ctx context.Context) (int64, error)
}

type usageSummer interface {
	SumQuantityBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// StatsCache is the subset of the redis client used for stats snapshots.
type StatsCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

// Service exposes the aggregated dashboard counters.
type Service interface {
	Stats(ctx context.Context) (*StatsDTO, error)
}

// service implements the dashboard service. The cache is optional; a nil
// cache disables it.
type service struct {
	medicines medicineCounter
	patients  patientCounter
	usages    usageSummer
	cache     StatsCache
	cacheTTL  time.Duration
	logg      *logger.Logger
	now       func() time.Time
}

// NewService constructs a dashboard service instance. cache may be nil.
func NewService(medicines medicineCounter, patients patientCounter, usages usageSummer, cache StatsCache, cacheTTL time.Duration, logg *logger.Logger) (Service, error) {
	if medicines == nil {
		return nil, fmt.Errorf("medicine counter required")
	}
	if patients == nil {
		return nil, fmt.Errorf("patient counter required")
	}
	if usages == nil {
		return nil, fmt.Errorf("usage summer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		medicines: medicines,
		patients:  patients,
		usages:    usages,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// Stats returns the dashboard counters. Results are served from the cache
// when available; cache failures degrade to a fresh read.
func (s *service) Stats(ctx context.Context) (*StatsDTO, error) {
	var cacheKey string
	if s.cache != nil {
		dayStart, _ := todayWindow(s.now())
		cacheKey = s.cache.CacheKey("dashboard", "stats", dayStart.Format("2006-01-02"))
		if raw, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cached StatsDTO
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
			logCtx := s.logg.WithField(ctx, "cache_key", cacheKey)
			s.logg.Warn(logCtx, "dashboard: dropping undecodable cache entry")
		} else if !errors.Is(err, redis.Nil) {
			logCtx := s.logg.WithField(ctx, "error", err.Error())
			s.logg.Warn(logCtx, "dashboard: cache read failed")
		}
	}

	stats, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(stats)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL); err != nil {
				logCtx := s.logg.WithField(ctx, "error", err.Error())
				s.logg.Warn(logCtx, "dashboard: cache write failed")
			}
		}
	}
	return stats, nil
}

func (s *service) collect(ctx context.Context) (*StatsDTO, error) {
	totalMedicines, err := s.medicines.CountMedicines(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count medicines")
	}
	totalPatients, err := s.patients.CountPatients(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count patients")
	}
	lowStock, err := s.medicines.CountLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count low stock")
	}

	dayStart, dayEnd := todayWindow(s.now())
	usageToday, err := s.usages.SumQuantityBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum usage today")
	}

	return &StatsDTO{
		TotalMedicines: totalMedicines,
		TotalPatients:  totalPatients,
		LowStockCount:  lowStock,
		UsageToday:     usageToday,
	}, nil
}

// todayWindow returns the local midnight-to-midnight range containing ts. The
// upper bound is exclusive.
func todayWindow(ts time.Time) (time.Time, time.Time) {
	local := ts.Local()
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	return start, start.AddDate(0, 0, 1)
}
