// Package pipeline orchestrates the closures fetch-extract-cache flow.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/road-closures-service/internal/domain"
	"github.com/couchcryptid/road-closures-service/internal/observability"
)

// Fetcher pulls the raw payload from the upstream API.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, *domain.ClosurePayload, error)
}

// PayloadCache persists the raw payload and decides when a refetch is due.
type PayloadCache interface {
	IsStale(now time.Time) bool
	Load() ([]byte, error)
	Store(payload []byte) error
}

// RecordCache persists the derived closure records.
type RecordCache interface {
	Load() ([]domain.ClosureRecord, error)
	Store(records []domain.ClosureRecord) error
}

// Publisher pushes freshly derived records to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, records []domain.ClosureRecord) error
}

// Service composes the payload cache, fetcher, extractor, and record cache
// into the single GetClosures operation.
type Service struct {
	fetcher   Fetcher
	payloads  PayloadCache
	records   RecordCache
	publisher Publisher // nil disables publishing
	clock     clockwork.Clock
	timezone  *time.Location
	skip      bool // examine records after a filtered one
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Service. publisher may be nil.
func New(f Fetcher, payloads PayloadCache, records RecordCache, publisher Publisher,
	clock clockwork.Clock, timezone *time.Location, skipFiltered bool,
	logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		fetcher:   f,
		payloads:  payloads,
		records:   records,
		publisher: publisher,
		clock:     clock,
		timezone:  timezone,
		skip:      skipFiltered,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once at least one run has produced records.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no closure data available yet")
	}
	return nil
}

// GetClosures returns the current closure records and whether this run
// refreshed them from the upstream API. When the cached payload is still
// fresh the derived records are served straight from disk; otherwise the
// pipeline fetches, extracts, and persists both tiers. Fetch and decode
// failures are fatal to the run; a corrupt cache file is not, it simply
// forces a refetch.
func (s *Service) GetClosures(ctx context.Context) ([]domain.ClosureRecord, bool, error) {
	start := time.Now()
	defer func() {
		s.metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	now := s.clock.Now().In(s.timezone)

	if s.payloads.IsStale(now) {
		s.metrics.CacheLookups.WithLabelValues("payload", "miss").Inc()
		records, err := s.refresh(ctx, now)
		if err != nil {
			return nil, false, err
		}
		return records, true, nil
	}
	s.metrics.CacheLookups.WithLabelValues("payload", "hit").Inc()

	if records, err := s.records.Load(); err == nil {
		s.metrics.CacheLookups.WithLabelValues("records", "hit").Inc()
		s.logger.Info("serving closures from record cache", "closures", len(records))
		s.ready.Store(true)
		return records, false, nil
	}
	s.metrics.CacheLookups.WithLabelValues("records", "miss").Inc()

	raw, err := s.payloads.Load()
	if err == nil {
		var payload domain.ClosurePayload
		if jsonErr := json.Unmarshal(raw, &payload); jsonErr == nil {
			records := s.extractAndStore(&payload, now)
			return records, false, nil
		}
		s.logger.Warn("payload cache is corrupt, refetching")
	}

	// Fresh by mtime but unreadable or unparsable. Fall back to the network.
	records, err := s.refresh(ctx, now)
	if err != nil {
		return nil, false, err
	}
	return records, true, nil
}

// refresh fetches a new payload, persists it, and derives the records.
// Cache write failures are logged rather than failing the run; the records
// in hand are still good.
func (s *Service) refresh(ctx context.Context, now time.Time) ([]domain.ClosureRecord, error) {
	raw, payload, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh closures: %w", err)
	}

	if err := s.payloads.Store(raw); err != nil {
		s.logger.Warn("store payload cache failed", "error", err)
	}

	records := s.extractAndStore(payload, now)

	s.metrics.Refreshes.Inc()
	s.metrics.LastRefreshSeconds.Set(float64(s.clock.Now().Unix()))

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, records); err != nil {
			s.logger.Warn("publish refreshed closures failed", "error", err)
		}
	}

	return records, nil
}

// extractAndStore runs the extractor and persists the derived records.
func (s *Service) extractAndStore(payload *domain.ClosurePayload, now time.Time) []domain.ClosureRecord {
	records, malformed := domain.ExtractClosures(payload, now, domain.Options{
		SkipFiltered: s.skip,
		Logger:       s.logger,
	})

	s.metrics.ClosuresExtracted.Set(float64(len(records)))
	if malformed > 0 {
		s.metrics.MalformedRecords.Add(float64(malformed))
	}
	s.logger.Info("extracted closures", "closures", len(records), "malformed", malformed)

	if err := s.records.Store(records); err != nil {
		s.logger.Warn("store record cache failed", "error", err)
	}

	s.ready.Store(true)
	return records
}
