package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Service orchestrates fetching from the provider, shaping the dashboard
// and caching snapshots.
type Service struct {
	store    Store
	provider Provider
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new Service. A cacheTTL of zero disables serving
// from the snapshot store.
func NewService(store Store, provider Provider, cacheTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		provider: provider,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetDashboard returns the current conditions, daily forecast and mood for
// a location. A snapshot younger than the cache TTL is served as is.
func (s *Service) GetDashboard(ctx context.Context, loc Location) (Dashboard, error) {
	if err := loc.Validate(); err != nil {
		return Dashboard{}, err
	}

	if s.cacheTTL > 0 {
		if snap, err := s.store.GetLatest(loc); err == nil && s.now().Sub(snap.FetchedAt) < s.cacheTTL {
			s.logger.Debug("serving cached dashboard", "location", loc.Key(), "fetched_at", snap.FetchedAt)
			return snap.Dashboard, nil
		}
	}

	return s.fetchAndStore(ctx, loc)
}

// Refresh fetches a fresh dashboard for the location and stores it,
// ignoring any cached snapshot.
func (s *Service) Refresh(ctx context.Context, loc Location) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	_, err := s.fetchAndStore(ctx, loc)
	return err
}

func (s *Service) fetchAndStore(ctx context.Context, loc Location) (Dashboard, error) {
	if s.provider == nil {
		return Dashboard{}, fmt.Errorf("no weather provider: %w", ErrProviderNotConfigured)
	}

	var (
		current Current
		samples []ForecastSample
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.provider.FetchCurrent(gctx, loc)
		if err != nil {
			return err
		}
		current = c
		return nil
	})
	g.Go(func() error {
		f, err := s.provider.FetchForecast(gctx, loc)
		if err != nil {
			return err
		}
		samples = f
		return nil
	})

	if err := g.Wait(); err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			s.logger.Info("provider rejected request", "provider", s.provider.Name(), "location", loc.Key(), "status", upstream.StatusCode, "message", upstream.Message)
		} else {
			s.logger.Error("provider fetch failed", "provider", s.provider.Name(), "location", loc.Key(), "error", err)
		}
		return Dashboard{}, err
	}

	dashboard := Dashboard{
		Current: current,
		Daily:   AggregateDaily(samples),
		Mood:    Classify(current.Temperature, current.Condition),
	}

	s.store.SaveSnapshot(loc, Snapshot{
		Location:  loc,
		FetchedAt: s.now(),
		Dashboard: dashboard,
	})
	s.logger.Debug("stored dashboard snapshot", "location", loc.Key(), "days", len(dashboard.Daily), "theme", dashboard.Mood.Theme)

	return dashboard, nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(loc Location) (Snapshot, error) {
	return s.store.GetLatest(loc)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(loc Location, from, to time.Time) ([]Snapshot, error) {
	return s.store.GetRange(loc, from, to)
}
