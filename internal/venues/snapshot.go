package venues

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/adapter"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
)

// fetchSnapshot assembles a snapshot by running the three venue fetches
// concurrently. Any single failure fails the snapshot; partial results are
// never persisted.
func fetchSnapshot(ctx context.Context, a Adapter, req SnapshotRequest, clock adapter.Clock) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{
		Venue:     a.Kind(),
		FetchedAt: clock.Now().UTC(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		balances, err := a.FetchBalances(gctx)
		if err != nil {
			return err
		}
		snap.Balances = balances
		return nil
	})

	g.Go(func() error {
		positions, err := a.FetchPositions(gctx)
		if err != nil {
			return err
		}
		snap.Positions = positions
		return nil
	})

	g.Go(func() error {
		activities, err := a.FetchActivities(gctx, req)
		if err != nil {
			return err
		}
		snap.Activities = activities
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return snap, nil
}

// sortAndCapActivities orders activities ascending by execution time and
// applies the request limit, keeping the oldest records so cursor advancement
// never skips a window.
func sortAndCapActivities(activities []domain.ActivityLine, limit int) []domain.ActivityLine {
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].ExecutedAt.Before(activities[j].ExecutedAt)
	})
	if limit > 0 && len(activities) > limit {
		activities = activities[:limit]
	}
	return activities
}
