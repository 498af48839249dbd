package reconciler

import (
	"context"
	"time"

	"github.com/arijitchhatui/swiftsend-service/internal/config"
	"github.com/arijitchhatui/swiftsend-service/internal/repository"
	pkglog "github.com/arijitchhatui/swiftsend-service/pkg/log"
)

// Reconciler periodically recomputes the denormalized follower and
// following counters from the followers collection. Counter writes
// are not atomic with edge writes, so drift accumulates under partial
// failure; this job is the repair path.
type Reconciler struct {
	profiles repository.ProfileRepository
	follows  repository.FollowRepository
	cfg      config.ReconcilerConfig
	quit     chan struct{}
	doneCh   chan struct{}
}

// New creates a new Reconciler.
func New(profiles repository.ProfileRepository, follows repository.FollowRepository, cfg config.ReconcilerConfig) *Reconciler {
	return &Reconciler{
		profiles: profiles,
		follows:  follows,
		cfg:      cfg,
		quit:     make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the reconciler in a background goroutine.
func (r *Reconciler) Start(ctx context.Context) {
	go r.run(ctx)
}

// Stop signals the reconciler to stop and returns immediately.
// Call Done() to wait for it to exit.
func (r *Reconciler) Stop() {
	close(r.quit)
}

// Done returns a channel that is closed when the reconciler has fully stopped.
func (r *Reconciler) Done() <-chan struct{} {
	return r.doneCh
}

func (r *Reconciler) run(ctx context.Context) {
	defer close(r.doneCh)

	interval := r.cfg.Interval
	if interval <= 0 {
		interval = 60 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Reconcile(ctx)
		}
	}
}

// Reconcile runs one full pass over all profiles.
func (r *Reconciler) Reconcile(ctx context.Context) {
	l := pkglog.L()
	l.Info().Msg("reconciler: starting follow counter reconciliation")

	userIDs, err := r.profiles.ListUserIDs(ctx)
	if err != nil {
		l.Error().Err(err).Msg("reconciler: failed to list user ids")
		return
	}

	repaired := 0
	for _, userID := range userIDs {
		followers, err := r.follows.CountFollowers(ctx, userID)
		if err != nil {
			l.Error().Err(err).Str(pkglog.FieldUserID, userID.Hex()).Msg("reconciler: failed to count followers")
			continue
		}
		following, err := r.follows.CountFollowing(ctx, userID)
		if err != nil {
			l.Error().Err(err).Str(pkglog.FieldUserID, userID.Hex()).Msg("reconciler: failed to count following")
			continue
		}
		if err := r.profiles.SetFollowCounts(ctx, userID, followers, following); err != nil {
			l.Error().Err(err).Str(pkglog.FieldUserID, userID.Hex()).Msg("reconciler: failed to set follow counts")
			continue
		}
		repaired++
	}

	l.Info().Int("count", repaired).Msg("reconciler: follow counter reconciliation complete")
}
