// Package moderation holds the admin moderation workflow: the three dashboard
// collections, their load states, and the approve and block actions.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tutorhub/tutorhub-admin/internal/audit"
	"github.com/tutorhub/tutorhub-admin/internal/marketplace"
	"github.com/tutorhub/tutorhub-admin/internal/metrics"
)

// ErrInFlight is returned when the same action on the same target is already running.
var ErrInFlight = errors.New("moderation: action already in progress")

// Backend is the marketplace surface the controller drives.
type Backend interface {
	Stats(ctx context.Context) (marketplace.Stats, error)
	PendingGigs(ctx context.Context) ([]marketplace.PendingGig, error)
	Reports(ctx context.Context) ([]marketplace.AbuseReport, error)
	ApproveGig(ctx context.Context, gigID string) error
	BlockUser(ctx context.Context, userID string) error
	DeleteReview(ctx context.Context, reviewID string) error
}

type Options struct {
	Backend  Backend
	Notifier Notifier
	Recorder audit.Recorder
	Operator string
	Logger   *slog.Logger
}

// Controller owns the local copy of the moderation collections for one operator.
// Network calls never run under the lock.
type Controller struct {
	backend  Backend
	notifier Notifier
	recorder audit.Recorder
	operator string
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	stats    marketplace.Stats
	pending  []marketplace.PendingGig
	reports  []marketplace.AbuseReport
	states   map[Collection]LoadState
	loadSeq  map[Collection]uint64
	inFlight map[string]struct{}
	// approvedAt maps an approved gig to the pending load sequence current at
	// approval time, so an overlapping load cannot bring it back.
	approvedAt map[string]uint64
}

func New(opts Options) (*Controller, error) {
	if opts.Backend == nil {
		return nil, errors.New("moderation backend is required")
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = audit.Nop{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	states := make(map[Collection]LoadState, len(Collections))
	for _, c := range Collections {
		states[c] = LoadState{Status: Unloaded}
	}
	return &Controller{
		backend:  opts.Backend,
		notifier: notifier,
		recorder: recorder,
		operator: strings.TrimSpace(opts.Operator),
		logger:   logger,
		now:      time.Now,
		states:   states,
		loadSeq:  make(map[Collection]uint64, len(Collections)),
		inFlight: make(map[string]struct{}),

		approvedAt: make(map[string]uint64),
	}, nil
}

// Mount loads every collection that has never been loaded. Later mounts reuse
// the local state.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	var pending []Collection
	for _, coll := range Collections {
		if c.states[coll].Status == Unloaded {
			pending = append(pending, coll)
		}
	}
	c.mu.Unlock()
	if len(pending) == 0 {
		return nil
	}
	return c.load(ctx, pending)
}

// LoadAll fetches the three collections concurrently. Each result lands in its
// own collection as soon as it arrives; a failure leaves that collection Failed
// and does not affect the others. The returned error joins the failures.
func (c *Controller) LoadAll(ctx context.Context) error {
	return c.load(ctx, Collections)
}

// Reload re-fetches one collection.
func (c *Controller) Reload(ctx context.Context, coll Collection) error {
	if !slices.Contains(Collections, coll) {
		return fmt.Errorf("unknown collection %q", coll)
	}
	return c.load(ctx, []Collection{coll})
}

func (c *Controller) load(ctx context.Context, colls []Collection) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, coll := range colls {
		seq := c.beginLoad(coll)
		g.Go(func() error {
			err := c.fetch(ctx, coll, seq)
			metrics.ObserveCollectionLoad(string(coll), err)
			if err != nil {
				c.logger.Warn("moderation collection load failed", "collection", coll, "err", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("load %s: %w", coll, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (c *Controller) beginLoad(coll Collection) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadSeq[coll]++
	state := c.states[coll]
	state.Status = Loading
	state.Err = nil
	c.states[coll] = state
	return c.loadSeq[coll]
}

func (c *Controller) fetch(ctx context.Context, coll Collection, seq uint64) error {
	switch coll {
	case CollectionStats:
		stats, err := c.backend.Stats(ctx)
		c.finishLoad(coll, seq, err, func() { c.stats = stats })
		return err
	case CollectionPending:
		gigs, err := c.backend.PendingGigs(ctx)
		c.finishLoad(coll, seq, err, func() { c.pending = c.dropApproved(gigs, seq) })
		return err
	case CollectionReports:
		reports, err := c.backend.Reports(ctx)
		c.finishLoad(coll, seq, err, func() { c.reports = reports })
		return err
	default:
		return fmt.Errorf("unknown collection %q", coll)
	}
}

// finishLoad applies a result unless a newer load of the same collection started
// in the meantime. Data from an earlier success is kept when a reload fails.
func (c *Controller) finishLoad(coll Collection, seq uint64, err error, apply func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loadSeq[coll] != seq {
		return
	}
	if err != nil {
		c.states[coll] = LoadState{Status: Failed, Err: err, UpdatedAt: c.now()}
		return
	}
	apply()
	c.states[coll] = LoadState{Status: Loaded, UpdatedAt: c.now()}
}

// dropApproved removes gigs approved while load seq was in flight. Approvals
// older than seq are already reflected by the backend. Callers hold c.mu.
func (c *Controller) dropApproved(gigs []marketplace.PendingGig, seq uint64) []marketplace.PendingGig {
	gigs = slices.DeleteFunc(gigs, func(g marketplace.PendingGig) bool {
		at, ok := c.approvedAt[g.ID.String()]
		return ok && at >= seq
	})
	clear(c.approvedAt)
	return gigs
}

// Approve approves a pending gig. On success the gig is removed from the local
// pending list without re-fetching; on failure the list is untouched.
func (c *Controller) Approve(ctx context.Context, gigID string) error {
	gigID, err := marketplace.ValidateID("gig", gigID)
	if err != nil {
		return err
	}
	err = c.run(ctx, audit.ActionApproveGig, gigID, func(ctx context.Context) error {
		return c.backend.ApproveGig(ctx, gigID)
	})
	if err != nil {
		c.notify(ctx, Notification{
			Level:   LevelError,
			Title:   "Approval failed",
			Message: fmt.Sprintf("Gig %s could not be approved. Try again.", gigID),
		})
		return err
	}

	c.mu.Lock()
	c.pending = slices.DeleteFunc(c.pending, func(g marketplace.PendingGig) bool {
		return g.ID.String() == gigID
	})
	c.approvedAt[gigID] = c.loadSeq[CollectionPending]
	c.mu.Unlock()

	c.notify(ctx, Notification{
		Level:   LevelSuccess,
		Title:   "Gig approved",
		Message: fmt.Sprintf("Gig %s is now live.", gigID),
	})
	return nil
}

// Block deactivates a reported actor. The acknowledgment is sent only after the
// backend confirms. Reports naming the actor stay visible.
func (c *Controller) Block(ctx context.Context, actorID string) error {
	actorID, err := marketplace.ValidateID("user", actorID)
	if err != nil {
		return err
	}
	err = c.run(ctx, audit.ActionBlockUser, actorID, func(ctx context.Context) error {
		return c.backend.BlockUser(ctx, actorID)
	})
	if err != nil {
		c.notify(ctx, Notification{
			Level:   LevelError,
			Title:   "Block failed",
			Message: fmt.Sprintf("User %s could not be blocked. Try again.", actorID),
		})
		return err
	}
	c.notify(ctx, Notification{
		Level:   LevelSuccess,
		Title:   "User blocked",
		Message: fmt.Sprintf("User %s can no longer sign in.", actorID),
	})
	return nil
}

// DeleteReview removes a review. No local collection changes.
func (c *Controller) DeleteReview(ctx context.Context, reviewID string) error {
	reviewID, err := marketplace.ValidateID("review", reviewID)
	if err != nil {
		return err
	}
	err = c.run(ctx, audit.ActionDeleteReview, reviewID, func(ctx context.Context) error {
		return c.backend.DeleteReview(ctx, reviewID)
	})
	if err != nil {
		c.notify(ctx, Notification{
			Level:   LevelError,
			Title:   "Delete failed",
			Message: fmt.Sprintf("Review %s could not be deleted. Try again.", reviewID),
		})
		return err
	}
	c.notify(ctx, Notification{
		Level:   LevelSuccess,
		Title:   "Review deleted",
		Message: fmt.Sprintf("Review %s was removed.", reviewID),
	})
	return nil
}

// run executes one action under the per-target in-flight guard and records its
// outcome. A duplicate returns ErrInFlight without reaching the backend.
func (c *Controller) run(ctx context.Context, action audit.Action, targetID string, call func(context.Context) error) error {
	key := inFlightKey(action, targetID)
	c.mu.Lock()
	if _, busy := c.inFlight[key]; busy {
		c.mu.Unlock()
		return ErrInFlight
	}
	c.inFlight[key] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inFlight, key)
		c.mu.Unlock()
	}()

	err := call(ctx)
	metrics.ObserveModerationAction(string(action), err)

	entry := audit.Entry{
		Action:   action,
		TargetID: targetID,
		Operator: c.operator,
		Outcome:  audit.OutcomeOf(err),
	}
	if err != nil {
		entry.Detail = err.Error()
		c.logger.Error("moderation action failed", "action", action, "target_id", targetID, "operator", c.operator, "err", err)
	} else {
		c.logger.Info("moderation action succeeded", "action", action, "target_id", targetID, "operator", c.operator)
	}
	// The audit write must not be cut short by a cancelled request.
	if recErr := c.recorder.Record(context.WithoutCancel(ctx), entry); recErr != nil {
		c.logger.Warn("moderation audit record failed", "action", action, "target_id", targetID, "err", recErr)
	}
	return err
}

// InFlight reports whether action on targetID is currently running.
func (c *Controller) InFlight(action audit.Action, targetID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.inFlight[inFlightKey(action, targetID)]
	return busy
}

func inFlightKey(action audit.Action, targetID string) string {
	return string(action) + ":" + targetID
}

// Snapshot is a copy of the controller state, safe to render.
type Snapshot struct {
	Stats        marketplace.Stats
	StatsState   LoadState
	Pending      []marketplace.PendingGig
	PendingState LoadState
	Reports      []marketplace.AbuseReport
	ReportsState LoadState
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stats marketplace.Stats
	if c.stats != nil {
		stats = make(marketplace.Stats, len(c.stats))
		for k, v := range c.stats {
			stats[k] = v
		}
	}
	return Snapshot{
		Stats:        stats,
		StatsState:   c.states[CollectionStats],
		Pending:      slices.Clone(c.pending),
		PendingState: c.states[CollectionPending],
		Reports:      slices.Clone(c.reports),
		ReportsState: c.states[CollectionReports],
	}
}

// State returns the load state of one collection.
func (c *Controller) State(coll Collection) LoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[coll]
}
