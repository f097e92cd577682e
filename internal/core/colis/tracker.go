package colis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/parcelia/backoffice/internal/platform/apperr"
	"github.com/parcelia/backoffice/internal/platform/constants"
	"github.com/parcelia/backoffice/pkg/pointer"
)

// Catalog validates candidate status values against the dynamically loaded
// status catalog. Statuses are not a hardcoded enum: the catalog can change
// between page loads, and legacy values already stored on a parcel must
// still render.
type Catalog interface {
	StatusExists(ctx context.Context, entityType, name string) (bool, error)

	// ActiveStatuses returns the active status names in catalog order.
	// The first entry is the default status for a new parcel.
	ActiveStatuses(ctx context.Context, entityType string) ([]string, error)
}

// ActorDirectory cross-references an auth-layer subject to the durable
// staff ID used for history attribution. The two identifier spaces are
// distinct; attribution must never store the auth subject.
type ActorDirectory interface {
	FindActorID(ctx context.Context, authID string) (string, error)
}

// Notifier pushes an inbox entry to the courier carrying the parcel when
// its status moves. Delivery is best-effort; a failed push never rolls a
// transition back.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, courierID, colisID, status string) error
}

// TrackerConfig carries the tracker's timing rules.
type TrackerConfig struct {
	// SettleDelay is waited between appending a history entry and
	// re-fetching the trail, accommodating read-replica lag.
	SettleDelay time.Duration

	// HistoryLimit caps the number of entries fetched per refresh.
	HistoryLimit int
}

// DefaultTrackerConfig returns the production timing rules.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		SettleDelay:  constants.HistorySettleDelay,
		HistoryLimit: constants.HistoryPageSize,
	}
}

// Tracker owns one parcel-detail view: the parcel, its fetched history
// copy, and the pending-state flags. It guarantees that every status
// change lands in the audit trail with correct attribution, or not at all.
//
// # Concurrency
//
// A tracker serves one view at a time. Re-entrant status updates and
// deletes are rejected with a conflict while one is pending. Updates from
// other sessions racing on the same parcel are last-write-wins; the
// refetch after settling makes the loser's entry visible too.
type Tracker struct {
	repo      Repository
	directory ActorDirectory
	catalog   Catalog
	notifier  Notifier
	cfg       TrackerConfig
	logger    *slog.Logger

	mu       sync.Mutex
	colis    *Colis
	history  []*HistoryEntry
	statuses []string
	updating bool
	deleting bool
}

// NewTracker creates a tracker. A nil notifier disables courier pushes.
// Call [Tracker.Load] before anything else.
func NewTracker(repo Repository, directory ActorDirectory, catalog Catalog, notifier Notifier, cfg TrackerConfig, logger *slog.Logger) *Tracker {
	return &Tracker{
		repo:      repo,
		directory: directory,
		catalog:   catalog,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
	}
}

// View is a read-only snapshot of the tracker's state. Statuses holds the
// active catalog entries the selection control offers; a legacy status
// already on the parcel renders even when absent from it.
type View struct {
	Colis    *Colis
	History  []*HistoryEntry
	Statuses []string
	Updating bool
	Deleting bool
}

// Load fetches the parcel, its history trail, and the active status
// catalog in one pass.
func (tracker *Tracker) Load(ctx context.Context, colisID string) error {
	c, err := tracker.repo.GetColis(ctx, colisID)
	if err != nil {
		return err
	}

	history, err := tracker.repo.ListHistory(ctx, colisID, tracker.cfg.HistoryLimit)
	if err != nil {
		return err
	}

	statuses, err := tracker.catalog.ActiveStatuses(ctx, constants.StatusTypeColis)
	if err != nil {
		return err
	}

	tracker.mu.Lock()
	tracker.colis = c
	tracker.history = history
	tracker.statuses = statuses
	tracker.mu.Unlock()

	return nil
}

// View returns a snapshot of the current state. The parcel is copied;
// history entries are immutable and shared.
func (tracker *Tracker) View() View {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	view := View{
		History:  tracker.history,
		Statuses: tracker.statuses,
		Updating: tracker.updating,
		Deleting: tracker.deleting,
	}
	if tracker.colis != nil {
		c := *tracker.colis
		view.Colis = &c
	}
	return view
}

// UpdateStatus changes the parcel's status and records the transition.
//
// # Flow
//  1. No-op when the new status equals the current one.
//  2. Validate the value against the dynamic status catalog.
//  3. Persist the new status and a fresh updated timestamp.
//  4. Resolve the acting user's durable ID from the auth subject.
//  5. Append exactly one history entry with the resolved identity.
//  6. After a settling delay, re-fetch the trail so the entry is visible.
//
// If attribution (step 4 or 5) fails, the persisted status is compensated
// back to its prior value and the error is returned: a status change
// without an audit entry must not survive.
func (tracker *Tracker) UpdateStatus(ctx context.Context, newStatus, actorAuthID string) error {
	tracker.mu.Lock()
	if tracker.colis == nil {
		tracker.mu.Unlock()
		return apperr.Unprocessable("No parcel loaded")
	}
	if tracker.updating || tracker.deleting {
		tracker.mu.Unlock()
		return apperr.Conflict("An operation is already in progress for this parcel")
	}

	colisID := tracker.colis.ID
	prior := tracker.colis.Status
	courierID := tracker.colis.CourierID

	// ── 1. No-Op Check ────────────────────────────────────────────────────

	if newStatus == prior {
		tracker.mu.Unlock()
		return nil
	}

	tracker.updating = true
	tracker.mu.Unlock()

	defer func() {
		tracker.mu.Lock()
		tracker.updating = false
		tracker.mu.Unlock()
	}()

	// ── 2. Catalog Validation ─────────────────────────────────────────────

	known, err := tracker.catalog.StatusExists(ctx, constants.StatusTypeColis, newStatus)
	if err != nil {
		return fmt.Errorf("colis_tracker_catalog_check_failed: %w", err)
	}
	if !known {
		return apperr.ValidationError("Unknown status value", apperr.FieldError{
			Field:   FieldStatus,
			Message: "is not part of the status catalog",
		})
	}

	// ── 3. Persist Status ─────────────────────────────────────────────────

	transitionAt := time.Now()
	if err := tracker.repo.SetStatus(ctx, colisID, newStatus, transitionAt); err != nil {
		return err
	}

	// Optimistic local update so the view reflects the change immediately.
	tracker.setLocalStatus(newStatus, transitionAt)

	// ── 4. Resolve Attribution ────────────────────────────────────────────

	actorID, err := tracker.directory.FindActorID(ctx, actorAuthID)
	if err != nil {
		tracker.compensate(ctx, colisID, prior)
		return fmt.Errorf("colis_tracker_attribution_failed: %w", err)
	}

	// ── 5. Append History ─────────────────────────────────────────────────

	entry := &HistoryEntry{
		ColisID:      colisID,
		Status:       newStatus,
		Date:         transitionAt,
		ActingUserID: actorID,
	}
	if err := tracker.repo.AppendHistory(ctx, entry); err != nil {
		tracker.compensate(ctx, colisID, prior)
		return fmt.Errorf("colis_tracker_history_append_failed: %w", err)
	}

	tracker.logger.Info("colis_status_changed",
		slog.String("colis_id", colisID),
		slog.String("from", prior),
		slog.String("to", newStatus),
		slog.String("acting_user_id", actorID),
	)

	if courier := pointer.Val(courierID); tracker.notifier != nil && courier != "" {
		if err := tracker.notifier.NotifyStatusChange(ctx, courier, colisID, newStatus); err != nil {
			tracker.logger.Warn("colis_status_notify_failed",
				slog.String("colis_id", colisID),
				slog.String("courier_id", courier),
				slog.Any("error", err),
			)
		}
	}

	// ── 6. Settle & Refetch ───────────────────────────────────────────────

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(tracker.cfg.SettleDelay):
	}

	if err := tracker.refreshHistory(ctx, colisID); err != nil {
		// The transition itself is durable; a refetch failure only
		// leaves the view stale.
		tracker.logger.Warn("colis_history_refresh_failed",
			slog.String("colis_id", colisID),
			slog.Any("error", err),
		)
	}

	return nil
}

// Delete removes the parcel and its entire audit trail.
//
// History entries are deleted before the parcel so a failing parcel delete
// can never orphan them; a failing history delete leaves both intact.
func (tracker *Tracker) Delete(ctx context.Context) error {
	tracker.mu.Lock()
	if tracker.colis == nil {
		tracker.mu.Unlock()
		return apperr.Unprocessable("No parcel loaded")
	}
	if tracker.updating || tracker.deleting {
		tracker.mu.Unlock()
		return apperr.Conflict("An operation is already in progress for this parcel")
	}
	colisID := tracker.colis.ID
	tracker.deleting = true
	tracker.mu.Unlock()

	defer func() {
		tracker.mu.Lock()
		tracker.deleting = false
		tracker.mu.Unlock()
	}()

	removed, err := tracker.repo.DeleteHistory(ctx, colisID)
	if err != nil {
		return fmt.Errorf("colis_tracker_history_delete_failed: %w", err)
	}

	if err := tracker.repo.DeleteColis(ctx, colisID); err != nil {
		return fmt.Errorf("colis_tracker_delete_failed (history already removed, %d entries): %w", removed, err)
	}

	tracker.logger.Warn("colis_deleted",
		slog.String("colis_id", colisID),
		slog.Int64("history_entries_removed", removed),
	)

	tracker.mu.Lock()
	tracker.colis = nil
	tracker.history = nil
	tracker.mu.Unlock()

	return nil
}

// RefreshHistory re-fetches the history trail on demand.
func (tracker *Tracker) RefreshHistory(ctx context.Context) error {
	tracker.mu.Lock()
	if tracker.colis == nil {
		tracker.mu.Unlock()
		return apperr.Unprocessable("No parcel loaded")
	}
	colisID := tracker.colis.ID
	tracker.mu.Unlock()

	return tracker.refreshHistory(ctx, colisID)
}

func (tracker *Tracker) refreshHistory(ctx context.Context, colisID string) error {
	history, err := tracker.repo.ListHistory(ctx, colisID, tracker.cfg.HistoryLimit)
	if err != nil {
		return err
	}

	tracker.mu.Lock()
	tracker.history = history
	tracker.mu.Unlock()
	return nil
}

func (tracker *Tracker) setLocalStatus(status string, at time.Time) {
	tracker.mu.Lock()
	if tracker.colis != nil {
		tracker.colis.Status = status
		tracker.colis.UpdatedAt = at
	}
	tracker.mu.Unlock()
}

// compensate rolls the persisted status back to its prior value after an
// attribution failure, then restores the local view. A failing rollback is
// logged loudly: it means a status change exists without an audit entry.
func (tracker *Tracker) compensate(ctx context.Context, colisID, prior string) {
	if err := tracker.repo.SetStatus(ctx, colisID, prior, time.Now()); err != nil {
		tracker.logger.Error("colis_status_rollback_failed",
			slog.String("colis_id", colisID),
			slog.String("prior", prior),
			slog.Any("error", err),
		)
	}
	tracker.setLocalStatus(prior, time.Now())
}
