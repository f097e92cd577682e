package colis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelia/backoffice/internal/platform/apperr"
	"github.com/parcelia/backoffice/internal/platform/dberr"
	"github.com/parcelia/backoffice/pkg/pointer"
)

// # Fakes

type fakeRepo struct {
	mu      sync.Mutex
	parcels map[string]*Colis
	history map[string][]*HistoryEntry

	setStatusErr     error
	appendErr        error
	deleteHistoryErr error
	deleteColisErr   error

	setStatusCalls int
	appendCalls    int
}

func newFakeRepo(parcels ...*Colis) *fakeRepo {
	repo := &fakeRepo{
		parcels: map[string]*Colis{},
		history: map[string][]*HistoryEntry{},
	}
	for _, c := range parcels {
		copied := *c
		repo.parcels[c.ID] = &copied
	}
	return repo
}

func (r *fakeRepo) ListColis(_ context.Context, _ Filter, _, _ int) ([]*Colis, int, error) {
	return nil, 0, nil
}

func (r *fakeRepo) GetColis(_ context.Context, id string) (*Colis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.parcels[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeRepo) CreateColis(_ context.Context, c *Colis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *c
	r.parcels[c.ID] = &copied
	return nil
}

func (r *fakeRepo) UpdateColis(_ context.Context, c *Colis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *c
	r.parcels[c.ID] = &copied
	return nil
}

func (r *fakeRepo) SetStatus(_ context.Context, id, status string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setStatusCalls++
	if r.setStatusErr != nil {
		return r.setStatusErr
	}
	c, ok := r.parcels[id]
	if !ok {
		return dberr.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = at
	return nil
}

func (r *fakeRepo) DeleteColis(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteColisErr != nil {
		return r.deleteColisErr
	}
	delete(r.parcels, id)
	return nil
}

func (r *fakeRepo) AppendHistory(_ context.Context, entry *HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appendCalls++
	if r.appendErr != nil {
		return r.appendErr
	}
	copied := *entry
	r.history[entry.ColisID] = append(r.history[entry.ColisID], &copied)
	return nil
}

func (r *fakeRepo) ListHistory(_ context.Context, colisID string, limit int) ([]*HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := append([]*HistoryEntry{}, r.history[colisID]...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date.After(entries[j].Date) })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *fakeRepo) DeleteHistory(_ context.Context, colisID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteHistoryErr != nil {
		return 0, r.deleteHistoryErr
	}
	removed := int64(len(r.history[colisID]))
	delete(r.history, colisID)
	return removed, nil
}

func (r *fakeRepo) statusOf(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.parcels[id]; ok {
		return c.Status
	}
	return ""
}

func (r *fakeRepo) historyLen(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history[id])
}

type fakeActorDirectory struct {
	actors map[string]string
	err    error
}

func (d *fakeActorDirectory) FindActorID(_ context.Context, authID string) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	id, ok := d.actors[authID]
	if !ok {
		return "", apperr.NotFound("User")
	}
	return id, nil
}

type fakeCatalog struct {
	known   map[string]bool
	ordered []string
	err     error
}

func (c *fakeCatalog) StatusExists(_ context.Context, _, name string) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	return c.known[name], nil
}

func (c *fakeCatalog) ActiveStatuses(_ context.Context, _ string) ([]string, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.ordered, nil
}

func testParcel() *Colis {
	return &Colis{
		ID:       "COL-2024-001",
		Status:   "En cours",
		Price:    120,
		Fee:      15,
		Address:  "12 Rue de la Paix, Casablanca",
		ClientID: "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d",
	}
}

func newTestTracker(repo *fakeRepo) *Tracker {
	directory := &fakeActorDirectory{actors: map[string]string{"auth-1": "user-1"}}
	catalog := &fakeCatalog{
		known:   map[string]bool{"En attente": true, "En cours": true, "Livré": true, "Retourné": true},
		ordered: []string{"En attente", "En cours", "Livré", "Retourné"},
	}
	cfg := TrackerConfig{SettleDelay: time.Millisecond, HistoryLimit: 20}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTracker(repo, directory, catalog, nil, cfg, logger)
}

type fakeNotifier struct {
	pushes []string
	err    error
}

func (n *fakeNotifier) NotifyStatusChange(_ context.Context, courierID, colisID, status string) error {
	if n.err != nil {
		return n.err
	}
	n.pushes = append(n.pushes, courierID+"/"+colisID+"/"+status)
	return nil
}

// # Load

func TestTracker_LoadIncludesStatusCatalog(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(testParcel())
	tracker := newTestTracker(repo)
	require.NoError(t, tracker.Load(context.Background(), "COL-2024-001"))

	view := tracker.View()
	require.NotNil(t, view.Colis)
	assert.Equal(t, []string{"En attente", "En cours", "Livré", "Retourné"}, view.Statuses)
}

// # Status Updates

func TestTracker_StatusTransition(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(testParcel())
	tracker := newTestTracker(repo)
	require.NoError(t, tracker.Load(context.Background(), "COL-2024-001"))

	err := tracker.UpdateStatus(context.Background(), "Livré", "auth-1")
	require.NoError(t, err)

	// Durable state
	assert.Equal(t, "Livré", repo.statusOf("COL-2024-001"))
	require.Equal(t, 1, repo.historyLen("COL-2024-001"))

	// View state, refreshed after settling: newest entry first.
	view := tracker.View()
	assert.Equal(t, "Livré", view.Colis.Status)
	require.NotEmpty(t, view.History)
	assert.Equal(t, "Livré", view.History[0].Status)
	assert.Equal(t, "user-1", view.History[0].ActingUserID)
}

func TestTracker_NoOpWhenStatusUnchanged(t *testing.T) {
	t.Parallel()

	parcel := testParcel()
	parcel.Status = "Livré"
	repo := newFakeRepo(parcel)
	tracker := newTestTracker(repo)
	require.NoError(t, tracker.Load(context.Background(), "COL-2024-001"))

	err := tracker.UpdateStatus(context.Background(), "Livré", "auth-1")
	require.NoError(t, err)

	assert.Equal(t, 0, repo.setStatusCalls, "no persist call for an equal status")
	assert.Equal(t, 0, repo.appendCalls, "no history insert for an equal status")
}

func TestTracker_AttributionFailureRollsBack(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(testParcel())
	tracker := newTestTracker(repo)
	tracker.directory = &fakeActorDirectory{err: apperr.NotFound("User")}
	require.NoError(t, tracker.Load(context.Background(), "COL-2024-001"))

	err := tracker.UpdateStatus(context.Background(), "Livré", "auth-unknown")
	require.Error(t, err)

	// No orphaned status change without attribution: both the durable
	// status and the displayed status are back to the prior value.
	assert.Equal(t, "En cours", repo.statusOf("COL-2024-001"))
	assert.Equal(t, "En cours", tracker.View().Colis.Status)
	assert.Equal(t, 0, repo.historyLen("COL-2024-001"))
}

func TestTracker_HistoryAppendFailureRollsBack(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(testParcel())
	repo.appendErr = errors.New("insert failed")
	tracker := newTestTracker(repo)
	require.NoError(t, tracker.Load(context.Background(), "COL-2024-001"))

	err := tracker.UpdateStatus(context.Background(), "Livré", "auth-1")
	require.Error(t, err)

	assert.Equal(t, "En cours", repo.statusOf("COL-2024-001"))
	assert.Equal(t, "En cours", tracker.View().Colis.Status)
}

func TestTracker_UnknownStatusRejected(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(testParcel())
	tracker := newTestTracker(repo)
	require.NoError(t, tracker.Load(context.Background(), "COL-2024-001"))

	err := tracker.UpdateStatus(context.Background(), "Perdu", "auth-1")

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	assert.Equal(t, 0, repo.setStatusCalls)
}

func TestTracker_RejectsConcurrentOperations(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(testParcel())
	tracker := newTestTracker(repo)
	require.NoError(t, tracker.Load(context.Background(), "COL-2024-001"))

	tracker.mu.Lock()
	tracker.updating = true
	tracker.mu.Unlock()

	err := tracker.UpdateStatus(context.Background(), "Livré", "auth-1")

	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

func TestTracker_HistoryIsNewestFirst(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(testParcel())
	tracker := newTestTracker(repo)
	require.NoError(t, tracker.Load(context.Background(), "COL-2024-001"))

	require.NoError(t, tracker.UpdateStatus(context.Background(), "Livré", "auth-1"))
	require.NoError(t, tracker.UpdateStatus(context.Background(), "Retourné", "auth-1"))

	view := tracker.View()
	require.Len(t, view.History, 2)
	assert.Equal(t, "Retourné", view.History[0].Status)
	assert.Equal(t, "Livré", view.History[1].Status)
	assert.True(t, !view.History[0].Date.Before(view.History[1].Date))
}

// # Cascade Delete

func TestTracker_DeleteRemovesHistoryFirst(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(testParcel())
	tracker := newTestTracker(repo)
	require.NoError(t, tracker.Load(context.Background(), "COL-2024-001"))
	require.NoError(t, tracker.UpdateStatus(context.Background(), "Livré", "auth-1"))

	require.NoError(t, tracker.Delete(context.Background()))

	assert.Empty(t, repo.statusOf("COL-2024-001"))
	assert.Equal(t, 0, repo.historyLen("COL-2024-001"))
	assert.Nil(t, tracker.View().Colis)
}

func TestTracker_DeleteAbortsWhenHistoryDeleteFails(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(testParcel())
	tracker := newTestTracker(repo)
	require.NoError(t, tracker.Load(context.Background(), "COL-2024-001"))
	require.NoError(t, tracker.UpdateStatus(context.Background(), "Livré", "auth-1"))

	repo.deleteHistoryErr = errors.New("history delete failed")

	err := tracker.Delete(context.Background())

	require.Error(t, err)
	// Both records intact: no partial cascade is treated as success.
	assert.Equal(t, "Livré", repo.statusOf("COL-2024-001"))
	assert.Equal(t, 1, repo.historyLen("COL-2024-001"))
}

func TestTracker_DeleteReportsParcelFailureAfterHistoryGone(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(testParcel())
	tracker := newTestTracker(repo)
	require.NoError(t, tracker.Load(context.Background(), "COL-2024-001"))
	require.NoError(t, tracker.UpdateStatus(context.Background(), "Livré", "auth-1"))

	repo.deleteColisErr = errors.New("parcel delete failed")

	err := tracker.Delete(context.Background())

	require.Error(t, err)
	// History was deleted first, so a failing parcel delete can never
	// orphan entries. The parcel row survives and the error says so.
	assert.Equal(t, "Livré", repo.statusOf("COL-2024-001"))
	assert.Equal(t, 0, repo.historyLen("COL-2024-001"))
}

// # Courier Notification

func TestTracker_NotifiesAssignedCourier(t *testing.T) {
	t.Parallel()

	parcel := testParcel()
	parcel.CourierID = pointer.To("user-9")

	repo := newFakeRepo(parcel)
	notifier := &fakeNotifier{}
	directory := &fakeActorDirectory{actors: map[string]string{"auth-1": "user-1"}}
	catalog := &fakeCatalog{known: map[string]bool{"Livré": true}}
	cfg := TrackerConfig{SettleDelay: time.Millisecond, HistoryLimit: 20}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracker := NewTracker(repo, directory, catalog, notifier, cfg, logger)

	require.NoError(t, tracker.Load(context.Background(), "COL-2024-001"))
	require.NoError(t, tracker.UpdateStatus(context.Background(), "Livré", "auth-1"))

	assert.Equal(t, []string{"user-9/COL-2024-001/Livré"}, notifier.pushes)
}

func TestTracker_NotifyFailureKeepsTransition(t *testing.T) {
	t.Parallel()

	parcel := testParcel()
	parcel.CourierID = pointer.To("user-9")

	repo := newFakeRepo(parcel)
	notifier := &fakeNotifier{err: errors.New("inbox unavailable")}
	directory := &fakeActorDirectory{actors: map[string]string{"auth-1": "user-1"}}
	catalog := &fakeCatalog{known: map[string]bool{"Livré": true}}
	cfg := TrackerConfig{SettleDelay: time.Millisecond, HistoryLimit: 20}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracker := NewTracker(repo, directory, catalog, notifier, cfg, logger)

	require.NoError(t, tracker.Load(context.Background(), "COL-2024-001"))
	require.NoError(t, tracker.UpdateStatus(context.Background(), "Livré", "auth-1"))

	// Transition and audit entry are durable despite the failed push.
	assert.Equal(t, "Livré", repo.statusOf("COL-2024-001"))
	assert.Equal(t, 1, repo.historyLen("COL-2024-001"))
}
