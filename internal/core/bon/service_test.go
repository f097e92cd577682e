package bon

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelia/backoffice/internal/platform/apperr"
)

type fakeRepository struct {
	items      map[string][]string
	deleted    []string
	detachErr  error
	lastStatus string
}

func (r *fakeRepository) ListBons(context.Context, Filter, int, int) ([]*Bon, int, error) {
	return nil, 0, nil
}

func (r *fakeRepository) GetBon(context.Context, string) (*Bon, error) { return nil, nil }

func (r *fakeRepository) CreateBon(_ context.Context, b *Bon, colisIDs []string) error {
	r.items[b.ID] = append(r.items[b.ID], colisIDs...)
	return nil
}

func (r *fakeRepository) UpdateBon(context.Context, *Bon) error { return nil }

func (r *fakeRepository) SetStatus(_ context.Context, _, status string, _ time.Time) error {
	r.lastStatus = status
	return nil
}

func (r *fakeRepository) AddItems(_ context.Context, bonID string, colisIDs []string) error {
	r.items[bonID] = append(r.items[bonID], colisIDs...)
	return nil
}

func (r *fakeRepository) RemoveItem(context.Context, string, string) error { return nil }

func (r *fakeRepository) CountItems(_ context.Context, bonID string) (int, error) {
	return len(r.items[bonID]), nil
}

func (r *fakeRepository) DetachAll(_ context.Context, bonID string) (int64, error) {
	if r.detachErr != nil {
		return 0, r.detachErr
	}
	n := int64(len(r.items[bonID]))
	delete(r.items, bonID)
	return n, nil
}

func (r *fakeRepository) DeleteBon(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	return nil
}

type fakeCatalog struct {
	known map[string]bool
}

func (c *fakeCatalog) StatusExists(_ context.Context, entityType, name string) (bool, error) {
	return c.known[entityType+"/"+name], nil
}

func newTestService(repo *fakeRepository) *Service {
	catalog := &fakeCatalog{known: map[string]bool{
		"bon/Ouvert": true,
		"bon/Réglé":  true,
	}}
	return NewService(repo, catalog, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestService_CreateBonRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{items: map[string][]string{}}
	service := newTestService(repo)

	err := service.CreateBon(context.Background(), &Bon{Status: "Brouillon"}, nil)

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Empty(t, repo.items)
}

func TestService_CreateBonAttachesParcels(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{items: map[string][]string{}}
	service := newTestService(repo)

	b := &Bon{Status: "Ouvert"}
	err := service.CreateBon(context.Background(), b, []string{"COL-2024-001", "COL-2024-002"})

	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Len(t, repo.items[b.ID], 2)
}

func TestService_SetStatusValidatesAgainstCatalog(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{items: map[string][]string{}}
	service := newTestService(repo)

	require.NoError(t, service.SetStatus(context.Background(), "bon-1", "Réglé"))
	assert.Equal(t, "Réglé", repo.lastStatus)

	err := service.SetStatus(context.Background(), "bon-1", "Inventé")
	require.Error(t, err)
	assert.Equal(t, "Réglé", repo.lastStatus, "rejected status must not be persisted")
}

func TestService_DeleteBonRefusesWhileParcelsAttached(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{items: map[string][]string{"bon-1": {"COL-2024-001"}}}
	service := newTestService(repo)

	err := service.DeleteBon(context.Background(), "bon-1", false)

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
	assert.Empty(t, repo.deleted)
}

func TestService_DeleteBonForceDetachesFirst(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{items: map[string][]string{"bon-1": {"COL-2024-001", "COL-2024-002"}}}
	service := newTestService(repo)

	err := service.DeleteBon(context.Background(), "bon-1", true)

	require.NoError(t, err)
	assert.Empty(t, repo.items)
	assert.Equal(t, []string{"bon-1"}, repo.deleted)
}

func TestService_DeleteBonEmptyNeedsNoForce(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{items: map[string][]string{}}
	service := newTestService(repo)

	err := service.DeleteBon(context.Background(), "bon-2", false)

	require.NoError(t, err)
	assert.Equal(t, []string{"bon-2"}, repo.deleted)
}
