package colis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelia/backoffice/internal/platform/apperr"
)

func newTestService(repo *fakeRepo, catalog *fakeCatalog) *Service {
	directory := &fakeActorDirectory{actors: map[string]string{"auth-1": "user-1"}}
	cfg := TrackerConfig{SettleDelay: time.Millisecond, HistoryLimit: 20}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, directory, catalog, nil, cfg, logger)
}

func defaultCatalog() *fakeCatalog {
	return &fakeCatalog{
		known:   map[string]bool{"En attente": true, "En cours": true, "Livré": true},
		ordered: []string{"En attente", "En cours", "Livré"},
	}
}

func requireValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
}

func TestService_CreateColisDefaultsToInitialStatus(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	service := newTestService(repo, defaultCatalog())

	parcel := testParcel()
	parcel.Status = ""
	require.NoError(t, service.CreateColis(context.Background(), parcel))

	assert.Equal(t, "En attente", parcel.Status)
	assert.Equal(t, "En attente", repo.statusOf("COL-2024-001"))
}

func TestService_CreateColisEmptyCatalogCannotDefault(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	service := newTestService(repo, &fakeCatalog{known: map[string]bool{}})

	parcel := testParcel()
	parcel.Status = ""
	requireValidationError(t, service.CreateColis(context.Background(), parcel))
	assert.Empty(t, repo.statusOf("COL-2024-001"))
}

func TestService_CreateColisRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	service := newTestService(newFakeRepo(), defaultCatalog())

	parcel := testParcel()
	parcel.Status = "Perdu"
	requireValidationError(t, service.CreateColis(context.Background(), parcel))
}

func TestService_CreateColisRequiresClient(t *testing.T) {
	t.Parallel()

	t.Run("missing client", func(t *testing.T) {
		t.Parallel()

		service := newTestService(newFakeRepo(), defaultCatalog())

		parcel := testParcel()
		parcel.ClientID = ""
		requireValidationError(t, service.CreateColis(context.Background(), parcel))
	})

	t.Run("malformed client id", func(t *testing.T) {
		t.Parallel()

		service := newTestService(newFakeRepo(), defaultCatalog())

		parcel := testParcel()
		parcel.ClientID = "not-a-uuid"
		requireValidationError(t, service.CreateColis(context.Background(), parcel))
	})
}

func TestService_UpdateColisRequiresClient(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(testParcel())
	service := newTestService(repo, defaultCatalog())

	updated := testParcel()
	updated.ClientID = ""
	requireValidationError(t, service.UpdateColis(context.Background(), "COL-2024-001", updated))
}

func TestService_CreateColisCatalogFailurePropagates(t *testing.T) {
	t.Parallel()

	catalog := defaultCatalog()
	catalog.err = errors.New("catalog unavailable")
	service := newTestService(newFakeRepo(), catalog)

	parcel := testParcel()
	parcel.Status = ""
	assert.Error(t, service.CreateColis(context.Background(), parcel))
}
