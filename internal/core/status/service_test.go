package status

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelia/backoffice/internal/platform/constants"
)

type fakeRepository struct {
	statuses []*Status
	err      error
}

func (r *fakeRepository) ListStatuses(_ context.Context, entityType string) ([]*Status, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*Status
	for _, s := range r.statuses {
		if s.EntityType == entityType {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRepository) GetStatus(context.Context, int) (*Status, error) { return nil, nil }
func (r *fakeRepository) CreateStatus(context.Context, *Status) error     { return nil }
func (r *fakeRepository) UpdateStatus(context.Context, *Status) error     { return nil }
func (r *fakeRepository) DeleteStatus(context.Context, int) error         { return nil }

func newTestService(repo Repository) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestService_StatusExists(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{statuses: []*Status{
		{EntityType: constants.StatusTypeColis, Name: "En cours", IsActive: true},
		{EntityType: constants.StatusTypeColis, Name: "Annulé", IsActive: false},
		{EntityType: constants.StatusTypeBon, Name: "Réglé", IsActive: true},
	}}
	service := newTestService(repo)

	tests := []struct {
		name       string
		entityType string
		status     string
		want       bool
	}{
		{"active entry matches", constants.StatusTypeColis, "En cours", true},
		{"inactive entry does not count", constants.StatusTypeColis, "Annulé", false},
		{"unknown value", constants.StatusTypeColis, "Perdu", false},
		{"entity types are isolated", constants.StatusTypeColis, "Réglé", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := service.StatusExists(context.Background(), tt.entityType, tt.status)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_CreateStatusValidation(t *testing.T) {
	t.Parallel()

	service := newTestService(&fakeRepository{})

	err := service.CreateStatus(context.Background(), &Status{EntityType: "vehicle", Name: "En route"})

	require.Error(t, err, "unknown entity types are rejected")
}
