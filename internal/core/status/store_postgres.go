package status

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelia/backoffice/internal/platform/database/schema"
	"github.com/parcelia/backoffice/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) ListStatuses(ctx context.Context, entityType string) ([]*Status, error) {
	t := schema.Status
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC
	`,
		t.ID, t.EntityType, t.Name, t.Color, t.Position, t.IsActive, t.CreatedAt, t.UpdatedAt,
		t.Table, t.EntityType, t.Position,
	)

	rows, err := repository.db.Query(ctx, query, entityType)
	if err != nil {
		return nil, dberr.Wrap(err, "list_statuses")
	}
	defer rows.Close()

	var statuses []*Status
	for rows.Next() {
		s := &Status{}
		if err := rows.Scan(&s.ID, &s.EntityType, &s.Name, &s.Color, &s.Position, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_status")
		}
		statuses = append(statuses, s)
	}

	return statuses, nil
}

func (repository *PostgresRepository) GetStatus(ctx context.Context, id int) (*Status, error) {
	t := schema.Status
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		t.ID, t.EntityType, t.Name, t.Color, t.Position, t.IsActive, t.CreatedAt, t.UpdatedAt,
		t.Table, t.ID,
	)

	s := &Status{}
	err := repository.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.EntityType, &s.Name, &s.Color, &s.Position, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_status")
	}
	return s, nil
}

func (repository *PostgresRepository) CreateStatus(ctx context.Context, s *Status) error {
	t := schema.Status
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING %s, %s, %s
	`,
		t.Table, t.EntityType, t.Name, t.Color, t.Position, t.IsActive, t.CreatedAt, t.UpdatedAt,
		t.ID, t.CreatedAt, t.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query, s.EntityType, s.Name, s.Color, s.Position, s.IsActive).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return dberr.Wrap(err, "create_status")
}

func (repository *PostgresRepository) UpdateStatus(ctx context.Context, s *Status) error {
	t := schema.Status
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		t.Table, t.Name, t.Color, t.Position, t.IsActive, t.UpdatedAt,
		t.ID, t.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query, s.ID, s.Name, s.Color, s.Position, s.IsActive).Scan(&s.UpdatedAt)
	return dberr.Wrap(err, "update_status")
}

func (repository *PostgresRepository) DeleteStatus(ctx context.Context, id int) error {
	t := schema.Status
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", t.Table, t.ID)

	cmd, err := repository.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_status")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
