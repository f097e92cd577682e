package bon

import (
	"context"
	"fmt"
	"time"

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

func bonColumns() string {
	t := schema.Bon
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s",
		t.ID, t.Status, t.CourierID, t.Notes, t.CreatedAt, t.UpdatedAt)
}

func scanBon(row interface{ Scan(...any) error }) (*Bon, error) {
	b := &Bon{}
	err := row.Scan(
		&b.ID, &b.Status, &b.CourierID, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (repository *PostgresRepository) ListBons(ctx context.Context, f Filter, limit, offset int) ([]*Bon, int, error) {
	t := schema.Bon

	query := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1", bonColumns(), t.Table)
	countQuery := fmt.Sprintf("SELECT count(*) FROM %s WHERE 1=1", t.Table)

	args := []any{}

	if f.Status != "" {
		args = append(args, f.Status)
		clause := fmt.Sprintf(" AND %s = $%d", t.Status, len(args))
		query += clause
		countQuery += clause
	}
	if f.CourierID != "" {
		args = append(args, f.CourierID)
		clause := fmt.Sprintf(" AND %s = $%d", t.CourierID, len(args))
		query += clause
		countQuery += clause
	}

	var total int
	if err := repository.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_bons")
	}

	query += fmt.Sprintf(" ORDER BY %s DESC LIMIT $%d OFFSET $%d", t.CreatedAt, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_bons")
	}
	defer rows.Close()

	var vouchers []*Bon
	for rows.Next() {
		b, err := scanBon(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_bon")
		}
		vouchers = append(vouchers, b)
	}

	return vouchers, total, nil
}

func (repository *PostgresRepository) GetBon(ctx context.Context, id string) (*Bon, error) {
	t := schema.Bon
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", bonColumns(), t.Table, t.ID)

	b, err := scanBon(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_bon")
	}

	items, err := repository.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Items = items

	return b, nil
}

func (repository *PostgresRepository) listItems(ctx context.Context, bonID string) ([]*Item, error) {
	t := schema.BonItem
	query := fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = $1 ORDER BY %s",
		t.ColisID, t.AddedAt, t.Table, t.BonID, t.AddedAt)

	rows, err := repository.db.Query(ctx, query, bonID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_bon_items")
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item := &Item{}
		if err := rows.Scan(&item.ColisID, &item.AddedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_bon_item")
		}
		items = append(items, item)
	}

	return items, nil
}

func (repository *PostgresRepository) CreateBon(ctx context.Context, b *Bon, colisIDs []string) error {
	t := schema.Bon
	i := schema.BonItem

	transaction, err := repository.db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin_create_bon")
	}
	defer transaction.Rollback(ctx)

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s
	`,
		t.Table, t.ID, t.Status, t.CourierID, t.Notes,
		t.CreatedAt, t.UpdatedAt,
	)

	err = transaction.QueryRow(ctx, query,
		b.ID, b.Status, b.CourierID, b.Notes,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_bon")
	}

	itemQuery := fmt.Sprintf("INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, NOW())",
		i.Table, i.BonID, i.ColisID, i.AddedAt)

	for _, colisID := range colisIDs {
		if _, err := transaction.Exec(ctx, itemQuery, b.ID, colisID); err != nil {
			return dberr.Wrap(err, "attach_bon_item")
		}
	}

	if err := transaction.Commit(ctx); err != nil {
		return dberr.Wrap(err, "commit_create_bon")
	}
	return nil
}

func (repository *PostgresRepository) UpdateBon(ctx context.Context, b *Bon) error {
	t := schema.Bon

	// Status is excluded here; it moves through SetStatus only.
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		t.Table, t.CourierID, t.Notes, t.UpdatedAt,
		t.ID, t.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query, b.ID, b.CourierID, b.Notes).Scan(&b.UpdatedAt)
	return dberr.Wrap(err, "update_bon")
}

func (repository *PostgresRepository) SetStatus(ctx context.Context, id, status string, at time.Time) error {
	t := schema.Bon
	query := fmt.Sprintf("UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1",
		t.Table, t.Status, t.UpdatedAt, t.ID)

	cmd, err := repository.db.Exec(ctx, query, id, status, at)
	if err != nil {
		return dberr.Wrap(err, "set_bon_status")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) AddItems(ctx context.Context, bonID string, colisIDs []string) error {
	i := schema.BonItem
	query := fmt.Sprintf("INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, NOW()) ON CONFLICT DO NOTHING",
		i.Table, i.BonID, i.ColisID, i.AddedAt)

	for _, colisID := range colisIDs {
		if _, err := repository.db.Exec(ctx, query, bonID, colisID); err != nil {
			return dberr.Wrap(err, "add_bon_item")
		}
	}
	return nil
}

func (repository *PostgresRepository) RemoveItem(ctx context.Context, bonID, colisID string) error {
	i := schema.BonItem
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND %s = $2",
		i.Table, i.BonID, i.ColisID)

	cmd, err := repository.db.Exec(ctx, query, bonID, colisID)
	if err != nil {
		return dberr.Wrap(err, "remove_bon_item")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) CountItems(ctx context.Context, bonID string) (int, error) {
	i := schema.BonItem
	query := fmt.Sprintf("SELECT count(*) FROM %s WHERE %s = $1", i.Table, i.BonID)

	var total int
	if err := repository.db.QueryRow(ctx, query, bonID).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "count_bon_items")
	}
	return total, nil
}

func (repository *PostgresRepository) DetachAll(ctx context.Context, bonID string) (int64, error) {
	i := schema.BonItem
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", i.Table, i.BonID)

	cmd, err := repository.db.Exec(ctx, query, bonID)
	if err != nil {
		return 0, dberr.Wrap(err, "detach_bon_items")
	}
	return cmd.RowsAffected(), nil
}

func (repository *PostgresRepository) DeleteBon(ctx context.Context, id string) error {
	t := schema.Bon
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", t.Table, t.ID)

	cmd, err := repository.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_bon")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
