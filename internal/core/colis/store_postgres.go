package colis

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelia/backoffice/internal/platform/database/schema"
	"github.com/parcelia/backoffice/internal/platform/dberr"
	"github.com/parcelia/backoffice/pkg/uuidv7"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func colisColumns() string {
	t := schema.Colis
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		t.ID, t.Status, t.Price, t.Fee, t.Address, t.Notes,
		t.ClientID, t.CompanyID, t.CourierID, t.CreatedAt, t.UpdatedAt)
}

func scanColis(row interface{ Scan(...any) error }) (*Colis, error) {
	c := &Colis{}
	err := row.Scan(
		&c.ID, &c.Status, &c.Price, &c.Fee, &c.Address, &c.Notes,
		&c.ClientID, &c.CompanyID, &c.CourierID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (repository *PostgresRepository) ListColis(ctx context.Context, f Filter, limit, offset int) ([]*Colis, int, error) {
	t := schema.Colis

	query := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1", colisColumns(), t.Table)
	countQuery := fmt.Sprintf("SELECT count(*) FROM %s WHERE 1=1", t.Table)

	args := []any{}

	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		clause := fmt.Sprintf(" AND (%s ILIKE $%d OR %s ILIKE $%d)", t.ID, len(args), t.Address, len(args))
		query += clause
		countQuery += clause
	}
	if f.Status != "" {
		args = append(args, f.Status)
		clause := fmt.Sprintf(" AND %s = $%d", t.Status, len(args))
		query += clause
		countQuery += clause
	}
	if f.ClientID != "" {
		args = append(args, f.ClientID)
		clause := fmt.Sprintf(" AND %s = $%d", t.ClientID, len(args))
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
		return nil, 0, dberr.Wrap(err, "count_colis")
	}

	query += fmt.Sprintf(" ORDER BY %s DESC LIMIT $%d OFFSET $%d", t.CreatedAt, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_colis")
	}
	defer rows.Close()

	var parcels []*Colis
	for rows.Next() {
		c, err := scanColis(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_colis")
		}
		parcels = append(parcels, c)
	}

	return parcels, total, nil
}

func (repository *PostgresRepository) GetColis(ctx context.Context, id string) (*Colis, error) {
	t := schema.Colis
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", colisColumns(), t.Table, t.ID)

	c, err := scanColis(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_colis")
	}
	return c, nil
}

func (repository *PostgresRepository) CreateColis(ctx context.Context, c *Colis) error {
	t := schema.Colis
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING %s, %s
	`,
		t.Table, t.ID, t.Status, t.Price, t.Fee, t.Address, t.Notes,
		t.ClientID, t.CompanyID, t.CourierID, t.CreatedAt, t.UpdatedAt,
		t.CreatedAt, t.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query,
		c.ID, c.Status, c.Price, c.Fee, c.Address, c.Notes,
		c.ClientID, c.CompanyID, c.CourierID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return dberr.Wrap(err, "create_colis")
}

func (repository *PostgresRepository) UpdateColis(ctx context.Context, c *Colis) error {
	t := schema.Colis

	// The status column is deliberately absent: status changes go through
	// SetStatus so the audit trail can never be bypassed.
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		t.Table, t.Price, t.Fee, t.Address, t.Notes,
		t.ClientID, t.CompanyID, t.CourierID, t.UpdatedAt,
		t.ID, t.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query,
		c.ID, c.Price, c.Fee, c.Address, c.Notes,
		c.ClientID, c.CompanyID, c.CourierID,
	).Scan(&c.UpdatedAt)
	return dberr.Wrap(err, "update_colis")
}

func (repository *PostgresRepository) SetStatus(ctx context.Context, id, status string, at time.Time) error {
	t := schema.Colis
	query := fmt.Sprintf("UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1",
		t.Table, t.Status, t.UpdatedAt, t.ID)

	cmd, err := repository.db.Exec(ctx, query, id, status, at)
	if err != nil {
		return dberr.Wrap(err, "set_colis_status")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) DeleteColis(ctx context.Context, id string) error {
	t := schema.Colis
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", t.Table, t.ID)

	cmd, err := repository.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_colis")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// ── History ──────────────────────────────────────────────────────────────────

func (repository *PostgresRepository) AppendHistory(ctx context.Context, entry *HistoryEntry) error {
	t := schema.ColisHistory
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
	`, t.Table, t.ID, t.ColisID, t.Status, t.Date, t.ActingUserID)

	if entry.ID == "" {
		entry.ID = uuidv7.New()
	}
	if entry.Date.IsZero() {
		entry.Date = time.Now()
	}

	_, err := repository.db.Exec(ctx, query,
		entry.ID, entry.ColisID, entry.Status, entry.Date, entry.ActingUserID)
	return dberr.Wrap(err, "append_colis_history")
}

func (repository *PostgresRepository) ListHistory(ctx context.Context, colisID string, limit int) ([]*HistoryEntry, error) {
	h := schema.ColisHistory
	u := schema.UserAccount

	// LEFT JOIN so entries outlive their acting user; the display label
	// falls back to the system actor.
	query := fmt.Sprintf(`
		SELECT h.%s, h.%s, h.%s, h.%s, h.%s, COALESCE(u.%s, '%s')
		FROM %s h
		LEFT JOIN %s u ON u.%s = h.%s
		WHERE h.%s = $1
		ORDER BY h.%s DESC
		LIMIT $2
	`,
		h.ID, h.ColisID, h.Status, h.Date, h.ActingUserID,
		u.DisplayName, SystemActorLabel,
		h.Table, u.Table, u.ID, h.ActingUserID, h.ColisID, h.Date,
	)

	rows, err := repository.db.Query(ctx, query, colisID, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "list_colis_history")
	}
	defer rows.Close()

	var entries []*HistoryEntry
	for rows.Next() {
		entry := &HistoryEntry{}
		if err := rows.Scan(
			&entry.ID, &entry.ColisID, &entry.Status, &entry.Date,
			&entry.ActingUserID, &entry.ActingUserName,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_colis_history")
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (repository *PostgresRepository) DeleteHistory(ctx context.Context, colisID string) (int64, error) {
	t := schema.ColisHistory
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", t.Table, t.ColisID)

	cmd, err := repository.db.Exec(ctx, query, colisID)
	if err != nil {
		return 0, dberr.Wrap(err, "delete_colis_history")
	}
	return cmd.RowsAffected(), nil
}
