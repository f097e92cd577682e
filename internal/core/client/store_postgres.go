package client

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelia/backoffice/internal/platform/database/schema"
	"github.com/parcelia/backoffice/internal/platform/dberr"
	"github.com/parcelia/backoffice/pkg/searchtext"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func clientColumns() string {
	t := schema.Client
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s",
		t.ID, t.Name, t.Phone, t.Email, t.Address, t.City, t.Notes,
		t.CreatedAt, t.UpdatedAt)
}

func scanClient(row interface{ Scan(...any) error }) (*Client, error) {
	c := &Client{}
	err := row.Scan(
		&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.City, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (repository *PostgresRepository) ListClients(ctx context.Context, f Filter, limit, offset int) ([]*Client, int, error) {
	t := schema.Client

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IS NULL", clientColumns(), t.Table, t.DeletedAt)
	countQuery := fmt.Sprintf("SELECT count(*) FROM %s WHERE %s IS NULL", t.Table, t.DeletedAt)

	args := []any{}

	if f.Query != "" {
		// Names are matched against the pre-folded namesearch column so
		// "livre" finds "Livré"; phone and email are matched as typed.
		args = append(args, "%"+searchtext.Fold(f.Query)+"%", "%"+f.Query+"%")
		clause := fmt.Sprintf(" AND (%s LIKE $%d OR %s ILIKE $%d OR %s ILIKE $%d)",
			t.NameSearch, len(args)-1, t.Phone, len(args), t.Email, len(args))
		query += clause
		countQuery += clause
	}
	if f.City != "" {
		args = append(args, f.City)
		clause := fmt.Sprintf(" AND %s ILIKE $%d", t.City, len(args))
		query += clause
		countQuery += clause
	}

	var total int
	if err := repository.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_clients")
	}

	query += fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", t.Name, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_clients")
	}
	defer rows.Close()

	var clients []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_client")
		}
		clients = append(clients, c)
	}

	return clients, total, nil
}

func (repository *PostgresRepository) GetClient(ctx context.Context, id string) (*Client, error) {
	t := schema.Client
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL",
		clientColumns(), t.Table, t.ID, t.DeletedAt)

	c, err := scanClient(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_client")
	}
	return c, nil
}

func (repository *PostgresRepository) CreateClient(ctx context.Context, c *Client) error {
	t := schema.Client
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s, %s
	`,
		t.Table, t.ID, t.Name, t.NameSearch, t.Phone, t.Email, t.Address,
		t.City, t.Notes,
		t.CreatedAt, t.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query,
		c.ID, c.Name, searchtext.Fold(c.Name), c.Phone, c.Email, c.Address,
		c.City, c.Notes,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return dberr.Wrap(err, "create_client")
}

func (repository *PostgresRepository) UpdateClient(ctx context.Context, c *Client) error {
	t := schema.Client
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
		RETURNING %s
	`,
		t.Table, t.Name, t.NameSearch, t.Phone, t.Email, t.Address, t.City,
		t.Notes, t.UpdatedAt,
		t.ID, t.DeletedAt, t.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query,
		c.ID, c.Name, searchtext.Fold(c.Name), c.Phone, c.Email, c.Address,
		c.City, c.Notes,
	).Scan(&c.UpdatedAt)
	return dberr.Wrap(err, "update_client")
}

func (repository *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	t := schema.Client
	query := fmt.Sprintf("UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL",
		t.Table, t.DeletedAt, t.ID, t.DeletedAt)

	cmd, err := repository.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_client")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
