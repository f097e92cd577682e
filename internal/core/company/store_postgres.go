package company

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

func companyColumns() string {
	t := schema.Company
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s",
		t.ID, t.Name, t.Phone, t.Email, t.Address, t.City,
		t.CreatedAt, t.UpdatedAt)
}

func scanCompany(row interface{ Scan(...any) error }) (*Company, error) {
	c := &Company{}
	err := row.Scan(
		&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.City,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (repository *PostgresRepository) ListCompanies(ctx context.Context, f Filter, limit, offset int) ([]*Company, int, error) {
	t := schema.Company

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IS NULL", companyColumns(), t.Table, t.DeletedAt)
	countQuery := fmt.Sprintf("SELECT count(*) FROM %s WHERE %s IS NULL", t.Table, t.DeletedAt)

	args := []any{}

	if f.Query != "" {
		args = append(args, "%"+searchtext.Fold(f.Query)+"%")
		clause := fmt.Sprintf(" AND %s LIKE $%d", t.NameSearch, len(args))
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
		return nil, 0, dberr.Wrap(err, "count_companies")
	}

	query += fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", t.Name, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_companies")
	}
	defer rows.Close()

	var companies []*Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_company")
		}
		companies = append(companies, c)
	}

	return companies, total, nil
}

func (repository *PostgresRepository) GetCompany(ctx context.Context, id string) (*Company, error) {
	t := schema.Company
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL",
		companyColumns(), t.Table, t.ID, t.DeletedAt)

	c, err := scanCompany(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_company")
	}
	return c, nil
}

func (repository *PostgresRepository) CreateCompany(ctx context.Context, c *Company) error {
	t := schema.Company
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s, %s
	`,
		t.Table, t.ID, t.Name, t.NameSearch, t.Phone, t.Email, t.Address, t.City,
		t.CreatedAt, t.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query,
		c.ID, c.Name, searchtext.Fold(c.Name), c.Phone, c.Email, c.Address, c.City,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return dberr.Wrap(err, "create_company")
}

func (repository *PostgresRepository) UpdateCompany(ctx context.Context, c *Company) error {
	t := schema.Company
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
		RETURNING %s
	`,
		t.Table, t.Name, t.NameSearch, t.Phone, t.Email, t.Address, t.City,
		t.UpdatedAt,
		t.ID, t.DeletedAt, t.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query,
		c.ID, c.Name, searchtext.Fold(c.Name), c.Phone, c.Email, c.Address, c.City,
	).Scan(&c.UpdatedAt)
	return dberr.Wrap(err, "update_company")
}

func (repository *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	t := schema.Company
	query := fmt.Sprintf("UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL",
		t.Table, t.DeletedAt, t.ID, t.DeletedAt)

	cmd, err := repository.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_company")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
