package company

import "context"

// Repository defines the data access contract for partner companies.
type Repository interface {
	ListCompanies(ctx context.Context, filter Filter, limit, offset int) ([]*Company, int, error)
	GetCompany(ctx context.Context, id string) (*Company, error)
	CreateCompany(ctx context.Context, c *Company) error
	UpdateCompany(ctx context.Context, c *Company) error
	SoftDelete(ctx context.Context, id string) error
}
