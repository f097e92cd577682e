package company

import (
	"context"
	"log/slog"

	"github.com/parcelia/backoffice/internal/platform/validate"
	"github.com/parcelia/backoffice/pkg/uuidv7"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (service *Service) ListCompanies(ctx context.Context, filter Filter, limit, offset int) ([]*Company, int, error) {
	return service.repo.ListCompanies(ctx, filter, limit, offset)
}

func (service *Service) GetCompany(ctx context.Context, id string) (*Company, error) {
	return service.repo.GetCompany(ctx, id)
}

func (service *Service) CreateCompany(ctx context.Context, c *Company) error {
	if err := validateCompany(c); err != nil {
		return err
	}

	if c.ID == "" {
		c.ID = uuidv7.New()
	}

	if err := service.repo.CreateCompany(ctx, c); err != nil {
		return err
	}

	service.logger.Info("company_created",
		slog.String("company_id", c.ID),
		slog.String("name", c.Name),
	)
	return nil
}

func (service *Service) UpdateCompany(ctx context.Context, id string, c *Company) error {
	c.ID = id
	if err := validateCompany(c); err != nil {
		return err
	}

	if err := service.repo.UpdateCompany(ctx, c); err != nil {
		return err
	}

	service.logger.Info("company_updated", slog.String("company_id", c.ID))
	return nil
}

func (service *Service) DeleteCompany(ctx context.Context, id string) error {
	if err := service.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	service.logger.Info("company_deleted", slog.String("company_id", id))
	return nil
}

func validateCompany(c *Company) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, c.Name).
		MaxLen(FieldName, c.Name, 200).
		Required(FieldPhone, c.Phone)

	if c.Email != nil && *c.Email != "" {
		validator.Email(FieldEmail, *c.Email)
	}

	return validator.Err()
}
