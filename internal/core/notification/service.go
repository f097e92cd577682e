package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/parcelia/backoffice/internal/platform/validate"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (service *Service) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*Notification, int, error) {
	return service.repo.ListForUser(ctx, userID, limit, offset)
}

func (service *Service) CountUnread(ctx context.Context, userID string) (int, error) {
	return service.repo.CountUnread(ctx, userID)
}

func (service *Service) Create(ctx context.Context, n *Notification) error {
	validator := &validate.Validator{}
	validator.Required(FieldUserID, n.UserID).
		UUID(FieldUserID, n.UserID).
		Required(FieldTitle, n.Title).
		MaxLen(FieldTitle, n.Title, 200)

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.Create(ctx, n); err != nil {
		return err
	}

	service.logger.Info("notification_created",
		slog.String("notification_id", n.ID),
		slog.String("user_id", n.UserID),
	)
	return nil
}

// NotifyStatusChange pushes an inbox entry to the courier carrying a
// parcel whose status just moved. Satisfies the parcel tracker's notifier
// contract.
func (service *Service) NotifyStatusChange(ctx context.Context, courierID, colisID, status string) error {
	return service.Create(ctx, &Notification{
		UserID: courierID,
		Title:  "Statut mis à jour",
		Body:   fmt.Sprintf("Le colis %s est passé à « %s ».", colisID, status),
	})
}

// NotifyAssignment tells a courier a voucher run was put in their name.
func (service *Service) NotifyAssignment(ctx context.Context, courierID, bonID string) error {
	return service.Create(ctx, &Notification{
		UserID: courierID,
		Title:  "Nouvelle tournée",
		Body:   fmt.Sprintf("Le bon %s vous a été assigné.", bonID),
	})
}

func (service *Service) MarkRead(ctx context.Context, id, userID string) error {
	return service.repo.MarkRead(ctx, id, userID)
}

func (service *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	count, err := service.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}

	service.logger.Debug("notifications_marked_read",
		slog.String("user_id", userID),
		slog.Int64("count", count),
	)
	return count, nil
}

func (service *Service) Delete(ctx context.Context, id, userID string) error {
	return service.repo.Delete(ctx, id, userID)
}
