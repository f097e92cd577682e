package notification

import (
	"context"
	"fmt"

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

func notificationColumns() string {
	t := schema.Notification
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s",
		t.ID, t.UserID, t.Title, t.Body, t.IsRead, t.CreatedAt)
}

func (repository *PostgresRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*Notification, int, error) {
	t := schema.Notification

	countQuery := fmt.Sprintf("SELECT count(*) FROM %s WHERE %s = $1", t.Table, t.UserID)

	var total int
	if err := repository.db.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_notifications")
	}

	// Unread entries first, newest first within each group.
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1
		ORDER BY %s ASC, %s DESC
		LIMIT $2 OFFSET $3
	`, notificationColumns(), t.Table, t.UserID, t.IsRead, t.CreatedAt)

	rows, err := repository.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_notifications")
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		n := &Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_notification")
		}
		notifications = append(notifications, n)
	}

	return notifications, total, nil
}

func (repository *PostgresRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	t := schema.Notification
	query := fmt.Sprintf("SELECT count(*) FROM %s WHERE %s = $1 AND %s = FALSE",
		t.Table, t.UserID, t.IsRead)

	var total int
	if err := repository.db.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "count_unread_notifications")
	}
	return total, nil
}

func (repository *PostgresRepository) Create(ctx context.Context, n *Notification) error {
	t := schema.Notification
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING %s
	`, t.Table, t.ID, t.UserID, t.Title, t.Body, t.IsRead, t.CreatedAt)

	if n.ID == "" {
		n.ID = uuidv7.New()
	}

	err := repository.db.QueryRow(ctx, query, n.ID, n.UserID, n.Title, n.Body).Scan(&n.CreatedAt)
	return dberr.Wrap(err, "create_notification")
}

func (repository *PostgresRepository) MarkRead(ctx context.Context, id, userID string) error {
	t := schema.Notification
	query := fmt.Sprintf("UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s = $2",
		t.Table, t.IsRead, t.ID, t.UserID)

	cmd, err := repository.db.Exec(ctx, query, id, userID)
	if err != nil {
		return dberr.Wrap(err, "mark_notification_read")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	t := schema.Notification
	query := fmt.Sprintf("UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s = FALSE",
		t.Table, t.IsRead, t.UserID, t.IsRead)

	cmd, err := repository.db.Exec(ctx, query, userID)
	if err != nil {
		return 0, dberr.Wrap(err, "mark_all_notifications_read")
	}
	return cmd.RowsAffected(), nil
}

func (repository *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	t := schema.Notification
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND %s = $2",
		t.Table, t.ID, t.UserID)

	cmd, err := repository.db.Exec(ctx, query, id, userID)
	if err != nil {
		return dberr.Wrap(err, "delete_notification")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
