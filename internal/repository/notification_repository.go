package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/mkandie/concierge-backend/internal/errors"
	"github.com/mkandie/concierge-backend/internal/model"
)

// NotificationRepositoryInterface is the feed-store sibling of the
// campaign store: same {id?} -> {created, item} merge rule, no due-time
// semantics.
type NotificationRepositoryInterface interface {
	Upsert(ctx context.Context, p model.NotificationPayload) (created bool, n *model.Notification, err error)
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Notification, error)
}

type NotificationRepository struct {
	DB *sql.DB
}

func mergeNotification(n *model.Notification, p model.NotificationPayload) {
	if p.UserID != nil {
		n.UserID = *p.UserID
	}
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Body != nil {
		n.Body = p.Body
	}
	if p.Read != nil {
		n.Read = *p.Read
	}
}

func (r *NotificationRepository) Upsert(ctx context.Context, p model.NotificationPayload) (bool, *model.Notification, error) {
	if p.ID != nil {
		existing, err := r.GetByID(ctx, *p.ID)
		if err != nil && !appErrors.IsNotFound(err) {
			return false, nil, err
		}
		if existing != nil {
			mergeNotification(existing, p)
			now := time.Now().UTC()
			query := `
                UPDATE notifications SET user_id=$1, title=$2, body=$3, read=$4, updated_at=$5
                WHERE id=$6
            `
			_, err := r.DB.ExecContext(ctx, query,
				existing.UserID, existing.Title, nullableJSON(existing.Body), existing.Read, now, existing.ID)
			if err != nil {
				return false, nil, err
			}
			existing.UpdatedAt = &now
			return false, existing, nil
		}
	}

	n := &model.Notification{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	mergeNotification(n, p)
	query := `
        INSERT INTO notifications (id, user_id, title, body, read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.DB.ExecContext(ctx, query,
		n.ID, n.UserID, n.Title, nullableJSON(n.Body), n.Read, n.CreatedAt)
	if err != nil {
		return false, nil, err
	}
	return true, n, nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	query := `
        SELECT id, user_id, title, body, read, created_at, updated_at
        FROM notifications WHERE id=$1
    `
	var n model.Notification
	var body []byte
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.UserID, &n.Title, &body, &n.Read, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotificationNotFound(id)
		}
		return nil, err
	}
	n.Body = body
	return &n, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]*model.Notification, error) {
	query := `
        SELECT id, user_id, title, body, read, created_at, updated_at
        FROM notifications WHERE user_id=$1
        ORDER BY created_at DESC, id DESC
    `
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []*model.Notification{}
	for rows.Next() {
		var n model.Notification
		var body []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &body, &n.Read, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		n.Body = body
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

var _ NotificationRepositoryInterface = (*NotificationRepository)(nil)
