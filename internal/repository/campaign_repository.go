package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/mkandie/concierge-backend/internal/errors"
	"github.com/mkandie/concierge-backend/internal/model"
)

type CampaignStoreInterface interface {
	// Upsert merges the payload onto an existing record when payload.ID
	// matches one, otherwise creates a new record with defaults applied.
	Upsert(ctx context.Context, p model.CampaignPayload) (created bool, c *model.Campaign, err error)
	// List returns every campaign, created_at descending, so scheduler
	// runs see a stable, reproducible ordering.
	List(ctx context.Context) ([]*model.Campaign, error)
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	// Save overwrites a record previously read from the store. It fails
	// with ErrConflict when the record's version changed since the read.
	Save(ctx context.Context, c *model.Campaign) error
}

type CampaignRepository struct {
	DB *sql.DB
}

// MergePayload applies the field-level upsert merge: fields absent in the
// payload keep their stored value, present fields overwrite wholesale.
func MergePayload(c *model.Campaign, p model.CampaignPayload) {
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Message != nil {
		c.Message = p.Message
	}
	if p.Audience != nil {
		c.Audience = p.Audience
	}
	if p.Recurrence != nil {
		c.Recurrence = *p.Recurrence
	}
	if p.ScheduledAt != nil {
		t := *p.ScheduledAt
		c.ScheduledAt = &t
	}
}

func (r *CampaignRepository) Upsert(ctx context.Context, p model.CampaignPayload) (bool, *model.Campaign, error) {
	if p.ID != nil {
		existing, err := r.GetByID(ctx, *p.ID)
		if err != nil && !appErrors.IsNotFound(err) {
			return false, nil, err
		}
		if existing != nil {
			MergePayload(existing, p)
			if err := r.Save(ctx, existing); err != nil {
				return false, nil, err
			}
			return false, existing, nil
		}
	}
	c, err := r.create(ctx, p)
	if err != nil {
		return false, nil, err
	}
	return true, c, nil
}

func (r *CampaignRepository) create(ctx context.Context, p model.CampaignPayload) (*model.Campaign, error) {
	c := &model.Campaign{
		ID:        uuid.NewString(),
		Status:    model.StatusDraft,
		CreatedAt: time.Now().UTC(),
		Version:   1,
	}
	MergePayload(c, p)

	query := `
        INSERT INTO campaigns (id, status, message, audience, recurrence, scheduled_at, delivery_count, version, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, 0, 1, $7)
    `
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.Status, nullableJSON(c.Message), nullableJSON(c.Audience),
		c.Recurrence, c.ScheduledAt, c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	query := `
        SELECT id, status, message, audience, recurrence, scheduled_at, last_delivered_at, delivery_count, version, created_at, updated_at
        FROM campaigns WHERE id=$1
    `
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) List(ctx context.Context) ([]*model.Campaign, error) {
	query := `
        SELECT id, status, message, audience, recurrence, scheduled_at, last_delivered_at, delivery_count, version, created_at, updated_at
        FROM campaigns
        ORDER BY created_at DESC, id DESC
    `
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// Save guards against lost updates: the UPDATE only lands when the row
// still carries the version the caller read. Zero rows affected means
// either a concurrent writer won or the record is gone.
func (r *CampaignRepository) Save(ctx context.Context, c *model.Campaign) error {
	now := time.Now().UTC()
	query := `
        UPDATE campaigns
        SET status=$1, message=$2, audience=$3, recurrence=$4, scheduled_at=$5,
            last_delivered_at=$6, delivery_count=$7, version=version+1, updated_at=$8
        WHERE id=$9 AND version=$10
    `
	res, err := r.DB.ExecContext(ctx, query,
		c.Status, nullableJSON(c.Message), nullableJSON(c.Audience), c.Recurrence, c.ScheduledAt,
		c.LastDeliveredAt, c.DeliveryCount, now, c.ID, c.Version,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		if err := r.DB.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM campaigns WHERE id=$1)`, c.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return appErrors.NewCampaignNotFound(c.ID)
		}
		return appErrors.NewConflict(c.ID)
	}
	c.Version++
	c.UpdatedAt = &now
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var c model.Campaign
	var message, audience []byte
	err := row.Scan(
		&c.ID, &c.Status, &message, &audience, &c.Recurrence,
		&c.ScheduledAt, &c.LastDeliveredAt, &c.DeliveryCount,
		&c.Version, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Message = message
	c.Audience = audience
	return &c, nil
}

func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}

var _ CampaignStoreInterface = (*CampaignRepository)(nil)
