package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fooddash/fooddash-backend/pkg/db"
	"github.com/fooddash/fooddash-backend/pkg/db/models"
	pkgerrors "github.com/fooddash/fooddash-backend/pkg/errors"
)

// ErrDuplicateIntent is returned when a ledger entry for the payment intent
// already exists. It is the signal that another confirmation already claimed
// this charge.
var ErrDuplicateIntent = errors.New("ledger entry already exists for payment intent")

// Repository tracks every order persistence attempt keyed by payment intent.
type Repository interface {
	// Begin claims the payment intent by inserting a pending entry. Returns
	// ErrDuplicateIntent when the intent is already claimed.
	Begin(ctx context.Context, entry *models.OrderLedgerEntry) error
	MarkRecorded(ctx context.Context, paymentIntentID string) error
	MarkFailed(ctx context.Context, paymentIntentID string, reason string) error
	FindByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.OrderLedgerEntry, error)
}

type repository struct {
	conn *gorm.DB
}

// NewRepository builds the ledger repository and migrates its table.
func NewRepository(client *db.Client) (Repository, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if err := client.DB().AutoMigrate(&models.OrderLedgerEntry{}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "migrating order ledger")
	}
	return &repository{conn: client.DB()}, nil
}

func (r *repository) Begin(ctx context.Context, entry *models.OrderLedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Status == "" {
		entry.Status = models.OrderLedgerStatusPending
	}

	err := r.conn.WithContext(ctx).Create(entry).Error
	if err == nil {
		return nil
	}
	if db.IsUniqueViolation(err, "idx_order_ledger_intent") {
		return ErrDuplicateIntent
	}
	return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "inserting ledger entry")
}

func (r *repository) MarkRecorded(ctx context.Context, paymentIntentID string) error {
	return r.setStatus(ctx, paymentIntentID, models.OrderLedgerStatusRecorded, nil)
}

func (r *repository) MarkFailed(ctx context.Context, paymentIntentID string, reason string) error {
	return r.setStatus(ctx, paymentIntentID, models.OrderLedgerStatusPersistFailed, &reason)
}

func (r *repository) setStatus(ctx context.Context, paymentIntentID string, status models.OrderLedgerStatus, reason *string) error {
	updates := map[string]any{"status": status}
	if reason != nil {
		updates["failure_reason"] = *reason
	}

	result := r.conn.WithContext(ctx).
		Model(&models.OrderLedgerEntry{}).
		Where("payment_intent_id = ?", paymentIntentID).
		Updates(updates)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, result.Error, "updating ledger entry")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodePersistence, "ledger entry not found for payment intent")
	}
	return nil
}

func (r *repository) FindByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.OrderLedgerEntry, error) {
	var entry models.OrderLedgerEntry
	err := r.conn.WithContext(ctx).
		Where("payment_intent_id = ?", paymentIntentID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ledger entry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "querying ledger entry")
	}
	return &entry, nil
}
