package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLedgerStatus tracks the outcome of an order persistence attempt.
type OrderLedgerStatus string

const (
	OrderLedgerStatusPending       OrderLedgerStatus = "pending"
	OrderLedgerStatusRecorded      OrderLedgerStatus = "recorded"
	OrderLedgerStatusPersistFailed OrderLedgerStatus = "persist_failed"
)

// OrderLedgerEntry is the local record of every order persistence attempt.
// The unique index on payment_intent_id is what makes order creation
// at-most-once per charge; on a failed content-backend write the attempted
// payload stays here for manual reconciliation.
type OrderLedgerEntry struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	PaymentIntentID string            `gorm:"column:payment_intent_id;uniqueIndex:idx_order_ledger_intent;not null"`
	OrderNumber     string            `gorm:"column:order_number;index;not null"`
	Status          OrderLedgerStatus `gorm:"column:status;not null;default:'pending'"`
	AmountCents     int64             `gorm:"column:amount_cents;not null"`
	CustomerEmail   string            `gorm:"column:customer_email"`
	Payload         string            `gorm:"column:payload;type:text"`
	FailureReason   *string           `gorm:"column:failure_reason"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the ledger table name.
func (OrderLedgerEntry) TableName() string { return "order_ledger" }
