package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionMerchantRegistered AuditAction = "MERCHANT_REGISTERED"
	AuditActionProductAdded       AuditAction = "PRODUCT_ADDED"
	AuditActionPaymentSettled     AuditAction = "PAYMENT_SETTLED"
	AuditActionPaymentFailed      AuditAction = "PAYMENT_FAILED"
	AuditActionPayoutSettled      AuditAction = "PAYOUT_SETTLED"
	AuditActionPayoutFailed       AuditAction = "PAYOUT_FAILED"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	MerchantID   *uuid.UUID  `json:"merchant_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Amount       *int64      `json:"amount,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time   `json:"created_at"`
}
