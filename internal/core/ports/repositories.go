package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"time"

	"payment-facilitator/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerStore is the system of record for merchants, products, payments and
// payouts. Every mutation is atomic with respect to the merchant it touches:
// a merchant's balance always equals the sum of its payment payouts minus the
// sum of its payout amounts.
//
// Errors are *apperror.AppError values carrying LED_001 (not found),
// LED_002 (invalid argument) or LED_003 (conflict).
type LedgerStore interface {
	RegisterMerchant(ctx context.Context, name string) (*domain.Merchant, error)
	GetMerchant(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)

	// AddProduct requires price > 0 and an existing merchant.
	AddProduct(ctx context.Context, merchantID uuid.UUID, name string, price int64) (*domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)

	// RecordPayment splits gross by feePct and credits the owning merchant.
	// A processorPaymentID seen before is a conflict and changes nothing.
	RecordPayment(ctx context.Context, productID uuid.UUID, processorPaymentID string, gross int64, feePct decimal.Decimal, currency string) (*domain.Payment, error)
	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	ListPayments(ctx context.Context, merchantID uuid.UUID) ([]domain.Payment, error)

	// HoldPayout reserves the merchant's current balance for a payout.
	// Fails with LED_002 if the balance is not positive and LED_003 if a hold
	// already exists.
	HoldPayout(ctx context.Context, merchantID uuid.UUID) (*domain.PayoutHold, error)
	// ReleasePayout drops an outstanding hold. Releasing nothing is not an error.
	ReleasePayout(ctx context.Context, merchantID uuid.UUID) error
	// SettlePayout records a confirmed payout. With a hold, exactly the held
	// amount is debited; without one, the whole balance is.
	SettlePayout(ctx context.Context, merchantID uuid.UUID, processorPayoutID string) (*domain.Payout, error)
	GetPayout(ctx context.Context, id string) (*domain.Payout, error)
	ListPayouts(ctx context.Context, merchantID uuid.UUID) ([]domain.Payout, error)

	// GetStatement reads the balance and both histories in one consistent
	// snapshot of the merchant.
	GetStatement(ctx context.Context, merchantID uuid.UUID) (*Statement, error)
}

// AuditRepository persists audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// RateLimitStore counts requests per key in fixed windows.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}
