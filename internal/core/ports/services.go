package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"

	"payment-facilitator/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Outbound Ports ---

// Signer produces the authentication headers for one processor request.
// Each call yields a fresh nonce.
type Signer interface {
	Sign(method, path string, body []byte) *domain.SignedHeaders
}

// ProcessorGateway talks to the external payment processor. Failures are
// reported as *apperror.AppError wrapping a *domain.ProcessorError.
type ProcessorGateway interface {
	CreateCharge(ctx context.Context, req domain.ChargeRequest) (*domain.ProcessorResult, error)
	CreatePayout(ctx context.Context, req domain.PayoutRequest) (*domain.ProcessorResult, error)
}

// AuditService records audited actions without blocking the caller.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

// --- Service Ports (Business Logic) ---

// MerchantService exposes merchant and product management.
type MerchantService interface {
	Register(ctx context.Context, name string) (*domain.Merchant, error)
	GetMerchant(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
	AddProduct(ctx context.Context, merchantID uuid.UUID, name string, price int64) (*domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetStatement(ctx context.Context, merchantID uuid.UUID) (*Statement, error)
}

// Statement is a merchant together with its payment and payout history.
type Statement struct {
	Merchant *domain.Merchant
	Payments []domain.Payment
	Payouts  []domain.Payout
}

// SettlementService drives payments and payouts through the processor and
// into the ledger.
type SettlementService interface {
	CollectPayment(ctx context.Context, req CollectPaymentRequest) (*PaymentResult, error)
	RequestPayout(ctx context.Context, merchantID uuid.UUID) (*PayoutResult, error)
}

// CollectPaymentRequest holds validated input for a product purchase.
type CollectPaymentRequest struct {
	ProductID     uuid.UUID
	Currency      string           // Empty means the base currency
	PaymentMethod string           // Processor payment method type
	FeePercentage *decimal.Decimal // nil = configured default
}

// PaymentResult is the outcome of CollectPayment.
type PaymentResult struct {
	Payment       *domain.Payment
	FeePercentage decimal.Decimal
	State         domain.SettlementState
	Duplicate     bool // The processor returned an id the ledger already had
}

// PayoutResult is the outcome of RequestPayout.
type PayoutResult struct {
	Payout    *domain.Payout
	State     domain.SettlementState
	Duplicate bool
}
