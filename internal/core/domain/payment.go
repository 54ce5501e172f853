package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment records a processor-confirmed charge and how it was split between
// the platform and the merchant. PlatformFee + MerchantPayout == GrossAmount.
type Payment struct {
	ID             string          `json:"id"` // Assigned by the processor
	MerchantID     uuid.UUID       `json:"merchant_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	GrossAmount    int64           `json:"gross_amount"`
	PlatformFee    int64           `json:"platform_fee"`
	MerchantPayout int64           `json:"merchant_payout"`
	FeePercentage  decimal.Decimal `json:"fee_percentage"`
	Currency       string          `json:"currency"`
	CreatedAt      time.Time       `json:"created_at"`
}

// IsBalanced reports whether the fee split adds back up to the gross amount.
func (p *Payment) IsBalanced() bool {
	return p.PlatformFee+p.MerchantPayout == p.GrossAmount &&
		p.PlatformFee >= 0 && p.MerchantPayout >= 0
}
