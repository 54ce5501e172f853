package domain

import (
	"time"

	"github.com/google/uuid"
)

// Payout records a processor-confirmed transfer of a merchant's balance.
type Payout struct {
	ID         string    `json:"id"` // Assigned by the processor
	MerchantID uuid.UUID `json:"merchant_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"created_at"`
}

// PayoutHold reserves the amount of an in-flight payout so that a second
// payout cannot be started for the same funds.
type PayoutHold struct {
	MerchantID uuid.UUID `json:"merchant_id"`
	Amount     int64     `json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
}
