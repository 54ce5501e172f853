package domain

import (
	"time"

	"github.com/google/uuid"
)

// Merchant is a registered seller. Balance holds funds owed to the merchant
// that have not yet been paid out.
type Merchant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Balance   int64     `json:"balance"` // Minor units of the base currency, never negative
	CreatedAt time.Time `json:"created_at"`
}

// HasFunds returns true if there is anything to pay out.
func (m *Merchant) HasFunds() bool {
	return m.Balance > 0
}
