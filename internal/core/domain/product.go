package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is an item a merchant sells. Immutable once created.
type Product struct {
	ID         uuid.UUID `json:"id"`
	MerchantID uuid.UUID `json:"merchant_id"`
	Name       string    `json:"name"`
	Price      int64     `json:"price"` // Minor units, always > 0
	CreatedAt  time.Time `json:"created_at"`
}
