package dto

import (
	"encoding/json"
	"testing"
	"time"

	"payment-facilitator/internal/core/domain"
	"payment-facilitator/internal/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount(t *testing.T) {
	assert.Equal(t, json.Number("90.00"), Amount(9000))
	assert.Equal(t, json.Number("0.01"), Amount(1))
	assert.Equal(t, json.Number("0.00"), Amount(0))
}

func TestNewPaymentResultResponse(t *testing.T) {
	res := &ports.PaymentResult{
		Payment: &domain.Payment{
			ID:             "payment_1",
			MerchantID:     uuid.New(),
			ProductID:      uuid.New(),
			GrossAmount:    10000,
			PlatformFee:    1000,
			MerchantPayout: 9000,
			FeePercentage:  decimal.NewFromInt(10),
			Currency:       "USD",
			CreatedAt:      time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		FeePercentage: decimal.NewFromInt(10),
		State:         domain.SettlementLedgerCommitted,
	}

	body, err := json.Marshal(NewPaymentResultResponse(res))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "payment_1", got["payment_id"])
	assert.Equal(t, 100.0, got["amount"])
	assert.Equal(t, 10.0, got["platform_fee"])
	assert.Equal(t, 90.0, got["merchant_payout"])
	assert.Equal(t, 10.0, got["platform_fee_percentage"])
	assert.Equal(t, "LEDGER_COMMITTED", got["state"])
	assert.Equal(t, "2025-01-02T03:04:05Z", got["created_at"])
	assert.NotContains(t, got, "duplicate")
}

func TestNewStatementResponse(t *testing.T) {
	merchantID := uuid.New()
	st := &ports.Statement{
		Merchant: &domain.Merchant{ID: merchantID, Name: "Acme", Balance: 450},
		Payments: []domain.Payment{{ID: "p1", MerchantID: merchantID, GrossAmount: 500, PlatformFee: 50, MerchantPayout: 450}},
	}

	resp := NewStatementResponse(st, "USD")
	assert.Equal(t, json.Number("4.50"), resp.Merchant.Balance)
	assert.Equal(t, "USD", resp.Merchant.Currency)
	require.Len(t, resp.Payments, 1)
	assert.Equal(t, "p1", resp.Payments[0].PaymentID)
	assert.NotNil(t, resp.Payouts, "empty history renders as []")
	assert.Empty(t, resp.Payouts)
}
