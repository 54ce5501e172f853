package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFee(t *testing.T) {
	tests := []struct {
		name       string
		gross      int64
		pct        string
		wantFee    int64
		wantPayout int64
	}{
		{"ten percent of 100.00", 10000, "10", 1000, 9000},
		{"zero fee", 10000, "0", 0, 10000},
		{"full fee", 10000, "100", 10000, 0},
		{"rounds half up", 5, "10", 1, 4},       // 0.5 -> 1
		{"rounds down below half", 4, "10", 0, 4}, // 0.4 -> 0
		{"fractional percentage", 12345, "2.5", 309, 12036},
		{"tiny amount", 1, "33.333", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, payout := SplitFee(tt.gross, decimal.RequireFromString(tt.pct))
			assert.Equal(t, tt.wantFee, fee)
			assert.Equal(t, tt.wantPayout, payout)
			assert.Equal(t, tt.gross, fee+payout)
		})
	}
}

func TestValidFeePercentage(t *testing.T) {
	tests := []struct {
		pct  string
		want bool
	}{
		{"0", true},
		{"10", true},
		{"99.99", true},
		{"100", true},
		{"100.01", false},
		{"-0.01", false},
		{"150", false},
	}

	for _, tt := range tests {
		t.Run(tt.pct, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidFeePercentage(decimal.RequireFromString(tt.pct)))
		})
	}
}

func TestToMinorUnits(t *testing.T) {
	minor, err := ToMinorUnits(decimal.RequireFromString("12.34"))
	require.NoError(t, err)
	assert.Equal(t, int64(1234), minor)

	minor, err = ToMinorUnits(decimal.RequireFromString("100"))
	require.NoError(t, err)
	assert.Equal(t, int64(10000), minor)

	_, err = ToMinorUnits(decimal.RequireFromString("1.005"))
	assert.Error(t, err)
}

func TestToMinorUnits_Range(t *testing.T) {
	minor, err := ToMinorUnits(decimal.RequireFromString("92233720368547758.07"))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), minor)

	tests := []string{
		"92233720368547758.08",
		"184467440737095516.17", // wraps to 0.01 with a plain IntPart
		"-92233720368547758.09",
		"1e30",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := ToMinorUnits(decimal.RequireFromString(in))
			assert.Error(t, err)
		})
	}
}

func TestToMajorUnits(t *testing.T) {
	assert.Equal(t, "12.34", ToMajorUnits(1234).StringFixed(2))
	assert.Equal(t, "0.05", ToMajorUnits(5).StringFixed(2))
	assert.Equal(t, "100.00", ToMajorUnits(10000).StringFixed(2))
}

func TestPayment_IsBalanced(t *testing.T) {
	p := &Payment{GrossAmount: 10000, PlatformFee: 1000, MerchantPayout: 9000}
	assert.True(t, p.IsBalanced())

	p.MerchantPayout = 8999
	assert.False(t, p.IsBalanced())
}

func TestMerchant_HasFunds(t *testing.T) {
	assert.False(t, (&Merchant{Balance: 0}).HasFunds())
	assert.True(t, (&Merchant{Balance: 1}).HasFunds())
}

func TestSettlementState_IsTerminal(t *testing.T) {
	tests := []struct {
		state SettlementState
		want  bool
	}{
		{SettlementValidating, false},
		{SettlementChargeRequested, false},
		{SettlementChargeConfirmed, false},
		{SettlementPayoutRequested, false},
		{SettlementPayoutConfirmed, false},
		{SettlementLedgerCommitted, true},
		{SettlementFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.IsTerminal())
		})
	}
}

func TestProcessorError(t *testing.T) {
	inner := errors.New("connection refused")
	err := &ProcessorError{Kind: ProcessorUnreachable, Operation: "create_charge", Err: inner}

	assert.Equal(t, "processor create_charge: UNREACHABLE: connection refused", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.True(t, err.MayHaveTakenEffect())

	rejected := &ProcessorError{Kind: ProcessorRejected, Operation: "create_payout", StatusCode: 400}
	assert.Equal(t, "processor create_payout: REJECTED (status 400)", rejected.Error())
	assert.False(t, rejected.MayHaveTakenEffect())
}

func TestSignedHeaders_Map(t *testing.T) {
	h := SignedHeaders{
		ContentType: "application/json",
		AccessKey:   "ak",
		Nonce:       "n-1",
		Timestamp:   1700000000,
		Signature:   "sig",
	}

	m := h.Map()
	assert.Equal(t, "application/json", m["Content-Type"])
	assert.Equal(t, "ak", m["access_key"])
	assert.Equal(t, "n-1", m["salt"])
	assert.Equal(t, "1700000000", m["timestamp"])
	assert.Equal(t, "sig", m["signature"])
}
