package dto

import (
	"encoding/json"
	"time"

	"payment-facilitator/internal/core/domain"
	"payment-facilitator/internal/core/ports"

	"github.com/shopspring/decimal"
)

// Amounts cross the HTTP boundary as decimal major units (12.34) and are
// converted to minor units (1234) before they reach the services.

// RegisterMerchantRequest is the request body for merchant registration.
type RegisterMerchantRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100" sanitize:"trim"`
}

// AddProductRequest is the request body for adding a product.
type AddProductRequest struct {
	Name  string           `json:"name" binding:"required,min=1,max=100" sanitize:"trim"`
	Price *decimal.Decimal `json:"price" binding:"required"`
}

// CollectPaymentRequest is the request body for buying a product.
type CollectPaymentRequest struct {
	Currency              string           `json:"currency" binding:"omitempty,len=3,alpha"`
	PaymentMethod         string           `json:"payment_method" binding:"required,max=64,safe_id"`
	PlatformFeePercentage *decimal.Decimal `json:"platform_fee_percentage,omitempty"`
}

// MerchantResponse is a merchant with its balance in major units.
type MerchantResponse struct {
	ID        string      `json:"merchant_id"`
	Name      string      `json:"name"`
	Balance   json.Number `json:"balance"`
	Currency  string      `json:"currency"`
	CreatedAt string      `json:"created_at"`
}

// ProductResponse is the response body for product queries.
type ProductResponse struct {
	ID         string      `json:"product_id"`
	MerchantID string      `json:"merchant_id"`
	Name       string      `json:"name"`
	Price      json.Number `json:"price"`
	CreatedAt  string      `json:"created_at"`
}

// PaymentResponse is the response body for a settled payment.
type PaymentResponse struct {
	PaymentID             string      `json:"payment_id"`
	MerchantID            string      `json:"merchant_id"`
	ProductID             string      `json:"product_id"`
	Amount                json.Number `json:"amount"`
	PlatformFee           json.Number `json:"platform_fee"`
	MerchantPayout        json.Number `json:"merchant_payout"`
	PlatformFeePercentage json.Number `json:"platform_fee_percentage"`
	Currency              string      `json:"currency"`
	State                 string      `json:"state,omitempty"`
	Duplicate             bool        `json:"duplicate,omitempty"`
	CreatedAt             string      `json:"created_at"`
}

// PayoutResponse is the response body for a settled payout.
type PayoutResponse struct {
	PayoutID   string      `json:"payout_id"`
	MerchantID string      `json:"merchant_id"`
	Amount     json.Number `json:"amount"`
	Currency   string      `json:"currency"`
	State      string      `json:"state,omitempty"`
	Duplicate  bool        `json:"duplicate,omitempty"`
	CreatedAt  string      `json:"created_at"`
}

// StatementResponse is a merchant with its full history.
type StatementResponse struct {
	Merchant MerchantResponse  `json:"merchant"`
	Payments []PaymentResponse `json:"payments"`
	Payouts  []PayoutResponse  `json:"payouts"`
}

// Amount renders minor units as a two-decimal JSON number.
func Amount(minor int64) json.Number {
	return json.Number(domain.ToMajorUnits(minor).StringFixed(domain.MinorUnitExponent))
}

func NewMerchantResponse(m *domain.Merchant, currency string) MerchantResponse {
	return MerchantResponse{
		ID:        m.ID.String(),
		Name:      m.Name,
		Balance:   Amount(m.Balance),
		Currency:  currency,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

func NewProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID.String(),
		MerchantID: p.MerchantID.String(),
		Name:       p.Name,
		Price:      Amount(p.Price),
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
}

func NewPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:             p.ID,
		MerchantID:            p.MerchantID.String(),
		ProductID:             p.ProductID.String(),
		Amount:                Amount(p.GrossAmount),
		PlatformFee:           Amount(p.PlatformFee),
		MerchantPayout:        Amount(p.MerchantPayout),
		PlatformFeePercentage: json.Number(p.FeePercentage.String()),
		Currency:              p.Currency,
		CreatedAt:             p.CreatedAt.Format(time.RFC3339),
	}
}

// NewPaymentResultResponse adds the workflow outcome to the payment.
func NewPaymentResultResponse(r *ports.PaymentResult) PaymentResponse {
	resp := NewPaymentResponse(r.Payment)
	resp.PlatformFeePercentage = json.Number(r.FeePercentage.String())
	resp.State = string(r.State)
	resp.Duplicate = r.Duplicate
	return resp
}

func NewPayoutResponse(p *domain.Payout) PayoutResponse {
	return PayoutResponse{
		PayoutID:   p.ID,
		MerchantID: p.MerchantID.String(),
		Amount:     Amount(p.Amount),
		Currency:   p.Currency,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
}

// NewPayoutResultResponse adds the workflow outcome to the payout.
func NewPayoutResultResponse(r *ports.PayoutResult) PayoutResponse {
	resp := NewPayoutResponse(r.Payout)
	resp.State = string(r.State)
	resp.Duplicate = r.Duplicate
	return resp
}

func NewStatementResponse(s *ports.Statement, currency string) StatementResponse {
	resp := StatementResponse{
		Merchant: NewMerchantResponse(s.Merchant, currency),
		Payments: make([]PaymentResponse, 0, len(s.Payments)),
		Payouts:  make([]PayoutResponse, 0, len(s.Payouts)),
	}
	for i := range s.Payments {
		resp.Payments = append(resp.Payments, NewPaymentResponse(&s.Payments[i]))
	}
	for i := range s.Payouts {
		resp.Payouts = append(resp.Payouts, NewPayoutResponse(&s.Payouts[i]))
	}
	return resp
}
