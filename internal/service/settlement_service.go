package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"payment-facilitator/config"
	"payment-facilitator/internal/core/domain"
	"payment-facilitator/internal/core/ports"
	"payment-facilitator/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SettlementServiceImpl implements ports.SettlementService. It is the only
// code path that mutates merchant balances in response to processor events.
//
// The processor is always called with no ledger lock held, and the ledger is
// only touched after the processor has acknowledged the call with an id.
type SettlementServiceImpl struct {
	ledger       ports.LedgerStore
	gateway      ports.ProcessorGateway
	auditSvc     ports.AuditService // nil = audit logging disabled
	baseCurrency string
	defaultFee   decimal.Decimal
	log          zerolog.Logger
}

// NewSettlementService creates a new SettlementServiceImpl.
func NewSettlementService(
	ledger ports.LedgerStore,
	gateway ports.ProcessorGateway,
	auditSvc ports.AuditService,
	cfg config.SettlementConfig,
	log zerolog.Logger,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		ledger:       ledger,
		gateway:      gateway,
		auditSvc:     auditSvc,
		baseCurrency: strings.ToUpper(cfg.BaseCurrency),
		defaultFee:   decimal.NewFromFloat(cfg.DefaultFeePercentage),
		log:          log,
	}
}

// CollectPayment charges the buyer for one product and credits the merchant
// with the price minus the platform fee.
func (s *SettlementServiceImpl) CollectPayment(ctx context.Context, req ports.CollectPaymentRequest) (*ports.PaymentResult, error) {
	pct := s.defaultFee
	if req.FeePercentage != nil {
		pct = *req.FeePercentage
	}
	if !domain.ValidFeePercentage(pct) {
		return nil, apperror.ErrInvalidFeePercentage()
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return nil, apperror.InvalidArgument("Payment method is required")
	}

	product, err := s.ledger.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.baseCurrency
	}

	log := s.log.With().
		Str("product_id", product.ID.String()).
		Str("merchant_id", product.MerchantID.String()).
		Int64("amount", product.Price).
		Logger()
	log.Debug().Str("state", string(domain.SettlementChargeRequested)).Msg("requesting charge")

	charge, err := s.gateway.CreateCharge(ctx, domain.ChargeRequest{
		Amount:        product.Price,
		Currency:      currency,
		PaymentMethod: req.PaymentMethod,
		Description:   fmt.Sprintf("Payment for %s", product.Name),
	})
	if err != nil {
		log.Warn().Err(err).Str("state", string(domain.SettlementFailed)).Msg("charge failed, nothing committed")
		s.record(ctx, domain.AuditActionPaymentFailed, product.MerchantID, "product", product.ID.String(), product.Price, map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	log = log.With().Str("payment_id", charge.ID).Logger()
	log.Debug().Str("state", string(domain.SettlementChargeConfirmed)).Msg("charge confirmed")

	// The processor has taken the money; the commit must not be skipped
	// because the caller went away.
	commitCtx := context.WithoutCancel(ctx)

	payment, err := s.ledger.RecordPayment(commitCtx, product.ID, charge.ID, product.Price, pct, currency)
	if apperror.HasCode(err, apperror.CodeConflict) {
		existing, getErr := s.ledger.GetPayment(commitCtx, charge.ID)
		if getErr != nil {
			return nil, getErr
		}
		log.Info().Msg("processor returned a payment id already in the ledger")
		return &ports.PaymentResult{
			Payment:       existing,
			FeePercentage: existing.FeePercentage,
			State:         domain.SettlementLedgerCommitted,
			Duplicate:     true,
		}, nil
	}
	if err != nil {
		log.Error().Err(err).Str("state", string(domain.SettlementFailed)).Msg("charge confirmed but ledger commit failed")
		s.record(ctx, domain.AuditActionPaymentFailed, product.MerchantID, "payment", charge.ID, product.Price, map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	log.Info().
		Int64("platform_fee", payment.PlatformFee).
		Int64("merchant_payout", payment.MerchantPayout).
		Str("state", string(domain.SettlementLedgerCommitted)).
		Msg("payment settled")
	s.record(ctx, domain.AuditActionPaymentSettled, product.MerchantID, "payment", payment.ID, payment.GrossAmount, map[string]any{
		"platform_fee":    payment.PlatformFee,
		"merchant_payout": payment.MerchantPayout,
		"fee_percentage":  pct.String(),
		"currency":        currency,
	})

	return &ports.PaymentResult{
		Payment:       payment,
		FeePercentage: pct,
		State:         domain.SettlementLedgerCommitted,
	}, nil
}

// RequestPayout transfers the merchant's whole balance. The balance is held
// for the duration of the processor call so that a concurrent payout cannot
// pay the same funds twice, and payments arriving meanwhile stay in the
// balance for the next payout.
func (s *SettlementServiceImpl) RequestPayout(ctx context.Context, merchantID uuid.UUID) (*ports.PayoutResult, error) {
	merchant, err := s.ledger.GetMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	hold, err := s.ledger.HoldPayout(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	log := s.log.With().
		Str("merchant_id", merchantID.String()).
		Int64("amount", hold.Amount).
		Logger()
	log.Debug().Str("state", string(domain.SettlementPayoutRequested)).Msg("requesting payout")

	commitCtx := context.WithoutCancel(ctx)

	res, err := s.gateway.CreatePayout(ctx, domain.PayoutRequest{
		Amount:          hold.Amount,
		Currency:        s.baseCurrency,
		BeneficiaryName: merchant.Name,
	})
	if err != nil {
		s.release(commitCtx, merchantID, log)
		log.Warn().Err(err).Str("state", string(domain.SettlementFailed)).Msg("payout failed, balance unchanged")
		s.record(ctx, domain.AuditActionPayoutFailed, merchantID, "merchant", merchantID.String(), hold.Amount, map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	log = log.With().Str("payout_id", res.ID).Logger()
	log.Debug().Str("state", string(domain.SettlementPayoutConfirmed)).Msg("payout confirmed")

	payout, err := s.ledger.SettlePayout(commitCtx, merchantID, res.ID)
	if apperror.HasCode(err, apperror.CodeConflict) {
		s.release(commitCtx, merchantID, log)
		existing, getErr := s.ledger.GetPayout(commitCtx, res.ID)
		if getErr != nil {
			return nil, getErr
		}
		log.Info().Msg("processor returned a payout id already in the ledger")
		return &ports.PayoutResult{
			Payout:    existing,
			State:     domain.SettlementLedgerCommitted,
			Duplicate: true,
		}, nil
	}
	if err != nil {
		s.release(commitCtx, merchantID, log)
		log.Error().Err(err).Str("state", string(domain.SettlementFailed)).Msg("payout confirmed but ledger commit failed")
		s.record(ctx, domain.AuditActionPayoutFailed, merchantID, "payout", res.ID, hold.Amount, map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	log.Info().Str("state", string(domain.SettlementLedgerCommitted)).Msg("payout settled")
	s.record(ctx, domain.AuditActionPayoutSettled, merchantID, "payout", payout.ID, payout.Amount, map[string]any{
		"currency": payout.Currency,
	})

	return &ports.PayoutResult{
		Payout: payout,
		State:  domain.SettlementLedgerCommitted,
	}, nil
}

func (s *SettlementServiceImpl) release(ctx context.Context, merchantID uuid.UUID, log zerolog.Logger) {
	if err := s.ledger.ReleasePayout(ctx, merchantID); err != nil {
		log.Error().Err(err).Msg("failed to release payout hold")
	}
}

func (s *SettlementServiceImpl) record(ctx context.Context, action domain.AuditAction, merchantID uuid.UUID, resourceType, resourceID string, amount int64, details map[string]any) {
	if s.auditSvc == nil {
		return
	}
	entry := newAuditEntry(action, merchantID, resourceType, resourceID, details)
	entry.Amount = &amount
	s.auditSvc.Log(ctx, entry)
}

// newAuditEntry builds an audit log with details serialized as JSON.
func newAuditEntry(action domain.AuditAction, merchantID uuid.UUID, resourceType, resourceID string, details map[string]any) *domain.AuditLog {
	entry := &domain.AuditLog{
		ID:           uuid.New(),
		MerchantID:   &merchantID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		CreatedAt:    time.Now().UTC(),
	}
	if len(details) > 0 {
		if b, err := json.Marshal(details); err == nil {
			entry.Details = string(b)
		}
	}
	return entry
}
