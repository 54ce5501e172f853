package service

import (
	"context"
	"strings"

	"payment-facilitator/internal/core/domain"
	"payment-facilitator/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type merchantService struct {
	ledger   ports.LedgerStore
	auditSvc ports.AuditService // nil = audit logging disabled
	log      zerolog.Logger
}

// NewMerchantService creates a new merchant management service.
func NewMerchantService(
	ledger ports.LedgerStore,
	auditSvc ports.AuditService,
	log zerolog.Logger,
) ports.MerchantService {
	return &merchantService{
		ledger:   ledger,
		auditSvc: auditSvc,
		log:      log,
	}
}

func (s *merchantService) Register(ctx context.Context, name string) (*domain.Merchant, error) {
	merchant, err := s.ledger.RegisterMerchant(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("merchant_id", merchant.ID.String()).
		Str("name", merchant.Name).
		Msg("merchant registered")
	if s.auditSvc != nil {
		s.auditSvc.Log(ctx, newAuditEntry(domain.AuditActionMerchantRegistered, merchant.ID, "merchant", merchant.ID.String(), map[string]any{
			"name": merchant.Name,
		}))
	}

	return merchant, nil
}

func (s *merchantService) GetMerchant(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	return s.ledger.GetMerchant(ctx, id)
}

func (s *merchantService) AddProduct(ctx context.Context, merchantID uuid.UUID, name string, price int64) (*domain.Product, error) {
	product, err := s.ledger.AddProduct(ctx, merchantID, strings.TrimSpace(name), price)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("merchant_id", merchantID.String()).
		Str("product_id", product.ID.String()).
		Int64("price", product.Price).
		Msg("product added")
	if s.auditSvc != nil {
		entry := newAuditEntry(domain.AuditActionProductAdded, merchantID, "product", product.ID.String(), map[string]any{
			"name": product.Name,
		})
		entry.Amount = &product.Price
		s.auditSvc.Log(ctx, entry)
	}

	return product, nil
}

func (s *merchantService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.ledger.GetProduct(ctx, id)
}

// GetStatement returns the merchant's balance with its full payment and
// payout history, read as one snapshot.
func (s *merchantService) GetStatement(ctx context.Context, merchantID uuid.UUID) (*ports.Statement, error) {
	return s.ledger.GetStatement(ctx, merchantID)
}
