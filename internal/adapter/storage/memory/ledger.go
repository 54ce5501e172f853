package memory

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"payment-facilitator/internal/core/domain"
	"payment-facilitator/internal/core/ports"
	"payment-facilitator/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var _ ports.LedgerStore = (*Ledger)(nil)

// account is a merchant together with the lock that serializes every
// balance mutation for that merchant.
type account struct {
	mu       sync.Mutex
	merchant domain.Merchant
	hold     *domain.PayoutHold
	payments []string // Processor payment ids, in commit order
	payouts  []string
}

// Ledger implements ports.LedgerStore in process memory.
//
// Locking: mu guards the maps. Each account's own mutex guards its balance,
// hold and history. When both are needed the account lock is taken first.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*account
	products map[uuid.UUID]domain.Product
	payments map[string]domain.Payment
	payouts  map[string]domain.Payout

	currency string
	now      func() time.Time
	log      zerolog.Logger
}

// NewLedger creates an empty ledger. Payouts are recorded in currency.
func NewLedger(currency string, log zerolog.Logger) *Ledger {
	return &Ledger{
		accounts: make(map[uuid.UUID]*account),
		products: make(map[uuid.UUID]domain.Product),
		payments: make(map[string]domain.Payment),
		payouts:  make(map[string]domain.Payout),
		currency: strings.ToUpper(currency),
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
}

func (l *Ledger) RegisterMerchant(_ context.Context, name string) (*domain.Merchant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.InvalidArgument("Merchant name is required")
	}

	acct := &account{
		merchant: domain.Merchant{
			ID:        uuid.New(),
			Name:      name,
			CreatedAt: l.now(),
		},
	}

	l.mu.Lock()
	l.accounts[acct.merchant.ID] = acct
	l.mu.Unlock()

	m := acct.merchant
	return &m, nil
}

func (l *Ledger) GetMerchant(_ context.Context, id uuid.UUID) (*domain.Merchant, error) {
	acct, err := l.account(id)
	if err != nil {
		return nil, err
	}

	acct.mu.Lock()
	m := acct.merchant
	acct.mu.Unlock()
	return &m, nil
}

func (l *Ledger) AddProduct(_ context.Context, merchantID uuid.UUID, name string, price int64) (*domain.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.InvalidArgument("Product name is required")
	}
	if price <= 0 {
		return nil, apperror.ErrInvalidPrice()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[merchantID]; !ok {
		return nil, apperror.ErrNotFound("merchant")
	}

	p := domain.Product{
		ID:         uuid.New(),
		MerchantID: merchantID,
		Name:       name,
		Price:      price,
		CreatedAt:  l.now(),
	}
	l.products[p.ID] = p
	return &p, nil
}

func (l *Ledger) GetProduct(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	l.mu.RLock()
	p, ok := l.products[id]
	l.mu.RUnlock()
	if !ok {
		return nil, apperror.ErrNotFound("product")
	}
	return &p, nil
}

// RecordPayment commits a processor-confirmed charge. The payment insert and
// the balance credit happen together under the merchant lock.
func (l *Ledger) RecordPayment(ctx context.Context, productID uuid.UUID, processorPaymentID string, gross int64, feePct decimal.Decimal, currency string) (*domain.Payment, error) {
	if processorPaymentID == "" {
		return nil, apperror.InvalidArgument("Processor payment id is required")
	}
	if gross <= 0 {
		return nil, apperror.InvalidArgument("Payment amount must be greater than zero")
	}
	if !domain.ValidFeePercentage(feePct) {
		return nil, apperror.ErrInvalidFeePercentage()
	}

	product, err := l.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	acct, err := l.account(product.MerchantID)
	if err != nil {
		return nil, err
	}

	fee, payout := domain.SplitFee(gross, feePct)
	payment := domain.Payment{
		ID:             processorPaymentID,
		MerchantID:     product.MerchantID,
		ProductID:      product.ID,
		GrossAmount:    gross,
		PlatformFee:    fee,
		MerchantPayout: payout,
		FeePercentage:  feePct,
		Currency:       strings.ToUpper(currency),
		CreatedAt:      l.now(),
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()

	l.mu.Lock()
	if _, exists := l.payments[processorPaymentID]; exists {
		l.mu.Unlock()
		return nil, apperror.ErrDuplicatePayment()
	}
	if payout > math.MaxInt64-acct.merchant.Balance {
		l.mu.Unlock()
		return nil, apperror.InvalidArgument("Payment would overflow the merchant balance")
	}
	l.payments[processorPaymentID] = payment
	l.mu.Unlock()

	acct.merchant.Balance += payout
	acct.payments = append(acct.payments, processorPaymentID)

	l.log.Debug().
		Str("payment_id", processorPaymentID).
		Str("merchant_id", product.MerchantID.String()).
		Int64("amount", gross).
		Int64("platform_fee", fee).
		Int64("balance", acct.merchant.Balance).
		Msg("payment recorded")

	return &payment, nil
}

func (l *Ledger) GetPayment(_ context.Context, id string) (*domain.Payment, error) {
	l.mu.RLock()
	p, ok := l.payments[id]
	l.mu.RUnlock()
	if !ok {
		return nil, apperror.ErrNotFound("payment")
	}
	return &p, nil
}

func (l *Ledger) ListPayments(_ context.Context, merchantID uuid.UUID) ([]domain.Payment, error) {
	acct, err := l.account(merchantID)
	if err != nil {
		return nil, err
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()

	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.paymentsOf(acct), nil
}

// HoldPayout reserves the merchant's whole balance for one in-flight payout.
func (l *Ledger) HoldPayout(_ context.Context, merchantID uuid.UUID) (*domain.PayoutHold, error) {
	acct, err := l.account(merchantID)
	if err != nil {
		return nil, err
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()

	if acct.hold != nil {
		return nil, apperror.ErrPayoutInProgress()
	}
	if !acct.merchant.HasFunds() {
		return nil, apperror.ErrNoFundsAvailable()
	}

	acct.hold = &domain.PayoutHold{
		MerchantID: merchantID,
		Amount:     acct.merchant.Balance,
		CreatedAt:  l.now(),
	}
	h := *acct.hold
	return &h, nil
}

func (l *Ledger) ReleasePayout(_ context.Context, merchantID uuid.UUID) error {
	acct, err := l.account(merchantID)
	if err != nil {
		return err
	}

	acct.mu.Lock()
	acct.hold = nil
	acct.mu.Unlock()
	return nil
}

// SettlePayout debits the held amount, or the whole balance when nothing is
// held, and records the payout. The hold is cleared on success only.
func (l *Ledger) SettlePayout(_ context.Context, merchantID uuid.UUID, processorPayoutID string) (*domain.Payout, error) {
	if processorPayoutID == "" {
		return nil, apperror.InvalidArgument("Processor payout id is required")
	}

	acct, err := l.account(merchantID)
	if err != nil {
		return nil, err
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()

	amount := acct.merchant.Balance
	if acct.hold != nil {
		amount = acct.hold.Amount
	}
	if amount <= 0 {
		return nil, apperror.ErrNoFundsAvailable()
	}

	payout := domain.Payout{
		ID:         processorPayoutID,
		MerchantID: merchantID,
		Amount:     amount,
		Currency:   l.currency,
		CreatedAt:  l.now(),
	}

	l.mu.Lock()
	if _, exists := l.payouts[processorPayoutID]; exists {
		l.mu.Unlock()
		return nil, apperror.ErrDuplicatePayout()
	}
	l.payouts[processorPayoutID] = payout
	l.mu.Unlock()

	acct.merchant.Balance -= amount
	acct.hold = nil
	acct.payouts = append(acct.payouts, processorPayoutID)

	l.log.Debug().
		Str("payout_id", processorPayoutID).
		Str("merchant_id", merchantID.String()).
		Int64("amount", amount).
		Int64("balance", acct.merchant.Balance).
		Msg("payout recorded")

	return &payout, nil
}

func (l *Ledger) GetPayout(_ context.Context, id string) (*domain.Payout, error) {
	l.mu.RLock()
	p, ok := l.payouts[id]
	l.mu.RUnlock()
	if !ok {
		return nil, apperror.ErrNotFound("payout")
	}
	return &p, nil
}

func (l *Ledger) ListPayouts(_ context.Context, merchantID uuid.UUID) ([]domain.Payout, error) {
	acct, err := l.account(merchantID)
	if err != nil {
		return nil, err
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()

	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.payoutsOf(acct), nil
}

// GetStatement copies the merchant, its payments and its payouts under a
// single hold of the account lock, so the balance always matches the history.
func (l *Ledger) GetStatement(_ context.Context, merchantID uuid.UUID) (*ports.Statement, error) {
	acct, err := l.account(merchantID)
	if err != nil {
		return nil, err
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()

	l.mu.RLock()
	defer l.mu.RUnlock()

	m := acct.merchant
	return &ports.Statement{
		Merchant: &m,
		Payments: l.paymentsOf(acct),
		Payouts:  l.payoutsOf(acct),
	}, nil
}

// paymentsOf and payoutsOf require the account lock and l.mu.
func (l *Ledger) paymentsOf(acct *account) []domain.Payment {
	out := make([]domain.Payment, 0, len(acct.payments))
	for _, id := range acct.payments {
		out = append(out, l.payments[id])
	}
	return out
}

func (l *Ledger) payoutsOf(acct *account) []domain.Payout {
	out := make([]domain.Payout, 0, len(acct.payouts))
	for _, id := range acct.payouts {
		out = append(out, l.payouts[id])
	}
	return out
}

func (l *Ledger) account(id uuid.UUID) (*account, error) {
	l.mu.RLock()
	acct, ok := l.accounts[id]
	l.mu.RUnlock()
	if !ok {
		return nil, apperror.ErrNotFound("merchant")
	}
	return acct, nil
}
