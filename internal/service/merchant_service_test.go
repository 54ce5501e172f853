package service

import (
	"context"
	"testing"

	"payment-facilitator/internal/core/domain"
	"payment-facilitator/internal/core/ports"
	"payment-facilitator/internal/core/ports/mocks"
	"payment-facilitator/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMerchantService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerStore(ctrl)
	mockAudit := mocks.NewMockAuditService(ctrl)
	svc := NewMerchantService(mockLedger, mockAudit, newTestLogger())

	merchantID := uuid.New()
	mockLedger.EXPECT().RegisterMerchant(gomock.Any(), "Acme").Return(&domain.Merchant{ID: merchantID, Name: "Acme"}, nil)
	mockAudit.EXPECT().Log(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry *domain.AuditLog) {
		assert.Equal(t, domain.AuditActionMerchantRegistered, entry.Action)
		assert.Equal(t, merchantID.String(), entry.ResourceID)
		assert.JSONEq(t, `{"name":"Acme"}`, entry.Details)
	})

	m, err := svc.Register(context.Background(), "  Acme ")
	require.NoError(t, err)
	assert.Equal(t, merchantID, m.ID)
}

func TestMerchantService_Register_Invalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerStore(ctrl)
	svc := NewMerchantService(mockLedger, nil, newTestLogger())

	mockLedger.EXPECT().RegisterMerchant(gomock.Any(), "").Return(nil, apperror.InvalidArgument("Merchant name is required"))

	_, err := svc.Register(context.Background(), "   ")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument))
}

func TestMerchantService_AddProduct(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerStore(ctrl)
	mockAudit := mocks.NewMockAuditService(ctrl)
	svc := NewMerchantService(mockLedger, mockAudit, newTestLogger())

	merchantID := uuid.New()
	productID := uuid.New()
	mockLedger.EXPECT().AddProduct(gomock.Any(), merchantID, "Widget", int64(1999)).
		Return(&domain.Product{ID: productID, MerchantID: merchantID, Name: "Widget", Price: 1999}, nil)
	mockAudit.EXPECT().Log(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry *domain.AuditLog) {
		assert.Equal(t, domain.AuditActionProductAdded, entry.Action)
		require.NotNil(t, entry.Amount)
		assert.Equal(t, int64(1999), *entry.Amount)
	})

	p, err := svc.AddProduct(context.Background(), merchantID, "Widget", 1999)
	require.NoError(t, err)
	assert.Equal(t, productID, p.ID)
}

func TestMerchantService_AddProduct_UnknownMerchant(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerStore(ctrl)
	mockAudit := mocks.NewMockAuditService(ctrl)
	svc := NewMerchantService(mockLedger, mockAudit, newTestLogger())

	mockLedger.EXPECT().AddProduct(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, apperror.ErrNotFound("merchant"))

	_, err := svc.AddProduct(context.Background(), uuid.New(), "Widget", 100)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
}

func TestMerchantService_GetStatement(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerStore(ctrl)
	svc := NewMerchantService(mockLedger, nil, newTestLogger())

	merchantID := uuid.New()
	mockLedger.EXPECT().GetStatement(gomock.Any(), merchantID).Return(&ports.Statement{
		Merchant: &domain.Merchant{ID: merchantID, Balance: 900},
		Payments: []domain.Payment{{ID: "pay_1", MerchantPayout: 9000}},
		Payouts:  []domain.Payout{{ID: "po_1", Amount: 8100}},
	}, nil)

	st, err := svc.GetStatement(context.Background(), merchantID)
	require.NoError(t, err)
	assert.Equal(t, int64(900), st.Merchant.Balance)
	assert.Len(t, st.Payments, 1)
	assert.Len(t, st.Payouts, 1)
}

func TestMerchantService_GetStatement_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerStore(ctrl)
	svc := NewMerchantService(mockLedger, nil, newTestLogger())

	mockLedger.EXPECT().GetStatement(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrNotFound("merchant"))

	_, err := svc.GetStatement(context.Background(), uuid.New())
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
}
