package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"payment-facilitator/internal/core/domain"
	"payment-facilitator/internal/core/ports"
	"payment-facilitator/internal/core/ports/mocks"
	"payment-facilitator/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type handlerMocks struct {
	merchants  *mocks.MockMerchantService
	settlement *mocks.MockSettlementService
}

func newTestRouter(t *testing.T) (*gin.Engine, handlerMocks) {
	ctrl := gomock.NewController(t)
	m := handlerMocks{
		merchants:  mocks.NewMockMerchantService(ctrl),
		settlement: mocks.NewMockSettlementService(ctrl),
	}
	r := SetupRouter(RouterDeps{
		MerchantSvc:   m.merchants,
		SettlementSvc: m.settlement,
		BaseCurrency:  "USD",
		Mode:          gin.TestMode,
		Logger:        zerolog.Nop(),
	})
	return r, m
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// envelope decodes the success envelope with numbers kept verbatim.
func envelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader(w.Body.Bytes()))
	dec.UseNumber()
	var resp map[string]interface{}
	require.NoError(t, dec.Decode(&resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "missing data in %s", w.Body.String())
	return data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code, _ := resp["error_code"].(string)
	return code
}

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// --- Merchants ---

func TestRegister_Success(t *testing.T) {
	r, m := newTestRouter(t)

	merchantID := uuid.New()
	m.merchants.EXPECT().Register(gomock.Any(), "Acme").
		Return(&domain.Merchant{ID: merchantID, Name: "Acme", CreatedAt: fixedTime}, nil)

	w := serve(r, http.MethodPost, "/api/v1/merchants", `{"name":"Acme"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := envelope(t, w)
	assert.Equal(t, merchantID.String(), data["merchant_id"])
	assert.Equal(t, json.Number("0.00"), data["balance"])
	assert.Equal(t, "USD", data["currency"])
}

func TestRegister_ValidationError(t *testing.T) {
	r, _ := newTestRouter(t)

	w := serve(r, http.MethodPost, "/api/v1/merchants", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeValidation, errorCode(t, w))
}

func TestGetMerchant_Success(t *testing.T) {
	r, m := newTestRouter(t)

	merchantID := uuid.New()
	m.merchants.EXPECT().GetMerchant(gomock.Any(), merchantID).
		Return(&domain.Merchant{ID: merchantID, Name: "Acme", Balance: 9000, CreatedAt: fixedTime}, nil)

	w := serve(r, http.MethodGet, "/api/v1/merchants/"+merchantID.String(), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, json.Number("90.00"), envelope(t, w)["balance"])
}

func TestGetMerchant_InvalidID(t *testing.T) {
	r, _ := newTestRouter(t)

	w := serve(r, http.MethodGet, "/api/v1/merchants/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeValidation, errorCode(t, w))
}

func TestGetMerchant_NotFound(t *testing.T) {
	r, m := newTestRouter(t)

	merchantID := uuid.New()
	m.merchants.EXPECT().GetMerchant(gomock.Any(), merchantID).Return(nil, apperror.ErrNotFound("merchant"))

	w := serve(r, http.MethodGet, "/api/v1/merchants/"+merchantID.String(), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperror.CodeNotFound, errorCode(t, w))
}

func TestGetStatement_Success(t *testing.T) {
	r, m := newTestRouter(t)

	merchantID := uuid.New()
	m.merchants.EXPECT().GetStatement(gomock.Any(), merchantID).Return(&ports.Statement{
		Merchant: &domain.Merchant{ID: merchantID, Name: "Acme", CreatedAt: fixedTime},
		Payments: []domain.Payment{{
			ID: "payment_1", MerchantID: merchantID, ProductID: uuid.New(),
			GrossAmount: 10000, PlatformFee: 1000, MerchantPayout: 9000,
			FeePercentage: decimal.NewFromInt(10), Currency: "USD", CreatedAt: fixedTime,
		}},
		Payouts: []domain.Payout{{ID: "payout_1", MerchantID: merchantID, Amount: 9000, Currency: "USD", CreatedAt: fixedTime}},
	}, nil)

	w := serve(r, http.MethodGet, "/api/v1/merchants/"+merchantID.String()+"/statement", "")

	assert.Equal(t, http.StatusOK, w.Code)
	data := envelope(t, w)
	payments := data["payments"].([]interface{})
	payouts := data["payouts"].([]interface{})
	require.Len(t, payments, 1)
	require.Len(t, payouts, 1)
	assert.Equal(t, json.Number("10.00"), payments[0].(map[string]interface{})["platform_fee"])
	assert.Equal(t, json.Number("90.00"), payouts[0].(map[string]interface{})["amount"])
}

// --- Products ---

func TestAddProduct_Success(t *testing.T) {
	r, m := newTestRouter(t)

	merchantID := uuid.New()
	productID := uuid.New()
	m.merchants.EXPECT().AddProduct(gomock.Any(), merchantID, "Widget", int64(1999)).
		Return(&domain.Product{ID: productID, MerchantID: merchantID, Name: "Widget", Price: 1999, CreatedAt: fixedTime}, nil)

	w := serve(r, http.MethodPost, "/api/v1/merchants/"+merchantID.String()+"/products", `{"name":"Widget","price":19.99}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := envelope(t, w)
	assert.Equal(t, productID.String(), data["product_id"])
	assert.Equal(t, json.Number("19.99"), data["price"])
}

func TestAddProduct_InvalidPrice(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero", `{"name":"Widget","price":0}`},
		{"negative", `{"name":"Widget","price":-5}`},
		{"sub-cent", `{"name":"Widget","price":1.001}`},
		{"beyond int64", `{"name":"Widget","price":184467440737095516.17}`},
		{"just past max", `{"name":"Widget","price":92233720368547758.08}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter(t)

			w := serve(r, http.MethodPost, "/api/v1/merchants/"+uuid.NewString()+"/products", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, apperror.CodeInvalidArgument, errorCode(t, w))
		})
	}
}

func TestAddProduct_MissingPrice(t *testing.T) {
	r, _ := newTestRouter(t)

	w := serve(r, http.MethodPost, "/api/v1/merchants/"+uuid.NewString()+"/products", `{"name":"Widget"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeValidation, errorCode(t, w))
}

func TestGetProduct_Success(t *testing.T) {
	r, m := newTestRouter(t)

	product := &domain.Product{ID: uuid.New(), MerchantID: uuid.New(), Name: "Widget", Price: 500, CreatedAt: fixedTime}
	m.merchants.EXPECT().GetProduct(gomock.Any(), product.ID).Return(product, nil)

	w := serve(r, http.MethodGet, "/api/v1/products/"+product.ID.String(), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, json.Number("5.00"), envelope(t, w)["price"])
}

// --- Payments ---

func TestCollectPayment_Success(t *testing.T) {
	r, m := newTestRouter(t)

	productID := uuid.New()
	pct := decimal.RequireFromString("12.5")
	m.settlement.EXPECT().CollectPayment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.CollectPaymentRequest) (*ports.PaymentResult, error) {
			assert.Equal(t, productID, req.ProductID)
			assert.Equal(t, "EUR", req.Currency)
			assert.Equal(t, "us_visa_card", req.PaymentMethod)
			require.NotNil(t, req.FeePercentage)
			assert.True(t, req.FeePercentage.Equal(pct))
			return &ports.PaymentResult{
				Payment: &domain.Payment{
					ID: "payment_1", MerchantID: uuid.New(), ProductID: productID,
					GrossAmount: 10000, PlatformFee: 1250, MerchantPayout: 8750,
					FeePercentage: pct, Currency: "EUR", CreatedAt: fixedTime,
				},
				FeePercentage: pct,
				State:         domain.SettlementLedgerCommitted,
			}, nil
		})

	w := serve(r, http.MethodPost, "/api/v1/products/"+productID.String()+"/payments",
		`{"currency":"EUR","payment_method":"us_visa_card","platform_fee_percentage":12.5}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := envelope(t, w)
	assert.Equal(t, "payment_1", data["payment_id"])
	assert.Equal(t, json.Number("100.00"), data["amount"])
	assert.Equal(t, json.Number("12.50"), data["platform_fee"])
	assert.Equal(t, json.Number("87.50"), data["merchant_payout"])
	assert.Equal(t, json.Number("12.5"), data["platform_fee_percentage"])
	assert.Equal(t, string(domain.SettlementLedgerCommitted), data["state"])
}

func TestCollectPayment_Duplicate(t *testing.T) {
	r, m := newTestRouter(t)

	productID := uuid.New()
	m.settlement.EXPECT().CollectPayment(gomock.Any(), gomock.Any()).Return(&ports.PaymentResult{
		Payment: &domain.Payment{
			ID: "payment_1", ProductID: productID, GrossAmount: 100, PlatformFee: 10, MerchantPayout: 90,
			FeePercentage: decimal.NewFromInt(10), Currency: "USD", CreatedAt: fixedTime,
		},
		FeePercentage: decimal.NewFromInt(10),
		State:         domain.SettlementLedgerCommitted,
		Duplicate:     true,
	}, nil)

	w := serve(r, http.MethodPost, "/api/v1/products/"+productID.String()+"/payments", `{"payment_method":"us_visa_card"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, envelope(t, w)["duplicate"])
}

func TestCollectPayment_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing payment method", `{}`},
		{"unsafe payment method", `{"payment_method":"visa; drop"}`},
		{"bad currency", `{"payment_method":"us_visa_card","currency":"EURO"}`},
		{"malformed json", `{"payment_method":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter(t)

			w := serve(r, http.MethodPost, "/api/v1/products/"+uuid.NewString()+"/payments", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, apperror.CodeValidation, errorCode(t, w))
		})
	}
}

func TestCollectPayment_ProcessorErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unreachable", apperror.ErrProcessorUnreachable(errors.New("dial")), http.StatusGatewayTimeout, apperror.CodeProcessorUnreachable},
		{"rejected", apperror.ErrProcessorRejected(errors.New("400")), http.StatusBadGateway, apperror.CodeProcessorRejected},
		{"malformed", apperror.ErrProcessorMalformedResponse(errors.New("no id")), http.StatusBadGateway, apperror.CodeProcessorMalformed},
		{"invalid fee", apperror.ErrInvalidFeePercentage(), http.StatusBadRequest, apperror.CodeInvalidArgument},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, apperror.CodeUnknownSystem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, m := newTestRouter(t)
			m.settlement.EXPECT().CollectPayment(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			w := serve(r, http.MethodPost, "/api/v1/products/"+uuid.NewString()+"/payments", `{"payment_method":"us_visa_card"}`)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

// --- Payouts ---

func TestRequestPayout_Success(t *testing.T) {
	r, m := newTestRouter(t)

	merchantID := uuid.New()
	m.settlement.EXPECT().RequestPayout(gomock.Any(), merchantID).Return(&ports.PayoutResult{
		Payout: &domain.Payout{ID: "payout_1", MerchantID: merchantID, Amount: 9000, Currency: "USD", CreatedAt: fixedTime},
		State:  domain.SettlementLedgerCommitted,
	}, nil)

	w := serve(r, http.MethodPost, "/api/v1/merchants/"+merchantID.String()+"/payouts", "")

	assert.Equal(t, http.StatusCreated, w.Code)
	data := envelope(t, w)
	assert.Equal(t, "payout_1", data["payout_id"])
	assert.Equal(t, json.Number("90.00"), data["amount"])
}

func TestRequestPayout_NoFunds(t *testing.T) {
	r, m := newTestRouter(t)

	merchantID := uuid.New()
	m.settlement.EXPECT().RequestPayout(gomock.Any(), merchantID).Return(nil, apperror.ErrNoFundsAvailable())

	w := serve(r, http.MethodPost, "/api/v1/merchants/"+merchantID.String()+"/payouts", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeInvalidArgument, errorCode(t, w))
}

func TestRequestPayout_InProgress(t *testing.T) {
	r, m := newTestRouter(t)

	merchantID := uuid.New()
	m.settlement.EXPECT().RequestPayout(gomock.Any(), merchantID).Return(nil, apperror.ErrPayoutInProgress())

	w := serve(r, http.MethodPost, "/api/v1/merchants/"+merchantID.String()+"/payouts", "")

	assert.Equal(t, http.StatusConflict, w.Code)
}

// --- Health ---

func TestHealthCheck_NoDependencies(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck()(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	ctrl := gomock.NewController(t)
	healthy := mocks.NewMockHealthChecker(ctrl)
	healthy.EXPECT().Ping(gomock.Any()).Return(nil)
	healthy.EXPECT().Name().Return("redis").AnyTimes()
	broken := mocks.NewMockHealthChecker(ctrl)
	broken.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))
	broken.EXPECT().Name().Return("postgresql").AnyTimes()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(healthy, broken)(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp struct {
		Status       string `json:"status"`
		Dependencies map[string]struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "healthy", resp.Dependencies["redis"].Status)
	assert.Equal(t, "connection refused", resp.Dependencies["postgresql"].Error)
}
