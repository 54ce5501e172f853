package handler

import (
	"payment-facilitator/internal/adapter/http/dto"
	"payment-facilitator/internal/core/domain"
	"payment-facilitator/internal/core/ports"
	"payment-facilitator/pkg/apperror"
	"payment-facilitator/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MerchantHandler handles merchant and product endpoints.
type MerchantHandler struct {
	merchantSvc  ports.MerchantService
	baseCurrency string
}

// NewMerchantHandler creates a new merchant handler. Balances are reported in
// baseCurrency.
func NewMerchantHandler(merchantSvc ports.MerchantService, baseCurrency string) *MerchantHandler {
	return &MerchantHandler{merchantSvc: merchantSvc, baseCurrency: baseCurrency}
}

// Register handles POST /api/v1/merchants.
func (h *MerchantHandler) Register(c *gin.Context) {
	var req dto.RegisterMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	merchant, err := h.merchantSvc.Register(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewMerchantResponse(merchant, h.baseCurrency))
}

// GetMerchant handles GET /api/v1/merchants/:merchant_id.
func (h *MerchantHandler) GetMerchant(c *gin.Context) {
	merchantID, ok := pathUUID(c, "merchant_id")
	if !ok {
		return
	}

	merchant, err := h.merchantSvc.GetMerchant(c.Request.Context(), merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewMerchantResponse(merchant, h.baseCurrency))
}

// GetStatement handles GET /api/v1/merchants/:merchant_id/statement.
func (h *MerchantHandler) GetStatement(c *gin.Context) {
	merchantID, ok := pathUUID(c, "merchant_id")
	if !ok {
		return
	}

	statement, err := h.merchantSvc.GetStatement(c.Request.Context(), merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewStatementResponse(statement, h.baseCurrency))
}

// AddProduct handles POST /api/v1/merchants/:merchant_id/products.
func (h *MerchantHandler) AddProduct(c *gin.Context) {
	merchantID, ok := pathUUID(c, "merchant_id")
	if !ok {
		return
	}

	var req dto.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	price, err := domain.ToMinorUnits(*req.Price)
	if err != nil || price <= 0 {
		response.Error(c, apperror.ErrInvalidPrice())
		return
	}

	product, err := h.merchantSvc.AddProduct(c.Request.Context(), merchantID, req.Name, price)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewProductResponse(product))
}

// GetProduct handles GET /api/v1/products/:product_id.
func (h *MerchantHandler) GetProduct(c *gin.Context) {
	productID, ok := pathUUID(c, "product_id")
	if !ok {
		return
	}

	product, err := h.merchantSvc.GetProduct(c.Request.Context(), productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewProductResponse(product))
}

// pathUUID parses a UUID path parameter, writing a validation error on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, apperror.Validation("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
