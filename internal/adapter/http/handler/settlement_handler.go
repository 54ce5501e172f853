package handler

import (
	"payment-facilitator/internal/adapter/http/dto"
	"payment-facilitator/internal/core/ports"
	"payment-facilitator/pkg/apperror"
	"payment-facilitator/pkg/response"

	"github.com/gin-gonic/gin"
)

// SettlementHandler handles the money-moving endpoints.
type SettlementHandler struct {
	settlementSvc ports.SettlementService
}

// NewSettlementHandler creates a new settlement handler.
func NewSettlementHandler(settlementSvc ports.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementSvc: settlementSvc}
}

// CollectPayment handles POST /api/v1/products/:product_id/payments.
func (h *SettlementHandler) CollectPayment(c *gin.Context) {
	productID, ok := pathUUID(c, "product_id")
	if !ok {
		return
	}

	var req dto.CollectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.settlementSvc.CollectPayment(c.Request.Context(), ports.CollectPaymentRequest{
		ProductID:     productID,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
		FeePercentage: req.PlatformFeePercentage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Duplicate {
		response.OK(c, dto.NewPaymentResultResponse(result))
		return
	}
	response.Created(c, dto.NewPaymentResultResponse(result))
}

// RequestPayout handles POST /api/v1/merchants/:merchant_id/payouts.
func (h *SettlementHandler) RequestPayout(c *gin.Context) {
	merchantID, ok := pathUUID(c, "merchant_id")
	if !ok {
		return
	}

	result, err := h.settlementSvc.RequestPayout(c.Request.Context(), merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Duplicate {
		response.OK(c, dto.NewPayoutResultResponse(result))
		return
	}
	response.Created(c, dto.NewPayoutResultResponse(result))
}
