package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"payment-facilitator/config"
	"payment-facilitator/internal/core/domain"
	"payment-facilitator/internal/core/ports"
	"payment-facilitator/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	PaymentsPath = "/v1/payments"
	PayoutsPath  = "/v1/payouts"

	opCreateCharge = "create_charge"
	opCreatePayout = "create_payout"

	maxResponseBytes = 1 << 20
	maxErrorSnippet  = 256
)

var _ ports.ProcessorGateway = (*HTTPGateway)(nil)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPGateway implements ports.ProcessorGateway over the processor's signed
// REST API. Each call is exactly one round trip; nothing is retried here.
type HTTPGateway struct {
	baseURL          string
	payoutMethodType string
	timeout          time.Duration
	signer           ports.Signer
	client           HTTPClient
	log              zerolog.Logger
}

// NewHTTPGateway creates a gateway for the processor described by cfg.
func NewHTTPGateway(cfg config.ProcessorConfig, signer ports.Signer, client HTTPClient, log zerolog.Logger) *HTTPGateway {
	return &HTTPGateway{
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		payoutMethodType: cfg.PayoutMethodType,
		timeout:          cfg.Timeout,
		signer:           signer,
		client:           client,
		log:              log,
	}
}

type chargeBody struct {
	Amount        json.Number `json:"amount"`
	Currency      string      `json:"currency"`
	PaymentMethod string      `json:"payment_method"`
	Description   string      `json:"description"`
}

type beneficiary struct {
	Name string `json:"name"`
}

type payoutBody struct {
	Amount           json.Number `json:"amount"`
	Currency         string      `json:"currency"`
	PayoutMethodType string      `json:"payout_method_type"`
	SenderCurrency   string      `json:"sender_currency"`
	Beneficiary      beneficiary `json:"beneficiary"`
}

// processorResponse accepts the id either at the top level or nested under
// "data", which is where the processor's envelope puts it.
type processorResponse struct {
	ID   string `json:"id"`
	Data *struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

// CreateCharge asks the processor to collect req.Amount from the buyer.
func (g *HTTPGateway) CreateCharge(ctx context.Context, req domain.ChargeRequest) (*domain.ProcessorResult, error) {
	body := chargeBody{
		Amount:        majorUnits(req.Amount),
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
	}
	return g.post(ctx, opCreateCharge, PaymentsPath, body)
}

// CreatePayout asks the processor to transfer req.Amount to the beneficiary.
func (g *HTTPGateway) CreatePayout(ctx context.Context, req domain.PayoutRequest) (*domain.ProcessorResult, error) {
	body := payoutBody{
		Amount:           majorUnits(req.Amount),
		Currency:         req.Currency,
		PayoutMethodType: g.payoutMethodType,
		SenderCurrency:   req.Currency,
		Beneficiary:      beneficiary{Name: req.BeneficiaryName},
	}
	return g.post(ctx, opCreatePayout, PayoutsPath, body)
}

func (g *HTTPGateway) post(ctx context.Context, op, path string, payload any) (*domain.ProcessorResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshaling %s body: %w", op, err))
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("building %s request: %w", op, err))
	}
	for k, v := range g.signer.Sign(http.MethodPost, path, body).Map() {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, g.fail(op, domain.ProcessorUnreachable, 0, err, start)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, g.fail(op, domain.ProcessorUnreachable, resp.StatusCode, fmt.Errorf("reading response: %w", err), start)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, g.fail(op, domain.ProcessorRejected, resp.StatusCode, snippet(raw), start)
	}

	var parsed processorResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, g.fail(op, domain.ProcessorMalformedResponse, resp.StatusCode, fmt.Errorf("decoding response: %w", err), start)
	}

	result := &domain.ProcessorResult{ID: parsed.ID, StatusCode: resp.StatusCode}
	if parsed.Data != nil {
		if result.ID == "" {
			result.ID = parsed.Data.ID
		}
		result.Status = parsed.Data.Status
	}
	if result.ID == "" {
		return nil, g.fail(op, domain.ProcessorMalformedResponse, resp.StatusCode, errors.New("response carries no id"), start)
	}

	g.log.Info().
		Str("operation", op).
		Str("processor_id", result.ID).
		Int("status_code", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("processor call succeeded")

	return result, nil
}

func (g *HTTPGateway) fail(op string, kind domain.ProcessorErrorKind, status int, cause error, start time.Time) error {
	pe := &domain.ProcessorError{Kind: kind, Operation: op, StatusCode: status, Err: cause}

	g.log.Warn().
		Err(cause).
		Str("operation", op).
		Str("kind", string(kind)).
		Int("status_code", status).
		Bool("may_have_taken_effect", pe.MayHaveTakenEffect()).
		Dur("latency", time.Since(start)).
		Msg("processor call failed")

	switch kind {
	case domain.ProcessorRejected:
		return apperror.ErrProcessorRejected(pe)
	case domain.ProcessorMalformedResponse:
		return apperror.ErrProcessorMalformedResponse(pe)
	default:
		return apperror.ErrProcessorUnreachable(pe)
	}
}

// majorUnits renders minor units as a JSON number with two decimals.
func majorUnits(minor int64) json.Number {
	return json.Number(domain.ToMajorUnits(minor).StringFixed(domain.MinorUnitExponent))
}

func snippet(raw []byte) error {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return nil
	}
	if len(s) > maxErrorSnippet {
		cut := maxErrorSnippet
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return errors.New(s)
}
