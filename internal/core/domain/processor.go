package domain

import "fmt"

// ChargeRequest is what the settlement workflow asks the processor to collect.
type ChargeRequest struct {
	Amount        int64 // Minor units
	Currency      string
	PaymentMethod string
	Description   string
}

// PayoutRequest is what the settlement workflow asks the processor to transfer.
type PayoutRequest struct {
	Amount          int64 // Minor units
	Currency        string
	BeneficiaryName string
}

// ProcessorResult is a successful processor acknowledgment.
type ProcessorResult struct {
	ID         string // Processor-assigned identifier, never empty
	Status     string // Processor's own status label, if it sent one
	StatusCode int
}

// ProcessorErrorKind classifies why a processor call failed.
type ProcessorErrorKind string

const (
	ProcessorUnreachable       ProcessorErrorKind = "UNREACHABLE"
	ProcessorRejected          ProcessorErrorKind = "REJECTED"
	ProcessorMalformedResponse ProcessorErrorKind = "MALFORMED_RESPONSE"
)

// ProcessorError describes a failed processor round trip. For Unreachable and
// MalformedResponse the remote side may still have acted on the request.
type ProcessorError struct {
	Kind       ProcessorErrorKind
	Operation  string // "create_charge" or "create_payout"
	StatusCode int    // Set for Rejected and MalformedResponse
	Err        error
}

func (e *ProcessorError) Error() string {
	msg := fmt.Sprintf("processor %s: %s", e.Operation, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProcessorError) Unwrap() error {
	return e.Err
}

// MayHaveTakenEffect is true when the remote outcome is unknown.
func (e *ProcessorError) MayHaveTakenEffect() bool {
	return e.Kind != ProcessorRejected
}

// SignedHeaders is the one-time authentication envelope for a processor call.
type SignedHeaders struct {
	ContentType string
	AccessKey   string
	Nonce       string
	Timestamp   int64
	Signature   string
}

// Map returns the headers keyed by the names the processor expects.
// The processor calls the nonce "salt".
func (h SignedHeaders) Map() map[string]string {
	return map[string]string{
		"Content-Type": h.ContentType,
		"access_key":   h.AccessKey,
		"salt":         h.Nonce,
		"timestamp":    fmt.Sprintf("%d", h.Timestamp),
		"signature":    h.Signature,
	}
}
