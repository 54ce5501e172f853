package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"payment-facilitator/internal/core/domain"

	"github.com/google/uuid"
)

const contentTypeJSON = "application/json"

// HMACRequestSigner implements ports.Signer for the processor's HMAC-SHA256
// request authentication scheme.
type HMACRequestSigner struct {
	accessKey string
	secretKey string
	now       func() time.Time
	nonce     func() string
}

// SignerOption customizes an HMACRequestSigner.
type SignerOption func(*HMACRequestSigner)

// WithClock overrides the time source used for the timestamp header.
func WithClock(now func() time.Time) SignerOption {
	return func(s *HMACRequestSigner) { s.now = now }
}

// WithNonceSource overrides the nonce generator. Every call must return a
// value that has never been returned before.
func WithNonceSource(nonce func() string) SignerOption {
	return func(s *HMACRequestSigner) { s.nonce = nonce }
}

// NewHMACRequestSigner creates a signer for the given processor credentials.
func NewHMACRequestSigner(accessKey, secretKey string, opts ...SignerOption) *HMACRequestSigner {
	s := &HMACRequestSigner{
		accessKey: accessKey,
		secretKey: secretKey,
		now:       time.Now,
		nonce:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign builds the authentication headers for one request. A fresh nonce and
// the current timestamp are drawn on every call.
func (s *HMACRequestSigner) Sign(method, path string, body []byte) *domain.SignedHeaders {
	nonce := s.nonce()
	timestamp := s.now().Unix()

	return &domain.SignedHeaders{
		ContentType: contentTypeJSON,
		AccessKey:   s.accessKey,
		Nonce:       nonce,
		Timestamp:   timestamp,
		Signature:   s.signature(method, path, nonce, timestamp, body),
	}
}

// Verify recomputes the signature for h and compares it in constant time.
func (s *HMACRequestSigner) Verify(method, path string, body []byte, h *domain.SignedHeaders) bool {
	if h == nil || h.AccessKey != s.accessKey {
		return false
	}
	expected := s.signature(method, path, h.Nonce, h.Timestamp, body)
	return hmac.Equal([]byte(expected), []byte(h.Signature))
}

// CanonicalString constructs the payload that gets signed.
// Format: lower(METHOD) PATH NONCE TIMESTAMP ACCESS_KEY SECRET_KEY BODY, concatenated.
func (s *HMACRequestSigner) CanonicalString(method, path, nonce string, timestamp int64, body []byte) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	b.WriteString(path)
	b.WriteString(nonce)
	b.WriteString(strconv.FormatInt(timestamp, 10))
	b.WriteString(s.accessKey)
	b.WriteString(s.secretKey)
	b.Write(body)
	return b.String()
}

func (s *HMACRequestSigner) signature(method, path, nonce string, timestamp int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(s.secretKey))
	mac.Write([]byte(s.CanonicalString(method, path, nonce, timestamp, body)))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
