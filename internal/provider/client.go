// Package provider holds the engine's outbound contract with the payment
// provider: charge creation keyed by an idempotency key, and the usability
// check for connected accounts. The HTTP client here is the only component
// that speaks the provider's wire format; everything upstream works with the
// provider-agnostic charge.Request.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/stagepass/settlement/internal/config"
	"github.com/stagepass/settlement/internal/domain/charge"
	"github.com/stagepass/settlement/internal/domain/money"
)

// ChargeHandle is what the provider returns for a created charge. The client
// secret goes back to the checkout UI; the charge id is persisted on the
// order for reconciliation.
type ChargeHandle struct {
	ChargeID     string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// RejectionError carries the provider's reason for declining a charge. It is
// surfaced to the caller verbatim and never retried by this engine; a retry,
// if any, is a new checkout attempt with a new idempotency scope.
type RejectionError struct {
	Code   string
	Reason string
}

func (e RejectionError) Error() string {
	return fmt.Sprintf("provider rejected charge (%s): %s", e.Code, e.Reason)
}

// Client defines the narrow payment-provider surface the engine depends on
type Client interface {
	// CreateCharge creates a provider charge for the request, keyed by its
	// idempotency key so provider-side retry suppression applies.
	CreateCharge(ctx context.Context, req *charge.Request) (*ChargeHandle, error)
}

// HTTPClient implements Client against the provider's REST API
type HTTPClient struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	logger  *slog.Logger
}

// NewHTTPClient creates a provider client from configuration. The client is
// handed to its consumers explicitly; nothing is constructed at import time.
func NewHTTPClient(logger *slog.Logger, cfg *config.ProviderConfig) *HTTPClient {
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpc:   &http.Client{Timeout: cfg.RequestTimeout},
		logger:  logger,
	}
}

type createChargeBody struct {
	Amount             int64             `json:"amount"`
	Currency           string            `json:"currency"`
	ApplicationFee     int64             `json:"application_fee_amount,omitempty"`
	ConnectedAccountID string            `json:"connected_account,omitempty"`
	ChargePattern      string            `json:"charge_pattern"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

type providerErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateCharge posts the charge to the provider. Non-2xx responses below 500
// are mapped to RejectionError; transport failures and provider 5xx are
// returned as plain errors for the caller layer to surface.
func (c *HTTPClient) CreateCharge(ctx context.Context, req *charge.Request) (*ChargeHandle, error) {
	body := createChargeBody{
		Amount:             req.GrossAmountCents.Cents(),
		Currency:           money.CurrencyUSD,
		ApplicationFee:     req.TotalPlatformFeeCents().Cents(),
		ConnectedAccountID: req.ConnectedAccountID,
		ChargePattern:      string(req.Pattern),
		Metadata:           req.Metadata,
	}
	if req.Pattern == charge.PatternNone {
		// Platform-only charge: no transfer leg, the fee fields are implicit.
		body.ApplicationFee = 0
		body.ConnectedAccountID = ""
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/charges", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("provider charge call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var handle ChargeHandle
		if err := json.NewDecoder(resp.Body).Decode(&handle); err != nil {
			return nil, fmt.Errorf("failed to decode provider charge response: %w", err)
		}
		c.logger.Info("Provider charge created",
			"charge_id", handle.ChargeID,
			"pattern", string(req.Pattern),
			"amount", req.GrossAmountCents.Cents(),
		)
		return &handle, nil
	}

	if resp.StatusCode < 500 {
		var errBody providerErrorBody
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil {
			errBody.Error.Code = "unknown"
			errBody.Error.Message = resp.Status
		}
		c.logger.Warn("Provider rejected charge",
			"status", resp.StatusCode,
			"code", errBody.Error.Code,
			"reason", errBody.Error.Message,
		)
		return nil, RejectionError{Code: errBody.Error.Code, Reason: errBody.Error.Message}
	}

	return nil, fmt.Errorf("provider unavailable: status %d", resp.StatusCode)
}
