package handler

// CreateCheckoutRequest represents a request to start payment for an order
type CreateCheckoutRequest struct {
	OrderID            string            `json:"order_id" binding:"required"`
	OrderNumber        string            `json:"order_number" binding:"required"`
	OwnerID            string            `json:"owner_id" binding:"required,uuid"`
	Context            string            `json:"context" binding:"required,oneof=TICKET_SPLIT PRODUCT_ORDER_SPLIT PLATFORM_ONLY"`
	Pattern            string            `json:"pattern" binding:"required,oneof=DIRECT DESTINATION NONE"`
	GrossAmountCents   int64             `json:"gross_amount_cents" binding:"required,gt=0"`
	NominalFeeCents    int64             `json:"nominal_fee_cents" binding:"min=0"`
	Currency           string            `json:"currency" binding:"required,len=3"`
	ConnectedAccountID string            `json:"connected_account_id,omitempty"`
	AttemptToken       string            `json:"attempt_token" binding:"required"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// CheckoutResponse represents a created checkout in API responses
type CheckoutResponse struct {
	OrderID               string `json:"order_id"`
	ChargeID              string `json:"charge_id"`
	ClientSecret          string `json:"client_secret"`
	ChargePattern         string `json:"charge_pattern"`
	SplitHonored          bool   `json:"split_honored"`
	SettlementCents       int64  `json:"settlement_cents"`
	TotalPlatformFeeCents int64  `json:"total_platform_fee_cents"`
}

// WebhookEventRequest represents a provider notification payload. Only the
// fields the settlement engine reads are modeled; the rest of the provider's
// envelope is ignored.
type WebhookEventRequest struct {
	ID   string                `json:"id" binding:"required"`
	Type string                `json:"type" binding:"required"`
	Data WebhookObjectEnvelope `json:"data" binding:"required"`
}

// WebhookObjectEnvelope wraps the object a notification refers to
type WebhookObjectEnvelope struct {
	Object WebhookChargeObject `json:"object" binding:"required"`
}

// WebhookChargeObject carries the charge fields relevant to settlement
type WebhookChargeObject struct {
	ID             string            `json:"id"`
	AmountCaptured int64             `json:"amount_captured"`
	FailureMessage string            `json:"failure_message,omitempty"`
	Metadata       map[string]string `json:"metadata"`
}

// WebhookAckResponse acknowledges a processed (or deduplicated) notification
type WebhookAckResponse struct {
	EventID   string `json:"event_id"`
	Duplicate bool   `json:"duplicate"`
}

// DebtResponse represents an owner's outstanding debt in API responses
type DebtResponse struct {
	OwnerID            string `json:"owner_id"`
	RemainingDebtCents int64  `json:"remaining_debt_cents"`
	UpdatedAt          string `json:"updated_at,omitempty"`
}
