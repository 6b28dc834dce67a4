// Package charge holds the provider-agnostic description of a charge to
// create, plus the distribution arithmetic and idempotency key derivation
// that feed it. A Request is assembled once per checkout attempt and is
// immutable afterwards; only the resulting provider charge id and the
// correlation metadata outlive it.
package charge

import "github.com/stagepass/settlement/internal/domain/money"

// Context identifies the kind of money-moving action behind a charge and
// determines whether a connected-party transfer exists.
type Context string

const (
	ContextTicketSplit       Context = "TICKET_SPLIT"
	ContextProductOrderSplit Context = "PRODUCT_ORDER_SPLIT"
	ContextPlatformOnly      Context = "PLATFORM_ONLY"
)

// ParseContext maps a wire value onto the closed Context set
func ParseContext(s string) (Context, error) {
	switch Context(s) {
	case ContextTicketSplit:
		return ContextTicketSplit, nil
	case ContextProductOrderSplit:
		return ContextProductOrderSplit, nil
	case ContextPlatformOnly:
		return ContextPlatformOnly, nil
	default:
		return "", ErrInvalidContext
	}
}

// IsSplit reports whether the context involves a connected-party transfer
func (c Context) IsSplit() bool {
	return c == ContextTicketSplit || c == ContextProductOrderSplit
}

// Pattern selects which party's account initially receives the gross payment.
// DIRECT lands funds on the connected account with the platform's cut taken as
// an application fee; DESTINATION lands funds on the platform account and
// auto-transfers the remainder; NONE keeps everything with the platform.
type Pattern string

const (
	PatternDirect      Pattern = "DIRECT"
	PatternDestination Pattern = "DESTINATION"
	PatternNone        Pattern = "NONE"
)

// ParsePattern maps a wire value onto the closed Pattern set
func ParsePattern(s string) (Pattern, error) {
	switch Pattern(s) {
	case PatternDirect:
		return PatternDirect, nil
	case PatternDestination:
		return PatternDestination, nil
	case PatternNone:
		return PatternNone, nil
	default:
		return "", ErrInvalidPattern
	}
}

// Correlation metadata keys. The values round-trip through the payment
// provider unmodified and come back on webhook notifications, which is how
// the settlement worker knows what a confirmation refers to.
const (
	MetadataOrderID         = "order_id"
	MetadataOrderNumber     = "order_number"
	MetadataOwnerID         = "owner_id"
	MetadataSettlementCents = "settlement_cents"
	MetadataContext         = "charge_context"
)

// Request is the provider-agnostic charge to create. TotalPlatformFeeCents is
// derived, never stored independently.
type Request struct {
	GrossAmountCents   money.Amount
	Context            Context
	ConnectedAccountID string // empty when Pattern is NONE
	NominalFeeCents    money.Amount
	SettlementCents    money.Amount
	Pattern            Pattern
	IdempotencyKey     string
	Metadata           map[string]string // passed through, never interpreted
}

// TotalPlatformFeeCents is the platform's full take on this charge:
// the ordinary commission plus any debt settlement skim.
func (r *Request) TotalPlatformFeeCents() money.Amount {
	return r.NominalFeeCents.Add(r.SettlementCents)
}
