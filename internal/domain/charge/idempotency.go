package charge

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/stagepass/settlement/internal/domain/money"
)

// idempotencyKeyLength is the fixed width of derived keys. Half a SHA-256
// digest is plenty: the key only has to be unique within a single provider's
// retry window, not collision resistant in any adversarial sense.
const idempotencyKeyLength = 32

// DeriveIdempotencyKey produces the token the payment provider uses to
// suppress duplicate charge creation. The same (scopeID, amount, nonce)
// always yields the same key, so a client's automatic retry of an identical
// checkout attempt reuses it and the provider collapses the charges.
//
// The nonce must identify the attempt, never the instant: callers pass a
// client-generated attempt token (or the pending order's id, which is stable
// across retries). Wall-clock input would mint a fresh key on every retry and
// defeat duplicate-charge suppression entirely.
func DeriveIdempotencyKey(scopeID string, amount money.Amount, nonce string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", scopeID, amount.Cents(), nonce)))
	return hex.EncodeToString(sum[:])[:idempotencyKeyLength]
}
