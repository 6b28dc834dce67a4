package provider

import "strings"

// AccountVerifier answers whether a connected-account identifier can actually
// receive transferred funds. It is an interface so the validation rule can
// evolve (or call the provider's account API) without touching the intent
// builder's control flow.
type AccountVerifier interface {
	Usable(accountID string) bool
}

// connected account ids look like acct_ followed by at least 16 characters
const (
	accountIDPrefix    = "acct_"
	accountIDMinLength = len(accountIDPrefix) + 16
)

// placeholderMarkers flag seeded or sandbox identifiers that slip into
// organizer records before real onboarding completes.
var placeholderMarkers = []string{"test", "sandbox", "placeholder", "demo"}

// HeuristicVerifier implements AccountVerifier with prefix, length, and
// placeholder checks against the provider's account id format.
type HeuristicVerifier struct{}

func NewHeuristicVerifier() *HeuristicVerifier {
	return &HeuristicVerifier{}
}

// Usable reports whether the id is syntactically a real provider account
// identifier and not a placeholder or test value.
func (v *HeuristicVerifier) Usable(accountID string) bool {
	if len(accountID) < accountIDMinLength || !strings.HasPrefix(accountID, accountIDPrefix) {
		return false
	}

	suffix := strings.ToLower(strings.TrimPrefix(accountID, accountIDPrefix))
	for _, marker := range placeholderMarkers {
		if strings.Contains(suffix, marker) {
			return false
		}
	}

	zeros := true
	for _, r := range suffix {
		if r != '0' {
			zeros = false
			break
		}
	}
	return !zeros
}
