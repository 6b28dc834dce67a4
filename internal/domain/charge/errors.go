package charge

import "errors"

// Configuration errors. All of them reject a charge before any provider call
// is made; none of them is retried.
var (
	ErrInvalidContext          = errors.New("invalid charge context")
	ErrInvalidPattern          = errors.New("invalid charge pattern")
	ErrFeeExceedsGross         = errors.New("nominal fee exceeds gross amount")
	ErrAmountBelowMinimum      = errors.New("gross amount below provider minimum")
	ErrMissingConnectedAccount = errors.New("split context requires a connected account")
)

// IsConfigurationError reports whether err belongs to the closed set of
// charge construction rejections that map to a 4xx response.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidContext) ||
		errors.Is(err, ErrInvalidPattern) ||
		errors.Is(err, ErrFeeExceedsGross) ||
		errors.Is(err, ErrAmountBelowMinimum) ||
		errors.Is(err, ErrMissingConnectedAccount)
}
