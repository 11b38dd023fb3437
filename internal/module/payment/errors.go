package payment

import "errors"

// Module errors.
var (
	ErrSaleNotFound       = errors.New("sale not found")
	ErrInvalidSignature   = errors.New("invalid payment signature")
	ErrAlreadyFinalized   = errors.New("payment already finalized")
	ErrInvalidFinalStatus = errors.New("invalid final payment status")
)

// ConfigurationError reports missing gateway credentials. The presence flags
// are safe to expose in a diagnostic payload; the values themselves never are.
type ConfigurationError struct {
	KeyIDPresent     bool
	KeySecretPresent bool
}

func (e *ConfigurationError) Error() string {
	return "payment gateway is not configured"
}

// DebugFlags returns the non-sensitive diagnostic object attached to the
// error response.
func (e *ConfigurationError) DebugFlags() map[string]bool {
	return map[string]bool{
		"keyId":     e.KeyIDPresent,
		"keySecret": e.KeySecretPresent,
	}
}
