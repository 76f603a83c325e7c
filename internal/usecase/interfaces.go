package usecase

import "context"

// CallProvider places outbound calls and returns the provider's call identifier.
type CallProvider interface {
	PlaceCall(ctx context.Context, to, callbackURL string) (string, error)
}
