package firebase

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
)

const (
	premiumClaim   = "premium"
	freeUsageClaim = "free_usage"
)

// UsageStore reads and writes the per-user free usage counter kept on the
// identity provider. The read-then-write update is not atomic; concurrent
// requests from the same user can under-count.
type UsageStore interface {
	FreeUsage(ctx context.Context, userID string) (count int, found bool, err error)
	SetFreeUsage(ctx context.Context, userID string, count int) error
}

// EntitlementChecker reports whether a user has an active premium entitlement.
type EntitlementChecker interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

// ClaimsStore implements UsageStore and EntitlementChecker over Firebase
// custom user claims.
type ClaimsStore struct {
	client *auth.Client
}

// NewClaimsStore creates a new ClaimsStore
func NewClaimsStore(client *auth.Client) *ClaimsStore {
	return &ClaimsStore{client: client}
}

// IsPremium checks the user's custom claims for an active premium entitlement
func (s *ClaimsStore) IsPremium(ctx context.Context, userID string) (bool, error) {
	user, err := s.client.GetUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("get user %s: %w", userID, err)
	}
	premium, ok := user.CustomClaims[premiumClaim].(bool)
	return ok && premium, nil
}

// FreeUsage returns the stored free usage counter for the user, reporting
// whether the provider had a prior value.
func (s *ClaimsStore) FreeUsage(ctx context.Context, userID string) (int, bool, error) {
	user, err := s.client.GetUser(ctx, userID)
	if err != nil {
		return 0, false, fmt.Errorf("get user %s: %w", userID, err)
	}
	raw, ok := user.CustomClaims[freeUsageClaim]
	if !ok {
		return 0, false, nil
	}
	// Claims round-trip through JSON, so numbers come back as float64
	switch v := raw.(type) {
	case float64:
		return int(v), true, nil
	case int:
		return v, true, nil
	default:
		return 0, false, nil
	}
}

// SetFreeUsage writes the free usage counter back to the user's custom
// claims, preserving any other claims already set.
func (s *ClaimsStore) SetFreeUsage(ctx context.Context, userID string, count int) error {
	user, err := s.client.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user %s: %w", userID, err)
	}
	claims := make(map[string]interface{}, len(user.CustomClaims)+1)
	for k, v := range user.CustomClaims {
		claims[k] = v
	}
	claims[freeUsageClaim] = count
	if err := s.client.SetCustomUserClaims(ctx, userID, claims); err != nil {
		return fmt.Errorf("set claims for user %s: %w", userID, err)
	}
	return nil
}
