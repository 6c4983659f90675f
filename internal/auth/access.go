package auth

import (
	"context"
	"errors"
)

var ErrSessionNotFound = errors.New("session not found")

// MerchantAccess is the state of a user's link to a merchant for one session.
type MerchantAccess struct {
	Role               UserRole
	Permissions        []string
	LinkActive         bool
	MerchantActive     bool
	SubscriptionStatus string
}

// SessionVerifier resolves the merchant access of an authenticated session.
type SessionVerifier interface {
	MerchantAccess(ctx context.Context, userID int64, merchantID int64, sessionID int64) (MerchantAccess, error)
}

func (a MerchantAccess) HasPermission(perm StaffPermission) bool {
	for _, p := range a.Permissions {
		if p == string(perm) {
			return true
		}
	}
	return false
}
