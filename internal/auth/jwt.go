package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type UserRole string

const (
	RoleSuperAdmin    UserRole = "SUPER_ADMIN"
	RoleMerchantOwner UserRole = "MERCHANT_OWNER"
	RoleMerchantStaff UserRole = "MERCHANT_STAFF"
)

var (
	ErrTokenRequired   = errors.New("token required")
	ErrTokenExpired    = errors.New("token expired")
	ErrInvalidSubject  = errors.New("invalid token subject")
	ErrMerchantMissing = errors.New("merchant not found in token")
)

type Claims struct {
	UserID     string   `json:"userId"`
	SessionID  string   `json:"sessionId"`
	Role       UserRole `json:"role"`
	Email      string   `json:"email"`
	MerchantID *string  `json:"merchantId,omitempty"`
	jwt.RegisteredClaims
}

// Subject is the numeric identity carried by merchant-scoped claims.
type Subject struct {
	UserID     int64
	SessionID  int64
	MerchantID int64
}

func (c *Claims) IsMerchantRole() bool {
	return c.Role == RoleMerchantOwner || c.Role == RoleMerchantStaff
}

// MerchantSubject parses the string ids of the token. A missing or
// malformed merchantId yields ErrMerchantMissing.
func (c *Claims) MerchantSubject() (Subject, error) {
	if c.MerchantID == nil {
		return Subject{}, ErrMerchantMissing
	}
	merchantID, err := strconv.ParseInt(strings.TrimSpace(*c.MerchantID), 10, 64)
	if err != nil {
		return Subject{}, ErrMerchantMissing
	}
	userID, err := strconv.ParseInt(strings.TrimSpace(c.UserID), 10, 64)
	if err != nil {
		return Subject{}, ErrInvalidSubject
	}
	sessionID, err := strconv.ParseInt(strings.TrimSpace(c.SessionID), 10, 64)
	if err != nil {
		return Subject{}, ErrInvalidSubject
	}
	return Subject{UserID: userID, SessionID: sessionID, MerchantID: merchantID}, nil
}

func ParseBearerToken(authHeader string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func VerifyAccessToken(tokenString string, secret string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenRequired
	}

	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}

// SignAccessToken issues an HS256 token for the claims. Used by tooling and
// tests; the main platform issues production tokens.
func SignAccessToken(claims *Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
