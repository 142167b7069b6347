package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken represents a signed HS256 JWT access token along with its
// expiry. The Token field contains the JWT string. Access tokens are
// short-lived and sent in the Authorization header when calling protected
// endpoints; the same string is also persisted as the session_token of the
// owning session row.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken is a longer-lived JWT signed with a separate secret and used
// solely to mint a new access token. It never grants access by itself.
type RefreshToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// ErrInvalidToken is returned when a token fails signature or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a user. The claims are
// user_id, user_type, exp and iat.
func NewAccessToken(secret string, userID uint64, userType string, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"user_id":   userID,
		"user_type": userType,
		"exp":       exp.Unix(),
		"iat":       now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs an HS256 refresh JWT with its own secret.
// The token_type claim distinguishes it from access tokens so one can never
// be replayed as the other.
func NewRefreshToken(secret string, userID uint64, ttl time.Duration) (RefreshToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"user_id":    userID,
		"token_type": "refresh",
		"exp":        exp.Unix(),
		"iat":        now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature and expiry of an access token and
// returns the user_id claim.
func ParseAccessToken(secret, raw string) (uint64, error) {
	claims, err := parseHS256(secret, raw)
	if err != nil {
		return 0, err
	}
	uid, ok := numericClaim(claims, "user_id")
	if !ok {
		return 0, ErrInvalidToken
	}
	return uid, nil
}

// ParseRefreshToken verifies a refresh token against the refresh secret,
// checks the token_type claim and returns the user_id claim.
func ParseRefreshToken(secret, raw string) (uint64, error) {
	claims, err := parseHS256(secret, raw)
	if err != nil {
		return 0, err
	}
	if t, _ := claims["token_type"].(string); t != "refresh" {
		return 0, ErrInvalidToken
	}
	uid, ok := numericClaim(claims, "user_id")
	if !ok {
		return 0, ErrInvalidToken
	}
	return uid, nil
}

func parseHS256(secret, raw string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		if err == nil {
			err = ErrInvalidToken
		}
		return nil, err
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// numericClaim reads a claim that arrives as a float64 from the JSON
// decoder, or as an integer type when set directly on a claims map.
func numericClaim(claims jwt.MapClaims, key string) (uint64, bool) {
	switch v := claims[key].(type) {
	case float64:
		return uint64(v), true
	case int64:
		return uint64(v), true
	case uint64:
		return v, true
	}
	return 0, false
}
