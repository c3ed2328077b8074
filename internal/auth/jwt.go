package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail signature or expiry checks
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carries the registered claims plus the identity fields the
// middleware needs. Admin tokens have no UserID: the administrative
// identity is a configuration-level variant, not a stored account.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid,omitempty"`
	Email  string `json:"email"`
	Admin  bool   `json:"admin,omitempty"`
}

// GenerateToken signs a token for the given identity
func GenerateToken(userID, email string, admin bool, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
		Email:  email,
		Admin:  admin,
	})

	return token.SignedString(secret)
}

// ParseToken verifies a token string and returns its claims
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
