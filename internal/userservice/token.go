package userservice

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

const tokenIssuer = "blogcontent"

type claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

func newAccessToken(userID int64, ttl time.Duration, secret []byte) (*AuthToken, error) {
	now := time.Now()
	expiry := now.Add(ttl)

	c := claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
	if err != nil {
		return nil, err
	}

	return &AuthToken{
		AccessToken: signed,
		UserID:      userID,
		Expiry:      expiry,
	}, nil
}

// parseAccessToken verifies the signature and expiry of token and returns the user ID it was issued for.
func parseAccessToken(token string, secret []byte) (int64, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, ErrInvalidToken
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.UserID <= 0 {
		return 0, ErrInvalidToken
	}

	return c.UserID, nil
}
