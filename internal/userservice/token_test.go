package userservice

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/sushihentaime/blogcontent/internal/common"
)

func TestAccessToken(t *testing.T) {
	secret := []byte("test-secret")

	testCases := []struct {
		name        string
		token       func(t *testing.T) string
		expectedID  int64
		expectedErr error
	}{
		{
			name: "valid token",
			token: func(t *testing.T) string {
				tk, err := newAccessToken(42, time.Hour, secret)
				assert.NoError(t, err)
				return tk.AccessToken
			},
			expectedID: 42,
		},
		{
			name: "expired token",
			token: func(t *testing.T) string {
				tk, err := newAccessToken(42, -time.Hour, secret)
				assert.NoError(t, err)
				return tk.AccessToken
			},
			expectedErr: ErrExpiredToken,
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				tk, err := newAccessToken(42, time.Hour, []byte("other-secret"))
				assert.NoError(t, err)
				return tk.AccessToken
			},
			expectedErr: ErrInvalidToken,
		},
		{
			name: "wrong signing method",
			token: func(t *testing.T) string {
				tk := jwt.NewWithClaims(jwt.SigningMethodNone, claims{UserID: 42})
				s, err := tk.SignedString(jwt.UnsafeAllowNoneSignatureType)
				assert.NoError(t, err)
				return s
			},
			expectedErr: ErrInvalidToken,
		},
		{
			name:        "garbage",
			token:       func(t *testing.T) string { return "not-a-token" },
			expectedErr: ErrInvalidToken,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := parseAccessToken(tc.token(t), secret)
			assert.Equal(t, tc.expectedErr, err)
			assert.Equal(t, tc.expectedID, id)
		})
	}
}

func TestNewAccessTokenExpiry(t *testing.T) {
	before := time.Now()
	tk, err := newAccessToken(7, time.Hour, []byte("secret"))
	assert.NoError(t, err)

	assert.Equal(t, int64(7), tk.UserID)
	assert.WithinDuration(t, before.Add(time.Hour), tk.Expiry, time.Second)
	assert.NotEmpty(t, tk.AccessToken)
}

func TestGetUserByAccessTokenExpired(t *testing.T) {
	s := NewUserService(nil, common.NewCache(time.Minute, time.Minute), testSecret, time.Hour)

	expired, err := newAccessToken(1, -time.Minute, []byte(testSecret))
	assert.NoError(t, err)

	_, err = s.GetUserByAccessToken(context.Background(), expired.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, err = s.GetUserByAccessToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
