package userservice

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sushihentaime/blogcontent/internal/common"
)

var (
	ErrAuthenticationFailure = errors.New("unauthorized access")
)

// NewUserService creates the identity service. Access tokens are signed with secret and live for ttl
// (DefaultAccessTokenTime when ttl is zero).
func NewUserService(db *sql.DB, cache *common.Cache, secret string, ttl time.Duration) *UserService {
	if ttl <= 0 {
		ttl = DefaultAccessTokenTime
	}

	return &UserService{
		m:      newUserModel(db),
		c:      cache,
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// CreateUser creates a new user account.
func (s *UserService) CreateUser(ctx context.Context, username, email, password string) (*User, error) {
	v := common.NewValidator()
	validateRegistration(v, username, email, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := User{
		Username: username,
		Email:    email,
	}

	err := u.Password.set(password)
	if err != nil {
		return nil, err
	}

	err = s.m.insertUser(ctx, &u)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// LoginUser checks the credentials and returns a signed access token.
func (s *UserService) LoginUser(ctx context.Context, username, password string) (*AuthToken, error) {
	v := common.NewValidator()
	validateCredentials(v, username, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	user, err := s.m.getUserByUsername(ctx, username)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrAuthenticationFailure
		default:
			return nil, err
		}
	}

	ok, err := user.Password.matches(password)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrAuthenticationFailure
	}

	return newAccessToken(user.ID, s.ttl, s.secret)
}

// GetUserByAccessToken resolves the user an access token was issued for.
// Expired tokens yield ErrExpiredToken. Malformed, forged or orphaned tokens yield ErrInvalidToken.
func (s *UserService) GetUserByAccessToken(ctx context.Context, token string) (*User, error) {
	v := common.NewValidator()
	validateToken(v, token)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	id, err := parseAccessToken(token, s.secret)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrInvalidToken
		default:
			return nil, err
		}
	}

	return user, nil
}

// GetUserByID returns a user, consulting the cache first.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*User, error) {
	v := common.NewValidator()
	validateID(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	cached, err := s.c.GetOrLoad(common.CacheKeyUserByID(id), userCacheTime, func() (any, error) {
		user, err := s.m.getUserByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return *user, nil
	})
	if err != nil {
		return nil, err
	}

	u := cached.(User)
	return &u, nil
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}
