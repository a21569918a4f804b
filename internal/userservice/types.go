package userservice

import (
	"database/sql"
	"time"

	"github.com/sushihentaime/blogcontent/internal/common"
)

const (
	DefaultAccessTokenTime time.Duration = 24 * time.Hour

	userCacheTime time.Duration = 5 * time.Minute
)

var (
	AnonymousUser = User{}
)

type UserService struct {
	m      *DBModel
	c      *common.Cache
	secret []byte
	ttl    time.Duration
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  Password  `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int       `json:"-"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

// AuthToken is the signed access token handed out on login.
type AuthToken struct {
	AccessToken string    `json:"accessToken"`
	UserID      int64     `json:"userId"`
	Expiry      time.Time `json:"expiry"`
}
