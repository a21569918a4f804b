package main

import (
	"context"
	"net/http"

	"github.com/sushihentaime/blogcontent/internal/userservice"
)

type userKey struct{}

func (app *application) createUserContext(r *http.Request, user *userservice.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userKey{}, user))
}

// getUserContext returns the user set by authenticate. Requests that never went
// through authenticate are treated as anonymous.
func (app *application) getUserContext(r *http.Request) *userservice.User {
	if user, ok := r.Context().Value(userKey{}).(*userservice.User); ok && user != nil {
		return user
	}

	return &userservice.AnonymousUser
}
