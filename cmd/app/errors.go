package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sushihentaime/blogcontent/internal/blogservice"
	"github.com/sushihentaime/blogcontent/internal/common"
	"github.com/sushihentaime/blogcontent/internal/userservice"
)

func (app *application) logError(r *http.Request, err error) {
	app.logger.Error(err.Error(),
		slog.String("method", r.Method),
		slog.String("url", r.URL.RequestURI()))
}

// errorResponse writes {"error": message}. message is either a string or a field map.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message any) {
	err := app.writeJSON(w, status, envelope{"error": message}, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func (app *application) badRequestErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *application) failedValidationErrorResponse(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	app.errorResponse(w, r, http.StatusBadRequest, fields)
}

func (app *application) notFoundErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "resource not found")
}

func (app *application) methodNotAllowedErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, r.Method+" is not supported for this resource")
}

func (app *application) invalidCredentialsErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, "invalid authentication credentials")
}

// challenge answers 401 with a Bearer WWW-Authenticate header.
func (app *application) challenge(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	app.errorResponse(w, r, http.StatusUnauthorized, message)
}

func (app *application) invalidAuthenticationTokenResponse(w http.ResponseWriter, r *http.Request) {
	app.challenge(w, r, "invalid or missing authentication token")
}

func (app *application) expiredAuthenticationTokenResponse(w http.ResponseWriter, r *http.Request) {
	app.challenge(w, r, "authentication token has expired")
}

func (app *application) authenticationRequiredResponse(w http.ResponseWriter, r *http.Request) {
	app.challenge(w, r, "you must be authenticated to access this resource")
}

func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusForbidden, "you are not the author of this blog")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}

// userErrorResponse maps user service errors onto HTTP responses.
func (app *application) userErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr common.ValidationError
	switch {
	case errors.As(err, &validationErr):
		app.failedValidationErrorResponse(w, r, validationErr.Errors)
	case errors.Is(err, userservice.ErrDuplicateEmail):
		app.failedValidationErrorResponse(w, r, map[string]string{"email": "a user with this email address already exists"})
	case errors.Is(err, userservice.ErrDuplicateUsername):
		app.failedValidationErrorResponse(w, r, map[string]string{"username": "this username is already taken"})
	case errors.Is(err, userservice.ErrAuthenticationFailure):
		app.invalidCredentialsErrorResponse(w, r)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

// blogErrorResponse maps blog service errors onto HTTP responses.
func (app *application) blogErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr common.ValidationError
	switch {
	case errors.As(err, &validationErr):
		app.failedValidationErrorResponse(w, r, validationErr.Errors)
	case errors.Is(err, common.ErrRecordNotFound):
		app.notFoundErrorResponse(w, r)
	case errors.Is(err, common.ErrForbidden):
		app.forbiddenResponse(w, r)
	case errors.Is(err, blogservice.ErrAuthorForeignKey):
		app.failedValidationErrorResponse(w, r, map[string]string{"author": "must reference an existing user"})
	default:
		app.serverErrorResponse(w, r, err)
	}
}
