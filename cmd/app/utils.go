package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/sushihentaime/blogcontent/internal/blogservice"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

type envelope map[string]any

func (e envelope) JSON() string {
	b, err := json.MarshalIndent(e, "", "\t")
	if err != nil {
		return ""
	}

	return string(b)
}

func (app *application) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	body, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}

	for key, values := range headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))

	return nil
}

// parseJSON decodes exactly one JSON value into dst, rejecting unknown fields.
// The returned error is safe to show to the client.
func (app *application) parseJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must only contain a single JSON value")
	}

	return nil
}

// decodeError rewrites encoding/json errors into client-facing messages.
func decodeError(err error) error {
	var (
		syntaxErr   *json.SyntaxError
		typeErr     *json.UnmarshalTypeError
		invalidErr  *json.InvalidUnmarshalError
		maxBytesErr *http.MaxBytesError
	)

	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Errorf("request body contains badly-formed JSON (at character %d)", syntaxErr.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.New("request body contains badly-formed JSON")
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return fmt.Errorf("request body contains an invalid value for the %q field", typeErr.Field)
	case errors.As(err, &typeErr):
		return fmt.Errorf("request body contains incorrect JSON type (at character %d)", typeErr.Offset)
	case errors.Is(err, io.EOF):
		return errors.New("request body must not be empty")
	case errors.As(err, &maxBytesErr):
		return fmt.Errorf("request body must not be larger than %d bytes", maxBytesErr.Limit)
	case errors.As(err, &invalidErr):
		// a non-pointer dst is a programming error
		panic(err)
	}

	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return fmt.Errorf("request body contains unknown field %s", field)
	}

	return err
}

func (app *application) readUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	params := httprouter.ParamsFromContext(r.Context())

	id, err := uuid.Parse(params.ByName(key))
	if err != nil {
		return uuid.Nil, errors.New("invalid id parameter")
	}

	return id, nil
}

// readIntQuery returns def when the query parameter is absent.
func readIntQuery(qs url.Values, key string, def int) (int, error) {
	s := qs.Get(key)
	if s == "" {
		return def, nil
	}

	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", key)
	}

	return i, nil
}

// readPaginationParams reads page, limit and offset. Range checks happen in the blog service.
func (app *application) readPaginationParams(r *http.Request) (page, limit, offset int, err error) {
	qs := r.URL.Query()

	page, err = readIntQuery(qs, "page", blogservice.DefaultPage)
	if err != nil {
		return 0, 0, 0, err
	}

	limit, err = readIntQuery(qs, "limit", blogservice.DefaultLimit)
	if err != nil {
		return 0, 0, 0, err
	}

	offset, err = readIntQuery(qs, "offset", 0)
	if err != nil {
		return 0, 0, 0, err
	}

	return page, limit, offset, nil
}

// extractTokenFromHeader returns the token of a "Bearer <token>" header, or "" if malformed.
func (app *application) extractTokenFromHeader(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}
