package main

import (
	"net/http"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// wrapped documents a response of the form {key: value}.
type wrapped struct {
	key   string
	value any
}

func envelopeOf(key string, value any) wrapped {
	return wrapped{key: key, value: value}
}

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
)

// schemaOf derives a JSON schema from a Go value using its json tags.
func schemaOf(v any) map[string]any {
	if w, ok := v.(wrapped); ok {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{w.key: schemaOf(w.value)},
		}
	}
	return schemaOfType(reflect.TypeOf(v))
}

func schemaOfType(t reflect.Type) map[string]any {
	if t == nil {
		return map[string]any{}
	}

	switch t {
	case timeType:
		return map[string]any{"type": "string", "format": "date-time"}
	case uuidType:
		return map[string]any{"type": "string", "format": "uuid"}
	}

	switch t.Kind() {
	case reflect.Pointer:
		s := schemaOfType(t.Elem())
		s["nullable"] = true
		return s
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Int, reflect.Int32:
		return map[string]any{"type": "integer", "format": "int32"}
	case reflect.Int64:
		return map[string]any{"type": "integer", "format": "int64"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Slice, reflect.Array:
		return map[string]any{"type": "array", "items": schemaOfType(t.Elem())}
	case reflect.Map:
		return map[string]any{"type": "object", "additionalProperties": schemaOfType(t.Elem())}
	case reflect.Struct:
		props := map[string]any{}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				continue
			}
			if name == "" {
				name = f.Name
			}
			props[name] = schemaOfType(f.Type)
		}
		return map[string]any{"type": "object", "properties": props}
	default:
		return map[string]any{}
	}
}

// openAPIPath turns an httprouter pattern such as /blog/:id into /blog/{id}.
func openAPIPath(path string) (string, []string) {
	var params []string

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") {
			params = append(params, seg[1:])
			segments[i] = "{" + seg[1:] + "}"
		}
	}

	return strings.Join(segments, "/"), params
}

func buildOpenAPI(routes []route, version string) map[string]any {
	paths := map[string]any{}

	for _, rt := range routes {
		path, pathParams := openAPIPath(rt.path)

		var params []any
		for _, p := range pathParams {
			params = append(params, map[string]any{
				"name": p, "in": "path", "required": true,
				"schema": map[string]any{"type": "string", "format": "uuid"},
			})
		}
		for _, q := range rt.query {
			params = append(params, map[string]any{
				"name": q.name, "in": "query", "required": false, "description": q.description,
				"schema": map[string]any{"type": "integer"},
			})
		}

		success := map[string]any{"description": http.StatusText(rt.status)}
		if rt.response != nil {
			success["content"] = map[string]any{
				"application/json": map[string]any{"schema": schemaOf(rt.response)},
			}
		}

		responses := map[string]any{strconv.Itoa(rt.status): success}
		errorCodes := append([]int(nil), rt.errors...)
		errorCodes = append(errorCodes, http.StatusInternalServerError)
		if rt.auth && !slices.Contains(errorCodes, http.StatusUnauthorized) {
			errorCodes = append(errorCodes, http.StatusUnauthorized)
		}
		slices.Sort(errorCodes)
		for _, code := range errorCodes {
			responses[strconv.Itoa(code)] = map[string]any{
				"description": http.StatusText(code),
				"content": map[string]any{
					"application/json": map[string]any{"schema": map[string]any{"$ref": "#/components/schemas/Error"}},
				},
			}
		}

		op := map[string]any{
			"summary":   rt.summary,
			"tags":      []string{rt.tag},
			"responses": responses,
		}
		if len(params) > 0 {
			op["parameters"] = params
		}
		if rt.request != nil {
			op["requestBody"] = map[string]any{
				"required": true,
				"content": map[string]any{
					"application/json": map[string]any{"schema": schemaOf(rt.request)},
				},
			}
		}
		if rt.auth {
			op["security"] = []any{map[string]any{"bearerAuth": []string{}}}
		}

		item, ok := paths[path].(map[string]any)
		if !ok {
			item = map[string]any{}
			paths[path] = item
		}
		item[strings.ToLower(rt.method)] = op
	}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "Blog content API",
			"version": version,
		},
		"paths": paths,
		"components": map[string]any{
			"securitySchemes": map[string]any{
				"bearerAuth": map[string]any{"type": "http", "scheme": "bearer", "bearerFormat": "JWT"},
			},
			"schemas": map[string]any{
				"Error": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"error": map[string]any{},
					},
				},
			},
		},
	}
}

func (app *application) openAPIHandler(w http.ResponseWriter, r *http.Request) {
	err := app.writeJSON(w, http.StatusOK, buildOpenAPI(app.routeTable(), app.config.Version), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
