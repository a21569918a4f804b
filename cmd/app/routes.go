package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sushihentaime/blogcontent/internal/blogservice"
	"github.com/sushihentaime/blogcontent/internal/userservice"
)

// queryParam documents an optional integer query parameter.
type queryParam struct {
	name        string
	description string
}

// route is one entry of the HTTP surface. The same table registers the handlers
// and produces the OpenAPI document, so the two cannot drift apart.
type route struct {
	method   string
	path     string
	summary  string
	tag      string
	auth     bool
	query    []queryParam
	request  any
	status   int
	response any
	errors   []int
	handler  http.HandlerFunc
}

func (app *application) routeTable() []route {
	paginationParams := []queryParam{
		{name: "page", description: "1-based page number, defaults to 1"},
		{name: "limit", description: "page size, defaults to 10, at most 100"},
		{name: "offset", description: "number of posts to skip; wins over page when positive"},
	}

	return []route{
		{
			method: http.MethodGet, path: "/healthcheck", summary: "Service status", tag: "system",
			status: http.StatusOK, response: healthResponse{},
			handler: app.healthCheckHandler,
		},
		{
			method: http.MethodPost, path: "/users/register", summary: "Register a user", tag: "users",
			request: registerUserRequest{}, status: http.StatusCreated, response: envelopeOf("user", userservice.User{}),
			errors:  []int{http.StatusBadRequest},
			handler: app.registerUserHandler,
		},
		{
			method: http.MethodPost, path: "/users/login", summary: "Issue an access token", tag: "users",
			request: loginUserRequest{}, status: http.StatusOK, response: envelopeOf("token", userservice.AuthToken{}),
			errors:  []int{http.StatusBadRequest, http.StatusUnauthorized},
			handler: app.loginUserHandler,
		},
		{
			method: http.MethodPost, path: "/blog/create", summary: "Create a blog post owned by the caller", tag: "blog",
			auth: true, request: createBlogRequest{}, status: http.StatusCreated, response: envelopeOf("blog", blogservice.Blog{}),
			errors:  []int{http.StatusBadRequest, http.StatusUnauthorized},
			handler: app.createBlogHandler,
		},
		{
			method: http.MethodGet, path: "/blog", summary: "List blog posts, newest first", tag: "blog",
			query: paginationParams, status: http.StatusOK, response: blogservice.ListResult{},
			errors:  []int{http.StatusBadRequest},
			handler: app.listBlogsHandler,
		},
		{
			method: http.MethodGet, path: "/blog/:id", summary: "Fetch a blog post", tag: "blog",
			status: http.StatusOK, response: envelopeOf("blog", blogservice.Blog{}),
			errors:  []int{http.StatusNotFound},
			handler: app.getBlogHandler,
		},
		{
			method: http.MethodPut, path: "/blog/:id", summary: "Partially update a blog post (author only)", tag: "blog",
			auth: true, request: updateBlogRequest{}, status: http.StatusOK, response: envelopeOf("blog", blogservice.Blog{}),
			errors:  []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound},
			handler: app.updateBlogHandler,
		},
		{
			method: http.MethodDelete, path: "/blog/:id", summary: "Delete a blog post (author only)", tag: "blog",
			auth: true, status: http.StatusNoContent,
			errors:  []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound},
			handler: app.deleteBlogHandler,
		},
		{
			method: http.MethodGet, path: "/categories", summary: "List categories", tag: "taxonomy",
			status: http.StatusOK, response: envelopeOf("categories", []blogservice.Category{}),
			handler: app.listCategoriesHandler,
		},
		{
			method: http.MethodPost, path: "/categories", summary: "Create a category", tag: "taxonomy",
			auth: true, request: createTermRequest{}, status: http.StatusCreated, response: envelopeOf("category", blogservice.Category{}),
			errors:  []int{http.StatusBadRequest, http.StatusUnauthorized},
			handler: app.createCategoryHandler,
		},
		{
			method: http.MethodGet, path: "/tags", summary: "List tags", tag: "taxonomy",
			status: http.StatusOK, response: envelopeOf("tags", []blogservice.Tag{}),
			handler: app.listTagsHandler,
		},
		{
			method: http.MethodPost, path: "/tags", summary: "Create a tag", tag: "taxonomy",
			auth: true, request: createTermRequest{}, status: http.StatusCreated, response: envelopeOf("tag", blogservice.Tag{}),
			errors:  []int{http.StatusBadRequest, http.StatusUnauthorized},
			handler: app.createTagHandler,
		},
		{
			method: http.MethodGet, path: "/docs/openapi.json", summary: "This document", tag: "system",
			status:  http.StatusOK,
			handler: app.openAPIHandler,
		},
	}
}

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	for _, rt := range app.routeTable() {
		h := rt.handler
		if rt.auth {
			h = app.requireAuthUser(h)
		}
		router.Handler(rt.method, rt.path, app.metrics.instrument(rt.path, h))
	}

	router.Handler(http.MethodGet, "/metrics", app.metrics.handler())

	return app.recoverPanic(app.logRequest(app.rateLimit(app.authenticate(router))))
}
