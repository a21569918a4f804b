package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sushihentaime/blogcontent/internal/common"
)

// registerAndLogin creates a user through the API and returns its id and access token.
func registerAndLogin(t *testing.T, ts *testServer, username string) (float64, string) {
	t.Helper()

	status, _, body := ts.post(t, "/users/register", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "Test_1234!",
	}, "")
	assert.Equal(t, http.StatusCreated, status)
	id := body["user"].(map[string]any)["id"].(float64)

	status, _, body = ts.post(t, "/users/login", map[string]any{
		"username": username,
		"password": "Test_1234!",
	}, "")
	assert.Equal(t, http.StatusOK, status)
	token := body["token"].(map[string]any)["accessToken"].(string)

	return id, token
}

func TestRegisterUserHandler(t *testing.T) {
	app, db := newTestApplication(t)

	ts := newTestServer(t, app.routes())

	testCases := []struct {
		name       string
		payload    any
		setup      bool
		wantStatus int
		wantBody   envelope
	}{
		{
			name: "Valid Request",
			payload: map[string]any{
				"username": "testuser",
				"email":    "testuser@example.com",
				"password": "Test_1234!",
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "Invalid Payload",
			payload: map[string]any{
				"username": "testuser",
				"email":    "test",
				"password": "Test_1234!",
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   envelope{"error": map[string]string{"email": "must be a valid email address"}},
		},
		{
			name: "Duplicate Email",
			payload: map[string]any{
				"username": "user1",
				"email":    "testuser@example.com",
				"password": "Test_1234!",
			},
			setup:      true,
			wantStatus: http.StatusBadRequest,
			wantBody:   envelope{"error": map[string]string{"email": "a user with this email address already exists"}},
		},
		{
			name: "Duplicate Username",
			payload: map[string]any{
				"username": "testuser",
				"email":    "testuser1@example.com",
				"password": "Test_1234!",
			},
			setup:      true,
			wantStatus: http.StatusBadRequest,
			wantBody:   envelope{"error": map[string]string{"username": "this username is already taken"}},
		},
		{
			name:       "Empty Payload",
			payload:    map[string]any{},
			wantStatus: http.StatusBadRequest,
			wantBody:   envelope{"error": map[string]string{"email": "must be provided", "password": "must be provided", "username": "must be provided"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setup {
				registerAndLogin(t, ts, "testuser")
			}

			status, _, gotBody := ts.post(t, "/users/register", tc.payload, "")
			assert.Equal(t, tc.wantStatus, status)
			if tc.wantBody != nil {
				assert.JSONEq(t, tc.wantBody.JSON(), gotBody.JSON())
			}

			t.Cleanup(func() {
				assert.NoError(t, common.TruncateTables(db, "users"))
			})
		})
	}
}

func TestLoginUserHandler(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())
	t.Cleanup(func() {
		assert.NoError(t, common.TruncateTables(db, "users"))
	})

	registerAndLogin(t, ts, "testuser")

	testCases := []struct {
		name       string
		payload    map[string]any
		wantStatus int
	}{
		{name: "Wrong Password", payload: map[string]any{"username": "testuser", "password": "Wrong_1234!"}, wantStatus: http.StatusUnauthorized},
		{name: "Unknown User", payload: map[string]any{"username": "nobody", "password": "Test_1234!"}, wantStatus: http.StatusUnauthorized},
		{name: "Missing Fields", payload: map[string]any{}, wantStatus: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, _, _ := ts.post(t, "/users/login", tc.payload, "")
			assert.Equal(t, tc.wantStatus, status)
		})
	}
}

func TestBlogLifecycle(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	authorID, author := registerAndLogin(t, ts, "author")
	_, other := registerAndLogin(t, ts, "other")

	status, _, body := ts.post(t, "/categories", map[string]any{"name": "go"}, author)
	assert.Equal(t, http.StatusCreated, status)
	categoryID := body["category"].(map[string]any)["id"].(float64)

	status, _, body = ts.post(t, "/tags", map[string]any{"name": "postgres"}, author)
	assert.Equal(t, http.StatusCreated, status)
	tagID := body["tag"].(map[string]any)["id"].(float64)

	// the author field in the body cannot attribute the post to someone else
	status, headers, body := ts.post(t, "/blog/create", map[string]any{
		"title":      "Hello",
		"content":    "First post",
		"author":     999,
		"imageUrl":   "https://example.com/a.png",
		"categories": []float64{categoryID},
		"tags":       []float64{tagID},
	}, author)
	assert.Equal(t, http.StatusCreated, status)
	blog := body["blog"].(map[string]any)
	id := blog["id"].(string)
	assert.Equal(t, authorID, blog["author"])
	assert.Equal(t, "/blog/"+id, headers.Get("Location"))
	assert.Equal(t, "https://example.com/a.png", blog["imageUrl"])
	assert.Len(t, blog["categories"], 1)
	assert.Len(t, blog["tags"], 1)
	assert.Equal(t, []any{}, blog["likes"])
	assert.Equal(t, []any{}, blog["comments"])

	status, _, body = ts.post(t, "/blog/create", map[string]any{"title": "", "content": "x"}, author)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]any{"title": "must be provided"}, body["error"])

	status, _, body = ts.post(t, "/blog/create", map[string]any{"title": "t", "content": "x", "tags": []int{12345}}, author)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]any{"tags": "unknown tag id(s): 12345"}, body["error"])

	status, _, body = ts.get(t, "/blog/"+id, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Hello", body["blog"].(map[string]any)["title"])

	status, _, _ = ts.get(t, "/blog/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = ts.get(t, "/blog/6f1c2b9e-8d1a-4c43-9a55-0d3c1c8f1e11", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _, body = ts.get(t, "/blog?page=1&limit=10", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["total"])
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(10), body["limit"])
	assert.Equal(t, false, body["hasNext"])
	assert.Len(t, body["items"], 1)

	status, _, _ = ts.get(t, "/blog?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, status)

	// update
	status, _, _ = ts.put(t, "/blog/"+id, map[string]any{"title": "Hijacked"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, _ = ts.put(t, "/blog/"+id, map[string]any{"title": "Hijacked"}, other)
	assert.Equal(t, http.StatusForbidden, status)

	status, _, body = ts.put(t, "/blog/"+id, map[string]any{}, author)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]any{"body": "must contain at least one field to update"}, body["error"])

	status, _, body = ts.put(t, "/blog/"+id, map[string]any{"title": "Hello again", "tags": []int{}}, author)
	assert.Equal(t, http.StatusOK, status)
	updated := body["blog"].(map[string]any)
	assert.Equal(t, "Hello again", updated["title"])
	assert.Equal(t, "First post", updated["content"])
	assert.Equal(t, blog["categories"], updated["categories"])
	assert.Equal(t, []any{}, updated["tags"])
	assert.Equal(t, blog["createdAt"], updated["createdAt"])
	assert.NotEqual(t, blog["updatedAt"], updated["updatedAt"])

	// delete
	status, _, _ = ts.delete(t, "/blog/"+id, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, _ = ts.delete(t, "/blog/"+id, other)
	assert.Equal(t, http.StatusForbidden, status)

	status, _, body = ts.delete(t, "/blog/"+id, author)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Nil(t, body)

	status, _, _ = ts.delete(t, "/blog/"+id, author)
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = ts.get(t, "/blog/"+id, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _, body = ts.get(t, "/categories", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["categories"], 1)
}

func TestListBlogsHandlerPagination(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	_, token := registerAndLogin(t, ts, "author")

	for i := 0; i < 25; i++ {
		status, _, _ := ts.post(t, "/blog/create", map[string]any{"title": fmt.Sprintf("Post %d", i), "content": "body"}, token)
		assert.Equal(t, http.StatusCreated, status)
	}

	testCases := []struct {
		query   string
		items   int
		page    float64
		hasNext bool
		first   string
	}{
		{query: "page=1&limit=10", items: 10, page: 1, hasNext: true, first: "Post 24"},
		{query: "page=3&limit=10", items: 5, page: 3, hasNext: false, first: "Post 4"},
		{query: "page=2&limit=10&offset=5", items: 10, page: 1, hasNext: true, first: "Post 19"},
		{query: "", items: 10, page: 1, hasNext: true, first: "Post 24"},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			status, _, body := ts.get(t, "/blog?"+tc.query, "")
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, float64(25), body["total"])
			assert.Equal(t, tc.page, body["page"])
			assert.Equal(t, tc.hasNext, body["hasNext"])

			items := body["items"].([]any)
			assert.Len(t, items, tc.items)
			assert.Equal(t, tc.first, items[0].(map[string]any)["title"])
		})
	}

	// a page far past the end is an empty page, not a storage error
	status, _, body := ts.get(t, "/blog?page=922337203685477580&limit=10", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(25), body["total"])
	assert.Equal(t, false, body["hasNext"])
	assert.Equal(t, []any{}, body["items"])
}
