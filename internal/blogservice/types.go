package blogservice

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sushihentaime/blogcontent/internal/common"
)

type Blog struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	// Content is stored in Markdown format.
	Content    string     `json:"content"`
	Author     int64      `json:"author"`
	ImageURL   *string    `json:"imageUrl"`
	Categories []Category `json:"categories"`
	Tags       []Tag      `json:"tags"`
	Likes      []Like     `json:"likes"`
	Comments   []Comment  `json:"comments"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	Version    int        `json:"version"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Tag Category

type Like struct {
	ID   int64 `json:"id"`
	User int64 `json:"user"`
}

type Comment struct {
	ID        int64     `json:"id"`
	Author    int64     `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// BlogInput holds the fields of a new post. Categories and Tags are ids, kept in the given order.
type BlogInput struct {
	Title      string
	Content    string
	Author     int64
	ImageURL   *string
	Categories []int64
	Tags       []int64
}

// BlogPatch is a partial update: nil fields are left untouched.
// An empty ImageURL clears the image.
type BlogPatch struct {
	Title      *string
	Content    *string
	Author     *int64
	ImageURL   *string
	Categories *[]int64
	Tags       *[]int64
}

func (p *BlogPatch) empty() bool {
	return p.Title == nil && p.Content == nil && p.Author == nil && p.ImageURL == nil && p.Categories == nil && p.Tags == nil
}

type ListResult struct {
	Items   []Blog `json:"items"`
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	Total   int    `json:"total"`
	HasNext bool   `json:"hasNext"`
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m      *BlogModel
	mb     common.MessageProducer
	logger *slog.Logger
}
