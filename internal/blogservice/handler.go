package blogservice

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sushihentaime/blogcontent/internal/common"
)

// NewBlogService wires the blog repository. mb may be nil, in which case no events are published.
func NewBlogService(db *sql.DB, mb common.MessageProducer, logger *slog.Logger) *BlogService {
	if logger == nil {
		logger = slog.Default()
	}

	return &BlogService{
		m:      newBlogModel(db),
		mb:     mb,
		logger: logger,
	}
}

// CreateBlog creates a new blog post owned by the acting user, whatever author the input names.
// input is not modified.
func (s *BlogService) CreateBlog(ctx context.Context, user int64, input *BlogInput) (*Blog, error) {
	in := *input
	in.Author = user
	in.Title = strings.TrimSpace(in.Title)
	in.Content = sanitizeMarkdown(in.Content)

	v := common.NewValidator()
	validateBlogInput(v, &in)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.m.insert(ctx, &in)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, common.BlogCreatedKey, BlogEvent{BlogID: blog.ID, Title: blog.Title, Author: blog.Author, OccurredAt: blog.CreatedAt})

	return blog, nil
}

// ListBlogs returns one page of blogs, newest first. Default page is 1 and default limit is 10.
// A positive offset takes precedence over page.
func (s *BlogService) ListBlogs(ctx context.Context, page, limit, offset int) (*ListResult, error) {
	p := normalizePagination(page, limit, offset)

	blogs, total, err := s.m.getBlogs(ctx, p.limit, p.skip())
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Items:   blogs,
		Page:    p.effectivePage(),
		Limit:   p.limit,
		Total:   total,
		HasNext: p.hasNext(len(blogs), total),
	}, nil
}

// GetBlog returns a blog post by its ID.
func (s *BlogService) GetBlog(ctx context.Context, id uuid.UUID) (*Blog, error) {
	return s.m.getBlogByID(ctx, id)
}

// UpdateBlog applies a partial update. Only the author of the blog post can update it.
// changes is not modified.
func (s *BlogService) UpdateBlog(ctx context.Context, user int64, id uuid.UUID, changes *BlogPatch) (*Blog, error) {
	blog, err := s.m.getBlogByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if blog.Author != user {
		return nil, common.ErrForbidden
	}

	patch := *changes
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}
	if patch.Content != nil {
		content := sanitizeMarkdown(*patch.Content)
		patch.Content = &content
	}

	v := common.NewValidator()
	validateBlogPatch(v, &patch)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	updated, err := s.m.updateBlog(ctx, id, user, &patch)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, common.BlogUpdatedKey, BlogEvent{BlogID: updated.ID, Title: updated.Title, Author: updated.Author, OccurredAt: updated.UpdatedAt})

	return updated, nil
}

// DeleteBlog deletes a blog post. Only the author of the blog post can delete it.
func (s *BlogService) DeleteBlog(ctx context.Context, user int64, id uuid.UUID) error {
	blog, err := s.m.getBlogByID(ctx, id)
	if err != nil {
		return err
	}

	if blog.Author != user {
		return common.ErrForbidden
	}

	err = s.m.deleteBlog(ctx, id, user)
	if err != nil {
		return err
	}

	s.publish(ctx, common.BlogDeletedKey, BlogEvent{BlogID: id, Author: user, OccurredAt: time.Now()})

	return nil
}
